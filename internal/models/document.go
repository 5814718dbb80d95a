package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// DocumentAnalysis holds the outcome of an AI skeleton-argument review of an
// uploaded document.
type DocumentAnalysis struct {
	ID                 uuid.UUID       `json:"id"`
	SessionID          uuid.UUID       `json:"session_id"`
	Filename           string          `json:"filename"`
	Status             string          `json:"status"` // "pending" | "processing" | "completed" | "failed"
	DocumentText       *string         `json:"-"`
	AnalysisSummary    *string         `json:"analysis_summary"`
	ClaimantArguments  json.RawMessage `json:"claimant_arguments"`
	DefencePoints      json.RawMessage `json:"defence_points"`
	ClaimValueEstimate *float64        `json:"claim_value_estimate"`
	TrackType          *string         `json:"track_type"`
	LegalCategories    json.RawMessage `json:"legal_categories"`
	CreatedAt          time.Time       `json:"created_at"`
}

// SkeletonAnalysis is the structured result returned by the AI review before
// it is persisted.
type SkeletonAnalysis struct {
	DocumentSummary    string   `json:"document_summary"`
	ClaimantArguments  []string `json:"claimant_arguments"`
	DefencePoints      []string `json:"defence_points"`
	ClaimValueEstimate float64  `json:"claim_value_estimate"`
	TrackAssessment    string   `json:"track_assessment"`
	LegalCategories    []string `json:"legal_categories"`
}

// Job is a queued unit of background work.
type Job struct {
	ID           uuid.UUID  `json:"id"`
	SessionID    uuid.UUID  `json:"session_id"`
	Type         string     `json:"type"` // "document-analysis"
	ReferenceID  uuid.UUID  `json:"reference_id"`
	Status       string     `json:"status"` // "pending" | "processing" | "completed" | "failed"
	RetryCount   int        `json:"retry_count"`
	MaxRetries   int        `json:"max_retries"`
	ErrorMessage *string    `json:"error_message"`
	CreatedAt    time.Time  `json:"created_at"`
	CompletedAt  *time.Time `json:"completed_at"`
}

// QueuedDocumentJob is the payload pushed on the analysis queue.
type QueuedDocumentJob struct {
	JobID      uuid.UUID `json:"job_id"`
	DocumentID uuid.UUID `json:"document_id"`
	SessionID  uuid.UUID `json:"session_id"`
	FilePath   string    `json:"file_path"`
}

// Websocket job progress events, published on the session's update channel.
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type StatusUpdate struct {
	JobID    uuid.UUID `json:"job_id"`
	Step     int       `json:"step"`
	StepName string    `json:"step_name"`
}

type CompletedEvent struct {
	JobID      uuid.UUID `json:"job_id"`
	ResultID   uuid.UUID `json:"result_id"`
	ResultType string    `json:"result_type"`
}

type ErrorEvent struct {
	JobID        uuid.UUID `json:"job_id"`
	ErrorCode    string    `json:"error_code"`
	ErrorMessage string    `json:"error_message"`
}
