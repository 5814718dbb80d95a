package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Track types used by the UK civil claim allocation rules.
const (
	TrackSmallClaims = "small_claims" // up to £10,000
	TrackFastTrack   = "fast_track"   // £10,000 - £25,000
	TrackMultiTrack  = "multi_track"  // £25,000+
)

// ChatMessage is a persisted conversation turn: the user's query paired with
// the generated response.
type ChatMessage struct {
	ID            uuid.UUID       `json:"id"`
	SessionID     uuid.UUID       `json:"session_id"`
	Message       string          `json:"message"`
	Response      string          `json:"response"`
	LegalCategory *string         `json:"legal_category"`
	Citations     json.RawMessage `json:"citations"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Citation references a case or procedural source rendered alongside a response.
type Citation struct {
	Type     string `json:"type"` // "case" | "procedure"
	Name     string `json:"name,omitempty"`
	Citation string `json:"citation,omitempty"`
	Title    string `json:"title,omitempty"`
	Source   string `json:"source,omitempty"`
	URL      string `json:"url,omitempty"`
}

// Solicitor is a referral recommendation row.
type Solicitor struct {
	FirmName     string   `json:"firm_name"`
	ContactName  *string  `json:"contact_name,omitempty"`
	Location     *string  `json:"location,omitempty"`
	Specialties  []string `json:"specialties"`
	ContactPhone *string  `json:"contact_phone,omitempty"`
	Website      *string  `json:"website,omitempty"`
}

// FundingOption describes a way to fund professional representation.
type FundingOption struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

// ReferralInfo is the optional block recommending professional contacts.
type ReferralInfo struct {
	Advice         string          `json:"advice"`
	Solicitors     []Solicitor     `json:"recommended_solicitors"`
	FundingOptions []FundingOption `json:"funding_options"`
}

// BotResponse is the structured payload pushed to the widget for every
// processed query. Type is "success" or "error".
type BotResponse struct {
	Type          string        `json:"type"`
	Message       string        `json:"message"`
	LegalCategory string        `json:"legal_category,omitempty"`
	TrackType     string        `json:"track_type,omitempty"`
	Citations     []Citation    `json:"citations,omitempty"`
	ReferralInfo  *ReferralInfo `json:"referral_info,omitempty"`
}

// UserMessage is the payload the widget emits over the websocket.
type UserMessage struct {
	Message string `json:"message"`
}

// TypingEvent toggles the widget's typing indicator.
type TypingEvent struct {
	Typing bool `json:"typing"`
}

// StatusEvent is sent once after a successful connection.
type StatusEvent struct {
	Msg string `json:"msg"`
}

// HistoryEntry is one turn of GET /api/v1/chat-history.
type HistoryEntry struct {
	Message       string     `json:"message"`
	Response      string     `json:"response,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	LegalCategory *string    `json:"legal_category,omitempty"`
	Citations     []Citation `json:"citations,omitempty"`
}

// Envelope is the websocket wire frame in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Websocket event names.
const (
	EventStatus      = "status"
	EventTyping      = "typing"
	EventBotResponse = "bot_response"
	EventUserMessage = "user_message"
)

// API Error response
type APIError struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}
