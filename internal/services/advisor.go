package services

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"lexline/internal/models"
	"lexline/internal/repository"
)

// MaxQueryLength mirrors the widget's input limit; the server enforces it
// too since the websocket can be driven directly.
const MaxQueryLength = 1000

// ApologyMessage is returned when query processing fails.
const ApologyMessage = "I apologize, but I encountered an error processing your query. Please try rephrasing your question or contact a qualified solicitor for assistance."

// historyContextTurns limits how many prior turns are given to the AI.
const historyContextTurns = 6

// Advisor turns a raw user query into a structured bot response: triage,
// knowledge retrieval, AI guidance, referral and persistence.
type Advisor struct {
	sessionRepo *repository.SessionRepo
	messageRepo *repository.MessageRepo
	knowledge   *repository.KnowledgeRepo
	assistant   *Assistant
	referral    *ReferralService
}

func NewAdvisor(
	sessionRepo *repository.SessionRepo,
	messageRepo *repository.MessageRepo,
	knowledge *repository.KnowledgeRepo,
	assistant *Assistant,
	referral *ReferralService,
) *Advisor {
	return &Advisor{
		sessionRepo: sessionRepo,
		messageRepo: messageRepo,
		knowledge:   knowledge,
		assistant:   assistant,
		referral:    referral,
	}
}

// ProcessQuery runs the full pipeline for one user message and returns the
// payload to push to the widget. Validation failures return a typed error
// before any external call is made.
func (s *Advisor) ProcessQuery(ctx context.Context, sessionID uuid.UUID, message string) (*models.BotResponse, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, &ValidationError{Fields: map[string]string{"message": "Please enter a legal query."}}
	}
	if utf8.RuneCountInString(message) > MaxQueryLength {
		return nil, &ValidationError{Fields: map[string]string{"message": "Message is too long (maximum 1000 characters)."}}
	}

	analysis := AnalyzeQuery(message)

	history, err := s.messageRepo.ListRecent(ctx, sessionID, historyContextTurns)
	if err != nil {
		log.Printf("Failed to load chat history for %s: %v", sessionID, err)
	}

	var guidance *LegalGuidance
	if s.assistant != nil {
		guidance, err = s.assistant.LegalResponse(ctx, message, history)
		if err != nil {
			// Degrade to local knowledge only
			log.Printf("AI guidance unavailable: %v", err)
		}
	}

	// Let the model refine the keyword triage
	if guidance != nil {
		if analysis.Category == "general" && guidance.Category != "" && guidance.Category != "general" {
			analysis.Category = guidance.Category
		}
		if analysis.TrackType == "" && guidance.Track != "" && guidance.Track != "unknown" {
			analysis.TrackType = guidance.Track
		}
		if guidance.Urgency == "high" {
			analysis.Urgent = true
		}
	}

	cases, err := s.knowledge.FindCases(ctx, analysis.Category, analysis.Keywords, 2)
	if err != nil {
		log.Printf("Case lookup failed: %v", err)
	}
	procedures, err := s.knowledge.FindProcedures(ctx, analysis.Category, analysis.TrackType, analysis.Keywords, 2)
	if err != nil {
		log.Printf("Procedure lookup failed: %v", err)
	}

	responseText, citations := composeResponse(message, analysis, guidance, cases, procedures)

	response := &models.BotResponse{
		Type:          "success",
		Message:       responseText,
		LegalCategory: analysis.Category,
		TrackType:     analysis.TrackType,
		Citations:     citations,
	}

	if ShouldRefer(analysis, message) {
		referralInfo, err := s.referral.Recommend(ctx, analysis)
		if err != nil {
			log.Printf("Referral lookup failed: %v", err)
		} else {
			response.ReferralInfo = referralInfo
		}
	}

	if err := s.saveTurn(ctx, sessionID, message, response); err != nil {
		log.Printf("Failed to persist chat turn for %s: %v", sessionID, err)
	}

	return response, nil
}

func (s *Advisor) saveTurn(ctx context.Context, sessionID uuid.UUID, message string, response *models.BotResponse) error {
	citationsJSON, _ := json.Marshal(response.Citations)
	if response.Citations == nil {
		citationsJSON = []byte("[]")
	}

	category := response.LegalCategory
	turn := &models.ChatMessage{
		SessionID:     sessionID,
		Message:       message,
		Response:      response.Message,
		LegalCategory: &category,
		Citations:     citationsJSON,
	}
	if err := s.messageRepo.Create(ctx, turn); err != nil {
		return err
	}

	return s.sessionRepo.Touch(ctx, sessionID)
}
