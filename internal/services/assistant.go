package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"lexline/internal/models"
)

// Assistant wraps the Gemini client for legal guidance and document review.
type Assistant struct {
	client   *genai.Client
	model    *genai.GenerativeModel
	rateChan chan struct{} // Token bucket
}

func NewAssistant(apiKey string, concurrentReqs int) (*Assistant, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel("gemini-3-flash-preview")
	model.SetTemperature(0.3)
	model.SetTopP(0.95)

	// Token bucket for rate limiting
	rateChan := make(chan struct{}, concurrentReqs)
	for i := 0; i < concurrentReqs; i++ {
		rateChan <- struct{}{}
	}

	return &Assistant{client: client, model: model, rateChan: rateChan}, nil
}

func (a *Assistant) Close() {
	a.client.Close()
}

// acquireRate blocks until a rate slot is available
func (a *Assistant) acquireRate(ctx context.Context) error {
	select {
	case <-a.rateChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(2 * time.Minute):
		return fmt.Errorf("timeout waiting for Gemini rate slot")
	}
}

func (a *Assistant) releaseRate() {
	a.rateChan <- struct{}{}
}

// LegalGuidance is the structured reply the model is asked to produce.
type LegalGuidance struct {
	Response string `json:"response"`
	Category string `json:"category"`
	Track    string `json:"track"`
	Urgency  string `json:"urgency"`
}

// LegalResponse asks Gemini for guidance on a query, giving recent turns as
// conversation context.
func (a *Assistant) LegalResponse(ctx context.Context, query string, history []*models.ChatMessage) (*LegalGuidance, error) {
	if err := a.acquireRate(ctx); err != nil {
		return nil, err
	}
	defer a.releaseRate()

	prompt := buildLegalPrompt(query, history)

	resp, err := a.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("Gemini API error: %w", err)
	}

	rawText := strings.TrimSpace(extractText(resp))
	if rawText == "" {
		return nil, fmt.Errorf("Gemini returned empty response")
	}

	guidance := &LegalGuidance{}
	if err := json.Unmarshal([]byte(stripCodeFences(rawText)), guidance); err != nil {
		// Model ignored the JSON instruction; use the raw text as guidance.
		log.Printf("Gemini legal response was not JSON, using raw text: %v", err)
		guidance.Response = rawText
	}

	if guidance.Response == "" {
		return nil, fmt.Errorf("Gemini response had no guidance text")
	}
	return guidance, nil
}

// AnalyzeSkeletonArgument reviews an uploaded legal document and extracts the
// arguments, defence angles and a claim assessment.
func (a *Assistant) AnalyzeSkeletonArgument(ctx context.Context, documentText string) (*models.SkeletonAnalysis, error) {
	if err := a.acquireRate(ctx); err != nil {
		return nil, err
	}
	defer a.releaseRate()

	prompt := buildSkeletonPrompt(documentText)

	resp, err := a.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("Gemini API error: %w", err)
	}

	rawText := strings.TrimSpace(extractText(resp))
	rawText = stripCodeFences(rawText)

	analysis := &models.SkeletonAnalysis{}
	if err := json.Unmarshal([]byte(rawText), analysis); err != nil {
		// Try to find JSON object inside surrounding prose
		start := strings.Index(rawText, "{")
		end := strings.LastIndex(rawText, "}")
		if start >= 0 && end > start {
			if err := json.Unmarshal([]byte(rawText[start:end+1]), analysis); err != nil {
				return nil, fmt.Errorf("failed to parse analysis JSON: %w", err)
			}
		} else {
			return nil, fmt.Errorf("failed to parse analysis JSON: %w", err)
		}
	}

	if analysis.DocumentSummary == "" {
		return nil, fmt.Errorf("analysis had no document summary")
	}

	switch analysis.TrackAssessment {
	case models.TrackSmallClaims, models.TrackFastTrack, models.TrackMultiTrack:
	default:
		analysis.TrackAssessment = models.TrackSmallClaims
	}

	return analysis, nil
}

func buildLegalPrompt(query string, history []*models.ChatMessage) string {
	var b strings.Builder

	b.WriteString("You are a legal information assistant for England and Wales, helping litigants in person with civil claims.\n")
	b.WriteString("Provide practical procedural guidance. Never present information as formal legal advice.\n\n")
	b.WriteString("CRITICAL: Return ONLY a valid JSON object. No preamble, no markdown fences.\n\n")
	b.WriteString(`JSON schema:
{"response": "guidance text, may use **bold** and bullet points", "category": "contract_dispute|consumer_rights|housing|employment|personal_injury|debt_recovery|professional_negligence|commercial_dispute|general", "track": "small_claims|fast_track|multi_track|unknown", "urgency": "low|medium|high"}
`)

	if len(history) > 0 {
		b.WriteString("\n---RECENT CONVERSATION---\n")
		for _, m := range history {
			b.WriteString("User: ")
			b.WriteString(m.Message)
			b.WriteString("\nAssistant: ")
			b.WriteString(m.Response)
			b.WriteString("\n")
		}
	}

	b.WriteString("\n---QUERY---\n")
	b.WriteString(query)
	b.WriteString("\n---END---\n")

	return b.String()
}

func buildSkeletonPrompt(documentText string) string {
	var b strings.Builder

	b.WriteString("You are reviewing a legal document (typically a skeleton argument or particulars of claim) for a litigant in person in England and Wales.\n\n")
	b.WriteString("CRITICAL: Return ONLY a valid JSON object. No preamble, no markdown fences.\n\n")
	b.WriteString(`JSON schema:
{"document_summary": "string", "claimant_arguments": ["string"], "defence_points": ["string"], "claim_value_estimate": number, "track_assessment": "small_claims|fast_track|multi_track", "legal_categories": ["string"]}
`)
	b.WriteString("\n---DOCUMENT---\n")
	b.WriteString(documentText)
	b.WriteString("\n---END---\n")

	return b.String()
}

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
