package widget

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"lexline/internal/models"
)

// LoadHistory fetches prior turns once and replays them through the render
// pipeline. Any failure is logged and swallowed: the widget starts with an
// empty thread instead of blocking initialization. There is no retry.
func (w *Widget) LoadHistory(ctx context.Context, client *http.Client, baseURL, token string) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/v1/chat-history", nil)
	if err != nil {
		log.Printf("widget: history request failed: %v", err)
		return
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := client.Do(req)
	if err != nil {
		log.Printf("widget: history fetch failed: %v", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("widget: history fetch failed: %v", fmt.Errorf("unexpected status %d", resp.StatusCode))
		return
	}

	var payload struct {
		History []models.HistoryEntry `json:"history"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		log.Printf("widget: history decode failed: %v", err)
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	for _, entry := range payload.History {
		w.appendMessage(entry.Message, SenderUser, nil)

		if entry.Response == "" {
			continue
		}
		aux := &models.BotResponse{
			Type:      "success",
			Message:   entry.Response,
			Citations: entry.Citations,
		}
		if entry.LegalCategory != nil {
			aux.LegalCategory = *entry.LegalCategory
		}
		w.appendMessage(entry.Response, SenderBot, aux)
	}
}
