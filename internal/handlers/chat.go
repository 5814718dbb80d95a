package handlers

import (
	"encoding/json"
	"net/http"

	"lexline/internal/middleware"
	"lexline/internal/models"
	"lexline/internal/repository"
	"lexline/internal/services"
)

type ChatHandler struct {
	advisor     *services.Advisor
	messageRepo *repository.MessageRepo
}

func NewChatHandler(advisor *services.Advisor, messageRepo *repository.MessageRepo) *ChatHandler {
	return &ChatHandler{advisor: advisor, messageRepo: messageRepo}
}

// Query is the HTTP fallback for clients without a websocket connection.
// It runs the same pipeline as the socket path and returns the bot
// response directly.
func (h *ChatHandler) Query(w http.ResponseWriter, r *http.Request) {
	var req models.UserMessage
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	sessionID := middleware.GetSessionID(r.Context())

	response, err := h.advisor.ProcessQuery(r.Context(), sessionID, req.Message)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response)
}

// History returns the session's past turns oldest-first so the widget can
// replay them on load.
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	sessionID := middleware.GetSessionID(r.Context())

	entries, err := h.messageRepo.History(r.Context(), sessionID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load chat history", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"history": entries,
	})
}
