package repository

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"lexline/internal/models"
)

type MessageRepo struct {
	pool *pgxpool.Pool
}

func NewMessageRepo(pool *pgxpool.Pool) *MessageRepo {
	return &MessageRepo{pool: pool}
}

func (r *MessageRepo) Create(ctx context.Context, m *models.ChatMessage) error {
	m.ID = uuid.New()
	citations := m.Citations
	if citations == nil {
		citations = []byte("[]")
	}

	query := `INSERT INTO chat_messages (id, session_id, message, response, legal_category, citations)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING created_at`

	return r.pool.QueryRow(ctx, query,
		m.ID, m.SessionID, m.Message, m.Response, m.LegalCategory, citations,
	).Scan(&m.CreatedAt)
}

// ListBySession returns the full conversation in insertion order.
func (r *MessageRepo) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*models.ChatMessage, error) {
	query := `SELECT id, session_id, message, response, legal_category, citations, created_at
		FROM chat_messages WHERE session_id = $1 ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*models.ChatMessage
	for rows.Next() {
		m := &models.ChatMessage{}
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Message, &m.Response, &m.LegalCategory, &m.Citations, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// ListRecent returns the newest n turns in chronological order, used as AI
// conversation context.
func (r *MessageRepo) ListRecent(ctx context.Context, sessionID uuid.UUID, n int) ([]*models.ChatMessage, error) {
	query := `SELECT id, session_id, message, response, legal_category, citations, created_at
		FROM chat_messages WHERE session_id = $1 ORDER BY created_at DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, sessionID, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*models.ChatMessage
	for rows.Next() {
		m := &models.ChatMessage{}
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Message, &m.Response, &m.LegalCategory, &m.Citations, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reverse to chronological order
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// History converts stored turns into the wire shape of /api/v1/chat-history.
func (r *MessageRepo) History(ctx context.Context, sessionID uuid.UUID) ([]models.HistoryEntry, error) {
	messages, err := r.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	history := make([]models.HistoryEntry, 0, len(messages))
	for _, m := range messages {
		entry := models.HistoryEntry{
			Message:       m.Message,
			Response:      m.Response,
			CreatedAt:     m.CreatedAt,
			LegalCategory: m.LegalCategory,
		}
		if len(m.Citations) > 0 {
			json.Unmarshal(m.Citations, &entry.Citations)
		}
		history = append(history, entry)
	}
	return history, nil
}
