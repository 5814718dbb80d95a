package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"lexline/internal/models"
)

type SessionRepo struct {
	pool *pgxpool.Pool
}

func NewSessionRepo(pool *pgxpool.Pool) *SessionRepo {
	return &SessionRepo{pool: pool}
}

func (r *SessionRepo) Create(ctx context.Context, s *models.Session) error {
	s.ID = uuid.New()
	query := `INSERT INTO sessions (id) VALUES ($1) RETURNING created_at, last_seen_at`
	return r.pool.QueryRow(ctx, query, s.ID).Scan(&s.CreatedAt, &s.LastSeenAt)
}

func (r *SessionRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	s := &models.Session{}
	query := `SELECT id, created_at, last_seen_at FROM sessions WHERE id = $1`
	err := r.pool.QueryRow(ctx, query, id).Scan(&s.ID, &s.CreatedAt, &s.LastSeenAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Touch refreshes last_seen_at; called on every chat turn.
func (r *SessionRepo) Touch(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "UPDATE sessions SET last_seen_at = NOW() WHERE id = $1", id)
	return err
}
