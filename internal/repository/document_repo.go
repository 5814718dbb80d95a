package repository

import (
	"context"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"lexline/internal/models"
)

const maxStoredDocumentBytes = 10000

type DocumentRepo struct {
	pool *pgxpool.Pool
}

func NewDocumentRepo(pool *pgxpool.Pool) *DocumentRepo {
	return &DocumentRepo{pool: pool}
}

func (r *DocumentRepo) Create(ctx context.Context, d *models.DocumentAnalysis) error {
	d.ID = uuid.New()
	d.Status = "pending"

	query := `INSERT INTO document_analyses (id, session_id, filename, status)
		VALUES ($1, $2, $3, $4) RETURNING created_at`

	return r.pool.QueryRow(ctx, query, d.ID, d.SessionID, d.Filename, d.Status).Scan(&d.CreatedAt)
}

func (r *DocumentRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.DocumentAnalysis, error) {
	d := &models.DocumentAnalysis{}
	query := `SELECT id, session_id, filename, status, document_text, analysis_summary,
		claimant_arguments, defence_points, claim_value_estimate, track_type, legal_categories, created_at
		FROM document_analyses WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&d.ID, &d.SessionID, &d.Filename, &d.Status, &d.DocumentText, &d.AnalysisSummary,
		&d.ClaimantArguments, &d.DefencePoints, &d.ClaimValueEstimate, &d.TrackType,
		&d.LegalCategories, &d.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (r *DocumentRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	_, err := r.pool.Exec(ctx, "UPDATE document_analyses SET status = $1 WHERE id = $2", status, id)
	return err
}

// SaveResult stores the completed analysis. Document text is capped at 10k
// bytes to keep rows small.
func (r *DocumentRepo) SaveResult(ctx context.Context, id uuid.UUID, text string, a *models.SkeletonAnalysis, claimantJSON, defenceJSON, categoriesJSON []byte) error {
	text = truncateUTF8(text, maxStoredDocumentBytes)

	query := `UPDATE document_analyses SET status = 'completed', document_text = $1,
		analysis_summary = $2, claimant_arguments = $3, defence_points = $4,
		claim_value_estimate = $5, track_type = $6, legal_categories = $7
		WHERE id = $8`

	_, err := r.pool.Exec(ctx, query,
		text, a.DocumentSummary, claimantJSON, defenceJSON,
		a.ClaimValueEstimate, a.TrackAssessment, categoriesJSON, id,
	)
	return err
}

// truncateUTF8 caps s at limit bytes without splitting a multi-byte rune,
// so the stored value stays valid UTF-8.
func truncateUTF8(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func (r *DocumentRepo) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*models.DocumentAnalysis, error) {
	query := `SELECT id, session_id, filename, status, document_text, analysis_summary,
		claimant_arguments, defence_points, claim_value_estimate, track_type, legal_categories, created_at
		FROM document_analyses WHERE session_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var analyses []*models.DocumentAnalysis
	for rows.Next() {
		d := &models.DocumentAnalysis{}
		if err := rows.Scan(
			&d.ID, &d.SessionID, &d.Filename, &d.Status, &d.DocumentText, &d.AnalysisSummary,
			&d.ClaimantArguments, &d.DefencePoints, &d.ClaimValueEstimate, &d.TrackType,
			&d.LegalCategories, &d.CreatedAt,
		); err != nil {
			return nil, err
		}
		analyses = append(analyses, d)
	}
	return analyses, rows.Err()
}
