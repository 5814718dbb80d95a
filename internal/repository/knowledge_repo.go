package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"lexline/internal/models"
)

// KnowledgeRepo serves the local legal knowledge base: precedent cases and
// procedural guidance seeded by migrations.
type KnowledgeRepo struct {
	pool *pgxpool.Pool
}

func NewKnowledgeRepo(pool *pgxpool.Pool) *KnowledgeRepo {
	return &KnowledgeRepo{pool: pool}
}

// FindCases returns up to limit cases matching the category or any keyword.
func (r *KnowledgeRepo) FindCases(ctx context.Context, category string, keywords []string, limit int) ([]*models.LegalCase, error) {
	where, args := matchClause(category, keywords, "case_name || ' ' || summary")

	query := fmt.Sprintf(`SELECT id, case_name, citation, summary, category, url
		FROM legal_cases %s ORDER BY case_name LIMIT %d`, where, limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cases []*models.LegalCase
	for rows.Next() {
		c := &models.LegalCase{}
		if err := rows.Scan(&c.ID, &c.CaseName, &c.Citation, &c.Summary, &c.Category, &c.URL); err != nil {
			return nil, err
		}
		cases = append(cases, c)
	}
	return cases, rows.Err()
}

// FindProcedures returns up to limit procedures matching the category, track
// or any keyword.
func (r *KnowledgeRepo) FindProcedures(ctx context.Context, category, track string, keywords []string, limit int) ([]*models.LegalProcedure, error) {
	where, args := matchClause(category, keywords, "title || ' ' || summary")
	if track != "" {
		if where == "" {
			where = fmt.Sprintf("WHERE track = $%d", len(args)+1)
		} else {
			where += fmt.Sprintf(" OR track = $%d", len(args)+1)
		}
		args = append(args, track)
	}

	query := fmt.Sprintf(`SELECT id, title, summary, category, source, track
		FROM legal_procedures %s ORDER BY title LIMIT %d`, where, limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var procedures []*models.LegalProcedure
	for rows.Next() {
		p := &models.LegalProcedure{}
		if err := rows.Scan(&p.ID, &p.Title, &p.Summary, &p.Category, &p.Source, &p.Track); err != nil {
			return nil, err
		}
		procedures = append(procedures, p)
	}
	return procedures, rows.Err()
}

// FindSolicitors returns referral candidates whose specialties cover the
// category, falling back to general practitioners.
func (r *KnowledgeRepo) FindSolicitors(ctx context.Context, category string, limit int) ([]models.Solicitor, error) {
	query := `SELECT firm_name, contact_name, location, specialties, contact_phone, website
		FROM solicitors WHERE $1 = ANY(specialties) OR 'general' = ANY(specialties)
		ORDER BY ($1 = ANY(specialties)) DESC, firm_name LIMIT $2`

	rows, err := r.pool.Query(ctx, query, category, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var solicitors []models.Solicitor
	for rows.Next() {
		var s models.Solicitor
		if err := rows.Scan(&s.FirmName, &s.ContactName, &s.Location, &s.Specialties, &s.ContactPhone, &s.Website); err != nil {
			return nil, err
		}
		solicitors = append(solicitors, s)
	}
	return solicitors, rows.Err()
}

// matchClause builds "WHERE category = $1 OR text ILIKE $2 OR ..." with
// positional args. Keywords are matched against the given text expression.
func matchClause(category string, keywords []string, textExpr string) (string, []interface{}) {
	var clauses []string
	var args []interface{}
	argIdx := 1

	if category != "" {
		clauses = append(clauses, fmt.Sprintf("category = $%d", argIdx))
		args = append(args, category)
		argIdx++
	}
	for _, kw := range keywords {
		clauses = append(clauses, fmt.Sprintf("%s ILIKE $%d", textExpr, argIdx))
		args = append(args, "%"+kw+"%")
		argIdx++
	}

	if len(clauses) == 0 {
		return "", nil
	}

	where := "WHERE " + clauses[0]
	for _, c := range clauses[1:] {
		where += " OR " + c
	}
	return where, args
}
