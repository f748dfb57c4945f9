// Package leads persists accepted leads: Postgres is the system of record,
// Elasticsearch and Zoho CRM receive best-effort copies.
package leads

import (
	"context"
	"database/sql"
	"fmt"

	apperrors "lead-hunter/internal/common/errors"
	"lead-hunter/internal/models"
)

const insertLead = `
	INSERT INTO leads (id, phone, name, source, source_domain, notes, status, created_by, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (phone, source) DO NOTHING`

const selectByCreator = `
	SELECT id, phone, name, source, source_domain, notes, status, created_by, created_at
	FROM leads
	WHERE created_by = $1
	ORDER BY created_at DESC
	LIMIT $2`

const statsByCreator = `
	SELECT COUNT(*),
	       COUNT(*) FILTER (WHERE status = 'new'),
	       COUNT(*) FILTER (WHERE status = 'converted')
	FROM leads
	WHERE created_by = $1`

// DefaultListLimit caps ListByCreator when the caller passes no limit.
const DefaultListLimit = 50

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Insert writes lead. A lead with the same phone and source already present
// yields a DUPLICATE_LEAD error and leaves the row untouched.
func (s *PostgresStore) Insert(ctx context.Context, lead *models.Lead) error {
	res, err := s.db.ExecContext(ctx, insertLead,
		lead.ID,
		lead.Phone,
		lead.Name,
		lead.Source,
		nullIfEmpty(lead.SourceDomain),
		lead.Notes,
		lead.Status,
		lead.CreatedBy,
		lead.CreatedAt,
	)
	if err != nil {
		return apperrors.NewQueryExecutionFailedError("insert_lead", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return apperrors.NewQueryExecutionFailedError("insert_lead", err)
	}
	if affected == 0 {
		return apperrors.NewDuplicateLeadError(lead.Phone, lead.Source)
	}
	return nil
}

// ListByCreator returns the newest leads recorded for createdBy.
func (s *PostgresStore) ListByCreator(ctx context.Context, createdBy string, limit int) ([]models.Lead, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := s.db.QueryContext(ctx, selectByCreator, createdBy, limit)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("list_leads", err)
	}
	defer rows.Close()

	leads := []models.Lead{}
	for rows.Next() {
		var (
			lead   models.Lead
			name   sql.NullString
			domain sql.NullString
		)
		if err := rows.Scan(
			&lead.ID, &lead.Phone, &name, &lead.Source, &domain,
			&lead.Notes, &lead.Status, &lead.CreatedBy, &lead.CreatedAt,
		); err != nil {
			return nil, apperrors.NewQueryExecutionFailedError("list_leads", fmt.Errorf("scan: %w", err))
		}
		if name.Valid {
			n := name.String
			lead.Name = &n
		}
		lead.SourceDomain = domain.String
		leads = append(leads, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("list_leads", err)
	}
	return leads, nil
}

func (s *PostgresStore) StatsByCreator(ctx context.Context, createdBy string) (*models.LeadStats, error) {
	var stats models.LeadStats
	err := s.db.QueryRowContext(ctx, statsByCreator, createdBy).Scan(
		&stats.TotalLeads, &stats.NewLeads, &stats.Converted,
	)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("lead_stats", err)
	}
	return &stats, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return apperrors.NewDatabaseConnectionFailedError(err)
	}
	return nil
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
