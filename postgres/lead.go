package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/phbpx/outreach"
)

// lib/pq errorCodeNames
// https://github.com/lib/pq/blob/master/error.go#L178
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

type LeadService struct {
	db *sql.DB
}

func NewLeadService(db *sql.DB) outreach.LeadService {
	return &LeadService{
		db: db,
	}
}

// CreateBatch streams the leads into the table with COPY inside one
// transaction, so either every lead is saved or none is.
func (ls LeadService) CreateBatch(ctx context.Context, leads []outreach.Lead) error {
	if len(leads) == 0 {
		return outreach.ErrEmptyBatch
	}

	tx, err := ls.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("leads",
		"id", "owner_id", "campaign_id",
		"name", "phone", "email", "company_name", "job_title", "source_url", "source_platform",
		"status", "created_at",
	))
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("preparing copy: %w", err)
	}

	for _, lead := range leads {
		_, err = stmt.ExecContext(ctx,
			lead.ID,
			lead.OwnerID,
			lead.CampaignID,
			nullString(lead.Name),
			nullString(lead.Phone),
			nullString(lead.Email),
			nullString(lead.CompanyName),
			nullString(lead.JobTitle),
			nullString(lead.SourceURL),
			nullString(lead.SourcePlatform),
			lead.Status,
			lead.CreatedAt,
		)
		if err != nil {
			stmt.Close()
			tx.Rollback()
			return mapLeadErr(err)
		}
	}

	// An argument-less Exec flushes the buffered rows.
	if _, err := stmt.ExecContext(ctx); err != nil {
		stmt.Close()
		tx.Rollback()
		return mapLeadErr(err)
	}

	if err := stmt.Close(); err != nil {
		tx.Rollback()
		return mapLeadErr(err)
	}

	return tx.Commit()
}

func mapLeadErr(err error) error {
	var pqerr *pq.Error
	if errors.As(err, &pqerr) {
		switch pqerr.Code {
		case uniqueViolation:
			return outreach.ErrDuplicatedLead
		case foreignKeyViolation:
			return outreach.ErrCampaignNotFound
		}
	}
	return err
}

// nullString stores absent attributes as NULL.
func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
