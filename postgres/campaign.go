package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/phbpx/outreach"
)

type CampaignService struct {
	db *sql.DB
}

func NewCampaignService(db *sql.DB) outreach.CampaignService {
	return &CampaignService{
		db: db,
	}
}

func (cs CampaignService) Create(ctx context.Context, c outreach.Campaign) error {
	query := `
	INSERT INTO campaigns (
		id, owner_id, name, description, channel, status, created_at, modified_at
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8
	)`

	_, err := cs.db.ExecContext(ctx, query,
		c.ID,
		c.OwnerID,
		c.Name,
		nullString(c.Description),
		c.Channel,
		c.Status,
		c.CreatedAt,
		c.ModifiedAt,
	)
	return err
}

const selectCampaign = `
	SELECT
		id,
		owner_id,
		name,
		COALESCE(description, ''),
		channel,
		status,
		created_at,
		modified_at
	FROM campaigns`

func (cs CampaignService) GetByID(ctx context.Context, ownerID, id string) (outreach.Campaign, error) {
	query := selectCampaign + `
	WHERE owner_id=$1 AND id=$2`

	c, err := scanCampaign(cs.db.QueryRowContext(ctx, query, ownerID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c, outreach.ErrCampaignNotFound
		}
		return c, err
	}

	return c, nil
}

func (cs CampaignService) List(ctx context.Context, ownerID string) ([]outreach.Campaign, error) {
	query := selectCampaign + `
	WHERE owner_id=$1
	ORDER BY created_at DESC`

	rows, err := cs.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	campaigns := []outreach.Campaign{}
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, c)
	}

	return campaigns, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanCampaign(row scanner) (outreach.Campaign, error) {
	c := outreach.Campaign{}
	err := row.Scan(
		&c.ID,
		&c.OwnerID,
		&c.Name,
		&c.Description,
		&c.Channel,
		&c.Status,
		&c.CreatedAt,
		&c.ModifiedAt,
	)
	return c, err
}
