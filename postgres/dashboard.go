package postgres

import (
	"context"
	"database/sql"

	"github.com/phbpx/outreach"
	"golang.org/x/sync/errgroup"
)

// DashboardService reads the counters behind the dashboard and analytics
// views. The queries run outside a transaction and may observe different
// instants.
type DashboardService struct {
	db        *sql.DB
	campaigns outreach.CampaignService
}

func NewDashboardService(db *sql.DB, campaigns outreach.CampaignService) outreach.DashboardService {
	return &DashboardService{
		db:        db,
		campaigns: campaigns,
	}
}

func (ds DashboardService) Summary(ctx context.Context, ownerID string) (outreach.DashboardSummary, error) {
	var (
		campaigns []outreach.Campaign
		byStatus  map[string]int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		campaigns, err = ds.campaigns.List(gctx, ownerID)
		return err
	})
	g.Go(func() error {
		var err error
		byStatus, err = ds.countByStatus(gctx, ownerID)
		return err
	})
	if err := g.Wait(); err != nil {
		return outreach.DashboardSummary{}, err
	}

	return outreach.Summarize(campaigns, byStatus), nil
}

func (ds DashboardService) countByStatus(ctx context.Context, ownerID string) (map[string]int, error) {
	query := `
	SELECT
		status,
		count(*)
	FROM leads
	WHERE owner_id=$1
	GROUP BY status`

	rows, err := ds.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byStatus := make(map[string]int)
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		byStatus[status] = n
	}

	return byStatus, rows.Err()
}

func (ds DashboardService) CampaignAnalytics(ctx context.Context, ownerID, campaignID string) (outreach.CampaignAnalytics, error) {
	if _, err := ds.campaigns.GetByID(ctx, ownerID, campaignID); err != nil {
		return outreach.CampaignAnalytics{}, err
	}

	query := `
	SELECT
		status,
		COALESCE(source_platform, '')
	FROM leads
	WHERE owner_id=$1 AND campaign_id=$2`

	rows, err := ds.db.QueryContext(ctx, query, ownerID, campaignID)
	if err != nil {
		return outreach.CampaignAnalytics{}, err
	}
	defer rows.Close()

	var stats []outreach.LeadStat
	for rows.Next() {
		var s outreach.LeadStat
		if err := rows.Scan(&s.Status, &s.SourcePlatform); err != nil {
			return outreach.CampaignAnalytics{}, err
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return outreach.CampaignAnalytics{}, err
	}

	return outreach.CampaignAnalytics{
		CampaignID: campaignID,
		LeadTotals: outreach.AggregateLeads(stats),
	}, nil
}
