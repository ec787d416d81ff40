package outreach

import "context"

// LeadStat is the projection of a lead the analytics views aggregate over.
type LeadStat struct {
	Status         string
	SourcePlatform string
}

// LeadTotals is the in-memory aggregate of a set of leads.
type LeadTotals struct {
	Total           int            `json:"total"`
	LeadsByStatus   map[string]int `json:"leads_by_status"`
	LeadsByPlatform map[string]int `json:"leads_by_platform"`
	ContactRate     float64        `json:"contact_rate"`
}

type DashboardSummary struct {
	TotalCampaigns  int            `json:"total_campaigns"`
	ActiveCampaigns int            `json:"active_campaigns"`
	TotalLeads      int            `json:"total_leads"`
	LeadsByStatus   map[string]int `json:"leads_by_status"`
	ContactRate     float64        `json:"contact_rate"`
}

type CampaignAnalytics struct {
	CampaignID string `json:"campaign_id"`
	LeadTotals
}

// DashboardService serves the read side. Implementations issue independent
// reads, so counters may reflect different instants.
type DashboardService interface {
	Summary(ctx context.Context, ownerID string) (DashboardSummary, error)
	CampaignAnalytics(ctx context.Context, ownerID, campaignID string) (CampaignAnalytics, error)
}

// UnknownPlatform buckets leads imported without a source platform.
const UnknownPlatform = "unknown"

// AggregateLeads counts leads per status and per platform. Every lead that is
// no longer pending counts as contacted.
func AggregateLeads(stats []LeadStat) LeadTotals {
	totals := LeadTotals{
		Total:           len(stats),
		LeadsByStatus:   make(map[string]int),
		LeadsByPlatform: make(map[string]int),
	}

	for _, s := range stats {
		totals.LeadsByStatus[s.Status]++

		platform := s.SourcePlatform
		if platform == "" {
			platform = UnknownPlatform
		}
		totals.LeadsByPlatform[platform]++
	}

	totals.ContactRate = ContactRate(totals.LeadsByStatus)
	return totals
}

// ContactRate returns the share of non-pending leads, 0 when there are none.
func ContactRate(byStatus map[string]int) float64 {
	var total, pending int
	for status, n := range byStatus {
		total += n
		if status == LeadPending {
			pending += n
		}
	}
	if total == 0 {
		return 0
	}
	return float64(total-pending) / float64(total)
}

// Summarize folds the independently read campaign list and lead counts into
// the dashboard counters.
func Summarize(campaigns []Campaign, byStatus map[string]int) DashboardSummary {
	summary := DashboardSummary{
		TotalCampaigns: len(campaigns),
		LeadsByStatus:  byStatus,
		ContactRate:    ContactRate(byStatus),
	}
	if summary.LeadsByStatus == nil {
		summary.LeadsByStatus = make(map[string]int)
	}

	for _, c := range campaigns {
		if c.Status == CampaignActive {
			summary.ActiveCampaigns++
		}
	}
	for _, n := range summary.LeadsByStatus {
		summary.TotalLeads += n
	}

	return summary
}
