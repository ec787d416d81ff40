package outreach

import (
	"context"
	"errors"
	"time"
)

var (
	ErrDuplicatedLead = errors.New("lead already exists")
	ErrEmptyBatch     = errors.New("no leads to save")
)

// Lead statuses. Imported leads always start as pending; the remaining values are
// set by the outreach automation after the lead leaves this service.
const (
	LeadPending   = "pending"
	LeadContacted = "contacted"
	LeadConverted = "converted"
	LeadFailed    = "failed"
)

// Lead is the unit of persistence of the import pipeline. Optional contact
// attributes are empty strings when absent and are stored as NULL.
type Lead struct {
	ID             string    `json:"id"`
	OwnerID        string    `json:"owner_id"`
	CampaignID     string    `json:"campaign_id"`
	Name           string    `json:"name,omitempty"`
	Phone          string    `json:"phone,omitempty"`
	Email          string    `json:"email,omitempty"`
	CompanyName    string    `json:"company_name,omitempty"`
	JobTitle       string    `json:"job_title,omitempty"`
	SourceURL      string    `json:"source_url,omitempty"`
	SourcePlatform string    `json:"source_platform,omitempty"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

// LeadService persists leads. CreateBatch is all-or-nothing from the caller's
// point of view.
type LeadService interface {
	CreateBatch(ctx context.Context, leads []Lead) error
}
