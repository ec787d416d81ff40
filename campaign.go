package outreach

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrCampaignNotFound = errors.New("campaign not found")
	ErrInvalidCampaign  = errors.New("invalid campaign")
)

// Campaign channels.
const (
	ChannelCall     = "call"
	ChannelSMS      = "sms"
	ChannelWhatsApp = "whatsapp"
	ChannelEmail    = "email"
)

// Campaign statuses.
const (
	CampaignDraft     = "draft"
	CampaignActive    = "active"
	CampaignPaused    = "paused"
	CampaignCompleted = "completed"
)

type Campaign struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Channel     string    `json:"channel"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	ModifiedAt  time.Time `json:"modified_at"`
}

// Validate normalizes the campaign in place and reports whether it can be stored.
func (c *Campaign) Validate() error {
	c.Name = strings.TrimSpace(c.Name)
	c.Channel = strings.ToLower(strings.TrimSpace(c.Channel))
	c.Status = strings.ToLower(strings.TrimSpace(c.Status))

	if c.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidCampaign)
	}

	switch c.Channel {
	case ChannelCall, ChannelSMS, ChannelWhatsApp, ChannelEmail:
	default:
		return fmt.Errorf("%w: unknown channel %q", ErrInvalidCampaign, c.Channel)
	}

	switch c.Status {
	case "":
		c.Status = CampaignDraft
	case CampaignDraft, CampaignActive, CampaignPaused, CampaignCompleted:
	default:
		return fmt.Errorf("%w: unknown status %q", ErrInvalidCampaign, c.Status)
	}

	return nil
}

type CampaignService interface {
	Create(ctx context.Context, c Campaign) error
	GetByID(ctx context.Context, ownerID, id string) (Campaign, error)
	List(ctx context.Context, ownerID string) ([]Campaign, error)
}
