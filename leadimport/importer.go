package leadimport

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phbpx/outreach"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var (
	ErrNotCSV          = errors.New("only .csv files can be imported")
	ErrMissingOwner    = errors.New("owner is required")
	ErrMissingCampaign = errors.New("campaign is required")
)

// Notification is what the automation endpoint receives after a successful
// import: who uploaded, into which campaign, and the file as uploaded.
type Notification struct {
	OwnerID  string
	Campaign outreach.Campaign
	FileName string
	Content  []byte
}

// Notifier delivers a Notification to the outreach automation.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// Request is one user submitted import.
type Request struct {
	OwnerID  string
	Campaign outreach.Campaign
	FileName string
	Content  []byte
}

func (r Request) validate() error {
	if !strings.EqualFold(filepath.Ext(r.FileName), ".csv") {
		return ErrNotCSV
	}
	if strings.TrimSpace(r.OwnerID) == "" {
		return ErrMissingOwner
	}
	if strings.TrimSpace(r.Campaign.ID) == "" {
		return ErrMissingCampaign
	}
	return nil
}

// Importer drives import attempts. Attempts are independent: nothing prevents
// two overlapping imports of the same file, each saving its own leads.
type Importer struct {
	leads    outreach.LeadService
	notifier Notifier
	log      *otelzap.SugaredLogger

	now   func() time.Time
	newID func() string
}

// New returns an Importer. A nil notifier skips the automation step.
func New(leads outreach.LeadService, notifier Notifier, log *otelzap.SugaredLogger) *Importer {
	return &Importer{
		leads:    leads,
		notifier: notifier,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
}

// Import runs one attempt to completion. The returned error only reports a
// malformed request; every failure after that is described by the Outcome.
func (im *Importer) Import(ctx context.Context, req Request) (Outcome, error) {
	if err := req.validate(); err != nil {
		return Outcome{}, err
	}

	ctx, span := otel.GetTracerProvider().Tracer("").Start(ctx, "leadimport.Import")
	defer span.End()

	a := Attempt{}.Start()
	a = a.WithParsed(Parse(string(req.Content)))

	span.SetAttributes(
		attribute.String("campaign.id", req.Campaign.ID),
		attribute.Int("import.records", len(a.Parsed.Records)),
		attribute.Int("import.rejected", len(a.Parsed.Diagnostics)),
	)

	if a.Phase == NoValidRecords {
		im.log.InfowContext(ctx, "Import", "status", "no valid leads", "campaign", req.Campaign.ID, "rejected", len(a.Parsed.Diagnostics))
		record(a, nil)
		return a.Outcome, nil
	}

	err := im.leads.CreateBatch(ctx, im.leadsOf(req, a.Parsed.Records))
	a = a.WithPersisted(err)
	if a.Phase == PersistFailed {
		im.log.ErrorwContext(ctx, "Import", "status", "saving leads", "campaign", req.Campaign.ID, "error", err.Error())
		record(a, nil)
		return a.Outcome, nil
	}

	notifyErr := <-im.notify(ctx, req)
	if notifyErr != nil {
		im.log.ErrorwContext(ctx, "Import", "status", "notifying automation", "campaign", req.Campaign.ID, "error", notifyErr.Error())
	}

	a = a.WithNotified(notifyErr)
	im.log.InfowContext(ctx, "Import", "status", "leads imported", "campaign", req.Campaign.ID, "imported", a.Outcome.Imported)
	record(a, notifyErr)

	return a.Outcome, nil
}

// notify runs the automation call as a detached task. It is not cancelled with
// the caller and its result is only ever used to annotate the outcome.
func (im *Importer) notify(ctx context.Context, req Request) <-chan error {
	done := make(chan error, 1)
	if im.notifier == nil {
		done <- nil
		return done
	}

	n := Notification{
		OwnerID:  req.OwnerID,
		Campaign: req.Campaign,
		FileName: req.FileName,
		Content:  req.Content,
	}

	ctx = context.WithoutCancel(ctx)
	go func() {
		done <- im.notifier.Notify(ctx, n)
	}()

	return done
}

func (im *Importer) leadsOf(req Request, records []Record) []outreach.Lead {
	now := im.now()

	leads := make([]outreach.Lead, 0, len(records))
	for _, r := range records {
		leads = append(leads, outreach.Lead{
			ID:             im.newID(),
			OwnerID:        req.OwnerID,
			CampaignID:     req.Campaign.ID,
			Name:           r.Name,
			Phone:          r.Phone,
			Email:          r.Email,
			CompanyName:    r.CompanyName,
			JobTitle:       r.JobTitle,
			SourceURL:      r.SourceURL,
			SourcePlatform: r.SourcePlatform,
			Status:         outreach.LeadPending,
			CreatedAt:      now,
		})
	}
	return leads
}
