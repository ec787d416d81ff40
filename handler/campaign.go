package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phbpx/outreach"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
)

type CampaignHandler struct {
	service   outreach.CampaignService
	dashboard outreach.DashboardService
	log       *otelzap.SugaredLogger
}

func NewCampaignHandler(service outreach.CampaignService, dashboard outreach.DashboardService, log *otelzap.SugaredLogger) *CampaignHandler {
	return &CampaignHandler{
		service:   service,
		dashboard: dashboard,
		log:       log,
	}
}

func (ch CampaignHandler) Create(rw http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := UserFromContext(ctx)
	if !ok {
		respondErr(ctx, rw, http.StatusUnauthorized, ErrMissingToken)
		return
	}

	var campaign outreach.Campaign
	if err := decode(r, &campaign); err != nil {
		ch.log.ErrorwContext(ctx, "Create", "error", err.Error())
		respondErr(ctx, rw, http.StatusBadRequest, err)
		return
	}

	if err := campaign.Validate(); err != nil {
		respondErr(ctx, rw, http.StatusBadRequest, err)
		return
	}

	now := time.Now().UTC()

	campaign.ID = uuid.NewString()
	campaign.OwnerID = user.ID
	campaign.CreatedAt = now
	campaign.ModifiedAt = now

	if err := ch.service.Create(ctx, campaign); err != nil {
		ch.log.ErrorwContext(ctx, "Create", "error", err.Error())
		respondErr(ctx, rw, http.StatusInternalServerError, err)
		return
	}

	respond(ctx, rw, http.StatusCreated, campaign)
}

func (ch CampaignHandler) List(rw http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := UserFromContext(ctx)
	if !ok {
		respondErr(ctx, rw, http.StatusUnauthorized, ErrMissingToken)
		return
	}

	campaigns, err := ch.service.List(ctx, user.ID)
	if err != nil {
		ch.log.ErrorwContext(ctx, "List", "error", err.Error())
		respondErr(ctx, rw, http.StatusInternalServerError, err)
		return
	}

	respond(ctx, rw, http.StatusOK, campaigns)
}

func (ch CampaignHandler) GetByID(rw http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := UserFromContext(ctx)
	if !ok {
		respondErr(ctx, rw, http.StatusUnauthorized, ErrMissingToken)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		ch.log.ErrorwContext(ctx, "GetByID", "error", err.Error())
		respondErr(ctx, rw, http.StatusBadRequest, errors.New("ID is not in its proper form"))
		return
	}

	campaign, err := ch.service.GetByID(ctx, user.ID, id.String())
	if err != nil {
		ch.log.ErrorwContext(ctx, "GetByID", "error", err.Error())
		switch {
		case errors.Is(err, outreach.ErrCampaignNotFound):
			respondErr(ctx, rw, http.StatusNotFound, err)
		default:
			respondErr(ctx, rw, http.StatusInternalServerError, err)
		}
		return
	}

	respond(ctx, rw, http.StatusOK, campaign)
}

func (ch CampaignHandler) Analytics(rw http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := UserFromContext(ctx)
	if !ok {
		respondErr(ctx, rw, http.StatusUnauthorized, ErrMissingToken)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondErr(ctx, rw, http.StatusBadRequest, errors.New("ID is not in its proper form"))
		return
	}

	analytics, err := ch.dashboard.CampaignAnalytics(ctx, user.ID, id.String())
	if err != nil {
		ch.log.ErrorwContext(ctx, "Analytics", "error", err.Error())
		switch {
		case errors.Is(err, outreach.ErrCampaignNotFound):
			respondErr(ctx, rw, http.StatusNotFound, err)
		default:
			respondErr(ctx, rw, http.StatusInternalServerError, err)
		}
		return
	}

	respond(ctx, rw, http.StatusOK, analytics)
}

func (ch CampaignHandler) Dashboard(rw http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := UserFromContext(ctx)
	if !ok {
		respondErr(ctx, rw, http.StatusUnauthorized, ErrMissingToken)
		return
	}

	summary, err := ch.dashboard.Summary(ctx, user.ID)
	if err != nil {
		ch.log.ErrorwContext(ctx, "Dashboard", "error", err.Error())
		respondErr(ctx, rw, http.StatusInternalServerError, err)
		return
	}

	respond(ctx, rw, http.StatusOK, summary)
}
