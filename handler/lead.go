package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phbpx/outreach"
	"github.com/phbpx/outreach/leadimport"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
)

// uploadMemory is how much of a multipart upload is kept in memory before
// spilling to temporary files. It is not a size limit.
const uploadMemory = 32 << 20

// Importer runs lead imports.
type Importer interface {
	Import(ctx context.Context, req leadimport.Request) (leadimport.Outcome, error)
}

type LeadHandler struct {
	importer  Importer
	campaigns outreach.CampaignService
	log       *otelzap.SugaredLogger
}

func NewLeadHandler(importer Importer, campaigns outreach.CampaignService, log *otelzap.SugaredLogger) *LeadHandler {
	return &LeadHandler{
		importer:  importer,
		campaigns: campaigns,
		log:       log,
	}
}

// Import takes a multipart upload with a single "file" part and imports it
// into the campaign named in the path.
func (lh LeadHandler) Import(rw http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := UserFromContext(ctx)
	if !ok {
		respondErr(ctx, rw, http.StatusUnauthorized, ErrMissingToken)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		lh.log.ErrorwContext(ctx, "Import", "error", err.Error())
		respondErr(ctx, rw, http.StatusBadRequest, errors.New("ID is not in its proper form"))
		return
	}

	campaign, err := lh.campaigns.GetByID(ctx, user.ID, id.String())
	if err != nil {
		lh.log.ErrorwContext(ctx, "Import", "error", err.Error())
		switch {
		case errors.Is(err, outreach.ErrCampaignNotFound):
			respondErr(ctx, rw, http.StatusNotFound, err)
		default:
			respondErr(ctx, rw, http.StatusInternalServerError, err)
		}
		return
	}

	if err := r.ParseMultipartForm(uploadMemory); err != nil {
		lh.log.ErrorwContext(ctx, "Import", "error", err.Error())
		respondErr(ctx, rw, http.StatusBadRequest, fmt.Errorf("reading upload: %w", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["file"]
	if len(files) != 1 {
		respondErr(ctx, rw, http.StatusBadRequest, errors.New("exactly one file is required"))
		return
	}

	f, err := files[0].Open()
	if err != nil {
		respondErr(ctx, rw, http.StatusBadRequest, err)
		return
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		respondErr(ctx, rw, http.StatusBadRequest, fmt.Errorf("reading upload: %w", err))
		return
	}

	out, err := lh.importer.Import(ctx, leadimport.Request{
		OwnerID:  user.ID,
		Campaign: campaign,
		FileName: files[0].Filename,
		Content:  content,
	})
	if err != nil {
		lh.log.ErrorwContext(ctx, "Import", "error", err.Error())
		respondErr(ctx, rw, http.StatusBadRequest, err)
		return
	}

	switch out.Phase {
	case leadimport.NoValidRecords:
		respond(ctx, rw, http.StatusUnprocessableEntity, out)
	case leadimport.PersistFailed:
		respond(ctx, rw, http.StatusInternalServerError, out)
	default:
		respond(ctx, rw, http.StatusOK, out)
	}
}
