package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/phbpx/outreach"
	"github.com/phbpx/outreach/leadimport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

const (
	testSecret   = "test-secret"
	testIssuer   = "outreach-auth"
	testCampaign = "5f0c7f5e-3a53-4a3e-9d2b-0d8a6c1c2f10"
)

type fakeCampaigns struct {
	created []outreach.Campaign
	byID    map[string]outreach.Campaign
	err     error
}

func (f *fakeCampaigns) Create(ctx context.Context, c outreach.Campaign) error {
	f.created = append(f.created, c)
	return f.err
}

func (f *fakeCampaigns) GetByID(ctx context.Context, ownerID, id string) (outreach.Campaign, error) {
	c, ok := f.byID[id]
	if !ok || c.OwnerID != ownerID {
		return outreach.Campaign{}, outreach.ErrCampaignNotFound
	}
	return c, nil
}

func (f *fakeCampaigns) List(ctx context.Context, ownerID string) ([]outreach.Campaign, error) {
	var out []outreach.Campaign
	for _, c := range f.byID {
		if c.OwnerID == ownerID {
			out = append(out, c)
		}
	}
	return out, f.err
}

type fakeLeads struct {
	err   error
	saved []outreach.Lead
}

func (f *fakeLeads) CreateBatch(ctx context.Context, leads []outreach.Lead) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, leads...)
	return nil
}

type fakeDashboard struct {
	stats []outreach.LeadStat
}

func (f fakeDashboard) Summary(ctx context.Context, ownerID string) (outreach.DashboardSummary, error) {
	return outreach.Summarize(nil, map[string]int{"pending": len(f.stats)}), nil
}

func (f fakeDashboard) CampaignAnalytics(ctx context.Context, ownerID, campaignID string) (outreach.CampaignAnalytics, error) {
	if campaignID != testCampaign {
		return outreach.CampaignAnalytics{}, outreach.ErrCampaignNotFound
	}
	return outreach.CampaignAnalytics{CampaignID: campaignID, LeadTotals: outreach.AggregateLeads(f.stats)}, nil
}

type failingNotifier struct{}

func (failingNotifier) Notify(ctx context.Context, n leadimport.Notification) error {
	return errors.New("webhook returned 500: boom")
}

func token(t *testing.T, subject string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    testIssuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	s, err := tok.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

type testAPI struct {
	router    http.Handler
	campaigns *fakeCampaigns
	leads     *fakeLeads
}

func newTestAPI(notifier leadimport.Notifier) testAPI {
	log := otelzap.New(zap.NewNop()).Sugar()

	campaigns := &fakeCampaigns{byID: map[string]outreach.Campaign{
		testCampaign: {ID: testCampaign, OwnerID: "user-1", Name: "Spring", Channel: outreach.ChannelSMS, Status: outreach.CampaignActive},
	}}
	leads := &fakeLeads{}
	dashboard := fakeDashboard{stats: []outreach.LeadStat{{Status: "pending"}, {Status: "contacted", SourcePlatform: "linkedin"}}}

	importer := leadimport.New(leads, notifier, log)
	leadHandler := NewLeadHandler(importer, campaigns, log)
	campaignHandler := NewCampaignHandler(campaigns, dashboard, log)
	auth := NewAuthenticator(testSecret, testIssuer)

	r := chi.NewRouter()
	r.Use(Metrics)
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware)
		r.Get("/dashboard", campaignHandler.Dashboard)
		r.Route("/campaigns", func(r chi.Router) {
			r.Post("/", campaignHandler.Create)
			r.Get("/", campaignHandler.List)
			r.Get("/{id}", campaignHandler.GetByID)
			r.Get("/{id}/analytics", campaignHandler.Analytics)
			r.Post("/{id}/imports", leadHandler.Import)
		})
	})

	return testAPI{router: r, campaigns: campaigns, leads: leads}
}

func uploadRequest(t *testing.T, path, fileName, content, bearer string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+bearer)
	return req
}

func decodeOutcome(t *testing.T, rec *httptest.ResponseRecorder) leadimport.Outcome {
	t.Helper()
	var out leadimport.Outcome
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func TestImportSuccessWithWebhookFailure(t *testing.T) {
	api := newTestAPI(failingNotifier{})

	rec := httptest.NewRecorder()
	req := uploadRequest(t, "/campaigns/"+testCampaign+"/imports", "leads.csv",
		"name,phone\nAlice,555-0100\n,\nBob,\n", token(t, "user-1"))
	api.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	out := decodeOutcome(t, rec)
	assert.True(t, out.Success)
	assert.Equal(t, 2, out.Imported)
	assert.Equal(t, []string{
		"Row 3: Missing required data (name, phone, or email)",
		leadimport.NoteAutomationFailed,
		"Webhook error: webhook returned 500: boom",
	}, out.Diagnostics)

	require.Len(t, api.leads.saved, 2)
	assert.Equal(t, "user-1", api.leads.saved[0].OwnerID)
	assert.Equal(t, testCampaign, api.leads.saved[0].CampaignID)
}

func TestImportNoValidLeads(t *testing.T) {
	api := newTestAPI(nil)

	rec := httptest.NewRecorder()
	req := uploadRequest(t, "/campaigns/"+testCampaign+"/imports", "leads.csv", "name,phone\n", token(t, "user-1"))
	api.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	out := decodeOutcome(t, rec)
	assert.False(t, out.Success)
	assert.Equal(t, leadimport.MsgNoValidLeads, out.Message)
	assert.Empty(t, api.leads.saved)
}

func TestImportPersistFailure(t *testing.T) {
	api := newTestAPI(nil)
	api.leads.err = errors.New("db down")

	rec := httptest.NewRecorder()
	req := uploadRequest(t, "/campaigns/"+testCampaign+"/imports", "leads.csv", "email\na@example.com\n", token(t, "user-1"))
	api.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	out := decodeOutcome(t, rec)
	assert.False(t, out.Success)
	assert.Equal(t, "Failed to save leads: db down", out.Message)
}

func TestImportRejectsNonCSV(t *testing.T) {
	api := newTestAPI(nil)

	rec := httptest.NewRecorder()
	req := uploadRequest(t, "/campaigns/"+testCampaign+"/imports", "leads.txt", "name\nAlice\n", token(t, "user-1"))
	api.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, api.leads.saved)
}

func TestImportOtherOwnersCampaign(t *testing.T) {
	api := newTestAPI(nil)

	rec := httptest.NewRecorder()
	req := uploadRequest(t, "/campaigns/"+testCampaign+"/imports", "leads.csv", "name\nAlice\n", token(t, "user-2"))
	api.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAuthRequired(t *testing.T) {
	api := newTestAPI(nil)

	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/campaigns", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/campaigns", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	api.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticatorRejectsWrongIssuer(t *testing.T) {
	other := NewAuthenticator(testSecret, "someone-else")

	_, err := other.Verify(token(t, "user-1"))
	assert.ErrorIs(t, err, ErrInvalidToken)

	u, err := NewAuthenticator(testSecret, testIssuer).Verify(token(t, "user-1"))
	require.NoError(t, err)
	assert.Equal(t, "user-1", u.ID)
}

func TestCreateCampaign(t *testing.T) {
	api := newTestAPI(nil)

	body := bytes.NewBufferString(`{"name":"Webinar follow-up","channel":"Email"}`)
	req := httptest.NewRequest(http.MethodPost, "/campaigns", body)
	req.Header.Set("Authorization", "Bearer "+token(t, "user-1"))
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, api.campaigns.created, 1)

	created := api.campaigns.created[0]
	assert.Equal(t, "user-1", created.OwnerID)
	assert.Equal(t, outreach.ChannelEmail, created.Channel)
	assert.Equal(t, outreach.CampaignDraft, created.Status)
	assert.NotEmpty(t, created.ID)
}

func TestCreateCampaignInvalid(t *testing.T) {
	api := newTestAPI(nil)

	body := bytes.NewBufferString(`{"name":"x","channel":"pigeon"}`)
	req := httptest.NewRequest(http.MethodPost, "/campaigns", body)
	req.Header.Set("Authorization", "Bearer "+token(t, "user-1"))
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, api.campaigns.created)
}

func TestGetCampaignBadID(t *testing.T) {
	api := newTestAPI(nil)

	req := httptest.NewRequest(http.MethodGet, "/campaigns/not-a-uuid", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, "user-1"))
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCampaignAnalytics(t *testing.T) {
	api := newTestAPI(nil)

	req := httptest.NewRequest(http.MethodGet, "/campaigns/"+testCampaign+"/analytics", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, "user-1"))
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got outreach.CampaignAnalytics
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, testCampaign, got.CampaignID)
	assert.Equal(t, 2, got.Total)
	assert.InDelta(t, 0.5, got.ContactRate, 1e-9)
}

func TestDashboard(t *testing.T) {
	api := newTestAPI(nil)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, "user-1"))
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got outreach.DashboardSummary
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, 2, got.TotalLeads)
}

func TestReadiness(t *testing.T) {
	ok := NewHealthHandler(func(ctx context.Context) error { return nil })
	rec := httptest.NewRecorder()
	ok.Readiness(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	down := NewHealthHandler(func(ctx context.Context) error { return errors.New("no db") })
	rec = httptest.NewRecorder()
	down.Readiness(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
