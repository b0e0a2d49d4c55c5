package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"example.com/volunteer/internal/domain"
)

type fakeCatalog struct {
	activities []domain.Activity
	listErr    error
}

func (f *fakeCatalog) ListActivities(context.Context) ([]domain.Activity, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]domain.Activity(nil), f.activities...), nil
}

func (f *fakeCatalog) CreateActivity(_ context.Context, draft domain.ActivityDraft) (*domain.Activity, error) {
	return nil, errors.New("not supported in dashboard tests")
}

func (f *fakeCatalog) DeleteActivity(context.Context, string) error {
	return errors.New("not supported in dashboard tests")
}

type memoryState struct {
	joined   []string
	payments []domain.Payment
}

func (m *memoryState) LoadJoined() ([]string, error) { return m.joined, nil }
func (m *memoryState) SaveJoined(ids []string) error {
	m.joined = ids
	return nil
}
func (m *memoryState) LoadPayments() ([]domain.Payment, error) { return m.payments, nil }
func (m *memoryState) SavePayments(payments []domain.Payment) error {
	m.payments = payments
	return nil
}

type testWriter struct {
	t *testing.T
}

func (tw testWriter) Write(p []byte) (int, error) {
	tw.t.Log(strings.TrimSpace(string(p)))
	return len(p), nil
}

func newTestRouter(t *testing.T, catalog *fakeCatalog, state *memoryState) (chi.Router, *domain.Service) {
	t.Helper()
	logger := log.New(testWriter{t}, "", 0)
	service := domain.NewService(catalog, state, nil, domain.WithLogger(logger))
	require.NoError(t, service.Load(context.Background()))

	router := chi.NewRouter()
	NewHandler(service, logger).RegisterRoutes(router)
	return router, service
}

func seededCatalog() *fakeCatalog {
	return &fakeCatalog{activities: []domain.Activity{
		{ID: "1", Name: "Park cleanup", Date: "2024-05-01", Hours: 3},
		{ID: "2", Name: "Tutoring", Date: "2024-05-08", Hours: 2},
	}}
}

func doRequest(router chi.Router, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestCatalogEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, seededCatalog(), &memoryState{})

	rec := doRequest(router, http.MethodGet, "/v1/catalog")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp CatalogResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 2)
	require.Equal(t, "Park cleanup", resp.Items[0].Name)
}

func TestMineEndpointDerivesFromJoinedSet(t *testing.T) {
	router, _ := newTestRouter(t, seededCatalog(), &memoryState{joined: []string{"2"}})

	rec := doRequest(router, http.MethodGet, "/v1/mine")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp MineResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 1)
	require.Equal(t, "2", resp.Items[0].ID)
	require.InDelta(t, 2.0, resp.TotalHours, 1e-9)
}

func TestHoursEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, seededCatalog(), &memoryState{joined: []string{"1", "2"}})

	rec := doRequest(router, http.MethodGet, "/v1/hours")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp HoursResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.InDelta(t, 5.0, resp.TotalHours, 1e-9)
	require.Equal(t, 2, resp.Joined)
}

func TestPaymentsEndpointSortsNewestFirst(t *testing.T) {
	state := &memoryState{payments: []domain.Payment{
		{ID: "a", Amount: 5, Date: "2024-01-05"},
		{ID: "b", Amount: 10, Date: "2024-03-01"},
	}}
	router, _ := newTestRouter(t, seededCatalog(), state)

	rec := doRequest(router, http.MethodGet, "/v1/payments")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp PaymentsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "b", resp.Items[0].ID)
	require.InDelta(t, 15.0, resp.TotalPaid, 1e-9)
}

func TestReloadEndpointReportsUpstreamFailure(t *testing.T) {
	catalog := seededCatalog()
	router, _ := newTestRouter(t, catalog, &memoryState{})

	catalog.listErr = errors.New("connection refused")
	rec := doRequest(router, http.MethodPost, "/v1/reload")
	require.Equal(t, http.StatusBadGateway, rec.Code)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Equal(t, "upstream_unavailable", payload["type"])
	// The detail stays generic, transport errors are only logged.
	require.NotContains(t, payload["detail"], "connection refused")

	// The previous catalog keeps serving.
	rec = doRequest(router, http.MethodGet, "/v1/catalog")
	var resp CatalogResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 2)
}

func TestReloadEndpointSuccess(t *testing.T) {
	catalog := seededCatalog()
	router, _ := newTestRouter(t, catalog, &memoryState{joined: []string{"1"}})

	catalog.activities = append(catalog.activities, domain.Activity{ID: "3", Name: "Food drive", Hours: 4})
	rec := doRequest(router, http.MethodPost, "/v1/reload")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(router, http.MethodGet, "/v1/catalog")
	var resp CatalogResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 3)
}

func TestHealthz(t *testing.T) {
	router, _ := newTestRouter(t, seededCatalog(), &memoryState{})

	rec := doRequest(router, http.MethodGet, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", rec.Body.String())
}
