package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/volunteer/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{
		BaseURL:     srv.URL,
		APIKey:      "anon-key",
		AccessToken: "user-token",
	})
}

func TestListActivitiesMapsRows(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/rest/v1/Activitati", r.URL.Path)
		require.Equal(t, "*", r.URL.Query().Get("select"))
		require.Equal(t, "anon-key", r.Header.Get("apikey"))
		require.Equal(t, "Bearer user-token", r.Header.Get("Authorization"))

		rows := []map[string]any{
			{
				"id":              1,
				"Nume":            "Park cleanup",
				"Descriere":       "Bring gloves",
				"Data":            "2024-05-01",
				"Ore":             3,
				"Organizatori":    "Maria",
				"Locatie":         "Central Park",
				"Ora Organizarii": "09:00",
			},
			{
				"id":   "7",
				"Nume": "Tutoring",
				"Ore":  "2.5",
			},
		}
		_ = json.NewEncoder(w).Encode(rows)
	})

	activities, err := client.ListActivities(context.Background())
	require.NoError(t, err)
	require.Len(t, activities, 2)

	first := activities[0]
	require.Equal(t, "1", first.ID)
	require.Equal(t, "Park cleanup", first.Name)
	require.Equal(t, "Bring gloves", first.Description)
	require.Equal(t, "2024-05-01", first.Date)
	require.InDelta(t, 3.0, first.Hours, 1e-9)
	require.Equal(t, "Maria", first.Organiser)
	require.Equal(t, "Central Park", first.Location)
	require.Equal(t, "09:00", first.TimeSlot)

	// Numeric-as-string IDs and hours coerce; missing date defaults to today.
	second := activities[1]
	require.Equal(t, "7", second.ID)
	require.InDelta(t, 2.5, second.Hours, 1e-9)
	require.Equal(t, time.Now().Format("2006-01-02"), second.Date)
}

func TestListActivitiesNonNumericHoursCountAsZero(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]map[string]any{{"id": 1, "Nume": "X", "Ore": "lots"}})
	})

	activities, err := client.ListActivities(context.Background())
	require.NoError(t, err)
	require.Zero(t, activities[0].Hours)
}

func TestCreateActivitySendsRepresentationPrefer(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "return=representation", r.Header.Get("Prefer"))

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Equal(t, "Blood drive", payload["Nume"])
		require.Nil(t, payload["Locatie"])

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode([]map[string]any{{"id": 42, "Nume": "Blood drive", "Data": "2024-06-01", "Ore": 5}})
	})

	created, err := client.CreateActivity(context.Background(), domain.ActivityDraft{
		Name:  "Blood drive",
		Date:  "2024-06-01",
		Hours: 5,
	})
	require.NoError(t, err)
	require.Equal(t, "42", created.ID)
	require.InDelta(t, 5.0, created.Hours, 1e-9)
}

func TestDeleteActivityFiltersByID(t *testing.T) {
	var gotQuery string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		gotQuery = r.URL.Query().Get("id")
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, client.DeleteActivity(context.Background(), "42"))
	require.Equal(t, "eq.42", gotQuery)
}

func TestLookupVolunteerNoRowsMeansNil(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "eq.ana@example.com", r.URL.Query().Get("Email"))
		_ = json.NewEncoder(w).Encode([]map[string]any{})
	})

	record, err := client.LookupVolunteerByEmail(context.Background(), "ana@example.com")
	require.NoError(t, err)
	require.Nil(t, record)
}

func TestUpsertVolunteerPatchesExistingRow(t *testing.T) {
	var methods []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		methods = append(methods, r.Method)
		switch r.Method {
		case http.MethodGet:
			_ = json.NewEncoder(w).Encode([]map[string]any{{"id": 9, "Email": "ana@example.com", "OreVoluntariat": 3}})
		case http.MethodPatch:
			require.Equal(t, "eq.9", r.URL.Query().Get("id"))
			var payload map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			require.InDelta(t, 8.0, payload["OreVoluntariat"].(float64), 1e-9)
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Fatalf("unexpected method %s", r.Method)
		}
	})

	err := client.UpsertVolunteer(context.Background(), domain.VolunteerRecord{
		FullName: "Ana Pop",
		Email:    "ana@example.com",
		Hours:    8,
	})
	require.NoError(t, err)
	require.Equal(t, []string{http.MethodGet, http.MethodPatch}, methods)
}

func TestUpsertVolunteerInsertsWhenMissing(t *testing.T) {
	var methods []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		methods = append(methods, r.Method)
		switch r.Method {
		case http.MethodGet:
			_ = json.NewEncoder(w).Encode([]map[string]any{})
		case http.MethodPost:
			var payload map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			require.Equal(t, "ana@example.com", payload["Email"])
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode([]map[string]any{{"id": 10}})
		default:
			t.Fatalf("unexpected method %s", r.Method)
		}
	})

	err := client.UpsertVolunteer(context.Background(), domain.VolunteerRecord{
		FullName: "Ana Pop",
		Email:    "ana@example.com",
		Hours:    2,
	})
	require.NoError(t, err)
	require.Equal(t, []string{http.MethodGet, http.MethodPost}, methods)
}

func TestLookupPrivilegeByEmail(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Privilegii", r.URL.Query().Get("select"))
		_ = json.NewEncoder(w).Encode([]map[string]any{{"Privilegii": "Owner"}})
	})

	rank, err := client.LookupPrivilegeByEmail(context.Background(), "ana@example.com")
	require.NoError(t, err)
	require.Equal(t, domain.RankOwner, rank)
}

func TestStatusErrorCarriesBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"permission denied"}`, http.StatusForbidden)
	})

	_, err := client.ListActivities(context.Background())
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusForbidden, statusErr.Status)
	require.Contains(t, statusErr.Body, "permission denied")
}

func TestTransportFailureIsErrUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewClient(Config{BaseURL: srv.URL, APIKey: "anon-key"})
	_, err := client.ListActivities(context.Background())
	require.True(t, errors.Is(err, ErrUnavailable))
}

func TestBearerFallsBackToAPIKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer anon-key", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode([]map[string]any{})
	}))
	t.Cleanup(srv.Close)

	client := NewClient(Config{BaseURL: srv.URL, APIKey: "anon-key"})
	_, err := client.ListActivities(context.Background())
	require.NoError(t, err)
}
