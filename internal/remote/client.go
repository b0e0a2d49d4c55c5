// Package remote translates between the engine's domain shapes and the
// hosted backend's tabular row API. Calls are plain request/response
// over HTTPS with an API key header and bearer token; there are no
// retries, a failed call surfaces immediately to the caller.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"example.com/volunteer/internal/domain"
	"example.com/volunteer/internal/observability"
)

// ErrUnavailable indicates a transport-level failure reaching the
// backend.
var ErrUnavailable = errors.New("remote store unreachable")

// StatusError reports a non-2xx response, keeping status and body for
// diagnostics. User-facing layers log it and show a generic message.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("remote store rejected request: status %d: %s", e.Status, e.Body)
}

// Config carries connection parameters for the hosted backend.
type Config struct {
	BaseURL string
	APIKey  string
	// AccessToken, when set, is sent as the bearer token; otherwise the
	// API key doubles as the bearer like the anonymous web client.
	AccessToken     string
	ActivitiesTable string
	VolunteersTable string
	Timeout         time.Duration
}

// Client is a thin adapter over the backend's row API.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient constructs a Client with sane defaults.
func NewClient(cfg Config) *Client {
	if cfg.ActivitiesTable == "" {
		cfg.ActivitiesTable = "Activitati"
	}
	if cfg.VolunteersTable == "" {
		cfg.VolunteersTable = "Voluntari"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// ListActivities fetches the full catalog. The whole list is always
// reloaded; there is no pagination or incremental sync.
func (c *Client) ListActivities(ctx context.Context) ([]domain.Activity, error) {
	query := url.Values{"select": {"*"}}
	data, err := c.do(ctx, "list_activities", http.MethodGet, c.tablePath(c.cfg.ActivitiesTable), query, nil, "")
	if err != nil {
		return nil, err
	}

	var rows []map[string]any
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decode activities: %w", err)
	}

	activities := make([]domain.Activity, 0, len(rows))
	for _, row := range rows {
		activities = append(activities, mapActivity(row))
	}
	return activities, nil
}

// CreateActivity inserts a hosted activity and returns the stored row
// with its assigned identifier.
func (c *Client) CreateActivity(ctx context.Context, draft domain.ActivityDraft) (*domain.Activity, error) {
	payload := map[string]any{
		colName:        draft.Name,
		colDescription: draft.Description,
		colDate:        draft.Date,
		colHours:       draft.Hours,
		colLocation:    nullable(draft.Location),
		colOrganiser:   nullable(draft.Organiser),
		colTimeSlot:    nullable(draft.TimeSlot),
	}
	query := url.Values{"select": {"*"}}
	data, err := c.do(ctx, "create_activity", http.MethodPost, c.tablePath(c.cfg.ActivitiesTable), query, payload, "return=representation")
	if err != nil {
		return nil, err
	}

	var rows []map[string]any
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decode inserted activity: %w", err)
	}
	if len(rows) == 0 {
		return nil, errors.New("insert returned no row")
	}
	activity := mapActivity(rows[0])
	return &activity, nil
}

// DeleteActivity removes a hosted activity by identifier.
func (c *Client) DeleteActivity(ctx context.Context, id string) error {
	query := url.Values{"id": {"eq." + id}}
	_, err := c.do(ctx, "delete_activity", http.MethodDelete, c.tablePath(c.cfg.ActivitiesTable), query, nil, "")
	return err
}

// LookupVolunteerByEmail returns the volunteer row for email, or nil
// when no row matches.
func (c *Client) LookupVolunteerByEmail(ctx context.Context, email string) (*domain.VolunteerRecord, error) {
	query := url.Values{colEmail: {"eq." + email}, "select": {"*"}}
	data, err := c.do(ctx, "lookup_volunteer", http.MethodGet, c.tablePath(c.cfg.VolunteersTable), query, nil, "")
	if err != nil {
		return nil, err
	}

	var rows []map[string]any
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decode volunteer: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	record := mapVolunteer(rows[0])
	return &record, nil
}

// UpsertVolunteer stores the volunteer's display name and accumulated
// hours: the existing row is updated when one matches the email, and a
// new row inserted otherwise. The read-modify-write is deliberately not
// transactional; concurrent writers race and the last one wins.
func (c *Client) UpsertVolunteer(ctx context.Context, record domain.VolunteerRecord) error {
	existing, err := c.LookupVolunteerByEmail(ctx, record.Email)
	if err != nil {
		return err
	}

	payload := map[string]any{
		colFullName:   record.FullName,
		colEmail:      record.Email,
		colTotalHours: record.Hours,
	}

	if existing != nil {
		query := url.Values{"id": {"eq." + existing.ID}}
		_, err = c.do(ctx, "update_volunteer", http.MethodPatch, c.tablePath(c.cfg.VolunteersTable), query, payload, "")
		return err
	}

	query := url.Values{"select": {"*"}}
	_, err = c.do(ctx, "insert_volunteer", http.MethodPost, c.tablePath(c.cfg.VolunteersTable), query, payload, "return=representation")
	return err
}

// LookupPrivilegeByEmail returns the volunteer's rank, or empty when no
// row matches or the rank is unset.
func (c *Client) LookupPrivilegeByEmail(ctx context.Context, email string) (string, error) {
	query := url.Values{colEmail: {"eq." + email}, "select": {colRank}}
	data, err := c.do(ctx, "lookup_privilege", http.MethodGet, c.tablePath(c.cfg.VolunteersTable), query, nil, "")
	if err != nil {
		return "", err
	}

	var rows []map[string]any
	if err := json.Unmarshal(data, &rows); err != nil {
		return "", fmt.Errorf("decode privilege: %w", err)
	}
	if len(rows) == 0 {
		return "", nil
	}
	return textField(rows[0][colRank]), nil
}

func (c *Client) tablePath(table string) string {
	return "/rest/v1/" + table
}

func (c *Client) bearer() string {
	if c.cfg.AccessToken != "" {
		return c.cfg.AccessToken
	}
	return c.cfg.APIKey
}

func (c *Client) do(ctx context.Context, operation, method, path string, query url.Values, body any, prefer string) (data []byte, err error) {
	defer func() {
		observability.RecordRemoteCall(operation, err)
	}()

	var reader io.Reader
	if body != nil {
		encoded, marshalErr := json.Marshal(body)
		if marshalErr != nil {
			return nil, marshalErr
		}
		reader = bytes.NewReader(encoded)
	}

	endpoint := strings.TrimSuffix(c.cfg.BaseURL, "/") + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", c.cfg.APIKey)
	req.Header.Set("Authorization", "Bearer "+c.bearer())
	req.Header.Set("Content-Type", "application/json")
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if resp.StatusCode >= 300 {
		return nil, &StatusError{Status: resp.StatusCode, Body: string(data)}
	}
	return data, nil
}

// Column names follow the backend schema exactly; the schema is shared
// with other clients and is case-sensitive.
const (
	colName        = "Nume"
	colDescription = "Descriere"
	colDate        = "Data"
	colHours       = "Ore"
	colOrganiser   = "Organizatori"
	colLocation    = "Locatie"
	colTimeSlot    = "Ora Organizarii"
	colFullName    = "NumeComplet"
	colEmail       = "Email"
	colTotalHours  = "OreVoluntariat"
	colRank        = "Privilegii"
)

func mapActivity(row map[string]any) domain.Activity {
	return domain.Activity{
		ID:          idField(row["id"]),
		Name:        textField(row[colName]),
		Description: textField(row[colDescription]),
		Date:        dateField(row[colDate]),
		Hours:       hoursField(row[colHours]),
		Organiser:   textField(row[colOrganiser]),
		Location:    textField(row[colLocation]),
		TimeSlot:    textField(row[colTimeSlot]),
	}
}

func mapVolunteer(row map[string]any) domain.VolunteerRecord {
	return domain.VolunteerRecord{
		ID:       idField(row["id"]),
		FullName: textField(row[colFullName]),
		Email:    textField(row[colEmail]),
		Hours:    hoursField(row[colTotalHours]),
		Rank:     textField(row[colRank]),
	}
}

func textField(v any) string {
	s, _ := v.(string)
	return s
}

func idField(v any) string {
	switch value := v.(type) {
	case string:
		return value
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	default:
		return ""
	}
}

// dateField substitutes today for a missing date.
func dateField(v any) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return time.Now().Format("2006-01-02")
}

// hoursField coerces whatever the backend stored into a number; a
// missing or unparseable value counts as zero hours.
func hoursField(v any) float64 {
	switch value := v.(type) {
	case float64:
		return value
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
