package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/claude/loadprogress/internal/analytics"
	"github.com/claude/loadprogress/internal/models"
	"github.com/claude/loadprogress/internal/tracker"
)

// HTTPClient implements DataSource by calling the LoadProgress REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	// tool output is documented in kg whatever the display setting is
	q := url.Values{}
	for k, v := range params {
		q[k] = v
	}
	q.Set("unit", string(models.Kilograms))
	u := c.baseURL + path + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, apiError(body))
	}

	return body, nil
}

// apiError extracts the server's {"error": ...} message when present.
func apiError(body []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &e) == nil && e.Error != "" {
		return e.Error
	}
	return strings.TrimSpace(string(body))
}

func (c *HTTPClient) getJSON(ctx context.Context, path string, params url.Values, v any) error {
	body, err := c.get(ctx, path, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("httpclient: decode %s: %w", path, err)
	}
	return nil
}

func exerciseParams(exerciseID uuid.UUID, r analytics.TimeRange) url.Values {
	v := url.Values{}
	if exerciseID != uuid.Nil {
		v.Set("exercise", exerciseID.String())
	}
	if r != "" {
		v.Set("range", string(r))
	}
	return v
}

func (c *HTTPClient) ListExercises(ctx context.Context, group models.MuscleGroup) ([]models.Exercise, error) {
	params := url.Values{}
	if group != "" {
		params.Set("muscle_group", string(group))
	}
	var out []models.Exercise
	if err := c.getJSON(ctx, "/api/v1/exercises", params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) WorkoutSets(ctx context.Context, f tracker.SetFilter) ([]models.WorkoutSet, error) {
	params := exerciseParams(f.ExerciseID, "")
	if !f.Start.IsZero() {
		params.Set("start", f.Start.Format(time.RFC3339))
	}
	if !f.End.IsZero() {
		params.Set("end", f.End.Format(time.RFC3339))
	}
	if f.Limit > 0 {
		params.Set("limit", strconv.Itoa(f.Limit))
	}
	var out []models.WorkoutSet
	if err := c.getJSON(ctx, "/api/v1/sets", params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) PersonalRecords(ctx context.Context, f tracker.RecordFilter) ([]models.PersonalRecord, error) {
	params := exerciseParams(f.ExerciseID, "")
	if f.Type != "" {
		params.Set("type", string(f.Type))
	}
	var out []models.PersonalRecord
	if err := c.getJSON(ctx, "/api/v1/records", params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) CurrentBests(ctx context.Context, exerciseID uuid.UUID) (*tracker.Bests, error) {
	var out tracker.Bests
	if err := c.getJSON(ctx, "/api/v1/records/best", exerciseParams(exerciseID, ""), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Volume(ctx context.Context, exerciseID uuid.UUID, r analytics.TimeRange) (*analytics.VolumeMetrics, error) {
	var out analytics.VolumeMetrics
	if err := c.getJSON(ctx, "/api/v1/analytics/volume", exerciseParams(exerciseID, r), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) MuscleGroups(ctx context.Context, r analytics.TimeRange) ([]analytics.MuscleGroupVolume, error) {
	var out []analytics.MuscleGroupVolume
	if err := c.getJSON(ctx, "/api/v1/analytics/muscle-groups", exerciseParams(uuid.Nil, r), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) Progression(ctx context.Context, exerciseID uuid.UUID, r analytics.TimeRange) ([]analytics.ProgressionPoint, error) {
	var out []analytics.ProgressionPoint
	if err := c.getJSON(ctx, "/api/v1/analytics/progression", exerciseParams(exerciseID, r), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) TrainingSummary(ctx context.Context, r analytics.TimeRange) (*tracker.TrainingSummary, error) {
	var out tracker.TrainingSummary
	if err := c.getJSON(ctx, "/api/v1/analytics/summary", exerciseParams(uuid.Nil, r), &out); err != nil {
		return nil, err
	}
	return &out, nil
}
