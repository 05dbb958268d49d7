// Package cwc provides a client for the Central Water Commission
// flood-forecasting entry-data API, which serves gauge observations as
// sorted pages filtered by station and datatype codes.
package cwc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/stationwatch/stationwatch/internal/upstream"
)

const (
	// ProviderName identifies this provider.
	ProviderName = "cwc"

	// DefaultBaseURL is the CWC flood forecasting API base URL.
	DefaultBaseURL = "https://ffs.india-water.gov.in/iam/api/new-entry-data"

	// DefaultStationCode is the monitored gauge near the station cluster.
	DefaultStationCode = "012-SWRDKOCHI"

	// Datatype codes used by the entry-data API.
	datatypeWaterLevel = "HHS" // hourly water level
	datatypeRainfall   = "MPS" // periodic rainfall
)

// ClientConfig holds configuration for the CWC client.
type ClientConfig struct {
	// BaseURL overrides the API base URL (optional).
	BaseURL string

	// StationCode selects the gauge (optional, defaults to the Kochi gauge).
	StationCode string

	// HTTPClient is the resilient client to use (optional).
	HTTPClient *upstream.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client fetches gauge observations from the CWC API.
type Client struct {
	baseURL     string
	stationCode string
	httpClient  *upstream.Client
	logger      zerolog.Logger
}

// NewClient creates a new CWC client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	stationCode := cfg.StationCode
	if stationCode == "" {
		stationCode = DefaultStationCode
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = upstream.NewClient(upstream.ClientConfig{Name: ProviderName})
	}

	return &Client{
		baseURL:     baseURL,
		stationCode: stationCode,
		httpClient:  httpClient,
		logger:      cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// Health returns the underlying client's health snapshot.
func (c *Client) Health() upstream.Health {
	return c.httpClient.Health()
}

// Observation is a single gauge measurement.
type Observation struct {
	Value      float64
	MeasuredAt time.Time
}

// LatestWaterLevel fetches the newest water level in meters.
func (c *Client) LatestWaterLevel(ctx context.Context) (*Observation, error) {
	return c.latest(ctx, datatypeWaterLevel)
}

// LatestRainfall fetches the newest rainfall accumulation in millimeters.
func (c *Client) LatestRainfall(ctx context.Context) (*Observation, error) {
	return c.latest(ctx, datatypeRainfall)
}

func (c *Client) latest(ctx context.Context, datatype string) (*Observation, error) {
	reqURL := c.buildURL(datatype)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("class-name", "NewEntryDataDto")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var entries []entryData
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	// Entries are sorted newest-first; skip null readings.
	for _, entry := range entries {
		value, ok := entry.value()
		if !ok {
			continue
		}

		obs := &Observation{
			Value:      value,
			MeasuredAt: parseDataTime(entry.ID.DataTime),
		}
		c.logger.Debug().
			Str("datatype", datatype).
			Float64("value", obs.Value).
			Time("measured_at", obs.MeasuredAt).
			Msg("fetched gauge observation")
		return obs, nil
	}

	return nil, fmt.Errorf("no %s data for station %s", datatype, c.stationCode)
}

// buildURL constructs the sorted-page query: newest-first by observation
// time, filtered to this station, datatype, and non-null values.
func (c *Client) buildURL(datatype string) string {
	sortCriteria := map[string]any{
		"sortOrderDtos": []map[string]string{
			{"sortDirection": "DESC", "field": "id.dataTime"},
		},
	}

	specification := map[string]any{
		"where": map[string]any{
			"where": map[string]any{
				"expression": expression("id.stationCode", "eq", c.stationCode),
			},
			"and": map[string]any{
				"expression": expression("id.datatypeCode", "eq", datatype),
			},
		},
		"and": map[string]any{
			"expression": expression("dataValue", "null", "false"),
		},
	}

	sortJSON, _ := json.Marshal(sortCriteria)
	specJSON, _ := json.Marshal(specification)

	return fmt.Sprintf(
		"%s/specification/sorted-page?sort-criteria=%s&page-number=0&page-size=2&specification=%s",
		c.baseURL,
		url.QueryEscape(string(sortJSON)),
		url.QueryEscape(string(specJSON)),
	)
}

func expression(field, operator, value string) map[string]any {
	return map[string]any{
		"valueIsRelationField": false,
		"fieldName":            field,
		"operator":             operator,
		"value":                value,
	}
}

// entryData mirrors the API's NewEntryDataDto.
type entryData struct {
	ID struct {
		StationCode  string          `json:"stationCode"`
		DatatypeCode string          `json:"datatypeCode"`
		DataTime     json.RawMessage `json:"dataTime"`
	} `json:"id"`
	DataValue json.RawMessage `json:"dataValue"`
}

// value parses the data value, which the API serves either as a number or
// a quoted numeric string.
func (e entryData) value() (float64, bool) {
	raw := bytes.Trim(bytes.TrimSpace(e.DataValue), `"`)
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}
	v, err := strconv.ParseFloat(string(raw), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// parseDataTime handles the API's two timestamp encodings: a local
// ISO-like string and epoch milliseconds. Unparseable values fall back to
// the current time, matching how the gauge history treats them.
func parseDataTime(raw json.RawMessage) time.Time {
	s := string(bytes.Trim(bytes.TrimSpace(raw), `"`))
	if s == "" || s == "null" {
		return time.Now()
	}

	if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}

	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		if ms > 9999999999 { // milliseconds
			return time.UnixMilli(ms)
		}
		return time.Unix(ms, 0)
	}

	return time.Now()
}
