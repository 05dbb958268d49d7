package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/stationwatch/stationwatch/internal/poller"
)

// ClientConfig holds configuration for the dashboard API client.
type ClientConfig struct {
	// BaseURL of the dashboard API, without the /api prefix.
	BaseURL string

	// HTTPClient to use. Defaults to a client with a 10 second timeout;
	// per-request deadlines still come from the caller's context.
	HTTPClient *http.Client

	// Logger for request outcomes.
	Logger zerolog.Logger
}

// Client is a typed client over the dashboard API. Errors it returns are
// already classified into the polling error taxonomy.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a new dashboard API client.
func NewClient(cfg ClientConfig) *Client {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: cfg.HTTPClient,
		logger:     cfg.Logger,
	}
}

// Weather fetches the latest reading for a station.
func (c *Client) Weather(ctx context.Context, stationID string) (*WeatherReading, error) {
	q := url.Values{"station_id": {stationID}}

	var reading WeatherReading
	if err := c.get(ctx, "/api/weather", q, &reading); err != nil {
		return nil, err
	}
	return &reading, nil
}

// Historical fetches the last N days of readings for a station.
func (c *Client) Historical(ctx context.Context, days int, stationID string) (*HistoricalData, error) {
	q := url.Values{
		"days":       {strconv.Itoa(days)},
		"station_id": {stationID},
	}

	var data HistoricalData
	if err := c.get(ctx, "/api/historical-data", q, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// River fetches the current river gauge snapshot.
func (c *Client) River(ctx context.Context) (*RiverData, error) {
	var data RiverData
	if err := c.get(ctx, "/api/river-data", nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// SubmitDataRequest posts a historical-data request form.
func (c *Client) SubmitDataRequest(ctx context.Context, form *DataRequestForm) error {
	body, err := json.Marshal(form)
	if err != nil {
		return poller.NewParseError(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/request-data", bytes.NewReader(body))
	if err != nil {
		return poller.Classify(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return poller.Classify(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn().
			Int("status", resp.StatusCode).
			Msg("data request rejected")
		return poller.NewHTTPError(resp.StatusCode)
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return poller.Classify(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return poller.Classify(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return poller.NewHTTPError(resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return poller.NewParseError(fmt.Errorf("decoding %s response: %w", path, err))
	}

	return nil
}
