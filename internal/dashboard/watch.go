package dashboard

import (
	"context"

	"github.com/stationwatch/stationwatch/internal/poller"
)

// WatchWeather returns a poller bound to one station's live reading.
// Switching station means stopping the old poller and creating a new one;
// a stopped poller never mutates its state again, so the two cannot race.
func (c *Client) WatchWeather(stationID string, cfg poller.Config) *poller.Poller[WeatherReading] {
	cfg.Logger = c.logger.With().Str("resource", "weather").Str("station_id", stationID).Logger()
	return poller.New(func(ctx context.Context) (*WeatherReading, error) {
		return c.Weather(ctx, stationID)
	}, cfg)
}

// WatchHistorical returns a poller bound to one station's N-day history.
func (c *Client) WatchHistorical(days int, stationID string, cfg poller.Config) *poller.Poller[HistoricalData] {
	cfg.Logger = c.logger.With().Str("resource", "historical").Str("station_id", stationID).Logger()
	return poller.New(func(ctx context.Context) (*HistoricalData, error) {
		return c.Historical(ctx, days, stationID)
	}, cfg)
}

// WatchRiver returns a poller for the river gauge snapshot.
func (c *Client) WatchRiver(cfg poller.Config) *poller.Poller[RiverData] {
	cfg.Logger = c.logger.With().Str("resource", "river").Logger()
	return poller.New(func(ctx context.Context) (*RiverData, error) {
		return c.River(ctx)
	}, cfg)
}
