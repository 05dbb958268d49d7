package weather

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL reading repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Insert stores a reading.
func (r *PostgresRepository) Insert(ctx context.Context, reading *Reading) error {
	query := `
		INSERT INTO readings (
			station_id, temperature, humidity, air_pressure,
			wind_speed_avg, wind_direction, rainfall_1h, rainfall_24h,
			observed_at, stored_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())
	`

	_, err := r.pool.Exec(ctx, query,
		reading.StationID,
		reading.Temperature,
		reading.Humidity,
		reading.AirPressure,
		reading.WindSpeedAvg,
		reading.WindDirection,
		reading.Rainfall1h,
		reading.Rainfall24h,
		reading.ObservedAt,
	)
	return err
}

// Latest returns the newest reading for a station.
func (r *PostgresRepository) Latest(ctx context.Context, stationID string) (*Reading, error) {
	query := `
		SELECT station_id, temperature, humidity, air_pressure,
			wind_speed_avg, wind_direction, rainfall_1h, rainfall_24h,
			observed_at, stored_at
		FROM readings
		WHERE station_id = $1
		ORDER BY observed_at DESC
		LIMIT 1
	`

	var reading Reading
	err := r.pool.QueryRow(ctx, query, stationID).Scan(
		&reading.StationID,
		&reading.Temperature,
		&reading.Humidity,
		&reading.AirPressure,
		&reading.WindSpeedAvg,
		&reading.WindDirection,
		&reading.Rainfall1h,
		&reading.Rainfall24h,
		&reading.ObservedAt,
		&reading.StoredAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoReading
		}
		return nil, err
	}

	return &reading, nil
}

// History returns readings from the last N days, oldest first.
func (r *PostgresRepository) History(ctx context.Context, stationID string, days int) ([]Reading, error) {
	query := `
		SELECT station_id, temperature, humidity, air_pressure,
			wind_speed_avg, wind_direction, rainfall_1h, rainfall_24h,
			observed_at, stored_at
		FROM readings
		WHERE station_id = $1
		  AND observed_at > now() - make_interval(days => $2)
		ORDER BY observed_at ASC
	`

	rows, err := r.pool.Query(ctx, query, stationID, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var readings []Reading
	for rows.Next() {
		var reading Reading
		err := rows.Scan(
			&reading.StationID,
			&reading.Temperature,
			&reading.Humidity,
			&reading.AirPressure,
			&reading.WindSpeedAvg,
			&reading.WindDirection,
			&reading.Rainfall1h,
			&reading.Rainfall24h,
			&reading.ObservedAt,
			&reading.StoredAt,
		)
		if err != nil {
			return nil, err
		}
		readings = append(readings, reading)
	}

	return readings, rows.Err()
}
