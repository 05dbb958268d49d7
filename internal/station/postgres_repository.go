package station

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL station repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Get retrieves a station by ID.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*Station, error) {
	query := `
		SELECT id, name, location, lat, lon, status, created_at, updated_at
		FROM stations
		WHERE id = $1
	`

	var s Station
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.Name, &s.Location, &s.Lat, &s.Lon, &s.Status,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStationNotFound
		}
		return nil, err
	}

	return &s, nil
}

// List retrieves all stations ordered by ID.
func (r *PostgresRepository) List(ctx context.Context) ([]*Station, error) {
	query := `
		SELECT id, name, location, lat, lon, status, created_at, updated_at
		FROM stations
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stations []*Station
	for rows.Next() {
		var s Station
		err := rows.Scan(
			&s.ID, &s.Name, &s.Location, &s.Lat, &s.Lon, &s.Status,
			&s.CreatedAt, &s.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		stations = append(stations, &s)
	}

	return stations, rows.Err()
}

// Create stores a new station.
func (r *PostgresRepository) Create(ctx context.Context, s *Station) error {
	query := `
		INSERT INTO stations (id, name, location, lat, lon, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now(), now())
	`

	_, err := r.pool.Exec(ctx, query, s.ID, s.Name, s.Location, s.Lat, s.Lon, s.Status)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrStationExists
		}
		return err
	}

	return nil
}

// Update replaces an existing station's descriptor.
func (r *PostgresRepository) Update(ctx context.Context, s *Station) error {
	query := `
		UPDATE stations
		SET name = $2, location = $3, lat = $4, lon = $5, status = $6, updated_at = now()
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, s.ID, s.Name, s.Location, s.Lat, s.Lon, s.Status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrStationNotFound
	}

	return nil
}
