package datarequest

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

// NewPostgresRepository creates a new PostgreSQL data request repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Create stores a new data request.
func (r *PostgresRepository) Create(ctx context.Context, req *Request) error {
	query := `
		INSERT INTO data_requests (
			id, email, organization, purpose, start_date, end_date,
			station_id, format, parameters, status, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now(), now())
	`

	_, err := r.pool.Exec(ctx, query,
		req.ID, req.Email, req.Organization, req.Purpose,
		req.StartDate, req.EndDate, req.StationID,
		req.Format, req.Parameters, req.Status,
	)
	return err
}

// Get retrieves a data request by ID.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*Request, error) {
	query := `
		SELECT id, email, organization, purpose, start_date, end_date,
		       station_id, format, parameters, status, created_at, updated_at
		FROM data_requests
		WHERE id = $1
	`

	var req Request
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&req.ID, &req.Email, &req.Organization, &req.Purpose,
		&req.StartDate, &req.EndDate, &req.StationID,
		&req.Format, &req.Parameters, &req.Status,
		&req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}

	return &req, nil
}

// List retrieves data requests, newest first, optionally filtered by status.
func (r *PostgresRepository) List(ctx context.Context, status Status) ([]*Request, error) {
	query := `
		SELECT id, email, organization, purpose, start_date, end_date,
		       station_id, format, parameters, status, created_at, updated_at
		FROM data_requests
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []*Request
	for rows.Next() {
		var req Request
		err := rows.Scan(
			&req.ID, &req.Email, &req.Organization, &req.Purpose,
			&req.StartDate, &req.EndDate, &req.StationID,
			&req.Format, &req.Parameters, &req.Status,
			&req.CreatedAt, &req.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		requests = append(requests, &req)
	}

	return requests, rows.Err()
}

// UpdateStatus moves a data request to a new status.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, status Status) error {
	query := `
		UPDATE data_requests
		SET status = $2, updated_at = now()
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRequestNotFound
	}

	return nil
}

// SaveExport stores the rendered export for a request, replacing any
// earlier one.
func (r *PostgresRepository) SaveExport(ctx context.Context, exp *Export) error {
	query := `
		INSERT INTO data_request_exports (request_id, content_type, filename, body, created_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (request_id) DO UPDATE
		SET content_type = EXCLUDED.content_type,
		    filename = EXCLUDED.filename,
		    body = EXCLUDED.body,
		    created_at = now()
	`

	_, err := r.pool.Exec(ctx, query,
		exp.RequestID, exp.ContentType, exp.Filename, exp.Body,
	)
	return err
}

// GetExport retrieves the rendered export for a request.
func (r *PostgresRepository) GetExport(ctx context.Context, requestID string) (*Export, error) {
	query := `
		SELECT request_id, content_type, filename, body, created_at
		FROM data_request_exports
		WHERE request_id = $1
	`

	var exp Export
	err := r.pool.QueryRow(ctx, query, requestID).Scan(
		&exp.RequestID, &exp.ContentType, &exp.Filename, &exp.Body, &exp.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrExportNotFound
		}
		return nil, err
	}

	return &exp, nil
}
