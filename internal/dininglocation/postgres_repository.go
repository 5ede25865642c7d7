package dininglocation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PostgresRepository implements Repository against Postgres.
type PostgresRepository struct {
	db db
}

// NewPostgresRepository creates a new Repository backed by the given connection.
// In production pass the pgxpool.Pool; tests pass a mock pool.
func NewPostgresRepository(db db) Repository {
	return &PostgresRepository{db: db}
}

// allColumns is the ordered list of columns scanned from the dining_locations table.
const allColumns = `id, name, capacity, created_at, updated_at`

// scanDiningLocation scans a single DiningLocation from a row.
func scanDiningLocation(row pgx.Row) (*DiningLocation, error) {
	var l DiningLocation
	err := row.Scan(&l.ID, &l.Name, &l.Capacity, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDiningLocationNotFound
		}
		return nil, fmt.Errorf("scanning dining location row: %w", err)
	}
	return &l, nil
}

// Create inserts a new dining location record. The identifier and timestamps
// must already be set on l (see New).
func (r *PostgresRepository) Create(ctx context.Context, l *DiningLocation) error {
	query := `
		INSERT INTO dining_locations (id, name, capacity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.Exec(ctx, query, l.ID, l.Name, l.Capacity, l.CreatedAt, l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting dining location: %w", err)
	}
	return nil
}

// GetByID retrieves a single dining location by its UUID.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*DiningLocation, error) {
	query := fmt.Sprintf(`SELECT %s FROM dining_locations WHERE id = $1`, allColumns)
	return scanDiningLocation(r.db.QueryRow(ctx, query, id))
}

// List retrieves all dining locations ordered by creation time.
func (r *PostgresRepository) List(ctx context.Context) ([]DiningLocation, error) {
	query := fmt.Sprintf(`SELECT %s FROM dining_locations ORDER BY created_at ASC`, allColumns)

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing dining locations: %w", err)
	}
	defer rows.Close()

	var locations []DiningLocation
	for rows.Next() {
		var l DiningLocation
		if err := rows.Scan(&l.ID, &l.Name, &l.Capacity, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning dining location row: %w", err)
		}
		locations = append(locations, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating dining location rows: %w", err)
	}

	if locations == nil {
		locations = []DiningLocation{}
	}

	return locations, nil
}

// Update modifies non-nil fields on a dining location and returns the updated record.
func (r *PostgresRepository) Update(ctx context.Context, id uuid.UUID, fields UpdateFields) (*DiningLocation, error) {
	var setClauses []string
	var args []any
	argIdx := 1

	if fields.Name != nil {
		setClauses = append(setClauses, fmt.Sprintf("name = $%d", argIdx))
		args = append(args, *fields.Name)
		argIdx++
	}
	if fields.Capacity != nil {
		setClauses = append(setClauses, fmt.Sprintf("capacity = $%d", argIdx))
		args = append(args, *fields.Capacity)
		argIdx++
	}

	if len(setClauses) == 0 {
		return r.GetByID(ctx, id)
	}

	setClauses = append(setClauses, fmt.Sprintf("updated_at = $%d", argIdx))
	args = append(args, time.Now().UTC())
	argIdx++

	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE dining_locations
		SET %s
		WHERE id = $%d
		RETURNING %s`,
		strings.Join(setClauses, ", "), argIdx, allColumns)

	return scanDiningLocation(r.db.QueryRow(ctx, query, args...))
}

// Delete removes a dining location by its UUID.
func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM dining_locations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting dining location: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrDiningLocationNotFound
	}

	return nil
}
