package dininglocation

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrDiningLocationNotFound is returned when a dining location record is not found.
var ErrDiningLocationNotFound = errors.New("dining location not found")

// db is the minimal query interface satisfied by *pgxpool.Pool, pgx.Conn,
// pgx.Tx, and the pgxmock pool used in unit tests.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository provides CRUD operations on the dining_locations table.
type Repository interface {
	Create(ctx context.Context, l *DiningLocation) error
	GetByID(ctx context.Context, id uuid.UUID) (*DiningLocation, error)
	List(ctx context.Context) ([]DiningLocation, error)
	Update(ctx context.Context, id uuid.UUID, fields UpdateFields) (*DiningLocation, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
