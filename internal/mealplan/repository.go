package mealplan

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrMealPlanNotFound is returned when a meal plan record is not found.
var ErrMealPlanNotFound = errors.New("meal plan not found")

// ErrInvalidPlanDates is returned when an update would leave a plan with
// start_date after end_date.
var ErrInvalidPlanDates = errors.New("meal plan start date is after end date")

// ErrLocationAlreadyAttached is returned when attaching a location snapshot
// whose identifier is already present on the plan.
var ErrLocationAlreadyAttached = errors.New("dining location already attached to meal plan")

// ErrLocationNotAttached is returned when detaching a location snapshot that
// is not present on the plan.
var ErrLocationNotAttached = errors.New("dining location not attached to meal plan")

// db is the minimal query interface satisfied by *pgxpool.Pool, pgx.Conn,
// pgx.Tx, and the pgxmock pool used in unit tests.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository provides CRUD operations on the meal_plans table, plus
// attach/detach operations on a plan's embedded location list.
type Repository interface {
	Create(ctx context.Context, p *MealPlan) error
	GetByID(ctx context.Context, id uuid.UUID) (*MealPlan, error)
	List(ctx context.Context) ([]MealPlan, error)
	Update(ctx context.Context, id uuid.UUID, fields UpdateFields) (*MealPlan, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AttachLocation(ctx context.Context, planID uuid.UUID, loc DiningLocation) (*MealPlan, error)
	DetachLocation(ctx context.Context, planID, locationID uuid.UUID) (*MealPlan, error)
}
