package mealplan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgresRepository implements Repository against Postgres. The embedded
// location list is stored as a JSONB array column on the meal_plans row, so
// every operation on a plan, including attach and detach, is a single-row
// statement.
type PostgresRepository struct {
	db db
}

// NewPostgresRepository creates a new Repository backed by the given connection.
// In production pass the pgxpool.Pool; tests pass a mock pool.
func NewPostgresRepository(db db) Repository {
	return &PostgresRepository{db: db}
}

// allColumns is the ordered list of columns scanned from the meal_plans table.
const allColumns = `id, name, type, cost, start_date, end_date, dining_locations, created_at, updated_at`

// dateRangeConstraint is the CHECK constraint enforcing start_date <= end_date.
const dateRangeConstraint = "meal_plans_date_range_check"

// scanMealPlan scans a single MealPlan from a row.
func scanMealPlan(row pgx.Row) (*MealPlan, error) {
	var p MealPlan
	var locData []byte
	err := row.Scan(
		&p.ID, &p.Name, &p.Type, &p.Cost,
		&p.StartDate, &p.EndDate, &locData,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMealPlanNotFound
		}
		return nil, fmt.Errorf("scanning meal plan row: %w", err)
	}

	if err := json.Unmarshal(locData, &p.DiningLocations); err != nil {
		return nil, fmt.Errorf("decoding dining_locations column: %w", err)
	}
	if p.DiningLocations == nil {
		p.DiningLocations = []DiningLocation{}
	}

	return &p, nil
}

// containmentDoc builds the JSONB containment argument used to test whether a
// location with the given identifier is present in a plan's location list.
func containmentDoc(locationID uuid.UUID) []byte {
	doc, _ := json.Marshal([]map[string]string{{"dining_location_id": locationID.String()}})
	return doc
}

// Create inserts a new meal plan record. The identifier and timestamps must
// already be set on p (see New).
func (r *PostgresRepository) Create(ctx context.Context, p *MealPlan) error {
	locData, err := json.Marshal(p.DiningLocations)
	if err != nil {
		return fmt.Errorf("encoding dining locations: %w", err)
	}

	query := `
		INSERT INTO meal_plans (id, name, type, cost, start_date, end_date, dining_locations, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = r.db.Exec(ctx, query,
		p.ID, p.Name, p.Type, p.Cost,
		p.StartDate, p.EndDate, locData,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting meal plan: %w", err)
	}
	return nil
}

// GetByID retrieves a single meal plan by its UUID.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*MealPlan, error) {
	query := fmt.Sprintf(`SELECT %s FROM meal_plans WHERE id = $1`, allColumns)
	return scanMealPlan(r.db.QueryRow(ctx, query, id))
}

// List retrieves all meal plans ordered by creation time.
func (r *PostgresRepository) List(ctx context.Context) ([]MealPlan, error) {
	query := fmt.Sprintf(`SELECT %s FROM meal_plans ORDER BY created_at ASC`, allColumns)

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing meal plans: %w", err)
	}
	defer rows.Close()

	var plans []MealPlan
	for rows.Next() {
		p, err := scanMealPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating meal plan rows: %w", err)
	}

	if plans == nil {
		plans = []MealPlan{}
	}

	return plans, nil
}

// Update modifies non-nil fields on a meal plan and returns the updated record.
// A non-nil DiningLocations slice replaces the stored list wholesale.
func (r *PostgresRepository) Update(ctx context.Context, id uuid.UUID, fields UpdateFields) (*MealPlan, error) {
	var setClauses []string
	var args []any
	argIdx := 1

	if fields.Name != nil {
		setClauses = append(setClauses, fmt.Sprintf("name = $%d", argIdx))
		args = append(args, *fields.Name)
		argIdx++
	}
	if fields.Type != nil {
		setClauses = append(setClauses, fmt.Sprintf("type = $%d", argIdx))
		args = append(args, *fields.Type)
		argIdx++
	}
	if fields.Cost != nil {
		setClauses = append(setClauses, fmt.Sprintf("cost = $%d", argIdx))
		args = append(args, *fields.Cost)
		argIdx++
	}
	if fields.StartDate != nil {
		setClauses = append(setClauses, fmt.Sprintf("start_date = $%d", argIdx))
		args = append(args, *fields.StartDate)
		argIdx++
	}
	if fields.EndDate != nil {
		setClauses = append(setClauses, fmt.Sprintf("end_date = $%d", argIdx))
		args = append(args, *fields.EndDate)
		argIdx++
	}
	if fields.DiningLocations != nil {
		locData, err := json.Marshal(fields.DiningLocations)
		if err != nil {
			return nil, fmt.Errorf("encoding dining locations: %w", err)
		}
		setClauses = append(setClauses, fmt.Sprintf("dining_locations = $%d", argIdx))
		args = append(args, locData)
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
		UPDATE meal_plans
		SET %s
		WHERE id = $%d
		RETURNING %s`,
		strings.Join(setClauses, ", "), argIdx, allColumns)

	p, err := scanMealPlan(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23514" && pgErr.ConstraintName == dateRangeConstraint {
			return nil, ErrInvalidPlanDates
		}
		return nil, err
	}
	return p, nil
}

// Delete removes a meal plan by its UUID.
func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM meal_plans WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting meal plan: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrMealPlanNotFound
	}

	return nil
}

// AttachLocation appends a location snapshot to a plan's location list. The
// statement only matches when no entry with the same identifier is present,
// so concurrent attaches of the same location cannot produce duplicates.
func (r *PostgresRepository) AttachLocation(ctx context.Context, planID uuid.UUID, loc DiningLocation) (*MealPlan, error) {
	locData, err := json.Marshal(loc)
	if err != nil {
		return nil, fmt.Errorf("encoding dining location: %w", err)
	}

	query := fmt.Sprintf(`
		UPDATE meal_plans
		SET dining_locations = dining_locations || $2::jsonb,
		    updated_at = $3
		WHERE id = $1 AND NOT dining_locations @> $4::jsonb
		RETURNING %s`, allColumns)

	p, err := scanMealPlan(r.db.QueryRow(ctx, query, planID, locData, time.Now().UTC(), containmentDoc(loc.ID)))
	if err != nil {
		if errors.Is(err, ErrMealPlanNotFound) {
			// No row matched: either the plan does not exist or the
			// location is already attached. A follow-up read tells which.
			if _, getErr := r.GetByID(ctx, planID); getErr != nil {
				return nil, getErr
			}
			return nil, ErrLocationAlreadyAttached
		}
		return nil, fmt.Errorf("attaching dining location: %w", err)
	}
	return p, nil
}

// DetachLocation removes the location snapshot with the given identifier from
// a plan's location list, preserving the order of the remaining entries.
func (r *PostgresRepository) DetachLocation(ctx context.Context, planID, locationID uuid.UUID) (*MealPlan, error) {
	query := fmt.Sprintf(`
		UPDATE meal_plans
		SET dining_locations = COALESCE(
			(SELECT jsonb_agg(elem ORDER BY ord)
			   FROM jsonb_array_elements(dining_locations) WITH ORDINALITY AS entries(elem, ord)
			  WHERE elem->>'dining_location_id' <> $2),
			'[]'::jsonb),
		    updated_at = $3
		WHERE id = $1 AND dining_locations @> $4::jsonb
		RETURNING %s`, allColumns)

	p, err := scanMealPlan(r.db.QueryRow(ctx, query, planID, locationID.String(), time.Now().UTC(), containmentDoc(locationID)))
	if err != nil {
		if errors.Is(err, ErrMealPlanNotFound) {
			// No row matched: either the plan does not exist or the
			// location is not attached. A follow-up read tells which.
			if _, getErr := r.GetByID(ctx, planID); getErr != nil {
				return nil, getErr
			}
			return nil, ErrLocationNotAttached
		}
		return nil, fmt.Errorf("detaching dining location: %w", err)
	}
	return p, nil
}
