package mealplan

import (
	"time"

	"github.com/google/uuid"
)

// DiningLocation is a location snapshot embedded in a meal plan. Plans own
// copies of location data taken at association time, not references, so later
// edits to the dining_locations table do not alter existing plans.
//
// The JSON tags define the document format stored in the meal_plans
// dining_locations JSONB column.
type DiningLocation struct {
	ID       uuid.UUID `json:"dining_location_id"`
	Name     string    `json:"name"`
	Capacity int       `json:"capacity"`
}

// MealPlan represents a row in the meal_plans table.
type MealPlan struct {
	ID              uuid.UUID
	Name            string
	Type            string
	Cost            float64
	StartDate       *time.Time
	EndDate         *time.Time
	DiningLocations []DiningLocation
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// UpdateFields holds optional fields for a partial meal plan update.
// Nil fields are not updated. A non-nil empty DiningLocations slice replaces
// the stored list with an empty one.
type UpdateFields struct {
	Name            *string
	Type            *string
	Cost            *float64
	StartDate       *time.Time
	EndDate         *time.Time
	DiningLocations []DiningLocation
}

// New builds a MealPlan with a fresh identifier and creation timestamps.
// Identifiers and timestamps are always assigned here, never by the caller or
// the database. A nil locations slice is stored as an empty list.
func New(name, planType string, cost float64, startDate, endDate *time.Time, locations []DiningLocation) *MealPlan {
	if locations == nil {
		locations = []DiningLocation{}
	}
	now := time.Now().UTC()
	return &MealPlan{
		ID:              uuid.New(),
		Name:            name,
		Type:            planType,
		Cost:            cost,
		StartDate:       startDate,
		EndDate:         endDate,
		DiningLocations: locations,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// NewDiningLocation builds an embedded location snapshot with a fresh identifier.
func NewDiningLocation(name string, capacity int) DiningLocation {
	return DiningLocation{
		ID:       uuid.New(),
		Name:     name,
		Capacity: capacity,
	}
}
