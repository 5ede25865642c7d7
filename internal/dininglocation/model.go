package dininglocation

import (
	"time"

	"github.com/google/uuid"
)

// DiningLocation represents a row in the dining_locations table.
type DiningLocation struct {
	ID        uuid.UUID
	Name      string
	Capacity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UpdateFields holds optional fields for a partial dining location update.
// Nil fields are not updated.
type UpdateFields struct {
	Name     *string
	Capacity *int
}

// New builds a DiningLocation with a fresh identifier and creation timestamps.
// Identifiers and timestamps are always assigned here, never by the caller or
// the database, so records carry the same values the API handed out.
func New(name string, capacity int) *DiningLocation {
	now := time.Now().UTC()
	return &DiningLocation{
		ID:        uuid.New(),
		Name:      name,
		Capacity:  capacity,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
