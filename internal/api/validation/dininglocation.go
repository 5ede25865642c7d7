package validation

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// FieldError represents a validation error on a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ParseTimestamp parses an RFC 3339 timestamp such as "2025-01-15T10:20:30Z".
// Handlers use it to convert date strings that have already passed validation.
func ParseTimestamp(value string) (time.Time, error) {
	return time.Parse(time.RFC3339, value)
}

// CreateDiningLocationRequest mirrors the fields needed for create dining
// location validation. Capacity is a pointer so a missing field can be told
// apart from an explicit zero.
type CreateDiningLocationRequest struct {
	Name     string
	Capacity *int
}

// ValidateCreateDiningLocationRequest validates the fields of a create dining
// location request. Returns a slice of field errors; empty slice means valid.
func ValidateCreateDiningLocationRequest(req CreateDiningLocationRequest) []FieldError {
	var errs []FieldError

	if strings.TrimSpace(req.Name) == "" {
		errs = append(errs, FieldError{Field: "name", Message: "name is required"})
	}

	if req.Capacity == nil {
		errs = append(errs, FieldError{Field: "capacity", Message: "capacity is required"})
	} else if *req.Capacity < 0 {
		errs = append(errs, FieldError{Field: "capacity", Message: "capacity must be non-negative"})
	}

	return errs
}

// UpdateDiningLocationRequest mirrors the fields needed for update dining
// location validation. Nil fields are not validated.
type UpdateDiningLocationRequest struct {
	Name     *string
	Capacity *int
}

// ValidateUpdateDiningLocationRequest validates only non-nil fields on an
// update request.
func ValidateUpdateDiningLocationRequest(req UpdateDiningLocationRequest) []FieldError {
	var errs []FieldError

	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		errs = append(errs, FieldError{Field: "name", Message: "name must not be empty"})
	}

	if req.Capacity != nil && *req.Capacity < 0 {
		errs = append(errs, FieldError{Field: "capacity", Message: "capacity must be non-negative"})
	}

	return errs
}

// DiningLocationEntry mirrors one location snapshot inside a meal plan
// payload. ID is the caller-supplied snapshot identifier; when nil the
// service generates one.
type DiningLocationEntry struct {
	ID       *string
	Name     string
	Capacity *int
}

// ValidateDiningLocationEntry validates a single location snapshot, as
// submitted to the attach endpoint.
func ValidateDiningLocationEntry(entry DiningLocationEntry) []FieldError {
	return validateLocationEntry("", entry)
}

// validateLocationEntry applies the dining location rules to one snapshot,
// prefixing field names so nested entries report paths like
// "dining_locations[0].name".
func validateLocationEntry(prefix string, entry DiningLocationEntry) []FieldError {
	var errs []FieldError

	if entry.ID != nil {
		if _, err := uuid.Parse(*entry.ID); err != nil {
			errs = append(errs, FieldError{Field: prefix + "dining_location_id", Message: "dining_location_id must be a valid UUID"})
		}
	}

	if strings.TrimSpace(entry.Name) == "" {
		errs = append(errs, FieldError{Field: prefix + "name", Message: "name is required"})
	}

	if entry.Capacity == nil {
		errs = append(errs, FieldError{Field: prefix + "capacity", Message: "capacity is required"})
	} else if *entry.Capacity < 0 {
		errs = append(errs, FieldError{Field: prefix + "capacity", Message: "capacity must be non-negative"})
	}

	return errs
}
