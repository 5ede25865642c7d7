package validation

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// CreateMealPlanRequest mirrors the fields needed for create meal plan
// validation. Cost is a pointer so a missing field can be told apart from an
// explicit zero. Dates are carried as strings and checked for parseability.
type CreateMealPlanRequest struct {
	Name            string
	Type            string
	Cost            *float64
	StartDate       *string
	EndDate         *string
	DiningLocations []DiningLocationEntry
}

// ValidateCreateMealPlanRequest validates the fields of a create meal plan
// request, including every embedded location snapshot.
func ValidateCreateMealPlanRequest(req CreateMealPlanRequest) []FieldError {
	var errs []FieldError

	if strings.TrimSpace(req.Name) == "" {
		errs = append(errs, FieldError{Field: "name", Message: "name is required"})
	}

	if strings.TrimSpace(req.Type) == "" {
		errs = append(errs, FieldError{Field: "type", Message: "type is required"})
	}

	if req.Cost == nil {
		errs = append(errs, FieldError{Field: "cost", Message: "cost is required"})
	} else if *req.Cost < 0 {
		errs = append(errs, FieldError{Field: "cost", Message: "cost must be non-negative"})
	}

	errs = append(errs, validateDateRange(req.StartDate, req.EndDate)...)
	errs = append(errs, validateDiningLocationEntries(req.DiningLocations)...)

	return errs
}

// UpdateMealPlanRequest mirrors the fields needed for update meal plan
// validation. Nil fields are not validated. A non-nil DiningLocations slice
// replaces the stored list and is validated in full.
type UpdateMealPlanRequest struct {
	Name            *string
	Type            *string
	Cost            *float64
	StartDate       *string
	EndDate         *string
	DiningLocations []DiningLocationEntry
}

// ValidateUpdateMealPlanRequest validates only non-nil fields on an update
// request. Date ordering is checked when both bounds appear in the payload;
// updates touching a single bound are checked against the stored record by
// the persistence layer.
func ValidateUpdateMealPlanRequest(req UpdateMealPlanRequest) []FieldError {
	var errs []FieldError

	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		errs = append(errs, FieldError{Field: "name", Message: "name must not be empty"})
	}

	if req.Type != nil && strings.TrimSpace(*req.Type) == "" {
		errs = append(errs, FieldError{Field: "type", Message: "type must not be empty"})
	}

	if req.Cost != nil && *req.Cost < 0 {
		errs = append(errs, FieldError{Field: "cost", Message: "cost must be non-negative"})
	}

	errs = append(errs, validateDateRange(req.StartDate, req.EndDate)...)

	if req.DiningLocations != nil {
		errs = append(errs, validateDiningLocationEntries(req.DiningLocations)...)
	}

	return errs
}

// validateDateRange checks that each present date parses and that start_date
// does not fall after end_date when both are present and parseable.
func validateDateRange(startDate, endDate *string) []FieldError {
	var errs []FieldError

	var start, end *string
	if startDate != nil {
		if _, err := ParseTimestamp(*startDate); err != nil {
			errs = append(errs, FieldError{Field: "start_date", Message: "start_date must be a valid RFC 3339 timestamp"})
		} else {
			start = startDate
		}
	}
	if endDate != nil {
		if _, err := ParseTimestamp(*endDate); err != nil {
			errs = append(errs, FieldError{Field: "end_date", Message: "end_date must be a valid RFC 3339 timestamp"})
		} else {
			end = endDate
		}
	}

	if start != nil && end != nil {
		startT, _ := ParseTimestamp(*start)
		endT, _ := ParseTimestamp(*end)
		if startT.After(endT) {
			errs = append(errs, FieldError{Field: "start_date", Message: "start_date must not be after end_date"})
		}
	}

	return errs
}

// validateDiningLocationEntries validates every embedded location snapshot
// and rejects duplicate snapshot identifiers. Identifiers are compared in
// canonical UUID form, so case or formatting differences do not hide a
// duplicate.
func validateDiningLocationEntries(entries []DiningLocationEntry) []FieldError {
	var errs []FieldError

	seen := make(map[uuid.UUID]bool, len(entries))
	for i, entry := range entries {
		prefix := fmt.Sprintf("dining_locations[%d].", i)
		errs = append(errs, validateLocationEntry(prefix, entry)...)

		if entry.ID == nil {
			continue
		}
		id, err := uuid.Parse(*entry.ID)
		if err != nil {
			continue
		}
		if seen[id] {
			errs = append(errs, FieldError{Field: prefix + "dining_location_id", Message: "dining_location_id must be unique within dining_locations"})
			continue
		}
		seen[id] = true
	}

	return errs
}
