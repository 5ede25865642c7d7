package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/campusdine/mealplan-api/internal/api/middleware"
	"github.com/campusdine/mealplan-api/internal/api/response"
	"github.com/campusdine/mealplan-api/internal/api/validation"
	"github.com/campusdine/mealplan-api/internal/mealplan"
)

// diningLocationEntryRequest is one location snapshot inside a meal plan
// payload. A missing dining_location_id means the server generates one.
type diningLocationEntryRequest struct {
	ID       *string   `json:"dining_location_id"`
	Name     string    `json:"name"`
	Capacity *looseInt `json:"capacity"`
}

// createMealPlanRequest is the request body for POST /meal-plans.
// Identifiers are always server-generated, so the body carries none.
type createMealPlanRequest struct {
	Name            string                       `json:"name"`
	Type            string                       `json:"type"`
	Cost            *looseFloat                  `json:"cost"`
	StartDate       *string                      `json:"start_date"`
	EndDate         *string                      `json:"end_date"`
	DiningLocations []diningLocationEntryRequest `json:"dining_locations"`
}

// updateMealPlanRequest is the request body for PATCH /meal-plans/{id}.
// An absent dining_locations field leaves the stored list unchanged; a
// present one, including an empty array, replaces it.
type updateMealPlanRequest struct {
	Name            *string                      `json:"name"`
	Type            *string                      `json:"type"`
	Cost            *looseFloat                  `json:"cost"`
	StartDate       *string                      `json:"start_date"`
	EndDate         *string                      `json:"end_date"`
	DiningLocations []diningLocationEntryRequest `json:"dining_locations"`
}

// diningLocationEntryResponse is one location snapshot in a meal plan response.
type diningLocationEntryResponse struct {
	ID       string `json:"dining_location_id"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
}

// mealPlanResponse is the API representation of a meal plan.
type mealPlanResponse struct {
	ID              string                        `json:"meal_plan_id"`
	Name            string                        `json:"name"`
	Type            string                        `json:"type"`
	Cost            float64                       `json:"cost"`
	StartDate       *string                       `json:"start_date"`
	EndDate         *string                       `json:"end_date"`
	DiningLocations []diningLocationEntryResponse `json:"dining_locations"`
	CreatedAt       string                        `json:"created_at"`
	UpdatedAt       string                        `json:"updated_at"`
}

func toMealPlanResponse(p *mealplan.MealPlan) mealPlanResponse {
	locations := make([]diningLocationEntryResponse, 0, len(p.DiningLocations))
	for _, l := range p.DiningLocations {
		locations = append(locations, diningLocationEntryResponse{
			ID:       l.ID.String(),
			Name:     l.Name,
			Capacity: l.Capacity,
		})
	}
	return mealPlanResponse{
		ID:              p.ID.String(),
		Name:            p.Name,
		Type:            p.Type,
		Cost:            p.Cost,
		StartDate:       formatOptionalTimestamp(p.StartDate),
		EndDate:         formatOptionalTimestamp(p.EndDate),
		DiningLocations: locations,
		CreatedAt:       formatTimestamp(p.CreatedAt),
		UpdatedAt:       formatTimestamp(p.UpdatedAt),
	}
}

// toValidationEntries converts snapshot entries for validation, trimming names.
func toValidationEntries(entries []diningLocationEntryRequest) []validation.DiningLocationEntry {
	if entries == nil {
		return nil
	}
	out := make([]validation.DiningLocationEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, validation.DiningLocationEntry{
			ID:       e.ID,
			Name:     strings.TrimSpace(e.Name),
			Capacity: (*int)(e.Capacity),
		})
	}
	return out
}

// toPlanLocation converts a validated snapshot entry, generating an
// identifier when the caller did not supply one.
func toPlanLocation(entry diningLocationEntryRequest) mealplan.DiningLocation {
	name := strings.TrimSpace(entry.Name)
	if entry.ID == nil {
		return mealplan.NewDiningLocation(name, int(*entry.Capacity))
	}
	return mealplan.DiningLocation{
		ID:       uuid.MustParse(*entry.ID), // validated above
		Name:     name,
		Capacity: int(*entry.Capacity),
	}
}

func toPlanLocations(entries []diningLocationEntryRequest) []mealplan.DiningLocation {
	locations := make([]mealplan.DiningLocation, 0, len(entries))
	for _, e := range entries {
		locations = append(locations, toPlanLocation(e))
	}
	return locations
}

// MealPlanHandler handles meal plan CRUD endpoints and the attach/detach
// operations on a plan's embedded location list.
type MealPlanHandler struct {
	repo   mealplan.Repository
	strict bool
}

// NewMealPlanHandler creates a new MealPlanHandler. When strict is true,
// request bodies containing unknown fields are rejected.
func NewMealPlanHandler(repo mealplan.Repository, strict bool) *MealPlanHandler {
	return &MealPlanHandler{repo: repo, strict: strict}
}

// Create handles POST /meal-plans.
func (h *MealPlanHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var req createMealPlanRequest
	if !decodeBody(w, r, &req, h.strict, requestID) {
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Type = strings.TrimSpace(req.Type)

	fieldErrors := validation.ValidateCreateMealPlanRequest(validation.CreateMealPlanRequest{
		Name:            req.Name,
		Type:            req.Type,
		Cost:            (*float64)(req.Cost),
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		DiningLocations: toValidationEntries(req.DiningLocations),
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	p := mealplan.New(req.Name, req.Type, float64(*req.Cost),
		mustTimestamp(req.StartDate), mustTimestamp(req.EndDate),
		toPlanLocations(req.DiningLocations))

	if err := h.repo.Create(r.Context(), p); err != nil {
		slog.Error("failed to create meal plan", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create meal plan", requestID)
		return
	}

	response.Success(w, http.StatusCreated, toMealPlanResponse(p), requestID)
}

// List handles GET /meal-plans.
func (h *MealPlanHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	plans, err := h.repo.List(r.Context())
	if err != nil {
		slog.Error("failed to list meal plans", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list meal plans", requestID)
		return
	}

	items := make([]mealPlanResponse, 0, len(plans))
	for i := range plans {
		items = append(items, toMealPlanResponse(&plans[i]))
	}
	response.SuccessList(w, http.StatusOK, items, len(items), requestID)
}

// GetByID handles GET /meal-plans/{id}.
func (h *MealPlanHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	idStr := chi.URLParam(r, "id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_ID", "id must be a valid UUID", requestID)
		return
	}

	p, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, mealplan.ErrMealPlanNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Meal plan not found", requestID)
			return
		}
		slog.Error("failed to get meal plan", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to get meal plan", requestID)
		return
	}

	response.Success(w, http.StatusOK, toMealPlanResponse(p), requestID)
}

// Update handles PATCH /meal-plans/{id}.
func (h *MealPlanHandler) Update(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	idStr := chi.URLParam(r, "id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_ID", "id must be a valid UUID", requestID)
		return
	}

	var req updateMealPlanRequest
	if !decodeBody(w, r, &req, h.strict, requestID) {
		return
	}

	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		req.Name = &trimmed
	}
	if req.Type != nil {
		trimmed := strings.TrimSpace(*req.Type)
		req.Type = &trimmed
	}

	fieldErrors := validation.ValidateUpdateMealPlanRequest(validation.UpdateMealPlanRequest{
		Name:            req.Name,
		Type:            req.Type,
		Cost:            (*float64)(req.Cost),
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		DiningLocations: toValidationEntries(req.DiningLocations),
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	fields := mealplan.UpdateFields{
		Name:      req.Name,
		Type:      req.Type,
		Cost:      (*float64)(req.Cost),
		StartDate: mustTimestamp(req.StartDate),
		EndDate:   mustTimestamp(req.EndDate),
	}
	if req.DiningLocations != nil {
		fields.DiningLocations = toPlanLocations(req.DiningLocations)
	}

	p, err := h.repo.Update(r.Context(), id, fields)
	if err != nil {
		if errors.Is(err, mealplan.ErrMealPlanNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Meal plan not found", requestID)
			return
		}
		if errors.Is(err, mealplan.ErrInvalidPlanDates) {
			response.Err(w, http.StatusBadRequest, "INVALID_DATE_RANGE", "start_date must not be after end_date", requestID)
			return
		}
		slog.Error("failed to update meal plan", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update meal plan", requestID)
		return
	}

	response.Success(w, http.StatusOK, toMealPlanResponse(p), requestID)
}

// Delete handles DELETE /meal-plans/{id}.
func (h *MealPlanHandler) Delete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	idStr := chi.URLParam(r, "id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_ID", "id must be a valid UUID", requestID)
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, mealplan.ErrMealPlanNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Meal plan not found", requestID)
			return
		}
		slog.Error("failed to delete meal plan", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete meal plan", requestID)
		return
	}

	response.NoContent(w)
}

// AttachLocation handles POST /meal-plans/{id}/dining-locations. The body is
// a single location snapshot appended to the plan's list.
func (h *MealPlanHandler) AttachLocation(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	idStr := chi.URLParam(r, "id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_ID", "id must be a valid UUID", requestID)
		return
	}

	var req diningLocationEntryRequest
	if !decodeBody(w, r, &req, h.strict, requestID) {
		return
	}

	req.Name = strings.TrimSpace(req.Name)

	fieldErrors := validation.ValidateDiningLocationEntry(validation.DiningLocationEntry{
		ID:       req.ID,
		Name:     req.Name,
		Capacity: (*int)(req.Capacity),
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	p, err := h.repo.AttachLocation(r.Context(), id, toPlanLocation(req))
	if err != nil {
		if errors.Is(err, mealplan.ErrMealPlanNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Meal plan not found", requestID)
			return
		}
		if errors.Is(err, mealplan.ErrLocationAlreadyAttached) {
			response.Err(w, http.StatusConflict, "DUPLICATE_LOCATION", "Dining location is already attached to this meal plan", requestID)
			return
		}
		slog.Error("failed to attach dining location", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to attach dining location", requestID)
		return
	}

	response.Success(w, http.StatusOK, toMealPlanResponse(p), requestID)
}

// DetachLocation handles DELETE /meal-plans/{id}/dining-locations/{location_id}.
func (h *MealPlanHandler) DetachLocation(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	idStr := chi.URLParam(r, "id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_ID", "id must be a valid UUID", requestID)
		return
	}

	locationIDStr := chi.URLParam(r, "location_id")
	locationID, err := uuid.Parse(locationIDStr)
	if err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_ID", "location_id must be a valid UUID", requestID)
		return
	}

	p, err := h.repo.DetachLocation(r.Context(), id, locationID)
	if err != nil {
		if errors.Is(err, mealplan.ErrMealPlanNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Meal plan not found", requestID)
			return
		}
		if errors.Is(err, mealplan.ErrLocationNotAttached) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Dining location is not attached to this meal plan", requestID)
			return
		}
		slog.Error("failed to detach dining location", "error", err, "id", id, "location_id", locationID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to detach dining location", requestID)
		return
	}

	response.Success(w, http.StatusOK, toMealPlanResponse(p), requestID)
}
