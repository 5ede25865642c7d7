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
	"github.com/campusdine/mealplan-api/internal/dininglocation"
)

// createDiningLocationRequest is the request body for POST /dining-locations.
// Identifiers are always server-generated, so the body carries none.
type createDiningLocationRequest struct {
	Name     string    `json:"name"`
	Capacity *looseInt `json:"capacity"`
}

// updateDiningLocationRequest is the request body for PATCH /dining-locations/{id}.
type updateDiningLocationRequest struct {
	Name     *string   `json:"name"`
	Capacity *looseInt `json:"capacity"`
}

// diningLocationResponse is the API representation of a dining location.
type diningLocationResponse struct {
	ID        string `json:"dining_location_id"`
	Name      string `json:"name"`
	Capacity  int    `json:"capacity"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toDiningLocationResponse(l *dininglocation.DiningLocation) diningLocationResponse {
	return diningLocationResponse{
		ID:        l.ID.String(),
		Name:      l.Name,
		Capacity:  l.Capacity,
		CreatedAt: formatTimestamp(l.CreatedAt),
		UpdatedAt: formatTimestamp(l.UpdatedAt),
	}
}

// DiningLocationHandler handles dining location CRUD endpoints.
type DiningLocationHandler struct {
	repo   dininglocation.Repository
	strict bool
}

// NewDiningLocationHandler creates a new DiningLocationHandler. When strict
// is true, request bodies containing unknown fields are rejected.
func NewDiningLocationHandler(repo dininglocation.Repository, strict bool) *DiningLocationHandler {
	return &DiningLocationHandler{repo: repo, strict: strict}
}

// Create handles POST /dining-locations.
func (h *DiningLocationHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var req createDiningLocationRequest
	if !decodeBody(w, r, &req, h.strict, requestID) {
		return
	}

	req.Name = strings.TrimSpace(req.Name)

	fieldErrors := validation.ValidateCreateDiningLocationRequest(validation.CreateDiningLocationRequest{
		Name:     req.Name,
		Capacity: (*int)(req.Capacity),
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	l := dininglocation.New(req.Name, int(*req.Capacity))

	if err := h.repo.Create(r.Context(), l); err != nil {
		slog.Error("failed to create dining location", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create dining location", requestID)
		return
	}

	response.Success(w, http.StatusCreated, toDiningLocationResponse(l), requestID)
}

// List handles GET /dining-locations.
func (h *DiningLocationHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	locations, err := h.repo.List(r.Context())
	if err != nil {
		slog.Error("failed to list dining locations", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list dining locations", requestID)
		return
	}

	items := make([]diningLocationResponse, 0, len(locations))
	for i := range locations {
		items = append(items, toDiningLocationResponse(&locations[i]))
	}
	response.SuccessList(w, http.StatusOK, items, len(items), requestID)
}

// GetByID handles GET /dining-locations/{id}.
func (h *DiningLocationHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	idStr := chi.URLParam(r, "id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_ID", "id must be a valid UUID", requestID)
		return
	}

	l, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, dininglocation.ErrDiningLocationNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Dining location not found", requestID)
			return
		}
		slog.Error("failed to get dining location", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to get dining location", requestID)
		return
	}

	response.Success(w, http.StatusOK, toDiningLocationResponse(l), requestID)
}

// Update handles PATCH /dining-locations/{id}.
func (h *DiningLocationHandler) Update(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	idStr := chi.URLParam(r, "id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_ID", "id must be a valid UUID", requestID)
		return
	}

	var req updateDiningLocationRequest
	if !decodeBody(w, r, &req, h.strict, requestID) {
		return
	}

	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		req.Name = &trimmed
	}

	fieldErrors := validation.ValidateUpdateDiningLocationRequest(validation.UpdateDiningLocationRequest{
		Name:     req.Name,
		Capacity: (*int)(req.Capacity),
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	fields := dininglocation.UpdateFields{
		Name:     req.Name,
		Capacity: (*int)(req.Capacity),
	}

	l, err := h.repo.Update(r.Context(), id, fields)
	if err != nil {
		if errors.Is(err, dininglocation.ErrDiningLocationNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Dining location not found", requestID)
			return
		}
		slog.Error("failed to update dining location", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update dining location", requestID)
		return
	}

	response.Success(w, http.StatusOK, toDiningLocationResponse(l), requestID)
}

// Delete handles DELETE /dining-locations/{id}.
func (h *DiningLocationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	idStr := chi.URLParam(r, "id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_ID", "id must be a valid UUID", requestID)
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, dininglocation.ErrDiningLocationNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Dining location not found", requestID)
			return
		}
		slog.Error("failed to delete dining location", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete dining location", requestID)
		return
	}

	response.NoContent(w)
}
