package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusdine/mealplan-api/internal/api/handler"
	"github.com/campusdine/mealplan-api/internal/mealplan"
)

// --- Mock Repository ---

type mockPlanRepo struct {
	createFn         func(ctx context.Context, p *mealplan.MealPlan) error
	getByIDFn        func(ctx context.Context, id uuid.UUID) (*mealplan.MealPlan, error)
	listFn           func(ctx context.Context) ([]mealplan.MealPlan, error)
	updateFn         func(ctx context.Context, id uuid.UUID, fields mealplan.UpdateFields) (*mealplan.MealPlan, error)
	deleteFn         func(ctx context.Context, id uuid.UUID) error
	attachLocationFn func(ctx context.Context, planID uuid.UUID, loc mealplan.DiningLocation) (*mealplan.MealPlan, error)
	detachLocationFn func(ctx context.Context, planID, locationID uuid.UUID) (*mealplan.MealPlan, error)
}

func (m *mockPlanRepo) Create(ctx context.Context, p *mealplan.MealPlan) error {
	if m.createFn != nil {
		return m.createFn(ctx, p)
	}
	return nil
}

func (m *mockPlanRepo) GetByID(ctx context.Context, id uuid.UUID) (*mealplan.MealPlan, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, mealplan.ErrMealPlanNotFound
}

func (m *mockPlanRepo) List(ctx context.Context) ([]mealplan.MealPlan, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return []mealplan.MealPlan{}, nil
}

func (m *mockPlanRepo) Update(ctx context.Context, id uuid.UUID, fields mealplan.UpdateFields) (*mealplan.MealPlan, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, fields)
	}
	return nil, mealplan.ErrMealPlanNotFound
}

func (m *mockPlanRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockPlanRepo) AttachLocation(ctx context.Context, planID uuid.UUID, loc mealplan.DiningLocation) (*mealplan.MealPlan, error) {
	if m.attachLocationFn != nil {
		return m.attachLocationFn(ctx, planID, loc)
	}
	return nil, mealplan.ErrMealPlanNotFound
}

func (m *mockPlanRepo) DetachLocation(ctx context.Context, planID, locationID uuid.UUID) (*mealplan.MealPlan, error) {
	if m.detachLocationFn != nil {
		return m.detachLocationFn(ctx, planID, locationID)
	}
	return nil, mealplan.ErrMealPlanNotFound
}

// --- Helpers ---

const snapshotID = "bbbbbbbb-bbbb-4bbb-8bbb-bbbbbbbbbbbb"

func samplePlan(id uuid.UUID) *mealplan.MealPlan {
	now := time.Now().UTC()
	start := time.Date(2025, 1, 15, 10, 20, 30, 0, time.UTC)
	end := time.Date(2025, 5, 15, 10, 20, 30, 0, time.UTC)
	return &mealplan.MealPlan{
		ID:        id,
		Name:      "Unlimited 7 day",
		Type:      "swipes",
		Cost:      1000,
		StartDate: &start,
		EndDate:   &end,
		DiningLocations: []mealplan.DiningLocation{
			{
				ID:       uuid.MustParse(snapshotID),
				Name:     "Grace Dodge Dining Hall",
				Capacity: 200,
			},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ===== POST /meal-plans =====

func TestPlanCreate_Success(t *testing.T) {
	// Arrange
	repo := &mockPlanRepo{}
	h := handler.NewMealPlanHandler(repo, false)

	body, _ := json.Marshal(map[string]interface{}{
		"name":       "Unlimited 7 day",
		"type":       "swipes",
		"cost":       1000,
		"start_date": "2025-01-15T10:20:30Z",
		"end_date":   "2025-05-15T10:20:30Z",
		"dining_locations": []map[string]interface{}{
			{
				"dining_location_id": snapshotID,
				"name":               "Grace Dodge Dining Hall",
				"capacity":           200,
			},
			{
				"name":     "John Jay Dining Hall",
				"capacity": 400,
			},
		},
	})

	req, w := makeChiRequest(http.MethodPost, "/meal-plans", body, nil)

	// Act
	h.Create(w, req)

	// Assert
	assert.Equal(t, http.StatusCreated, w.Code)

	env := parseEnvelope(t, w)
	assert.Nil(t, env["error"])
	require.NotNil(t, env["data"])

	data := env["data"].(map[string]interface{})
	assert.Equal(t, "Unlimited 7 day", data["name"])
	assert.Equal(t, "swipes", data["type"])
	assert.Equal(t, float64(1000), data["cost"])
	assert.Equal(t, "2025-01-15T10:20:30Z", data["start_date"])
	assert.Equal(t, "2025-05-15T10:20:30Z", data["end_date"])
	assert.NotEmpty(t, data["created_at"])

	_, err := uuid.Parse(data["meal_plan_id"].(string))
	assert.NoError(t, err, "identifier should be server-generated")

	locations := data["dining_locations"].([]interface{})
	require.Len(t, locations, 2)

	first := locations[0].(map[string]interface{})
	assert.Equal(t, snapshotID, first["dining_location_id"])
	assert.Equal(t, "Grace Dodge Dining Hall", first["name"])
	assert.Equal(t, float64(200), first["capacity"])

	second := locations[1].(map[string]interface{})
	generatedID, ok := second["dining_location_id"].(string)
	require.True(t, ok)
	_, err = uuid.Parse(generatedID)
	assert.NoError(t, err, "snapshot without an identifier should get one generated")
}

func TestPlanCreate_CostString(t *testing.T) {
	// Arrange
	repo := &mockPlanRepo{}
	h := handler.NewMealPlanHandler(repo, false)

	body := []byte(`{"name": "Unlimited 7 day", "type": "swipes", "cost": "1000"}`)
	req, w := makeChiRequest(http.MethodPost, "/meal-plans", body, nil)

	// Act
	h.Create(w, req)

	// Assert
	assert.Equal(t, http.StatusCreated, w.Code)

	env := parseEnvelope(t, w)
	data := env["data"].(map[string]interface{})
	assert.Equal(t, float64(1000), data["cost"])
}

func TestPlanCreate_CostTypeError(t *testing.T) {
	// Arrange
	repo := &mockPlanRepo{}
	h := handler.NewMealPlanHandler(repo, false)

	body := []byte(`{"name": "Unlimited 7 day", "type": "swipes", "cost": "not-a-number"}`)
	req, w := makeChiRequest(http.MethodPost, "/meal-plans", body, nil)

	// Act
	h.Create(w, req)

	// Assert
	assert.Equal(t, http.StatusBadRequest, w.Code)

	env := parseEnvelope(t, w)
	errObj := env["error"].(map[string]interface{})
	assert.Equal(t, "VALIDATION_ERROR", errObj["code"])

	detail := detailFor(t, env, "cost")
	assert.Equal(t, "cost must be a valid number", detail["message"])
}

func TestPlanCreate_MissingFields(t *testing.T) {
	// Arrange
	repo := &mockPlanRepo{}
	h := handler.NewMealPlanHandler(repo, false)

	req, w := makeChiRequest(http.MethodPost, "/meal-plans", []byte(`{}`), nil)

	// Act
	h.Create(w, req)

	// Assert
	assert.Equal(t, http.StatusBadRequest, w.Code)

	env := parseEnvelope(t, w)
	errObj := env["error"].(map[string]interface{})
	assert.Equal(t, "VALIDATION_ERROR", errObj["code"])

	assert.NotNil(t, detailFor(t, env, "name"))
	assert.NotNil(t, detailFor(t, env, "type"))
	assert.NotNil(t, detailFor(t, env, "cost"))
}

func TestPlanCreate_DuplicateLocations(t *testing.T) {
	// Arrange
	repo := &mockPlanRepo{}
	h := handler.NewMealPlanHandler(repo, false)

	body, _ := json.Marshal(map[string]interface{}{
		"name": "Unlimited 7 day",
		"type": "swipes",
		"cost": 1000,
		"dining_locations": []map[string]interface{}{
			{"dining_location_id": snapshotID, "name": "Grace Dodge Dining Hall", "capacity": 200},
			{"dining_location_id": snapshotID, "name": "John Jay Dining Hall", "capacity": 400},
		},
	})
	req, w := makeChiRequest(http.MethodPost, "/meal-plans", body, nil)

	// Act
	h.Create(w, req)

	// Assert
	assert.Equal(t, http.StatusBadRequest, w.Code)

	env := parseEnvelope(t, w)
	detail := detailFor(t, env, "dining_locations[1].dining_location_id")
	assert.Contains(t, detail["message"], "unique")
}

func TestPlanCreate_StartAfterEnd(t *testing.T) {
	// Arrange
	repo := &mockPlanRepo{}
	h := handler.NewMealPlanHandler(repo, false)

	body, _ := json.Marshal(map[string]interface{}{
		"name":       "Unlimited 7 day",
		"type":       "swipes",
		"cost":       1000,
		"start_date": "2025-05-15T10:20:30Z",
		"end_date":   "2025-01-15T10:20:30Z",
	})
	req, w := makeChiRequest(http.MethodPost, "/meal-plans", body, nil)

	// Act
	h.Create(w, req)

	// Assert
	assert.Equal(t, http.StatusBadRequest, w.Code)

	env := parseEnvelope(t, w)
	detail := detailFor(t, env, "start_date")
	assert.Equal(t, "start_date must not be after end_date", detail["message"])
}

func TestPlanCreate_Minimal(t *testing.T) {
	// Arrange
	repo := &mockPlanRepo{}
	h := handler.NewMealPlanHandler(repo, false)

	body := []byte(`{"name": "Commuter 50", "type": "swipes", "cost": 450}`)
	req, w := makeChiRequest(http.MethodPost, "/meal-plans", body, nil)

	// Act
	h.Create(w, req)

	// Assert
	assert.Equal(t, http.StatusCreated, w.Code)

	env := parseEnvelope(t, w)
	data := env["data"].(map[string]interface{})
	assert.Nil(t, data["start_date"])
	assert.Nil(t, data["end_date"])

	locations, ok := data["dining_locations"].([]interface{})
	require.True(t, ok, "dining_locations should be an empty array, not null")
	assert.Len(t, locations, 0)
}

func TestPlanCreate_InvalidLocationEntry(t *testing.T) {
	// Arrange
	repo := &mockPlanRepo{}
	h := handler.NewMealPlanHandler(repo, false)

	body, _ := json.Marshal(map[string]interface{}{
		"name": "Unlimited 7 day",
		"type": "swipes",
		"cost": 1000,
		"dining_locations": []map[string]interface{}{
			{"name": "Grace Dodge Dining Hall"},
		},
	})
	req, w := makeChiRequest(http.MethodPost, "/meal-plans", body, nil)

	// Act
	h.Create(w, req)

	// Assert
	assert.Equal(t, http.StatusBadRequest, w.Code)

	env := parseEnvelope(t, w)
	detail := detailFor(t, env, "dining_locations[0].capacity")
	assert.Equal(t, "capacity is required", detail["message"])
}

// ===== GET /meal-plans =====

func TestPlanList_Success(t *testing.T) {
	// Arrange
	repo := &mockPlanRepo{
		listFn: func(ctx context.Context) ([]mealplan.MealPlan, error) {
			return []mealplan.MealPlan{*samplePlan(uuid.New()), *samplePlan(uuid.New())}, nil
		},
	}
	h := handler.NewMealPlanHandler(repo, false)

	req, w := makeChiRequest(http.MethodGet, "/meal-plans", nil, nil)

	// Act
	h.List(w, req)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)

	env := parseEnvelope(t, w)
	data := env["data"].([]interface{})
	assert.Len(t, data, 2)

	meta := env["meta"].(map[string]interface{})
	assert.Equal(t, float64(2), meta["total"])
}

func TestPlanList_Empty(t *testing.T) {
	// Arrange
	repo := &mockPlanRepo{}
	h := handler.NewMealPlanHandler(repo, false)

	req, w := makeChiRequest(http.MethodGet, "/meal-plans", nil, nil)

	// Act
	h.List(w, req)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)

	env := parseEnvelope(t, w)
	data, ok := env["data"].([]interface{})
	require.True(t, ok, "data should be an empty array, not null")
	assert.Len(t, data, 0)
}

// ===== GET /meal-plans/{id} =====

func TestPlanGetByID_Success(t *testing.T) {
	// Arrange
	id := uuid.New()
	repo := &mockPlanRepo{
		getByIDFn: func(ctx context.Context, gotID uuid.UUID) (*mealplan.MealPlan, error) {
			assert.Equal(t, id, gotID)
			return samplePlan(id), nil
		},
	}
	h := handler.NewMealPlanHandler(repo, false)

	req, w := makeChiRequest(http.MethodGet, "/meal-plans/"+id.String(), nil,
		map[string]string{"id": id.String()})

	// Act
	h.GetByID(w, req)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)

	env := parseEnvelope(t, w)
	data := env["data"].(map[string]interface{})
	assert.Equal(t, id.String(), data["meal_plan_id"])
	assert.Equal(t, "Unlimited 7 day", data["name"])
	assert.Equal(t, "2025-01-15T10:20:30Z", data["start_date"])

	locations := data["dining_locations"].([]interface{})
	require.Len(t, locations, 1)
	first := locations[0].(map[string]interface{})
	assert.Equal(t, snapshotID, first["dining_location_id"])
}

func TestPlanGetByID_NotFound(t *testing.T) {
	// Arrange
	repo := &mockPlanRepo{}
	h := handler.NewMealPlanHandler(repo, false)

	id := uuid.New()
	req, w := makeChiRequest(http.MethodGet, "/meal-plans/"+id.String(), nil,
		map[string]string{"id": id.String()})

	// Act
	h.GetByID(w, req)

	// Assert
	assert.Equal(t, http.StatusNotFound, w.Code)

	env := parseEnvelope(t, w)
	errObj := env["error"].(map[string]interface{})
	assert.Equal(t, "NOT_FOUND", errObj["code"])
	assert.Equal(t, "Meal plan not found", errObj["message"])
}

func TestPlanGetByID_InvalidUUID(t *testing.T) {
	// Arrange
	repo := &mockPlanRepo{}
	h := handler.NewMealPlanHandler(repo, false)

	req, w := makeChiRequest(http.MethodGet, "/meal-plans/not-a-uuid", nil,
		map[string]string{"id": "not-a-uuid"})

	// Act
	h.GetByID(w, req)

	// Assert
	assert.Equal(t, http.StatusBadRequest, w.Code)

	env := parseEnvelope(t, w)
	errObj := env["error"].(map[string]interface{})
	assert.Equal(t, "INVALID_ID", errObj["code"])
}

func TestPlanGetByID_SerializationRoundTrip(t *testing.T) {
	// Arrange
	id := uuid.New()
	plan := samplePlan(id)
	repo := &mockPlanRepo{
		getByIDFn: func(ctx context.Context, gotID uuid.UUID) (*mealplan.MealPlan, error) {
			return plan, nil
		},
	}
	h := handler.NewMealPlanHandler(repo, false)

	req, w := makeChiRequest(http.MethodGet, "/meal-plans/"+id.String(), nil,
		map[string]string{"id": id.String()})

	// Act
	h.GetByID(w, req)

	// Assert
	require.Equal(t, http.StatusOK, w.Code)

	var env struct {
		Data struct {
			ID              string   `json:"meal_plan_id"`
			Name            string   `json:"name"`
			Type            string   `json:"type"`
			Cost            float64  `json:"cost"`
			StartDate       *string  `json:"start_date"`
			EndDate         *string  `json:"end_date"`
			DiningLocations []struct {
				ID       string `json:"dining_location_id"`
				Name     string `json:"name"`
				Capacity int    `json:"capacity"`
			} `json:"dining_locations"`
			CreatedAt string `json:"created_at"`
			UpdatedAt string `json:"updated_at"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))

	assert.Equal(t, id.String(), env.Data.ID)
	assert.Equal(t, plan.Name, env.Data.Name)
	assert.Equal(t, plan.Type, env.Data.Type)
	assert.Equal(t, plan.Cost, env.Data.Cost)
	require.NotNil(t, env.Data.StartDate)
	assert.Equal(t, "2025-01-15T10:20:30Z", *env.Data.StartDate)
	require.NotNil(t, env.Data.EndDate)
	assert.Equal(t, "2025-05-15T10:20:30Z", *env.Data.EndDate)
	require.Len(t, env.Data.DiningLocations, 1)
	assert.Equal(t, snapshotID, env.Data.DiningLocations[0].ID)
	assert.Equal(t, plan.DiningLocations[0].Name, env.Data.DiningLocations[0].Name)
	assert.Equal(t, plan.DiningLocations[0].Capacity, env.Data.DiningLocations[0].Capacity)
	assert.Equal(t, plan.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"), env.Data.CreatedAt)

	// Re-serializing the decoded record reproduces the wire document.
	reserialized, err := json.Marshal(env.Data)
	require.NoError(t, err)

	var full map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &full))
	assert.JSONEq(t, string(full["data"]), string(reserialized))
}

// ===== PATCH /meal-plans/{id} =====

func TestPlanUpdate_OnlyCost(t *testing.T) {
	// Arrange
	id := uuid.New()
	var captured mealplan.UpdateFields
	repo := &mockPlanRepo{
		updateFn: func(ctx context.Context, gotID uuid.UUID, fields mealplan.UpdateFields) (*mealplan.MealPlan, error) {
			captured = fields
			p := samplePlan(gotID)
			p.Cost = *fields.Cost
			return p, nil
		},
	}
	h := handler.NewMealPlanHandler(repo, false)

	req, w := makeChiRequest(http.MethodPatch, "/meal-plans/"+id.String(),
		[]byte(`{"cost": 500}`), map[string]string{"id": id.String()})

	// Act
	h.Update(w, req)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)

	require.NotNil(t, captured.Cost)
	assert.Equal(t, float64(500), *captured.Cost)
	assert.Nil(t, captured.Name, "absent fields should not be updated")
	assert.Nil(t, captured.Type)
	assert.Nil(t, captured.StartDate)
	assert.Nil(t, captured.EndDate)
	assert.Nil(t, captured.DiningLocations, "absent dining_locations should leave the list unchanged")

	env := parseEnvelope(t, w)
	data := env["data"].(map[string]interface{})
	assert.Equal(t, float64(500), data["cost"])
}

func TestPlanUpdate_CostString(t *testing.T) {
	// Arrange
	id := uuid.New()
	var captured mealplan.UpdateFields
	repo := &mockPlanRepo{
		updateFn: func(ctx context.Context, gotID uuid.UUID, fields mealplan.UpdateFields) (*mealplan.MealPlan, error) {
			captured = fields
			return samplePlan(gotID), nil
		},
	}
	h := handler.NewMealPlanHandler(repo, false)

	req, w := makeChiRequest(http.MethodPatch, "/meal-plans/"+id.String(),
		[]byte(`{"cost": "500"}`), map[string]string{"id": id.String()})

	// Act
	h.Update(w, req)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, captured.Cost)
	assert.Equal(t, float64(500), *captured.Cost)
}

func TestPlanUpdate_ReplaceLocationsEmpty(t *testing.T) {
	// Arrange
	id := uuid.New()
	var captured mealplan.UpdateFields
	repo := &mockPlanRepo{
		updateFn: func(ctx context.Context, gotID uuid.UUID, fields mealplan.UpdateFields) (*mealplan.MealPlan, error) {
			captured = fields
			p := samplePlan(gotID)
			p.DiningLocations = fields.DiningLocations
			return p, nil
		},
	}
	h := handler.NewMealPlanHandler(repo, false)

	req, w := makeChiRequest(http.MethodPatch, "/meal-plans/"+id.String(),
		[]byte(`{"dining_locations": []}`), map[string]string{"id": id.String()})

	// Act
	h.Update(w, req)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, captured.DiningLocations, "an explicit empty list should replace the stored one")
	assert.Len(t, captured.DiningLocations, 0)
}

func TestPlanUpdate_ReplacesLocations(t *testing.T) {
	// Arrange
	id := uuid.New()
	var captured mealplan.UpdateFields
	repo := &mockPlanRepo{
		updateFn: func(ctx context.Context, gotID uuid.UUID, fields mealplan.UpdateFields) (*mealplan.MealPlan, error) {
			captured = fields
			p := samplePlan(gotID)
			p.DiningLocations = fields.DiningLocations
			return p, nil
		},
	}
	h := handler.NewMealPlanHandler(repo, false)

	body, _ := json.Marshal(map[string]interface{}{
		"dining_locations": []map[string]interface{}{
			{"name": "John Jay Dining Hall", "capacity": 400},
		},
	})
	req, w := makeChiRequest(http.MethodPatch, "/meal-plans/"+id.String(), body,
		map[string]string{"id": id.String()})

	// Act
	h.Update(w, req)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, captured.DiningLocations, 1)
	assert.NotEqual(t, uuid.Nil, captured.DiningLocations[0].ID,
		"snapshot without an identifier should get one generated")
	assert.Equal(t, "John Jay Dining Hall", captured.DiningLocations[0].Name)
}

func TestPlanUpdate_InvalidDateRange(t *testing.T) {
	// Arrange
	id := uuid.New()
	repo := &mockPlanRepo{
		updateFn: func(ctx context.Context, gotID uuid.UUID, fields mealplan.UpdateFields) (*mealplan.MealPlan, error) {
			return nil, mealplan.ErrInvalidPlanDates
		},
	}
	h := handler.NewMealPlanHandler(repo, false)

	req, w := makeChiRequest(http.MethodPatch, "/meal-plans/"+id.String(),
		[]byte(`{"end_date": "2024-01-01T00:00:00Z"}`), map[string]string{"id": id.String()})

	// Act
	h.Update(w, req)

	// Assert
	assert.Equal(t, http.StatusBadRequest, w.Code)

	env := parseEnvelope(t, w)
	errObj := env["error"].(map[string]interface{})
	assert.Equal(t, "INVALID_DATE_RANGE", errObj["code"])
	assert.Equal(t, "start_date must not be after end_date", errObj["message"])
}

func TestPlanUpdate_BothDatesOutOfOrder(t *testing.T) {
	// Arrange
	repo := &mockPlanRepo{}
	h := handler.NewMealPlanHandler(repo, false)

	id := uuid.New()
	body, _ := json.Marshal(map[string]interface{}{
		"start_date": "2025-05-15T10:20:30Z",
		"end_date":   "2025-01-15T10:20:30Z",
	})
	req, w := makeChiRequest(http.MethodPatch, "/meal-plans/"+id.String(), body,
		map[string]string{"id": id.String()})

	// Act
	h.Update(w, req)

	// Assert
	assert.Equal(t, http.StatusBadRequest, w.Code)

	env := parseEnvelope(t, w)
	errObj := env["error"].(map[string]interface{})
	assert.Equal(t, "VALIDATION_ERROR", errObj["code"],
		"ordering of two supplied bounds is caught before the repository")
}

func TestPlanUpdate_NotFound(t *testing.T) {
	// Arrange
	repo := &mockPlanRepo{}
	h := handler.NewMealPlanHandler(repo, false)

	id := uuid.New()
	req, w := makeChiRequest(http.MethodPatch, "/meal-plans/"+id.String(),
		[]byte(`{"cost": 500}`), map[string]string{"id": id.String()})

	// Act
	h.Update(w, req)

	// Assert
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPlanUpdate_InvalidUUID(t *testing.T) {
	// Arrange
	repo := &mockPlanRepo{}
	h := handler.NewMealPlanHandler(repo, false)

	req, w := makeChiRequest(http.MethodPatch, "/meal-plans/abc",
		[]byte(`{"cost": 500}`), map[string]string{"id": "abc"})

	// Act
	h.Update(w, req)

	// Assert
	assert.Equal(t, http.StatusBadRequest, w.Code)

	env := parseEnvelope(t, w)
	errObj := env["error"].(map[string]interface{})
	assert.Equal(t, "INVALID_ID", errObj["code"])
}

// ===== DELETE /meal-plans/{id} =====

func TestPlanDelete_Success(t *testing.T) {
	// Arrange
	id := uuid.New()
	deleted := false
	repo := &mockPlanRepo{
		deleteFn: func(ctx context.Context, gotID uuid.UUID) error {
			assert.Equal(t, id, gotID)
			deleted = true
			return nil
		},
	}
	h := handler.NewMealPlanHandler(repo, false)

	req, w := makeChiRequest(http.MethodDelete, "/meal-plans/"+id.String(), nil,
		map[string]string{"id": id.String()})

	// Act
	h.Delete(w, req)

	// Assert
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.True(t, deleted)
	assert.Empty(t, w.Body.Bytes())
}

func TestPlanDelete_NotFound(t *testing.T) {
	// Arrange
	repo := &mockPlanRepo{
		deleteFn: func(ctx context.Context, id uuid.UUID) error {
			return mealplan.ErrMealPlanNotFound
		},
	}
	h := handler.NewMealPlanHandler(repo, false)

	id := uuid.New()
	req, w := makeChiRequest(http.MethodDelete, "/meal-plans/"+id.String(), nil,
		map[string]string{"id": id.String()})

	// Act
	h.Delete(w, req)

	// Assert
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// ===== POST /meal-plans/{id}/dining-locations =====

func TestPlanAttach_Success(t *testing.T) {
	// Arrange
	planID := uuid.New()
	locationID := uuid.MustParse(snapshotID)
	repo := &mockPlanRepo{
		attachLocationFn: func(ctx context.Context, gotPlanID uuid.UUID, loc mealplan.DiningLocation) (*mealplan.MealPlan, error) {
			assert.Equal(t, planID, gotPlanID)
			assert.Equal(t, locationID, loc.ID)
			assert.Equal(t, "Grace Dodge Dining Hall", loc.Name)
			assert.Equal(t, 200, loc.Capacity)
			return samplePlan(gotPlanID), nil
		},
	}
	h := handler.NewMealPlanHandler(repo, false)

	body, _ := json.Marshal(map[string]interface{}{
		"dining_location_id": snapshotID,
		"name":               "Grace Dodge Dining Hall",
		"capacity":           200,
	})
	req, w := makeChiRequest(http.MethodPost, "/meal-plans/"+planID.String()+"/dining-locations",
		body, map[string]string{"id": planID.String()})

	// Act
	h.AttachLocation(w, req)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)

	env := parseEnvelope(t, w)
	data := env["data"].(map[string]interface{})
	assert.Equal(t, planID.String(), data["meal_plan_id"])
}

func TestPlanAttach_GeneratesID(t *testing.T) {
	// Arrange
	planID := uuid.New()
	var attached mealplan.DiningLocation
	repo := &mockPlanRepo{
		attachLocationFn: func(ctx context.Context, gotPlanID uuid.UUID, loc mealplan.DiningLocation) (*mealplan.MealPlan, error) {
			attached = loc
			return samplePlan(gotPlanID), nil
		},
	}
	h := handler.NewMealPlanHandler(repo, false)

	body := []byte(`{"name": "John Jay Dining Hall", "capacity": 400}`)
	req, w := makeChiRequest(http.MethodPost, "/meal-plans/"+planID.String()+"/dining-locations",
		body, map[string]string{"id": planID.String()})

	// Act
	h.AttachLocation(w, req)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEqual(t, uuid.Nil, attached.ID,
		"snapshot without an identifier should get one generated")
}

func TestPlanAttach_Duplicate(t *testing.T) {
	// Arrange
	planID := uuid.New()
	repo := &mockPlanRepo{
		attachLocationFn: func(ctx context.Context, gotPlanID uuid.UUID, loc mealplan.DiningLocation) (*mealplan.MealPlan, error) {
			return nil, mealplan.ErrLocationAlreadyAttached
		},
	}
	h := handler.NewMealPlanHandler(repo, false)

	body, _ := json.Marshal(map[string]interface{}{
		"dining_location_id": snapshotID,
		"name":               "Grace Dodge Dining Hall",
		"capacity":           200,
	})
	req, w := makeChiRequest(http.MethodPost, "/meal-plans/"+planID.String()+"/dining-locations",
		body, map[string]string{"id": planID.String()})

	// Act
	h.AttachLocation(w, req)

	// Assert
	assert.Equal(t, http.StatusConflict, w.Code)

	env := parseEnvelope(t, w)
	errObj := env["error"].(map[string]interface{})
	assert.Equal(t, "DUPLICATE_LOCATION", errObj["code"])
	assert.Equal(t, "Dining location is already attached to this meal plan", errObj["message"])
}

func TestPlanAttach_PlanNotFound(t *testing.T) {
	// Arrange
	repo := &mockPlanRepo{}
	h := handler.NewMealPlanHandler(repo, false)

	planID := uuid.New()
	body := []byte(`{"name": "Grace Dodge Dining Hall", "capacity": 200}`)
	req, w := makeChiRequest(http.MethodPost, "/meal-plans/"+planID.String()+"/dining-locations",
		body, map[string]string{"id": planID.String()})

	// Act
	h.AttachLocation(w, req)

	// Assert
	assert.Equal(t, http.StatusNotFound, w.Code)

	env := parseEnvelope(t, w)
	errObj := env["error"].(map[string]interface{})
	assert.Equal(t, "NOT_FOUND", errObj["code"])
	assert.Equal(t, "Meal plan not found", errObj["message"])
}

func TestPlanAttach_ValidationError(t *testing.T) {
	// Arrange
	repo := &mockPlanRepo{}
	h := handler.NewMealPlanHandler(repo, false)

	planID := uuid.New()
	req, w := makeChiRequest(http.MethodPost, "/meal-plans/"+planID.String()+"/dining-locations",
		[]byte(`{}`), map[string]string{"id": planID.String()})

	// Act
	h.AttachLocation(w, req)

	// Assert
	assert.Equal(t, http.StatusBadRequest, w.Code)

	env := parseEnvelope(t, w)
	errObj := env["error"].(map[string]interface{})
	assert.Equal(t, "VALIDATION_ERROR", errObj["code"])
	assert.NotNil(t, detailFor(t, env, "name"))
	assert.NotNil(t, detailFor(t, env, "capacity"))
}

func TestPlanAttach_MalformedSnapshotID(t *testing.T) {
	// Arrange
	repo := &mockPlanRepo{}
	h := handler.NewMealPlanHandler(repo, false)

	planID := uuid.New()
	body := []byte(`{"dining_location_id": "not-a-uuid", "name": "Grace Dodge Dining Hall", "capacity": 200}`)
	req, w := makeChiRequest(http.MethodPost, "/meal-plans/"+planID.String()+"/dining-locations",
		body, map[string]string{"id": planID.String()})

	// Act
	h.AttachLocation(w, req)

	// Assert
	assert.Equal(t, http.StatusBadRequest, w.Code)

	env := parseEnvelope(t, w)
	detail := detailFor(t, env, "dining_location_id")
	assert.Equal(t, "dining_location_id must be a valid UUID", detail["message"])
}

// ===== DELETE /meal-plans/{id}/dining-locations/{location_id} =====

func TestPlanDetach_Success(t *testing.T) {
	// Arrange
	planID := uuid.New()
	locationID := uuid.MustParse(snapshotID)
	repo := &mockPlanRepo{
		detachLocationFn: func(ctx context.Context, gotPlanID, gotLocationID uuid.UUID) (*mealplan.MealPlan, error) {
			assert.Equal(t, planID, gotPlanID)
			assert.Equal(t, locationID, gotLocationID)
			p := samplePlan(gotPlanID)
			p.DiningLocations = []mealplan.DiningLocation{}
			return p, nil
		},
	}
	h := handler.NewMealPlanHandler(repo, false)

	req, w := makeChiRequest(http.MethodDelete,
		"/meal-plans/"+planID.String()+"/dining-locations/"+locationID.String(), nil,
		map[string]string{"id": planID.String(), "location_id": locationID.String()})

	// Act
	h.DetachLocation(w, req)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)

	env := parseEnvelope(t, w)
	data := env["data"].(map[string]interface{})
	assert.Equal(t, planID.String(), data["meal_plan_id"])

	locations, ok := data["dining_locations"].([]interface{})
	require.True(t, ok)
	assert.Len(t, locations, 0)
}

func TestPlanDetach_NotAttached(t *testing.T) {
	// Arrange
	planID := uuid.New()
	repo := &mockPlanRepo{
		detachLocationFn: func(ctx context.Context, gotPlanID, gotLocationID uuid.UUID) (*mealplan.MealPlan, error) {
			return nil, mealplan.ErrLocationNotAttached
		},
	}
	h := handler.NewMealPlanHandler(repo, false)

	locationID := uuid.New()
	req, w := makeChiRequest(http.MethodDelete,
		"/meal-plans/"+planID.String()+"/dining-locations/"+locationID.String(), nil,
		map[string]string{"id": planID.String(), "location_id": locationID.String()})

	// Act
	h.DetachLocation(w, req)

	// Assert
	assert.Equal(t, http.StatusNotFound, w.Code)

	env := parseEnvelope(t, w)
	errObj := env["error"].(map[string]interface{})
	assert.Equal(t, "NOT_FOUND", errObj["code"])
	assert.Equal(t, "Dining location is not attached to this meal plan", errObj["message"])
}

func TestPlanDetach_PlanNotFound(t *testing.T) {
	// Arrange
	repo := &mockPlanRepo{}
	h := handler.NewMealPlanHandler(repo, false)

	planID := uuid.New()
	locationID := uuid.New()
	req, w := makeChiRequest(http.MethodDelete,
		"/meal-plans/"+planID.String()+"/dining-locations/"+locationID.String(), nil,
		map[string]string{"id": planID.String(), "location_id": locationID.String()})

	// Act
	h.DetachLocation(w, req)

	// Assert
	assert.Equal(t, http.StatusNotFound, w.Code)

	env := parseEnvelope(t, w)
	errObj := env["error"].(map[string]interface{})
	assert.Equal(t, "Meal plan not found", errObj["message"])
}

func TestPlanDetach_InvalidLocationID(t *testing.T) {
	// Arrange
	repo := &mockPlanRepo{}
	h := handler.NewMealPlanHandler(repo, false)

	planID := uuid.New()
	req, w := makeChiRequest(http.MethodDelete,
		"/meal-plans/"+planID.String()+"/dining-locations/xyz", nil,
		map[string]string{"id": planID.String(), "location_id": "xyz"})

	// Act
	h.DetachLocation(w, req)

	// Assert
	assert.Equal(t, http.StatusBadRequest, w.Code)

	env := parseEnvelope(t, w)
	errObj := env["error"].(map[string]interface{})
	assert.Equal(t, "INVALID_ID", errObj["code"])
	assert.Equal(t, "location_id must be a valid UUID", errObj["message"])
}
