package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/campusdine/mealplan-api/internal/api/handler"
	"github.com/campusdine/mealplan-api/internal/api/middleware"
	"github.com/campusdine/mealplan-api/internal/dininglocation"
	"github.com/campusdine/mealplan-api/internal/mealplan"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	LocationRepo   dininglocation.Repository
	PlanRepo       mealplan.Repository
	DBPinger       handler.DBPinger
	Version        string
	OpenAPISpec    []byte
	StrictDecoding bool
}

// NewRouter creates and configures a Chi router with all middleware and routes.
func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery)
	r.Use(chimiddleware.Logger)

	healthHandler := handler.NewHealthHandler(deps.DBPinger, deps.Version)
	r.Get("/health", healthHandler.ServeHTTP)

	if len(deps.OpenAPISpec) > 0 {
		openapiHandler := handler.NewOpenAPIHandler(deps.OpenAPISpec)
		r.Get("/openapi.json", openapiHandler.ServeHTTP)
	}

	locationHandler := handler.NewDiningLocationHandler(deps.LocationRepo, deps.StrictDecoding)
	r.Route("/dining-locations", func(r chi.Router) {
		r.Post("/", locationHandler.Create)
		r.Get("/", locationHandler.List)
		r.Get("/{id}", locationHandler.GetByID)
		r.Patch("/{id}", locationHandler.Update)
		r.Delete("/{id}", locationHandler.Delete)
	})

	planHandler := handler.NewMealPlanHandler(deps.PlanRepo, deps.StrictDecoding)
	r.Route("/meal-plans", func(r chi.Router) {
		r.Post("/", planHandler.Create)
		r.Get("/", planHandler.List)
		r.Get("/{id}", planHandler.GetByID)
		r.Patch("/{id}", planHandler.Update)
		r.Delete("/{id}", planHandler.Delete)
		r.Post("/{id}/dining-locations", planHandler.AttachLocation)
		r.Delete("/{id}/dining-locations/{location_id}", planHandler.DetachLocation)
	})

	return r
}
