// Package handler implements the HTTP handlers for the trip planner API.
// All handlers are methods on Server. Methods are split into concern-specific
// files (health.go, plan.go, items.go, travel.go, maps.go, export.go) but all
// share the same Server struct so they can access its dependencies.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pkordes/trip-planner/internal/domain"
	"github.com/pkordes/trip-planner/internal/geocode"
	"github.com/pkordes/trip-planner/internal/mapview"
)

// PlanServicer defines the plan editing operations the handlers depend on.
// Defining the interface here (in the consumer package) lets handler tests
// inject a mock without touching storage or the service layer.
type PlanServicer interface {
	Get(ctx context.Context) (domain.Plan, error)
	SetTitle(ctx context.Context, title string) (domain.Plan, error)
	SetDates(ctx context.Context, start, end string) (domain.Plan, error)
	Clear(ctx context.Context) error
	DeleteDay(ctx context.Context, dayID string) (domain.Plan, error)
	Reorder(ctx context.Context, sourceDayID, targetDayID, itemID string, targetIndex int) (domain.Plan, error)

	AddLocation(ctx context.Context, dayID string, in domain.LocationPatch) (domain.Location, error)
	EditLocation(ctx context.Context, dayID, itemID string, patch domain.LocationPatch) (domain.Location, error)
	AddNote(ctx context.Context, dayID, content string) (domain.Note, error)
	EditNote(ctx context.Context, dayID, itemID, content string) (domain.Note, error)
	DeleteItem(ctx context.Context, dayID, itemID string) error

	UpdateTransport(ctx context.Context, dayID, travelID, method string, f domain.Flanks) (domain.Travel, error)
	UpdateTravelMode(ctx context.Context, dayID, travelID string, mode domain.TravelMode, f domain.Flanks) (domain.Travel, error)
	UpdateTravelDuration(ctx context.Context, dayID, travelID string, minutes *int, f domain.Flanks) (domain.Travel, error)
	PruneTravel(ctx context.Context, dayID string) (int, error)
	Segments(ctx context.Context, dayID string) ([]domain.Segment, error)
}

// MapServicer defines the map and geocoding operations.
type MapServicer interface {
	UpdateLocationCoordinates(ctx context.Context, itemID string, lat, lng float64) (domain.Location, error)
	MapsURL(ctx context.Context, itemID string) (string, error)
	Markers(ctx context.Context, dayID string, editMode bool) (mapview.View, error)
	Geocode(ctx context.Context, query string) (geocode.Result, error)
}

// TransferServicer defines document export and import.
type TransferServicer interface {
	Export(ctx context.Context) ([]byte, error)
	ExportRows(ctx context.Context) ([]domain.ExportRow, error)
	Import(ctx context.Context, data []byte, overwrite bool) (domain.Plan, error)
}

// Server holds the dependencies of every endpoint.
// Wire it in main.go by mounting Routes() on the root router.
type Server struct {
	plans    PlanServicer
	maps     MapServicer
	transfer TransferServicer
	logger   *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
// A nil logger falls back to slog.Default().
func NewServer(plans PlanServicer, maps MapServicer, transfer TransferServicer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{plans: plans, maps: maps, transfer: transfer, logger: logger}
}

// NewHealthHandler returns a Server for health-check-only use.
func NewHealthHandler() *Server {
	return NewServer(nil, nil, nil, nil)
}

// Routes returns the chi router serving every endpoint.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Route("/plan", func(r chi.Router) {
		r.Get("/", s.GetPlan)
		r.Delete("/", s.ClearPlan)
		r.Put("/title", s.SetTitle)
		r.Put("/dates", s.SetDates)
		r.Post("/reorder", s.Reorder)
		r.Get("/markers", s.GetMarkers)

		r.Route("/days/{dayId}", func(r chi.Router) {
			r.Delete("/", s.DeleteDay)
			r.Get("/segments", s.GetSegments)
			r.Post("/locations", s.AddLocation)
			r.Put("/locations/{itemId}", s.EditLocation)
			r.Post("/notes", s.AddNote)
			r.Put("/notes/{itemId}", s.EditNote)
			r.Delete("/items/{itemId}", s.DeleteItem)
			r.Delete("/travel/dangling", s.PruneTravel)
			r.Put("/travel/{travelId}/transport", s.UpdateTransport)
			r.Put("/travel/{travelId}/mode", s.UpdateTravelMode)
			r.Put("/travel/{travelId}/duration", s.UpdateTravelDuration)
		})

		r.Put("/locations/{itemId}/coordinates", s.UpdateCoordinates)
		r.Get("/locations/{itemId}/maps-url", s.GetMapsURL)
	})

	r.Get("/export", s.GetExport)
	r.Post("/import", s.PostImport)
	r.Get("/geocode", s.GetGeocode)

	return r
}
