// Package service contains the business logic of the trip planner.
// PlanService owns the single stored plan: every operation loads the current
// document, applies a domain mutation and saves the whole document back.
// No storage details live here; services depend on repo interfaces.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/pkordes/trip-planner/internal/document"
	"github.com/pkordes/trip-planner/internal/domain"
	"github.com/pkordes/trip-planner/internal/geocode"
	"github.com/pkordes/trip-planner/internal/maplink"
	"github.com/pkordes/trip-planner/internal/mapview"
	"github.com/pkordes/trip-planner/internal/repo"
)

// DefaultPlanKey is the store key of the plan when none is configured.
const DefaultPlanKey = "travelPlan"

// PlanService implements the plan operations.
// Operations are serialized: each one loads, mutates and saves under a
// single lock, so concurrent requests never interleave and the last write
// wins.
type PlanService struct {
	mu     sync.Mutex
	store  repo.PlanStore
	key    string
	geo    geocode.Geocoder
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a PlanService.
type Option func(*PlanService)

// WithGeocoder enables coordinate lookup for locations added without them.
func WithGeocoder(g geocode.Geocoder) Option {
	return func(s *PlanService) { s.geo = g }
}

// WithLogger sets the logger used for lookup misses and geocoding failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *PlanService) { s.logger = l }
}

// WithClock replaces time.Now, which stamps new notes.
func WithClock(now func() time.Time) Option {
	return func(s *PlanService) { s.now = now }
}

// NewPlanService constructs a PlanService storing its plan under key.
// An empty key means DefaultPlanKey.
func NewPlanService(store repo.PlanStore, key string, opts ...Option) *PlanService {
	if key == "" {
		key = DefaultPlanKey
	}
	s := &PlanService{
		store:  store,
		key:    key,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ---- plan ------------------------------------------------------------------

// Get returns the current plan, or a fresh empty plan if none is stored.
func (s *PlanService) Get(ctx context.Context) (domain.Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.load(ctx)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("service.PlanService.Get: %w", err)
	}
	return p, nil
}

// SetTitle renames the plan. A blank title resets it to the default.
func (s *PlanService) SetTitle(ctx context.Context, title string) (domain.Plan, error) {
	return s.mutate(ctx, "SetTitle", func(p *domain.Plan) error {
		p.SetTitle(title)
		return nil
	})
}

// SetDates applies a new trip date range and regenerates the days.
// Returns domain.ErrValidation for an unparsable date or an end date before
// the start date; the stored plan is then unchanged.
func (s *PlanService) SetDates(ctx context.Context, start, end string) (domain.Plan, error) {
	return s.mutate(ctx, "SetDates", func(p *domain.Plan) error {
		return p.GenerateDays(start, end)
	})
}

// Clear deletes the stored plan. The next Get returns a fresh plan.
func (s *PlanService) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("service.PlanService.Clear: %w", err)
	}
	return nil
}

// DeleteDay removes a day and renumbers the rest.
func (s *PlanService) DeleteDay(ctx context.Context, dayID string) (domain.Plan, error) {
	return s.mutate(ctx, "DeleteDay", func(p *domain.Plan) error {
		return p.DeleteDay(dayID)
	})
}

// Reorder moves an item within a day or across days.
func (s *PlanService) Reorder(ctx context.Context, sourceDayID, targetDayID, itemID string, targetIndex int) (domain.Plan, error) {
	return s.mutate(ctx, "Reorder", func(p *domain.Plan) error {
		return p.Reorder(sourceDayID, targetDayID, itemID, targetIndex)
	})
}

// ---- items -----------------------------------------------------------------

// AddLocation appends a location to a day. When in.Lat or in.Lng is nil the
// coordinates are looked up from the address, or the name if there is no
// address; a found address fills an empty GoogleAddress. A failed lookup
// leaves the plan unchanged.
func (s *PlanService) AddLocation(ctx context.Context, dayID string, in domain.LocationPatch) (domain.Location, error) {
	loc := domain.Location{
		Name:          strings.TrimSpace(in.Name),
		GoogleAddress: strings.TrimSpace(in.GoogleAddress),
		StartTime:     in.StartTime,
		EndTime:       in.EndTime,
		Notes:         in.Notes,
		Money:         in.Money,
		Currency:      in.Currency,
	}
	if in.Lat != nil && in.Lng != nil {
		loc.Lat, loc.Lng = *in.Lat, *in.Lng
	} else {
		if loc.Name == "" {
			return domain.Location{}, fmt.Errorf("service.PlanService.AddLocation: %w: location name is required", domain.ErrValidation)
		}
		res, err := s.lookup(ctx, locationQuery(loc))
		if err != nil {
			return domain.Location{}, fmt.Errorf("service.PlanService.AddLocation: %w", err)
		}
		loc.Lat, loc.Lng = res.Lat, res.Lng
		if loc.GoogleAddress == "" {
			loc.GoogleAddress = res.DisplayAddress
		}
	}

	_, err := s.mutate(ctx, "AddLocation", func(p *domain.Plan) error {
		d, err := p.Day(dayID)
		if err != nil {
			return err
		}
		return d.AddLocation(&loc)
	})
	if err != nil {
		return domain.Location{}, err
	}
	return loc, nil
}

// EditLocation replaces the editable fields of a location.
func (s *PlanService) EditLocation(ctx context.Context, dayID, itemID string, patch domain.LocationPatch) (domain.Location, error) {
	var out domain.Location
	_, err := s.mutate(ctx, "EditLocation", func(p *domain.Plan) error {
		d, err := p.Day(dayID)
		if err != nil {
			return err
		}
		loc, err := d.EditLocation(itemID, patch)
		if err != nil {
			return err
		}
		out = *loc
		return nil
	})
	return out, err
}

// AddNote appends a note stamped with the current time.
func (s *PlanService) AddNote(ctx context.Context, dayID, content string) (domain.Note, error) {
	n := domain.Note{Content: content, Timestamp: s.now().UTC().Format(time.RFC3339)}
	_, err := s.mutate(ctx, "AddNote", func(p *domain.Plan) error {
		d, err := p.Day(dayID)
		if err != nil {
			return err
		}
		return d.AddNote(&n)
	})
	if err != nil {
		return domain.Note{}, err
	}
	return n, nil
}

// EditNote replaces a note's content. The timestamp is kept.
func (s *PlanService) EditNote(ctx context.Context, dayID, itemID, content string) (domain.Note, error) {
	var out domain.Note
	_, err := s.mutate(ctx, "EditNote", func(p *domain.Plan) error {
		d, err := p.Day(dayID)
		if err != nil {
			return err
		}
		n, err := d.EditNote(itemID, content)
		if err != nil {
			return err
		}
		out = *n
		return nil
	})
	return out, err
}

// DeleteItem removes any item from a day. Adjacent travel is left in place.
func (s *PlanService) DeleteItem(ctx context.Context, dayID, itemID string) error {
	_, err := s.mutate(ctx, "DeleteItem", func(p *domain.Plan) error {
		d, err := p.Day(dayID)
		if err != nil {
			return err
		}
		return d.DeleteItem(itemID)
	})
	return err
}

// ---- travel ----------------------------------------------------------------

// UpdateTransport sets a travel segment's transport method.
func (s *PlanService) UpdateTransport(ctx context.Context, dayID, travelID, method string, f domain.Flanks) (domain.Travel, error) {
	return s.mutateTravel(ctx, "UpdateTransport", dayID, func(d *domain.Day) (*domain.Travel, error) {
		return d.UpdateTransport(travelID, method, f)
	})
}

// UpdateTravelMode switches a travel segment between auto and duration mode.
func (s *PlanService) UpdateTravelMode(ctx context.Context, dayID, travelID string, mode domain.TravelMode, f domain.Flanks) (domain.Travel, error) {
	return s.mutateTravel(ctx, "UpdateTravelMode", dayID, func(d *domain.Day) (*domain.Travel, error) {
		return d.UpdateTravelMode(travelID, mode, f)
	})
}

// UpdateTravelDuration stores a travel duration; in duration mode it also
// moves the next location's start time.
func (s *PlanService) UpdateTravelDuration(ctx context.Context, dayID, travelID string, minutes *int, f domain.Flanks) (domain.Travel, error) {
	return s.mutateTravel(ctx, "UpdateTravelDuration", dayID, func(d *domain.Day) (*domain.Travel, error) {
		return d.UpdateTravelDuration(travelID, minutes, f)
	})
}

// PruneTravel removes a day's dangling travel segments and reports how many
// were removed.
func (s *PlanService) PruneTravel(ctx context.Context, dayID string) (int, error) {
	var removed int
	_, err := s.mutate(ctx, "PruneTravel", func(p *domain.Plan) error {
		d, err := p.Day(dayID)
		if err != nil {
			return err
		}
		removed = d.PruneDanglingTravel()
		return nil
	})
	return removed, err
}

// Segments returns the resolved travel segments of a day.
func (s *PlanService) Segments(ctx context.Context, dayID string) ([]domain.Segment, error) {
	p, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	d, err := p.Day(dayID)
	if err != nil {
		s.logFailure("Segments", err)
		return nil, fmt.Errorf("service.PlanService.Segments: %w", err)
	}
	segs := d.Segments()
	if segs == nil {
		return []domain.Segment{}, nil
	}
	return segs, nil
}

// ---- map -------------------------------------------------------------------

// UpdateLocationCoordinates applies a marker drag, rounding to 6 decimals.
func (s *PlanService) UpdateLocationCoordinates(ctx context.Context, itemID string, lat, lng float64) (domain.Location, error) {
	var out domain.Location
	_, err := s.mutate(ctx, "UpdateLocationCoordinates", func(p *domain.Plan) error {
		loc, err := p.UpdateLocationCoordinates(itemID, lat, lng)
		if err != nil {
			return err
		}
		out = *loc
		return nil
	})
	return out, err
}

// MapsURL returns the map search link of a location.
func (s *PlanService) MapsURL(ctx context.Context, itemID string) (string, error) {
	p, err := s.Get(ctx)
	if err != nil {
		return "", err
	}
	_, loc, err := p.FindLocation(itemID)
	if err != nil {
		s.logFailure("MapsURL", err)
		return "", fmt.Errorf("service.PlanService.MapsURL: %w", err)
	}
	return maplink.GoogleMapsURL(*loc), nil
}

// Markers returns the map view for one day, or all days when dayID is "".
func (s *PlanService) Markers(ctx context.Context, dayID string, editMode bool) (mapview.View, error) {
	p, err := s.Get(ctx)
	if err != nil {
		return mapview.View{}, err
	}
	v, err := mapview.NewView(p, dayID, editMode)
	if err != nil {
		s.logFailure("Markers", err)
		return mapview.View{}, fmt.Errorf("service.PlanService.Markers: %w", err)
	}
	return v, nil
}

// Geocode looks up a free-text query with the configured geocoder.
func (s *PlanService) Geocode(ctx context.Context, query string) (geocode.Result, error) {
	res, err := s.lookup(ctx, query)
	if err != nil {
		return geocode.Result{}, fmt.Errorf("service.PlanService.Geocode: %w", err)
	}
	return res, nil
}

// ---- import / export -------------------------------------------------------

// Export returns the current plan as a pretty-printed document.
func (s *PlanService) Export(ctx context.Context) ([]byte, error) {
	p, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	data, err := document.Encode(p)
	if err != nil {
		return nil, fmt.Errorf("service.PlanService.Export: %w", err)
	}
	return data, nil
}

// ExportRows returns the plan as a flat itinerary table.
func (s *PlanService) ExportRows(ctx context.Context) ([]domain.ExportRow, error) {
	p, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	return p.ExportRows(), nil
}

// Import replaces the stored plan with the given document, migrating legacy
// days. An invalid document wraps document.ErrInvalidDocument. Replacing a
// plan that has days requires overwrite; otherwise domain.ErrConflict is
// returned. Either failure leaves the stored plan untouched. With overwrite
// the stored plan is never read, so an unreadable one can still be replaced.
func (s *PlanService) Import(ctx context.Context, data []byte, overwrite bool) (domain.Plan, error) {
	imported, err := document.Decode(data)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("service.PlanService.Import: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !overwrite {
		if err := s.checkReplaceable(ctx); err != nil {
			return domain.Plan{}, fmt.Errorf("service.PlanService.Import: %w", err)
		}
	}
	if err := s.save(ctx, imported); err != nil {
		return domain.Plan{}, fmt.Errorf("service.PlanService.Import: %w", err)
	}
	s.logger.Info("plan imported", "days", len(imported.Days), "title", imported.Title)
	return imported, nil
}

// ---- internals -------------------------------------------------------------

// checkReplaceable returns ErrConflict when the stored plan has days or
// cannot be read; either way only a confirmed overwrite may replace it.
func (s *PlanService) checkReplaceable(ctx context.Context) error {
	current, err := s.load(ctx)
	if errors.Is(err, document.ErrInvalidDocument) {
		s.logger.Warn("stored plan is unreadable", "key", s.key, "error", err)
		return fmt.Errorf("%w: the stored plan is unreadable; confirm overwrite to replace it", domain.ErrConflict)
	}
	if err != nil {
		return err
	}
	if current.HasDays() {
		return fmt.Errorf("%w: the current plan has days; confirm overwrite to replace it", domain.ErrConflict)
	}
	return nil
}

// mutate runs fn against the freshly loaded plan and saves the result.
// When fn fails nothing is saved. Must not be called with s.mu held.
func (s *PlanService) mutate(ctx context.Context, op string, fn func(p *domain.Plan) error) (domain.Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.load(ctx)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("service.PlanService.%s: %w", op, err)
	}
	if err := fn(&p); err != nil {
		s.logFailure(op, err)
		return domain.Plan{}, fmt.Errorf("service.PlanService.%s: %w", op, err)
	}
	if err := s.save(ctx, p); err != nil {
		return domain.Plan{}, fmt.Errorf("service.PlanService.%s: %w", op, err)
	}
	return p, nil
}

func (s *PlanService) mutateTravel(ctx context.Context, op, dayID string, fn func(d *domain.Day) (*domain.Travel, error)) (domain.Travel, error) {
	var out domain.Travel
	_, err := s.mutate(ctx, op, func(p *domain.Plan) error {
		d, err := p.Day(dayID)
		if err != nil {
			return err
		}
		t, err := fn(d)
		if err != nil {
			return err
		}
		out = *t
		return nil
	})
	return out, err
}

func (s *PlanService) load(ctx context.Context) (domain.Plan, error) {
	data, err := s.store.Get(ctx, s.key)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NewPlan(), nil
	}
	if err != nil {
		return domain.Plan{}, err
	}
	return document.Decode(data)
}

func (s *PlanService) save(ctx context.Context, p domain.Plan) error {
	data, err := document.Encode(p)
	if err != nil {
		return err
	}
	return s.store.Put(ctx, s.key, data)
}

func (s *PlanService) lookup(ctx context.Context, query string) (geocode.Result, error) {
	if s.geo == nil {
		return geocode.Result{}, fmt.Errorf("%w: coordinates are required (geocoding is not configured)", domain.ErrValidation)
	}
	res, err := s.geo.Geocode(ctx, query)
	if err != nil {
		s.logger.Warn("geocoding failed", "query", query, "error", err)
		return geocode.Result{}, err
	}
	return res, nil
}

// logFailure records lookup misses; other domain errors are returned to the
// caller without logging.
func (s *PlanService) logFailure(op string, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		s.logger.Warn("lookup miss", "op", op, "error", err)
	}
}

func locationQuery(loc domain.Location) string {
	if loc.GoogleAddress != "" {
		return loc.GoogleAddress
	}
	return loc.Name
}
