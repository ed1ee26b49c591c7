package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-planner/internal/document"
	"github.com/pkordes/trip-planner/internal/domain"
	"github.com/pkordes/trip-planner/internal/geocode"
	"github.com/pkordes/trip-planner/internal/handler"
	"github.com/pkordes/trip-planner/internal/mapview"
)

// mockPlanServicer is a test double for every servicer interface.
// Set only the method fields your test needs.
type mockPlanServicer struct {
	get       func(ctx context.Context) (domain.Plan, error)
	setTitle  func(ctx context.Context, title string) (domain.Plan, error)
	setDates  func(ctx context.Context, start, end string) (domain.Plan, error)
	clear     func(ctx context.Context) error
	deleteDay func(ctx context.Context, dayID string) (domain.Plan, error)
	reorder   func(ctx context.Context, src, dst, itemID string, idx int) (domain.Plan, error)

	addLocation  func(ctx context.Context, dayID string, in domain.LocationPatch) (domain.Location, error)
	editLocation func(ctx context.Context, dayID, itemID string, p domain.LocationPatch) (domain.Location, error)
	addNote      func(ctx context.Context, dayID, content string) (domain.Note, error)
	editNote     func(ctx context.Context, dayID, itemID, content string) (domain.Note, error)
	deleteItem   func(ctx context.Context, dayID, itemID string) error

	updateTransport func(ctx context.Context, dayID, travelID, method string, f domain.Flanks) (domain.Travel, error)
	updateMode      func(ctx context.Context, dayID, travelID string, mode domain.TravelMode, f domain.Flanks) (domain.Travel, error)
	updateDuration  func(ctx context.Context, dayID, travelID string, minutes *int, f domain.Flanks) (domain.Travel, error)
	pruneTravel     func(ctx context.Context, dayID string) (int, error)
	segments        func(ctx context.Context, dayID string) ([]domain.Segment, error)

	updateCoords func(ctx context.Context, itemID string, lat, lng float64) (domain.Location, error)
	mapsURL      func(ctx context.Context, itemID string) (string, error)
	markers      func(ctx context.Context, dayID string, edit bool) (mapview.View, error)
	geocode      func(ctx context.Context, q string) (geocode.Result, error)

	export     func(ctx context.Context) ([]byte, error)
	exportRows func(ctx context.Context) ([]domain.ExportRow, error)
	doImport   func(ctx context.Context, data []byte, overwrite bool) (domain.Plan, error)
}

func (m *mockPlanServicer) Get(ctx context.Context) (domain.Plan, error) { return m.get(ctx) }
func (m *mockPlanServicer) SetTitle(ctx context.Context, title string) (domain.Plan, error) {
	return m.setTitle(ctx, title)
}
func (m *mockPlanServicer) SetDates(ctx context.Context, start, end string) (domain.Plan, error) {
	return m.setDates(ctx, start, end)
}
func (m *mockPlanServicer) Clear(ctx context.Context) error { return m.clear(ctx) }
func (m *mockPlanServicer) DeleteDay(ctx context.Context, dayID string) (domain.Plan, error) {
	return m.deleteDay(ctx, dayID)
}
func (m *mockPlanServicer) Reorder(ctx context.Context, src, dst, itemID string, idx int) (domain.Plan, error) {
	return m.reorder(ctx, src, dst, itemID, idx)
}
func (m *mockPlanServicer) AddLocation(ctx context.Context, dayID string, in domain.LocationPatch) (domain.Location, error) {
	return m.addLocation(ctx, dayID, in)
}
func (m *mockPlanServicer) EditLocation(ctx context.Context, dayID, itemID string, p domain.LocationPatch) (domain.Location, error) {
	return m.editLocation(ctx, dayID, itemID, p)
}
func (m *mockPlanServicer) AddNote(ctx context.Context, dayID, content string) (domain.Note, error) {
	return m.addNote(ctx, dayID, content)
}
func (m *mockPlanServicer) EditNote(ctx context.Context, dayID, itemID, content string) (domain.Note, error) {
	return m.editNote(ctx, dayID, itemID, content)
}
func (m *mockPlanServicer) DeleteItem(ctx context.Context, dayID, itemID string) error {
	return m.deleteItem(ctx, dayID, itemID)
}
func (m *mockPlanServicer) UpdateTransport(ctx context.Context, dayID, travelID, method string, f domain.Flanks) (domain.Travel, error) {
	return m.updateTransport(ctx, dayID, travelID, method, f)
}
func (m *mockPlanServicer) UpdateTravelMode(ctx context.Context, dayID, travelID string, mode domain.TravelMode, f domain.Flanks) (domain.Travel, error) {
	return m.updateMode(ctx, dayID, travelID, mode, f)
}
func (m *mockPlanServicer) UpdateTravelDuration(ctx context.Context, dayID, travelID string, minutes *int, f domain.Flanks) (domain.Travel, error) {
	return m.updateDuration(ctx, dayID, travelID, minutes, f)
}
func (m *mockPlanServicer) PruneTravel(ctx context.Context, dayID string) (int, error) {
	return m.pruneTravel(ctx, dayID)
}
func (m *mockPlanServicer) Segments(ctx context.Context, dayID string) ([]domain.Segment, error) {
	return m.segments(ctx, dayID)
}
func (m *mockPlanServicer) UpdateLocationCoordinates(ctx context.Context, itemID string, lat, lng float64) (domain.Location, error) {
	return m.updateCoords(ctx, itemID, lat, lng)
}
func (m *mockPlanServicer) MapsURL(ctx context.Context, itemID string) (string, error) {
	return m.mapsURL(ctx, itemID)
}
func (m *mockPlanServicer) Markers(ctx context.Context, dayID string, edit bool) (mapview.View, error) {
	return m.markers(ctx, dayID, edit)
}
func (m *mockPlanServicer) Geocode(ctx context.Context, q string) (geocode.Result, error) {
	return m.geocode(ctx, q)
}
func (m *mockPlanServicer) Export(ctx context.Context) ([]byte, error) { return m.export(ctx) }
func (m *mockPlanServicer) ExportRows(ctx context.Context) ([]domain.ExportRow, error) {
	return m.exportRows(ctx)
}
func (m *mockPlanServicer) Import(ctx context.Context, data []byte, overwrite bool) (domain.Plan, error) {
	return m.doImport(ctx, data, overwrite)
}

// compile-time checks: mockPlanServicer must satisfy every servicer.
var (
	_ handler.PlanServicer     = (*mockPlanServicer)(nil)
	_ handler.MapServicer      = (*mockPlanServicer)(nil)
	_ handler.TransferServicer = (*mockPlanServicer)(nil)
)

// ---- helpers ---------------------------------------------------------------

// newHTTPHandler wires a Server with the given mock, mirroring main.go.
func newHTTPHandler(svc *mockPlanServicer) http.Handler {
	return handler.NewServer(svc, svc, svc, nil).Routes()
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func do(t *testing.T, svc *mockPlanServicer, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf *bytes.Buffer
	switch b := body.(type) {
	case nil:
		buf = &bytes.Buffer{}
	case string:
		buf = bytes.NewBufferString(b)
	default:
		buf = jsonBody(t, b)
	}
	req := httptest.NewRequest(method, target, buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	newHTTPHandler(svc).ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) handler.ErrorDetail {
	t.Helper()
	var body handler.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body.Error
}

func planFixture() domain.Plan {
	p := domain.NewPlan()
	p.Title = "Paris"
	p.StartDate, p.EndDate = "2025-06-01", "2025-06-01"
	p.Days = []*domain.Day{{
		ID: "day-1", Number: 1, Date: "2025-06-01",
		Items: []domain.Item{&domain.Location{ID: "loc-1", Name: "Louvre", Lat: 48.86, Lng: 2.33}},
	}}
	return p
}

// ---- GET /plan -------------------------------------------------------------

func TestGetPlan_200(t *testing.T) {
	svc := &mockPlanServicer{
		get: func(context.Context) (domain.Plan, error) { return planFixture(), nil },
	}

	rec := do(t, svc, http.MethodGet, "/plan", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var doc document.PlanDocument
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&doc))
	assert.Equal(t, "Paris", doc.Title)
	require.Len(t, doc.Days, 1)
	require.Len(t, doc.Days[0].Items, 1)
	assert.Equal(t, domain.KindLocation, doc.Days[0].Items[0].Type)
}

func TestGetPlan_500_DoesNotLeakError(t *testing.T) {
	svc := &mockPlanServicer{
		get: func(context.Context) (domain.Plan, error) {
			return domain.Plan{}, errors.New("redis: connection refused")
		},
	}

	rec := do(t, svc, http.MethodGet, "/plan", nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	e := decodeError(t, rec)
	assert.Equal(t, "internal_error", e.Code)
	assert.NotContains(t, e.Message, "redis")
}

// ---- DELETE /plan ----------------------------------------------------------

func TestClearPlan_204(t *testing.T) {
	called := false
	svc := &mockPlanServicer{clear: func(context.Context) error { called = true; return nil }}

	rec := do(t, svc, http.MethodDelete, "/plan", nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, called)
}

// ---- PUT /plan/title, /plan/dates ------------------------------------------

func TestSetTitle_200(t *testing.T) {
	var got string
	svc := &mockPlanServicer{setTitle: func(_ context.Context, title string) (domain.Plan, error) {
		got = title
		p := domain.NewPlan()
		p.Title = title
		return p, nil
	}}

	rec := do(t, svc, http.MethodPut, "/plan/title", map[string]any{"title": "Kyoto"})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Kyoto", got)
}

func TestSetDates_200(t *testing.T) {
	var start, end string
	svc := &mockPlanServicer{setDates: func(_ context.Context, s, e string) (domain.Plan, error) {
		start, end = s, e
		return planFixture(), nil
	}}

	rec := do(t, svc, http.MethodPut, "/plan/dates", map[string]any{"startDate": "2025-06-01", "endDate": "2025-06-03"})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2025-06-01", start)
	assert.Equal(t, "2025-06-03", end)
}

func TestSetDates_NullClearsRange(t *testing.T) {
	var start, end = "x", "x"
	svc := &mockPlanServicer{setDates: func(_ context.Context, s, e string) (domain.Plan, error) {
		start, end = s, e
		return domain.NewPlan(), nil
	}}

	rec := do(t, svc, http.MethodPut, "/plan/dates", `{"startDate":null,"endDate":null}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, start)
	assert.Empty(t, end)
}

func TestSetDates_422_BadDate(t *testing.T) {
	svc := &mockPlanServicer{}

	rec := do(t, svc, http.MethodPut, "/plan/dates", `{"startDate":"June 1st"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "validation_error", decodeError(t, rec).Code)
}

func TestSetDates_422_EndBeforeStart(t *testing.T) {
	svc := &mockPlanServicer{setDates: func(context.Context, string, string) (domain.Plan, error) {
		return domain.Plan{}, fmt.Errorf("service.PlanService.SetDates: %w: end date is before start date", domain.ErrValidation)
	}}

	rec := do(t, svc, http.MethodPut, "/plan/dates", map[string]any{"startDate": "2025-06-03", "endDate": "2025-06-01"})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	e := decodeError(t, rec)
	assert.Equal(t, "validation_error", e.Code)
	assert.Equal(t, "end date is before start date", e.Message)
}

func TestSetTitle_422_UnknownField(t *testing.T) {
	rec := do(t, &mockPlanServicer{}, http.MethodPut, "/plan/title", `{"name":"x"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

// ---- days / reorder --------------------------------------------------------

func TestDeleteDay_404(t *testing.T) {
	svc := &mockPlanServicer{deleteDay: func(_ context.Context, id string) (domain.Plan, error) {
		return domain.Plan{}, fmt.Errorf("service.PlanService.DeleteDay: day %s: %w", id, domain.ErrNotFound)
	}}

	rec := do(t, svc, http.MethodDelete, "/plan/days/nope", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeError(t, rec).Code)
}

func TestReorder_200(t *testing.T) {
	var gotSrc, gotDst, gotItem string
	var gotIdx int
	svc := &mockPlanServicer{reorder: func(_ context.Context, src, dst, item string, idx int) (domain.Plan, error) {
		gotSrc, gotDst, gotItem, gotIdx = src, dst, item, idx
		return planFixture(), nil
	}}

	rec := do(t, svc, http.MethodPost, "/plan/reorder", map[string]any{
		"sourceDayId": "d1", "targetDayId": "d2", "itemId": "loc-1", "targetIndex": 0,
	})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "d1", gotSrc)
	assert.Equal(t, "d2", gotDst)
	assert.Equal(t, "loc-1", gotItem)
	assert.Equal(t, 0, gotIdx)
}

func TestReorder_422_MissingIndex(t *testing.T) {
	rec := do(t, &mockPlanServicer{}, http.MethodPost, "/plan/reorder", map[string]any{
		"sourceDayId": "d1", "targetDayId": "d2", "itemId": "loc-1",
	})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

// ---- items -----------------------------------------------------------------

func TestAddLocation_201_WithoutCoordinates(t *testing.T) {
	var got domain.LocationPatch
	svc := &mockPlanServicer{addLocation: func(_ context.Context, dayID string, in domain.LocationPatch) (domain.Location, error) {
		got = in
		return domain.Location{ID: "loc-9", Name: in.Name, Lat: 48.85, Lng: 2.29}, nil
	}}

	rec := do(t, svc, http.MethodPost, "/plan/days/day-1/locations", map[string]any{"name": "Eiffel Tower"})

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Nil(t, got.Lat)
	assert.Nil(t, got.Lng)
	var item document.ItemDocument
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&item))
	assert.Equal(t, "loc-9", item.ID)
	assert.Equal(t, domain.KindLocation, item.Type)
}

func TestAddLocation_422_NoGeocodeResult(t *testing.T) {
	svc := &mockPlanServicer{addLocation: func(context.Context, string, domain.LocationPatch) (domain.Location, error) {
		return domain.Location{}, fmt.Errorf("service.PlanService.AddLocation: %w", geocode.ErrNoResult)
	}}

	rec := do(t, svc, http.MethodPost, "/plan/days/day-1/locations", map[string]any{"name": "Atlantis"})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestAddLocation_502_ProviderFailure(t *testing.T) {
	svc := &mockPlanServicer{addLocation: func(context.Context, string, domain.LocationPatch) (domain.Location, error) {
		return domain.Location{}, fmt.Errorf("service.PlanService.AddLocation: %w",
			&geocode.StatusError{Provider: "locationiq", Status: http.StatusTooManyRequests})
	}}

	rec := do(t, svc, http.MethodPost, "/plan/days/day-1/locations", map[string]any{"name": "Louvre"})

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.JSONEq(t, `{"error":{"code":"geocoding_failed","message":"geocoding provider failed"}}`, rec.Body.String())
}

func TestEditLocation_PassesCoordinates(t *testing.T) {
	var got domain.LocationPatch
	var gotDay, gotItem string
	svc := &mockPlanServicer{editLocation: func(_ context.Context, dayID, itemID string, p domain.LocationPatch) (domain.Location, error) {
		got, gotDay, gotItem = p, dayID, itemID
		return domain.Location{ID: itemID, Name: p.Name}, nil
	}}

	rec := do(t, svc, http.MethodPut, "/plan/days/day-1/locations/loc-1", map[string]any{"name": "Louvre", "lat": 1.5, "lng": 2.5})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "day-1", gotDay)
	assert.Equal(t, "loc-1", gotItem)
	require.NotNil(t, got.Lat)
	assert.InDelta(t, 1.5, *got.Lat, 1e-9)
}

func TestAddNote_201(t *testing.T) {
	svc := &mockPlanServicer{addNote: func(_ context.Context, _ string, content string) (domain.Note, error) {
		return domain.Note{ID: "note-1", Content: content, Timestamp: "2025-05-30T08:15:00Z"}, nil
	}}

	rec := do(t, svc, http.MethodPost, "/plan/days/day-1/notes", map[string]any{"content": "Buy tickets"})

	require.Equal(t, http.StatusCreated, rec.Code)
	var item document.ItemDocument
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&item))
	assert.Equal(t, domain.KindNote, item.Type)
	assert.Equal(t, "Buy tickets", item.Content)
}

func TestDeleteItem_204(t *testing.T) {
	svc := &mockPlanServicer{deleteItem: func(context.Context, string, string) error { return nil }}

	rec := do(t, svc, http.MethodDelete, "/plan/days/day-1/items/loc-1", nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

// ---- travel ----------------------------------------------------------------

func TestUpdateTransport_PassesFlanks(t *testing.T) {
	var gotFlanks domain.Flanks
	var gotMethod string
	svc := &mockPlanServicer{updateTransport: func(_ context.Context, _, travelID, method string, f domain.Flanks) (domain.Travel, error) {
		gotMethod, gotFlanks = method, f
		return domain.Travel{ID: travelID, Transport: method}, nil
	}}

	rec := do(t, svc, http.MethodPut, "/plan/days/day-1/travel/t1/transport", map[string]any{
		"transport": "walk", "fromLocationId": "a", "toLocationId": "b",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "walk", gotMethod)
	assert.Equal(t, domain.Flanks{PrevID: "a", NextID: "b"}, gotFlanks)
}

func TestUpdateTransport_422_Missing(t *testing.T) {
	rec := do(t, &mockPlanServicer{}, http.MethodPut, "/plan/days/day-1/travel/t1/transport", map[string]any{})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestUpdateTravelMode_422_Unknown(t *testing.T) {
	svc := &mockPlanServicer{updateMode: func(_ context.Context, _, _ string, mode domain.TravelMode, _ domain.Flanks) (domain.Travel, error) {
		return domain.Travel{}, fmt.Errorf("%w: unknown travel mode %q", domain.ErrValidation, mode)
	}}

	rec := do(t, svc, http.MethodPut, "/plan/days/day-1/travel/t1/mode", map[string]any{"mode": "warp"})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, `unknown travel mode "warp"`, decodeError(t, rec).Message)
}

func TestUpdateTravelDuration_NullClears(t *testing.T) {
	called := false
	svc := &mockPlanServicer{updateDuration: func(_ context.Context, _, travelID string, minutes *int, _ domain.Flanks) (domain.Travel, error) {
		called = true
		assert.Nil(t, minutes)
		return domain.Travel{ID: travelID, Mode: domain.TravelModeDuration}, nil
	}}

	rec := do(t, svc, http.MethodPut, "/plan/days/day-1/travel/t1/duration", `{"durationMinutes":null}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)
}

func TestPruneTravel_200(t *testing.T) {
	svc := &mockPlanServicer{pruneTravel: func(context.Context, string) (int, error) { return 2, nil }}

	rec := do(t, svc, http.MethodDelete, "/plan/days/day-1/travel/dangling", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"removed":2}`, rec.Body.String())
}

func TestGetSegments_200(t *testing.T) {
	a := &domain.Location{ID: "a", Name: "A"}
	tr := &domain.Travel{ID: "t1", FromLocationID: "a", ToLocationID: "gone"}
	svc := &mockPlanServicer{segments: func(context.Context, string) ([]domain.Segment, error) {
		return []domain.Segment{{Travel: tr, From: a, Dangling: true}}, nil
	}}

	rec := do(t, svc, http.MethodGet, "/plan/days/day-1/segments", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var out []handler.SegmentResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	require.Len(t, out, 1)
	assert.True(t, out[0].Dangling)
	assert.Equal(t, "t1", out[0].Travel.ID)
	require.NotNil(t, out[0].From)
	assert.Nil(t, out[0].To)
}

// ---- map -------------------------------------------------------------------

func TestUpdateCoordinates_422_Missing(t *testing.T) {
	rec := do(t, &mockPlanServicer{}, http.MethodPut, "/plan/locations/loc-1/coordinates", map[string]any{"lat": 1})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestUpdateCoordinates_200(t *testing.T) {
	svc := &mockPlanServicer{updateCoords: func(_ context.Context, id string, lat, lng float64) (domain.Location, error) {
		return domain.Location{ID: id, Name: "Louvre", Lat: lat, Lng: lng}, nil
	}}

	rec := do(t, svc, http.MethodPut, "/plan/locations/loc-1/coordinates", map[string]any{"lat": 48.1, "lng": 2.2})

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetMapsURL_200(t *testing.T) {
	svc := &mockPlanServicer{mapsURL: func(context.Context, string) (string, error) {
		return "https://www.google.com/maps/search/?api=1&query=Louvre", nil
	}}

	rec := do(t, svc, http.MethodGet, "/plan/locations/loc-1/maps-url", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"url":"https://www.google.com/maps/search/?api=1&query=Louvre"}`, rec.Body.String())
}

func TestGetMarkers_ParsesQuery(t *testing.T) {
	var gotDay string
	var gotEdit bool
	svc := &mockPlanServicer{markers: func(_ context.Context, day string, edit bool) (mapview.View, error) {
		gotDay, gotEdit = day, edit
		return mapview.View{Markers: []mapview.Marker{}, MaxFitZoom: mapview.MaxFitZoom}, nil
	}}

	rec := do(t, svc, http.MethodGet, "/plan/markers?day=day-2&edit=true", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "day-2", gotDay)
	assert.True(t, gotEdit)
}

func TestGetMarkers_422_BadEdit(t *testing.T) {
	rec := do(t, &mockPlanServicer{}, http.MethodGet, "/plan/markers?edit=maybe", nil)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestGetGeocode(t *testing.T) {
	svc := &mockPlanServicer{geocode: func(_ context.Context, q string) (geocode.Result, error) {
		return geocode.Result{Lat: 1, Lng: 2, DisplayAddress: q}, nil
	}}

	rec := do(t, svc, http.MethodGet, "/geocode?q=Louvre", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"lat":1,"lng":2,"displayAddress":"Louvre"}`, rec.Body.String())

	rec = do(t, svc, http.MethodGet, "/geocode?q=%20", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestGetGeocode_502_ProviderFailure(t *testing.T) {
	cases := map[string]error{
		"status":  &geocode.StatusError{Provider: "nominatim", Status: http.StatusServiceUnavailable},
		"network": fmt.Errorf("geocode: nominatim: %w: %w", geocode.ErrUnavailable, errors.New("connection refused")),
		"chain": errors.Join(
			&geocode.StatusError{Provider: "locationiq", Status: http.StatusUnauthorized},
			fmt.Errorf("geocode: nominatim: %w: %w", geocode.ErrUnavailable, errors.New("timeout")),
		),
	}
	for name, provErr := range cases {
		t.Run(name, func(t *testing.T) {
			svc := &mockPlanServicer{geocode: func(context.Context, string) (geocode.Result, error) {
				return geocode.Result{}, provErr
			}}

			rec := do(t, svc, http.MethodGet, "/geocode?q=Louvre", nil)

			assert.Equal(t, http.StatusBadGateway, rec.Code)
			assert.JSONEq(t, `{"error":{"code":"geocoding_failed","message":"geocoding provider failed"}}`, rec.Body.String())
		})
	}
}

// ---- export / import -------------------------------------------------------

func TestGetExport_Attachment(t *testing.T) {
	svc := &mockPlanServicer{export: func(context.Context) ([]byte, error) {
		return []byte("{\n  \"title\": \"Paris\"\n}"), nil
	}}

	rec := do(t, svc, http.MethodGet, "/export", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "attachment; filename=travel-plan.json", rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "{\n  \"title\": \"Paris\"\n}", rec.Body.String())
}

func TestGetExport_CSV(t *testing.T) {
	lat, lng := 48.86, 2.33
	svc := &mockPlanServicer{exportRows: func(context.Context) ([]domain.ExportRow, error) {
		return []domain.ExportRow{
			{DayNumber: 1, Date: "2025-06-01", Position: 1, Type: domain.KindLocation, Name: "Louvre, Paris", Lat: &lat, Lng: &lng, Money: 22, Currency: "EUR"},
			{DayNumber: 1, Date: "2025-06-01", Position: 2, Type: domain.KindTravel, Transport: "walk", TravelTime: "30mins"},
			{DayNumber: 2, Date: "2025-06-02"},
		}, nil
	}}

	rec := do(t, svc, http.MethodGet, "/export?format=csv", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=travel-plan.csv", rec.Header().Get("Content-Disposition"))
	want := "day,date,position,type,name,address,start_time,end_time,lat,lng,notes,money,currency,transport,travel_time\n" +
		"1,2025-06-01,1,location,\"Louvre, Paris\",,,,48.86,2.33,,22,EUR,,\n" +
		"1,2025-06-01,2,travel,,,,,,,,,,walk,30mins\n" +
		"2,2025-06-02,,,,,,,,,,,,,\n"
	assert.Equal(t, want, rec.Body.String())
}

func TestGetExport_422_UnknownFormat(t *testing.T) {
	rec := do(t, &mockPlanServicer{}, http.MethodGet, "/export?format=xml", nil)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestPostImport_RawBody(t *testing.T) {
	var gotOverwrite bool
	var gotData string
	svc := &mockPlanServicer{doImport: func(_ context.Context, data []byte, overwrite bool) (domain.Plan, error) {
		gotData, gotOverwrite = string(data), overwrite
		return planFixture(), nil
	}}

	rec := do(t, svc, http.MethodPost, "/import?overwrite=true", `{"days":[]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, gotOverwrite)
	assert.Equal(t, `{"days":[]}`, gotData)
}

func TestPostImport_409_Conflict(t *testing.T) {
	svc := &mockPlanServicer{doImport: func(context.Context, []byte, bool) (domain.Plan, error) {
		return domain.Plan{}, fmt.Errorf("service.PlanService.Import: %w: the current plan has days", domain.ErrConflict)
	}}

	rec := do(t, svc, http.MethodPost, "/import", `{"days":[]}`)

	assert.Equal(t, http.StatusConflict, rec.Code)
	e := decodeError(t, rec)
	assert.Equal(t, "conflict", e.Code)
	assert.Equal(t, "the current plan has days", e.Message)
}

func TestPostImport_422_InvalidDocument(t *testing.T) {
	svc := &mockPlanServicer{doImport: func(context.Context, []byte, bool) (domain.Plan, error) {
		return domain.Plan{}, fmt.Errorf("service.PlanService.Import: %w: days must be an array", document.ErrInvalidDocument)
	}}

	rec := do(t, svc, http.MethodPost, "/import", `{"days":1}`)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func multipartRequest(t *testing.T, filename, contentType, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(map[string][]string)
	h["Content-Disposition"] = []string{fmt.Sprintf(`form-data; name="file"; filename=%q`, filename)}
	h["Content-Type"] = []string{contentType}
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestPostImport_MultipartFile(t *testing.T) {
	var gotData string
	svc := &mockPlanServicer{doImport: func(_ context.Context, data []byte, _ bool) (domain.Plan, error) {
		gotData = string(data)
		return planFixture(), nil
	}}
	req := multipartRequest(t, "travel-plan.json", "application/octet-stream", `{"days":[]}`)
	rec := httptest.NewRecorder()

	newHTTPHandler(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `{"days":[]}`, gotData)
}

func TestPostImport_422_NotJSONFile(t *testing.T) {
	svc := &mockPlanServicer{}
	req := multipartRequest(t, "notes.txt", "text/plain", "hello")
	rec := httptest.NewRecorder()

	newHTTPHandler(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decodeError(t, rec).Message, "notes.txt")
}

func TestPostImport_422_RawBodyNotJSON(t *testing.T) {
	called := false
	svc := &mockPlanServicer{doImport: func(context.Context, []byte, bool) (domain.Plan, error) {
		called = true
		return planFixture(), nil
	}}
	for _, ct := range []string{"text/plain", ""} {
		req := httptest.NewRequest(http.MethodPost, "/import", bytes.NewBufferString(`{"days":[]}`))
		if ct != "" {
			req.Header.Set("Content-Type", ct)
		}
		rec := httptest.NewRecorder()

		newHTTPHandler(svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, "content type %q", ct)
		assert.Contains(t, decodeError(t, rec).Message, "application/json")
	}
	assert.False(t, called)
}

func TestPostImport_413_TooLarge(t *testing.T) {
	svc := &mockPlanServicer{}
	req := httptest.NewRequest(http.MethodPost, "/import", bytes.NewBufferString(`{"days":[]}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	req.Body = http.MaxBytesReader(rec, req.Body, 4)

	newHTTPHandler(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}
