package mapview_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-planner/internal/domain"
	"github.com/pkordes/trip-planner/internal/mapview"
)

// threeDayPlan has two locations on day 1, none on day 2 and one on day 3.
func threeDayPlan(t *testing.T) domain.Plan {
	t.Helper()
	p := domain.NewPlan()
	require.NoError(t, p.GenerateDays("2025-06-01", "2025-06-03"))
	require.NoError(t, p.Days[0].AddLocation(&domain.Location{ID: "a", Name: "Louvre", Lat: 48.8606, Lng: 2.3376}))
	require.NoError(t, p.Days[0].AddLocation(&domain.Location{ID: "b", Name: "Orsay", Lat: 48.86, Lng: 2.3266}))
	require.NoError(t, p.Days[0].AddNote(&domain.Note{Content: "n", Timestamp: "2025-06-01T00:00:00Z"}))
	require.NoError(t, p.Days[2].AddLocation(&domain.Location{ID: "c", Name: "Versailles Palace", Lat: 48.8049, Lng: 2.1204}))
	return p
}

func TestMarkers_AllDays(t *testing.T) {
	p := threeDayPlan(t)

	got, err := mapview.Markers(p, "", false)

	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "1", got[0].IconLabel)
	assert.Equal(t, "#667eea", got[0].IconColor)
	assert.Equal(t, "c", got[2].ID)
	assert.Equal(t, "3", got[2].IconLabel)
	assert.Equal(t, "#4facfe", got[2].IconColor)
	assert.Equal(t, p.Days[2].ID, got[2].DayID)
	for _, m := range got {
		assert.False(t, m.Draggable)
	}
}

func TestMarkers_SelectedDayKeepsPlanPosition(t *testing.T) {
	p := threeDayPlan(t)

	got, err := mapview.Markers(p, p.Days[2].ID, true)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "3", got[0].IconLabel)
	assert.Equal(t, "#4facfe", got[0].IconColor)
	assert.True(t, got[0].Draggable)
}

func TestMarkers_EmptyDayAndUnknownDay(t *testing.T) {
	p := threeDayPlan(t)

	got, err := mapview.Markers(p, p.Days[1].ID, false)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = mapview.Markers(p, "nope", false)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestColorForDay_Wraps(t *testing.T) {
	assert.Equal(t, "#ffecd2", mapview.ColorForDay(7))
	assert.Equal(t, "#667eea", mapview.ColorForDay(8))
	assert.Equal(t, "#f093fb", mapview.ColorForDay(9))
}

func TestFit(t *testing.T) {
	assert.Nil(t, mapview.Fit(nil))

	b := mapview.Fit([]mapview.Marker{{Lat: 10, Lng: -5}, {Lat: -2, Lng: 30}, {Lat: 4, Lng: 1}})

	require.NotNil(t, b)
	assert.Equal(t, mapview.Bounds{South: -2, West: -5, North: 10, East: 30}, *b)
}

func TestNewView(t *testing.T) {
	v, err := mapview.NewView(threeDayPlan(t), "", true)

	require.NoError(t, err)
	assert.Len(t, v.Markers, 3)
	require.NotNil(t, v.Bounds)
	assert.InDelta(t, 48.8049, v.Bounds.South, 1e-9)
	assert.Equal(t, mapview.MaxFitZoom, v.MaxFitZoom)
}

func TestPopup_EscapesAndRendersNotes(t *testing.T) {
	loc := domain.Location{
		Name:          `<script>alert("x")</script>`,
		GoogleAddress: "Rue de Rivoli, 75001 Paris",
		StartTime:     "09:00",
		EndTime:       "11:30",
		Notes:         "**Book** tickets\n<img src=x onerror=alert(1)>",
	}

	html, err := mapview.Popup(loc)

	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
	assert.Contains(t, html, "Address: Rue de Rivoli, 75001 Paris")
	assert.Contains(t, html, "09:00 - 11:30")
	assert.Contains(t, html, "<strong>Book</strong>")
	assert.NotContains(t, html, "<img")
	assert.Contains(t, html, "query=Rue%20de%20Rivoli")
}

func TestPopup_OmitsEmptySections(t *testing.T) {
	html, err := mapview.Popup(domain.Location{Name: "Louvre"})

	require.NoError(t, err)
	assert.NotContains(t, html, "Address:")
	assert.NotContains(t, html, `class="notes"`)
	assert.NotContains(t, html, `class="time"`)
}
