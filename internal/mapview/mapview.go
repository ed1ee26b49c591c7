// Package mapview turns a plan into the marker list a map display renders.
// Markers carry everything the display needs (position, label, colour,
// popup markup, whether dragging is allowed); a finished drag is reported
// back through the plan's coordinate update.
package mapview

import (
	"bytes"
	"fmt"
	"html/template"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"

	"github.com/pkordes/trip-planner/internal/domain"
	"github.com/pkordes/trip-planner/internal/maplink"
)

// MaxFitZoom caps the zoom level a display should use when fitting Bounds,
// so a single marker does not zoom to street level.
const MaxFitZoom = 15

// DayColors is the marker palette, indexed by the day's position modulo its
// length.
var DayColors = []string{"#667eea", "#f093fb", "#4facfe", "#43e97b", "#fa709a", "#ff9a9e", "#a8edea", "#ffecd2"}

// Marker is one location pin.
type Marker struct {
	ID        string  `json:"id"`
	DayID     string  `json:"dayId"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	Title     string  `json:"title"`
	IconLabel string  `json:"iconLabel"`
	IconColor string  `json:"iconColor"`
	PopupHTML string  `json:"popupHtml"`
	Draggable bool    `json:"draggable"`
}

// Bounds is the smallest box containing every marker.
type Bounds struct {
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`
}

// View is a marker list with the box a display should fit.
// Bounds is nil when there are no markers.
type View struct {
	Markers    []Marker `json:"markers"`
	Bounds     *Bounds  `json:"bounds,omitempty"`
	MaxFitZoom int      `json:"maxFitZoom"`
}

var notesEngine = goldmark.New(
	goldmark.WithExtensions(
		extension.Strikethrough,
		extension.Linkify,
	),
	goldmark.WithRendererOptions(
		htmlrenderer.WithHardWraps(),
	),
)

var popupTemplate = template.Must(template.New("popup").Parse(
	`<div class="marker-popup">` +
		`<h4>{{.Name}}</h4>` +
		`{{with .Address}}<p class="address">Address: {{.}}</p>{{end}}` +
		`{{with .Time}}<p class="time">{{.}}</p>{{end}}` +
		`{{with .Notes}}<div class="notes">{{.}}</div>{{end}}` +
		`<a href="{{.MapsURL}}" target="_blank" rel="noopener">Open in Google Maps</a>` +
		`</div>`))

type popupData struct {
	Name    string
	Address string
	Time    string
	Notes   template.HTML
	MapsURL string
}

// ColorForDay returns the palette colour of the day at the 0-based index.
func ColorForDay(index int) string {
	return DayColors[index%len(DayColors)]
}

// Markers returns one marker per location of the selected day, or of every
// day when selectedDayID is empty. Labels and colours follow the day's
// position in the whole plan. Markers are draggable only in edit mode.
func Markers(p domain.Plan, selectedDayID string, editMode bool) ([]Marker, error) {
	if selectedDayID != "" {
		if _, err := p.Day(selectedDayID); err != nil {
			return nil, err
		}
	}
	markers := []Marker{}
	for i, d := range p.Days {
		if selectedDayID != "" && d.ID != selectedDayID {
			continue
		}
		for _, loc := range d.Locations() {
			popup, err := Popup(*loc)
			if err != nil {
				return nil, fmt.Errorf("mapview.Markers: %w", err)
			}
			markers = append(markers, Marker{
				ID:        loc.ID,
				DayID:     d.ID,
				Lat:       loc.Lat,
				Lng:       loc.Lng,
				Title:     loc.Name,
				IconLabel: strconv.Itoa(i + 1),
				IconColor: ColorForDay(i),
				PopupHTML: popup,
				Draggable: editMode,
			})
		}
	}
	return markers, nil
}

// NewView builds the marker list together with its fit bounds.
func NewView(p domain.Plan, selectedDayID string, editMode bool) (View, error) {
	markers, err := Markers(p, selectedDayID, editMode)
	if err != nil {
		return View{}, err
	}
	return View{Markers: markers, Bounds: Fit(markers), MaxFitZoom: MaxFitZoom}, nil
}

// Fit returns the bounds of markers, or nil for an empty list.
func Fit(markers []Marker) *Bounds {
	if len(markers) == 0 {
		return nil
	}
	b := &Bounds{South: markers[0].Lat, North: markers[0].Lat, West: markers[0].Lng, East: markers[0].Lng}
	for _, m := range markers[1:] {
		b.South = min(b.South, m.Lat)
		b.North = max(b.North, m.Lat)
		b.West = min(b.West, m.Lng)
		b.East = max(b.East, m.Lng)
	}
	return b
}

// Popup renders the popup markup of loc. Name and address are escaped;
// notes are rendered as Markdown with raw HTML suppressed.
func Popup(loc domain.Location) (string, error) {
	data := popupData{
		Name:    loc.Name,
		Address: loc.GoogleAddress,
		Time:    timeRange(loc),
		MapsURL: maplink.GoogleMapsURL(loc),
	}
	if notes := strings.TrimSpace(loc.Notes); notes != "" {
		var md bytes.Buffer
		if err := notesEngine.Convert([]byte(notes), &md); err != nil {
			data.Notes = template.HTML(template.HTMLEscapeString(notes))
		} else {
			data.Notes = template.HTML(md.String())
		}
	}
	var out bytes.Buffer
	if err := popupTemplate.Execute(&out, data); err != nil {
		return "", err
	}
	return out.String(), nil
}

func timeRange(loc domain.Location) string {
	switch {
	case loc.StartTime != "" && loc.EndTime != "":
		return loc.StartTime + " - " + loc.EndTime
	case loc.StartTime != "":
		return loc.StartTime
	default:
		return loc.EndTime
	}
}
