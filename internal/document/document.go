// Package document converts between the domain Plan and its persisted JSON
// form. The same document is stored under the plan key, downloaded by
// export and accepted by import.
//
// Older documents kept locations and notes in separate per-day arrays.
// They are migrated to the unified items list here, once, when a document is
// decoded; the rest of the module only ever sees the unified shape.
package document

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/pkordes/trip-planner/internal/domain"
)

// Filename is the suggested name of an exported plan file.
const Filename = "travel-plan.json"

// ErrInvalidDocument is returned when a document is not valid JSON or fails
// the structural checks of Validate.
var ErrInvalidDocument = errors.New("invalid plan document")

// PlanDocument is the wire form of domain.Plan.
type PlanDocument struct {
	Title     string         `json:"title"`
	StartDate string         `json:"startDate"`
	EndDate   string         `json:"endDate"`
	Days      []*DayDocument `json:"days"`
}

// DayDocument is the wire form of domain.Day. Items is nil when the day was
// written by an older version that used Locations and Notes instead.
type DayDocument struct {
	ID     string         `json:"id"`
	Number int            `json:"number"`
	Date   string         `json:"date"`
	Items  []ItemDocument `json:"items"`

	Locations []ItemDocument `json:"locations,omitempty"`
	Notes     []ItemDocument `json:"notes,omitempty"`
}

// ItemDocument is the flat wire form shared by every item variant. Which
// fields are meaningful depends on Type.
type ItemDocument struct {
	ID   string          `json:"id"`
	Type domain.ItemKind `json:"type,omitempty"`

	// location
	Name          string   `json:"name,omitempty"`
	Lat           *float64 `json:"lat,omitempty"`
	Lng           *float64 `json:"lng,omitempty"`
	GoogleAddress string   `json:"googleAddress,omitempty"`
	StartTime     string   `json:"startTime,omitempty"`
	EndTime       string   `json:"endTime,omitempty"`
	Time          string   `json:"time,omitempty"` // pre-startTime documents
	Notes         string   `json:"notes,omitempty"`
	Money         float64  `json:"money,omitempty"`
	Currency      string   `json:"currency,omitempty"`

	// note
	Content   string `json:"content,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`

	// travel
	Transport       *string `json:"transport,omitempty"`
	Mode            string  `json:"mode,omitempty"`
	DurationMinutes *int    `json:"durationMinutes,omitempty"`
	FromLocationID  string  `json:"fromLocationId,omitempty"`
	ToLocationID    string  `json:"toLocationId,omitempty"`
}

// CombinedItems returns the unified item list of d. When d still has the
// legacy shape, the list is built from its locations followed by its notes,
// stored on d, and the legacy fields are cleared. Calling it again returns
// the same slice.
func CombinedItems(d *DayDocument) []ItemDocument {
	if d.Items != nil {
		return d.Items
	}
	items := make([]ItemDocument, 0, len(d.Locations)+len(d.Notes))
	for _, l := range d.Locations {
		l.Type = domain.KindLocation
		items = append(items, l)
	}
	for _, n := range d.Notes {
		n.Type = domain.KindNote
		items = append(items, n)
	}
	d.Items = items
	d.Locations = nil
	d.Notes = nil
	return d.Items
}

// Decode validates data, migrates every day to the unified shape and
// returns the resulting plan. Any failure wraps ErrInvalidDocument.
func Decode(data []byte) (domain.Plan, error) {
	if err := Validate(data); err != nil {
		return domain.Plan{}, err
	}
	var doc PlanDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return domain.Plan{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return ToPlan(&doc)
}

// ToPlan converts doc to a domain plan, migrating legacy days in place.
func ToPlan(doc *PlanDocument) (domain.Plan, error) {
	p := domain.NewPlan()
	p.SetTitle(doc.Title)
	p.StartDate = normalizeStored(doc.StartDate)
	p.EndDate = normalizeStored(doc.EndDate)

	for i, dd := range doc.Days {
		if dd == nil {
			return domain.Plan{}, fmt.Errorf("%w: days[%d] is null", ErrInvalidDocument, i)
		}
		day := &domain.Day{ID: dd.ID, Number: i + 1, Date: dd.Date, Items: []domain.Item{}}
		for j, it := range CombinedItems(dd) {
			item, err := toItem(it)
			if err != nil {
				return domain.Plan{}, fmt.Errorf("%w: days[%d].items[%d]: %v", ErrInvalidDocument, i, j, err)
			}
			day.Items = append(day.Items, item)
		}
		resolveFlanks(day)
		p.Days = append(p.Days, day)
	}
	return p, nil
}

// Encode serializes p as a pretty-printed document.
func Encode(p domain.Plan) ([]byte, error) {
	return json.MarshalIndent(FromPlan(p), "", "  ")
}

// FromPlan converts p to its wire form.
func FromPlan(p domain.Plan) *PlanDocument {
	doc := &PlanDocument{
		Title:     p.Title,
		StartDate: p.StartDate,
		EndDate:   p.EndDate,
		Days:      make([]*DayDocument, 0, len(p.Days)),
	}
	for _, d := range p.Days {
		dd := &DayDocument{ID: d.ID, Number: d.Number, Date: d.Date, Items: make([]ItemDocument, 0, len(d.Items))}
		for _, it := range d.Items {
			dd.Items = append(dd.Items, ItemToDocument(it))
		}
		doc.Days = append(doc.Days, dd)
	}
	return doc
}

// ItemToDocument converts a single item to its wire form.
func ItemToDocument(it domain.Item) ItemDocument {
	switch v := it.(type) {
	case *domain.Location:
		lat, lng := v.Lat, v.Lng
		doc := ItemDocument{
			ID:            v.ID,
			Type:          domain.KindLocation,
			Name:          v.Name,
			Lat:           &lat,
			Lng:           &lng,
			GoogleAddress: v.GoogleAddress,
			StartTime:     v.StartTime,
			EndTime:       v.EndTime,
			Notes:         v.Notes,
		}
		if v.Money > 0 {
			doc.Money = v.Money
			doc.Currency = v.Currency
		}
		return doc
	case *domain.Note:
		return ItemDocument{ID: v.ID, Type: domain.KindNote, Content: v.Content, Timestamp: v.Timestamp}
	case *domain.Travel:
		transport := v.Transport
		doc := ItemDocument{
			ID:             v.ID,
			Type:           domain.KindTravel,
			Transport:      &transport,
			Mode:           string(v.Mode),
			FromLocationID: v.FromLocationID,
			ToLocationID:   v.ToLocationID,
		}
		if v.Mode == domain.TravelModeDuration {
			minutes := v.DurationMinutes
			doc.DurationMinutes = &minutes
		}
		return doc
	default:
		panic(fmt.Sprintf("document: unknown item type %T", it))
	}
}

// Importable reports whether an uploaded file looks like a plan document:
// a .json extension or an application/json content type.
func Importable(filename, contentType string) bool {
	if strings.EqualFold(filepath.Ext(filename), ".json") {
		return true
	}
	mt, _, err := mime.ParseMediaType(contentType)
	return err == nil && mt == "application/json"
}

func toItem(it ItemDocument) (domain.Item, error) {
	switch it.Type {
	case domain.KindLocation:
		loc := &domain.Location{
			ID:            it.ID,
			Name:          it.Name,
			GoogleAddress: it.GoogleAddress,
			StartTime:     it.StartTime,
			EndTime:       it.EndTime,
			Notes:         it.Notes,
		}
		if it.Lat != nil {
			loc.Lat = *it.Lat
		}
		if it.Lng != nil {
			loc.Lng = *it.Lng
		}
		if loc.StartTime == "" {
			loc.StartTime = it.Time
		}
		if it.Money > 0 {
			loc.Money = it.Money
			loc.Currency = it.Currency
			if loc.Currency == "" {
				loc.Currency = domain.DefaultCurrency
			}
		}
		return loc, nil
	case domain.KindNote:
		return &domain.Note{ID: it.ID, Content: it.Content, Timestamp: it.Timestamp}, nil
	case domain.KindTravel:
		t := &domain.Travel{
			ID:             it.ID,
			Mode:           domain.TravelMode(it.Mode),
			FromLocationID: it.FromLocationID,
			ToLocationID:   it.ToLocationID,
		}
		if it.Transport != nil {
			t.Transport = *it.Transport
		}
		if it.DurationMinutes != nil && *it.DurationMinutes > 0 {
			t.DurationMinutes = *it.DurationMinutes
		}
		return t, nil
	default:
		return nil, fmt.Errorf("unknown item type %q", it.Type)
	}
}

// resolveFlanks fills missing travel flank references from the nearest
// location before and after each travel item, which is how documents
// without stored references placed them.
func resolveFlanks(d *domain.Day) {
	for i, it := range d.Items {
		t, ok := it.(*domain.Travel)
		if !ok {
			continue
		}
		if t.FromLocationID == "" {
			for j := i - 1; j >= 0; j-- {
				if loc, ok := d.Items[j].(*domain.Location); ok {
					t.FromLocationID = loc.ID
					break
				}
			}
		}
		if t.ToLocationID == "" {
			for j := i + 1; j < len(d.Items); j++ {
				if loc, ok := d.Items[j].(*domain.Location); ok {
					t.ToLocationID = loc.ID
					break
				}
			}
		}
	}
}

func normalizeStored(s string) string {
	if iso, err := domain.NormalizeDate(s); err == nil {
		return iso
	}
	return s
}
