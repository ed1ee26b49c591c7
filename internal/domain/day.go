package domain

import (
	"fmt"
	"strings"

	"github.com/pkordes/trip-planner/internal/timeofday"
)

// Day is one calendar date of the trip. Number is the day's 1-based position
// in Plan.Days and is maintained by Plan; it is never set independently.
type Day struct {
	ID     string
	Number int
	Date   string
	Items  []Item
}

// NewDay returns an empty day with a fresh id.
func NewDay(number int, date string) *Day {
	return &Day{ID: NewID("day"), Number: number, Date: date, Items: []Item{}}
}

// LocationPatch carries the editable fields of a location. Text fields are
// replaced wholesale; Lat and Lng are only applied when non-nil.
type LocationPatch struct {
	Name          string
	GoogleAddress string
	StartTime     string
	EndTime       string
	Notes         string
	Money         float64
	Currency      string
	Lat           *float64
	Lng           *float64
}

// Flanks names the locations a travel segment sits between. Empty ids leave
// the corresponding stored reference unchanged.
type Flanks struct {
	PrevID string
	NextID string
}

// Segment is the derived view of one travel item: its resolved flanking
// locations and the duration text shown between them.
type Segment struct {
	Travel   *Travel
	From     *Location
	To       *Location
	Dangling bool
	// Display is the formatted travel time, e.g. "45mins", or "" when it
	// cannot be derived.
	Display string
}

// IndexOf returns the position of the item with id, or -1.
func (d *Day) IndexOf(id string) int {
	for i, it := range d.Items {
		if it.ItemID() == id {
			return i
		}
	}
	return -1
}

// Item returns the item with id.
func (d *Day) Item(id string) (Item, error) {
	i := d.IndexOf(id)
	if i < 0 {
		return nil, fmt.Errorf("item %s in day %s: %w", id, d.ID, ErrNotFound)
	}
	return d.Items[i], nil
}

// Location returns the location with id.
func (d *Day) Location(id string) (*Location, error) {
	it, err := d.Item(id)
	if err != nil {
		return nil, err
	}
	loc, ok := it.(*Location)
	if !ok {
		return nil, fmt.Errorf("location %s in day %s: %w", id, d.ID, ErrNotFound)
	}
	return loc, nil
}

// Locations returns the day's locations in display order.
func (d *Day) Locations() []*Location {
	var out []*Location
	for _, it := range d.Items {
		if loc, ok := it.(*Location); ok {
			out = append(out, loc)
		}
	}
	return out
}

// AddLocation appends loc to the day. When the current last item is also a
// location, an empty travel segment linking the two is appended first.
// A missing id is generated; a positive money amount without a currency
// gets DefaultCurrency.
func (d *Day) AddLocation(loc *Location) error {
	if err := validateLocation(loc); err != nil {
		return err
	}
	if loc.ID == "" {
		loc.ID = NewID("loc")
	}
	if loc.Money > 0 && loc.Currency == "" {
		loc.Currency = DefaultCurrency
	}
	if n := len(d.Items); n > 0 {
		if prev, ok := d.Items[n-1].(*Location); ok {
			d.Items = append(d.Items, &Travel{
				ID:             NewID("travel"),
				FromLocationID: prev.ID,
				ToLocationID:   loc.ID,
			})
		}
	}
	d.Items = append(d.Items, loc)
	return nil
}

// AddNote appends n to the day. Notes never cause a travel segment to be
// inserted.
func (d *Day) AddNote(n *Note) error {
	if strings.TrimSpace(n.Content) == "" {
		return fmt.Errorf("%w: note content is required", ErrValidation)
	}
	if n.Timestamp == "" {
		return fmt.Errorf("%w: note timestamp is required", ErrValidation)
	}
	if n.ID == "" {
		n.ID = NewID("note")
	}
	d.Items = append(d.Items, n)
	return nil
}

// EditLocation applies p to the location with id. The patch is validated
// against a copy first, so a rejected edit changes nothing.
func (d *Day) EditLocation(id string, p LocationPatch) (*Location, error) {
	loc, err := d.Location(id)
	if err != nil {
		return nil, err
	}
	next := *loc
	next.Name = p.Name
	next.GoogleAddress = p.GoogleAddress
	next.StartTime = p.StartTime
	next.EndTime = p.EndTime
	next.Notes = p.Notes
	next.Money = p.Money
	next.Currency = p.Currency
	if p.Lat != nil {
		next.Lat = *p.Lat
	}
	if p.Lng != nil {
		next.Lng = *p.Lng
	}
	if err := validateLocation(&next); err != nil {
		return nil, err
	}
	if next.Money > 0 && next.Currency == "" {
		next.Currency = DefaultCurrency
	}
	*loc = next
	return loc, nil
}

// EditNote replaces the content of the note with id. The timestamp is kept.
func (d *Day) EditNote(id, content string) (*Note, error) {
	it, err := d.Item(id)
	if err != nil {
		return nil, err
	}
	n, ok := it.(*Note)
	if !ok {
		return nil, fmt.Errorf("note %s in day %s: %w", id, d.ID, ErrNotFound)
	}
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: note content is required", ErrValidation)
	}
	n.Content = content
	return n, nil
}

// DeleteItem removes the item with id. Travel segments next to a deleted
// location are left in place.
func (d *Day) DeleteItem(id string) error {
	i := d.IndexOf(id)
	if i < 0 {
		return fmt.Errorf("item %s in day %s: %w", id, d.ID, ErrNotFound)
	}
	d.Items = append(d.Items[:i], d.Items[i+1:]...)
	return nil
}

// UpdateTransport sets the transport method of the travel segment with id,
// creating and appending the segment if the day has none with that id.
func (d *Day) UpdateTransport(travelID, method string, f Flanks) (*Travel, error) {
	if !ValidTransport(method) {
		return nil, fmt.Errorf("%w: unknown transport %q", ErrValidation, method)
	}
	t, err := d.travel(travelID)
	if err != nil {
		return nil, err
	}
	t.Transport = method
	t.applyFlanks(f)
	return t, nil
}

// UpdateTravelMode sets the mode of the travel segment with id, creating and
// appending it if needed. Leaving duration mode clears the stored minutes.
func (d *Day) UpdateTravelMode(travelID string, mode TravelMode, f Flanks) (*Travel, error) {
	if !ValidTravelMode(mode) {
		return nil, fmt.Errorf("%w: unknown travel mode %q", ErrValidation, mode)
	}
	t, err := d.travel(travelID)
	if err != nil {
		return nil, err
	}
	t.Mode = mode
	if mode != TravelModeDuration {
		t.DurationMinutes = 0
	}
	t.applyFlanks(f)
	return t, nil
}

// UpdateTravelDuration stores minutes on the travel segment with id,
// creating and appending it if needed. A nil minutes clears the duration.
//
// In duration mode, with minutes given and both flanks resolving to
// locations whose previous end time parses, the next location's start time
// is overwritten with prev.EndTime + minutes.
func (d *Day) UpdateTravelDuration(travelID string, minutes *int, f Flanks) (*Travel, error) {
	if minutes != nil && *minutes < 0 {
		return nil, fmt.Errorf("%w: duration must not be negative", ErrValidation)
	}
	t, err := d.travel(travelID)
	if err != nil {
		return nil, err
	}
	t.applyFlanks(f)
	if minutes == nil {
		t.DurationMinutes = 0
		return t, nil
	}
	t.DurationMinutes = *minutes

	if t.Mode != TravelModeDuration {
		return t, nil
	}
	prev, err := d.Location(t.FromLocationID)
	if err != nil {
		return t, nil
	}
	next, err := d.Location(t.ToLocationID)
	if err != nil {
		return t, nil
	}
	if start := timeofday.AddMinutes(prev.EndTime, *minutes); start != "" {
		next.StartTime = start
	}
	return t, nil
}

// Segments resolves every travel item of the day against its flanks.
func (d *Day) Segments() []Segment {
	var out []Segment
	for _, it := range d.Items {
		t, ok := it.(*Travel)
		if !ok {
			continue
		}
		seg := Segment{Travel: t}
		seg.From, _ = d.Location(t.FromLocationID)
		seg.To, _ = d.Location(t.ToLocationID)
		seg.Dangling = seg.From == nil || seg.To == nil
		switch t.EffectiveMode() {
		case TravelModeDuration:
			if t.DurationMinutes > 0 {
				seg.Display = timeofday.FormatMinutes(t.DurationMinutes)
			}
		case TravelModeAuto:
			if !seg.Dangling && seg.From.EndTime != "" && seg.To.StartTime != "" {
				seg.Display = timeofday.Duration(seg.From.EndTime, seg.To.StartTime)
			}
		}
		out = append(out, seg)
	}
	return out
}

// DanglingTravel returns the travel items whose flanking locations no longer
// both resolve within the day.
func (d *Day) DanglingTravel() []*Travel {
	var out []*Travel
	for _, seg := range d.Segments() {
		if seg.Dangling {
			out = append(out, seg.Travel)
		}
	}
	return out
}

// PruneDanglingTravel removes every dangling travel item and reports how
// many were removed. It is never called implicitly by other mutations.
func (d *Day) PruneDanglingTravel() int {
	dangling := d.DanglingTravel()
	if len(dangling) == 0 {
		return 0
	}
	drop := make(map[string]bool, len(dangling))
	for _, t := range dangling {
		drop[t.ID] = true
	}
	kept := d.Items[:0]
	for _, it := range d.Items {
		if !drop[it.ItemID()] {
			kept = append(kept, it)
		}
	}
	d.Items = kept
	return len(dangling)
}

// travel returns the travel item with id, creating and appending one when
// no item has that id.
func (d *Day) travel(id string) (*Travel, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: travel id is required", ErrValidation)
	}
	if i := d.IndexOf(id); i >= 0 {
		t, ok := d.Items[i].(*Travel)
		if !ok {
			return nil, fmt.Errorf("%w: item %s is not a travel segment", ErrValidation, id)
		}
		return t, nil
	}
	t := &Travel{ID: id}
	d.Items = append(d.Items, t)
	return t, nil
}

func (t *Travel) applyFlanks(f Flanks) {
	if f.PrevID != "" {
		t.FromLocationID = f.PrevID
	}
	if f.NextID != "" {
		t.ToLocationID = f.NextID
	}
}
