// Package domain contains the itinerary data model and the rules that keep
// it consistent: day generation from the trip date range, the per-day
// ordered item list, travel segments between locations, and reordering.
//
// Everything here is pure in-memory logic. Persistence, serialization and
// HTTP live in other packages.
package domain

import (
	"fmt"
	"math"
	"strings"
)

// DefaultTitle is the title of a fresh or untitled plan.
const DefaultTitle = "My Travel Plan"

// Plan is the whole itinerary. StartDate and EndDate are ISO dates or "".
type Plan struct {
	Title     string
	StartDate string
	EndDate   string
	Days      []*Day
}

// NewPlan returns an empty plan with the default title.
func NewPlan() Plan {
	return Plan{Title: DefaultTitle, Days: []*Day{}}
}

// HasDays reports whether the plan holds any day.
func (p *Plan) HasDays() bool {
	return len(p.Days) > 0
}

// SetTitle sets the plan title; a blank title falls back to DefaultTitle.
func (p *Plan) SetTitle(title string) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = DefaultTitle
	}
	p.Title = title
}

// Day returns the day with id.
func (p *Plan) Day(id string) (*Day, error) {
	for _, d := range p.Days {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, fmt.Errorf("day %s: %w", id, ErrNotFound)
}

// DayByNumber returns the day at the 1-based position n.
func (p *Plan) DayByNumber(n int) (*Day, error) {
	if n < 1 || n > len(p.Days) {
		return nil, fmt.Errorf("day number %d: %w", n, ErrNotFound)
	}
	return p.Days[n-1], nil
}

// rangeValid reports whether both plan dates are set and form a valid range.
func (p *Plan) rangeValid() bool {
	if p.StartDate == "" || p.EndDate == "" {
		return false
	}
	_, err := DayCount(p.StartDate, p.EndDate)
	return err == nil
}

// GenerateDays applies a new trip date range and rebuilds Days to match it.
//
// Dates may be ISO or DD/MM/YYYY. If either date is empty the range is
// stored and Days is emptied. An unparsable date or an end date before the
// start date is rejected with ErrValidation and nothing changes, as is a
// range longer than MaxTripDays.
//
// Otherwise Days gets exactly one day per date in the inclusive range.
// Existing days keep their position, id and items and have their date
// recomputed; new trailing days start empty; days past the new end are
// dropped together with their items.
func (p *Plan) GenerateDays(start, end string) error {
	s, err := NormalizeDate(start)
	if err != nil {
		return err
	}
	e, err := NormalizeDate(end)
	if err != nil {
		return err
	}
	if s == "" || e == "" {
		p.StartDate, p.EndDate = s, e
		p.Days = []*Day{}
		return nil
	}
	count, err := DayCount(s, e)
	if err != nil {
		return err
	}
	if count > MaxTripDays {
		return fmt.Errorf("%w: a trip may span at most %d days", ErrValidation, MaxTripDays)
	}

	p.StartDate, p.EndDate = s, e
	days := make([]*Day, count)
	for i := range days {
		date := AddDays(s, i)
		if i < len(p.Days) {
			days[i] = p.Days[i]
			days[i].Number = i + 1
			days[i].Date = date
			continue
		}
		days[i] = NewDay(i+1, date)
	}
	p.Days = days
	return nil
}

// DeleteDay removes the day with id, renumbers the remaining days and,
// when the date range is valid, re-derives their dates.
func (p *Plan) DeleteDay(id string) error {
	for i, d := range p.Days {
		if d.ID != id {
			continue
		}
		p.Days = append(p.Days[:i], p.Days[i+1:]...)
		p.renumber()
		return nil
	}
	return fmt.Errorf("day %s: %w", id, ErrNotFound)
}

func (p *Plan) renumber() {
	valid := p.rangeValid()
	for i, d := range p.Days {
		d.Number = i + 1
		if valid {
			d.Date = AddDays(p.StartDate, i)
		}
	}
}

// Reorder moves the item with itemID from the source day to targetIndex in
// the target day (the same day for an in-day move).
//
// targetIndex is a position in the target list as it was before the item
// was removed: for a same-day move to a later position it is decremented by
// one to compensate for the removal. The index is clamped to the list
// bounds. Reordering never inserts travel segments.
func (p *Plan) Reorder(sourceDayID, targetDayID, itemID string, targetIndex int) error {
	src, err := p.Day(sourceDayID)
	if err != nil {
		return err
	}
	dst, err := p.Day(targetDayID)
	if err != nil {
		return err
	}
	from := src.IndexOf(itemID)
	if from < 0 {
		return fmt.Errorf("item %s in day %s: %w", itemID, sourceDayID, ErrNotFound)
	}

	item := src.Items[from]
	src.Items = append(src.Items[:from], src.Items[from+1:]...)

	if src == dst && targetIndex > from {
		targetIndex--
	}
	targetIndex = max(0, min(targetIndex, len(dst.Items)))
	dst.Items = append(dst.Items, nil)
	copy(dst.Items[targetIndex+1:], dst.Items[targetIndex:])
	dst.Items[targetIndex] = item
	return nil
}

// FindLocation searches every day for the location with id.
func (p *Plan) FindLocation(id string) (*Day, *Location, error) {
	for _, d := range p.Days {
		if loc, err := d.Location(id); err == nil {
			return d, loc, nil
		}
	}
	return nil, nil, fmt.Errorf("location %s: %w", id, ErrNotFound)
}

// UpdateLocationCoordinates moves the location with id to (lat, lng),
// rounded to six decimal places. Used when a map marker is dragged.
func (p *Plan) UpdateLocationCoordinates(id string, lat, lng float64) (*Location, error) {
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 || math.IsNaN(lat) || math.IsNaN(lng) {
		return nil, fmt.Errorf("%w: coordinates out of range", ErrValidation)
	}
	_, loc, err := p.FindLocation(id)
	if err != nil {
		return nil, err
	}
	loc.Lat = round6(lat)
	loc.Lng = round6(lng)
	return loc, nil
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
