package domain

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// ItemKind is the wire tag of an Item variant.
type ItemKind string

const (
	KindLocation ItemKind = "location"
	KindNote     ItemKind = "note"
	KindTravel   ItemKind = "travel"
)

// Item is one entry in a day's ordered item list.
// The set of implementations is closed: *Location, *Note and *Travel.
// Consumers switch on the concrete type.
type Item interface {
	ItemID() string
	Kind() ItemKind
	isItem()
}

// DefaultCurrency is applied to a location's money amount when no currency
// code was given.
const DefaultCurrency = "USD"

// Location is a place visited during a day.
type Location struct {
	ID            string
	Name          string
	Lat           float64
	Lng           float64
	GoogleAddress string
	StartTime     string // "HH:MM" or ""
	EndTime       string // "HH:MM" or ""
	Notes         string
	Money         float64
	Currency      string
}

func (l *Location) ItemID() string { return l.ID }
func (l *Location) Kind() ItemKind { return KindLocation }
func (*Location) isItem()          {}

// Note is a free-text entry. Timestamp is set once at creation.
type Note struct {
	ID        string
	Content   string
	Timestamp string // RFC 3339
}

func (n *Note) ItemID() string { return n.ID }
func (n *Note) Kind() ItemKind { return KindNote }
func (*Note) isItem()          {}

// TravelMode selects how a travel segment's time is derived.
type TravelMode string

const (
	// TravelModeUnset is the mode of an auto-created segment; it behaves as
	// TravelModeAuto.
	TravelModeUnset TravelMode = ""
	// TravelModeAuto derives the segment time from the flanking locations'
	// end and start times.
	TravelModeAuto TravelMode = "auto"
	// TravelModeDuration uses DurationMinutes and pushes the next location's
	// start time forward from the previous location's end time.
	TravelModeDuration TravelMode = "duration"
)

// Transports is the fixed vocabulary of transport methods. The empty string
// (not yet chosen) is also accepted.
var Transports = []string{"walk", "bike", "car", "taxi", "bus", "train", "subway", "tram", "ferry", "flight"}

// Travel is the transport segment between two locations of the same day.
// FromLocationID and ToLocationID name the flanking locations; either may
// stop resolving after a delete, which leaves the segment dangling and inert.
type Travel struct {
	ID              string
	Transport       string
	Mode            TravelMode
	DurationMinutes int
	FromLocationID  string
	ToLocationID    string
}

func (t *Travel) ItemID() string { return t.ID }
func (t *Travel) Kind() ItemKind { return KindTravel }
func (*Travel) isItem()          {}

// EffectiveMode resolves an unset mode to TravelModeAuto.
func (t *Travel) EffectiveMode() TravelMode {
	if t.Mode == TravelModeUnset {
		return TravelModeAuto
	}
	return t.Mode
}

// NewID returns a fresh opaque id carrying a readable prefix,
// e.g. "loc_1b4e28ba-2fa1-11d2-883f-0016d3cca427".
func NewID(prefix string) string {
	return prefix + "_" + uuid.NewString()
}

// ValidTransport reports whether method is "" or part of Transports.
func ValidTransport(method string) bool {
	return method == "" || slices.Contains(Transports, method)
}

// ValidTravelMode reports whether mode is one of the known modes.
func ValidTravelMode(mode TravelMode) bool {
	switch mode {
	case TravelModeUnset, TravelModeAuto, TravelModeDuration:
		return true
	}
	return false
}

// validateLocation enforces the location rules shared by add and edit.
func validateLocation(l *Location) error {
	if strings.TrimSpace(l.Name) == "" {
		return fmt.Errorf("%w: location name is required", ErrValidation)
	}
	if math.IsNaN(l.Lat) || math.IsNaN(l.Lng) || l.Lat < -90 || l.Lat > 90 || l.Lng < -180 || l.Lng > 180 {
		return fmt.Errorf("%w: coordinates out of range", ErrValidation)
	}
	if l.Money < 0 {
		return fmt.Errorf("%w: money must not be negative", ErrValidation)
	}
	if err := validateClock("start time", l.StartTime); err != nil {
		return err
	}
	return validateClock("end time", l.EndTime)
}
