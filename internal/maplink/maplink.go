// Package maplink builds the external map search link for a location.
package maplink

import (
	"net/url"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pkordes/trip-planner/internal/domain"
)

const searchURL = "https://www.google.com/maps/search/?api=1&query="

// minAddressLen is the trimmed address length an address must exceed to be
// preferred over the name and coordinates.
const minAddressLen = 10

// Source names the rule that produced a map query.
type Source string

const (
	SourceAddress     Source = "address"
	SourceLandmark    Source = "landmark"
	SourceCoordinates Source = "coordinates"
)

var landmarkKeywords = []string{
	"tower", "temple", "shrine", "castle", "palace", "cathedral", "church", "mosque",
	"museum", "gallery", "park", "garden", "bridge", "station", "airport", "port",
	"university", "college", "hospital", "hotel", "restaurant", "cafe", "mall",
	"center", "centre", "building", "plaza", "square", "market", "beach", "mountain",
	"lake", "river", "island", "zoo", "aquarium", "theater", "theatre", "stadium",
	"arena", "library", "embassy", "consulate", "monument", "memorial",
}

var genericTerms = []string{"location", "place", "spot", "area", "point", "here", "there"}

// Query returns the unescaped search query for loc and the rule it came from.
// A detailed address always wins, then a landmark-like name, and the raw
// coordinates are the last resort.
func Query(loc domain.Location) (string, Source) {
	if addr := strings.TrimSpace(loc.GoogleAddress); len(addr) > minAddressLen {
		return addr, SourceAddress
	}
	if IsLikelyLandmark(loc.Name) {
		return strings.TrimSpace(loc.Name), SourceLandmark
	}
	return formatCoord(loc.Lat) + "," + formatCoord(loc.Lng), SourceCoordinates
}

// GoogleMapsURL returns the Google Maps search URL for loc.
func GoogleMapsURL(loc domain.Location) string {
	q, src := Query(loc)
	if src == SourceCoordinates {
		return searchURL + q
	}
	return searchURL + escape(q)
}

// IsLikelyLandmark reports whether name reads like a place a map search can
// find by name: it mentions a landmark category or contains a capitalized
// word, and it contains none of the generic placeholder terms.
func IsLikelyLandmark(name string) bool {
	if utf8.RuneCountInString(name) < 3 {
		return false
	}
	lower := strings.ToLower(name)
	for _, term := range genericTerms {
		if strings.Contains(lower, term) {
			return false
		}
	}
	for _, kw := range landmarkKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	for _, word := range strings.Fields(name) {
		first, _ := utf8.DecodeRuneInString(word)
		if utf8.RuneCountInString(word) > 2 && unicode.IsUpper(first) {
			return true
		}
	}
	return false
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// escape percent-encodes s for use as a query value, spaces as %20.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
