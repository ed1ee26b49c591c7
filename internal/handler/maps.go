package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pkordes/trip-planner/internal/document"
)

// CoordinatesRequest is the body of PUT /plan/locations/{itemId}/coordinates.
type CoordinatesRequest struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

// MapsURLResponse is the body of GET /plan/locations/{itemId}/maps-url.
type MapsURLResponse struct {
	URL string `json:"url"`
}

// UpdateCoordinates handles PUT /plan/locations/{itemId}/coordinates.
// It applies the end of a marker drag; values are rounded to 6 decimals.
func (s *Server) UpdateCoordinates(w http.ResponseWriter, r *http.Request) {
	var req CoordinatesRequest
	if err := decodeJSON(r, &req); err != nil {
		s.bodyError(w, r, err)
		return
	}
	if req.Lat == nil || req.Lng == nil {
		s.requestError(w, "lat and lng are required")
		return
	}
	loc, err := s.maps.UpdateLocationCoordinates(r.Context(), chi.URLParam(r, "itemId"), *req.Lat, *req.Lng)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, document.ItemToDocument(&loc))
}

// GetMapsURL handles GET /plan/locations/{itemId}/maps-url.
func (s *Server) GetMapsURL(w http.ResponseWriter, r *http.Request) {
	u, err := s.maps.MapsURL(r.Context(), chi.URLParam(r, "itemId"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MapsURLResponse{URL: u})
}

// GetMarkers handles GET /plan/markers.
// ?day= limits the markers to one day; ?edit=true makes them draggable.
func (s *Server) GetMarkers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	edit := false
	if raw := q.Get("edit"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			s.requestError(w, "edit must be a boolean")
			return
		}
		edit = v
	}
	v, err := s.maps.Markers(r.Context(), q.Get("day"), edit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// GetGeocode handles GET /geocode?q=.
func (s *Server) GetGeocode(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		s.requestError(w, "q is required")
		return
	}
	res, err := s.maps.Geocode(r.Context(), query)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
