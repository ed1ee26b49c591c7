package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pkordes/trip-planner/internal/document"
	"github.com/pkordes/trip-planner/internal/domain"
)

// LocationRequest is the body of the location add and edit endpoints.
// On add, omitting lat or lng asks the server to geocode the address, or
// the name when no address is given.
type LocationRequest struct {
	Name          string   `json:"name"`
	GoogleAddress string   `json:"googleAddress"`
	StartTime     string   `json:"startTime"`
	EndTime       string   `json:"endTime"`
	Notes         string   `json:"notes"`
	Money         float64  `json:"money"`
	Currency      string   `json:"currency"`
	Lat           *float64 `json:"lat"`
	Lng           *float64 `json:"lng"`
}

// NoteRequest is the body of the note add and edit endpoints.
type NoteRequest struct {
	Content string `json:"content"`
}

// AddLocation handles POST /plan/days/{dayId}/locations.
func (s *Server) AddLocation(w http.ResponseWriter, r *http.Request) {
	var req LocationRequest
	if err := decodeJSON(r, &req); err != nil {
		s.bodyError(w, r, err)
		return
	}
	loc, err := s.plans.AddLocation(r.Context(), chi.URLParam(r, "dayId"), req.patch())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, document.ItemToDocument(&loc))
}

// EditLocation handles PUT /plan/days/{dayId}/locations/{itemId}.
// Text fields are replaced wholesale; lat and lng are kept when omitted.
func (s *Server) EditLocation(w http.ResponseWriter, r *http.Request) {
	var req LocationRequest
	if err := decodeJSON(r, &req); err != nil {
		s.bodyError(w, r, err)
		return
	}
	loc, err := s.plans.EditLocation(r.Context(), chi.URLParam(r, "dayId"), chi.URLParam(r, "itemId"), req.patch())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, document.ItemToDocument(&loc))
}

// AddNote handles POST /plan/days/{dayId}/notes.
func (s *Server) AddNote(w http.ResponseWriter, r *http.Request) {
	var req NoteRequest
	if err := decodeJSON(r, &req); err != nil {
		s.bodyError(w, r, err)
		return
	}
	n, err := s.plans.AddNote(r.Context(), chi.URLParam(r, "dayId"), req.Content)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, document.ItemToDocument(&n))
}

// EditNote handles PUT /plan/days/{dayId}/notes/{itemId}.
func (s *Server) EditNote(w http.ResponseWriter, r *http.Request) {
	var req NoteRequest
	if err := decodeJSON(r, &req); err != nil {
		s.bodyError(w, r, err)
		return
	}
	n, err := s.plans.EditNote(r.Context(), chi.URLParam(r, "dayId"), chi.URLParam(r, "itemId"), req.Content)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, document.ItemToDocument(&n))
}

// DeleteItem handles DELETE /plan/days/{dayId}/items/{itemId}.
// Travel next to a deleted location is kept; see PruneTravel.
func (s *Server) DeleteItem(w http.ResponseWriter, r *http.Request) {
	if err := s.plans.DeleteItem(r.Context(), chi.URLParam(r, "dayId"), chi.URLParam(r, "itemId")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (req LocationRequest) patch() domain.LocationPatch {
	return domain.LocationPatch{
		Name:          req.Name,
		GoogleAddress: req.GoogleAddress,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		Notes:         req.Notes,
		Money:         req.Money,
		Currency:      req.Currency,
		Lat:           req.Lat,
		Lng:           req.Lng,
	}
}
