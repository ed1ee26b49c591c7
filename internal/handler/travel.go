package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pkordes/trip-planner/internal/document"
	"github.com/pkordes/trip-planner/internal/domain"
)

// TravelRequest is the body of the three travel update endpoints. Only the
// field matching the endpoint is read. fromLocationId and toLocationId name
// the flanking locations and are needed when the segment does not exist yet.
type TravelRequest struct {
	Transport       *string `json:"transport,omitempty"`
	Mode            *string `json:"mode,omitempty"`
	DurationMinutes *int    `json:"durationMinutes,omitempty"`
	FromLocationID  string  `json:"fromLocationId,omitempty"`
	ToLocationID    string  `json:"toLocationId,omitempty"`
}

// SegmentResponse is one resolved travel segment of a day.
type SegmentResponse struct {
	Travel   document.ItemDocument  `json:"travel"`
	From     *document.ItemDocument `json:"from"`
	To       *document.ItemDocument `json:"to"`
	Dangling bool                   `json:"dangling"`
	Display  string                 `json:"display"`
}

// PruneResponse is the body of DELETE /plan/days/{dayId}/travel/dangling.
type PruneResponse struct {
	Removed int `json:"removed"`
}

// UpdateTransport handles PUT /plan/days/{dayId}/travel/{travelId}/transport.
func (s *Server) UpdateTransport(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeTravel(w, r)
	if !ok {
		return
	}
	if req.Transport == nil {
		s.requestError(w, "transport is required")
		return
	}
	t, err := s.plans.UpdateTransport(r.Context(), chi.URLParam(r, "dayId"), chi.URLParam(r, "travelId"), *req.Transport, req.flanks())
	s.writeTravel(w, r, t, err)
}

// UpdateTravelMode handles PUT /plan/days/{dayId}/travel/{travelId}/mode.
func (s *Server) UpdateTravelMode(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeTravel(w, r)
	if !ok {
		return
	}
	if req.Mode == nil {
		s.requestError(w, "mode is required")
		return
	}
	t, err := s.plans.UpdateTravelMode(r.Context(), chi.URLParam(r, "dayId"), chi.URLParam(r, "travelId"), domain.TravelMode(*req.Mode), req.flanks())
	s.writeTravel(w, r, t, err)
}

// UpdateTravelDuration handles PUT /plan/days/{dayId}/travel/{travelId}/duration.
// A missing or null durationMinutes clears the stored duration. In duration
// mode the next location's start time is moved as a side effect.
func (s *Server) UpdateTravelDuration(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeTravel(w, r)
	if !ok {
		return
	}
	t, err := s.plans.UpdateTravelDuration(r.Context(), chi.URLParam(r, "dayId"), chi.URLParam(r, "travelId"), req.DurationMinutes, req.flanks())
	s.writeTravel(w, r, t, err)
}

// PruneTravel handles DELETE /plan/days/{dayId}/travel/dangling.
func (s *Server) PruneTravel(w http.ResponseWriter, r *http.Request) {
	n, err := s.plans.PruneTravel(r.Context(), chi.URLParam(r, "dayId"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, PruneResponse{Removed: n})
}

// GetSegments handles GET /plan/days/{dayId}/segments.
func (s *Server) GetSegments(w http.ResponseWriter, r *http.Request) {
	segs, err := s.plans.Segments(r.Context(), chi.URLParam(r, "dayId"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]SegmentResponse, 0, len(segs))
	for _, sg := range segs {
		out = append(out, segmentToResponse(sg))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) decodeTravel(w http.ResponseWriter, r *http.Request) (TravelRequest, bool) {
	var req TravelRequest
	if err := decodeJSON(r, &req); err != nil {
		s.bodyError(w, r, err)
		return TravelRequest{}, false
	}
	return req, true
}

func (s *Server) writeTravel(w http.ResponseWriter, r *http.Request, t domain.Travel, err error) {
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, document.ItemToDocument(&t))
}

func (req TravelRequest) flanks() domain.Flanks {
	return domain.Flanks{PrevID: req.FromLocationID, NextID: req.ToLocationID}
}

func segmentToResponse(sg domain.Segment) SegmentResponse {
	out := SegmentResponse{
		Travel:   document.ItemToDocument(sg.Travel),
		Dangling: sg.Dangling,
		Display:  sg.Display,
	}
	if sg.From != nil {
		d := document.ItemToDocument(sg.From)
		out.From = &d
	}
	if sg.To != nil {
		d := document.ItemToDocument(sg.To)
		out.To = &d
	}
	return out
}
