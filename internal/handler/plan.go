package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/trip-planner/internal/document"
)

// TitleRequest is the body of PUT /plan/title.
type TitleRequest struct {
	Title string `json:"title"`
}

// DatesRequest is the body of PUT /plan/dates.
// A null or absent date clears the range and with it every day.
type DatesRequest struct {
	StartDate *openapi_types.Date `json:"startDate"`
	EndDate   *openapi_types.Date `json:"endDate"`
}

// ReorderRequest is the body of POST /plan/reorder.
type ReorderRequest struct {
	SourceDayID string `json:"sourceDayId"`
	TargetDayID string `json:"targetDayId"`
	ItemID      string `json:"itemId"`
	TargetIndex *int   `json:"targetIndex"`
}

// GetPlan handles GET /plan.
// The body has the same shape as an exported document.
func (s *Server) GetPlan(w http.ResponseWriter, r *http.Request) {
	p, err := s.plans.Get(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, document.FromPlan(p))
}

// ClearPlan handles DELETE /plan.
func (s *Server) ClearPlan(w http.ResponseWriter, r *http.Request) {
	if err := s.plans.Clear(r.Context()); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetTitle handles PUT /plan/title.
func (s *Server) SetTitle(w http.ResponseWriter, r *http.Request) {
	var req TitleRequest
	if err := decodeJSON(r, &req); err != nil {
		s.bodyError(w, r, err)
		return
	}
	p, err := s.plans.SetTitle(r.Context(), req.Title)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, document.FromPlan(p))
}

// SetDates handles PUT /plan/dates.
// Days are regenerated for the new range; existing days keep their items
// by position.
func (s *Server) SetDates(w http.ResponseWriter, r *http.Request) {
	var req DatesRequest
	if err := decodeJSON(r, &req); err != nil {
		s.bodyError(w, r, err)
		return
	}
	p, err := s.plans.SetDates(r.Context(), formatDate(req.StartDate), formatDate(req.EndDate))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, document.FromPlan(p))
}

// DeleteDay handles DELETE /plan/days/{dayId}.
func (s *Server) DeleteDay(w http.ResponseWriter, r *http.Request) {
	p, err := s.plans.DeleteDay(r.Context(), chi.URLParam(r, "dayId"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, document.FromPlan(p))
}

// Reorder handles POST /plan/reorder.
// targetIndex is interpreted against the target day before removal; see
// domain.Plan.Reorder.
func (s *Server) Reorder(w http.ResponseWriter, r *http.Request) {
	var req ReorderRequest
	if err := decodeJSON(r, &req); err != nil {
		s.bodyError(w, r, err)
		return
	}
	if req.SourceDayID == "" || req.TargetDayID == "" || req.ItemID == "" || req.TargetIndex == nil {
		s.requestError(w, "sourceDayId, targetDayId, itemId and targetIndex are required")
		return
	}
	p, err := s.plans.Reorder(r.Context(), req.SourceDayID, req.TargetDayID, req.ItemID, *req.TargetIndex)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, document.FromPlan(p))
}

func formatDate(d *openapi_types.Date) string {
	if d == nil {
		return ""
	}
	return d.Format(openapi_types.DateFormat)
}
