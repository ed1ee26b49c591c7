package handler

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/pkordes/trip-planner/internal/document"
	"github.com/pkordes/trip-planner/internal/domain"
)

// importFormField is the multipart field carrying an uploaded plan file.
const importFormField = "file"

// csvFilename is the download name of the itinerary table.
const csvFilename = "travel-plan.csv"

// csvHeaders defines the column names written as the first row of any CSV export.
var csvHeaders = []string{
	"day", "date", "position", "type", "name", "address",
	"start_time", "end_time", "lat", "lng", "notes",
	"money", "currency", "transport", "travel_time",
}

// GetExport handles GET /export.
// The default is the plan document, pretty-printed and offered as a download
// named travel-plan.json. Use ?format=csv for a flat itinerary table.
func (s *Server) GetExport(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Query().Get("format") {
	case "", "json":
	case "csv":
		s.exportCSV(w, r)
		return
	default:
		s.requestError(w, "format must be json or csv")
		return
	}

	data, err := s.transfer.Export(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": document.Filename}))
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck // client disconnects are not actionable here.
	w.Write(data)
}

func (s *Server) exportCSV(w http.ResponseWriter, r *http.Request) {
	rows, err := s.transfer.ExportRows(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	//nolint:errcheck // bytes.Buffer.Write never returns an error.
	cw.Write(csvHeaders)
	for _, row := range rows {
		//nolint:errcheck
		cw.Write(rowToCSVRecord(row))
	}
	cw.Flush()

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": csvFilename}))
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck
	w.Write(buf.Bytes())
}

// rowToCSVRecord encodes a domain.ExportRow as a flat string slice.
// Zero positions and money, and nil coordinates, are encoded as empty strings.
func rowToCSVRecord(r domain.ExportRow) []string {
	return []string{
		strconv.Itoa(r.DayNumber),
		r.Date,
		optionalInt(r.Position),
		string(r.Type),
		r.Name,
		r.Address,
		r.StartTime,
		r.EndTime,
		optionalFloat(r.Lat),
		optionalFloat(r.Lng),
		r.Notes,
		optionalMoney(r.Money),
		r.Currency,
		r.Transport,
		r.TravelTime,
	}
}

func optionalInt(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}

func optionalFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

func optionalMoney(m float64) string {
	if m == 0 {
		return ""
	}
	return strconv.FormatFloat(m, 'f', -1, 64)
}

// PostImport handles POST /import.
// The document is either the raw request body or, for multipart/form-data,
// the "file" field, which must be a .json file or carry an application/json
// content type. Replacing a plan that has days requires ?overwrite=true;
// otherwise the response is 409 and nothing changes.
func (s *Server) PostImport(w http.ResponseWriter, r *http.Request) {
	overwrite := false
	if raw := r.URL.Query().Get("overwrite"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			s.requestError(w, "overwrite must be a boolean")
			return
		}
		overwrite = v
	}

	data, err := s.readImport(r)
	if err != nil {
		s.bodyError(w, r, err)
		return
	}

	p, err := s.transfer.Import(r.Context(), data, overwrite)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, document.FromPlan(p))
}

// readImport returns the uploaded document bytes.
func (s *Server) readImport(r *http.Request) ([]byte, error) {
	contentType := r.Header.Get("Content-Type")
	mt, _, _ := mime.ParseMediaType(contentType)
	if mt != "multipart/form-data" {
		if !document.Importable("", contentType) {
			return nil, fmt.Errorf("content type %q is not application/json", contentType)
		}
		return io.ReadAll(r.Body)
	}

	f, fh, err := r.FormFile(importFormField)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if !document.Importable(fh.Filename, fh.Header.Get("Content-Type")) {
		return nil, fmt.Errorf("%s is not a JSON file", fh.Filename)
	}
	return io.ReadAll(f)
}
