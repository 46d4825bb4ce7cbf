package web

// handlers_results.go exposes the results pipeline over JSON. Validate is
// a pure dry run; Import is the only route that writes.

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/racedesk/racedesk/internal/results"
)

// runIDParam parses the {runID} URL segment.
func runIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "runID"), 10, 64)
	return id, err == nil && id > 0
}

// readCSVUpload accepts either a multipart "file" part or a raw CSV body,
// bounded by the configured size limit.
func (s *Server) readCSVUpload(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Import.MaxFileSize)

	if err := r.ParseMultipartForm(s.cfg.Import.MaxFileSize); err == nil {
		file, _, ferr := r.FormFile("file")
		if ferr == nil {
			defer file.Close()
			content, rerr := io.ReadAll(file)
			if rerr != nil {
				respondFailureJSON(w, "could not read uploaded file", http.StatusBadRequest)
				return nil, false
			}
			return content, true
		}
	}

	content, err := io.ReadAll(r.Body)
	if err != nil {
		respondFailureJSON(w, "upload exceeds the size limit or could not be read", http.StatusRequestEntityTooLarge)
		return nil, false
	}
	return content, true
}

// rowErrorJSON flattens a row error for the API response.
type rowErrorJSON struct {
	Line   int    `json:"line"`
	Bib    int    `json:"bib,omitempty"`
	Name   string `json:"name,omitempty"`
	Reason string `json:"reason"`
}

func rowErrors(errs []results.RowError) []rowErrorJSON {
	out := make([]rowErrorJSON, 0, len(errs))
	for _, e := range errs {
		out = append(out, rowErrorJSON{
			Line:   e.Row.Line,
			Bib:    e.Row.Bib,
			Name:   e.Row.Name,
			Reason: e.Reason,
		})
	}
	return out
}

// validRowJSON flattens a matched row: which registration it resolved to
// and what would be (or was) stored for it.
type validRowJSON struct {
	Line           int    `json:"line"`
	Bib            int    `json:"bib,omitempty"`
	Name           string `json:"name,omitempty"`
	RegistrationID int64  `json:"registration_id"`
	Status         string `json:"status"`
	FinishTime     string `json:"finish_time,omitempty"`
}

func validRows(rows []results.ValidRow) []validRowJSON {
	out := make([]validRowJSON, 0, len(rows))
	for _, v := range rows {
		row := validRowJSON{
			Line:           v.Row.Line,
			Bib:            v.Row.Bib,
			Name:           v.Row.Name,
			RegistrationID: v.RegistrationID,
			Status:         string(v.Status),
		}
		if v.FinishSeconds != nil {
			row.FinishTime = results.FormatFinishTime(*v.FinishSeconds)
		}
		out = append(out, row)
	}
	return out
}

// handleValidateResults dry-runs an upload against the run's
// registrations without writing anything.
func (s *Server) handleValidateResults(w http.ResponseWriter, r *http.Request) {
	runID, ok := runIDParam(r)
	if !ok {
		respondFailureJSON(w, "invalid run id", http.StatusBadRequest)
		return
	}
	content, ok := s.readCSVUpload(w, r)
	if !ok {
		return
	}

	report, err := s.results.ParseAndValidateCSV(r.Context(), content, runID)
	if err != nil {
		s.respondError(w, r, err, statusForError(err))
		return
	}

	respondJSON(w, map[string]any{
		"total_rows": report.TotalRows,
		"valid_rows": len(report.Valid),
		"error_rows": len(report.Errors),
		"valid":      validRows(report.Valid),
		"errors":     rowErrors(report.Errors),
	})
}

// handleImportResults persists an upload and recomputes placements, all
// in one transaction.
func (s *Server) handleImportResults(w http.ResponseWriter, r *http.Request) {
	runID, ok := runIDParam(r)
	if !ok {
		respondFailureJSON(w, "invalid run id", http.StatusBadRequest)
		return
	}
	content, ok := s.readCSVUpload(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Import.Timeout)
	defer cancel()

	summary, err := s.results.ImportCSV(ctx, content, runID)
	if err != nil {
		s.respondError(w, r, err, statusForError(err))
		return
	}

	respondJSON(w, map[string]any{
		"import_id":  summary.ImportID,
		"total_rows": summary.TotalRows,
		"imported":   summary.Imported,
		"skipped":    summary.Skipped,
		"valid":      validRows(summary.Valid),
		"errors":     rowErrors(summary.Errors),
	})
}

func (s *Server) handleRecalculate(w http.ResponseWriter, r *http.Request) {
	runID, ok := runIDParam(r)
	if !ok {
		respondFailureJSON(w, "invalid run id", http.StatusBadRequest)
		return
	}

	if err := s.results.Recalculate(r.Context(), runID); err != nil {
		s.respondError(w, r, err, statusForError(err))
		return
	}
	respondMessageJSON(w, "placements recalculated")
}

// handlePreviewResults returns the run's current standings.
func (s *Server) handlePreviewResults(w http.ResponseWriter, r *http.Request) {
	runID, ok := runIDParam(r)
	if !ok {
		respondFailureJSON(w, "invalid run id", http.StatusBadRequest)
		return
	}

	details, err := s.results.Preview(r.Context(), runID)
	if err != nil {
		s.respondError(w, r, err, statusForError(err))
		return
	}

	rows := make([]map[string]any, 0, len(details))
	for _, d := range details {
		row := map[string]any{
			"bib":      d.Bib,
			"name":     d.Name,
			"category": d.CategoryName,
			"status":   string(d.Status),
		}
		if d.FinishSeconds != nil {
			row["finish_time"] = results.FormatFinishTime(*d.FinishSeconds)
		}
		if d.OverallPlace != nil {
			row["overall_place"] = *d.OverallPlace
		}
		if d.CategoryPlace != nil {
			row["category_place"] = *d.CategoryPlace
		}
		rows = append(rows, row)
	}
	respondJSON(w, rows)
}

// handleExportResults streams the standings as a CSV the import pipeline
// accepts back unchanged.
func (s *Server) handleExportResults(w http.ResponseWriter, r *http.Request) {
	runID, ok := runIDParam(r)
	if !ok {
		respondFailureJSON(w, "invalid run id", http.StatusBadRequest)
		return
	}

	content, err := s.results.Export(r.Context(), runID)
	if err != nil {
		s.respondError(w, r, err, statusForError(err))
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		`attachment; filename="results-run-`+strconv.FormatInt(runID, 10)+`.csv"`)
	w.Write(content)
}
