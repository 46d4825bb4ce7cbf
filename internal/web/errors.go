package web

// errors.go provides unified error response handling for the web layer.
//
// Handlers never let raw errors reach the client. Each error is logged
// with full technical detail server-side, mapped to a user-friendly
// message with a support code, and rendered as JSON for API routes or as
// an HTML fragment for admin screens.

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/racedesk/racedesk/internal/gateway"
	"github.com/racedesk/racedesk/internal/logging"
	"github.com/racedesk/racedesk/internal/results"
	"github.com/racedesk/racedesk/internal/web/ui"
)

// UserMessage provides user-friendly error information with a code the
// operator can quote to support.
type UserMessage struct {
	Message string
	Action  string
	Code    string
}

// errorPattern maps a technical error substring (case-insensitive) to a
// user message. First match wins, so specific patterns come first.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	{"run not found", UserMessage{
		Message: "The selected run does not exist",
		Action:  "Pick a run from the runs list and try again",
		Code:    "RUN001",
	}},
	{"record not found", UserMessage{
		Message: "The record no longer exists",
		Action:  "It may have been deleted; refresh the list",
		Code:    "REC001",
	}},
	{"invalid csv", UserMessage{
		Message: "The file is not a valid CSV",
		Action:  "Export the results as comma-separated values and retry",
		Code:    "CSV001",
	}},
	{"no recognized columns", UserMessage{
		Message: "No recognized columns were found in the header",
		Action:  "Include at least a bib or name column",
		Code:    "CSV002",
	}},
	{"empty file", UserMessage{
		Message: "The uploaded file is empty",
		Action:  "Upload a CSV with a header row and data rows",
		Code:    "CSV003",
	}},
	{"unique constraint", UserMessage{
		Message: "A record with this value already exists",
		Action:  "Check for duplicates before saving",
		Code:    "DB001",
	}},
	{"duplicate key", UserMessage{
		Message: "A record with this value already exists",
		Action:  "Check for duplicates before saving",
		Code:    "DB001",
	}},
	{"foreign key", UserMessage{
		Message: "A related record does not exist",
		Action:  "Create the related record first",
		Code:    "DB002",
	}},
	{"connection refused", UserMessage{
		Message: "Unable to reach the database",
		Action:  "Please try again in a few moments",
		Code:    "DB003",
	}},
	{"timeout", UserMessage{
		Message: "The operation timed out",
		Action:  "Please try again",
		Code:    "DB004",
	}},
	{"context canceled", UserMessage{
		Message: "The request was cancelled",
		Action:  "Please try again",
		Code:    "REQ001",
	}},
}

// MapError converts a technical error into a user-facing message.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	text := strings.ToLower(err.Error())
	for _, p := range errorPatterns {
		if strings.Contains(text, p.pattern) {
			return p.msg
		}
	}

	return UserMessage{
		Message: "An unexpected error occurred",
		Action:  "Please try again or contact support",
		Code:    "ERR000",
	}
}

// statusForError picks an HTTP status for a normalized error.
func statusForError(err error) int {
	switch {
	case errors.Is(err, gateway.ErrNotFound), errors.Is(err, results.ErrRunNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs the technical error and writes the appropriate
// user-facing representation for the request type.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	userMsg := MapError(err)

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
		"request_id", middleware.GetReqID(r.Context()),
	)

	if wantsJSON(r) {
		respondFailureJSON(w, userMsg.Message+" ("+userMsg.Code+")", statusCode)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	ui.ErrorAlert(userMsg.Message, userMsg.Action, userMsg.Code).Render(r.Context(), w)
}

// actionResponse is the uniform envelope of the admin action API.
type actionResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func respondJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(actionResponse{Success: true, Data: data})
}

func respondMessageJSON(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(actionResponse{Success: true, Message: message})
}

func respondFailureJSON(w http.ResponseWriter, errMsg string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(actionResponse{Success: false, Error: errMsg})
}

// wantsJSON checks whether the client prefers a JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return true
	}
	return strings.HasPrefix(r.URL.Path, "/api/")
}
