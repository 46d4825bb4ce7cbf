// Package results implements the race-results pipeline: CSV import with
// dry-run validation, upsert persistence, placement computation, export and
// preview projections. It has no HTTP dependencies; the web layer calls it
// from the admin action handlers.
package results

import (
	"fmt"
	"strconv"
	"strings"
)

// Status is the outcome of one registration in one run.
type Status string

const (
	StatusFinished Status = "finished"
	StatusDNF      Status = "dnf"
	StatusDNS      Status = "dns"
	StatusDSQ      Status = "dsq"
)

// parseStatus recognizes common spellings of result statuses.
func parseStatus(s string) (Status, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "finished", "finish", "ok", "f":
		return StatusFinished, true
	case "dnf", "did not finish":
		return StatusDNF, true
	case "dns", "did not start":
		return StatusDNS, true
	case "dsq", "dq", "disqualified":
		return StatusDSQ, true
	default:
		return "", false
	}
}

// Registration is a participant entry, read-only for the import pipeline.
type Registration struct {
	ID         int64
	RunID      int64
	CategoryID *int64
	Bib        int // 0 when no bib assigned
	FirstName  string
	LastName   string
}

// FullName returns the participant name used for fallback matching.
func (r Registration) FullName() string {
	return strings.TrimSpace(r.FirstName + " " + r.LastName)
}

// Result is the persisted outcome for one registration in one run.
// FinishSeconds is nil unless the finish time parsed; placements are nil
// until the calculator assigns them.
type Result struct {
	ID             int64
	RunID          int64
	RegistrationID int64
	CategoryID     *int64 // joined from the registration at read time
	FinishSeconds  *int
	Status         Status
	OverallPlace   *int
	CategoryPlace  *int
}

// Row is one parsed CSV line, transient to a single import call.
type Row struct {
	Line     int // 1-based line number in the file, header excluded
	Bib      int // 0 when the column is absent or empty
	Name     string
	Category string
	TimeRaw  string
	Status   string
}

// ValidRow is a row matched to a registration, ready to persist.
type ValidRow struct {
	Row            Row
	RegistrationID int64
	FinishSeconds  *int
	Status         Status
}

// Row error reasons. Per-row errors never abort the batch.
const (
	ReasonNoMatch       = "no matching registration"
	ReasonDuplicateBib  = "duplicate bib in file"
	ReasonDuplicateName = "duplicate participant in file"
	ReasonMissingField  = "missing required field"
)

// RowError is a row that failed matching or validation.
type RowError struct {
	Row    Row
	Reason string
}

// Report is the outcome of a parse-and-validate pass. Valid and Errors are
// disjoint; nothing has been persisted.
type Report struct {
	TotalRows int
	Valid     []ValidRow
	Errors    []RowError
}

// ImportSummary describes a committed import. Valid carries the matched
// rows that were written so the caller can show what each row became.
type ImportSummary struct {
	ImportID  string
	TotalRows int
	Imported  int
	Skipped   int
	Valid     []ValidRow
	Errors    []RowError
}

// ResultDetail is a result joined with its registration for preview/export.
type ResultDetail struct {
	Result
	Bib          int
	Name         string
	CategoryName string
}

// ParseFinishTime parses "HH:MM:SS" or "MM:SS" into seconds.
func ParseFinishTime(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, false
	}

	nums := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 {
			return 0, false
		}
		nums[i] = n
	}

	if len(nums) == 2 {
		if nums[1] > 59 {
			return 0, false
		}
		return nums[0]*60 + nums[1], true
	}

	if nums[1] > 59 || nums[2] > 59 {
		return 0, false
	}
	return nums[0]*3600 + nums[1]*60 + nums[2], true
}

// FormatFinishTime renders seconds as "HH:MM:SS".
func FormatFinishTime(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds/60)%60, seconds%60)
}
