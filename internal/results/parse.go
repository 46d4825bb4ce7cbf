package results

// parse.go is the dry-run half of the import pipeline. It parses CSV text
// into rows, matches each row against the run's registrations (bib first,
// exact name as fallback) and splits the batch into valid and error lists.
// Nothing here touches the database; Import re-runs this from scratch so
// every call is self-contained and safe to retry.

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Recognized header names per logical column, matched case-insensitively.
// Unrecognized extra columns are ignored; a missing recognized column means
// "field absent" for every row.
var headerAliases = map[string][]string{
	"bib":      {"bib", "bib number", "bib_number", "number", "start number"},
	"name":     {"name", "participant", "participant name", "runner"},
	"category": {"category", "class", "division"},
	"time":     {"time", "finish time", "finish_time", "result", "chip time"},
	"status":   {"status"},
}

// columnIndex maps logical column names to their position in the header.
type columnIndex map[string]int

// matchHeader builds a columnIndex from the first CSV record.
func matchHeader(header []string) columnIndex {
	idx := make(columnIndex)
	for pos, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		for logical, aliases := range headerAliases {
			if _, taken := idx[logical]; taken {
				continue
			}
			for _, alias := range aliases {
				if h == alias {
					idx[logical] = pos
					break
				}
			}
		}
	}
	return idx
}

// cell returns the named logical column of a row, or "" when absent.
func (ci columnIndex) cell(row []string, logical string) string {
	pos, ok := ci[logical]
	if !ok || pos >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[pos])
}

// ParseCSV parses raw CSV content into rows. The first record is the
// header; empty lines are skipped. Returns an error only for structural
// failures (not valid CSV, no header, no recognized columns).
func ParseCSV(content []byte) ([]Row, error) {
	content = sanitizeUTF8(content)

	r := csv.NewReader(bytes.NewReader(content))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("invalid csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty file")
	}

	idx := matchHeader(records[0])
	if len(idx) == 0 {
		return nil, fmt.Errorf("no recognized columns in header (expected bib, name, category, time, status)")
	}

	var rows []Row
	for i, rec := range records[1:] {
		if isEmptyRow(rec) {
			continue
		}

		row := Row{
			Line:     i + 1,
			Name:     idx.cell(rec, "name"),
			Category: idx.cell(rec, "category"),
			TimeRaw:  idx.cell(rec, "time"),
			Status:   idx.cell(rec, "status"),
		}
		if raw := idx.cell(rec, "bib"); raw != "" {
			if bib, err := strconv.Atoi(raw); err == nil && bib > 0 {
				row.Bib = bib
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// Validate matches parsed rows against the run's registrations and
// produces disjoint valid and error lists.
//
// Matching is by bib number first, then by exact participant name
// (case-insensitive). A row matching a registration already claimed by an
// earlier row is an error, never a silent merge. Rows whose finish time
// does not parse become DNF rather than being rejected; only rows that
// cannot be matched at all are hard errors.
func Validate(rows []Row, registrations []Registration) Report {
	byBib := make(map[int]Registration)
	byName := make(map[string]Registration)
	for _, reg := range registrations {
		if reg.Bib > 0 {
			byBib[reg.Bib] = reg
		}
		if name := strings.ToLower(reg.FullName()); name != "" {
			byName[name] = reg
		}
	}

	report := Report{TotalRows: len(rows)}
	claimed := make(map[int64]bool)

	for _, row := range rows {
		if row.Bib == 0 && row.Name == "" {
			report.Errors = append(report.Errors, RowError{Row: row, Reason: ReasonMissingField})
			continue
		}

		reg, matchedByBib, ok := match(row, byBib, byName)
		if !ok {
			report.Errors = append(report.Errors, RowError{Row: row, Reason: ReasonNoMatch})
			continue
		}

		if claimed[reg.ID] {
			reason := ReasonDuplicateName
			if matchedByBib {
				reason = ReasonDuplicateBib
			}
			report.Errors = append(report.Errors, RowError{Row: row, Reason: reason})
			continue
		}
		claimed[reg.ID] = true

		report.Valid = append(report.Valid, buildValidRow(row, reg))
	}

	return report
}

// match finds the registration for a row: bib first, exact name fallback.
func match(row Row, byBib map[int]Registration, byName map[string]Registration) (Registration, bool, bool) {
	if row.Bib > 0 {
		if reg, ok := byBib[row.Bib]; ok {
			return reg, true, true
		}
	}
	if row.Name != "" {
		if reg, ok := byName[strings.ToLower(row.Name)]; ok {
			return reg, false, true
		}
	}
	return Registration{}, false, false
}

// buildValidRow derives status and finish seconds for a matched row.
// An explicit status wins; otherwise a parsable time means finished and
// anything else means DNF.
func buildValidRow(row Row, reg Registration) ValidRow {
	v := ValidRow{Row: row, RegistrationID: reg.ID}

	seconds, timeOK := ParseFinishTime(row.TimeRaw)
	if timeOK {
		v.FinishSeconds = &seconds
	}

	if status, ok := parseStatus(row.Status); ok {
		v.Status = status
		if status != StatusFinished {
			v.FinishSeconds = nil
		}
		return v
	}

	if timeOK {
		v.Status = StatusFinished
	} else {
		v.Status = StatusDNF
	}
	return v
}

// ParseAndValidate is the full dry-run: parse the CSV, match against the
// registrations, report counts and both lists without persisting anything.
func ParseAndValidate(content []byte, registrations []Registration) (Report, error) {
	rows, err := ParseCSV(content)
	if err != nil {
		return Report{}, err
	}
	return Validate(rows, registrations), nil
}

// sanitizeUTF8 replaces invalid UTF-8 sequences so the CSV reader never
// chokes on exports from old timing software.
func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune('�')
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}
	return buf.Bytes()
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
