package gateway

// payload.go turns submitted form values into a typed write payload.
//
// Validation and conversion happen together: required/min/max checks run
// against the raw strings, and values that pass are converted to pgtype
// values ready for pgx parameters. Multi-relation fields are split out of
// the column set because they are written to link tables, not columns.

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/racedesk/racedesk/internal/registry"
)

// Payload is a validated, typed write request for one record.
type Payload struct {
	// Columns maps owning-table column names to pgx-ready values.
	Columns map[string]any

	// Links maps multi-relation field names to the full replacement set of
	// related ids. Existing links not in the set are removed on update.
	Links map[string][]int64
}

// BuildPayload validates form values against the schema's form fields and
// converts them into a Payload. Returns all field errors at once so the
// form can render every problem inline.
func BuildPayload(schema registry.ModelSchema, form url.Values, editing bool) (Payload, []FieldError) {
	p := Payload{
		Columns: make(map[string]any),
		Links:   make(map[string][]int64),
	}
	var errs []FieldError

	for _, f := range schema.FormFields(editing) {
		if f.Type == registry.FieldMultiRelation {
			ids, fieldErrs := parseIDList(f, form[f.Name])
			if len(fieldErrs) > 0 {
				errs = append(errs, fieldErrs...)
				continue
			}
			p.Links[f.Name] = ids
			continue
		}

		raw := strings.TrimSpace(form.Get(f.Name))
		if raw == "" && f.Default != "" && !editing {
			raw = f.Default
		}

		if raw == "" {
			if f.Required {
				errs = append(errs, FieldError{Field: f.Name, Message: "required field is empty"})
				continue
			}
			// Booleans come from checkboxes; absent means false, not NULL.
			if f.Type == registry.FieldBool {
				p.Columns[f.Name] = false
				continue
			}
			p.Columns[f.Name] = nil
			continue
		}

		value, fieldErr := convertValue(f, raw)
		if fieldErr != nil {
			errs = append(errs, *fieldErr)
			continue
		}
		p.Columns[f.Name] = value
	}

	return p, errs
}

// convertValue converts a single non-empty raw value per the field type.
func convertValue(f registry.Field, raw string) (any, *FieldError) {
	switch f.Type {
	case registry.FieldString, registry.FieldText:
		if err := checkLengthBounds(f, raw); err != nil {
			return nil, err
		}
		return ToPgText(raw), nil

	case registry.FieldNumber:
		n := ToPgNumeric(raw)
		if !n.Valid {
			return nil, &FieldError{Field: f.Name, Message: "invalid number"}
		}
		if err := checkNumericBounds(f, raw); err != nil {
			return nil, err
		}
		return n, nil

	case registry.FieldBool:
		b := ToPgBool(raw)
		if !b.Valid {
			return nil, &FieldError{Field: f.Name, Message: "must be yes/no, true/false, or 1/0"}
		}
		return b.Bool, nil

	case registry.FieldDate:
		d := ToPgDate(raw)
		if !d.Valid {
			return nil, &FieldError{Field: f.Name, Message: "invalid date (use YYYY-MM-DD or similar)"}
		}
		return d, nil

	case registry.FieldEnum:
		if !enumValid(raw, f.EnumValues) {
			return nil, &FieldError{Field: f.Name, Message: formatEnumList(f.EnumValues)}
		}
		return strings.ToLower(raw), nil

	case registry.FieldRelation:
		id := ToPgInt8(raw)
		if !id.Valid {
			return nil, &FieldError{Field: f.Name, Message: "invalid selection"}
		}
		return id, nil

	default:
		return ToPgText(raw), nil
	}
}

// checkNumericBounds enforces Min/Max on a number field.
func checkNumericBounds(f registry.Field, raw string) *FieldError {
	v, ok := numericValue(raw)
	if !ok {
		return nil // conversion already validated the format
	}
	if f.Min != nil && v < *f.Min {
		return &FieldError{Field: f.Name, Message: "must be at least " + formatBound(*f.Min)}
	}
	if f.Max != nil && v > *f.Max {
		return &FieldError{Field: f.Name, Message: "must be at most " + formatBound(*f.Max)}
	}
	return nil
}

// checkLengthBounds enforces Min/Max as string lengths on text fields.
func checkLengthBounds(f registry.Field, raw string) *FieldError {
	n := float64(len(raw))
	if f.Min != nil && n < *f.Min {
		return &FieldError{Field: f.Name, Message: "too short (minimum " + formatBound(*f.Min) + " characters)"}
	}
	if f.Max != nil && n > *f.Max {
		return &FieldError{Field: f.Name, Message: "too long (maximum " + formatBound(*f.Max) + " characters)"}
	}
	return nil
}

func formatBound(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// parseIDList parses the submitted multi-select values for a
// multi-relation field into target ids.
func parseIDList(f registry.Field, raw []string) ([]int64, []FieldError) {
	var ids []int64
	var errs []FieldError
	seen := make(map[int64]bool)

	for _, v := range raw {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			errs = append(errs, FieldError{Field: f.Name, Message: "invalid selection: " + v})
			continue
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	if f.Required && len(ids) == 0 && len(errs) == 0 {
		errs = append(errs, FieldError{Field: f.Name, Message: "select at least one value"})
	}

	return ids, errs
}
