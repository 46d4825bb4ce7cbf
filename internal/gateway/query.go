package gateway

// query.go builds the SQL for list screens from registry metadata.
//
// All identifiers come from registered schemas, never from request input:
// sort and search fields are validated against the schema before they reach
// a query, and identifiers are quoted. Values are always bound parameters.

import (
	"fmt"
	"sort"
	"strings"

	"github.com/racedesk/racedesk/internal/registry"
)

// QueryParams is the uniform list-request shape for every model.
type QueryParams struct {
	Page    int
	PerPage int
	Search  string
	Sort    registry.Sort

	// Filters scopes the list to parent records, keyed by relation field
	// name (e.g. "run_id" -> 3). Unknown keys are ignored.
	Filters map[string]int64
}

// Pagination describes one page of a list result.
type Pagination struct {
	Page       int
	PerPage    int
	Total      int64
	TotalPages int
}

// paginate computes the effective page, total pages and offset.
// Guarantees TotalPages == ceil(total/perPage), minimum 1.
func paginate(page, perPage int, total int64) (Pagination, int) {
	if perPage <= 0 {
		perPage = 25
	}
	if page < 1 {
		page = 1
	}

	totalPages := int((total + int64(perPage) - 1) / int64(perPage))
	if totalPages < 1 {
		totalPages = 1
	}
	if page > totalPages {
		page = totalPages
	}

	offset := (page - 1) * perPage
	return Pagination{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}, offset
}

// whereBuilder accumulates WHERE conditions with positional parameters.
type whereBuilder struct {
	conds []string
	args  []any
}

// addSearch adds a case-insensitive substring match ORed across the
// schema's searchable fields. Non-text columns are cast so ILIKE applies.
func (wb *whereBuilder) addSearch(search string, schema registry.ModelSchema) {
	search = strings.TrimSpace(search)
	if search == "" || len(schema.SearchFields) == 0 {
		return
	}

	arg := len(wb.args) + 1
	parts := make([]string, 0, len(schema.SearchFields))
	for _, name := range schema.SearchFields {
		f, ok := schema.Field(name)
		if !ok || f.Type == registry.FieldMultiRelation {
			continue
		}
		col := quoteIdentifier(name)
		if f.Type != registry.FieldString && f.Type != registry.FieldText && f.Type != registry.FieldEnum {
			col = fmt.Sprintf("CAST(%s AS TEXT)", col)
		}
		parts = append(parts, fmt.Sprintf("%s ILIKE $%d", col, arg))
	}
	if len(parts) == 0 {
		return
	}

	wb.conds = append(wb.conds, "("+strings.Join(parts, " OR ")+")")
	wb.args = append(wb.args, "%"+search+"%")
}

// addEq adds an equality condition on a known column.
func (wb *whereBuilder) addEq(column string, value any) {
	wb.conds = append(wb.conds, fmt.Sprintf("%s = $%d", quoteIdentifier(column), len(wb.args)+1))
	wb.args = append(wb.args, value)
}

// addFilters applies parent-record filters, keeping only keys that name a
// declared relation field of the schema. Keys are applied in sorted order
// so the generated SQL is stable.
func (wb *whereBuilder) addFilters(filters map[string]int64, schema registry.ModelSchema) {
	names := make([]string, 0, len(filters))
	for name := range filters {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		f, ok := schema.Field(name)
		if !ok || f.Type != registry.FieldRelation {
			continue
		}
		wb.addEq(name, filters[name])
	}
}

// build returns the WHERE clause (with leading space) and its arguments.
// Returns an empty clause when no conditions were added.
func (wb *whereBuilder) build() (string, []any) {
	if len(wb.conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(wb.conds, " AND "), wb.args
}

// nextArgIndex returns the positional index for the next bound parameter.
func (wb *whereBuilder) nextArgIndex() int {
	return len(wb.args) + 1
}

// orderClause resolves the requested sort against the schema, falling back
// to the schema default, then to id. Ties are left to the database; when a
// sort field has equal values the relative order is not guaranteed.
func orderClause(schema registry.ModelSchema, sort registry.Sort) string {
	field := sort.Field
	dir := strings.ToLower(sort.Direction)

	if _, ok := schema.Field(field); !ok || field == "" {
		field = schema.DefaultSort.Field
		dir = strings.ToLower(schema.DefaultSort.Direction)
	}
	if f, ok := schema.Field(field); !ok || f.Type == registry.FieldMultiRelation {
		return `ORDER BY "id" asc`
	}
	if dir != "asc" && dir != "desc" {
		dir = "asc"
	}

	return fmt.Sprintf("ORDER BY %s %s", quoteIdentifier(field), dir)
}

// quoteIdentifier quotes a SQL identifier, escaping embedded quotes.
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// quoteColumns quotes a list of identifiers.
func quoteColumns(cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = quoteIdentifier(c)
	}
	return out
}
