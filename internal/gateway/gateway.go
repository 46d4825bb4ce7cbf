// Package gateway generates uniform per-model data access from registry
// metadata: paged/searched/sorted lists, single-record reads, writes with
// many-to-many link replacement, bulk deletes and option lists for relation
// pickers. One Gateway serves one ModelSchema; all SQL is derived from the
// schema, with identifiers quoted and values bound.
//
// The gateway does not enforce schema permissions. That separation is
// deliberate: the web layer decides who may call, the gateway decides how
// the call hits the database.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/racedesk/racedesk/internal/registry"
)

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Record is one row of a model as field-name/value pairs. Multi-relation
// fields carry []string labels in list results and []int64 ids in Get
// results (for form preselection).
type Record map[string]any

// ListResult is one page of records plus pagination state.
type ListResult struct {
	Items      []Record
	Pagination Pagination
}

// Option is one entry of a relation picker.
type Option struct {
	Value int64
	Label string
}

// Gateway provides data access for a single registered model.
type Gateway struct {
	schema registry.ModelSchema
	pool   *pgxpool.Pool
}

// New returns a gateway bound to the schema.
func New(schema registry.ModelSchema, pool *pgxpool.Pool) *Gateway {
	return &Gateway{schema: schema, pool: pool}
}

// For looks up a model by name and returns its gateway.
// Returns false for unknown models so callers can render an empty state.
func For(name string, pool *pgxpool.Pool) (*Gateway, bool) {
	schema, ok := registry.Get(name)
	if !ok {
		return nil, false
	}
	return New(schema, pool), true
}

// Schema returns the model schema the gateway serves.
func (g *Gateway) Schema() registry.ModelSchema {
	return g.schema
}

// List returns one page of records matching the query.
// Search is a case-insensitive substring match ORed across the schema's
// searchable fields. Sort falls back to the schema default.
func (g *Gateway) List(ctx context.Context, params QueryParams) (*ListResult, error) {
	table := quoteIdentifier(g.schema.TableName())

	wb := &whereBuilder{}
	wb.addSearch(params.Search, g.schema)
	wb.addFilters(params.Filters, g.schema)
	whereClause, args := wb.build()

	var total int64
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s%s", table, whereClause)
	if err := g.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, opErr(g.schema.Name, "list", fmt.Errorf("count rows: %w", err))
	}

	if params.PerPage <= 0 {
		params.PerPage = g.schema.PerPage
	}
	pagination, offset := paginate(params.Page, params.PerPage, total)

	columns := []string{"id"}
	for _, f := range g.schema.ColumnFields() {
		columns = append(columns, f.Name)
	}

	argIndex := wb.nextArgIndex()
	query := fmt.Sprintf(
		"SELECT %s FROM %s%s %s LIMIT $%d OFFSET $%d",
		joinColumns(columns), table, whereClause,
		orderClause(g.schema, params.Sort),
		argIndex, argIndex+1,
	)
	args = append(args, pagination.PerPage, offset)

	rows, err := g.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, opErr(g.schema.Name, "list", fmt.Errorf("query rows: %w", err))
	}
	defer rows.Close()

	var items []Record
	var ids []int64
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, opErr(g.schema.Name, "list", fmt.Errorf("read row values: %w", err))
		}
		rec := make(Record, len(columns))
		for i, col := range columns {
			rec[col] = values[i]
		}
		if id, ok := recordID(rec); ok {
			ids = append(ids, id)
		}
		items = append(items, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, opErr(g.schema.Name, "list", err)
	}

	if err := g.attachLinkLabels(ctx, items, ids); err != nil {
		return nil, err
	}

	return &ListResult{Items: items, Pagination: pagination}, nil
}

// Get returns a single record by id, including multi-relation ids.
func (g *Gateway) Get(ctx context.Context, id int64) (Record, error) {
	columns := []string{"id"}
	for _, f := range g.schema.ColumnFields() {
		columns = append(columns, f.Name)
	}

	query := fmt.Sprintf(
		"SELECT %s FROM %s WHERE id = $1",
		joinColumns(columns), quoteIdentifier(g.schema.TableName()),
	)

	rows, err := g.pool.Query(ctx, query, id)
	if err != nil {
		return nil, opErr(g.schema.Name, "get", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, opErr(g.schema.Name, "get", err)
		}
		return nil, opErr(g.schema.Name, "get", ErrNotFound)
	}

	values, err := rows.Values()
	if err != nil {
		return nil, opErr(g.schema.Name, "get", err)
	}
	rows.Close()

	rec := make(Record, len(columns))
	for i, col := range columns {
		rec[col] = values[i]
	}

	for _, f := range g.schema.MultiRelationFields() {
		linked, err := g.linkedIDs(ctx, f, id)
		if err != nil {
			return nil, err
		}
		rec[f.Name] = linked
	}

	return rec, nil
}

// Create inserts a record and writes its multi-relation links.
// Returns the stored record.
func (g *Gateway) Create(ctx context.Context, p Payload) (Record, error) {
	tx, err := g.pool.Begin(ctx)
	if err != nil {
		return nil, opErr(g.schema.Name, "create", err)
	}
	defer tx.Rollback(ctx)

	var cols []string
	var placeholders []string
	var args []any
	for _, f := range g.schema.ColumnFields() {
		value, ok := p.Columns[f.Name]
		if !ok {
			continue
		}
		cols = append(cols, quoteIdentifier(f.Name))
		placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)+1))
		args = append(args, value)
	}
	if len(cols) == 0 {
		return nil, opErr(g.schema.Name, "create", errors.New("no writable fields in payload"))
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) RETURNING id",
		quoteIdentifier(g.schema.TableName()),
		strings.Join(cols, ", "), strings.Join(placeholders, ", "),
	)

	var id int64
	if err := tx.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return nil, opErr(g.schema.Name, "create", err)
	}

	for _, f := range g.schema.MultiRelationFields() {
		if targets, ok := p.Links[f.Name]; ok {
			if err := replaceLinks(ctx, tx, f, id, targets); err != nil {
				return nil, opErr(g.schema.Name, "create", err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, opErr(g.schema.Name, "create", err)
	}

	return g.Get(ctx, id)
}

// Update writes a record's columns and replaces its multi-relation links.
// The submitted link set replaces the stored one entirely; partial updates
// must resend the full set.
func (g *Gateway) Update(ctx context.Context, id int64, p Payload) (Record, error) {
	tx, err := g.pool.Begin(ctx)
	if err != nil {
		return nil, opErr(g.schema.Name, "update", err)
	}
	defer tx.Rollback(ctx)

	var sets []string
	var args []any
	for _, f := range g.schema.ColumnFields() {
		value, ok := p.Columns[f.Name]
		if !ok {
			continue
		}
		sets = append(sets, fmt.Sprintf("%s = $%d", quoteIdentifier(f.Name), len(args)+1))
		args = append(args, value)
	}

	if len(sets) > 0 {
		query := fmt.Sprintf(
			"UPDATE %s SET %s WHERE id = $%d",
			quoteIdentifier(g.schema.TableName()),
			strings.Join(sets, ", "), len(args)+1,
		)
		args = append(args, id)

		tag, err := tx.Exec(ctx, query, args...)
		if err != nil {
			return nil, opErr(g.schema.Name, "update", err)
		}
		if tag.RowsAffected() == 0 {
			return nil, opErr(g.schema.Name, "update", ErrNotFound)
		}
	}

	for _, f := range g.schema.MultiRelationFields() {
		if targets, ok := p.Links[f.Name]; ok {
			if err := replaceLinks(ctx, tx, f, id, targets); err != nil {
				return nil, opErr(g.schema.Name, "update", err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, opErr(g.schema.Name, "update", err)
	}

	return g.Get(ctx, id)
}

// Delete removes records by id set. Link-table rows go with them via
// ON DELETE CASCADE on the foreign keys.
func (g *Gateway) Delete(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE id = ANY($1)", quoteIdentifier(g.schema.TableName()))
	if _, err := g.pool.Exec(ctx, query, ids); err != nil {
		return opErr(g.schema.Name, "delete", err)
	}
	return nil
}

// Options returns {id, label} pairs for relation pickers targeting this
// model, ordered ascending by the display field.
func (g *Gateway) Options(ctx context.Context) ([]Option, error) {
	display := g.schema.PrimaryField
	if display == "" {
		display = "id"
	}

	query := fmt.Sprintf(
		"SELECT id, CAST(%s AS TEXT) FROM %s ORDER BY %s ASC",
		quoteIdentifier(display),
		quoteIdentifier(g.schema.TableName()),
		quoteIdentifier(display),
	)

	rows, err := g.pool.Query(ctx, query)
	if err != nil {
		return nil, opErr(g.schema.Name, "options", err)
	}
	defer rows.Close()

	var options []Option
	for rows.Next() {
		var opt Option
		var label *string
		if err := rows.Scan(&opt.Value, &label); err != nil {
			return nil, opErr(g.schema.Name, "options", err)
		}
		if label != nil {
			opt.Label = *label
		}
		options = append(options, opt)
	}
	if err := rows.Err(); err != nil {
		return nil, opErr(g.schema.Name, "options", err)
	}

	return options, nil
}

// replaceLinks rewrites the link-table rows for one record and one
// multi-relation field: delete everything, then insert the new set.
func replaceLinks(ctx context.Context, db DBTX, f registry.Field, sourceID int64, targets []int64) error {
	rel := f.Relation

	del := fmt.Sprintf(
		"DELETE FROM %s WHERE %s = $1",
		quoteIdentifier(rel.JoinTable), quoteIdentifier(rel.SourceKey),
	)
	if _, err := db.Exec(ctx, del, sourceID); err != nil {
		return fmt.Errorf("clear %s links: %w", f.Name, err)
	}

	ins := fmt.Sprintf(
		"INSERT INTO %s (%s, %s) VALUES ($1, $2)",
		quoteIdentifier(rel.JoinTable),
		quoteIdentifier(rel.SourceKey), quoteIdentifier(rel.TargetKey),
	)
	for _, target := range targets {
		if _, err := db.Exec(ctx, ins, sourceID, target); err != nil {
			return fmt.Errorf("link %s -> %d: %w", f.Name, target, err)
		}
	}

	return nil
}

// linkedIDs returns the target ids linked to one record.
func (g *Gateway) linkedIDs(ctx context.Context, f registry.Field, sourceID int64) ([]int64, error) {
	rel := f.Relation
	query := fmt.Sprintf(
		"SELECT %s FROM %s WHERE %s = $1",
		quoteIdentifier(rel.TargetKey), quoteIdentifier(rel.JoinTable), quoteIdentifier(rel.SourceKey),
	)

	rows, err := g.pool.Query(ctx, query, sourceID)
	if err != nil {
		return nil, opErr(g.schema.Name, "get", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, opErr(g.schema.Name, "get", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// attachLinkLabels loads display labels for every multi-relation field of
// the listed records in one query per field.
func (g *Gateway) attachLinkLabels(ctx context.Context, items []Record, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	for _, f := range g.schema.MultiRelationFields() {
		rel := f.Relation
		target, ok := registry.Get(rel.Model)
		if !ok {
			continue
		}

		query := fmt.Sprintf(
			"SELECT j.%s, CAST(t.%s AS TEXT) FROM %s j JOIN %s t ON t.id = j.%s WHERE j.%s = ANY($1) ORDER BY t.%s",
			quoteIdentifier(rel.SourceKey),
			quoteIdentifier(rel.DisplayField),
			quoteIdentifier(rel.JoinTable),
			quoteIdentifier(target.TableName()),
			quoteIdentifier(rel.TargetKey),
			quoteIdentifier(rel.SourceKey),
			quoteIdentifier(rel.DisplayField),
		)

		rows, err := g.pool.Query(ctx, query, ids)
		if err != nil {
			return opErr(g.schema.Name, "list", fmt.Errorf("load %s labels: %w", f.Name, err))
		}

		labels := make(map[int64][]string)
		for rows.Next() {
			var sourceID int64
			var label string
			if err := rows.Scan(&sourceID, &label); err != nil {
				rows.Close()
				return opErr(g.schema.Name, "list", err)
			}
			labels[sourceID] = append(labels[sourceID], label)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return opErr(g.schema.Name, "list", err)
		}
		rows.Close()

		for _, rec := range items {
			if id, ok := recordID(rec); ok {
				rec[f.Name] = labels[id]
			}
		}
	}

	return nil
}

// recordID extracts the int64 id from a record.
func recordID(rec Record) (int64, bool) {
	switch v := rec["id"].(type) {
	case int64:
		return v, true
	case int32:
		return int64(v), true
	case int:
		return int64(v), true
	default:
		return 0, false
	}
}

// joinColumns quotes and joins column names for a SELECT list.
func joinColumns(cols []string) string {
	return strings.Join(quoteColumns(cols), ", ")
}
