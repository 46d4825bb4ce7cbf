// Package ui renders the generic admin screens as templ components. Every
// table and form is generated from registry metadata; there is no
// per-model markup anywhere in the package.
package ui

import (
	"context"
	"fmt"
	"html"
	"io"
	"strconv"
	"time"

	"github.com/a-h/templ"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/racedesk/racedesk/internal/gateway"
	"github.com/racedesk/racedesk/internal/registry"
)

// maxBadges caps how many multi-relation values a list cell shows before
// collapsing the rest into a "+N" overflow indicator.
const maxBadges = 3

// ModelGroup is one dashboard section.
type ModelGroup struct {
	Name   string
	Models []registry.ModelSchema
}

// FormData carries everything a rendered form needs: current values keyed
// by field name, selected multi-relation ids, picker options, and
// validation errors keyed by field.
type FormData struct {
	Action   string
	Editing  bool
	Values   map[string]string
	Selected map[string][]int64
	Options  map[string][]gateway.Option
	Errors   map[string]string
}

// Layout wraps a body component in the admin page shell.
func Layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w,
			`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>%s</title><link rel="stylesheet" href="/static/admin.css"></head><body><header class="topbar"><a href="/admin">Dashboard</a></header><main>`,
			html.EscapeString(title)); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</main></body></html>`)
		return err
	})
}

// Dashboard lists registered models grouped by area.
func Dashboard(groups []ModelGroup) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		for _, g := range groups {
			if _, err := fmt.Fprintf(w, `<section class="group"><h2>%s</h2><ul>`, html.EscapeString(g.Name)); err != nil {
				return err
			}
			for _, m := range g.Models {
				if _, err := fmt.Fprintf(w,
					`<li><a href="/admin/%s">%s</a> <span class="desc">%s</span></li>`,
					html.EscapeString(m.Name), html.EscapeString(m.Plural), html.EscapeString(m.Description)); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, `</ul></section>`); err != nil {
				return err
			}
		}
		return nil
	})
}

// ErrorAlert renders an operation-level failure banner.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<div class="alert alert-error" role="alert"><strong>%s</strong> %s <span class="code">%s</span></div>`,
			html.EscapeString(message), html.EscapeString(action), html.EscapeString(code))
		return err
	})
}

// ListPage renders the list screen for a model: search box, table of the
// ShowInList fields in declared order, bulk-delete form and pagination.
func ListPage(schema registry.ModelSchema, list *gateway.ListResult, params gateway.QueryParams) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		base := "/admin/" + schema.Name

		if _, err := fmt.Fprintf(w, `<h1>%s</h1>`, html.EscapeString(schema.Plural)); err != nil {
			return err
		}
		if schema.Permissions.Create {
			if _, err := fmt.Fprintf(w, `<a class="btn" href="%s/new">New %s</a>`, base, html.EscapeString(schema.Singular)); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w,
			`<form method="get" action="%s" class="search"><input type="search" name="q" value="%s" placeholder="Search"><button>Search</button></form>`,
			base, html.EscapeString(params.Search)); err != nil {
			return err
		}

		fields := schema.ListFields()

		if _, err := fmt.Fprintf(w, `<form method="post" action="%s/delete"><table><thead><tr><th></th>`, base); err != nil {
			return err
		}
		for _, f := range fields {
			if _, err := fmt.Fprintf(w, `<th><a href="%s?q=%s&sort=%s&dir=%s">%s</a></th>`,
				base, html.EscapeString(params.Search), html.EscapeString(f.Name),
				nextDir(params.Sort, f.Name), html.EscapeString(f.DisplayLabel())); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, `<th></th></tr></thead><tbody>`); err != nil {
			return err
		}

		for _, rec := range list.Items {
			id, _ := rec["id"].(int64)
			if _, err := fmt.Fprintf(w, `<tr><td><input type="checkbox" name="ids" value="%d"></td>`, id); err != nil {
				return err
			}
			for _, f := range fields {
				if _, err := io.WriteString(w, `<td>`); err != nil {
					return err
				}
				if err := cell(f, rec[f.Name]).Render(ctx, w); err != nil {
					return err
				}
				if _, err := io.WriteString(w, `</td>`); err != nil {
					return err
				}
			}
			editCell := ""
			if schema.Permissions.Update {
				editCell = fmt.Sprintf(`<a href="%s/%d/edit">Edit</a>`, base, id)
			}
			if _, err := fmt.Fprintf(w, `<td>%s</td></tr>`, editCell); err != nil {
				return err
			}
		}

		if _, err := io.WriteString(w, `</tbody></table>`); err != nil {
			return err
		}
		if schema.Permissions.Delete {
			if _, err := io.WriteString(w, `<button class="btn-danger">Delete selected</button>`); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, `</form>`); err != nil {
			return err
		}

		return pagination(w, base, list.Pagination, params)
	})
}

// pagination renders prev/next links preserving search and sort state.
func pagination(w io.Writer, base string, p gateway.Pagination, params gateway.QueryParams) error {
	link := func(page int, label string) string {
		return fmt.Sprintf(`<a href="%s?page=%d&q=%s&sort=%s&dir=%s">%s</a>`,
			base, page, html.EscapeString(params.Search),
			html.EscapeString(params.Sort.Field), html.EscapeString(params.Sort.Direction), label)
	}

	_, err := io.WriteString(w, `<nav class="pagination">`)
	if err != nil {
		return err
	}
	if p.Page > 1 {
		if _, err := io.WriteString(w, link(p.Page-1, "&laquo; Prev")); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, `<span>Page %d of %d (%d total)</span>`, p.Page, p.TotalPages, p.Total); err != nil {
		return err
	}
	if p.Page < p.TotalPages {
		if _, err := io.WriteString(w, link(p.Page+1, "Next &raquo;")); err != nil {
			return err
		}
	}
	_, err = io.WriteString(w, `</nav>`)
	return err
}

// nextDir flips the sort direction for a column header link.
func nextDir(current registry.Sort, field string) string {
	if current.Field == field && current.Direction == "asc" {
		return "desc"
	}
	return "asc"
}

// cell renders one list-table value according to its field type: relations
// become navigable links, multi-relation values a capped badge list,
// booleans a check mark.
func cell(f registry.Field, v any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		switch f.Type {
		case registry.FieldRelation:
			id, ok := asInt64(v)
			if !ok {
				_, err := io.WriteString(w, `&mdash;`)
				return err
			}
			_, err := fmt.Fprintf(w, `<a href="/admin/%s/%d/edit">#%d</a>`,
				html.EscapeString(f.Relation.Model), id, id)
			return err

		case registry.FieldMultiRelation:
			labels, _ := v.([]string)
			for i, label := range labels {
				if i == maxBadges {
					_, err := fmt.Fprintf(w, `<span class="badge badge-more">+%d</span>`, len(labels)-maxBadges)
					return err
				}
				if _, err := fmt.Fprintf(w, `<span class="badge">%s</span>`, html.EscapeString(label)); err != nil {
					return err
				}
			}
			return nil

		case registry.FieldBool:
			if b, ok := v.(bool); ok && b {
				_, err := io.WriteString(w, `&#10003;`)
				return err
			}
			_, err := io.WriteString(w, `&mdash;`)
			return err

		default:
			_, err := io.WriteString(w, html.EscapeString(formatValue(v)))
			return err
		}
	})
}

// FormPage renders the create or edit form for a model: one control per
// visible field, chosen by semantic type, with inline validation errors.
func FormPage(schema registry.ModelSchema, data FormData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		title := "New " + schema.Singular
		if data.Editing {
			title = "Edit " + schema.Singular
		}
		if _, err := fmt.Fprintf(w, `<h1>%s</h1><form method="post" action="%s">`,
			html.EscapeString(title), html.EscapeString(data.Action)); err != nil {
			return err
		}

		for _, f := range schema.FormFields(data.Editing) {
			if err := formField(w, f, data); err != nil {
				return err
			}
		}

		_, err := fmt.Fprintf(w,
			`<button class="btn">Save</button> <a href="/admin/%s">Cancel</a></form>`, schema.Name)
		return err
	})
}

// formField renders a label, the field's control, and any inline error.
func formField(w io.Writer, f registry.Field, data FormData) error {
	required := ""
	if f.Required {
		required = ` <span class="required">*</span>`
	}
	if _, err := fmt.Fprintf(w, `<div class="field"><label for="%s">%s%s</label>`,
		html.EscapeString(f.Name), html.EscapeString(f.DisplayLabel()), required); err != nil {
		return err
	}

	value := data.Values[f.Name]

	switch f.Type {
	case registry.FieldText:
		if _, err := fmt.Fprintf(w, `<textarea id="%s" name="%s" rows="6">%s</textarea>`,
			f.Name, f.Name, html.EscapeString(value)); err != nil {
			return err
		}

	case registry.FieldNumber:
		if err := writeInput(w, "number", f, value, `step="any"`); err != nil {
			return err
		}

	case registry.FieldBool:
		checked := ""
		if value == "true" || value == "on" || value == "1" {
			checked = " checked"
		}
		if _, err := fmt.Fprintf(w, `<input type="checkbox" id="%s" name="%s"%s>`, f.Name, f.Name, checked); err != nil {
			return err
		}

	case registry.FieldDate:
		if err := writeInput(w, "date", f, value, ""); err != nil {
			return err
		}

	case registry.FieldEnum:
		if _, err := fmt.Fprintf(w, `<select id="%s" name="%s">`, f.Name, f.Name); err != nil {
			return err
		}
		for _, ev := range f.EnumValues {
			selected := ""
			if ev == value {
				selected = " selected"
			}
			if _, err := fmt.Fprintf(w, `<option value="%s"%s>%s</option>`,
				html.EscapeString(ev), selected, html.EscapeString(ev)); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, `</select>`); err != nil {
			return err
		}

	case registry.FieldRelation:
		if err := relationSelect(w, f, value, data.Options[f.Name]); err != nil {
			return err
		}

	case registry.FieldMultiRelation:
		if err := multiRelationSelect(w, f, data.Selected[f.Name], data.Options[f.Name]); err != nil {
			return err
		}

	default:
		if err := writeInput(w, "text", f, value, ""); err != nil {
			return err
		}
	}

	if msg, ok := data.Errors[f.Name]; ok {
		if _, err := fmt.Fprintf(w, `<span class="field-error">%s</span>`, html.EscapeString(msg)); err != nil {
			return err
		}
	}

	_, err := io.WriteString(w, `</div>`)
	return err
}

func writeInput(w io.Writer, inputType string, f registry.Field, value, extra string) error {
	if extra != "" {
		extra = " " + extra
	}
	_, err := fmt.Fprintf(w, `<input type="%s" id="%s" name="%s" value="%s"%s>`,
		inputType, f.Name, f.Name, html.EscapeString(value), extra)
	return err
}

// relationSelect renders a single-select populated from gateway options.
func relationSelect(w io.Writer, f registry.Field, value string, options []gateway.Option) error {
	if _, err := fmt.Fprintf(w, `<select id="%s" name="%s">`, f.Name, f.Name); err != nil {
		return err
	}
	if !f.Required {
		if _, err := io.WriteString(w, `<option value=""></option>`); err != nil {
			return err
		}
	}
	for _, opt := range options {
		selected := ""
		if strconv.FormatInt(opt.Value, 10) == value {
			selected = " selected"
		}
		if _, err := fmt.Fprintf(w, `<option value="%d"%s>%s</option>`,
			opt.Value, selected, html.EscapeString(opt.Label)); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, `</select>`)
	return err
}

// multiRelationSelect renders a multi-select with the linked ids selected.
func multiRelationSelect(w io.Writer, f registry.Field, selected []int64, options []gateway.Option) error {
	chosen := make(map[int64]bool, len(selected))
	for _, id := range selected {
		chosen[id] = true
	}

	if _, err := fmt.Fprintf(w, `<select id="%s" name="%s" multiple size="6">`, f.Name, f.Name); err != nil {
		return err
	}
	for _, opt := range options {
		sel := ""
		if chosen[opt.Value] {
			sel = " selected"
		}
		if _, err := fmt.Fprintf(w, `<option value="%d"%s>%s</option>`,
			opt.Value, sel, html.EscapeString(opt.Label)); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, `</select>`)
	return err
}

// formatValue renders a stored value for display or as a form default.
func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case time.Time:
		return t.Format("2006-01-02")
	case pgtype.Numeric:
		if !t.Valid {
			return ""
		}
		if v, err := t.Value(); err == nil {
			return fmt.Sprint(v)
		}
		return ""
	case bool:
		if t {
			return "true"
		}
		return "false"
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// FormatValue is the exported form of formatValue for the handlers that
// prefill edit forms from stored records.
func FormatValue(v any) string {
	return formatValue(v)
}

func asInt64(v any) (int64, bool) {
	switch t := v.(type) {
	case int64:
		return t, true
	case int32:
		return int64(t), true
	case int:
		return int64(t), true
	default:
		return 0, false
	}
}
