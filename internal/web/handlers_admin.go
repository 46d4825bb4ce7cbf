package web

// handlers_admin.go implements the generic CRUD screens. Every handler
// resolves the target model from the URL, so adding a new manageable
// entity is a registry entry plus a table, with no handler changes.

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/racedesk/racedesk/internal/gateway"
	"github.com/racedesk/racedesk/internal/logging"
	"github.com/racedesk/racedesk/internal/registry"
	"github.com/racedesk/racedesk/internal/web/ui"
)

// handleDashboard renders the grouped model index.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	var groups []ui.ModelGroup
	for _, name := range registry.Groups() {
		groups = append(groups, ui.ModelGroup{Name: name, Models: registry.ByGroup(name)})
	}

	s.render(w, r, "Dashboard", ui.Dashboard(groups))
}

// modelGateway resolves the {model} URL segment to a gateway, or writes a
// 404 and returns false.
func (s *Server) modelGateway(w http.ResponseWriter, r *http.Request) (*gateway.Gateway, bool) {
	name := chi.URLParam(r, "model")
	gw, ok := gateway.For(name, s.pool)
	if !ok {
		http.NotFound(w, r)
		return nil, false
	}
	return gw, true
}

// recordIDParam parses the {id} URL segment.
func recordIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	gw, ok := s.modelGateway(w, r)
	if !ok {
		return
	}
	schema := gw.Schema()
	if !schema.Permissions.Read {
		http.Error(w, "listing is not enabled for this model", http.StatusForbidden)
		return
	}

	params := listParams(r, schema)
	list, err := gw.List(r.Context(), params)
	if err != nil {
		s.respondError(w, r, err, statusForError(err))
		return
	}

	s.render(w, r, schema.Plural, ui.ListPage(schema, list, params))
}

// listParams reads page, search and sort state from the query string.
func listParams(r *http.Request, schema registry.ModelSchema) gateway.QueryParams {
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	params := gateway.QueryParams{
		Page:    page,
		PerPage: schema.PerPage,
		Search:  q.Get("q"),
	}

	if field := q.Get("sort"); field != "" {
		params.Sort = registry.Sort{Field: field, Direction: q.Get("dir")}
	}

	for _, f := range schema.Fields {
		if f.Type != registry.FieldRelation {
			continue
		}
		raw := q.Get(f.Name)
		if raw == "" {
			continue
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		if params.Filters == nil {
			params.Filters = make(map[string]int64)
		}
		params.Filters[f.Name] = id
	}
	return params
}

func (s *Server) handleNew(w http.ResponseWriter, r *http.Request) {
	gw, ok := s.modelGateway(w, r)
	if !ok {
		return
	}
	schema := gw.Schema()
	if !schema.Permissions.Create {
		http.Error(w, "creation is not enabled for this model", http.StatusForbidden)
		return
	}

	data := ui.FormData{
		Action: "/admin/" + schema.Name,
		Values: defaultValues(schema),
	}
	if err := s.loadOptions(r, schema, false, &data); err != nil {
		s.respondError(w, r, err, statusForError(err))
		return
	}

	s.render(w, r, "New "+schema.Singular, ui.FormPage(schema, data))
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	gw, ok := s.modelGateway(w, r)
	if !ok {
		return
	}
	schema := gw.Schema()
	if !schema.Permissions.Create {
		http.Error(w, "creation is not enabled for this model", http.StatusForbidden)
		return
	}
	if err := r.ParseForm(); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	payload, fieldErrs := gateway.BuildPayload(schema, r.PostForm, false)
	if len(fieldErrs) > 0 {
		s.renderFormErrors(w, r, schema, false, "/admin/"+schema.Name, r.PostForm, fieldErrs)
		return
	}

	if _, err := gw.Create(r.Context(), payload); err != nil {
		s.respondError(w, r, err, statusForError(err))
		return
	}
	http.Redirect(w, r, "/admin/"+schema.Name, http.StatusSeeOther)
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	gw, ok := s.modelGateway(w, r)
	if !ok {
		return
	}
	schema := gw.Schema()
	if !schema.Permissions.Update {
		http.Error(w, "editing is not enabled for this model", http.StatusForbidden)
		return
	}
	id, ok := recordIDParam(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	rec, err := gw.Get(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err, statusForError(err))
		return
	}

	data := ui.FormData{
		Action:   "/admin/" + schema.Name + "/" + strconv.FormatInt(id, 10),
		Editing:  true,
		Values:   recordValues(schema, rec),
		Selected: recordLinks(schema, rec),
	}
	if err := s.loadOptions(r, schema, true, &data); err != nil {
		s.respondError(w, r, err, statusForError(err))
		return
	}

	s.render(w, r, "Edit "+schema.Singular, ui.FormPage(schema, data))
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	gw, ok := s.modelGateway(w, r)
	if !ok {
		return
	}
	schema := gw.Schema()
	if !schema.Permissions.Update {
		http.Error(w, "editing is not enabled for this model", http.StatusForbidden)
		return
	}
	id, ok := recordIDParam(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	payload, fieldErrs := gateway.BuildPayload(schema, r.PostForm, true)
	if len(fieldErrs) > 0 {
		action := "/admin/" + schema.Name + "/" + strconv.FormatInt(id, 10)
		s.renderFormErrors(w, r, schema, true, action, r.PostForm, fieldErrs)
		return
	}

	if _, err := gw.Update(r.Context(), id, payload); err != nil {
		s.respondError(w, r, err, statusForError(err))
		return
	}
	http.Redirect(w, r, "/admin/"+schema.Name, http.StatusSeeOther)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	gw, ok := s.modelGateway(w, r)
	if !ok {
		return
	}
	schema := gw.Schema()
	if !schema.Permissions.Delete {
		http.Error(w, "deletion is not enabled for this model", http.StatusForbidden)
		return
	}
	if err := r.ParseForm(); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	var ids []int64
	for _, raw := range r.PostForm["ids"] {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			continue
		}
		ids = append(ids, id)
	}

	if len(ids) > 0 {
		if err := gw.Delete(r.Context(), ids); err != nil {
			s.respondError(w, r, err, statusForError(err))
			return
		}
	}
	http.Redirect(w, r, "/admin/"+schema.Name, http.StatusSeeOther)
}

// render writes a component inside the page shell.
func (s *Server) render(w http.ResponseWriter, r *http.Request, title string, body templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := ui.Layout(title, body).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render failed", "error", err, "path", r.URL.Path)
	}
}

// renderFormErrors re-renders a submitted form with inline validation
// errors and the user's values preserved.
func (s *Server) renderFormErrors(w http.ResponseWriter, r *http.Request, schema registry.ModelSchema, editing bool, action string, form url.Values, fieldErrs []gateway.FieldError) {
	data := ui.FormData{
		Action:   action,
		Editing:  editing,
		Values:   make(map[string]string, len(form)),
		Selected: make(map[string][]int64),
		Errors:   make(map[string]string, len(fieldErrs)),
	}
	for key := range form {
		data.Values[key] = form.Get(key)
	}
	for _, f := range schema.MultiRelationFields() {
		var ids []int64
		for _, raw := range form[f.Name] {
			if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
				ids = append(ids, id)
			}
		}
		data.Selected[f.Name] = ids
	}
	for _, fe := range fieldErrs {
		if _, seen := data.Errors[fe.Field]; !seen {
			data.Errors[fe.Field] = fe.Message
		}
	}
	if err := s.loadOptions(r, schema, editing, &data); err != nil {
		s.respondError(w, r, err, statusForError(err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusUnprocessableEntity)
	title := "New " + schema.Singular
	if editing {
		title = "Edit " + schema.Singular
	}
	if err := ui.Layout(title, ui.FormPage(schema, data)).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render failed", "error", err, "path", r.URL.Path)
	}
}

// loadOptions fills the picker options for every relation field on the
// form from the related models' gateways.
func (s *Server) loadOptions(r *http.Request, schema registry.ModelSchema, editing bool, data *ui.FormData) error {
	for _, f := range schema.FormFields(editing) {
		if f.Relation == nil {
			continue
		}
		related, ok := gateway.For(f.Relation.Model, s.pool)
		if !ok {
			continue
		}
		opts, err := related.Options(r.Context())
		if err != nil {
			return err
		}
		if data.Options == nil {
			data.Options = make(map[string][]gateway.Option)
		}
		data.Options[f.Name] = opts
	}
	return nil
}

// defaultValues seeds a blank form with the fields' declared defaults.
func defaultValues(schema registry.ModelSchema) map[string]string {
	values := make(map[string]string)
	for _, f := range schema.FormFields(false) {
		if f.Default != "" {
			values[f.Name] = f.Default
		}
	}
	return values
}

// recordValues converts a stored record into form-ready string values.
func recordValues(schema registry.ModelSchema, rec gateway.Record) map[string]string {
	values := make(map[string]string, len(rec))
	for _, f := range schema.ColumnFields() {
		if v, ok := rec[f.Name]; ok && v != nil {
			values[f.Name] = ui.FormatValue(v)
		}
	}
	return values
}

// recordLinks extracts the linked ids of every multi-relation field.
func recordLinks(schema registry.ModelSchema, rec gateway.Record) map[string][]int64 {
	links := make(map[string][]int64)
	for _, f := range schema.MultiRelationFields() {
		if ids, ok := rec[f.Name].([]int64); ok {
			links[f.Name] = ids
		}
	}
	return links
}
