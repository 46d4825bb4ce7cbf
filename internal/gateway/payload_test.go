package gateway

import (
	"net/url"
	"testing"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/racedesk/racedesk/internal/registry"
)

func bound(v float64) *float64 { return &v }

func formSchema() registry.ModelSchema {
	return registry.ModelSchema{
		Name: "runs",
		Fields: []registry.Field{
			{Name: "name", Type: registry.FieldString, Required: true, ShowInCreate: true, ShowInEdit: true},
			{Name: "distance_km", Type: registry.FieldNumber, Min: bound(0), ShowInCreate: true, ShowInEdit: true},
			{Name: "published", Type: registry.FieldBool, ShowInCreate: true, ShowInEdit: true},
			{Name: "date", Type: registry.FieldDate, ShowInCreate: true, ShowInEdit: true},
			{Name: "gender", Type: registry.FieldEnum, EnumValues: []string{"any", "women", "men"}, Default: "any", ShowInCreate: true, ShowInEdit: true},
			{
				Name: "event_id", Type: registry.FieldRelation, Required: true,
				Relation:     &registry.Relation{Model: "events", DisplayField: "name", ForeignKey: "event_id"},
				ShowInCreate: true, ShowInEdit: true,
			},
			{
				Name: "categories", Type: registry.FieldMultiRelation,
				Relation: &registry.Relation{
					Model: "categories", DisplayField: "name",
					JoinTable: "run_categories", SourceKey: "run_id", TargetKey: "category_id",
				},
				ShowInCreate: true, ShowInEdit: true,
			},
		},
	}
}

func fieldErrorFor(errs []FieldError, field string) (FieldError, bool) {
	for _, e := range errs {
		if e.Field == field {
			return e, true
		}
	}
	return FieldError{}, false
}

func TestBuildPayload_Valid(t *testing.T) {
	form := url.Values{
		"name":        {"City Half Marathon"},
		"distance_km": {"21.1"},
		"published":   {"on"},
		"date":        {"2026-06-14"},
		"gender":      {"Women"},
		"event_id":    {"3"},
		"categories":  {"1", "2", "2"},
	}

	p, errs := BuildPayload(formSchema(), form, false)
	if len(errs) != 0 {
		t.Fatalf("BuildPayload() errors = %v", errs)
	}

	if text, ok := p.Columns["name"].(pgtype.Text); !ok || text.String != "City Half Marathon" {
		t.Errorf("name = %+v", p.Columns["name"])
	}
	if b, ok := p.Columns["published"].(bool); !ok || !b {
		t.Errorf("published = %+v, want true", p.Columns["published"])
	}
	if p.Columns["gender"] != "women" {
		t.Errorf("gender = %+v, want lowercased enum", p.Columns["gender"])
	}
	if id, ok := p.Columns["event_id"].(pgtype.Int8); !ok || id.Int64 != 3 {
		t.Errorf("event_id = %+v", p.Columns["event_id"])
	}
	// Duplicate selections are collapsed.
	if got := p.Links["categories"]; len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("categories links = %v, want [1 2]", got)
	}
	// Multi-relations never land in the column set.
	if _, ok := p.Columns["categories"]; ok {
		t.Error("categories should not be a column")
	}
}

func TestBuildPayload_CollectsAllErrors(t *testing.T) {
	form := url.Values{
		"name":        {""},
		"distance_km": {"-4"},
		"gender":      {"unknown"},
		"event_id":    {"abc"},
	}

	_, errs := BuildPayload(formSchema(), form, true)

	for _, field := range []string{"name", "distance_km", "gender", "event_id"} {
		if _, ok := fieldErrorFor(errs, field); !ok {
			t.Errorf("expected a field error for %s, got %v", field, errs)
		}
	}
}

func TestBuildPayload_AbsentBoolIsFalse(t *testing.T) {
	form := url.Values{
		"name":     {"Kids Run"},
		"event_id": {"1"},
	}

	p, errs := BuildPayload(formSchema(), form, true)
	if _, ok := fieldErrorFor(errs, "published"); ok {
		t.Fatal("unchecked checkbox should not be an error")
	}
	if b, ok := p.Columns["published"].(bool); !ok || b {
		t.Errorf("published = %+v, want false", p.Columns["published"])
	}
}

func TestBuildPayload_DefaultAppliedOnCreate(t *testing.T) {
	form := url.Values{
		"name":     {"Kids Run"},
		"event_id": {"1"},
	}

	p, _ := BuildPayload(formSchema(), form, false)
	if p.Columns["gender"] != "any" {
		t.Errorf("gender = %+v, want default applied on create", p.Columns["gender"])
	}

	// On edit an empty optional value means clear, not default.
	p, _ = BuildPayload(formSchema(), form, true)
	if p.Columns["gender"] != nil {
		t.Errorf("gender = %+v, want nil on edit", p.Columns["gender"])
	}
}

func TestBuildPayload_OptionalEmptyIsNull(t *testing.T) {
	form := url.Values{
		"name":     {"Kids Run"},
		"event_id": {"1"},
		"date":     {""},
	}

	p, errs := BuildPayload(formSchema(), form, true)
	if len(errs) != 0 {
		t.Fatalf("errors = %v", errs)
	}
	if v, ok := p.Columns["date"]; !ok || v != nil {
		t.Errorf("date = %+v, want present nil column", v)
	}
}

func TestBuildPayload_RequiredMultiRelation(t *testing.T) {
	schema := formSchema()
	for i := range schema.Fields {
		if schema.Fields[i].Name == "categories" {
			schema.Fields[i].Required = true
		}
	}

	form := url.Values{
		"name":     {"Kids Run"},
		"event_id": {"1"},
	}
	_, errs := BuildPayload(schema, form, false)
	if _, ok := fieldErrorFor(errs, "categories"); !ok {
		t.Errorf("expected error for empty required multi-relation, got %v", errs)
	}
}
