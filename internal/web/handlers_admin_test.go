package web

import (
	"net/http/httptest"
	"testing"

	"github.com/racedesk/racedesk/internal/registry"
)

func adminTestSchema() registry.ModelSchema {
	return registry.ModelSchema{
		Name:    "registrations",
		PerPage: 25,
		Fields: []registry.Field{
			{Name: "first_name", Type: registry.FieldString},
			{Name: "paid", Type: registry.FieldBool},
			{
				Name: "run_id", Type: registry.FieldRelation,
				Relation: &registry.Relation{Model: "runs", DisplayField: "name", ForeignKey: "run_id"},
			},
			{
				Name: "category_id", Type: registry.FieldRelation,
				Relation: &registry.Relation{Model: "categories", DisplayField: "name", ForeignKey: "category_id"},
			},
		},
	}
}

func TestListParams(t *testing.T) {
	r := httptest.NewRequest("GET", "/admin/registrations?page=2&q=smith&sort=first_name&dir=desc", nil)

	params := listParams(r, adminTestSchema())
	if params.Page != 2 || params.PerPage != 25 || params.Search != "smith" {
		t.Errorf("params = %+v, want page 2 per-page 25 search smith", params)
	}
	if params.Sort.Field != "first_name" || params.Sort.Direction != "desc" {
		t.Errorf("sort = %+v, want first_name desc", params.Sort)
	}
	if params.Filters != nil {
		t.Errorf("Filters = %v, want none", params.Filters)
	}
}

func TestListParams_RelationFilters(t *testing.T) {
	r := httptest.NewRequest("GET", "/admin/registrations?run_id=7&category_id=oops&paid=4", nil)

	params := listParams(r, adminTestSchema())
	if len(params.Filters) != 1 {
		t.Fatalf("Filters = %v, want only the parsable relation param", params.Filters)
	}
	if params.Filters["run_id"] != 7 {
		t.Errorf("Filters[run_id] = %d, want 7", params.Filters["run_id"])
	}
}
