package registry

import (
	"strings"
	"testing"
)

func validSchema(name, group string) ModelSchema {
	return ModelSchema{
		Name:     name,
		Singular: name,
		Plural:   name + "s",
		Group:    group,
		Fields: []Field{
			{Name: "name", Type: FieldString, Required: true, ShowInList: true, ShowInCreate: true, ShowInEdit: true},
		},
		Permissions: Permissions{Create: true, Read: true, Update: true, Delete: true},
	}
}

func TestRegister_Defaults(t *testing.T) {
	reset()
	Register(validSchema("widgets", "Stuff"))

	m, ok := Get("widgets")
	if !ok {
		t.Fatal("Get() did not find registered model")
	}
	if m.PerPage != 25 {
		t.Errorf("PerPage = %d, want 25", m.PerPage)
	}
	if m.DefaultSort.Direction != "asc" {
		t.Errorf("DefaultSort.Direction = %q, want asc", m.DefaultSort.Direction)
	}
}

func TestRegister_DuplicatePanics(t *testing.T) {
	reset()
	Register(validSchema("widgets", "Stuff"))

	defer func() {
		if recover() == nil {
			t.Fatal("duplicate Register() did not panic")
		}
	}()
	Register(validSchema("widgets", "Stuff"))
}

func TestRegister_EmptyNamePanics(t *testing.T) {
	reset()
	defer func() {
		if recover() == nil {
			t.Fatal("Register() with empty name did not panic")
		}
	}()
	Register(ModelSchema{})
}

func TestRegister_AfterFreezePanics(t *testing.T) {
	reset()
	Register(validSchema("widgets", "Stuff"))
	if err := Freeze(); err != nil {
		t.Fatalf("Freeze() error = %v", err)
	}

	defer func() {
		if recover() == nil {
			t.Fatal("Register() after Freeze() did not panic")
		}
	}()
	Register(validSchema("gadgets", "Stuff"))
}

func TestAll_SortedByGroupThenName(t *testing.T) {
	reset()
	Register(validSchema("zebras", "B"))
	Register(validSchema("apples", "B"))
	Register(validSchema("mangos", "A"))

	all := All()
	got := make([]string, len(all))
	for i, m := range all {
		got[i] = m.Name
	}
	want := []string{"mangos", "apples", "zebras"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("All() order = %v, want %v", got, want)
		}
	}
}

func TestGroups(t *testing.T) {
	reset()
	Register(validSchema("a", "Events"))
	Register(validSchema("b", "Content"))
	Register(validSchema("c", "Events"))

	groups := Groups()
	if len(groups) != 2 || groups[0] != "Content" || groups[1] != "Events" {
		t.Errorf("Groups() = %v, want [Content Events]", groups)
	}
	if n := len(ByGroup("Events")); n != 2 {
		t.Errorf("ByGroup(Events) returned %d models, want 2", n)
	}
}

func TestFreeze_UnknownRelationTarget(t *testing.T) {
	reset()
	m := validSchema("widgets", "Stuff")
	m.Fields = append(m.Fields, Field{
		Name: "owner_id", Type: FieldRelation,
		Relation:     &Relation{Model: "missing", DisplayField: "name", ForeignKey: "owner_id"},
		ShowInCreate: true, ShowInEdit: true,
	})
	Register(m)

	err := Freeze()
	if err == nil {
		t.Fatal("Freeze() accepted a relation to an unknown model")
	}
	if !strings.Contains(err.Error(), "missing") {
		t.Errorf("error %q does not name the missing model", err)
	}
}

func TestFreeze_UndeclaredSearchField(t *testing.T) {
	reset()
	m := validSchema("widgets", "Stuff")
	m.SearchFields = []string{"nope"}
	Register(m)

	if err := Freeze(); err == nil {
		t.Fatal("Freeze() accepted an undeclared search field")
	}
}

func TestFreeze_NoListFields(t *testing.T) {
	reset()
	m := validSchema("widgets", "Stuff")
	m.Fields[0].ShowInList = false
	Register(m)

	if err := Freeze(); err == nil {
		t.Fatal("Freeze() accepted a model with no list fields")
	}
}
