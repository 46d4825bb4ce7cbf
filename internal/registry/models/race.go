package models

import "github.com/racedesk/racedesk/internal/registry"

func init() {
	registry.Register(registry.ModelSchema{
		Name:         "registrations",
		Singular:     "Registration",
		Plural:       "Registrations",
		Group:        "Race Day",
		Icon:         "clipboard",
		Description:  "Participant entries per run",
		PrimaryField: "last_name",
		DefaultSort:  registry.Sort{Field: "bib_number", Direction: "asc"},
		SearchFields: []string{"first_name", "last_name", "email"},
		PerPage:      50,
		Permissions:  registry.Permissions{Create: true, Read: true, Update: true, Delete: true},
		Fields: []registry.Field{
			{
				Name: "run_id", Label: "Run", Type: registry.FieldRelation, Required: true,
				Relation:   &registry.Relation{Model: "runs", DisplayField: "name", ForeignKey: "run_id"},
				ShowInList: true, ShowInCreate: true, ShowInEdit: true,
			},
			{
				Name: "category_id", Label: "Category", Type: registry.FieldRelation,
				Relation:   &registry.Relation{Model: "categories", DisplayField: "name", ForeignKey: "category_id"},
				ShowInList: true, ShowInCreate: true, ShowInEdit: true,
			},
			{Name: "bib_number", Label: "Bib", Type: registry.FieldNumber, Min: bound(1), ShowInList: true, ShowInCreate: true, ShowInEdit: true},
			{Name: "first_name", Type: registry.FieldString, Required: true, ShowInList: true, ShowInCreate: true, ShowInEdit: true},
			{Name: "last_name", Type: registry.FieldString, Required: true, ShowInList: true, ShowInCreate: true, ShowInEdit: true},
			{Name: "email", Type: registry.FieldString, ShowInCreate: true, ShowInEdit: true},
			{Name: "phone", Type: registry.FieldString, ShowInCreate: true, ShowInEdit: true},
			{Name: "paid", Type: registry.FieldBool, Default: "false", ShowInList: true, ShowInCreate: true, ShowInEdit: true},
		},
	})

	// Results are written by the import pipeline; manual edits are allowed
	// for corrections, after which placements should be recalculated.
	registry.Register(registry.ModelSchema{
		Name:         "results",
		Singular:     "Result",
		Plural:       "Results",
		Group:        "Race Day",
		Icon:         "trophy",
		Description:  "Finish times and placements per registration",
		PrimaryField: "finish_time",
		DefaultSort:  registry.Sort{Field: "overall_place", Direction: "asc"},
		SearchFields: []string{"status"},
		PerPage:      100,
		Permissions:  registry.Permissions{Create: false, Read: true, Update: true, Delete: true},
		Fields: []registry.Field{
			{
				Name: "run_id", Label: "Run", Type: registry.FieldRelation, Required: true,
				Relation:   &registry.Relation{Model: "runs", DisplayField: "name", ForeignKey: "run_id"},
				ShowInList: true, ShowInEdit: true,
			},
			{
				Name: "registration_id", Label: "Registration", Type: registry.FieldRelation, Required: true,
				Relation:   &registry.Relation{Model: "registrations", DisplayField: "last_name", ForeignKey: "registration_id"},
				ShowInList: true, ShowInEdit: true,
			},
			{Name: "finish_time", Type: registry.FieldString, ShowInList: true, ShowInEdit: true},
			{Name: "status", Type: registry.FieldEnum, EnumValues: []string{"finished", "dnf", "dns", "dsq"}, Default: "finished", ShowInList: true, ShowInEdit: true},
			{Name: "overall_place", Type: registry.FieldNumber, ShowInList: true},
			{Name: "category_place", Type: registry.FieldNumber, ShowInList: true},
		},
	})
}
