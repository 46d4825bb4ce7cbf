package models

import "github.com/racedesk/racedesk/internal/registry"

func init() {
	registry.Register(registry.ModelSchema{
		Name:         "events",
		Singular:     "Event",
		Plural:       "Events",
		Group:        "Events",
		Icon:         "calendar",
		Description:  "Race weekends and other organizer events",
		PrimaryField: "name",
		DefaultSort:  registry.Sort{Field: "date", Direction: "desc"},
		SearchFields: []string{"name", "location"},
		PerPage:      25,
		Permissions:  registry.Permissions{Create: true, Read: true, Update: true, Delete: true},
		Fields: []registry.Field{
			{Name: "name", Type: registry.FieldString, Required: true, ShowInList: true, ShowInCreate: true, ShowInEdit: true},
			{Name: "date", Type: registry.FieldDate, Required: true, ShowInList: true, ShowInCreate: true, ShowInEdit: true},
			{Name: "location", Type: registry.FieldString, ShowInList: true, ShowInCreate: true, ShowInEdit: true},
			{Name: "description", Type: registry.FieldText, ShowInCreate: true, ShowInEdit: true},
			{Name: "published", Type: registry.FieldBool, Default: "false", ShowInList: true, ShowInCreate: true, ShowInEdit: true},
		},
	})

	registry.Register(registry.ModelSchema{
		Name:         "runs",
		Singular:     "Run",
		Plural:       "Runs",
		Group:        "Events",
		Icon:         "flag",
		Description:  "Individual timed races within an event",
		PrimaryField: "name",
		DefaultSort:  registry.Sort{Field: "name", Direction: "asc"},
		SearchFields: []string{"name"},
		PerPage:      25,
		Permissions:  registry.Permissions{Create: true, Read: true, Update: true, Delete: true},
		Fields: []registry.Field{
			{Name: "name", Type: registry.FieldString, Required: true, ShowInList: true, ShowInCreate: true, ShowInEdit: true},
			{
				Name: "event_id", Label: "Event", Type: registry.FieldRelation, Required: true,
				Relation:   &registry.Relation{Model: "events", DisplayField: "name", ForeignKey: "event_id"},
				ShowInList: true, ShowInCreate: true, ShowInEdit: true,
			},
			{Name: "distance_km", Label: "Distance (km)", Type: registry.FieldNumber, Min: bound(0), ShowInList: true, ShowInCreate: true, ShowInEdit: true},
			{Name: "start_time", Label: "Start", Type: registry.FieldString, ShowInCreate: true, ShowInEdit: true},
			{
				Name: "categories", Type: registry.FieldMultiRelation,
				Relation: &registry.Relation{
					Model: "categories", DisplayField: "name",
					JoinTable: "run_categories", SourceKey: "run_id", TargetKey: "category_id",
				},
				ShowInList: true, ShowInCreate: true, ShowInEdit: true,
			},
		},
	})

	registry.Register(registry.ModelSchema{
		Name:         "categories",
		Singular:     "Category",
		Plural:       "Categories",
		Group:        "Events",
		Icon:         "tag",
		Description:  "Age and gender classes runners compete in",
		PrimaryField: "name",
		DefaultSort:  registry.Sort{Field: "name", Direction: "asc"},
		SearchFields: []string{"name"},
		PerPage:      50,
		Permissions:  registry.Permissions{Create: true, Read: true, Update: true, Delete: true},
		Fields: []registry.Field{
			{Name: "name", Type: registry.FieldString, Required: true, ShowInList: true, ShowInCreate: true, ShowInEdit: true},
			{Name: "min_age", Type: registry.FieldNumber, Min: bound(0), Max: bound(120), ShowInList: true, ShowInCreate: true, ShowInEdit: true},
			{Name: "max_age", Type: registry.FieldNumber, Min: bound(0), Max: bound(120), ShowInList: true, ShowInCreate: true, ShowInEdit: true},
			{Name: "gender", Type: registry.FieldEnum, EnumValues: []string{"any", "women", "men"}, Default: "any", ShowInList: true, ShowInCreate: true, ShowInEdit: true},
		},
	})
}
