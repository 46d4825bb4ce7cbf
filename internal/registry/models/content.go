package models

import "github.com/racedesk/racedesk/internal/registry"

func init() {
	registry.Register(registry.ModelSchema{
		Name:         "posts",
		Singular:     "Post",
		Plural:       "Posts",
		Group:        "Content",
		Icon:         "pencil",
		Description:  "Blog posts for the public site",
		PrimaryField: "title",
		DefaultSort:  registry.Sort{Field: "published_at", Direction: "desc"},
		SearchFields: []string{"title", "slug"},
		PerPage:      25,
		Permissions:  registry.Permissions{Create: true, Read: true, Update: true, Delete: true},
		Fields: []registry.Field{
			{Name: "title", Type: registry.FieldString, Required: true, ShowInList: true, ShowInCreate: true, ShowInEdit: true},
			{Name: "slug", Type: registry.FieldString, Required: true, ShowInList: true, ShowInCreate: true, ShowInEdit: true},
			{Name: "body", Type: registry.FieldText, ShowInCreate: true, ShowInEdit: true},
			{Name: "published", Type: registry.FieldBool, Default: "false", ShowInList: true, ShowInCreate: true, ShowInEdit: true},
			{Name: "published_at", Type: registry.FieldDate, ShowInList: true, ShowInCreate: true, ShowInEdit: true},
			{
				Name: "tags", Type: registry.FieldMultiRelation,
				Relation: &registry.Relation{
					Model: "tags", DisplayField: "name",
					JoinTable: "post_tags", SourceKey: "post_id", TargetKey: "tag_id",
				},
				ShowInList: true, ShowInCreate: true, ShowInEdit: true,
			},
		},
	})

	registry.Register(registry.ModelSchema{
		Name:         "tags",
		Singular:     "Tag",
		Plural:       "Tags",
		Group:        "Content",
		Icon:         "label",
		PrimaryField: "name",
		DefaultSort:  registry.Sort{Field: "name", Direction: "asc"},
		SearchFields: []string{"name"},
		PerPage:      50,
		Permissions:  registry.Permissions{Create: true, Read: true, Update: true, Delete: true},
		Fields: []registry.Field{
			{Name: "name", Type: registry.FieldString, Required: true, ShowInList: true, ShowInCreate: true, ShowInEdit: true},
		},
	})

	registry.Register(registry.ModelSchema{
		Name:         "albums",
		Singular:     "Album",
		Plural:       "Albums",
		Group:        "Content",
		Icon:         "camera",
		Description:  "Photo galleries, usually one per event",
		PrimaryField: "title",
		DefaultSort:  registry.Sort{Field: "title", Direction: "asc"},
		SearchFields: []string{"title"},
		PerPage:      25,
		Permissions:  registry.Permissions{Create: true, Read: true, Update: true, Delete: true},
		Fields: []registry.Field{
			{Name: "title", Type: registry.FieldString, Required: true, ShowInList: true, ShowInCreate: true, ShowInEdit: true},
			{
				Name: "event_id", Label: "Event", Type: registry.FieldRelation,
				Relation:   &registry.Relation{Model: "events", DisplayField: "name", ForeignKey: "event_id"},
				ShowInList: true, ShowInCreate: true, ShowInEdit: true,
			},
			{Name: "description", Type: registry.FieldText, ShowInCreate: true, ShowInEdit: true},
			{Name: "published", Type: registry.FieldBool, Default: "false", ShowInList: true, ShowInCreate: true, ShowInEdit: true},
		},
	})

	registry.Register(registry.ModelSchema{
		Name:         "partners",
		Singular:     "Partner",
		Plural:       "Partners",
		Group:        "Content",
		Icon:         "handshake",
		Description:  "Sponsors and partners shown on the site",
		PrimaryField: "name",
		DefaultSort:  registry.Sort{Field: "name", Direction: "asc"},
		SearchFields: []string{"name"},
		PerPage:      50,
		Permissions:  registry.Permissions{Create: true, Read: true, Update: true, Delete: true},
		Fields: []registry.Field{
			{Name: "name", Type: registry.FieldString, Required: true, ShowInList: true, ShowInCreate: true, ShowInEdit: true},
			{Name: "url", Type: registry.FieldString, ShowInList: true, ShowInCreate: true, ShowInEdit: true},
			{Name: "logo_url", Type: registry.FieldString, ShowInCreate: true, ShowInEdit: true},
			{Name: "active", Type: registry.FieldBool, Default: "true", ShowInList: true, ShowInCreate: true, ShowInEdit: true},
		},
	})
}
