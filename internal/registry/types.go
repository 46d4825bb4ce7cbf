// Package registry holds the declarative catalogue of manageable entities.
// Every admin screen and every generated persistence operation is driven by
// the ModelSchema entries registered here; the package itself has no UI or
// database dependencies.
package registry

// FieldType is the semantic type of a model field. It decides both the form
// control rendered for the field and the SQL type conversion applied to
// submitted values.
type FieldType int

const (
	FieldString FieldType = iota
	FieldText
	FieldNumber
	FieldBool
	FieldDate
	FieldEnum
	FieldRelation
	FieldMultiRelation
)

// Relation describes a link from a field to another registered model.
//
// For FieldRelation the value is stored in ForeignKey on the owning table.
// For FieldMultiRelation the values are stored in JoinTable rows keyed by
// SourceKey (this model's id) and TargetKey (the related model's id).
type Relation struct {
	Model        string // target model name, must exist in the registry
	DisplayField string // column on the target used as option label
	ForeignKey   string // owning-table column (single relation)
	JoinTable    string // link table (multi relation)
	SourceKey    string // link-table column referencing this model
	TargetKey    string // link-table column referencing the target model
}

// Field describes one column of a manageable entity.
type Field struct {
	Name       string // column name and form key
	Label      string // display label; defaults to Name when empty
	Type       FieldType
	Required   bool
	Min        *float64 // numeric lower bound, or minimum string length
	Max        *float64
	Default    string
	EnumValues []string  // valid values for FieldEnum
	Relation   *Relation // set for FieldRelation / FieldMultiRelation

	ShowInList   bool
	ShowInCreate bool
	ShowInEdit   bool
}

// DisplayLabel returns the label to render for the field.
func (f Field) DisplayLabel() string {
	if f.Label != "" {
		return f.Label
	}
	return f.Name
}

// Sort is a default ordering for list screens.
type Sort struct {
	Field     string
	Direction string // "asc" or "desc"
}

// Permissions flags which CRUD operations the admin panel exposes for a
// model. The persistence layer does not enforce these; the web layer does.
type Permissions struct {
	Create bool
	Read   bool
	Update bool
	Delete bool
}

// ModelSchema is the full declarative description of one manageable entity.
type ModelSchema struct {
	Name         string // unique registry key, e.g. "runs"
	Table        string // database table; defaults to Name when empty
	Singular     string
	Plural       string
	Group        string // dashboard grouping, e.g. "Events", "Content"
	Icon         string
	Description  string
	PrimaryField string // field used as the human identifier of a record
	DefaultSort  Sort
	SearchFields []string
	PerPage      int
	Fields       []Field
	Permissions  Permissions
}

// TableName returns the database table backing the model.
func (m ModelSchema) TableName() string {
	if m.Table != "" {
		return m.Table
	}
	return m.Name
}

// Field returns the descriptor for a named field.
func (m ModelSchema) Field(name string) (Field, bool) {
	for _, f := range m.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// ListFields returns the fields shown on the list screen, in declared order.
func (m ModelSchema) ListFields() []Field {
	var out []Field
	for _, f := range m.Fields {
		if f.ShowInList {
			out = append(out, f)
		}
	}
	return out
}

// FormFields returns the fields shown on the create or edit form.
func (m ModelSchema) FormFields(editing bool) []Field {
	var out []Field
	for _, f := range m.Fields {
		if (editing && f.ShowInEdit) || (!editing && f.ShowInCreate) {
			out = append(out, f)
		}
	}
	return out
}

// ColumnFields returns the fields stored as columns on the owning table,
// i.e. everything except multi-relations (which live in link tables).
func (m ModelSchema) ColumnFields() []Field {
	var out []Field
	for _, f := range m.Fields {
		if f.Type != FieldMultiRelation {
			out = append(out, f)
		}
	}
	return out
}

// MultiRelationFields returns the many-to-many fields of the model.
func (m ModelSchema) MultiRelationFields() []Field {
	var out []Field
	for _, f := range m.Fields {
		if f.Type == FieldMultiRelation {
			out = append(out, f)
		}
	}
	return out
}
