package registry

import (
	"fmt"
	"sort"
	"sync"
)

var (
	models   = make(map[string]ModelSchema)
	modelsMu sync.RWMutex
	frozen   bool
)

// Register adds a model schema to the registry.
// Panics if a model with the same name is already registered or if the
// registry has been frozen. Registration happens from package init in
// registry/models; after startup the registry is read-only.
func Register(m ModelSchema) {
	modelsMu.Lock()
	defer modelsMu.Unlock()

	if frozen {
		panic(fmt.Sprintf("registry frozen, cannot register model: %s", m.Name))
	}
	if m.Name == "" {
		panic("model name is required")
	}
	if _, exists := models[m.Name]; exists {
		panic(fmt.Sprintf("model already registered: %s", m.Name))
	}
	if m.PerPage <= 0 {
		m.PerPage = 25
	}
	if m.DefaultSort.Direction == "" {
		m.DefaultSort.Direction = "asc"
	}

	models[m.Name] = m
}

// Get returns a model schema by name.
// Returns false if not found; callers render a graceful empty state.
func Get(name string) (ModelSchema, bool) {
	modelsMu.RLock()
	defer modelsMu.RUnlock()

	m, ok := models[name]
	return m, ok
}

// All returns all registered model schemas.
// Sorted by group then by name for consistent ordering.
func All() []ModelSchema {
	modelsMu.RLock()
	defer modelsMu.RUnlock()

	result := make([]ModelSchema, 0, len(models))
	for _, m := range models {
		result = append(result, m)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Group != result[j].Group {
			return result[i].Group < result[j].Group
		}
		return result[i].Name < result[j].Name
	})

	return result
}

// Groups returns all unique group names, sorted alphabetically.
func Groups() []string {
	modelsMu.RLock()
	defer modelsMu.RUnlock()

	seen := make(map[string]bool)
	for _, m := range models {
		seen[m.Group] = true
	}

	groups := make([]string, 0, len(seen))
	for g := range seen {
		groups = append(groups, g)
	}

	sort.Strings(groups)
	return groups
}

// ByGroup returns all model schemas in a group, sorted by name.
func ByGroup(group string) []ModelSchema {
	modelsMu.RLock()
	defer modelsMu.RUnlock()

	var result []ModelSchema
	for _, m := range models {
		if m.Group == group {
			result = append(result, m)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})

	return result
}

// Count returns the number of registered models.
func Count() int {
	modelsMu.RLock()
	defer modelsMu.RUnlock()
	return len(models)
}

// Freeze validates cross-references and seals the registry against further
// registration. Call once from main after all model packages have loaded.
func Freeze() error {
	modelsMu.Lock()
	defer modelsMu.Unlock()

	for name, m := range models {
		if len(m.ListFields()) == 0 {
			return fmt.Errorf("model %s: no field has ShowInList set", name)
		}
		if m.PrimaryField != "" {
			if _, ok := m.Field(m.PrimaryField); !ok {
				return fmt.Errorf("model %s: primary field %q not declared", name, m.PrimaryField)
			}
		}
		if m.DefaultSort.Field != "" {
			if _, ok := m.Field(m.DefaultSort.Field); !ok {
				return fmt.Errorf("model %s: default sort field %q not declared", name, m.DefaultSort.Field)
			}
		}
		for _, sf := range m.SearchFields {
			if _, ok := m.Field(sf); !ok {
				return fmt.Errorf("model %s: search field %q not declared", name, sf)
			}
		}
		for _, f := range m.Fields {
			if f.Type == FieldRelation || f.Type == FieldMultiRelation {
				if f.Relation == nil {
					return fmt.Errorf("model %s: field %s has relation type but no relation", name, f.Name)
				}
				if _, ok := models[f.Relation.Model]; !ok {
					return fmt.Errorf("model %s: field %s references unknown model %q", name, f.Name, f.Relation.Model)
				}
			}
		}
	}

	frozen = true
	return nil
}

// reset clears the registry and unfreezes it. Test helper only.
func reset() {
	modelsMu.Lock()
	defer modelsMu.Unlock()
	models = make(map[string]ModelSchema)
	frozen = false
}
