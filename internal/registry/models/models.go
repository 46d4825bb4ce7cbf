// Package models declares every manageable entity of the site as a
// registry.ModelSchema. Importing this package (blank import from main)
// populates the registry; nothing here executes at request time.
package models

// bound returns a pointer for Min/Max field constraints.
func bound(v float64) *float64 {
	return &v
}
