// Package taxonomy builds the normalized keys used to match species across datasets.
package taxonomy

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Normalize trims surrounding whitespace and lower-cases s without locale rules.
func Normalize(s string) string {
	// Casers keep state between calls and are not safe for concurrent use
	return cases.Lower(language.Und).String(strings.TrimSpace(s))
}

// SpeciesKey identifies a species by genus and specific epithet, e.g. "turdus migratorius".
func SpeciesKey(genus, species string) string {
	return Normalize(genus) + " " + Normalize(species)
}

// TaxKey identifies a taxon by family, genus and species, e.g. "turdidae turdus migratorius".
func TaxKey(family, genus, species string) string {
	return Normalize(family) + " " + SpeciesKey(genus, species)
}
