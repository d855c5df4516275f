// Package place implements the place-semantics stages of the
// canonicalization pipeline: standardization of raw place text, the
// deduplicated place registry, the administrative hierarchy, and
// temporal-jurisdictional place versioning.
package place

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/plattline/gencanon/core/document"
	"github.com/plattline/gencanon/core/identity"
)

// countryVariants maps common country abbreviations to canonical names.
var countryVariants = map[string]string{
	"usa":                      "United States",
	"u.s.a":                    "United States",
	"u.s.":                     "United States",
	"us":                       "United States",
	"united states of america": "United States",
	"uk":                       "United Kingdom",
	"eng":                      "England",
}

// stateVariants maps common state abbreviations to canonical names.
var stateVariants = map[string]string{
	"ca":    "California",
	"calif": "California",
	"ny":    "New York",
	"tx":    "Texas",
	"fl":    "Florida",
	"oh":    "Ohio",
}

// foldCaser lower-cases place components for variant lookup without
// assuming any particular locale.
var foldCaser = cases.Lower(language.Und)

// NormalizeText returns the canonical display form of raw place text:
// Unicode NFC, collapsed whitespace, comma-separated components with
// well-known abbreviations expanded. The empty string means the input
// carried no usable place text.
func NormalizeText(raw string) string {
	s := norm.NFC.String(raw)
	parts := strings.Split(s, ",")
	components := make([]string, 0, len(parts))
	for _, part := range parts {
		component := strings.Join(strings.Fields(part), " ")
		if component == "" {
			continue
		}
		components = append(components, normalizeComponent(component))
	}
	return strings.Join(components, ", ")
}

// normalizeComponent expands a single administrative component when it is a
// known country or state variant, otherwise keeps it verbatim.
func normalizeComponent(component string) string {
	key := foldCaser.String(component)
	if canonical, ok := countryVariants[key]; ok {
		return canonical
	}
	if canonical, ok := stateVariants[key]; ok {
		return canonical
	}
	return component
}

// StandardizeMetrics reports what the standardizer did.
type StandardizeMetrics struct {
	EventsSeen      int
	EventsWithPlace int
	EventsSkipped   int
}

// Standardize writes standard_place and place_id onto every event that
// carries raw place text. The raw text itself is preserved verbatim for
// provenance; events without place text are left without a place reference.
// A place_id already present is never mutated, which makes the stage
// idempotent and keeps the id stable for all later stages.
func Standardize(doc *document.Document) *StandardizeMetrics {
	m := &StandardizeMetrics{}
	doc.WalkEvents(func(_ document.EventGroup, _ string, ev *document.Event) {
		m.EventsSeen++
		if strings.TrimSpace(ev.Place) == "" {
			m.EventsSkipped++
			return
		}
		normalized := NormalizeText(ev.Place)
		placeID, ok := identity.PlaceID(normalized)
		if !ok {
			m.EventsSkipped++
			return
		}
		if ev.StandardPlace == nil {
			ev.StandardPlace = &document.StandardPlace{
				Raw:        ev.Place,
				Normalized: normalized,
				PlaceID:    placeID,
			}
		}
		if ev.PlaceID == "" {
			ev.PlaceID = placeID
		}
		m.EventsWithPlace++
	})
	return m
}
