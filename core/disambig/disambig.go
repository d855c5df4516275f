// Package disambig groups duplicate-candidate events within a record,
// scores each candidate's evidential quality, and marks a single primary
// interpretation per group. All output is additive: every event keeps its
// place in the sequence and gains a disambiguation block beside it.
package disambig

import (
	"sort"
	"strings"

	"github.com/plattline/gencanon/core/document"
)

// groupSep joins tag and subtype into a grouping key without colliding with
// either value's own characters.
const groupSep = "\x1f"

// Similarity component weights. An aggregate at or above the conflict
// threshold means the group plausibly records one real occurrence twice.
const (
	weightDate        = 0.5
	weightPlace       = 0.3
	weightSources     = 0.2
	conflictThreshold = 0.5
)

// Metrics reports what the disambiguator did.
type Metrics struct {
	EventsScored  int
	Groups        int
	MultiGroups   int
	Ties          int
	Conflicts     int
	MalformedSkip int
}

// Apply disambiguates every record's event sequence in place. Scores and
// primary flags are pure functions of event content, so re-running produces
// the identical blocks.
func Apply(doc *document.Document) *Metrics {
	m := &Metrics{}
	for _, ptr := range doc.IndividualPointers() {
		applyRecord(doc.Individuals[ptr].Events, m)
	}
	for _, ptr := range doc.FamilyPointers() {
		applyRecord(doc.Families[ptr].Events, m)
	}
	return m
}

// applyRecord groups and scores one record's events.
func applyRecord(events []*document.Event, m *Metrics) {
	groups := make(map[string][]*document.Event)
	var order []string
	for _, ev := range events {
		if ev.Tag == "" {
			ev.AddDiagnostic(document.Diagnostic{
				Kind:    "malformed_event",
				Field:   "tag",
				Message: "event carries no tag and cannot be grouped",
			})
			m.MalformedSkip++
			continue
		}
		key := ev.Tag + groupSep + ev.Subtype
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], ev)
	}

	for _, key := range order {
		group := groups[key]
		m.Groups++
		if len(group) > 1 {
			m.MultiGroups++
		}
		scoreGroup(key, group, m)
	}
}

// scoreGroup writes a disambiguation block onto every group member and
// elects the primary.
func scoreGroup(key string, group []*document.Event, m *Metrics) {
	display := strings.ReplaceAll(key, groupSep, "/")
	display = strings.TrimSuffix(display, "/")

	for _, ev := range group {
		ev.Disambiguation = &document.Disambiguation{
			Group:     display,
			GroupSize: len(group),
			Score:     scoreEvent(ev),
		}
		m.EventsScored++
	}

	if len(group) > 1 {
		for i, a := range group {
			best := 0.0
			for j, b := range group {
				if i == j {
					continue
				}
				if s := similarity(a, b); s > best {
					best = s
				}
			}
			a.Disambiguation.Similarity = best
			if best >= conflictThreshold {
				a.Disambiguation.Conflict = true
			}
		}
	}

	ranked := make([]*document.Event, len(group))
	copy(ranked, group)
	sort.SliceStable(ranked, func(i, j int) bool {
		return Less(ranked[i], ranked[j])
	})

	primary := ranked[0]
	primary.Disambiguation.Primary = true
	if len(ranked) > 1 && ranked[1].Disambiguation.Score == primary.Disambiguation.Score {
		primary.Disambiguation.Tie = true
		m.Ties++
	}
	for _, ev := range group {
		if ev.Disambiguation.Conflict {
			m.Conflicts++
			break
		}
	}
}

// Less is the total order used to elect a group's primary: higher score
// first, then lower source line, then lexicographic event uuid. The uuid
// tiebreak makes the election deterministic even for events with equal
// evidence on the same line.
func Less(a, b *document.Event) bool {
	if a.Disambiguation.Score != b.Disambiguation.Score {
		return a.Disambiguation.Score > b.Disambiguation.Score
	}
	if a.Lineno != b.Lineno {
		return a.Lineno < b.Lineno
	}
	return a.UUID < b.UUID
}

// fuzzyModifiers are date qualifiers that reduce evidential confidence.
var fuzzyModifiers = map[string]bool{
	"ABT": true, "ABOUT": true, "EST": true, "CAL": true, "CALC": true,
}

// scoreEvent computes the heuristic evidence score, clamped to 0..100.
// Dates dominate, places and sources follow, notes count least.
func scoreEvent(ev *document.Event) int {
	score := 0
	if ev.Date != nil && ev.Date.Raw != "" {
		score += 50
		if fuzzyModifiers[ev.Date.Modifier] {
			score -= 10
		}
		switch ev.Date.Precision {
		case 3:
			score += 10
		case 2:
			score += 5
		}
	}
	if ev.PlaceID != "" {
		score += 30
	} else if ev.Place != "" {
		score += 10
	}
	if len(ev.Sources) >= 1 {
		score += 5
	}
	if len(ev.Sources) >= 3 {
		score += 5
	}
	if len(ev.Notes) > 0 {
		score += 3
	}
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

// similarity estimates how likely two events record the same occurrence.
func similarity(a, b *document.Event) float64 {
	s := 0.0
	if dateKey(a) != "" && dateKey(a) == dateKey(b) {
		s += weightDate
	}
	if a.PlaceID != "" && a.PlaceID == b.PlaceID {
		s += weightPlace
	}
	s += weightSources * jaccard(a.Sources, b.Sources)
	return s
}

// dateKey compares events by their normalized date when present, falling
// back to the raw text.
func dateKey(ev *document.Event) string {
	if ev.Date == nil {
		return ""
	}
	if ev.Date.Normalized != "" {
		return ev.Date.Normalized
	}
	return ev.Date.Raw
}

// jaccard is the overlap ratio of two source-pointer sets.
func jaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]bool, len(a))
	for _, s := range a {
		set[s] = true
	}
	inter := 0
	union := len(set)
	seen := make(map[string]bool, len(b))
	for _, s := range b {
		if seen[s] {
			continue
		}
		seen[s] = true
		if set[s] {
			inter++
		} else {
			union++
		}
	}
	return float64(inter) / float64(union)
}
