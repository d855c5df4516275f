package place

import (
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/plattline/gencanon/core/document"
)

// SampleCap bounds the number of distinct raw variants kept per place.
const SampleCap = 8

// tally is a partial aggregation over a disjoint slice of entities. Partial
// tallies carry no shared state, so entity slices can be scanned in
// parallel and merged afterwards; the merge is commutative and associative
// for counts, and sample order is fixed by the deterministic merge order.
type tally struct {
	counts  map[string]document.PlaceCounts
	samples map[string][]string
	display map[string]string
}

func newTally() *tally {
	return &tally{
		counts:  make(map[string]document.PlaceCounts),
		samples: make(map[string][]string),
		display: make(map[string]string),
	}
}

// addEvent folds one event into the tally.
func (t *tally) addEvent(group document.EventGroup, ev *document.Event) {
	if ev.PlaceID == "" {
		return
	}
	c := t.counts[ev.PlaceID]
	c.Events++
	if group == document.GroupIndividuals {
		c.IndividualEvents++
	} else {
		c.FamilyEvents++
	}
	t.counts[ev.PlaceID] = c

	if ev.Place != "" {
		t.samples[ev.PlaceID] = appendSample(t.samples[ev.PlaceID], ev.Place)
	}
	if _, ok := t.display[ev.PlaceID]; !ok && ev.StandardPlace != nil {
		t.display[ev.PlaceID] = ev.StandardPlace.Normalized
	}
}

// merge folds src into t. Counts add; samples union up to the cap keeping
// t's entries first; displays keep the first non-empty value.
func (t *tally) merge(src *tally) {
	for id, c := range src.counts {
		cur := t.counts[id]
		cur.Events += c.Events
		cur.IndividualEvents += c.IndividualEvents
		cur.FamilyEvents += c.FamilyEvents
		t.counts[id] = cur
	}
	for id, samples := range src.samples {
		merged := t.samples[id]
		for _, s := range samples {
			merged = appendSample(merged, s)
		}
		t.samples[id] = merged
	}
	for id, display := range src.display {
		if _, ok := t.display[id]; !ok {
			t.display[id] = display
		}
	}
}

// appendSample adds a raw variant if distinct and below the cap.
func appendSample(samples []string, raw string) []string {
	if len(samples) >= SampleCap {
		return samples
	}
	for _, s := range samples {
		if s == raw {
			return samples
		}
	}
	return append(samples, raw)
}

// scanUnit is one entity's event sequence, the unit of parallel work.
type scanUnit struct {
	group  document.EventGroup
	events []*document.Event
}

// scanUnits lists every entity in lexicographic pointer order, individuals
// first. The fixed order keeps the chunk boundaries, and therefore the
// merged sample order, deterministic.
func scanUnits(doc *document.Document) []scanUnit {
	units := make([]scanUnit, 0, len(doc.Individuals)+len(doc.Families))
	for _, ptr := range doc.IndividualPointers() {
		units = append(units, scanUnit{document.GroupIndividuals, doc.Individuals[ptr].Events})
	}
	for _, ptr := range doc.FamilyPointers() {
		units = append(units, scanUnit{document.GroupFamilies, doc.Families[ptr].Events})
	}
	return units
}

// RegistryMetrics reports what the registry builder did.
type RegistryMetrics struct {
	EventsCounted int
	PlacesCreated int
	PlacesUpdated int
}

// BuildRegistry aggregates every placed event into the place registry.
// Counts are a pure function of the event set, so re-running the builder
// against its own output is a no-op: counts recompute to the same values
// and the sample union adds nothing new. Place records are created or
// updated additively, never removed.
func BuildRegistry(doc *document.Document) *RegistryMetrics {
	units := scanUnits(doc)
	merged := scanParallel(units)

	if doc.Places == nil {
		doc.Places = make(map[string]*document.Place)
	}

	m := &RegistryMetrics{}
	ids := make([]string, 0, len(merged.counts))
	for id := range merged.counts {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		counts := merged.counts[id]
		m.EventsCounted += counts.Events
		rec, ok := doc.Places[id]
		if !ok {
			rec = &document.Place{ID: id, Display: merged.display[id]}
			doc.Places[id] = rec
			m.PlacesCreated++
		} else {
			m.PlacesUpdated++
		}
		rec.Counts = counts
		for _, s := range merged.samples[id] {
			rec.Samples = appendSample(rec.Samples, s)
		}
		if rec.Display == "" {
			rec.Display = merged.display[id]
		}
	}
	return m
}

// scanParallel fans the scan units out over the available CPUs. Each worker
// owns a private tally; partials are merged in chunk order so the result is
// identical to a sequential scan.
func scanParallel(units []scanUnit) *tally {
	workers := runtime.GOMAXPROCS(0)
	if workers > len(units) {
		workers = len(units)
	}
	if workers <= 1 {
		t := newTally()
		for _, u := range units {
			for _, ev := range u.events {
				t.addEvent(u.group, ev)
			}
		}
		return t
	}

	partials := make([]*tally, workers)
	chunk := (len(units) + workers - 1) / workers

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk
		if end > len(units) {
			end = len(units)
		}
		if start >= end {
			partials[w] = newTally()
			continue
		}
		w := w
		slice := units[start:end]
		g.Go(func() error {
			t := newTally()
			for _, u := range slice {
				for _, ev := range u.events {
					t.addEvent(u.group, ev)
				}
			}
			partials[w] = t
			return nil
		})
	}
	// Workers never fail; the group is used purely for the join.
	_ = g.Wait()

	merged := newTally()
	for _, p := range partials {
		merged.merge(p)
	}
	return merged
}
