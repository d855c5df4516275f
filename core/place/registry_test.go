package place

import (
	"fmt"
	"testing"

	"github.com/plattline/gencanon/core/document"
)

func registryDoc() *document.Document {
	doc := document.New()
	doc.Individuals["@I1@"] = &document.Individual{
		Pointer: "@I1@",
		Events: []*document.Event{
			{Tag: "BIRT", Place: "Columbus, OH, USA"},
			{Tag: "DEAT", Place: "Columbus, Ohio, United States"},
		},
	}
	doc.Families["@F1@"] = &document.Family{
		Pointer: "@F1@",
		Events: []*document.Event{
			{Tag: "MARR", Place: "Columbus, Ohio"},
		},
	}
	Standardize(doc)
	return doc
}

func TestBuildRegistryAggregates(t *testing.T) {
	doc := registryDoc()
	m := BuildRegistry(doc)

	// Both individual events normalize to the same place.
	id := "columbus, ohio, united states"
	rec, ok := doc.Places[id]
	if !ok {
		t.Fatalf("place %q not in registry (created %d)", id, m.PlacesCreated)
	}
	if rec.Counts.Events != 2 {
		t.Errorf("counts.events = %d, want 2", rec.Counts.Events)
	}
	if rec.Counts.IndividualEvents != 2 || rec.Counts.FamilyEvents != 0 {
		t.Errorf("counts split = %+v", rec.Counts)
	}
	if len(rec.Samples) != 2 {
		t.Errorf("samples = %v, want the two raw variants", rec.Samples)
	}
	if rec.Display != "Columbus, Ohio, United States" {
		t.Errorf("display = %q", rec.Display)
	}

	// The family event normalizes differently and gets its own record.
	famID := "columbus, ohio"
	famRec, ok := doc.Places[famID]
	if !ok {
		t.Fatalf("place %q not in registry", famID)
	}
	if famRec.Counts.FamilyEvents != 1 {
		t.Errorf("family counts = %+v", famRec.Counts)
	}
}

func TestBuildRegistryIdempotent(t *testing.T) {
	doc := registryDoc()
	BuildRegistry(doc)
	first := *doc.Places["columbus, ohio, united states"]
	firstSamples := len(first.Samples)

	m := BuildRegistry(doc)
	if m.PlacesCreated != 0 {
		t.Errorf("rerun created %d places", m.PlacesCreated)
	}
	rec := doc.Places["columbus, ohio, united states"]
	if rec.Counts != first.Counts {
		t.Errorf("counts changed on rerun: %+v vs %+v", rec.Counts, first.Counts)
	}
	if len(rec.Samples) != firstSamples {
		t.Error("samples grew on rerun")
	}
}

func TestBuildRegistrySampleCap(t *testing.T) {
	doc := document.New()
	events := make([]*document.Event, 0, SampleCap+4)
	for i := 0; i < SampleCap+4; i++ {
		// Distinct raw spellings that all normalize to the same place.
		events = append(events, &document.Event{
			Tag:   "RESI",
			Place: fmt.Sprintf("Boston%s, Massachusetts", commas(i)),
		})
	}
	doc.Individuals["@I1@"] = &document.Individual{Pointer: "@I1@", Events: events}
	Standardize(doc)

	// The comma padding changes normalization, so pin one place id for all.
	for _, ev := range doc.Individuals["@I1@"].Events {
		ev.PlaceID = "boston, massachusetts"
	}
	BuildRegistry(doc)

	rec := doc.Places["boston, massachusetts"]
	if len(rec.Samples) > SampleCap {
		t.Errorf("samples = %d, cap is %d", len(rec.Samples), SampleCap)
	}
}

// commas returns n trailing commas so each raw variant is distinct while
// normalizing to the same components.
func commas(n int) string {
	s := ""
	for i := 0; i < n; i++ {
		s += ","
	}
	return s
}

func TestBuildRegistryDeterministicSamples(t *testing.T) {
	run := func() []string {
		doc := registryDoc()
		BuildRegistry(doc)
		return doc.Places["columbus, ohio, united states"].Samples
	}
	a := run()
	b := run()
	if len(a) != len(b) {
		t.Fatalf("sample counts differ: %v vs %v", a, b)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("sample order differs at %d: %q vs %q", i, a[i], b[i])
		}
	}
}
