package disambig

import (
	"testing"

	"github.com/plattline/gencanon/core/document"
)

func docWithEvents(events ...*document.Event) *document.Document {
	doc := document.New()
	doc.Individuals["@I1@"] = &document.Individual{Pointer: "@I1@", Events: events}
	return doc
}

func TestApplyGroupsByTagAndSubtype(t *testing.T) {
	doc := docWithEvents(
		&document.Event{UUID: "e1", Tag: "BIRT"},
		&document.Event{UUID: "e2", Tag: "BIRT"},
		&document.Event{UUID: "e3", Tag: "EVEN", Subtype: "census"},
		&document.Event{UUID: "e4", Tag: "EVEN", Subtype: "immigration"},
	)
	m := Apply(doc)

	if m.Groups != 3 {
		t.Errorf("Groups = %d, want 3", m.Groups)
	}
	if m.MultiGroups != 1 {
		t.Errorf("MultiGroups = %d, want 1", m.MultiGroups)
	}
	events := doc.Individuals["@I1@"].Events
	if events[0].Disambiguation.GroupSize != 2 {
		t.Errorf("birth group size = %d, want 2", events[0].Disambiguation.GroupSize)
	}
	if events[2].Disambiguation.Group == events[3].Disambiguation.Group {
		t.Error("different subtypes collapsed into one group")
	}
}

func TestApplyScoresEvidence(t *testing.T) {
	rich := &document.Event{
		UUID:    "e1",
		Tag:     "BIRT",
		Date:    &document.DateValue{Raw: "14 JUL 1789", Normalized: "1789-07-14", Precision: 3},
		PlaceID: "paris, france",
		Sources: []string{"@S1@"},
		Notes:   []string{"registered at the mairie"},
	}
	poor := &document.Event{UUID: "e2", Tag: "BIRT"}
	doc := docWithEvents(rich, poor)
	Apply(doc)

	// 50 date + 10 day precision + 30 place id + 5 source + 3 note.
	if got := rich.Disambiguation.Score; got != 98 {
		t.Errorf("rich score = %d, want 98", got)
	}
	if got := poor.Disambiguation.Score; got != 0 {
		t.Errorf("poor score = %d, want 0", got)
	}
	if !rich.Disambiguation.Primary {
		t.Error("higher-scored event not elected primary")
	}
	if poor.Disambiguation.Primary {
		t.Error("lower-scored event marked primary")
	}
}

func TestApplyFuzzyModifierPenalty(t *testing.T) {
	ev := &document.Event{
		UUID: "e1",
		Tag:  "BIRT",
		Date: &document.DateValue{Raw: "ABT 1850", Normalized: "1850", Precision: 1, Modifier: "ABT"},
	}
	doc := docWithEvents(ev)
	Apply(doc)
	// 50 date - 10 fuzzy.
	if got := ev.Disambiguation.Score; got != 40 {
		t.Errorf("score = %d, want 40", got)
	}
}

func TestApplyTieBreak(t *testing.T) {
	a := &document.Event{UUID: "aaa", Tag: "DEAT", Lineno: 30}
	b := &document.Event{UUID: "bbb", Tag: "DEAT", Lineno: 20}
	doc := docWithEvents(a, b)
	m := Apply(doc)

	if m.Ties != 1 {
		t.Errorf("Ties = %d, want 1", m.Ties)
	}
	if !b.Disambiguation.Primary {
		t.Error("lower lineno should win the tie")
	}
	if a.Disambiguation.Primary {
		t.Error("both events marked primary")
	}
	if !b.Disambiguation.Tie {
		t.Error("tied primary not flagged")
	}
}

func TestApplyUUIDTieBreak(t *testing.T) {
	a := &document.Event{UUID: "zzz", Tag: "DEAT", Lineno: 10}
	b := &document.Event{UUID: "aaa", Tag: "DEAT", Lineno: 10}
	doc := docWithEvents(a, b)
	Apply(doc)
	if !b.Disambiguation.Primary {
		t.Error("lexicographically smaller uuid should win the final tiebreak")
	}
}

func TestApplyConflictDetection(t *testing.T) {
	a := &document.Event{
		UUID:    "e1",
		Tag:     "BIRT",
		Date:    &document.DateValue{Raw: "1789", Normalized: "1789", Precision: 1},
		PlaceID: "paris, france",
	}
	b := &document.Event{
		UUID:    "e2",
		Tag:     "BIRT",
		Date:    &document.DateValue{Raw: "1789", Normalized: "1789", Precision: 1},
		PlaceID: "paris, france",
	}
	doc := docWithEvents(a, b)
	m := Apply(doc)

	// Equal dates and place ids give similarity 0.8, above the threshold.
	if !a.Disambiguation.Conflict || !b.Disambiguation.Conflict {
		t.Error("duplicate-looking events not flagged as conflict")
	}
	if m.Conflicts != 1 {
		t.Errorf("Conflicts = %d, want 1", m.Conflicts)
	}
}

func TestApplyNoConflictForDistinctEvents(t *testing.T) {
	a := &document.Event{
		UUID: "e1", Tag: "RESI",
		Date:    &document.DateValue{Raw: "1900", Normalized: "1900"},
		PlaceID: "boston, massachusetts",
	}
	b := &document.Event{
		UUID: "e2", Tag: "RESI",
		Date:    &document.DateValue{Raw: "1910", Normalized: "1910"},
		PlaceID: "chicago, illinois",
	}
	doc := docWithEvents(a, b)
	Apply(doc)
	if a.Disambiguation.Conflict || b.Disambiguation.Conflict {
		t.Error("distinct events flagged as conflict")
	}
}

func TestApplyMalformedEvent(t *testing.T) {
	bad := &document.Event{UUID: "e1"}
	doc := docWithEvents(bad)
	m := Apply(doc)

	if m.MalformedSkip != 1 {
		t.Errorf("MalformedSkip = %d, want 1", m.MalformedSkip)
	}
	if bad.Disambiguation != nil {
		t.Error("malformed event was scored")
	}
	found := false
	for _, d := range bad.Diagnostics {
		if d.Kind == "malformed_event" {
			found = true
		}
	}
	if !found {
		t.Error("missing malformed_event diagnostic")
	}
}

func TestApplyIdempotent(t *testing.T) {
	a := &document.Event{UUID: "e1", Tag: "BIRT", Lineno: 5}
	b := &document.Event{UUID: "e2", Tag: "BIRT", Lineno: 9}
	doc := docWithEvents(a, b)
	Apply(doc)
	first := *a.Disambiguation

	Apply(doc)
	if *a.Disambiguation != first {
		t.Errorf("disambiguation changed on rerun: %+v vs %+v", *a.Disambiguation, first)
	}
}
