package place

import (
	"testing"

	"github.com/plattline/gencanon/core/document"
)

func hierarchyDoc() *document.Document {
	doc := document.New()
	doc.Individuals["@I1@"] = &document.Individual{
		Pointer: "@I1@",
		Events: []*document.Event{
			{Tag: "BIRT", Place: "Paris, Île-de-France, France"},
		},
	}
	Standardize(doc)
	BuildRegistry(doc)
	return doc
}

func TestBuildHierarchyCreatesChain(t *testing.T) {
	doc := hierarchyDoc()
	m := BuildHierarchy(doc)

	paris := doc.Places["paris, île-de-france, france"]
	if paris == nil {
		t.Fatal("leaf place missing")
	}
	if paris.ParentID != "île-de-france, france" {
		t.Errorf("leaf parent = %q", paris.ParentID)
	}

	region, ok := doc.Places["île-de-france, france"]
	if !ok {
		t.Fatal("synthetic region missing")
	}
	if region.ParentID != "france" {
		t.Errorf("region parent = %q", region.ParentID)
	}
	if region.Generated == nil {
		t.Fatal("synthetic place has no provenance")
	}
	if region.Generated.By != "place_hierarchy_builder" || region.Generated.Rule != "synthetic_parent" {
		t.Errorf("provenance = %+v", region.Generated)
	}
	if !region.Generated.Inferred || !region.Generated.EnrichmentCandidate {
		t.Error("synthetic place must be marked inferred enrichment candidate")
	}

	country, ok := doc.Places["france"]
	if !ok {
		t.Fatal("synthetic country missing")
	}
	if country.ParentID != "" {
		t.Errorf("root has a parent: %q", country.ParentID)
	}

	if m.SyntheticCreated != 2 {
		t.Errorf("SyntheticCreated = %d, want 2", m.SyntheticCreated)
	}
}

func TestBuildHierarchySingleComponentIsRoot(t *testing.T) {
	doc := document.New()
	doc.Places = map[string]*document.Place{
		"france": {ID: "france", Display: "France"},
	}
	m := BuildHierarchy(doc)
	if doc.Places["france"].ParentID != "" {
		t.Error("single-component place gained a parent")
	}
	if m.Roots != 1 {
		t.Errorf("Roots = %d, want 1", m.Roots)
	}
}

func TestBuildHierarchyNeverOverwritesParent(t *testing.T) {
	doc := hierarchyDoc()
	BuildHierarchy(doc)
	doc.Places["paris, île-de-france, france"].ParentID = "custom-parent"
	doc.Places["custom-parent"] = &document.Place{ID: "custom-parent", Display: "Custom"}

	BuildHierarchy(doc)
	if got := doc.Places["paris, île-de-france, france"].ParentID; got != "custom-parent" {
		t.Errorf("existing parent overwritten: %q", got)
	}
}

func TestBuildHierarchyIdempotent(t *testing.T) {
	doc := hierarchyDoc()
	BuildHierarchy(doc)
	placeCount := len(doc.Places)

	m := BuildHierarchy(doc)
	if m.SyntheticCreated != 0 {
		t.Errorf("rerun created %d synthetic places", m.SyntheticCreated)
	}
	if len(doc.Places) != placeCount {
		t.Errorf("registry grew on rerun: %d -> %d", placeCount, len(doc.Places))
	}
}
