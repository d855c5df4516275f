package resolve

import (
	"testing"

	"github.com/plattline/gencanon/core/document"
)

func sampleDoc() *document.Document {
	doc := document.New()
	doc.Individuals["@I1@"] = &document.Individual{
		Pointer:      "@I1@",
		FamilySpouse: []string{"@F1@"},
		Events: []*document.Event{
			{Tag: "BIRT", Date: &document.DateValue{Raw: "14 JUL 1789"}, Place: "Paris, France"},
		},
	}
	doc.Individuals["@I2@"] = &document.Individual{
		Pointer:     "@I2@",
		FamilyChild: []string{"@F1@"},
	}
	doc.Families["@F1@"] = &document.Family{
		Pointer:  "@F1@",
		Husband:  "@I1@",
		Children: []string{"@I2@"},
	}
	return doc
}

func TestApplyAssignsUUIDs(t *testing.T) {
	doc := sampleDoc()
	m := Apply(doc)

	if m.RecordsIndexed != 3 {
		t.Errorf("RecordsIndexed = %d, want 3", m.RecordsIndexed)
	}
	if m.UUIDsAssigned != 3 {
		t.Errorf("UUIDsAssigned = %d, want 3", m.UUIDsAssigned)
	}
	for ptr, rec := range doc.Individuals {
		if rec.UUID == "" {
			t.Errorf("individual %s has no uuid", ptr)
		}
	}
	if doc.Families["@F1@"].UUID == "" {
		t.Error("family has no uuid")
	}
	if doc.UUIDIndex[document.RecordIndividual]["@I1@"] != doc.Individuals["@I1@"].UUID {
		t.Error("uuid index does not match record uuid")
	}
}

func TestApplyResolvesLinks(t *testing.T) {
	doc := sampleDoc()
	m := Apply(doc)

	if m.LinksUnresolved != 0 {
		t.Errorf("LinksUnresolved = %d, want 0", m.LinksUnresolved)
	}

	rels := doc.Individuals["@I1@"].Relationships
	if rels == nil || len(rels.FamilySpouse) != 1 {
		t.Fatal("spouse link not resolved")
	}
	if rels.FamilySpouse[0].UUID != doc.Families["@F1@"].UUID {
		t.Error("spouse link resolved to wrong uuid")
	}

	members := doc.Families["@F1@"].Members
	if members == nil || members.Husband == nil {
		t.Fatal("husband link not resolved")
	}
	if members.Husband.UUID != doc.Individuals["@I1@"].UUID {
		t.Error("husband link resolved to wrong uuid")
	}
	if len(members.Children) != 1 || members.Children[0].UUID != doc.Individuals["@I2@"].UUID {
		t.Error("child link resolved to wrong uuid")
	}
}

func TestApplyRetainsUnresolved(t *testing.T) {
	doc := sampleDoc()
	doc.Families["@F1@"].Wife = "@I99@"
	m := Apply(doc)

	if m.LinksUnresolved != 1 {
		t.Fatalf("LinksUnresolved = %d, want 1", m.LinksUnresolved)
	}
	wife := doc.Families["@F1@"].Members.Wife
	if wife == nil {
		t.Fatal("unresolved link was dropped")
	}
	if !wife.Unresolved || wife.UUID != "" {
		t.Errorf("unresolved ref not flagged: %+v", wife)
	}
	if wife.Pointer != "@I99@" {
		t.Errorf("unresolved ref lost its pointer: %q", wife.Pointer)
	}

	found := false
	for _, d := range doc.Families["@F1@"].Diagnostics {
		if d.Kind == "unresolved_reference" {
			found = true
		}
	}
	if !found {
		t.Error("missing unresolved_reference diagnostic on owning record")
	}
}

func TestApplyIdempotent(t *testing.T) {
	doc := sampleDoc()
	Apply(doc)
	firstUUID := doc.Individuals["@I1@"].UUID
	firstEventUUID := doc.Individuals["@I1@"].Events[0].UUID
	diagCount := len(doc.Families["@F1@"].Diagnostics)

	m := Apply(doc)
	if m.UUIDsAssigned != 0 {
		t.Errorf("second run assigned %d uuids, want 0", m.UUIDsAssigned)
	}
	if doc.Individuals["@I1@"].UUID != firstUUID {
		t.Error("record uuid changed on rerun")
	}
	if doc.Individuals["@I1@"].Events[0].UUID != firstEventUUID {
		t.Error("event uuid changed on rerun")
	}
	if len(doc.Families["@F1@"].Diagnostics) != diagCount {
		t.Error("diagnostics duplicated on rerun")
	}
}

func TestApplyAssignsEventUUIDs(t *testing.T) {
	doc := sampleDoc()
	Apply(doc)
	ev := doc.Individuals["@I1@"].Events[0]
	if ev.UUID == "" {
		t.Error("event has no uuid after resolve")
	}
}
