// Package resolve turns source-pointer links into durable identifiers.
//
// The resolver walks every registry record, assigns or confirms a
// deterministic uuid per (record type, pointer), rebuilds the uuid index,
// and resolves family-membership pointers into resolved-reference blocks.
// Pointers that are referenced but never defined are retained with an
// unresolved flag and counted, never dropped.
package resolve

import (
	"github.com/plattline/gencanon/core/document"
	"github.com/plattline/gencanon/core/identity"
)

// Metrics reports what the resolver did.
type Metrics struct {
	RecordsIndexed  int
	UUIDsAssigned   int
	LinksResolved   int
	LinksUnresolved int
}

// Apply resolves cross-references in place. Re-running against an
// already-resolved document reproduces identical uuids and is a no-op
// beyond re-deriving the same values.
func Apply(doc *document.Document) *Metrics {
	m := &Metrics{}

	index := document.UUIDIndex{
		document.RecordIndividual: {},
		document.RecordFamily:     {},
		document.RecordSource:     {},
		document.RecordRepository: {},
		document.RecordMedia:      {},
	}

	for _, ptr := range doc.IndividualPointers() {
		rec := doc.Individuals[ptr]
		rec.UUID = ensureUUID(m, document.RecordIndividual, ptr, rec.UUID)
		index[document.RecordIndividual][ptr] = rec.UUID
		m.RecordsIndexed++
	}
	for _, ptr := range doc.FamilyPointers() {
		rec := doc.Families[ptr]
		rec.UUID = ensureUUID(m, document.RecordFamily, ptr, rec.UUID)
		index[document.RecordFamily][ptr] = rec.UUID
		m.RecordsIndexed++
	}
	for ptr, rec := range doc.Sources {
		rec.UUID = ensureUUID(m, document.RecordSource, ptr, rec.UUID)
		index[document.RecordSource][ptr] = rec.UUID
		m.RecordsIndexed++
	}
	for ptr, rec := range doc.Repositories {
		rec.UUID = ensureUUID(m, document.RecordRepository, ptr, rec.UUID)
		index[document.RecordRepository][ptr] = rec.UUID
		m.RecordsIndexed++
	}
	for ptr, rec := range doc.MediaObjects {
		rec.UUID = ensureUUID(m, document.RecordMedia, ptr, rec.UUID)
		index[document.RecordMedia][ptr] = rec.UUID
		m.RecordsIndexed++
	}

	doc.UUIDIndex = index

	resolveIndividuals(doc, index, m)
	resolveFamilies(doc, index, m)

	assignEventUUIDs(doc)

	return m
}

// ensureUUID keeps an existing uuid (idempotence) or derives the
// deterministic one for the pointer.
func ensureUUID(m *Metrics, recordType document.RecordType, pointer, current string) string {
	if current != "" {
		return current
	}
	id, ok := identity.RecordUUID(recordType, pointer)
	if !ok {
		return ""
	}
	m.UUIDsAssigned++
	return id
}

// resolveIndividuals resolves each individual's family links (FAMC/FAMS)
// against the family index.
func resolveIndividuals(doc *document.Document, index document.UUIDIndex, m *Metrics) {
	for _, ptr := range doc.IndividualPointers() {
		rec := doc.Individuals[ptr]
		resolved := &document.ResolvedRelationships{
			FamilyChild:  []*document.ResolvedRef{},
			FamilySpouse: []*document.ResolvedRef{},
		}
		for _, famPtr := range rec.FamilyChild {
			resolved.FamilyChild = append(resolved.FamilyChild,
				resolveRef(rec, document.RecordFamily, famPtr, index, m))
		}
		for _, famPtr := range rec.FamilySpouse {
			resolved.FamilySpouse = append(resolved.FamilySpouse,
				resolveRef(rec, document.RecordFamily, famPtr, index, m))
		}
		rec.Relationships = resolved
	}
}

// resolveFamilies resolves each family's member links (husband, wife,
// children) against the individual index.
func resolveFamilies(doc *document.Document, index document.UUIDIndex, m *Metrics) {
	for _, ptr := range doc.FamilyPointers() {
		rec := doc.Families[ptr]
		resolved := &document.ResolvedMembers{Children: []*document.ResolvedRef{}}
		if rec.Husband != "" {
			resolved.Husband = resolveRef(rec, document.RecordIndividual, rec.Husband, index, m)
		}
		if rec.Wife != "" {
			resolved.Wife = resolveRef(rec, document.RecordIndividual, rec.Wife, index, m)
		}
		for _, childPtr := range rec.Children {
			resolved.Children = append(resolved.Children,
				resolveRef(rec, document.RecordIndividual, childPtr, index, m))
		}
		rec.Members = resolved
	}
}

// diagnosable is any record that can carry diagnostics.
type diagnosable interface {
	AddDiagnostic(document.Diagnostic) bool
}

// resolveRef builds one resolved reference. Undefined pointers produce an
// unresolved ref plus a diagnostic on the owning record.
func resolveRef(owner diagnosable, target document.RecordType, pointer string, index document.UUIDIndex, m *Metrics) *document.ResolvedRef {
	ref := &document.ResolvedRef{Pointer: pointer, Type: target}
	if id, ok := index[target][pointer]; ok {
		ref.UUID = id
		m.LinksResolved++
		return ref
	}
	ref.Unresolved = true
	m.LinksUnresolved++
	owner.AddDiagnostic(document.Diagnostic{
		Kind:    "unresolved_reference",
		Field:   string(target),
		Message: "pointer " + pointer + " is referenced but never defined",
	})
	return ref
}

// assignEventUUIDs backfills deterministic event identifiers now that every
// owning record has a uuid. Events with no tag are left without a uuid; the
// disambiguator flags them.
func assignEventUUIDs(doc *document.Document) {
	doc.WalkEvents(func(group document.EventGroup, pointer string, ev *document.Event) {
		if ev.UUID != "" {
			return
		}
		var ownerUUID string
		if group == document.GroupIndividuals {
			ownerUUID = doc.Individuals[pointer].UUID
		} else {
			ownerUUID = doc.Families[pointer].UUID
		}
		rawDate := ""
		if ev.Date != nil {
			rawDate = ev.Date.Raw
		}
		if id, ok := identity.EventUUID(ownerUUID, ev.Tag, rawDate, ev.Place); ok {
			ev.UUID = id
		}
	})
}
