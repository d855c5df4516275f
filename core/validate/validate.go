// Package validate is the terminal integrity gate of the pipeline. It runs
// a fixed category sequence over the finished document and fails the run on
// the first category with violations, reporting every violation in that
// category so a failure can be fixed in one pass.
package validate

import (
	"fmt"
	"strconv"

	"github.com/plattline/gencanon/core/document"
	"github.com/plattline/gencanon/core/errors"
)

// Violation is one integrity failure at a concrete document path.
type Violation struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (v Violation) String() string {
	return v.Path + ": " + v.Message
}

// Report is the outcome of one validation run. A nil Report means the
// document passed every category.
type Report struct {
	// Category is the first failing category.
	Category string `json:"category"`

	// Violations lists every violation found in that category.
	Violations []Violation `json:"violations"`
}

// Err converts a failing report into the pipeline's structural error.
func (r *Report) Err() error {
	if r == nil {
		return nil
	}
	return errors.NewStructural(r.Category,
		fmt.Sprintf("validation failed with %d violation(s)", len(r.Violations)))
}

// category is one named integrity check.
type category struct {
	name  string
	check func(doc *document.Document) []Violation
}

// categories run in a fixed order from cheap structural checks to the
// cross-registry ones that presume the earlier categories hold.
var categories = []category{
	{"schema", checkSchema},
	{"references", checkReferences},
	{"event_places", checkEventPlaces},
	{"place_versions", checkPlaceVersions},
	{"place_refs", checkPlaceRefs},
	{"temporal", checkTemporal},
}

// Run validates the document. It stops at the first failing category and
// returns its full violation list; nil means the document is sound.
func Run(doc *document.Document) *Report {
	for _, c := range categories {
		if violations := c.check(doc); len(violations) > 0 {
			return &Report{Category: c.name, Violations: violations}
		}
	}
	return nil
}

// checkSchema verifies document-level structure: meta, schema version, and
// per-record pointer/uuid presence.
func checkSchema(doc *document.Document) []Violation {
	var out []Violation
	if doc.Meta == nil || doc.Meta.SchemaVersion == "" {
		out = append(out, Violation{"meta.schema_version", "missing schema version"})
	}
	for _, ptr := range doc.IndividualPointers() {
		rec := doc.Individuals[ptr]
		if rec.Pointer != ptr {
			out = append(out, Violation{indiPath(ptr), "pointer does not match registry key"})
		}
		if rec.UUID == "" {
			out = append(out, Violation{indiPath(ptr), "record has no uuid"})
		}
	}
	for _, ptr := range doc.FamilyPointers() {
		rec := doc.Families[ptr]
		if rec.Pointer != ptr {
			out = append(out, Violation{famPath(ptr), "pointer does not match registry key"})
		}
		if rec.UUID == "" {
			out = append(out, Violation{famPath(ptr), "record has no uuid"})
		}
	}
	return out
}

// checkReferences verifies referential closure: every resolved link carries
// a uuid that round-trips through the uuid index, and no link remains
// unresolved at the end of the pipeline.
func checkReferences(doc *document.Document) []Violation {
	var out []Violation
	verify := func(path string, ref *document.ResolvedRef) {
		if ref == nil {
			return
		}
		if ref.Unresolved {
			out = append(out, Violation{path, "reference to " + ref.Pointer + " is unresolved"})
			return
		}
		if id, ok := doc.UUIDIndex[ref.Type][ref.Pointer]; !ok || id != ref.UUID {
			out = append(out, Violation{path, "uuid does not match index entry for " + ref.Pointer})
		}
	}
	for _, ptr := range doc.IndividualPointers() {
		rec := doc.Individuals[ptr]
		if rec.Relationships == nil {
			out = append(out, Violation{indiPath(ptr), "record was never resolved"})
			continue
		}
		for i, ref := range rec.Relationships.FamilyChild {
			verify(indiPath(ptr)+".famc["+strconv.Itoa(i)+"]", ref)
		}
		for i, ref := range rec.Relationships.FamilySpouse {
			verify(indiPath(ptr)+".fams["+strconv.Itoa(i)+"]", ref)
		}
	}
	for _, ptr := range doc.FamilyPointers() {
		rec := doc.Families[ptr]
		if rec.Members == nil {
			out = append(out, Violation{famPath(ptr), "record was never resolved"})
			continue
		}
		verify(famPath(ptr)+".husband", rec.Members.Husband)
		verify(famPath(ptr)+".wife", rec.Members.Wife)
		for i, ref := range rec.Members.Children {
			verify(famPath(ptr)+".children["+strconv.Itoa(i)+"]", ref)
		}
	}
	return out
}

// checkEventPlaces verifies that every event place_id resolves into the
// place registry and that the registry's parent links stay inside it.
func checkEventPlaces(doc *document.Document) []Violation {
	var out []Violation
	walkEventPaths(doc, func(path string, ev *document.Event) {
		if ev.PlaceID == "" {
			return
		}
		if _, ok := doc.Places[ev.PlaceID]; !ok {
			out = append(out, Violation{path + ".place_id", "unknown place " + ev.PlaceID})
		}
	})
	for _, id := range doc.PlaceIDs() {
		rec := doc.Places[id]
		if rec.ParentID == "" {
			continue
		}
		if _, ok := doc.Places[rec.ParentID]; !ok {
			out = append(out, Violation{
				"places[" + id + "].parent_id", "unknown parent place " + rec.ParentID})
		}
	}
	return out
}

// checkPlaceVersions verifies that every place version points at a known
// place and a registered jurisdiction system.
func checkPlaceVersions(doc *document.Document) []Violation {
	var out []Violation
	for _, id := range doc.PlaceVersionIDs() {
		pv := doc.PlaceVersions[id]
		path := "place_versions[" + id + "]"
		if _, ok := doc.Places[pv.PlaceID]; !ok {
			out = append(out, Violation{path + ".place_id", "unknown place " + pv.PlaceID})
		}
		if _, ok := doc.JurisdictionSystems[pv.JurisdictionSystemID]; !ok {
			out = append(out, Violation{path + ".jurisdiction_system_id",
				"unknown jurisdiction system " + pv.JurisdictionSystemID})
		}
	}
	return out
}

// checkPlaceRefs verifies that every event place ref points at an existing
// version and restates exactly the owning event's place_id.
func checkPlaceRefs(doc *document.Document) []Violation {
	var out []Violation
	walkEventPaths(doc, func(path string, ev *document.Event) {
		for i, ref := range ev.PlaceRefs {
			refPath := path + ".place_refs[" + strconv.Itoa(i) + "]"
			if ref.PlaceID != ev.PlaceID {
				out = append(out, Violation{refPath,
					"ref place " + ref.PlaceID + " does not match event place " + ev.PlaceID})
			}
			if _, ok := doc.PlaceVersions[ref.PlaceVersionID]; !ok {
				out = append(out, Violation{refPath,
					"unknown place version " + ref.PlaceVersionID})
			}
		}
	})
	return out
}

// checkTemporal verifies every temporal interval: the bucket kind must be
// supported and exactly one of open_ended or a plausible year must hold.
func checkTemporal(doc *document.Document) []Violation {
	var out []Violation
	verify := func(path string, t document.Temporal) {
		if t.Bucket != document.BucketYear {
			out = append(out, Violation{path, "unsupported temporal bucket " + string(t.Bucket)})
		}
		hasYear := t.Year >= 1 && t.Year <= 9999
		switch {
		case t.OpenEnded && t.Year != 0:
			out = append(out, Violation{path, "open-ended interval must not carry a year"})
		case !t.OpenEnded && !hasYear:
			out = append(out, Violation{path, "interval year out of range"})
		}
	}
	for _, id := range doc.PlaceVersionIDs() {
		verify("place_versions["+id+"].temporal", doc.PlaceVersions[id].Temporal)
	}
	walkEventPaths(doc, func(path string, ev *document.Event) {
		for i, ref := range ev.PlaceRefs {
			verify(path+".place_refs["+strconv.Itoa(i)+"].temporal", ref.Temporal)
		}
	})
	return out
}

func indiPath(ptr string) string { return "individuals[" + ptr + "]" }
func famPath(ptr string) string  { return "families[" + ptr + "]" }

// walkEventPaths visits every event with its document path, in the same
// deterministic order the document walker uses.
func walkEventPaths(doc *document.Document, fn func(path string, ev *document.Event)) {
	for _, ptr := range doc.IndividualPointers() {
		for i, ev := range doc.Individuals[ptr].Events {
			fn(indiPath(ptr)+".events["+strconv.Itoa(i)+"]", ev)
		}
	}
	for _, ptr := range doc.FamilyPointers() {
		for i, ev := range doc.Families[ptr].Events {
			fn(famPath(ptr)+".events["+strconv.Itoa(i)+"]", ev)
		}
	}
}
