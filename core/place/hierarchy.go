package place

import (
	"strings"

	"github.com/plattline/gencanon/core/document"
	"github.com/plattline/gencanon/core/identity"
)

// hierarchyBuilder tags synthetic records produced while linking parents.
const hierarchyBuilder = "place_hierarchy_builder"

// HierarchyMetrics reports what the hierarchy builder did.
type HierarchyMetrics struct {
	PlacesLinked     int
	SyntheticCreated int
	Roots            int
}

// BuildHierarchy links every registry place to its coarser-grained parent
// by dropping the finest component of its comma-decomposed display form.
// Missing ancestors are created as synthetic places with provenance marking
// them as inferred enrichment candidates. A non-empty parent_id is never
// overwritten, so the stage is idempotent and the hierarchy stays a forest.
func BuildHierarchy(doc *document.Document) *HierarchyMetrics {
	m := &HierarchyMetrics{}
	if doc.Places == nil {
		return m
	}

	// Snapshot the ids before iterating; synthetic parents created below
	// must not be re-visited within the same pass.
	ids := doc.PlaceIDs()
	for _, id := range ids {
		rec := doc.Places[id]
		if rec.ParentID != "" {
			m.PlacesLinked++
			continue
		}
		parentDisplay, ok := parentOf(rec.Display)
		if !ok {
			m.Roots++
			continue
		}
		parentID, ok := identity.PlaceID(parentDisplay)
		if !ok {
			m.Roots++
			continue
		}
		ensureChain(doc, parentID, parentDisplay, m)
		rec.ParentID = parentID
		m.PlacesLinked++
	}
	return m
}

// ensureChain materializes the ancestor chain for a display string, creating
// synthetic places up to the root. Existing records are reused untouched
// except that a missing parent link may be filled in.
func ensureChain(doc *document.Document, id, display string, m *HierarchyMetrics) {
	rec, exists := doc.Places[id]
	if !exists {
		rec = &document.Place{
			ID:      id,
			Display: display,
			Generated: &document.Generated{
				By:                  hierarchyBuilder,
				Rule:                "synthetic_parent",
				Inferred:            true,
				EnrichmentCandidate: true,
				Confidence:          0.5,
			},
		}
		doc.Places[id] = rec
		m.SyntheticCreated++
	}
	if rec.ParentID != "" {
		return
	}
	parentDisplay, ok := parentOf(rec.Display)
	if !ok {
		if !exists {
			m.Roots++
		}
		return
	}
	parentID, ok := identity.PlaceID(parentDisplay)
	if !ok {
		return
	}
	ensureChain(doc, parentID, parentDisplay, m)
	rec.ParentID = parentID
}

// parentOf drops the finest-grained component of a comma-separated display
// string. ok=false means the place is already a root.
func parentOf(display string) (string, bool) {
	idx := strings.Index(display, ",")
	if idx < 0 {
		return "", false
	}
	parent := strings.TrimSpace(display[idx+1:])
	if parent == "" {
		return "", false
	}
	return parent, true
}
