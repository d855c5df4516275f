// Package pipeline runs the canonicalization stages in their fixed order:
// cross-reference resolution, place standardization, event disambiguation,
// the place registry and hierarchy, temporal place versioning, and finally
// the integrity gate. Each stage reads the document written by its
// predecessor and only ever adds fields.
package pipeline

import (
	"time"

	"github.com/plattline/gencanon/core/disambig"
	"github.com/plattline/gencanon/core/document"
	"github.com/plattline/gencanon/core/place"
	"github.com/plattline/gencanon/core/resolve"
	"github.com/plattline/gencanon/core/validate"
	"github.com/plattline/gencanon/internal/logging"
)

// Options carries the run-level configuration.
type Options struct {
	Version place.VersionOptions
}

// DefaultOptions returns the stock configuration.
func DefaultOptions() Options {
	return Options{Version: place.DefaultVersionOptions()}
}

// Stage is one named pipeline step. Run mutates the document additively and
// returns key-value metric pairs for the completion log.
type Stage struct {
	Name string
	Run  func(doc *document.Document, opts Options) ([]any, error)
}

// stages is the fixed stage order. Reordering would break the data
// dependencies between them (place ids must exist before the registry,
// versions before the refs the validator checks).
var stages = []Stage{
	{"resolve", runResolve},
	{"standardize", runStandardize},
	{"disambiguate", runDisambiguate},
	{"place_registry", runRegistry},
	{"place_hierarchy", runHierarchy},
	{"place_versions", runVersions},
	{"validate", runValidate},
}

// Run executes the full pipeline against the document in place. The whole
// run is idempotent: running it again over its own output changes nothing.
func Run(doc *document.Document, opts Options) error {
	if doc.Meta == nil {
		doc.Meta = &document.Meta{}
	}
	if doc.Meta.SchemaVersion == "" {
		doc.Meta.SchemaVersion = document.SchemaVersion
	}

	for _, stage := range stages {
		start := time.Now()
		metrics, err := stage.Run(doc, opts)
		if err != nil {
			logging.StageError(stage.Name, err)
			return err
		}
		logging.StageComplete(stage.Name, time.Since(start), metrics...)
	}
	return nil
}

func runResolve(doc *document.Document, _ Options) ([]any, error) {
	m := resolve.Apply(doc)
	return []any{
		"records_indexed", m.RecordsIndexed,
		"uuids_assigned", m.UUIDsAssigned,
		"links_resolved", m.LinksResolved,
		"links_unresolved", m.LinksUnresolved,
	}, nil
}

func runStandardize(doc *document.Document, _ Options) ([]any, error) {
	m := place.Standardize(doc)
	return []any{
		"events_seen", m.EventsSeen,
		"events_with_place", m.EventsWithPlace,
		"events_skipped", m.EventsSkipped,
	}, nil
}

func runDisambiguate(doc *document.Document, _ Options) ([]any, error) {
	m := disambig.Apply(doc)
	return []any{
		"events_scored", m.EventsScored,
		"groups", m.Groups,
		"multi_groups", m.MultiGroups,
		"ties", m.Ties,
		"conflicts", m.Conflicts,
		"malformed_skipped", m.MalformedSkip,
	}, nil
}

func runRegistry(doc *document.Document, _ Options) ([]any, error) {
	m := place.BuildRegistry(doc)
	return []any{
		"events_counted", m.EventsCounted,
		"places_created", m.PlacesCreated,
		"places_updated", m.PlacesUpdated,
	}, nil
}

func runHierarchy(doc *document.Document, _ Options) ([]any, error) {
	m := place.BuildHierarchy(doc)
	return []any{
		"places_linked", m.PlacesLinked,
		"synthetic_created", m.SyntheticCreated,
		"roots", m.Roots,
	}, nil
}

func runVersions(doc *document.Document, opts Options) ([]any, error) {
	m, err := place.BuildVersions(doc, opts.Version)
	if err != nil {
		return nil, err
	}
	return []any{
		"skipped", m.Skipped,
		"events_visited", m.EventsVisited,
		"versions_created", m.VersionsCreated,
		"refs_attached", m.RefsAttached,
		"refs_skipped", m.RefsSkipped,
		"refs_rejected", m.RefsRejected,
		"open_ended_used", m.OpenEndedUsed,
		"events_no_year", m.EventsNoYear,
	}, nil
}

func runValidate(doc *document.Document, _ Options) ([]any, error) {
	report := validate.Run(doc)
	if report != nil {
		logging.ValidationFailure(report.Category, len(report.Violations))
		for _, v := range report.Violations {
			logging.Error("violation", "path", v.Path, "message", v.Message)
		}
		return nil, report.Err()
	}
	return []any{"categories", "all_passed"}, nil
}
