package place

import (
	"sort"

	"github.com/plattline/gencanon/core/document"
	"github.com/plattline/gencanon/core/errors"
	"github.com/plattline/gencanon/core/gedcomdate"
	"github.com/plattline/gencanon/core/identity"
)

// builderName tags every record and ref produced by the version builder.
const builderName = "place_version_builder"

// Provenance rules and confidences for version-builder output.
const (
	ruleYearFromDate    = "year_from_event_date"
	ruleYearFromValue   = "year_from_event_value_fallback"
	ruleOpenEnded       = "open_ended_no_date"
	ruleEnsureDefaultJS = "ensure_default_jurisdiction_system"
	confYearFromDate    = 0.95
	confYearFromValue   = 0.6
	confOpenEnded       = 0.6
	confEnsureDefaultJS = 0.9
)

// VersionOptions configures the place version builder.
type VersionOptions struct {
	// EnablePlaceVersions turns the stage on; when false and
	// EnableEventPlaceRefs is also false, the stage is a recorded no-op.
	EnablePlaceVersions bool

	// EnableEventPlaceRefs attaches a place ref to each placed event.
	EnableEventPlaceRefs bool

	// AllowMultiplePlaceRefs permits one ref per enabled jurisdiction
	// system instead of exactly one ref per event.
	AllowMultiplePlaceRefs bool

	// DefaultJurisdictionSystem is the system used when none is enabled
	// explicitly. Must be non-empty when the stage runs.
	DefaultJurisdictionSystem string

	// JurisdictionSystemsEnabled lists the systems to emit refs for when
	// AllowMultiplePlaceRefs is set. The default system is always included.
	JurisdictionSystemsEnabled []string

	// Bucket is the temporal bucket kind. Only "year" is supported.
	Bucket document.TemporalBucket

	// OpenEndedFallback emits an open-ended version for placed events with
	// no derivable year instead of skipping them.
	OpenEndedFallback bool
}

// DefaultVersionOptions returns the stock configuration.
func DefaultVersionOptions() VersionOptions {
	return VersionOptions{
		EnablePlaceVersions:       true,
		EnableEventPlaceRefs:      true,
		DefaultJurisdictionSystem: "js:civil-us",
		Bucket:                    document.BucketYear,
		OpenEndedFallback:         true,
	}
}

// VersionMetrics reports what the version builder did.
type VersionMetrics struct {
	Skipped         bool
	EventsVisited   int
	VersionsCreated int
	RefsAttached    int
	RefsSkipped     int
	RefsRejected    int
	OpenEndedUsed   int
	EventsNoYear    int
	SystemsEnsured  int
}

// BuildVersions derives temporal-jurisdictional place versions and links
// placed events to them. The builder is deterministic and idempotent:
// version ids are content-derived, refs already present are skipped rather
// than duplicated, and per-version usage counters are recomputed from the
// event scan on every run.
func BuildVersions(doc *document.Document, opts VersionOptions) (*VersionMetrics, error) {
	m := &VersionMetrics{}
	if !opts.EnablePlaceVersions && !opts.EnableEventPlaceRefs {
		m.Skipped = true
		return m, nil
	}
	if opts.DefaultJurisdictionSystem == "" {
		return m, errors.NewConfiguration("default_jurisdiction_system",
			"must be set when place versions or event place refs are enabled")
	}
	if opts.Bucket == "" {
		opts.Bucket = document.BucketYear
	}
	if opts.Bucket != document.BucketYear {
		return m, errors.NewConfiguration("temporal.bucket",
			"unsupported bucket kind "+string(opts.Bucket))
	}

	targets := jsTargets(opts)
	ensureJurisdictionSystems(doc, targets, m)

	if doc.PlaceVersions == nil {
		doc.PlaceVersions = make(map[string]*document.PlaceVersion)
	}

	// Per-version usage tallies, recomputed fresh each run.
	meta := make(map[string]document.PlaceVersionMeta)

	doc.WalkEvents(func(group document.EventGroup, _ string, ev *document.Event) {
		if ev.PlaceID == "" {
			return
		}
		m.EventsVisited++

		temporal, generated, ok := eventTemporal(ev, opts, m)
		if !ok {
			ev.AddDiagnostic(document.Diagnostic{
				Kind:    "no_derivable_year",
				Field:   "date",
				Message: "no year derivable from event date or value; open-ended fallback disabled",
			})
			m.EventsNoYear++
			return
		}

		for _, jsID := range targets {
			versionID, ok := identity.PlaceVersionID(ev.PlaceID, jsID, temporal)
			if !ok {
				continue
			}
			// A ref requires its version, so versions materialize whenever
			// either toggle is on.
			if _, exists := doc.PlaceVersions[versionID]; !exists {
				doc.PlaceVersions[versionID] = &document.PlaceVersion{
					ID:                   versionID,
					PlaceID:              ev.PlaceID,
					JurisdictionSystemID: jsID,
					Temporal:             temporal,
					Generated:            generated,
				}
				m.VersionsCreated++
			}
			if opts.EnableEventPlaceRefs {
				attachRef(ev, versionID, jsID, temporal, generated, opts, m)
			}
			tallyRef(ev, versionID, group, meta)
		}
	})

	// Write the recomputed counters back onto every version that was seen.
	ids := make([]string, 0, len(meta))
	for id := range meta {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if pv, ok := doc.PlaceVersions[id]; ok {
			pv.Meta = meta[id]
		}
	}

	return m, nil
}

// jsTargets returns the jurisdiction systems to emit refs for, in stable
// order with the default system first.
func jsTargets(opts VersionOptions) []string {
	targets := []string{opts.DefaultJurisdictionSystem}
	if !opts.AllowMultiplePlaceRefs {
		return targets
	}
	extra := make([]string, 0, len(opts.JurisdictionSystemsEnabled))
	for _, id := range opts.JurisdictionSystemsEnabled {
		if id == "" || id == opts.DefaultJurisdictionSystem {
			continue
		}
		extra = append(extra, id)
	}
	sort.Strings(extra)
	seen := map[string]bool{opts.DefaultJurisdictionSystem: true}
	for _, id := range extra {
		if !seen[id] {
			targets = append(targets, id)
			seen[id] = true
		}
	}
	return targets
}

// ensureJurisdictionSystems appends registry entries for every target system
// not yet present. Existing entries are never modified.
func ensureJurisdictionSystems(doc *document.Document, targets []string, m *VersionMetrics) {
	if doc.JurisdictionSystems == nil {
		doc.JurisdictionSystems = make(map[string]*document.JurisdictionSystem)
	}
	for _, id := range targets {
		if _, ok := doc.JurisdictionSystems[id]; ok {
			continue
		}
		doc.JurisdictionSystems[id] = &document.JurisdictionSystem{
			ID:   id,
			Name: id,
			Generated: &document.Generated{
				By:         builderName,
				Rule:       ruleEnsureDefaultJS,
				Inferred:   false,
				Confidence: confEnsureDefaultJS,
			},
		}
		m.SystemsEnsured++
	}
}

// eventTemporal derives the temporal interval for one event. Derivation
// prefers the normalized date, then the raw date text, then a bare-year scan
// of the raw value; with no year at all, the open-ended fallback applies
// when enabled. ok=false means the event cannot be versioned.
func eventTemporal(ev *document.Event, opts VersionOptions, m *VersionMetrics) (document.Temporal, *document.Generated, bool) {
	if ev.Date != nil {
		if ev.Date.Normalized != "" {
			if year, ok := gedcomdate.Year(ev.Date.Normalized); ok {
				return yearTemporal(year, opts), provenance(ruleYearFromDate, false, confYearFromDate), true
			}
		}
		if ev.Date.Raw != "" {
			if year, ok := gedcomdate.Year(ev.Date.Raw); ok {
				return yearTemporal(year, opts), provenance(ruleYearFromDate, false, confYearFromDate), true
			}
			if year, ok := gedcomdate.ScanYear(ev.Date.Raw); ok {
				return yearTemporal(year, opts), provenance(ruleYearFromValue, true, confYearFromValue), true
			}
		}
	}
	if !opts.OpenEndedFallback {
		return document.Temporal{}, nil, false
	}
	m.OpenEndedUsed++
	t := document.Temporal{Bucket: opts.Bucket, OpenEnded: true}
	return t, provenance(ruleOpenEnded, true, confOpenEnded), true
}

func yearTemporal(year int, opts VersionOptions) document.Temporal {
	return document.Temporal{Bucket: opts.Bucket, Year: year}
}

func provenance(rule string, inferred bool, confidence float64) *document.Generated {
	return &document.Generated{
		By:         builderName,
		Rule:       rule,
		Inferred:   inferred,
		Confidence: confidence,
	}
}

// attachRef links one event to one place version. An identical ref already
// present is skipped silently so reruns are no-ops; a second distinct ref is
// rejected with a diagnostic unless multiple refs are allowed.
func attachRef(ev *document.Event, versionID, jsID string, temporal document.Temporal, generated *document.Generated, opts VersionOptions, m *VersionMetrics) {
	for _, ref := range ev.PlaceRefs {
		if ref.PlaceVersionID == versionID {
			m.RefsSkipped++
			return
		}
	}
	if !opts.AllowMultiplePlaceRefs && len(ev.PlaceRefs) > 0 {
		ev.AddDiagnostic(document.Diagnostic{
			Kind:    "place_ref_rejected",
			Field:   "place_refs",
			Message: "event already carries a place ref and multiple refs are disabled",
		})
		m.RefsRejected++
		return
	}
	ev.PlaceRefs = append(ev.PlaceRefs, &document.PlaceRef{
		PlaceID:              ev.PlaceID,
		PlaceVersionID:       versionID,
		JurisdictionSystemID: jsID,
		Temporal:             temporal,
		Generated:            generated,
	})
	m.RefsAttached++
}

// tallyRef folds one event into the per-version usage counters. Counts
// follow the ref the event actually carries, so rejected refs do not tally.
func tallyRef(ev *document.Event, versionID string, group document.EventGroup, meta map[string]document.PlaceVersionMeta) {
	carried := false
	for _, ref := range ev.PlaceRefs {
		if ref.PlaceVersionID == versionID {
			carried = true
			break
		}
	}
	if !carried {
		return
	}
	c := meta[versionID]
	c.Events++
	if group == document.GroupIndividuals {
		c.IndividualEvents++
	} else {
		c.FamilyEvents++
	}
	meta[versionID] = c
}
