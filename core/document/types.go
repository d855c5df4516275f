package document

// types.go - Consolidated canonical document type definitions
// This file contains all core document types used throughout gencanon.
// Pipeline stages should import these types from core/document rather than
// defining their own.

import "sort"

// SchemaVersion is the canonicalization level this engine produces.
const SchemaVersion = "c24.7"

// RecordType identifies a top-level registry record kind.
type RecordType string

// Record type constants. These mirror the source-format record tags.
const (
	RecordIndividual RecordType = "INDI"
	RecordFamily     RecordType = "FAM"
	RecordSource     RecordType = "SOUR"
	RecordRepository RecordType = "REPO"
	RecordMedia      RecordType = "OBJE"
)

// validRecordTypes is the set of valid record types.
var validRecordTypes = map[RecordType]bool{
	RecordIndividual: true,
	RecordFamily:     true,
	RecordSource:     true,
	RecordRepository: true,
	RecordMedia:      true,
}

// IsValid returns true if the record type is valid.
func (r RecordType) IsValid() bool {
	return validRecordTypes[r]
}

// Document is the single canonical artifact produced and incrementally
// enriched by the pipeline. Every stage reads the document written by its
// predecessor and only ever adds fields; nothing is deleted or destructively
// rewritten.
type Document struct {
	// Meta carries the schema version and other document-level markers.
	Meta *Meta `json:"meta,omitempty"`

	// Individuals is the individual registry, keyed by source pointer.
	Individuals map[string]*Individual `json:"individuals"`

	// Families is the family registry, keyed by source pointer.
	Families map[string]*Family `json:"families"`

	// Sources is the source-citation registry, keyed by source pointer.
	Sources map[string]*Source `json:"sources,omitempty"`

	// Repositories is the repository registry, keyed by source pointer.
	Repositories map[string]*Repository `json:"repositories,omitempty"`

	// MediaObjects is the media registry, keyed by source pointer.
	MediaObjects map[string]*MediaObject `json:"media_objects,omitempty"`

	// Places is the deduplicated place registry, keyed by place_id.
	Places map[string]*Place `json:"places,omitempty"`

	// JurisdictionSystems is the global jurisdiction registry, keyed by id.
	JurisdictionSystems map[string]*JurisdictionSystem `json:"jurisdiction_systems,omitempty"`

	// PlaceVersions is the versioned place registry, keyed by version id.
	PlaceVersions map[string]*PlaceVersion `json:"place_versions,omitempty"`

	// UUIDIndex maps (record type, pointer) to the durable uuid. It is a
	// derived accelerator, never authoritative; it must always be
	// reconstructable from the registries alone.
	UUIDIndex UUIDIndex `json:"uuid_index,omitempty"`
}

// Meta carries document-level markers.
type Meta struct {
	// SchemaVersion is the canonicalization level of this document.
	SchemaVersion string `json:"schema_version,omitempty"`
}

// UUIDIndex maps record type to pointer to uuid.
type UUIDIndex map[RecordType]map[string]string

// Individual is a person record. It owns an ordered event sequence and
// references families by source pointer.
type Individual struct {
	// Pointer is the source cross-reference pointer (e.g. "@I12@").
	Pointer string `json:"pointer"`

	// UUID is the durable identifier, derived from (type, pointer).
	UUID string `json:"uuid,omitempty"`

	// Name is the primary display name, if extracted.
	Name string `json:"name,omitempty"`

	// Events is the ordered event sequence. Order is provenance and is
	// never changed by any stage.
	Events []*Event `json:"events,omitempty"`

	// FamilyChild holds FAMC pointers (families this person is a child of).
	FamilyChild []string `json:"family_child,omitempty"`

	// FamilySpouse holds FAMS pointers (families this person is a spouse in).
	FamilySpouse []string `json:"family_spouse,omitempty"`

	// Relationships is the resolver output: pointer links resolved to uuids.
	Relationships *ResolvedRelationships `json:"relationships_resolved,omitempty"`

	// Sources holds source-citation pointers.
	Sources []string `json:"sources,omitempty"`

	// Media holds media-object pointers.
	Media []string `json:"media,omitempty"`

	// Raw preserves unrecognized vendor tags from extraction.
	Raw map[string]any `json:"raw,omitempty"`

	// Diagnostics holds additive stage-local issue flags.
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

// Family is a family-unit record linking spouses and children by pointer.
type Family struct {
	// Pointer is the source cross-reference pointer (e.g. "@F3@").
	Pointer string `json:"pointer"`

	// UUID is the durable identifier, derived from (type, pointer).
	UUID string `json:"uuid,omitempty"`

	// Husband and Wife are spouse pointers into the individual registry.
	Husband string `json:"husband,omitempty"`
	Wife    string `json:"wife,omitempty"`

	// Children holds child pointers into the individual registry.
	Children []string `json:"children,omitempty"`

	// Events is the ordered event sequence.
	Events []*Event `json:"events,omitempty"`

	// Members is the resolver output: member pointers resolved to uuids.
	Members *ResolvedMembers `json:"members_resolved,omitempty"`

	// Sources holds source-citation pointers.
	Sources []string `json:"sources,omitempty"`

	// Raw preserves unrecognized vendor tags from extraction.
	Raw map[string]any `json:"raw,omitempty"`

	// Diagnostics holds additive stage-local issue flags.
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

// Source is a source-citation record. Only its identity matters to the
// canonicalization core; field-level content is preserved as-is.
type Source struct {
	Pointer string         `json:"pointer"`
	UUID    string         `json:"uuid,omitempty"`
	Title   string         `json:"title,omitempty"`
	Raw     map[string]any `json:"raw,omitempty"`
}

// Repository is a repository record.
type Repository struct {
	Pointer string         `json:"pointer"`
	UUID    string         `json:"uuid,omitempty"`
	Name    string         `json:"name,omitempty"`
	Raw     map[string]any `json:"raw,omitempty"`
}

// MediaObject is a media record.
type MediaObject struct {
	Pointer string         `json:"pointer"`
	UUID    string         `json:"uuid,omitempty"`
	File    string         `json:"file,omitempty"`
	Raw     map[string]any `json:"raw,omitempty"`
}

// ResolvedRef is a pointer link resolved to a durable uuid. When the pointer
// is referenced but never defined, UUID is empty and Unresolved is set; the
// link is retained rather than dropped.
type ResolvedRef struct {
	Pointer    string     `json:"pointer"`
	UUID       string     `json:"uuid,omitempty"`
	Type       RecordType `json:"type"`
	Unresolved bool       `json:"unresolved,omitempty"`
}

// ResolvedRelationships holds an individual's family links resolved to uuids.
type ResolvedRelationships struct {
	FamilyChild  []*ResolvedRef `json:"famc"`
	FamilySpouse []*ResolvedRef `json:"fams"`
}

// ResolvedMembers holds a family's member links resolved to uuids.
type ResolvedMembers struct {
	Husband  *ResolvedRef   `json:"husband,omitempty"`
	Wife     *ResolvedRef   `json:"wife,omitempty"`
	Children []*ResolvedRef `json:"children"`
}

// Event is a dated, placed occurrence belonging to exactly one individual or
// family. The raw place text and date text are provenance and are preserved
// verbatim; every later stage writes derived fields beside them.
type Event struct {
	// UUID is the deterministic event identifier.
	UUID string `json:"uuid,omitempty"`

	// Tag is the event kind (e.g. "BIRT", "DEAT", "MARR").
	Tag string `json:"tag"`

	// Subtype refines the tag (e.g. a TYPE qualifier).
	Subtype string `json:"subtype,omitempty"`

	// Date is the event date block.
	Date *DateValue `json:"date,omitempty"`

	// Place is the raw place text as parsed from the source. Never mutated.
	Place string `json:"place,omitempty"`

	// StandardPlace is the standardizer output.
	StandardPlace *StandardPlace `json:"standard_place,omitempty"`

	// PlaceID is the canonical foreign key into the place registry. Set
	// once by the standardizer and never mutated by any later stage.
	PlaceID string `json:"place_id,omitempty"`

	// PlaceRefs holds versioned place interpretations of PlaceID. Each ref
	// must reference the same PlaceID as this event.
	PlaceRefs []*PlaceRef `json:"place_refs,omitempty"`

	// Sources holds source-citation pointers supporting this event.
	Sources []string `json:"sources,omitempty"`

	// Notes holds note text attached to this event.
	Notes []string `json:"notes,omitempty"`

	// Lineno is the source line this event was parsed from.
	Lineno int `json:"lineno,omitempty"`

	// Disambiguation is the additive disambiguator/scorer output.
	Disambiguation *Disambiguation `json:"disambiguation,omitempty"`

	// Diagnostics holds additive stage-local issue flags.
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

// DateValue is the event date block: the raw source text plus the
// normalized ISO form and its precision.
type DateValue struct {
	// Raw is the source date text, preserved verbatim.
	Raw string `json:"raw,omitempty"`

	// Normalized is the ISO form ("1789", "1789-07", "1789-07-14").
	Normalized string `json:"normalized,omitempty"`

	// Precision is 1 (year), 2 (month) or 3 (day); 0 when unparseable.
	Precision int `json:"precision,omitempty"`

	// Modifier is a source qualifier such as "ABT" or "BEF".
	Modifier string `json:"modifier,omitempty"`
}

// StandardPlace is the standardizer output for one event.
type StandardPlace struct {
	// Raw echoes the event's raw place text.
	Raw string `json:"raw"`

	// Normalized is the canonical display form of the place text.
	Normalized string `json:"normalized"`

	// PlaceID is the lower-cased canonical key of Normalized.
	PlaceID string `json:"place_id"`
}

// Disambiguation is the additive per-event disambiguator/scorer block.
type Disambiguation struct {
	// Group is the (tag, subtype) grouping key this event was scored in.
	Group string `json:"group,omitempty"`

	// GroupSize is the number of events sharing the group.
	GroupSize int `json:"group_size,omitempty"`

	// Score is the heuristic quality score (0-100).
	Score int `json:"score"`

	// Similarity is the best pairwise similarity to another group member.
	Similarity float64 `json:"similarity,omitempty"`

	// Primary marks the single best candidate per group.
	Primary bool `json:"primary"`

	// Tie is set when the primary was chosen among equal scores.
	Tie bool `json:"tie,omitempty"`

	// Conflict is set when the group plausibly describes one real-world
	// occurrence recorded more than once.
	Conflict bool `json:"conflict,omitempty"`
}

// Place is a deduplicated canonical physical location. Records are only
// ever updated additively: counts reflect the full event scan, samples are
// appended up to a cap, and records are never replaced or removed.
type Place struct {
	// ID is the place key: the lower-cased canonical string derived from
	// the standardized place text.
	ID string `json:"id"`

	// Display is the canonical display string.
	Display string `json:"display"`

	// Samples is a bounded list of distinct raw input variants.
	Samples []string `json:"samples,omitempty"`

	// Counts holds usage counters, recomputed from the event scan.
	Counts PlaceCounts `json:"counts"`

	// ParentID links to the coarser-grained parent place, if any. Every
	// place has at most one parent, so the hierarchy is a forest.
	ParentID string `json:"parent_id,omitempty"`

	// Generated marks synthetic records created by the hierarchy builder.
	Generated *Generated `json:"generated,omitempty"`
}

// PlaceCounts holds place usage counters.
type PlaceCounts struct {
	Events           int `json:"events"`
	IndividualEvents int `json:"individual_events"`
	FamilyEvents     int `json:"family_events"`
}

// JurisdictionSystem identifies an administrative, legal or ecclesiastical
// authority frame. Records are immutable once created within a run; new
// systems may only be appended.
type JurisdictionSystem struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Generated *Generated `json:"generated,omitempty"`
}

// TemporalBucket is the supported coarse time-interval kind.
type TemporalBucket string

// BucketYear is the only bucket kind currently supported.
const BucketYear TemporalBucket = "year"

// Temporal is a coarse time interval scoping a place version. Either Year
// is set (1..9999) or OpenEnded is true.
type Temporal struct {
	Bucket    TemporalBucket `json:"bucket"`
	Year      int            `json:"year,omitempty"`
	OpenEnded bool           `json:"open_ended,omitempty"`
}

// PlaceVersion is a time-bound, jurisdiction-scoped interpretation of a
// place. Its identity is the tuple (place_id, jurisdiction_system_id,
// temporal bucket); the ID is a deterministic hash of that tuple.
type PlaceVersion struct {
	ID                   string           `json:"id"`
	PlaceID              string           `json:"place_id"`
	JurisdictionSystemID string           `json:"jurisdiction_system_id"`
	Temporal             Temporal         `json:"temporal"`
	Generated            *Generated       `json:"generated,omitempty"`
	Meta                 PlaceVersionMeta `json:"meta"`
}

// PlaceVersionMeta holds place-version usage counters.
type PlaceVersionMeta struct {
	Events           int `json:"events"`
	IndividualEvents int `json:"individual_events"`
	FamilyEvents     int `json:"family_events"`
}

// PlaceRef links an event to exactly one place version. It restates the
// jurisdiction system and temporal bucket for convenience, and must
// reference the same place_id as its owning event.
type PlaceRef struct {
	PlaceID              string     `json:"place_id"`
	PlaceVersionID       string     `json:"place_version_id"`
	JurisdictionSystemID string     `json:"jurisdiction_system_id"`
	Temporal             Temporal   `json:"temporal"`
	Generated            *Generated `json:"generated,omitempty"`
}

// Generated is the tagged provenance record attached to any derived field:
// which component produced it, under which rule, and with what confidence.
type Generated struct {
	By                  string  `json:"by"`
	Rule                string  `json:"rule"`
	Inferred            bool    `json:"inferred"`
	EnrichmentCandidate bool    `json:"enrichment_candidate,omitempty"`
	Confidence          float64 `json:"confidence"`
}

// Diagnostic is an additive, inspectable issue flag embedded in the
// document by a stage that recovered from a local problem.
type Diagnostic struct {
	// Kind classifies the issue (e.g. "unresolved_reference").
	Kind string `json:"kind"`

	// Field names the offending field, if any.
	Field string `json:"field,omitempty"`

	// Message is the human-readable detail.
	Message string `json:"message"`
}

// Node is the boundary type consumed from the external tokenizer: one node
// of the raw tagged tree.
type Node struct {
	Level    int     `json:"level"`
	Tag      string  `json:"tag"`
	Value    string  `json:"value,omitempty"`
	Children []*Node `json:"children,omitempty"`
}

// New returns an empty document at the current schema version.
func New() *Document {
	return &Document{
		Meta:        &Meta{SchemaVersion: SchemaVersion},
		Individuals: make(map[string]*Individual),
		Families:    make(map[string]*Family),
	}
}

// sortedKeys returns map keys in lexicographic order. Registry iteration
// must never depend on Go map order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IndividualPointers returns individual pointers in lexicographic order.
func (d *Document) IndividualPointers() []string {
	return sortedKeys(d.Individuals)
}

// FamilyPointers returns family pointers in lexicographic order.
func (d *Document) FamilyPointers() []string {
	return sortedKeys(d.Families)
}

// PlaceIDs returns place ids in lexicographic order.
func (d *Document) PlaceIDs() []string {
	return sortedKeys(d.Places)
}

// PlaceVersionIDs returns place version ids in lexicographic order.
func (d *Document) PlaceVersionIDs() []string {
	return sortedKeys(d.PlaceVersions)
}

// EventGroup names which registry an event's owner belongs to.
type EventGroup string

// Event owner groups.
const (
	GroupIndividuals EventGroup = "individuals"
	GroupFamilies    EventGroup = "families"
)

// WalkEvents visits every event of every individual, then every family, in
// lexicographic pointer order. The visit order is deterministic so that
// derived output never depends on map iteration.
func (d *Document) WalkEvents(fn func(group EventGroup, pointer string, ev *Event)) {
	for _, ptr := range d.IndividualPointers() {
		for _, ev := range d.Individuals[ptr].Events {
			fn(GroupIndividuals, ptr, ev)
		}
	}
	for _, ptr := range d.FamilyPointers() {
		for _, ev := range d.Families[ptr].Events {
			fn(GroupFamilies, ptr, ev)
		}
	}
}

// AddDiagnostic appends a diagnostic to the event unless an identical one
// is already present. Deduplication keeps stages idempotent.
func (e *Event) AddDiagnostic(diag Diagnostic) bool {
	for _, existing := range e.Diagnostics {
		if existing == diag {
			return false
		}
	}
	e.Diagnostics = append(e.Diagnostics, diag)
	return true
}

// AddDiagnostic appends a diagnostic to the individual unless already present.
func (i *Individual) AddDiagnostic(diag Diagnostic) bool {
	for _, existing := range i.Diagnostics {
		if existing == diag {
			return false
		}
	}
	i.Diagnostics = append(i.Diagnostics, diag)
	return true
}

// AddDiagnostic appends a diagnostic to the family unless already present.
func (f *Family) AddDiagnostic(diag Diagnostic) bool {
	for _, existing := range f.Diagnostics {
		if existing == diag {
			return false
		}
	}
	f.Diagnostics = append(f.Diagnostics, diag)
	return true
}
