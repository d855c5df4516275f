// Package identity derives stable, content-derived identifiers for
// canonicalization. Every function is pure: equal input tuples always yield
// equal identifiers, independent of process lifetime, insertion order, or
// container iteration order. When a required field is missing the functions
// fail closed, returning ok=false instead of hashing partial data, so callers
// can route to an explicit fallback.
package identity

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"

	"github.com/plattline/gencanon/core/document"
)

// Fixed namespaces for deterministic record and event UUIDs.
var (
	recordNamespace = uuid.MustParse("c7a6f962-4b2e-4d30-9b21-9a9daf0d2b11")
	eventNamespace  = uuid.MustParse("5b1d3a84-0f6c-49ce-a3a7-2e4f8f6d9c02")
)

// versionIDLen is the hex length of a place-version identifier hash.
const versionIDLen = 20

// RecordUUID returns the durable identifier for a top-level record, keyed
// solely by its record type and source pointer. Fails closed on a missing
// pointer or invalid record type.
func RecordUUID(recordType document.RecordType, pointer string) (string, bool) {
	if pointer == "" || !recordType.IsValid() {
		return "", false
	}
	key := fmt.Sprintf("record|%s|%s", recordType, pointer)
	return uuid.NewSHA1(recordNamespace, []byte(key)).String(), true
}

// EventUUID returns the deterministic identifier for one event instance,
// keyed by the owning record's uuid, the event tag, and the raw date and
// place strings. Fails closed when the record uuid or tag is missing.
func EventUUID(recordUUID, tag, rawDate, rawPlace string) (string, bool) {
	if recordUUID == "" || tag == "" {
		return "", false
	}
	key := fmt.Sprintf("event|%s|%s|%s|%s", recordUUID, tag, rawDate, rawPlace)
	return uuid.NewSHA1(eventNamespace, []byte(key)).String(), true
}

// PlaceID returns the canonical place key for a standardized place string:
// its lower-cased form. Fails closed on empty input.
func PlaceID(normalized string) (string, bool) {
	normalized = strings.TrimSpace(normalized)
	if normalized == "" {
		return "", false
	}
	return strings.ToLower(normalized), true
}

// PlaceVersionID returns the deterministic identifier for the place-version
// tuple (place_id, jurisdiction_system_id, temporal bucket). An open-ended
// temporal contributes the marker ".." instead of a year, so the same
// open-ended interpretation always hashes to the same version. Fails closed
// when the place or jurisdiction system is missing.
func PlaceVersionID(placeID, jurisdictionSystemID string, temporal document.Temporal) (string, bool) {
	if placeID == "" || jurisdictionSystemID == "" || temporal.Bucket == "" {
		return "", false
	}
	yearKey := ".."
	if !temporal.OpenEnded {
		if temporal.Year <= 0 {
			return "", false
		}
		yearKey = strconv.Itoa(temporal.Year)
	}
	key := fmt.Sprintf("%s|%s|%s", placeID, jurisdictionSystemID, yearKey)
	sum := blake3.Sum256([]byte(key))
	return "pv_" + hex.EncodeToString(sum[:])[:versionIDLen], true
}
