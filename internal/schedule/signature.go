package schedule

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"sort"
)

// DefaultSignatureFields is the ordered field list that defines "same
// schedule" unless the caller overrides it.
var DefaultSignatureFields = []string{
	"days", "from_time", "to_time", "time_limit_min",
	"meter_state", "schedule_type", "applied_rule", "cap_color",
}

// RowSource exposes named field access on one raw schedule-slice row. Absent
// fields must yield "", never an error.
type RowSource interface {
	Field(name string) string
}

// Entry is one normalized schedule slice as a field-to-value record. Values are
// canonical strings; absent inputs are "".
type Entry map[string]string

// Signature is the canonical, order-independent fingerprint of a meter's full
// schedule slice set: the deduplicated, sorted entries plus a stable hash over
// their canonical serialization. The hash is the equality key used for
// grouping; the entries exist for display.
type Signature struct {
	Hash    string
	Entries []Entry
}

// JSON returns the canonical serialization of the signature entries, the
// exact bytes the hash was computed over.
func (s Signature) JSON() string {
	return canonicalEntriesJSON(s.Entries)
}

// Build constructs the signature for one meter from all of its raw rows.
//
// Each row is normalized into an Entry: day tokens through CanonicalDays
// (with the single-day "day" column as fallback), times through NormalizeTime,
// everything else taken verbatim. Identical entries collapse to one, the
// survivors are sorted by their canonical serialization, and the hash is a
// sha1 hex digest over the serialized sorted list. The result is a pure
// function of the set of distinct normalized entries: row order and duplicate
// rows cannot change it.
func Build(rows []RowSource, fields []string) Signature {
	if len(fields) == 0 {
		fields = DefaultSignatureFields
	}

	uniq := make(map[string]Entry, len(rows))
	for _, r := range rows {
		e := make(Entry, len(fields))
		for _, f := range fields {
			switch f {
			case "days":
				e["days"] = CanonicalDays(r.Field("days"), r.Field("day"))
			case "from_time":
				e["from_time"] = NormalizeTime(r.Field("from_time"))
			case "to_time":
				e["to_time"] = NormalizeTime(r.Field("to_time"))
			default:
				e[f] = r.Field(f)
			}
		}
		uniq[canonicalEntryJSON(e)] = e
	}

	keys := make([]string, 0, len(uniq))
	for k := range uniq {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	entries := make([]Entry, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, uniq[k])
	}

	sum := sha1.Sum([]byte(canonicalEntriesJSON(entries)))
	return Signature{
		Hash:    hex.EncodeToString(sum[:]),
		Entries: entries,
	}
}

// canonicalEntryJSON serializes one entry deterministically. encoding/json
// marshals map keys in sorted order, which is exactly the canonical field
// ordering the hash relies on.
func canonicalEntryJSON(e Entry) string {
	b, err := json.Marshal(map[string]string(e))
	if err != nil {
		// Marshalling a map[string]string cannot fail.
		panic(err)
	}
	return string(b)
}

func canonicalEntriesJSON(entries []Entry) string {
	if len(entries) == 0 {
		return "[]"
	}
	b, err := json.Marshal(entries)
	if err != nil {
		panic(err)
	}
	return string(b)
}
