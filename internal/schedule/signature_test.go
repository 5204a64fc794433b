package schedule

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

// fakeRow is a map-backed RowSource for tests.
type fakeRow map[string]string

func (r fakeRow) Field(name string) string { return r[name] }

func rowSources(rows ...fakeRow) []RowSource {
	out := make([]RowSource, len(rows))
	for i, r := range rows {
		out[i] = r
	}
	return out
}

var sigTestRows = []fakeRow{
	{"days": "Mo,Tu,We,Th,Fr", "from_time": "7:00 AM", "to_time": "6:00 PM", "time_limit_min": "120", "meter_state": "General Metered", "cap_color": "Grey"},
	{"days": "Sa", "from_time": "07:00", "to_time": "18:00", "time_limit_min": "240", "meter_state": "General Metered", "cap_color": "Grey"},
	{"days": "Su", "meter_state": "Tow-away"},
}

func TestBuild_OrderIndependent(t *testing.T) {
	a, b, c := sigTestRows[0], sigTestRows[1], sigTestRows[2]

	base := Build(rowSources(a, b, c), nil)
	permutations := [][]RowSource{
		rowSources(a, c, b),
		rowSources(b, a, c),
		rowSources(b, c, a),
		rowSources(c, a, b),
		rowSources(c, b, a),
	}
	for i, perm := range permutations {
		got := Build(perm, nil)
		require.Equal(t, base.Hash, got.Hash, "permutation %d changed the hash", i)
		if diff := cmp.Diff(base.Entries, got.Entries); diff != "" {
			t.Errorf("permutation %d changed entries (-base +got):\n%s", i, diff)
		}
	}
}

func TestBuild_DuplicateRowsCollapse(t *testing.T) {
	a, b := sigTestRows[0], sigTestRows[1]

	base := Build(rowSources(a, b), nil)
	doubled := Build(rowSources(a, a, b, a, b), nil)

	require.Equal(t, base.Hash, doubled.Hash)
	require.Len(t, doubled.Entries, 2)
}

func TestBuild_NormalizedFormsCollapse(t *testing.T) {
	// "7:00 AM".."6:00 PM" and "07:00".."18:00" describe the same slice once
	// normalized, so they must count as one entry.
	a := fakeRow{"days": "Mo,Tu", "from_time": "7:00 AM", "to_time": "6:00 PM"}
	b := fakeRow{"days": "Tu,Mo", "from_time": "07:00", "to_time": "18:00"}

	sig := Build(rowSources(a, b), nil)
	require.Len(t, sig.Entries, 1)
	require.Equal(t, "Mo,Tu", sig.Entries[0]["days"])
	require.Equal(t, "07:00", sig.Entries[0]["from_time"])
	require.Equal(t, "18:00", sig.Entries[0]["to_time"])
}

func TestBuild_SensitiveToEveryField(t *testing.T) {
	base := Build(rowSources(sigTestRows...), nil)

	for _, field := range DefaultSignatureFields {
		mutated := make([]fakeRow, len(sigTestRows))
		for i, r := range sigTestRows {
			mutated[i] = fakeRow{}
			for k, v := range r {
				mutated[i][k] = v
			}
		}
		switch field {
		case "days":
			mutated[0]["days"] = "Mo,Tu,We,Th,Fr,Sa"
		case "from_time":
			mutated[0]["from_time"] = "8:00 AM"
		case "to_time":
			mutated[0]["to_time"] = "5:00 PM"
		default:
			mutated[0][field] = mutated[0][field] + "x"
		}
		got := Build(rowSources(mutated[0], mutated[1], mutated[2]), nil)
		require.NotEqual(t, base.Hash, got.Hash, "changing %s did not change the hash", field)
	}
}

func TestBuild_AbsentFieldsAreEmptyStrings(t *testing.T) {
	sig := Build(rowSources(fakeRow{"days": "Mo"}), nil)
	require.Len(t, sig.Entries, 1)
	for _, f := range DefaultSignatureFields {
		_, ok := sig.Entries[0][f]
		require.True(t, ok, "field %s missing from entry", f)
	}
	require.Equal(t, "", sig.Entries[0]["from_time"])
	require.Equal(t, "", sig.Entries[0]["cap_color"])
}

func TestSignatureJSON_CanonicalAndParseable(t *testing.T) {
	sig := Build(rowSources(sigTestRows...), nil)

	var decoded []map[string]string
	require.NoError(t, json.Unmarshal([]byte(sig.JSON()), &decoded))
	require.Len(t, decoded, len(sig.Entries))

	require.Equal(t, "[]", Signature{}.JSON())
}

func TestBuild_EmptyRowSet(t *testing.T) {
	sig := Build(nil, nil)
	require.Empty(t, sig.Entries)
	require.NotEmpty(t, sig.Hash)
}
