// Package metertable reads the tidy per-meter-per-slice input table and
// writes the two derived output tables.
//
// The input schema is resolved exactly once from the CSV header into explicit
// column indices; optional columns that are absent degrade to empty values on
// every row rather than being probed dynamically.
package metertable

import (
	"fmt"
	"strings"
)

// RequiredColumns must all be present in the input header; anything missing
// is a fatal error before any row is processed.
var RequiredColumns = []string{"post_id", "longitude", "latitude"}

// OptionalColumns are consumed when present and default to "" when absent.
var OptionalColumns = []string{
	"days", "day", "from_time", "to_time", "time_limit_min",
	"meter_state", "schedule_type", "applied_rule", "cap_color",
	"street_name", "street_num", "blockface_id",
}

// MissingColumnsError reports which required columns the input lacks.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing required columns in input CSV: %s", strings.Join(e.Columns, ", "))
}

// Schema maps column names to indices in the input header. A -1 index marks
// an absent optional column.
type Schema struct {
	index map[string]int
}

// ResolveSchema validates the header against the required columns and records
// the position of every known column. Header names are whitespace-trimmed;
// unknown columns are ignored.
func ResolveSchema(header []string) (*Schema, error) {
	pos := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if _, dup := pos[name]; !dup {
			pos[name] = i
		}
	}

	var missing []string
	for _, c := range RequiredColumns {
		if _, ok := pos[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Columns: missing}
	}

	s := &Schema{index: make(map[string]int, len(RequiredColumns)+len(OptionalColumns))}
	for _, c := range RequiredColumns {
		s.index[c] = pos[c]
	}
	for _, c := range OptionalColumns {
		if i, ok := pos[c]; ok {
			s.index[c] = i
		} else {
			s.index[c] = -1
		}
	}
	return s, nil
}

// value extracts the named column from one CSV record, "" for absent columns
// or short records.
func (s *Schema) value(record []string, column string) string {
	i, ok := s.index[column]
	if !ok || i < 0 || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}
