package metertable

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// Row is one tidy input row with coordinates already coerced. It satisfies
// meters.RawRow.
type Row struct {
	postID string
	lat    float64
	lon    float64
	fields map[string]string
}

// PostID returns the meter identifier.
func (r Row) PostID() string { return r.postID }

// Coord returns the row's WGS84 coordinates.
func (r Row) Coord() (lat, lon float64) { return r.lat, r.lon }

// Field returns the named optional column value, "" when the column was
// absent from the input.
func (r Row) Field(name string) string { return r.fields[name] }

// ReadStats counts what the reader saw and what it silently dropped.
type ReadStats struct {
	RowsRead    int
	RowsDropped int
}

// ReadRows parses the tidy input table. A missing required column is fatal
// and reported via MissingColumnsError. Rows whose coordinates fail float
// coercion, or whose post_id is empty, are dropped silently and counted; a
// meter whose every row is dropped this way simply never exists downstream.
func ReadRows(r io.Reader) ([]Row, ReadStats, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ReadStats{}, &MissingColumnsError{Columns: RequiredColumns}
	}
	if err != nil {
		return nil, ReadStats{}, fmt.Errorf("read input header: %w", err)
	}

	schema, err := ResolveSchema(header)
	if err != nil {
		return nil, ReadStats{}, err
	}

	var rows []Row
	var stats ReadStats
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, ReadStats{}, fmt.Errorf("read input row %d: %w", stats.RowsRead+2, err)
		}
		stats.RowsRead++

		postID := schema.value(record, "post_id")
		lat, latErr := strconv.ParseFloat(schema.value(record, "latitude"), 64)
		lon, lonErr := strconv.ParseFloat(schema.value(record, "longitude"), 64)
		if postID == "" || latErr != nil || lonErr != nil {
			stats.RowsDropped++
			continue
		}

		fields := make(map[string]string, len(OptionalColumns))
		for _, c := range OptionalColumns {
			if v := schema.value(record, c); v != "" {
				fields[c] = v
			}
		}
		rows = append(rows, Row{postID: postID, lat: lat, lon: lon, fields: fields})
	}
	return rows, stats, nil
}
