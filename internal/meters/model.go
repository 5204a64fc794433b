// Package meters builds per-meter records from tidy schedule rows, groups
// them by schedule signature, spatially clusters each group and aggregates
// the result into the cluster summary and membership tables.
package meters

import (
	"strings"

	"github.com/curbworks/meterclub/internal/schedule"
)

// Delimiter joins multi-valued output cells (post id and blockface lists).
const Delimiter = "|"

// RawRow is one tidy input row, as produced by the metertable reader. The
// interface keeps this package independent of the CSV layer.
type RawRow interface {
	schedule.RowSource
	PostID() string
	Coord() (lat, lon float64)
}

// Meter is one physical meter: its identifier, mean position across its input
// rows, representative categorical attributes and its schedule signature.
// Built once per distinct post id, never mutated afterwards.
type Meter struct {
	PostID      string
	Lat         float64
	Lon         float64
	StreetName  string
	StreetNum   string
	BlockfaceID string
	CapColor    string
	Signature   schedule.Signature
}

// ClusterRow is one row of the cluster summary table.
type ClusterRow struct {
	ClusterID        string
	ScheduleHash     string
	CountMeters      int
	PostIDs          string
	CentroidLat      float64
	CentroidLon      float64
	ApproxMaxRadiusM float64
	StreetNameMode   string
	CapColorMode     string
	BlockfaceIDs     string
	ScheduleJSON     string
}

// MemberRow is one row of the membership table: a meter mapped to its owning
// cluster, with the signature hash denormalized for convenience.
type MemberRow struct {
	ClusterID    string
	PostID       string
	Lat          float64
	Lon          float64
	StreetName   string
	StreetNum    string
	BlockfaceID  string
	CapColor     string
	ScheduleHash string
}

// Mode returns the most frequent non-empty value. When several values are
// equally frequent the winner is the one that first reached the maximal count
// while scanning in input order. That tie-break is deterministic and
// documented, not a semantic promise.
func Mode(values []string) string {
	counts := make(map[string]int)
	best := ""
	bestCount := 0
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		counts[v]++
		if counts[v] > bestCount {
			best = v
			bestCount = counts[v]
		}
	}
	return best
}
