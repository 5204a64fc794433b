package meters

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/curbworks/meterclub/internal/geo"
)

// IDAllocator hands out sequential cluster identifiers ("C00001", "C00002",
// and so on). One allocator is threaded through every signature group so identifiers
// are unique and reproducible across the whole run.
type IDAllocator struct {
	next int
}

// NewIDAllocator returns an allocator starting at C00001.
func NewIDAllocator() *IDAllocator {
	return &IDAllocator{next: 1}
}

// Next returns the next fixed-width cluster identifier.
func (a *IDAllocator) Next() string {
	id := fmt.Sprintf("C%05d", a.next)
	a.next++
	return id
}

// Aggregate turns one signature group's partition into summary and membership
// rows. labels must hold one cluster label per meter in group, numbered
// 0..K-1 as the cluster package produces them; components are materialized in
// ascending label order so id allocation is reproducible.
func Aggregate(group []Meter, labels []int, alloc *IDAllocator) ([]ClusterRow, []MemberRow) {
	if len(group) == 0 {
		return nil, nil
	}

	maxLabel := 0
	for _, l := range labels {
		if l > maxLabel {
			maxLabel = l
		}
	}
	components := make([][]Meter, maxLabel+1)
	for i, m := range group {
		components[labels[i]] = append(components[labels[i]], m)
	}

	var clusters []ClusterRow
	var members []MemberRow
	for _, component := range components {
		if len(component) == 0 {
			continue
		}
		id := alloc.Next()
		clusters = append(clusters, summarize(id, component))
		for _, m := range component {
			members = append(members, MemberRow{
				ClusterID:    id,
				PostID:       m.PostID,
				Lat:          m.Lat,
				Lon:          m.Lon,
				StreetName:   m.StreetName,
				StreetNum:    m.StreetNum,
				BlockfaceID:  m.BlockfaceID,
				CapColor:     m.CapColor,
				ScheduleHash: m.Signature.Hash,
			})
		}
	}
	return clusters, members
}

// summarize builds the summary row for one connected component. The centroid
// is the unweighted arithmetic mean of member coordinates, a planar
// approximation, fine at the few-tens-of-metres extent clusters have. The max
// distance from centroid is a diagnostic only; it never re-splits a cluster.
func summarize(id string, component []Meter) ClusterRow {
	lats := make([]float64, len(component))
	lons := make([]float64, len(component))
	postIDs := make([]string, len(component))
	streets := make([]string, len(component))
	caps := make([]string, len(component))
	for i, m := range component {
		lats[i] = m.Lat
		lons[i] = m.Lon
		postIDs[i] = m.PostID
		streets[i] = m.StreetName
		caps[i] = m.CapColor
	}

	centroidLat := stat.Mean(lats, nil)
	centroidLon := stat.Mean(lons, nil)

	maxR := 0.0
	for _, m := range component {
		if d := geo.DistanceM(centroidLat, centroidLon, m.Lat, m.Lon); d > maxR {
			maxR = d
		}
	}

	blockSet := make(map[string]bool)
	for _, m := range component {
		if m.BlockfaceID != "" {
			blockSet[m.BlockfaceID] = true
		}
	}
	blockfaces := make([]string, 0, len(blockSet))
	for b := range blockSet {
		blockfaces = append(blockfaces, b)
	}
	sort.Strings(blockfaces)
	sort.Strings(postIDs)

	return ClusterRow{
		ClusterID:        id,
		ScheduleHash:     component[0].Signature.Hash,
		CountMeters:      len(component),
		PostIDs:          strings.Join(postIDs, Delimiter),
		CentroidLat:      centroidLat,
		CentroidLon:      centroidLon,
		ApproxMaxRadiusM: math.Round(maxR*100) / 100,
		StreetNameMode:   Mode(streets),
		CapColorMode:     Mode(caps),
		BlockfaceIDs:     strings.Join(blockfaces, Delimiter),
		ScheduleJSON:     component[0].Signature.JSON(),
	}
}
