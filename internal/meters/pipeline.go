package meters

import (
	"github.com/curbworks/meterclub/internal/cluster"
	"github.com/curbworks/meterclub/internal/schedule"
)

// BuildMeters groups rows by post id (first-seen order) and condenses each
// group into one Meter: mean coordinates, per-field modes and the schedule
// signature over all of the meter's rows.
func BuildMeters(rows []RawRow, signatureFields []string) []Meter {
	var order []string
	grouped := make(map[string][]RawRow)
	for _, r := range rows {
		pid := r.PostID()
		if _, seen := grouped[pid]; !seen {
			order = append(order, pid)
		}
		grouped[pid] = append(grouped[pid], r)
	}

	out := make([]Meter, 0, len(order))
	for _, pid := range order {
		group := grouped[pid]

		var sumLat, sumLon float64
		streets := make([]string, len(group))
		nums := make([]string, len(group))
		blocks := make([]string, len(group))
		caps := make([]string, len(group))
		sources := make([]schedule.RowSource, len(group))
		for i, r := range group {
			lat, lon := r.Coord()
			sumLat += lat
			sumLon += lon
			streets[i] = r.Field("street_name")
			nums[i] = r.Field("street_num")
			blocks[i] = r.Field("blockface_id")
			caps[i] = r.Field("cap_color")
			sources[i] = r
		}

		out = append(out, Meter{
			PostID:      pid,
			Lat:         sumLat / float64(len(group)),
			Lon:         sumLon / float64(len(group)),
			StreetName:  Mode(streets),
			StreetNum:   Mode(nums),
			BlockfaceID: Mode(blocks),
			CapColor:    Mode(caps),
			Signature:   schedule.Build(sources, signatureFields),
		})
	}
	return out
}

// Club runs the full partitioning pass: meters grouped by signature hash
// (first-seen order), each group spatially clustered, each component
// aggregated under one shared id allocator. Every meter lands in exactly one
// cluster; the two returned tables are consistent by construction.
func Club(all []Meter, c *cluster.Clusterer) ([]ClusterRow, []MemberRow) {
	var hashOrder []string
	groups := make(map[string][]Meter)
	for _, m := range all {
		h := m.Signature.Hash
		if _, seen := groups[h]; !seen {
			hashOrder = append(hashOrder, h)
		}
		groups[h] = append(groups[h], m)
	}

	alloc := NewIDAllocator()
	var clusters []ClusterRow
	var members []MemberRow
	for _, h := range hashOrder {
		group := groups[h]
		points := make([]cluster.Point, len(group))
		for i, m := range group {
			points[i] = cluster.Point{Lat: m.Lat, Lon: m.Lon}
		}
		labels := c.Labels(points)

		groupClusters, groupMembers := Aggregate(group, labels, alloc)
		clusters = append(clusters, groupClusters...)
		members = append(members, groupMembers...)
	}
	return clusters, members
}
