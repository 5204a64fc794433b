package metertable

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/curbworks/meterclub/internal/meters"
)

var clusterHeader = []string{
	"cluster_id", "schedule_hash", "count_meters", "post_ids",
	"centroid_latitude", "centroid_longitude", "approx_max_radius_m",
	"street_name_mode", "cap_color_mode", "blockface_ids", "schedule_json",
}

var memberHeader = []string{
	"cluster_id", "post_id", "latitude", "longitude",
	"street_name", "street_num", "blockface_id", "cap_color", "schedule_hash",
}

// formatCoord renders a coordinate with full float precision, the shortest
// form that round-trips.
func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteClusters writes the cluster summary table.
func WriteClusters(w io.Writer, rows []meters.ClusterRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(clusterHeader); err != nil {
		return fmt.Errorf("write cluster header: %w", err)
	}
	for _, r := range rows {
		record := []string{
			r.ClusterID,
			r.ScheduleHash,
			strconv.Itoa(r.CountMeters),
			r.PostIDs,
			formatCoord(r.CentroidLat),
			formatCoord(r.CentroidLon),
			strconv.FormatFloat(r.ApproxMaxRadiusM, 'f', 2, 64),
			r.StreetNameMode,
			r.CapColorMode,
			r.BlockfaceIDs,
			r.ScheduleJSON,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write cluster row %s: %w", r.ClusterID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteMembers writes the membership table.
func WriteMembers(w io.Writer, rows []meters.MemberRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(memberHeader); err != nil {
		return fmt.Errorf("write member header: %w", err)
	}
	for _, r := range rows {
		record := []string{
			r.ClusterID,
			r.PostID,
			formatCoord(r.Lat),
			formatCoord(r.Lon),
			r.StreetName,
			r.StreetNum,
			r.BlockfaceID,
			r.CapColor,
			r.ScheduleHash,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write member row %s: %w", r.PostID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
