package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/curbworks/meterclub/internal/schedule"
)

// scheduleColumns maps the raw schedule export headers to canonical names.
// Every one of these must be present.
var scheduleColumns = map[string]string{
	"Post ID":             "post_id",
	"Street and Block":    "street_and_block",
	"Block Side":          "block_side",
	"Cap Color":           "cap_color_sched",
	"Schedule Type":       "schedule_type",
	"Applied Color Rule":  "applied_rule",
	"Priority":            "priority",
	"Days Applied":        "days",
	"From Time":           "from_time",
	"To Time":             "to_time",
	"Active Meter Status": "active_meter_status",
	"Time Limit":          "time_limit",
}

// MissingScheduleColumnsError reports absent required schedule headers.
type MissingScheduleColumnsError struct {
	Columns []string
}

func (e *MissingScheduleColumnsError) Error() string {
	return fmt.Sprintf("missing columns in schedule CSV: %s", strings.Join(e.Columns, ", "))
}

// headerIndex maps trimmed header names to positions.
func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if _, dup := idx[h]; !dup {
			idx[h] = i
		}
	}
	return idx
}

func cell(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

// LoadSchedules reads and normalizes the operating-schedule export.
func LoadSchedules(r io.Reader) ([]ScheduleRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read schedule header: %w", err)
	}
	idx := headerIndex(header)

	var missing []string
	for raw := range scheduleColumns {
		if _, ok := idx[raw]; !ok {
			missing = append(missing, raw)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, &MissingScheduleColumnsError{Columns: missing}
	}

	col := func(record []string, raw string) string {
		return cell(record, idx[raw])
	}

	var rows []ScheduleRow
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read schedule row %d: %w", line, err)
		}

		scheduleType := col(record, "Schedule Type")
		appliedRule := CleanAppliedRule(col(record, "Applied Color Rule"))
		capColor := col(record, "Cap Color")

		rows = append(rows, ScheduleRow{
			PostID:            col(record, "Post ID"),
			StreetAndBlock:    col(record, "Street and Block"),
			BlockSide:         col(record, "Block Side"),
			CapColor:          capColor,
			ScheduleType:      scheduleType,
			AppliedRule:       appliedRule,
			Priority:          parseFirstInt(col(record, "Priority")),
			Days:              col(record, "Days Applied"),
			FromTime:          schedule.NormalizeTime(col(record, "From Time")),
			ToTime:            schedule.NormalizeTime(col(record, "To Time")),
			TimeLimitMin:      ParseTimeLimitMinutes(col(record, "Time Limit")),
			ActiveMeterStatus: col(record, "Active Meter Status"),
			MeterState:        DeriveMeterState(scheduleType, appliedRule, capColor),
		})
	}
	return rows, nil
}

// LoadMeterInfo reads the inventory export into a post_id lookup. The join is
// best effort: whatever mapped columns exist are kept, the rest stay empty.
func LoadMeterInfo(r io.Reader) (map[string]MeterInfo, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read meters header: %w", err)
	}
	idx := headerIndex(header)

	pos := func(raw string) int {
		if i, ok := idx[raw]; ok {
			return i
		}
		return -1
	}
	postIdx := pos("POST_ID")
	if postIdx < 0 {
		return nil, fmt.Errorf("meters CSV has no POST_ID column")
	}

	info := make(map[string]MeterInfo)
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read meters row %d: %w", line, err)
		}
		pid := cell(record, postIdx)
		if pid == "" {
			continue
		}
		// First inventory row wins; the export is one row per post.
		if _, dup := info[pid]; dup {
			continue
		}
		info[pid] = MeterInfo{
			StreetName:           cell(record, pos("STREET_NAME")),
			StreetNum:            cell(record, pos("STREET_NUM")),
			Longitude:            cell(record, pos("LONGITUDE")),
			Latitude:             cell(record, pos("LATITUDE")),
			Jurisdiction:         cell(record, pos("JURISDICTION")),
			PMDistrictID:         cell(record, pos("PM_DISTRICT_ID")),
			BlockfaceID:          cell(record, pos("BLOCKFACE_ID")),
			AnalysisNeighborhood: cell(record, pos("analysis_neighborhood")),
			SupervisorDistrict:   cell(record, pos("supervisor_district")),
			OnOffstreetType:      cell(record, pos("ON_OFFSTREET_TYPE")),
			MeterType:            cell(record, pos("METER_TYPE")),
			MeterVendor:          cell(record, pos("METER_VENDOR")),
			MeterModel:           cell(record, pos("METER_MODEL")),
			CapColor:             cell(record, pos("CAP_COLOR")),
		}
	}
	return info, nil
}

// TidyRow is one output row of the joined table.
type TidyRow struct {
	Schedule ScheduleRow
	Info     MeterInfo
	// CapColor is the consolidated colour: inventory wins over schedule.
	CapColor string
	// Day is the long weekday name set by day explosion, "" otherwise.
	Day string
}

// BuildTidy left-joins inventory info onto the schedule rows, consolidates
// cap colour and sorts for readability (post id, priority, from, to; missing
// values last).
func BuildTidy(schedules []ScheduleRow, info map[string]MeterInfo) []TidyRow {
	rows := make([]TidyRow, 0, len(schedules))
	for _, s := range schedules {
		m := info[s.PostID]
		color := m.CapColor
		if color == "" {
			color = s.CapColor
		}
		rows = append(rows, TidyRow{Schedule: s, Info: m, CapColor: color})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].Schedule, rows[j].Schedule
		if a.PostID != b.PostID {
			return a.PostID < b.PostID
		}
		if pa, pb := a.Priority, b.Priority; pa != nil || pb != nil {
			switch {
			case pa == nil:
				return false
			case pb == nil:
				return true
			case *pa != *pb:
				return *pa < *pb
			}
		}
		if c := compareTimesEmptyLast(a.FromTime, b.FromTime); c != 0 {
			return c < 0
		}
		return compareTimesEmptyLast(a.ToTime, b.ToTime) < 0
	})
	return rows
}

// compareTimesEmptyLast orders canonical HH:MM strings with empties last.
func compareTimesEmptyLast(a, b string) int {
	switch {
	case a == b:
		return 0
	case a == "":
		return 1
	case b == "":
		return -1
	}
	return strings.Compare(a, b)
}

// ExplodeDays expands each row to one row per parsed weekday, filling Day
// with the long name. Rows with no parseable days survive with Day empty.
func ExplodeDays(rows []TidyRow) []TidyRow {
	var out []TidyRow
	for _, r := range rows {
		days := ParseDays(r.Schedule.Days)
		if len(days) == 0 {
			out = append(out, r)
			continue
		}
		for _, d := range days {
			exploded := r
			exploded.Day = weekdayLong[d]
			out = append(out, exploded)
		}
	}
	return out
}

// tidyColumns is the output column order, matching the downstream clustering
// input schema. The "day" column joins after "days" only when exploding.
var tidyColumns = []string{
	"post_id", "street_name", "street_num", "street_and_block", "block_side",
	"cap_color", "meter_state", "schedule_type", "applied_rule", "priority",
	"days", "from_time", "to_time", "time_limit_min", "active_meter_status",
	"longitude", "latitude", "pm_district_id", "blockface_id",
	"analysis_neighborhood", "supervisor_district", "on_offstreet_type",
	"meter_type", "meter_vendor", "meter_model", "jurisdiction",
}

func formatIntPtr(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

// WriteTidy writes the joined table as CSV. explodeDays inserts the per-day
// rows with the extra "day" column.
func WriteTidy(w io.Writer, rows []TidyRow, explodeDays bool) error {
	if explodeDays {
		rows = ExplodeDays(rows)
	}

	header := make([]string, 0, len(tidyColumns)+1)
	for _, c := range tidyColumns {
		header = append(header, c)
		if explodeDays && c == "days" {
			header = append(header, "day")
		}
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write tidy header: %w", err)
	}
	for _, r := range rows {
		s, m := r.Schedule, r.Info
		record := []string{
			s.PostID, m.StreetName, m.StreetNum, s.StreetAndBlock, s.BlockSide,
			r.CapColor, s.MeterState, s.ScheduleType, s.AppliedRule, formatIntPtr(s.Priority),
			s.Days,
		}
		if explodeDays {
			record = append(record, r.Day)
		}
		record = append(record,
			s.FromTime, s.ToTime, formatIntPtr(s.TimeLimitMin), s.ActiveMeterStatus,
			m.Longitude, m.Latitude, m.PMDistrictID, m.BlockfaceID,
			m.AnalysisNeighborhood, m.SupervisorDistrict, m.OnOffstreetType,
			m.MeterType, m.MeterVendor, m.MeterModel, m.Jurisdiction,
		)
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write tidy row for %s: %w", s.PostID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
