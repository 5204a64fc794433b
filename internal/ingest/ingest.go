// Package ingest builds the tidy per-time-slice schedule table by joining the
// municipal "Meter Operating Schedules" export with the "Parking Meters"
// inventory export. It is plain ETL: header mapping, value normalization, a
// left join and a tidy CSV. This is the stage that produces the input the
// clustering command consumes.
package ingest

import (
	"regexp"
	"strconv"
	"strings"
)

// ScheduleRow is one normalized operating-schedule record.
type ScheduleRow struct {
	PostID            string
	StreetAndBlock    string
	BlockSide         string
	CapColor          string
	ScheduleType      string
	AppliedRule       string
	Priority          *int
	Days              string
	FromTime          string
	ToTime            string
	TimeLimitMin      *int
	ActiveMeterStatus string
	MeterState        string
}

// MeterInfo is the inventory subset joined onto each schedule row.
type MeterInfo struct {
	StreetName           string
	StreetNum            string
	Longitude            string
	Latitude             string
	Jurisdiction         string
	PMDistrictID         string
	BlockfaceID          string
	AnalysisNeighborhood string
	SupervisorDistrict   string
	OnOffstreetType      string
	MeterType            string
	MeterVendor          string
	MeterModel           string
	CapColor             string
}

var firstInteger = regexp.MustCompile(`\d+`)

// parseFirstInt extracts the first run of digits ("2 Hours" yields 2), nil
// when none exists.
func parseFirstInt(s string) *int {
	m := firstInteger.FindString(s)
	if m == "" {
		return nil
	}
	v, err := strconv.Atoi(m)
	if err != nil {
		return nil
	}
	return &v
}

// ParseTimeLimitMinutes parses a raw time-limit cell into integer minutes.
func ParseTimeLimitMinutes(s string) *int {
	return parseFirstInt(s)
}

// CleanAppliedRule drops the "-" placeholder noise the export uses for empty
// rule cells.
func CleanAppliedRule(s string) string {
	if strings.Trim(s, " -") == "" {
		return ""
	}
	return s
}

// DeriveMeterState maps the raw schedule attributes onto a human-readable
// state label such as "Tow-away" or "Commercial Loading (metered)".
func DeriveMeterState(scheduleType, appliedRule, capColor string) string {
	st := strings.ToLower(strings.TrimSpace(scheduleType))
	rule := strings.TrimSpace(appliedRule)
	ruleLower := strings.ToLower(rule)
	color := strings.TrimSpace(capColor)

	switch {
	case strings.Contains(st, "tow"):
		return "Tow-away"
	case strings.Contains(st, "operating") || strings.Contains(st, "operate"):
		switch {
		case strings.Contains(ruleLower, "commercial"):
			return "Commercial Loading (metered)"
		case strings.Contains(ruleLower, "general"):
			return "General Metered"
		case rule != "":
			return rule
		default:
			return "Metered"
		}
	case strings.Contains(st, "alternate"):
		alt := rule
		if alt == "" {
			alt = color
		}
		if alt == "" {
			alt = "Rule"
		}
		return "Alternate: " + alt
	}
	for _, fallback := range []string{scheduleType, rule, color} {
		if v := strings.TrimSpace(fallback); v != "" {
			return v
		}
	}
	return "Schedule"
}

// weekdayOrder and weekdayLong drive day parsing and day explosion.
var weekdayOrder = [7]string{"Mo", "Tu", "We", "Th", "Fr", "Sa", "Su"}

var weekdayLong = map[string]string{
	"Mo": "Monday",
	"Tu": "Tuesday",
	"We": "Wednesday",
	"Th": "Thursday",
	"Fr": "Friday",
	"Sa": "Saturday",
	"Su": "Sunday",
}

// ParseDays normalizes a raw day list ("MON, tue") to canonical two-letter
// codes in weekday order, dropping anything unrecognisable.
func ParseDays(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "nan") || strings.EqualFold(s, "none") {
		return nil
	}
	present := make(map[string]bool)
	for _, raw := range strings.Split(s, ",") {
		tok := strings.TrimSpace(raw)
		if len(tok) < 2 {
			continue
		}
		two := strings.ToUpper(tok[:1]) + strings.ToLower(tok[1:2])
		present[two] = true
	}
	var out []string
	for _, d := range weekdayOrder {
		if present[d] {
			out = append(out, d)
		}
	}
	return out
}
