// Package schedule canonicalizes raw parking-meter schedule slices and builds
// order-independent schedule signatures from them.
//
// Municipal exports are messy: day lists arrive as "Mo,Tu,We", "MON, TUE" or a
// single long weekday name, and times as "7:00 AM", "07:00" or garbage. The
// normalizers here map all of that onto fixed textual forms so that two meters
// with the same effective schedule serialize identically.
package schedule

import (
	"strings"
	"time"
)

// dayOrder is the canonical weekday ordering used for day-set output.
var dayOrder = [7]string{"Mo", "Tu", "We", "Th", "Fr", "Sa", "Su"}

// longDayAbbr maps long weekday names to their two-letter codes.
var longDayAbbr = map[string]string{
	"monday":    "Mo",
	"tuesday":   "Tu",
	"wednesday": "We",
	"thursday":  "Th",
	"friday":    "Fr",
	"saturday":  "Sa",
	"sunday":    "Su",
}

// canonicalDay maps a raw day token to its two-letter code, or "" if the token
// is not a recognisable weekday. Tokens are matched on their first two letters,
// case-insensitively, so "MON", "mo" and "Monday" all map to "Mo".
func canonicalDay(token string) string {
	if len(token) < 2 {
		return ""
	}
	two := strings.ToUpper(token[:1]) + strings.ToLower(token[1:2])
	for _, d := range dayOrder {
		if two == d {
			return d
		}
	}
	return ""
}

// CanonicalDays normalizes a comma-separated day token list into the canonical
// ordered subset {Mo,Tu,We,Th,Fr,Sa,Su}, duplicates removed. Unrecognised
// tokens of length <= 3 are preserved after the canonical ones rather than
// silently dropped. When days is empty, a single long weekday name may be
// supplied as fallback (the exploded-days input shape); it maps to its
// two-letter code or "".
func CanonicalDays(days, fallbackLongDay string) string {
	if s := strings.TrimSpace(days); s != "" {
		present := make(map[string]bool)
		var extras []string
		for _, raw := range strings.Split(s, ",") {
			tok := strings.TrimSpace(raw)
			if tok == "" {
				continue
			}
			if d := canonicalDay(tok); d != "" {
				present[d] = true
			} else if len(tok) <= 3 && !present[tok] {
				present[tok] = true
				extras = append(extras, tok)
			}
		}
		out := make([]string, 0, len(present))
		for _, d := range dayOrder {
			if present[d] {
				out = append(out, d)
			}
		}
		out = append(out, extras...)
		return strings.Join(out, ",")
	}
	if s := strings.TrimSpace(fallbackLongDay); s != "" {
		return longDayAbbr[strings.ToLower(s)]
	}
	return ""
}

// twelveHourLayouts are tried in order for meridiem time forms.
var twelveHourLayouts = []string{"3:04 PM", "3:04PM", "3 PM", "3PM"}

// NormalizeTime normalizes a clock time to canonical zero-padded 24-hour
// "HH:MM". It accepts 24-hour ("7:30", "07:30") and 12-hour forms with a
// meridiem ("7:30 AM", "7 PM"). Unparseable or empty input yields "": this is
// best-effort normalization, not validation.
func NormalizeTime(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	switch strings.ToLower(s) {
	case "nan", "none":
		return ""
	}

	upper := strings.ToUpper(s)
	hasMeridiem := strings.Contains(upper, "AM") || strings.Contains(upper, "PM")

	if !hasMeridiem {
		if t, err := time.Parse("15:04", zeroPad(s)); err == nil {
			return t.Format("15:04")
		}
		return ""
	}
	for _, layout := range twelveHourLayouts {
		if t, err := time.Parse(layout, upper); err == nil {
			return t.Format("15:04")
		}
	}
	return ""
}

// zeroPad turns "7:30" into "07:30" so the strict 15:04 layout accepts it.
func zeroPad(s string) string {
	if i := strings.Index(s, ":"); i == 1 {
		return "0" + s
	}
	return s
}
