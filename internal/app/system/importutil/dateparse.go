// internal/app/system/importutil/dateparse.go
package importutil

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// buddhistEraFloor: a 4-digit year above this is taken to be a Buddhist-era
// year and converted to Gregorian by subtracting 543. Legacy spreadsheets
// mix both calendars freely.
const (
	buddhistEraFloor  = 2400
	buddhistEraOffset = 543
)

// ParseFlexibleDate parses the date formats that appear in member imports:
// an ISO calendar date, a full ISO instant, or day/month/year with "/", "."
// or "-" separators. The result is always the UTC midnight of the calendar
// day entered.
//
// Day/month/year input must survive a round trip — reconstructing
// day/month/year from the computed instant must give back the input — which
// rejects impossible dates like 31/02 instead of letting them normalize
// into March.
func ParseFlexibleDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		u := t.UTC()
		return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC), nil
	}

	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == '/' || r == '.' || r == '-'
	})
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("unrecognized date format %q", raw)
	}
	day, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	month, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	year, err3 := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Time{}, fmt.Errorf("unrecognized date format %q", raw)
	}
	if year > buddhistEraFloor && year <= 9999 {
		year -= buddhistEraOffset
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != time.Month(month) || t.Day() != day {
		return time.Time{}, fmt.Errorf("impossible calendar date %q", raw)
	}
	return t, nil
}
