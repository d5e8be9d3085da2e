package domain

import (
	"fmt"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// CalendarDate drops the time of day, keeping the year/month/day t has in its own location.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseCalendarDate reads a stored service date. Stored dates are "YYYY-MM-DD", optionally
// followed by a time part ("T23:59", " 10:00:00", RFC 3339), which is ignored.
// ok is false for a blank value.
func ParseCalendarDate(s string) (date time.Time, ok bool, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false, nil
	}
	if len(s) > len(DateLayout) {
		if sep := s[len(DateLayout)]; sep != 'T' && sep != ' ' {
			return time.Time{}, false, fmt.Errorf("malformed date %q", s)
		}
		s = s[:len(DateLayout)]
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("malformed date %q", s)
	}
	return t, true, nil
}
