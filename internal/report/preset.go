package report

import (
	"time"

	"healthops-dashboard/internal/domain"
)

const (
	PresetToday      = "today"
	PresetLast7Days  = "7days"
	PresetLast30Days = "30days"
)

type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ResolvePreset returns the date bounds of a named preset relative to ref. An unrecognised
// preset resolves like PresetToday.
func ResolvePreset(preset string, ref time.Time) DateRange {
	end := domain.CalendarDate(ref)
	switch preset {
	case PresetLast7Days:
		return DateRange{Start: end.AddDate(0, 0, -7), End: end}
	case PresetLast30Days:
		return DateRange{Start: end.AddDate(0, 0, -30), End: end}
	default:
		return DateRange{Start: end, End: end}
	}
}

// Apply sets the range as the criteria's date bounds.
func (r DateRange) Apply(c Criteria) Criteria {
	start, end := r.Start, r.End
	c.Start, c.End = &start, &end
	return c
}
