package dashboard

import (
	"fmt"
	"time"
)

// Date-range presets accepted by the dashboard endpoints.
const (
	RangeToday     = "today"
	RangeYesterday = "yesterday"
	RangeLast7     = "last7days"
	RangeLast30    = "last30days"
	RangeThisWeek  = "thisweek"
	RangeLastWeek  = "lastweek"
	RangeThisMonth = "thismonth"
	RangeLastMonth = "lastmonth"
	RangeCustom    = "custom"
)

// DateRange is a resolved inclusive range in YYYY-MM-DD form.
type DateRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// ResolveRange turns a preset name into concrete dates in the given
// location. Weeks start on Monday. The custom preset passes from/to
// through unchanged.
func ResolveRange(preset, from, to string, now time.Time, loc *time.Location) (DateRange, error) {
	if loc == nil {
		loc = time.UTC
	}
	today := now.In(loc)
	day := func(t time.Time) string { return t.Format("2006-01-02") }

	switch preset {
	case RangeToday, "":
		return DateRange{From: day(today), To: day(today)}, nil
	case RangeYesterday:
		y := today.AddDate(0, 0, -1)
		return DateRange{From: day(y), To: day(y)}, nil
	case RangeLast7:
		return DateRange{From: day(today.AddDate(0, 0, -6)), To: day(today)}, nil
	case RangeLast30:
		return DateRange{From: day(today.AddDate(0, 0, -29)), To: day(today)}, nil
	case RangeThisWeek:
		start := startOfWeek(today)
		return DateRange{From: day(start), To: day(today)}, nil
	case RangeLastWeek:
		start := startOfWeek(today).AddDate(0, 0, -7)
		return DateRange{From: day(start), To: day(start.AddDate(0, 0, 6))}, nil
	case RangeThisMonth:
		start := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, loc)
		return DateRange{From: day(start), To: day(today)}, nil
	case RangeLastMonth:
		first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, loc)
		start := first.AddDate(0, -1, 0)
		return DateRange{From: day(start), To: day(first.AddDate(0, 0, -1))}, nil
	case RangeCustom:
		if from == "" || to == "" {
			return DateRange{}, fmt.Errorf("custom range requires date-from and date-to")
		}
		return DateRange{From: from, To: to}, nil
	default:
		return DateRange{}, fmt.Errorf("unknown date range %q", preset)
	}
}

// startOfWeek returns the Monday of t's week at midnight.
func startOfWeek(t time.Time) time.Time {
	offset := int(t.Weekday()) - int(time.Monday)
	if offset < 0 {
		offset += 7
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location()).AddDate(0, 0, -offset)
}
