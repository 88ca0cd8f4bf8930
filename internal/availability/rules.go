package availability

import (
	"time"

	"github.com/wolfman30/bookline/internal/timeutil"
)

// IsBookable reports whether the interval [start, start+duration) is open for
// booking: not intersecting any blocking exception, and fully contained in a
// single weekly slot for that weekday. Slots are evaluated independently; an
// interval spanning two adjacent slots is not bookable unless one slot already
// covers it as a contiguous range. Intervals crossing midnight are never
// bookable; model overnight hours as two same-day slots instead.
func (a *Availability) IsBookable(start time.Time, duration time.Duration) bool {
	if duration <= 0 {
		return false
	}
	end := start.Add(duration)

	startMin := timeutil.MinuteOfDay(start)
	var endMin int
	switch {
	case end.Equal(timeutil.NextDay(start)):
		endMin = 24 * 60
	case timeutil.StartOfDay(end).Equal(timeutil.StartOfDay(start)):
		endMin = timeutil.MinuteOfDay(end)
	default:
		return false
	}

	day := timeutil.StartOfDay(start)
	for _, e := range a.Exceptions {
		if !exceptionCoversDay(e, day) {
			continue
		}
		if e.StartTime == "" {
			return false
		}
		exStart, err1 := parseHHMM(e.StartTime)
		exEnd, err2 := parseHHMM(e.EndTime)
		if err1 != nil || err2 != nil {
			// Malformed exceptions block the day rather than silently open it.
			return false
		}
		if startMin < exEnd && exStart < endMin {
			return false
		}
	}

	weekday := int(start.Weekday())
	for _, s := range a.WeeklySlots {
		if s.DayOfWeek != weekday {
			continue
		}
		slotStart, err1 := parseHHMM(s.StartTime)
		slotEnd, err2 := parseHHMM(s.EndTime)
		if err1 != nil || err2 != nil {
			continue
		}
		if slotStart <= startMin && endMin <= slotEnd {
			return true
		}
	}
	return false
}

func exceptionCoversDay(e Exception, day time.Time) bool {
	start, err := time.ParseInLocation(time.DateOnly, e.StartDate, day.Location())
	if err != nil {
		return false
	}
	end, err := time.ParseInLocation(time.DateOnly, e.EndDate, day.Location())
	if err != nil {
		return false
	}
	return !day.Before(start) && !day.After(end)
}
