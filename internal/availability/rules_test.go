package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// 2024-06-10 is a Monday.
func mondayAt(hour, min int) time.Time {
	return time.Date(2024, 6, 10, hour, min, 0, 0, time.UTC)
}

func weekdayHours() *Availability {
	return &Availability{
		WeeklySlots: []WeeklySlot{
			{DayOfWeek: 1, StartTime: "09:00", EndTime: "17:00"},
			{DayOfWeek: 2, StartTime: "09:00", EndTime: "12:00"},
			{DayOfWeek: 2, StartTime: "13:00", EndTime: "17:00"},
		},
	}
}

func TestIsBookableInsideSlot(t *testing.T) {
	a := weekdayHours()
	assert.True(t, a.IsBookable(mondayAt(10, 0), time.Hour))
	assert.True(t, a.IsBookable(mondayAt(9, 0), 8*time.Hour)) // exactly the whole slot
}

func TestIsBookableOutsideSlot(t *testing.T) {
	a := weekdayHours()
	assert.False(t, a.IsBookable(mondayAt(8, 0), time.Hour))              // before opening
	assert.False(t, a.IsBookable(mondayAt(16, 30), time.Hour))            // runs past closing
	assert.False(t, a.IsBookable(mondayAt(10, 0).AddDate(0, 0, 5), time.Hour)) // Saturday, no slot
}

func TestIsBookableDoesNotMergeAdjacentSlots(t *testing.T) {
	a := weekdayHours()
	tuesday := mondayAt(11, 30).AddDate(0, 0, 1)
	// 11:30-13:30 spans the 12:00-13:00 gap and also spans two slots if the
	// gap were closed; neither slot contains it on its own.
	assert.False(t, a.IsBookable(tuesday, 2*time.Hour))
}

func TestIsBookableRejectsMidnightSpan(t *testing.T) {
	a := &Availability{
		WeeklySlots: []WeeklySlot{{DayOfWeek: 1, StartTime: "22:00", EndTime: "23:59"}},
	}
	assert.False(t, a.IsBookable(mondayAt(23, 30), time.Hour))
}

func TestIsBookableFullDayException(t *testing.T) {
	a := weekdayHours()
	a.Exceptions = []Exception{{StartDate: "2024-06-10", EndDate: "2024-06-10", Reason: "holiday"}}
	assert.False(t, a.IsBookable(mondayAt(10, 0), time.Hour))
	// The following Monday is unaffected.
	assert.True(t, a.IsBookable(mondayAt(10, 0).AddDate(0, 0, 7), time.Hour))
}

func TestIsBookablePartialException(t *testing.T) {
	a := weekdayHours()
	a.Exceptions = []Exception{{
		StartDate: "2024-06-10", EndDate: "2024-06-10",
		StartTime: "12:00", EndTime: "14:00",
	}}
	assert.False(t, a.IsBookable(mondayAt(12, 30), 30*time.Minute))
	assert.False(t, a.IsBookable(mondayAt(11, 30), time.Hour)) // overlaps the blocked window edge
	assert.True(t, a.IsBookable(mondayAt(15, 0), 30*time.Minute))
	assert.True(t, a.IsBookable(mondayAt(11, 0), time.Hour)) // ends exactly at the blocked window
}

func TestIsBookableMultiDayException(t *testing.T) {
	a := weekdayHours()
	a.Exceptions = []Exception{{StartDate: "2024-06-09", EndDate: "2024-06-11"}}
	assert.False(t, a.IsBookable(mondayAt(10, 0), time.Hour))
	tuesday := mondayAt(10, 0).AddDate(0, 0, 1)
	assert.False(t, a.IsBookable(tuesday, time.Hour))
}

func TestIsBookableZeroDuration(t *testing.T) {
	a := weekdayHours()
	assert.False(t, a.IsBookable(mondayAt(10, 0), 0))
	assert.False(t, a.IsBookable(mondayAt(10, 0), -time.Hour))
}

func TestIsBookableEmptyAggregate(t *testing.T) {
	a := &Availability{}
	assert.False(t, a.IsBookable(mondayAt(10, 0), time.Hour))
}

func TestValidateRejectsOverlappingSlots(t *testing.T) {
	a := &Availability{
		WeeklySlots: []WeeklySlot{
			{DayOfWeek: 1, StartTime: "09:00", EndTime: "12:00"},
			{DayOfWeek: 1, StartTime: "11:00", EndTime: "14:00"},
		},
	}
	assert.Error(t, a.Validate())
}

func TestValidateRejectsBadShapes(t *testing.T) {
	tests := []struct {
		name string
		a    Availability
	}{
		{"day out of range", Availability{WeeklySlots: []WeeklySlot{{DayOfWeek: 7, StartTime: "09:00", EndTime: "10:00"}}}},
		{"bad time", Availability{WeeklySlots: []WeeklySlot{{DayOfWeek: 1, StartTime: "9am", EndTime: "10:00"}}}},
		{"end before start", Availability{WeeklySlots: []WeeklySlot{{DayOfWeek: 1, StartTime: "10:00", EndTime: "09:00"}}}},
		{"bad exception date", Availability{Exceptions: []Exception{{StartDate: "06/10/2024", EndDate: "2024-06-10"}}}},
		{"half-bounded exception", Availability{Exceptions: []Exception{{StartDate: "2024-06-10", EndDate: "2024-06-10", StartTime: "12:00"}}}},
		{"exception range inverted", Availability{Exceptions: []Exception{{StartDate: "2024-06-11", EndDate: "2024-06-10"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.a.Validate())
		})
	}
}

func TestValidateAcceptsWellFormed(t *testing.T) {
	a := weekdayHours()
	a.Exceptions = []Exception{
		{StartDate: "2024-06-10", EndDate: "2024-06-14", StartTime: "12:00", EndTime: "13:00", Reason: "lunch"},
	}
	assert.NoError(t, a.Validate())
}
