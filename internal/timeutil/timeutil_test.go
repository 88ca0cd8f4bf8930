package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var base = time.Date(2024, 6, 10, 14, 30, 0, 0, time.UTC)

func TestStartOfDay(t *testing.T) {
	got := StartOfDay(base)
	assert.Equal(t, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), got)
}

func TestNextDay(t *testing.T) {
	got := NextDay(base)
	assert.Equal(t, time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC), got)
}

func TestNextDayAcrossMonthEnd(t *testing.T) {
	lastOfMonth := time.Date(2024, 6, 30, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), NextDay(lastOfMonth))
}

func TestMinuteOfDay(t *testing.T) {
	assert.Equal(t, 14*60+30, MinuteOfDay(base))
	assert.Equal(t, 0, MinuteOfDay(StartOfDay(base)))
}

func TestReminderTime(t *testing.T) {
	got := ReminderTime(base, 24)
	assert.Equal(t, base.Add(-24*time.Hour), got)
}

func TestHoursUntil(t *testing.T) {
	assert.InDelta(t, 1.5, HoursUntil(base, base.Add(90*time.Minute)), 1e-9)
	assert.Less(t, HoursUntil(base, base.Add(-time.Hour)), 0.0)
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd time.Time
		want                       bool
	}{
		{"identical", base, base.Add(time.Hour), base, base.Add(time.Hour), true},
		{"partial", base, base.Add(time.Hour), base.Add(30 * time.Minute), base.Add(2 * time.Hour), true},
		{"contained", base, base.Add(2 * time.Hour), base.Add(30 * time.Minute), base.Add(time.Hour), true},
		{"adjacent", base, base.Add(time.Hour), base.Add(time.Hour), base.Add(2 * time.Hour), false},
		{"disjoint", base, base.Add(time.Hour), base.Add(3 * time.Hour), base.Add(4 * time.Hour), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd))
		})
	}
}

func TestFixedClock(t *testing.T) {
	c := FixedClock(base)
	assert.Equal(t, base, c.Now())
	assert.Equal(t, base, c.Now())
}
