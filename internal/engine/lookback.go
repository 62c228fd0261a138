package engine

import (
	"math"
	"time"
)

// LookbackDays computes how many calendar days of history are needed to
// gather inputWindow samples at the given cadence. If the resulting start
// date lands on a weekend it is pushed back one day at a time, widening
// the lookback, until it lands on a weekday.
func LookbackDays(inputWindow, intervalMinutes int, now time.Time) int {
	const minutesInDay = 24 * 60
	days := int(math.Ceil(float64(inputWindow*intervalMinutes) / minutesInDay))

	target := now.AddDate(0, 0, -days)
	for isWeekend(target) {
		target = target.AddDate(0, 0, -1)
		days++
	}
	return days
}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
