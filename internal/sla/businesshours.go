package sla

import (
	"time"
)

// BusinessSecondsBetween returns the number of office-hours seconds that fall
// between start and end. Inverted or empty ranges yield 0. The walk visits
// one local calendar day at a time, intersecting [start, end] with each
// working day's office window, so partial boundary days, weekends, DST
// shifts and month/year boundaries all fall out of the same loop.
func (c *Calendar) BusinessSecondsBetween(start, end time.Time) int64 {
	if !start.Before(end) {
		return 0
	}

	var total int64

	day := localMidnight(start.In(c.loc))
	lastDay := localMidnight(end.In(c.loc))

	for !day.After(lastDay) {
		if c.days[day.Weekday()] {
			open := c.openingAt(day)
			close := c.closingAt(day)

			from := maxTime(start, open)
			to := minTime(end, close)

			if from.Before(to) {
				total += int64(to.Sub(from) / time.Second)
			}
		}
		day = day.AddDate(0, 0, 1)
	}

	return total
}

// localMidnight truncates a local time to the start of its calendar day
func localMidnight(local time.Time) time.Time {
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, local.Location())
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
