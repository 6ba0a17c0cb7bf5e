// Package recurrence computes feeding occurrences and due states. It holds no
// state: every function depends only on its arguments.
package recurrence

import (
	"fmt"
	"time"

	"github.com/mamadbah2/herdbook/internal/domain/models"
)

const (
	// Lookahead is the horizon within which an active schedule is upcoming.
	Lookahead = 2 * time.Hour

	biWeeklyDays = 14
)

// Next returns the earliest instant at or after reference that satisfies the
// rule, at the rule's feeding time, in reference's location.
func Next(r Rule, reference time.Time) (time.Time, error) {
	if err := Validate(r); err != nil {
		return time.Time{}, err
	}

	loc := reference.Location()
	y, m, d := reference.Date()
	at := func(year int, month time.Month, day int) time.Time {
		return time.Date(year, month, day, r.FeedingTime.Hour, r.FeedingTime.Minute, 0, 0, loc)
	}

	switch r.Frequency {
	case models.FrequencyDaily:
		if c := at(y, m, d); !c.Before(reference) {
			return c, nil
		}
		return at(y, m, d+1), nil

	case models.FrequencyWeekly:
		allowed := make(map[time.Weekday]bool, len(r.DaysOfWeek))
		for _, day := range r.DaysOfWeek {
			allowed[day] = true
		}
		// Offset 7 covers a single weekday equal to today's whose time has passed.
		for offset := 0; offset <= 7; offset++ {
			c := at(y, m, d+offset)
			if allowed[c.Weekday()] && !c.Before(reference) {
				return c, nil
			}
		}
		return time.Time{}, fmt.Errorf("no weekly occurrence found after %s", reference.Format(time.RFC3339))

	case models.FrequencyBiWeekly:
		anchor := r.Anchor
		if anchor.IsZero() {
			anchor = reference
		}
		ay, am, ad := anchor.In(loc).Date()
		periods := 0
		if elapsed := daysBetween(ay, am, ad, y, m, d); elapsed > 0 {
			periods = elapsed / biWeeklyDays
		}
		c := at(ay, am, ad+periods*biWeeklyDays)
		for c.Before(reference) {
			periods++
			c = at(ay, am, ad+periods*biWeeklyDays)
		}
		return c, nil

	case models.FrequencyMonthly:
		if c := at(y, m, clampDay(y, m, d)); !c.Before(reference) {
			return c, nil
		}
		ny, nm, _ := time.Date(y, m+1, 1, 0, 0, 0, 0, loc).Date()
		return at(ny, nm, clampDay(ny, nm, d)), nil
	}

	return time.Time{}, configErr("frequency", "unsupported frequency %q", r.Frequency)
}

// Classify reports whether an active schedule is overdue, upcoming within the
// lookahead window, or neither. Overdue takes precedence.
func Classify(s models.FeedingSchedule, now time.Time) models.FeedingStatus {
	if !s.IsActive || s.NextFeedingDate == nil {
		return models.FeedingStatusNone
	}

	next := *s.NextFeedingDate
	switch {
	case !next.After(now):
		return models.FeedingStatusOverdue
	case !next.After(now.Add(Lookahead)):
		return models.FeedingStatusUpcoming
	default:
		return models.FeedingStatusNone
	}
}

func clampDay(year int, month time.Month, day int) int {
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > last {
		return last
	}
	return day
}

// daysBetween counts calendar days, ignoring DST shifts.
func daysBetween(y1 int, m1 time.Month, d1 int, y2 int, m2 time.Month, d2 int) int {
	from := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	to := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}
