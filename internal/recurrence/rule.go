package recurrence

import (
	"fmt"
	"strings"
	"time"

	"github.com/mamadbah2/herdbook/internal/domain/models"
)

// TimeOfDay is a wall-clock feeding time without a date component.
type TimeOfDay struct {
	Hour   int
	Minute int
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Rule is the recurrence definition of a feeding schedule.
// Anchor is only read for bi-weekly schedules.
type Rule struct {
	Frequency   models.Frequency
	FeedingTime TimeOfDay
	DaysOfWeek  []time.Weekday
	Anchor      time.Time
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseFeedingTime accepts "HH:MM" and "HH:MM:SS". Seconds are dropped.
func ParseFeedingTime(value string) (TimeOfDay, error) {
	value = strings.TrimSpace(value)
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
		}
	}
	return TimeOfDay{}, configErr("feeding_time", "%q is not a valid time of day", value)
}

// ParseWeekday maps a weekday name such as "monday" to time.Weekday.
func ParseWeekday(name string) (time.Weekday, error) {
	day, ok := weekdays[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, configErr("days_of_week", "unknown weekday %q", name)
	}
	return day, nil
}

// ParseFrequency validates a frequency name.
func ParseFrequency(value string) (models.Frequency, error) {
	switch f := models.Frequency(strings.ToLower(strings.TrimSpace(value))); f {
	case models.FrequencyDaily, models.FrequencyWeekly, models.FrequencyBiWeekly, models.FrequencyMonthly:
		return f, nil
	}
	return "", configErr("frequency", "unsupported frequency %q", value)
}

// RuleFromSchedule extracts and validates the recurrence rule of a schedule.
func RuleFromSchedule(s models.FeedingSchedule) (Rule, error) {
	freq, err := ParseFrequency(string(s.Frequency))
	if err != nil {
		return Rule{}, err
	}
	at, err := ParseFeedingTime(s.FeedingTime)
	if err != nil {
		return Rule{}, err
	}

	rule := Rule{Frequency: freq, FeedingTime: at, Anchor: s.AnchorDate}
	if freq == models.FrequencyWeekly {
		for _, name := range s.DaysOfWeek {
			day, err := ParseWeekday(name)
			if err != nil {
				return Rule{}, err
			}
			rule.DaysOfWeek = append(rule.DaysOfWeek, day)
		}
	}

	if err := Validate(rule); err != nil {
		return Rule{}, err
	}
	return rule, nil
}

// Validate checks the invariants every computable rule satisfies.
func Validate(r Rule) error {
	if _, err := ParseFrequency(string(r.Frequency)); err != nil {
		return err
	}
	if r.FeedingTime.Hour < 0 || r.FeedingTime.Hour > 23 || r.FeedingTime.Minute < 0 || r.FeedingTime.Minute > 59 {
		return configErr("feeding_time", "%s is out of range", r.FeedingTime)
	}
	if r.Frequency == models.FrequencyWeekly && len(r.DaysOfWeek) == 0 {
		return configErr("days_of_week", "at least one day is required for weekly feeding")
	}
	return nil
}

// DayNames returns the canonical lower-case names of the rule's weekdays.
func (r Rule) DayNames() []string {
	if len(r.DaysOfWeek) == 0 {
		return nil
	}
	out := make([]string, 0, len(r.DaysOfWeek))
	for _, d := range r.DaysOfWeek {
		out = append(out, strings.ToLower(d.String()))
	}
	return out
}
