// Package schedule turns a comma-separated list of HH:MM wall-clock
// times into the run cadence for the watch loop.
package schedule

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// TimeOfDay is a wall-clock slot in the local timezone.
type TimeOfDay struct {
	Hour   int
	Minute int
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// DefaultTimes is used when no valid slot can be parsed.
var DefaultTimes = []TimeOfDay{{Hour: 10}, {Hour: 18}}

// ParseTimes parses "10:00,18:00" into sorted slots. Invalid entries
// are dropped and reported via a non-nil error describing the first
// problem, so callers can log the drop and keep running with whatever
// parsed; if nothing valid remains the defaults are returned.
func ParseTimes(s string) ([]TimeOfDay, error) {
	var (
		out      []TimeOfDay
		firstErr error
	)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		t, err := parseOne(part)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		out = append(out, t)
	}
	if len(out) == 0 {
		if firstErr == nil {
			firstErr = fmt.Errorf("no upload times configured")
		}
		return DefaultTimes, firstErr
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Hour != out[j].Hour {
			return out[i].Hour < out[j].Hour
		}
		return out[i].Minute < out[j].Minute
	})
	return out, firstErr
}

func parseOne(s string) (TimeOfDay, error) {
	hh, mm, ok := strings.Cut(s, ":")
	if !ok {
		return TimeOfDay{}, fmt.Errorf("invalid time %q", s)
	}
	hour, err := strconv.Atoi(hh)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid time %q: %w", s, err)
	}
	minute, err := strconv.Atoi(mm)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid time %q: %w", s, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return TimeOfDay{}, fmt.Errorf("time %q out of range", s)
	}
	return TimeOfDay{Hour: hour, Minute: minute}, nil
}

// Next returns the first slot strictly after now: the next slot today,
// or the earliest slot tomorrow once all of today's have passed.
func Next(now time.Time, times []TimeOfDay) time.Time {
	if len(times) == 0 {
		times = DefaultTimes
	}
	for _, t := range times {
		slot := time.Date(now.Year(), now.Month(), now.Day(), t.Hour, t.Minute, 0, 0, now.Location())
		if slot.After(now) {
			return slot
		}
	}
	first := times[0]
	tomorrow := now.AddDate(0, 0, 1)
	return time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), first.Hour, first.Minute, 0, 0, now.Location())
}
