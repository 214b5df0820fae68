package jiggler

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// DayTime is a wall-clock time of day.
type DayTime struct {
	Hour   int
	Minute int
}

// ParseDayTime parses "HH:MM". The whole string must match; trailing text is
// rejected.
func ParseDayTime(s string) (DayTime, error) {
	h, m, ok := strings.Cut(s, ":")
	if !ok {
		return DayTime{}, errors.Newf("time of day %q must be HH:MM", s)
	}
	var d DayTime
	var err error
	if d.Hour, err = strconv.Atoi(h); err != nil {
		return DayTime{}, errors.Wrapf(err, "time of day %q", s)
	}
	if d.Minute, err = strconv.Atoi(m); err != nil {
		return DayTime{}, errors.Wrapf(err, "time of day %q", s)
	}
	if d.Hour < 0 || d.Hour > 23 || d.Minute < 0 || d.Minute > 59 {
		return DayTime{}, errors.Newf("time of day %q out of range", s)
	}
	return d, nil
}

func (d DayTime) String() string { return fmt.Sprintf("%02d:%02d", d.Hour, d.Minute) }

func (d DayTime) minutes() int { return d.Hour*60 + d.Minute }

// Schedule is the calendar window within which unattended jiggling runs.
type Schedule struct {
	Start DayTime
	End   DayTime
	Days  map[time.Weekday]bool
}

// Weekdays returns the Monday-Friday day set.
func Weekdays() map[time.Weekday]bool {
	return map[time.Weekday]bool{
		time.Monday:    true,
		time.Tuesday:   true,
		time.Wednesday: true,
		time.Thursday:  true,
		time.Friday:    true,
	}
}

// Contains reports whether t falls inside the window: an enabled day with
// start <= time-of-day < end.
func (s Schedule) Contains(t time.Time) bool {
	if !s.Days[t.Weekday()] {
		return false
	}
	m := t.Hour()*60 + t.Minute()
	return m >= s.Start.minutes() && m < s.End.minutes()
}
