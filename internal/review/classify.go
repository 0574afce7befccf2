// Package review derives review presentation data from a record snapshot:
// which items are due, in what order, which one to open next, and how far
// the user is toward their weekly and daily goals.
//
// Everything here is pure: inputs are a store (or its records), the current
// time and settings. Nothing mutates records.
package review

import (
	"time"

	"github.com/lazypower/revisit/internal/record"
)

const day = 24 * time.Hour

// Classification partitions the records of a store.
// Due, Fresh and Ignored are disjoint and together cover every record.
// AccessedToday and AccessedThisWeek only ever contain non-ignored records.
type Classification struct {
	Due              []record.Record
	Fresh            []record.Record
	Ignored          []record.Record
	AccessedToday    []record.Record
	AccessedThisWeek []record.Record
}

// Empty reports the "all caught up" state: nothing is due.
func (c Classification) Empty() bool {
	return len(c.Due) == 0
}

// Classify partitions records relative to now. A record is due when it was
// never accessed or its age in days exceeds unusedDaysLimit.
// The calendar windows use now's location.
func Classify(records []record.Record, now time.Time, unusedDaysLimit int) Classification {
	var c Classification
	today := DayWindow(now)
	week := WeekWindow(now)

	for _, r := range records {
		if r.Ignored {
			c.Ignored = append(c.Ignored, r)
			continue
		}

		if IsDue(r, now, unusedDaysLimit) {
			c.Due = append(c.Due, r)
		} else {
			c.Fresh = append(c.Fresh, r)
		}

		// Unset reads as epoch zero here, which the week window rejects.
		last := time.UnixMilli(r.LastAccessed.UnixMilli()).In(now.Location())
		if r.LastAccessed.IsSet() && today.Contains(last) {
			c.AccessedToday = append(c.AccessedToday, r)
		}
		if last.Year() > 1970 && week.Contains(last) {
			c.AccessedThisWeek = append(c.AccessedThisWeek, r)
		}
	}
	return c
}

// IsDue reports whether a non-ignored record should be scheduled for review.
func IsDue(r record.Record, now time.Time, unusedDaysLimit int) bool {
	if !r.LastAccessed.IsSet() {
		return true
	}
	return AgeDays(r.LastAccessed, now) > float64(unusedDaysLimit)
}

// AgeDays returns the fractional number of days since the access.
// It is meaningless for Unset, which IsDue treats as infinitely old.
func AgeDays(at record.AccessTime, now time.Time) float64 {
	return float64(now.Sub(at.Time())) / float64(day)
}

// Window is a half-open time range [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// DayWindow returns the calendar day containing now, in now's location.
func DayWindow(now time.Time) Window {
	y, m, d := now.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	return Window{Start: start, End: start.AddDate(0, 0, 1)}
}

// WeekWindow returns the Monday-to-Sunday week containing now, in now's location.
func WeekWindow(now time.Time) Window {
	today := DayWindow(now).Start
	// time.Weekday counts from Sunday; shift so Monday is 0.
	offset := (int(today.Weekday()) + 6) % 7
	start := today.AddDate(0, 0, -offset)
	return Window{Start: start, End: start.AddDate(0, 0, 7)}
}
