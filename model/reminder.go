package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Date format tags for timed reminders.
const (
	DateFormatRelative = "relative" // "d-h-m", offset from now
	DateFormatWeekly   = "weekly"   // "mo-17", weekday + hour, recurs weekly
	DateFormatAbsolute = "absolute" // "12-24-18", month-day-hour this year
)

// ExpiredRecentlyWindow bounds how far past its expiration a reminder
// may still fire. Reminders overdue by more than this (e.g. after long
// downtime) are skipped rather than delivered as a stale backlog.
const ExpiredRecentlyWindow = 10 * time.Hour

var weekdayTags = map[string]time.Weekday{
	"mo": time.Monday,
	"tu": time.Tuesday,
	"we": time.Wednesday,
	"th": time.Thursday,
	"fr": time.Friday,
	"sa": time.Saturday,
	"su": time.Sunday,
}

// TimedReminder is a named, possibly repeating reminder owned by a
// guild config. Expiration is an absolute Unix timestamp (UTC) that is
// recomputed from the date spec each time a repeating reminder fires.
type TimedReminder struct {
	Name       string    `json:"name"`
	Content    string    `json:"content"`
	Repeat     bool      `json:"repeat"`
	DateFormat string    `json:"date_format"`
	DateSpec   string    `json:"date_spec"`
	Expiration int64     `json:"expiration"`
	StartDate  time.Time `json:"start_date"`
}

// NewTimedReminder validates the date spec and computes the first
// expiration. Absolute-format reminders never repeat, regardless of
// the requested flag.
func NewTimedReminder(name, content string, repeat bool, dateFormat, dateSpec string, now time.Time) (*TimedReminder, error) {
	if dateFormat == DateFormatAbsolute {
		repeat = false
	}

	r := &TimedReminder{
		Name:       name,
		Content:    content,
		Repeat:     repeat,
		DateFormat: dateFormat,
		DateSpec:   dateSpec,
		StartDate:  now.UTC(),
	}
	if err := r.UpdateExpiration(now); err != nil {
		return nil, err
	}
	return r, nil
}

// HasExpiredRecently reports whether the reminder is due and not
// wildly overdue: 0 <= now - expiration < 10h.
func (r *TimedReminder) HasExpiredRecently(now time.Time) bool {
	overdue := now.Unix() - r.Expiration
	return overdue >= 0 && overdue < int64(ExpiredRecentlyWindow/time.Second)
}

// HasExpired reports whether the reminder's fire time has passed.
func (r *TimedReminder) HasExpired(now time.Time) bool {
	return now.Unix() >= r.Expiration
}

// UpdateExpiration recomputes the expiration from the date spec,
// relative to now. Repeating reminders call this after every fire, so
// the new expiration is always based on the current time, never on the
// previous expiration.
func (r *TimedReminder) UpdateExpiration(now time.Time) error {
	now = now.UTC()

	switch r.DateFormat {
	case DateFormatRelative:
		days, hours, minutes, err := parseRelativeSpec(r.DateSpec)
		if err != nil {
			return err
		}
		r.Expiration = now.AddDate(0, 0, days).
			Add(time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute).
			Unix()
	case DateFormatWeekly:
		weekday, hour, err := parseWeeklySpec(r.DateSpec)
		if err != nil {
			return err
		}
		// The stored hour is shifted back by one, floored at zero.
		target := time.Date(now.Year(), now.Month(), now.Day(), max(0, hour-1), 0, 0, 0, time.UTC)
		target = target.AddDate(0, 0, int(weekday)-int(target.Weekday()))
		if !now.Before(target) {
			target = target.AddDate(0, 0, 7)
		}
		r.Expiration = target.Unix()
	case DateFormatAbsolute:
		month, day, hour, err := parseAbsoluteSpec(r.DateSpec)
		if err != nil {
			return err
		}
		target := time.Date(now.Year(), time.Month(month), day, max(0, hour-1), 0, 0, 0, time.UTC)
		r.Expiration = target.Unix()
	default:
		return fmt.Errorf("unknown date format %q", r.DateFormat)
	}
	return nil
}

func (r *TimedReminder) String() string {
	return fmt.Sprintf("Timed Reminder `%s`: %s (fires at <t:%d>)", r.Name, r.Content, r.Expiration)
}

func parseRelativeSpec(spec string) (days, hours, minutes int, err error) {
	parts := strings.Split(spec, "-")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("relative spec %q must have the form days-hours-minutes", spec)
	}
	nums := make([]int, 3)
	for idx, p := range parts {
		n, convErr := strconv.Atoi(p)
		if convErr != nil {
			return 0, 0, 0, fmt.Errorf("relative spec %q has a non-numeric field %q", spec, p)
		}
		if n < 0 {
			return 0, 0, 0, fmt.Errorf("relative spec %q has a negative field %q", spec, p)
		}
		nums[idx] = n
	}
	return nums[0], nums[1], nums[2], nil
}

func parseWeeklySpec(spec string) (time.Weekday, int, error) {
	parts := strings.Split(spec, "-")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("weekly spec %q must have the form weekday-hour", spec)
	}
	weekday, ok := weekdayTags[strings.ToLower(parts[0])]
	if !ok {
		return 0, 0, fmt.Errorf("weekly spec %q has an unknown weekday %q (want mo/tu/we/th/fr/sa/su)", spec, parts[0])
	}
	hour, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("weekly spec %q has a non-numeric hour %q", spec, parts[1])
	}
	if hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("weekly spec %q has an out-of-range hour %d", spec, hour)
	}
	return weekday, hour, nil
}

func parseAbsoluteSpec(spec string) (month, day, hour int, err error) {
	parts := strings.Split(spec, "-")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("absolute spec %q must have the form month-day-hour", spec)
	}
	nums := make([]int, 3)
	for idx, p := range parts {
		n, convErr := strconv.Atoi(p)
		if convErr != nil {
			return 0, 0, 0, fmt.Errorf("absolute spec %q has a non-numeric field %q", spec, p)
		}
		nums[idx] = n
	}
	month, day, hour = nums[0], nums[1], nums[2]
	if month < 1 || month > 12 {
		return 0, 0, 0, fmt.Errorf("absolute spec %q has an out-of-range month %d", spec, month)
	}
	if day < 1 || day > 31 {
		return 0, 0, 0, fmt.Errorf("absolute spec %q has an out-of-range day %d", spec, day)
	}
	if hour < 0 || hour > 23 {
		return 0, 0, 0, fmt.Errorf("absolute spec %q has an out-of-range hour %d", spec, hour)
	}
	return month, day, hour, nil
}
