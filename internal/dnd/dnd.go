// Package dnd evaluates do-not-disturb state. The evaluator is a pure
// function of the preference record and a clock reading; it gates the sound,
// desktop and toast channels but never the badge.
package dnd

import (
	"strconv"
	"strings"
	"time"

	"github.com/jwalitptl/notifier/internal/model"
)

// IsActive reports whether delivery should currently be suppressed.
//
// Rules, in order: the manual flag off wins; with the schedule disabled the
// manual flag is unconditionally on; otherwise the current weekday must be
// scheduled and the current minute must fall inside the window, which is
// inclusive on both ends and may wrap midnight.
func IsActive(prefs *model.NotificationPreferences, now time.Time) bool {
	if !prefs.DND.Enabled {
		return false
	}

	sched := prefs.DND.Schedule
	if !sched.Enabled {
		return true
	}

	day := int(now.Weekday())
	if !containsDay(sched.Days, day) {
		return false
	}

	startMinutes, okStart := ParseMinutes(sched.Start)
	endMinutes, okEnd := ParseMinutes(sched.End)
	if !okStart || !okEnd {
		return false
	}
	nowMinutes := now.Hour()*60 + now.Minute()

	if startMinutes <= endMinutes {
		// Same-day window. start == end is a single-minute window, active
		// exactly at that minute.
		return nowMinutes >= startMinutes && nowMinutes <= endMinutes
	}
	// Window wraps midnight, e.g. 22:00-08:00.
	return nowMinutes >= startMinutes || nowMinutes <= endMinutes
}

// ParseMinutes converts an HH:MM string to minutes since midnight.
func ParseMinutes(hhmm string) (int, bool) {
	parts := strings.SplitN(hhmm, ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, false
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, false
	}
	return hour*60 + minute, true
}

func containsDay(days []int, day int) bool {
	for _, d := range days {
		if d == day {
			return true
		}
	}
	return false
}
