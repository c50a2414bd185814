package chat

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	hourMinuteRe = regexp.MustCompile(`(\d{1,2})[:.](\d{2})`)
	hourPrepRe   = regexp.MustCompile(`в\s*(\d{1,2})`)
	bareHourRe   = regexp.MustCompile(`^(\d{1,2})$`)
)

// ParsePreferredTime turns free text like "завтра в 10:00", "в 17" or
// "15:30" into a concrete UTC time relative to now. Day words without a
// time of day do not parse: an appointment needs an hour.
func ParsePreferredTime(text string, now time.Time) (time.Time, bool) {
	text = strings.ToLower(strings.TrimSpace(text))

	day := now.UTC()
	switch {
	case strings.Contains(text, "послезавтра"):
		day = day.AddDate(0, 0, 2)
	case strings.Contains(text, "завтра"):
		day = day.AddDate(0, 0, 1)
	}

	hour, minute, ok := extractClock(text)
	if !ok {
		return time.Time{}, false
	}
	if hour > 23 || minute > 59 {
		return time.Time{}, false
	}

	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, time.UTC), true
}

func extractClock(text string) (hour, minute int, ok bool) {
	if m := hourMinuteRe.FindStringSubmatch(text); m != nil {
		hour, _ = strconv.Atoi(m[1])
		minute, _ = strconv.Atoi(m[2])
		return hour, minute, true
	}
	if m := hourPrepRe.FindStringSubmatch(text); m != nil {
		hour, _ = strconv.Atoi(m[1])
		return hour, 0, true
	}
	if m := bareHourRe.FindStringSubmatch(text); m != nil {
		hour, _ = strconv.Atoi(m[1])
		return hour, 0, true
	}
	return 0, 0, false
}
