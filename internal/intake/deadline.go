package intake

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// The deadline grammar is a closed set of phrases: "today", "tomorrow",
// "next <weekday>", a bare weekday name, and numeric day-first dates like
// 15/12 or 15-12-2025. Patterns are tried in that order, first match wins.
var (
	relativeDayRe = regexp.MustCompile(`(?i)\b(today|tomorrow)\b`)
	nextWeekdayRe = regexp.MustCompile(`(?i)\bnext\s+(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)
	bareWeekdayRe = regexp.MustCompile(`(?i)\b(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)
	numericDateRe = regexp.MustCompile(`\b(\d{1,2})[/-](\d{1,2})(?:[/-](\d{4}))?\b`)
)

var weekdays = map[string]time.Weekday{
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sunday":    time.Sunday,
}

// ResolveDeadline scans text for the first deadline phrase and resolves it
// against the injected reference time. It returns the resolved instant, the
// exact matched phrase as it appears in text, and whether a phrase resolved.
// Text without a deadline phrase (or with an impossible numeric date, e.g.
// month 13) resolves to nothing, which is not an error.
//
// Resolution rules:
//   - "today" is the reference date, "tomorrow" the day after;
//   - "next <weekday>" is strictly after the reference date: on a Wednesday,
//     "next wednesday" is a full week away;
//   - a bare weekday counts the reference date itself when it matches;
//   - numeric dates are day-first; a yearless date already in the past rolls
//     over to the next year.
//
// All deadlines land on the end of the target day.
func ResolveDeadline(text string, now time.Time) (time.Time, string, bool) {
	if phrase := relativeDayRe.FindString(text); phrase != "" {
		day := now
		if strings.EqualFold(phrase, "tomorrow") {
			day = now.AddDate(0, 0, 1)
		}
		return endOfDay(day), phrase, true
	}

	if loc := nextWeekdayRe.FindStringSubmatchIndex(text); loc != nil {
		phrase := text[loc[0]:loc[1]]
		target := weekdays[strings.ToLower(text[loc[2]:loc[3]])]
		days := (int(target) - int(now.Weekday()) + 7) % 7
		if days == 0 {
			days = 7
		}
		return endOfDay(now.AddDate(0, 0, days)), phrase, true
	}

	if phrase := bareWeekdayRe.FindString(text); phrase != "" {
		target := weekdays[strings.ToLower(phrase)]
		days := (int(target) - int(now.Weekday()) + 7) % 7
		return endOfDay(now.AddDate(0, 0, days)), phrase, true
	}

	if m := numericDateRe.FindStringSubmatch(text); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		if month < 1 || month > 12 || day < 1 {
			return time.Time{}, "", false
		}

		year := now.Year()
		hasYear := m[3] != ""
		if hasYear {
			year, _ = strconv.Atoi(m[3])
		}

		resolved := time.Date(year, time.Month(month), day, 23, 59, 59, 0, now.Location())
		// time.Date normalizes overflow (31/02 becomes March), which would
		// silently move the deadline. Reject such dates instead.
		if resolved.Day() != day || resolved.Month() != time.Month(month) {
			return time.Time{}, "", false
		}

		if !hasYear && resolved.Before(endOfDay(now)) {
			resolved = resolved.AddDate(1, 0, 0)
		}
		return resolved, m[0], true
	}

	return time.Time{}, "", false
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}
