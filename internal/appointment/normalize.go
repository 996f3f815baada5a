package appointment

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidTimeFormat indicates a time string that cannot be normalized.
var ErrInvalidTimeFormat = errors.New("appointment: invalid time format")

// ErrInvalidDateTime indicates a date/time pair that cannot be combined into
// a canonical timestamp. Callers must treat this as "cannot book", never as
// an invitation to guess.
var ErrInvalidDateTime = errors.New("appointment: invalid date/time")

const (
	dateLayout    = "2006-01-02"
	displayLayout = "Monday, January 2 2006 at 3:04 PM"
)

// NormalizeTime converts heterogeneous time input into canonical 24-hour
// "HH:MM". Accepted forms: "H", "H:MM", each with an optional case-insensitive
// AM/PM suffix, and already-canonical "HH:MM" (idempotent pass-through).
func NormalizeTime(raw string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return "", fmt.Errorf("%w: empty input", ErrInvalidTimeFormat)
	}

	meridiem := ""
	for _, suffix := range []string{"AM", "PM"} {
		if strings.HasSuffix(s, suffix) {
			meridiem = suffix
			s = strings.TrimSpace(strings.TrimSuffix(s, suffix))
			break
		}
	}
	if s == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidTimeFormat, raw)
	}

	hourPart := s
	minutePart := "0"
	if idx := strings.Index(s, ":"); idx >= 0 {
		hourPart = s[:idx]
		minutePart = s[idx+1:]
		if len(minutePart) != 2 {
			return "", fmt.Errorf("%w: %q", ErrInvalidTimeFormat, raw)
		}
	}

	hour, err := strconv.Atoi(hourPart)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidTimeFormat, raw)
	}
	minute, err := strconv.Atoi(minutePart)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidTimeFormat, raw)
	}

	if minute < 0 || minute > 59 {
		return "", fmt.Errorf("%w: minute %d out of range", ErrInvalidTimeFormat, minute)
	}
	if hour < 0 || hour > 23 {
		return "", fmt.Errorf("%w: hour %d out of range", ErrInvalidTimeFormat, hour)
	}

	switch meridiem {
	case "AM":
		if hour > 12 {
			return "", fmt.Errorf("%w: hour %d with AM", ErrInvalidTimeFormat, hour)
		}
		if hour == 12 {
			hour = 0
		}
	case "PM":
		if hour > 12 {
			return "", fmt.Errorf("%w: hour %d with PM", ErrInvalidTimeFormat, hour)
		}
		if hour != 12 {
			hour += 12
		}
	}

	return fmt.Sprintf("%02d:%02d", hour, minute), nil
}

// Combine merges a YYYY-MM-DD date and a time string into a canonical UTC
// instant. An already-canonical RFC 3339 timestamp in the date position
// passes through unchanged, which makes Combine idempotent over its own
// output. Everything else fails closed with ErrInvalidDateTime.
func Combine(date, rawTime string) (time.Time, error) {
	date = strings.TrimSpace(date)

	// Pass-through for canonical timestamps.
	if ts, err := time.Parse(time.RFC3339, date); err == nil {
		return ts.UTC(), nil
	}

	d, err := time.ParseInLocation(dateLayout, date, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q", ErrInvalidDateTime, date)
	}

	normalized, err := NormalizeTime(rawTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: time %q", ErrInvalidDateTime, rawTime)
	}

	hour, _ := strconv.Atoi(normalized[:2])
	minute, _ := strconv.Atoi(normalized[3:])

	return time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, time.UTC), nil
}

// FormatTimestamp renders a canonical instant for display in chat replies.
func FormatTimestamp(ts time.Time) string {
	return ts.UTC().Format(displayLayout)
}

// SplitTimestamp breaks a canonical instant back into the raw date and time
// components used by the slot model, e.g. when the guided flow records a
// picked proposal.
func SplitTimestamp(ts time.Time) (date, clock string) {
	u := ts.UTC()
	return u.Format(dateLayout), u.Format("15:04")
}
