package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ClockTime is a wall-clock time of day with minute precision.
type ClockTime struct {
	Hour   int
	Minute int
}

// ParseClock parses "HH:MM" into a ClockTime.
func ParseClock(s string) (ClockTime, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return ClockTime{}, errors.New("expected HH:MM")
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return ClockTime{}, errors.New("invalid hour")
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return ClockTime{}, errors.New("invalid minute")
	}
	return ClockTime{Hour: h, Minute: m}, nil
}

// ClockFromMinutes builds a ClockTime from minutes since midnight (0..1439).
func ClockFromMinutes(mins int) ClockTime {
	if mins < 0 {
		mins = 0
	}
	mins %= 24 * 60
	return ClockTime{Hour: mins / 60, Minute: mins % 60}
}

// Minutes returns minutes since midnight (0..1439).
func (c ClockTime) Minutes() int { return c.Hour*60 + c.Minute }

// Valid reports whether the clock time is within 00:00..23:59.
func (c ClockTime) Valid() bool {
	return c.Hour >= 0 && c.Hour <= 23 && c.Minute >= 0 && c.Minute <= 59
}

// String returns the HH:MM form.
func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// On anchors the clock time on the calendar date of base, in base's location.
func (c ClockTime) On(base time.Time) time.Time {
	return time.Date(base.Year(), base.Month(), base.Day(), c.Hour, c.Minute, 0, 0, base.Location())
}

// ValidateTZ checks that tz is a valid IANA location and returns its
// canonical name.
func ValidateTZ(tz string) (string, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return "", err
	}
	return loc.String(), nil
}
