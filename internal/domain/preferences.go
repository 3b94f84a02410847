package domain

import (
	"fmt"
	"time"
)

// PreferencesSchemaVersion is the current persisted schema version.
const PreferencesSchemaVersion = 1

// QuietHours is a daily window during which no reminder may fire.
// Start is inclusive, End exclusive. Start > End means the window wraps
// midnight (e.g. 22:00–06:00).
type QuietHours struct {
	Start ClockTime
	End   ClockTime
}

// Contains reports whether t falls inside the window.
func (q QuietHours) Contains(t ClockTime) bool {
	m, from, to := t.Minutes(), q.Start.Minutes(), q.End.Minutes()
	if from == to {
		return false // degenerate window, rejected by Validate
	}
	if from < to {
		return m >= from && m < to
	}
	// wrap: [from..24h) U [0..to)
	return m >= from || m < to
}

// Wraps reports whether the window crosses midnight.
func (q QuietHours) Wraps() bool { return q.Start.Minutes() > q.End.Minutes() }

// Preferences is one user's notification configuration.
type Preferences struct {
	UserID         string
	SchemaVersion  int
	Enabled        map[Category]bool
	PreferredTimes map[Category]ClockTime
	QuietHours     *QuietHours
	Timezone       string
}

// DefaultPreferences returns the first-run configuration: every category
// enabled at its default time, no quiet hours.
func DefaultPreferences(userID, tz string) Preferences {
	enabled := make(map[Category]bool, len(Categories()))
	times := make(map[Category]ClockTime, len(Categories()))
	for _, c := range Categories() {
		enabled[c] = true
		times[c] = c.DefaultTime()
	}
	return Preferences{
		UserID:         userID,
		SchemaVersion:  PreferencesSchemaVersion,
		Enabled:        enabled,
		PreferredTimes: times,
		Timezone:       tz,
	}
}

// EnabledCategories returns the enabled categories in stable order.
func (p Preferences) EnabledCategories() []Category {
	var out []Category
	for _, c := range Categories() {
		if p.Enabled[c] {
			out = append(out, c)
		}
	}
	return out
}

// Location resolves the preference timezone.
func (p Preferences) Location() (*time.Location, error) {
	return time.LoadLocation(p.Timezone)
}

// Clone returns a deep copy so callers cannot alias the owner's maps.
func (p Preferences) Clone() Preferences {
	cp := p
	cp.Enabled = make(map[Category]bool, len(p.Enabled))
	for k, v := range p.Enabled {
		cp.Enabled[k] = v
	}
	cp.PreferredTimes = make(map[Category]ClockTime, len(p.PreferredTimes))
	for k, v := range p.PreferredTimes {
		cp.PreferredTimes[k] = v
	}
	if p.QuietHours != nil {
		q := *p.QuietHours
		cp.QuietHours = &q
	}
	return cp
}

// Validate checks the structural invariants. It returns an error wrapping
// ErrInvalidPreferences (or ErrInvalidQuietHours for window problems)
// naming the first broken invariant; the receiver is never mutated.
func (p Preferences) Validate() error {
	if p.UserID == "" {
		return fmt.Errorf("%w: empty user id", ErrInvalidPreferences)
	}
	if _, err := ValidateTZ(p.Timezone); err != nil {
		return fmt.Errorf("%w: timezone %q: %v", ErrInvalidPreferences, p.Timezone, err)
	}
	for c := range p.Enabled {
		if !c.Valid() {
			return fmt.Errorf("%w: unknown category %q", ErrInvalidPreferences, c)
		}
	}
	for c, t := range p.PreferredTimes {
		if !c.Valid() {
			return fmt.Errorf("%w: unknown category %q", ErrInvalidPreferences, c)
		}
		if !t.Valid() {
			return fmt.Errorf("%w: category %s: time %s out of range", ErrInvalidPreferences, c, t)
		}
	}
	for _, c := range p.EnabledCategories() {
		if _, ok := p.PreferredTimes[c]; !ok {
			return fmt.Errorf("%w: enabled category %s has no preferred time", ErrInvalidPreferences, c)
		}
	}
	if q := p.QuietHours; q != nil {
		if !q.Start.Valid() || !q.End.Valid() {
			return fmt.Errorf("%w: window %s–%s out of range", ErrInvalidQuietHours, q.Start, q.End)
		}
		if q.Start == q.End {
			return fmt.Errorf("%w: start equals end (%s)", ErrInvalidQuietHours, q.Start)
		}
	}
	return nil
}
