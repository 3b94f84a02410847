// Package trigger computes the target set of reminder occurrences for a
// preference snapshot. Pure and deterministic: same preferences, clock and
// horizon always produce the same triggers, including their sequence ids.
package trigger

import (
	"sort"
	"time"

	"github.com/ablomov/remindd/internal/domain"
)

// ComputeTargets maps a preference snapshot and a reference instant to
// every eligible occurrence inside [now, now+horizon).
//
// Daily categories yield at most one occurrence per local calendar day;
// weekly categories only on their anchor weekday. An occurrence whose
// preferred time lands inside quiet hours is shifted to the end of the
// window in the same cycle, keeping its sequence id, unless the shifted
// instant would collide with the category's next natural occurrence.
func ComputeTargets(prefs domain.Preferences, now time.Time, horizon time.Duration) ([]domain.Trigger, error) {
	if err := prefs.Validate(); err != nil {
		return nil, err
	}
	loc, err := prefs.Location()
	if err != nil {
		// Validate already vetted the timezone; this only fires if the
		// tz database changed under us.
		return nil, err
	}

	limit := now.Add(horizon)
	days := int(horizon/(24*time.Hour)) + 2 // cover partial days on both ends

	var out []domain.Trigger
	for _, cat := range prefs.EnabledCategories() {
		pref := prefs.PreferredTimes[cat]
		localNow := now.In(loc)

		// Start one day back: a wrapped quiet window can shift the
		// previous day's occurrence past midnight into [now, limit).
		for d := -1; d < days; d++ {
			day := localNow.AddDate(0, 0, d)
			if cat.Cadence() == domain.CadenceWeekly && day.Weekday() != cat.WeeklyAnchor() {
				continue
			}

			at := pref.On(day)
			seq := domain.NewSequenceID(cat, day)

			if prefs.QuietHours != nil && prefs.QuietHours.Contains(pref) {
				shifted, ok := shiftOutOfQuiet(at, pref, *prefs.QuietHours)
				if !ok {
					continue
				}
				// Drop the shifted occurrence if it collides with the
				// category's next natural one; keeping both would fire twice.
				if !shifted.Before(nextNatural(cat, pref, day)) {
					continue
				}
				at = shifted
			}

			utc := at.UTC()
			if utc.Before(now) || !utc.Before(limit) {
				continue
			}
			out = append(out, domain.Trigger{Category: cat, At: utc, SequenceID: seq})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].At.Equal(out[j].At) {
			return out[i].At.Before(out[j].At)
		}
		return out[i].SequenceID < out[j].SequenceID
	})
	return out, nil
}

// shiftOutOfQuiet moves a suppressed occurrence to the end of the quiet
// window in the same cycle. For a wrapping window the evening segment
// spills into the next day: 23:00 under quiet 22:00–06:00 becomes 06:00
// the next morning, still the same logical occurrence.
func shiftOutOfQuiet(at time.Time, pref domain.ClockTime, q domain.QuietHours) (time.Time, bool) {
	end := q.End.On(at)
	if q.Wraps() && pref.Minutes() >= q.Start.Minutes() {
		end = end.AddDate(0, 0, 1)
	}
	if !end.After(at) {
		return time.Time{}, false
	}
	return end, true
}

// nextNatural returns the category's next un-shifted occurrence after day.
func nextNatural(cat domain.Category, pref domain.ClockTime, day time.Time) time.Time {
	step := 1
	if cat.Cadence() == domain.CadenceWeekly {
		step = 7
	}
	return pref.On(day.AddDate(0, 0, step))
}
