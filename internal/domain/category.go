package domain

import "time"

// Category is a kind of local reminder the coach app can deliver.
type Category string

const (
	CategoryMeal           Category = "meal"
	CategoryWorkout        Category = "workout"
	CategoryHydration      Category = "hydration"
	CategoryProgressReport Category = "progress_report"
)

// Cadence is how often a category's preferred time recurs.
type Cadence string

const (
	CadenceDaily  Cadence = "daily"
	CadenceWeekly Cadence = "weekly"
)

// Categories lists every category in stable order. The order matters for
// deterministic iteration; maps must not be ranged directly.
func Categories() []Category {
	return []Category{CategoryMeal, CategoryWorkout, CategoryHydration, CategoryProgressReport}
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryMeal, CategoryWorkout, CategoryHydration, CategoryProgressReport:
		return true
	}
	return false
}

// Cadence returns how often the category recurs.
func (c Category) Cadence() Cadence {
	if c == CategoryProgressReport {
		return CadenceWeekly
	}
	return CadenceDaily
}

// WeeklyAnchor returns the fixed day-of-week for weekly categories.
// Progress reports land on Sunday as an end-of-week summary.
func (c Category) WeeklyAnchor() time.Weekday {
	return time.Sunday
}

// DefaultTime returns the category's default preferred time of day.
func (c Category) DefaultTime() ClockTime {
	switch c {
	case CategoryMeal:
		return ClockTime{Hour: 8}
	case CategoryWorkout:
		return ClockTime{Hour: 18}
	case CategoryHydration:
		return ClockTime{Hour: 11}
	case CategoryProgressReport:
		return ClockTime{Hour: 20}
	}
	return ClockTime{Hour: 9}
}
