package domain

import (
	"fmt"
	"time"
)

// SequenceID identifies one logical occurrence of a category. It is
// derived from the category and the local calendar date, so recomputing
// the same occurrence always yields the same id. Reconciliation relies
// on this: a recomputed schedule matches its committed counterpart by id,
// never by value equality of instants.
type SequenceID string

// NewSequenceID derives the id for a category occurrence on the local
// calendar date of day.
func NewSequenceID(c Category, day time.Time) SequenceID {
	return SequenceID(fmt.Sprintf("%s-%04d-%02d-%02d", c, day.Year(), int(day.Month()), day.Day()))
}

// Trigger is one concrete, time-stamped reminder occurrence.
type Trigger struct {
	Category   Category
	At         time.Time // UTC
	SequenceID SequenceID
}
