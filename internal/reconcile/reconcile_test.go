package reconcile

import (
	"testing"
	"time"

	"github.com/ablomov/remindd/internal/domain"
)

func trig(cat domain.Category, seq string, at time.Time) domain.Trigger {
	return domain.Trigger{Category: cat, At: at, SequenceID: domain.SequenceID(seq)}
}

func TestDiffIdempotent(t *testing.T) {
	at := time.Date(2026, time.January, 7, 18, 0, 0, 0, time.UTC)
	s := []domain.Trigger{
		trig(domain.CategoryWorkout, "workout-2026-01-07", at),
		trig(domain.CategoryMeal, "meal-2026-01-07", at.Add(-10*time.Hour)),
	}
	toCancel, toSchedule := Diff(s, s)
	if len(toCancel) != 0 || len(toSchedule) != 0 {
		t.Fatalf("Diff(S, S) must be empty, got cancel=%v schedule=%v", toCancel, toSchedule)
	}
}

func TestDiffEmptySets(t *testing.T) {
	toCancel, toSchedule := Diff(nil, nil)
	if len(toCancel) != 0 || len(toSchedule) != 0 {
		t.Fatal("Diff(nil, nil) must be empty")
	}
}

func TestDiffMovedInstantReusesSequenceID(t *testing.T) {
	old := time.Date(2026, time.January, 7, 18, 0, 0, 0, time.UTC)
	moved := old.Add(time.Hour)
	committed := []domain.Trigger{trig(domain.CategoryWorkout, "workout-2026-01-07", old)}
	target := []domain.Trigger{trig(domain.CategoryWorkout, "workout-2026-01-07", moved)}

	toCancel, toSchedule := Diff(committed, target)
	if len(toCancel) != 1 || !toCancel[0].At.Equal(old) {
		t.Fatalf("want cancel of 18:00 entry, got %v", toCancel)
	}
	if len(toSchedule) != 1 || !toSchedule[0].At.Equal(moved) {
		t.Fatalf("want schedule of 19:00 entry, got %v", toSchedule)
	}
	if toCancel[0].SequenceID != toSchedule[0].SequenceID {
		t.Fatal("moved occurrence must reuse its sequence id")
	}
}

func TestDiffAddAndRemove(t *testing.T) {
	at := time.Date(2026, time.January, 7, 8, 0, 0, 0, time.UTC)
	keep := trig(domain.CategoryMeal, "meal-2026-01-07", at)
	gone := trig(domain.CategoryHydration, "hydration-2026-01-07", at.Add(3*time.Hour))
	fresh := trig(domain.CategoryMeal, "meal-2026-01-08", at.AddDate(0, 0, 1))

	toCancel, toSchedule := Diff(
		[]domain.Trigger{keep, gone},
		[]domain.Trigger{keep, fresh},
	)
	if len(toCancel) != 1 || toCancel[0].SequenceID != gone.SequenceID {
		t.Fatalf("want cancel of %s, got %v", gone.SequenceID, toCancel)
	}
	if len(toSchedule) != 1 || toSchedule[0].SequenceID != fresh.SequenceID {
		t.Fatalf("want schedule of %s, got %v", fresh.SequenceID, toSchedule)
	}
}

func TestDiffOrderedByInstant(t *testing.T) {
	base := time.Date(2026, time.January, 7, 8, 0, 0, 0, time.UTC)
	target := []domain.Trigger{
		trig(domain.CategoryWorkout, "workout-2026-01-07", base.Add(10*time.Hour)),
		trig(domain.CategoryMeal, "meal-2026-01-07", base),
		trig(domain.CategoryHydration, "hydration-2026-01-07", base.Add(3*time.Hour)),
	}
	_, toSchedule := Diff(nil, target)
	for i := 1; i < len(toSchedule); i++ {
		if toSchedule[i].At.Before(toSchedule[i-1].At) {
			t.Fatalf("schedule list out of order: %v", toSchedule)
		}
	}
}
