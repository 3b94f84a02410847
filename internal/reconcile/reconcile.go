// Package reconcile diffs the committed trigger set against a newly
// computed target set. Stateless; the scheduler owns all state.
package reconcile

import (
	"sort"

	"github.com/ablomov/remindd/internal/domain"
)

// Diff returns the minimal operations converging committed to target.
//
// A trigger present in both sets under the same sequence id with the same
// instant is left untouched. A moved instant produces both a cancel for
// the committed entry and a schedule for the target entry, reusing the id.
// Diff(S, S) is empty both ways, so re-running a pass never produces
// redundant delivery calls.
func Diff(committed, target []domain.Trigger) (toCancel, toSchedule []domain.Trigger) {
	targetByID := make(map[domain.SequenceID]domain.Trigger, len(target))
	for _, t := range target {
		targetByID[t.SequenceID] = t
	}
	committedByID := make(map[domain.SequenceID]domain.Trigger, len(committed))
	for _, t := range committed {
		committedByID[t.SequenceID] = t
	}

	for _, c := range committed {
		t, ok := targetByID[c.SequenceID]
		if !ok || !t.At.Equal(c.At) {
			toCancel = append(toCancel, c)
		}
	}
	for _, t := range target {
		c, ok := committedByID[t.SequenceID]
		if !ok || !c.At.Equal(t.At) {
			toSchedule = append(toSchedule, t)
		}
	}

	sortTriggers(toCancel)
	sortTriggers(toSchedule)
	return toCancel, toSchedule
}

func sortTriggers(ts []domain.Trigger) {
	sort.Slice(ts, func(i, j int) bool {
		if !ts[i].At.Equal(ts[j].At) {
			return ts[i].At.Before(ts[j].At)
		}
		return ts[i].SequenceID < ts[j].SequenceID
	})
}
