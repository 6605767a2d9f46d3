package agent

import (
	"errors"
	"fmt"
)

var (
	// ErrNoPlan marks a failed OR/AND node: a cycle on the current path or
	// no move with a feasible sub-plan. It is never returned by the
	// exported entry points.
	ErrNoPlan = errors.New("no feasible plan")

	// ErrSearchExhausted is returned when the root of the search failed.
	ErrSearchExhausted = errors.New("search exhausted: every branch failed or cycled")

	ErrNotPlayerTurn   = errors.New("not the reasoning player's turn")
	ErrNotOpponentTurn = errors.New("not the opponent's turn")
	ErrPerceptNotFound = errors.New("observed percept matches no outcome")
	ErrEmptyBelief     = errors.New("belief state has no members")
)

// InconsistentBeliefStateError reports members of one belief state that
// disagree on something the belief must share.
type InconsistentBeliefStateError struct {
	Reason string
	Member int // index of the first offending member
}

func (e *InconsistentBeliefStateError) Error() string {
	return fmt.Sprintf("inconsistent belief state: member %d: %s", e.Member, e.Reason)
}
