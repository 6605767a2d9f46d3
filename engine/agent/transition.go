package agent

import (
	"fmt"

	engine "github.com/jason-s-yu/darkfour/engine"
)

// ApplyAction drops the reasoning player's piece into column on every
// member and buckets the results by percept. Probabilities carry over
// unchanged. Any member rejecting the drop fails the whole transition with
// its *engine.InvalidMoveError.
func (s *BeliefState) ApplyAction(column int) (*OutcomeSet, error) {
	if len(s.members) == 0 {
		return nil, ErrEmptyBelief
	}
	if s.Turn() != engine.PlayerA {
		return nil, ErrNotPlayerTurn
	}
	out := newOutcomeSet()
	for i := range s.members {
		next, err := s.members[i].Drop(column)
		if err != nil {
			return nil, fmt.Errorf("apply column %d to member %d: %w", column, i, err)
		}
		out.add(UpdateMask(s.mask, &next, column), s.played+1, next)
	}
	return out, nil
}

// Predict expands every member with the opponent replies model considers
// plausible, weighted as in OpponentReplies, and buckets the results by
// percept. A terminal belief yields an empty set.
func (s *BeliefState) Predict(model OpponentModel) (*OutcomeSet, error) {
	if len(s.members) == 0 {
		return nil, ErrEmptyBelief
	}
	if s.Turn() != engine.PlayerB {
		return nil, ErrNotOpponentTurn
	}
	out := newOutcomeSet()
	if s.IsTerminal() {
		return out, nil
	}
	for i := range s.members {
		parent := &s.members[i]
		cols, weights := OpponentReplies(parent, model)
		sel := NewRandomSelector(weights...)
		for j, col := range cols {
			next, err := parent.Drop(col)
			if err != nil {
				return nil, fmt.Errorf("predict column %d on member %d: %w", col, i, err)
			}
			next.Prob = parent.Prob * sel.Probability(j)
			out.add(UpdateMask(s.mask, &next, col), s.played+1, next)
		}
	}
	return out, nil
}

// OpponentReplies returns the columns the opponent is expected to consider
// on b together with their unnormalized weights:
//
//   - columns that end the game at once, if any, with equal weight;
//   - otherwise columns after which the reasoning player cannot end the
//     game on the next move, weighted by model;
//   - otherwise the columns leaving the fewest game-ending replies, with
//     equal weight.
func OpponentReplies(b *engine.Board, model OpponentModel) ([]int, []float64) {
	var (
		ending, safe, risky []int
		safeWeights         []float64
		minReplies          = engine.Columns + 1
	)
	for _, col := range b.LegalColumns() {
		next, err := b.Drop(col)
		if err != nil {
			continue
		}
		if next.IsTerminal() {
			ending = append(ending, col)
			continue
		}
		if len(ending) > 0 {
			continue
		}
		replies := len(next.WinningColumns())
		switch {
		case replies == 0:
			w := model.HeuristicValue(*b, col)
			if w < 0 {
				w = 0
			}
			safe = append(safe, col)
			safeWeights = append(safeWeights, w)
		case replies < minReplies:
			minReplies = replies
			risky = append(risky[:0], col)
		case replies == minReplies:
			risky = append(risky, col)
		}
	}
	switch {
	case len(ending) > 0:
		return ending, uniform(len(ending))
	case len(safe) > 0:
		return safe, safeWeights
	}
	return risky, uniform(len(risky))
}

func uniform(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 1
	}
	return w
}

// Filter collapses outcomes to the bucket matching what was actually
// observed on board and returns a copy whose member probabilities sum
// to 1. outcomes is not modified.
func Filter(outcomes *OutcomeSet, observed engine.Board) (*BeliefState, error) {
	key := Observe(DeriveMask(&observed), &observed).Key()
	bs := outcomes.Get(key)
	if bs == nil {
		return nil, ErrPerceptNotFound
	}
	out := bs.Clone()
	out.Normalize()
	return out, nil
}

// ---------------------------------------------------------------------------
// RandomSelector
// ---------------------------------------------------------------------------

// RandomSelector turns non-negative weights into a discrete distribution.
// When every weight is zero the distribution is uniform.
type RandomSelector struct {
	weights []float64
	total   float64
}

// NewRandomSelector builds a selector over weights.
func NewRandomSelector(weights ...float64) *RandomSelector {
	rs := &RandomSelector{}
	for _, w := range weights {
		rs.Add(w)
	}
	return rs
}

// Add appends a weight. Negative weights count as zero.
func (rs *RandomSelector) Add(w float64) {
	if w < 0 {
		w = 0
	}
	rs.weights = append(rs.weights, w)
	rs.total += w
}

func (rs *RandomSelector) Len() int { return len(rs.weights) }

// Probability returns weight i divided by the sum of weights.
func (rs *RandomSelector) Probability(i int) float64 {
	if i < 0 || i >= len(rs.weights) {
		return 0
	}
	if rs.total <= 0 {
		return 1 / float64(len(rs.weights))
	}
	return rs.weights[i] / rs.total
}

// Pick maps u in [0,1) to an index drawn from the distribution.
func (rs *RandomSelector) Pick(u float64) int {
	if len(rs.weights) == 0 {
		return -1
	}
	acc := 0.0
	for i := range rs.weights {
		acc += rs.Probability(i)
		if u < acc {
			return i
		}
	}
	return len(rs.weights) - 1
}
