package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	engine "github.com/jason-s-yu/darkfour/engine"
)

// board parses a top-down picture or fails the test.
func board(t *testing.T, toMove engine.Cell, rows ...string) engine.Board {
	t.Helper()
	b, err := engine.FromRows(rows, toMove)
	require.NoError(t, err)
	return b
}

// play drops pieces into the given columns in order.
func play(t *testing.T, b engine.Board, cols ...int) engine.Board {
	t.Helper()
	for _, c := range cols {
		next, err := b.Drop(c)
		require.NoError(t, err, "drop %d", c)
		b = next
	}
	return b
}

func withProb(b engine.Board, p float64) engine.Board {
	b.Prob = p
	return b
}

func TestBeliefAddMergesIdenticalBoards(t *testing.T) {
	root := engine.NewBoard(engine.PlayerB)
	x := play(t, root, 0)
	y := play(t, root, 4)

	bs := newBelief(0, 1)
	bs.Add(withProb(y, 0.25))
	bs.Add(withProb(x, 0.25))
	bs.Add(withProb(y, 0.5))

	require.Equal(t, 2, bs.Len())
	assert.InDelta(t, 1.0, bs.ProbSum(), 1e-9)
	members := bs.Members()
	assert.Equal(t, -1, engine.Compare(&members[0], &members[1]), "members must stay sorted")
	for _, m := range members {
		if m.SameBoard(&y) {
			assert.InDelta(t, 0.75, m.Prob, 1e-9)
		}
	}
}

func TestBeliefCloneIsDeep(t *testing.T) {
	bs := NewBeliefState(play(t, engine.NewBoard(engine.PlayerA), 3))
	cp := bs.Clone()
	cp.Members()[0].Prob = 0.1
	assert.InDelta(t, 1.0, bs.ProbSum(), 1e-9)
	assert.True(t, bs.Compare(cp) == 0, "probability ratios of single-member beliefs are equal")
}

func TestBeliefNormalize(t *testing.T) {
	root := engine.NewBoard(engine.PlayerB)
	bs := newBelief(0, 1)
	bs.Add(withProb(play(t, root, 0), 2))
	bs.Add(withProb(play(t, root, 1), 6))
	bs.Normalize()
	assert.InDelta(t, 1.0, bs.ProbSum(), 1e-9)
	// Column 1 sorts before column 0: an empty cell orders before a piece.
	assert.InDelta(t, 0.75, bs.Members()[0].Prob, 1e-9)
	assert.InDelta(t, 0.25, bs.Members()[1].Prob, 1e-9)
}

func TestBeliefCompareProbabilityEpsilon(t *testing.T) {
	root := engine.NewBoard(engine.PlayerB)
	x, y := play(t, root, 0), play(t, root, 1)

	mk := func(px, py float64) *BeliefState {
		bs := newBelief(0, 1)
		bs.Add(withProb(x, px))
		bs.Add(withProb(y, py))
		return bs
	}

	base := mk(0.5, 0.5)
	assert.True(t, base.Equal(mk(0.5004, 0.4996)), "difference below epsilon")
	assert.True(t, base.Equal(mk(2, 2)), "scaled mass is the same belief")
	assert.False(t, base.Equal(mk(0.6, 0.4)))
	assert.Equal(t, -base.Compare(mk(0.6, 0.4)), mk(0.6, 0.4).Compare(base))

	other := newBelief(0, 1)
	other.Add(withProb(x, 1))
	assert.NotEqual(t, 0, base.Compare(other), "size differs")

	later := newBelief(0, 2)
	later.Add(withProb(x, 0.5))
	later.Add(withProb(y, 0.5))
	assert.Equal(t, -1, base.Compare(later), "played orders first")
}

func TestBeliefFingerprintIgnoresProbability(t *testing.T) {
	root := engine.NewBoard(engine.PlayerB)
	x, y := play(t, root, 0), play(t, root, 1)

	a := newBelief(0, 1)
	a.Add(withProb(x, 0.5))
	a.Add(withProb(y, 0.5))
	b := newBelief(0, 1)
	b.Add(withProb(y, 3))
	b.Add(withProb(x, 1))
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.Equal(t, a.Structure(), b.Structure())
	assert.Len(t, a.Structure(), 16+2*(engine.NumCells+1))

	c := newBelief(0, 1)
	c.Add(withProb(x, 1))
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())
}

func TestBeliefMovesInconsistent(t *testing.T) {
	full := play(t, engine.NewBoard(engine.PlayerA), 0, 0, 0, 0, 0, 0)
	open := play(t, engine.NewBoard(engine.PlayerA), 1, 1, 1, 1, 1, 1)

	bs := newBelief(0, 6)
	bs.Add(full)
	bs.Add(open)

	_, err := bs.Moves()
	var inc *InconsistentBeliefStateError
	require.ErrorAs(t, err, &inc)
	assert.Contains(t, inc.Error(), "legal columns")
	assert.Error(t, bs.Validate())
}

func TestBeliefMovesAndTurn(t *testing.T) {
	bs := NewBeliefState(engine.NewBoard(engine.PlayerA))
	moves, err := bs.Moves()
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6}, moves)
	assert.Equal(t, engine.PlayerA, bs.Turn())
	assert.Equal(t, 0, bs.Played())
	assert.False(t, bs.IsTerminal())
	assert.False(t, bs.IsFull())
	assert.NoError(t, bs.Validate())

	_, err = newBelief(0, 0).Moves()
	assert.ErrorIs(t, err, ErrEmptyBelief)
}

func TestBeliefString(t *testing.T) {
	bs := NewBeliefState(play(t, engine.NewBoard(engine.PlayerA), 2))
	s := bs.String()
	assert.Contains(t, s, "size=1 played=1")
	assert.Contains(t, s, "0010000", "bottom row of the mask shows the visible own piece")
}
