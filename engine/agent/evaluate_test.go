package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	engine "github.com/jason-s-yu/darkfour/engine"
)

func TestScoreOnePlyEmptyBoard(t *testing.T) {
	eval := DefaultEvaluator()
	bs := NewBeliefState(engine.NewBoard(engine.PlayerA))
	want := []float64{22.5, 27, 30, 42, 30, 27, 22.5}
	for col, w := range want {
		out, err := bs.ApplyAction(col)
		require.NoError(t, err)
		assert.InDelta(t, w, eval.ScoreOutcomes(out), 1e-9, "column %d", col)
	}
}

func TestScoreBoardSignsAndBlocking(t *testing.T) {
	eval := DefaultEvaluator()

	b := play(t, engine.NewBoard(engine.PlayerB), 3)
	assert.InDelta(t, -42, eval.ScoreBoard(&b), 1e-9, "opponent pieces count against")

	b = play(t, engine.NewBoard(engine.PlayerA), 0, 1)
	assert.Equal(t, 1, BlockedLines(&b, 0, 0, engine.PlayerB))
	assert.Equal(t, 1, BlockedLines(&b, 0, 1, engine.PlayerA))
	// A: 1.25*6*(3-1) = 15, B: 1.125*6*(4-1) = 20.25
	assert.InDelta(t, -5.25, eval.ScoreBoard(&b), 1e-9)

	b.Prob = 0.5
	assert.InDelta(t, -2.625, eval.ScoreBoard(&b), 1e-9)
}

func TestScoreBoardWinTerm(t *testing.T) {
	eval := DefaultEvaluator()
	won := board(t, engine.PlayerB,
		".......",
		".......",
		".......",
		".......",
		".......",
		"AAAABBB",
	)
	lost := board(t, engine.PlayerA,
		".......",
		".......",
		".......",
		".......",
		".......",
		"BBBBAAA",
	)
	assert.Greater(t, eval.ScoreBoard(&won), eval.WinValue/2)
	assert.Less(t, eval.ScoreBoard(&lost), -eval.WinValue/2)
}

func TestScoreBeliefSumsMembers(t *testing.T) {
	eval := DefaultEvaluator()
	root := engine.NewBoard(engine.PlayerB)
	x, y := withProb(play(t, root, 0), 0.5), withProb(play(t, root, 3), 0.5)

	bs := newBelief(0, 1)
	bs.Add(x)
	bs.Add(y)
	assert.InDelta(t, eval.ScoreBoard(&x)+eval.ScoreBoard(&y), eval.ScoreBelief(bs), 1e-9)
	assert.InDelta(t, -0.5*22.5-0.5*42, eval.ScoreBelief(bs), 1e-9)
}
