package agent

import engine "github.com/jason-s-yu/darkfour/engine"

// Evaluator scores boards from the reasoning player's point of view.
//
// Every occupied cell contributes ColumnWeights[col] * RowWeights[row] *
// (LinePotential - BlockedLines), positive for PlayerA and negative for
// PlayerB. A finished game adds or subtracts WinValue. The total is scaled
// by the board's probability.
type Evaluator struct {
	ColumnWeights [engine.Columns]float64
	RowWeights    [engine.Rows]float64
	WinValue      float64
}

// DefaultEvaluator weights bottom rows and edge columns up so the search
// does not pile pieces into the centre.
func DefaultEvaluator() Evaluator {
	return Evaluator{
		ColumnWeights: [engine.Columns]float64{1.25, 1.125, 1, 1, 1, 1.125, 1.25},
		RowWeights:    [engine.Rows]float64{6, 5, 4, 3, 2, 1},
		WinValue:      10000,
	}
}

// BlockedLines counts the windows through (row, column) that contain at
// least one opponent piece.
func BlockedLines(b *engine.Board, row, column int, opponent engine.Cell) int {
	n := 0
	for _, w := range engine.WindowsThrough(row, column) {
		if b.Holds(w, opponent) {
			n++
		}
	}
	return n
}

// ScoreBoard evaluates one board, already weighted by b.Prob.
func (e Evaluator) ScoreBoard(b *engine.Board) float64 {
	total := 0.0
	for row := 0; row < engine.Rows; row++ {
		for col := 0; col < engine.Columns; col++ {
			owner := b.Cells[row][col]
			if owner == engine.Empty {
				continue
			}
			open := float64(engine.LinePotential[row][col] - BlockedLines(b, row, col, owner.Other()))
			term := e.ColumnWeights[col] * e.RowWeights[row] * open
			if owner == engine.PlayerA {
				total += term
			} else {
				total -= term
			}
		}
	}
	switch b.Winner {
	case engine.PlayerA:
		total += e.WinValue
	case engine.PlayerB:
		total -= e.WinValue
	}
	return b.Prob * total
}

// ScoreBelief sums ScoreBoard over the members.
func (e Evaluator) ScoreBelief(s *BeliefState) float64 {
	total := 0.0
	s.Each(func(b *engine.Board) { total += e.ScoreBoard(b) })
	return total
}

// ScoreOutcomes sums ScoreBoard over every member of every bucket. Buckets
// are not weighted by their own mass beyond what the members carry.
func (e Evaluator) ScoreOutcomes(o *OutcomeSet) float64 {
	total := 0.0
	for _, bs := range o.Beliefs() {
		total += e.ScoreBelief(bs)
	}
	return total
}
