package agent

import engine "github.com/jason-s-yu/darkfour/engine"

// OpponentModel scores how attractive column is to the side to move on
// board. Values must be non-negative; only their ratios matter.
type OpponentModel interface {
	HeuristicValue(board engine.Board, column int) float64
}

// OpponentFunc adapts a plain function to OpponentModel.
type OpponentFunc func(board engine.Board, column int) float64

func (f OpponentFunc) HeuristicValue(board engine.Board, column int) float64 { return f(board, column) }

// UniformOpponent considers every safe column equally likely.
type UniformOpponent struct{}

func (UniformOpponent) HeuristicValue(engine.Board, int) float64 { return 1 }

// HeuristicOpponent prefers landing cells that open many lines for the
// mover and close lines still open to the other side.
type HeuristicOpponent struct{}

// HeuristicValue returns 1 plus the windows through the landing cell free
// of enemy pieces plus the enemy windows the piece would block.
func (HeuristicOpponent) HeuristicValue(board engine.Board, column int) float64 {
	row := board.LandingRow(column)
	if row < 0 {
		return 0
	}
	mover := board.ToMove
	enemy := mover.Other()
	value := 1.0
	for _, w := range engine.WindowsThrough(row, column) {
		hasEnemy := board.Holds(w, enemy)
		if !hasEnemy {
			value++
		}
		if hasEnemy && !board.Holds(w, mover) {
			value++
		}
	}
	return value
}

// ParseOpponent resolves a model by name: "uniform" or "heuristic".
// Neural models are built with NewNeuralOpponent.
func ParseOpponent(name string) (OpponentModel, bool) {
	switch name {
	case "uniform":
		return UniformOpponent{}, true
	case "heuristic", "":
		return HeuristicOpponent{}, true
	}
	return nil, false
}
