package agent

import engine "github.com/jason-s-yu/darkfour/engine"

const (
	InputDim = 2*engine.NumCells + engine.Columns + 2

	// offsets into the feature vector
	offMover  = 0
	offOther  = engine.NumCells
	offColumn = 2 * engine.NumCells
	offHeight = offColumn + engine.Columns
	offMoves  = offHeight + 1
)

// Encode writes the feature vector of playing column on b into out, from
// the point of view of the side to move. out is zeroed before writing.
// A column outside the board leaves the column one-hot empty.
func Encode(b *engine.Board, column int, out *[InputDim]float64) {
	*out = [InputDim]float64{}

	// Grid: 42 cells for the mover, then 42 for the other side.
	mover := b.ToMove
	for row := 0; row < engine.Rows; row++ {
		for col := 0; col < engine.Columns; col++ {
			i := row*engine.Columns + col
			switch b.Cells[row][col] {
			case engine.Empty:
			case mover:
				out[offMover+i] = 1
			default:
				out[offOther+i] = 1
			}
		}
	}

	// Candidate column: 7-dim one-hot plus its fill level.
	if column >= 0 && column < engine.Columns {
		out[offColumn+column] = 1
		out[offHeight] = float64(b.Height(column)) / engine.Rows
	}

	// Game progress
	out[offMoves] = float64(b.Moves) / engine.NumCells
}
