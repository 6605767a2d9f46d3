package engine

// Cell is the content of one board square.
type Cell uint8

const (
	Empty   Cell = iota // 0
	PlayerA             // 1, the reasoning player
	PlayerB             // 2, the opponent, whose pieces are hidden
)

// Other returns the opposing side. Empty maps to Empty.
func (c Cell) Other() Cell {
	switch c {
	case PlayerA:
		return PlayerB
	case PlayerB:
		return PlayerA
	}
	return Empty
}

// String renders the cell as a single character: '.', 'A' or 'B'.
func (c Cell) String() string {
	switch c {
	case PlayerA:
		return "A"
	case PlayerB:
		return "B"
	}
	return "."
}

// ParseCell converts a board character back into a Cell.
func ParseCell(r rune) (Cell, bool) {
	switch r {
	case '.', '_', ' ':
		return Empty, true
	case 'A', 'a', 'X', 'x':
		return PlayerA, true
	case 'B', 'b', 'O', 'o':
		return PlayerB, true
	}
	return Empty, false
}

// Square addresses one cell. Row 0 is the bottom row.
type Square struct {
	Row    int
	Column int
}

// Index returns the bit index of the square (row*Columns + column).
func (s Square) Index() int { return s.Row*Columns + s.Column }

// InBounds reports whether the square lies on the board.
func (s Square) InBounds() bool {
	return s.Row >= 0 && s.Row < Rows && s.Column >= 0 && s.Column < Columns
}
