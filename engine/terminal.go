package engine

import "fmt"

// IsTerminal reports whether the game is over: a four-in-a-row exists for
// either side or all 42 cells are filled.
func (b *Board) IsTerminal() bool {
	return b.Flags&FlagGameOver != 0 || b.IsBoardFull()
}

// HasFour reports whether side owns a complete window anywhere.
func (b *Board) HasFour(side Cell) bool {
	for _, w := range allWindows {
		if b.owns(w, side) {
			return true
		}
	}
	return false
}

// completesLine reports whether the piece at (row, column) sits in a
// complete window of its own colour. Only windows through that cell are
// checked, which is all a single drop can change.
func (b *Board) completesLine(row, column int) bool {
	side := b.Cells[row][column]
	if side == Empty {
		return false
	}
	for _, w := range cellWindows[row][column] {
		if b.owns(w, side) {
			return true
		}
	}
	return false
}

// refresh recomputes Winner and Flags from the grid.
func (b *Board) refresh() error {
	a, bb := b.HasFour(PlayerA), b.HasFour(PlayerB)
	if a && bb {
		return fmt.Errorf("both sides have four in a row")
	}
	b.Winner = Empty
	b.Flags &^= FlagGameOver
	switch {
	case a:
		b.Winner = PlayerA
	case bb:
		b.Winner = PlayerB
	}
	if b.Winner != Empty || b.IsBoardFull() {
		b.Flags |= FlagGameOver
	}
	return nil
}
