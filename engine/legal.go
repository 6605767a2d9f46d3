package engine

// LegalColumns returns the columns that accept a piece, in ascending order.
// A terminal board has none.
func (b *Board) LegalColumns() []int {
	if b.IsTerminal() {
		return nil
	}
	cols := make([]int, 0, Columns)
	for col := 0; col < Columns; col++ {
		if !b.IsFull(col) {
			cols = append(cols, col)
		}
	}
	return cols
}

// LegalMask returns the legal columns as a bitmask (bit i set if column i
// accepts a piece). Zero heap allocation.
func (b *Board) LegalMask() uint8 {
	if b.IsTerminal() {
		return 0
	}
	var mask uint8
	for col := 0; col < Columns; col++ {
		if !b.IsFull(col) {
			mask |= 1 << col
		}
	}
	return mask
}

// WinningColumns returns the columns in which the side to move completes a
// four-in-a-row or fills the board, i.e. every column whose drop ends the game.
func (b *Board) WinningColumns() []int {
	var cols []int
	for _, col := range b.LegalColumns() {
		next, err := b.Drop(col)
		if err == nil && next.IsTerminal() {
			cols = append(cols, col)
		}
	}
	return cols
}
