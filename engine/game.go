// Package engine implements the board rules of hidden-information connect four.
//
// Board is a flat value type (no pointers, no slices) so it can be copied
// with = and stored by value inside belief states. Every transition returns
// a fresh Board and leaves the receiver untouched.
package engine

import (
	"fmt"
	"strings"
)

const (
	Rows          = 6
	Columns       = 7
	NumCells      = Rows * Columns
	ConnectLength = 4
)

// Board is one fully observed board configuration together with the
// probability weight it carries inside a belief state.
type Board struct {
	Cells   [Rows][Columns]Cell // Cells[row][column], row 0 at the bottom
	Heights [Columns]uint8      // pieces per column
	ToMove  Cell                // side to play next
	Winner  Cell                // Empty unless a four-in-a-row exists
	Moves   uint8               // total pieces on the board
	Flags   uint8
	Prob    float64 // non-negative, not necessarily normalized
}

// ---------------------------------------------------------------------------
// Flags bitfield
// ---------------------------------------------------------------------------

const (
	FlagGameOver uint8 = 1 << 0
)

// ---------------------------------------------------------------------------
// Construction
// ---------------------------------------------------------------------------

// NewBoard returns an empty board with probability 1 and first to move.
func NewBoard(first Cell) Board {
	return Board{ToMove: first, Prob: 1}
}

// FromRows builds a board from a top-down textual picture: rows[0] is the
// top row (row 5) and rows[5] the bottom row. Cells are '.', 'A' or 'B'.
// The board gets probability 1; winner and game-over flag are recomputed.
func FromRows(rows []string, toMove Cell) (Board, error) {
	if toMove != PlayerA && toMove != PlayerB {
		return Board{}, fmt.Errorf("side to move must be A or B, got %v", toMove)
	}
	if len(rows) != Rows {
		return Board{}, fmt.Errorf("expected %d rows, got %d", Rows, len(rows))
	}
	b := NewBoard(toMove)
	for i, line := range rows {
		runes := []rune(line)
		if len(runes) != Columns {
			return Board{}, fmt.Errorf("row %d: expected %d cells, got %d", i, Columns, len(runes))
		}
		row := Rows - 1 - i
		for col, r := range runes {
			c, ok := ParseCell(r)
			if !ok {
				return Board{}, fmt.Errorf("row %d column %d: unknown cell %q", i, col, r)
			}
			b.Cells[row][col] = c
		}
	}
	for col := 0; col < Columns; col++ {
		h := 0
		for h < Rows && b.Cells[h][col] != Empty {
			h++
		}
		for row := h; row < Rows; row++ {
			if b.Cells[row][col] != Empty {
				return Board{}, fmt.Errorf("column %d: floating piece at row %d", col, row)
			}
		}
		b.Heights[col] = uint8(h)
		b.Moves += uint8(h)
	}
	if err := b.refresh(); err != nil {
		return Board{}, err
	}
	return b, nil
}

// MustFromRows is FromRows for fixed pictures in tests and examples.
func MustFromRows(rows []string, toMove Cell) Board {
	b, err := FromRows(rows, toMove)
	if err != nil {
		panic(err)
	}
	return b
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

// At returns the content of (row, column). Out-of-range squares read Empty.
func (b *Board) At(row, column int) Cell {
	if row < 0 || row >= Rows || column < 0 || column >= Columns {
		return Empty
	}
	return b.Cells[row][column]
}

// Height returns the number of pieces in column.
func (b *Board) Height(column int) int { return int(b.Heights[column]) }

// IsFull reports whether column has no free row left.
func (b *Board) IsFull(column int) bool { return b.Heights[column] >= Rows }

// IsBoardFull reports whether all 42 cells are occupied.
func (b *Board) IsBoardFull() bool { return int(b.Moves) >= NumCells }

// Count returns how many pieces side has on the board.
func (b *Board) Count(side Cell) int {
	n := 0
	for row := 0; row < Rows; row++ {
		for col := 0; col < Columns; col++ {
			if b.Cells[row][col] == side {
				n++
			}
		}
	}
	return n
}

// ---------------------------------------------------------------------------
// Ordering
// ---------------------------------------------------------------------------

// Compare orders boards by grid contents, then by side to move. Probability
// is deliberately ignored so identical boards compare equal and can have
// their mass merged.
func Compare(a, b *Board) int {
	for row := 0; row < Rows; row++ {
		for col := 0; col < Columns; col++ {
			x, y := a.Cells[row][col], b.Cells[row][col]
			if x != y {
				if x < y {
					return -1
				}
				return 1
			}
		}
	}
	switch {
	case a.ToMove < b.ToMove:
		return -1
	case a.ToMove > b.ToMove:
		return 1
	}
	return 0
}

// SameBoard reports whether o has the same grid and side to move.
func (b *Board) SameBoard(o *Board) bool { return Compare(b, o) == 0 }

// String renders the board top-down, one line per row.
func (b *Board) String() string {
	var sb strings.Builder
	for row := Rows - 1; row >= 0; row-- {
		for col := 0; col < Columns; col++ {
			sb.WriteString(b.Cells[row][col].String())
		}
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "to move: %v, p=%.4f", b.ToMove, b.Prob)
	return sb.String()
}
