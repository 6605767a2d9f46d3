package engine

import (
	"errors"
	"fmt"
)

var (
	ErrColumnRange = errors.New("column out of range")
	ErrColumnFull  = errors.New("column is full")
	ErrGameOver    = errors.New("game is already over")
)

// InvalidMoveError reports a drop that the board cannot accept.
type InvalidMoveError struct {
	Column int
	Err    error // ErrColumnRange, ErrColumnFull or ErrGameOver
}

func (e *InvalidMoveError) Error() string {
	return fmt.Sprintf("invalid move in column %d: %v", e.Column, e.Err)
}

func (e *InvalidMoveError) Unwrap() error { return e.Err }

// Drop places the side-to-move's piece in the lowest empty row of column
// and returns the resulting board. The receiver is not modified.
func (b *Board) Drop(column int) (Board, error) {
	if column < 0 || column >= Columns {
		return Board{}, &InvalidMoveError{Column: column, Err: ErrColumnRange}
	}
	if b.IsTerminal() {
		return Board{}, &InvalidMoveError{Column: column, Err: ErrGameOver}
	}
	if b.IsFull(column) {
		return Board{}, &InvalidMoveError{Column: column, Err: ErrColumnFull}
	}

	next := *b
	row := int(next.Heights[column])
	next.Cells[row][column] = b.ToMove
	next.Heights[column]++
	next.Moves++
	if next.completesLine(row, column) {
		next.Winner = b.ToMove
		next.Flags |= FlagGameOver
	} else if next.IsBoardFull() {
		next.Flags |= FlagGameOver
	}
	next.ToMove = b.ToMove.Other()
	return next, nil
}

// LandingRow returns the row a piece dropped into column would occupy, or
// -1 when the column is full.
func (b *Board) LandingRow(column int) int {
	if b.IsFull(column) {
		return -1
	}
	return int(b.Heights[column])
}
