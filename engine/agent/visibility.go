package agent

import (
	"math/bits"
	"strings"

	engine "github.com/jason-s-yu/darkfour/engine"
)

// VisibilityMask holds one bit per cell (bit row*7+column) telling whether
// the reasoning player can observe that cell.
type VisibilityMask uint64

// FullMask has every cell visible.
const FullMask VisibilityMask = 1<<engine.NumCells - 1

// MaskBytes is the byte length of the packed mask.
const MaskBytes = (engine.NumCells + 7) / 8

func bit(row, column int) VisibilityMask {
	return 1 << (row*engine.Columns + column)
}

// IsVisible reports whether (row, column) is visible.
func (m VisibilityMask) IsVisible(row, column int) bool { return m&bit(row, column) != 0 }

// With returns m with (row, column) made visible.
func (m VisibilityMask) With(row, column int) VisibilityMask { return m | bit(row, column) }

// Count returns the number of visible cells.
func (m VisibilityMask) Count() int {
	return bits.OnesCount64(uint64(m))
}

// Bytes packs the mask into MaskBytes bytes, cell i at byte i/8 bit i%8.
func (m VisibilityMask) Bytes() [MaskBytes]byte {
	var out [MaskBytes]byte
	for i := range out {
		out[i] = byte(m >> (8 * i))
	}
	return out
}

// String renders the mask top-down with '1' for visible cells.
func (m VisibilityMask) String() string {
	var sb strings.Builder
	for row := engine.Rows - 1; row >= 0; row-- {
		for col := 0; col < engine.Columns; col++ {
			if m.IsVisible(row, col) {
				sb.WriteByte('1')
			} else {
				sb.WriteByte('0')
			}
		}
		if row > 0 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// columnMask computes the visibility of one column of b from scratch. The
// top cell is visible only when the column is full. Scanning downward, a
// cell becomes visible once a reasoning-player piece has been seen at or
// above it; from then on every cell below is known.
func columnMask(b *engine.Board, column int) VisibilityMask {
	var m VisibilityMask
	visible := b.IsFull(column)
	if visible {
		m = m.With(engine.Rows-1, column)
	}
	for row := engine.Rows - 2; row >= 0; row-- {
		visible = visible || b.At(row, column) == engine.PlayerA
		if visible {
			m = m.With(row, column)
		}
	}
	return m
}

// UpdateMask returns the mask after a drop into column produced b. A board
// whose game is over is fully visible. Cells never become hidden again.
func UpdateMask(prior VisibilityMask, b *engine.Board, column int) VisibilityMask {
	if b.IsTerminal() {
		return FullMask
	}
	return prior | columnMask(b, column)
}

// DeriveMask computes the mask of an observed board with no history.
func DeriveMask(b *engine.Board) VisibilityMask {
	if b.IsTerminal() {
		return FullMask
	}
	var m VisibilityMask
	for col := 0; col < engine.Columns; col++ {
		m |= columnMask(b, col)
	}
	return m
}

// ---------------------------------------------------------------------------
// Percepts
// ---------------------------------------------------------------------------

// Percept is what the reasoning player observes about a board: which cells
// are visible and which of those hold opponent pieces.
type Percept struct {
	Mask     VisibilityMask
	Opponent VisibilityMask // visible cells holding a PlayerB piece
}

// PerceptKey is the compact, comparable form of a Percept.
type PerceptKey [2 * MaskBytes]byte

// Observe builds the percept of b under mask.
func Observe(mask VisibilityMask, b *engine.Board) Percept {
	p := Percept{Mask: mask}
	for row := 0; row < engine.Rows; row++ {
		for col := 0; col < engine.Columns; col++ {
			if mask.IsVisible(row, col) && b.At(row, col) == engine.PlayerB {
				p.Opponent = p.Opponent.With(row, col)
			}
		}
	}
	return p
}

// Key packs the percept.
func (p Percept) Key() PerceptKey {
	var k PerceptKey
	m, o := p.Mask.Bytes(), p.Opponent.Bytes()
	copy(k[:MaskBytes], m[:])
	copy(k[MaskBytes:], o[:])
	return k
}

// Compare orders keys bytewise.
func (k PerceptKey) Compare(o PerceptKey) int {
	for i := range k {
		if k[i] != o[i] {
			if k[i] < o[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}
