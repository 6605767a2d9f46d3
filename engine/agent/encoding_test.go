package agent

import (
	"testing"

	engine "github.com/jason-s-yu/darkfour/engine"
)

// TestEncodeEmptyBoard verifies only the column one-hot is set.
func TestEncodeEmptyBoard(t *testing.T) {
	b := engine.NewBoard(engine.PlayerA)
	var out [InputDim]float64
	Encode(&b, 2, &out)

	for i, v := range out {
		want := 0.0
		if i == offColumn+2 {
			want = 1
		}
		if v != want {
			t.Errorf("out[%d] = %v, want %v", i, v, want)
		}
	}
}

// TestEncodeMoverPerspective verifies the planes swap with the side to move.
func TestEncodeMoverPerspective(t *testing.T) {
	b := engine.NewBoard(engine.PlayerA)
	b, _ = b.Drop(3) // A at (0,3), B to move
	b, _ = b.Drop(3) // B at (1,3), A to move

	var out [InputDim]float64
	Encode(&b, 3, &out)
	if out[offMover+3] != 1 {
		t.Errorf("A piece should be in the mover plane")
	}
	if out[offOther+engine.Columns+3] != 1 {
		t.Errorf("B piece should be in the other plane")
	}
	if got, want := out[offHeight], 2.0/engine.Rows; got != want {
		t.Errorf("height = %v, want %v", got, want)
	}
	if got, want := out[offMoves], 2.0/engine.NumCells; got != want {
		t.Errorf("moves = %v, want %v", got, want)
	}
}

// TestEncodeColumnOutOfRange leaves the column group empty.
func TestEncodeColumnOutOfRange(t *testing.T) {
	b := engine.NewBoard(engine.PlayerA)
	var out [InputDim]float64
	out[offColumn] = 5 // stale data must be cleared
	Encode(&b, -1, &out)
	for c := 0; c < engine.Columns; c++ {
		if out[offColumn+c] != 0 {
			t.Errorf("column %d set for an out-of-range column", c)
		}
	}
}

// pickColumn selects a legal column with a deterministic xorshift64 RNG.
func pickColumn(b *engine.Board, rngState *uint64) int {
	legal := b.LegalColumns()
	x := *rngState
	x ^= x << 13
	x ^= x >> 7
	x ^= x << 17
	*rngState = x
	return legal[x%uint64(len(legal))]
}

// TestEncodeRandomGames plays random games and checks the encoding
// invariants after every move: no cell in both planes, the planes count
// the pieces, and exactly one column bit.
func TestEncodeRandomGames(t *testing.T) {
	for seed := uint64(1); seed <= 50; seed++ {
		rng := seed * 0x9E3779B97F4A7C15
		b := engine.NewBoard(engine.PlayerA)
		for !b.IsTerminal() {
			col := pickColumn(&b, &rng)
			var out [InputDim]float64
			Encode(&b, col, &out)

			pieces := 0
			for i := 0; i < engine.NumCells; i++ {
				if out[offMover+i] == 1 && out[offOther+i] == 1 {
					t.Fatalf("seed %d: cell %d in both planes", seed, i)
				}
				pieces += int(out[offMover+i] + out[offOther+i])
			}
			if pieces != int(b.Moves) {
				t.Fatalf("seed %d: planes hold %d pieces, board has %d", seed, pieces, b.Moves)
			}
			ones := 0
			for c := 0; c < engine.Columns; c++ {
				ones += int(out[offColumn+c])
			}
			if ones != 1 {
				t.Fatalf("seed %d: %d column bits, want 1", seed, ones)
			}

			next, err := b.Drop(col)
			if err != nil {
				t.Fatalf("seed %d: drop %d: %v", seed, col, err)
			}
			b = next
		}
	}
}
