// Package agent implements belief tracking and AND-OR search for the
// reasoning player of hidden-information connect four.
package agent

import (
	"encoding/binary"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/cespare/xxhash/v2"

	engine "github.com/jason-s-yu/darkfour/engine"
)

// ProbEpsilon is the tolerance used when comparing normalized member
// probabilities of two belief states.
const ProbEpsilon = 1e-3

// BeliefState is a deduplicated, probability-weighted set of boards that
// share one visibility mask and one move count. Members are kept sorted by
// engine.Compare; adding a board already present sums the probabilities.
type BeliefState struct {
	mask    VisibilityMask
	played  int
	members []engine.Board
}

// NewBeliefState returns the belief of a fully known position. The mask is
// derived from the board itself.
func NewBeliefState(b engine.Board) *BeliefState {
	bs := newBelief(DeriveMask(&b), int(b.Moves))
	bs.Add(b)
	return bs
}

func newBelief(mask VisibilityMask, played int) *BeliefState {
	return &BeliefState{mask: mask, played: played}
}

// Add inserts b, merging its probability into an identical member.
func (s *BeliefState) Add(b engine.Board) {
	i, found := slices.BinarySearchFunc(s.members, b, func(x, t engine.Board) int {
		return engine.Compare(&x, &t)
	})
	if found {
		s.members[i].Prob += b.Prob
		return
	}
	s.members = slices.Insert(s.members, i, b)
}

func (s *BeliefState) Len() int { return len(s.members) }

// Mask returns the visibility shared by all members.
func (s *BeliefState) Mask() VisibilityMask { return s.mask }

// Played returns the number of pieces on every member board.
func (s *BeliefState) Played() int { return s.played }

// Members returns the sorted members. The slice must not be modified.
func (s *BeliefState) Members() []engine.Board { return s.members }

// Each calls fn for every member in order. The pointer is only valid for
// the duration of the call.
func (s *BeliefState) Each(fn func(b *engine.Board)) {
	for i := range s.members {
		fn(&s.members[i])
	}
}

// Turn returns the side to move, read from the representative member.
func (s *BeliefState) Turn() engine.Cell {
	if len(s.members) == 0 {
		return engine.Empty
	}
	return s.members[0].ToMove
}

// IsTerminal reports whether the game is over in every member. An empty
// belief is terminal.
func (s *BeliefState) IsTerminal() bool {
	for i := range s.members {
		if !s.members[i].IsTerminal() {
			return false
		}
	}
	return true
}

// IsFull reports whether the representative member has no empty cell.
func (s *BeliefState) IsFull() bool {
	return len(s.members) > 0 && s.members[0].IsBoardFull()
}

// ProbSum returns the total probability mass of the members.
func (s *BeliefState) ProbSum() float64 {
	sum := 0.0
	for i := range s.members {
		sum += s.members[i].Prob
	}
	return sum
}

// Normalize rescales member probabilities to sum to 1. A belief with no
// mass is left unchanged.
func (s *BeliefState) Normalize() {
	sum := s.ProbSum()
	if sum <= 0 {
		return
	}
	for i := range s.members {
		s.members[i].Prob /= sum
	}
}

// Clone returns a deep copy.
func (s *BeliefState) Clone() *BeliefState {
	return &BeliefState{mask: s.mask, played: s.played, members: slices.Clone(s.members)}
}

// Moves returns the legal columns of the belief. Members sharing a mask and
// move count must agree on which columns are open; a disagreement is
// reported as *InconsistentBeliefStateError.
func (s *BeliefState) Moves() ([]int, error) {
	if len(s.members) == 0 {
		return nil, ErrEmptyBelief
	}
	if s.IsTerminal() {
		return nil, nil
	}
	legal := s.members[0].LegalMask()
	for i := 1; i < len(s.members); i++ {
		if s.members[i].LegalMask() != legal {
			return nil, &InconsistentBeliefStateError{Reason: "legal columns differ", Member: i}
		}
	}
	return s.members[0].LegalColumns(), nil
}

// Validate checks every invariant shared by the members: side to move,
// move count, legal columns and the contents of visible cells.
func (s *BeliefState) Validate() error {
	if len(s.members) == 0 {
		return ErrEmptyBelief
	}
	first := &s.members[0]
	want := Observe(s.mask, first)
	for i := range s.members {
		b := &s.members[i]
		switch {
		case b.ToMove != first.ToMove:
			return &InconsistentBeliefStateError{Reason: "side to move differs", Member: i}
		case int(b.Moves) != s.played:
			return &InconsistentBeliefStateError{
				Reason: fmt.Sprintf("move count %d, belief played %d", b.Moves, s.played),
				Member: i,
			}
		case b.LegalMask() != first.LegalMask():
			return &InconsistentBeliefStateError{Reason: "legal columns differ", Member: i}
		case Observe(s.mask, b) != want:
			return &InconsistentBeliefStateError{Reason: "visible cells differ", Member: i}
		case b.Prob < 0 || math.IsNaN(b.Prob):
			return &InconsistentBeliefStateError{Reason: "negative probability", Member: i}
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Ordering and identity
// ---------------------------------------------------------------------------

// Compare orders belief states by played moves, mask, size, members and
// finally by normalized member probabilities. Probabilities closer than
// ProbEpsilon are treated as equal.
func (s *BeliefState) Compare(o *BeliefState) int {
	switch {
	case s.played != o.played:
		return cmpInt(s.played, o.played)
	case s.mask != o.mask:
		if s.mask < o.mask {
			return -1
		}
		return 1
	case len(s.members) != len(o.members):
		return cmpInt(len(s.members), len(o.members))
	}
	for i := range s.members {
		if c := engine.Compare(&s.members[i], &o.members[i]); c != 0 {
			return c
		}
	}
	sum1, sum2 := s.ProbSum(), o.ProbSum()
	for i := range s.members {
		p, q := normalized(s.members[i].Prob, sum1), normalized(o.members[i].Prob, sum2)
		if math.Abs(p-q) > ProbEpsilon {
			if p < q {
				return -1
			}
			return 1
		}
	}
	return 0
}

// Equal reports whether Compare returns 0.
func (s *BeliefState) Equal(o *BeliefState) bool { return s.Compare(o) == 0 }

func normalized(p, sum float64) float64 {
	if sum <= 0 {
		return 0
	}
	return p / sum
}

func cmpInt(a, b int) int {
	if a < b {
		return -1
	}
	return 1
}

// Fingerprint hashes the structure of the belief: played count, mask and
// member boards. Probabilities are excluded, so equal beliefs always share
// a fingerprint.
func (s *BeliefState) Fingerprint() uint64 {
	return xxhash.Sum64(s.Structure())
}

// Structure encodes everything Compare looks at except probabilities:
// played count and mask, then each member's cells and side to move in
// member order.
func (s *BeliefState) Structure() []byte {
	out := make([]byte, 16, 16+len(s.members)*(engine.NumCells+1))
	binary.LittleEndian.PutUint64(out[:8], uint64(s.played))
	binary.LittleEndian.PutUint64(out[8:], uint64(s.mask))
	for i := range s.members {
		b := &s.members[i]
		for row := 0; row < engine.Rows; row++ {
			for col := 0; col < engine.Columns; col++ {
				out = append(out, byte(b.Cells[row][col]))
			}
		}
		out = append(out, byte(b.ToMove))
	}
	return out
}

// String renders the visibility grid followed by every member.
func (s *BeliefState) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "belief: size=%d played=%d\n%v\n", len(s.members), s.played, s.mask)
	for i := range s.members {
		sb.WriteString(s.members[i].String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
