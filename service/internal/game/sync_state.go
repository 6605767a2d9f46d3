// internal/game/sync_state.go
package game

import (
	"strings"

	"github.com/google/uuid"

	engine "github.com/jason-s-yu/darkfour/engine"
	"github.com/jason-s-yu/darkfour/engine/agent"
)

// HiddenCell marks a cell the agent cannot see in an ObfMatchState grid.
const HiddenCell = '?'

// ObfMatchState is the match as the agent sees it.
type ObfMatchState struct {
	MatchID    uuid.UUID `json:"matchId"`
	GameOver   bool      `json:"gameOver"`
	ToMove     string    `json:"toMove"`
	Turns      int       `json:"turns"`
	Moves      int       `json:"moves"` // pieces played, always known
	Grid       []string  `json:"grid"`  // top-down rows, HiddenCell where unseen
	Visible    int       `json:"visible"`
	BeliefSize int       `json:"beliefSize"`
	FullCols   []int     `json:"fullCols,omitempty"`
}

// GetObfuscatedMatchState renders the true board through the agent's
// visibility mask. This function assumes the match lock is HELD by the caller.
func (m *Match) GetObfuscatedMatchState() ObfMatchState {
	mask := m.Belief.Mask()
	obf := ObfMatchState{
		MatchID:    m.ID,
		GameOver:   m.GameOver,
		ToMove:     m.Board.ToMove.String(),
		Turns:      m.Turns,
		Moves:      int(m.Board.Moves),
		Grid:       obfuscatedGrid(&m.Board, mask),
		Visible:    mask.Count(),
		BeliefSize: m.Belief.Len(),
	}
	for col := 0; col < engine.Columns; col++ {
		if m.Board.IsFull(col) {
			obf.FullCols = append(obf.FullCols, col)
		}
	}
	return obf
}

// SyncState is the locking form of GetObfuscatedMatchState.
func (m *Match) SyncState() ObfMatchState {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	return m.GetObfuscatedMatchState()
}

func obfuscatedGrid(b *engine.Board, mask agent.VisibilityMask) []string {
	rows := make([]string, 0, engine.Rows)
	for row := engine.Rows - 1; row >= 0; row-- {
		var sb strings.Builder
		for col := 0; col < engine.Columns; col++ {
			if mask.IsVisible(row, col) {
				sb.WriteString(b.At(row, col).String())
			} else {
				sb.WriteByte(HiddenCell)
			}
		}
		rows = append(rows, sb.String())
	}
	return rows
}
