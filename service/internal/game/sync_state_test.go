// internal/game/sync_state_test.go
package game

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	engine "github.com/jason-s-yu/darkfour/engine"
)

func TestObfuscatedStateAfterOpening(t *testing.T) {
	m, _ := setupTestMatch(t, 1, true)
	require.NoError(t, m.Step()) // agent opens in the centre

	obf := m.SyncState()
	assert.Equal(t, m.ID, obf.MatchID)
	assert.Equal(t, "B", obf.ToMove)
	assert.Equal(t, 1, obf.Moves)
	assert.Equal(t, 1, obf.Visible)
	require.Len(t, obf.Grid, engine.Rows)
	assert.Equal(t, "???A???", obf.Grid[engine.Rows-1])
	assert.Equal(t, strings.Repeat("?", engine.Columns), obf.Grid[0])
	assert.Empty(t, obf.FullCols)

	require.NoError(t, m.Step()) // hidden reply
	obf = m.SyncState()
	assert.Equal(t, 2, obf.Moves)
	assert.Equal(t, 1, obf.Visible)
	assert.Equal(t, m.Belief.Len(), obf.BeliefSize)
}

func TestObfuscatedStateGameOverShowsAll(t *testing.T) {
	m, _ := setupTestMatch(t, 4, true)
	for !m.GameOver {
		require.NoError(t, m.Step())
	}
	obf := m.SyncState()
	assert.True(t, obf.GameOver)
	assert.Equal(t, engine.NumCells, obf.Visible)
	for _, row := range obf.Grid {
		assert.NotContains(t, row, string(HiddenCell))
	}
}
