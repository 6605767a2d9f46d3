package agent

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	engine "github.com/jason-s-yu/darkfour/engine"
)

func TestMemoryExploredRescalesByMass(t *testing.T) {
	m := NewMemoryExplored(8)
	bs := NewBeliefState(play(t, engine.NewBoard(engine.PlayerA), 3))
	m.Store(bs, ExploredEntry{Column: 2, Value: 10, Depth: 3})

	heavier := bs.Clone()
	heavier.Members()[0].Prob = 2
	e, ok := m.Lookup(heavier)
	require.True(t, ok)
	assert.InDelta(t, 20, e.Value, 1e-9)
	assert.Equal(t, 2, e.Column)
	assert.Equal(t, 3, e.Depth)

	_, ok = m.Lookup(NewBeliefState(play(t, engine.NewBoard(engine.PlayerA), 4)))
	assert.False(t, ok)
}

func TestMemoryExploredStoreReplaces(t *testing.T) {
	m := NewMemoryExplored(8)
	bs := NewBeliefState(engine.NewBoard(engine.PlayerA))
	m.Store(bs, ExploredEntry{Column: 3, Value: 1, Depth: 1})
	m.Store(bs, ExploredEntry{Column: 4, Value: 5, Depth: 2})
	assert.Equal(t, 1, m.Len())
	e, _ := m.Lookup(bs)
	assert.Equal(t, ExploredEntry{Column: 4, Value: 5, Depth: 2}, e)
}

func TestMemoryExploredCapacityClears(t *testing.T) {
	m := NewMemoryExplored(2)
	for col := 0; col < 3; col++ {
		m.Store(NewBeliefState(play(t, engine.NewBoard(engine.PlayerA), col)), ExploredEntry{Column: col, Value: float64(col), Depth: 1})
	}
	assert.Equal(t, 1, m.Len())
	_, ok := m.Lookup(NewBeliefState(play(t, engine.NewBoard(engine.PlayerA), 2)))
	assert.True(t, ok)

	m.Reset()
	assert.Equal(t, 0, m.Len())
}

func TestMemoryExploredConcurrentUse(t *testing.T) {
	m := NewMemoryExplored(0)
	beliefs := make([]*BeliefState, engine.Columns)
	for col := range beliefs {
		beliefs[col] = NewBeliefState(play(t, engine.NewBoard(engine.PlayerA), col))
	}

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				col := i % engine.Columns
				m.Store(beliefs[col], ExploredEntry{Column: col, Value: 1, Depth: 1})
				m.Lookup(beliefs[(col+1)%engine.Columns])
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, engine.Columns, m.Len())
	for col, bs := range beliefs {
		e, ok := m.Lookup(bs)
		require.True(t, ok)
		assert.Equal(t, col, e.Column)
	}
}

func TestRescale(t *testing.T) {
	assert.Equal(t, 6.0, Rescale(3, 2, 1))
	assert.Equal(t, 3.0, Rescale(3, 2, 0))
}
