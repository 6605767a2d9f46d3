package agent

import "sync"

// ExploredEntry is the memoized result of an OR node: the chosen column,
// its value and the number of plies searched below the node.
type ExploredEntry struct {
	Column int
	Value  float64
	Depth  int
}

// ExploredSet memoizes OR-node decisions by belief state. A lookup matches
// any belief equal to a stored one and rescales the stored value by the
// ratio of probability masses, so the same structure reached with a
// different total mass is valued proportionally.
type ExploredSet interface {
	Lookup(s *BeliefState) (ExploredEntry, bool)
	Store(s *BeliefState, e ExploredEntry)
	Reset()
}

// DefaultExploredCapacity bounds MemoryExplored when no capacity is given.
const DefaultExploredCapacity = 1 << 16

type exploredEntry struct {
	belief *BeliefState
	entry  ExploredEntry
}

// MemoryExplored is an in-process ExploredSet keyed by Fingerprint. When
// it reaches capacity it is cleared. It is safe for concurrent use, so one
// set can serve every searcher of a batch.
type MemoryExplored struct {
	mu       sync.Mutex
	entries  map[uint64][]exploredEntry
	size     int
	capacity int
}

// NewMemoryExplored returns an empty set holding at most capacity beliefs.
func NewMemoryExplored(capacity int) *MemoryExplored {
	if capacity <= 0 {
		capacity = DefaultExploredCapacity
	}
	return &MemoryExplored{entries: make(map[uint64][]exploredEntry), capacity: capacity}
}

func (m *MemoryExplored) Lookup(s *BeliefState) (ExploredEntry, bool) {
	fp := s.Fingerprint()
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries[fp] {
		if e.belief.Equal(s) {
			out := e.entry
			out.Value = Rescale(out.Value, s.ProbSum(), e.belief.ProbSum())
			return out, true
		}
	}
	return ExploredEntry{}, false
}

func (m *MemoryExplored) Store(s *BeliefState, e ExploredEntry) {
	fp := s.Fingerprint()
	m.mu.Lock()
	defer m.mu.Unlock()
	chain := m.entries[fp]
	for i := range chain {
		if chain[i].belief.Equal(s) {
			chain[i] = exploredEntry{belief: s.Clone(), entry: e}
			return
		}
	}
	if m.size >= m.capacity {
		m.reset()
	}
	m.entries[fp] = append(m.entries[fp], exploredEntry{belief: s.Clone(), entry: e})
	m.size++
}

func (m *MemoryExplored) Reset() {
	m.mu.Lock()
	m.reset()
	m.mu.Unlock()
}

func (m *MemoryExplored) reset() {
	clear(m.entries)
	m.size = 0
}

// Len returns the number of stored beliefs.
func (m *MemoryExplored) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.size
}

// Rescale scales a value stored for mass storedSum to mass sum.
func Rescale(value, sum, storedSum float64) float64 {
	if storedSum == 0 {
		return value
	}
	return value * sum / storedSum
}
