package agent

import (
	"slices"

	engine "github.com/jason-s-yu/darkfour/engine"
)

// OutcomeSet partitions the boards produced by one transition by the
// percept each of them yields. Every bucket is a belief state; the buckets
// never overlap.
type OutcomeSet struct {
	buckets map[PerceptKey]*BeliefState
	keys    []PerceptKey // sorted
}

func newOutcomeSet() *OutcomeSet {
	return &OutcomeSet{buckets: make(map[PerceptKey]*BeliefState)}
}

// add files b under the percept it yields with mask.
func (o *OutcomeSet) add(mask VisibilityMask, played int, b engine.Board) {
	key := Observe(mask, &b).Key()
	bs, ok := o.buckets[key]
	if !ok {
		bs = newBelief(mask, played)
		o.buckets[key] = bs
		i, _ := slices.BinarySearchFunc(o.keys, key, PerceptKey.Compare)
		o.keys = slices.Insert(o.keys, i, key)
	}
	bs.Add(b)
}

// Get returns the belief filed under key, or nil.
func (o *OutcomeSet) Get(key PerceptKey) *BeliefState {
	if o == nil {
		return nil
	}
	return o.buckets[key]
}

// Keys returns the percept keys in ascending order.
func (o *OutcomeSet) Keys() []PerceptKey {
	if o == nil {
		return nil
	}
	return o.keys
}

// Beliefs returns the buckets in key order.
func (o *OutcomeSet) Beliefs() []*BeliefState {
	if o == nil {
		return nil
	}
	out := make([]*BeliefState, len(o.keys))
	for i, k := range o.keys {
		out[i] = o.buckets[k]
	}
	return out
}

func (o *OutcomeSet) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// ProbSum returns the mass of all buckets together.
func (o *OutcomeSet) ProbSum() float64 {
	sum := 0.0
	for _, bs := range o.Beliefs() {
		sum += bs.ProbSum()
	}
	return sum
}
