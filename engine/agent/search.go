package agent

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/sirupsen/logrus"

	engine "github.com/jason-s-yu/darkfour/engine"
)

// DefaultDepth is the search depth used when none is configured. Belief
// states grow quickly with depth, so it is kept small.
const DefaultDepth = 2

// FallbackPolicy decides what FindNextMove does when the root search fails.
type FallbackPolicy uint8

const (
	FallbackBestOrdered FallbackPolicy = iota // play the best one-ply move
	FallbackError                             // return ErrSearchExhausted
)

func (p FallbackPolicy) String() string {
	if p == FallbackError {
		return "error"
	}
	return "best-ordered"
}

// ParseFallback resolves a policy name as written in configuration.
func ParseFallback(s string) (FallbackPolicy, error) {
	switch strings.ToLower(s) {
	case "", "best-ordered", "best":
		return FallbackBestOrdered, nil
	case "error":
		return FallbackError, nil
	}
	return 0, fmt.Errorf("unknown fallback policy %q", s)
}

// Searcher runs depth-limited AND-OR search over belief states. OR nodes
// are the reasoning player's moves; AND nodes cover every percept an action
// can produce and every belief the opponent's reply can lead to. A Searcher
// is not safe for concurrent use.
type Searcher struct {
	Depth        int
	Eval         Evaluator
	Opponent     OpponentModel
	Explored     ExploredSet // nil disables memoization
	KeepExplored bool        // keep Explored across FindNextMove calls
	Fallback     FallbackPolicy
	Logger       logrus.FieldLogger

	nodes int
	hits  int
	// beliefs treated as already on the path above the root
	history []*BeliefState
}

// Option configures a Searcher.
type Option func(*Searcher)

func WithDepth(d int) Option                 { return func(s *Searcher) { s.Depth = d } }
func WithEvaluator(e Evaluator) Option       { return func(s *Searcher) { s.Eval = e } }
func WithOpponent(m OpponentModel) Option    { return func(s *Searcher) { s.Opponent = m } }
func WithExplored(x ExploredSet) Option      { return func(s *Searcher) { s.Explored = x } }
func WithKeepExplored(keep bool) Option      { return func(s *Searcher) { s.KeepExplored = keep } }
func WithFallback(p FallbackPolicy) Option   { return func(s *Searcher) { s.Fallback = p } }
func WithLogger(l logrus.FieldLogger) Option { return func(s *Searcher) { s.Logger = l } }

// NewSearcher returns a Searcher with DefaultDepth, DefaultEvaluator, the
// heuristic opponent and an in-memory explored set, then applies opts.
func NewSearcher(opts ...Option) *Searcher {
	s := &Searcher{
		Depth:    DefaultDepth,
		Eval:     DefaultEvaluator(),
		Opponent: HeuristicOpponent{},
		Explored: NewMemoryExplored(DefaultExploredCapacity),
		Fallback: FallbackBestOrdered,
		Logger:   logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.Depth < 1 {
		s.Depth = 1
	}
	if s.Opponent == nil {
		s.Opponent = HeuristicOpponent{}
	}
	if s.Logger == nil {
		s.Logger = logrus.StandardLogger()
	}
	return s
}

// Nodes returns the number of OR nodes expanded by the last search.
func (s *Searcher) Nodes() int { return s.nodes }

// Hits returns the number of OR nodes the last search answered from the
// explored set.
func (s *Searcher) Hits() int { return s.hits }

// FindNextMove returns the column to play from belief. When the search
// fails at the root, the fallback policy applies.
func (s *Searcher) FindNextMove(belief *BeliefState) (int, error) {
	if s.Explored != nil && !s.KeepExplored {
		s.Explored.Reset()
	}
	plan, err := s.Search(belief)
	switch {
	case errors.Is(err, ErrSearchExhausted):
		if s.Fallback == FallbackError {
			return -1, err
		}
		return s.fallbackMove(belief)
	case err != nil:
		return -1, err
	}
	d, ok := plan.(*Decision)
	if !ok {
		return -1, fmt.Errorf("find next move: %w", engine.ErrGameOver)
	}
	return d.Column, nil
}

// fallbackMove returns the best column by one-ply ordering.
func (s *Searcher) fallbackMove(belief *BeliefState) (int, error) {
	moves, err := belief.Moves()
	if err != nil {
		return -1, err
	}
	if len(moves) == 0 {
		return -1, ErrSearchExhausted
	}
	sorted, err := SortMoves(belief, moves, s.Eval)
	if err != nil {
		return -1, err
	}
	s.Logger.WithFields(logrus.Fields{
		"column": sorted[0],
		"played": belief.Played(),
	}).Warn("search exhausted, playing best ordered move")
	return sorted[0], nil
}

// Search returns the root plan for belief: Leaf when the game is over,
// otherwise the best *Decision. ErrSearchExhausted reports a root failure.
func (s *Searcher) Search(belief *BeliefState) (Plan, error) {
	s.nodes, s.hits = 0, 0
	plan, err := s.orSearch(belief, s.history, 1)
	if errors.Is(err, ErrNoPlan) {
		return nil, ErrSearchExhausted
	}
	if err != nil {
		return nil, err
	}
	if d, ok := plan.(*Decision); ok {
		s.Logger.WithFields(logrus.Fields{
			"column": d.Column,
			"value":  d.Value,
			"depth":  s.Depth,
			"nodes":  s.nodes,
			"hits":   s.hits,
			"size":   belief.Len(),
		}).Debug("search done")
	}
	return plan, nil
}

// orSearch picks the reasoning player's move at belief. path holds the
// beliefs on the way down from the root.
func (s *Searcher) orSearch(belief *BeliefState, path []*BeliefState, depth int) (Plan, error) {
	if depth > s.Depth || belief.IsTerminal() {
		return Leaf{}, nil
	}
	for _, p := range path {
		if p.Equal(belief) {
			return nil, ErrNoPlan
		}
	}
	// A stored decision only stands in for a search at least as deep.
	remaining := s.Depth - depth + 1
	if s.Explored != nil {
		if e, ok := s.Explored.Lookup(belief); ok && e.Depth >= remaining {
			s.hits++
			return &Decision{Column: e.Column, Value: e.Value}, nil
		}
	}
	path = append(path[:len(path):len(path)], belief)
	s.nodes++

	moves, err := belief.Moves()
	if err != nil {
		return nil, err
	}
	// One legal column: no candidates to compare, valued by its one-ply
	// ScoreOutcomes rather than a deeper search.
	if len(moves) == 1 {
		out, err := belief.ApplyAction(moves[0])
		if err != nil {
			return nil, err
		}
		return &Decision{Column: moves[0], Value: s.Eval.ScoreOutcomes(out)}, nil
	}
	moves, err = SortMoves(belief, moves, s.Eval)
	if err != nil {
		return nil, err
	}

	var best *Decision
	bestValue := math.Inf(-1)
	for _, col := range moves {
		out, err := belief.ApplyAction(col)
		if err != nil {
			return nil, err
		}
		branches, cutoff, err := s.andSearch(out, path, depth+1)
		if errors.Is(err, ErrNoPlan) {
			continue
		}
		if err != nil {
			return nil, err
		}
		value := 0.0
		if cutoff {
			value = s.Eval.ScoreOutcomes(out)
		} else {
			for _, br := range branches {
				value += s.planValue(br)
			}
		}
		if depth == 1 {
			s.Logger.WithFields(logrus.Fields{"column": col, "value": value}).Debug("candidate")
		}
		if value > bestValue {
			bestValue = value
			best = &Decision{Column: col, Value: value, Branches: branches}
		}
	}
	if best == nil {
		return nil, ErrNoPlan
	}
	if s.Explored != nil {
		s.Explored.Store(belief, ExploredEntry{Column: best.Column, Value: best.Value, Depth: remaining})
	}
	return best, nil
}

// andSearch covers every belief an action can lead to, after the
// opponent's reply. cutoff reports that the depth limit was reached and
// the caller should value the action directly.
func (s *Searcher) andSearch(outcomes *OutcomeSet, path []*BeliefState, depth int) (branches []Branch, cutoff bool, err error) {
	if depth > s.Depth || outcomes == nil {
		return nil, true, nil
	}
	for _, bs := range outcomes.Beliefs() {
		if bs.IsTerminal() {
			branches = append(branches, Branch{Belief: bs, Plan: Leaf{}})
			continue
		}
		replies, err := bs.Predict(s.Opponent)
		if err != nil {
			return nil, false, fmt.Errorf("predict at depth %d: %w", depth, err)
		}
		for _, next := range replies.Beliefs() {
			plan, err := s.orSearch(next, path, depth+1)
			if err != nil {
				return nil, false, err
			}
			branches = append(branches, Branch{Belief: next, Plan: plan})
		}
	}
	return branches, false, nil
}

// planValue values one branch: a Decision carries its own value, a Leaf is
// evaluated directly from its belief.
func (s *Searcher) planValue(br Branch) float64 {
	if d, ok := br.Plan.(*Decision); ok {
		return d.Value
	}
	return s.Eval.ScoreBelief(br.Belief)
}
