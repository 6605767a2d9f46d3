package game

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	engine "github.com/jason-s-yu/darkfour/engine"
	"github.com/jason-s-yu/darkfour/engine/agent"
)

// BatchConfig describes a run of self-play matches.
type BatchConfig struct {
	Matches int
	Workers int
	Seed    uint64 // match i uses Seed+i

	// NewSearcher builds the agent for one match. Searchers are not safe
	// for concurrent use, so each match gets its own.
	NewSearcher   func() *agent.Searcher
	Opponent      agent.OpponentModel
	RecordSamples bool
	Logger        logrus.FieldLogger

	OnMatchEnd OnMatchEndFunc // called from worker goroutines
}

// Stats aggregates the results of a batch.
type Stats struct {
	Matches    int
	Wins       int // agent wins
	Losses     int
	Draws      int
	TotalMoves int
	MaxBelief  int
	Duration   time.Duration
	Samples    []agent.OpponentSample
}

// WinRate returns the agent's share of wins, draws counting half.
func (s Stats) WinRate() float64 {
	if s.Matches == 0 {
		return 0
	}
	return (float64(s.Wins) + 0.5*float64(s.Draws)) / float64(s.Matches)
}

// AverageMoves returns the mean number of pieces on the final boards.
func (s Stats) AverageMoves() float64 {
	if s.Matches == 0 {
		return 0
	}
	return float64(s.TotalMoves) / float64(s.Matches)
}

func (s *Stats) add(r Result) {
	s.Matches++
	switch r.Winner {
	case engine.PlayerA:
		s.Wins++
	case engine.PlayerB:
		s.Losses++
	default:
		s.Draws++
	}
	s.TotalMoves += r.Moves
	s.MaxBelief = max(s.MaxBelief, r.MaxSize)
	s.Samples = append(s.Samples, r.Samples...)
}

// RunBatch plays cfg.Matches matches on cfg.Workers goroutines. The agent
// moves first in even-numbered matches. The first failing match cancels
// the rest.
func RunBatch(ctx context.Context, cfg BatchConfig) (Stats, error) {
	if cfg.Matches < 1 {
		return Stats{}, errors.New("batch needs at least one match")
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	if cfg.NewSearcher == nil {
		cfg.NewSearcher = func() *agent.Searcher { return agent.NewSearcher(agent.WithLogger(cfg.Logger)) }
	}

	var (
		mu    sync.Mutex
		stats Stats
	)
	start := time.Now()
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Workers, 1))
	for i := 0; i < cfg.Matches; i++ {
		i := i
		g.Go(func() error {
			m := NewMatch(cfg.NewSearcher(), cfg.Opponent, cfg.Seed+uint64(i), i%2 == 0, cfg.Logger)
			m.RecordSamples = cfg.RecordSamples
			m.OnMatchEnd = cfg.OnMatchEnd
			res, err := m.Play(ctx)
			if err != nil {
				return err
			}
			mu.Lock()
			stats.add(res)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}
	stats.Duration = time.Since(start)
	cfg.Logger.WithFields(logrus.Fields{
		"matches":  stats.Matches,
		"wins":     stats.Wins,
		"losses":   stats.Losses,
		"draws":    stats.Draws,
		"winRate":  stats.WinRate(),
		"avgMoves": stats.AverageMoves(),
		"elapsed":  stats.Duration,
	}).Info("batch finished")
	return stats, nil
}
