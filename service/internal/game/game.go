// internal/game/game.go
package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/bszcz/mt19937_64"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	engine "github.com/jason-s-yu/darkfour/engine"
	"github.com/jason-s-yu/darkfour/engine/agent"
)

// ErrMatchOver is returned by Step once the true board is terminal.
var ErrMatchOver = errors.New("match is over")

// OnMatchEndFunc is called once when a match finishes.
type OnMatchEndFunc func(matchID uuid.UUID, result Result)

// MatchEventType names an event emitted while a match is played.
type MatchEventType string

const (
	EventMatchStart     MatchEventType = "match_start"
	EventAgentMove      MatchEventType = "agent_move"
	EventOpponentMove   MatchEventType = "opponent_move"
	EventBeliefFiltered MatchEventType = "belief_filtered" // agent's belief after a percept
	EventMatchEnd       MatchEventType = "match_end"
)

// MatchEvent is handed to BroadcastFn for every step of a match.
type MatchEvent struct {
	Type    MatchEventType         `json:"type"`
	MatchID uuid.UUID              `json:"matchId"`
	Index   int                    `json:"index"` // sequential per match
	Column  int                    `json:"column"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}

// Result summarises a finished match.
type Result struct {
	MatchID  uuid.UUID
	Winner   engine.Cell // Empty on a draw
	Moves    int         // pieces on the final board
	Turns    int         // agent decisions
	MaxSize  int         // largest belief held by the agent
	Duration time.Duration
	Samples  []agent.OpponentSample // opponent choices, when recorded
}

// Match plays one game between the belief-state agent (PlayerA) and a
// simulated opponent (PlayerB). The match owns the true board; the agent
// only ever sees it through Filter.
type Match struct {
	ID uuid.UUID

	Board    engine.Board       // the true board
	Belief   *agent.BeliefState // the agent's view
	Searcher *agent.Searcher
	Opponent agent.OpponentModel // drives the simulated opponent

	RecordSamples bool
	Turns         int
	GameOver      bool

	rng         *rand.Rand
	samples     []agent.OpponentSample
	maxSize     int
	actionIndex int
	started     time.Time
	logger      logrus.FieldLogger

	Mu sync.Mutex

	BroadcastFn func(ev MatchEvent)
	OnMatchEnd  OnMatchEndFunc
}

// NewMatch sets up a match from the empty board with the agent to move
// first when agentFirst is set. seed drives the opponent's choices.
func NewMatch(searcher *agent.Searcher, opponent agent.OpponentModel, seed uint64, agentFirst bool, logger logrus.FieldLogger) *Match {
	if opponent == nil {
		opponent = agent.HeuristicOpponent{}
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	toMove := engine.PlayerB
	if agentFirst {
		toMove = engine.PlayerA
	}
	id, _ := uuid.NewRandom()
	src := mt19937_64.New()
	src.Seed(int64(seed))

	board := engine.NewBoard(toMove)
	m := &Match{
		ID:       id,
		Board:    board,
		Belief:   agent.NewBeliefState(board),
		Searcher: searcher,
		Opponent: opponent,
		rng:      rand.New(src),
		maxSize:  1,
		logger:   logger.WithField("match", id),
	}
	return m
}

// Step plays a single ply: the agent's move when PlayerA is to move,
// otherwise a sampled opponent reply. Both update the agent's belief.
func (m *Match) Step() error {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	if m.GameOver {
		return ErrMatchOver
	}
	if m.actionIndex == 0 {
		m.started = time.Now()
		m.fireEvent(EventMatchStart, -1, map[string]interface{}{"toMove": m.Board.ToMove.String()})
	}

	var err error
	if m.Board.ToMove == engine.PlayerA {
		err = m.agentMove()
	} else {
		err = m.opponentMove()
	}
	if err != nil {
		return err
	}
	if m.Board.IsTerminal() {
		m.endMatch()
	}
	return nil
}

// Play runs the match to the end or until ctx is done.
func (m *Match) Play(ctx context.Context) (Result, error) {
	for {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		err := m.Step()
		if errors.Is(err, ErrMatchOver) {
			return m.Result(), nil
		}
		if err != nil {
			return Result{}, err
		}
	}
}

func (m *Match) agentMove() error {
	col, err := m.Searcher.FindNextMove(m.Belief)
	if err != nil {
		return fmt.Errorf("match %s turn %d: %w", m.ID, m.Turns, err)
	}
	outcomes, err := m.Belief.ApplyAction(col)
	if err != nil {
		return fmt.Errorf("match %s turn %d: %w", m.ID, m.Turns, err)
	}
	next, err := m.Board.Drop(col)
	if err != nil {
		return fmt.Errorf("match %s turn %d: %w", m.ID, m.Turns, err)
	}
	m.Board = next
	m.Turns++
	m.fireEvent(EventAgentMove, col, map[string]interface{}{"nodes": m.Searcher.Nodes()})
	m.logger.WithFields(logrus.Fields{
		"turn":   m.Turns,
		"column": col,
		"nodes":  m.Searcher.Nodes(),
	}).Debug("agent moved")
	return m.observe(outcomes)
}

func (m *Match) opponentMove() error {
	cols, weights := agent.OpponentReplies(&m.Board, m.Opponent)
	i := agent.NewRandomSelector(weights...).Pick(m.rng.Float64())
	if i < 0 {
		return fmt.Errorf("match %s: opponent has no move: %w", m.ID, engine.ErrGameOver)
	}
	col := cols[i]
	outcomes, err := m.Belief.Predict(m.Searcher.Opponent)
	if err != nil {
		return fmt.Errorf("match %s: predict: %w", m.ID, err)
	}
	next, err := m.Board.Drop(col)
	if err != nil {
		return err
	}
	if m.RecordSamples {
		m.samples = append(m.samples, agent.OpponentSample{Board: m.Board, Column: col})
	}
	m.Board = next
	m.fireEvent(EventOpponentMove, col, nil)
	return m.observe(outcomes)
}

// observe narrows the agent's belief to what the true board shows.
func (m *Match) observe(outcomes *agent.OutcomeSet) error {
	belief, err := agent.Filter(outcomes, m.Board)
	if err != nil {
		return fmt.Errorf("match %s: filter after %d moves: %w", m.ID, m.Board.Moves, err)
	}
	m.Belief = belief
	m.maxSize = max(m.maxSize, belief.Len())
	m.fireEvent(EventBeliefFiltered, -1, map[string]interface{}{
		"size":    belief.Len(),
		"visible": belief.Mask().Count(),
	})
	return nil
}

func (m *Match) endMatch() {
	if m.GameOver {
		return
	}
	m.GameOver = true
	res := m.result()
	m.fireEvent(EventMatchEnd, -1, map[string]interface{}{
		"winner": res.Winner.String(),
		"moves":  res.Moves,
		"turns":  res.Turns,
	})
	m.logger.WithFields(logrus.Fields{
		"winner":  res.Winner.String(),
		"moves":   res.Moves,
		"turns":   res.Turns,
		"maxSize": res.MaxSize,
		"elapsed": res.Duration,
	}).Info("match finished")
	if m.OnMatchEnd != nil {
		m.OnMatchEnd(m.ID, res)
	}
}

// Result returns the outcome so far; Winner is only final once GameOver.
func (m *Match) Result() Result {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	return m.result()
}

func (m *Match) result() Result {
	return Result{
		MatchID:  m.ID,
		Winner:   m.Board.Winner,
		Moves:    int(m.Board.Moves),
		Turns:    m.Turns,
		MaxSize:  m.maxSize,
		Duration: time.Since(m.started),
		Samples:  m.samples,
	}
}

// fireEvent numbers and broadcasts an event. Assumes lock is held by caller.
func (m *Match) fireEvent(t MatchEventType, column int, payload map[string]interface{}) {
	m.actionIndex++
	if m.BroadcastFn == nil {
		return
	}
	m.BroadcastFn(MatchEvent{
		Type:    t,
		MatchID: m.ID,
		Index:   m.actionIndex,
		Column:  column,
		Payload: payload,
	})
}
