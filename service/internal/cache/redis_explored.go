// Package cache provides shared storage tiers for search results.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/darkfour/engine/agent"
)

// DefaultTimeout bounds each Redis round trip made by RedisExplored.
const DefaultTimeout = 250 * time.Millisecond

// RedisExplored is an agent.ExploredSet backed by Redis hashes. Each
// fingerprint maps to one hash whose fields are belief structures, so
// fingerprint collisions stay apart. Redis errors are logged and count as
// misses; the search never fails because of the cache.
type RedisExplored struct {
	client  redis.Cmdable
	prefix  string
	ttl     time.Duration
	timeout time.Duration
	logger  logrus.FieldLogger
}

// exploredValue is the JSON payload stored per belief.
type exploredValue struct {
	Column int       `json:"c"`
	Depth  int       `json:"d"`
	Value  float64   `json:"v"`
	Mass   float64   `json:"m"`
	Probs  []float64 `json:"p"` // normalized member probabilities
}

// NewRedisExplored returns a set storing under prefix with the given
// expiry (0 keeps entries until Reset).
func NewRedisExplored(client redis.Cmdable, prefix string, ttl time.Duration, logger logrus.FieldLogger) *RedisExplored {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &RedisExplored{
		client:  client,
		prefix:  prefix,
		ttl:     ttl,
		timeout: DefaultTimeout,
		logger:  logger.WithField("component", "explored-redis"),
	}
}

// NewClient dials Redis and checks the connection.
func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

func (r *RedisExplored) key(s *agent.BeliefState) string {
	return r.prefix + strconv.FormatUint(s.Fingerprint(), 16)
}

func (r *RedisExplored) Lookup(s *agent.BeliefState) (agent.ExploredEntry, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	raw, err := r.client.HGet(ctx, r.key(s), string(s.Structure())).Bytes()
	if errors.Is(err, redis.Nil) {
		return agent.ExploredEntry{}, false
	}
	if err != nil {
		r.logger.WithError(err).Warn("explored lookup failed")
		return agent.ExploredEntry{}, false
	}
	var ev exploredValue
	if err := json.Unmarshal(raw, &ev); err != nil {
		r.logger.WithError(err).Warn("explored entry is corrupt")
		return agent.ExploredEntry{}, false
	}
	if !ev.matches(s) {
		return agent.ExploredEntry{}, false
	}
	return ev.entry(s), true
}

func (r *RedisExplored) Store(s *agent.BeliefState, e agent.ExploredEntry) {
	payload, err := json.Marshal(newExploredValue(s, e))
	if err != nil {
		r.logger.WithError(err).Warn("explored entry not encodable")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	key := r.key(s)
	_, err = r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, key, string(s.Structure()), payload)
		if r.ttl > 0 {
			p.Expire(ctx, key, r.ttl)
		}
		return nil
	})
	if err != nil {
		r.logger.WithError(err).WithField("key", key).Warn("explored store failed")
	}
}

// Reset deletes every key under the prefix.
func (r *RedisExplored) Reset() {
	ctx := context.Background()
	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, r.prefix+"*", 256).Result()
		if err != nil {
			r.logger.WithError(err).Warn("explored reset failed")
			return
		}
		if len(keys) > 0 {
			if err := r.client.Del(ctx, keys...).Err(); err != nil {
				r.logger.WithError(err).Warn("explored reset failed")
				return
			}
		}
		if next == 0 {
			return
		}
		cursor = next
	}
}

func newExploredValue(s *agent.BeliefState, e agent.ExploredEntry) exploredValue {
	sum := s.ProbSum()
	ev := exploredValue{
		Column: e.Column,
		Depth:  e.Depth,
		Value:  e.Value,
		Mass:   sum,
		Probs:  make([]float64, 0, s.Len()),
	}
	for _, m := range s.Members() {
		p := 0.0
		if sum > 0 {
			p = m.Prob / sum
		}
		ev.Probs = append(ev.Probs, p)
	}
	return ev
}

// entry returns the stored decision with its value rescaled to s's mass.
func (ev exploredValue) entry(s *agent.BeliefState) agent.ExploredEntry {
	return agent.ExploredEntry{
		Column: ev.Column,
		Depth:  ev.Depth,
		Value:  agent.Rescale(ev.Value, s.ProbSum(), ev.Mass),
	}
}

// matches applies the probability part of BeliefState.Equal; the hash
// field already pins down the structure.
func (ev exploredValue) matches(s *agent.BeliefState) bool {
	other := newExploredValue(s, agent.ExploredEntry{})
	if len(other.Probs) != len(ev.Probs) {
		return false
	}
	for i, p := range ev.Probs {
		if math.Abs(p-other.Probs[i]) > agent.ProbEpsilon {
			return false
		}
	}
	return true
}
