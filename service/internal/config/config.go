// Package config loads darkfour settings. Values are layered: built-in
// defaults, then the JSON file found under the XDG config directories,
// then a .env file, then DARKFOUR_* environment variables.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/darkfour/engine/agent"
)

var (
	cfgFile = "darkfour/config.json"
	envFile = ".env"
)

// MaxDepth bounds Search.Depth. Belief states grow roughly sevenfold per
// opponent ply, so deeper searches are not practical.
const MaxDepth = 6

type InvalidConfig struct {
	Field string
	err   string
}

func (e *InvalidConfig) Error() string {
	return fmt.Sprintf("config error: %s: %s", e.Field, e.err)
}

// SearchConfig controls the agent's Searcher.
type SearchConfig struct {
	Depth            int    `json:"depth"`
	Opponent         string `json:"opponent"` // uniform, heuristic or neural
	Fallback         string `json:"fallback"` // best-ordered or error
	KeepExplored     bool   `json:"keep_explored"`
	ExploredCapacity int    `json:"explored_capacity"`
	NeuralWeights    string `json:"neural_weights,omitempty"` // JSON weights for the neural opponent
}

// MatchConfig controls self-play batches.
type MatchConfig struct {
	Matches       int    `json:"matches"`
	Workers       int    `json:"workers"`
	Seed          uint64 `json:"seed"` // 0 picks a seed from the clock
	Opponent      string `json:"opponent"`
	RecordSamples bool   `json:"record_samples"`
	TrainEpochs   int    `json:"train_epochs"`
}

type LogConfig struct {
	Level string `json:"level"`
	JSON  bool   `json:"json"`
}

// RedisConfig enables the shared explored-set tier when Enabled is set.
type RedisConfig struct {
	Enabled  bool   `json:"enabled"`
	Addr     string `json:"addr"`
	Password string `json:"password,omitempty"`
	DB       int    `json:"db"`
	Prefix   string `json:"prefix"`
	TTL      int    `json:"ttl_seconds"`
}

type Config struct {
	Search SearchConfig `json:"search"`
	Match  MatchConfig  `json:"match"`
	Log    LogConfig    `json:"log"`
	Redis  RedisConfig  `json:"redis"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config {
	return Config{
		Search: SearchConfig{
			Depth:            agent.DefaultDepth,
			Opponent:         "heuristic",
			Fallback:         agent.FallbackBestOrdered.String(),
			ExploredCapacity: agent.DefaultExploredCapacity,
		},
		Match: MatchConfig{
			Matches:     10,
			Workers:     4,
			Opponent:    "heuristic",
			TrainEpochs: 20,
		},
		Log: LogConfig{Level: "info"},
		Redis: RedisConfig{
			Addr:   "localhost:6379",
			Prefix: "darkfour:explored:",
			TTL:    3600,
		},
	}
}

// Load builds the configuration from every layer and validates it.
func Load() (*Config, error) {
	config := DefaultConfig()
	if absPath, err := xdg.SearchConfigFile(cfgFile); err == nil {
		if err := readCfgFile(absPath, &config); err != nil {
			return nil, err
		}
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}
	if err := config.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// ApplyEnv overrides fields from DARKFOUR_* variables read through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return &InvalidConfig{Field: key, err: fmt.Sprintf("not an integer: %q", v)}
		}
		*dst = n
		return nil
	}
	flag := func(key string, dst *bool) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return &InvalidConfig{Field: key, err: fmt.Sprintf("not a boolean: %q", v)}
		}
		*dst = b
		return nil
	}

	str("DARKFOUR_OPPONENT", &c.Search.Opponent)
	str("DARKFOUR_FALLBACK", &c.Search.Fallback)
	str("DARKFOUR_NEURAL_WEIGHTS", &c.Search.NeuralWeights)
	str("DARKFOUR_MATCH_OPPONENT", &c.Match.Opponent)
	str("DARKFOUR_LOG_LEVEL", &c.Log.Level)
	str("DARKFOUR_REDIS_PASSWORD", &c.Redis.Password)
	str("DARKFOUR_REDIS_PREFIX", &c.Redis.Prefix)
	if v, ok := lookup("DARKFOUR_REDIS_ADDR"); ok && v != "" {
		c.Redis.Addr = v
		c.Redis.Enabled = true
	}
	if v, ok := lookup("DARKFOUR_SEED"); ok && v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return &InvalidConfig{Field: "DARKFOUR_SEED", err: fmt.Sprintf("not an unsigned integer: %q", v)}
		}
		c.Match.Seed = seed
	}

	for key, dst := range map[string]*int{
		"DARKFOUR_DEPTH":             &c.Search.Depth,
		"DARKFOUR_EXPLORED_CAPACITY": &c.Search.ExploredCapacity,
		"DARKFOUR_MATCHES":           &c.Match.Matches,
		"DARKFOUR_WORKERS":           &c.Match.Workers,
		"DARKFOUR_TRAIN_EPOCHS":      &c.Match.TrainEpochs,
		"DARKFOUR_REDIS_DB":          &c.Redis.DB,
		"DARKFOUR_REDIS_TTL":         &c.Redis.TTL,
	} {
		if err := num(key, dst); err != nil {
			return err
		}
	}
	for key, dst := range map[string]*bool{
		"DARKFOUR_KEEP_EXPLORED":  &c.Search.KeepExplored,
		"DARKFOUR_RECORD_SAMPLES": &c.Match.RecordSamples,
		"DARKFOUR_LOG_JSON":       &c.Log.JSON,
		"DARKFOUR_REDIS_ENABLED":  &c.Redis.Enabled,
	} {
		if err := flag(key, dst); err != nil {
			return err
		}
	}
	return nil
}

func knownOpponent(name string) bool {
	if name == "neural" {
		return true
	}
	_, ok := agent.ParseOpponent(name)
	return ok
}

func (c *Config) Validate() error {
	if c.Search.Depth < 1 || c.Search.Depth > MaxDepth {
		return &InvalidConfig{Field: "search.depth", err: fmt.Sprintf("must be between 1 and %d, got %d", MaxDepth, c.Search.Depth)}
	}
	if !knownOpponent(c.Search.Opponent) {
		return &InvalidConfig{Field: "search.opponent", err: fmt.Sprintf("unknown opponent model %q", c.Search.Opponent)}
	}
	if _, err := agent.ParseFallback(c.Search.Fallback); err != nil {
		return &InvalidConfig{Field: "search.fallback", err: err.Error()}
	}
	if c.Search.ExploredCapacity < 0 {
		return &InvalidConfig{Field: "search.explored_capacity", err: "must not be negative"}
	}
	if c.Match.Matches < 1 {
		return &InvalidConfig{Field: "match.matches", err: "must be at least 1"}
	}
	if c.Match.Workers < 1 {
		return &InvalidConfig{Field: "match.workers", err: "must be at least 1"}
	}
	if !knownOpponent(c.Match.Opponent) {
		return &InvalidConfig{Field: "match.opponent", err: fmt.Sprintf("unknown opponent model %q", c.Match.Opponent)}
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return &InvalidConfig{Field: "log.level", err: err.Error()}
	}
	if c.Redis.Enabled && strings.TrimSpace(c.Redis.Addr) == "" {
		return &InvalidConfig{Field: "redis.addr", err: "required when redis is enabled"}
	}
	if c.Redis.TTL < 0 {
		return &InvalidConfig{Field: "redis.ttl_seconds", err: "must not be negative"}
	}
	return nil
}

// RedisTTL returns the explored-set expiry; zero means no expiry.
func (c *Config) RedisTTL() time.Duration {
	return time.Duration(c.Redis.TTL) * time.Second
}

// ConfigureLogger applies the log level and formatter to l.
func (c *Config) ConfigureLogger(l *logrus.Logger) error {
	level, err := logrus.ParseLevel(c.Log.Level)
	if err != nil {
		return &InvalidConfig{Field: "log.level", err: err.Error()}
	}
	l.SetLevel(level)
	if c.Log.JSON {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return nil
}

// Save writes the configuration to the user's XDG config directory and
// returns the file path.
func (c *Config) Save() (string, error) {
	absPath, err := xdg.ConfigFile(cfgFile)
	if err != nil {
		return "", err
	}
	return absPath, saveCfgFile(absPath, c, 0664)
}

func saveCfgFile(filePath string, a interface{}, perm fs.FileMode) error {
	jsonData, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, jsonData, perm)
}

func readCfgFile(filePath string, a interface{}) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, a); err != nil {
		return fmt.Errorf("parse %s: %w", filePath, err)
	}
	return nil
}
