// Command darkfour runs self-play batches of the belief-state agent
// against a simulated hidden opponent.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/darkfour/engine/agent"
	"github.com/jason-s-yu/darkfour/service/internal/cache"
	"github.com/jason-s-yu/darkfour/service/internal/config"
	"github.com/jason-s-yu/darkfour/service/internal/game"
)

func main() {
	var (
		depth      = flag.Int("depth", 0, "search depth (overrides config)")
		matches    = flag.Int("matches", 0, "number of matches (overrides config)")
		workers    = flag.Int("workers", 0, "concurrent matches (overrides config)")
		seed       = flag.Uint64("seed", 0, "base seed (overrides config)")
		opponent   = flag.String("opponent", "", "agent's opponent model: uniform, heuristic or neural")
		simulated  = flag.String("simulate", "", "simulated opponent model: uniform, heuristic or neural")
		train      = flag.Bool("train", false, "fit the neural opponent on recorded replies after the batch")
		saveConfig = flag.Bool("save-config", false, "write the effective config to the XDG config dir and exit")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}
	if *depth > 0 {
		cfg.Search.Depth = *depth
	}
	if *matches > 0 {
		cfg.Match.Matches = *matches
	}
	if *workers > 0 {
		cfg.Match.Workers = *workers
	}
	if *seed > 0 {
		cfg.Match.Seed = *seed
	}
	if *opponent != "" {
		cfg.Search.Opponent = *opponent
	}
	if *simulated != "" {
		cfg.Match.Opponent = *simulated
	}
	if *train {
		cfg.Match.RecordSamples = true
	}
	if err := cfg.Validate(); err != nil {
		logrus.Fatal(err)
	}

	logger := logrus.StandardLogger()
	if err := cfg.ConfigureLogger(logger); err != nil {
		logrus.Fatal(err)
	}

	if *saveConfig {
		path, err := cfg.Save()
		if err != nil {
			logger.Fatalf("save config: %v", err)
		}
		fmt.Println(path)
		return
	}

	if err := run(cfg, logger, *train); err != nil {
		logger.Fatal(err)
	}
}

func run(cfg *config.Config, logger *logrus.Logger, train bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var neural *agent.NeuralOpponent
	model := func(name string) (agent.OpponentModel, error) {
		if name != "neural" {
			m, _ := agent.ParseOpponent(name)
			return m, nil
		}
		if neural == nil {
			nc := agent.DefaultNeuralConfig()
			if cfg.Search.NeuralWeights != "" {
				w, err := readWeights(cfg.Search.NeuralWeights)
				if err != nil && !os.IsNotExist(err) {
					return nil, err
				}
				nc.Weights = w
			}
			neural = agent.NewNeuralOpponent(nc)
		}
		return neural, nil
	}
	searchModel, err := model(cfg.Search.Opponent)
	if err != nil {
		return err
	}
	simModel, err := model(cfg.Match.Opponent)
	if err != nil {
		return err
	}
	fallback, err := agent.ParseFallback(cfg.Search.Fallback)
	if err != nil {
		return err
	}

	var shared agent.ExploredSet
	if cfg.Redis.Enabled {
		client, err := cache.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return fmt.Errorf("connect redis %s: %w", cfg.Redis.Addr, err)
		}
		defer client.Close()
		shared = cache.NewRedisExplored(client, cfg.Redis.Prefix, cfg.RedisTTL(), logger)
	} else if cfg.Search.KeepExplored {
		shared = agent.NewMemoryExplored(cfg.Search.ExploredCapacity)
	}

	newSearcher := func() *agent.Searcher {
		opts := []agent.Option{
			agent.WithDepth(cfg.Search.Depth),
			agent.WithOpponent(searchModel),
			agent.WithFallback(fallback),
			agent.WithLogger(logger),
			agent.WithKeepExplored(cfg.Search.KeepExplored),
			agent.WithExplored(agent.NewMemoryExplored(cfg.Search.ExploredCapacity)),
		}
		if shared != nil {
			// Matches of a batch share openings, so the set outlives them.
			opts = append(opts, agent.WithExplored(shared), agent.WithKeepExplored(true))
		}
		return agent.NewSearcher(opts...)
	}

	seed := cfg.Match.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	logger.WithFields(logrus.Fields{
		"matches":  cfg.Match.Matches,
		"workers":  cfg.Match.Workers,
		"depth":    cfg.Search.Depth,
		"opponent": cfg.Search.Opponent,
		"simulate": cfg.Match.Opponent,
		"seed":     seed,
		"redis":    cfg.Redis.Enabled,
	}).Info("starting batch")

	stats, err := game.RunBatch(ctx, game.BatchConfig{
		Matches:       cfg.Match.Matches,
		Workers:       cfg.Match.Workers,
		Seed:          seed,
		NewSearcher:   newSearcher,
		Opponent:      simModel,
		RecordSamples: cfg.Match.RecordSamples,
		Logger:        logger,
	})
	if err != nil {
		return err
	}
	fmt.Printf("matches=%d wins=%d losses=%d draws=%d win_rate=%.3f avg_moves=%.1f max_belief=%d elapsed=%s\n",
		stats.Matches, stats.Wins, stats.Losses, stats.Draws, stats.WinRate(), stats.AverageMoves(), stats.MaxBelief, stats.Duration.Round(time.Millisecond))

	if !train {
		return nil
	}
	if neural == nil {
		neural = agent.NewNeuralOpponent(agent.DefaultNeuralConfig())
	}
	if err := neural.Fit(stats.Samples, cfg.Match.TrainEpochs); err != nil {
		return fmt.Errorf("train opponent model: %w", err)
	}
	logger.WithField("samples", len(stats.Samples)).Info("opponent model trained")
	if cfg.Search.NeuralWeights == "" {
		return nil
	}
	return writeWeights(cfg.Search.NeuralWeights, neural.Weights())
}

func readWeights(path string) ([][][]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var w [][][]float64
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("parse weights %s: %w", path, err)
	}
	return w, nil
}

func writeWeights(path string, w [][][]float64) error {
	data, err := json.Marshal(w)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
