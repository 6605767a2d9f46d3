package agent

import (
	"errors"
	"math"
	"sync"

	"github.com/patrikeh/go-deep"
	"github.com/patrikeh/go-deep/training"

	engine "github.com/jason-s-yu/darkfour/engine"
)

// NeuralInputs is the network's input width, see Encode.
const NeuralInputs = InputDim

// NeuralConfig describes the network behind NeuralOpponent.
type NeuralConfig struct {
	Hidden       []int
	LearningRate float64
	Momentum     float64
	Weights      [][][]float64 // optional pre-trained weights
}

// DefaultNeuralConfig returns a small two-layer network.
func DefaultNeuralConfig() NeuralConfig {
	return NeuralConfig{
		Hidden:       []int{32, 16},
		LearningRate: 0.01,
		Momentum:     0.5,
	}
}

// NeuralOpponent scores opponent columns with a regression network trained
// on recorded opponent choices. Safe for concurrent use.
type NeuralOpponent struct {
	mu     sync.Mutex
	net    *deep.Neural
	config NeuralConfig
}

// NewNeuralOpponent builds the network, applying config.Weights if set.
func NewNeuralOpponent(config NeuralConfig) *NeuralOpponent {
	layout := append(append([]int{}, config.Hidden...), 1)
	net := deep.NewNeural(&deep.Config{
		Inputs:     NeuralInputs,
		Layout:     layout,
		Activation: deep.ActivationReLU,
		Mode:       deep.ModeRegression,
		Weight:     deep.NewNormal(0.1, 0.0),
		Bias:       true,
	})
	if config.Weights != nil {
		net.ApplyWeights(config.Weights)
	}
	return &NeuralOpponent{net: net, config: config}
}

// HeuristicValue returns the softplus of the network output, so the value
// is always positive.
func (n *NeuralOpponent) HeuristicValue(board engine.Board, column int) float64 {
	features := boardFeatures(&board, column)
	n.mu.Lock()
	out := n.net.Predict(features)
	n.mu.Unlock()
	return softplus(out[0])
}

func softplus(x float64) float64 {
	if x > 30 {
		return x
	}
	return math.Log1p(math.Exp(x))
}

// boardFeatures returns the network input for playing column on b.
func boardFeatures(b *engine.Board, column int) []float64 {
	var out [InputDim]float64
	Encode(b, column, &out)
	return out[:]
}

// OpponentSample is one recorded decision: the opponent played Column
// on Board.
type OpponentSample struct {
	Board  engine.Board
	Column int
}

// Fit trains the network for epochs passes. Each sample yields one example
// per legal column, with target 1 for the column actually played and 0
// for the others.
func (n *NeuralOpponent) Fit(samples []OpponentSample, epochs int) error {
	if len(samples) == 0 {
		return errors.New("fit: no samples")
	}
	if epochs < 1 {
		epochs = 1
	}
	var examples training.Examples
	for i := range samples {
		s := &samples[i]
		for _, col := range s.Board.LegalColumns() {
			target := 0.0
			if col == s.Column {
				target = 1
			}
			examples = append(examples, training.Example{
				Input:    boardFeatures(&s.Board, col),
				Response: []float64{target},
			})
		}
	}
	if len(examples) == 0 {
		return errors.New("fit: samples have no legal columns")
	}
	examples.Shuffle()

	n.mu.Lock()
	defer n.mu.Unlock()
	trainer := training.NewTrainer(training.NewSGD(n.config.LearningRate, n.config.Momentum, 0, false), 0)
	trainer.Train(n.net, examples, nil, epochs)
	return nil
}

// Weights returns a snapshot of the network weights.
func (n *NeuralOpponent) Weights() [][][]float64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.net.Weights()
}

// ApplyWeights replaces the network weights.
func (n *NeuralOpponent) ApplyWeights(w [][][]float64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.net.ApplyWeights(w)
}
