package network

import (
	"math/rand"

	"github.com/pkg/errors"
	"github.com/tamanna-04/rock-music-generation-LSTM/constants"
)

// Topology holds the layer sizes of the note prediction network.
type Topology struct {
	LSTMUnits        int
	DenseUnits       int
	Dropout          float64
	RecurrentDropout float64
}

func DefaultTopology() Topology {
	return Topology{
		LSTMUnits:        constants.LSTMUnits,
		DenseUnits:       constants.DenseUnits,
		Dropout:          constants.DropoutRate,
		RecurrentDropout: constants.RecurrentDropout,
	}
}

// Build returns the compiled, untrained note prediction network for
// windows of the given length over a vocabulary of the given size.
func Build(window, vocab int, rng *rand.Rand) (*Model, error) {
	return BuildTopology(window, vocab, DefaultTopology(), rng)
}

// BuildTopology is Build with explicit layer sizes: three stacked LSTMs,
// then BatchNorm, Dropout, Dense+ReLU, BatchNorm, Dropout and a softmax
// classifier over the vocabulary.
func BuildTopology(window, vocab int, top Topology, rng *rand.Rand) (*Model, error) {
	if window < 1 || vocab < 1 {
		return nil, errors.Wrapf(ErrShapeMismatch, "cannot build a network for window %d and vocabulary %d", window, vocab)
	}

	m := NewSequential(
		NewLSTM("lstm", top.LSTMUnits, true, top.RecurrentDropout),
		NewLSTM("lstm_1", top.LSTMUnits, true, top.RecurrentDropout),
		NewLSTM("lstm_2", top.LSTMUnits, false, top.RecurrentDropout),
		NewBatchNorm("batch_normalization"),
		NewDropout("dropout", top.Dropout),
		NewDense("dense", top.DenseUnits),
		NewActivation("activation", ReLU),
		NewBatchNorm("batch_normalization_1"),
		NewDropout("dropout_1", top.Dropout),
		NewDense("dense_1", vocab),
		NewActivation("activation_1", Softmax),
	)
	m.Compile(CategoricalCrossEntropy{}, NewRMSprop())
	if err := m.Build(Shape{Steps: window, Features: 1}, rng); err != nil {
		return nil, err
	}
	return m, nil
}
