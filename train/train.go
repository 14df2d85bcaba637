package train

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/pkg/errors"
	"github.com/tamanna-04/rock-music-generation-LSTM/constants"
	"github.com/tamanna-04/rock-music-generation-LSTM/dataset"
	"github.com/tamanna-04/rock-music-generation-LSTM/network"
)

// EpochHook runs synchronously after every epoch with the 1-based epoch
// number and its loss. It reports whether it wrote anything.
type EpochHook func(epoch int, loss float64, m *network.Model) (bool, error)

// Trainer owns the model for the whole run.
type Trainer struct {
	Model     *network.Model
	Epochs    int
	BatchSize int
	Seed      int64
	Hooks     []EpochHook
}

func New(m *network.Model, seed int64, hooks ...EpochHook) *Trainer {
	return &Trainer{
		Model:     m,
		Epochs:    constants.Epochs,
		BatchSize: constants.BatchSize,
		Seed:      seed,
		Hooks:     hooks,
	}
}

type History struct {
	Loss  []float64
	Saved []int
}

// Batches splits a permutation of n samples into consecutive groups of
// size, the last one possibly shorter.
func Batches(n, size int, rng *rand.Rand) [][]int {
	order := rng.Perm(n)
	var res [][]int
	for start := 0; start < n; start += size {
		end := start + size
		if end > n {
			end = n
		}
		res = append(res, order[start:end])
	}
	return res
}

// Fit trains for the full epoch budget. Any failure stops the run; the
// checkpoints already written stay on disk.
func (tr *Trainer) Fit(ds *dataset.Dataset) (History, error) {
	var history History
	if ds.Len() == 0 {
		return history, errors.New("dataset has no samples")
	}
	if tr.BatchSize < 1 {
		return history, errors.Errorf("batch size must be positive, got %d", tr.BatchSize)
	}
	if err := tr.Model.CheckInput(ds.Window, ds.VocabSize); err != nil {
		return history, errors.Wrap(err, "model does not fit dataset")
	}

	rng := rand.New(rand.NewSource(tr.Seed))
	for epoch := 1; epoch <= tr.Epochs; epoch++ {
		started := time.Now()
		batches := Batches(ds.Len(), tr.BatchSize, rng)
		var total float64
		for i, indices := range batches {
			b := ds.Batch(indices)
			loss, err := tr.Model.TrainOnBatch(b.Steps, b.Targets)
			if err != nil {
				return history, errors.Wrapf(err, "epoch %d batch %d", epoch, i+1)
			}
			total += loss * float64(len(indices))
		}
		loss := total / float64(ds.Len())
		history.Loss = append(history.Loss, loss)
		fmt.Printf("Epoch %d/%d - %v - loss: %.4f\n", epoch, tr.Epochs, time.Since(started).Round(time.Millisecond), loss)

		for _, hook := range tr.Hooks {
			saved, err := hook(epoch, loss, tr.Model)
			if err != nil {
				return history, errors.Wrapf(err, "after epoch %d", epoch)
			}
			if saved {
				history.Saved = append(history.Saved, epoch)
			}
		}
	}
	return history, nil
}
