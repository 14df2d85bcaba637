package train

import (
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tamanna-04/rock-music-generation-LSTM/dataset"
	"github.com/tamanna-04/rock-music-generation-LSTM/model"
	"github.com/tamanna-04/rock-music-generation-LSTM/network"
)

func riffDataset(t *testing.T) *dataset.Dataset {
	corpus := model.NewCorpus([]string{"E2", "G2", "A2", "E2", "G2", "B-2", "A2", "E2", "G2", "A2", "G2", "E2"})
	ds, _, err := dataset.Prepare(corpus, 3, dataset.AllowCrossFile)
	require.NoError(t, err)
	return ds
}

func smallModel(t *testing.T, ds *dataset.Dataset) *network.Model {
	top := network.Topology{LSTMUnits: 8, DenseUnits: 8}
	m, err := network.BuildTopology(ds.Window, ds.VocabSize, top, rand.New(rand.NewSource(3)))
	require.NoError(t, err)
	return m
}

func TestBatchesCoverEverySampleOnce(t *testing.T) {
	batches := Batches(300, 128, rand.New(rand.NewSource(1)))

	assert := assert.New(t)
	require.Len(t, batches, 3)
	assert.Len(batches[0], 128)
	assert.Len(batches[1], 128)
	assert.Len(batches[2], 44)

	seen := make(map[int]bool)
	for _, b := range batches {
		for _, i := range b {
			assert.False(seen[i], "sample %d seen twice", i)
			seen[i] = true
		}
	}
	assert.Len(seen, 300)
}

func TestBatchesAreSeeded(t *testing.T) {
	a := Batches(50, 16, rand.New(rand.NewSource(7)))
	b := Batches(50, 16, rand.New(rand.NewSource(7)))
	assert.Equal(t, a, b)
}

func TestFitRunsHooksAfterEveryEpoch(t *testing.T) {
	ds := riffDataset(t)
	var epochs []int
	hook := func(epoch int, loss float64, m *network.Model) (bool, error) {
		epochs = append(epochs, epoch)
		return epoch%2 == 0, nil
	}
	tr := New(smallModel(t, ds), 1, hook)
	tr.Epochs = 4
	tr.BatchSize = 4

	history, err := tr.Fit(ds)
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Equal([]int{1, 2, 3, 4}, epochs)
	assert.Len(history.Loss, 4)
	assert.Equal([]int{2, 4}, history.Saved)
	for _, l := range history.Loss {
		assert.Greater(l, 0.0)
	}
}

func TestFitIsReproducibleForASeed(t *testing.T) {
	ds := riffDataset(t)
	run := func() []float64 {
		tr := New(smallModel(t, ds), 5)
		tr.Epochs = 3
		tr.BatchSize = 3
		history, err := tr.Fit(ds)
		require.NoError(t, err)
		return history.Loss
	}
	assert.Equal(t, run(), run())
}

func TestFitLearnsTheRiff(t *testing.T) {
	ds := riffDataset(t)
	tr := New(smallModel(t, ds), 1)
	tr.Epochs = 60
	tr.BatchSize = ds.Len()

	history, err := tr.Fit(ds)
	require.NoError(t, err)
	assert.Less(t, history.Loss[len(history.Loss)-1], history.Loss[0])
}

func TestFitStopsOnHookError(t *testing.T) {
	ds := riffDataset(t)
	hook := func(epoch int, loss float64, m *network.Model) (bool, error) {
		if epoch == 2 {
			return false, errors.New("disk full")
		}
		return true, nil
	}
	tr := New(smallModel(t, ds), 1, hook)
	tr.Epochs = 5
	tr.BatchSize = 4

	history, err := tr.Fit(ds)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after epoch 2")
	assert.Contains(t, err.Error(), "disk full")
	assert.Len(t, history.Loss, 2)
	assert.Equal(t, []int{1}, history.Saved)
}

func TestFitRejectsEmptyDataset(t *testing.T) {
	ds := dataset.NewDataset(nil, 3, 4)
	tr := New(smallModel(t, ds), 1)
	_, err := tr.Fit(ds)
	assert.Error(t, err)
}

func TestFitRejectsMismatchedModel(t *testing.T) {
	ds := riffDataset(t)
	m, err := network.BuildTopology(ds.Window+1, ds.VocabSize, network.Topology{LSTMUnits: 4, DenseUnits: 4}, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	_, err = New(m, 1).Fit(ds)
	assert.ErrorIs(t, err, network.ErrShapeMismatch)
}
