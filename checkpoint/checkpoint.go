package checkpoint

import (
	"fmt"
	"math"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/tamanna-04/rock-music-generation-LSTM/model"
	"github.com/tamanna-04/rock-music-generation-LSTM/network"
	"github.com/tamanna-04/rock-music-generation-LSTM/util"
)

// Glob matches every file written by FileName.
const Glob = "weights-improvement-*-bigger.gob"

// FileName embeds the 1-based epoch and the loss it was saved at, e.g.
// weights-improvement-07-3.2174-bigger.gob.
func FileName(epoch int, loss float64) string {
	return fmt.Sprintf("weights-improvement-%02d-%.4f-bigger.gob", epoch, loss)
}

type Checkpoint struct {
	model.CheckpointInfo
	Vocab   []string
	Weights []network.Weight
}

func Load(path string) (Checkpoint, error) {
	c, err := util.ReadBinary[Checkpoint](path)
	if err != nil {
		return c, errors.Wrapf(err, "loading checkpoint %s", path)
	}
	return c, nil
}

// Restore loads the weights stored at path into m, which must have been
// built with the same topology.
func Restore(path string, m *network.Model) (Checkpoint, error) {
	c, err := Load(path)
	if err != nil {
		return c, err
	}
	if err := m.CheckInput(c.Window, len(c.Vocab)); err != nil {
		return c, errors.Wrapf(err, "restoring %s", path)
	}
	if err := m.SetWeights(c.Weights); err != nil {
		return c, errors.Wrapf(err, "restoring %s", path)
	}
	return c, nil
}

// BestLoss writes a checkpoint whenever the epoch loss strictly improves
// on every earlier epoch of the run.
type BestLoss struct {
	Dir    string
	RunID  string
	Window int
	Vocab  []string

	best  float64
	saved []model.CheckpointInfo
}

func NewBestLoss(dir, runID string, window int, vocab []string) *BestLoss {
	return &BestLoss{
		Dir:    dir,
		RunID:  runID,
		Window: window,
		Vocab:  vocab,
		best:   math.Inf(1),
	}
}

// OnEpochEnd has the signature of a train.EpochHook.
func (b *BestLoss) OnEpochEnd(epoch int, loss float64, m *network.Model) (bool, error) {
	if !(loss < b.best) {
		fmt.Printf("loss did not improve from %.4f\n", b.best)
		return false, nil
	}

	info := model.CheckpointInfo{
		RunID:    b.RunID,
		Epoch:    epoch,
		Loss:     loss,
		Window:   b.Window,
		Filename: FileName(epoch, loss),
		SavedAt:  time.Now().UTC(),
	}
	if err := util.EnsureDir(b.Dir); err != nil {
		return false, err
	}
	path := filepath.Join(b.Dir, info.Filename)
	c := Checkpoint{CheckpointInfo: info, Vocab: b.Vocab, Weights: m.Weights()}
	if err := util.CreateBinary(path, c); err != nil {
		return false, errors.Wrapf(err, "saving checkpoint for epoch %d", epoch)
	}

	fmt.Printf("loss improved from %.4f to %.4f, saved checkpoint %s\n", b.best, loss, path)
	b.best = loss
	b.saved = append(b.saved, info)
	return true, nil
}

// Best returns the lowest loss seen so far, or +Inf before the first epoch.
func (b *BestLoss) Best() float64 {
	return b.best
}

func (b *BestLoss) Saved() []model.CheckpointInfo {
	return b.saved
}
