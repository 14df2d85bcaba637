package dataset

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/tamanna-04/rock-music-generation-LSTM/model"
	"gonum.org/v1/gonum/mat"
)

// Policy decides what happens to windows that run from the end of one
// file into the start of the next.
type Policy int

const (
	AllowCrossFile Policy = iota
	SkipCrossFile
)

func (p Policy) String() string {
	if p == SkipCrossFile {
		return "skip-cross-file"
	}
	return "allow-cross-file"
}

// Sample is one window of encoded events and the event that follows it.
// Position is the corpus index of the first input event.
type Sample struct {
	Input    []int
	Target   int
	Position int
}

// Windows slides a window of the given length over the corpus one event at
// a time. A corpus no longer than the window yields no samples.
func Windows(corpus model.Corpus, vocab *Vocabulary, window int, policy Policy) ([]Sample, error) {
	if window < 1 {
		return nil, errors.Errorf("window length must be positive, got %d", window)
	}
	encoded, err := vocab.Encode(corpus.Tokens())
	if err != nil {
		return nil, errors.Wrap(err, "encoding corpus")
	}

	var samples []Sample
	for i := 0; i < len(encoded)-window; i++ {
		if policy == SkipCrossFile && corpus.Events[i].FileNum != corpus.Events[i+window].FileNum {
			continue
		}
		samples = append(samples, Sample{
			Input:    encoded[i : i+window],
			Target:   encoded[i+window],
			Position: i,
		})
	}
	return samples, nil
}

// Dataset holds the network-ready tensors. Inputs is N x W, the trailing
// feature axis of size 1 is implicit; values are index / V. Targets is
// N x V one-hot. Both are nil when there are no samples.
type Dataset struct {
	Inputs    *mat.Dense
	Targets   *mat.Dense
	Window    int
	VocabSize int
	samples   int
}

func NewDataset(samples []Sample, window, vocabSize int) *Dataset {
	d := &Dataset{Window: window, VocabSize: vocabSize, samples: len(samples)}
	if len(samples) == 0 {
		return d
	}

	d.Inputs = mat.NewDense(len(samples), window, nil)
	d.Targets = mat.NewDense(len(samples), vocabSize, nil)
	n := float64(vocabSize)
	for i, s := range samples {
		for t, idx := range s.Input {
			d.Inputs.Set(i, t, float64(idx)/n)
		}
		d.Targets.Set(i, s.Target, 1)
	}
	return d
}

func (d *Dataset) Len() int {
	return d.samples
}

// Shape is (samples, window, features).
func (d *Dataset) Shape() (int, int, int) {
	return d.samples, d.Window, 1
}

func (d *Dataset) String() string {
	n, w, f := d.Shape()
	return fmt.Sprintf("inputs (%d, %d, %d), targets (%d, %d)", n, w, f, n, d.VocabSize)
}

// Batch is a group of samples laid out time-major: Steps[t] is B x 1.
type Batch struct {
	Steps   []*mat.Dense
	Targets *mat.Dense
}

func (b Batch) Size() int {
	if b.Targets == nil {
		return 0
	}
	r, _ := b.Targets.Dims()
	return r
}

func (d *Dataset) Batch(indices []int) Batch {
	if len(indices) == 0 {
		return Batch{}
	}
	steps := make([]*mat.Dense, d.Window)
	for t := range steps {
		step := mat.NewDense(len(indices), 1, nil)
		for b, idx := range indices {
			step.Set(b, 0, d.Inputs.At(idx, t))
		}
		steps[t] = step
	}
	targets := mat.NewDense(len(indices), d.VocabSize, nil)
	for b, idx := range indices {
		targets.SetRow(b, d.Targets.RawRowView(idx))
	}
	return Batch{Steps: steps, Targets: targets}
}

// Prepare builds the vocabulary and the dataset for a corpus.
func Prepare(corpus model.Corpus, window int, policy Policy) (*Dataset, *Vocabulary, error) {
	vocab := NewVocabulary(corpus.Tokens())
	samples, err := Windows(corpus, vocab, window, policy)
	if err != nil {
		return nil, nil, err
	}
	return NewDataset(samples, window, vocab.Size()), vocab, nil
}
