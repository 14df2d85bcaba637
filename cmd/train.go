package cmd

import (
	"fmt"
	"math/rand"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/tamanna-04/rock-music-generation-LSTM/checkpoint"
	"github.com/tamanna-04/rock-music-generation-LSTM/constants"
	"github.com/tamanna-04/rock-music-generation-LSTM/dataset"
	"github.com/tamanna-04/rock-music-generation-LSTM/network"
	"github.com/tamanna-04/rock-music-generation-LSTM/notes"
	"github.com/tamanna-04/rock-music-generation-LSTM/train"
)

func init() {
	rootCmd.AddCommand(trainCmd)
}

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Extracts notes and trains the network",
	Long: `Reads every MIDI file under MIDI_PATH (or the corpus already saved in
DATA_PATH), trains for a fixed number of epochs and writes a checkpoint to
CHECKPOINT_PATH whenever the loss improves.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := Train(DefaultTrainOptions())
		return err
	},
}

type TrainOptions struct {
	MidiDir       string
	DataDir       string
	CheckpointDir string
	Seed          int64
	Policy        dataset.Policy
	Window        int
	Epochs        int
	BatchSize     int
	Topology      network.Topology
}

func DefaultTrainOptions() TrainOptions {
	policy := dataset.AllowCrossFile
	if constants.SkipCrossFileWindows() {
		policy = dataset.SkipCrossFile
	}
	return TrainOptions{
		MidiDir:       constants.GetMidiDir(),
		DataDir:       constants.GetDataDir(),
		CheckpointDir: constants.GetCheckpointDir(),
		Seed:          constants.GetSeed(),
		Policy:        policy,
		Window:        constants.SequenceLength,
		Epochs:        constants.Epochs,
		BatchSize:     constants.BatchSize,
		Topology:      network.DefaultTopology(),
	}
}

// Train runs the whole pipeline: corpus, vocabulary, windows, network,
// then the training loop with best-loss checkpointing.
func Train(opts TrainOptions) (train.History, error) {
	corpus, err := notes.LoadOrCreate(opts.DataDir, opts.MidiDir)
	if err != nil {
		return train.History{}, errors.Wrap(err, "loading corpus")
	}

	ds, vocab, err := dataset.Prepare(corpus, opts.Window, opts.Policy)
	if err != nil {
		return train.History{}, err
	}
	if ds.Len() == 0 {
		return train.History{}, errors.Errorf("corpus of %d events is too short for windows of %d", corpus.Len(), opts.Window)
	}
	fmt.Printf("%d events, %d distinct tokens, %s\n", corpus.Len(), vocab.Size(), ds)

	if err := vocab.Save(opts.DataDir); err != nil {
		return train.History{}, err
	}

	m, err := network.BuildTopology(opts.Window, vocab.Size(), opts.Topology, rand.New(rand.NewSource(opts.Seed)))
	if err != nil {
		return train.History{}, err
	}
	fmt.Print(m.Summary())

	manifest := checkpoint.NewManifest(opts.Seed, opts.Epochs, opts.BatchSize)
	manifest.Window = opts.Window
	manifest.VocabSize = vocab.Size()
	manifest.CorpusEvents = corpus.Len()
	manifest.CorpusFiles = len(corpus.Files)
	manifest.Samples = ds.Len()
	manifest.SkipCrossFile = opts.Policy == dataset.SkipCrossFile
	if err := checkpoint.WriteManifest(opts.CheckpointDir, manifest); err != nil {
		return train.History{}, err
	}

	saver := checkpoint.NewBestLoss(opts.CheckpointDir, manifest.RunID, opts.Window, vocab.Tokens)
	tr := train.New(m, opts.Seed, saver.OnEpochEnd)
	tr.Epochs = opts.Epochs
	tr.BatchSize = opts.BatchSize
	return tr.Fit(ds)
}
