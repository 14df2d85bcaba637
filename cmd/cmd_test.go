package cmd

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tamanna-04/rock-music-generation-LSTM/checkpoint"
	"github.com/tamanna-04/rock-music-generation-LSTM/dataset"
	"github.com/tamanna-04/rock-music-generation-LSTM/model"
	"github.com/tamanna-04/rock-music-generation-LSTM/network"
	"github.com/tamanna-04/rock-music-generation-LSTM/notes"
	"github.com/tamanna-04/rock-music-generation-LSTM/util"
)

func twoFileCorpus() model.Corpus {
	return model.Corpus{
		Events: []model.Event{
			{Token: "E2", FileNum: 0},
			{Token: "11.4", FileNum: 0},
			{Token: "E2", FileNum: 0},
			{Token: "G2", FileNum: 1},
			{Token: "E2", FileNum: 1},
			{Token: "A2", FileNum: 1},
			{Token: "11.4", FileNum: 1},
			{Token: "E2", FileNum: 1},
		},
		Files: model.FileNumToMidiPath{0: "songs/a.mid", 1: "songs/b.mid"},
	}
}

func TestAnalyzeCorpus(t *testing.T) {
	r := analyzeCorpus(twoFileCorpus(), nil, 2)

	assert := assert.New(t)
	assert.Equal(8, r.numEvents)
	assert.Equal(2, r.numFiles)
	assert.Equal(4, r.numDistinct)
	assert.Equal(6, r.numNotes)
	assert.Equal(2, r.numChords)
	assert.Equal(map[string]int{"a.mid": 3, "b.mid": 5}, r.eventsPerFile)
	assert.Equal([]tokenCount{{"E2", 4}, {"11.4", 2}}, r.top)

	var out bytes.Buffer
	r.print(&out)
	assert.Contains(out.String(), "distinct tokens: 4")
	assert.Contains(out.String(), "b.mid: 5 events")
	assert.NotContains(out.String(), "saved vocabulary")
}

func TestAnalyzeCorpusAgainstSavedVocabulary(t *testing.T) {
	dataDir := t.TempDir()
	require.NoError(t, dataset.NewVocabulary([]string{"E2", "11.4", "G2"}).Save(dataDir))
	vocab, err := dataset.LoadVocabulary(dataDir)
	require.NoError(t, err)

	r := analyzeCorpus(twoFileCorpus(), vocab, 2)

	assert := assert.New(t)
	assert.Equal(3, r.vocabSize)
	assert.Equal([]string{"A2"}, r.missing)

	var out bytes.Buffer
	r.print(&out)
	assert.Contains(out.String(), "saved vocabulary: 3 tokens")
	assert.Contains(out.String(), "missing 1 tokens: [A2]")
}

func smallOptions(t *testing.T) TrainOptions {
	root := t.TempDir()
	return TrainOptions{
		MidiDir:       filepath.Join(root, "midi_songs"),
		DataDir:       filepath.Join(root, "data"),
		CheckpointDir: filepath.Join(root, "checkpoints"),
		Seed:          1,
		Policy:        dataset.AllowCrossFile,
		Window:        3,
		Epochs:        3,
		BatchSize:     2,
		Topology:      network.Topology{LSTMUnits: 4, DenseUnits: 4},
	}
}

func TestTrainFromSavedCorpus(t *testing.T) {
	opts := smallOptions(t)
	require.NoError(t, util.EnsureDir(opts.DataDir))
	require.NoError(t, util.CreateBinary(notes.CorpusPath(opts.DataDir), twoFileCorpus()))

	history, err := Train(opts)
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Len(history.Loss, 3)
	require.NotEmpty(t, history.Saved)
	assert.Equal(1, history.Saved[0])

	saved, err := dataset.LoadVocabulary(opts.DataDir)
	require.NoError(t, err)
	vocab := saved.Tokens
	assert.Equal([]string{"11.4", "A2", "E2", "G2"}, vocab)
	assert.Empty(analyzeCorpus(twoFileCorpus(), saved, 1).missing)

	manifest, err := checkpoint.ReadManifest(checkpoint.ManifestPath(opts.CheckpointDir))
	require.NoError(t, err)
	assert.Equal(5, manifest.Samples)
	assert.Equal(2, manifest.CorpusFiles)
	assert.Equal(4, manifest.VocabSize)
	assert.False(manifest.SkipCrossFile)

	files, err := filepath.Glob(filepath.Join(opts.CheckpointDir, checkpoint.Glob))
	require.NoError(t, err)
	assert.Len(files, len(history.Saved))

	c, err := checkpoint.Load(files[0])
	require.NoError(t, err)
	assert.Equal(manifest.RunID, c.RunID)
	assert.Equal(vocab, c.Vocab)

	var out bytes.Buffer
	inspect(&out, c, true)
	assert.Contains(out.String(), "window: 3")
	assert.Contains(out.String(), "vocabulary: 4 tokens")
	assert.Contains(out.String(), "11.4")
}

func TestTrainSkippingCrossFileWindows(t *testing.T) {
	opts := smallOptions(t)
	opts.Policy = dataset.SkipCrossFile
	opts.Epochs = 1
	require.NoError(t, util.EnsureDir(opts.DataDir))
	require.NoError(t, util.CreateBinary(notes.CorpusPath(opts.DataDir), twoFileCorpus()))

	_, err := Train(opts)
	require.NoError(t, err)

	manifest, err := checkpoint.ReadManifest(checkpoint.ManifestPath(opts.CheckpointDir))
	require.NoError(t, err)
	// only windows inside b.mid remain
	assert.Equal(t, 2, manifest.Samples)
	assert.True(t, manifest.SkipCrossFile)
}

func TestTrainRejectsShortCorpus(t *testing.T) {
	opts := smallOptions(t)
	opts.Window = 8
	require.NoError(t, util.EnsureDir(opts.DataDir))
	require.NoError(t, util.CreateBinary(notes.CorpusPath(opts.DataDir), twoFileCorpus()))

	_, err := Train(opts)
	assert.ErrorContains(t, err, "too short")
}

func TestTrainWithoutMidiFiles(t *testing.T) {
	opts := smallOptions(t)
	require.NoError(t, util.EnsureDir(opts.MidiDir))

	_, err := Train(opts)
	assert.ErrorContains(t, err, "no midi files")
}
