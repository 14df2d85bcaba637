package constants

import (
	"os"
	"strconv"
)

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

func GetMidiDir() string {
	return getEnv("MIDI_PATH", "midi_songs")
}

func GetDataDir() string {
	return getEnv("DATA_PATH", "data")
}

func GetCheckpointDir() string {
	return getEnv("CHECKPOINT_PATH", ".")
}

// GetSeed falls back to DefaultSeed when TRAIN_SEED is unset or not a number.
func GetSeed() int64 {
	seed, err := strconv.ParseInt(getEnv("TRAIN_SEED", ""), 10, 64)
	if err != nil {
		return DefaultSeed
	}
	return seed
}

func SkipCrossFileWindows() bool {
	return getEnv("SKIP_CROSS_FILE_WINDOWS", "false") == "true"
}

const DefaultSeed = 1

// names of the binaries written to the data dir
const (
	CorpusFilename = "notes"
	VocabFilename  = "vocab"
)

const ManifestFilename = "run.yaml"

const (
	SequenceLength = 100
	Epochs         = 200
	BatchSize      = 128
)

// network topology
const (
	LSTMUnits        = 512
	DenseUnits       = 256
	DropoutRate      = 0.3
	RecurrentDropout = 0.3
)
