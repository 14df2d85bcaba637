package model

import "time"

type CheckpointInfo struct {
	RunID    string
	Epoch    int
	Loss     float64
	Window   int
	Filename string
	SavedAt  time.Time
}

type RunManifest struct {
	RunID          string    `yaml:"run_id"`
	StartedAt      time.Time `yaml:"started_at"`
	Seed           int64     `yaml:"seed"`
	Window         int       `yaml:"window"`
	VocabSize      int       `yaml:"vocab_size"`
	Epochs         int       `yaml:"epochs"`
	BatchSize      int       `yaml:"batch_size"`
	CorpusEvents   int       `yaml:"corpus_events"`
	CorpusFiles    int       `yaml:"corpus_files"`
	Samples        int       `yaml:"samples"`
	SkipCrossFile  bool      `yaml:"skip_cross_file_windows"`
	CheckpointGlob string    `yaml:"checkpoint_glob"`
}
