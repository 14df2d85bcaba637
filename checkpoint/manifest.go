package checkpoint

import (
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/tamanna-04/rock-music-generation-LSTM/constants"
	"github.com/tamanna-04/rock-music-generation-LSTM/model"
	"github.com/tamanna-04/rock-music-generation-LSTM/util"
	"gopkg.in/yaml.v3"
)

func NewRunID() string {
	return uuid.New().String()
}

func NewManifest(seed int64, epochs, batchSize int) *model.RunManifest {
	return &model.RunManifest{
		RunID:          NewRunID(),
		StartedAt:      time.Now().UTC(),
		Seed:           seed,
		Epochs:         epochs,
		BatchSize:      batchSize,
		CheckpointGlob: Glob,
	}
}

func ManifestPath(dir string) string {
	return filepath.Join(dir, constants.ManifestFilename)
}

// WriteManifest replaces run.yaml in dir.
func WriteManifest(dir string, m *model.RunManifest) error {
	if err := util.EnsureDir(dir); err != nil {
		return err
	}
	data, err := yaml.Marshal(m)
	if err != nil {
		return errors.Wrap(err, "marshaling run manifest")
	}
	path := ManifestPath(dir)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	return nil
}

func ReadManifest(path string) (*model.RunManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	m := &model.RunManifest{}
	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	return m, nil
}
