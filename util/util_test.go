package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0777))
	require.NoError(t, os.WriteFile(path, []byte{}, 0666))
}

func TestGatherAllMidiPaths(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "b.mid"))
	touch(t, filepath.Join(dir, "a.MID"))
	touch(t, filepath.Join(dir, "nested", "c.midi"))
	touch(t, filepath.Join(dir, "notes.txt"))

	paths, err := GatherAllMidiPaths(dir, 0)
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "a.MID"),
		filepath.Join(dir, "b.mid"),
		filepath.Join(dir, "nested", "c.midi"),
	}, paths)

	limited, err := GatherAllMidiPaths(dir, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestGatherAllMidiPathsMissingDir(t *testing.T) {
	_, err := GatherAllMidiPaths(filepath.Join(t.TempDir(), "nope"), 0)
	assert.Error(t, err)
}

func TestBinaryRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes")
	notes := []string{"C4", "0.4.7", "E-3"}

	require.NoError(t, CreateBinary(path, notes))
	assert.False(t, Exists(path+".tmp"))

	read, err := ReadBinary[[]string](path)
	require.NoError(t, err)
	assert.Equal(t, notes, read)
}

func TestReadBinaryMissing(t *testing.T) {
	_, err := ReadBinary[[]string](filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestGenericHelpers(t *testing.T) {
	assert := assert.New(t)
	assert.Equal([]string{"a", "b", "c"}, GetKeysSorted(map[string]int{"c": 1, "a": 2, "b": 3}))
	assert.Equal(6, Sum([]int{1, 2, 3}))
	assert.InDelta(1.5, Sum([]float64{0.5, 1}), 1e-12)
}
