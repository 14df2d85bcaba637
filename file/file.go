package file

import (
	"path/filepath"

	"github.com/tamanna-04/rock-music-generation-LSTM/model"
)

// CreateFileNumMap numbers paths in enumeration order.
func CreateFileNumMap(paths []string) model.FileNumToMidiPath {
	res := make(model.FileNumToMidiPath)
	for i, v := range paths {
		res[uint32(i)] = v
	}
	return res
}

func BaseNames(m model.FileNumToMidiPath) map[model.FileNum]string {
	res := make(map[model.FileNum]string, len(m))
	for k, v := range m {
		res[k] = filepath.Base(v)
	}
	return res
}
