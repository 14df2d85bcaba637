package dataset

import (
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
	"github.com/tamanna-04/rock-music-generation-LSTM/constants"
	"github.com/tamanna-04/rock-music-generation-LSTM/util"
)

// Vocabulary maps each distinct token to its position in byte-wise
// sorted order, so the same corpus always yields the same indices.
type Vocabulary struct {
	Tokens []string
	index  map[string]int
}

func NewVocabulary(tokens []string) *Vocabulary {
	seen := make(map[string]bool)
	var distinct []string
	for _, t := range tokens {
		if !seen[t] {
			seen[t] = true
			distinct = append(distinct, t)
		}
	}
	sort.Strings(distinct)
	return FromSorted(distinct)
}

// FromSorted rebuilds a vocabulary from tokens already in index order,
// e.g. the ones stored in a checkpoint.
func FromSorted(tokens []string) *Vocabulary {
	v := &Vocabulary{Tokens: tokens, index: make(map[string]int, len(tokens))}
	for i, t := range tokens {
		v.index[t] = i
	}
	return v
}

func (v *Vocabulary) Size() int {
	return len(v.Tokens)
}

func (v *Vocabulary) Index(token string) (int, bool) {
	i, ok := v.index[token]
	return i, ok
}

func (v *Vocabulary) Token(i int) string {
	return v.Tokens[i]
}

func (v *Vocabulary) Encode(tokens []string) ([]int, error) {
	res := make([]int, len(tokens))
	for i, t := range tokens {
		idx, ok := v.index[t]
		if !ok {
			return nil, errors.Errorf("token %q at position %d is not in the vocabulary", t, i)
		}
		res[i] = idx
	}
	return res, nil
}

func VocabPath(dataDir string) string {
	return filepath.Join(dataDir, constants.VocabFilename)
}

// Save writes the tokens in index order to the vocab binary in dataDir.
func (v *Vocabulary) Save(dataDir string) error {
	if err := util.EnsureDir(dataDir); err != nil {
		return err
	}
	return util.CreateBinary(VocabPath(dataDir), v.Tokens)
}

func LoadVocabulary(dataDir string) (*Vocabulary, error) {
	tokens, err := util.ReadBinary[[]string](VocabPath(dataDir))
	if err != nil {
		return nil, errors.Wrap(err, "loading vocabulary")
	}
	return FromSorted(tokens), nil
}

// Missing returns the distinct tokens of the corpus the vocabulary cannot
// encode, in first-seen order.
func (v *Vocabulary) Missing(tokens []string) []string {
	seen := make(map[string]bool)
	var res []string
	for _, t := range tokens {
		if _, ok := v.index[t]; ok || seen[t] {
			continue
		}
		seen[t] = true
		res = append(res, t)
	}
	return res
}
