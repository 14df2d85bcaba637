package cmd

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"github.com/tamanna-04/rock-music-generation-LSTM/chord"
	"github.com/tamanna-04/rock-music-generation-LSTM/constants"
	"github.com/tamanna-04/rock-music-generation-LSTM/dataset"
	"github.com/tamanna-04/rock-music-generation-LSTM/file"
	"github.com/tamanna-04/rock-music-generation-LSTM/model"
	"github.com/tamanna-04/rock-music-generation-LSTM/notes"
	"github.com/tamanna-04/rock-music-generation-LSTM/util"
)

var topTokens int

func init() {
	reportCmd.Flags().IntVar(&topTokens, "top", 10, "number of most frequent tokens to list")
	rootCmd.AddCommand(reportCmd)
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Creates a corpus report",
	Long:  `Prints statistics about the note corpus saved in DATA_PATH.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir := constants.GetDataDir()
		corpus, err := util.ReadBinary[model.Corpus](notes.CorpusPath(dataDir))
		if err != nil {
			return err
		}
		var vocab *dataset.Vocabulary
		if util.Exists(dataset.VocabPath(dataDir)) {
			if vocab, err = dataset.LoadVocabulary(dataDir); err != nil {
				return err
			}
		}
		analyzeCorpus(corpus, vocab, topTokens).print(os.Stdout)
		return nil
	},
}

type tokenCount struct {
	token string
	count int
}

type corpusReport struct {
	numEvents     int
	numFiles      int
	numDistinct   int
	numNotes      int
	numChords     int
	eventsPerFile map[string]int
	top           []tokenCount

	// from the saved vocabulary, -1 when there is none
	vocabSize int
	missing   []string
}

func analyzeCorpus(corpus model.Corpus, vocab *dataset.Vocabulary, top int) corpusReport {
	report := corpusReport{
		numEvents:     corpus.Len(),
		numFiles:      len(corpus.Files),
		eventsPerFile: make(map[string]int),
		vocabSize:     -1,
	}
	if vocab != nil {
		report.vocabSize = vocab.Size()
		report.missing = vocab.Missing(corpus.Tokens())
	}

	names := file.BaseNames(corpus.Files)
	counts := make(map[string]int)
	for _, e := range corpus.Events {
		counts[e.Token]++
		if chord.IsChordToken(e.Token) {
			report.numChords++
		} else {
			report.numNotes++
		}
		if name, ok := names[e.FileNum]; ok {
			report.eventsPerFile[name]++
		}
	}
	report.numDistinct = len(counts)

	for _, token := range util.GetKeysSorted(counts) {
		report.top = append(report.top, tokenCount{token: token, count: counts[token]})
	}
	sort.SliceStable(report.top, func(i, j int) bool {
		return report.top[i].count > report.top[j].count
	})
	if top < len(report.top) {
		report.top = report.top[:top]
	}
	return report
}

func (r corpusReport) print(w io.Writer) {
	fmt.Fprintf(w, "events: %v\n", r.numEvents)
	fmt.Fprintf(w, "files: %v\n", r.numFiles)
	fmt.Fprintf(w, "distinct tokens: %v\n", r.numDistinct)
	fmt.Fprintf(w, "notes: %v\n", r.numNotes)
	fmt.Fprintf(w, "chords: %v\n", r.numChords)
	if r.vocabSize >= 0 {
		fmt.Fprintf(w, "saved vocabulary: %v tokens\n", r.vocabSize)
		if len(r.missing) > 0 {
			fmt.Fprintf(w, "saved vocabulary is stale, missing %v tokens: %v\n", len(r.missing), r.missing)
		}
	}
	for _, name := range util.GetKeysSorted(r.eventsPerFile) {
		fmt.Fprintf(w, "  %v: %v events\n", name, r.eventsPerFile[name])
	}
	fmt.Fprintf(w, "most frequent tokens:\n")
	for _, tc := range r.top {
		fmt.Fprintf(w, "  %-16s %v\n", tc.token, tc.count)
	}
}
