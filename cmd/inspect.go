package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/tamanna-04/rock-music-generation-LSTM/checkpoint"
	"github.com/tamanna-04/rock-music-generation-LSTM/util"
)

var showVocab bool

func init() {
	inspectCmd.Flags().BoolVar(&showVocab, "vocab", false, "also print the vocabulary")
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <checkpoint>",
	Short: "Inspects a checkpoint",
	Long:  `Prints the run, epoch, loss and parameter shapes stored in a checkpoint file.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := checkpoint.Load(args[0])
		if err != nil {
			return err
		}
		inspect(os.Stdout, c, showVocab)
		return nil
	},
}

func inspect(w io.Writer, c checkpoint.Checkpoint, vocab bool) {
	fmt.Fprintf(w, "run: %v\n", c.RunID)
	fmt.Fprintf(w, "epoch: %v\n", c.Epoch)
	fmt.Fprintf(w, "loss: %.4f\n", c.Loss)
	fmt.Fprintf(w, "window: %v\n", c.Window)
	fmt.Fprintf(w, "vocabulary: %v tokens\n", len(c.Vocab))
	fmt.Fprintf(w, "saved: %v\n", c.SavedAt.Format("2006-01-02 15:04:05 MST"))

	sizes := make([]int, len(c.Weights))
	for i, weight := range c.Weights {
		fmt.Fprintf(w, "  %-36s %dx%d\n", weight.Name, weight.Rows, weight.Cols)
		sizes[i] = len(weight.Data)
	}
	fmt.Fprintf(w, "params: %v\n", util.Sum(sizes))

	if vocab {
		for i, token := range c.Vocab {
			fmt.Fprintf(w, "%5d %s\n", i, token)
		}
	}
}
