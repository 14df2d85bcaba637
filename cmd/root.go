package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "rock-lstm",
	Short: "Trains an LSTM note predictor on rock MIDI files",
	Long: `Extracts note and chord tokens from a folder of MIDI files, builds
next-token training windows and trains a stacked LSTM on them, saving the
weights every time the epoch loss improves.`,
	SilenceUsage: true,
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
