package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "noteseq",
	Short: "Symbolic music transformation toolkit",
	Long:  `Quantize, slice, split and otherwise rework MIDI files as note sequences.`,
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
