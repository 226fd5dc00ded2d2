package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mirlib/noteseq/processor"
)

func init() {
	rootCmd.AddCommand(sustainCmd)
}

var sustainCmd = &cobra.Command{
	Use:   "sustain <in.mid> <out.mid>",
	Short: "Resolves sustain pedal into explicit note durations",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		seq := readSequenceOrDie(args[0])
		out, err := processor.ApplySustain(seq)
		cobraCheck(err)
		writeSequenceOrDie(out, args[1])
		fmt.Printf("Resolved sustain over %v notes\n", len(out.Notes))
	},
}
