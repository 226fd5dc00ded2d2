package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mirlib/noteseq/processor"
)

var (
	transposeMinPitch int
	transposeMaxPitch int
	transposeNoChords bool
)

func init() {
	transposeCmd.Flags().IntVar(&transposeMinPitch, "min-pitch", 0, "lowest allowed result pitch")
	transposeCmd.Flags().IntVar(&transposeMaxPitch, "max-pitch", 127, "highest allowed result pitch")
	transposeCmd.Flags().BoolVar(&transposeNoChords, "strip-chords", false, "strip chord symbols instead of transposing them")
	rootCmd.AddCommand(transposeCmd)
}

var transposeCmd = &cobra.Command{
	Use:   "transpose <in.mid> <out.mid> <semitones>",
	Short: "Transposes a MIDI file by a number of semitones",
	Args:  cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		amount, err := strconv.Atoi(args[2])
		cobraCheck(err)

		seq := readSequenceOrDie(args[0])
		opts := processor.DefaultTransposeOptions()
		opts.MinAllowedPitch = uint8(transposeMinPitch)
		opts.MaxAllowedPitch = uint8(transposeMaxPitch)
		opts.TransposeChordSymbols = !transposeNoChords

		out, deleted, err := processor.Transpose(seq, amount, opts)
		cobraCheck(err)

		writeSequenceOrDie(out, args[1])
		if deleted > 0 {
			fmt.Printf("Deleted %v out-of-range notes\n", deleted)
		}
	},
}
