package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mirlib/noteseq/processor"
)

var (
	sliceBars            int
	sliceHopBars         int
	sliceStepsPerQuarter int
	sliceSkipInsideNotes bool
	sliceAllowCropped    bool
	sliceSustain         bool
)

func init() {
	sliceCmd.Flags().IntVar(&sliceBars, "bars", 4, "window size in bars")
	sliceCmd.Flags().IntVar(&sliceHopBars, "hop", 0, "hop in bars; defaults to the window size")
	sliceCmd.Flags().IntVar(&sliceStepsPerQuarter, "steps-per-quarter", 4, "quantization resolution")
	sliceCmd.Flags().BoolVar(&sliceSkipInsideNotes, "skip-inside-notes", false, "discard windows cutting through a sounding note")
	sliceCmd.Flags().BoolVar(&sliceAllowCropped, "allow-cropped", false, "keep a cropped final window")
	sliceCmd.Flags().BoolVar(&sliceSustain, "sustain", false, "resolve sustain pedal first")
	rootCmd.AddCommand(sliceCmd)
}

var sliceCmd = &cobra.Command{
	Use:   "slice <in.mid> <out-dir>",
	Short: "Cuts a MIDI file into fixed bar windows",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		seq := maybeApplySustain(readSequenceOrDie(args[0]), sliceSustain)
		qs, err := processor.Quantize(seq, sliceStepsPerQuarter)
		cobraCheck(err)

		hop := sliceHopBars
		if hop == 0 {
			hop = sliceBars
		}
		slices, err := processor.SliceSequenceInBars(qs, sliceBars, hop, processor.SliceOptions{
			SkipSplittingInsideNote: sliceSkipInsideNotes,
			AllowCroppedSlices:      sliceAllowCropped,
		})
		cobraCheck(err)

		writeSequencesOrDie(slices, args[1], "slice")
	},
}
