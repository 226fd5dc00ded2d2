package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mirlib/noteseq/model"
	"github.com/mirlib/noteseq/processor"
)

var (
	splitSilenceGap      float64
	splitHopSeconds      float64
	splitTimeChanges     bool
	splitSustain         bool
	splitSkipInsideNotes bool
)

func init() {
	splitCmd.Flags().Float64Var(&splitSilenceGap, "silence-gap", 0, "split on silences of at least this many seconds")
	splitCmd.Flags().Float64Var(&splitHopSeconds, "hop-seconds", 0, "split every this many seconds")
	splitCmd.Flags().BoolVar(&splitTimeChanges, "time-changes", false, "split on meter or tempo changes")
	splitCmd.Flags().BoolVar(&splitSustain, "sustain", false, "resolve sustain pedal first")
	splitCmd.Flags().BoolVar(&splitSkipInsideNotes, "skip-inside-notes", false, "never cut inside a sounding note")
	rootCmd.AddCommand(splitCmd)
}

var splitCmd = &cobra.Command{
	Use:   "split <in.mid> <out-dir>",
	Short: "Splits a MIDI file at silences, time changes or fixed hops",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		seq := maybeApplySustain(readSequenceOrDie(args[0]), splitSustain)

		var segments []*model.Sequence
		var err error
		switch {
		case splitSilenceGap > 0:
			segments, err = processor.SplitOnSilence(seq, splitSilenceGap)
		case splitHopSeconds > 0:
			segments, err = processor.SplitSequence(seq, splitHopSeconds, splitSkipInsideNotes)
		case splitTimeChanges:
			segments, err = processor.SplitOnTimeChanges(seq, true)
		default:
			cobraCheck(cmd.Help())
			return
		}
		cobraCheck(err)

		writeSequencesOrDie(segments, args[1], "segment")
	},
}
