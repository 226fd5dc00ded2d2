package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mirlib/noteseq/processor"
)

var (
	melodiesStepsPerQuarter int
	melodiesMinBars         int
	melodiesMaxBars         int
	melodiesMinPitches      int
	melodiesGapBars         int
	melodiesPolicy          string
	melodiesSustain         bool
)

func init() {
	melodiesCmd.Flags().IntVar(&melodiesStepsPerQuarter, "steps-per-quarter", 4, "quantization resolution")
	melodiesCmd.Flags().IntVar(&melodiesMinBars, "min-bars", 1, "discard melodies shorter than this")
	melodiesCmd.Flags().IntVar(&melodiesMaxBars, "max-bars", 0, "truncate melodies longer than this; 0 disables")
	melodiesCmd.Flags().IntVar(&melodiesMinPitches, "min-unique-pitches", 2, "discard melodies with fewer pitch classes")
	melodiesCmd.Flags().IntVar(&melodiesGapBars, "gap-bars", 1, "bars of silence ending a melody")
	melodiesCmd.Flags().StringVar(&melodiesPolicy, "policy", "highest", "polyphony policy: highest, lowest or reject")
	melodiesCmd.Flags().BoolVar(&melodiesSustain, "sustain", false, "resolve sustain pedal first")
	rootCmd.AddCommand(melodiesCmd)
}

func parsePolicy(name string) (processor.PolyphonyPolicy, error) {
	switch name {
	case "highest":
		return processor.PolyphonyPreferHighest, nil
	case "lowest":
		return processor.PolyphonyPreferLowest, nil
	case "reject":
		return processor.PolyphonyReject, nil
	}
	return 0, fmt.Errorf("unknown polyphony policy %q", name)
}

var melodiesCmd = &cobra.Command{
	Use:   "melodies <in.mid> <out-dir>",
	Short: "Extracts monophonic melodies from every instrument",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		policy, err := parsePolicy(melodiesPolicy)
		cobraCheck(err)

		seq := maybeApplySustain(readSequenceOrDie(args[0]), melodiesSustain)
		qs, err := processor.Quantize(seq, melodiesStepsPerQuarter)
		cobraCheck(err)

		opts := processor.DefaultMelodiesOptions()
		opts.MinBars = melodiesMinBars
		opts.MaxBars = melodiesMaxBars
		opts.MinUniquePitches = melodiesMinPitches
		opts.GapBars = melodiesGapBars
		opts.Policy = policy

		melodies, stats, err := processor.ExtractMelodies(qs, opts)
		cobraCheck(err)

		writeSequencesOrDie(melodies, args[1], "melody")
		fmt.Printf("Discarded %v polyphonic tracks, %v too short, %v with too few pitches; truncated %v\n",
			stats.PolyphonicTracksDiscarded, stats.TooShortDiscarded,
			stats.TooFewPitchesDiscarded, stats.TruncatedToMaxBars)
	},
}
