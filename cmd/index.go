package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mirlib/noteseq/constants"
	"github.com/mirlib/noteseq/dataset"
	"github.com/mirlib/noteseq/processor"
)

var (
	indexStepsPerQuarter int
	indexSliceBars       int
	indexMelodies        bool
	indexSustain         bool
)

func init() {
	indexCmd.Flags().IntVar(&indexStepsPerQuarter, "steps-per-quarter", 4, "quantization resolution; 0 keeps sequences unquantized")
	indexCmd.Flags().IntVar(&indexSliceBars, "slice-bars", 0, "slice into windows of this many bars; 0 disables")
	indexCmd.Flags().BoolVar(&indexMelodies, "melodies", false, "extract melodies instead of slices")
	indexCmd.Flags().BoolVar(&indexSustain, "sustain", true, "resolve sustain pedal first")
	rootCmd.AddCommand(indexCmd)
}

var indexCmd = &cobra.Command{
	Use:   "index [maxNum]",
	Short: "Builds a sequence dataset from the media directory",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var maxNum int
		if len(args) == 1 {
			arg1, err := strconv.Atoi(args[0])
			cobraCheck(err)
			maxNum = arg1
		}
		Index(maxNum)
	},
}

// Index builds the dataset with the configured pipeline. Exported for the
// end-to-end test.
func Index(maxNum int) {
	opts := dataset.PipelineOptions{
		ApplySustain:    indexSustain,
		StepsPerQuarter: indexStepsPerQuarter,
		SliceBars:       indexSliceBars,
		ExtractMelodies: indexMelodies,
		Melodies:        processor.DefaultMelodiesOptions(),
	}
	stats, err := dataset.Build(constants.GetMediaDir(), constants.GetIndexDir(), maxNum, opts)
	cobraCheck(err)
	fmt.Printf("Skipped %v files, discarded %v segments\n", stats.FilesSkipped, stats.SegmentsDiscarded)
}
