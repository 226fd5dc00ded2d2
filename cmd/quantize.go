package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mirlib/noteseq/model"
	"github.com/mirlib/noteseq/processor"
)

var (
	quantizeStepsPerQuarter int
	quantizeStepsPerSecond  float64
	quantizeSustain         bool
)

func init() {
	quantizeCmd.Flags().IntVar(&quantizeStepsPerQuarter, "steps-per-quarter", 4, "relative quantization resolution")
	quantizeCmd.Flags().Float64Var(&quantizeStepsPerSecond, "steps-per-second", 0, "absolute quantization resolution; overrides steps-per-quarter")
	quantizeCmd.Flags().BoolVar(&quantizeSustain, "sustain", false, "resolve sustain pedal first")
	rootCmd.AddCommand(quantizeCmd)
}

var quantizeCmd = &cobra.Command{
	Use:   "quantize <in.mid> <out.mid>",
	Short: "Quantizes a MIDI file to a step grid",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		seq := maybeApplySustain(readSequenceOrDie(args[0]), quantizeSustain)

		var qs *model.Sequence
		var err error
		if quantizeStepsPerSecond > 0 {
			qs, err = processor.QuantizeAbsolute(seq, quantizeStepsPerSecond)
		} else {
			qs, err = processor.Quantize(seq, quantizeStepsPerQuarter)
		}
		cobraCheck(err)

		writeSequenceOrDie(qs, args[1])
		fmt.Printf("Quantized %v steps over %.2f seconds\n", qs.TotalQuantizedSteps, qs.TotalTime)
	},
}
