package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mirlib/noteseq/constants"
	"github.com/mirlib/noteseq/dataset"
	"github.com/mirlib/noteseq/db"
	"github.com/mirlib/noteseq/metrics"
	"github.com/mirlib/noteseq/midiio"
	"github.com/mirlib/noteseq/processor"
	"github.com/mirlib/noteseq/representation"
)

var (
	inspectMetadata bool
	inspectTokens   bool
)

func init() {
	inspectCmd.Flags().BoolVar(&inspectMetadata, "metadata", false, "look up catalog metadata for the file")
	inspectCmd.Flags().BoolVar(&inspectTokens, "tokens", false, "print the per-step pitch token vector")
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.mid | chunk.dat>",
	Short: "Prints a summary of a MIDI file or a dataset chunk",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if strings.HasSuffix(args[0], ".dat") {
			inspectChunk(args[0])
			return
		}
		inspectMidi(args[0])
	},
}

func inspectMidi(path string) {
	seq, err := midiio.ReadSequenceFile(path)
	cobraCheck(err)

	lo, hi := metrics.PitchRange(seq)
	fmt.Printf("notes: %v\n", len(seq.Notes))
	fmt.Printf("total time: %.2f seconds\n", seq.TotalTime)
	fmt.Printf("tempos: %v\n", len(seq.Tempos))
	fmt.Printf("time signatures: %v\n", len(seq.TimeSignatures))
	fmt.Printf("control changes: %v\n", len(seq.ControlChanges))
	fmt.Printf("pitch range: %v-%v\n", lo, hi)
	fmt.Printf("note density: %.2f notes/second\n", metrics.NoteDensity(seq))

	if inspectTokens {
		quantized, err := processor.Quantize(seq, constants.DefaultStepsPerQuarter)
		cobraCheck(err)
		tokens, err := representation.PitchSequence(quantized)
		cobraCheck(err)
		fmt.Printf("tokens: %v\n", tokens)
	}

	if inspectMetadata {
		filename := filepath.Base(path)
		metadatas, err := db.GetMidiMetadatas([]string{filename})
		cobraCheck(err)
		if m, ok := metadatas[filename]; ok {
			fmt.Printf("catalog: %v - %v (%v, %v)\n", m.Artist, m.Title, m.Release, m.Year)
		} else {
			fmt.Println("catalog: no metadata found")
		}
	}
}

func inspectChunk(path string) {
	seqs, err := dataset.LoadChunk(filepath.Dir(path), filepath.Base(path))
	cobraCheck(err)

	fmt.Printf("sequences: %v\n", len(seqs))
	for _, seq := range seqs {
		fmt.Printf("%v: %v notes, %v steps, %.2f seconds\n",
			seq.ID, len(seq.Notes), seq.TotalQuantizedSteps, seq.TotalTime)
	}
}
