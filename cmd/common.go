package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mirlib/noteseq/midiio"
	"github.com/mirlib/noteseq/model"
	"github.com/mirlib/noteseq/processor"
)

func readSequenceOrDie(path string) *model.Sequence {
	seq, err := midiio.ReadSequenceFile(path)
	cobraCheck(err)
	return seq
}

func writeSequenceOrDie(seq *model.Sequence, path string) {
	cobraCheck(midiio.WriteSequence(seq, path, -1))
}

// writeSequencesOrDie writes each sequence as <stem>-NNN.mid under dir.
func writeSequencesOrDie(seqs []*model.Sequence, dir, stem string) {
	cobraCheck(os.MkdirAll(dir, 0o777))
	for i, seq := range seqs {
		path := filepath.Join(dir, fmt.Sprintf("%s-%03d.mid", stem, i))
		writeSequenceOrDie(seq, path)
	}
	fmt.Printf("Wrote %v sequences to %v\n", len(seqs), dir)
}

func maybeApplySustain(seq *model.Sequence, apply bool) *model.Sequence {
	if !apply {
		return seq
	}
	out, err := processor.ApplySustain(seq)
	cobraCheck(err)
	return out
}

func cobraCheck(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
