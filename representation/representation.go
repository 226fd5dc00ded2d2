// Package representation renders quantized sequences as fixed training
// vectors.
package representation

import (
	"github.com/mirlib/noteseq/model"
	"github.com/mirlib/noteseq/sequtil"
)

// Special tokens of a pitch sequence.
const (
	// HoldToken marks a step where the previous pitch keeps sounding.
	HoldToken = 128
	// SilenceToken marks a step with nothing sounding.
	SilenceToken = 129
)

// PitchSequence renders a quantized monophonic sequence as one token per
// step: the pitch on its onset step, HoldToken while it sounds, SilenceToken
// elsewhere. Overlapping notes are resolved in favor of the later onset.
func PitchSequence(s *model.Sequence) ([]int, error) {
	if err := sequtil.AssertIsQuantized(s); err != nil {
		return nil, err
	}

	tokens := make([]int, s.TotalQuantizedSteps)
	for i := range tokens {
		tokens[i] = SilenceToken
	}
	for i := range s.Notes {
		note := &s.Notes[i]
		if note.QuantizedStartStep >= len(tokens) {
			continue
		}
		tokens[note.QuantizedStartStep] = int(note.Pitch)
		for step := note.QuantizedStartStep + 1; step < note.QuantizedEndStep && step < len(tokens); step++ {
			if tokens[step] == SilenceToken {
				tokens[step] = HoldToken
			}
		}
	}
	return tokens, nil
}
