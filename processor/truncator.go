package processor

import (
	"math"

	"github.com/mirlib/noteseq/model"
	"github.com/mirlib/noteseq/sequtil"
)

// TruncateAtStep shortens a relative-quantized sequence to end at the given
// step. Notes crossing the cut are clipped to end exactly there; notes
// starting at or after it are dropped.
func TruncateAtStep(s *model.Sequence, step int) (*model.Sequence, error) {
	stepsPerSecond, err := sequtil.StepsPerSecond(s)
	if err != nil {
		return nil, err
	}
	if step < 0 {
		return nil, &model.NegativeTimeError{Detail: "truncation step is negative"}
	}

	ts := s.Clone()
	kept := ts.Notes[:0]
	for _, note := range ts.Notes {
		if note.QuantizedStartStep >= step {
			continue
		}
		if note.QuantizedEndStep > step {
			note.QuantizedEndStep = step
			note.EndTime = float64(step) / stepsPerSecond
		}
		kept = append(kept, note)
	}
	ts.Notes = kept

	if ts.TotalQuantizedSteps > step {
		ts.TotalQuantizedSteps = step
	}
	cutTime := float64(step) / stepsPerSecond
	if ts.TotalTime > cutTime {
		ts.TotalTime = cutTime
	}
	return ts, nil
}

// TruncateAtBar shortens a relative-quantized sequence to end at a bar
// boundary. The quantization resolution must divide a bar into a whole number
// of steps.
func TruncateAtBar(s *model.Sequence, bar int) (*model.Sequence, error) {
	stepsPerBar, err := sequtil.StepsPerBar(s)
	if err != nil {
		return nil, err
	}
	if stepsPerBar != math.Trunc(stepsPerBar) {
		return nil, &model.NonIntegerStepsPerBarError{
			StepsPerBar: stepsPerBar,
			Numerator:   s.TimeSignatures[0].Numerator,
			Denominator: s.TimeSignatures[0].Denominator,
		}
	}
	return TruncateAtStep(s, bar*int(stepsPerBar))
}
