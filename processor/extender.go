package processor

import (
	"math"

	"github.com/mirlib/noteseq/model"
	"github.com/mirlib/noteseq/sequtil"
)

// ExtendWithSilence pads a relative-quantized sequence in place with a
// zero-velocity note so it ends exactly on its last bar boundary. Sequences
// already ending on a bar boundary are unchanged.
func ExtendWithSilence(s *model.Sequence) error {
	stepsPerBar, err := sequtil.StepsPerBar(s)
	if err != nil {
		return err
	}
	stepsPerSecond, err := sequtil.StepsPerSecond(s)
	if err != nil {
		return err
	}

	barEndStep := int(math.Ceil(float64(s.TotalQuantizedSteps)/stepsPerBar) * stepsPerBar)
	if barEndStep <= s.TotalQuantizedSteps {
		return nil
	}
	barEndTime := float64(barEndStep) / stepsPerSecond

	// Velocity 0 is inaudible; the note only stretches the grid.
	s.Notes = append(s.Notes, model.Note{
		Pitch:              60,
		Velocity:           0,
		StartTime:          s.TotalTime,
		EndTime:            barEndTime,
		QuantizedStartStep: s.TotalQuantizedSteps,
		QuantizedEndStep:   barEndStep,
	})
	s.TotalQuantizedSteps = barEndStep
	s.TotalTime = barEndTime
	return nil
}
