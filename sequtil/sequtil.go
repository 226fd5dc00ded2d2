// Package sequtil provides helpers over quantized sequences: quantization
// status checks, bar and step arithmetic, and note bookkeeping shared by the
// processors and metrics.
package sequtil

import (
	"math"

	"github.com/mirlib/noteseq/constants"
	"github.com/mirlib/noteseq/model"
	"github.com/mirlib/noteseq/util"
)

// AssertIsQuantized returns a QuantizationStatusError unless s has been
// quantized by either scheme.
func AssertIsQuantized(s *model.Sequence) error {
	if !s.IsQuantized() {
		return &model.QuantizationStatusError{SequenceID: s.ID, Want: "quantized"}
	}
	return nil
}

// AssertIsRelativeQuantized returns a QuantizationStatusError unless s has
// been quantized relative to tempo.
func AssertIsRelativeQuantized(s *model.Sequence) error {
	if !s.IsRelativeQuantized() {
		return &model.QuantizationStatusError{SequenceID: s.ID, Want: "quantized relative to tempo"}
	}
	return nil
}

// AssertIsAbsoluteQuantized returns a QuantizationStatusError unless s has
// been quantized by absolute time.
func AssertIsAbsoluteQuantized(s *model.Sequence) error {
	if !s.IsAbsoluteQuantized() {
		return &model.QuantizationStatusError{SequenceID: s.ID, Want: "quantized by absolute time"}
	}
	return nil
}

// effectiveTimeSignature returns the single meter of a relative-quantized
// sequence, defaulting to 4/4 when none was declared.
func effectiveTimeSignature(s *model.Sequence) model.TimeSignature {
	if len(s.TimeSignatures) > 0 {
		return s.TimeSignatures[0]
	}
	return model.TimeSignature{Numerator: 4, Denominator: 4}
}

// effectiveQPM returns the single tempo of a relative-quantized sequence,
// defaulting to 120 QPM when none was declared.
func effectiveQPM(s *model.Sequence) float64 {
	if len(s.Tempos) > 0 {
		return s.Tempos[0].QPM
	}
	return constants.DefaultQuartersPerMinute
}

// QuartersPerBeat computes the quarter notes per beat of a relative-quantized
// sequence.
func QuartersPerBeat(s *model.Sequence) (float64, error) {
	if err := AssertIsRelativeQuantized(s); err != nil {
		return 0, err
	}
	// A relative-quantized sequence has exactly one time signature, so the
	// value of a single beat is given by its denominator.
	return 4.0 / float64(effectiveTimeSignature(s).Denominator), nil
}

// QuartersPerBar computes the quarter notes per bar of a relative-quantized
// sequence.
func QuartersPerBar(s *model.Sequence) (float64, error) {
	quartersPerBeat, err := QuartersPerBeat(s)
	if err != nil {
		return 0, err
	}
	return quartersPerBeat * float64(effectiveTimeSignature(s).Numerator), nil
}

// StepsPerBar computes the quantized steps per bar of a relative-quantized
// sequence. The result may be non-integral for irregular meters.
func StepsPerBar(s *model.Sequence) (float64, error) {
	quartersPerBar, err := QuartersPerBar(s)
	if err != nil {
		return 0, err
	}
	return float64(s.QuantizationInfo.StepsPerQuarter) * quartersPerBar, nil
}

// StepsPerSecond computes the quantized steps per second of a
// relative-quantized sequence.
func StepsPerSecond(s *model.Sequence) (float64, error) {
	if err := AssertIsRelativeQuantized(s); err != nil {
		return 0, err
	}
	return StepsPerQuarterToStepsPerSecond(s.QuantizationInfo.StepsPerQuarter, effectiveQPM(s)), nil
}

// StepsPerQuarterToStepsPerSecond converts a steps-per-quarter resolution to
// steps per second at the given tempo.
func StepsPerQuarterToStepsPerSecond(stepsPerQuarter int, qpm float64) float64 {
	return float64(stepsPerQuarter) * qpm / 60.0
}

// StepsPerSecondToStepsPerQuarter converts a steps-per-second resolution to
// steps per quarter at the given tempo.
func StepsPerSecondToStepsPerQuarter(stepsPerSecond, qpm float64) float64 {
	return stepsPerSecond * 60.0 / qpm
}

// Bars computes the total number of bars in a relative-quantized sequence,
// rounded up.
func Bars(s *model.Sequence) (int, error) {
	stepsPerBar, err := StepsPerBar(s)
	if err != nil {
		return 0, err
	}
	return int(math.Ceil(float64(s.TotalQuantizedSteps) / stepsPerBar)), nil
}

// BarsLength computes the length in seconds of nBars bars of a
// relative-quantized sequence.
func BarsLength(s *model.Sequence, nBars int) (float64, error) {
	stepsPerBar, err := StepsPerBar(s)
	if err != nil {
		return 0, err
	}
	stepsPerSecond, err := StepsPerSecond(s)
	if err != nil {
		return 0, err
	}
	return stepsPerBar * float64(nBars) / stepsPerSecond, nil
}

// PitchHistogram counts note occurrences per pitch class, C at index 0
// through B at index 11.
func PitchHistogram(s *model.Sequence) [constants.NotesPerOctave]int {
	var histogram [constants.NotesPerOctave]int
	for i := range s.Notes {
		histogram[int(s.Notes[i].Pitch)%constants.NotesPerOctave]++
	}
	return histogram
}

// CountUniquePitchClasses counts the distinct pitch classes present.
func CountUniquePitchClasses(s *model.Sequence) int {
	histogram := PitchHistogram(s)
	count := 0
	for _, n := range histogram {
		if n > 0 {
			count++
		}
	}
	return count
}

// CountOnsets counts distinct note onsets, merging starts that coincide
// within float tolerance.
func CountOnsets(s *model.Sequence) int {
	var onsets []float64
	for i := range s.Notes {
		seen := false
		for _, t := range onsets {
			if util.FloatEqual(s.Notes[i].StartTime, t) {
				seen = true
				break
			}
		}
		if !seen {
			onsets = append(onsets, s.Notes[i].StartTime)
		}
	}
	return len(onsets)
}

// PitchList returns all pitches in the sequence; with unique set, each pitch
// appears once.
func PitchList(s *model.Sequence, unique bool) []int {
	if !unique {
		pitches := make([]int, 0, len(s.Notes))
		for i := range s.Notes {
			pitches = append(pitches, int(s.Notes[i].Pitch))
		}
		return pitches
	}
	seen := make(map[int]bool)
	var pitches []int
	for i := range s.Notes {
		p := int(s.Notes[i].Pitch)
		if !seen[p] {
			seen[p] = true
			pitches = append(pitches, p)
		}
	}
	return pitches
}

// VelocityList returns all note velocities; with normalize set they are
// scaled by the maximum MIDI velocity.
func VelocityList(s *model.Sequence, normalize bool) []float64 {
	factor := 1.0
	if normalize {
		factor = constants.MaxMIDIVelocity
	}
	velocities := make([]float64, 0, len(s.Notes))
	for i := range s.Notes {
		velocities = append(velocities, float64(s.Notes[i].Velocity)/factor)
	}
	return velocities
}
