// Package processor holds the transformations over model.Sequence records:
// quantization, subsequence extraction and the slicing/splitting/truncation
// operations built on it, melody extraction, sustain-pedal resolution, and a
// few smaller rewrites (stretch, transpose, extend). Every exported function
// leaves its input untouched unless its doc says otherwise.
package processor

import (
	"fmt"
	"sort"

	"github.com/mirlib/noteseq/constants"
	"github.com/mirlib/noteseq/model"
	"github.com/mirlib/noteseq/sequtil"
)

// QuantizeToStep snaps seconds to a step at the given resolution. Fractional
// step offsets of at most 1-cutoff round down; larger offsets round up to the
// next step (see constants.QuantizeCutoff).
func QuantizeToStep(seconds, stepsPerSecond float64, cutoff ...float64) int {
	quantizeCutoff := constants.QuantizeCutoff
	if len(cutoff) > 0 {
		quantizeCutoff = cutoff[0]
	}
	return int(seconds*stepsPerSecond + (1 - quantizeCutoff))
}

// Quantize returns a copy of s quantized relative to tempo, with
// steps-per-quarter resolution. The sequence must hold at most one effective
// time signature and tempo; the implicit 4/4 and 120 QPM at time zero count
// as values, so a differing explicit value at a later time is a change and a
// hard error.
func Quantize(s *model.Sequence, stepsPerQuarter int) (*model.Sequence, error) {
	qs := s.Clone()
	qs.QuantizationInfo = model.QuantizationInfo{StepsPerQuarter: stepsPerQuarter}

	if len(qs.TimeSignatures) > 0 {
		sorted := append([]model.TimeSignature(nil), qs.TimeSignatures...)
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time < sorted[j].Time })
		first := sorted[0]
		// There is an implicit 4/4 time signature at time 0, so a first
		// declaration elsewhere that is not 4/4 is an implicit change.
		if first.Time != 0 && !(first.Numerator == 4 && first.Denominator == 4) {
			return nil, &model.MultipleTimeSignatureError{
				FromNumerator: 4, FromDenominator: 4,
				ToNumerator: first.Numerator, ToDenominator: first.Denominator,
				Time: first.Time,
			}
		}
		for _, ts := range sorted[1:] {
			if ts.Numerator != first.Numerator || ts.Denominator != first.Denominator {
				return nil, &model.MultipleTimeSignatureError{
					FromNumerator: first.Numerator, FromDenominator: first.Denominator,
					ToNumerator: ts.Numerator, ToDenominator: ts.Denominator,
					Time: ts.Time,
				}
			}
		}
		// Make it explicit that there is one time signature starting at 0.
		first.Time = 0
		qs.TimeSignatures = []model.TimeSignature{first}
	} else {
		qs.TimeSignatures = []model.TimeSignature{{Numerator: 4, Denominator: 4}}
	}

	ts := qs.TimeSignatures[0]
	if !isPowerOfTwo(ts.Denominator) {
		return nil, &model.BadTimeSignatureError{
			Numerator: ts.Numerator, Denominator: ts.Denominator,
			Reason: "denominator is not a power of 2",
		}
	}
	if ts.Numerator == 0 {
		return nil, &model.BadTimeSignatureError{
			Numerator: ts.Numerator, Denominator: ts.Denominator,
			Reason: "numerator is 0",
		}
	}

	if len(qs.Tempos) > 0 {
		sorted := append([]model.Tempo(nil), qs.Tempos...)
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time < sorted[j].Time })
		first := sorted[0]
		// Same deal as the meter: 120 QPM is implicit at time 0.
		if first.Time != 0 && first.QPM != constants.DefaultQuartersPerMinute {
			return nil, &model.MultipleTempoError{
				FromQPM: constants.DefaultQuartersPerMinute, ToQPM: first.QPM, Time: first.Time,
			}
		}
		for _, t := range sorted[1:] {
			if t.QPM != first.QPM {
				return nil, &model.MultipleTempoError{FromQPM: first.QPM, ToQPM: t.QPM, Time: t.Time}
			}
		}
		first.Time = 0
		qs.Tempos = []model.Tempo{first}
	} else {
		qs.Tempos = []model.Tempo{{QPM: constants.DefaultQuartersPerMinute}}
	}

	stepsPerSecond := sequtil.StepsPerQuarterToStepsPerSecond(stepsPerQuarter, qs.Tempos[0].QPM)
	qs.TotalQuantizedSteps = QuantizeToStep(qs.TotalTime, stepsPerSecond)
	if err := quantizeEvents(qs, stepsPerSecond); err != nil {
		return nil, err
	}
	return qs, nil
}

// QuantizeAbsolute returns a copy of s quantized by absolute time at the
// given steps-per-second resolution. No meter or tempo requirements apply.
func QuantizeAbsolute(s *model.Sequence, stepsPerSecond float64) (*model.Sequence, error) {
	qs := s.Clone()
	qs.QuantizationInfo = model.QuantizationInfo{StepsPerSecond: stepsPerSecond}

	qs.TotalQuantizedSteps = QuantizeToStep(qs.TotalTime, stepsPerSecond)
	if err := quantizeEvents(qs, stepsPerSecond); err != nil {
		return nil, err
	}
	return qs, nil
}

// quantizeEvents snaps note, control-change and annotation times in place and
// re-derives their seconds from the snapped steps so times sit exactly on the
// grid.
func quantizeEvents(s *model.Sequence, stepsPerSecond float64) error {
	for i := range s.Notes {
		note := &s.Notes[i]
		note.QuantizedStartStep = QuantizeToStep(note.StartTime, stepsPerSecond)
		note.QuantizedEndStep = QuantizeToStep(note.EndTime, stepsPerSecond)
		if note.QuantizedEndStep == note.QuantizedStartStep {
			note.QuantizedEndStep++
		}

		if note.QuantizedStartStep < 0 || note.QuantizedEndStep < 0 {
			return &model.NegativeTimeError{
				Detail: fmt.Sprintf("note start_step = %d, end_step = %d",
					note.QuantizedStartStep, note.QuantizedEndStep),
			}
		}

		note.StartTime = float64(note.QuantizedStartStep) / stepsPerSecond
		note.EndTime = float64(note.QuantizedEndStep) / stepsPerSecond

		if note.QuantizedEndStep > s.TotalQuantizedSteps {
			s.TotalQuantizedSteps = note.QuantizedEndStep
		}
	}

	for i := range s.ControlChanges {
		cc := &s.ControlChanges[i]
		cc.QuantizedStep = QuantizeToStep(cc.Time, stepsPerSecond)
		if cc.QuantizedStep < 0 {
			return &model.NegativeTimeError{
				Detail: fmt.Sprintf("control change step = %d", cc.QuantizedStep),
			}
		}
		cc.Time = float64(cc.QuantizedStep) / stepsPerSecond
	}

	for i := range s.TextAnnotations {
		ta := &s.TextAnnotations[i]
		ta.QuantizedStep = QuantizeToStep(ta.Time, stepsPerSecond)
		if ta.QuantizedStep < 0 {
			return &model.NegativeTimeError{
				Detail: fmt.Sprintf("text annotation step = %d", ta.QuantizedStep),
			}
		}
		ta.Time = float64(ta.QuantizedStep) / stepsPerSecond
	}

	return nil
}

func isPowerOfTwo(x int) bool {
	return x > 0 && x&(x-1) == 0
}
