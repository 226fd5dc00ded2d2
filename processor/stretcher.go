package processor

import (
	"github.com/mirlib/noteseq/model"
)

// Stretch scales every event time of an unquantized sequence by factor,
// slowing it down for factor > 1 and speeding it up for factor < 1. Tempos
// are divided by the factor so the musical content is unchanged. With
// inPlace set, s itself is modified and returned.
func Stretch(s *model.Sequence, factor float64, inPlace bool) (*model.Sequence, error) {
	if s.IsQuantized() {
		return nil, &model.QuantizationStatusError{SequenceID: s.ID, Want: "unquantized"}
	}
	if factor <= 0 {
		return nil, &model.NegativeTimeError{Detail: "stretch factor must be positive"}
	}

	ss := s
	if !inPlace {
		ss = s.Clone()
	}
	if factor == 1 {
		return ss, nil
	}

	for i := range ss.Notes {
		ss.Notes[i].StartTime *= factor
		ss.Notes[i].EndTime *= factor
	}
	for i := range ss.ControlChanges {
		ss.ControlChanges[i].Time *= factor
	}
	for i := range ss.PitchBends {
		ss.PitchBends[i].Time *= factor
	}
	for i := range ss.TextAnnotations {
		ss.TextAnnotations[i].Time *= factor
	}
	for i := range ss.TimeSignatures {
		ss.TimeSignatures[i].Time *= factor
	}
	for i := range ss.KeySignatures {
		ss.KeySignatures[i].Time *= factor
	}
	for i := range ss.Tempos {
		ss.Tempos[i].Time *= factor
		ss.Tempos[i].QPM /= factor
	}
	ss.TotalTime *= factor
	return ss, nil
}
