// Package metrics computes read-only statistics over sequences: pitch
// spread, rhythmic complexity and dynamics. Step-based metrics require
// relative quantization and return the quantization error otherwise.
package metrics

import (
	"gonum.org/v1/gonum/stat"

	"github.com/mirlib/noteseq/model"
	"github.com/mirlib/noteseq/sequtil"
)

// PitchRange returns the lowest and highest pitch, zero-zero for an empty
// sequence.
func PitchRange(s *model.Sequence) (lo, hi uint8) {
	if len(s.Notes) == 0 {
		return 0, 0
	}
	lo, hi = s.Notes[0].Pitch, s.Notes[0].Pitch
	for i := range s.Notes {
		if p := s.Notes[i].Pitch; p < lo {
			lo = p
		} else if p > hi {
			hi = p
		}
	}
	return lo, hi
}

// MeanPitch returns the average pitch, 0 for an empty sequence.
func MeanPitch(s *model.Sequence) float64 {
	if len(s.Notes) == 0 {
		return 0
	}
	pitches := make([]float64, 0, len(s.Notes))
	for i := range s.Notes {
		pitches = append(pitches, float64(s.Notes[i].Pitch))
	}
	return stat.Mean(pitches, nil)
}

// PitchVariety returns the distinct pitch class count over the total note
// count, 0 for an empty sequence.
func PitchVariety(s *model.Sequence) float64 {
	if len(s.Notes) == 0 {
		return 0
	}
	return float64(sequtil.CountUniquePitchClasses(s)) / float64(len(s.Notes))
}

// NoteDensity returns notes per second, 0 for a zero-length sequence.
func NoteDensity(s *model.Sequence) float64 {
	if s.TotalTime == 0 {
		return 0
	}
	return float64(len(s.Notes)) / s.TotalTime
}

// VelocityStats returns the mean and standard deviation of note velocities.
func VelocityStats(s *model.Sequence) (mean, stddev float64) {
	if len(s.Notes) == 0 {
		return 0, 0
	}
	velocities := sequtil.VelocityList(s, false)
	return stat.Mean(velocities, nil), stat.StdDev(velocities, nil)
}

// Syncopation computes a Toussaint-style metrical weight deficit over the
// note onsets of a relative-quantized sequence: onsets on weak grid
// positions raise the score. The result is normalized by onset count and is
// 0 for an empty sequence.
func Syncopation(s *model.Sequence) (float64, error) {
	stepsPerBar, err := sequtil.StepsPerBar(s)
	if err != nil {
		return 0, err
	}
	spb := int(stepsPerBar)
	if spb <= 0 || len(s.Notes) == 0 {
		return 0, nil
	}

	weights := metricalWeights(spb)
	max := 0
	for _, w := range weights {
		if w > max {
			max = w
		}
	}

	total := 0
	for i := range s.Notes {
		step := s.Notes[i].QuantizedStartStep % spb
		total += max - weights[step]
	}
	return float64(total) / float64(len(s.Notes)), nil
}

// metricalWeights assigns each bar position the number of metrical levels it
// belongs to: the downbeat is strongest, positions reached only at the finest
// subdivision are weakest.
func metricalWeights(stepsPerBar int) []int {
	weights := make([]int, stepsPerBar)
	for level := stepsPerBar; level >= 1; level /= 2 {
		for step := 0; step < stepsPerBar; step += level {
			weights[step]++
		}
		if level%2 != 0 {
			break
		}
	}
	return weights
}
