package processor

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/mirlib/noteseq/model"
	"github.com/mirlib/noteseq/sequtil"
)

// ExtractNGrams extracts every n-bar window of a relative-quantized
// sequence, hopping one bar at a time. The final partial window is dropped.
func ExtractNGrams(s *model.Sequence, nBars int) ([]*model.Sequence, error) {
	if nBars <= 0 {
		return nil, &model.IntervalOutOfRangeError{Detail: "n-gram length must be positive"}
	}
	return SliceSequenceInBars(s, nBars, 1, SliceOptions{})
}

// ExtractRepetitions extracts every bar whose content recurs at least
// minRepetitions times in a relative-quantized sequence. Bars match when
// they hold the same pitches at the same bar-relative steps. Results are
// ordered by time.
func ExtractRepetitions(s *model.Sequence, minRepetitions int) ([]*model.Sequence, error) {
	if minRepetitions < 2 {
		return nil, &model.IntervalOutOfRangeError{Detail: "repetition count must be at least 2"}
	}
	stepsPerBarFloat, err := sequtil.StepsPerBar(s)
	if err != nil {
		return nil, err
	}
	if stepsPerBarFloat != math.Trunc(stepsPerBarFloat) {
		return nil, &model.NonIntegerStepsPerBarError{
			StepsPerBar: stepsPerBarFloat,
			Numerator:   s.TimeSignatures[0].Numerator,
			Denominator: s.TimeSignatures[0].Denominator,
		}
	}
	stepsPerBar := int(stepsPerBarFloat)
	bars, err := sequtil.Bars(s)
	if err != nil {
		return nil, err
	}
	barLength, err := sequtil.BarsLength(s, 1)
	if err != nil {
		return nil, err
	}

	prints := make([]string, bars)
	for bar := 0; bar < bars; bar++ {
		prints[bar] = barFingerprint(s, bar*stepsPerBar, (bar+1)*stepsPerBar)
	}
	occurrences := make(map[string]int)
	for _, p := range prints {
		occurrences[p]++
	}

	var intervals []Interval
	for bar := 0; bar < bars; bar++ {
		if prints[bar] == "" || occurrences[prints[bar]] < minRepetitions {
			continue
		}
		end := float64(bar+1) * barLength
		if end > s.TotalTime {
			end = s.TotalTime
		}
		intervals = append(intervals, Interval{Start: float64(bar) * barLength, End: end})
	}
	if len(intervals) == 0 {
		return nil, nil
	}
	return ExtractSubsequences(s, intervals)
}

// barFingerprint renders the (step, pitch) onsets of [startStep, endStep)
// relative to the bar start. An empty bar yields "".
func barFingerprint(s *model.Sequence, startStep, endStep int) string {
	type onset struct {
		step  int
		pitch uint8
	}
	var onsets []onset
	for i := range s.Notes {
		note := &s.Notes[i]
		if note.QuantizedStartStep >= startStep && note.QuantizedStartStep < endStep {
			onsets = append(onsets, onset{step: note.QuantizedStartStep - startStep, pitch: note.Pitch})
		}
	}
	sort.Slice(onsets, func(i, j int) bool {
		if onsets[i].step != onsets[j].step {
			return onsets[i].step < onsets[j].step
		}
		return onsets[i].pitch < onsets[j].pitch
	})
	var b strings.Builder
	for _, o := range onsets {
		fmt.Fprintf(&b, "%d:%d;", o.step, o.pitch)
	}
	return b.String()
}
