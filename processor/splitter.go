package processor

import (
	"sort"

	"github.com/mirlib/noteseq/constants"
	"github.com/mirlib/noteseq/model"
	"github.com/mirlib/noteseq/sequtil"
	"github.com/mirlib/noteseq/util"
)

// SplitSequence cuts s at every multiple of hopSeconds and extracts the
// resulting segments. A cut that would land strictly inside a sounding note
// is skipped when skipSplittingInsideNote is set.
func SplitSequence(s *model.Sequence, hopSeconds float64, skipSplittingInsideNote bool) ([]*model.Sequence, error) {
	if hopSeconds <= 0 {
		return nil, &model.IntervalOutOfRangeError{Detail: "hop must be positive"}
	}
	var splitTimes []float64
	for t := hopSeconds; util.FloatLess(t, s.TotalTime); t += hopSeconds {
		splitTimes = append(splitTimes, t)
	}
	return SplitAtTimes(s, splitTimes, skipSplittingInsideNote)
}

// SplitSequenceInBars cuts a relative-quantized sequence every hopBars bars.
func SplitSequenceInBars(s *model.Sequence, hopBars int, skipSplittingInsideNote bool) ([]*model.Sequence, error) {
	hopSeconds, err := sequtil.BarsLength(s, hopBars)
	if err != nil {
		return nil, err
	}
	return SplitSequence(s, hopSeconds, skipSplittingInsideNote)
}

// SplitAtTimes cuts s at the given absolute times and extracts the segments
// between adjacent cuts, including the leading segment from 0 and the
// trailing segment to the sequence end. Cut times outside (0, TotalTime) or
// strictly inside a sounding note (when skipSplittingInsideNote is set) are
// ignored.
func SplitAtTimes(s *model.Sequence, splitTimes []float64, skipSplittingInsideNote bool) ([]*model.Sequence, error) {
	kept := splitTimes
	if skipSplittingInsideNote {
		kept = make([]float64, 0, len(splitTimes))
		for _, t := range splitTimes {
			if !splitsNote(s, t) {
				kept = append(kept, t)
			}
		}
	}
	intervals := boundariesToIntervals(s, kept)
	return ExtractSubsequences(s, intervals)
}

// SplitOnTimeChanges cuts s wherever the meter or the tempo changes. A cut
// that would land strictly inside a sounding note is skipped when
// skipSplittingInsideNote is set. The trailing segment after the last change
// is always produced.
func SplitOnTimeChanges(s *model.Sequence, skipSplittingInsideNote bool) ([]*model.Sequence, error) {
	var changeTimes []float64
	prevTS := model.TimeSignature{Numerator: 4, Denominator: 4}
	for _, ts := range s.TimeSignatures {
		if ts.Numerator != prevTS.Numerator || ts.Denominator != prevTS.Denominator {
			changeTimes = append(changeTimes, ts.Time)
			prevTS = ts
		}
	}
	prevQPM := constants.DefaultQuartersPerMinute
	for _, t := range s.Tempos {
		if !util.FloatEqual(t.QPM, prevQPM) {
			changeTimes = append(changeTimes, t.Time)
			prevQPM = t.QPM
		}
	}

	return SplitAtTimes(s, changeTimes, skipSplittingInsideNote)
}

// SplitOnSilence cuts s wherever the gap between a note end and the next
// note start is at least gapSeconds. If no such gap exists the result is a
// single copy of s.
func SplitOnSilence(s *model.Sequence, gapSeconds float64) ([]*model.Sequence, error) {
	if gapSeconds <= 0 {
		return nil, &model.IntervalOutOfRangeError{Detail: "silence gap must be positive"}
	}

	notes := append([]model.Note(nil), s.Notes...)
	sort.SliceStable(notes, func(i, j int) bool {
		if notes[i].StartTime != notes[j].StartTime {
			return notes[i].StartTime < notes[j].StartTime
		}
		return notes[i].EndTime < notes[j].EndTime
	})

	var splitTimes []float64
	lastEnd := 0.0
	for i := range notes {
		if i > 0 && util.FloatGreaterOrEqual(notes[i].StartTime-lastEnd, gapSeconds) {
			splitTimes = append(splitTimes, notes[i].StartTime)
		}
		if notes[i].EndTime > lastEnd {
			lastEnd = notes[i].EndTime
		}
	}

	if len(splitTimes) == 0 {
		return []*model.Sequence{s.Clone()}, nil
	}
	return SplitAtTimes(s, splitTimes, false)
}

// boundariesToIntervals sorts and dedupes cut times, drops out-of-range ones
// and converts adjacent cuts to extraction intervals covering all of s.
func boundariesToIntervals(s *model.Sequence, splitTimes []float64) []Interval {
	times := []float64{0}
	for _, t := range splitTimes {
		if util.FloatGreater(t, 0) && util.FloatLess(t, s.TotalTime) {
			times = append(times, t)
		}
	}
	sort.Float64s(times)

	deduped := times[:1]
	for _, t := range times[1:] {
		if !util.FloatEqual(t, deduped[len(deduped)-1]) {
			deduped = append(deduped, t)
		}
	}

	var intervals []Interval
	for i, t := range deduped {
		end := s.TotalTime
		if i+1 < len(deduped) {
			end = deduped[i+1]
		}
		if util.FloatLess(t, end) {
			intervals = append(intervals, Interval{Start: t, End: end})
		}
	}
	return intervals
}
