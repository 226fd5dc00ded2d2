package processor

import (
	"github.com/mirlib/noteseq/model"
	"github.com/mirlib/noteseq/sequtil"
	"github.com/mirlib/noteseq/util"
)

// SliceOptions configures fixed-window slicing. Size and Hop are in seconds
// (bars for the bar-based form); StartOffset shifts the first window.
type SliceOptions struct {
	Size        float64
	Hop         float64
	StartOffset float64

	// SkipSplittingInsideNote discards windows whose boundary falls strictly
	// inside a sounding note instead of cropping the note.
	SkipSplittingInsideNote bool

	// AllowCroppedSlices keeps a final window cropped to the sequence end
	// instead of discarding it.
	AllowCroppedSlices bool
}

// SliceSequence cuts s into fixed windows [t, t+Size) stepped by Hop and
// extracts each as an independent subsequence.
func SliceSequence(s *model.Sequence, opts SliceOptions) ([]*model.Sequence, error) {
	if opts.Size <= 0 || opts.Hop <= 0 {
		return nil, &model.IntervalOutOfRangeError{Detail: "slice size and hop must be positive"}
	}

	var intervals []Interval
	for t := opts.StartOffset; util.FloatLess(t, s.TotalTime); t += opts.Hop {
		end := t + opts.Size
		if util.FloatGreater(end, s.TotalTime) {
			if !opts.AllowCroppedSlices {
				break
			}
			end = s.TotalTime
		}
		if util.FloatGreaterOrEqual(t, end) {
			break
		}
		if opts.SkipSplittingInsideNote &&
			(splitsNote(s, t) || splitsNote(s, end)) {
			continue
		}
		intervals = append(intervals, Interval{Start: t, End: end})
	}
	if len(intervals) == 0 {
		return nil, nil
	}
	return ExtractSubsequences(s, intervals)
}

// SliceSequenceInBars slices a relative-quantized sequence with windows
// measured in bars rather than seconds.
func SliceSequenceInBars(s *model.Sequence, sizeBars, hopBars int, opts SliceOptions) ([]*model.Sequence, error) {
	barLength, err := sequtil.BarsLength(s, 1)
	if err != nil {
		return nil, err
	}
	opts.Size = barLength * float64(sizeBars)
	opts.Hop = barLength * float64(hopBars)
	return SliceSequence(s, opts)
}

// splitsNote reports whether time t falls strictly inside a sounding note.
func splitsNote(s *model.Sequence, t float64) bool {
	for i := range s.Notes {
		note := &s.Notes[i]
		if util.FloatGreater(t, note.StartTime) && util.FloatLess(t, note.EndTime) {
			return true
		}
	}
	return false
}
