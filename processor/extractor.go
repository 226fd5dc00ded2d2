package processor

import (
	"sort"

	"github.com/mirlib/noteseq/constants"
	"github.com/mirlib/noteseq/model"
	"github.com/mirlib/noteseq/util"
)

// Interval is a half-open time range [Start, End) in absolute seconds of a
// source sequence.
type Interval struct {
	Start float64
	End   float64
}

// pedalKey identifies a pedal state line. Carried-over pedal events are
// tracked per instrument and control number, not globally.
type pedalKey struct {
	instrument    int
	controlNumber uint8
}

// ExtractSubsequences carves s into one subsequence per interval. Intervals
// are absolute seconds, may overlap, and must lie within [0, s.TotalTime].
//
// Notes belong to the interval their start time falls in, half-open, and are
// clamped to the interval end. Stateful events (meter, key, tempo, chord
// symbols) inside an interval are kept; when an interval has none, the value
// in effect at its start is synthesized at relative time 0. Beat annotations
// are stateless and never carried over. Control changes on the
// preserveControlNumbers allow-list (default sustain, sostenuto, una corda)
// are carried over per (instrument, control number).
//
// Quantized sources are re-quantized with the same scheme. Subsequences that
// end up with no notes are dropped.
func ExtractSubsequences(s *model.Sequence, intervals []Interval, preserveControlNumbers ...[]uint8) ([]*model.Sequence, error) {
	if len(intervals) == 0 {
		return nil, &model.IntervalOutOfRangeError{Detail: "no intervals given"}
	}
	preserved := constants.DefaultPreserveControlNumbers
	if len(preserveControlNumbers) > 0 {
		preserved = preserveControlNumbers[0]
	}

	for _, iv := range intervals {
		if iv.Start < 0 || util.FloatGreaterOrEqual(iv.Start, iv.End) ||
			util.FloatGreater(iv.End, s.TotalTime) {
			return nil, &model.IntervalOutOfRangeError{
				Start: iv.Start, End: iv.End, TotalTime: s.TotalTime,
			}
		}
	}

	subs := make([]*model.Sequence, len(intervals))
	for i := range intervals {
		subs[i] = s.CloneEmpty()
		subs[i].SubsequenceInfo = model.SubsequenceInfo{StartTimeOffset: intervals[i].Start}
	}

	for i, iv := range intervals {
		sub := subs[i]
		extractNotes(s, sub, iv)
		extractTimeSignatures(s, sub, iv)
		extractKeySignatures(s, sub, iv)
		extractTempos(s, sub, iv)
		extractAnnotations(s, sub, iv)
		extractControlChanges(s, sub, iv, preserved)
		sub.SubsequenceInfo.EndTimeOffset = s.TotalTime - iv.Start - sub.TotalTime
	}

	if s.IsQuantized() {
		for i, sub := range subs {
			var qsub *model.Sequence
			var err error
			if s.IsRelativeQuantized() {
				qsub, err = Quantize(sub, s.QuantizationInfo.StepsPerQuarter)
			} else {
				qsub, err = QuantizeAbsolute(sub, s.QuantizationInfo.StepsPerSecond)
			}
			if err != nil {
				return nil, err
			}
			subs[i] = qsub
		}
	}

	kept := subs[:0]
	for _, sub := range subs {
		if len(sub.Notes) > 0 {
			kept = append(kept, sub)
		}
	}
	return kept, nil
}

// ExtractSubsequence extracts the single interval [start, end). Unlike the
// batch form, an empty result is an error rather than an empty list.
func ExtractSubsequence(s *model.Sequence, start, end float64, preserveControlNumbers ...[]uint8) (*model.Sequence, error) {
	subs, err := ExtractSubsequences(s, []Interval{{Start: start, End: end}}, preserveControlNumbers...)
	if err != nil {
		return nil, err
	}
	if len(subs) == 0 {
		return nil, &model.IntervalOutOfRangeError{
			Start: start, End: end, TotalTime: s.TotalTime,
			Detail: "interval contains no notes",
		}
	}
	return subs[0], nil
}

func inInterval(t float64, iv Interval) bool {
	return util.FloatGreaterOrEqual(t, iv.Start) && util.FloatLess(t, iv.End)
}

func extractNotes(s, sub *model.Sequence, iv Interval) {
	for i := range s.Notes {
		note := s.Notes[i]
		if !inInterval(note.StartTime, iv) {
			continue
		}
		note.StartTime -= iv.Start
		note.EndTime -= iv.Start
		length := iv.End - iv.Start
		if note.EndTime > length {
			note.EndTime = length
		}
		sub.Notes = append(sub.Notes, note)
		if note.EndTime > sub.TotalTime {
			sub.TotalTime = note.EndTime
		}
	}
}

func extractTimeSignatures(s, sub *model.Sequence, iv Interval) {
	var carried *model.TimeSignature
	for i := range s.TimeSignatures {
		ts := s.TimeSignatures[i]
		if inInterval(ts.Time, iv) {
			ts.Time -= iv.Start
			sub.TimeSignatures = append(sub.TimeSignatures, ts)
		} else if util.FloatLessOrEqual(ts.Time, iv.Start) &&
			(carried == nil || ts.Time > carried.Time) {
			c := ts
			carried = &c
		}
	}
	if len(sub.TimeSignatures) == 0 && carried != nil {
		carried.Time = 0
		sub.TimeSignatures = append(sub.TimeSignatures, *carried)
	}
	sortByTime(sub.TimeSignatures, func(ts model.TimeSignature) float64 { return ts.Time })
}

func extractKeySignatures(s, sub *model.Sequence, iv Interval) {
	var carried *model.KeySignature
	for i := range s.KeySignatures {
		ks := s.KeySignatures[i]
		if inInterval(ks.Time, iv) {
			ks.Time -= iv.Start
			sub.KeySignatures = append(sub.KeySignatures, ks)
		} else if util.FloatLessOrEqual(ks.Time, iv.Start) &&
			(carried == nil || ks.Time > carried.Time) {
			c := ks
			carried = &c
		}
	}
	if len(sub.KeySignatures) == 0 && carried != nil {
		carried.Time = 0
		sub.KeySignatures = append(sub.KeySignatures, *carried)
	}
	sortByTime(sub.KeySignatures, func(ks model.KeySignature) float64 { return ks.Time })
}

func extractTempos(s, sub *model.Sequence, iv Interval) {
	var carried *model.Tempo
	for i := range s.Tempos {
		t := s.Tempos[i]
		if inInterval(t.Time, iv) {
			t.Time -= iv.Start
			sub.Tempos = append(sub.Tempos, t)
		} else if util.FloatLessOrEqual(t.Time, iv.Start) &&
			(carried == nil || t.Time > carried.Time) {
			c := t
			carried = &c
		}
	}
	if len(sub.Tempos) == 0 && carried != nil {
		carried.Time = 0
		sub.Tempos = append(sub.Tempos, *carried)
	}
	sortByTime(sub.Tempos, func(t model.Tempo) float64 { return t.Time })
}

// extractAnnotations handles both annotation kinds: chord symbols are
// stateful and carried over, beat markers are point events.
func extractAnnotations(s, sub *model.Sequence, iv Interval) {
	var carriedChord *model.TextAnnotation
	chordInside := false
	for i := range s.TextAnnotations {
		ta := s.TextAnnotations[i]
		switch ta.AnnotationType {
		case model.AnnotationChordSymbol:
			if inInterval(ta.Time, iv) {
				ta.Time -= iv.Start
				sub.TextAnnotations = append(sub.TextAnnotations, ta)
				chordInside = true
			} else if util.FloatLessOrEqual(ta.Time, iv.Start) &&
				(carriedChord == nil || ta.Time > carriedChord.Time) {
				c := ta
				carriedChord = &c
			}
		default:
			if inInterval(ta.Time, iv) {
				ta.Time -= iv.Start
				sub.TextAnnotations = append(sub.TextAnnotations, ta)
			}
		}
	}
	if !chordInside && carriedChord != nil {
		carriedChord.Time = 0
		sub.TextAnnotations = append(sub.TextAnnotations, *carriedChord)
	}
	sortByTime(sub.TextAnnotations, func(ta model.TextAnnotation) float64 { return ta.Time })
}

func extractControlChanges(s, sub *model.Sequence, iv Interval, preserved []uint8) {
	preservedSet := make(map[uint8]bool, len(preserved))
	for _, n := range preserved {
		preservedSet[n] = true
	}

	carried := make(map[pedalKey]model.ControlChange)
	inside := make(map[pedalKey]bool)
	for i := range s.ControlChanges {
		cc := s.ControlChanges[i]
		if !preservedSet[cc.ControlNumber] {
			continue
		}
		key := pedalKey{instrument: cc.Instrument, controlNumber: cc.ControlNumber}
		if inInterval(cc.Time, iv) {
			cc.Time -= iv.Start
			sub.ControlChanges = append(sub.ControlChanges, cc)
			inside[key] = true
		} else if util.FloatLessOrEqual(cc.Time, iv.Start) {
			if prev, ok := carried[key]; !ok || cc.Time > prev.Time {
				carried[key] = cc
			}
		}
	}

	// Emit the carried pedal states in a deterministic order.
	keys := make([]pedalKey, 0, len(carried))
	for key := range carried {
		if !inside[key] {
			keys = append(keys, key)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].instrument != keys[j].instrument {
			return keys[i].instrument < keys[j].instrument
		}
		return keys[i].controlNumber < keys[j].controlNumber
	})
	for _, key := range keys {
		cc := carried[key]
		cc.Time = 0
		sub.ControlChanges = append(sub.ControlChanges, cc)
	}

	sortByTime(sub.ControlChanges, func(cc model.ControlChange) float64 { return cc.Time })
}

func sortByTime[E any](events []E, timeOf func(E) float64) {
	sort.SliceStable(events, func(i, j int) bool { return timeOf(events[i]) < timeOf(events[j]) })
}
