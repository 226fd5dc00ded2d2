package processor

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/mirlib/noteseq/constants"
	"github.com/mirlib/noteseq/model"
	"github.com/mirlib/noteseq/sequtil"
)

// PolyphonyPolicy decides what happens when two notes start on the same step
// during melody extraction.
type PolyphonyPolicy int

const (
	// PolyphonyPreferHighest keeps the highest-pitched of simultaneous notes.
	PolyphonyPreferHighest PolyphonyPolicy = iota
	// PolyphonyPreferLowest keeps the lowest-pitched of simultaneous notes.
	PolyphonyPreferLowest
	// PolyphonyReject aborts extraction with a PolyphonicMelodyError.
	PolyphonyReject
)

// MelodyOptions configures single-track melody extraction.
type MelodyOptions struct {
	Instrument      int
	SearchStartStep int

	// GapBars terminates the melody when at least this many bars of silence
	// follow the last accepted note.
	GapBars int

	MinPitch uint8
	MaxPitch uint8

	Policy      PolyphonyPolicy
	FilterDrums bool

	// ValidPrograms restricts extraction to notes of the listed programs;
	// nil accepts every program.
	ValidPrograms []int
}

// DefaultMelodyOptions returns the extraction settings used by the batch
// pipeline: full pitch range, melodic programs only, one-bar silence gap.
func DefaultMelodyOptions() MelodyOptions {
	return MelodyOptions{
		GapBars:       1,
		MinPitch:      constants.MinMIDIPitch,
		MaxPitch:      constants.MaxMIDIPitch,
		Policy:        PolyphonyPreferHighest,
		FilterDrums:   true,
		ValidPrograms: constants.MelodyPrograms,
	}
}

// ExtractMelody walks one instrument of a relative-quantized sequence and
// extracts a single monophonic line. Simultaneous note starts are resolved by
// the polyphony policy; a silence gap of GapBars bars ends the melody. The
// melody starts on the bar boundary at or before its first note, with
// control changes, pitch bends and chord symbols in its span copied over.
// Returns nil without error when no notes qualify.
func ExtractMelody(s *model.Sequence, opts MelodyOptions) (*model.Sequence, error) {
	melody, _, err := extractMelody(s, opts)
	return melody, err
}

// extractMelody additionally reports the melody's end step in source
// coordinates so batch extraction can advance its search pointer.
func extractMelody(s *model.Sequence, opts MelodyOptions) (*model.Sequence, int, error) {
	if err := sequtil.AssertIsRelativeQuantized(s); err != nil {
		return nil, 0, err
	}
	stepsPerBarFloat, err := sequtil.StepsPerBar(s)
	if err != nil {
		return nil, 0, err
	}
	if stepsPerBarFloat != math.Trunc(stepsPerBarFloat) {
		return nil, 0, &model.NonIntegerStepsPerBarError{
			StepsPerBar: stepsPerBarFloat,
			Numerator:   s.TimeSignatures[0].Numerator,
			Denominator: s.TimeSignatures[0].Denominator,
		}
	}
	stepsPerBar := int(stepsPerBarFloat)
	stepsPerSecond, err := sequtil.StepsPerSecond(s)
	if err != nil {
		return nil, 0, err
	}

	validProgram := func(int) bool { return true }
	if opts.ValidPrograms != nil {
		set := make(map[int]bool, len(opts.ValidPrograms))
		for _, p := range opts.ValidPrograms {
			set[p] = true
		}
		validProgram = func(p int) bool { return set[p] }
	}

	var candidates []model.Note
	for i := range s.Notes {
		note := s.Notes[i]
		// Velocity 0 is inaudible (e.g. silence padding).
		if note.Instrument != opts.Instrument ||
			(opts.FilterDrums && note.IsDrum) ||
			note.Velocity == 0 ||
			!validProgram(note.Program) ||
			note.Pitch < opts.MinPitch || note.Pitch > opts.MaxPitch ||
			note.QuantizedStartStep < opts.SearchStartStep {
			continue
		}
		candidates = append(candidates, note)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].QuantizedStartStep != candidates[j].QuantizedStartStep {
			return candidates[i].QuantizedStartStep < candidates[j].QuantizedStartStep
		}
		if opts.Policy == PolyphonyPreferLowest {
			return candidates[i].Pitch < candidates[j].Pitch
		}
		return candidates[i].Pitch > candidates[j].Pitch
	})

	gapSteps := opts.GapBars * stepsPerBar
	var melodyNotes []model.Note
	for _, note := range candidates {
		if len(melodyNotes) == 0 {
			melodyNotes = append(melodyNotes, note)
			continue
		}
		last := &melodyNotes[len(melodyNotes)-1]
		if note.QuantizedStartStep == last.QuantizedStartStep {
			if opts.Policy == PolyphonyReject {
				return nil, 0, &model.PolyphonicMelodyError{
					Detail: fmt.Sprintf("simultaneous notes at step %d", note.QuantizedStartStep),
				}
			}
			continue
		}
		if note.QuantizedStartStep < last.QuantizedStartStep {
			return nil, 0, &model.PolyphonicMelodyError{
				Detail: fmt.Sprintf("note at step %d out of order", note.QuantizedStartStep),
			}
		}
		if gapSteps > 0 && note.QuantizedStartStep-last.QuantizedEndStep >= gapSteps {
			break
		}
		if note.QuantizedStartStep < last.QuantizedEndStep {
			last.QuantizedEndStep = note.QuantizedStartStep
			last.EndTime = note.StartTime
		}
		melodyNotes = append(melodyNotes, note)
	}
	if len(melodyNotes) == 0 {
		return nil, 0, nil
	}

	startStep := melodyNotes[0].QuantizedStartStep
	startStep -= startStep % stepsPerBar
	startTime := float64(startStep) / stepsPerSecond
	endStep := melodyNotes[len(melodyNotes)-1].QuantizedEndStep
	endTime := melodyNotes[len(melodyNotes)-1].EndTime

	melody := s.CloneEmpty()
	melody.TimeSignatures = []model.TimeSignature{firstOr44(s)}
	melody.Tempos = []model.Tempo{{QPM: firstOrDefaultQPM(s)}}
	for i := len(s.KeySignatures) - 1; i >= 0; i-- {
		if s.KeySignatures[i].Time <= startTime {
			ks := s.KeySignatures[i]
			ks.Time = 0
			melody.KeySignatures = []model.KeySignature{ks}
			break
		}
	}

	for _, note := range melodyNotes {
		note.QuantizedStartStep -= startStep
		note.QuantizedEndStep -= startStep
		note.StartTime -= startTime
		note.EndTime -= startTime
		melody.Notes = append(melody.Notes, note)
	}
	for i := range s.ControlChanges {
		cc := s.ControlChanges[i]
		if cc.Instrument != opts.Instrument || cc.Time < startTime || cc.Time >= endTime {
			continue
		}
		cc.Time -= startTime
		cc.QuantizedStep -= startStep
		melody.ControlChanges = append(melody.ControlChanges, cc)
	}
	for i := range s.PitchBends {
		pb := s.PitchBends[i]
		if pb.Instrument != opts.Instrument || pb.Time < startTime || pb.Time >= endTime {
			continue
		}
		pb.Time -= startTime
		pb.QuantizedStep -= startStep
		melody.PitchBends = append(melody.PitchBends, pb)
	}
	for i := range s.TextAnnotations {
		ta := s.TextAnnotations[i]
		if ta.AnnotationType != model.AnnotationChordSymbol ||
			ta.Time < startTime || ta.Time >= endTime {
			continue
		}
		ta.Time -= startTime
		ta.QuantizedStep -= startStep
		melody.TextAnnotations = append(melody.TextAnnotations, ta)
	}

	melody.TotalQuantizedSteps = endStep - startStep
	melody.TotalTime = endTime - startTime
	return melody, endStep, nil
}

// MelodiesOptions configures batch melody extraction over every instrument.
type MelodiesOptions struct {
	MelodyOptions

	// MinBars discards melodies shorter than this many bars.
	MinBars int
	// MaxBars truncates melodies longer than this many bars; 0 disables.
	MaxBars int
	// MinUniquePitches discards melodies with fewer distinct pitch classes.
	MinUniquePitches int
}

// DefaultMelodiesOptions returns the batch settings of the dataset pipeline.
func DefaultMelodiesOptions() MelodiesOptions {
	return MelodiesOptions{
		MelodyOptions:    DefaultMelodyOptions(),
		MinBars:          1,
		MinUniquePitches: 2,
	}
}

// MelodyStats counts what batch extraction discarded or adjusted.
type MelodyStats struct {
	PolyphonicTracksDiscarded int
	TooShortDiscarded         int
	TooFewPitchesDiscarded    int
	TruncatedToMaxBars        int
	MelodyLengthsBars         map[int]int
}

// ExtractMelodies repeats melody extraction for every instrument of s,
// advancing the search pointer to the bar after each melody, and applies the
// length and pitch-variety post-filters. Per-track polyphony conflicts under
// a rejecting policy are counted, not surfaced.
func ExtractMelodies(s *model.Sequence, opts MelodiesOptions) ([]*model.Sequence, MelodyStats, error) {
	stats := MelodyStats{MelodyLengthsBars: make(map[int]int)}

	stepsPerBarFloat, err := sequtil.StepsPerBar(s)
	if err != nil {
		return nil, stats, err
	}
	if stepsPerBarFloat != math.Trunc(stepsPerBarFloat) {
		return nil, stats, &model.NonIntegerStepsPerBarError{
			StepsPerBar: stepsPerBarFloat,
			Numerator:   s.TimeSignatures[0].Numerator,
			Denominator: s.TimeSignatures[0].Denominator,
		}
	}
	stepsPerBar := int(stepsPerBarFloat)

	seen := make(map[int]bool)
	var instruments []int
	for i := range s.Notes {
		if !seen[s.Notes[i].Instrument] {
			seen[s.Notes[i].Instrument] = true
			instruments = append(instruments, s.Notes[i].Instrument)
		}
	}
	sort.Ints(instruments)

	var melodies []*model.Sequence
	for _, instrument := range instruments {
		mopts := opts.MelodyOptions
		mopts.Instrument = instrument
		mopts.SearchStartStep = 0

		for {
			melody, endStep, err := extractMelody(s, mopts)
			var polyErr *model.PolyphonicMelodyError
			if errors.As(err, &polyErr) {
				stats.PolyphonicTracksDiscarded++
				break
			}
			if err != nil {
				return nil, stats, err
			}
			if melody == nil {
				break
			}
			// Next search starts on the bar boundary after this melody.
			mopts.SearchStartStep = (endStep/stepsPerBar + 1) * stepsPerBar

			// A partial final bar does not count toward the minimum.
			if melody.TotalQuantizedSteps < opts.MinBars*stepsPerBar {
				stats.TooShortDiscarded++
				continue
			}
			bars, err := sequtil.Bars(melody)
			if err != nil {
				return nil, stats, err
			}
			if opts.MinUniquePitches > 0 &&
				sequtil.CountUniquePitchClasses(melody) < opts.MinUniquePitches {
				stats.TooFewPitchesDiscarded++
				continue
			}
			if opts.MaxBars > 0 && bars > opts.MaxBars {
				melody, err = TruncateAtBar(melody, opts.MaxBars)
				if err != nil {
					return nil, stats, err
				}
				stats.TruncatedToMaxBars++
				bars = opts.MaxBars
			}
			stats.MelodyLengthsBars[bars]++
			melodies = append(melodies, melody)
		}
	}
	return melodies, stats, nil
}

func firstOr44(s *model.Sequence) model.TimeSignature {
	if len(s.TimeSignatures) > 0 {
		ts := s.TimeSignatures[0]
		ts.Time = 0
		return ts
	}
	return model.TimeSignature{Numerator: 4, Denominator: 4}
}

func firstOrDefaultQPM(s *model.Sequence) float64 {
	if len(s.Tempos) > 0 {
		return s.Tempos[0].QPM
	}
	return constants.DefaultQuartersPerMinute
}
