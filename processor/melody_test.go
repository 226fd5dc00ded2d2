package processor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mirlib/noteseq/model"
)

// melNote builds a note already on the quantized grid of melodySequence
// (4/4, 120 QPM, 4 steps per quarter, so 8 steps per second).
func melNote(instrument int, pitch uint8, startStep, endStep int) model.Note {
	return model.Note{
		Pitch:              pitch,
		Velocity:           100,
		Instrument:         instrument,
		StartTime:          float64(startStep) / 8,
		EndTime:            float64(endStep) / 8,
		QuantizedStartStep: startStep,
		QuantizedEndStep:   endStep,
	}
}

func melodySequence(notes ...model.Note) *model.Sequence {
	s := &model.Sequence{
		TimeSignatures:   []model.TimeSignature{{Numerator: 4, Denominator: 4}},
		Tempos:           []model.Tempo{{QPM: 120}},
		Notes:            notes,
		QuantizationInfo: model.QuantizationInfo{StepsPerQuarter: 4},
	}
	for _, n := range notes {
		if n.QuantizedEndStep > s.TotalQuantizedSteps {
			s.TotalQuantizedSteps = n.QuantizedEndStep
		}
		if n.EndTime > s.TotalTime {
			s.TotalTime = n.EndTime
		}
	}
	return s
}

func melodyOptions() MelodyOptions {
	return MelodyOptions{GapBars: 1, MaxPitch: 127, Policy: PolyphonyPreferHighest}
}

func TestExtractMelodyMonophonic(t *testing.T) {
	assert := assert.New(t)

	s := melodySequence(
		melNote(0, 60, 0, 4),
		melNote(0, 62, 4, 8),
		melNote(0, 64, 8, 16),
	)
	melody, err := ExtractMelody(s, melodyOptions())
	assert.NoError(err)

	assert.Len(melody.Notes, 3)
	assert.Equal(16, melody.TotalQuantizedSteps)
	assert.Equal(2.0, melody.TotalTime)
	assert.True(melody.IsRelativeQuantized())
}

func TestExtractMelodySkipsInaudibleNotes(t *testing.T) {
	assert := assert.New(t)

	silent := melNote(0, 60, 0, 4)
	silent.Velocity = 0
	s := melodySequence(silent, melNote(0, 64, 4, 8))

	melody, err := ExtractMelody(s, melodyOptions())
	assert.NoError(err)
	assert.Len(melody.Notes, 1)
	assert.Equal(uint8(64), melody.Notes[0].Pitch)
}

func TestExtractMelodyPolyphonyPolicies(t *testing.T) {
	assert := assert.New(t)

	s := melodySequence(
		melNote(0, 60, 0, 4),
		melNote(0, 72, 0, 4),
		melNote(0, 64, 4, 8),
	)

	highest, err := ExtractMelody(s, melodyOptions())
	assert.NoError(err)
	assert.Equal(uint8(72), highest.Notes[0].Pitch)

	opts := melodyOptions()
	opts.Policy = PolyphonyPreferLowest
	lowest, err := ExtractMelody(s, opts)
	assert.NoError(err)
	assert.Equal(uint8(60), lowest.Notes[0].Pitch)

	opts.Policy = PolyphonyReject
	_, err = ExtractMelody(s, opts)
	var polyErr *model.PolyphonicMelodyError
	assert.ErrorAs(err, &polyErr)
}

func TestExtractMelodyGapTermination(t *testing.T) {
	assert := assert.New(t)

	// GapBars 1 is 16 steps; the rest starting at step 20 leaves a 16-step
	// gap after the first note.
	s := melodySequence(
		melNote(0, 60, 0, 4),
		melNote(0, 64, 20, 24),
	)
	melody, err := ExtractMelody(s, melodyOptions())
	assert.NoError(err)
	assert.Len(melody.Notes, 1)
	assert.Equal(uint8(60), melody.Notes[0].Pitch)
	assert.Equal(4, melody.TotalQuantizedSteps)
}

func TestExtractMelodyTruncatesOverlaps(t *testing.T) {
	assert := assert.New(t)

	s := melodySequence(
		melNote(0, 60, 0, 8),
		melNote(0, 64, 4, 12),
	)
	melody, err := ExtractMelody(s, melodyOptions())
	assert.NoError(err)
	assert.Len(melody.Notes, 2)
	assert.Equal(4, melody.Notes[0].QuantizedEndStep)
	assert.Equal(0.5, melody.Notes[0].EndTime)
}

func TestExtractMelodySnapsStartToBar(t *testing.T) {
	assert := assert.New(t)

	s := melodySequence(melNote(0, 60, 18, 24), melNote(0, 64, 24, 28))
	s.ControlChanges = []model.ControlChange{
		{Time: 2.5, ControlNumber: 64, ControlValue: 100, QuantizedStep: 20},
		{Time: 0.5, ControlNumber: 64, ControlValue: 80, QuantizedStep: 4}, // before the melody
	}
	s.TextAnnotations = []model.TextAnnotation{
		{Time: 2.25, Text: "C", AnnotationType: model.AnnotationChordSymbol, QuantizedStep: 18},
	}
	s.KeySignatures = []model.KeySignature{{Time: 0, Key: 7}}

	melody, err := ExtractMelody(s, melodyOptions())
	assert.NoError(err)

	// The melody is rebased to the bar boundary at step 16 (2 seconds).
	assert.Equal(2, melody.Notes[0].QuantizedStartStep)
	assert.Equal(0.25, melody.Notes[0].StartTime)
	assert.Equal(12, melody.TotalQuantizedSteps)
	assert.Equal(1.5, melody.TotalTime)

	assert.Len(melody.ControlChanges, 1)
	assert.Equal(0.5, melody.ControlChanges[0].Time)
	assert.Equal(4, melody.ControlChanges[0].QuantizedStep)

	assert.Len(melody.TextAnnotations, 1)
	assert.Equal(0.25, melody.TextAnnotations[0].Time)

	assert.Equal([]model.KeySignature{{Time: 0, Key: 7}}, melody.KeySignatures)
}

func TestExtractMelodyFilters(t *testing.T) {
	assert := assert.New(t)

	drum := melNote(0, 40, 0, 4)
	drum.IsDrum = true
	organ := melNote(0, 60, 4, 8)
	organ.Program = 19
	s := melodySequence(
		drum,
		organ,
		melNote(1, 72, 0, 4), // other instrument
		melNote(0, 64, 8, 12),
	)

	opts := melodyOptions()
	opts.FilterDrums = true
	opts.ValidPrograms = []int{0}
	melody, err := ExtractMelody(s, opts)
	assert.NoError(err)
	assert.Len(melody.Notes, 1)
	assert.Equal(uint8(64), melody.Notes[0].Pitch)
}

func TestExtractMelodyEmptyResult(t *testing.T) {
	assert := assert.New(t)

	s := melodySequence(melNote(1, 60, 0, 4))
	melody, err := ExtractMelody(s, melodyOptions()) // instrument 0 has nothing
	assert.NoError(err)
	assert.Nil(melody)
}

func TestExtractMelodyRequiresRelativeQuantization(t *testing.T) {
	var statusErr *model.QuantizationStatusError
	_, err := ExtractMelody(simpleSequence(note(60, 0, 1)), melodyOptions())
	assert.ErrorAs(t, err, &statusErr)
}

func TestExtractMelodies(t *testing.T) {
	assert := assert.New(t)

	s := melodySequence(
		// Instrument 0: two bar-long melodies separated by a bar of silence.
		melNote(0, 60, 0, 8),
		melNote(0, 62, 8, 16),
		melNote(0, 67, 32, 40),
		melNote(0, 69, 40, 48),
		// Instrument 1: one melody.
		melNote(1, 72, 0, 8),
		melNote(1, 74, 8, 16),
	)

	opts := MelodiesOptions{MelodyOptions: melodyOptions(), MinBars: 1, MinUniquePitches: 2}
	melodies, stats, err := ExtractMelodies(s, opts)
	assert.NoError(err)

	assert.Len(melodies, 3)
	assert.Equal(uint8(60), melodies[0].Notes[0].Pitch)
	assert.Equal(uint8(67), melodies[1].Notes[0].Pitch)
	assert.Equal(uint8(72), melodies[2].Notes[0].Pitch)
	assert.Equal(map[int]int{1: 3}, stats.MelodyLengthsBars)
	assert.Zero(stats.TooShortDiscarded)
}

func TestExtractMelodiesPostFilters(t *testing.T) {
	assert := assert.New(t)

	s := melodySequence(
		// A full bar holding one pitch class only.
		melNote(0, 60, 0, 8),
		melNote(0, 72, 8, 16),
		// A three-bar line on another instrument.
		melNote(1, 60, 0, 16),
		melNote(1, 62, 16, 32),
		melNote(1, 64, 32, 48),
	)

	opts := MelodiesOptions{MelodyOptions: melodyOptions(), MinBars: 1, MaxBars: 2, MinUniquePitches: 2}
	melodies, stats, err := ExtractMelodies(s, opts)
	assert.NoError(err)

	assert.Len(melodies, 1)
	assert.Equal(1, stats.TooFewPitchesDiscarded)
	assert.Equal(1, stats.TruncatedToMaxBars)
	assert.Equal(32, melodies[0].TotalQuantizedSteps)
	assert.Equal(map[int]int{2: 1}, stats.MelodyLengthsBars)
}

func TestExtractMelodiesDiscardsSubBarMelodies(t *testing.T) {
	assert := assert.New(t)

	// An eighth of a bar; a partial bar must not count as one.
	s := melodySequence(melNote(0, 60, 0, 1), melNote(0, 62, 1, 2))

	opts := MelodiesOptions{MelodyOptions: melodyOptions(), MinBars: 1}
	melodies, stats, err := ExtractMelodies(s, opts)
	assert.NoError(err)
	assert.Empty(melodies)
	assert.Equal(1, stats.TooShortDiscarded)
}

func TestExtractMelodiesCountsPolyphonicTracks(t *testing.T) {
	assert := assert.New(t)

	s := melodySequence(
		melNote(0, 60, 0, 4),
		melNote(0, 72, 0, 4),
		melNote(1, 60, 0, 8),
		melNote(1, 64, 8, 16),
	)

	opts := MelodiesOptions{MelodyOptions: melodyOptions(), MinBars: 1, MinUniquePitches: 2}
	opts.Policy = PolyphonyReject
	melodies, stats, err := ExtractMelodies(s, opts)
	assert.NoError(err)
	assert.Len(melodies, 1)
	assert.Equal(1, stats.PolyphonicTracksDiscarded)
}
