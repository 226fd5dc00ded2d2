package processor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mirlib/noteseq/model"
)

func TestExtractSubsequenceRebasesAndClamps(t *testing.T) {
	assert := assert.New(t)

	s := simpleSequence(
		note(60, 0.0, 1.0),
		note(64, 2.0, 3.0),
		note(67, 3.5, 6.0), // crosses the interval end
		note(72, 5.0, 6.0), // starts past the interval
	)

	sub, err := ExtractSubsequence(s, 2.0, 4.0)
	assert.NoError(err)

	assert.Len(sub.Notes, 2)
	assert.Equal(uint8(64), sub.Notes[0].Pitch)
	assert.Equal(0.0, sub.Notes[0].StartTime)
	assert.Equal(1.0, sub.Notes[0].EndTime)
	assert.Equal(uint8(67), sub.Notes[1].Pitch)
	assert.Equal(1.5, sub.Notes[1].StartTime)
	assert.Equal(2.0, sub.Notes[1].EndTime)

	assert.Equal(2.0, sub.TotalTime)
	assert.Equal(2.0, sub.SubsequenceInfo.StartTimeOffset)
	// total - start - subTotal = 6 - 2 - 2
	assert.Equal(2.0, sub.SubsequenceInfo.EndTimeOffset)
}

func TestExtractSubsequencesDropsNoteless(t *testing.T) {
	assert := assert.New(t)

	s := simpleSequence(note(60, 0.0, 1.0), note(64, 4.0, 5.0))
	subs, err := ExtractSubsequences(s, []Interval{
		{Start: 0, End: 2},
		{Start: 2, End: 3}, // no note starts here
		{Start: 3, End: 5},
	})
	assert.NoError(err)
	assert.Len(subs, 2)
	assert.Equal(uint8(60), subs[0].Notes[0].Pitch)
	assert.Equal(uint8(64), subs[1].Notes[0].Pitch)
}

func TestExtractSubsequencesValidatesIntervals(t *testing.T) {
	assert := assert.New(t)
	var rangeErr *model.IntervalOutOfRangeError

	s := simpleSequence(note(60, 0, 2))

	_, err := ExtractSubsequences(s, nil)
	assert.ErrorAs(err, &rangeErr)

	_, err = ExtractSubsequences(s, []Interval{{Start: -1, End: 1}})
	assert.ErrorAs(err, &rangeErr)

	_, err = ExtractSubsequences(s, []Interval{{Start: 1, End: 1}})
	assert.ErrorAs(err, &rangeErr)

	_, err = ExtractSubsequences(s, []Interval{{Start: 0, End: 3}})
	assert.ErrorAs(err, &rangeErr)
}

func TestExtractSubsequenceCarriesStatefulEvents(t *testing.T) {
	assert := assert.New(t)

	s := simpleSequence(note(60, 0, 1), note(64, 4, 6))
	s.TimeSignatures = []model.TimeSignature{{Time: 0, Numerator: 3, Denominator: 4}}
	s.KeySignatures = []model.KeySignature{{Time: 1, Key: 7}}
	s.Tempos = []model.Tempo{{Time: 0, QPM: 90}}
	s.TextAnnotations = []model.TextAnnotation{
		{Time: 0.5, Text: "G", AnnotationType: model.AnnotationChordSymbol},
		{Time: 3.0, Text: "beat", AnnotationType: model.AnnotationBeat},
		{Time: 4.5, Text: "beat", AnnotationType: model.AnnotationBeat},
	}

	sub, err := ExtractSubsequence(s, 4.0, 6.0)
	assert.NoError(err)

	// The interval holds none of the stateful events, so the ones in effect
	// at its start are synthesized at relative time 0.
	assert.Equal([]model.TimeSignature{{Time: 0, Numerator: 3, Denominator: 4}}, sub.TimeSignatures)
	assert.Equal([]model.KeySignature{{Time: 0, Key: 7}}, sub.KeySignatures)
	assert.Equal([]model.Tempo{{Time: 0, QPM: 90}}, sub.Tempos)

	// The chord is carried; only the beat inside the interval survives.
	assert.Len(sub.TextAnnotations, 2)
	assert.Equal(model.TextAnnotation{Time: 0, Text: "G", AnnotationType: model.AnnotationChordSymbol}, sub.TextAnnotations[0])
	assert.Equal(0.5, sub.TextAnnotations[1].Time)
	assert.Equal(model.AnnotationBeat, sub.TextAnnotations[1].AnnotationType)
}

func TestExtractSubsequenceSkipsCarryOverWhenEventInside(t *testing.T) {
	assert := assert.New(t)

	s := simpleSequence(note(60, 0, 1), note(64, 4, 6))
	s.Tempos = []model.Tempo{{Time: 0, QPM: 90}, {Time: 5, QPM: 140}}

	sub, err := ExtractSubsequence(s, 4.0, 6.0)
	assert.NoError(err)
	// An explicit tempo inside the interval suppresses the carry-over.
	assert.Equal([]model.Tempo{{Time: 1, QPM: 140}}, sub.Tempos)
}

func TestExtractSubsequenceCarriesPedalState(t *testing.T) {
	assert := assert.New(t)

	s := simpleSequence(note(60, 0, 1), note(64, 4, 6))
	s.ControlChanges = []model.ControlChange{
		{Time: 1.0, Instrument: 0, ControlNumber: 64, ControlValue: 100},
		{Time: 2.0, Instrument: 1, ControlNumber: 64, ControlValue: 80},
		{Time: 2.5, Instrument: 0, ControlNumber: 67, ControlValue: 90},
		{Time: 3.0, Instrument: 0, ControlNumber: 11, ControlValue: 70}, // not preserved
		{Time: 4.5, Instrument: 1, ControlNumber: 64, ControlValue: 0},
	}

	sub, err := ExtractSubsequence(s, 4.0, 6.0)
	assert.NoError(err)

	// Instrument 1's pedal has an explicit event inside the interval, so only
	// instrument 0's two pedal lines are carried, at time 0, sorted by
	// instrument then control number. Control 11 is not on the allow-list.
	assert.Len(sub.ControlChanges, 3)
	assert.Equal(model.ControlChange{Time: 0, Instrument: 0, ControlNumber: 64, ControlValue: 100}, sub.ControlChanges[0])
	assert.Equal(model.ControlChange{Time: 0, Instrument: 0, ControlNumber: 67, ControlValue: 90}, sub.ControlChanges[1])
	assert.Equal(model.ControlChange{Time: 0.5, Instrument: 1, ControlNumber: 64, ControlValue: 0}, sub.ControlChanges[2])
}

func TestExtractSubsequenceCustomPreservedControls(t *testing.T) {
	assert := assert.New(t)

	s := simpleSequence(note(60, 0, 1), note(64, 4, 6))
	s.ControlChanges = []model.ControlChange{
		{Time: 1.0, ControlNumber: 64, ControlValue: 100},
		{Time: 2.0, ControlNumber: 11, ControlValue: 70},
	}

	sub, err := ExtractSubsequence(s, 4.0, 6.0, []uint8{11})
	assert.NoError(err)
	assert.Len(sub.ControlChanges, 1)
	assert.Equal(uint8(11), sub.ControlChanges[0].ControlNumber)
}

func TestExtractSubsequenceRequantizes(t *testing.T) {
	assert := assert.New(t)

	qs, err := Quantize(simpleSequence(note(60, 0, 1), note(64, 2, 3)), 4)
	assert.NoError(err)

	sub, err := ExtractSubsequence(qs, 2.0, 3.0)
	assert.NoError(err)
	assert.True(sub.IsRelativeQuantized())
	assert.Equal(4, sub.QuantizationInfo.StepsPerQuarter)
	assert.Equal(0, sub.Notes[0].QuantizedStartStep)
	assert.Equal(8, sub.Notes[0].QuantizedEndStep)
	assert.Equal(8, sub.TotalQuantizedSteps)
}

func TestExtractSubsequencesMayOverlap(t *testing.T) {
	assert := assert.New(t)

	s := simpleSequence(note(60, 0, 1), note(64, 1, 2), note(67, 2, 3))
	subs, err := ExtractSubsequences(s, []Interval{
		{Start: 0, End: 2},
		{Start: 1, End: 3},
	})
	assert.NoError(err)
	assert.Len(subs, 2)
	assert.Len(subs[0].Notes, 2)
	assert.Len(subs[1].Notes, 2)
	assert.Equal(uint8(64), subs[1].Notes[0].Pitch)
}
