package sequtil

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mirlib/noteseq/model"
)

func quantizedSequence(stepsPerQuarter int, ts model.TimeSignature, qpm float64) *model.Sequence {
	return &model.Sequence{
		TimeSignatures:   []model.TimeSignature{ts},
		Tempos:           []model.Tempo{{QPM: qpm}},
		QuantizationInfo: model.QuantizationInfo{StepsPerQuarter: stepsPerQuarter},
	}
}

func TestAssertsRejectWrongQuantizationState(t *testing.T) {
	assert := assert.New(t)

	unquantized := &model.Sequence{ID: "u"}
	assert.Error(AssertIsQuantized(unquantized))
	assert.Error(AssertIsRelativeQuantized(unquantized))

	relative := quantizedSequence(4, model.TimeSignature{Numerator: 4, Denominator: 4}, 120)
	assert.NoError(AssertIsQuantized(relative))
	assert.NoError(AssertIsRelativeQuantized(relative))
	assert.Error(AssertIsAbsoluteQuantized(relative))

	absolute := &model.Sequence{QuantizationInfo: model.QuantizationInfo{StepsPerSecond: 100}}
	assert.NoError(AssertIsQuantized(absolute))
	assert.NoError(AssertIsAbsoluteQuantized(absolute))
	assert.Error(AssertIsRelativeQuantized(absolute))
}

func TestBarArithmetic(t *testing.T) {
	assert := assert.New(t)

	s := quantizedSequence(4, model.TimeSignature{Numerator: 4, Denominator: 4}, 120)
	stepsPerBar, err := StepsPerBar(s)
	assert.NoError(err)
	assert.Equal(16.0, stepsPerBar)

	stepsPerSecond, err := StepsPerSecond(s)
	assert.NoError(err)
	assert.Equal(8.0, stepsPerSecond)

	s.TotalQuantizedSteps = 33
	bars, err := Bars(s)
	assert.NoError(err)
	assert.Equal(3, bars)

	length, err := BarsLength(s, 2)
	assert.NoError(err)
	assert.Equal(4.0, length)
}

func TestBarArithmeticWaltz(t *testing.T) {
	assert := assert.New(t)

	s := quantizedSequence(4, model.TimeSignature{Numerator: 3, Denominator: 4}, 120)
	stepsPerBar, err := StepsPerBar(s)
	assert.NoError(err)
	assert.Equal(12.0, stepsPerBar)
}

func TestResolutionConversions(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(8.0, StepsPerQuarterToStepsPerSecond(4, 120))
	assert.Equal(4.0, StepsPerSecondToStepsPerQuarter(8.0, 120))
}

func TestPitchHistogramAndUniqueClasses(t *testing.T) {
	assert := assert.New(t)

	s := &model.Sequence{Notes: []model.Note{
		{Pitch: 60}, {Pitch: 72}, {Pitch: 64},
	}}
	histogram := PitchHistogram(s)
	assert.Equal(2, histogram[0])
	assert.Equal(1, histogram[4])
	assert.Equal(2, CountUniquePitchClasses(s))
}

func TestCountOnsetsMergesCoincident(t *testing.T) {
	s := &model.Sequence{Notes: []model.Note{
		{StartTime: 0}, {StartTime: 0}, {StartTime: 1.5},
	}}
	assert.Equal(t, 2, CountOnsets(s))
}

func TestVelocityListNormalized(t *testing.T) {
	s := &model.Sequence{Notes: []model.Note{{Velocity: 127}, {Velocity: 0}}}
	assert.Equal(t, []float64{1.0, 0.0}, VelocityList(s, true))
}
