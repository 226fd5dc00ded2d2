package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCloneIsDeep(t *testing.T) {
	assert := assert.New(t)

	s := &Sequence{
		ID:             "song",
		Notes:          []Note{{Pitch: 60, StartTime: 0, EndTime: 1}},
		Tempos:         []Tempo{{QPM: 120}},
		TimeSignatures: []TimeSignature{{Numerator: 4, Denominator: 4}},
		TotalTime:      1,
	}
	c := s.Clone()
	assert.Equal(s, c)

	c.Notes[0].Pitch = 72
	c.Tempos[0].QPM = 90
	assert.Equal(uint8(60), s.Notes[0].Pitch)
	assert.Equal(120.0, s.Tempos[0].QPM)
}

func TestCloneEmptyKeepsIdentityOnly(t *testing.T) {
	assert := assert.New(t)

	s := &Sequence{
		ID:                  "song",
		SourcePath:          "/media/song.mid",
		TicksPerQuarter:     220,
		Notes:               []Note{{Pitch: 60}},
		Tempos:              []Tempo{{QPM: 120}},
		TotalTime:           3,
		TotalQuantizedSteps: 24,
		QuantizationInfo:    QuantizationInfo{StepsPerQuarter: 4},
	}
	c := s.CloneEmpty()

	assert.Equal("song", c.ID)
	assert.Equal("/media/song.mid", c.SourcePath)
	assert.Equal(220, c.TicksPerQuarter)
	assert.Equal(QuantizationInfo{StepsPerQuarter: 4}, c.QuantizationInfo)

	assert.Empty(c.Notes)
	assert.Empty(c.Tempos)
	assert.Zero(c.TotalTime)
	assert.Zero(c.TotalQuantizedSteps)
}

func TestEqualNotes(t *testing.T) {
	assert := assert.New(t)

	a := &Note{Pitch: 60, StartTime: 0, EndTime: 1}
	b := &Note{Pitch: 60, StartTime: 0, EndTime: 2}
	assert.True(EqualNotes(a, b, false))
	assert.False(EqualNotes(a, b, true))
	assert.False(EqualNotes(a, &Note{Pitch: 62}, false))
	assert.False(EqualNotes(a, nil, false))
	assert.True(EqualNotes(nil, nil, false))
}

func TestUniqueSequences(t *testing.T) {
	assert := assert.New(t)

	a := &Sequence{Notes: []Note{{Pitch: 60, StartTime: 0, EndTime: 1}}}
	b := &Sequence{Notes: []Note{{Pitch: 60, StartTime: 0, EndTime: 1}}}
	c := &Sequence{Notes: []Note{{Pitch: 62, StartTime: 0, EndTime: 1}}}

	unique := UniqueSequences([]*Sequence{a, b, c})
	assert.Len(unique, 2)
	assert.Same(a, unique[0])
	assert.Same(c, unique[1])
}

func TestUniqueNotes(t *testing.T) {
	notes := UniqueNotes([]Note{{Pitch: 60}, {Pitch: 60, Velocity: 80}, {Pitch: 62}})
	assert.Len(t, notes, 2)
}

func TestQuantizationPredicates(t *testing.T) {
	assert := assert.New(t)

	var s Sequence
	assert.False(s.IsQuantized())

	s.QuantizationInfo = QuantizationInfo{StepsPerQuarter: 4}
	assert.True(s.IsQuantized())
	assert.True(s.IsRelativeQuantized())
	assert.False(s.IsAbsoluteQuantized())

	s.QuantizationInfo = QuantizationInfo{StepsPerSecond: 100}
	assert.True(s.IsQuantized())
	assert.False(s.IsRelativeQuantized())
	assert.True(s.IsAbsoluteQuantized())
}
