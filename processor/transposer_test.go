package processor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mirlib/noteseq/model"
)

func TestTransposeShiftsPitches(t *testing.T) {
	assert := assert.New(t)

	drum := note(40, 0, 1)
	drum.IsDrum = true
	s := simpleSequence(note(60, 0, 1), drum)
	s.KeySignatures = []model.KeySignature{{Key: 0}, {Key: 11}}

	ts, deleted, err := Transpose(s, 5, DefaultTransposeOptions())
	assert.NoError(err)
	assert.Zero(deleted)

	assert.Equal(uint8(65), ts.Notes[0].Pitch)
	// Drums are untouched.
	assert.Equal(uint8(40), ts.Notes[1].Pitch)
	assert.Equal(5, ts.KeySignatures[0].Key)
	assert.Equal(4, ts.KeySignatures[1].Key)

	// The input is not modified.
	assert.Equal(uint8(60), s.Notes[0].Pitch)
}

func TestTransposeNegativeAmountWrapsKeys(t *testing.T) {
	assert := assert.New(t)

	s := simpleSequence(note(60, 0, 1))
	s.KeySignatures = []model.KeySignature{{Key: 2}}

	ts, _, err := Transpose(s, -5, DefaultTransposeOptions())
	assert.NoError(err)
	assert.Equal(uint8(55), ts.Notes[0].Pitch)
	assert.Equal(9, ts.KeySignatures[0].Key)
}

func TestTransposeDeletesOutOfRangeNotes(t *testing.T) {
	assert := assert.New(t)

	s := simpleSequence(note(60, 0, 1), note(126, 1, 2))
	ts, deleted, err := Transpose(s, 5, DefaultTransposeOptions())
	assert.NoError(err)
	assert.Equal(1, deleted)
	assert.Len(ts.Notes, 1)
	assert.Equal(uint8(65), ts.Notes[0].Pitch)
	// The deleted note was the last one sounding.
	assert.Equal(1.0, ts.TotalTime)
}

func TestTransposeChordSymbols(t *testing.T) {
	assert := assert.New(t)

	s := simpleSequence(note(60, 0, 1))
	s.TextAnnotations = []model.TextAnnotation{
		{Time: 0, Text: "C/G", AnnotationType: model.AnnotationChordSymbol},
		{Time: 0.5, Text: "N.C.", AnnotationType: model.AnnotationChordSymbol},
		{Time: 0.5, Text: "beat", AnnotationType: model.AnnotationBeat},
	}

	ts, _, err := Transpose(s, 5, DefaultTransposeOptions())
	assert.NoError(err)
	assert.Equal("F/C", ts.TextAnnotations[0].Text)
	assert.Equal("N.C.", ts.TextAnnotations[1].Text)
	assert.Equal("beat", ts.TextAnnotations[2].Text)
}

func TestTransposeStripsChordSymbols(t *testing.T) {
	assert := assert.New(t)

	s := simpleSequence(note(60, 0, 1))
	s.TextAnnotations = []model.TextAnnotation{
		{Time: 0, Text: "C", AnnotationType: model.AnnotationChordSymbol},
		{Time: 0.5, Text: "beat", AnnotationType: model.AnnotationBeat},
	}

	opts := DefaultTransposeOptions()
	opts.TransposeChordSymbols = false
	ts, _, err := Transpose(s, 5, opts)
	assert.NoError(err)
	assert.Len(ts.TextAnnotations, 1)
	assert.Equal("beat", ts.TextAnnotations[0].Text)
}
