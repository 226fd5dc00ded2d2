package processor

import (
	"math"

	"github.com/mirlib/noteseq/chordsym"
	"github.com/mirlib/noteseq/constants"
	"github.com/mirlib/noteseq/model"
)

// TransposeOptions configures Transpose.
type TransposeOptions struct {
	// MinAllowedPitch and MaxAllowedPitch bound the result; transposed
	// non-drum notes outside the bounds are deleted and counted.
	MinAllowedPitch uint8
	MaxAllowedPitch uint8

	// TransposeChordSymbols rewrites chord-symbol annotations by the same
	// amount; when false they are stripped instead.
	TransposeChordSymbols bool

	InPlace bool
}

// DefaultTransposeOptions allows the full MIDI pitch range and transposes
// chord symbols.
func DefaultTransposeOptions() TransposeOptions {
	return TransposeOptions{
		MinAllowedPitch:       constants.MinMIDIPitch,
		MaxAllowedPitch:       constants.MaxMIDIPitch,
		TransposeChordSymbols: true,
	}
}

// Transpose shifts every non-drum note by amount semitones, rotates key
// signatures, and transposes or strips chord-symbol annotations. It returns
// the transposed sequence and the number of notes deleted for leaving the
// allowed pitch range. An unparseable chord symbol aborts with a
// chordsym.ParseError.
func Transpose(s *model.Sequence, amount int, opts TransposeOptions) (*model.Sequence, int, error) {
	ts := s
	if !opts.InPlace {
		ts = s.Clone()
	}

	deleted := 0
	endTime := 0.0
	kept := ts.Notes[:0]
	for _, note := range ts.Notes {
		if note.IsDrum {
			kept = append(kept, note)
			endTime = math.Max(endTime, note.EndTime)
			continue
		}
		pitch := int(note.Pitch) + amount
		if pitch < int(opts.MinAllowedPitch) || pitch > int(opts.MaxAllowedPitch) {
			deleted++
			continue
		}
		note.Pitch = uint8(pitch)
		kept = append(kept, note)
		endTime = math.Max(endTime, note.EndTime)
	}
	ts.Notes = kept
	// Deleting notes can shorten the sequence.
	ts.TotalTime = endTime

	if opts.TransposeChordSymbols {
		for i := range ts.TextAnnotations {
			ta := &ts.TextAnnotations[i]
			if ta.AnnotationType != model.AnnotationChordSymbol || ta.Text == constants.NoChord {
				continue
			}
			transposed, err := chordsym.TransposeChordSymbol(ta.Text, amount)
			if err != nil {
				return nil, deleted, err
			}
			ta.Text = transposed
		}
	} else {
		keptTA := ts.TextAnnotations[:0]
		for _, ta := range ts.TextAnnotations {
			if ta.AnnotationType != model.AnnotationChordSymbol {
				keptTA = append(keptTA, ta)
			}
		}
		ts.TextAnnotations = keptTA
	}

	for i := range ts.KeySignatures {
		key := (ts.KeySignatures[i].Key + amount) % constants.NotesPerOctave
		if key < 0 {
			key += constants.NotesPerOctave
		}
		ts.KeySignatures[i].Key = key
	}

	return ts, deleted, nil
}
