// Package midiio converts between standard MIDI files and model.Sequence
// records. Decoding flattens the SMF tick/tempo representation into absolute
// seconds; encoding rebuilds delta ticks from a synthesized tempo track.
package midiio

import (
	"bytes"
	"fmt"
	"os"
	"sort"

	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/mirlib/noteseq/constants"
	"github.com/mirlib/noteseq/model"
)

// DrumChannel is the general MIDI percussion channel.
const DrumChannel = 9

// ConversionError reports a MIDI file that could not be decoded or encoded,
// carrying the offending path.
type ConversionError struct {
	Path string
	Err  error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("converting %q: %v", e.Path, e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }

// ReadSequenceFile decodes the MIDI file at path into an unquantized
// sequence.
func ReadSequenceFile(path string) (s *model.Sequence, err error) {
	// The SMF parser panics on some malformed files.
	// https://github.com/gomidi/midi/issues/20
	defer func() {
		if r := recover(); r != nil {
			s = nil
			err = &ConversionError{Path: path, Err: fmt.Errorf("%v", r)}
		}
	}()

	dat, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConversionError{Path: path, Err: err}
	}
	mf, err := smf.ReadFrom(bytes.NewReader(dat))
	if err != nil {
		return nil, &ConversionError{Path: path, Err: err}
	}
	seq, err := FromSMF(mf)
	if err != nil {
		return nil, &ConversionError{Path: path, Err: err}
	}
	seq.SourcePath = path
	return seq, nil
}

// noteKey pairs the channel and pitch of a sounding note while its note-off
// is pending.
type noteKey struct {
	channel uint8
	pitch   uint8
}

type pendingNote struct {
	start    float64
	velocity uint8
	program  int
}

// FromSMF decodes a parsed SMF into an unquantized sequence. Instruments are
// MIDI channels; channel 9 notes are drums. TotalTime is the latest note end.
func FromSMF(mf *smf.SMF) (*model.Sequence, error) {
	tf, ok := mf.TimeFormat.(smf.MetricTicks)
	if !ok {
		return nil, fmt.Errorf("unsupported time format %v", mf.TimeFormat)
	}

	s := &model.Sequence{TicksPerQuarter: int(tf)}
	pending := make(map[noteKey][]pendingNote)
	programs := make(map[uint8]int)

	for trackNo, track := range mf.Tracks {
		var absTicks int64
		for _, event := range track {
			absTicks += int64(event.Delta)
			t := float64(mf.TimeAt(absTicks)) / 1e6
			msg := event.Message

			var channel, key, velocity uint8
			var ccNum, ccVal uint8
			var bend int16
			var bendAbs uint16
			var bpm float64
			var num, denom, cpt, dsqpq uint8
			var metaKey smf.Key
			var text string

			switch {
			case msg.GetNoteStart(&channel, &key, &velocity):
				k := noteKey{channel: channel, pitch: key}
				pending[k] = append(pending[k], pendingNote{
					start: t, velocity: velocity, program: programs[channel],
				})

			case msg.GetNoteEnd(&channel, &key):
				k := noteKey{channel: channel, pitch: key}
				stack := pending[k]
				if len(stack) == 0 {
					continue
				}
				on := stack[len(stack)-1]
				pending[k] = stack[:len(stack)-1]
				s.Notes = append(s.Notes, model.Note{
					Pitch:      key,
					Velocity:   on.velocity,
					Instrument: int(channel),
					Program:    on.program,
					IsDrum:     channel == DrumChannel,
					StartTime:  on.start,
					EndTime:    t,
				})

			case msg.GetProgramChange(&channel, &key):
				programs[channel] = int(key)

			case msg.GetControlChange(&channel, &ccNum, &ccVal):
				s.ControlChanges = append(s.ControlChanges, model.ControlChange{
					Instrument:    int(channel),
					Program:       programs[channel],
					IsDrum:        channel == DrumChannel,
					Time:          t,
					ControlNumber: ccNum,
					ControlValue:  ccVal,
				})

			case msg.GetPitchBend(&channel, &bend, &bendAbs):
				s.PitchBends = append(s.PitchBends, model.PitchBend{
					Instrument: int(channel),
					Program:    programs[channel],
					IsDrum:     channel == DrumChannel,
					Time:       t,
					Bend:       int(bend),
				})

			case msg.GetMetaTempo(&bpm):
				s.Tempos = append(s.Tempos, model.Tempo{Time: t, QPM: bpm})

			case msg.GetMetaTimeSig(&num, &denom, &cpt, &dsqpq):
				s.TimeSignatures = append(s.TimeSignatures, model.TimeSignature{
					Time: t, Numerator: int(num), Denominator: int(denom),
				})

			case msg.GetMetaKey(&metaKey):
				mode := model.ModeMajor
				if !metaKey.IsMajor {
					mode = model.ModeMinor
				}
				s.KeySignatures = append(s.KeySignatures, model.KeySignature{
					Time: t, Key: int(metaKey.Key), Mode: mode,
				})

			case msg.GetMetaInstrument(&text):
				s.InstrumentInfos = append(s.InstrumentInfos, model.InstrumentInfo{
					Name: text, Instrument: trackNo,
				})
			}
		}
	}

	// Notes left open are closed where they started; zero-length leftovers
	// are normalized away by quantization later.
	for k, stack := range pending {
		for _, on := range stack {
			s.Notes = append(s.Notes, model.Note{
				Pitch:      k.pitch,
				Velocity:   on.velocity,
				Instrument: int(k.channel),
				Program:    on.program,
				IsDrum:     k.channel == DrumChannel,
				StartTime:  on.start,
				EndTime:    on.start,
			})
		}
	}

	sort.SliceStable(s.Notes, func(i, j int) bool {
		a, b := &s.Notes[i], &s.Notes[j]
		if a.StartTime != b.StartTime {
			return a.StartTime < b.StartTime
		}
		if a.Instrument != b.Instrument {
			return a.Instrument < b.Instrument
		}
		return a.Pitch < b.Pitch
	})
	sortEvents(s)

	for i := range s.Notes {
		if s.Notes[i].EndTime > s.TotalTime {
			s.TotalTime = s.Notes[i].EndTime
		}
	}
	if s.TicksPerQuarter == 0 {
		s.TicksPerQuarter = constants.StandardPPQ
	}
	return s, nil
}

func sortEvents(s *model.Sequence) {
	sort.SliceStable(s.ControlChanges, func(i, j int) bool {
		return s.ControlChanges[i].Time < s.ControlChanges[j].Time
	})
	sort.SliceStable(s.PitchBends, func(i, j int) bool {
		return s.PitchBends[i].Time < s.PitchBends[j].Time
	})
	sort.SliceStable(s.TimeSignatures, func(i, j int) bool {
		return s.TimeSignatures[i].Time < s.TimeSignatures[j].Time
	})
	sort.SliceStable(s.KeySignatures, func(i, j int) bool {
		return s.KeySignatures[i].Time < s.KeySignatures[j].Time
	})
	sort.SliceStable(s.Tempos, func(i, j int) bool {
		return s.Tempos[i].Time < s.Tempos[j].Time
	})
}
