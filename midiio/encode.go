package midiio

import (
	"os"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/mirlib/noteseq/constants"
	"github.com/mirlib/noteseq/model"
)

// Relative event order within one tick. Meta and state changes precede note
// boundaries, and note-offs precede note-ons so back-to-back repetitions of
// a pitch do not merge.
const (
	orderMeta = iota
	orderProgram
	orderControl
	orderBend
	orderNoteOff
	orderNoteOn
)

type tickEvent struct {
	tick  int64
	order int
	msg   smf.Message
}

// tempoMap converts absolute seconds to ticks under a sequence's tempo
// changes.
type tempoMap struct {
	times []float64 // segment start, seconds
	ticks []int64   // segment start, ticks
	rates []float64 // ticks per second within the segment
}

func newTempoMap(s *model.Sequence, ticksPerQuarter int) *tempoMap {
	tempos := append([]model.Tempo(nil), s.Tempos...)
	sort.SliceStable(tempos, func(i, j int) bool { return tempos[i].Time < tempos[j].Time })
	if len(tempos) == 0 || tempos[0].Time > 0 {
		tempos = append([]model.Tempo{{QPM: constants.DefaultQuartersPerMinute}}, tempos...)
	}

	tm := &tempoMap{}
	var tick int64
	for i, t := range tempos {
		if i > 0 {
			prev := tempos[i-1]
			tick += int64((t.Time - prev.Time) * float64(ticksPerQuarter) * prev.QPM / 60.0)
		}
		tm.times = append(tm.times, t.Time)
		tm.ticks = append(tm.ticks, tick)
		tm.rates = append(tm.rates, float64(ticksPerQuarter)*t.QPM/60.0)
	}
	return tm
}

func (tm *tempoMap) tickAt(seconds float64) int64 {
	i := sort.SearchFloat64s(tm.times, seconds)
	if i == len(tm.times) || tm.times[i] > seconds {
		i--
	}
	return tm.ticks[i] + int64((seconds-tm.times[i])*tm.rates[i])
}

// ToSMF encodes a sequence as a format-1 SMF: one meta track holding tempo,
// meter and key changes, then one track per instrument. A non-negative
// dropEventsAfterLastNote drops control changes, pitch bends and meta events
// occurring more than that many seconds after the last note end; pass a
// negative value to keep everything.
func ToSMF(s *model.Sequence, dropEventsAfterLastNote float64) (*smf.SMF, error) {
	ticksPerQuarter := s.TicksPerQuarter
	if ticksPerQuarter <= 0 {
		ticksPerQuarter = constants.StandardPPQ
	}
	tm := newTempoMap(s, ticksPerQuarter)

	cutoff := -1.0
	if dropEventsAfterLastNote >= 0 {
		for i := range s.Notes {
			if s.Notes[i].EndTime > cutoff {
				cutoff = s.Notes[i].EndTime
			}
		}
		cutoff += dropEventsAfterLastNote
	}
	keep := func(t float64) bool { return dropEventsAfterLastNote < 0 || t <= cutoff }

	var meta []tickEvent
	for _, t := range s.Tempos {
		if keep(t.Time) {
			meta = append(meta, tickEvent{tm.tickAt(t.Time), orderMeta, smf.MetaTempo(t.QPM)})
		}
	}
	for _, ts := range s.TimeSignatures {
		if keep(ts.Time) {
			meta = append(meta, tickEvent{
				tm.tickAt(ts.Time), orderMeta,
				smf.MetaMeter(uint8(ts.Numerator), uint8(ts.Denominator)),
			})
		}
	}
	for _, ks := range s.KeySignatures {
		if !keep(ks.Time) {
			continue
		}
		accidentals, flat := keyAccidentals(ks)
		meta = append(meta, tickEvent{
			tm.tickAt(ks.Time), orderMeta,
			smf.MetaKey(uint8(ks.Key), ks.Mode == model.ModeMajor, accidentals, flat),
		})
	}

	byInstrument := make(map[int][]tickEvent)
	programs := make(map[int]int)
	for i := range s.Notes {
		note := &s.Notes[i]
		ch := channelFor(note.Instrument, note.IsDrum)
		byInstrument[note.Instrument] = append(byInstrument[note.Instrument],
			tickEvent{tm.tickAt(note.StartTime), orderNoteOn, smf.Message(midi.NoteOn(ch, note.Pitch, note.Velocity))},
			tickEvent{tm.tickAt(note.EndTime), orderNoteOff, smf.Message(midi.NoteOff(ch, note.Pitch))},
		)
		programs[note.Instrument] = note.Program
	}
	for i := range s.ControlChanges {
		cc := &s.ControlChanges[i]
		if !keep(cc.Time) {
			continue
		}
		ch := channelFor(cc.Instrument, cc.IsDrum)
		byInstrument[cc.Instrument] = append(byInstrument[cc.Instrument], tickEvent{
			tm.tickAt(cc.Time), orderControl,
			smf.Message(midi.ControlChange(ch, cc.ControlNumber, cc.ControlValue)),
		})
	}
	for i := range s.PitchBends {
		pb := &s.PitchBends[i]
		if !keep(pb.Time) {
			continue
		}
		ch := channelFor(pb.Instrument, pb.IsDrum)
		byInstrument[pb.Instrument] = append(byInstrument[pb.Instrument], tickEvent{
			tm.tickAt(pb.Time), orderBend,
			smf.Message(midi.Pitchbend(ch, int16(pb.Bend))),
		})
	}

	out := smf.NewSMF1()
	out.TimeFormat = smf.MetricTicks(ticksPerQuarter)
	out.Add(buildTrack(meta))

	instruments := make([]int, 0, len(byInstrument))
	for instrument := range byInstrument {
		instruments = append(instruments, instrument)
	}
	sort.Ints(instruments)
	for _, instrument := range instruments {
		events := byInstrument[instrument]
		isDrum := false
		for i := range s.Notes {
			if s.Notes[i].Instrument == instrument {
				isDrum = s.Notes[i].IsDrum
				break
			}
		}
		events = append(events, tickEvent{
			0, orderProgram,
			smf.Message(midi.ProgramChange(channelFor(instrument, isDrum), uint8(programs[instrument]))),
		})
		out.Add(buildTrack(events))
	}
	return out, nil
}

// WriteSequence encodes s and writes it to path. See ToSMF for the
// dropEventsAfterLastNote cutoff.
func WriteSequence(s *model.Sequence, path string, dropEventsAfterLastNote float64) error {
	mf, err := ToSMF(s, dropEventsAfterLastNote)
	if err != nil {
		return &ConversionError{Path: path, Err: err}
	}
	f, err := os.Create(path)
	if err != nil {
		return &ConversionError{Path: path, Err: err}
	}
	defer f.Close()
	if _, err := mf.WriteTo(f); err != nil {
		return &ConversionError{Path: path, Err: err}
	}
	return nil
}

func buildTrack(events []tickEvent) smf.Track {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].tick != events[j].tick {
			return events[i].tick < events[j].tick
		}
		return events[i].order < events[j].order
	})
	var track smf.Track
	var trackTime int64
	for _, ev := range events {
		track = append(track, smf.Event{
			Delta:   uint32(ev.tick - trackTime),
			Message: ev.msg,
		})
		trackTime = ev.tick
	}
	track.Close(0)
	return track
}

func channelFor(instrument int, isDrum bool) uint8 {
	if isDrum {
		return DrumChannel
	}
	ch := instrument % 16
	if ch < 0 {
		ch += 16
	}
	if ch == DrumChannel {
		ch = 15
	}
	return uint8(ch)
}

// keyAccidentals converts a key signature to its accidental count on the
// circle of fifths, preferring at most six sharps or flats.
func keyAccidentals(ks model.KeySignature) (uint8, bool) {
	key := ks.Key
	if ks.Mode == model.ModeMinor {
		// Relative major.
		key = (key + 3) % 12
	}
	sharps := (key * 7) % 12
	if sharps <= 6 {
		return uint8(sharps), false
	}
	return uint8(12 - sharps), true
}
