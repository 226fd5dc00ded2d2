package processor

import (
	"sort"

	"github.com/mirlib/noteseq/constants"
	"github.com/mirlib/noteseq/model"
)

// Event kinds of the merged sustain stream. At equal times pedal changes
// apply before note boundaries, and pedal-on before pedal-off.
const (
	sustainOn = iota
	sustainOff
	noteOn
	noteOff
)

type sustainEvent struct {
	time       float64
	kind       int
	instrument int
	noteIndex  int // valid for note events only
}

// ApplySustain re-derives note end times of an unquantized sequence under
// sustain-pedal semantics: while the pedal is down, notes ring until the
// pedal is lifted or the same pitch is struck again. Drum notes are
// unaffected. A same-pitch restrike that would leave the earlier note with
// zero duration drops that note.
func ApplySustain(s *model.Sequence, sustainControlNumber ...uint8) (*model.Sequence, error) {
	if s.IsQuantized() {
		return nil, &model.QuantizationStatusError{SequenceID: s.ID, Want: "unquantized"}
	}
	controlNumber := uint8(constants.SustainControlNumber)
	if len(sustainControlNumber) > 0 {
		controlNumber = sustainControlNumber[0]
	}

	ss := s.Clone()

	var events []sustainEvent
	for i := range ss.ControlChanges {
		cc := &ss.ControlChanges[i]
		if cc.ControlNumber != controlNumber {
			continue
		}
		kind := sustainOff
		if cc.ControlValue >= 64 {
			kind = sustainOn
		}
		events = append(events, sustainEvent{
			time: cc.Time, kind: kind, instrument: cc.Instrument, noteIndex: -1,
		})
	}
	for i := range ss.Notes {
		note := &ss.Notes[i]
		if note.IsDrum {
			continue
		}
		events = append(events, sustainEvent{
			time: note.StartTime, kind: noteOn, instrument: note.Instrument, noteIndex: i,
		})
		events = append(events, sustainEvent{
			time: note.EndTime, kind: noteOff, instrument: note.Instrument, noteIndex: i,
		})
	}
	if len(events) == 0 {
		return ss, nil
	}

	sort.SliceStable(events, func(i, j int) bool {
		if events[i].time != events[j].time {
			return events[i].time < events[j].time
		}
		return events[i].kind < events[j].kind
	})

	pedalDown := make(map[int]bool)
	active := make(map[int][]int)
	deleted := make(map[int]bool)
	var lastTime float64

	for _, ev := range events {
		lastTime = ev.time
		switch ev.kind {
		case sustainOn:
			pedalDown[ev.instrument] = true

		case sustainOff:
			pedalDown[ev.instrument] = false
			kept := active[ev.instrument][:0]
			for _, idx := range active[ev.instrument] {
				note := &ss.Notes[idx]
				if note.EndTime < ev.time {
					// Held open only by the pedal.
					note.EndTime = ev.time
				} else {
					kept = append(kept, idx)
				}
			}
			active[ev.instrument] = kept

		case noteOn:
			if pedalDown[ev.instrument] {
				kept := active[ev.instrument][:0]
				for _, idx := range active[ev.instrument] {
					note := &ss.Notes[idx]
					if note.Pitch != ss.Notes[ev.noteIndex].Pitch {
						kept = append(kept, idx)
						continue
					}
					note.EndTime = ev.time
					if note.EndTime <= note.StartTime {
						deleted[idx] = true
					}
				}
				active[ev.instrument] = kept
			}
			active[ev.instrument] = append(active[ev.instrument], ev.noteIndex)

		case noteOff:
			if pedalDown[ev.instrument] {
				continue
			}
			kept := active[ev.instrument][:0]
			for _, idx := range active[ev.instrument] {
				if idx != ev.noteIndex {
					kept = append(kept, idx)
				}
			}
			active[ev.instrument] = kept
		}
	}

	for _, indexes := range active {
		for _, idx := range indexes {
			if ss.Notes[idx].EndTime < lastTime {
				ss.Notes[idx].EndTime = lastTime
			}
		}
	}

	if len(deleted) > 0 {
		kept := ss.Notes[:0]
		for i := range ss.Notes {
			if !deleted[i] {
				kept = append(kept, ss.Notes[i])
			}
		}
		ss.Notes = kept
	}

	for i := range ss.Notes {
		if ss.Notes[i].EndTime > ss.TotalTime {
			ss.TotalTime = ss.Notes[i].EndTime
		}
	}
	return ss, nil
}
