//go:build e2e
// +build e2e

package e2e_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/mirlib/noteseq/cmd"
	"github.com/mirlib/noteseq/midiio"
	"github.com/mirlib/noteseq/model"
)

func smfFromBytes(data []byte) (*smf.SMF, error) {
	return smf.ReadFrom(bytes.NewReader(data))
}

// createMidiReqBody encodes a four-bar scale at 120 QPM with a sustain pedal
// press over the first note.
func createMidiReqBody() io.Reader {
	s := &model.Sequence{
		Notes: []model.Note{
			{Pitch: 60, Velocity: 100, StartTime: 0, EndTime: 1},
			{Pitch: 62, Velocity: 100, StartTime: 2, EndTime: 3},
			{Pitch: 64, Velocity: 100, StartTime: 4, EndTime: 5},
			{Pitch: 65, Velocity: 100, StartTime: 6, EndTime: 8},
		},
		ControlChanges: []model.ControlChange{
			{Time: 0.5, ControlNumber: 64, ControlValue: 100},
			{Time: 1.5, ControlNumber: 64, ControlValue: 0},
		},
		Tempos:         []model.Tempo{{QPM: 120}},
		TimeSignatures: []model.TimeSignature{{Numerator: 4, Denominator: 4}},
		TotalTime:      8.0,
	}
	mf, err := midiio.ToSMF(s, -1)
	if err != nil {
		panic(err.Error())
	}
	var buf bytes.Buffer
	if _, err := mf.WriteTo(&buf); err != nil {
		panic(err.Error())
	}
	return &buf
}

func TestSustainE2E(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/sustain", createMidiReqBody())
	w := httptest.NewRecorder()
	cmd.HandleSustain(w, req)

	resp := w.Result()
	respBody, _ := io.ReadAll(resp.Body)

	assert := assert.New(t)
	assert.Equal(200, resp.StatusCode)
	assert.Equal("audio/midi", resp.Header.Get("Content-Type"))

	mf, err := smfFromBytes(respBody)
	assert.NoError(err)
	seq, err := midiio.FromSMF(mf)
	assert.NoError(err)

	assert.Len(seq.Notes, 4)
	// The pedal holds the first note until the lift at 1.5.
	assert.InDelta(1.5, seq.Notes[0].EndTime, 0.01)
}

func TestSlicesE2E(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/slices", createMidiReqBody())
	w := httptest.NewRecorder()
	cmd.HandleSlices(w, req)

	resp := w.Result()
	respBody, _ := io.ReadAll(resp.Body)

	assert := assert.New(t)
	assert.Equal(200, resp.StatusCode)

	var summaries []cmd.SequenceSummary
	err := json.Unmarshal(respBody, &summaries)
	assert.NoError(err)

	// Eight seconds is four bars: one full window.
	assert.Len(summaries, 1)
	assert.Equal(4, summaries[0].Notes)
	assert.Equal(64, summaries[0].TotalSteps)
}

func TestMelodiesE2E(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/melodies", createMidiReqBody())
	w := httptest.NewRecorder()
	cmd.HandleMelodies(w, req)

	resp := w.Result()
	respBody, _ := io.ReadAll(resp.Body)

	assert := assert.New(t)
	assert.Equal(200, resp.StatusCode)

	var melodiesResponse cmd.MelodiesResponse
	err := json.Unmarshal(respBody, &melodiesResponse)
	assert.NoError(err)

	assert.Len(melodiesResponse.Melodies, 1)
	assert.Equal(4, melodiesResponse.Melodies[0].Notes)
	assert.Zero(melodiesResponse.Polyphonic)
}
