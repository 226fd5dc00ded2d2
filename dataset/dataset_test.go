package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mirlib/noteseq/midiio"
	"github.com/mirlib/noteseq/model"
	"github.com/mirlib/noteseq/processor"
)

func testSequence() *model.Sequence {
	return &model.Sequence{
		Notes: []model.Note{
			{Pitch: 60, Velocity: 100, StartTime: 0, EndTime: 1},
			{Pitch: 62, Velocity: 100, StartTime: 1, EndTime: 2},
			{Pitch: 64, Velocity: 100, StartTime: 2, EndTime: 3},
			{Pitch: 65, Velocity: 100, StartTime: 3, EndTime: 4},
		},
		Tempos:         []model.Tempo{{QPM: 120}},
		TimeSignatures: []model.TimeSignature{{Numerator: 4, Denominator: 4}},
		TotalTime:      4.0,
	}
}

func TestRunPipelineQuantizeOnly(t *testing.T) {
	assert := assert.New(t)

	var stats Stats
	out, err := RunPipeline(testSequence(), PipelineOptions{StepsPerQuarter: 4}, &stats)
	assert.NoError(err)
	assert.Len(out, 1)
	assert.True(out[0].IsRelativeQuantized())
	assert.Zero(stats.SegmentsDiscarded)
}

func TestRunPipelineSlices(t *testing.T) {
	assert := assert.New(t)

	var stats Stats
	out, err := RunPipeline(testSequence(), PipelineOptions{StepsPerQuarter: 4, SliceBars: 1}, &stats)
	assert.NoError(err)
	// Two seconds per bar over four seconds of music.
	assert.Len(out, 2)
	assert.Len(out[0].Notes, 2)
}

func TestRunPipelineMelodies(t *testing.T) {
	assert := assert.New(t)

	opts := PipelineOptions{
		StepsPerQuarter: 4,
		ExtractMelodies: true,
		Melodies: processor.MelodiesOptions{
			MelodyOptions: processor.MelodyOptions{GapBars: 1, MaxPitch: 127},
			MinBars:       1,
		},
	}
	var stats Stats
	out, err := RunPipeline(testSequence(), opts, &stats)
	assert.NoError(err)
	assert.Len(out, 1)
	assert.Len(out[0].Notes, 4)
	assert.Equal(map[int]int{2: 1}, stats.Melodies.MelodyLengthsBars)
}

func TestRunPipelineSplitsOnTempoChange(t *testing.T) {
	assert := assert.New(t)

	s := testSequence()
	s.Tempos = []model.Tempo{{Time: 0, QPM: 120}, {Time: 2, QPM: 90}}

	var stats Stats
	out, err := RunPipeline(s, PipelineOptions{StepsPerQuarter: 4}, &stats)
	assert.NoError(err)
	assert.Len(out, 2)
	assert.Equal(120.0, out[0].Tempos[0].QPM)
	assert.Equal(90.0, out[1].Tempos[0].QPM)
}

func TestRunPipelineEmptySequence(t *testing.T) {
	assert := assert.New(t)

	var stats Stats
	out, err := RunPipeline(&model.Sequence{}, PipelineOptions{StepsPerQuarter: 4}, &stats)
	assert.NoError(err)
	assert.Nil(out)
}

func TestBuildAndLoad(t *testing.T) {
	assert := assert.New(t)

	mediaDir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "out")

	for _, name := range []string{"a.mid", "b.mid"} {
		assert.NoError(midiio.WriteSequence(testSequence(), filepath.Join(mediaDir, name), -1))
	}
	// A file the decoder cannot parse gets skipped, not fatal.
	assert.NoError(os.WriteFile(filepath.Join(mediaDir, "broken.mid"), []byte("not midi"), 0o644))

	stats, err := Build(mediaDir, outDir, 0, PipelineOptions{StepsPerQuarter: 4})
	assert.NoError(err)
	assert.Equal(1, stats.FilesSkipped)

	overviews, err := LoadManifest(outDir)
	assert.NoError(err)
	assert.Len(overviews, 1)
	assert.Equal(2, overviews[0].NumSequences)

	all, err := LoadAll(outDir)
	assert.NoError(err)
	assert.Len(all, 2)
	assert.Len(all[0].Notes, 4)
	assert.True(all[0].IsRelativeQuantized())
}

func TestCreateFileNumMap(t *testing.T) {
	assert := assert.New(t)

	m := CreateFileNumMap([]string{"x.mid", "y.mid"})
	assert.Equal("x.mid", m[0])
	assert.Equal("y.mid", m[1])
	assert.Len(m, 2)
}
