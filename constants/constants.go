package constants

import "os"

// GetIndexDir returns the directory dataset builds write to.
func GetIndexDir() string {
	path := os.Getenv("INDEX_PATH")
	if path != "" {
		return path
	}
	return "./out"
}

// GetMediaDir returns the directory MIDI collections are read from.
func GetMediaDir() string {
	path := os.Getenv("MEDIA_PATH")
	if path != "" {
		return path
	}

	panic("MEDIA_PATH environment variable is not set!")
}

// GetMetadataDBEndpoint returns the DynamoDB endpoint holding MIDI catalog
// metadata.
func GetMetadataDBEndpoint() string {
	endpoint := os.Getenv("METADATA_DB_ENDPOINT")
	if endpoint != "" {
		return endpoint
	}
	return "http://localhost:8000"
}

// Meter-related constants.
const (
	DefaultQuartersPerMinute = 120.0
	DefaultStepsPerBar       = 16 // 4/4 music sampled at 4 steps per quarter note
	DefaultStepsPerQuarter   = 4
	DefaultStepsPerSecond    = 100.0
)

// StandardPPQ is the standard MIDI pulses per quarter note.
const StandardPPQ = 220

// MIDI pitch and velocity bounds, all inclusive.
const (
	MinMIDIPitch      = 0
	MaxMIDIPitch      = 127
	PianoMinMIDIPitch = 21
	PianoMaxMIDIPitch = 108
	NotesPerOctave    = 12

	DefaultMIDIVelocity = 64
	MinMIDIVelocity     = 1
	MaxMIDIVelocity     = 127

	DefaultMIDIProgram = 0
	MinMIDIProgram     = 0
	MaxMIDIProgram     = 127
)

// NoChord is the chord symbol for "no chord".
const NoChord = "N.C."

// DefaultPreserveControlNumbers lists the sustain-relevant MIDI control
// numbers preserved across subsequence extraction: sustain, sostenuto,
// una corda.
var DefaultPreserveControlNumbers = []uint8{64, 66, 67}

// SustainControlNumber is the MIDI control number of the sustain pedal.
const SustainControlNumber = 64

// QuantizeCutoff controls step snapping. Event times whose fractional step
// offset is at most 1-QuantizeCutoff round down to the current step; larger
// offsets round up. With 0.75, times in (0.75, 1.75] land on step 1.
const QuantizeCutoff = 0.75

// Float comparison tolerances.
const (
	FloatRelativeTolerance = 1e-9
	FloatAbsoluteTolerance = 0.0
)

// General MIDI program ranges, low inclusive, high exclusive.
// https://soundprogramming.net/file-formats/general-midi-instrument-list/
var (
	PianoPrograms               = programs(0, 8)
	ChromaticPercussionPrograms = programs(8, 16)
	OrganPrograms               = programs(16, 24)
	GuitarPrograms              = programs(24, 32)
	BassPrograms                = programs(32, 40)
	StringPrograms              = programs(40, 56)
	BrassPrograms               = programs(56, 64)
	ReedPrograms                = programs(64, 72)
	PipePrograms                = programs(72, 80)
	SynthLeadPrograms           = programs(80, 88)
	SynthPadPrograms            = programs(88, 96)
	SynthEffectsPrograms        = programs(96, 104)
	EthnicPrograms              = programs(104, 112)
	PercussivePrograms          = programs(112, 119)
	SoundEffectsPrograms        = programs(119, 128)
)

// MelodyPrograms lists the programs considered melodic during melody
// extraction.
var MelodyPrograms = concat(
	PianoPrograms, ChromaticPercussionPrograms, OrganPrograms, GuitarPrograms,
	StringPrograms, ReedPrograms, PipePrograms, SynthLeadPrograms, EthnicPrograms,
)

func programs(lo, hi int) []int {
	ps := make([]int, 0, hi-lo)
	for p := lo; p < hi; p++ {
		ps = append(ps, p)
	}
	return ps
}

func concat(ranges ...[]int) []int {
	var all []int
	for _, r := range ranges {
		all = append(all, r...)
	}
	return all
}
