package model

// MidiMetadata is the catalog record attached to a source MIDI file.
type MidiMetadata struct {
	Artist  string
	Title   string
	Release string
	Year    uint
}
