package model

import "github.com/mirlib/noteseq/util"

// EqualNotes reports whether two notes are equal. Notes compare equal when
// their pitches match; with checkTimes set, start and end times must also
// coincide within float tolerance. Nil equals only nil.
func EqualNotes(a, b *Note, checkTimes bool) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Pitch != b.Pitch {
		return false
	}
	if !checkTimes {
		return true
	}
	return util.FloatEqual(a.StartTime, b.StartTime) && util.FloatEqual(a.EndTime, b.EndTime)
}

// EqualSequences reports whether two sequences hold the same notes in the
// same order, including time checks.
func EqualSequences(a, b *Sequence) bool {
	if len(a.Notes) != len(b.Notes) {
		return false
	}
	for i := range a.Notes {
		if !EqualNotes(&a.Notes[i], &b.Notes[i], true) {
			return false
		}
	}
	return true
}

// UniqueNotes removes duplicate notes while preserving order. Two notes are
// duplicates per EqualNotes without time checks.
func UniqueNotes(notes []Note) []Note {
	var unique []Note
	for i := range notes {
		seen := false
		for j := range unique {
			if EqualNotes(&notes[i], &unique[j], false) {
				seen = true
				break
			}
		}
		if !seen {
			unique = append(unique, notes[i])
		}
	}
	return unique
}

// UniqueSequences removes duplicate sequences while preserving order, using
// EqualSequences as the comparator.
func UniqueSequences(seqs []*Sequence) []*Sequence {
	var unique []*Sequence
	for _, s := range seqs {
		seen := false
		for _, u := range unique {
			if EqualSequences(s, u) {
				seen = true
				break
			}
		}
		if !seen {
			unique = append(unique, s)
		}
	}
	return unique
}
