// Package chordsym parses and transposes chord symbol figures like "Cmaj7",
// "F#m7b5" or "Dm7/G". A figure is root + kind + degree modifications + an
// optional slash bass; the kind grammar is a fixed abbreviation table matched
// greedily, longest abbreviation first.
package chordsym

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// ParseError reports an unparseable chord symbol figure.
type ParseError struct {
	Figure string
	Reason string
}

func (e *ParseError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("cannot parse chord symbol %q: %s", e.Figure, e.Reason)
	}
	return fmt.Sprintf("cannot parse chord symbol %q", e.Figure)
}

// chordKindPitches maps each canonical chord kind to its semitone offsets
// above the root.
var chordKindPitches = map[string][]int{
	// triads
	"":  {0, 4, 7},
	"m": {0, 3, 7},
	"+": {0, 4, 8},
	"o": {0, 3, 6},

	// sevenths
	"7":    {0, 4, 7, 10},
	"maj7": {0, 4, 7, 11},
	"m7":   {0, 3, 7, 10},
	"o7":   {0, 3, 6, 9},
	"m7b5": {0, 3, 6, 10},
	"mM7":  {0, 3, 7, 11},
	"+7":   {0, 4, 8, 10},

	// sixths
	"6":   {0, 4, 7, 9},
	"m6":  {0, 3, 7, 9},
	"6/9": {0, 4, 7, 9, 14},

	// ninths
	"9":    {0, 4, 7, 10, 14},
	"maj9": {0, 4, 7, 11, 14},
	"m9":   {0, 3, 7, 10, 14},
	"+9":   {0, 4, 8, 10, 14},

	// elevenths
	"11":    {0, 4, 7, 10, 14, 17},
	"maj11": {0, 4, 7, 11, 14, 17},
	"m11":   {0, 3, 7, 10, 14, 17},

	// thirteenths
	"13":    {0, 4, 7, 10, 14, 17, 21},
	"maj13": {0, 4, 7, 11, 14, 17, 21},
	"m13":   {0, 3, 7, 10, 14, 17, 21},

	// suspended and degenerate
	"sus2": {0, 2, 7},
	"sus4": {0, 5, 7},
	"7sus": {0, 5, 7, 10},
	"ped":  {0},
	"5":    {0, 7},
}

// chordKindAbbreviations maps every accepted spelling to its canonical kind.
var chordKindAbbreviations = map[string]string{
	"": "", "maj": "", "M": "",
	"m": "m", "min": "m", "-": "m",
	"+": "+", "aug": "+",
	"o": "o", "dim": "o",

	"7":    "7",
	"maj7": "maj7", "M7": "maj7",
	"m7": "m7", "min7": "m7", "-7": "m7",
	"o7": "o7", "dim7": "o7",
	"m7b5": "m7b5", "-7b5": "m7b5", "/o": "m7b5", "/o7": "m7b5",
	"mM7": "mM7", "m(M7)": "mM7", "m(maj7)": "mM7",
	"minmaj7": "mM7", "mmaj7": "mM7", "-(M7)": "mM7", "-maj7": "mM7",
	"+7": "+7", "aug7": "+7",

	"6":  "6",
	"m6": "m6", "min6": "m6", "-6": "m6",
	"6/9": "6/9",

	"9":    "9",
	"maj9": "maj9", "M9": "maj9",
	"m9": "m9", "min9": "m9", "-9": "m9",
	"+9": "+9", "aug9": "+9",

	"11":    "11",
	"maj11": "maj11", "M11": "maj11",
	"m11": "m11", "min11": "m11", "-11": "m11",

	"13":    "13",
	"maj13": "maj13", "M13": "maj13",
	"m13": "m13", "min13": "m13", "-13": "m13",

	"sus2": "sus2",
	"sus":  "sus4", "sus4": "sus4",
	"sus7": "7sus", "7sus": "7sus", "7sus4": "7sus",

	"ped": "ped",
	"5":   "5",
}

// pitchClassSemitones maps root letters to semitones above C.
var pitchClassSemitones = map[byte]int{
	'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11,
}

// stepsAbove gives the scale step, in semitones, from each letter to the
// next. Used when respelling a transposed root.
var stepsAbove = map[byte]int{
	'A': 2, 'B': 1, 'C': 2, 'D': 2, 'E': 1, 'F': 2, 'G': 2,
}

// degreeSemitones maps scale degree numbers to semitones above the root.
var degreeSemitones = map[int]int{
	1: 0, 2: 2, 3: 4, 4: 5, 5: 7, 6: 9, 7: 11, 9: 14, 11: 17, 13: 21,
}

const (
	rootPattern = `[A-G](?:#+|b+)?`
	modPattern  = `(?:add[#b]?|no|[#b])\d+`
)

// figureRegexp captures root, kind, modifications and bass. Kind
// abbreviations are sorted longest first so greedy alternation prefers the
// longest spelling, matching the table-driven grammar.
var figureRegexp = func() *regexp.Regexp {
	abbrevs := make([]string, 0, len(chordKindAbbreviations))
	for a := range chordKindAbbreviations {
		if a != "" {
			abbrevs = append(abbrevs, a)
		}
	}
	sort.Slice(abbrevs, func(i, j int) bool {
		if len(abbrevs[i]) != len(abbrevs[j]) {
			return len(abbrevs[i]) > len(abbrevs[j])
		}
		return abbrevs[i] < abbrevs[j]
	})
	quoted := make([]string, 0, len(abbrevs))
	for _, a := range abbrevs {
		quoted = append(quoted, regexp.QuoteMeta(a))
	}
	pattern := fmt.Sprintf(`^(%s)(%s|)((?:%s)*)(/%s)?$`,
		rootPattern, strings.Join(quoted, "|"), modPattern, rootPattern)
	return regexp.MustCompile(pattern)
}()

var modRegexp = regexp.MustCompile(`(add[#b]?|no|[#b])(\d+)`)

// SplitChordSymbol splits a figure into root, kind abbreviation, degree
// modifications and slash bass (including the slash; empty when absent).
func SplitChordSymbol(figure string) (root, kind, modifications, bass string, err error) {
	m := figureRegexp.FindStringSubmatch(figure)
	if m == nil {
		return "", "", "", "", &ParseError{Figure: figure}
	}
	return m[1], m[2], m[3], m[4], nil
}

// TransposeChordSymbol rewrites a figure the given number of semitones up
// (negative for down), respelling root and bass while leaving kind and
// modifications alone.
func TransposeChordSymbol(figure string, amount int) (string, error) {
	root, kind, modifications, bass, err := SplitChordSymbol(figure)
	if err != nil {
		return "", err
	}
	transposed := transposePitchClass(root, amount)
	if bass != "" {
		bass = "/" + transposePitchClass(bass[1:], amount)
	}
	return transposed + kind + modifications + bass, nil
}

// ChordSymbolRoot returns the root pitch class of a figure, C = 0.
func ChordSymbolRoot(figure string) (int, error) {
	root, _, _, _, err := SplitChordSymbol(figure)
	if err != nil {
		return 0, err
	}
	return pitchClass(root), nil
}

// ChordSymbolBass returns the bass pitch class of a figure: the slash bass
// when present, the root otherwise.
func ChordSymbolBass(figure string) (int, error) {
	root, _, _, bass, err := SplitChordSymbol(figure)
	if err != nil {
		return 0, err
	}
	if bass != "" {
		return pitchClass(bass[1:]), nil
	}
	return pitchClass(root), nil
}

// ChordSymbolPitches returns the pitch classes of a figure's chord tones,
// root first, after applying degree modifications.
func ChordSymbolPitches(figure string) ([]int, error) {
	root, kind, modifications, _, err := SplitChordSymbol(figure)
	if err != nil {
		return nil, err
	}
	offsets := append([]int(nil), chordKindPitches[chordKindAbbreviations[kind]]...)
	for _, m := range modRegexp.FindAllStringSubmatch(modifications, -1) {
		offsets, err = applyModification(offsets, m[1], m[2])
		if err != nil {
			return nil, &ParseError{Figure: figure, Reason: err.Error()}
		}
	}
	rootPC := pitchClass(root)
	pitches := make([]int, 0, len(offsets))
	for _, o := range offsets {
		pitches = append(pitches, (rootPC+o)%12)
	}
	return pitches, nil
}

func applyModification(offsets []int, op, degreeStr string) ([]int, error) {
	degree, err := strconv.Atoi(degreeStr)
	if err != nil {
		return nil, err
	}
	base, ok := degreeSemitones[degree]
	if !ok {
		return nil, fmt.Errorf("unknown scale degree %d", degree)
	}
	replace := func(from, to int) []int {
		for i, o := range offsets {
			if o == from {
				offsets[i] = to
				return offsets
			}
		}
		return append(offsets, to)
	}
	switch op {
	case "add":
		return append(offsets, base), nil
	case "add#":
		return append(offsets, base+1), nil
	case "addb":
		return append(offsets, base-1), nil
	case "no":
		kept := offsets[:0]
		for _, o := range offsets {
			if o != base {
				kept = append(kept, o)
			}
		}
		return kept, nil
	case "#":
		return replace(base, base+1), nil
	case "b":
		return replace(base, base-1), nil
	}
	return nil, fmt.Errorf("unknown modification %q", op)
}

func pitchClass(root string) int {
	pc := pitchClassSemitones[root[0]]
	pc += strings.Count(root, "#")
	pc -= strings.Count(root, "b")
	pc %= 12
	if pc < 0 {
		pc += 12
	}
	return pc
}

// transposePitchClass moves a spelled pitch class by amount semitones,
// walking the letter upward and respelling any leftover semitones by
// removing flats, or overshooting one letter and adding them.
func transposePitchClass(pc string, amount int) string {
	amount %= 12
	if amount < 0 {
		amount += 12
	}

	letter := pc[0]
	alter := strings.Count(pc, "#") - strings.Count(pc, "b")

	for amount >= stepsAbove[letter] {
		amount -= stepsAbove[letter]
		letter = 'A' + (letter-'A'+1)%7
	}
	if amount > 0 {
		if alter >= 0 {
			alter -= stepsAbove[letter] - amount
			letter = 'A' + (letter-'A'+1)%7
		} else {
			alter += amount
		}
	}

	if alter >= 0 {
		return string(letter) + strings.Repeat("#", alter)
	}
	return string(letter) + strings.Repeat("b", -alter)
}
