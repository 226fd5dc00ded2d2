package model

// AnnotationType classifies a TextAnnotation.
type AnnotationType int

const (
	AnnotationUnknown AnnotationType = iota
	// AnnotationChordSymbol is stateful: the chord stays in effect until the
	// next chord symbol.
	AnnotationChordSymbol
	// AnnotationBeat is a stateless point-in-time marker.
	AnnotationBeat
)

// Mode is the mode of a key signature.
type Mode int

const (
	ModeMajor Mode = iota
	ModeMinor
)

type Note struct {
	Pitch      uint8
	Velocity   uint8
	Instrument int
	Program    int
	IsDrum     bool
	StartTime  float64
	EndTime    float64

	// Populated by quantization. End step is exclusive and always > start.
	QuantizedStartStep int
	QuantizedEndStep   int
}

type ControlChange struct {
	Instrument    int
	Program       int
	IsDrum        bool
	Time          float64
	ControlNumber uint8
	ControlValue  uint8
	QuantizedStep int
}

type PitchBend struct {
	Instrument    int
	Program       int
	IsDrum        bool
	Time          float64
	Bend          int
	QuantizedStep int
}

type TextAnnotation struct {
	Time           float64
	Text           string
	AnnotationType AnnotationType
	QuantizedStep  int
}

type TimeSignature struct {
	Time        float64
	Numerator   int
	Denominator int
}

type KeySignature struct {
	Time float64
	Key  int // pitch class, 0 = C
	Mode Mode
}

type Tempo struct {
	Time float64
	QPM  float64
}

type InstrumentInfo struct {
	Name       string
	Instrument int
}

// QuantizationInfo records how a Sequence was quantized. Exactly one of the
// two fields is non-zero on a quantized sequence; both are zero otherwise.
type QuantizationInfo struct {
	StepsPerQuarter int
	StepsPerSecond  float64
}

// SubsequenceInfo records the position of an extracted subsequence within its
// source sequence.
type SubsequenceInfo struct {
	StartTimeOffset float64
	EndTimeOffset   float64
}

// Sequence is the canonical in-memory record of a symbolic musical
// performance. Transformations never mutate their input unless documented;
// they Clone and return a new record.
type Sequence struct {
	ID             string
	SourcePath     string
	CollectionName string

	TicksPerQuarter int

	Notes           []Note
	ControlChanges  []ControlChange
	PitchBends      []PitchBend
	TextAnnotations []TextAnnotation
	TimeSignatures  []TimeSignature
	KeySignatures   []KeySignature
	Tempos          []Tempo
	InstrumentInfos []InstrumentInfo

	TotalTime           float64
	TotalQuantizedSteps int

	QuantizationInfo QuantizationInfo
	SubsequenceInfo  SubsequenceInfo
}

// IsQuantized reports whether the sequence has been quantized by either
// scheme.
func (s *Sequence) IsQuantized() bool {
	return s.QuantizationInfo.StepsPerQuarter > 0 || s.QuantizationInfo.StepsPerSecond > 0
}

// IsRelativeQuantized reports whether the sequence has been quantized
// relative to tempo.
func (s *Sequence) IsRelativeQuantized() bool {
	return s.QuantizationInfo.StepsPerQuarter > 0
}

// IsAbsoluteQuantized reports whether the sequence has been quantized by
// absolute time.
func (s *Sequence) IsAbsoluteQuantized() bool {
	return s.QuantizationInfo.StepsPerSecond > 0
}

// Clone returns a deep copy. All transformations clone at their boundary, so
// no derived sequence aliases its source.
func (s *Sequence) Clone() *Sequence {
	c := *s
	c.Notes = append([]Note(nil), s.Notes...)
	c.ControlChanges = append([]ControlChange(nil), s.ControlChanges...)
	c.PitchBends = append([]PitchBend(nil), s.PitchBends...)
	c.TextAnnotations = append([]TextAnnotation(nil), s.TextAnnotations...)
	c.TimeSignatures = append([]TimeSignature(nil), s.TimeSignatures...)
	c.KeySignatures = append([]KeySignature(nil), s.KeySignatures...)
	c.Tempos = append([]Tempo(nil), s.Tempos...)
	c.InstrumentInfos = append([]InstrumentInfo(nil), s.InstrumentInfos...)
	return &c
}

// CloneEmpty returns a deep copy with every event collection cleared and the
// time totals reset. Extraction-style transformations start from this.
func (s *Sequence) CloneEmpty() *Sequence {
	c := *s
	c.Notes = nil
	c.ControlChanges = nil
	c.PitchBends = nil
	c.TextAnnotations = nil
	c.TimeSignatures = nil
	c.KeySignatures = nil
	c.Tempos = nil
	c.InstrumentInfos = nil
	c.TotalTime = 0
	c.TotalQuantizedSteps = 0
	return &c
}
