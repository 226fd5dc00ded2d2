package model

import "fmt"

// QuantizationStatusError reports that an operation received a sequence in
// the wrong quantization state (quantized where unquantized was required, or
// the wrong scheme).
type QuantizationStatusError struct {
	SequenceID string
	Want       string
}

func (e *QuantizationStatusError) Error() string {
	return fmt.Sprintf("sequence %q is not %s", e.SequenceID, e.Want)
}

// MultipleTimeSignatureError reports a time signature change where relative
// quantization demands a single meter.
type MultipleTimeSignatureError struct {
	FromNumerator, FromDenominator int
	ToNumerator, ToDenominator     int
	Time                           float64
}

func (e *MultipleTimeSignatureError) Error() string {
	return fmt.Sprintf("time signature change from %d/%d to %d/%d at %.2f seconds",
		e.FromNumerator, e.FromDenominator, e.ToNumerator, e.ToDenominator, e.Time)
}

// MultipleTempoError reports a tempo change where relative quantization
// demands a single tempo.
type MultipleTempoError struct {
	FromQPM, ToQPM float64
	Time           float64
}

func (e *MultipleTempoError) Error() string {
	return fmt.Sprintf("tempo change from %.1f qpm to %.1f qpm at %.2f seconds",
		e.FromQPM, e.ToQPM, e.Time)
}

// BadTimeSignatureError reports a zero numerator or a denominator that is not
// a power of two.
type BadTimeSignatureError struct {
	Numerator, Denominator int
	Reason                 string
}

func (e *BadTimeSignatureError) Error() string {
	return fmt.Sprintf("bad time signature %d/%d: %s", e.Numerator, e.Denominator, e.Reason)
}

// NegativeTimeError reports a computed step or time below zero.
type NegativeTimeError struct {
	Detail string
}

func (e *NegativeTimeError) Error() string {
	return "negative time: " + e.Detail
}

// NonIntegerStepsPerBarError reports a quantization resolution that does not
// divide a bar into a whole number of steps.
type NonIntegerStepsPerBarError struct {
	StepsPerBar            float64
	Numerator, Denominator int
}

func (e *NonIntegerStepsPerBarError) Error() string {
	return fmt.Sprintf("%f steps per bar with time signature %d/%d",
		e.StepsPerBar, e.Numerator, e.Denominator)
}

// IntervalOutOfRangeError reports an extraction interval that lies outside
// the source sequence, or an empty interval list.
type IntervalOutOfRangeError struct {
	Start, End float64
	TotalTime  float64
	Detail     string
}

func (e *IntervalOutOfRangeError) Error() string {
	if e.Detail != "" {
		return "bad extraction interval: " + e.Detail
	}
	return fmt.Sprintf("extraction interval [%.3f, %.3f) outside sequence of %.3f seconds",
		e.Start, e.End, e.TotalTime)
}

// PolyphonicMelodyError reports simultaneous or out-of-order note starts
// during monophonic melody extraction under a rejecting polyphony policy.
type PolyphonicMelodyError struct {
	Detail string
}

func (e *PolyphonicMelodyError) Error() string {
	if e.Detail == "" {
		return "polyphonic notes during melody extraction"
	}
	return "polyphonic melody: " + e.Detail
}
