// Package toothnotation converts between the tooth numbering systems used on
// a dental chart: Universal (1-32 adult, A-T pediatric), FDI (ISO 3950, the
// canonical storage form) and Palmer quadrant labels.
//
// All functions are pure and safe for concurrent use.
package toothnotation

import (
	"errors"
	"fmt"
)

// ErrInvalidToothID is returned by the strict conversions when the input is
// outside the Universal adult (1-32) or pediatric (A-T) domain, or is not a
// valid FDI code.
var ErrInvalidToothID = errors.New("invalid tooth id")

// InvalidToothIDError carries the rejected input.
type InvalidToothIDError struct {
	Input string
}

func (e *InvalidToothIDError) Error() string {
	return fmt.Sprintf("invalid tooth id %q", e.Input)
}

func (e *InvalidToothIDError) Is(target error) bool {
	return target == ErrInvalidToothID
}

func invalid(format string, args ...interface{}) error {
	return &InvalidToothIDError{Input: fmt.Sprintf(format, args...)}
}

// Quadrant identifies one quarter of the mouth from the patient's point of view.
type Quadrant int

const (
	QuadrantUnknown Quadrant = iota
	UpperRight
	UpperLeft
	LowerLeft
	LowerRight
)

var quadrantLabels = [...]string{"", "UR", "UL", "LL", "LR"}

func (q Quadrant) String() string {
	if q < UpperRight || q > LowerRight {
		return ""
	}
	return quadrantLabels[q]
}

// Upper reports whether the quadrant belongs to the maxillary arch.
func (q Quadrant) Upper() bool { return q == UpperRight || q == UpperLeft }

// parseQuadrant maps a Palmer quadrant tag to its Quadrant.
func parseQuadrant(tag string) Quadrant {
	for q := UpperRight; q <= LowerRight; q++ {
		if quadrantLabels[q] == tag {
			return q
		}
	}
	return QuadrantUnknown
}

// ValidFDI reports whether fdi is one of the 52 permanent or primary FDI codes.
func ValidFDI(fdi int) bool {
	quad, pos := fdi/10, fdi%10
	switch {
	case quad >= 1 && quad <= 4:
		return pos >= 1 && pos <= 8
	case quad >= 5 && quad <= 8:
		return pos >= 1 && pos <= 5
	}
	return false
}

// IsPediatricFDI reports whether fdi is a valid primary (deciduous) tooth code.
func IsPediatricFDI(fdi int) bool {
	return ValidFDI(fdi) && fdi >= 51
}

// FDIQuadrant returns the quadrant of a valid FDI code. Pediatric quadrants
// 5-8 fold onto the same four quadrants as the adult 1-4.
func FDIQuadrant(fdi int) Quadrant {
	if !ValidFDI(fdi) {
		return QuadrantUnknown
	}
	q := fdi / 10
	if q > 4 {
		q -= 4
	}
	return Quadrant(q)
}

// AdultTeeth returns the 32 permanent FDI codes in Universal order (1..32).
func AdultTeeth() []int {
	out := make([]int, 0, 32)
	for n := 1; n <= 32; n++ {
		fdi, _ := AdultToFDI(n)
		out = append(out, fdi)
	}
	return out
}

// PediatricTeeth returns the 20 primary FDI codes in Universal order (A..T).
func PediatricTeeth() []int {
	out := make([]int, 0, len(pediatricLetters))
	for i := 0; i < len(pediatricLetters); i++ {
		out = append(out, pediatricLetterToFDI[pediatricLetters[i]])
	}
	return out
}
