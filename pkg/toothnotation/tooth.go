package toothnotation

import (
	"fmt"
	"strings"
)

// Notation names an input representation accepted by Parse.
type Notation string

const (
	NotationFDI       Notation = "fdi"
	NotationUniversal Notation = "universal"
	NotationPalmer    Notation = "palmer"
)

// ParseNotation accepts the lowercase notation names used by the API and CLI.
func ParseNotation(s string) (Notation, error) {
	switch n := Notation(strings.ToLower(strings.TrimSpace(s))); n {
	case NotationFDI, NotationUniversal, NotationPalmer:
		return n, nil
	}
	return "", fmt.Errorf("unknown notation %q", s)
}

// Tooth holds every representation of one tooth.
type Tooth struct {
	FDI       int       `json:"fdi"`
	Universal string    `json:"universal"`
	Palmer    string    `json:"palmer"`
	Pediatric bool      `json:"pediatric"`
	Quadrant  string    `json:"quadrant"`
	Position  int       `json:"position"`
	Kind      ToothKind `json:"kind"`
}

// FromFDI expands a canonical FDI code into all representations.
func FromFDI(fdi int) (Tooth, error) {
	universal, err := FDIToUniversal(fdi)
	if err != nil {
		return Tooth{}, err
	}
	pediatric := IsPediatricFDI(fdi)
	return Tooth{
		FDI:       fdi,
		Universal: universal,
		Palmer:    FDIToPalmer(fdi),
		Pediatric: pediatric,
		Quadrant:  FDIQuadrant(fdi).String(),
		Position:  fdi % 10,
		Kind:      Kind(universal, pediatric),
	}, nil
}

// Parse reads input in the given notation. Unlike PalmerToFDI it is strict:
// the result must be a valid FDI code or ErrInvalidToothID is returned.
func Parse(input string, from Notation) (Tooth, error) {
	var fdi int
	switch from {
	case NotationFDI:
		n, ok := parseDecimal(strings.TrimSpace(input))
		if !ok {
			return Tooth{}, invalid("%s", input)
		}
		fdi = n
	case NotationUniversal:
		n, err := ToFDI(input)
		if err != nil {
			return Tooth{}, err
		}
		fdi = n
	case NotationPalmer:
		n, ok := PalmerToFDI(input)
		if !ok {
			return Tooth{}, invalid("%s", input)
		}
		fdi = n
	default:
		return Tooth{}, fmt.Errorf("unknown notation %q", from)
	}
	return FromFDI(fdi)
}
