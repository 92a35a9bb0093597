package toothnotation

import (
	"strconv"
	"strings"
)

const pediatricLetters = "ABCDEFGHIJKLMNOPQRST"

var pediatricLetterToFDI = map[byte]int{
	'A': 55, 'B': 54, 'C': 53, 'D': 52, 'E': 51, // upper right
	'F': 61, 'G': 62, 'H': 63, 'I': 64, 'J': 65, // upper left
	'K': 75, 'L': 74, 'M': 73, 'N': 72, 'O': 71, // lower left
	'P': 81, 'Q': 82, 'R': 83, 'S': 84, 'T': 85, // lower right
}

var pediatricFDIToLetter = func() map[int]byte {
	m := make(map[int]byte, len(pediatricLetterToFDI))
	for l, fdi := range pediatricLetterToFDI {
		m[fdi] = l
	}
	return m
}()

// ToFDI converts a Universal identifier to its FDI code. The input is either
// a decimal 1-32 (permanent dentition) or a single letter A-T (primary
// dentition). Anything else yields ErrInvalidToothID.
func ToFDI(id string) (int, error) {
	id = strings.TrimSpace(id)
	if len(id) == 1 && id[0] >= 'A' && id[0] <= 'Z' {
		return PediatricToFDI(id)
	}
	n, ok := parseDecimal(id)
	if !ok {
		return 0, invalid("%s", id)
	}
	return AdultToFDI(n)
}

// parseDecimal accepts only unsigned decimal digits without a leading zero,
// so "+5", "007" and "-3" are not tooth numbers.
func parseDecimal(s string) (int, bool) {
	if s == "" || len(s) > 2 || s[0] == '0' {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	return n, err == nil
}

// AdultToFDI converts a Universal permanent tooth number (1-32) to FDI.
func AdultToFDI(n int) (int, error) {
	switch {
	case n >= 1 && n <= 8:
		return 19 - n, nil
	case n >= 9 && n <= 16:
		return 12 + n, nil
	case n >= 17 && n <= 24:
		return 55 - n, nil
	case n >= 25 && n <= 32:
		return 16 + n, nil
	}
	return 0, invalid("%d", n)
}

// PediatricToFDI converts a Universal primary tooth letter (A-T) to FDI.
// Letters are matched exactly; lowercase is rejected.
func PediatricToFDI(letter string) (int, error) {
	if len(letter) != 1 {
		return 0, invalid("%s", letter)
	}
	fdi, ok := pediatricLetterToFDI[letter[0]]
	if !ok {
		return 0, invalid("%s", letter)
	}
	return fdi, nil
}

// FDIToUniversal is the inverse of ToFDI: permanent codes map back to their
// decimal Universal number, primary codes to their letter.
func FDIToUniversal(fdi int) (string, error) {
	if !ValidFDI(fdi) {
		return "", invalid("%d", fdi)
	}
	if l, ok := pediatricFDIToLetter[fdi]; ok {
		return string(l), nil
	}
	pos := fdi % 10
	var n int
	switch fdi / 10 {
	case 1:
		n = 9 - pos
	case 2:
		n = 8 + pos
	case 3:
		n = 25 - pos
	case 4:
		n = 24 + pos
	}
	return strconv.Itoa(n), nil
}
