package toothnotation

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/width"
)

var palmerPattern = regexp.MustCompile(`^(UR|UL|LL|LR)([1-8]|[A-E])$`)

// Primary FDI codes to Palmer labels. Pediatric labels keep a space between
// quadrant and letter; adult labels have none. Consumers depend on both forms.
var pediatricFDIToPalmer = map[int]string{
	55: "UR E", 54: "UR D", 53: "UR C", 52: "UR B", 51: "UR A",
	61: "UL A", 62: "UL B", 63: "UL C", 64: "UL D", 65: "UL E",
	71: "LL A", 72: "LL B", 73: "LL C", 74: "LL D", 75: "LL E",
	81: "LR A", 82: "LR B", 83: "LR C", 84: "LR D", 85: "LR E",
}

var pediatricPalmerToFDI = map[Quadrant]map[byte]int{
	UpperRight: {'A': 51, 'B': 52, 'C': 53, 'D': 54, 'E': 55},
	UpperLeft:  {'A': 61, 'B': 62, 'C': 63, 'D': 64, 'E': 65},
	LowerLeft:  {'A': 71, 'B': 72, 'C': 73, 'D': 74, 'E': 75},
	LowerRight: {'A': 81, 'B': 82, 'C': 83, 'D': 84, 'E': 85},
}

// Display relabeling used by the chart for primary teeth. Within UR and LR the
// letter order runs opposite to the FDI table above; the table is literal on
// purpose and must not be derived.
var pediatricUniversalToPalmer = map[string]string{
	"A": "UR E", "B": "UR D", "C": "UR C", "D": "UR B", "E": "UR A",
	"F": "UL A", "G": "UL B", "H": "UL C", "I": "UL D", "J": "UL E",
	"K": "LL E", "L": "LL D", "M": "LL C", "N": "LL B", "O": "LL A",
	"P": "LR A", "Q": "LR B", "R": "LR C", "S": "LR D", "T": "LR E",
}

// FDIToPalmer renders an FDI code as a Palmer label, e.g. 18 -> "UR8" and
// 55 -> "UR E". Codes it cannot map are returned stringified; 0 (no tooth)
// renders as "-".
func FDIToPalmer(fdi int) string {
	if fdi == 0 {
		return "-"
	}
	if fdi >= 11 && fdi <= 48 && ValidFDI(fdi) {
		return FDIQuadrant(fdi).String() + strconv.Itoa(fdi%10)
	}
	if label, ok := pediatricFDIToPalmer[fdi]; ok {
		return label
	}
	return strconv.Itoa(fdi)
}

// PalmerToFDI parses a Palmer label such as "ur8" or "UR E" into an FDI code.
// Matching ignores case, whitespace and character width. When the label does
// not match but the whole input is a non-zero integer, that integer is
// returned unvalidated; callers that persist the result must check ValidFDI.
// The boolean is false when nothing could be parsed.
func PalmerToFDI(label string) (int, bool) {
	clean := normalizeLabel(label)
	if clean == "" {
		return 0, false
	}

	m := palmerPattern.FindStringSubmatch(clean)
	if m == nil {
		n, err := strconv.Atoi(clean)
		if err != nil || n == 0 {
			return 0, false
		}
		return n, true
	}

	quad := parseQuadrant(m[1])
	val := m[2][0]
	if val >= '1' && val <= '8' {
		return int(quad)*10 + int(val-'0'), true
	}
	fdi, ok := pediatricPalmerToFDI[quad][val]
	return fdi, ok
}

// UniversalToPalmer renders a Universal identifier as the Palmer label shown
// on the chart. In pediatric mode the letter table is used; otherwise the id
// is read as a permanent tooth number. Unknown ids are returned unchanged.
func UniversalToPalmer(id string, pediatric bool) string {
	if id == "" {
		return ""
	}
	if pediatric {
		if label, ok := pediatricUniversalToPalmer[id]; ok {
			return label
		}
		return id
	}

	n, err := strconv.Atoi(strings.TrimSpace(id))
	if err != nil {
		return id
	}
	switch {
	case n >= 1 && n <= 8:
		return "UR" + strconv.Itoa(9-n)
	case n >= 9 && n <= 16:
		return "UL" + strconv.Itoa(n-8)
	case n >= 17 && n <= 24:
		return "LL" + strconv.Itoa(25-n)
	case n >= 25 && n <= 32:
		return "LR" + strconv.Itoa(n-24)
	}
	return id
}

func normalizeLabel(s string) string {
	s = width.Fold.String(s)
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToUpper(r)
	}, s)
}
