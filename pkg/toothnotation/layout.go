package toothnotation

import "strconv"

// ToothKind is the crown shape drawn for a chart slot.
type ToothKind string

const (
	KindMolar    ToothKind = "molar"
	KindPremolar ToothKind = "premolar"
	KindCanine   ToothKind = "canine"
	KindIncisor  ToothKind = "incisor"
)

var pediatricKinds = map[string]ToothKind{
	"A": KindMolar, "B": KindMolar, "C": KindCanine, "D": KindIncisor, "E": KindIncisor,
	"F": KindIncisor, "G": KindIncisor, "H": KindCanine, "I": KindMolar, "J": KindMolar,
	"K": KindMolar, "L": KindMolar, "M": KindCanine, "N": KindIncisor, "O": KindIncisor,
	"P": KindIncisor, "Q": KindIncisor, "R": KindCanine, "S": KindMolar, "T": KindMolar,
}

// Kind returns the crown shape for a Universal id. Unknown ids fall back to
// a molar, the widest shape.
func Kind(universal string, pediatric bool) ToothKind {
	if pediatric {
		if k, ok := pediatricKinds[universal]; ok {
			return k
		}
		return KindMolar
	}

	n, err := strconv.Atoi(universal)
	if err != nil {
		return KindMolar
	}
	switch {
	case n >= 1 && n <= 3, n >= 14 && n <= 19, n >= 30 && n <= 32:
		return KindMolar
	case n >= 4 && n <= 5, n >= 12 && n <= 13, n >= 20 && n <= 21, n >= 28 && n <= 29:
		return KindPremolar
	case n == 6, n == 11, n == 22, n == 27:
		return KindCanine
	case n >= 7 && n <= 10, n >= 23 && n <= 26:
		return KindIncisor
	}
	return KindMolar
}

// Layout is the charting coordinate system: two rows of two quadrants each,
// listed in screen order. The patient's right is drawn on the left of the
// screen, so each row reads right quadrant back-to-front then left quadrant
// front-to-back.
type Layout struct {
	Pediatric  bool     `json:"pediatric"`
	UpperRight []string `json:"upper_right"`
	UpperLeft  []string `json:"upper_left"`
	LowerRight []string `json:"lower_right"`
	LowerLeft  []string `json:"lower_left"`
}

// Upper returns the maxillary row in screen order.
func (l Layout) Upper() []string { return concat(l.UpperRight, l.UpperLeft) }

// Lower returns the mandibular row in screen order.
func (l Layout) Lower() []string { return concat(l.LowerRight, l.LowerLeft) }

// All returns every slot, upper row first.
func (l Layout) All() []string { return concat(l.Upper(), l.Lower()) }

// ArchLayout returns the Universal ids of every chart slot.
func ArchLayout(pediatric bool) Layout {
	if pediatric {
		return Layout{
			Pediatric:  true,
			UpperRight: []string{"A", "B", "C", "D", "E"},
			UpperLeft:  []string{"F", "G", "H", "I", "J"},
			LowerRight: []string{"T", "S", "R", "Q", "P"},
			LowerLeft:  []string{"O", "N", "M", "L", "K"},
		}
	}
	return Layout{
		UpperRight: numbers(1, 8),
		UpperLeft:  numbers(9, 16),
		LowerRight: numbers(32, 25),
		LowerLeft:  numbers(24, 17),
	}
}

func numbers(from, to int) []string {
	step := 1
	if to < from {
		step = -1
	}
	var out []string
	for n := from; ; n += step {
		out = append(out, strconv.Itoa(n))
		if n == to {
			break
		}
	}
	return out
}

func concat(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}
