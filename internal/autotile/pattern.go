package autotile

import "strings"

// NeighborState is the classification of one cell in a 3x3 neighborhood
type NeighborState uint8

const (
	Open NeighborState = iota
	Blocked
	// Wildcard only ever appears on the rule side of a comparison.
	Wildcard
)

// String returns the pattern symbol for the state
func (s NeighborState) String() string {
	switch s {
	case Open:
		return "_"
	case Blocked:
		return "X"
	case Wildcard:
		return "?"
	default:
		return "!"
	}
}

// PatternSize is the number of cells in a neighborhood, center included.
const PatternSize = 9

// Offsets lists the relative positions a Pattern covers, row by row from the
// north-west corner. Pattern index i corresponds to Offsets[i].
var Offsets = [PatternSize]Point{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {0, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// Pattern is a 3x3 tri-state neighborhood. It is a value type and can be used
// as a map key.
type Pattern [PatternSize]NeighborState

// DecodePattern parses a 9-symbol string: '_' open, 'X' blocked, '?' wildcard.
func DecodePattern(text string) (Pattern, error) {
	var p Pattern
	if len(text) != PatternSize {
		return p, &MalformedPatternError{Text: text, Pos: -1}
	}
	for i := 0; i < PatternSize; i++ {
		switch text[i] {
		case '_':
			p[i] = Open
		case 'X':
			p[i] = Blocked
		case '?':
			p[i] = Wildcard
		default:
			return Pattern{}, &MalformedPatternError{Text: text, Pos: i}
		}
	}
	return p, nil
}

// EncodePattern is the inverse of DecodePattern.
func EncodePattern(p Pattern) string {
	var b strings.Builder
	b.Grow(PatternSize)
	for _, s := range p {
		b.WriteString(s.String())
	}
	return b.String()
}

func (p Pattern) String() string {
	return EncodePattern(p)
}

// Grid renders the pattern as three lines, the way rule files lay it out.
func (p Pattern) Grid() string {
	s := EncodePattern(p)
	return s[0:3] + "\n" + s[3:6] + "\n" + s[6:9]
}

// Matches reports whether every position agrees with observed. A wildcard on
// either side satisfies its position.
func (p Pattern) Matches(observed Pattern) bool {
	for i := range p {
		if p[i] == Wildcard || observed[i] == Wildcard {
			continue
		}
		if p[i] != observed[i] {
			return false
		}
	}
	return true
}

// Center returns the state of the middle cell
func (p Pattern) Center() NeighborState {
	return p[4]
}
