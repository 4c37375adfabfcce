package autotile

import (
	"errors"
	"testing"
)

func TestDirectionString(t *testing.T) {
	tests := []struct {
		d    Direction
		want string
	}{
		{North, "north"},
		{East, "east"},
		{South, "south"},
		{West, "west"},
		{Direction(99), "unknown"},
	}

	for _, tc := range tests {
		if got := tc.d.String(); got != tc.want {
			t.Errorf("Direction(%d).String() = %q, want %q", tc.d, got, tc.want)
		}
	}
}

func TestDirectionOpposite(t *testing.T) {
	tests := []struct {
		d    Direction
		want Direction
	}{
		{North, South},
		{South, North},
		{East, West},
		{West, East},
	}

	for _, tc := range tests {
		if got := tc.d.Opposite(); got != tc.want {
			t.Errorf("%s.Opposite() = %s, want %s", tc.d, got, tc.want)
		}
	}
}

func TestParseConstraintLetter(t *testing.T) {
	tests := []struct {
		letter   byte
		dir      Direction
		strength Strength
		ok       bool
	}{
		{'N', North, Hard, true},
		{'E', East, Hard, true},
		{'S', South, Hard, true},
		{'W', West, Hard, true},
		{'n', North, Soft, true},
		{'e', East, Soft, true},
		{'s', South, Soft, true},
		{'w', West, Soft, true},
		{'x', 0, 0, false},
		{'1', 0, 0, false},
	}

	for _, tc := range tests {
		dir, strength, ok := parseConstraintLetter(tc.letter)
		if ok != tc.ok {
			t.Errorf("parseConstraintLetter(%q) ok = %v, want %v", tc.letter, ok, tc.ok)
			continue
		}
		if ok && (dir != tc.dir || strength != tc.strength) {
			t.Errorf("parseConstraintLetter(%q) = %s/%s, want %s/%s", tc.letter, dir, strength, tc.dir, tc.strength)
		}
	}
}

func TestConstraintString(t *testing.T) {
	tests := []struct {
		c    Constraint
		want string
	}{
		{Constraint{Dir: North, Strength: Hard, TileID: 5}, "@N5"},
		{Constraint{Dir: South, Strength: Soft, TileID: 12}, "@s12"},
		{Constraint{Dir: West, Strength: Soft, TileID: 0}, "@w0"},
	}

	for _, tc := range tests {
		if got := tc.c.String(); got != tc.want {
			t.Errorf("Constraint.String() = %q, want %q", got, tc.want)
		}
	}
}

func TestCompassNeighbor(t *testing.T) {
	origin := Point{X: 5, Y: 5}
	standard := StandardCompass()

	tests := []struct {
		dir  Direction
		want Point
	}{
		{North, Point{5, 4}},
		{South, Point{5, 6}},
		{East, Point{6, 5}},
		{West, Point{4, 5}},
	}
	for _, tc := range tests {
		if got := standard.Neighbor(origin, tc.dir); got != tc.want {
			t.Errorf("StandardCompass.Neighbor(%s) = %v, want %v", tc.dir, got, tc.want)
		}
	}

	mirrored := MirroredCompass()
	if got := mirrored.Neighbor(origin, East); got != (Point{4, 5}) {
		t.Errorf("MirroredCompass.Neighbor(east) = %v, want (4,5)", got)
	}
	if got := mirrored.Neighbor(origin, West); got != (Point{6, 5}) {
		t.Errorf("MirroredCompass.Neighbor(west) = %v, want (6,5)", got)
	}
	if got := mirrored.Neighbor(origin, North); got != (Point{5, 4}) {
		t.Errorf("MirroredCompass.Neighbor(north) = %v, want (5,4)", got)
	}
}

func TestCompassByName(t *testing.T) {
	if c, err := CompassByName(""); err != nil || c != StandardCompass() {
		t.Errorf("CompassByName(\"\") = %v, %v; want standard", c, err)
	}
	if c, err := CompassByName("mirrored"); err != nil || c != MirroredCompass() {
		t.Errorf("CompassByName(mirrored) = %v, %v; want mirrored", c, err)
	}
	if _, err := CompassByName("diagonal"); !errors.Is(err, ErrUnknownCompass) {
		t.Errorf("CompassByName(diagonal) error = %v, want ErrUnknownCompass", err)
	}
}
