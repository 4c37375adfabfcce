package autotile

import "fmt"

// Point is a grid coordinate
type Point struct {
	X, Y int
}

// Add returns p offset by o
func (p Point) Add(o Point) Point {
	return Point{X: p.X + o.X, Y: p.Y + o.Y}
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Direction represents a cardinal direction in the grid
type Direction int

const (
	North Direction = iota
	East
	South
	West
)

// String returns the string representation of a Direction
func (d Direction) String() string {
	switch d {
	case North:
		return "north"
	case East:
		return "east"
	case South:
		return "south"
	case West:
		return "west"
	default:
		return "unknown"
	}
}

// Letter returns the upper-case rule-file letter for the direction
func (d Direction) Letter() byte {
	switch d {
	case North:
		return 'N'
	case East:
		return 'E'
	case South:
		return 'S'
	case West:
		return 'W'
	default:
		return '?'
	}
}

// Opposite returns the opposite direction
func (d Direction) Opposite() Direction {
	switch d {
	case North:
		return South
	case East:
		return West
	case South:
		return North
	case West:
		return East
	default:
		return d
	}
}

// AllDirections returns all four cardinal directions
func AllDirections() []Direction {
	return []Direction{North, East, South, West}
}

// Strength says how a directional constraint treats an unresolved neighbor.
type Strength int

const (
	// Hard constraints always compare against the neighbor's current tile id.
	Hard Strength = iota
	// Soft constraints may be assumed satisfied while the neighbor is pending.
	Soft
)

func (s Strength) String() string {
	if s == Soft {
		return "soft"
	}
	return "hard"
}

// Constraint requires the neighbor in Dir to carry TileID.
type Constraint struct {
	Dir      Direction
	Strength Strength
	TileID   int
}

// parseConstraintLetter maps a rule-file direction letter to its direction and
// strength. Upper case is hard, lower case is soft.
func parseConstraintLetter(c byte) (Direction, Strength, bool) {
	switch c {
	case 'N':
		return North, Hard, true
	case 'E':
		return East, Hard, true
	case 'S':
		return South, Hard, true
	case 'W':
		return West, Hard, true
	case 'n':
		return North, Soft, true
	case 'e':
		return East, Soft, true
	case 's':
		return South, Soft, true
	case 'w':
		return West, Soft, true
	}
	return 0, 0, false
}

// String renders the constraint in rule-file form, e.g. "@N5" or "@s12".
func (c Constraint) String() string {
	letter := c.Dir.Letter()
	if c.Strength == Soft {
		letter += 'a' - 'A'
	}
	return fmt.Sprintf("@%c%d", letter, c.TileID)
}

// Compass maps each direction to the grid offset of its neighbor, indexed by
// Direction.
type Compass [4]Point

// StandardCompass has north at y-1 and east at x+1.
func StandardCompass() Compass {
	return Compass{
		North: {X: 0, Y: -1},
		East:  {X: 1, Y: 0},
		South: {X: 0, Y: 1},
		West:  {X: -1, Y: 0},
	}
}

// MirroredCompass swaps east and west. Some rule corpora were authored against
// this mapping and only tile correctly with it.
func MirroredCompass() Compass {
	c := StandardCompass()
	c[East], c[West] = c[West], c[East]
	return c
}

// CompassByName returns the compass for a config name ("standard" or "mirrored").
func CompassByName(name string) (Compass, error) {
	switch name {
	case "", "standard":
		return StandardCompass(), nil
	case "mirrored":
		return MirroredCompass(), nil
	}
	return Compass{}, fmt.Errorf("%w: %q", ErrUnknownCompass, name)
}

// Neighbor returns the coordinates of the neighbor in the given direction
func (c Compass) Neighbor(p Point, dir Direction) Point {
	return p.Add(c[dir])
}
