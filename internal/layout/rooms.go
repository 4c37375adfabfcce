package layout

import (
	"math/rand"

	"github.com/lawnchairsociety/autotile/internal/autotile"
)

const (
	minRoomSize  = 3
	maxRoomSize  = 8
	placeRetries = 50
)

// Room is an open rectangle on a generated grid
type Room struct {
	X, Y, Width, Height int
}

// Center returns the middle cell of the room
func (r Room) Center() autotile.Point {
	return autotile.Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// overlaps reports whether r and o touch, counting a one-cell margin
func (r Room) overlaps(o Room) bool {
	return r.X-1 < o.X+o.Width && o.X-1 < r.X+r.Width &&
		r.Y-1 < o.Y+o.Height && o.Y-1 < r.Y+r.Height
}

// RoomGenerator scatters rectangular rooms and joins them with corridors
type RoomGenerator struct {
	Width, Height int
	Count         int
	Rand          *rand.Rand

	Rooms []Room
}

// NewRoomGenerator creates a generator for a width x height grid
func NewRoomGenerator(width, height, count int, seed int64) *RoomGenerator {
	return &RoomGenerator{
		Width:  width,
		Height: height,
		Count:  count,
		Rand:   rand.New(rand.NewSource(seed)),
	}
}

// Generate places up to Count rooms and returns the carved grid. Rooms never
// touch the grid border. Fewer rooms are placed when the grid is too crowded.
func (rg *RoomGenerator) Generate() *autotile.MapGrid {
	g := autotile.NewMapGrid(rg.Width, rg.Height)
	rg.Rooms = nil

	for tries := 0; len(rg.Rooms) < rg.Count && tries < rg.Count*placeRetries; tries++ {
		room, ok := rg.randomRoom()
		if !ok {
			break
		}
		free := true
		for _, other := range rg.Rooms {
			if room.overlaps(other) {
				free = false
				break
			}
		}
		if !free {
			continue
		}

		carveRect(g, room)
		if len(rg.Rooms) > 0 {
			rg.connect(g, rg.Rooms[len(rg.Rooms)-1].Center(), room.Center())
		}
		rg.Rooms = append(rg.Rooms, room)
	}
	return g
}

func (rg *RoomGenerator) randomRoom() (Room, bool) {
	maxW := min(maxRoomSize, rg.Width-2)
	maxH := min(maxRoomSize, rg.Height-2)
	if maxW < minRoomSize || maxH < minRoomSize {
		return Room{}, false
	}
	w := minRoomSize + rg.Rand.Intn(maxW-minRoomSize+1)
	h := minRoomSize + rg.Rand.Intn(maxH-minRoomSize+1)
	return Room{
		X:      1 + rg.Rand.Intn(rg.Width-w-1),
		Y:      1 + rg.Rand.Intn(rg.Height-h-1),
		Width:  w,
		Height: h,
	}, true
}

// connect carves an L-shaped corridor, choosing the bend at random
func (rg *RoomGenerator) connect(g *autotile.MapGrid, from, to autotile.Point) {
	if rg.Rand.Intn(2) == 0 {
		carveRow(g, from.Y, from.X, to.X)
		carveColumn(g, to.X, from.Y, to.Y)
	} else {
		carveColumn(g, from.X, from.Y, to.Y)
		carveRow(g, to.Y, from.X, to.X)
	}
}

func carveRect(g *autotile.MapGrid, r Room) {
	for y := r.Y; y < r.Y+r.Height; y++ {
		for x := r.X; x < r.X+r.Width; x++ {
			g.SetOpen(x, y, true)
		}
	}
}

func carveRow(g *autotile.MapGrid, y, x1, x2 int) {
	for x := min(x1, x2); x <= max(x1, x2); x++ {
		g.SetOpen(x, y, true)
	}
}

func carveColumn(g *autotile.MapGrid, x, y1, y2 int) {
	for y := min(y1, y2); y <= max(y1, y2); y++ {
		g.SetOpen(x, y, true)
	}
}

// Rooms generates a width x height grid with up to count connected rooms
func Rooms(width, height, count int, seed int64) *autotile.MapGrid {
	return NewRoomGenerator(width, height, count, seed).Generate()
}
