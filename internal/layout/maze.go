// Package layout builds open/blocked grids for the tile resolver to decorate.
package layout

import (
	"math/rand"

	"github.com/lawnchairsociety/autotile/internal/autotile"
)

// cell is a single maze cell before it is rendered to a grid
type cell struct {
	x, y    int
	visited bool
	walls   [4]bool // indexed by autotile.Direction, true = wall exists
}

// MazeGenerator generates a perfect maze using a DFS recursive backtracker.
// Each maze cell becomes a 1x1 open square on the output grid, separated by
// one-cell walls.
type MazeGenerator struct {
	Width, Height int
	Rand          *rand.Rand

	cells [][]*cell
}

// NewMazeGenerator creates a new maze generator measured in maze cells
func NewMazeGenerator(width, height int, seed int64) *MazeGenerator {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	mg := &MazeGenerator{
		Width:  width,
		Height: height,
		Rand:   rand.New(rand.NewSource(seed)),
		cells:  make([][]*cell, height),
	}

	// Initialize grid with all walls
	for y := 0; y < height; y++ {
		mg.cells[y] = make([]*cell, width)
		for x := 0; x < width; x++ {
			mg.cells[y][x] = &cell{x: x, y: y, walls: [4]bool{true, true, true, true}}
		}
	}
	return mg
}

// Generate carves passages starting from the center cell
func (mg *MazeGenerator) Generate() {
	mg.carveFrom(mg.Width/2, mg.Height/2)
}

func (mg *MazeGenerator) carveFrom(x, y int) {
	c := mg.cells[y][x]
	c.visited = true

	for _, dir := range mg.shuffledDirections() {
		n := autotile.StandardCompass().Neighbor(autotile.Point{X: x, Y: y}, dir)
		if mg.inBounds(n.X, n.Y) && !mg.cells[n.Y][n.X].visited {
			// Remove wall between current cell and neighbor
			c.walls[dir] = false
			mg.cells[n.Y][n.X].walls[dir.Opposite()] = false
			mg.carveFrom(n.X, n.Y)
		}
	}
}

func (mg *MazeGenerator) shuffledDirections() []autotile.Direction {
	dirs := autotile.AllDirections()
	mg.Rand.Shuffle(len(dirs), func(i, j int) {
		dirs[i], dirs[j] = dirs[j], dirs[i]
	})
	return dirs
}

func (mg *MazeGenerator) inBounds(x, y int) bool {
	return x >= 0 && x < mg.Width && y >= 0 && y < mg.Height
}

// DeadEnds returns the grid positions of maze cells with a single exit
func (mg *MazeGenerator) DeadEnds() []autotile.Point {
	var deadEnds []autotile.Point
	for y := 0; y < mg.Height; y++ {
		for x := 0; x < mg.Width; x++ {
			exits := 0
			for _, wall := range mg.cells[y][x].walls {
				if !wall {
					exits++
				}
			}
			if exits == 1 {
				deadEnds = append(deadEnds, gridPoint(x, y))
			}
		}
	}
	return deadEnds
}

// Grid renders the maze onto a (2*Width+1) x (2*Height+1) grid
func (mg *MazeGenerator) Grid() *autotile.MapGrid {
	g := autotile.NewMapGrid(2*mg.Width+1, 2*mg.Height+1)
	for y := 0; y < mg.Height; y++ {
		for x := 0; x < mg.Width; x++ {
			p := gridPoint(x, y)
			g.SetOpen(p.X, p.Y, true)

			c := mg.cells[y][x]
			if !c.walls[autotile.East] {
				g.SetOpen(p.X+1, p.Y, true)
			}
			if !c.walls[autotile.South] {
				g.SetOpen(p.X, p.Y+1, true)
			}
		}
	}
	return g
}

func gridPoint(x, y int) autotile.Point {
	return autotile.Point{X: 2*x + 1, Y: 2*y + 1}
}

// Maze generates a maze of width x height cells and renders it
func Maze(width, height int, seed int64) *autotile.MapGrid {
	mg := NewMazeGenerator(width, height, seed)
	mg.Generate()
	return mg.Grid()
}
