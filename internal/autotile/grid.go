package autotile

// Grid is the host map the engine reads classifications from and writes tile
// ids to. IsOpen and TileID are only called for in-bounds coordinates.
type Grid interface {
	Width() int
	Height() int
	IsOpen(x, y int) bool
	TileID(x, y int) int
	SetTileID(x, y, id int)
}

// DebugOverlay is implemented by grids that can visualize ambiguity
type DebugOverlay interface {
	SetDebugOverlay(x, y int, intensity float64)
}

// InBounds returns true if p lies inside g
func InBounds(g Grid, p Point) bool {
	return p.X >= 0 && p.X < g.Width() && p.Y >= 0 && p.Y < g.Height()
}

// MapGrid is an in-memory Grid backed by row-major slices
type MapGrid struct {
	width, height int
	open          []bool
	tiles         []int
	overlay       []float64
}

// NewMapGrid creates a grid with every cell blocked and tile id 0
func NewMapGrid(width, height int) *MapGrid {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	n := width * height
	return &MapGrid{
		width:   width,
		height:  height,
		open:    make([]bool, n),
		tiles:   make([]int, n),
		overlay: make([]float64, n),
	}
}

// NewMapGridFromRows builds a grid from rows of '.' (open) and '#' (blocked).
// Short rows are padded with blocked cells.
func NewMapGridFromRows(rows ...string) *MapGrid {
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	g := NewMapGrid(width, len(rows))
	for y, row := range rows {
		for x := 0; x < len(row); x++ {
			g.SetOpen(x, y, row[x] != '#')
		}
	}
	return g
}

func (g *MapGrid) index(x, y int) int {
	return y*g.width + x
}

// Width returns the grid width
func (g *MapGrid) Width() int { return g.width }

// Height returns the grid height
func (g *MapGrid) Height() int { return g.height }

// IsOpen returns true if the cell is walkable. Out-of-range cells are blocked.
func (g *MapGrid) IsOpen(x, y int) bool {
	if x < 0 || x >= g.width || y < 0 || y >= g.height {
		return false
	}
	return g.open[g.index(x, y)]
}

// SetOpen sets the open/blocked classification of a cell
func (g *MapGrid) SetOpen(x, y int, open bool) {
	if x < 0 || x >= g.width || y < 0 || y >= g.height {
		return
	}
	g.open[g.index(x, y)] = open
}

// TileID returns the tile id at the given position, or 0 when out of range
func (g *MapGrid) TileID(x, y int) int {
	if x < 0 || x >= g.width || y < 0 || y >= g.height {
		return 0
	}
	return g.tiles[g.index(x, y)]
}

// SetTileID sets the tile id at the given position
func (g *MapGrid) SetTileID(x, y, id int) {
	if x < 0 || x >= g.width || y < 0 || y >= g.height {
		return
	}
	g.tiles[g.index(x, y)] = id
}

// SetDebugOverlay records the ambiguity intensity for a cell
func (g *MapGrid) SetDebugOverlay(x, y int, intensity float64) {
	if x < 0 || x >= g.width || y < 0 || y >= g.height {
		return
	}
	g.overlay[g.index(x, y)] = intensity
}

// DebugOverlayAt returns the last intensity recorded for a cell
func (g *MapGrid) DebugOverlayAt(x, y int) float64 {
	if x < 0 || x >= g.width || y < 0 || y >= g.height {
		return 0
	}
	return g.overlay[g.index(x, y)]
}

// Rows returns the tile ids row by row
func (g *MapGrid) Rows() [][]int {
	rows := make([][]int, g.height)
	for y := 0; y < g.height; y++ {
		rows[y] = make([]int, g.width)
		copy(rows[y], g.tiles[y*g.width:(y+1)*g.width])
	}
	return rows
}

// OpenCount returns the number of open cells
func (g *MapGrid) OpenCount() int {
	count := 0
	for _, open := range g.open {
		if open {
			count++
		}
	}
	return count
}
