package mapfile

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/lawnchairsociety/autotile/internal/autotile"
)

// Render writes the grid's tile ids as a right-aligned text table. Cells in
// unresolvable are suffixed with '!'.
func Render(w io.Writer, g autotile.Grid, unresolvable []autotile.Point) error {
	flagged := make(autotile.PointSet, len(unresolvable))
	for _, p := range unresolvable {
		flagged[p] = struct{}{}
	}

	width := 1
	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			width = max(width, len(strconv.Itoa(g.TileID(x, y))))
		}
	}

	bw := bufio.NewWriter(w)
	cells := make([]string, g.Width())
	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			id := strconv.Itoa(g.TileID(x, y))
			mark := " "
			if flagged.Has(autotile.Point{X: x, Y: y}) {
				mark = "!"
			}
			cells[x] = strings.Repeat(" ", width-len(id)) + id + mark
		}
		line := strings.TrimRight(strings.Join(cells, " "), " ")
		if _, err := bw.WriteString(line + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}
