// Package mapfile reads open/blocked layouts and writes resolved tile maps.
package mapfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lawnchairsociety/autotile/internal/autotile"
)

var ErrBadLayout = errors.New("mapfile: bad layout")

// ParseLayout reads a text layout, one row per line. '.', '_' and ' ' are
// open, '#' and 'X' are blocked. Short rows are padded with blocked cells and
// trailing blank lines are ignored.
func ParseLayout(r io.Reader) (*autotile.MapGrid, error) {
	var rows []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		rows = append(rows, strings.TrimRight(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read layout: %w", err)
	}

	for len(rows) > 0 && strings.TrimSpace(rows[len(rows)-1]) == "" {
		rows = rows[:len(rows)-1]
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrBadLayout)
	}

	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}

	g := autotile.NewMapGrid(width, len(rows))
	for y, row := range rows {
		for x := 0; x < len(row); x++ {
			switch row[x] {
			case '.', '_', ' ':
				g.SetOpen(x, y, true)
			case '#', 'X':
			default:
				return nil, fmt.Errorf("%w: line %d column %d: unexpected %q", ErrBadLayout, y+1, x+1, row[x])
			}
		}
	}
	return g, nil
}

// LoadLayout reads a layout file
func LoadLayout(path string) (*autotile.MapGrid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open layout: %w", err)
	}
	defer f.Close()

	g, err := ParseLayout(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}
