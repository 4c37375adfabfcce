package mapfile

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lawnchairsociety/autotile/internal/autotile"
)

func TestParseLayout(t *testing.T) {
	g, err := ParseLayout(strings.NewReader("#.#\n_X \n#\n\n"))
	require.NoError(t, err)

	assert.Equal(t, 3, g.Width())
	assert.Equal(t, 3, g.Height())

	want := [][]bool{
		{false, true, false},
		{true, false, true},
		{false, false, false}, // padded
	}
	for y, row := range want {
		for x, open := range row {
			assert.Equal(t, open, g.IsOpen(x, y), "cell (%d,%d)", x, y)
		}
	}
}

func TestParseLayoutCRLF(t *testing.T) {
	g, err := ParseLayout(strings.NewReader("..\r\n##\r\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, g.Width())
	assert.Equal(t, 2, g.OpenCount())
}

func TestParseLayoutErrors(t *testing.T) {
	_, err := ParseLayout(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrBadLayout)

	_, err = ParseLayout(strings.NewReader("\n\n"))
	assert.ErrorIs(t, err, ErrBadLayout)

	_, err = ParseLayout(strings.NewReader("...\n.o.\n"))
	require.ErrorIs(t, err, ErrBadLayout)
	assert.Contains(t, err.Error(), "line 2 column 2")
}

func TestLoadLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "room.map")
	require.NoError(t, os.WriteFile(path, []byte("###\n#.#\n###\n"), 0644))

	g, err := LoadLayout(path)
	require.NoError(t, err)
	assert.Equal(t, 1, g.OpenCount())
	assert.True(t, g.IsOpen(1, 1))

	_, err = LoadLayout(filepath.Join(t.TempDir(), "missing.map"))
	assert.Error(t, err)
}

func renderGrid() *autotile.MapGrid {
	g := autotile.NewMapGrid(4, 3)
	ids := [][]int{
		{11, 11, 99, 11},
		{10, 13, 10, 12},
		{1, 2, 1, 20},
	}
	for y, row := range ids {
		for x, id := range row {
			g.SetTileID(x, y, id)
		}
	}
	return g
}

func TestRenderGolden(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, renderGrid(), []autotile.Point{{X: 2, Y: 0}}))

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "render", buf.Bytes())
}

func TestRenderEmptyGrid(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, autotile.NewMapGrid(0, 0), nil))
	assert.Empty(t, buf.String())
}

func testDocument() *Document {
	g := renderGrid()
	return NewDocument(g, &autotile.Result{
		Seed:         42,
		Passes:       2,
		Stalls:       1,
		Commits:      11,
		Verified:     1,
		Unresolvable: []autotile.Point{{X: 2, Y: 0}},
		Duration:     1500 * time.Microsecond,
	}, "default.rules")
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteYAML(&buf, testDocument()))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "# Resolved tile map 4x3\n"), out)
	assert.Contains(t, out, "# Unresolvable cells: 1\n")
	assert.Contains(t, out, "seed: 42\n")
	assert.Contains(t, out, "rules: default.rules\n")
	assert.Contains(t, out, "[11, 11, 99, 11]")
	assert.Contains(t, out, "[1, 2, 1, 20]")
	assert.Contains(t, out, "[2, 0]")
	assert.Contains(t, out, "duration_ms: 1\n")
}

func TestWriteYAMLOmitsEmptyUnresolvable(t *testing.T) {
	doc := testDocument()
	doc.Unresolvable = nil

	var buf bytes.Buffer
	require.NoError(t, WriteYAML(&buf, doc))
	assert.NotContains(t, buf.String(), "unresolvable:")
}

func TestReadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	doc := testDocument()
	require.NoError(t, WriteYAMLFile(doc, path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	got, err := ReadYAML(f)
	require.NoError(t, err)
	assert.Equal(t, doc, got)
}
