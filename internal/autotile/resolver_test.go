package autotile

import (
	"math/rand"
	"strings"
	"testing"
)

func mustRules(t *testing.T, text string) *RuleSet {
	t.Helper()
	rs, err := ParseRules(strings.NewReader(text))
	if err != nil {
		t.Fatalf("ParseRules failed: %v", err)
	}
	return rs
}

func newTestResolver(t *testing.T, text string, compass Compass) *Resolver {
	t.Helper()
	return NewResolver(mustRules(t, text), compass, rand.New(rand.NewSource(1)))
}

func equalIDs(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestResolveSingleMatch(t *testing.T) {
	r := newTestResolver(t, "10\n_________\n", StandardCompass())
	g := NewMapGridFromRows("...", "...", "...")

	for i := 0; i < 20; i++ {
		if got := r.Resolve(g, Point{1, 1}, nil, true); !equalIDs(got, []int{10}) {
			t.Fatalf("Resolve = %v, want [10]", got)
		}
	}
}

func TestResolveNoMatch(t *testing.T) {
	r := newTestResolver(t, "10\n_________\n", StandardCompass())
	g := NewMapGridFromRows("...", ".#.", "...")

	if got := r.Resolve(g, Point{1, 1}, nil, true); got != nil {
		t.Errorf("Resolve on unmatched cell = %v, want nil", got)
	}
}

func TestResolveWeightedBias(t *testing.T) {
	r := newTestResolver(t, "1:9\n_________\n\n2:1\n_________\n", StandardCompass())
	g := NewMapGridFromRows("...", "...", "...")

	const trials = 10000
	counts := map[int]int{}
	for i := 0; i < trials; i++ {
		got := r.Resolve(g, Point{1, 1}, nil, true)
		if len(got) != 1 {
			t.Fatalf("unconstrained Resolve returned %v, want a single pick", got)
		}
		counts[got[0]]++
	}

	ratio := float64(counts[1]) / trials
	if ratio < 0.87 || ratio > 0.93 {
		t.Errorf("tile 1 picked %.3f of the time, want 0.90 +/- 0.03 (counts %v)", ratio, counts)
	}
}

func TestResolveHardConstraint(t *testing.T) {
	r := newTestResolver(t, "7@N5\n?????????\n\n8\n?????????\n", StandardCompass())
	g := NewMapGridFromRows("...", "...", "...")
	north := Point{1, 0}

	g.SetTileID(north.X, north.Y, 4)
	if got := r.Resolve(g, Point{1, 1}, nil, true); !equalIDs(got, []int{8}) {
		t.Errorf("Resolve with north=4 = %v, want [8]", got)
	}

	// Hard constraints ignore pending and always read the grid
	pending := PointSet{north: {}}
	if got := r.Resolve(g, Point{1, 1}, pending, true); !equalIDs(got, []int{8}) {
		t.Errorf("Resolve with pending north=4 = %v, want [8]", got)
	}

	g.SetTileID(north.X, north.Y, 5)
	if got := r.Resolve(g, Point{1, 1}, nil, true); !equalIDs(got, []int{7, 8}) {
		t.Errorf("Resolve with north=5 = %v, want [7 8]", got)
	}
}

func TestResolveSoftConstraint(t *testing.T) {
	r := newTestResolver(t, "7@n5\n?????????\n\n8\n?????????\n", StandardCompass())
	g := NewMapGridFromRows("...", "...", "...")
	north := Point{1, 0}
	pending := PointSet{north: {}}

	tests := []struct {
		name       string
		pending    PointSet
		optimistic bool
		northTile  int
		want       []int
	}{
		{"pending optimistic", pending, true, 0, []int{7, 8}},
		{"pending strict", pending, false, 0, []int{8}},
		{"pending strict even when matching", pending, false, 5, []int{8}},
		{"committed mismatch", nil, true, 3, []int{8}},
		{"committed match", nil, true, 5, []int{7, 8}},
		{"committed match strict", nil, false, 5, []int{7, 8}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g.SetTileID(north.X, north.Y, tc.northTile)
			if got := r.Resolve(g, Point{1, 1}, tc.pending, tc.optimistic); !equalIDs(got, tc.want) {
				t.Errorf("Resolve = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestResolveOutOfBoundsConstraintFails(t *testing.T) {
	r := newTestResolver(t, "7@N5\n?????????\n\n8\n?????????\n", StandardCompass())
	g := NewMapGridFromRows("...", "...")

	if got := r.Resolve(g, Point{0, 0}, nil, true); !equalIDs(got, []int{8}) {
		t.Errorf("Resolve on top row = %v, want [8]", got)
	}
}

func TestResolveDeduplicatesTileIDs(t *testing.T) {
	r := newTestResolver(t, "7@N5\n?????????\n\n7@S6\n?????????\n\n8\n?????????\n", StandardCompass())
	g := NewMapGridFromRows("...", "...", "...")
	g.SetTileID(1, 0, 5)
	g.SetTileID(1, 2, 6)

	if got := r.Resolve(g, Point{1, 1}, nil, true); !equalIDs(got, []int{7, 8}) {
		t.Errorf("Resolve = %v, want [7 8]", got)
	}
}

func TestResolveMirroredCompass(t *testing.T) {
	text := "7@E5\n?????????\n\n8\n?????????\n"
	g := NewMapGridFromRows("...", "...", "...")
	g.SetTileID(0, 1, 5) // west of center

	standard := newTestResolver(t, text, StandardCompass())
	if got := standard.Resolve(g, Point{1, 1}, nil, true); !equalIDs(got, []int{8}) {
		t.Errorf("standard Resolve = %v, want [8]", got)
	}

	mirrored := newTestResolver(t, text, MirroredCompass())
	if got := mirrored.Resolve(g, Point{1, 1}, nil, true); !equalIDs(got, []int{7, 8}) {
		t.Errorf("mirrored Resolve = %v, want [7 8]", got)
	}
}

func TestResolveDoesNotWriteGrid(t *testing.T) {
	r := newTestResolver(t, "7@n5\n?????????\n\n8:2\n?????????\n", StandardCompass())
	g := NewMapGridFromRows("...", "...", "...")
	before := g.Rows()

	r.Resolve(g, Point{1, 1}, PointSet{{1, 0}: {}}, true)
	after := g.Rows()
	for y := range before {
		if !equalIDs(before[y], after[y]) {
			t.Fatalf("Resolve modified row %d: %v -> %v", y, before[y], after[y])
		}
	}
}

func TestWeightedPickSingleRule(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	rules := []Rule{{TileID: 4, Weight: 0.25}}
	for i := 0; i < 10; i++ {
		if got := WeightedPick(rng, rules); got.TileID != 4 {
			t.Fatalf("WeightedPick = %d, want 4", got.TileID)
		}
	}
}

func TestPointSetSorted(t *testing.T) {
	set := PointSet{{2, 1}: {}, {0, 1}: {}, {5, 0}: {}}
	got := set.Sorted()
	want := []Point{{5, 0}, {0, 1}, {2, 1}}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Sorted() = %v, want %v", got, want)
		}
	}
}
