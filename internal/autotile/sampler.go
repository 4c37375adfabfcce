package autotile

// Sample reads the open/blocked classification of the 3x3 neighborhood around
// p. Cells outside the grid read as Open so map edges tile as if bordered by
// walkable space.
func Sample(g Grid, p Point) Pattern {
	var pattern Pattern
	for i, off := range Offsets {
		n := p.Add(off)
		if !InBounds(g, n) || g.IsOpen(n.X, n.Y) {
			pattern[i] = Open
		} else {
			pattern[i] = Blocked
		}
	}
	return pattern
}
