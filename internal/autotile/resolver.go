package autotile

import "math/rand"

// PointSet is a set of grid positions
type PointSet map[Point]struct{}

// Has returns true if p is in the set
func (s PointSet) Has(p Point) bool {
	_, ok := s[p]
	return ok
}

// Sorted returns the points sorted by Y then X for deterministic iteration
func (s PointSet) Sorted() []Point {
	points := make([]Point, 0, len(s))
	for p := range s {
		points = append(points, p)
	}
	SortPoints(points)
	return points
}

// Resolver computes the candidate tile ids for a single cell
type Resolver struct {
	rules   *RuleSet
	compass Compass
	rng     *rand.Rand
}

// NewResolver creates a resolver. rng is used for weighted selection and is
// normally shared with the Solver that owns the resolver.
func NewResolver(rules *RuleSet, compass Compass, rng *rand.Rand) *Resolver {
	return &Resolver{rules: rules, compass: compass, rng: rng}
}

// Rules returns the resolver's rule set
func (r *Resolver) Rules() *RuleSet {
	return r.rules
}

// Matching returns the raw rule matches for p, ignoring constraints
func (r *Resolver) Matching(g Grid, p Point) []Rule {
	return r.rules.RulesMatching(Sample(g, p))
}

// Resolve returns the tile ids that can be placed at p. When none of the
// matching rules carry constraints the choice depends only on chance, so one
// weighted pick is made immediately. Otherwise unconstrained rules are always
// candidates and constrained rules are candidates when all their constraints
// hold. A soft constraint whose neighbor is in pending evaluates to optimistic.
// Resolve never writes to g.
func (r *Resolver) Resolve(g Grid, p Point, pending PointSet, optimistic bool) []int {
	matches := r.Matching(g, p)
	if len(matches) == 0 {
		return nil
	}

	constrained := false
	for i := range matches {
		if matches[i].HasConstraints() {
			constrained = true
			break
		}
	}
	if !constrained {
		return []int{WeightedPick(r.rng, matches).TileID}
	}

	var ids []int
	seen := make(map[int]bool)
	for i := range matches {
		rule := &matches[i]
		if !r.satisfied(g, p, rule, pending, optimistic) {
			continue
		}
		if !seen[rule.TileID] {
			seen[rule.TileID] = true
			ids = append(ids, rule.TileID)
		}
	}
	return ids
}

// satisfied checks every directional constraint on rule
func (r *Resolver) satisfied(g Grid, p Point, rule *Rule, pending PointSet, optimistic bool) bool {
	for _, c := range rule.Constraints {
		n := r.compass.Neighbor(p, c.Dir)
		if c.Strength == Soft && pending.Has(n) {
			if !optimistic {
				return false
			}
			continue
		}
		if !InBounds(g, n) {
			return false
		}
		if g.TileID(n.X, n.Y) != c.TileID {
			return false
		}
	}
	return true
}

// WeightedPick selects one rule with probability proportional to its weight.
// rules must not be empty.
func WeightedPick(rng *rand.Rand, rules []Rule) Rule {
	total := 0.0
	for i := range rules {
		total += rules[i].Weight
	}
	roll := rng.Float64() * total
	for i := range rules {
		roll -= rules[i].Weight
		if roll < 0 {
			return rules[i]
		}
	}
	return rules[len(rules)-1]
}
