package autotile

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/lawnchairsociety/autotile/internal/logger"
	"github.com/lawnchairsociety/autotile/internal/telemetry"
)

var ErrSolved = errors.New("autotile: solver already ran")

const (
	DefaultFallbackTile  = 99
	DefaultAmbiguousTile = 98
)

// Phase is the state of a Solver run
type Phase int

const (
	PhaseInitial Phase = iota
	PhasePropagating
	PhaseStalled
	PhaseForced
	PhaseDone
)

// String returns the string representation of a Phase
func (p Phase) String() string {
	switch p {
	case PhaseInitial:
		return "initial"
	case PhasePropagating:
		return "propagating"
	case PhaseStalled:
		return "stalled"
	case PhaseForced:
		return "forced"
	case PhaseDone:
		return "done"
	default:
		return "unknown"
	}
}

// Options configures a Solver
type Options struct {
	Seed int64

	// FallbackTile is committed to cells no rule can resolve.
	FallbackTile int

	// AmbiguousTile marks cells that still have several candidates after a
	// refinement pass. It is overwritten once the cell commits.
	AmbiguousTile int

	// Compass maps constraint directions to neighbor offsets. The zero value
	// means StandardCompass.
	Compass Compass

	// RetireUnresolvable drops cells whose neighborhood matches no rule at all
	// from the pending set after their first failure instead of re-checking
	// them every pass.
	RetireUnresolvable bool

	// DebugOverlay writes ambiguity intensities to grids implementing
	// DebugOverlay.
	DebugOverlay bool
}

// DefaultOptions returns options with the default marker tiles
func DefaultOptions(seed int64) Options {
	return Options{
		Seed:          seed,
		FallbackTile:  DefaultFallbackTile,
		AmbiguousTile: DefaultAmbiguousTile,
		Compass:       StandardCompass(),
	}
}

// Result summarizes a finished run
type Result struct {
	Width, Height int
	Seed          int64

	Passes          int // refinement passes, first pass excluded
	Stalls          int
	Commits         int
	Verified        int // commits made by strict verification while stalled
	ForcedCollapses int

	// Unresolvable lists the cells left on the fallback tile, sorted by row.
	Unresolvable []Point

	Duration time.Duration
}

// Solver drives repeated resolution passes over a grid until every cell is
// committed or only unresolvable cells remain. A Solver is single use and must
// not be shared between goroutines.
type Solver struct {
	grid     Grid
	rules    *RuleSet
	resolver *Resolver
	opts     Options
	rng      *rand.Rand
	log      *slog.Logger

	phase        Phase
	pending      map[Point][]int
	unresolvable PointSet
	stats        Result
}

// NewSolver creates a solver for grid using rules
func NewSolver(grid Grid, rules *RuleSet, opts Options) (*Solver, error) {
	if grid == nil {
		return nil, ErrNilGrid
	}
	if rules == nil {
		return nil, ErrNilRules
	}
	if opts.Compass == (Compass{}) {
		opts.Compass = StandardCompass()
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	return &Solver{
		grid:         grid,
		rules:        rules,
		resolver:     NewResolver(rules, opts.Compass, rng),
		opts:         opts,
		rng:          rng,
		log:          logger.With("component", "solver", "seed", opts.Seed),
		phase:        PhaseInitial,
		pending:      make(map[Point][]int),
		unresolvable: make(PointSet),
		stats: Result{
			Width:  grid.Width(),
			Height: grid.Height(),
			Seed:   opts.Seed,
		},
	}, nil
}

// Phase returns the current phase
func (s *Solver) Phase() Phase {
	return s.phase
}

// Pending returns a copy of the pending set
func (s *Solver) Pending() map[Point][]int {
	out := make(map[Point][]int, len(s.pending))
	for p, c := range s.pending {
		out[p] = append([]int(nil), c...)
	}
	return out
}

// IsUnresolvable returns true if p is currently flagged unresolvable
func (s *Solver) IsUnresolvable(p Point) bool {
	return s.unresolvable.Has(p)
}

func (s *Solver) setPhase(p Phase) {
	if s.phase == p {
		return
	}
	s.log.Debug("Solver phase change", "from", s.phase.String(), "to", p.String(), "pending", len(s.pending))
	s.phase = p
}

// Solve runs the full state machine. ctx only carries tracing.
func (s *Solver) Solve(ctx context.Context) (*Result, error) {
	if s.phase != PhaseInitial {
		return nil, ErrSolved
	}

	_, span := telemetry.Tracer("autotile").Start(ctx, "autotile.solve")
	defer span.End()
	start := time.Now()

	s.FirstPass()
	for len(s.pending) > 0 {
		if s.Refine() {
			continue
		}
		s.stats.Stalls++
		if !s.Force() {
			s.log.Debug("Only unresolvable cells remain", "count", len(s.pending))
			break
		}
	}
	s.setPhase(PhaseDone)

	result := s.result()
	result.Duration = time.Since(start)

	for _, p := range result.Unresolvable {
		s.log.Warn("No rule resolves cell, using fallback tile",
			"x", p.X, "y", p.Y,
			"pattern", Sample(s.grid, p).String(),
			"tile", s.opts.FallbackTile)
	}
	s.log.Info("Tile resolution complete",
		"width", result.Width,
		"height", result.Height,
		"passes", result.Passes,
		"stalls", result.Stalls,
		"forced", result.ForcedCollapses,
		"unresolvable", len(result.Unresolvable))

	span.SetAttributes(
		attribute.Int("grid.width", result.Width),
		attribute.Int("grid.height", result.Height),
		attribute.Int64("solver.seed", result.Seed),
		attribute.Int("solver.passes", result.Passes),
		attribute.Int("solver.stalls", result.Stalls),
		attribute.Int("solver.forced_collapses", result.ForcedCollapses),
		attribute.Int("solver.unresolvable", len(result.Unresolvable)),
		attribute.Int64("solver.duration_ms", result.Duration.Milliseconds()),
	)

	return result, nil
}

// FirstPass resolves every cell once with an empty pending set
func (s *Solver) FirstPass() {
	s.setPhase(PhasePropagating)
	none := PointSet{}
	for y := 0; y < s.grid.Height(); y++ {
		for x := 0; x < s.grid.Width(); x++ {
			p := Point{X: x, Y: y}
			s.apply(p, s.resolver.Resolve(s.grid, p, none, true), false)
		}
	}
}

// Refine re-resolves every pending cell against the previous round's pending
// set. It returns false when the pass resolved nothing, which means the run
// has reached a fixed point and needs Force.
func (s *Solver) Refine() bool {
	s.setPhase(PhasePropagating)
	previous := s.pendingSet()
	before := len(s.pending)

	for _, p := range previous.Sorted() {
		s.apply(p, s.resolver.Resolve(s.grid, p, previous, true), true)
	}
	s.stats.Passes++

	if len(s.pending) < before {
		return true
	}
	s.setPhase(PhaseStalled)
	return false
}

// Force breaks a stall. Cells at the smallest candidate count are verified
// strictly, with soft constraints against pending neighbors failing; each one
// that verifies is committed. If none verify, one random pending cell is
// collapsed from its raw rule matches. Force returns false when every pending
// cell is unresolvable and nothing more can be done.
func (s *Solver) Force() bool {
	target := 0
	for _, candidates := range s.pending {
		if n := len(candidates); n > 0 && (target == 0 || n < target) {
			target = n
		}
	}
	if target == 0 {
		return false
	}
	s.setPhase(PhaseForced)

	verified := 0
	for s.verifyTier(target) {
		verified++
	}
	if verified > 0 {
		return true
	}

	var live []Point
	for _, p := range s.pendingSet().Sorted() {
		if len(s.pending[p]) > 0 {
			live = append(live, p)
		}
	}
	p := live[s.rng.Intn(len(live))]
	matches := s.resolver.Matching(s.grid, p)
	if len(matches) == 0 {
		s.flagUnresolvable(p)
		return true
	}
	rule := WeightedPick(s.rng, matches)
	s.log.Debug("Forced collapse", "x", p.X, "y", p.Y, "tile", rule.TileID, "candidates", len(s.pending[p]))
	s.commit(p, rule.TileID)
	s.stats.ForcedCollapses++
	return true
}

// verifyTier commits the first cell with target candidates that passes strict
// verification. It returns false when no such cell exists.
func (s *Solver) verifyTier(target int) bool {
	current := s.pendingSet()
	for _, p := range s.pendingSet().Sorted() {
		if len(s.pending[p]) != target {
			continue
		}
		strict := s.resolver.Resolve(s.grid, p, current, false)
		if len(strict) == 0 {
			continue
		}

		allowed := make(map[int]bool, len(strict))
		for _, id := range strict {
			allowed[id] = true
		}
		var pool []Rule
		for _, r := range s.resolver.Matching(s.grid, p) {
			if allowed[r.TileID] {
				pool = append(pool, r)
			}
		}
		if len(pool) == 0 {
			continue
		}

		s.commit(p, WeightedPick(s.rng, pool).TileID)
		s.stats.Verified++
		return true
	}
	return false
}

// apply records the outcome of resolving p
func (s *Solver) apply(p Point, candidates []int, refining bool) {
	switch len(candidates) {
	case 0:
		s.flagUnresolvable(p)
	case 1:
		s.commit(p, candidates[0])
	default:
		s.pending[p] = candidates
		if !refining {
			return
		}
		s.grid.SetTileID(p.X, p.Y, s.opts.AmbiguousTile)
		if overlay, ok := s.grid.(DebugOverlay); ok && s.opts.DebugOverlay && s.rules.Len() > 0 {
			overlay.SetDebugOverlay(p.X, p.Y, float64(len(candidates))/float64(s.rules.Len()))
		}
	}
}

func (s *Solver) commit(p Point, id int) {
	s.grid.SetTileID(p.X, p.Y, id)
	delete(s.pending, p)
	delete(s.unresolvable, p)
	s.stats.Commits++
}

func (s *Solver) flagUnresolvable(p Point) {
	s.grid.SetTileID(p.X, p.Y, s.opts.FallbackTile)
	s.pending[p] = []int{}
	s.unresolvable[p] = struct{}{}

	if s.opts.RetireUnresolvable && len(s.resolver.Matching(s.grid, p)) == 0 {
		delete(s.pending, p)
	}
}

func (s *Solver) pendingSet() PointSet {
	set := make(PointSet, len(s.pending))
	for p := range s.pending {
		set[p] = struct{}{}
	}
	return set
}

func (s *Solver) result() *Result {
	r := s.stats
	r.Unresolvable = s.unresolvable.Sorted()
	return &r
}

// SortPoints sorts points by Y then X
func SortPoints(points []Point) {
	sort.Slice(points, func(i, j int) bool {
		if points[i].Y != points[j].Y {
			return points[i].Y < points[j].Y
		}
		return points[i].X < points[j].X
	})
}

// Resolve runs a fresh Solver over grid and returns its result
func Resolve(ctx context.Context, grid Grid, rules *RuleSet, opts Options) (*Result, error) {
	s, err := NewSolver(grid, rules, opts)
	if err != nil {
		return nil, err
	}
	return s.Solve(ctx)
}
