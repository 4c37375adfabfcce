package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lawnchairsociety/autotile/internal/autotile"
	"github.com/lawnchairsociety/autotile/internal/layout"
	"github.com/lawnchairsociety/autotile/internal/logger"
	"github.com/lawnchairsociety/autotile/internal/mapfile"
	"github.com/lawnchairsociety/autotile/internal/store"
)

// ResolveOptions holds flags for the resolve command.
type ResolveOptions struct {
	Layout    string
	Maze      string
	Rooms     string
	RoomCount int
	Rules     string
	Seed      int64
	Out       string
	Save      bool
	Strict    bool
}

// NewResolveCommand creates the resolve command.
func NewResolveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ResolveOptions{}

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve tile ids for a layout",
		Long: `Resolve tile ids for a layout read from a file or generated on the fly.

The layout comes from exactly one of --layout, --maze or --rooms. The
resolved map is printed as a table of tile ids, or written as YAML with
--out. Cells no rule could resolve are marked with '!'.`,
		Example: `  autotile resolve --layout data/keep.map
  autotile resolve --maze 12x8 --seed 7 --out maze.yaml --save
  autotile resolve --rooms 60x40 --room-count 10 --rules data/cave.rules`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("seed") {
				opts.Seed = rootOpts.Config.Solver.Seed
			}
			return runResolve(cmd, rootOpts, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Layout, "layout", "l", "", "layout file ('.' open, '#' blocked)")
	cmd.Flags().StringVar(&opts.Maze, "maze", "", "generate a maze of WxH cells")
	cmd.Flags().StringVar(&opts.Rooms, "rooms", "", "generate a WxH grid of connected rooms")
	cmd.Flags().IntVar(&opts.RoomCount, "room-count", 8, "rooms to place with --rooms")
	cmd.Flags().StringVarP(&opts.Rules, "rules", "r", "", "rule file (overrides the config)")
	cmd.Flags().Int64VarP(&opts.Seed, "seed", "s", 0, "random seed (overrides the config)")
	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "write the resolved map as YAML to this file")
	cmd.Flags().BoolVar(&opts.Save, "save", false, "save the run to the store")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "fail when any cell is left unresolvable")

	return cmd
}

func runResolve(cmd *cobra.Command, rootOpts *RootOptions, opts *ResolveOptions) error {
	cfg := rootOpts.Config
	if opts.Rules != "" {
		cfg.Rules.Path = opts.Rules
	}

	grid, source, err := buildLayout(opts, opts.Seed)
	if err != nil {
		return err
	}

	rules, err := cfg.LoadRules()
	if err != nil {
		return WrapExitError(ExitFailure, "failed to load rules", err)
	}

	solverOpts, err := cfg.SolverOptions()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid solver options", err)
	}
	solverOpts.Seed = opts.Seed

	logger.Debug("Resolving layout", "source", source, "width", grid.Width(), "height", grid.Height(), "rules", rules.Len())
	result, err := autotile.Resolve(cmd.Context(), grid, rules, solverOpts)
	if err != nil {
		return WrapExitError(ExitFailure, "resolution failed", err)
	}

	if opts.Out != "" {
		doc := mapfile.NewDocument(grid, result, cfg.RulesName())
		if err := mapfile.WriteYAMLFile(doc, opts.Out); err != nil {
			return WrapExitError(ExitCommandError, "failed to write map", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %dx%d map to %s\n", grid.Width(), grid.Height(), opts.Out)
	} else if err := mapfile.Render(cmd.OutOrStdout(), grid, result.Unresolvable); err != nil {
		return err
	}

	if opts.Save {
		s, err := store.OpenWithConfig(cfg.Store)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open store", err)
		}
		defer s.Close()

		run := store.NewRun(source, cfg.RulesName(), grid, result)
		if err := s.SaveRun(cmd.Context(), run); err != nil {
			return WrapExitError(ExitCommandError, "failed to save run", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved run %s\n", run.ID)
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "seed %d: %d passes, %d stalls, %d forced, %d unresolvable\n",
		result.Seed, result.Passes, result.Stalls, result.ForcedCollapses, len(result.Unresolvable))

	if opts.Strict && len(result.Unresolvable) > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d cells could not be resolved", len(result.Unresolvable)))
	}
	return nil
}

// buildLayout returns the grid selected by the layout flags and a short
// description of where it came from
func buildLayout(opts *ResolveOptions, seed int64) (*autotile.MapGrid, string, error) {
	sources := 0
	for _, s := range []string{opts.Layout, opts.Maze, opts.Rooms} {
		if s != "" {
			sources++
		}
	}
	if sources != 1 {
		return nil, "", NewExitError(ExitCommandError, "exactly one of --layout, --maze or --rooms is required")
	}

	switch {
	case opts.Layout != "":
		g, err := mapfile.LoadLayout(opts.Layout)
		if err != nil {
			return nil, "", WrapExitError(ExitCommandError, "failed to load layout", err)
		}
		return g, opts.Layout, nil

	case opts.Maze != "":
		w, h, err := parseSize(opts.Maze)
		if err != nil {
			return nil, "", WrapExitError(ExitCommandError, "invalid --maze", err)
		}
		return layout.Maze(w, h, seed), "maze " + opts.Maze, nil

	default:
		w, h, err := parseSize(opts.Rooms)
		if err != nil {
			return nil, "", WrapExitError(ExitCommandError, "invalid --rooms", err)
		}
		if opts.RoomCount < 1 {
			return nil, "", NewExitError(ExitCommandError, "--room-count must be at least 1")
		}
		return layout.Rooms(w, h, opts.RoomCount, seed), "rooms " + opts.Rooms, nil
	}
}

// parseSize parses "WxH" into positive dimensions
func parseSize(s string) (int, int, error) {
	ws, hs, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return 0, 0, fmt.Errorf("size %q is not WxH", s)
	}
	w, err := strconv.Atoi(ws)
	if err != nil {
		return 0, 0, fmt.Errorf("size %q: bad width: %w", s, err)
	}
	h, err := strconv.Atoi(hs)
	if err != nil {
		return 0, 0, fmt.Errorf("size %q: bad height: %w", s, err)
	}
	if w < 1 || h < 1 {
		return 0, 0, fmt.Errorf("size %q must be positive", s)
	}
	return w, h, nil
}
