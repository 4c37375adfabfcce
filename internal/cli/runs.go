package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/lawnchairsociety/autotile/internal/autotile"
	"github.com/lawnchairsociety/autotile/internal/mapfile"
	"github.com/lawnchairsociety/autotile/internal/store"
)

// NewRunsCommand creates the runs command and its show subcommand.
func NewRunsCommand(rootOpts *RootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List saved resolution runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runListRuns(cmd, rootOpts, limit)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum runs to list (0 = all)")

	cmd.AddCommand(&cobra.Command{
		Use:   "show <run-id>",
		Short: "Render a saved run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShowRun(cmd, rootOpts, args[0])
		},
	})

	return cmd
}

func openStore(rootOpts *RootOptions) (*store.Store, error) {
	s, err := store.OpenWithConfig(rootOpts.Config.Store)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open store", err)
	}
	return s, nil
}

func runListRuns(cmd *cobra.Command, rootOpts *RootOptions, limit int) error {
	s, err := openStore(rootOpts)
	if err != nil {
		return err
	}
	defer s.Close()

	runs, err := s.ListRuns(cmd.Context(), limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No saved runs")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tSOURCE\tSIZE\tSEED\tPASSES\tFORCED\tUNRESOLVABLE")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%dx%d\t%d\t%d\t%d\t%d\n",
			r.ID, r.CreatedAt.Format("2006-01-02 15:04:05"), r.Source, r.Width, r.Height,
			r.Seed, r.Passes, r.ForcedCollapses, r.UnresolvableCount())
	}
	return tw.Flush()
}

func runShowRun(cmd *cobra.Command, rootOpts *RootOptions, arg string) error {
	id, err := uuid.Parse(arg)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid run id", err)
	}

	s, err := openStore(rootOpts)
	if err != nil {
		return err
	}
	defer s.Close()

	run, err := s.LoadRun(cmd.Context(), id)
	if errors.Is(err, store.ErrRunNotFound) {
		return NewExitError(ExitFailure, fmt.Sprintf("run %s not found", id))
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load run", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Run %s (%s, seed %d, rules %s)\n", run.ID, run.Source, run.Seed, run.Rules)
	return mapfile.Render(cmd.OutOrStdout(), gridFromTiles(run.Tiles), run.Unresolvable)
}

// gridFromTiles rebuilds a grid holding saved tile ids
func gridFromTiles(rows [][]int) *autotile.MapGrid {
	width := 0
	if len(rows) > 0 {
		width = len(rows[0])
	}
	g := autotile.NewMapGrid(width, len(rows))
	for y, row := range rows {
		for x, id := range row {
			g.SetTileID(x, y, id)
		}
	}
	return g
}
