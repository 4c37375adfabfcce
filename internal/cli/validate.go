package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lawnchairsociety/autotile/internal/autotile"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <rules>",
		Short: "Parse a rule file and report what it contains",
		Long: `Parse a rule file and report the number of rules and distinct patterns.

Fails with the offending block, line and reason on the first malformed rule.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, args[0])
		},
	}
	return cmd
}

func runValidate(cmd *cobra.Command, path string) error {
	out := cmd.OutOrStdout()

	rules, err := autotile.LoadRules(path)
	if err != nil {
		var perr *autotile.RuleParseError
		if errors.As(err, &perr) {
			fmt.Fprintf(out, "✗ %s: block %d (line %d): %s\n", path, perr.Block, perr.Line, perr.Reason)
			return WrapExitError(ExitFailure, "invalid rules", err)
		}
		return WrapExitError(ExitCommandError, "failed to read rules", err)
	}

	constrained := 0
	for _, r := range rules.Rules() {
		if r.HasConstraints() {
			constrained++
		}
	}
	fmt.Fprintf(out, "✓ %s: %d rules, %d distinct patterns, %d constrained\n",
		path, rules.Len(), rules.PatternCount(), constrained)
	return nil
}
