// Command augmentumc is the driver that wires the loader, the eligibility
// gate, the rewriter, and the type serializer into one pass: load a
// module's packages, build the composed predicate from the
// target-functions allowlist and the optional JS bridge, rewrite every
// eligible function, and either write the result back or into a debugging
// shadow tree, plus an optional stats dump.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "augmentumc [packages]",
		Short: "Rewrite Go functions into advice-dispatching extension points",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"./..."}
			}
			return run(args, flags)
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&flags.TargetFunctions, "target-functions", "", "CSV allowlist of packages/functions to instrument")
	fs.StringVar(&flags.PredicateScript, "predicate-script", "", "JS module exposing shouldInstrumentModule/shouldInstrumentFunction")
	fs.BoolVar(&flags.DryRun, "dry-run", false, "collect statistics and perform no rewriting")
	fs.StringVar(&flags.EmitTransformedIRDir, "emit-transformed-ir", "", "directory to dump rewritten source, for debugging")
	fs.StringVar(&flags.InstrumentationStatsDir, "instrumentation-stats-output", "", "directory to dump a JSON summary of instrumented functions")
	fs.StringVar(&flags.LogDebug, "log-debug", "", `"stderr"/"stdout"/a file path, or unset to disable`)
	fs.StringVar(&flags.Dir, "dir", "", "working directory to resolve packages from (defaults to the current directory)")

	return cmd
}

// runFlags mirrors instrument/config.Flags plus --dir, which (like the
// positional patterns passed to run separately) only makes sense at the
// CLI boundary, not as part of the pass's own configuration.
type runFlags struct {
	TargetFunctions         string
	PredicateScript         string
	DryRun                  bool
	EmitTransformedIRDir    string
	InstrumentationStatsDir string
	LogDebug                string
	Dir                     string
}
