package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/rtcore/internal/scenario"
)

var selftestCmd = &cobra.Command{
	Use:   "selftest",
	Short: "Run the built-in allocator scenarios",
	Long: `The selftest command replays the scenarios shipped with the runtime:
a single owner, three owners, an empty payload and an unbalanced release.

Example:
  rcctl selftest
  rcctl selftest --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSelftest()
	},
}

func init() {
	rootCmd.AddCommand(selftestCmd)
}

func runSelftest() error {
	builtins, err := scenario.Builtins()
	if err != nil {
		return err
	}

	results := make([]*scenario.Result, 0, len(builtins))
	failed := 0
	for _, s := range builtins {
		printVerbose("Running: %s\n", s.Name)
		res, err := scenario.Run(s, scenario.WithLogger(allocLogger()))
		if err != nil {
			return fmt.Errorf("%s: %w", s.Name, err)
		}
		if !res.Passed {
			failed++
		}
		results = append(results, res)
	}

	if jsonOut {
		if err := printJSON(results); err != nil {
			return err
		}
	} else {
		for _, res := range results {
			printResult(res, false)
		}
		printInfo("\n%d/%d scenarios passed\n", len(results)-failed, len(results))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d scenarios failed", failed, len(results))
	}
	return nil
}
