package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/joshuapare/rtcore/internal/scenario"
)

var (
	runFailFast bool
)

func init() {
	cmd := newRunCmd()
	cmd.Flags().BoolVar(&runFailFast, "fail-fast", false, "Stop at the first failed step")
	rootCmd.AddCommand(cmd)
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Replay an allocation scenario",
		Long: `The run command replays a YAML scenario against a tracked allocator and
reports each step, the allocator counters and any leaked blocks.

Example:
  rcctl run shared.yaml
  rcctl run shared.yaml --fail-fast
  rcctl run shared.yaml --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenario(args)
		},
	}
	return cmd
}

func runScenario(args []string) error {
	path := args[0]
	printVerbose("Loading scenario: %s\n", path)

	s, err := scenario.LoadFile(path)
	if err != nil {
		return err
	}

	opts := []scenario.RunOption{scenario.WithLogger(allocLogger())}
	if runFailFast {
		opts = append(opts, scenario.WithFailFast())
	}
	res, err := scenario.Run(s, opts...)
	if err != nil {
		return err
	}

	if jsonOut {
		if err := printJSON(res); err != nil {
			return err
		}
	} else {
		printResult(res, true)
	}

	if !res.Passed {
		return fmt.Errorf("scenario %q failed: %s", res.Name, res.Failure)
	}
	return nil
}

// printResult writes a text report for res. Step lines are always shown for
// failures and only with --verbose (or showSteps) otherwise.
func printResult(res *scenario.Result, showSteps bool) {
	mode := "checked"
	if !res.Checked {
		mode = "unchecked"
	}
	printInfo("%s %s %s\n", verdict(res.Passed), render(headerStyle, res.Name), render(detailStyle, "("+mode+")"))

	for _, st := range res.Steps {
		if !showSteps && !verbose && st.OK {
			continue
		}
		mark := render(passStyle, "ok")
		if !st.OK {
			mark = render(failStyle, "!!")
		}
		line := fmt.Sprintf("  %s %3d %-10s %s", mark, st.Index, st.Op, st.Ref)
		if st.Detail != "" {
			line += "  " + render(detailStyle, st.Detail)
		}
		printInfo("%s\n", strings.TrimRight(line, " "))
	}

	if verbose || showSteps {
		printInfo("  allocs %s, frees %s, retains %s, releases %s, peak %s\n",
			humanize.Comma(res.Stats.Allocs),
			humanize.Comma(res.Stats.Frees),
			humanize.Comma(res.Stats.Retains),
			humanize.Comma(res.Stats.Releases),
			humanize.IBytes(uint64(res.Host.PeakBytes)),
		)
	}
	if res.Leaked > 0 {
		printInfo("  %s\n", render(failStyle, fmt.Sprintf("%d blocks leaked", res.Leaked)))
	}
}
