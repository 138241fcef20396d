package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"convres/internal/observ"
	"convres/internal/report"
	"convres/internal/scenario"
	"convres/internal/snapshot"
	"convres/internal/version"
)

var (
	runFormat     string
	runJobs       int
	runVerbose    bool
	runCache      bool
	runClearCache bool
)

func init() {
	runCmd.Flags().StringVar(&runFormat, "format", "pretty", "output format (pretty|json|msgpack|golden)")
	runCmd.Flags().IntVarP(&runJobs, "jobs", "j", 0, "max parallel scenarios (0=auto)")
	runCmd.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "list passing queries too")
	runCmd.Flags().BoolVar(&runCache, "cache", false, "reuse reports of unchanged scenarios")
	runCmd.Flags().BoolVar(&runClearCache, "clear-cache", false, "drop cached reports before running")
}

var runCmd = &cobra.Command{
	Use:   "run [paths...]",
	Short: "Run scenario files and check their expectations",
	Long: `Run loads scenario files (directories are searched recursively), classifies
and resolves every query against the declared universe and reports each
expectation that does not hold.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := report.ParseFormat(strings.ToLower(runFormat))
		if err != nil {
			return err
		}
		timings, err := cmd.Root().PersistentFlags().GetBool("timings")
		if err != nil {
			return fmt.Errorf("failed to get timings flag: %w", err)
		}

		timer := observ.NewTimer()
		reports, err := runScenarios(cmd, args, timer)
		if err != nil {
			return err
		}

		err = report.Render(cmd.OutOrStdout(), reports, report.Options{
			Format:  format,
			Color:   !color.NoColor,
			Width:   terminalWidth(os.Stdout),
			Verbose: runVerbose,
		})
		if err != nil {
			return err
		}
		if timings {
			fmt.Fprint(cmd.ErrOrStderr(), timer.Summary())
		}
		if _, failed := report.Totals(reports); failed > 0 {
			return fmt.Errorf("%d expectation(s) failed", failed)
		}
		return nil
	},
}

// runScenarios loads, compiles and runs the scenarios named by args,
// serving unchanged ones from the snapshot store when --cache is set.
func runScenarios(cmd *cobra.Command, args []string, timer *observ.Timer) ([]*scenario.Report, error) {
	var scs []*scenario.Scenario
	err := timer.Time("load", func() error {
		var err error
		scs, err = loadScenarios(args)
		return err
	})
	if err != nil {
		return nil, err
	}
	opts, err := scenarioOptions(cmd, runJobs)
	if err != nil {
		return nil, err
	}

	store, err := openStore()
	if err != nil {
		return nil, err
	}

	reports := make([]*scenario.Report, len(scs))
	keys := make([]snapshot.Digest, len(scs))
	var pending []*scenario.Scenario
	var slots []int
	err = timer.Time("cache", func() error {
		for i, sc := range scs {
			if store == nil {
				pending = append(pending, sc)
				slots = append(slots, i)
				continue
			}
			src, err := rulesSource(cmd, sc)
			if err != nil {
				return err
			}
			keys[i] = snapshot.Key(sc.Source, src, opts.MaxDepth, version.Version)
			rep, ok, err := store.Get(keys[i])
			if err != nil {
				return err
			}
			if ok {
				reports[i] = rep
				continue
			}
			pending = append(pending, sc)
			slots = append(slots, i)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var fresh []*scenario.Report
	err = timer.Time("run", func() error {
		var err error
		fresh, err = scenario.RunAll(cmd.Context(), pending, opts)
		return err
	})
	if err != nil {
		return nil, err
	}
	for j, rep := range fresh {
		i := slots[j]
		reports[i] = rep
		if err := store.Put(keys[i], rep); err != nil {
			return nil, err
		}
	}
	return reports, nil
}

func openStore() (*snapshot.Store, error) {
	if !runCache && !runClearCache {
		return nil, nil
	}
	dir, err := snapshot.DefaultDir("convres")
	if err != nil {
		return nil, err
	}
	store, err := snapshot.Open(dir)
	if err != nil {
		return nil, err
	}
	if runClearCache {
		if err := store.DropAll(); err != nil {
			return nil, err
		}
	}
	if !runCache {
		return nil, nil
	}
	return store, nil
}
