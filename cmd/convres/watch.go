package main

import (
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"convres/internal/observ"
	"convres/internal/report"
)

var watchDebounce time.Duration

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 200*time.Millisecond, "quiet period before re-running after a change")
	watchCmd.Flags().StringVar(&runFormat, "format", "pretty", "output format (pretty|json|golden)")
	watchCmd.Flags().IntVarP(&runJobs, "jobs", "j", 0, "max parallel scenarios (0=auto)")
	watchCmd.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "list passing queries too")
}

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Re-run scenarios whenever a scenario or rule file changes",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := "."
		if len(args) == 1 {
			root = args[0]
		}
		format, err := report.ParseFormat(strings.ToLower(runFormat))
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		rulesPath, err := cmd.Root().PersistentFlags().GetString("rules")
		if err != nil {
			return fmt.Errorf("failed to get rules flag: %w", err)
		}
		scope, err := newWatchScope(root, rulesPath)
		if err != nil {
			return err
		}

		w, err := fsnotify.NewWatcher()
		if err != nil {
			return err
		}
		defer w.Close()
		if err := watchTree(w, root); err != nil {
			return err
		}
		if dir, ok := scope.rulesDir(); ok {
			if err := w.Add(dir); err != nil {
				return fmt.Errorf("watch rules: %w", err)
			}
		}

		rerun := func() {
			cmd.SetContext(ctx)
			reports, err := runScenarios(cmd, []string{root}, observ.NewTimer())
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", color.New(color.Faint).Sprint("--"), time.Now().Format(time.TimeOnly))
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
				return
			}
			err = report.Render(out, reports, report.Options{
				Format:  format,
				Color:   !color.NoColor,
				Width:   terminalWidth(os.Stdout),
				Verbose: runVerbose,
			})
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
			}
		}
		rerun()

		var timer *time.Timer
		fire := make(chan struct{}, 1)
		for {
			select {
			case <-ctx.Done():
				return nil
			case ev, ok := <-w.Events:
				if !ok {
					return nil
				}
				if ev.Has(fsnotify.Create) {
					if st, err := os.Stat(ev.Name); err == nil && st.IsDir() {
						if err := watchTree(w, ev.Name); err != nil {
							fmt.Fprintf(cmd.ErrOrStderr(), "watch: %v\n", err)
						}
					}
				}
				if !scope.relevant(ev) {
					continue
				}
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(watchDebounce, func() {
					select {
					case fire <- struct{}{}:
					default:
					}
				})
			case err, ok := <-w.Errors:
				if !ok {
					return nil
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "watch: %v\n", err)
			case <-fire:
				rerun()
			}
		}
	},
}

// watchScope decides which filesystem events trigger a re-run: scenario
// and rule files under root, plus the --rules file wherever it lives.
type watchScope struct {
	root  string
	rules string
}

func newWatchScope(root, rules string) (watchScope, error) {
	var s watchScope
	var err error
	if s.root, err = filepath.Abs(root); err != nil {
		return s, err
	}
	if rules != "" {
		if s.rules, err = filepath.Abs(rules); err != nil {
			return s, err
		}
	}
	return s, nil
}

func (s watchScope) inRoot(path string) bool {
	rel, err := filepath.Rel(s.root, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// rulesDir returns the directory of the --rules file when watchTree on
// root does not already cover it.
func (s watchScope) rulesDir() (string, bool) {
	if s.rules == "" {
		return "", false
	}
	dir := filepath.Dir(s.rules)
	return dir, !s.inRoot(dir)
}

func (s watchScope) relevant(ev fsnotify.Event) bool {
	name, err := filepath.Abs(ev.Name)
	if err != nil {
		return false
	}
	if s.rules != "" && name == s.rules {
		return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) ||
			ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename)
	}
	return s.inRoot(name) && relevantEvent(ev)
}

// watchTree adds root and every directory below it; fsnotify does not
// recurse on its own.
func watchTree(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}

// relevantEvent reports whether ev touches a scenario or rule file.
func relevantEvent(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) &&
		!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}
	if strings.HasPrefix(filepath.Base(ev.Name), ".") {
		return false
	}
	switch strings.ToLower(filepath.Ext(ev.Name)) {
	case ".toml", ".yaml", ".yml":
		return true
	}
	return false
}
