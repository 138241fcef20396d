package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"convres/internal/rules"
	"convres/internal/scenario"
	"convres/internal/trace"
)

// loadScenarios expands each argument into scenario files and loads them.
// Directories are walked; an empty argument list means the working
// directory.
func loadScenarios(args []string) ([]*scenario.Scenario, error) {
	if len(args) == 0 {
		args = []string{"."}
	}
	var paths []string
	for _, arg := range args {
		st, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !st.IsDir() {
			paths = append(paths, arg)
			continue
		}
		found, err := scenario.Discover(arg)
		if err != nil {
			return nil, err
		}
		paths = append(paths, found...)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no scenario files found in %v", args)
	}
	out := make([]*scenario.Scenario, 0, len(paths))
	for _, path := range paths {
		sc, err := scenario.Load(path)
		if err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, nil
}

// scenarioOptions builds compile options from the persistent flags.
func scenarioOptions(cmd *cobra.Command, jobs int) (scenario.Options, error) {
	flags := cmd.Root().PersistentFlags()
	rulesPath, err := flags.GetString("rules")
	if err != nil {
		return scenario.Options{}, fmt.Errorf("failed to get rules flag: %w", err)
	}
	maxDepth, err := flags.GetInt("max-depth")
	if err != nil {
		return scenario.Options{}, fmt.Errorf("failed to get max-depth flag: %w", err)
	}
	if maxDepth < 0 {
		return scenario.Options{}, fmt.Errorf("--max-depth must be non-negative, got %d", maxDepth)
	}
	opts := scenario.Options{
		MaxDepth: maxDepth,
		Jobs:     jobs,
		Tracer:   trace.FromContext(cmd.Context()),
	}
	if rulesPath != "" {
		rs, err := rules.Load(rulesPath)
		if err != nil {
			return scenario.Options{}, err
		}
		opts.Rules = rs
	}
	return opts, nil
}

// rulesSource returns the bytes of the rule file sc is checked against.
func rulesSource(cmd *cobra.Command, sc *scenario.Scenario) ([]byte, error) {
	path, err := cmd.Root().PersistentFlags().GetString("rules")
	if err != nil {
		return nil, err
	}
	if path == "" && sc.Rules != "" {
		path = sc.Rules
		if !filepath.IsAbs(path) {
			path = filepath.Join(sc.Dir(), path)
		}
	}
	if path == "" {
		return rules.DefaultSource(), nil
	}
	return os.ReadFile(path)
}
