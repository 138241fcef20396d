package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"convres/internal/scenario"
)

var explainCmd = &cobra.Command{
	Use:   "explain <scenario> <query>",
	Short: "Evaluate one query of a scenario and show why it came out that way",
	Long: `Explain evaluates a single named query and prints its result together with
the rejected or tied candidates and any diagnostics the classification raised.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sc, err := scenario.Load(args[0])
		if err != nil {
			return err
		}
		opts, err := scenarioOptions(cmd, 1)
		if err != nil {
			return err
		}
		p, err := scenario.Compile(sc, opts)
		if err != nil {
			return err
		}
		q, ok := p.Find(args[1])
		if !ok {
			return fmt.Errorf("%s: no query named %q (have: %s)", sc.Name, args[1], strings.Join(queryNames(p), ", "))
		}
		o := q.Eval(p)

		out := cmd.OutOrStdout()
		status := color.New(color.FgGreen, color.Bold).Sprint("ok")
		if !o.Pass {
			status = color.New(color.FgRed, color.Bold).Sprint("FAIL")
		}
		fmt.Fprintf(out, "%s %s %q\n", status, o.Kind, o.Name)
		fmt.Fprintf(out, "  got:  %s\n", o.Got)
		if o.Want != "" {
			fmt.Fprintf(out, "  want: %s\n", o.Want)
		}
		for _, m := range o.Mismatches {
			fmt.Fprintf(out, "  ! %s\n", m)
		}
		for _, e := range o.Explain {
			fmt.Fprintf(out, "  - %s\n", e)
		}
		if o.Diagnostics != "" {
			for line := range strings.SplitSeq(o.Diagnostics, "\n") {
				fmt.Fprintf(out, "  > %s\n", line)
			}
		}
		if !o.Pass {
			return fmt.Errorf("%s: query %q failed", sc.Name, o.Name)
		}
		return nil
	},
}

func queryNames(p *scenario.Program) []string {
	names := make([]string, 0, len(p.Queries))
	for _, q := range p.Queries {
		names = append(names, q.Name)
	}
	return names
}
