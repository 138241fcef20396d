package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"convres/internal/budget"
	"convres/internal/conv"
	"convres/internal/diag"
	"convres/internal/rules"
	"convres/internal/scenario"
	"convres/internal/trace"
)

var (
	classifyScenario string
	classifyMode     string
	classifyConstant int64
	classifyAgainst  string
)

func init() {
	classifyCmd.Flags().StringVarP(&classifyScenario, "scenario", "s", "", "scenario file declaring the type universe")
	classifyCmd.Flags().StringVarP(&classifyMode, "mode", "m", "implicit", "conversion mode (implicit|explicit|standard|standard-explicit)")
	classifyCmd.Flags().Int64Var(&classifyConstant, "constant", 0, "treat the source as an integral constant with this value")
	classifyCmd.Flags().StringVar(&classifyAgainst, "better-than", "", "also compare the conversion against one to this type")
}

var classifyCmd = &cobra.Command{
	Use:   "classify <src> <dst>",
	Short: "Classify the conversion between two types",
	Long: `Classify reports which conversion exists from src to dst. Types are written
as in scenario files: int, long?, string[], IEnumerable<Animal>, (int, bool).
Without --scenario only the built-in and numeric types are known.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := conv.ParseMode(classifyMode)
		if err != nil {
			return err
		}
		w, err := classifyUniverse(cmd)
		if err != nil {
			return err
		}
		src, err := w.universe.Type(args[0])
		if err != nil {
			return err
		}
		dst, err := w.universe.Type(args[1])
		if err != nil {
			return err
		}

		ctx := conv.Context{Mode: mode, Budget: budget.New(w.depth)}
		if cmd.Flags().Changed("constant") {
			ctx = ctx.WithConstant(classifyConstant)
		}
		c := conv.New(w.universe.Interner, w.rules, conv.WithTracer(trace.FromContext(cmd.Context())))
		res, bag := c.Classify(src, dst, ctx)

		out := cmd.OutOrStdout()
		printConversion(out, w.universe, res, bag)
		if classifyAgainst == "" {
			return nil
		}
		other, err := w.universe.Type(classifyAgainst)
		if err != nil {
			return err
		}
		alt, altBag := c.Classify(src, other, ctx)
		fmt.Fprintf(out, "versus %s\n", w.universe.Interner.Name(other))
		printConversion(out, w.universe, alt, altBag)
		fmt.Fprintf(out, "better: %s\n", c.Better(src, res, alt))
		return nil
	},
}

type classifyWorld struct {
	universe *scenario.Universe
	rules    *rules.Rules
	depth    int
}

// classifyUniverse builds the universe of --scenario, or an empty one.
func classifyUniverse(cmd *cobra.Command) (classifyWorld, error) {
	opts, err := scenarioOptions(cmd, 1)
	if err != nil {
		return classifyWorld{}, err
	}
	if classifyScenario != "" {
		sc, err := scenario.Load(classifyScenario)
		if err != nil {
			return classifyWorld{}, err
		}
		p, err := scenario.Compile(sc, opts)
		if err != nil {
			return classifyWorld{}, err
		}
		return classifyWorld{universe: p.Universe, rules: p.Rules, depth: p.MaxDepth}, nil
	}
	rs := opts.Rules
	if rs == nil {
		rs = rules.Default()
	}
	u, err := scenario.Build(&scenario.File{}, rs)
	if err != nil {
		return classifyWorld{}, err
	}
	return classifyWorld{universe: u, rules: rs, depth: opts.MaxDepth}, nil
}

func printConversion(out io.Writer, u *scenario.Universe, res conv.Conversion, bag *diag.Bag) {
	fmt.Fprintf(out, "%s\n", res)
	if f := res.Failure(); f != conv.FailureNone {
		fmt.Fprintf(out, "failure: %s\n", f)
	}
	if bag != nil && bag.Len() > 0 {
		fmt.Fprintln(out, diag.FormatGoldenDiagnostics(bag.Items(), u.Interner))
	}
}
