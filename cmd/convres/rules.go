package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/spf13/cobra"

	"convres/internal/rules"
)

var (
	rulesFormat  string
	rulesVersion string
	rulesDump    bool
)

func init() {
	rulesCmd.Flags().StringVar(&rulesFormat, "format", "pretty", "output format (pretty|json)")
	rulesCmd.Flags().StringVar(&rulesVersion, "language-version", "", "evaluate feature gates at this language version")
	rulesCmd.Flags().BoolVar(&rulesDump, "dump", false, "print the embedded default rule file and exit")
}

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Show the numeric conversion table and feature gates in effect",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if rulesDump {
			_, err := out.Write(rules.DefaultSource())
			return err
		}
		rs, err := activeRules(cmd)
		if err != nil {
			return err
		}
		switch strings.ToLower(rulesFormat) {
		case "json":
			return renderRulesJSON(out, rs)
		case "pretty":
			renderRulesPretty(out, rs)
			return nil
		default:
			return fmt.Errorf("unsupported format %q (must be pretty or json)", rulesFormat)
		}
	},
}

func activeRules(cmd *cobra.Command) (*rules.Rules, error) {
	path, err := cmd.Root().PersistentFlags().GetString("rules")
	if err != nil {
		return nil, fmt.Errorf("failed to get rules flag: %w", err)
	}
	rs := rules.Default()
	if path != "" {
		if rs, err = rules.Load(path); err != nil {
			return nil, err
		}
	}
	if rulesVersion != "" {
		v, err := semver.NewVersion(rulesVersion)
		if err != nil {
			return nil, fmt.Errorf("--language-version: %w", err)
		}
		rs = rs.WithVersion(v)
	}
	return rs, nil
}

func renderRulesPretty(out io.Writer, rs *rules.Rules) {
	fmt.Fprintf(out, "language version %s\n\n", versionString(rs.Version))
	fmt.Fprintf(out, "%-8s %-4s %-6s %s\n", "kind", "bits", "signed", "implicit to")
	for _, k := range rs.Kinds() {
		signed := "no"
		if k.Signed {
			signed = "yes"
		}
		fmt.Fprintf(out, "%-8s %-4d %-6s %s\n", k.Name, k.Bits, signed, strings.Join(k.Implicit, ", "))
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "explicit between all numerics: %t\n", rs.ExplicitAllNumeric)
	fmt.Fprintf(out, "signed better than unsigned:   %t\n", rs.SignedBetterThanUnsigned)
	gates := rs.Gates()
	if len(gates) == 0 {
		return
	}
	fmt.Fprintln(out)
	for _, g := range gates {
		state := "off"
		if g.Enabled {
			state = "on"
		}
		fmt.Fprintf(out, "%-3s %s %s\n", state, g.Feature, g.Constraint)
	}
}

type rulesPayload struct {
	Version                  string              `json:"version"`
	ExplicitAllNumeric       bool                `json:"explicit_all_numeric"`
	SignedBetterThanUnsigned bool                `json:"signed_better_than_unsigned"`
	Kinds                    []rules.NumericKind `json:"kinds"`
	Gates                    []rules.FeatureGate `json:"gates,omitempty"`
}

func renderRulesJSON(out io.Writer, rs *rules.Rules) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(rulesPayload{
		Version:                  versionString(rs.Version),
		ExplicitAllNumeric:       rs.ExplicitAllNumeric,
		SignedBetterThanUnsigned: rs.SignedBetterThanUnsigned,
		Kinds:                    rs.Kinds(),
		Gates:                    rs.Gates(),
	})
}

func versionString(v *semver.Version) string {
	if v == nil {
		return "unversioned"
	}
	return v.String()
}
