package main

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"convres/internal/rules"
	"convres/internal/version"
)

// buildInfo is what `convres version` reports. Optional fields stay empty
// unless requested.
type buildInfo struct {
	Tool       string `json:"tool"`
	Version    string `json:"version"`
	Rules      string `json:"rules_language_version"`
	Go         string `json:"go"`
	GitCommit  string `json:"git_commit,omitempty"`
	GitMessage string `json:"git_message,omitempty"`
	BuildDate  string `json:"build_date,omitempty"`
}

var (
	versionFormat      string
	versionShowHash    bool
	versionShowMessage bool
	versionShowDate    bool
	versionShowFull    bool
)

func init() {
	versionCmd.Flags().BoolVar(&versionShowHash, "hash", false, "include git commit hash")
	versionCmd.Flags().BoolVar(&versionShowMessage, "message", false, "include git commit message")
	versionCmd.Flags().BoolVar(&versionShowDate, "date", false, "include build timestamp")
	versionCmd.Flags().BoolVar(&versionShowFull, "full", false, "include all build metadata")
	versionCmd.Flags().StringVar(&versionFormat, "format", "pretty", "output format (pretty|json)")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the convres version and the default rule set it embeds",
	RunE: func(cmd *cobra.Command, args []string) error {
		info := collectBuildInfo(
			versionShowHash || versionShowFull,
			versionShowMessage || versionShowFull,
			versionShowDate || versionShowFull,
		)
		out := cmd.OutOrStdout()
		switch strings.ToLower(versionFormat) {
		case "json":
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(info)
		case "pretty":
			renderVersionPretty(out, info)
			return nil
		}
		return fmt.Errorf("unsupported format %q (must be pretty or json)", versionFormat)
	},
}

func collectBuildInfo(hash, message, date bool) buildInfo {
	info := buildInfo{
		Tool:    "convres",
		Version: strings.TrimSpace(version.Version),
		Rules:   versionString(rules.Default().Version),
		Go:      runtime.Version(),
	}
	if info.Version == "" {
		info.Version = "dev"
	}
	if hash {
		info.GitCommit = valueOrUnknown(version.GitCommit)
	}
	if message {
		info.GitMessage = valueOrUnknown(version.GitMessage)
	}
	if date {
		info.BuildDate = valueOrUnknown(version.BuildDate)
	}
	return info
}

func renderVersionPretty(out io.Writer, info buildInfo) {
	fmt.Fprintf(out, "convres %s (%s)\n", version.Colored(), info.Go)
	fmt.Fprintf(out, "default rules: language version %s\n", info.Rules)
	for _, line := range [][2]string{
		{"commit", info.GitCommit},
		{"message", info.GitMessage},
		{"built", info.BuildDate},
	} {
		if line[1] != "" {
			fmt.Fprintf(out, "%-8s %s\n", line[0]+":", line[1])
		}
	}
}

func valueOrUnknown(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return "unknown"
	}
	return s
}
