package main

import (
	"github.com/spf13/cobra"

	"github.com/codysoyland/policyhooks/pkg/hook"
	"github.com/codysoyland/policyhooks/pkg/wrapper"
)

func newPreToolUseCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "pre-tool-use",
		Short: "Check a proposed tool invocation (JSON on stdin)",
		Long: `Reads a tool descriptor such as
  {"tool": {"name": "Bash", "parameters": {"command": "git commit --no-verify"}}}
from stdin and writes {"block": true|false, "message": "..."} to stdout.

Malformed input is allowed. The exit code is always 0.`,
		// Whatever the host passes, the answer goes out as JSON
		Args:               cobra.ArbitraryArgs,
		FParseErrWhitelist: cobra.FParseErrWhitelist{UnknownFlags: true},
		RunE: func(cmd *cobra.Command, args []string) error {
			var policy hook.Policy
			verbose := opts.verbose
			if gate, err := loadGate(opts); err == nil {
				policy = gate.NoVerify()
				verbose = gate.Verbose()
			}
			return runPayload(cmd, policy, verbose)
		},
	}
}

// runPayload evaluates a stdin payload and writes the JSON decision
func runPayload(cmd *cobra.Command, policy hook.Policy, verbose bool) error {
	w := wrapper.NewWrapper(policy,
		wrapper.WithStdout(cmd.OutOrStdout()),
		wrapper.WithVerbose(verbose),
	)
	return w.RunPayload(cmd.Context(), cmd.InOrStdin())
}
