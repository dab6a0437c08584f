package main

import (
	"github.com/spf13/cobra"

	"github.com/codysoyland/policyhooks/pkg/hook"
)

func newBranchCheckCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "branch-check",
		Short: "Check branch safety for a user prompt (JSON on stdin)",
		Long: `Reads {"user_prompt": "..."} from stdin. When the prompt belongs to a story
workflow, blocks work on the main branch while a plan is approved and work on a
branch whose pull request is already merged or closed.

Writes {"block": true|false, "message": "..."} to stdout. Missing git or gh,
missing state files and malformed input are all allowed. The exit code is
always 0.`,
		// Whatever the host passes, the answer goes out as JSON
		Args:               cobra.ArbitraryArgs,
		FParseErrWhitelist: cobra.FParseErrWhitelist{UnknownFlags: true},
		RunE: func(cmd *cobra.Command, args []string) error {
			var policy hook.Policy
			verbose := opts.verbose
			if gate, err := loadGate(opts); err == nil {
				policy = gate.BranchGuard()
				verbose = gate.Verbose()
			}
			return runPayload(cmd, policy, verbose)
		},
	}
}
