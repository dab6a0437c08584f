package main

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/codysoyland/policyhooks/pkg/policy"
)

func newBranchStatusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "branch-status",
		Short: "Print advisory branch warnings (never blocks)",
		Long: `Reports when the working tree is on main or master, on a different branch
than the active story expects, has uncommitted changes, or has drifted from its
upstream. Prints nothing outside a git repository. The exit code is always 0.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			gate, err := loadGate(opts)
			if err != nil {
				return nil
			}

			notices := gate.Status(cmd.Context())
			out := cmd.OutOrStdout()
			if err := policy.RenderNotices(out, notices, isTerminal(out)); err != nil && gate.Verbose() {
				log.Printf("[WARN] branch status: %v", err)
			}
			return nil
		},
	}
}
