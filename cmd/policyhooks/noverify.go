package main

import (
	"github.com/spf13/cobra"

	"github.com/codysoyland/policyhooks/pkg/wrapper"
)

// newNoVerifyCmd checks a git command passed as arguments. Flag parsing is
// disabled so that the checked command's own flags reach the policy intact.
func newNoVerifyCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "no-verify [command args...]",
		Short: "Block git commit --no-verify given as arguments or via GIT_COMMAND",
		Long: `Checks the arguments, joined by spaces, and the GIT_COMMAND environment
variable for a git commit that bypasses hooks with --no-verify.

Prints the policy message and exits 1 when blocked, exits 0 silently otherwise.`,
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			args, err := splitLeadingFlags(opts, args)
			if err != nil {
				return err
			}
			syncConfigFlagToEnv(opts.configFile)

			gate, err := loadGate(opts)
			if err != nil {
				// No policy: allow
				return nil
			}

			wopts := append(wrapper.FromEnv(),
				wrapper.WithStdout(cmd.OutOrStdout()),
				wrapper.WithVerbose(gate.Verbose()),
			)
			code := wrapper.NewWrapper(gate.NoVerify(), wopts...).RunArgs(cmd.Context(), args)
			if code != wrapper.ExitAllow {
				return &exitCodeError{code: code}
			}
			return nil
		},
	}
}
