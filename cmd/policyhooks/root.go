package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/codysoyland/policyhooks/pkg/config"
	"github.com/codysoyland/policyhooks/pkg/policyhooks"
)

const appName = "policyhooks"

// rootOptions holds the global flags
type rootOptions struct {
	verbose    bool
	configFile string
	projectDir string
}

// NewRootCmd builds the command tree. Every call returns fresh state.
func NewRootCmd(version string) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Policy enforcement hooks for AI coding assistants",
		Long: `policyhooks enforces team policies from assistant hooks.

Gate commands (never fail, block only on a clear violation):
  no-verify      Check a git command given as arguments (exit 1 blocks)
  pre-tool-use   Check a tool invocation read as JSON from stdin
  branch-check   Check a user prompt read as JSON from stdin

Advisory commands (never block):
  branch-status  Report wrong-branch, uncommitted and upstream drift warnings`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			syncConfigFlagToEnv(opts.configFile)
			log.SetOutput(cmd.ErrOrStderr())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose output on stderr")
	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "Config file (default: <project>/"+config.ProjectConfigFile+")")
	cmd.PersistentFlags().StringVar(&opts.projectDir, "project-dir", "", "Project root (default: $"+config.EnvProjectDir+" or .)")

	cmd.AddCommand(
		newNoVerifyCmd(opts),
		newPreToolUseCmd(opts),
		newBranchCheckCmd(opts),
		newBranchStatusCmd(opts),
		newVersionCmd(version),
	)

	return cmd
}

func syncConfigFlagToEnv(path string) {
	path = strings.TrimSpace(path)
	if path == "" {
		return
	}
	_ = os.Setenv(config.EnvConfig, path)
}

// loadGate loads the layered configuration and builds the policies. Broken
// configuration never stops a hook: it is reported in verbose mode and the
// defaults are used instead.
func loadGate(opts *rootOptions) (*policyhooks.Gate, error) {
	settings, err := config.Load(&config.Config{
		ProjectDir: opts.projectDir,
		Verbose:    opts.verbose,
	})
	verbose := opts.verbose || settings.Verbose
	if err != nil && verbose {
		log.Printf("[WARN] config: %v (continuing)", err)
	}

	gate, err := policyhooks.New(policyhooks.WithConfig(settings), policyhooks.WithVerbose(verbose))
	if err == nil {
		return gate, nil
	}
	if verbose {
		log.Printf("[WARN] invalid branch patterns, using defaults: %v", err)
	}

	// Branch patterns are the only settings that can fail to compile
	defaults := config.Default()
	fallback := *settings
	fallback.Guard.ProtectedBranches = defaults.Guard.ProtectedBranches
	fallback.Status.WarnBranches = defaults.Status.WarnBranches
	return policyhooks.New(policyhooks.WithConfig(&fallback), policyhooks.WithVerbose(verbose))
}

// isTerminal reports whether w is an interactive terminal
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// splitLeadingFlags applies global flags that precede the command arguments
// of a command with flag parsing disabled, and returns the remaining args.
func splitLeadingFlags(opts *rootOptions, args []string) ([]string, error) {
	for len(args) > 0 {
		arg := args[0]
		if arg == "--" {
			return args[1:], nil
		}
		if arg == "-v" || arg == "--verbose" {
			opts.verbose = true
			args = args[1:]
			continue
		}

		name, value, hasValue := strings.Cut(strings.TrimPrefix(arg, "--"), "=")
		if !strings.HasPrefix(arg, "--") || (name != "config" && name != "project-dir") {
			return args, nil
		}
		consumed := 1
		if !hasValue {
			if len(args) < 2 {
				return nil, fmt.Errorf("flag needs an argument: --%s", name)
			}
			value = args[1]
			consumed = 2
		}
		if name == "config" {
			opts.configFile = value
		} else {
			opts.projectDir = value
		}
		args = args[consumed:]
	}
	return args, nil
}
