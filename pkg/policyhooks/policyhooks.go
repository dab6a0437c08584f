// Package policyhooks provides a library for enforcing team policies from
// assistant hooks: forbidden --no-verify commits, commits on the wrong branch
// during a story, and an advisory branch status report.
package policyhooks

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/codysoyland/policyhooks/pkg/config"
	"github.com/codysoyland/policyhooks/pkg/executor"
	"github.com/codysoyland/policyhooks/pkg/hook"
	"github.com/codysoyland/policyhooks/pkg/policy"
	"github.com/codysoyland/policyhooks/pkg/vcs"
)

// New creates a new Gate instance
func New(opts ...Option) (*Gate, error) {
	cfg := &Config{}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if cfg.Settings == nil {
		cfg.Settings = config.Default()
	}
	settings := *cfg.Settings
	if cfg.ProjectDir != "" {
		settings.ProjectDir = cfg.ProjectDir
	}
	if settings.ProjectDir == "" {
		settings.ProjectDir = "."
	}
	if settings.Verbose {
		cfg.Verbose = true
	}
	cfg.Settings = &settings

	repo := cfg.Repository
	if repo == nil {
		runner := cfg.Runner
		if runner == nil {
			e := executor.New(settings.ProjectDir, settings.TimeoutDuration())
			e.SetVerbose(cfg.Verbose)
			runner = e
		}
		repo = vcs.NewGit(runner,
			vcs.WithGitCommand(settings.GitCommand),
			vcs.WithGHCommand(settings.GHCommand),
			vcs.WithVerbose(cfg.Verbose),
		)
	}

	guard, err := policy.NewBranchGuard(repo, settings.ProjectDir,
		policy.WithIndicators(settings.Guard.Indicators),
		policy.WithProtectedBranches(settings.Guard.ProtectedBranches),
		policy.WithPlanMarker(settings.Guard.PlanMarker),
		policy.WithBranchInfo(settings.Guard.BranchInfo),
		policy.WithGuardVerbose(cfg.Verbose),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create branch guard: %w", err)
	}

	status, err := policy.NewBranchStatus(repo, settings.ProjectDir,
		settings.Guard.BranchInfo, settings.Status.WarnBranches, cfg.Verbose)
	if err != nil {
		return nil, fmt.Errorf("failed to create branch status: %w", err)
	}

	if cfg.Verbose {
		log.Printf("[INFO] policyhooks: project dir %s", settings.ProjectDir)
	}

	return &Gate{
		config:   cfg,
		repo:     repo,
		noVerify: policy.NewNoVerify(settings.NoVerify.ShellTools...),
		guard:    guard,
		status:   status,
	}, nil
}

// Settings returns the effective configuration
func (g *Gate) Settings() *config.Config {
	return g.config.Settings
}

// Verbose reports whether diagnostic logging is enabled
func (g *Gate) Verbose() bool {
	return g.config.Verbose
}

// NoVerify returns the --no-verify policy
func (g *Gate) NoVerify() *policy.NoVerify {
	return g.noVerify
}

// BranchGuard returns the branch-safety policy
func (g *Gate) BranchGuard() *policy.BranchGuard {
	return g.guard
}

// BranchStatus returns the advisory status reporter
func (g *Gate) BranchStatus() *policy.BranchStatus {
	return g.status
}

// CheckCommand evaluates a shell command given as arguments, together with
// an optional raw override string, against the --no-verify policy.
func (g *Gate) CheckCommand(ctx context.Context, args []string, override string) hook.Decision {
	return hook.Decide(ctx, g.noVerify, &hook.Request{
		Mode:     hook.ModeArgs,
		Command:  strings.Join(args, " "),
		Override: override,
	})
}

// CheckToolCall evaluates a proposed tool invocation against the --no-verify policy.
func (g *Gate) CheckToolCall(ctx context.Context, tool string, params map[string]any) hook.Decision {
	return hook.Decide(ctx, g.noVerify, &hook.Request{
		Mode: hook.ModePayload,
		Tool: &hook.Tool{Name: tool, Parameters: params},
	})
}

// CheckPrompt evaluates a user prompt against the branch-safety policy.
func (g *Gate) CheckPrompt(ctx context.Context, prompt string) hook.Decision {
	return hook.Decide(ctx, g.guard, &hook.Request{
		Mode:       hook.ModePayload,
		UserPrompt: prompt,
	})
}

// Status gathers the advisory branch notices. It never fails.
func (g *Gate) Status(ctx context.Context) []policy.Notice {
	return g.status.Check(ctx)
}
