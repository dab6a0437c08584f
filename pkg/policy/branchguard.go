package policy

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/codysoyland/policyhooks/pkg/hook"
	"github.com/codysoyland/policyhooks/pkg/vcs"
)

// BranchGuardName identifies the branch-safety policy.
const BranchGuardName = "branch-guard"

// Project-relative locations of the workflow state files.
const (
	DefaultPlanMarker = ".claude/plan.approved"
	DefaultBranchInfo = ".claude/branch.info"
)

// DefaultIndicators are the prompt fragments that mark a structured story
// workflow. The guard stays silent for any other prompt.
var DefaultIndicators = []string{
	"/sparc",
	"sparc-orchestrator",
	"implementer",
	"planner",
	"researcher",
	"type-architect",
	"test-hardener",
	"expert",
	"pr-manager",
	".claude/plan.approved",
	".claude/tdd.red",
}

// DefaultProtectedBranches lists the integration branch patterns.
var DefaultProtectedBranches = []string{"main"}

// ProtectedBranchMessage is returned when committing to the integration branch
// while an approved plan is in progress.
const ProtectedBranchMessage = "Cannot commit to main branch during story development. Switch to feature branch first."

// BranchGuard blocks work on the integration branch during an approved story
// and on branches whose pull request is already merged or closed
type BranchGuard struct {
	repo       vcs.Repository
	projectDir string
	indicators []string
	protected  *branchMatcher
	planMarker string
	branchInfo string
	verbose    bool
}

// GuardOption is a functional option for configuring BranchGuard
type GuardOption func(*guardSettings)

type guardSettings struct {
	indicators []string
	protected  []string
	planMarker string
	branchInfo string
	verbose    bool
}

// WithIndicators replaces the workflow indicator substrings
func WithIndicators(indicators []string) GuardOption {
	return func(s *guardSettings) {
		if len(indicators) > 0 {
			s.indicators = indicators
		}
	}
}

// WithProtectedBranches replaces the protected branch patterns
func WithProtectedBranches(patterns []string) GuardOption {
	return func(s *guardSettings) {
		if len(patterns) > 0 {
			s.protected = patterns
		}
	}
}

// WithPlanMarker sets the project-relative plan approval marker path
func WithPlanMarker(path string) GuardOption {
	return func(s *guardSettings) {
		if path != "" {
			s.planMarker = path
		}
	}
}

// WithBranchInfo sets the project-relative branch descriptor path
func WithBranchInfo(path string) GuardOption {
	return func(s *guardSettings) {
		if path != "" {
			s.branchInfo = path
		}
	}
}

// WithGuardVerbose enables/disables verbose output
func WithGuardVerbose(verbose bool) GuardOption {
	return func(s *guardSettings) {
		s.verbose = verbose
	}
}

// NewBranchGuard creates a guard over repo for the project rooted at projectDir.
func NewBranchGuard(repo vcs.Repository, projectDir string, opts ...GuardOption) (*BranchGuard, error) {
	if repo == nil {
		return nil, fmt.Errorf("must provide repository")
	}
	s := &guardSettings{
		indicators: DefaultIndicators,
		protected:  DefaultProtectedBranches,
		planMarker: DefaultPlanMarker,
		branchInfo: DefaultBranchInfo,
	}
	for _, opt := range opts {
		opt(s)
	}

	protected, err := newBranchMatcher(s.protected)
	if err != nil {
		return nil, err
	}
	if projectDir == "" {
		projectDir = "."
	}

	indicators := make([]string, 0, len(s.indicators))
	for _, ind := range s.indicators {
		if ind = strings.ToLower(strings.TrimSpace(ind)); ind != "" {
			indicators = append(indicators, ind)
		}
	}

	return &BranchGuard{
		repo:       repo,
		projectDir: projectDir,
		indicators: indicators,
		protected:  protected,
		planMarker: resolvePath(projectDir, s.planMarker),
		branchInfo: resolvePath(projectDir, s.branchInfo),
		verbose:    s.verbose,
	}, nil
}

func resolvePath(projectDir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(projectDir, path)
}

// Name returns the policy name
func (g *BranchGuard) Name() string {
	return BranchGuardName
}

// InWorkflow reports whether prompt contains any workflow indicator.
func (g *BranchGuard) InWorkflow(prompt string) bool {
	prompt = strings.ToLower(prompt)
	for _, ind := range g.indicators {
		if strings.Contains(prompt, ind) {
			return true
		}
	}
	return false
}

func (g *BranchGuard) logf(format string, args ...any) {
	if g.verbose {
		log.Printf(format, args...)
	}
}

// Evaluate runs the guard for the prompt carried by req.
func (g *BranchGuard) Evaluate(ctx context.Context, req *hook.Request) hook.Result {
	if !g.InWorkflow(req.PromptText()) {
		return hook.Allowed()
	}

	branch, ok := g.repo.CurrentBranch(ctx)
	if !ok {
		return hook.Unknown(BranchGuardName, "current branch unavailable")
	}
	g.logf("Branch guard: current branch %s", branch)

	if g.planApproved() && g.protected.Match(branch) {
		return hook.Blocked(BranchGuardName, ProtectedBranchMessage)
	}

	return g.checkPullRequest(ctx, branch)
}

func (g *BranchGuard) planApproved() bool {
	_, err := os.Stat(g.planMarker)
	return err == nil
}

// checkPullRequest blocks when the story's pull request is no longer open.
// Every failure along the way is advisory and resolves to unknown.
func (g *BranchGuard) checkPullRequest(ctx context.Context, branch string) hook.Result {
	info, err := LoadBranchInfo(g.branchInfo)
	if err != nil {
		if !errors.Is(err, ErrNoBranchInfo) {
			g.logf("Branch guard: ignoring branch info: %v", err)
			return hook.Unknown(BranchGuardName, err.Error())
		}
		return hook.Allowed()
	}
	if info.PRNumber == "" {
		return hook.Allowed()
	}
	if !info.PRNumber.Valid() {
		return hook.Unknown(BranchGuardName, fmt.Sprintf("%v: %q", vcs.ErrInvalidPullRequest, info.PRNumber))
	}

	state, ok := g.repo.PullRequestState(ctx, string(info.PRNumber))
	if !ok {
		return hook.Unknown(BranchGuardName, "pull request state unavailable")
	}
	g.logf("Branch guard: PR #%s is %s", info.PRNumber, state)

	switch strings.ToUpper(state) {
	case vcs.StateMerged, vcs.StateClosed:
		return hook.Blocked(BranchGuardName, fmt.Sprintf(
			"Cannot commit to branch %s. PR #%s is %s.",
			branch, info.PRNumber, strings.ToLower(state)))
	default:
		return hook.Allowed()
	}
}
