package policy

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/codysoyland/policyhooks/pkg/vcs"
)

// DefaultWarnBranches lists the branches the status report warns about.
var DefaultWarnBranches = []string{"main", "master"}

// Level classifies a status notice
type Level int

const (
	LevelInfo Level = iota
	LevelWarning
)

func (l Level) String() string {
	if l == LevelWarning {
		return "warning"
	}
	return "info"
}

// Notice is a single advisory item: a headline and optional detail lines
type Notice struct {
	Level    Level
	Headline string
	Details  []string
}

// BranchStatus reports wrong-branch, uncommitted-change and upstream drift
// notices. It never blocks and never fails.
type BranchStatus struct {
	repo         vcs.StatusReader
	branchInfo   string
	warnBranches *branchMatcher
	verbose      bool
}

// NewBranchStatus creates a status reporter. warnBranches defaults to
// DefaultWarnBranches when empty; branchInfo is resolved against projectDir.
func NewBranchStatus(repo vcs.StatusReader, projectDir, branchInfo string, warnBranches []string, verbose bool) (*BranchStatus, error) {
	if repo == nil {
		return nil, fmt.Errorf("must provide repository")
	}
	if len(warnBranches) == 0 {
		warnBranches = DefaultWarnBranches
	}
	matcher, err := newBranchMatcher(warnBranches)
	if err != nil {
		return nil, err
	}
	if projectDir == "" {
		projectDir = "."
	}
	if branchInfo == "" {
		branchInfo = DefaultBranchInfo
	}
	return &BranchStatus{
		repo:         repo,
		branchInfo:   resolvePath(projectDir, branchInfo),
		warnBranches: matcher,
		verbose:      verbose,
	}, nil
}

func (s *BranchStatus) logf(format string, args ...any) {
	if s.verbose {
		log.Printf(format, args...)
	}
}

// Check gathers notices. Any git failure ends the report early with whatever
// was collected so far.
func (s *BranchStatus) Check(ctx context.Context) []Notice {
	if !s.repo.IsRepository(ctx) {
		return nil
	}
	// Detached HEAD: only the working tree notices apply
	branch, onBranch := s.repo.CurrentBranch(ctx)

	var notices []Notice
	if onBranch && s.warnBranches.Match(branch) {
		notices = append(notices, Notice{
			Level:    LevelWarning,
			Headline: fmt.Sprintf("WARNING: You are on the %s branch", branch),
			Details: []string{
				"Consider creating a feature branch for changes:",
				"git checkout -b story-XXX-descriptive-name",
			},
		})
	}

	if onBranch {
		if n, ok := s.storyNotice(branch); ok {
			notices = append(notices, n)
		}
	}

	changes, err := s.repo.Changes(ctx)
	if err != nil {
		s.logf("Branch status: %v", err)
		return notices
	}
	if n, ok := changesNotice(changes); ok {
		notices = append(notices, n)
	}

	if !onBranch {
		return notices
	}
	if n, ok := s.upstreamNotice(ctx, branch); ok {
		notices = append(notices, n)
	}
	return notices
}

func (s *BranchStatus) storyNotice(branch string) (Notice, bool) {
	info, err := LoadBranchInfo(s.branchInfo)
	if err != nil {
		if !errors.Is(err, ErrNoBranchInfo) {
			s.logf("Branch status: ignoring branch info: %v", err)
		}
		return Notice{}, false
	}

	story := info.CurrentStory
	if story == "" {
		story = "(none)"
	}
	if info.Branch != "" && info.Branch != branch {
		return Notice{
			Level:    LevelWarning,
			Headline: "WARNING: Branch mismatch detected",
			Details: []string{
				"Current branch: " + branch,
				"Expected branch: " + info.Branch,
				"Current story: " + story,
				"Consider switching to the correct branch:",
				"git checkout " + info.Branch,
			},
		}, true
	}
	if info.CurrentStory != "" {
		return Notice{
			Level:    LevelInfo,
			Headline: "Active story: " + info.CurrentStory,
			Details:  []string{"Current branch: " + branch},
		}, true
	}
	return Notice{}, false
}

func changesNotice(c vcs.Changes) (Notice, bool) {
	switch {
	case c.Staged && c.Unstaged:
		return Notice{Level: LevelInfo, Headline: "You have both staged and unstaged changes"}, true
	case c.Staged:
		return Notice{Level: LevelInfo, Headline: "You have staged changes ready to commit"}, true
	case c.Unstaged:
		return Notice{Level: LevelInfo, Headline: "You have unstaged changes"}, true
	default:
		return Notice{}, false
	}
}

func (s *BranchStatus) upstreamNotice(ctx context.Context, branch string) (Notice, bool) {
	upstream, err := s.repo.Upstream(ctx, branch)
	if err != nil {
		s.logf("Branch status: %v", err)
		return Notice{}, false
	}
	ahead, behind, err := s.repo.AheadBehind(ctx, branch, upstream)
	if err != nil {
		s.logf("Branch status: %v", err)
		return Notice{}, false
	}

	switch {
	case ahead > 0 && behind > 0:
		return Notice{
			Level:    LevelWarning,
			Headline: fmt.Sprintf("Branch is %s ahead and %s behind %s", commits(ahead), commits(behind), upstream),
			Details:  []string{"Consider rebasing: git pull --rebase"},
		}, true
	case ahead > 0:
		return Notice{
			Level:    LevelInfo,
			Headline: fmt.Sprintf("Branch is %s ahead of %s", commits(ahead), upstream),
		}, true
	case behind > 0:
		return Notice{
			Level:    LevelWarning,
			Headline: fmt.Sprintf("Branch is %s behind %s", commits(behind), upstream),
			Details:  []string{"Consider updating: git pull"},
		}, true
	default:
		return Notice{}, false
	}
}

func commits(n int) string {
	if n == 1 {
		return "1 commit"
	}
	return fmt.Sprintf("%d commits", n)
}
