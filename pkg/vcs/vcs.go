// Package vcs exposes the narrow, read-only view of git and GitHub state that
// the branch policies consult.
package vcs

import (
	"context"
	"errors"
	"strings"
)

// Sentinel errors for the vcs package.
var (
	// ErrNotRepository is returned when the working directory is not inside a git repository.
	ErrNotRepository = errors.New("not a git repository")

	// ErrNoUpstream is returned when the branch has no remote tracking branch.
	ErrNoUpstream = errors.New("no upstream tracking branch")

	// ErrInvalidPullRequest is returned for pull request identifiers that are not positive integers.
	ErrInvalidPullRequest = errors.New("invalid pull request number")
)

// Pull request states reported by the hosting service.
const (
	StateOpen   = "OPEN"
	StateClosed = "CLOSED"
	StateMerged = "MERGED"
)

// Repository is the minimal collaborator of the branch-safety guard.
// A false second return means "no information available".
type Repository interface {
	// CurrentBranch returns the checked-out branch name.
	CurrentBranch(ctx context.Context) (string, bool)

	// PullRequestState returns the upper-cased state of pull request id.
	PullRequestState(ctx context.Context, id string) (string, bool)
}

// StatusReader adds the queries used by the advisory branch status.
type StatusReader interface {
	Repository

	// IsRepository reports whether the working directory is inside a repository.
	IsRepository(ctx context.Context) bool

	// Changes summarizes uncommitted work.
	Changes(ctx context.Context) (Changes, error)

	// Upstream returns the remote tracking branch of branch.
	Upstream(ctx context.Context, branch string) (string, error)

	// AheadBehind counts commits local has that upstream lacks, and the reverse.
	AheadBehind(ctx context.Context, local, upstream string) (ahead, behind int, err error)
}

// Changes summarizes `git status --porcelain` output
type Changes struct {
	Staged   bool
	Unstaged bool
}

// Dirty reports whether there is any uncommitted work.
func (c Changes) Dirty() bool {
	return c.Staged || c.Unstaged
}

// ParsePorcelain classifies porcelain v1 status lines. The first column is the
// index state, the second the worktree state.
func ParsePorcelain(out string) Changes {
	var c Changes
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.ContainsRune("MADRC", rune(line[0])) {
			c.Staged = true
		}
		if len(line) > 1 && strings.ContainsRune("MD", rune(line[1])) {
			c.Unstaged = true
		}
	}
	return c
}

// ValidPullRequest reports whether id is a positive decimal integer.
func ValidPullRequest(id string) bool {
	if id == "" || strings.TrimLeft(id, "0") == "" {
		return false
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
