package policyhooks

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codysoyland/policyhooks/pkg/config"
	"github.com/codysoyland/policyhooks/pkg/policy"
)

// newTestRepo creates an empty git repository whose unborn branch is branch
func newTestRepo(t *testing.T, branch string) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	dir := t.TempDir()
	runGit(t, dir, "init", "-q")
	runGit(t, dir, "symbolic-ref", "HEAD", "refs/heads/"+branch)
	return dir
}

func runGit(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, out)
}

// fakeGH writes a gh stand-in that prints state for any pull request
func fakeGH(t *testing.T, state string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gh")
	script := "#!/bin/sh\necho " + state + "\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

// TestE2E_ProtectedBranch exercises the guard against a real repository
func TestE2E_ProtectedBranch(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E test in short mode")
	}
	dir := newTestRepo(t, "main")
	writeState(t, dir, policy.DefaultPlanMarker, "")

	g, err := New(WithProjectDir(dir), WithVerbose(true))
	require.NoError(t, err)

	d := g.CheckPrompt(context.Background(), "/sparc build the feature")
	assert.True(t, d.Block)
	assert.Equal(t, policy.ProtectedBranchMessage, d.Message)

	runGit(t, dir, "symbolic-ref", "HEAD", "refs/heads/story-1")
	d = g.CheckPrompt(context.Background(), "/sparc build the feature")
	assert.False(t, d.Block)
}

// TestE2E_ClosedPullRequest resolves the pull request state through a gh stand-in
func TestE2E_ClosedPullRequest(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E test in short mode")
	}
	dir := newTestRepo(t, "story-2")
	writeState(t, dir, policy.DefaultBranchInfo, `{"branch": "story-2", "pr_number": 9}`)

	settings := config.Default()
	settings.GHCommand = fakeGH(t, "closed")

	g, err := New(WithConfig(settings), WithProjectDir(dir))
	require.NoError(t, err)

	d := g.CheckPrompt(context.Background(), "hand off to pr-manager")
	assert.True(t, d.Block)
	assert.Equal(t, "Cannot commit to branch story-2. PR #9 is closed.", d.Message)
}

// TestE2E_Status reports on a real repository with staged work
func TestE2E_Status(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E test in short mode")
	}
	dir := newTestRepo(t, "master")
	writeState(t, dir, "README.md", "hello\n")
	runGit(t, dir, "add", "README.md")

	g, err := New(WithProjectDir(dir))
	require.NoError(t, err)

	notices := g.Status(context.Background())
	require.Len(t, notices, 2)
	assert.Equal(t, "WARNING: You are on the master branch", notices[0].Headline)
	assert.Equal(t, "You have staged changes ready to commit", notices[1].Headline)
}

// TestE2E_NotARepository stays silent outside a repository
func TestE2E_NotARepository(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E test in short mode")
	}
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	dir := t.TempDir()
	t.Setenv("GIT_CEILING_DIRECTORIES", filepath.Dir(dir))
	writeState(t, dir, policy.DefaultPlanMarker, "")

	g, err := New(WithProjectDir(dir))
	require.NoError(t, err)

	assert.Empty(t, g.Status(context.Background()))
	assert.False(t, g.CheckPrompt(context.Background(), "/sparc").Block)
}
