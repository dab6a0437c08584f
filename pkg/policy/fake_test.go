package policy

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codysoyland/policyhooks/pkg/vcs"
)

// fakeRepo is a test double for vcs.StatusReader
type fakeRepo struct {
	notRepo     bool
	branch      string
	prStates    map[string]string
	changes     vcs.Changes
	changesErr  error
	upstream    string
	upstreamErr error
	ahead       int
	behind      int
	countErr    error

	prLookups []string
}

func (f *fakeRepo) CurrentBranch(ctx context.Context) (string, bool) {
	return f.branch, f.branch != ""
}

func (f *fakeRepo) PullRequestState(ctx context.Context, id string) (string, bool) {
	f.prLookups = append(f.prLookups, id)
	state, ok := f.prStates[id]
	return state, ok
}

func (f *fakeRepo) IsRepository(ctx context.Context) bool {
	return !f.notRepo
}

func (f *fakeRepo) Changes(ctx context.Context) (vcs.Changes, error) {
	return f.changes, f.changesErr
}

func (f *fakeRepo) Upstream(ctx context.Context, branch string) (string, error) {
	if f.upstreamErr != nil {
		return "", f.upstreamErr
	}
	if f.upstream == "" {
		return "", vcs.ErrNoUpstream
	}
	return f.upstream, nil
}

func (f *fakeRepo) AheadBehind(ctx context.Context, local, upstream string) (int, int, error) {
	return f.ahead, f.behind, f.countErr
}

// writeProjectFile creates rel (and its parents) under dir.
func writeProjectFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	path := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}
