package policy

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadBranchInfo(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    BranchInfo
	}{
		{
			name:    "integer pr number",
			content: `{"branch": "story-3", "pr_number": 17, "current_story": "STORY-3"}`,
			want:    BranchInfo{Branch: "story-3", PRNumber: "17", CurrentStory: "STORY-3"},
		},
		{
			name:    "string pr number",
			content: `{"pr_number": "17"}`,
			want:    BranchInfo{PRNumber: "17"},
		},
		{
			name:    "unknown fields are ignored",
			content: `{"branch": "b", "created_by": "planner"}`,
			want:    BranchInfo{Branch: "b"},
		},
		{
			name:    "empty object",
			content: `{}`,
			want:    BranchInfo{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeProjectFile(t, dir, "branch.info", tt.content)

			info, err := LoadBranchInfo(filepath.Join(dir, "branch.info"))
			require.NoError(t, err)
			assert.Equal(t, tt.want, *info)
		})
	}
}

func TestLoadBranchInfoErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadBranchInfo(filepath.Join(dir, "missing"))
	assert.True(t, errors.Is(err, ErrNoBranchInfo))

	writeProjectFile(t, dir, "bad.info", `{"pr_number": true}`)
	_, err = LoadBranchInfo(filepath.Join(dir, "bad.info"))
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNoBranchInfo))

	// A directory cannot be read as a file.
	_, err = LoadBranchInfo(dir)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNoBranchInfo))
}

func TestPRNumberValid(t *testing.T) {
	assert.True(t, PRNumber("12").Valid())
	assert.False(t, PRNumber("").Valid())
	assert.False(t, PRNumber("0").Valid())
	assert.False(t, PRNumber("1.5").Valid())
	assert.False(t, PRNumber("12abc").Valid())
}
