package policy

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/codysoyland/policyhooks/pkg/vcs"
)

// ErrNoBranchInfo is returned when no branch descriptor exists.
var ErrNoBranchInfo = errors.New("no branch info")

// BranchInfo describes the branch and pull request of the story in progress
type BranchInfo struct {
	Branch       string   `json:"branch,omitempty"`
	PRNumber     PRNumber `json:"pr_number,omitempty"`
	CurrentStory string   `json:"current_story,omitempty"`
}

// PRNumber is a pull request number written either as a JSON integer or as a
// numeric string.
type PRNumber string

// UnmarshalJSON accepts integers, strings and null.
func (p *PRNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*p = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = PRNumber(s)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("pr_number: %w", err)
		}
		*p = PRNumber(n.String())
		return nil
	}
}

// Valid reports whether the number can be looked up.
func (p PRNumber) Valid() bool {
	return vcs.ValidPullRequest(string(p))
}

// LoadBranchInfo reads the descriptor at path. A missing file yields
// ErrNoBranchInfo; malformed content yields a parse error.
func LoadBranchInfo(path string) (*BranchInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNoBranchInfo
		}
		return nil, fmt.Errorf("read branch info: %w", err)
	}

	var info BranchInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("parse branch info %s: %w", path, err)
	}
	return &info, nil
}
