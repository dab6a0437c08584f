package policy

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

// branchMatcher matches branch names against glob patterns such as "main"
// or "release/*".
type branchMatcher struct {
	globs []glob.Glob
}

func newBranchMatcher(patterns []string) (*branchMatcher, error) {
	m := &branchMatcher{}
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid branch pattern %q: %w", p, err)
		}
		m.globs = append(m.globs, g)
	}
	return m, nil
}

func (m *branchMatcher) Match(branch string) bool {
	if m == nil {
		return false
	}
	for _, g := range m.globs {
		if g.Match(branch) {
			return true
		}
	}
	return false
}
