package policyhooks

import (
	"github.com/codysoyland/policyhooks/pkg/config"
	"github.com/codysoyland/policyhooks/pkg/executor"
	"github.com/codysoyland/policyhooks/pkg/policy"
	"github.com/codysoyland/policyhooks/pkg/vcs"
)

// Gate represents the main library instance: the three policies sharing one
// repository collaborator and one configuration
type Gate struct {
	config   *Config
	repo     vcs.StatusReader
	noVerify *policy.NoVerify
	guard    *policy.BranchGuard
	status   *policy.BranchStatus
}

// Config holds all configuration options
type Config struct {
	// Settings is the loaded configuration. Defaults to config.Default().
	Settings *config.Config
	// Repository answers branch and pull request queries. When nil a
	// vcs.Git collaborator is built from Runner and Settings.
	Repository vcs.StatusReader
	// Runner executes git and gh. When nil an executor rooted at the
	// project dir is created with the configured timeout.
	Runner executor.Runner
	// ProjectDir overrides Settings.ProjectDir when non-empty.
	ProjectDir string
	Verbose    bool
}

// Option represents a functional option for configuration
type Option func(*Config) error
