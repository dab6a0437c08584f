package policyhooks

import (
	"fmt"

	"github.com/codysoyland/policyhooks/pkg/config"
	"github.com/codysoyland/policyhooks/pkg/executor"
	"github.com/codysoyland/policyhooks/pkg/vcs"
)

// WithConfig sets the loaded configuration
func WithConfig(settings *config.Config) Option {
	return func(c *Config) error {
		if settings == nil {
			return fmt.Errorf("config cannot be nil")
		}
		c.Settings = settings
		return nil
	}
}

// WithRepository sets the repository collaborator
func WithRepository(repo vcs.StatusReader) Option {
	return func(c *Config) error {
		if repo == nil {
			return fmt.Errorf("repository cannot be nil")
		}
		c.Repository = repo
		return nil
	}
}

// WithRunner sets the command runner used by the default git collaborator
func WithRunner(r executor.Runner) Option {
	return func(c *Config) error {
		c.Runner = r
		return nil
	}
}

// WithProjectDir sets the project root that state files are resolved against
func WithProjectDir(dir string) Option {
	return func(c *Config) error {
		c.ProjectDir = dir
		return nil
	}
}

// WithVerbose enables or disables verbose output
func WithVerbose(v bool) Option {
	return func(c *Config) error {
		c.Verbose = v
		return nil
	}
}
