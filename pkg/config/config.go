// Package config provides configuration management for policyhooks.
// Configuration is loaded from (highest to lowest priority):
// 1. Command-line flags
// 2. Environment variables (POLICYHOOKS_*, CLAUDE_PROJECT_DIR)
// 3. Project config (.claude/policyhooks.yaml under the project dir, or POLICYHOOKS_CONFIG)
//    git_command and gh_command are ignored in .claude/policyhooks.yaml
// 4. Home config (~/.config/policyhooks/config.yaml)
// 5. Defaults
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/codysoyland/policyhooks/pkg/executor"
	"github.com/codysoyland/policyhooks/pkg/policy"
)

// Environment variables consulted by Load.
const (
	EnvProjectDir = "CLAUDE_PROJECT_DIR"
	EnvConfig     = "POLICYHOOKS_CONFIG"
	EnvVerbose    = "POLICYHOOKS_VERBOSE"
	EnvTimeout    = "POLICYHOOKS_TIMEOUT"
	EnvGit        = "POLICYHOOKS_GIT"
	EnvGH         = "POLICYHOOKS_GH"
)

// ProjectConfigFile is the project-relative config location.
const ProjectConfigFile = ".claude/policyhooks.yaml"

// Config holds all policyhooks configuration.
type Config struct {
	// ProjectDir is the project root the state files are resolved against.
	ProjectDir string `yaml:"project_dir" json:"project_dir"`

	// Verbose enables diagnostic logging on stderr.
	Verbose bool `yaml:"verbose" json:"verbose"`

	// Timeout bounds every git / gh invocation (Go duration string).
	Timeout string `yaml:"timeout" json:"timeout"`

	// GitCommand and GHCommand name the binaries to run. They are not read
	// from the project's own config file.
	GitCommand string `yaml:"git_command" json:"git_command"`
	GHCommand  string `yaml:"gh_command" json:"gh_command"`

	NoVerify NoVerifyConfig `yaml:"no_verify" json:"no_verify"`
	Guard    GuardConfig    `yaml:"guard" json:"guard"`
	Status   StatusConfig   `yaml:"status" json:"status"`
}

// NoVerifyConfig holds --no-verify detector settings.
type NoVerifyConfig struct {
	// ShellTools are the tool names whose command parameter is inspected.
	ShellTools []string `yaml:"shell_tools" json:"shell_tools"`
}

// GuardConfig holds branch-safety guard settings.
type GuardConfig struct {
	// Indicators are the prompt substrings that activate the guard.
	Indicators []string `yaml:"indicators" json:"indicators"`

	// ProtectedBranches are glob patterns of integration branches.
	ProtectedBranches []string `yaml:"protected_branches" json:"protected_branches"`

	// PlanMarker is the plan approval marker file, relative to ProjectDir.
	PlanMarker string `yaml:"plan_marker" json:"plan_marker"`

	// BranchInfo is the branch descriptor file, relative to ProjectDir.
	BranchInfo string `yaml:"branch_info" json:"branch_info"`
}

// StatusConfig holds branch status advisory settings.
type StatusConfig struct {
	// WarnBranches are glob patterns the status report warns about.
	WarnBranches []string `yaml:"warn_branches" json:"warn_branches"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		ProjectDir: ".",
		Timeout:    executor.DefaultTimeout.String(),
		GitCommand: "git",
		GHCommand:  "gh",
		NoVerify: NoVerifyConfig{
			ShellTools: []string{policy.DefaultShellTool},
		},
		Guard: GuardConfig{
			Indicators:        append([]string(nil), policy.DefaultIndicators...),
			ProtectedBranches: append([]string(nil), policy.DefaultProtectedBranches...),
			PlanMarker:        policy.DefaultPlanMarker,
			BranchInfo:        policy.DefaultBranchInfo,
		},
		Status: StatusConfig{
			WarnBranches: append([]string(nil), policy.DefaultWarnBranches...),
		},
	}
}

// TimeoutDuration parses Timeout, falling back to the executor default for
// empty, malformed or non-positive values.
func (c *Config) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(c.Timeout))
	if err != nil || d <= 0 {
		return executor.DefaultTimeout
	}
	return d
}

// Load loads configuration with proper precedence.
// Priority: flags > env > project > home > defaults
//
// A missing config file is not an error. An unreadable or malformed file is
// skipped and reported in the returned error, while the returned Config is
// always usable.
func Load(flagOverrides *Config) (*Config, error) {
	cfg := Default()
	var errs []error

	homeConfig, err := loadFromPath(homeConfigPath())
	if err != nil {
		errs = append(errs, err)
	}
	if homeConfig != nil {
		cfg = merge(cfg, homeConfig)
	}

	// The project dir decides where the project config lives
	projectDir := resolveProjectDir(cfg, flagOverrides)

	path, explicit := projectConfigPath(projectDir)
	projectConfig, err := loadFromPath(path)
	if err != nil {
		errs = append(errs, err)
	}
	if projectConfig != nil {
		if !explicit {
			// A checked-out repository must not pick the binaries the hooks run
			projectConfig.GitCommand = ""
			projectConfig.GHCommand = ""
		}
		cfg = merge(cfg, projectConfig)
	}

	cfg = applyEnv(cfg)

	if flagOverrides != nil {
		cfg = merge(cfg, flagOverrides)
	}
	cfg.ProjectDir = projectDir

	return cfg, errors.Join(errs...)
}

// resolveProjectDir picks the project dir: flag > env > home config > ".".
func resolveProjectDir(cfg, flagOverrides *Config) string {
	if flagOverrides != nil && flagOverrides.ProjectDir != "" {
		return flagOverrides.ProjectDir
	}
	if v := strings.TrimSpace(os.Getenv(EnvProjectDir)); v != "" {
		return v
	}
	if cfg.ProjectDir != "" {
		return cfg.ProjectDir
	}
	return "."
}

// homeConfigPath returns the home config path.
func homeConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "policyhooks", "config.yaml")
}

// projectConfigPath returns the project config path and whether it was named
// explicitly through EnvConfig.
func projectConfigPath(projectDir string) (string, bool) {
	if override := strings.TrimSpace(os.Getenv(EnvConfig)); override != "" {
		return override, true
	}
	return filepath.Join(projectDir, ProjectConfigFile), false
}

// loadFromPath loads config from a YAML file. A missing file yields (nil, nil).
func loadFromPath(path string) (*Config, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	return &cfg, nil
}

// applyEnv applies environment variable overrides.
func applyEnv(cfg *Config) *Config {
	if v := strings.TrimSpace(os.Getenv(EnvVerbose)); v == "true" || v == "1" {
		cfg.Verbose = true
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		cfg.Timeout = v
	}
	if v := os.Getenv(EnvGit); v != "" {
		cfg.GitCommand = v
	}
	if v := os.Getenv(EnvGH); v != "" {
		cfg.GHCommand = v
	}
	return cfg
}

// mergeStr overwrites dst with src when src is non-empty.
func mergeStr(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}

// mergeList overwrites dst with src when src is non-empty.
func mergeList(dst *[]string, src []string) {
	if len(src) > 0 {
		*dst = append([]string(nil), src...)
	}
}

// merge merges src into dst, with src values taking precedence.
// Booleans can only be switched on by a higher layer.
func merge(dst, src *Config) *Config {
	mergeStr(&dst.ProjectDir, src.ProjectDir)
	if src.Verbose {
		dst.Verbose = true
	}
	mergeStr(&dst.Timeout, src.Timeout)
	mergeStr(&dst.GitCommand, src.GitCommand)
	mergeStr(&dst.GHCommand, src.GHCommand)

	mergeList(&dst.NoVerify.ShellTools, src.NoVerify.ShellTools)
	mergeGuard(&dst.Guard, &src.Guard)
	mergeList(&dst.Status.WarnBranches, src.Status.WarnBranches)

	return dst
}

// mergeGuard merges guard-specific config fields.
func mergeGuard(dst, src *GuardConfig) {
	mergeList(&dst.Indicators, src.Indicators)
	mergeList(&dst.ProtectedBranches, src.ProtectedBranches)
	mergeStr(&dst.PlanMarker, src.PlanMarker)
	mergeStr(&dst.BranchInfo, src.BranchInfo)
}
