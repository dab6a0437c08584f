// Package executor runs short-lived external commands (git, gh) with a hard
// upper bound on their runtime.
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os/exec"
	"strings"
	"syscall"
	"time"
)

// DefaultTimeout bounds a single external command when no timeout is set.
const DefaultTimeout = 10 * time.Second

// ErrTimeout is returned when a command does not finish within its timeout.
var ErrTimeout = errors.New("command timed out")

// Runner runs an external command and returns its standard output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
}

// ExitError reports a command that ran but exited non-zero
type ExitError struct {
	Command string
	Code    int
	Stderr  string
}

func (e *ExitError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s exited with code %d: %s", e.Command, e.Code, e.Stderr)
	}
	return fmt.Sprintf("%s exited with code %d", e.Command, e.Code)
}

// Executor runs commands in a fixed working directory
type Executor struct {
	dir     string
	timeout time.Duration
	verbose bool
}

// New creates a new executor instance
func New(dir string, timeout time.Duration) *Executor {
	return &Executor{
		dir:     dir,
		timeout: timeout,
	}
}

// SetVerbose sets the verbose mode flag
func (e *Executor) SetVerbose(verbose bool) {
	e.verbose = verbose
}

// Timeout returns the effective per-command timeout.
func (e *Executor) Timeout() time.Duration {
	if e.timeout <= 0 {
		return DefaultTimeout
	}
	return e.timeout
}

// Run executes name with args and returns its untrimmed standard output.
// The command and every process it spawns are killed once the timeout
// elapses or ctx is cancelled.
func (e *Executor) Run(ctx context.Context, name string, args ...string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("no command specified")
	}

	timeout := e.Timeout()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = e.dir

	// Own process group so a timeout takes down children too
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
	}
	cmd.Cancel = func() error {
		return killProcessTree(cmd)
	}
	cmd.WaitDelay = 2 * time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	display := strings.TrimSpace(name + " " + strings.Join(args, " "))
	if e.verbose {
		log.Printf("Executor: %s", display)
	}

	err := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %s after %s", ErrTimeout, display, timeout)
		}
		return "", fmt.Errorf("%s: %w", display, ctxErr)
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", &ExitError{
				Command: display,
				Code:    exitErr.ExitCode(),
				Stderr:  strings.TrimSpace(stderr.String()),
			}
		}
		return "", fmt.Errorf("failed to execute %s: %w", display, err)
	}

	return stdout.String(), nil
}

// killProcessTree terminates the command's process group, falling back to
// the main process when the group cannot be signalled.
func killProcessTree(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	pid := cmd.Process.Pid
	if err := syscall.Kill(-pid, syscall.SIGKILL); err != nil {
		if killErr := cmd.Process.Kill(); killErr != nil {
			return fmt.Errorf("failed to kill process %d: %w", pid, killErr)
		}
	}
	return nil
}
