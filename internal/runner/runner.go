// Package runner executes external programs (git, python, pip) on behalf of
// the setup steps.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/kballard/go-shellquote"
	"wsetup-cli/internal/interfaces"
	"wsetup-cli/internal/logger"
)

// ExecRunner implements CommandRunner on top of os/exec
type ExecRunner struct {
	reporter interfaces.Reporter
	log      *logger.Logger
	stdout   io.Writer
	stderr   io.Writer
}

// New creates a runner that echoes each command through reporter and streams
// child output to the terminal.
func New(reporter interfaces.Reporter, log *logger.Logger) *ExecRunner {
	return &ExecRunner{
		reporter: reporter,
		log:      log,
		stdout:   os.Stdout,
		stderr:   os.Stderr,
	}
}

// SetOutput redirects child process output
func (r *ExecRunner) SetOutput(stdout, stderr io.Writer) {
	r.stdout = stdout
	r.stderr = stderr
}

// Run executes name with args in dir. The exit status is checked.
func (r *ExecRunner) Run(ctx context.Context, dir string, name string, args ...string) error {
	argv := append([]string{name}, args...)
	r.reporter.Running(argv, dir)

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdin = os.Stdin
	cmd.Stdout = r.stdout
	cmd.Stderr = r.stderr

	if err := cmd.Run(); err != nil {
		return &CommandError{Args: argv, Dir: dir, Err: err}
	}
	return nil
}

// Probe executes name with args discarding output and reports success
func (r *ExecRunner) Probe(ctx context.Context, name string, args ...string) bool {
	cmd := exec.CommandContext(ctx, name, args...)
	err := cmd.Run()
	r.log.Debug().
		Str("cmd", shellquote.Join(append([]string{name}, args...)...)).
		Bool("ok", err == nil).
		Msg("probe")
	return err == nil
}

// Output executes name with args and returns trimmed combined output
func (r *ExecRunner) Output(ctx context.Context, name string, args ...string) (string, error) {
	var buf bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	if err := cmd.Run(); err != nil {
		return "", &CommandError{
			Args:   append([]string{name}, args...),
			Err:    err,
			Output: strings.TrimSpace(buf.String()),
		}
	}
	return strings.TrimSpace(buf.String()), nil
}

// LookPath resolves an executable name against PATH
func (r *ExecRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// CommandError describes a failed subprocess
type CommandError struct {
	Args   []string
	Dir    string
	Output string
	Err    error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("command %s failed: %v", shellquote.Join(e.Args...), e.Err)
	if e.Output != "" {
		msg += fmt.Sprintf(" (output: %s)", e.Output)
	}
	return msg
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ExitCode returns the child's exit status, or -1 when it did not run to completion
func (e *CommandError) ExitCode() int {
	var exitErr *exec.ExitError
	if errors.As(e.Err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
