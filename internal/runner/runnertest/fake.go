// Package runnertest provides in-memory stand-ins for the command runner and
// reporter used by tests of packages that shell out.
package runnertest

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"
)

// Call is one recorded invocation
type Call struct {
	Dir  string
	Argv []string
}

// String returns the space-joined argv
func (c Call) String() string {
	return strings.Join(c.Argv, " ")
}

// Runner is a scripted CommandRunner. Keys of Probes, Outputs and Failures
// are space-joined argv.
type Runner struct {
	mu       sync.Mutex
	Calls    []Call
	Paths    map[string]string
	Probes   map[string]bool
	Outputs  map[string]string
	Failures map[string]error

	// OnRun is invoked for every Run call after it is recorded
	OnRun func(dir string, argv []string) error
}

// NewRunner creates an empty scripted runner
func NewRunner() *Runner {
	return &Runner{
		Paths:    map[string]string{},
		Probes:   map[string]bool{},
		Outputs:  map[string]string{},
		Failures: map[string]error{},
	}
}

func (r *Runner) record(dir string, argv []string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls = append(r.Calls, Call{Dir: dir, Argv: argv})
	return strings.Join(argv, " ")
}

// Run records the call and returns a scripted failure if any
func (r *Runner) Run(ctx context.Context, dir string, name string, args ...string) error {
	argv := append([]string{name}, args...)
	key := r.record(dir, argv)
	if err, ok := r.Failures[key]; ok {
		return err
	}
	if r.OnRun != nil {
		return r.OnRun(dir, argv)
	}
	return nil
}

// Probe records the call and returns the scripted result (default false)
func (r *Runner) Probe(ctx context.Context, name string, args ...string) bool {
	key := r.record("", append([]string{name}, args...))
	return r.Probes[key]
}

// Output records the call and returns the scripted output
func (r *Runner) Output(ctx context.Context, name string, args ...string) (string, error) {
	key := r.record("", append([]string{name}, args...))
	if err, ok := r.Failures[key]; ok {
		return "", err
	}
	out, ok := r.Outputs[key]
	if !ok {
		return "", fmt.Errorf("%s: %w", key, exec.ErrNotFound)
	}
	return out, nil
}

// LookPath returns the scripted path for name
func (r *Runner) LookPath(name string) (string, error) {
	if path, ok := r.Paths[name]; ok {
		return path, nil
	}
	return "", &exec.Error{Name: name, Err: exec.ErrNotFound}
}

// RunCalls returns the recorded Run/Probe/Output invocations as strings
func (r *Runner) RunCalls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.Calls))
	for _, c := range r.Calls {
		out = append(out, c.String())
	}
	return out
}

// Reporter records report lines by kind
type Reporter struct {
	mu    sync.Mutex
	Lines []string
}

func (r *Reporter) add(kind, format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Lines = append(r.Lines, kind+" "+fmt.Sprintf(format, args...))
}

// OK records a completed step
func (r *Reporter) OK(format string, args ...any) { r.add("ok", format, args...) }

// Info records a skipped step
func (r *Reporter) Info(format string, args ...any) { r.add("info", format, args...) }

// Warn records a warning
func (r *Reporter) Warn(format string, args ...any) { r.add("warn", format, args...) }

// Running records a command echo
func (r *Reporter) Running(cmd []string, dir string) { r.add("run", "%s", strings.Join(cmd, " ")) }

// Title records an emphasized line
func (r *Reporter) Title(format string, args ...any) { r.add("title", format, args...) }

// Println records a plain line
func (r *Reporter) Println(format string, args ...any) { r.add("say", format, args...) }

// Contains reports whether any recorded line contains substr
func (r *Reporter) Contains(substr string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, line := range r.Lines {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}
