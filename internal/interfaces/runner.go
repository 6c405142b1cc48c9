package interfaces

import "context"

// CommandRunner executes external programs
type CommandRunner interface {
	// Run executes name with args in dir, streaming output to the terminal.
	// A non-zero exit status is returned as an error.
	Run(ctx context.Context, dir string, name string, args ...string) error

	// Probe executes name with args silently and reports whether it exited successfully
	Probe(ctx context.Context, name string, args ...string) bool

	// Output executes name with args and returns its trimmed combined output
	Output(ctx context.Context, name string, args ...string) (string, error)

	// LookPath resolves an executable name against PATH
	LookPath(name string) (string, error)
}
