package interfaces

// Reporter prints user-facing progress lines
type Reporter interface {
	// OK reports a completed step
	OK(format string, args ...any)

	// Info reports a step that was skipped or needed no change
	Info(format string, args ...any)

	// Warn reports a recoverable problem
	Warn(format string, args ...any)

	// Running echoes a command before it is executed
	Running(cmd []string, dir string)
}
