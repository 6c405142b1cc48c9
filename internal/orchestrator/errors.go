package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"

	"wsetup-cli/internal/python"
	"wsetup-cli/internal/repo"
	"wsetup-cli/internal/runner"
)

// Error types for different categories of failures
var (
	ErrToolMissing          = errors.New("missing tool")
	ErrRepoNotFound         = errors.New("repository not found")
	ErrSubprocess           = errors.New("command failed")
	ErrDownload             = errors.New("download error")
	ErrConfigurationInvalid = errors.New("configuration error")
	ErrValidationFailed     = errors.New("validation error")
)

// SetupError represents a structured error with actionable guidance
type SetupError struct {
	Type     error
	Message  string
	Guidance string
	Cause    error
}

func (e *SetupError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Type, e.Message)
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	if e.Guidance != "" {
		msg += "\n\nSuggestion: " + e.Guidance
	}
	return msg
}

func (e *SetupError) Unwrap() error {
	return e.Cause
}

// Is matches the error category as well as the cause chain
func (e *SetupError) Is(target error) bool {
	return e.Type == target
}

// Error constructors with actionable guidance

func NewConfigurationError(message string, cause error) *SetupError {
	guidance := "Check your configuration file syntax. " +
		"Use 'wsetup --config /path/to/config.toml' to specify a different config file."

	if cause != nil {
		text := cause.Error()
		if strings.Contains(text, "permission") {
			guidance = "Check file permissions for your configuration directory. " +
				"Ensure you have read access to ~/.config/wsetup/"
		} else if strings.Contains(text, "does not exist") {
			guidance = "The configuration file doesn't exist. Create it or drop the --config flag " +
				"to use ~/.config/wsetup/config.toml."
		}
	}

	return &SetupError{
		Type:     ErrConfigurationInvalid,
		Message:  message,
		Guidance: guidance,
		Cause:    cause,
	}
}

func NewToolMissingError(tool string, cause error) *SetupError {
	message := fmt.Sprintf("'%s' not found on PATH", tool)
	guidance := fmt.Sprintf("Install %s and make sure it is on PATH, then re-run wsetup.", tool)

	switch tool {
	case "git":
		guidance = "Install Git (https://git-scm.com/downloads) and ensure 'git' is on PATH."
		if runtime.GOOS == "darwin" {
			guidance = "Install Git with 'xcode-select --install' or 'brew install git'."
		}
	case "code":
		guidance = "Install VS Code and run 'Shell Command: Install code command in PATH' " +
			"from the command palette."
	}

	return &SetupError{
		Type:     ErrToolMissing,
		Message:  message,
		Guidance: guidance,
		Cause:    cause,
	}
}

func NewRepoNotFoundError(start string, depth int) *SetupError {
	return &SetupError{
		Type:    ErrRepoNotFound,
		Message: fmt.Sprintf("no Git repository found at or above %s (searched %d levels)", start, depth),
		Guidance: "Run wsetup inside a Git repository, or clone one with " +
			"'wsetup --repo git@github.com:org/repo.git'.",
		Cause: repo.ErrNotFound,
	}
}

func NewSubprocessError(step string, cause error) *SetupError {
	message := fmt.Sprintf("%s failed", step)
	guidance := "Check the command output above for details."

	var cmdErr *runner.CommandError
	if errors.As(cause, &cmdErr) {
		if code := cmdErr.ExitCode(); code >= 0 {
			message = fmt.Sprintf("%s failed with exit status %d", step, code)
		}
	}

	switch {
	case strings.Contains(step, "clone"):
		guidance = "Check the repository URL and that your SSH key or credentials grant access. " +
			"Try the same 'git clone' by hand to see the full error."
	case strings.Contains(step, "virtual environment"):
		guidance = "Pass a different interpreter with --python (a path, command or version like 3.11)."
	case strings.Contains(step, "dependencies"):
		guidance = "Fix the failing requirement and re-run, or use --skip-install to finish the rest of the setup."
	}

	return &SetupError{
		Type:     ErrSubprocess,
		Message:  message,
		Guidance: guidance,
		Cause:    cause,
	}
}

func NewDownloadError(cause error) *SetupError {
	message := "could not provision a portable Python runtime"
	guidance := "Check your network connection, or install a suitable Python yourself " +
		"and pass it with --python."

	switch {
	case errors.Is(cause, python.ErrChecksumMismatch):
		guidance = "The downloaded archive is corrupt or was tampered with. Delete the runtime directory and retry."
	case errors.Is(cause, python.ErrPortableMissing):
		guidance = "The archive layout was not recognised. Check portable_tag and portable_base_url in your config."
	case errors.Is(cause, python.ErrDownloadDeclined):
		guidance = "Install a suitable Python yourself and pass it with --python, or accept the download."
	}

	return &SetupError{
		Type:     ErrDownload,
		Message:  message,
		Guidance: guidance,
		Cause:    cause,
	}
}

func NewValidationError(field string, value interface{}, reason string) *SetupError {
	message := fmt.Sprintf("validation failed for %s: %v (%s)", field, value, reason)
	guidance := "Check the input value and ensure it meets the required format."

	switch field {
	case "repo":
		guidance = "Use an SSH (git@host:org/repo.git) or HTTPS clone URL."
	case "dest":
		guidance = "Pass --dest with a directory name or path for the clone."
	case "python":
		guidance = "--python accepts an interpreter path, a command such as 'py -3.11', or a version like 3.11."
	}

	return &SetupError{
		Type:     ErrValidationFailed,
		Message:  message,
		Guidance: guidance,
	}
}

// Classify wraps a step error into a SetupError of the matching category.
// Errors that already are SetupErrors, and cancellation, pass through.
func Classify(step string, err error) error {
	if err == nil {
		return nil
	}

	var setupErr *SetupError
	if errors.As(err, &setupErr) || errors.Is(err, context.Canceled) {
		return err
	}

	var cmdErr *runner.CommandError
	switch {
	case errors.Is(err, repo.ErrGitMissing):
		return NewToolMissingError("git", err)
	case errors.As(err, &cmdErr):
		return NewSubprocessError(step, err)
	case errors.Is(err, python.ErrDownloadFailed),
		errors.Is(err, python.ErrUnsafeArchive),
		errors.Is(err, python.ErrChecksumMismatch),
		errors.Is(err, python.ErrPortableMissing),
		errors.Is(err, python.ErrDownloadDeclined):
		return NewDownloadError(err)
	}

	return &SetupError{
		Type:     errors.New(step),
		Message:  "unexpected failure",
		Guidance: "Re-run with --verbose for more detail.",
		Cause:    err,
	}
}
