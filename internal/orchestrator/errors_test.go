package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"wsetup-cli/internal/python"
	"wsetup-cli/internal/repo"
	"wsetup-cli/internal/runner"
)

func TestSetupError_Error(t *testing.T) {
	err := &SetupError{
		Type:     ErrToolMissing,
		Message:  "'git' not found on PATH",
		Guidance: "Install Git.",
	}
	want := "missing tool: 'git' not found on PATH\n\nSuggestion: Install Git."
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	withCause := &SetupError{Type: ErrSubprocess, Message: "pip failed", Cause: errors.New("exit status 1")}
	if withCause.Error() != "command failed: pip failed: exit status 1" {
		t.Errorf("Error() = %q", withCause.Error())
	}
}

func TestSetupError_IsAndUnwrap(t *testing.T) {
	cause := fmt.Errorf("wrapped: %w", python.ErrChecksumMismatch)
	err := NewDownloadError(cause)

	if !errors.Is(err, ErrDownload) {
		t.Error("Expected error to match its category")
	}
	if !errors.Is(err, python.ErrChecksumMismatch) {
		t.Error("Expected error to match its cause")
	}
	if errors.Is(err, ErrSubprocess) {
		t.Error("Expected error not to match another category")
	}
	if !strings.Contains(err.Guidance, "corrupt") {
		t.Errorf("Expected checksum guidance, got %q", err.Guidance)
	}
}

func TestClassify(t *testing.T) {
	existing := NewRepoNotFoundError("/tmp", 6)

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"git missing", repo.ErrGitMissing, ErrToolMissing},
		{"command error", fmt.Errorf("failed to create virtual environment: %w", &runner.CommandError{Args: []string{"python3", "-m", "venv"}, Err: errors.New("exit status 1")}), ErrSubprocess},
		{"download", fmt.Errorf("%w: timeout", python.ErrDownloadFailed), ErrDownload},
		{"unsafe archive", python.ErrUnsafeArchive, ErrDownload},
		{"declined", python.ErrDownloadDeclined, ErrDownload},
		{"already classified", existing, ErrRepoNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify("step", tt.err)
			if !errors.Is(got, tt.want) {
				t.Errorf("Classify() = %v, want category %v", got, tt.want)
			}
		})
	}

	if Classify("step", nil) != nil {
		t.Error("Classify(nil) should be nil")
	}
	if !errors.Is(Classify("step", context.Canceled), context.Canceled) {
		t.Error("cancellation should pass through")
	}

	unknown := Classify("editor configuration", errors.New("disk full"))
	var setupErr *SetupError
	if !errors.As(unknown, &setupErr) || !strings.Contains(unknown.Error(), "disk full") {
		t.Errorf("unknown errors should be wrapped, got %v", unknown)
	}
}

func TestNewSubprocessError_Guidance(t *testing.T) {
	tests := []struct {
		step string
		want string
	}{
		{"git clone", "SSH key"},
		{"creating the virtual environment", "--python"},
		{"installing dependencies", "--skip-install"},
	}

	for _, tt := range tests {
		t.Run(tt.step, func(t *testing.T) {
			err := NewSubprocessError(tt.step, errors.New("boom"))
			if !strings.Contains(err.Guidance, tt.want) {
				t.Errorf("Guidance = %q, want it to mention %q", err.Guidance, tt.want)
			}
		})
	}
}
