package interfaces

import (
	"context"
	"testing"
)

// Test that all interfaces can be implemented (compilation test)
func TestInterfaceCompilation(t *testing.T) {
	config := &Config{
		VenvDir:         ".venv",
		RuntimeDir:      ".pythonrt",
		Manifest:        "requirements.txt",
		HeavyPackages:   []string{"numpy"},
		PreferredPython: "3.11",
		RepoSearchDepth: 6,
		Launchers:       true,
	}

	if config == nil {
		t.Error("Failed to create interface data structures")
	}
}

// Mock implementations to verify interfaces are properly defined
type mockConfigManager struct{}

func (m *mockConfigManager) Load(path string) (*Config, error) {
	return &Config{}, nil
}

func (m *mockConfigManager) Resolve() (*Config, error) {
	return &Config{}, nil
}

func (m *mockConfigManager) Validate(config *Config) error {
	return nil
}

type mockRunner struct{}

func (m *mockRunner) Run(ctx context.Context, dir string, name string, args ...string) error {
	return nil
}

func (m *mockRunner) Probe(ctx context.Context, name string, args ...string) bool {
	return true
}

func (m *mockRunner) Output(ctx context.Context, name string, args ...string) (string, error) {
	return "", nil
}

func (m *mockRunner) LookPath(name string) (string, error) {
	return "/usr/bin/" + name, nil
}

type mockDownloader struct{}

func (m *mockDownloader) Download(ctx context.Context, url string, dest string) error {
	return nil
}

func (m *mockDownloader) Fetch(ctx context.Context, url string) ([]byte, error) {
	return nil, nil
}

type mockReporter struct{}

func (m *mockReporter) OK(format string, args ...any)    {}
func (m *mockReporter) Info(format string, args ...any)  {}
func (m *mockReporter) Warn(format string, args ...any)  {}
func (m *mockReporter) Running(cmd []string, dir string) {}

type mockPrompter struct{}

func (m *mockPrompter) AskRepoURL() (string, error)                  { return "", nil }
func (m *mockPrompter) ConfirmDownload(version string) (bool, error) { return true, nil }

// Test that mock implementations satisfy interfaces
func TestInterfaceImplementations(t *testing.T) {
	var _ ConfigManager = &mockConfigManager{}
	var _ CommandRunner = &mockRunner{}
	var _ Downloader = &mockDownloader{}
	var _ Reporter = &mockReporter{}
	var _ Prompter = &mockPrompter{}
}
