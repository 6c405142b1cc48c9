package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"wsetup-cli/internal/orchestrator"
	"wsetup-cli/pkg/models"
)

func TestLoadConfiguration(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	tests := []struct {
		name      string
		content   string
		verbose   bool
		wantLevel string
		wantErr   bool
	}{
		{name: "defaults", wantLevel: "info"},
		{name: "verbose flag", verbose: true, wantLevel: "debug"},
		{name: "file level", content: "log_level = \"warn\"\n", wantLevel: "warn"},
		{name: "verbose beats file", content: "log_level = \"warn\"\n", verbose: true, wantLevel: "debug"},
		{name: "invalid file value", content: "repo_search_depth = 0\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := models.NewSetupRequest()
			request.Verbose = tt.verbose
			if tt.content != "" {
				request.ConfigPath = filepath.Join(t.TempDir(), "config.toml")
				if err := os.WriteFile(request.ConfigPath, []byte(tt.content), 0644); err != nil {
					t.Fatal(err)
				}
			}

			cfg, err := loadConfiguration(request)
			if (err != nil) != tt.wantErr {
				t.Fatalf("loadConfiguration() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, orchestrator.ErrConfigurationInvalid) {
					t.Errorf("Expected ErrConfigurationInvalid, got %v", err)
				}
				return
			}
			if cfg.LogLevel != tt.wantLevel {
				t.Errorf("LogLevel = %s, want %s", cfg.LogLevel, tt.wantLevel)
			}
		})
	}
}

func TestLoadConfiguration_MissingExplicitFile(t *testing.T) {
	request := models.NewSetupRequest()
	request.ConfigPath = filepath.Join(t.TempDir(), "missing.toml")

	_, err := loadConfiguration(request)
	if !errors.Is(err, orchestrator.ErrConfigurationInvalid) {
		t.Fatalf("Expected ErrConfigurationInvalid, got %v", err)
	}
}

func TestResolveInteractiveMode_YesFlag(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	request := models.NewSetupRequest()
	request.ForceNonInteractive = true

	cfg, err := loadConfiguration(request)
	if err != nil {
		t.Fatal(err)
	}
	cfg.InteractiveDefault = true

	resolveInteractiveMode(request, cfg)
	if request.Interactive {
		t.Error("Expected --yes to disable interactive mode")
	}
}

func TestWriteEditorConfig_OutsideRepository(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	request := models.NewSetupRequest()
	request.WorkDir = t.TempDir()

	err := WriteEditorConfig(context.Background(), request)
	if !errors.Is(err, orchestrator.ErrRepoNotFound) {
		t.Fatalf("Expected ErrRepoNotFound, got %v", err)
	}
}

func TestWriteEditorConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, ".git"), 0755); err != nil {
		t.Fatal(err)
	}

	request := models.NewSetupRequest()
	request.WorkDir = root
	if err := WriteEditorConfig(context.Background(), request); err != nil {
		t.Fatalf("WriteEditorConfig() failed: %v", err)
	}

	for _, name := range []string{"settings.json", "launch.json", "extensions.json"} {
		if _, err := os.Stat(filepath.Join(root, ".vscode", name)); err != nil {
			t.Errorf("Expected .vscode/%s: %v", name, err)
		}
	}
}
