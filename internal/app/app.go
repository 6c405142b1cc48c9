// Package app wires configuration, logging and the orchestrator together for
// the commands of the CLI.
package app

import (
	"context"
	"fmt"
	"os"

	"wsetup-cli/internal/config"
	"wsetup-cli/internal/interactive"
	"wsetup-cli/internal/interfaces"
	"wsetup-cli/internal/logger"
	"wsetup-cli/internal/orchestrator"
	"wsetup-cli/internal/python"
	"wsetup-cli/internal/repo"
	"wsetup-cli/internal/runner"
	"wsetup-cli/pkg/models"
)

// Run executes the full workspace setup
func Run(ctx context.Context, request *models.SetupRequest) error {
	orch, _, err := newOrchestrator(request)
	if err != nil {
		return err
	}
	return orch.Run(ctx, request)
}

// Doctor reports on the tools and workspace state the setup depends on
func Doctor(ctx context.Context, request *models.SetupRequest) error {
	request.ForceNonInteractive = true
	orch, _, err := newOrchestrator(request)
	if err != nil {
		return err
	}
	_, err = orch.Doctor(ctx, request)
	return err
}

// WriteEditorConfig only merges the VS Code configuration of the repository
// enclosing the working directory.
func WriteEditorConfig(ctx context.Context, request *models.SetupRequest) error {
	orch, cfg, err := newOrchestrator(request)
	if err != nil {
		return err
	}

	start := request.WorkDir
	if start == "" {
		if start, err = os.Getwd(); err != nil {
			return fmt.Errorf("failed to get current directory: %w", err)
		}
	}
	root, err := repo.DetectRoot(start, cfg.RepoSearchDepth)
	if err != nil {
		return orchestrator.NewRepoNotFoundError(start, cfg.RepoSearchDepth)
	}
	return orch.WriteEditorConfig(root)
}

func newOrchestrator(request *models.SetupRequest) (*orchestrator.Orchestrator, *interfaces.Config, error) {
	cfg, err := loadConfiguration(request)
	if err != nil {
		return nil, nil, err
	}

	log := logger.NewLogger("wsetup", cfg.LogLevel)
	log.Debug().
		Str("config", request.ConfigPath).
		Str("venv_dir", cfg.VenvDir).
		Str("preferred_python", cfg.PreferredPython).
		Msg("configuration resolved")

	resolveInteractiveMode(request, cfg)

	console := orchestrator.NewConsole(os.Stdout)
	opts := []orchestrator.Option{}
	if request.Interactive {
		opts = append(opts, orchestrator.WithPrompter(interactive.NewPrompter()))
	}

	orch := orchestrator.New(
		cfg,
		runner.New(console, log.GetChildLogger("runner")),
		python.NewHTTPDownloader(),
		console,
		log,
		opts...,
	)
	return orch, cfg, nil
}

// loadConfiguration loads and resolves configuration with precedence
func loadConfiguration(request *models.SetupRequest) (*interfaces.Config, error) {
	manager := config.NewManager()

	if _, err := manager.Load(request.ConfigPath); err != nil {
		return nil, orchestrator.NewConfigurationError("failed to load configuration", err)
	}

	flags := &interfaces.Config{}
	if request.Verbose {
		flags.LogLevel = "debug"
	}
	manager.SetFlags(flags)

	cfg, err := manager.Resolve()
	if err != nil {
		return nil, orchestrator.NewConfigurationError("failed to resolve configuration", err)
	}
	if err := manager.Validate(cfg); err != nil {
		return nil, orchestrator.NewConfigurationError("invalid configuration", err)
	}
	return cfg, nil
}

// resolveInteractiveMode determines the final interactive mode based on flags and config
func resolveInteractiveMode(request *models.SetupRequest, cfg *interfaces.Config) {
	request.Interactive = interactive.ResolveMode(request, cfg.InteractiveDefault, interactive.IsTerminal())
}
