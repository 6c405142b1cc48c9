// Package orchestrator runs the workspace setup steps in order and turns
// their failures into errors with guidance for the user.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"wsetup-cli/internal/editor"
	"wsetup-cli/internal/interfaces"
	"wsetup-cli/internal/launcher"
	"wsetup-cli/internal/logger"
	"wsetup-cli/internal/python"
	"wsetup-cli/internal/repo"
	"wsetup-cli/internal/scaffold"
	"wsetup-cli/pkg/models"
)

// Output is the reporter plus the plain lines of the final summary
type Output interface {
	interfaces.Reporter
	Title(format string, args ...any)
	Println(format string, args ...any)
}

// Orchestrator coordinates all components of a workspace setup
type Orchestrator struct {
	cfg        *interfaces.Config
	runner     interfaces.CommandRunner
	downloader interfaces.Downloader
	output     Output
	prompter   interfaces.Prompter
	fs         afero.Fs
	log        *logger.Logger
	goos       string
	goarch     string
}

// Option customizes an Orchestrator
type Option func(*Orchestrator)

// WithPrompter enables interactive questions
func WithPrompter(p interfaces.Prompter) Option {
	return func(o *Orchestrator) { o.prompter = p }
}

// WithFs replaces the filesystem used for the files the tool writes
func WithFs(fs afero.Fs) Option {
	return func(o *Orchestrator) { o.fs = fs }
}

// WithPlatform overrides the target platform
func WithPlatform(goos, goarch string) Option {
	return func(o *Orchestrator) {
		o.goos = goos
		o.goarch = goarch
	}
}

// New creates an orchestrator with all required components
func New(cfg *interfaces.Config, runner interfaces.CommandRunner, downloader interfaces.Downloader, output Output, log *logger.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cfg:        cfg,
		runner:     runner,
		downloader: downloader,
		output:     output,
		fs:         afero.NewOsFs(),
		log:        log,
		goos:       runtime.GOOS,
		goarch:     runtime.GOARCH,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run performs the whole setup: repository, baseline files, Python
// environment, editor configuration and launchers.
func (o *Orchestrator) Run(ctx context.Context, request *models.SetupRequest) error {
	if err := o.validateRequest(request); err != nil {
		return err
	}

	root, err := o.ResolveRepository(ctx, request)
	if err != nil {
		return err
	}
	o.output.Println("📁 Working in repo: %s", root)

	if err := o.Scaffold(root); err != nil {
		return err
	}
	if err := o.ProvisionPython(ctx, root, request); err != nil {
		return err
	}
	if err := o.WriteEditorConfig(root); err != nil {
		return err
	}

	launchers := o.cfg.Launchers && !request.SkipLaunchers
	if launchers {
		if err := o.WriteLaunchers(root); err != nil {
			return err
		}
	} else {
		o.output.Info("Skipping launcher scripts.")
	}

	o.summary(launchers)
	return nil
}

// ResolveRepository clones request.Repo or finds the repository enclosing
// the working directory. In interactive mode a missing repository is asked for.
func (o *Orchestrator) ResolveRepository(ctx context.Context, request *models.SetupRequest) (string, error) {
	cwd, err := o.workDir(request)
	if err != nil {
		return "", err
	}

	url := request.Repo
	if url == "" {
		if request.Dest != "" {
			o.output.Warn("--dest is ignored without --repo")
		}

		root, err := repo.DetectRoot(cwd, o.cfg.RepoSearchDepth)
		if err == nil {
			return root, nil
		}
		if !errors.Is(err, repo.ErrNotFound) {
			return "", err
		}
		if o.prompter == nil {
			return "", NewRepoNotFoundError(cwd, o.cfg.RepoSearchDepth)
		}

		if url, err = o.prompter.AskRepoURL(); err != nil {
			return "", fmt.Errorf("repository prompt: %w", err)
		}
	}

	dest, err := repo.DefaultDest(cwd, url, request.Dest)
	if err != nil {
		return "", NewValidationError("dest", url, err.Error())
	}

	root, err := repo.NewManager(o.runner, o.output).Clone(ctx, url, dest)
	if err != nil {
		return "", Classify("git clone", err)
	}
	return root, nil
}

// Scaffold creates the secrets file, the working config copy and the
// .gitignore entries.
func (o *Orchestrator) Scaffold(root string) error {
	s := scaffold.New(o.fs, root, o.output)

	if err := s.EnsureSecrets(o.cfg.SecretsFile); err != nil {
		return Classify("secrets file", err)
	}
	if err := s.CopyDefaultConfig(o.cfg.DefaultConfig, o.cfg.WorkingConfig); err != nil {
		return Classify("default config copy", err)
	}

	extra := []string{
		filepath.ToSlash(o.cfg.VenvDir) + "/",
		filepath.ToSlash(o.cfg.RuntimeDir) + "/",
		filepath.ToSlash(o.cfg.SecretsFile),
	}
	if err := s.EnsureGitignore(extra...); err != nil {
		return Classify(".gitignore update", err)
	}
	return nil
}

// ProvisionPython creates the virtual environment and installs dependencies
func (o *Orchestrator) ProvisionPython(ctx context.Context, root string, request *models.SetupRequest) error {
	p := o.provisioner()

	venvPython, manifests, err := p.EnsureVenv(ctx, root, request.Python)
	if err != nil {
		return Classify("creating the virtual environment", err)
	}

	if request.SkipInstall {
		o.output.Info("Skipping dependency install.")
		return nil
	}
	if err := p.Install(ctx, root, venvPython, manifests); err != nil {
		return Classify("installing dependencies", err)
	}
	return nil
}

// WriteEditorConfig merges the VS Code settings, launch and extension files
func (o *Orchestrator) WriteEditorConfig(root string) error {
	w := editor.New(o.fs, root, o.cfg.VenvDir, o.goos, o.output, o.log.GetChildLogger("editor"))
	if err := w.WriteAll(); err != nil {
		return Classify("editor configuration", err)
	}
	return nil
}

// WriteLaunchers renders the secure launcher scripts
func (o *Orchestrator) WriteLaunchers(root string) error {
	w := launcher.New(o.fs, root, launcher.NewProcessor(o.cfg.TemplatesLocation), o.output)
	if err := w.Write(); err != nil {
		return Classify("launcher scripts", err)
	}
	return nil
}

func (o *Orchestrator) validateRequest(request *models.SetupRequest) error {
	if request == nil {
		return NewValidationError("request", nil, "request cannot be nil")
	}
	if strings.ContainsAny(request.Repo, " \t\n") {
		return NewValidationError("repo", request.Repo, "URL cannot contain whitespace")
	}
	if strings.HasPrefix(request.Python, "-") {
		return NewValidationError("python", request.Python, "looks like a flag")
	}
	return nil
}

func (o *Orchestrator) provisioner() *python.Provisioner {
	p := python.NewProvisioner(o.runner, o.downloader, o.output, o.log.GetChildLogger("python"), o.cfg)
	p.SetPlatform(o.goos, o.goarch)
	if o.prompter != nil {
		p.ConfirmDownload = o.prompter.ConfirmDownload
	}
	return p
}

func (o *Orchestrator) workDir(request *models.SetupRequest) (string, error) {
	if request.WorkDir != "" {
		return request.WorkDir, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}
	return cwd, nil
}

func (o *Orchestrator) summary(launchers bool) {
	o.output.Println("")
	o.output.Title("🎉 Workspace setup complete.")
	o.output.Println("Open the folder in VS Code; it should auto-select %s and have Copilot disabled for this workspace.",
		filepath.ToSlash(o.cfg.VenvDir))
	if launchers {
		o.output.Println("To force-disable Copilot extensions at launch, use: %s/code_secure.sh or %s/code_secure.ps1",
			launcher.Dir, launcher.Dir)
	}
}

// CheckStatus is the outcome of a doctor check
type CheckStatus string

const (
	CheckPass CheckStatus = "pass"
	CheckWarn CheckStatus = "warn"
	CheckFail CheckStatus = "fail"
)

// Check is one line of the doctor report
type Check struct {
	Name   string
	Status CheckStatus
	Detail string
}

// Doctor inspects the tools and workspace state the setup depends on. The
// error is non-nil when any check failed.
func (o *Orchestrator) Doctor(ctx context.Context, request *models.SetupRequest) ([]Check, error) {
	cwd, err := o.workDir(request)
	if err != nil {
		return nil, err
	}

	var checks []Check
	add := func(name string, status CheckStatus, format string, args ...any) {
		checks = append(checks, Check{Name: name, Status: status, Detail: fmt.Sprintf(format, args...)})
	}

	if out, err := o.runner.Output(ctx, "git", "--version"); err == nil {
		add("git", CheckPass, "%s", out)
	} else {
		add("git", CheckFail, "not found on PATH")
	}

	if path, err := o.runner.LookPath("code"); err == nil {
		add("code", CheckPass, "%s", path)
	} else {
		add("code", CheckWarn, "not found on PATH; launcher scripts will not work")
	}

	if version, ok := o.provisioner().HostVersion(ctx); ok {
		add("python", CheckPass, "Python %s", version)
	} else {
		add("python", CheckWarn, "no python3 on PATH; a portable runtime will be downloaded")
	}

	root, err := repo.DetectRoot(cwd, o.cfg.RepoSearchDepth)
	if err != nil {
		add("repository", CheckWarn, "not inside a Git repository (searched %d levels from %s)", o.cfg.RepoSearchDepth, cwd)
	} else {
		add("repository", CheckPass, "%s", root)
		o.workspaceChecks(root, add)
	}

	failed := 0
	for _, c := range checks {
		switch c.Status {
		case CheckPass:
			o.output.OK("%s: %s", c.Name, c.Detail)
		case CheckWarn:
			o.output.Warn("%s: %s", c.Name, c.Detail)
		case CheckFail:
			failed++
			o.output.Warn("%s: FAILED: %s", c.Name, c.Detail)
		}
	}
	if failed > 0 {
		return checks, &SetupError{
			Type:     ErrValidationFailed,
			Message:  fmt.Sprintf("%d doctor check(s) failed", failed),
			Guidance: "Install the missing tools listed above and re-run 'wsetup doctor'.",
		}
	}
	return checks, nil
}

func (o *Orchestrator) workspaceChecks(root string, add func(string, CheckStatus, string, ...any)) {
	venv := filepath.Join(root, o.cfg.VenvDir)
	if exists, _ := afero.DirExists(o.fs, venv); exists {
		add("venv", CheckPass, "%s", o.cfg.VenvDir)
	} else {
		add("venv", CheckWarn, "%s missing; run wsetup to create it", o.cfg.VenvDir)
	}

	entries, err := afero.ReadDir(o.fs, filepath.Join(root, o.cfg.RuntimeDir))
	var cached []string
	if err == nil {
		for _, e := range entries {
			if e.IsDir() {
				cached = append(cached, e.Name())
			}
		}
	}
	sort.Strings(cached)
	if len(cached) == 0 {
		add("runtime cache", CheckPass, "no portable runtimes in %s", o.cfg.RuntimeDir)
	} else {
		add("runtime cache", CheckPass, "%s: %v", o.cfg.RuntimeDir, cached)
	}
}
