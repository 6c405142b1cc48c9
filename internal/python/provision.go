// Package python selects a compatible interpreter, falling back to a
// downloaded portable CPython, and provisions the project virtual
// environment with its declared dependencies.
package python

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/kballard/go-shellquote"
	"wsetup-cli/internal/interfaces"
	"wsetup-cli/internal/logger"
)

// ErrDownloadDeclined is returned when the user refuses the portable runtime download
var ErrDownloadDeclined = errors.New("portable runtime download declined")

// Provisioner creates the virtual environment of a repository
type Provisioner struct {
	runner   interfaces.CommandRunner
	reporter interfaces.Reporter
	log      *logger.Logger
	cfg      *interfaces.Config
	portable *Portable

	GOOS string

	// ConfirmDownload, when set, is asked before a portable runtime is fetched
	ConfirmDownload func(version string) (bool, error)
}

// NewProvisioner creates a provisioner for the host platform
func NewProvisioner(runner interfaces.CommandRunner, downloader interfaces.Downloader, reporter interfaces.Reporter, log *logger.Logger, cfg *interfaces.Config) *Provisioner {
	return &Provisioner{
		runner:   runner,
		reporter: reporter,
		log:      log,
		cfg:      cfg,
		portable: &Portable{
			downloader:     downloader,
			reporter:       reporter,
			log:            log,
			BaseURL:        cfg.PortableBaseURL,
			Tag:            cfg.PortableTag,
			VerifyChecksum: cfg.VerifyChecksum,
			GOOS:           runtime.GOOS,
			GOARCH:         runtime.GOARCH,
		},
		GOOS: runtime.GOOS,
	}
}

// SetPlatform overrides the target platform, for tests and cross-checks
func (p *Provisioner) SetPlatform(goos, goarch string) {
	p.GOOS = goos
	p.portable.GOOS = goos
	p.portable.GOARCH = goarch
}

// Manifests lists the dependency manifests of root
func (p *Provisioner) Manifests(root string) ([]string, error) {
	return FindManifests(root, p.cfg.Manifest, p.cfg.RecursiveManifests)
}

// TargetVersion decides which interpreter version the environment should use:
// an explicit version wins, heavy manifests pin the preferred version, and
// otherwise the host interpreter version is used.
func (p *Provisioner) TargetVersion(ctx context.Context, spec string, manifests []string) string {
	if IsVersionSpec(spec) {
		return spec
	}
	if HasHeavy(manifests, p.cfg.HeavyPackages) {
		p.log.Debug().Str("version", p.cfg.PreferredPython).Msg("heavy packages declared; pinning interpreter")
		return p.cfg.PreferredPython
	}
	if v, ok := p.HostVersion(ctx); ok {
		return v
	}
	p.log.Debug().Msg("no host interpreter found; using preferred version")
	return p.cfg.PreferredPython
}

// HostVersion returns the major.minor of the default Python 3 interpreter on PATH
func (p *Provisioner) HostVersion(ctx context.Context) (string, bool) {
	candidates := [][]string{{"python3", "--version"}, {"python", "--version"}}
	if p.GOOS == "windows" {
		candidates = append([][]string{{"py", "-3", "--version"}}, candidates...)
	}

	for _, argv := range candidates {
		out, err := p.runner.Output(ctx, argv[0], argv[1:]...)
		if err != nil {
			continue
		}
		version, ok := ParseVersionOutput(out)
		if !ok {
			continue
		}
		mm, err := MajorMinor(version)
		if err != nil || !strings.HasPrefix(mm, "3.") {
			p.log.Debug().Str("cmd", argv[0]).Str("version", version).Msg("ignoring non-Python 3 interpreter")
			continue
		}
		return mm, true
	}
	return "", false
}

// FindInstalled returns the argv prefix of an installed interpreter matching
// spec or target, or nil when none is available.
func (p *Provisioner) FindInstalled(ctx context.Context, spec, target string) []string {
	if spec != "" && !IsVersionSpec(spec) {
		if argv := p.resolveSpec(spec); argv != nil {
			p.reporter.Info("🔧 --python specified → using %s", shellquote.Join(argv...))
			return argv
		}
		p.reporter.Warn("--python %s not found; looking for Python %s instead", spec, target)
	}

	mm, err := MajorMinor(target)
	if err != nil {
		return nil
	}

	if p.GOOS == "windows" {
		if p.runner.Probe(ctx, "py", "-"+mm, "-V") {
			return []string{"py", "-" + mm}
		}
		return nil
	}

	if path, err := p.runner.LookPath("python" + mm); err == nil {
		return []string{path}
	}
	return nil
}

func (p *Provisioner) resolveSpec(spec string) []string {
	// The venv is created with the repository root as working directory
	if _, err := os.Stat(spec); err == nil {
		abs, err := filepath.Abs(spec)
		if err != nil {
			return nil
		}
		return []string{abs}
	}

	argv, err := shellquote.Split(spec)
	if err != nil || len(argv) == 0 {
		return nil
	}
	path, err := p.runner.LookPath(argv[0])
	if err != nil {
		return nil
	}
	argv[0] = path
	return argv
}

// Provision makes sure root/<venv_dir> exists, creating it with a suitable
// interpreter, then installs the manifests unless install is false.
func (p *Provisioner) Provision(ctx context.Context, root, spec string, install bool) error {
	venvPython, manifests, err := p.EnsureVenv(ctx, root, spec)
	if err != nil {
		return err
	}

	if !install {
		p.reporter.Info("Skipping dependency install.")
		return nil
	}
	return p.Install(ctx, root, venvPython, manifests)
}

// EnsureVenv creates root/<venv_dir> unless it exists. It returns the venv
// interpreter and the manifests found under root.
func (p *Provisioner) EnsureVenv(ctx context.Context, root, spec string) (string, []string, error) {
	manifests, err := p.Manifests(root)
	if err != nil {
		return "", nil, err
	}

	venvDir := filepath.Join(root, p.cfg.VenvDir)
	venvPython := VenvPython(venvDir, p.GOOS)

	if _, err := os.Stat(venvDir); errors.Is(err, os.ErrNotExist) {
		if err := p.createVenv(ctx, root, venvDir, spec, manifests); err != nil {
			return "", nil, err
		}
		p.reporter.OK("Created virtual environment at %s", p.cfg.VenvDir)
	} else if err != nil {
		return "", nil, fmt.Errorf("failed to check %s: %w", venvDir, err)
	} else {
		p.reporter.Info("Virtual environment already exists at %s", p.cfg.VenvDir)
	}
	return venvPython, manifests, nil
}

func (p *Provisioner) createVenv(ctx context.Context, root, venvDir, spec string, manifests []string) error {
	target := p.TargetVersion(ctx, spec, manifests)

	interpreter := p.FindInstalled(ctx, spec, target)
	if interpreter != nil {
		p.reporter.Info("Creating venv with installed Python %s (%s)", target, shellquote.Join(interpreter...))
	} else {
		p.reporter.Warn("Python %s not found. Fetching a portable runtime into the project…", target)

		full, err := FullVersion(target, p.cfg.PortableMicro)
		if err != nil {
			return err
		}
		if p.ConfirmDownload != nil {
			ok, err := p.ConfirmDownload(full)
			if err != nil {
				return err
			}
			if !ok {
				return ErrDownloadDeclined
			}
		}

		exe, err := p.portable.Ensure(ctx, filepath.Join(root, p.cfg.RuntimeDir), full)
		if err != nil {
			return err
		}
		p.reporter.Info("Creating venv with portable runtime at %s", exe)
		interpreter = []string{exe}
	}

	args := make([]string, 0, len(interpreter)+3)
	args = append(args, interpreter[1:]...)
	args = append(args, "-m", "venv", "--copies", venvDir)
	if err := p.runner.Run(ctx, root, interpreter[0], args...); err != nil {
		return fmt.Errorf("failed to create virtual environment: %w", err)
	}
	return nil
}

// Install upgrades the packaging toolchain inside the environment and
// installs every manifest.
func (p *Provisioner) Install(ctx context.Context, root, venvPython string, manifests []string) error {
	if len(manifests) == 0 {
		p.reporter.Info("No %s found; skipping dependency install.", p.cfg.Manifest)
		return nil
	}

	p.reporter.Info("Installing requirements...")
	if err := p.runner.Run(ctx, root, venvPython, "-m", "pip", "install", "--upgrade", "pip", "wheel", "setuptools"); err != nil {
		return fmt.Errorf("failed to upgrade packaging tools: %w", err)
	}
	for _, manifest := range manifests {
		if err := p.runner.Run(ctx, root, venvPython, "-m", "pip", "install", "-r", manifest); err != nil {
			return fmt.Errorf("failed to install %s: %w", manifest, err)
		}
	}
	p.reporter.OK("Installed requirements")
	return nil
}
