package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/Masterminds/semver/v3"
	"github.com/spf13/viper"
	"wsetup-cli/internal/interfaces"
)

// DefaultHeavyPackages are numeric/ML packages whose wheels lag behind new
// interpreter releases.
var DefaultHeavyPackages = []string{
	"numpy",
	"pandas",
	"scipy",
	"matplotlib",
	"scikit-learn",
	"torch",
	"tensorflow",
}

const defaultPortableBaseURL = "https://github.com/indygreg/python-build-standalone/releases/download"

// Manager implements the ConfigManager interface
type Manager struct {
	v     *viper.Viper
	flags *interfaces.Config // Non-zero fields override everything else
}

// NewManager creates a new configuration manager
func NewManager() *Manager {
	v := viper.New()
	v.SetConfigType("toml")
	v.SetEnvPrefix("WSETUP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	return &Manager{
		v:     v,
		flags: &interfaces.Config{},
	}
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("venv_dir", ".venv")
	v.SetDefault("runtime_dir", ".pythonrt")
	v.SetDefault("manifest", "requirements.txt")
	v.SetDefault("recursive_manifests", false)
	v.SetDefault("secrets_file", "secrets.toml")
	v.SetDefault("default_config", "initial_conditions_default.yaml")
	v.SetDefault("working_config", "initial_conditions.yaml")
	v.SetDefault("heavy_packages", DefaultHeavyPackages)
	v.SetDefault("preferred_python", "3.11")
	v.SetDefault("portable_tag", "20240715")
	v.SetDefault("portable_micro", "9")
	v.SetDefault("portable_base_url", defaultPortableBaseURL)
	v.SetDefault("verify_checksum", false)
	v.SetDefault("repo_search_depth", 6)
	v.SetDefault("templates_location", "")
	v.SetDefault("interactive_default", false)
	v.SetDefault("launchers", true)
	v.SetDefault("log_level", "info")
}

// DefaultPath returns ~/.config/wsetup/config.toml
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "wsetup", "config.toml"), nil
}

// Load loads configuration from the specified path. A missing file at the
// default location is not an error.
func (m *Manager) Load(path string) (*interfaces.Config, error) {
	explicit := path != ""
	if !explicit {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, err
		}
	}

	path = expandPath(path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if explicit {
			return nil, fmt.Errorf("config file %s does not exist", path)
		}
		return m.getConfigFromViper(), nil
	}

	m.v.SetConfigFile(path)
	if err := m.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return m.getConfigFromViper(), nil
}

// SetFlags records command-line overrides. Only non-zero fields take effect.
func (m *Manager) SetFlags(flags *interfaces.Config) {
	if flags == nil {
		return
	}
	m.flags = flags
}

// Resolve applies precedence rules (flags > env > config > defaults)
func (m *Manager) Resolve() (*interfaces.Config, error) {
	config := m.getConfigFromViper()

	if err := mergo.Merge(config, m.flags, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("failed to apply flag overrides: %w", err)
	}

	return config, nil
}

// Validate validates the configuration values
func (m *Manager) Validate(config *interfaces.Config) error {
	if config == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if !isPythonVersion(config.PreferredPython) {
		return fmt.Errorf("invalid preferred_python: %q (must be a version like '3.11')", config.PreferredPython)
	}

	if config.PortableMicro != "" {
		if _, err := semver.StrictNewVersion("0.0." + config.PortableMicro); err != nil {
			return fmt.Errorf("invalid portable_micro: %q (must be a number)", config.PortableMicro)
		}
	}

	if config.PortableTag == "" {
		return fmt.Errorf("portable_tag cannot be empty")
	}

	if !strings.HasPrefix(config.PortableBaseURL, "https://") && !strings.HasPrefix(config.PortableBaseURL, "http://") {
		return fmt.Errorf("invalid portable_base_url: %s (must be an http(s) URL)", config.PortableBaseURL)
	}

	if config.RepoSearchDepth < 1 {
		return fmt.Errorf("invalid repo_search_depth: %d (must be at least 1)", config.RepoSearchDepth)
	}

	for name, value := range map[string]string{
		"venv_dir":    config.VenvDir,
		"runtime_dir": config.RuntimeDir,
		"manifest":    config.Manifest,
	} {
		if value == "" {
			return fmt.Errorf("%s cannot be empty", name)
		}
		if filepath.IsAbs(value) {
			return fmt.Errorf("invalid %s: %s (must be relative to the repository root)", name, value)
		}
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[config.LogLevel] {
		return fmt.Errorf("invalid log_level: %s (must be 'debug', 'info', 'warn' or 'error')", config.LogLevel)
	}

	return nil
}

// getConfigFromViper converts viper configuration to Config struct
// This handles env > config > defaults precedence (flags are applied separately)
func (m *Manager) getConfigFromViper() *interfaces.Config {
	return &interfaces.Config{
		VenvDir:            m.v.GetString("venv_dir"),
		RuntimeDir:         m.v.GetString("runtime_dir"),
		Manifest:           m.v.GetString("manifest"),
		RecursiveManifests: m.v.GetBool("recursive_manifests"),
		SecretsFile:        m.v.GetString("secrets_file"),
		DefaultConfig:      m.v.GetString("default_config"),
		WorkingConfig:      m.v.GetString("working_config"),
		HeavyPackages:      m.v.GetStringSlice("heavy_packages"),
		PreferredPython:    m.v.GetString("preferred_python"),
		PortableTag:        m.v.GetString("portable_tag"),
		PortableMicro:      m.v.GetString("portable_micro"),
		PortableBaseURL:    strings.TrimRight(m.v.GetString("portable_base_url"), "/"),
		VerifyChecksum:     m.v.GetBool("verify_checksum"),
		RepoSearchDepth:    m.v.GetInt("repo_search_depth"),
		TemplatesLocation:  expandPath(m.v.GetString("templates_location")),
		InteractiveDefault: m.v.GetBool("interactive_default"),
		Launchers:          m.v.GetBool("launchers"),
		LogLevel:           strings.ToLower(m.v.GetString("log_level")),
	}
}

// expandPath expands ~ to user home directory
func expandPath(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path // Return original path if we can't get home dir
	}

	return filepath.Join(homeDir, path[2:])
}

// isPythonVersion accepts 3.X and 3.X.Y
func isPythonVersion(v string) bool {
	switch strings.Count(v, ".") {
	case 1:
		v += ".0"
	case 2:
	default:
		return false
	}
	parsed, err := semver.StrictNewVersion(v)
	return err == nil && parsed.Major() == 3
}
