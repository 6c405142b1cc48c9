package interfaces

// Config represents the application configuration
type Config struct {
	VenvDir            string   `toml:"venv_dir"`
	RuntimeDir         string   `toml:"runtime_dir"`
	Manifest           string   `toml:"manifest"`
	RecursiveManifests bool     `toml:"recursive_manifests"`
	SecretsFile        string   `toml:"secrets_file"`
	DefaultConfig      string   `toml:"default_config"`
	WorkingConfig      string   `toml:"working_config"`
	HeavyPackages      []string `toml:"heavy_packages"`
	PreferredPython    string   `toml:"preferred_python"`
	PortableTag        string   `toml:"portable_tag"`
	PortableMicro      string   `toml:"portable_micro"`
	PortableBaseURL    string   `toml:"portable_base_url"`
	VerifyChecksum     bool     `toml:"verify_checksum"`
	RepoSearchDepth    int      `toml:"repo_search_depth"`
	TemplatesLocation  string   `toml:"templates_location"`
	InteractiveDefault bool     `toml:"interactive_default"`
	Launchers          bool     `toml:"launchers"`
	LogLevel           string   `toml:"log_level"`
}

// ConfigManager handles configuration loading and resolution
type ConfigManager interface {
	// Load loads configuration from the specified path
	Load(path string) (*Config, error)

	// Resolve applies precedence rules (flags > env > config > defaults)
	Resolve() (*Config, error)

	// Validate validates the configuration values
	Validate(config *Config) error
}
