package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"wsetup-cli/internal/app"
	"wsetup-cli/pkg/models"
)

// Build-time variables injected via ldflags
var (
	version   = "dev"
	commit    = "unknown"
	date      = "unknown"
	goVersion = runtime.Version()
)

var rootCmd = &cobra.Command{
	Use:   "wsetup",
	Short: "Bootstrap a Python workspace for VS Code",
	Long: `wsetup prepares a Python repository for development in VS Code.

It clones the repository (--repo) or finds the one enclosing the current
directory, creates secrets.toml and the working config copy, provisions a
.venv (downloading a portable CPython when no suitable interpreter is
installed), installs requirements.txt, writes .vscode settings with GitHub
Copilot disabled, and writes launcher scripts under tools/.

Interactive mode can be controlled via config (interactive_default), overridden with
-i (force interactive) or -y (force non-interactive).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if versionFlag, _ := cmd.Flags().GetBool("version"); versionFlag {
			versionCmd.Run(cmd, args)
			return nil
		}

		request, err := buildRequestFromFlags(cmd)
		if err != nil {
			return fmt.Errorf("invalid arguments: %w", err)
		}

		return app.Run(cmd.Context(), request)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  "Print detailed version information including build version, commit, date, and platform details.",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("wsetup version %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built: %s\n", date)
		fmt.Printf("  go version: %s\n", goVersion)
		fmt.Printf("  platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	},
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the tools and workspace state wsetup depends on",
	Long:  "Check git, the VS Code 'code' command, the host Python, the enclosing repository, its .venv and the portable runtime cache.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		request, err := buildRequestFromFlags(cmd)
		if err != nil {
			return fmt.Errorf("invalid arguments: %w", err)
		}
		return app.Doctor(cmd.Context(), request)
	},
}

var vscodeCmd = &cobra.Command{
	Use:   "vscode",
	Short: "Only write the .vscode configuration",
	Long:  "Merge .vscode/settings.json, launch.json and extensions.json of the enclosing repository without touching the Python environment.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		request, err := buildRequestFromFlags(cmd)
		if err != nil {
			return fmt.Errorf("invalid arguments: %w", err)
		}
		return app.WriteEditorConfig(cmd.Context(), request)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(vscodeCmd)

	addGlobalFlags(rootCmd.PersistentFlags())
	addSetupFlags(rootCmd.Flags())
}

// addGlobalFlags registers the flags shared by every command
func addGlobalFlags(fs *pflag.FlagSet) {
	fs.StringP("config", "c", "", "config file path (default ~/.config/wsetup/config.toml)")
	fs.BoolP("yes", "y", false, "noninteractive mode - never prompt")
	fs.BoolP("interactive", "i", false, "force interactive mode (overrides config default)")
	fs.BoolP("verbose", "v", false, "enable debug logging")
}

// addSetupFlags registers the flags of the setup run
func addSetupFlags(fs *pflag.FlagSet) {
	fs.String("repo", "", "repository to clone (e.g. git@github.com:org/repo.git)")
	fs.String("dest", "", "clone destination (defaults to ./<repo name>)")
	fs.String("python", "", "base Python for the venv: path, command, or version such as 3.11")
	fs.Bool("skip-install", false, "do not install requirements")
	fs.Bool("skip-launchers", false, "do not write tools/code_secure.{sh,ps1}")
	fs.Bool("version", false, "print version information")
}

// buildRequestFromFlags constructs a SetupRequest from command flags. Flags a
// command does not define keep their zero value.
func buildRequestFromFlags(cmd *cobra.Command) (*models.SetupRequest, error) {
	request := models.NewSetupRequest()
	flags := cmd.Flags()

	strs := map[string]*string{
		"config": &request.ConfigPath,
		"repo":   &request.Repo,
		"dest":   &request.Dest,
		"python": &request.Python,
	}
	for name, dst := range strs {
		if flags.Lookup(name) == nil {
			continue
		}
		value, err := flags.GetString(name)
		if err != nil {
			return nil, fmt.Errorf("invalid %s flag: %w", name, err)
		}
		*dst = strings.TrimSpace(value)
	}

	bools := map[string]*bool{
		"yes":            &request.ForceNonInteractive,
		"interactive":    &request.ForceInteractive,
		"skip-install":   &request.SkipInstall,
		"skip-launchers": &request.SkipLaunchers,
		"verbose":        &request.Verbose,
	}
	for name, dst := range bools {
		if flags.Lookup(name) == nil {
			continue
		}
		value, err := flags.GetBool(name)
		if err != nil {
			return nil, fmt.Errorf("invalid %s flag: %w", name, err)
		}
		*dst = value
	}

	if request.ForceInteractive && request.ForceNonInteractive {
		return nil, fmt.Errorf("cannot use both --interactive and --yes flags")
	}
	if request.Dest != "" && request.Repo == "" {
		return nil, fmt.Errorf("--dest requires --repo")
	}

	return request, nil
}

func main() {
	// Disable usage on error to show only our custom error messages
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
