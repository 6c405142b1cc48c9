// Package editor writes the VS Code workspace configuration: interpreter and
// terminal wiring to the project virtual environment, a debug configuration,
// and the Copilot opt-out. Existing files are merged, never replaced.
package editor

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"github.com/tidwall/jsonc"
	"wsetup-cli/internal/interfaces"
	"wsetup-cli/internal/logger"
)

const (
	// Dir holds the workspace configuration files
	Dir = ".vscode"

	settingsFile   = "settings.json"
	launchFile     = "launch.json"
	extensionsFile = "extensions.json"

	launchVersion = "0.2.0"
	launchName    = "Python: Current File"
)

// Recommended extensions; Unwanted ones are hidden from recommendations.
var (
	Recommended = []string{"ms-python.python"}
	Unwanted    = []string{"GitHub.copilot", "GitHub.copilot-chat"}
)

// Writer merges the workspace configuration under root/.vscode
type Writer struct {
	fs       afero.Fs
	root     string
	venvDir  string
	reporter interfaces.Reporter
	log      *logger.Logger

	// GOOS selects the path style of the interpreter path
	GOOS string
}

// New creates a writer for the repository at root. venvDir is relative to root.
func New(fs afero.Fs, root, venvDir, goos string, reporter interfaces.Reporter, log *logger.Logger) *Writer {
	return &Writer{
		fs:       fs,
		root:     root,
		venvDir:  filepath.ToSlash(venvDir),
		reporter: reporter,
		log:      log,
		GOOS:     goos,
	}
}

// WriteAll writes settings.json, launch.json and extensions.json
func (w *Writer) WriteAll() error {
	if err := w.fs.MkdirAll(filepath.Join(w.root, Dir), 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", Dir, err)
	}
	for _, write := range []func() error{w.WriteSettings, w.WriteLaunch, w.WriteExtensions} {
		if err := write(); err != nil {
			return err
		}
	}
	w.reporter.OK("Wrote %s/{settings,launch,extensions}.json", Dir)
	return nil
}

// WriteSettings merges Settings into settings.json
func (w *Writer) WriteSettings() error {
	path := w.path(settingsFile)
	merged := MergeSettings(w.read(path), w.Settings())
	return w.write(path, merged)
}

// WriteLaunch merges Launch into launch.json
func (w *Writer) WriteLaunch() error {
	path := w.path(launchFile)
	merged := MergeLaunch(w.read(path), w.Launch())
	return w.write(path, merged)
}

// WriteExtensions merges the extension recommendations into extensions.json
func (w *Writer) WriteExtensions() error {
	path := w.path(extensionsFile)
	merged := MergeExtensions(w.read(path), Recommended, Unwanted)
	return w.write(path, merged)
}

// InterpreterPath is the venv interpreter relative to ${workspaceFolder}
func (w *Writer) InterpreterPath() string {
	if w.GOOS == "windows" {
		return `${workspaceFolder}\` + strings.ReplaceAll(w.venvDir, "/", `\`) + `\Scripts\python.exe`
	}
	return "${workspaceFolder}/" + w.venvDir + "/bin/python"
}

// Settings returns the keys this tool owns in settings.json
func (w *Writer) Settings() map[string]any {
	winVenv := `${workspaceFolder}\` + strings.ReplaceAll(w.venvDir, "/", `\`)
	unixVenv := "${workspaceFolder}/" + w.venvDir

	settings := copilotOff()
	settings["python.defaultInterpreterPath"] = w.InterpreterPath()
	settings["python.terminal.activateEnvironment"] = true
	settings["terminal.integrated.env.windows"] = map[string]any{
		"VIRTUAL_ENV": winVenv,
		"PATH":        winVenv + `\Scripts;${env:PATH}`,
	}
	for _, platform := range []string{"osx", "linux"} {
		settings["terminal.integrated.env."+platform] = map[string]any{
			"VIRTUAL_ENV": unixVenv,
			"PATH":        unixVenv + "/bin:${env:PATH}",
		}
	}
	return settings
}

// Launch returns the debug configuration for the current file
func (w *Writer) Launch() map[string]any {
	return map[string]any{
		"name":       launchName,
		"type":       "python",
		"request":    "launch",
		"program":    "${file}",
		"console":    "integratedTerminal",
		"justMyCode": true,
		"env": map[string]any{
			"VIRTUAL_ENV": "${workspaceFolder}/" + w.venvDir,
		},
	}
}

func copilotOff() map[string]any {
	return map[string]any{
		"github.copilot.enable": map[string]any{
			"*":         false,
			"plaintext": false,
			"markdown":  false,
			"scminput":  false,
		},
		"github.copilot.nextEditSuggestions.enabled":                  false,
		"editor.inlineSuggest.edits.allowCodeShifting":                "never",
		"github.copilot.inlineSuggest.enable":                         false,
		"chat.commandCenter.enabled":                                  false,
		"chat.agent.enabled":                                          false,
		"chat.mcp.enabled":                                            false,
		"github.copilot.chat.enable":                                  false,
		"github.copilot.chat.codesearch.enabled":                      false,
		"github.copilot.chat.editor.temporalContext.enabled":          false,
		"github.copilot.chat.edits.suggestRelatedFilesFromGitHistory": false,
		"github.copilot.chat.newWorkspaceCreation.enabled":            false,
		"github.copilot.chat.startDebugging.enabled":                  false,
		"github.copilot.chat.copilotDebugCommand.enabled":             false,
		"github.copilot.chat.generateTests.codeLens":                  false,
		"github.copilot.chat.setupTests.enabled":                      false,
		"github.copilot.chat.codeGeneration.useInstructionFiles":      false,
		"chat.promptFiles":                                            false,
		"chat.modeFilesLocations":                                     map[string]any{},
		"workbench.settings.showAISearchToggle":                       false,
		"search.searchView.semanticSearchBehavior":                    "manual",
	}
}

// MergeSettings overlays ours onto existing. Keys only in existing survive.
func MergeSettings(existing, ours map[string]any) map[string]any {
	merged := make(map[string]any, len(existing)+len(ours))
	for k, v := range existing {
		merged[k] = v
	}
	for k, v := range ours {
		merged[k] = v
	}
	return merged
}

// MergeLaunch sets the launch.json version and puts config into the
// configurations list, replacing an entry with the same name in place.
func MergeLaunch(existing map[string]any, config map[string]any) map[string]any {
	merged := MergeSettings(existing, map[string]any{"version": launchVersion})

	current, _ := existing["configurations"].([]any)
	configs := make([]any, 0, len(current)+1)
	replaced := false
	for _, c := range current {
		if m, ok := c.(map[string]any); ok && m["name"] == config["name"] {
			if !replaced {
				configs = append(configs, config)
				replaced = true
			}
			continue
		}
		configs = append(configs, c)
	}
	if !replaced {
		configs = append(configs, config)
	}

	merged["configurations"] = configs
	return merged
}

// MergeExtensions unions the recommendation lists, sorted
func MergeExtensions(existing map[string]any, recommended, unwanted []string) map[string]any {
	merged := MergeSettings(existing, nil)
	merged["recommendations"] = union(existing["recommendations"], recommended)
	merged["unwantedRecommendations"] = union(existing["unwantedRecommendations"], unwanted)
	return merged
}

func union(existing any, ours []string) []string {
	seen := map[string]bool{}
	for _, s := range ours {
		seen[s] = true
	}
	if list, ok := existing.([]any); ok {
		for _, item := range list {
			if s, ok := item.(string); ok && s != "" {
				seen[s] = true
			}
		}
	}

	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func (w *Writer) path(name string) string {
	return filepath.Join(w.root, Dir, name)
}

// read loads a JSONC object. Missing, unreadable or malformed files yield an
// empty map.
func (w *Writer) read(path string) map[string]any {
	data, err := afero.ReadFile(w.fs, path)
	if err != nil {
		w.log.Debug().Err(err).Str("path", path).Msg("no existing editor config")
		return map[string]any{}
	}

	var out map[string]any
	if err := json.Unmarshal(jsonc.ToJSON(data), &out); err != nil || out == nil {
		w.log.Debug().Err(err).Str("path", path).Msg("ignoring unparsable editor config")
		return map[string]any{}
	}
	return out
}

func (w *Writer) write(path string, v map[string]any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}
	data = append(data, '\n')

	if err := w.fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}
	if err := afero.WriteFile(w.fs, path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	w.log.Debug().Str("path", path).Int("keys", len(v)).Msg("wrote editor config")
	return nil
}
