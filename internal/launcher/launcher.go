// Package launcher writes scripts that open the workspace in VS Code with
// the Copilot extensions disabled.
package launcher

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"wsetup-cli/internal/interfaces"
)

// Dir holds the launcher scripts, relative to the repository root
const Dir = "tools"

// Scripts are the launcher file names and their modes
var Scripts = []struct {
	Name string
	Mode os.FileMode
}{
	{"code_secure.sh", 0755},
	{"code_secure.ps1", 0644},
}

// DisabledExtensions are passed to --disable-extension
var DisabledExtensions = []string{"GitHub.copilot", "GitHub.copilot-chat"}

// Writer renders the launcher scripts into root/tools
type Writer struct {
	fs        afero.Fs
	root      string
	processor *Processor
	reporter  interfaces.Reporter
}

// New creates a launcher writer
func New(fs afero.Fs, root string, processor *Processor, reporter interfaces.Reporter) *Writer {
	return &Writer{fs: fs, root: root, processor: processor, reporter: reporter}
}

// Write renders and writes every launcher script, replacing existing ones
func (w *Writer) Write() error {
	dir := filepath.Join(w.root, Dir)
	if err := w.fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", Dir, err)
	}

	data := Data{Root: w.root, Disabled: DisabledExtensions}
	written := make([]string, 0, len(Scripts))

	for _, script := range Scripts {
		tmpl, err := w.processor.LoadTemplate(script.Name)
		if err != nil {
			return err
		}
		content, err := w.processor.Execute(tmpl, data)
		if err != nil {
			return fmt.Errorf("failed to render %s: %w", script.Name, err)
		}

		path := filepath.Join(dir, script.Name)
		if err := afero.WriteFile(w.fs, path, []byte(content), script.Mode); err != nil {
			return fmt.Errorf("failed to write %s: %w", script.Name, err)
		}
		// WriteFile keeps the mode of a file that already exists
		if err := w.fs.Chmod(path, script.Mode); err != nil {
			return fmt.Errorf("failed to chmod %s: %w", script.Name, err)
		}
		written = append(written, filepath.ToSlash(filepath.Join(Dir, script.Name)))
	}

	w.reporter.OK("Wrote secure launchers: %s and %s", written[0], written[1])
	return nil
}
