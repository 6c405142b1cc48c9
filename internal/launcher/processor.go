package launcher

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

//go:embed templates/*.tmpl
var embedded embed.FS

// Data is passed to launcher templates
type Data struct {
	Root     string
	Disabled []string
}

// Processor loads launcher templates from an override directory, falling
// back to the built-in ones.
type Processor struct {
	templatesLocation string
}

// NewProcessor creates a processor. An empty templatesLocation uses only
// the built-in templates.
func NewProcessor(templatesLocation string) *Processor {
	return &Processor{templatesLocation: templatesLocation}
}

// LoadTemplate returns the template for a launcher file name such as
// "code_secure.sh"
func (p *Processor) LoadTemplate(name string) (*template.Template, error) {
	if path, ok := p.discoverTemplate(name); ok {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read template file %s: %w", path, err)
		}
		return p.parse(path, string(content))
	}

	content, err := embedded.ReadFile("templates/" + name + ".tmpl")
	if err != nil {
		return nil, fmt.Errorf("template not found: %s", name)
	}
	return p.parse(name, string(content))
}

// discoverTemplate finds an override by file name or by stem, ignoring case
func (p *Processor) discoverTemplate(name string) (string, bool) {
	if p.templatesLocation == "" {
		return "", false
	}

	entries, err := os.ReadDir(p.templatesLocation)
	if err != nil {
		return "", false
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		filename := entry.Name()
		stem := strings.TrimSuffix(filename, filepath.Ext(filename))
		if strings.EqualFold(filename, name) || strings.EqualFold(stem, name) {
			return filepath.Join(p.templatesLocation, filename), true
		}
	}
	return "", false
}

func (p *Processor) parse(name, content string) (*template.Template, error) {
	funcMap := sprig.TxtFuncMap()
	funcMap["shEscape"] = shEscape
	funcMap["psEscape"] = psEscape

	tmpl, err := template.New(filepath.Base(name)).Funcs(funcMap).Parse(content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
	}
	return tmpl, nil
}

// Execute renders tmpl with data
func (p *Processor) Execute(tmpl *template.Template, data Data) (string, error) {
	var buf strings.Builder
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

// shEscape escapes s for use inside a double-quoted POSIX shell string
func shEscape(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`, "$", `\$`, "`", "\\`").Replace(s)
}

// psEscape escapes s for use inside a double-quoted PowerShell string
func psEscape(s string) string {
	return strings.NewReplacer("`", "``", `"`, "`\"", "$", "`$").Replace(s)
}
