// Package interactive asks the user for a repository URL and for consent to
// download a portable runtime. It is only used when stdin is a terminal.
package interactive

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"golang.org/x/term"
	"wsetup-cli/pkg/models"
)

// Prompter implements interfaces.Prompter with survey prompts
type Prompter struct {
	opts []survey.AskOpt
}

// NewPrompter creates a prompter on the process stdio
func NewPrompter(opts ...survey.AskOpt) *Prompter {
	return &Prompter{opts: opts}
}

// IsTerminal reports whether stdin is attached to a terminal
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// ResolveMode decides whether prompts may be shown. -y wins over -i, -i wins
// over the configured default, and nothing is asked without a terminal.
func ResolveMode(request *models.SetupRequest, configDefault, terminal bool) bool {
	interactive := configDefault
	switch {
	case request.ForceNonInteractive:
		interactive = false
	case request.ForceInteractive:
		interactive = true
	}
	return interactive && terminal
}

// AskRepoURL asks for the URL of a repository to clone
func (p *Prompter) AskRepoURL() (string, error) {
	prompt := &survey.Input{
		Message: "No git repository found here. Repository URL to clone:",
		Help:    "SSH (git@github.com:org/repo.git) or HTTPS URL",
	}

	var url string
	opts := append([]survey.AskOpt{survey.WithValidator(survey.Required), survey.WithValidator(validateRepoURL)}, p.opts...)
	if err := survey.AskOne(prompt, &url, opts...); err != nil {
		return "", err
	}
	return strings.TrimSpace(url), nil
}

// ConfirmDownload asks before fetching a portable CPython
func (p *Prompter) ConfirmDownload(version string) (bool, error) {
	prompt := &survey.Confirm{
		Message: fmt.Sprintf("Download portable Python %s into this project?", version),
		Help:    "A standalone CPython build is extracted under the project runtime directory",
		Default: true,
	}

	var ok bool
	if err := survey.AskOne(prompt, &ok, p.opts...); err != nil {
		return false, err
	}
	return ok, nil
}

func validateRepoURL(ans interface{}) error {
	s, _ := ans.(string)
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "git@") && strings.Contains(s, ":"):
		return nil
	case strings.HasPrefix(s, "https://"), strings.HasPrefix(s, "http://"), strings.HasPrefix(s, "ssh://"), strings.HasPrefix(s, "file://"):
		return nil
	case s == "":
		return errors.New("a repository URL is required")
	}
	return fmt.Errorf("%q does not look like a git URL", s)
}
