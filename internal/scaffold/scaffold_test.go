package scaffold

import (
	"os"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"wsetup-cli/internal/runner/runnertest"
)

const root = "/work/repo"

func newScaffolder(t *testing.T) (*Scaffolder, afero.Fs, *runnertest.Reporter) {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll(root, 0755))
	reporter := &runnertest.Reporter{}
	return New(fs, root, reporter), fs, reporter
}

func TestEnsureSecrets(t *testing.T) {
	s, fs, reporter := newScaffolder(t)

	require.NoError(t, s.EnsureSecrets("secrets.toml"))
	data, err := afero.ReadFile(fs, root+"/secrets.toml")
	require.NoError(t, err)
	assert.Empty(t, data)
	assert.True(t, reporter.Contains("ok Created empty secrets.toml"))

	require.NoError(t, afero.WriteFile(fs, root+"/secrets.toml", []byte("token = \"x\"\n"), 0600))
	require.NoError(t, s.EnsureSecrets("secrets.toml"))

	data, err = afero.ReadFile(fs, root+"/secrets.toml")
	require.NoError(t, err)
	assert.Equal(t, "token = \"x\"\n", string(data), "existing secrets must not be touched")
	assert.True(t, reporter.Contains("already exists"))
}

func TestCopyDefaultConfig(t *testing.T) {
	s, fs, reporter := newScaffolder(t)
	require.NoError(t, afero.WriteFile(fs, root+"/initial_conditions_default.yaml", []byte("a: 1\n"), 0640))

	require.NoError(t, s.CopyDefaultConfig("initial_conditions_default.yaml", "initial_conditions.yaml"))

	data, err := afero.ReadFile(fs, root+"/initial_conditions.yaml")
	require.NoError(t, err)
	assert.Equal(t, "a: 1\n", string(data))

	info, err := fs.Stat(root + "/initial_conditions.yaml")
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0640), info.Mode().Perm())
	assert.True(t, reporter.Contains("Copied"))
}

func TestCopyDefaultConfig_KeepsExistingTarget(t *testing.T) {
	s, fs, reporter := newScaffolder(t)
	require.NoError(t, afero.WriteFile(fs, root+"/initial_conditions_default.yaml", []byte("a: 1\n"), 0644))
	require.NoError(t, afero.WriteFile(fs, root+"/initial_conditions.yaml", []byte("a: 2\n"), 0644))

	require.NoError(t, s.CopyDefaultConfig("initial_conditions_default.yaml", "initial_conditions.yaml"))

	data, err := afero.ReadFile(fs, root+"/initial_conditions.yaml")
	require.NoError(t, err)
	assert.Equal(t, "a: 2\n", string(data))
	assert.True(t, reporter.Contains("already exists"))
}

func TestCopyDefaultConfig_MissingSourceIsSkipped(t *testing.T) {
	s, fs, reporter := newScaffolder(t)

	err := s.CopyDefaultConfig("initial_conditions_default.yaml", "initial_conditions.yaml")
	require.NoError(t, err)
	assert.True(t, reporter.Contains("skipping copy"))

	exists, err := afero.Exists(fs, root+"/initial_conditions.yaml")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestEnsureGitignore(t *testing.T) {
	s, fs, _ := newScaffolder(t)
	require.NoError(t, afero.WriteFile(fs, root+"/.gitignore", []byte("dist/\n\n  .venv/  \nnode_modules/\n"), 0644))

	require.NoError(t, s.EnsureGitignore("env/"))

	data, err := afero.ReadFile(fs, root+"/.gitignore")
	require.NoError(t, err)
	want := strings.Join([]string{
		".pythonrt/",
		".venv/",
		".vscode/*.log",
		"__pycache__/",
		"dist/",
		"env/",
		"node_modules/",
		"secrets.toml",
	}, "\n") + "\n"
	assert.Equal(t, want, string(data))
}

func TestEnsureGitignore_Properties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	line := gen.Identifier()

	properties.Property("existing entries survive and a second run changes nothing", prop.ForAll(
		func(existing []string) bool {
			fs := afero.NewMemMapFs()
			_ = fs.MkdirAll(root, 0755)
			_ = afero.WriteFile(fs, root+"/.gitignore", []byte(strings.Join(existing, "\n")), 0644)
			s := New(fs, root, &runnertest.Reporter{})

			if err := s.EnsureGitignore(); err != nil {
				return false
			}
			first, _ := afero.ReadFile(fs, root+"/.gitignore")
			if err := s.EnsureGitignore(); err != nil {
				return false
			}
			second, _ := afero.ReadFile(fs, root+"/.gitignore")
			if string(first) != string(second) {
				return false
			}

			got := map[string]bool{}
			for _, l := range strings.Split(string(first), "\n") {
				got[l] = true
			}
			for _, l := range append(existing, IgnoreEntries...) {
				if !got[l] {
					return false
				}
			}
			return true
		},
		gen.SliceOf(line),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
