package repo

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"wsetup-cli/internal/runner/runnertest"
)

func TestNameFromURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"git@github.com:org/repo.git", "repo"},
		{"https://github.com/org/repo.git", "repo"},
		{"https://github.com/org/repo/", "repo"},
		{"ssh://git@host:2222/team/project", "project"},
		{"git@host:solo.git", "solo"},
		{"plain", "plain"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, NameFromURL(tt.url))
		})
	}
}

func TestDefaultDest(t *testing.T) {
	cwd := t.TempDir()

	got, err := DefaultDest(cwd, "git@github.com:org/repo.git", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cwd, "repo"), got)

	got, err = DefaultDest(cwd, "git@github.com:org/repo.git", "elsewhere")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cwd, "elsewhere"), got)

	abs := filepath.Join(t.TempDir(), "abs")
	got, err = DefaultDest(cwd, "x", abs)
	require.NoError(t, err)
	assert.Equal(t, abs, got)
}

func TestDetectRoot(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0755))
	nested := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(nested, 0755))

	want, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)

	got, err := DetectRoot(nested, 6)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	got, err = DetectRoot(root, 6)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDetectRoot_DepthLimit(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0755))
	deep := filepath.Join(root, "1", "2", "3", "4", "5", "6")
	require.NoError(t, os.MkdirAll(deep, 0755))

	_, err := DetectRoot(deep, 6)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = DetectRoot(deep, 7)
	assert.NoError(t, err)
}

func TestDetectRoot_GitFileIsNotARepository(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".git"), []byte("gitdir: elsewhere"), 0644))

	_, err := DetectRoot(root, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClone_GitMissing(t *testing.T) {
	runner := runnertest.NewRunner()
	m := NewManager(runner, &runnertest.Reporter{})

	_, err := m.Clone(context.Background(), "git@host:org/repo.git", filepath.Join(t.TempDir(), "repo"))
	assert.ErrorIs(t, err, ErrGitMissing)
}

func TestClone_SkipsNonEmptyDestination(t *testing.T) {
	runner := runnertest.NewRunner()
	runner.Probes["git --version"] = true
	reporter := &runnertest.Reporter{}
	m := NewManager(runner, reporter)

	dest := t.TempDir()
	keep := filepath.Join(dest, "keep.txt")
	require.NoError(t, os.WriteFile(keep, []byte("mine"), 0644))

	got, err := m.Clone(context.Background(), "git@host:org/repo.git", dest)
	require.NoError(t, err)
	assert.Equal(t, dest, got)
	assert.True(t, reporter.Contains("skipping clone"))
	assert.NotContains(t, runner.RunCalls(), "git clone git@host:org/repo.git "+dest)

	data, err := os.ReadFile(keep)
	require.NoError(t, err)
	assert.Equal(t, "mine", string(data))
}

func TestClone_RunsGitClone(t *testing.T) {
	runner := runnertest.NewRunner()
	runner.Probes["git --version"] = true
	m := NewManager(runner, &runnertest.Reporter{})

	dest := filepath.Join(t.TempDir(), "parent", "repo")
	got, err := m.Clone(context.Background(), "git@host:org/repo.git", dest)
	require.NoError(t, err)
	assert.Equal(t, dest, got)
	assert.Contains(t, runner.RunCalls(), "git clone git@host:org/repo.git "+dest)

	_, err = os.Stat(filepath.Dir(dest))
	assert.NoError(t, err, "parent directory should be created")
}

func TestClone_PropagatesFailure(t *testing.T) {
	runner := runnertest.NewRunner()
	runner.Probes["git --version"] = true
	dest := filepath.Join(t.TempDir(), "repo")
	boom := errors.New("exit status 128")
	runner.Failures["git clone git@host:org/repo.git "+dest] = boom
	m := NewManager(runner, &runnertest.Reporter{})

	_, err := m.Clone(context.Background(), "git@host:org/repo.git", dest)
	assert.ErrorIs(t, err, boom)
}
