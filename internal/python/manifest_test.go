package python

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequirementName(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"numpy==1.26.0", "numpy"},
		{"  pandas>=2.0  ", "pandas"},
		{"scipy<=1.11", "scipy"},
		{"torch!=2.0.0", "torch"},
		{"matplotlib~=3.8", "matplotlib"},
		{"scikit_learn>1.0", "scikit-learn"},
		{"Scikit-Learn", "scikit-learn"},
		{"requests[socks]==2.31", "requests"},
		{"tensorflow; python_version < '3.12'", "tensorflow"},
		{"pkg @ https://example.com/pkg.whl", "pkg"},
		{"flask  # web", "flask"},
		{"exact===1.0", "exact"},
		{"# numpy", ""},
		{"", ""},
		{"-r other.txt", ""},
		{"--index-url https://example.com/simple", ""},
		{"-e .", ""},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, RequirementName(tt.line))
		})
	}
}

func TestParseRequirements(t *testing.T) {
	input := "# comment\nnumpy==1.26.0\n\nrequests\n-r base.txt\n"
	names, err := ParseRequirements(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []string{"numpy", "requests"}, names)
}

func TestRequirementName_Properties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	operators := gen.OneConstOf("==", ">=", "<=", "!=", "~=", "", "[extra]")
	versions := gen.OneConstOf("1.0", "2.31.0", "0.1")

	properties.Property("name survives any operator, version and marker", prop.ForAll(
		func(name, op, version string) bool {
			line := name + op + version + " ; python_version >= '3.8'"
			if op == "" {
				line = name + " ; python_version >= '3.8'"
			}
			return RequirementName(line) == strings.ToLower(name)
		},
		gen.Identifier(),
		operators,
		versions,
	))

	properties.Property("underscores and dashes are equivalent", prop.ForAll(
		func(a, b string) bool {
			return RequirementName(a+"_"+b) == RequirementName(a+"-"+b)
		},
		gen.Identifier(),
		gen.Identifier(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func writeManifest(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestHasHeavy(t *testing.T) {
	dir := t.TempDir()
	heavy := writeManifest(t, filepath.Join(dir, "heavy.txt"), "requests\nNumPy==1.26.0\n")
	light := writeManifest(t, filepath.Join(dir, "light.txt"), "requests\nflask\n")
	missing := filepath.Join(dir, "missing.txt")

	list := []string{"numpy", "pandas"}
	assert.True(t, HasHeavy([]string{heavy}, list))
	assert.False(t, HasHeavy([]string{light}, list))
	assert.False(t, HasHeavy([]string{missing}, list))
	assert.True(t, HasHeavy([]string{light, heavy}, list))
	assert.False(t, HasHeavy(nil, list))
	assert.True(t, HasHeavy([]string{writeManifest(t, filepath.Join(dir, "sk.txt"), "scikit_learn\n")}, []string{"scikit-learn"}))
}

func TestFindManifests(t *testing.T) {
	root := t.TempDir()
	top := writeManifest(t, filepath.Join(root, "requirements.txt"), "a\n")
	b := writeManifest(t, filepath.Join(root, "services", "b", "requirements.txt"), "b\n")
	a := writeManifest(t, filepath.Join(root, "services", "a", "requirements.txt"), "a\n")
	writeManifest(t, filepath.Join(root, ".venv", "lib", "requirements.txt"), "x\n")
	writeManifest(t, filepath.Join(root, "node_modules", "p", "requirements.txt"), "x\n")

	got, err := FindManifests(root, "requirements.txt", false)
	require.NoError(t, err)
	assert.Equal(t, []string{top}, got)

	got, err = FindManifests(root, "requirements.txt", true)
	require.NoError(t, err)
	assert.Equal(t, []string{top, a, b}, got)
}

func TestFindManifests_NoRootManifest(t *testing.T) {
	root := t.TempDir()

	got, err := FindManifests(root, "requirements.txt", false)
	require.NoError(t, err)
	assert.Empty(t, got)

	nested := writeManifest(t, filepath.Join(root, "pkg", "requirements.txt"), "a\n")
	got, err = FindManifests(root, "requirements.txt", true)
	require.NoError(t, err)
	assert.Equal(t, []string{nested}, got)
}
