package python

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
)

var versionOutput = regexp.MustCompile(`Python\s+(\d+\.\d+(?:\.\d+)?)`)

// IsVersionSpec reports whether an explicit --python value names a version
// ("3.11", "3.12.4") rather than a path or command.
func IsVersionSpec(spec string) bool {
	if !strings.HasPrefix(spec, "3.") {
		return false
	}
	_, err := semver.StrictNewVersion(normalize(spec))
	return err == nil
}

// MajorMinor reduces a version string to "major.minor"
func MajorMinor(version string) (string, error) {
	v, err := semver.NewVersion(version)
	if err != nil {
		return "", fmt.Errorf("invalid python version %q: %w", version, err)
	}
	return fmt.Sprintf("%d.%d", v.Major(), v.Minor()), nil
}

// FullVersion expands a version to major.minor.patch. When version carries
// no patch component, micro is used.
func FullVersion(version, micro string) (string, error) {
	parts := strings.Split(version, ".")
	if len(parts) == 2 {
		version = version + "." + micro
	}
	v, err := semver.StrictNewVersion(version)
	if err != nil {
		return "", fmt.Errorf("invalid python version %q: %w", version, err)
	}
	return v.String(), nil
}

// ParseVersionOutput extracts the version from `python --version` output
func ParseVersionOutput(out string) (string, bool) {
	m := versionOutput.FindStringSubmatch(out)
	if m == nil {
		return "", false
	}
	return m[1], true
}

func normalize(spec string) string {
	if strings.Count(spec, ".") == 1 {
		return spec + ".0"
	}
	return spec
}
