package python

import (
	"fmt"
	"path/filepath"
)

// PlatformTag returns the python-build-standalone target triple for an
// install_only archive on goos/goarch.
func PlatformTag(goos, goarch string) string {
	arch := goarch
	switch goarch {
	case "amd64":
		arch = "x86_64"
	case "arm64":
		arch = "aarch64"
	case "386":
		arch = "i686"
	}

	switch goos {
	case "windows":
		return fmt.Sprintf("%s-pc-windows-msvc-shared-install_only", arch)
	case "darwin":
		return fmt.Sprintf("%s-apple-darwin-install_only", arch)
	default:
		// glibc assumed; musl hosts need the -unknown-linux-musl- builds
		return fmt.Sprintf("%s-unknown-linux-gnu-install_only", arch)
	}
}

// VenvPython returns the interpreter path inside a virtual environment
func VenvPython(venvDir, goos string) string {
	if goos == "windows" {
		return filepath.Join(venvDir, "Scripts", "python.exe")
	}
	return filepath.Join(venvDir, "bin", "python")
}

// PortableExecutable returns the interpreter path inside an extracted
// install_only archive.
func PortableExecutable(runtimeRoot, goos string) string {
	if goos == "windows" {
		return filepath.Join(runtimeRoot, "python", "python.exe")
	}
	return filepath.Join(runtimeRoot, "python", "bin", "python3")
}
