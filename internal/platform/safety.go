package platform

import (
	"os"
	"path/filepath"
	"strings"
)

// DevDirName is the sandbox directory under the system temp dir.
const DevDirName = "tracker-dev"

// IsDevRun checks if the current process is running via `go run` or `go test`.
// Both build their binaries in temporary directories.
func IsDevRun() bool {
	exe, err := os.Executable()
	if err != nil {
		return false
	}

	tempDir := os.TempDir()
	if strings.HasPrefix(strings.ToLower(exe), strings.ToLower(tempDir)) {
		return true
	}
	if strings.HasSuffix(exe, ".test") || strings.HasSuffix(exe, ".test.exe") {
		return true
	}
	return false
}

// ResolveStorePath returns the store file to open. With forceTemp the file is
// re-rooted into the dev sandbox, unless it already lives under the temp dir.
func ResolveStorePath(userPath string, forceTemp bool) string {
	if userPath == "" {
		userPath = DefaultStoreFile
	}
	if !forceTemp {
		return userPath
	}

	clean := filepath.Clean(userPath)
	if abs, err := filepath.Abs(clean); err == nil {
		clean = abs
	}
	rel, err := filepath.Rel(os.TempDir(), clean)
	if err == nil && !strings.HasPrefix(rel, "..") {
		return clean
	}

	name := filepath.Base(userPath)
	if name == "." || name == string(os.PathSeparator) {
		name = DefaultStoreFile
	}
	return filepath.Join(os.TempDir(), DevDirName, name)
}
