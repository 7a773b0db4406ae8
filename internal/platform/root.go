package platform

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// SystemDir holds the store of a tracker root.
	SystemDir = ".tracker"
	// ConfigFile is the optional configuration file at a tracker root.
	ConfigFile = "tracker.yaml"
	// DefaultStoreFile is the SQLite file name inside SystemDir.
	DefaultStoreFile = "tracker.db"
)

// FindRoot looks upwards from startDir for a directory holding SystemDir or ConfigFile.
func FindRoot(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		if hasFile(dir, SystemDir) || hasFile(dir, ConfigFile) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", fmt.Errorf("root not found")
}

// DefaultStorePath returns the store file of a tracker root.
func DefaultStorePath(root string) string {
	return filepath.Join(root, SystemDir, DefaultStoreFile)
}

func hasFile(dir, name string) bool {
	_, err := os.Stat(filepath.Join(dir, name))
	return err == nil
}
