package fs

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/aretw0/tracker/pkg/core"
)

// BundleTempPrefix names the scratch file a backup is staged in before it
// replaces the previous one.
const BundleTempPrefix = ".tracker-bundle-"

// WriteBundle writes a bundle to path atomically, in the format implied by its extension.
// An existing backup at path is either kept whole or fully replaced.
func WriteBundle(path string, b core.Bundle) error {
	data, err := SerializerFor(path).Serialize(b)
	if err != nil {
		return fmt.Errorf("serialize bundle: %w", err)
	}
	return replaceBundleFile(path, data, 0o644)
}

// ReadBundle reads and validates a bundle from path.
func ReadBundle(path string) (core.Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return core.Bundle{}, fmt.Errorf("read bundle: %w", err)
	}
	b, err := SerializerFor(path).Parse(bytes.NewReader(data))
	if err != nil {
		return core.Bundle{}, err
	}
	if err := b.Validate(); err != nil {
		return core.Bundle{}, err
	}
	return b, nil
}

// replaceBundleFile stages data next to path, renames it over path and syncs the
// directory so the rename itself survives a crash.
func replaceBundleFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)

	staged, err := os.CreateTemp(dir, BundleTempPrefix+"*")
	if err != nil {
		return fmt.Errorf("stage bundle: %w", err)
	}
	name := staged.Name()
	committed := false
	defer func() {
		if !committed {
			os.Remove(name)
		}
	}()

	if err := staged.Chmod(perm); err != nil && runtime.GOOS != "windows" {
		staged.Close()
		return fmt.Errorf("stage bundle: %w", err)
	}
	if _, err := staged.Write(data); err != nil {
		staged.Close()
		return fmt.Errorf("stage bundle: %w", err)
	}
	if err := staged.Sync(); err != nil {
		staged.Close()
		return fmt.Errorf("sync staged bundle: %w", err)
	}
	if err := staged.Close(); err != nil {
		return fmt.Errorf("stage bundle: %w", err)
	}
	if err := os.Rename(name, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	committed = true

	return syncDir(dir)
}

// syncDir flushes a directory entry change. Windows cannot fsync directories.
func syncDir(dir string) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	d, err := os.Open(dir)
	if err != nil {
		return fmt.Errorf("sync %s: %w", dir, err)
	}
	defer d.Close()
	if err := d.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", dir, err)
	}
	return nil
}
