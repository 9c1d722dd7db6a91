package core

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/smarty/mfsync/contracts"
)

// RemoveStaleSiblings deletes every regular file and symlink in directory
// except the kept paths, which must be existing files in that directory.
func RemoveStaleSiblings(fileSystem afero.Fs, directory string, keep ...string) error {
	directory = filepath.Clean(directory)
	kept := make(map[string]struct{}, len(keep))
	for _, path := range keep {
		path = filepath.Clean(path)
		if filepath.Dir(path) != directory {
			return fmt.Errorf("kept file %q is not a child of %q", path, directory)
		}
		info, err := fileSystem.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			return fmt.Errorf("%w: kept path %q", contracts.ErrNotAFile, path)
		}
		kept[path] = struct{}{}
	}

	entries, err := afero.ReadDir(fileSystem, directory)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		path := filepath.Join(directory, entry.Name())
		if _, found := kept[path]; found {
			continue
		}
		if !entry.Mode().IsRegular() && entry.Mode()&os.ModeSymlink == 0 {
			continue
		}
		if err := fileSystem.Remove(path); err != nil {
			return err
		}
	}
	return nil
}
