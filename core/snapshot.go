package core

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/smarty/mfsync/contracts"
)

// directorySnapshot records the entry names of a directory so a failed
// update can remove whatever appeared afterwards.
type directorySnapshot struct {
	fileSystem afero.Fs
	directory  string
	names      map[string]struct{}
}

func takeSnapshot(fileSystem afero.Fs, directory string) (directorySnapshot, error) {
	snapshot := directorySnapshot{fileSystem: fileSystem, directory: directory, names: make(map[string]struct{})}
	entries, err := afero.ReadDir(fileSystem, directory)
	if err != nil {
		return snapshot, err
	}
	for _, entry := range entries {
		snapshot.names[entry.Name()] = struct{}{}
	}
	return snapshot, nil
}

// Restore removes every entry (files and directories alike) that was not
// present when the snapshot was taken, then moves backup back to original.
// Without a backup, original is ignored.
func (this directorySnapshot) Restore(backup, original string) error {
	entries, err := afero.ReadDir(this.fileSystem, this.directory)
	if err != nil {
		return err
	}
	var failures []error
	for _, entry := range entries {
		path := filepath.Join(this.directory, entry.Name())
		if backup != "" && path == backup {
			continue
		}
		_, existed := this.names[entry.Name()]
		if existed && (backup == "" || path != original) {
			continue
		}
		if err = this.fileSystem.RemoveAll(path); err != nil {
			failures = append(failures, err)
		}
	}
	if len(failures) > 0 {
		return errors.Join(failures...)
	}
	if backup == "" {
		return nil
	}
	return this.fileSystem.Rename(backup, original)
}

// backupFile renames path to path+extension. An existing backup is only
// replaced when force is set.
func backupFile(fileSystem afero.Fs, path, extension string, force bool) (string, error) {
	backup := path + extension
	found, err := afero.Exists(fileSystem, backup)
	if err != nil {
		return "", err
	}
	if found && !force {
		return "", fmt.Errorf("%w: backup %q (use force to overwrite it)", contracts.ErrDestinationExists, backup)
	}
	if found {
		if err = fileSystem.RemoveAll(backup); err != nil {
			return "", err
		}
	}
	if err = fileSystem.Rename(path, backup); err != nil {
		return "", err
	}
	return backup, nil
}
