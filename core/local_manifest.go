package core

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/smarty/mfsync/contracts"
)

// LocalManifest is a snapshot of the single manifest candidate in a directory.
// The zero value describes a directory without a manifest.
type LocalManifest struct {
	fileSystem afero.Fs
	naming     contracts.ManifestNaming
	directory  string
	path       string
}

// InspectManifestDirectory finds the one regular file in directory whose name
// ends with the naming extension. More than one candidate is an error.
func InspectManifestDirectory(fileSystem afero.Fs, directory string, naming contracts.ManifestNaming) (LocalManifest, error) {
	manifest := LocalManifest{fileSystem: fileSystem, naming: naming, directory: directory}

	info, err := fileSystem.Stat(directory)
	if err != nil || !info.IsDir() {
		return manifest, fmt.Errorf("%w: %q", contracts.ErrNotADirectory, directory)
	}
	entries, err := afero.ReadDir(fileSystem, directory)
	if err != nil {
		return manifest, err
	}
	for _, entry := range entries {
		if !entry.Mode().IsRegular() || !strings.HasSuffix(entry.Name(), naming.Extension) {
			continue
		}
		candidate := filepath.Join(directory, entry.Name())
		if manifest.path != "" {
			return manifest, &contracts.TooManyCandidatesError{
				Directory: directory,
				First:     manifest.path,
				Second:    candidate,
			}
		}
		manifest.path = candidate
	}
	return manifest, nil
}

func (this LocalManifest) Exists() bool      { return this.path != "" }
func (this LocalManifest) Directory() string { return this.directory }
func (this LocalManifest) Path() string      { return this.path }

func (this LocalManifest) Name() string {
	if !this.Exists() {
		return ""
	}
	return filepath.Base(this.path)
}

func (this LocalManifest) Extension() string {
	if !this.Exists() {
		return ""
	}
	return this.naming.Extension
}

func (this LocalManifest) MatchesNaming() bool {
	return this.Exists() && this.naming.Matches(this.Name())
}

func (this LocalManifest) ExpectedChecksum() (contracts.Checksum, error) {
	if !this.Exists() {
		return contracts.Checksum{}, fmt.Errorf("%w in %q", contracts.ErrManifestNotFound, this.directory)
	}
	return this.naming.ExpectedChecksum(this.Name())
}

// ComputedChecksum hashes the file contents on every call.
func (this LocalManifest) ComputedChecksum() (contracts.Checksum, error) {
	if !this.Exists() {
		return contracts.Checksum{}, fmt.Errorf("%w in %q", contracts.ErrManifestNotFound, this.directory)
	}
	return ComputeChecksum(this.fileSystem, this.path)
}

func (this LocalManifest) ChecksumMatches() (bool, error) {
	expected, err := this.ExpectedChecksum()
	if err != nil {
		return false, err
	}
	computed, err := this.ComputedChecksum()
	if err != nil {
		return false, err
	}
	return expected == computed, nil
}
