package core

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"

	"github.com/smartystreets/logging"
	"github.com/spf13/afero"

	"github.com/smarty/mfsync/contracts"
)

const checksumChunkSize = 8 * 1024

// ComputeChecksum hashes the regular file at path with MD5.
func ComputeChecksum(fileSystem afero.Fs, path string) (contracts.Checksum, error) {
	info, err := fileSystem.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return contracts.Checksum{}, fmt.Errorf("%w: %q", contracts.ErrNotAFile, path)
	}
	file, err := fileSystem.Open(path)
	if err != nil {
		return contracts.Checksum{}, err
	}
	defer func() { _ = file.Close() }()

	hasher := md5.New()
	_, err = NewHashReader(file, hasher).Drain(make([]byte, checksumChunkSize))
	if err != nil {
		return contracts.Checksum{}, fmt.Errorf("hashing %q: %w", path, err)
	}
	return contracts.ParseChecksum(hex.EncodeToString(hasher.Sum(nil)))
}

// AssertChecksum compares the two values; a lenient mismatch is only logged.
func AssertChecksum(expected, computed contracts.Checksum, strict bool, logger *logging.Logger) error {
	if expected == computed {
		return nil
	}
	mismatch := &contracts.ChecksumMismatchError{Expected: expected, Computed: computed}
	if strict {
		return mismatch
	}
	logger.Printf("[WARN] %s (continuing, strict mode disabled)", mismatch)
	return nil
}
