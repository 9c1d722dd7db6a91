package shell

import (
	"github.com/klauspost/compress/zip"

	"github.com/smarty/mfsync/contracts"
)

// countZipEntries partitions the central directory of the archive at path
// into files and directories without extracting anything.
func countZipEntries(path string) (files, directories int, err error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return 0, 0, err
	}
	defer func() { _ = reader.Close() }()

	for _, entry := range reader.File {
		if entry.FileInfo().IsDir() {
			directories++
		} else {
			files++
		}
	}
	return files, directories, nil
}

func verifyZipShape(path string, expectedFiles, expectedDirectories *int) error {
	if expectedFiles == nil && expectedDirectories == nil {
		return nil
	}
	if expectedFiles != nil && *expectedFiles < 0 {
		return &contracts.EntryCountError{Kind: "file", Expected: *expectedFiles, Source: path}
	}
	if expectedDirectories != nil && *expectedDirectories < 0 {
		return &contracts.EntryCountError{Kind: "dir", Expected: *expectedDirectories, Source: path}
	}

	files, directories, err := countZipEntries(path)
	if err != nil {
		return err
	}
	if expectedFiles != nil && files != *expectedFiles {
		return &contracts.EntryCountError{Kind: "file", Expected: *expectedFiles, Actual: files, Source: path}
	}
	if expectedDirectories != nil && directories != *expectedDirectories {
		return &contracts.EntryCountError{Kind: "dir", Expected: *expectedDirectories, Actual: directories, Source: path}
	}
	return nil
}
