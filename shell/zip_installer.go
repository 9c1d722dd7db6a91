package shell

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/mholt/archiver"
	"github.com/smartystreets/logging"

	"github.com/smarty/mfsync/contracts"
)

const (
	downloadChunkSize = 8 * 1024
	progressInterval  = 2 * time.Second
)

// ZipInstaller downloads a zip archive to a temporary file, checks its shape
// and unpacks it into the requested directory.
type ZipInstaller struct {
	logger        *logging.Logger
	downloader    contracts.Downloader
	tempDirectory string
}

func NewZipInstaller(downloader contracts.Downloader, tempDirectory string) *ZipInstaller {
	return &ZipInstaller{downloader: downloader, tempDirectory: tempDirectory}
}

func (this *ZipInstaller) Install(request contracts.InstallationRequest) (err error) {
	archive, err := this.download(request.RemoteAddress)
	if err != nil {
		return err
	}
	defer this.cleanup(archive, &err)

	if info, statErr := os.Stat(archive); statErr != nil || !info.Mode().IsRegular() {
		return fmt.Errorf("%w: downloaded archive %q", contracts.ErrNotAFile, archive)
	}
	if err = verifyZipShape(archive, request.ExpectedFiles, request.ExpectedDirectories); err != nil {
		return err
	}

	target := filepath.Clean(request.LocalPath)
	if err = prepareTarget(target); err != nil {
		return err
	}
	staging, err := os.MkdirTemp(filepath.Dir(target), ".mfsync-staging-*")
	if err != nil {
		return err
	}
	defer this.cleanup(staging, &err)

	if err = archiver.NewZip().Unarchive(archive, staging); err != nil {
		return fmt.Errorf("extracting %s: %w", request.RemoteAddress, err)
	}
	moves, err := planMoves(staging, target, request.Overwrite)
	if err != nil {
		return err
	}
	return applyMoves(moves)
}

func (this *ZipInstaller) download(address contracts.Location) (path string, err error) {
	body, err := this.downloader.Download(address)
	if err != nil {
		return "", err
	}
	defer func() { _ = body.Close() }()

	file, err := os.CreateTemp(this.tempDirectory, "mfsync-*.zip")
	if err != nil {
		return "", err
	}
	path = file.Name()

	progress := newProgressCounter(this.logger, filepath.Base(address.Path), progressInterval)
	_, copyErr := io.CopyBuffer(io.MultiWriter(file, progress), &sourceReader{reader: body, url: address.URL}, make([]byte, downloadChunkSize))
	_ = progress.Close()
	closeErr := file.Close()

	if err = errors.Join(copyErr, closeErr); err != nil {
		this.cleanup(path, &err)
		return "", err
	}
	return path, nil
}

// cleanup removes path; an entry that is already gone is only logged.
func (this *ZipInstaller) cleanup(path string, err *error) {
	if _, statErr := os.Lstat(path); errors.Is(statErr, os.ErrNotExist) {
		this.logger.Printf("[INFO] temporary path %s was already removed.", path)
		return
	}
	if removeErr := os.RemoveAll(path); removeErr != nil {
		*err = errors.Join(*err, removeErr)
	}
}

func prepareTarget(target string) error {
	info, err := os.Stat(target)
	if errors.Is(err, os.ErrNotExist) {
		return os.MkdirAll(target, 0755)
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %q", contracts.ErrNotADirectory, target)
	}
	return nil
}

// sourceReader marks read failures as download failures so they can be told
// apart from failures writing the temporary file.
type sourceReader struct {
	reader io.Reader
	url    string
}

func (this *sourceReader) Read(buffer []byte) (int, error) {
	count, err := this.reader.Read(buffer)
	if err == nil || err == io.EOF {
		return count, err
	}
	var download *contracts.DownloadError
	if errors.As(err, &download) {
		return count, err
	}
	return count, &contracts.DownloadError{URL: this.url, Cause: err}
}
