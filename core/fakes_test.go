package core

import (
	"crypto/md5"
	"encoding/hex"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/smarty/mfsync/contracts"
)

func checksumOf(content string) contracts.Checksum {
	sum := md5.Sum([]byte(content))
	checksum, _ := contracts.ParseChecksum(hex.EncodeToString(sum[:]))
	return checksum
}

func manifestName(content string) string {
	return contracts.DefaultConfig().Naming.Compose(checksumOf(content))
}

/////////////////////////////////////////////////////////////////////////////////

type FakeFetcher struct {
	envelopes []contracts.Envelope
	errors    []error
	attempts  int
}

func (this *FakeFetcher) Fetch() (contracts.Envelope, error) {
	index := this.attempts
	this.attempts++
	var envelope contracts.Envelope
	var err error
	if index < len(this.envelopes) {
		envelope = this.envelopes[index]
	} else if len(this.envelopes) > 0 {
		envelope = this.envelopes[len(this.envelopes)-1]
	}
	if index < len(this.errors) {
		err = this.errors[index]
	} else if len(this.errors) > 0 {
		err = this.errors[len(this.errors)-1]
	}
	return envelope, err
}

/////////////////////////////////////////////////////////////////////////////////

type FakeDownloader struct {
	content  string
	errors   []error
	received []contracts.Location
}

func (this *FakeDownloader) Download(address contracts.Location) (io.ReadCloser, error) {
	this.received = append(this.received, address)
	if len(this.errors) > 0 {
		err := this.errors[0]
		this.errors = this.errors[1:]
		if err != nil {
			return nil, err
		}
	}
	return io.NopCloser(strings.NewReader(this.content)), nil
}

/////////////////////////////////////////////////////////////////////////////////

// FakeInstaller writes files into the manifest directory the way an unpacked
// archive would.
type FakeInstaller struct {
	fileSystem afero.Fs
	files      map[string]string
	err        error
	requests   []contracts.InstallationRequest
}

func NewFakeInstaller(fileSystem afero.Fs) *FakeInstaller {
	return &FakeInstaller{fileSystem: fileSystem, files: make(map[string]string)}
}

func (this *FakeInstaller) Install(request contracts.InstallationRequest) error {
	this.requests = append(this.requests, request)
	for name, content := range this.files {
		path := filepath.Join(request.LocalPath, name)
		if found, _ := afero.Exists(this.fileSystem, path); found && !request.Overwrite {
			return contracts.ErrDestinationExists
		}
		if err := this.fileSystem.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return err
		}
		if err := afero.WriteFile(this.fileSystem, path, []byte(content), 0644); err != nil {
			return err
		}
	}
	return this.err
}
