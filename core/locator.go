package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/smartystreets/logging"

	"github.com/smarty/mfsync/contracts"
)

// ManifestLocator resolves the remote manifest for one language out of the
// metadata envelope.
type ManifestLocator struct {
	logger  *logging.Logger
	fetcher contracts.EnvelopeFetcher
	config  contracts.Config
}

func NewManifestLocator(fetcher contracts.EnvelopeFetcher, config contracts.Config) *ManifestLocator {
	return &ManifestLocator{fetcher: fetcher, config: config}
}

func (this *ManifestLocator) Locate() (contracts.RemoteManifest, error) {
	envelope, err := this.fetcher.Fetch()
	if err != nil {
		return contracts.RemoteManifest{}, err
	}
	paths, err := this.languagePaths(envelope.Response)
	if err != nil {
		return contracts.RemoteManifest{}, err
	}
	selected, err := MatchLanguage(this.config.Language, paths)
	if err != nil {
		return contracts.RemoteManifest{}, err
	}
	remotePath := paths[selected]

	if err = this.checkDirectory(remotePath); err != nil {
		return contracts.RemoteManifest{}, err
	}
	filename := path.Base(remotePath)
	if err = this.config.Naming.Validate(filename); err != nil {
		return contracts.RemoteManifest{}, err
	}
	location, err := contracts.ComposeLocation(this.config.ContentBaseAddress, remotePath)
	if err != nil {
		return contracts.RemoteManifest{}, err
	}

	return contracts.RemoteManifest{
		Paths:    paths,
		Language: selected,
		Path:     remotePath,
		Filename: filename,
		Location: location,
	}, nil
}

func (this *ManifestLocator) languagePaths(response json.RawMessage) (map[string]string, error) {
	current := response
	for _, key := range this.config.ResponsePath {
		var object map[string]json.RawMessage
		if err := json.Unmarshal(current, &object); err != nil || object == nil {
			return nil, fmt.Errorf("%w: expected an object holding %q", contracts.ErrMalformedResponse, key)
		}
		value, found := object[key]
		if !found {
			return nil, fmt.Errorf("%w: response is missing %q", contracts.ErrMalformedResponse, key)
		}
		current = value
	}

	var paths map[string]string
	if bytes.Equal(bytes.TrimSpace(current), []byte("null")) {
		return nil, fmt.Errorf("%w: language paths are null", contracts.ErrMalformedResponse)
	}
	if err := json.Unmarshal(current, &paths); err != nil {
		return nil, fmt.Errorf("%w: language paths: %v", contracts.ErrMalformedResponse, err)
	}
	return paths, nil
}

func (this *ManifestLocator) checkDirectory(remotePath string) error {
	if strings.HasPrefix(remotePath, this.config.ExpectedRemoteDirectory) {
		return nil
	}
	if this.config.Strict {
		return fmt.Errorf("%w: %q does not start with %q",
			contracts.ErrUnexpectedPathFormat, remotePath, this.config.ExpectedRemoteDirectory)
	}
	this.logger.Printf("[WARN] remote path %q does not start with %q (continuing, strict mode disabled)",
		remotePath, this.config.ExpectedRemoteDirectory)
	return nil
}
