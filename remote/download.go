package remote

import (
	"io"
	"net/http"

	"github.com/smartystreets/logging"

	"github.com/smarty/mfsync/contracts"
)

type ArchiveDownloader struct {
	logger *logging.Logger
	client *http.Client
}

func NewArchiveDownloader(client *http.Client) *ArchiveDownloader {
	return &ArchiveDownloader{client: client}
}

// Download opens a streaming GET; read failures on the returned body are
// reported as *contracts.DownloadError.
func (this *ArchiveDownloader) Download(address contracts.Location) (io.ReadCloser, error) {
	request, err := http.NewRequest(http.MethodGet, address.URL, nil)
	if err != nil {
		return nil, &contracts.DownloadError{URL: address.URL, Cause: err}
	}
	response, err := this.client.Do(request)
	if err != nil {
		return nil, &contracts.DownloadError{URL: address.URL, Cause: &contracts.RemoteUnavailableError{Cause: err}}
	}
	if response.StatusCode != http.StatusOK {
		_ = response.Body.Close()
		this.logger.Printf("[WARN] non 200 status code downloading %s: %s", address, response.Status)
		return nil, &contracts.DownloadError{URL: address.URL, Cause: &contracts.RemoteUnavailableError{
			StatusCode: response.StatusCode,
			Reason:     http.StatusText(response.StatusCode),
		}}
	}
	return &downloadBody{ReadCloser: response.Body, url: address.URL}, nil
}

type downloadBody struct {
	io.ReadCloser
	url string
}

func (this *downloadBody) Read(buffer []byte) (int, error) {
	count, err := this.ReadCloser.Read(buffer)
	if err != nil && err != io.EOF {
		return count, &contracts.DownloadError{URL: this.url, Cause: err}
	}
	return count, err
}
