package core

import (
	"errors"
	"io"
	"time"

	"github.com/smartystreets/clock"
	"github.com/smartystreets/logging"

	"github.com/smarty/mfsync/contracts"
)

const retryDelay = time.Second * 3

type RetryFetcher struct {
	sleeper  *clock.Sleeper
	logger   *logging.Logger
	inner    contracts.EnvelopeFetcher
	maxRetry int
}

func NewRetryFetcher(inner contracts.EnvelopeFetcher, maxRetry int) *RetryFetcher {
	return &RetryFetcher{inner: inner, maxRetry: maxRetry}
}

func (this *RetryFetcher) Fetch() (envelope contracts.Envelope, err error) {
	for x := 0; x <= this.maxRetry; x++ {
		envelope, err = this.inner.Fetch()
		if err == nil {
			return envelope, nil
		}
		if !errors.Is(err, contracts.ErrRetry) {
			return contracts.Envelope{}, err
		}
		if x < this.maxRetry {
			this.logger.Printf("[WARN] metadata request failed (%s), retry imminent.", err)
			this.sleeper.Sleep(retryDelay)
		}
	}
	return contracts.Envelope{}, err
}

type RetryDownloader struct {
	sleeper  *clock.Sleeper
	logger   *logging.Logger
	inner    contracts.Downloader
	maxRetry int
}

func NewRetryDownloader(inner contracts.Downloader, maxRetry int) *RetryDownloader {
	return &RetryDownloader{inner: inner, maxRetry: maxRetry}
}

func (this *RetryDownloader) Download(address contracts.Location) (body io.ReadCloser, err error) {
	for x := 0; x <= this.maxRetry; x++ {
		body, err = this.inner.Download(address)
		if err == nil {
			return body, nil
		}
		if !errors.Is(err, contracts.ErrRetry) {
			return nil, err
		}
		if x < this.maxRetry {
			this.logger.Printf("[WARN] download failed (%s), retry imminent.", err)
			this.sleeper.Sleep(retryDelay)
		}
	}
	return nil, err
}
