package contracts

import "io"

type Downloader interface {
	Download(address Location) (io.ReadCloser, error)
}
