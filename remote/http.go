package remote

import (
	"net"
	"net/http"
	"time"
)

// NewHTTPClient bounds connection setup by connect and the wait for response
// headers by respond. Bodies are streamed without an overall deadline.
func NewHTTPClient(connect, respond time.Duration) *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   connect,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:          4,
			IdleConnTimeout:       32 * time.Second,
			TLSHandshakeTimeout:   connect + respond,
			ResponseHeaderTimeout: respond,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
}
