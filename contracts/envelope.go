package contracts

import "encoding/json"

// Envelope is the fixed-shape wrapper the vendor returns around every response.
type Envelope struct {
	ErrorCode       int
	ThrottleSeconds int
	ErrorStatus     string
	Message         string
	MessageData     map[string]any
	Response        json.RawMessage
}

var EnvelopeFields = []string{
	"ErrorCode",
	"ThrottleSeconds",
	"ErrorStatus",
	"Message",
	"MessageData",
	"Response",
}

const (
	ErrorCodeSuccess       = 1
	ErrorCodeApiInvalidKey = 2101
	ErrorCodeApiKeyMissing = 2102
)

type EnvelopeFetcher interface {
	Fetch() (Envelope, error)
}
