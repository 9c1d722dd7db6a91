package remote

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"

	"github.com/smartystreets/logging"

	"github.com/smarty/mfsync/contracts"
)

const maxEnvelopeBytes = 10 << 20

type MetadataClient struct {
	logger   *logging.Logger
	client   *http.Client
	endpoint contracts.Location
	apiKey   string
}

func NewMetadataClient(client *http.Client, endpoint contracts.Location, apiKey string) *MetadataClient {
	return &MetadataClient{client: client, endpoint: endpoint, apiKey: apiKey}
}

func (this *MetadataClient) Fetch() (contracts.Envelope, error) {
	request, err := http.NewRequest(http.MethodGet, this.endpoint.URL, nil)
	if err != nil {
		return contracts.Envelope{}, err
	}
	request.Header.Set("Accept", "application/json")
	if this.apiKey != "" {
		request.Header.Set("X-API-KEY", this.apiKey)
	}

	response, err := this.client.Do(request)
	if err != nil {
		return contracts.Envelope{}, &contracts.RemoteUnavailableError{Cause: err}
	}
	defer func() { _ = response.Body.Close() }()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		this.dump(request, response)
		return contracts.Envelope{}, &contracts.RemoteUnavailableError{
			StatusCode: response.StatusCode,
			Reason:     http.StatusText(response.StatusCode),
		}
	}

	body, err := io.ReadAll(io.LimitReader(response.Body, maxEnvelopeBytes+1))
	if err != nil {
		return contracts.Envelope{}, &contracts.RemoteUnavailableError{Cause: err}
	}
	if len(body) > maxEnvelopeBytes {
		return contracts.Envelope{}, fmt.Errorf("%w: response exceeds %d bytes", contracts.ErrMalformedResponse, maxEnvelopeBytes)
	}

	envelope, err := DecodeEnvelope(body)
	if err != nil {
		return contracts.Envelope{}, err
	}
	return envelope, classify(envelope)
}

func (this *MetadataClient) dump(request *http.Request, response *http.Response) {
	requestDump, _ := httputil.DumpRequestOut(request, false)
	requestDump = redactAPIKey(requestDump, this.apiKey)
	responseDump, _ := httputil.DumpResponse(response, true)
	this.logger.Printf("[WARN] non 2xx status code: \nrequest: \n%s\nresponse:\n%s", requestDump, responseDump)
}

func redactAPIKey(dump []byte, apiKey string) []byte {
	if apiKey == "" {
		return dump
	}
	return bytes.ReplaceAll(dump, []byte(apiKey), []byte("[redacted]"))
}

// DecodeEnvelope requires exactly the six envelope fields, each of its
// documented JSON type.
func DecodeEnvelope(body []byte) (envelope contracts.Envelope, err error) {
	var fields map[string]json.RawMessage
	if err = json.Unmarshal(body, &fields); err != nil || fields == nil {
		return contracts.Envelope{}, fmt.Errorf("%w: response is not a JSON object", contracts.ErrMalformedResponse)
	}
	for _, name := range contracts.EnvelopeFields {
		if _, found := fields[name]; !found {
			return contracts.Envelope{}, fmt.Errorf("%w: response is missing %q", contracts.ErrMalformedResponse, name)
		}
	}
	if len(fields) != len(contracts.EnvelopeFields) {
		return contracts.Envelope{}, fmt.Errorf("%w: expected exactly the fields %v, got %d fields",
			contracts.ErrUnexpectedResponseShape, contracts.EnvelopeFields, len(fields))
	}

	err = errors.Join(
		decodeField(fields, "ErrorCode", &envelope.ErrorCode),
		decodeField(fields, "ThrottleSeconds", &envelope.ThrottleSeconds),
		decodeField(fields, "ErrorStatus", &envelope.ErrorStatus),
		decodeField(fields, "Message", &envelope.Message),
		decodeField(fields, "MessageData", &envelope.MessageData),
	)
	if err != nil {
		return contracts.Envelope{}, err
	}
	if !isObject(fields["Response"]) {
		return contracts.Envelope{}, fmt.Errorf("%w: %q is not an object", contracts.ErrMalformedResponse, "Response")
	}
	envelope.Response = fields["Response"]
	return envelope, nil
}

func decodeField(fields map[string]json.RawMessage, name string, target any) error {
	raw := bytes.TrimSpace(fields[name])
	if bytes.Equal(raw, []byte("null")) {
		return fmt.Errorf("%w: %q is null", contracts.ErrMalformedResponse, name)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("%w: %q: %v", contracts.ErrMalformedResponse, name, err)
	}
	return nil
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

func classify(envelope contracts.Envelope) error {
	switch envelope.ErrorCode {
	case contracts.ErrorCodeSuccess:
		return nil
	case contracts.ErrorCodeApiInvalidKey, contracts.ErrorCodeApiKeyMissing:
		return &contracts.AuthError{Code: envelope.ErrorCode, Message: envelope.Message}
	default:
		return &contracts.UnknownRemoteError{Envelope: envelope}
	}
}
