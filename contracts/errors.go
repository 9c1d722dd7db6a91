package contracts

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidFormat           = errors.New("invalid format")
	ErrInvalidURL              = errors.New("invalid url")
	ErrNamingMismatch          = errors.New("manifest naming mismatch")
	ErrRemoteUnavailable       = errors.New("remote unavailable")
	ErrDownloadFailed          = errors.New("download failed")
	ErrAuth                    = errors.New("api key rejected")
	ErrUnknownRemote           = errors.New("unknown remote error")
	ErrMalformedResponse       = errors.New("malformed response")
	ErrUnexpectedResponseShape = errors.New("unexpected response shape")
	ErrLanguageUnavailable     = errors.New("manifest language unavailable")
	ErrUnexpectedPathFormat    = errors.New("unexpected remote path format")
	ErrUnexpectedEntryCount    = errors.New("unexpected archive entry count")
	ErrTooManyCandidates       = errors.New("too many manifest candidates")
	ErrDestinationExists       = errors.New("destination already exists")
	ErrIsADirectoryConflict    = errors.New("cannot move directory onto file")
	ErrChecksumMismatch        = errors.New("checksum mismatch")
	ErrNotAFile                = errors.New("not a regular file")
	ErrNotADirectory           = errors.New("not a directory")
	ErrManifestNotFound        = errors.New("manifest not found")
	ErrVersionNotFound         = errors.New("version not found")
	ErrAmbiguousVersion        = errors.New("ambiguous version")

	// ErrRetry marks failures worth another attempt (transport errors, 5xx, 429).
	ErrRetry = errors.New("retry")
)

type RemoteUnavailableError struct {
	StatusCode int
	Reason     string
	Cause      error
}

func (this *RemoteUnavailableError) Error() string {
	if this.StatusCode == 0 {
		return fmt.Sprintf("request to remote failed: %v", this.Cause)
	}
	return fmt.Sprintf("request to remote failed with status %d: %s", this.StatusCode, this.Reason)
}

func (this *RemoteUnavailableError) Unwrap() []error {
	unwrapped := []error{ErrRemoteUnavailable}
	if this.Cause != nil {
		unwrapped = append(unwrapped, this.Cause)
	}
	if this.retryable() {
		unwrapped = append(unwrapped, ErrRetry)
	}
	return unwrapped
}

func (this *RemoteUnavailableError) retryable() bool {
	return this.StatusCode == 0 || this.StatusCode == 429 || this.StatusCode >= 500
}

type DownloadError struct {
	URL   string
	Cause error
}

func (this *DownloadError) Error() string {
	return fmt.Sprintf("failed to download content from %s: %v", this.URL, this.Cause)
}

func (this *DownloadError) Unwrap() []error {
	return []error{ErrDownloadFailed, this.Cause}
}

type AuthError struct {
	Code    int
	Message string
}

func (this *AuthError) Error() string {
	return fmt.Sprintf("issue with the api key (error code %d): %s", this.Code, this.Message)
}

func (this *AuthError) Unwrap() error { return ErrAuth }

type UnknownRemoteError struct {
	Envelope Envelope
}

func (this *UnknownRemoteError) Error() string {
	return fmt.Sprintf("unknown remote error (error code %d, status %q): %s",
		this.Envelope.ErrorCode, this.Envelope.ErrorStatus, this.Envelope.Message)
}

func (this *UnknownRemoteError) Unwrap() error { return ErrUnknownRemote }

type LanguageUnavailableError struct {
	Desired   string
	Available []string
}

func (this *LanguageUnavailableError) Error() string {
	return fmt.Sprintf("manifest language %q currently unavailable (available: %s)",
		this.Desired, strings.Join(this.Available, ", "))
}

func (this *LanguageUnavailableError) Unwrap() error { return ErrLanguageUnavailable }

type EntryCountError struct {
	Kind     string
	Expected int
	Actual   int
	Source   string
}

func (this *EntryCountError) Error() string {
	if this.Expected < 0 {
		return fmt.Sprintf("expected %s count is %d: cannot have a negative number of %ss in %s",
			this.Kind, this.Expected, this.Kind, this.Source)
	}
	return fmt.Sprintf("unexpected %s count in %s: expected %d, found %d",
		this.Kind, this.Source, this.Expected, this.Actual)
}

func (this *EntryCountError) Unwrap() error { return ErrUnexpectedEntryCount }

type TooManyCandidatesError struct {
	Directory string
	First     string
	Second    string
}

func (this *TooManyCandidatesError) Error() string {
	return fmt.Sprintf("directory %q contains too many manifest candidates, including both %q and %q",
		this.Directory, this.First, this.Second)
}

func (this *TooManyCandidatesError) Unwrap() error { return ErrTooManyCandidates }

type ChecksumMismatchError struct {
	Expected Checksum
	Computed Checksum
}

func (this *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("checksum mismatch: expected %s, computed %s", this.Expected, this.Computed)
}

func (this *ChecksumMismatchError) Unwrap() error { return ErrChecksumMismatch }
