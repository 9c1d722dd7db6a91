package contracts

import (
	"fmt"
	"regexp"
	"strings"
)

// Checksum is a lowercase, 32 hex digit MD5 digest.
type Checksum struct{ value string }

func ParseChecksum(raw string) (Checksum, error) {
	normalized := strings.ToLower(raw)
	if !checksumPattern.MatchString(normalized) {
		return Checksum{}, fmt.Errorf("%w: %q is not a 32 digit hexadecimal checksum", ErrInvalidFormat, raw)
	}
	return Checksum{value: normalized}, nil
}

func (this Checksum) String() string { return this.value }
func (this Checksum) IsZero() bool   { return this.value == "" }

var checksumPattern = regexp.MustCompile(`^[a-f0-9]{32}$`)

const ChecksumLength = 32
