package contracts

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
)

// ManifestNaming describes manifest filenames: <Prefix><32 hex digits><Extension>.
type ManifestNaming struct {
	Prefix    string `toml:"prefix"`
	Extension string `toml:"extension"`
}

// Pattern is compiled once per distinct naming.
func (this ManifestNaming) Pattern() *regexp.Regexp {
	if cached, found := namingPatterns.Load(this); found {
		return cached.(*regexp.Regexp)
	}
	pattern := regexp.MustCompile("^" + regexp.QuoteMeta(this.Prefix) +
		"[a-fA-F0-9]{32}" + regexp.QuoteMeta(this.Extension) + "$")
	cached, _ := namingPatterns.LoadOrStore(this, pattern)
	return cached.(*regexp.Regexp)
}

func (this ManifestNaming) Matches(filename string) bool {
	return this.Pattern().MatchString(filename)
}

func (this ManifestNaming) Validate(filename string) error {
	pattern := this.Pattern()
	if pattern.MatchString(filename) {
		return nil
	}
	return fmt.Errorf("%w: %q does not match expected pattern %s", ErrNamingMismatch, filename, pattern)
}

var namingPatterns sync.Map

func (this ManifestNaming) Compose(checksum Checksum) string {
	return this.Prefix + checksum.String() + this.Extension
}

// ExpectedChecksum reads the checksum embedded in filename. Names that don't
// follow the pattern fall back to the last 32 characters of the stem.
func (this ManifestNaming) ExpectedChecksum(filename string) (Checksum, error) {
	if this.Matches(filename) {
		embedded := strings.TrimPrefix(strings.TrimSuffix(filename, this.Extension), this.Prefix)
		return ParseChecksum(embedded)
	}

	stem := strings.TrimSuffix(filename, filepath.Ext(filename))
	if len(stem) < ChecksumLength {
		return Checksum{}, fmt.Errorf("%w: %q is too short to carry a checksum", ErrNamingMismatch, filename)
	}
	checksum, err := ParseChecksum(stem[len(stem)-ChecksumLength:])
	if err != nil {
		return Checksum{}, fmt.Errorf("%w: %q carries no checksum: %v", ErrNamingMismatch, filename, err)
	}
	return checksum, nil
}
