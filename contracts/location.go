package contracts

import (
	"fmt"
	"net/url"
	"strings"
)

// Location is a validated absolute URL split into its base (scheme://host)
// and its path, the latter stored without leading or trailing slashes.
type Location struct {
	URL  string
	Base string
	Path string
}

func ParseLocation(full string) (Location, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(full), "/")
	parsed, err := validateURL(trimmed)
	if err != nil {
		return Location{}, err
	}
	return Location{
		URL:  trimmed,
		Base: parsed.Scheme + "://" + parsed.Host,
		Path: strings.Trim(parsed.EscapedPath(), "/"),
	}, nil
}

func ComposeLocation(base, path string) (Location, error) {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	path = strings.Trim(strings.TrimSpace(path), "/")

	prefix, err := ParseLocation(base)
	if err != nil {
		return Location{}, err
	}
	for _, segment := range strings.Split(path, "/") {
		if segment == ".." || segment == "." {
			return Location{}, fmt.Errorf("%w: path %q escapes base %q", ErrInvalidURL, path, base)
		}
	}

	joined := base
	if path != "" {
		joined = base + "/" + path
	}
	location, err := ParseLocation(joined)
	if err != nil {
		return Location{}, err
	}
	if location.Base != prefix.Base {
		return Location{}, fmt.Errorf("%w: path %q overrides base %q", ErrInvalidURL, path, base)
	}
	return location, nil
}

func (this Location) String() string { return this.URL }

func validateURL(raw string) (*url.URL, error) {
	if raw == "" || strings.ContainsAny(raw, " \t\r\n") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, raw)
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidURL, raw, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("%w: %q must use http or https", ErrInvalidURL, raw)
	}
	if parsed.Hostname() == "" || parsed.User != nil {
		return nil, fmt.Errorf("%w: %q must name a host", ErrInvalidURL, raw)
	}
	return parsed, nil
}
