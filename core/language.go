package core

import (
	"sort"
	"strings"

	"golang.org/x/text/language"

	"github.com/smarty/mfsync/contracts"
)

// MatchLanguage picks the key of available closest to desired: an exact (case
// insensitive) key first, then the best BCP 47 match of at least high confidence.
func MatchLanguage(desired string, available map[string]string) (string, error) {
	keys := make([]string, 0, len(available))
	for key := range available {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	desired = strings.TrimSpace(desired)
	for _, key := range keys {
		if strings.EqualFold(key, desired) {
			return key, nil
		}
	}

	if wanted, err := language.Parse(desired); err == nil {
		var tags []language.Tag
		var candidates []string
		for _, key := range keys {
			tag, err := language.Parse(key)
			if err != nil {
				continue
			}
			tags = append(tags, tag)
			candidates = append(candidates, key)
		}
		if len(tags) > 0 {
			_, index, confidence := language.NewMatcher(tags).Match(wanted)
			if confidence >= language.High {
				return candidates[index], nil
			}
		}
	}

	return "", &contracts.LanguageUnavailableError{Desired: desired, Available: keys}
}
