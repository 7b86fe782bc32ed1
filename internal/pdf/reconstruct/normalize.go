package reconstruct

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	splitSchemeRe     = regexp.MustCompile(`https:/\s*/`)
	hyphenatedWrap    = regexp.MustCompile(`([\p{L}\p{N}_])-\n([\p{L}\p{N}_])`)
	defaultNormalizer = Normalizer{}
)

// Normalizer repairs common extraction artifacts in page and document text.
type Normalizer struct {
	// UnicodeNFC composes decomposed characters before the repairs run.
	UnicodeNFC bool
}

// Normalize applies the default normalizer
func Normalize(s string) string {
	return defaultNormalizer.Normalize(s)
}

// Normalize removes NUL characters, rejoins URLs split inside the scheme
// separator, joins words hyphenated across a line break and trims the
// result.
func (n Normalizer) Normalize(s string) string {
	if s == "" {
		return s
	}
	s = strings.ReplaceAll(s, "\x00", "")
	if n.UnicodeNFC {
		s = norm.NFC.String(s)
	}
	s = repairWraps(s)

	return strings.TrimSpace(s)
}

// repairWraps rejoins split URL schemes and removes "-\n" between word
// characters. Hyphen matches can share a character ("a-\nb-\nc") and a join
// can complete a scheme ("ht-\ntps:/\n/"), so both rules repeat until the
// string stops changing.
func repairWraps(s string) string {
	for {
		joined := splitSchemeRe.ReplaceAllString(s, "https://")
		joined = hyphenatedWrap.ReplaceAllString(joined, "$1$2")
		if joined == s {
			return joined
		}
		s = joined
	}
}
