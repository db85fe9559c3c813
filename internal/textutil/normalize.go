// Package textutil provides the text normalization shared by the signal
// evaluator and the source priority ranker.
package textutil

import (
	"hash/fnv"
	"net/url"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// accentFolder strips combining marks so "Société" and "Societe" normalize
// to the same key.
var accentFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// CollapseWhitespace trims s and collapses internal whitespace runs to a
// single space.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// FoldAccents removes diacritics from s. On transform failure the input is
// returned unchanged.
func FoldAccents(s string) string {
	folded, _, err := transform.String(accentFolder, s)
	if err != nil {
		return s
	}
	return folded
}

// NormalizeMatchText lowercases s and replaces every non-alphanumeric rune
// with a space, collapsing the result. All keyword and pattern matching in
// the evaluator runs against this form.
func NormalizeMatchText(s string) string {
	s = strings.ToLower(FoldAccents(s))

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}
	return CollapseWhitespace(b.String())
}

// NormalizeKey produces the canonical form of a value used inside dedupe
// keys: accent-folded, lowercased, punctuation-stripped, space-collapsed.
func NormalizeKey(s string) string {
	return NormalizeMatchText(s)
}

// stopwords are filler tokens dropped from content fingerprints so that
// rewordings of the same headline collapse to the same token sequence.
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "of": {}, "to": {}, "in": {}, "on": {},
	"at": {}, "for": {}, "and": {}, "or": {}, "as": {}, "by": {}, "with": {},
	"from": {}, "its": {}, "is": {}, "are": {}, "was": {}, "has": {},
	"have": {}, "had": {}, "be": {}, "been": {}, "this": {}, "that": {},
	"it": {}, "will": {}, "after": {}, "into": {}, "over": {}, "new": {},
	"up": {}, "out": {}, "more": {}, "their": {}, "his": {}, "her": {},
	"today": {}, "announces": {}, "announced": {}, "says": {}, "said": {},
}

// fingerprintTokenLimit bounds how many content tokens feed a fingerprint.
const fingerprintTokenLimit = 18

// ContentFingerprint builds a stable fingerprint of free text: normalized
// tokens with stopwords removed, truncated to the first 18 tokens.
func ContentFingerprint(s string) string {
	tokens := strings.Fields(NormalizeMatchText(s))
	kept := make([]string, 0, fingerprintTokenLimit)
	for _, tok := range tokens {
		if _, skip := stopwords[tok]; skip {
			continue
		}
		kept = append(kept, tok)
		if len(kept) == fingerprintTokenLimit {
			break
		}
	}
	return strings.Join(kept, " ")
}

// NormalizeSourceURL canonicalizes a source URL into the identity key used
// for metric aggregation and priority lookups: lowercased host without a
// leading "www.", plus the path with trailing slashes stripped; query and
// fragment are dropped. Unparseable input degrades to the trimmed
// lowercased raw string — ranking must never fail on a bad URL.
func NormalizeSourceURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	parseable := trimmed
	if !strings.Contains(parseable, "://") {
		parseable = "https://" + parseable
	}

	u, err := url.Parse(parseable)
	if err != nil || u.Host == "" {
		return strings.ToLower(trimmed)
	}

	host := strings.ToLower(u.Host)
	host = strings.TrimPrefix(host, "www.")

	path := strings.TrimRight(u.Path, "/")
	return host + path
}

// Hash32 returns the FNV-1a 32-bit hash of s. Ranking uses it as a
// deterministic tie-break that favors neither alphabetical nor insertion
// order.
func Hash32(s string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return h.Sum32()
}
