package evaluator

import (
	"regexp"
	"strings"

	"github.com/talentradar/signal-engine/internal/textutil"
)

// Company name limits.
const (
	companyMinLength = 2
	companyMaxLength = 60
	companyMaxWords  = 7
)

var (
	// leadingPunctRE strips stray punctuation scrapers leave on names.
	leadingPunctRE = regexp.MustCompile(`^[^A-Za-z0-9]+`)

	// separatorRE cuts a name at the first dash or colon separator;
	// everything after is headline tail, not company.
	separatorRE = regexp.MustCompile(`\s+[-–—|]\s+|:`)

	// fundSuffixRE drops trailing "Fund IX" / "Fund 3" style suffixes.
	fundSuffixRE = regexp.MustCompile(`(?i)\s+fund\s+(?:[ivxlcdm]+|\d+)$`)

	// noisePhraseRE removes scraper noise fragments that attach to names.
	noisePhraseRE = regexp.MustCompile(`(?i)\b(?:latest manager|for debut|the latest)\b`)

	// leadingSectorRE strips generic sector descriptors prefixing the
	// actual name ("private equity firm Atlas" -> "Atlas").
	leadingSectorRE = regexp.MustCompile(`(?i)^(?:the\s+|a\s+|an\s+)?(?:private equity firm|private equity|venture capital firm|venture capital|pe firm|vc firm|family office|asset manager|hedge fund|buyout firm|investment firm)\s+`)

	// noiseSubstrings invalidate a candidate outright: fragments of
	// amount phrasing or headline filler misread as a name.
	noiseSubstrings = []string{"bn", "billion", "million", "debut", "latest"}

	// embeddedVerbRE rejects sentence fragments: a candidate containing
	// an action verb after a space is headline text, not a company.
	embeddedVerbRE = regexp.MustCompile(`\s(?:closes|closed|raises|raised|announces|announced|appoints|appointed|names|named|hires|hired|acquires|acquired|launches|launched|opens|opened|merges|merged|joins|joined|expands|expanded)\b`)
)

// Extraction patterns, tried in order against title+description.
var (
	// capitalized run followed by an action verb: "Blackstone closes ...".
	leadingSubjectRE = regexp.MustCompile(`^((?:[A-Z][\w&.'-]*\s+){0,6}[A-Z][\w&.'-]*)\s+(?i:closes|closed|raises|raised|announces|announced|appoints|appointed|names|named|hires|hired|acquires|acquired|launches|launched|opens|opened|merges|merged|expands|expanded)\b`)

	// capitalized run ending in a firm-suffix word: "... Meridian Capital Partners ...".
	firmSuffixRE = regexp.MustCompile(`\b((?:[A-Z][\w&.'-]*\s+){0,4}[A-Z][\w&.'-]*\s+(?:Capital|Partners|Group|Holdings|Ventures|Management|Advisors))\b`)

	// leading "<Name>: ..." headline prefix.
	colonPrefixRE = regexp.MustCompile(`^([A-Z][^:\n]{1,58}):`)
)

// resolveCompany returns the cleaned display name. The caller-supplied
// field wins when it survives cleanup and validation; otherwise extraction
// from the headline text is attempted.
func resolveCompany(supplied, title, description string) (string, bool) {
	if name := cleanCompanyName(supplied); validCompanyName(name) {
		return name, true
	}

	text := textutil.CollapseWhitespace(title + " " + description)
	for _, re := range []*regexp.Regexp{leadingSubjectRE, firmSuffixRE, colonPrefixRE} {
		match := re.FindStringSubmatch(text)
		if match == nil {
			continue
		}
		if name := cleanCompanyName(match[1]); validCompanyName(name) {
			return name, true
		}
	}
	return "", false
}

// cleanCompanyName normalizes a raw candidate into display form.
func cleanCompanyName(raw string) string {
	name := strings.TrimSpace(raw)
	if name == "" {
		return ""
	}

	name = leadingPunctRE.ReplaceAllString(name, "")
	if loc := separatorRE.FindStringIndex(name); loc != nil {
		name = name[:loc[0]]
	}
	name = fundSuffixRE.ReplaceAllString(name, "")
	name = noisePhraseRE.ReplaceAllString(name, " ")
	name = leadingSectorRE.ReplaceAllString(name, "")

	return textutil.CollapseWhitespace(name)
}

// validCompanyName applies the acceptance rules for a cleaned name.
func validCompanyName(name string) bool {
	if len(name) < companyMinLength || len(name) > companyMaxLength {
		return false
	}

	hasLetter := false
	for _, r := range name {
		if ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') {
			hasLetter = true
			break
		}
	}
	if !hasLetter {
		return false
	}

	lower := strings.ToLower(name)
	for _, noise := range noiseSubstrings {
		if strings.Contains(lower, noise) {
			return false
		}
	}
	if embeddedVerbRE.MatchString(lower) {
		return false
	}

	return len(strings.Fields(name)) <= companyMaxWords
}
