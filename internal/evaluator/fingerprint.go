package evaluator

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/talentradar/signal-engine/internal/domain"
	"github.com/talentradar/signal-engine/internal/textutil"
)

const fingerprintNA = "na"

// fundNameRE pulls a "Fund IX" / "Fund 3" token out of normalized text.
var fundNameRE = regexp.MustCompile(`\bfund ([ivxlcdm]+|\d+)\b`)

// Action keywords checked in priority order when deriving the signature
// action; the category is the fallback.
var (
	acquisitionRE = regexp.MustCompile(`\bacquisition\b|\bacquires\b|\bacquired\b`)
	mergerRE      = regexp.MustCompile(`\bmerger\b|\bmerges\b|\bmerged\b`)
)

// dealSignature builds the coarse <action>|<fund>|<amount> fingerprint of
// the underlying business event, independent of article wording.
func dealSignature(normalized string, category domain.Category, amount *float64, currency domain.Currency) string {
	action := string(category)
	switch {
	case hasFundClose(normalized):
		action = "fund_close"
	case acquisitionRE.MatchString(normalized):
		action = "acquisition"
	case mergerRE.MatchString(normalized):
		action = "merger"
	case category == domain.CategoryCSuite:
		action = "c_suite"
	case category == domain.CategoryHiring:
		action = "hiring"
	}

	fund := fingerprintNA
	if m := fundNameRE.FindStringSubmatch(normalized); m != nil {
		fund = "fund_" + m[1]
	}

	amt := fingerprintNA
	if amount != nil {
		amt = strings.ToLower(string(currency)) + strconv.FormatFloat(*amount, 'f', -1, 64)
	}

	return action + "|" + fund + "|" + amt
}

// buildDedupeKey composes the exact-duplicate suppression key. Two
// articles about the same deal collapse to the same key when company,
// content fingerprint, key people, source and deal signature all agree.
func buildDedupeKey(company, content string, people []string, source, signature string) string {
	normPeople := make([]string, 0, len(people))
	for _, p := range people {
		if n := textutil.NormalizeKey(p); n != "" {
			normPeople = append(normPeople, n)
		}
	}
	sort.Strings(normPeople)

	parts := []string{
		textutil.NormalizeKey(company),
		textutil.ContentFingerprint(content),
		strings.Join(normPeople, ","),
		textutil.NormalizeSourceURL(source),
		textutil.NormalizeKey(signature),
	}
	return strings.Join(parts, "|")
}
