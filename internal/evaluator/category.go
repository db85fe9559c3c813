package evaluator

import (
	"regexp"

	"github.com/talentradar/signal-engine/internal/domain"
)

// categoryRule pairs a predicate with the category it assigns. Rules are
// evaluated in order with first-match-wins; the order is part of the
// contract, not an optimization.
type categoryRule struct {
	predicate *regexp.Regexp
	category  domain.Category
}

// categoryRules is the classification cascade for candidates that did not
// match a must-have pattern. Runs against normalized text.
var categoryRules = []categoryRule{
	{
		// appointment verb near a C-level title
		predicate: regexp.MustCompile(`\b(?:appoints|appointed|names|named|hires|hired|promotes|promoted|joins|joined)\b[a-z0-9 ]{0,80}\b(?:ceo|cfo|coo|cio|chief executive|chief financial|chief operating|chief investment|managing partner|chairman|chairwoman)\b|\b(?:ceo|cfo|coo|cio|chief executive|chief financial|chief operating|chief investment|managing partner|chairman|chairwoman)\b[a-z0-9 ]{0,80}\b(?:appointed|named|hired|joins|joined)\b`),
		category:  domain.CategoryCSuite,
	},
	{
		predicate: regexp.MustCompile(`\bheadcount\b|\bteam growth\b|\bteam expansion\b|\b(?:grows|growing|doubles|doubling|expands|expanding|builds out|building out)\b[a-z0-9 ]{0,30}\bteam\b|\badds to\b[a-z0-9 ]{0,30}\bteam\b`),
		category:  domain.CategoryTeamGrowth,
	},
	{
		predicate: regexp.MustCompile(`\bhiring\b|\brecruiting\b|\brecruitment\b|\bhires\b|\bnew hire(?:s)?\b|\bjob opening(?:s)?\b|\bvacanc(?:y|ies)\b|\btalent acquisition\b`),
		category:  domain.CategoryHiring,
	},
	{
		predicate: regexp.MustCompile(`\bfund clos(?:e|es|ed|ing)\b|\bfinal close\b|\bfirst close\b|\braises\b|\braised\b|\bfundrais(?:e|es|ing)\b|\bseries [abcde]\b|\bseed round\b|\bfunding round\b|\bcapital raise\b`),
		category:  domain.CategoryFunding,
	},
	{
		predicate: regexp.MustCompile(`\bacquisition\b|\bacquires\b|\bacquired\b|\bmerger\b|\bmerges\b|\bmerged\b|\bexpands\b|\bexpansion\b|\blaunch(?:es|ed)?\b|\bopens\b[a-z0-9 ]{0,20}\boffice\b|\bnew office\b`),
		category:  domain.CategoryExpansion,
	},
}

// categorize classifies normalized text through the cascade, defaulting to
// expansion when nothing matches.
func categorize(normalized string) domain.Category {
	for _, rule := range categoryRules {
		if rule.predicate.MatchString(normalized) {
			return rule.category
		}
	}
	return domain.CategoryExpansion
}
