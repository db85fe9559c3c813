// Package evaluator implements the signal quality pipeline: given one raw
// scraped candidate it decides accept/reject and, on accept, resolves the
// company, category, amount, key people and dedupe fingerprints.
package evaluator

import (
	ahocorasick "github.com/cloudflare/ahocorasick"

	"github.com/talentradar/signal-engine/internal/domain"
	"github.com/talentradar/signal-engine/internal/logger"
	"github.com/talentradar/signal-engine/internal/textutil"
)

// minContentLength is the combined text length below which a candidate
// cannot be evaluated meaningfully.
const minContentLength = 24

// Evaluator decides whether a scraped candidate is a genuine recruiting
// signal. Evaluate is a pure function of its input; one Evaluator is safe
// for any number of concurrent callers.
type Evaluator struct {
	deny    *ahocorasick.Matcher
	sector  *ahocorasick.Matcher
	regions map[domain.Region]*ahocorasick.Matcher
	log     logger.Logger
}

// New builds an Evaluator with the fixed keyword tables compiled into
// Aho-Corasick matchers.
func New(log logger.Logger) *Evaluator {
	regions := make(map[domain.Region]*ahocorasick.Matcher, len(regionTerms))
	for region, terms := range regionTerms {
		regions[region] = ahocorasick.NewStringMatcher(padTerms(terms))
	}
	return &Evaluator{
		deny:    ahocorasick.NewStringMatcher(padTerms(denylistTerms)),
		sector:  ahocorasick.NewStringMatcher(padTerms(sectorTerms)),
		regions: regions,
		log:     log,
	}
}

// padTerms wraps each term in single spaces so matches against padded
// normalized text land on word boundaries only.
func padTerms(terms []string) []string {
	padded := make([]string, len(terms))
	for i, t := range terms {
		padded[i] = " " + t + " "
	}
	return padded
}

// Evaluate runs the full quality pipeline. Every rejection is returned as a
// result with Accepted=false and a reason code, never as an error.
func (e *Evaluator) Evaluate(input domain.SignalInput) domain.SignalResult {
	expected := NormalizeExpectedRegion(input.ExpectedRegion)

	combined := textutil.CollapseWhitespace(
		input.Title + " " + input.Description + " " + input.RawContent)
	if len(combined) < minContentLength {
		return e.reject(domain.ReasonInsufficientContent, expected, "", false, input)
	}

	// All keyword and pattern matching runs on the padded normalized form.
	normalized := textutil.NormalizeMatchText(combined)
	padded := " " + normalized + " "

	mustHave, tentative := detectMustHave(normalized)

	if len(e.deny.Match([]byte(padded))) > 0 {
		return e.reject(domain.ReasonRejectedTopicOrSector, expected, "", mustHave, input)
	}
	if !mustHave && len(e.sector.Match([]byte(padded))) == 0 {
		return e.reject(domain.ReasonRejectedTopicOrSector, expected, "", mustHave, input)
	}

	detected := e.detectRegion(padded)
	if detected != "" && detected != expected {
		return e.reject(domain.RegionMismatch(detected), expected, detected, mustHave, input)
	}

	company, ok := resolveCompany(input.Company, input.Title, input.Description)
	if !ok {
		return e.reject(domain.ReasonCompanyNotFound, expected, detected, mustHave, input)
	}

	category := tentative
	if category == "" {
		category = categorize(normalized)
	}

	amount, currency := extractAmount(combined)
	if category == domain.CategoryFunding && hasFundClose(normalized) && amount == nil {
		return e.reject(domain.ReasonFundCloseMissingAmount, expected, detected, mustHave, input)
	}

	people := extractKeyPeople(input.KeyPeople, input.Title+" "+input.Description)

	signature := dealSignature(normalized, category, amount, currency)
	dedupeKey := buildDedupeKey(company, input.Title+" "+input.Description, people, input.Source, signature)

	e.log.Debug("signal accepted",
		logger.String("company", company),
		logger.String("category", string(category)),
		logger.String("detected_region", string(detected)),
		logger.Bool("must_have", mustHave),
	)

	return domain.SignalResult{
		Accepted:       true,
		Company:        company,
		SignalType:     category,
		ExpectedRegion: expected,
		DetectedRegion: detected,
		Amount:         amount,
		Currency:       currency,
		KeyPeople:      people,
		DealSignature:  signature,
		DedupeKey:      dedupeKey,
		MustHave:       mustHave,
	}
}

func (e *Evaluator) reject(reason domain.RejectReason, expected, detected domain.Region, mustHave bool, input domain.SignalInput) domain.SignalResult {
	e.log.Debug("signal rejected",
		logger.String("reason", string(reason)),
		logger.String("source", input.Source),
		logger.String("title", input.Title),
	)
	return domain.Reject(reason, expected, detected, mustHave)
}

// NormalizeExpectedRegion maps a caller-supplied region variant onto the
// fixed enum, defaulting to europe for empty or unrecognized values.
func NormalizeExpectedRegion(raw string) domain.Region {
	if region, ok := regionAliases[textutil.NormalizeMatchText(raw)]; ok {
		return region
	}
	return domain.RegionEurope
}

// londonMultiplier compensates for UK-specific keyword overlap with the
// broader europe vocabulary.
const londonMultiplier = 1.25

// detectRegion scores each region by unique keyword presence and returns
// the dominant one. A tie between the top two scores, including all-zero,
// means the region is undetermined and "" is returned. The tie rule is
// load-bearing: downstream mismatch rejection depends on ties never being
// guessed.
func (e *Evaluator) detectRegion(padded string) domain.Region {
	text := []byte(padded)

	var best, second float64
	var winner domain.Region
	for _, region := range domain.Regions {
		score := float64(len(e.regions[region].Match(text)))
		if region == domain.RegionLondon {
			score *= londonMultiplier
		}
		if score > best {
			second = best
			best = score
			winner = region
		} else if score > second {
			second = score
		}
	}

	if best == second {
		return ""
	}
	return winner
}
