// Package domain holds the core types shared across the signal engine.
package domain

// Region identifies one of the fixed recruiting regions.
// The string values are part of the external contract: downstream
// consumers switch on them and must see these exact literals.
type Region string

// Region constants.
const (
	RegionLondon Region = "london"
	RegionEurope Region = "europe"
	RegionUAE    Region = "uae"
	RegionUSA    Region = "usa"
)

// Regions lists every valid region in a fixed order.
var Regions = []Region{RegionLondon, RegionEurope, RegionUAE, RegionUSA}

// Valid reports whether r is one of the fixed regions.
func (r Region) Valid() bool {
	switch r {
	case RegionLondon, RegionEurope, RegionUAE, RegionUSA:
		return true
	}
	return false
}

// Category identifies the kind of recruiting signal.
type Category string

// Category constants.
const (
	CategoryFunding    Category = "funding"
	CategoryHiring     Category = "hiring"
	CategoryExpansion  Category = "expansion"
	CategoryCSuite     Category = "c_suite"
	CategoryTeamGrowth Category = "team_growth"
)

// Valid reports whether c is one of the fixed categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryFunding, CategoryHiring, CategoryExpansion, CategoryCSuite, CategoryTeamGrowth:
		return true
	}
	return false
}

// Currency identifies the currency of an extracted amount.
type Currency string

// Currency constants.
const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
)

// RejectReason is a typed rejection code. Rejections are first-class
// outcomes, never errors: ingestion logs the reason and moves on.
type RejectReason string

// Rejection reason constants.
const (
	ReasonInsufficientContent    RejectReason = "insufficient_content"
	ReasonRejectedTopicOrSector  RejectReason = "rejected_topic_or_sector"
	ReasonCompanyNotFound        RejectReason = "company_not_found"
	ReasonFundCloseMissingAmount RejectReason = "fund_close_missing_amount"

	// regionMismatchPrefix prefixes the detected region in mismatch reasons.
	regionMismatchPrefix = "region_mismatch:"
)

// RegionMismatch builds the rejection reason for a detected region that
// contradicts the expected one, e.g. "region_mismatch:europe".
func RegionMismatch(detected Region) RejectReason {
	return RejectReason(regionMismatchPrefix + string(detected))
}

// IsRegionMismatch reports whether the reason is a region mismatch.
func (r RejectReason) IsRegionMismatch() bool {
	return len(r) > len(regionMismatchPrefix) && r[:len(regionMismatchPrefix)] == regionMismatchPrefix
}

// SignalInput is a raw scraped candidate supplied by ingestion collaborators.
// All fields are optional; the evaluator works with whatever is present.
type SignalInput struct {
	Title          string   `json:"title,omitempty"`
	Description    string   `json:"description,omitempty"`
	RawContent     string   `json:"raw_content,omitempty"`
	Company        string   `json:"company,omitempty"`
	Source         string   `json:"source,omitempty"`
	URL            string   `json:"url,omitempty"`
	ExpectedRegion string   `json:"expected_region,omitempty"`
	SignalType     string   `json:"signal_type,omitempty"`
	KeyPeople      []string `json:"key_people,omitempty"`
}

// SignalResult is the outcome of evaluating one candidate.
//
// When Accepted is false only ExpectedRegion, DetectedRegion, MustHave and
// Reason are populated; callers must not read the other fields.
type SignalResult struct {
	Accepted bool         `json:"accepted"`
	Reason   RejectReason `json:"reason,omitempty"`

	Company    string   `json:"company,omitempty"`
	SignalType Category `json:"signal_type,omitempty"`

	ExpectedRegion Region `json:"expected_region"`
	// DetectedRegion is empty when the region keyword scores tie
	// (including all-zero) and no region could be determined.
	DetectedRegion Region `json:"detected_region,omitempty"`

	// Amount is in millions of currency units; nil when no amount was found.
	Amount   *float64 `json:"amount,omitempty"`
	Currency Currency `json:"currency,omitempty"`

	KeyPeople []string `json:"key_people,omitempty"`

	// DealSignature fingerprints the underlying business event
	// (action|fund|amount) independent of article wording.
	DealSignature string `json:"deal_signature,omitempty"`
	// DedupeKey collapses near-duplicate articles about the same deal
	// from differently worded headlines onto one key.
	DedupeKey string `json:"dedupe_key,omitempty"`

	// MustHave marks high-confidence categories that bypassed the
	// generic sector-keyword gate.
	MustHave bool `json:"must_have"`
}

// Reject builds a rejection result. Extracted fields stay at their zero
// values; only the region context and must-have flag carry over.
func Reject(reason RejectReason, expected, detected Region, mustHave bool) SignalResult {
	return SignalResult{
		Accepted:       false,
		Reason:         reason,
		ExpectedRegion: expected,
		DetectedRegion: detected,
		MustHave:       mustHave,
	}
}
