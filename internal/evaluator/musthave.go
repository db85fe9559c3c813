package evaluator

import (
	"regexp"
	"strings"

	"github.com/talentradar/signal-engine/internal/domain"
)

// Must-have patterns are unambiguous enough to guarantee
// acceptance-eligibility without the generic sector gate. All of them run
// against normalized text (lowercase, punctuation stripped).

// fundClosePhrases are literal fund-close markers.
var fundClosePhrases = []string{
	"fund close", "fund closing", "final close", "first close", "hard cap",
}

// fundCloseVerbRE catches "closes/raises ... fund" phrasing where the verb
// precedes the fund mention within a short window.
var fundCloseVerbRE = regexp.MustCompile(
	`\b(?:closes|closed|raises|raised|raising)\b[a-z0-9 ]{0,60}\bfund\b`)

// appointmentNearChiefRE pairs an appointment verb with a chief-executive
// title within roughly 80 characters, in either order.
var (
	appointBeforeChiefRE = regexp.MustCompile(
		`\b(?:appoints|appointed|names|named|hires|hired|promotes|promoted)\b[a-z0-9 ]{0,80}\b(?:ceo|chief executive officer|chief executive)\b`)
	chiefBeforeAppointRE = regexp.MustCompile(
		`\b(?:ceo|chief executive officer|chief executive)\b[a-z0-9 ]{0,80}\b(?:appointed|named|hired|joins|joined)\b`)
)

// peVcContextTerms establish the private-equity/venture context required
// for the executive-appointment must-have.
var peVcContextTerms = []string{
	"private equity", "venture capital", "pe firm", "vc firm",
	"buyout", "family office", "capital partners", "asset management",
	"investment firm", "fund",
}

// mergerVerbRE matches merger/combination language; the merger must-have
// additionally requires a family-office or PE-firm subject.
var mergerVerbRE = regexp.MustCompile(
	`\b(?:merges|merged|merger|combines|combined|combination|acquires|acquired|acquisition)\b`)

var mergerSubjectTerms = []string{
	"family office", "private equity firm", "pe firm",
}

// detectMustHave scans for the three high-confidence patterns and returns
// the flag plus the tentative category they imply. Fund closes outrank
// executive appointments which outrank mergers when several match.
func detectMustHave(normalized string) (bool, domain.Category) {
	if hasFundClose(normalized) {
		return true, domain.CategoryFunding
	}
	if hasExecAppointment(normalized) {
		return true, domain.CategoryCSuite
	}
	if hasMergerSignal(normalized) {
		return true, domain.CategoryExpansion
	}
	return false, ""
}

func hasFundClose(normalized string) bool {
	for _, phrase := range fundClosePhrases {
		if containsWord(normalized, phrase) {
			return true
		}
	}
	return fundCloseVerbRE.MatchString(normalized)
}

func hasExecAppointment(normalized string) bool {
	if !appointBeforeChiefRE.MatchString(normalized) && !chiefBeforeAppointRE.MatchString(normalized) {
		return false
	}
	for _, term := range peVcContextTerms {
		if containsWord(normalized, term) {
			return true
		}
	}
	return false
}

func hasMergerSignal(normalized string) bool {
	if !mergerVerbRE.MatchString(normalized) {
		return false
	}
	for _, term := range mergerSubjectTerms {
		if containsWord(normalized, term) {
			return true
		}
	}
	return false
}

// containsWord reports whole-word presence of term in normalized text.
func containsWord(normalized, term string) bool {
	return strings.Contains(" "+normalized+" ", " "+term+" ")
}
