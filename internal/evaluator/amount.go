package evaluator

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/talentradar/signal-engine/internal/domain"
)

const billionToMillion = 1000

// amountRE matches "<number><unit>" with an optional currency token or
// symbol before, or currency word after. Runs on the raw collapsed text so
// symbols and decimal separators survive.
var amountRE = regexp.MustCompile(
	`(?i)(?:\b(usd|eur|gbp)\s*|([$€£])\s*)?(\d{1,4}(?:[.,]\d{1,3})?)\s*(billion|bn|b|million|mn|m)\b(?:\s*(usd|eur|gbp|dollars|euros|pounds|sterling))?`)

var currencyTokens = map[string]domain.Currency{
	"usd": domain.CurrencyUSD, "$": domain.CurrencyUSD, "dollars": domain.CurrencyUSD,
	"eur": domain.CurrencyEUR, "€": domain.CurrencyEUR, "euros": domain.CurrencyEUR,
	"gbp": domain.CurrencyGBP, "£": domain.CurrencyGBP, "pounds": domain.CurrencyGBP,
	"sterling": domain.CurrencyGBP,
}

// extractAmount scans text for monetary amounts and returns the largest,
// normalized to millions. The currency travels with the winning match; an
// amount with no recognizable currency keeps a nil currency.
func extractAmount(text string) (*float64, domain.Currency) {
	matches := amountRE.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil, ""
	}

	var (
		best     float64
		currency domain.Currency
		found    bool
	)
	for _, m := range matches {
		value, ok := parseAmountNumber(m[3])
		if !ok {
			continue
		}
		switch strings.ToLower(m[4]) {
		case "billion", "bn", "b":
			value *= billionToMillion
		}
		if !found || value > best {
			best = value
			currency = matchCurrency(m)
			found = true
		}
	}
	if !found {
		return nil, ""
	}
	return &best, currency
}

// parseAmountNumber handles both decimal separators and European
// thousands grouping: a three-digit group after the separator is read as
// thousands ("1,500" -> 1500), anything shorter as a decimal ("8.2" -> 8.2).
func parseAmountNumber(raw string) (float64, bool) {
	sep := strings.IndexAny(raw, ".,")
	if sep < 0 {
		v, err := strconv.ParseFloat(raw, 64)
		return v, err == nil
	}

	whole, frac := raw[:sep], raw[sep+1:]
	if len(frac) == 3 {
		v, err := strconv.ParseFloat(whole+frac, 64)
		return v, err == nil
	}
	v, err := strconv.ParseFloat(whole+"."+frac, 64)
	return v, err == nil
}

// matchCurrency resolves currency from a match: leading token, then
// symbol, then trailing word.
func matchCurrency(m []string) domain.Currency {
	for _, raw := range []string{m[1], m[2], m[5]} {
		if raw == "" {
			continue
		}
		if cur, ok := currencyTokens[strings.ToLower(raw)]; ok {
			return cur
		}
	}
	return ""
}
