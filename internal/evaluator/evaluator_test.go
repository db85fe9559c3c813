package evaluator

import (
	"reflect"
	"testing"

	"github.com/talentradar/signal-engine/internal/domain"
	"github.com/talentradar/signal-engine/internal/logger"
)

func newTestEvaluator() *Evaluator {
	return New(logger.NewNop())
}

func TestEvaluate_FundCloseAccepted(t *testing.T) {
	e := newTestEvaluator()

	result := e.Evaluate(domain.SignalInput{
		Title:          "Blackstone closes Fund IX at $8.2 billion hard cap",
		ExpectedRegion: "usa",
		Source:         "reuters.com",
	})

	if !result.Accepted {
		t.Fatalf("expected accepted, got rejection %q", result.Reason)
	}
	if result.Company != "Blackstone" {
		t.Errorf("company = %q, want Blackstone", result.Company)
	}
	if result.SignalType != domain.CategoryFunding {
		t.Errorf("signal type = %q, want funding", result.SignalType)
	}
	if result.Amount == nil || *result.Amount != 8200 {
		t.Errorf("amount = %v, want 8200", result.Amount)
	}
	if result.Currency != domain.CurrencyUSD {
		t.Errorf("currency = %q, want USD", result.Currency)
	}
	if !result.MustHave {
		t.Error("expected must-have flag")
	}
	if result.DedupeKey == "" {
		t.Error("expected non-empty dedupe key")
	}
}

func TestEvaluate_OffTopicRejected(t *testing.T) {
	e := newTestEvaluator()

	result := e.Evaluate(domain.SignalInput{
		Title:          "Local weather disrupts London transit",
		ExpectedRegion: "london",
	})

	if result.Accepted {
		t.Fatal("expected rejection")
	}
	if result.Reason != domain.ReasonRejectedTopicOrSector {
		t.Errorf("reason = %q, want rejected_topic_or_sector", result.Reason)
	}
	if result.Company != "" || result.DedupeKey != "" {
		t.Error("rejection must leave extracted fields empty")
	}
}

func TestEvaluate_RegionMismatchRejected(t *testing.T) {
	e := newTestEvaluator()

	result := e.Evaluate(domain.SignalInput{
		Title:          "Frankfurt-based fund announces final close",
		Description:    "€450m raised",
		ExpectedRegion: "usa",
	})

	if result.Accepted {
		t.Fatal("expected rejection")
	}
	if result.Reason != domain.RegionMismatch(domain.RegionEurope) {
		t.Errorf("reason = %q, want region_mismatch:europe", result.Reason)
	}
	if !result.Reason.IsRegionMismatch() {
		t.Error("reason should classify as region mismatch")
	}
	if result.DetectedRegion != domain.RegionEurope {
		t.Errorf("detected region = %q, want europe", result.DetectedRegion)
	}
}

func TestEvaluate_ExecutiveAppointmentAccepted(t *testing.T) {
	e := newTestEvaluator()

	result := e.Evaluate(domain.SignalInput{
		Title:          "XYZ Capital Partners appoints Jane Doe as CEO",
		Description:    "private equity firm XYZ Capital Partners today named Jane Doe Chief Executive Officer",
		ExpectedRegion: "europe",
	})

	if !result.Accepted {
		t.Fatalf("expected accepted, got rejection %q", result.Reason)
	}
	if result.SignalType != domain.CategoryCSuite {
		t.Errorf("signal type = %q, want c_suite", result.SignalType)
	}
	if !result.MustHave {
		t.Error("expected must-have flag")
	}
	found := false
	for _, p := range result.KeyPeople {
		if p == "Jane Doe" {
			found = true
		}
	}
	if !found {
		t.Errorf("key people %v missing Jane Doe", result.KeyPeople)
	}
}

func TestEvaluate_InsufficientContent(t *testing.T) {
	e := newTestEvaluator()

	result := e.Evaluate(domain.SignalInput{Title: "PE fund news"})

	if result.Accepted || result.Reason != domain.ReasonInsufficientContent {
		t.Errorf("got (%v, %q), want insufficient_content rejection", result.Accepted, result.Reason)
	}
}

func TestEvaluate_FundCloseMissingAmount(t *testing.T) {
	e := newTestEvaluator()

	result := e.Evaluate(domain.SignalInput{
		Title:          "Meridian Partners announces final close of flagship vehicle",
		Company:        "Meridian Partners",
		ExpectedRegion: "europe",
	})

	if result.Accepted {
		t.Fatal("expected rejection")
	}
	if result.Reason != domain.ReasonFundCloseMissingAmount {
		t.Errorf("reason = %q, want fund_close_missing_amount", result.Reason)
	}
}

func TestEvaluate_SectorGateRejectsNonMustHave(t *testing.T) {
	e := newTestEvaluator()

	result := e.Evaluate(domain.SignalInput{
		Title:          "Company reports quarterly software revenue beat expectations",
		ExpectedRegion: "usa",
	})

	if result.Accepted || result.Reason != domain.ReasonRejectedTopicOrSector {
		t.Errorf("got (%v, %q), want rejected_topic_or_sector", result.Accepted, result.Reason)
	}
}

func TestEvaluate_CompanyNotFound(t *testing.T) {
	e := newTestEvaluator()

	result := e.Evaluate(domain.SignalInput{
		Title:          "a buyout deal was completed for an undisclosed software maker",
		ExpectedRegion: "usa",
	})

	if result.Accepted {
		t.Fatal("expected rejection")
	}
	if result.Reason != domain.ReasonCompanyNotFound {
		t.Errorf("reason = %q, want company_not_found", result.Reason)
	}
}

func TestEvaluate_Idempotent(t *testing.T) {
	e := newTestEvaluator()
	input := domain.SignalInput{
		Title:          "Atlas Capital Partners raises debut credit fund at EUR 750 million",
		Company:        "Atlas Capital Partners",
		Source:         "pe-news.example.com/feed",
		ExpectedRegion: "europe",
		KeyPeople:      []string{"John Smith"},
	}

	first := e.Evaluate(input)
	second := e.Evaluate(input)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("evaluation not idempotent:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestEvaluate_AmountMonotonicity(t *testing.T) {
	e := newTestEvaluator()

	result := e.Evaluate(domain.SignalInput{
		Title:          "Granite Holdings raises buyout fund with $50 million first close targeting $2 billion",
		Company:        "Granite Holdings",
		ExpectedRegion: "usa",
	})

	if !result.Accepted {
		t.Fatalf("expected accepted, got rejection %q", result.Reason)
	}
	if result.Amount == nil || *result.Amount != 2000 {
		t.Errorf("amount = %v, want 2000 (largest wins, billions in millions)", result.Amount)
	}
	if result.Currency != domain.CurrencyUSD {
		t.Errorf("currency = %q, want USD", result.Currency)
	}
}

func TestEvaluate_DedupeKeyStableUnderParaphrase(t *testing.T) {
	e := newTestEvaluator()

	a := e.Evaluate(domain.SignalInput{
		Title:          "Meridian Capital closes Fund III at $1.5 billion",
		Company:        "Meridian Capital",
		Source:         "newswire.example.com",
		ExpectedRegion: "usa",
	})
	b := e.Evaluate(domain.SignalInput{
		Title:          "Meridian Capital closes Fund III at $1.5 billion hard cap",
		Description:    "details to follow",
		Company:        "Meridian Capital",
		Source:         "newswire.example.com",
		ExpectedRegion: "usa",
	})

	if !a.Accepted || !b.Accepted {
		t.Fatalf("expected both accepted, got %q / %q", a.Reason, b.Reason)
	}
	if a.DealSignature != b.DealSignature {
		t.Errorf("deal signatures differ: %q vs %q", a.DealSignature, b.DealSignature)
	}
}

func TestNormalizeExpectedRegion(t *testing.T) {
	tests := []struct {
		raw  string
		want domain.Region
	}{
		{"uk", domain.RegionLondon},
		{"GB", domain.RegionLondon},
		{"United Kingdom", domain.RegionLondon},
		{"eu", domain.RegionEurope},
		{"dubai", domain.RegionUAE},
		{"Middle East", domain.RegionUAE},
		{"us", domain.RegionUSA},
		{"north america", domain.RegionUSA},
		{"", domain.RegionEurope},
		{"mars", domain.RegionEurope},
	}

	for _, tt := range tests {
		if got := NormalizeExpectedRegion(tt.raw); got != tt.want {
			t.Errorf("NormalizeExpectedRegion(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestDetectRegion_TieReturnsEmpty(t *testing.T) {
	e := newTestEvaluator()

	// one europe keyword vs one usa keyword, no london boost involved
	if got := e.detectRegion(" frankfurt and boston "); got != "" {
		t.Errorf("detectRegion tie = %q, want empty", got)
	}
	// no keywords at all
	if got := e.detectRegion(" nothing locational here "); got != "" {
		t.Errorf("detectRegion zero = %q, want empty", got)
	}
}

func TestDetectRegion_LondonBoostBreaksOverlap(t *testing.T) {
	e := newTestEvaluator()

	// equal raw hit counts: the 1.25 multiplier must tip it to london
	got := e.detectRegion(" london office and paris office ")
	if got != domain.RegionLondon {
		t.Errorf("detectRegion = %q, want london", got)
	}
}
