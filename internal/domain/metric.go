package domain

import "time"

// SourceRunMetric records the outcome of one scrape run against one source.
// Rows are append-only: created empty at run start, incremented in memory as
// the run processes candidates, persisted once at run end and never mutated
// afterwards. The ranker aggregates rows per normalized URL at query time.
type SourceRunMetric struct {
	ID         int64  `db:"id"          json:"id,omitempty"`
	Pipeline   string `db:"pipeline"    json:"pipeline"`
	Region     Region `db:"region"      json:"region"`
	SourceName string `db:"source_name" json:"source_name"`
	// SourceURL is the normalized URL (host+path, lowercased, trailing
	// slash stripped, query/fragment dropped). It is the identity key
	// for aggregation and ranking lookups.
	SourceURL string `db:"source_url" json:"source_url"`

	Candidates    int `db:"candidates"     json:"candidates"`
	GeoValidated  int `db:"geo_validated"  json:"geo_validated"`
	QualityPassed int `db:"quality_passed" json:"quality_passed"`
	Inserted      int `db:"inserted"       json:"inserted"`
	Rejected      int `db:"rejected"       json:"rejected"`
	Duplicates    int `db:"duplicates"     json:"duplicates"`
	Errors        int `db:"errors"         json:"errors"`
	Pending       int `db:"pending"        json:"pending"`
	Validated     int `db:"validated"      json:"validated"`

	// AvgGeoConfidence is a 0-100 running average across the run's
	// candidates of how confidently the text confirmed the region.
	AvgGeoConfidence float64 `db:"avg_geo_confidence" json:"avg_geo_confidence"`

	CreatedAt time.Time `db:"created_at" json:"created_at,omitempty"`
}

// ObserveGeoConfidence folds one candidate's geo confidence into the
// running average, clamped to [0, 100].
func (m *SourceRunMetric) ObserveGeoConfidence(confidence float64, observed int) {
	if observed <= 0 {
		m.AvgGeoConfidence = clampConfidence(confidence)
		return
	}
	avg := (m.AvgGeoConfidence*float64(observed) + confidence) / float64(observed+1)
	m.AvgGeoConfidence = clampConfidence(avg)
}

func clampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// Signal is an accepted recruiting signal as persisted to the signal store.
type Signal struct {
	ID             string    `json:"id,omitempty"`
	Pipeline       string    `json:"pipeline"`
	Company        string    `json:"company"`
	SignalType     Category  `json:"signal_type"`
	ExpectedRegion Region    `json:"expected_region"`
	DetectedRegion Region    `json:"detected_region,omitempty"`
	Amount         *float64  `json:"amount,omitempty"`
	Currency       Currency  `json:"currency,omitempty"`
	KeyPeople      []string  `json:"key_people,omitempty"`
	DealSignature  string    `json:"deal_signature"`
	DedupeKey      string    `json:"dedupe_key"`
	MustHave       bool      `json:"must_have"`
	Source         string    `json:"source,omitempty"`
	URL            string    `json:"url,omitempty"`
	Title          string    `json:"title,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// RankedSource is one scrape source plus its computed priority.
type RankedSource struct {
	Name     string  `json:"name"`
	URL      string  `json:"url"`
	Priority float64 `json:"priority"`
}
