// Package mappings defines Elasticsearch index mappings for the engine's
// indices.
package mappings

import (
	"encoding/json"
	"fmt"
)

// Default index settings.
const (
	defaultShards   = 1
	defaultReplicas = 1
)

// Field describes one field mapping.
type Field struct {
	Type     string `json:"type"`
	Analyzer string `json:"analyzer,omitempty"`
	Index    *bool  `json:"index,omitempty"`
	Format   string `json:"format,omitempty"`
}

// BaseSettings holds index-level settings shared by all indices.
type BaseSettings struct {
	NumberOfShards   int `json:"number_of_shards"`
	NumberOfReplicas int `json:"number_of_replicas"`
}

// DefaultSettings returns the standard single-node settings.
func DefaultSettings() BaseSettings {
	return BaseSettings{
		NumberOfShards:   defaultShards,
		NumberOfReplicas: defaultReplicas,
	}
}

// SignalMapping is the Elasticsearch mapping for a pipeline's signal index.
type SignalMapping struct {
	Settings BaseSettings   `json:"settings"`
	Mappings SignalMappings `json:"mappings"`
}

// SignalMappings defines the field mappings for signal documents.
type SignalMappings struct {
	Properties SignalProperties `json:"properties"`
}

// SignalProperties defines the properties for each signal field. Keys line
// up with the JSON tags on the signal document.
type SignalProperties struct {
	Pipeline       Field `json:"pipeline"`
	Company        Field `json:"company"`
	SignalType     Field `json:"signal_type"`
	ExpectedRegion Field `json:"expected_region"`
	DetectedRegion Field `json:"detected_region"`
	Amount         Field `json:"amount"`
	Currency       Field `json:"currency"`
	KeyPeople      Field `json:"key_people"`
	DealSignature  Field `json:"deal_signature"`
	DedupeKey      Field `json:"dedupe_key"`
	MustHave       Field `json:"must_have"`
	Source         Field `json:"source"`
	URL            Field `json:"url"`
	Title          Field `json:"title"`
	CreatedAt      Field `json:"created_at"`
}

// NewSignalMapping creates the signal index mapping with default settings.
func NewSignalMapping() *SignalMapping {
	return &SignalMapping{
		Settings: DefaultSettings(),
		Mappings: SignalMappings{
			Properties: SignalProperties{
				Pipeline:       Field{Type: "keyword"},
				Company:        Field{Type: "text", Analyzer: "standard"},
				SignalType:     Field{Type: "keyword"},
				ExpectedRegion: Field{Type: "keyword"},
				DetectedRegion: Field{Type: "keyword"},
				Amount:         Field{Type: "double"},
				Currency:       Field{Type: "keyword"},
				KeyPeople:      Field{Type: "keyword"},
				DealSignature:  Field{Type: "keyword"},
				DedupeKey:      Field{Type: "keyword"},
				MustHave:       Field{Type: "boolean"},
				Source:         Field{Type: "keyword"},
				URL:            Field{Type: "keyword"},
				Title:          Field{Type: "text", Analyzer: "standard"},
				CreatedAt:      Field{Type: "date"},
			},
		},
	}
}

// JSON renders the mapping as the index creation request body.
func (m *SignalMapping) JSON() ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal signal mapping: %w", err)
	}
	return data, nil
}
