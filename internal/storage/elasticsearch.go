// Package storage persists accepted signals to Elasticsearch.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	es "github.com/elastic/go-elasticsearch/v8"

	"github.com/talentradar/signal-engine/internal/domain"
	"github.com/talentradar/signal-engine/internal/elasticsearch/mappings"
)

const (
	signalIndexSuffix = "_signals"

	// DefaultRecencyWindow is how far back the dedupe-key check looks
	// when suppressing near-duplicate signals before insert.
	DefaultRecencyWindow = 14 * 24 * time.Hour

	// maxRecentKeys bounds the dedupe-key scan.
	maxRecentKeys = 5000
)

// SignalStorage implements signal persistence on Elasticsearch. Each
// pipeline writes to its own <pipeline>_signals index; the dedupe key is
// the document ID so exact duplicates overwrite instead of accumulating.
type SignalStorage struct {
	client *es.Client
}

// NewSignalStorage creates a new Elasticsearch-backed signal store.
func NewSignalStorage(client *es.Client) *SignalStorage {
	return &SignalStorage{client: client}
}

// signalIndex returns the index name for a pipeline.
func signalIndex(pipeline string) string {
	return pipeline + signalIndexSuffix
}

// IndexSignal persists one accepted signal.
func (s *SignalStorage) IndexSignal(ctx context.Context, signal *domain.Signal) error {
	if signal.CreatedAt.IsZero() {
		signal.CreatedAt = time.Now().UTC()
	}

	docBytes, err := json.Marshal(signal)
	if err != nil {
		return fmt.Errorf("failed to marshal signal: %w", err)
	}

	res, err := s.client.Index(
		signalIndex(signal.Pipeline),
		bytes.NewReader(docBytes),
		s.client.Index.WithContext(ctx),
		s.client.Index.WithDocumentID(signal.DedupeKey),
	)
	if err != nil {
		return fmt.Errorf("failed to index signal: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error indexing signal: %s", res.String())
	}
	return nil
}

// BulkIndexSignals persists a batch of accepted signals in one request.
func (s *SignalStorage) BulkIndexSignals(ctx context.Context, signals []*domain.Signal) error {
	if len(signals) == 0 {
		return nil
	}

	var buf bytes.Buffer
	for _, signal := range signals {
		if signal.CreatedAt.IsZero() {
			signal.CreatedAt = time.Now().UTC()
		}

		meta := map[string]interface{}{
			"index": map[string]interface{}{
				"_index": signalIndex(signal.Pipeline),
				"_id":    signal.DedupeKey,
			},
		}
		if err := json.NewEncoder(&buf).Encode(meta); err != nil {
			return fmt.Errorf("failed to encode meta: %w", err)
		}
		if err := json.NewEncoder(&buf).Encode(signal); err != nil {
			return fmt.Errorf("failed to encode signal: %w", err)
		}
	}

	res, err := s.client.Bulk(
		bytes.NewReader(buf.Bytes()),
		s.client.Bulk.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("bulk request failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("bulk indexing error: %s", res.String())
	}
	return nil
}

// RecentDedupeKeys returns the dedupe keys of signals indexed for the
// pipeline within the recency window. Ingestion checks candidates against
// this set before inserting.
func (s *SignalStorage) RecentDedupeKeys(ctx context.Context, pipeline string, window time.Duration) (map[string]struct{}, error) {
	if window <= 0 {
		window = DefaultRecencyWindow
	}
	since := time.Now().UTC().Add(-window)

	query := map[string]interface{}{
		"query": map[string]interface{}{
			"range": map[string]interface{}{
				"created_at": map[string]interface{}{
					"gte": since.Format(time.RFC3339),
				},
			},
		},
		"size":    maxRecentKeys,
		"_source": []string{"dedupe_key"},
	}

	queryBytes, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query: %w", err)
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(signalIndex(pipeline)),
		s.client.Search.WithBody(bytes.NewReader(queryBytes)),
		s.client.Search.WithIgnoreUnavailable(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("error searching: %s", res.String())
	}

	var searchResult struct {
		Hits struct {
			Hits []struct {
				Source struct {
					DedupeKey string `json:"dedupe_key"`
				} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&searchResult); err != nil {
		return nil, fmt.Errorf("error decoding response: %w", err)
	}

	keys := make(map[string]struct{}, len(searchResult.Hits.Hits))
	for _, hit := range searchResult.Hits.Hits {
		if hit.Source.DedupeKey != "" {
			keys[hit.Source.DedupeKey] = struct{}{}
		}
	}
	return keys, nil
}

// EnsureSignalIndex creates the pipeline's signal index with its mapping
// if it does not exist yet.
func (s *SignalStorage) EnsureSignalIndex(ctx context.Context, pipeline string) error {
	index := signalIndex(pipeline)

	res, err := s.client.Indices.Exists(
		[]string{index},
		s.client.Indices.Exists.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to check index %s: %w", index, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusOK {
		return nil
	}

	body, err := mappings.NewSignalMapping().JSON()
	if err != nil {
		return err
	}

	createRes, err := s.client.Indices.Create(
		index,
		s.client.Indices.Create.WithContext(ctx),
		s.client.Indices.Create.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return fmt.Errorf("failed to create index %s: %w", index, err)
	}
	defer createRes.Body.Close()

	if createRes.IsError() {
		return fmt.Errorf("error creating index %s: %s", index, createRes.String())
	}
	return nil
}

// TestConnection tests the connection to Elasticsearch.
func (s *SignalStorage) TestConnection(ctx context.Context) error {
	res, err := s.client.Info(s.client.Info.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to connect to Elasticsearch: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error response from Elasticsearch: %s", res.String())
	}
	return nil
}
