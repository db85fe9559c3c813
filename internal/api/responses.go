package api

import (
	"sort"
	"time"

	"github.com/talentradar/signal-engine/internal/domain"
	"github.com/talentradar/signal-engine/internal/processor"
)

// statsRowLimit caps the metric history consulted for the stats endpoint.
const statsRowLimit = 1500

// EvaluateRequest represents a single evaluation request.
type EvaluateRequest struct {
	Input domain.SignalInput `json:"input" binding:"required"`
}

// EvaluateResponse represents a single evaluation response.
type EvaluateResponse struct {
	Result domain.SignalResult `json:"result"`
}

// BatchEvaluateRequest represents a batch evaluation request.
type BatchEvaluateRequest struct {
	Inputs []domain.SignalInput `json:"inputs" binding:"required,min=1,max=500"`
}

// BatchEvaluateResponse represents a batch evaluation response.
type BatchEvaluateResponse struct {
	Outcomes []processor.EvalOutcome `json:"outcomes"`
	Total    int                     `json:"total"`
	Accepted int                     `json:"accepted"`
	Rejected int                     `json:"rejected"`
}

// IngestRequest represents a full ingestion run request.
type IngestRequest struct {
	Region  string             `json:"region"`
	Sources []processor.Source `json:"sources" binding:"required,min=1"`
}

// AppendMetricsRequest appends externally produced run metric rows.
type AppendMetricsRequest struct {
	Metrics []*domain.SourceRunMetric `json:"metrics" binding:"required,min=1"`
}

// SourcePriorityResponse is one source's computed priority.
type SourcePriorityResponse struct {
	URL      string  `json:"url"`
	Priority float64 `json:"priority"`
}

// PriorityListResponse lists ranked source priorities for a region.
type PriorityListResponse struct {
	Pipeline string                   `json:"pipeline"`
	Region   domain.Region            `json:"region"`
	Sources  []SourcePriorityResponse `json:"sources"`
	Total    int                      `json:"total"`
}

func toPriorityListResponse(pipeline string, region domain.Region, priorities map[string]float64) PriorityListResponse {
	sources := make([]SourcePriorityResponse, 0, len(priorities))
	for url, priority := range priorities {
		sources = append(sources, SourcePriorityResponse{URL: url, Priority: priority})
	}
	sort.Slice(sources, func(i, j int) bool {
		if sources[i].Priority != sources[j].Priority {
			return sources[i].Priority > sources[j].Priority
		}
		return sources[i].URL < sources[j].URL
	})

	return PriorityListResponse{
		Pipeline: pipeline,
		Region:   region,
		Sources:  sources,
		Total:    len(sources),
	}
}

// SourceStatsResponse aggregates one source's recent run history.
type SourceStatsResponse struct {
	SourceURL     string  `json:"source_url"`
	Runs          int     `json:"runs"`
	Candidates    int     `json:"candidates"`
	Inserted      int     `json:"inserted"`
	Rejected      int     `json:"rejected"`
	Duplicates    int     `json:"duplicates"`
	Errors        int     `json:"errors"`
	AvgGeoConfidence float64 `json:"avg_geo_confidence"`
}

// StatsResponse summarizes recent ingestion activity for a region.
type StatsResponse struct {
	Pipeline   string                `json:"pipeline"`
	Region     domain.Region         `json:"region"`
	Since      time.Time             `json:"since"`
	Runs       int                   `json:"runs"`
	Candidates int                   `json:"candidates"`
	Inserted   int                   `json:"inserted"`
	Rejected   int                   `json:"rejected"`
	Duplicates int                   `json:"duplicates"`
	Errors     int                   `json:"errors"`
	Sources    []SourceStatsResponse `json:"sources"`
}

func toStatsResponse(pipeline string, region domain.Region, since time.Time, rows []domain.SourceRunMetric) StatsResponse {
	resp := StatsResponse{
		Pipeline: pipeline,
		Region:   region,
		Since:    since,
		Runs:     len(rows),
	}

	perSource := make(map[string]*SourceStatsResponse)
	for i := range rows {
		row := &rows[i]
		resp.Candidates += row.Candidates
		resp.Inserted += row.Inserted
		resp.Rejected += row.Rejected
		resp.Duplicates += row.Duplicates
		resp.Errors += row.Errors

		agg, ok := perSource[row.SourceURL]
		if !ok {
			agg = &SourceStatsResponse{SourceURL: row.SourceURL}
			perSource[row.SourceURL] = agg
		}
		// Running average over the source's rows, weighted equally per run.
		agg.AvgGeoConfidence =(agg.AvgGeoConfidence*float64(agg.Runs) + row.AvgGeoConfidence) / float64(agg.Runs+1)
		agg.Runs++
		agg.Candidates += row.Candidates
		agg.Inserted += row.Inserted
		agg.Rejected += row.Rejected
		agg.Duplicates += row.Duplicates
		agg.Errors += row.Errors
	}

	resp.Sources = make([]SourceStatsResponse, 0, len(perSource))
	for _, agg := range perSource {
		resp.Sources = append(resp.Sources, *agg)
	}
	sort.Slice(resp.Sources, func(i, j int) bool {
		if resp.Sources[i].Inserted != resp.Sources[j].Inserted {
			return resp.Sources[i].Inserted > resp.Sources[j].Inserted
		}
		return resp.Sources[i].SourceURL < resp.Sources[j].SourceURL
	})

	return resp
}
