package services

import (
	"forge/latency"
	"forge/models"
)

// LatencyResult is a calculation plus, when requested, its suggestions
type LatencyResult struct {
	models.LatencyBreakdown
	Optimizations []models.OptimizationSuggestion `json:"optimizations,omitempty"`
}

// LatencyService exposes the latency model to the HTTP layer and records
// every calculation it serves.
type LatencyService struct {
	history *HistoryService
}

func NewLatencyService(history *HistoryService) *LatencyService {
	return &LatencyService{history: history}
}

// Calculate runs the model on in. country is the caller's ISO country, if
// known, and is only used for analytics.
func (s *LatencyService) Calculate(in models.LatencyInput, withOptimizations bool, country string) LatencyResult {
	cfg := latency.Normalize(in)
	b := latency.CalculateConfig(cfg)
	s.record(cfg, b, country)

	result := LatencyResult{LatencyBreakdown: b}
	if withOptimizations {
		result.Optimizations = latency.Optimizations(b, cfg)
	}
	return result
}

func (s *LatencyService) Optimizations(in models.LatencyInput) []models.OptimizationSuggestion {
	cfg := latency.Normalize(in)
	return latency.Optimizations(latency.CalculateConfig(cfg), cfg)
}

func (s *LatencyService) Compare(before, after models.LatencyInput) models.OptimizationComparison {
	return latency.CompareConfigs(before, after)
}

func (s *LatencyService) Chart(in models.LatencyInput) []models.ChartSlice {
	return latency.ChartData(latency.Calculate(in))
}

func (s *LatencyService) record(cfg models.LatencyConfig, b models.LatencyBreakdown, country string) {
	recordCalculation(b)
	if s.history != nil {
		s.history.RecordCalculation(cfg, b, country)
	}
}
