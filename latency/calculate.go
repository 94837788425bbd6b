package latency

import (
	"forge/models"
	"forge/utils"
)

// Calculate normalizes in and computes its latency breakdown.
func Calculate(in models.LatencyInput) models.LatencyBreakdown {
	return CalculateConfig(Normalize(in))
}

// CalculateConfig computes the latency breakdown of a normalized configuration.
// Each stage is the sum of its rounded components and the total is the sum
// of the rounded stages, so the output adds up exactly as displayed.
func CalculateConfig(cfg models.LatencyConfig) models.LatencyBreakdown {
	pc := CalculatePCLatency(cfg)
	display := CalculateDisplayLatency(cfg.RefreshRateHz, cfg.MonitorPanelType, cfg.IsGamingMonitor)

	components := models.LatencyComponents{
		InputSampling:     round2(pc.InputSampling),
		CPUSimulation:     round2(pc.CPUSimulation),
		RenderQueue:       round2(pc.RenderQueue),
		GPURender:         round2(pc.GPURender),
		DisplayProcessing: round2(display.DisplayProcessing),
		ScanoutAverage:    round2(display.ScanoutAverage),
		PixelResponse:     round2(display.PixelResponse),
	}

	stages := models.StageLatency{
		Mouse: round2(MouseLatency(cfg.MousePollingRateHz)),
		PC: round2(components.InputSampling + components.CPUSimulation +
			components.RenderQueue + components.GPURender),
		Display: round2(components.DisplayProcessing + components.ScanoutAverage +
			components.PixelResponse),
		Network: round2(NetworkLatency(cfg.NetworkPingMs)),
	}

	total := round2(stages.Mouse + stages.PC + stages.Display + stages.Network)
	rating := RateTotal(total)

	return models.LatencyBreakdown{
		Total:          total,
		Breakdown:      stages,
		Components:     components,
		Rating:         rating,
		Recommendation: Recommendation(rating),
		Uncertainty:    Uncertainty(cfg),
		ReflexEnabled:  cfg.ReflexEnabled,
		Technology:     DetectTechnology(cfg.GPU),
	}
}

// RateTotal buckets a total latency. Each bound is inclusive.
func RateTotal(total float64) models.Rating {
	switch {
	case total <= 40:
		return models.RatingExcellent
	case total <= 60:
		return models.RatingGood
	case total <= 80:
		return models.RatingAverage
	case total <= 100:
		return models.RatingFair
	default:
		return models.RatingPoor
	}
}

// Recommendation returns the canned advice for a rating.
func Recommendation(rating models.Rating) string {
	return utils.LookupWithDefault(recommendations, rating, recommendations[models.RatingPoor])
}

// Uncertainty estimates the error bar (ms) of a calculation from how much of
// the configuration was defaulted or ambiguous.
func Uncertainty(cfg models.LatencyConfig) float64 {
	u := 2.0
	if !cfg.GPUUsageProvided {
		u += 2
	}
	if cfg.NetworkPingMs == 0 {
		u++
	}
	// mid-range is the default tier, so it counts as unspecific even when explicit
	if cfg.CPUTier == models.CPUTierMidRange {
		u++
	}
	return utils.RoundTo(u, 1)
}

func round2(v float64) float64 {
	return utils.RoundTo(v, 2)
}
