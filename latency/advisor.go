package latency

import (
	"fmt"
	"math"
	"strconv"

	"forge/models"
	"forge/utils"
)

const (
	targetPollingRate = 1000
	targetRefreshRate = 240.0
)

// Optimizations proposes changes for a computed breakdown and the normalized
// configuration it came from. Rules are evaluated independently, and the
// result keeps rule order rather than sorting by priority.
func Optimizations(b models.LatencyBreakdown, cfg models.LatencyConfig) []models.OptimizationSuggestion {
	out := make([]models.OptimizationSuggestion, 0)

	if b.Technology != models.TechnologyNone && b.Technology != "" && !b.ReflexEnabled && b.Components.RenderQueue > 0 {
		low := utils.RoundTo(b.Components.RenderQueue*1.2, 1)
		high := utils.RoundTo(low*1.3, 1)
		out = append(out, models.OptimizationSuggestion{
			Type:        models.SuggestionTechnology,
			Title:       "Enable " + technologyName(b.Technology),
			Description: "Eliminates render queue and reduces PC latency",
			Improvement: fmt.Sprintf("-%s-%sms", formatMs(low), formatMs(high)),
			Priority:    models.PriorityHigh,
			Impact:      models.ImpactHigh,
		})
	}

	if cfg.MousePollingRateHz < targetPollingRate && b.Breakdown.Mouse > 0.5 {
		gain := utils.RoundTo(b.Breakdown.Mouse-MouseLatency(targetPollingRate), 1)
		if gain > 0.5 {
			out = append(out, models.OptimizationSuggestion{
				Type:        models.SuggestionHardware,
				Title:       "Upgrade to 1000Hz mouse",
				Description: "Higher polling rate reduces input delay",
				Improvement: fmt.Sprintf("-%sms", formatMs(gain)),
				Priority:    models.PriorityMedium,
				Impact:      models.ImpactMedium,
			})
		}
	}

	if cfg.RefreshRateHz < targetRefreshRate && b.Breakdown.Display > 5 {
		upgraded := CalculateDisplayLatency(targetRefreshRate, cfg.MonitorPanelType, cfg.IsGamingMonitor)
		gain := utils.RoundTo(b.Breakdown.Display-upgraded.Total, 1)
		if gain > 1 {
			out = append(out, models.OptimizationSuggestion{
				Type:        models.SuggestionHardware,
				Title:       "Upgrade to 240Hz monitor",
				Description: "Higher refresh rate reduces display latency",
				Improvement: fmt.Sprintf("-%sms", formatMs(gain)),
				Priority:    models.PriorityMedium,
				Impact:      models.ImpactMedium,
			})
		}
	}

	if b.Breakdown.Network > 20 {
		out = append(out, models.OptimizationSuggestion{
			Type:        models.SuggestionNetwork,
			Title:       "Improve internet connection",
			Description: "Lower ping reduces network latency significantly",
			Improvement: fmt.Sprintf("-%s-%sms",
				formatMs(math.Round(b.Breakdown.Network*0.3)),
				formatMs(math.Round(b.Breakdown.Network*0.5))),
			Priority: models.PriorityHigh,
			Impact:   models.ImpactHigh,
		})
	}

	if b.Components.CPUSimulation > 6 {
		out = append(out, models.OptimizationSuggestion{
			Type:        models.SuggestionSoftware,
			Title:       "Close background applications",
			Description: "Reduces CPU load and simulation time",
			Improvement: "-2 to -5ms",
			Priority:    models.PriorityLow,
			Impact:      models.ImpactLow,
		})
	}

	if !cfg.IsGamingMonitor && b.Breakdown.Display > 6 {
		out = append(out, models.OptimizationSuggestion{
			Type:        models.SuggestionSettings,
			Title:       "Enable Game Mode on monitor",
			Description: "Reduces display processing time",
			Improvement: fmt.Sprintf("-%sms", formatMs(standardDisplayProcessing-gamingDisplayProcessing)),
			Priority:    models.PriorityLow,
			Impact:      models.ImpactMedium,
		})
	}

	return out
}

func technologyName(t models.Technology) string {
	if t == models.TechnologyReflex {
		return "NVIDIA Reflex"
	}
	return "AMD Anti-Lag"
}

// formatMs prints the shortest decimal form: 12.5, 13, 0.8.
func formatMs(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
