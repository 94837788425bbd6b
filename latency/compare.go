package latency

import (
	"math"

	"forge/models"
	"forge/utils"
)

// CompareConfigs calculates both configurations and reports how much the
// second improves on the first. Positive values mean "after" is faster.
func CompareConfigs(before, after models.LatencyInput) models.OptimizationComparison {
	b := Calculate(before)
	a := Calculate(after)

	improvement := b.Total - a.Total
	percent := 0
	if b.Total > 0 {
		percent = int(math.Round(improvement / b.Total * 100))
	}

	return models.OptimizationComparison{
		Before:             b,
		After:              a,
		Improvement:        utils.RoundTo(improvement, 1),
		ImprovementPercent: percent,
		Breakdown: models.StageLatency{
			Mouse:   round2(b.Breakdown.Mouse - a.Breakdown.Mouse),
			PC:      round2(b.Breakdown.PC - a.Breakdown.PC),
			Display: round2(b.Breakdown.Display - a.Breakdown.Display),
			Network: round2(b.Breakdown.Network - a.Breakdown.Network),
		},
	}
}
