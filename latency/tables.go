// Package latency estimates click-to-photon system latency from a hardware
// and settings description, and proposes changes that would reduce it.
//
// Every function in this package is pure. Unknown table keys resolve to a
// fixed fallback constant instead of failing.
package latency

import "forge/models"

// Mouse polling rate (Hz) to input latency (ms).
var mousePollingLatency = map[int]float64{
	125:  4.0,
	500:  1.0,
	1000: 0.5,
	2000: 0.25,
	4000: 0.125,
	8000: 0.0625,
}

// Panel type to pixel response time (ms).
var panelResponseTime = map[models.PanelType]float64{
	models.PanelTN:   1.5,
	models.PanelIPS:  3.0,
	models.PanelVA:   4.0,
	models.PanelOLED: 0.1,
}

// CPU tier to game simulation time (ms).
var cpuSimulationTime = map[models.CPUTier]float64{
	models.CPUTierFlagship:   4.0,
	models.CPUTierHighEnd:    5.0,
	models.CPUTierMidHighEnd: 6.0,
	models.CPUTierMidRange:   7.0,
	models.CPUTierBudget:     8.0,
}

const (
	fallbackMouseLatency  = 4.0
	fallbackPixelResponse = 3.0
	fallbackCPUSimulation = 6.0

	gamingDisplayProcessing   = 2.0
	standardDisplayProcessing = 5.0

	// Frames buffered ahead of the GPU when it is saturated and no
	// latency-reduction technology is active.
	bufferedFrames = 1.5

	gpuBoundThreshold = 95.0
	cpuBoundThreshold = 50.0
)

// SupportedPollingRates returns the polling rates with a table entry, ascending.
func SupportedPollingRates() []int {
	return []int{125, 500, 1000, 2000, 4000, 8000}
}

type technologyPattern struct {
	substring  string
	technology models.Technology
}

// Matched in order against the upper-cased GPU name; first hit wins.
var technologyPatterns = []technologyPattern{
	{"RTX 40", models.TechnologyReflex},
	{"RTX 30", models.TechnologyReflex},
	{"RTX 20", models.TechnologyReflex},
	{"RX 7", models.TechnologyAntiLag},
	{"RX 6", models.TechnologyAntiLag},
}

var recommendations = map[models.Rating]string{
	models.RatingExcellent: "Your latency is competitive for esports gaming. This setup is optimized for competitive play.",
	models.RatingGood:      "Your latency is solid for gaming. Minor optimizations could improve responsiveness.",
	models.RatingAverage:   "Your latency is acceptable for casual gaming. Consider optimizations for better responsiveness.",
	models.RatingFair:      "Noticeable input lag detected. Significant optimizations recommended for better gaming experience.",
	models.RatingPoor:      "Significant input delay. System optimization highly recommended for playable gaming experience.",
}
