package latency

import (
	"strings"

	"forge/models"
	"forge/utils"
)

// PCLatency is the PC processing stage broken into its sub-terms (ms).
type PCLatency struct {
	InputSampling float64
	CPUSimulation float64
	RenderQueue   float64
	GPURender     float64
	Total         float64
}

// DisplayLatency is the display stage broken into its sub-terms (ms).
type DisplayLatency struct {
	DisplayProcessing float64
	ScanoutAverage    float64
	PixelResponse     float64
	Total             float64
}

// MouseLatency returns the input latency of a mouse polling at rateHz.
func MouseLatency(rateHz int) float64 {
	return utils.LookupWithDefault(mousePollingLatency, rateHz, fallbackMouseLatency)
}

// CalculatePCLatency estimates input sampling, simulation, queueing and
// render time for a normalized configuration.
func CalculatePCLatency(cfg models.LatencyConfig) PCLatency {
	frameTime := 1000 / cfg.CurrentFPS

	var inputSampling float64
	switch {
	case cfg.GPUUtilizationPercent > gpuBoundThreshold:
		inputSampling = 1.0
	case cfg.GPUUtilizationPercent < cpuBoundThreshold:
		inputSampling = 3.0
	default:
		inputSampling = 2.0
	}

	cpuSimulation := utils.LookupWithDefault(cpuSimulationTime, cfg.CPUTier, fallbackCPUSimulation)

	var renderQueue float64
	if !cfg.ReflexEnabled && cfg.GPUUtilizationPercent > gpuBoundThreshold {
		renderQueue = frameTime * bufferedFrames
	}

	return PCLatency{
		InputSampling: inputSampling,
		CPUSimulation: cpuSimulation,
		RenderQueue:   renderQueue,
		GPURender:     frameTime,
		Total:         inputSampling + cpuSimulation + renderQueue + frameTime,
	}
}

// CalculateDisplayLatency estimates monitor processing, average scanout and
// pixel response time.
func CalculateDisplayLatency(refreshRateHz float64, panel models.PanelType, gamingMonitor bool) DisplayLatency {
	processing := standardDisplayProcessing
	if gamingMonitor {
		processing = gamingDisplayProcessing
	}
	scanout := (1000 / refreshRateHz) / 2
	pixel := utils.LookupWithDefault(panelResponseTime, panel, fallbackPixelResponse)

	return DisplayLatency{
		DisplayProcessing: processing,
		ScanoutAverage:    scanout,
		PixelResponse:     pixel,
		Total:             processing + scanout + pixel,
	}
}

// NetworkLatency returns the one-way estimate for a round-trip ping.
func NetworkLatency(pingMs float64) float64 {
	if pingMs <= 0 {
		return 0
	}
	return pingMs / 2
}

// DetectTechnology guesses which latency-reduction feature a GPU supports
// from its name. It is a substring heuristic, not a capability database.
func DetectTechnology(gpu string) models.Technology {
	name := strings.ToUpper(gpu)
	if name == "" {
		return models.TechnologyNone
	}
	for _, p := range technologyPatterns {
		if strings.Contains(name, p.substring) {
			return p.technology
		}
	}
	return models.TechnologyNone
}
