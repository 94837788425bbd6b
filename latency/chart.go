package latency

import (
	"math"
	"slices"

	"github.com/samber/lo"

	"forge/models"
)

type stageStyle struct {
	key     string
	label   string
	color   string
	tooltip string
	value   func(models.StageLatency) float64
}

var stageStyles = []stageStyle{
	{"mouse", "Mouse Input", "#0066ff", "Time from button click to PC receiving input signal",
		func(s models.StageLatency) float64 { return s.Mouse }},
	{"pc", "PC Processing", "#10b981", "Time for CPU/GPU to process and render the frame",
		func(s models.StageLatency) float64 { return s.PC }},
	{"display", "Display", "#f59e0b", "Time from GPU output to pixels changing on screen",
		func(s models.StageLatency) float64 { return s.Display }},
	{"network", "Network", "#ef4444", "Round-trip time to game server (one-way shown)",
		func(s models.StageLatency) float64 { return s.Network }},
}

var componentTooltips = map[string]string{
	"inputSampling":     "Time for PC to detect and process mouse/keyboard input",
	"cpuSimulation":     "CPU time to simulate game logic and physics",
	"renderQueue":       "Buffered frames waiting to be displayed (eliminated by Reflex/Anti-Lag)",
	"gpuRender":         "GPU time to render the frame",
	"displayProcessing": "Monitor processing time (Game Mode reduces this)",
	"scanoutAverage":    "Average time for monitor to scan pixels (half of refresh period)",
	"pixelResponse":     "Time for pixels to change color (varies by panel type)",
}

// ChartData turns a breakdown into chart slices, skipping stages that
// contribute nothing.
func ChartData(b models.LatencyBreakdown) []models.ChartSlice {
	visible := lo.Filter(stageStyles, func(s stageStyle, _ int) bool {
		return s.value(b.Breakdown) > 0
	})
	return lo.Map(visible, func(s stageStyle, _ int) models.ChartSlice {
		v := s.value(b.Breakdown)
		pct := 0
		if b.Total > 0 {
			pct = int(math.Round(v / b.Total * 100))
		}
		return models.ChartSlice{
			Stage:      s.key,
			Label:      s.label,
			Value:      v,
			Percentage: pct,
			Color:      s.color,
			Tooltip:    s.tooltip,
		}
	})
}

// ComponentTooltip describes a breakdown component, or returns "" for an
// unknown name.
func ComponentTooltip(component string) string {
	return componentTooltips[component]
}

// ComponentNames lists the components ComponentTooltip knows about, sorted.
func ComponentNames() []string {
	names := lo.Keys(componentTooltips)
	slices.Sort(names)
	return names
}
