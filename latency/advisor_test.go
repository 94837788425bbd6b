package latency

import (
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forge/models"
)

func suggestionsFor(in models.LatencyInput) []models.OptimizationSuggestion {
	return Optimizations(Calculate(in), Normalize(in))
}

func titles(s []models.OptimizationSuggestion) []string {
	return lo.Map(s, func(o models.OptimizationSuggestion, _ int) string { return o.Title })
}

func TestOptimizations_Baseline(t *testing.T) {
	got := suggestionsFor(baselineInput())

	require.Equal(t, []string{"Upgrade to 240Hz monitor", "Close background applications"}, titles(got))
	assert.Equal(t, models.SuggestionHardware, got[0].Type)
	assert.Equal(t, "-1.4ms", got[0].Improvement)
	assert.Equal(t, models.SuggestionSoftware, got[1].Type)
	assert.Equal(t, "-2 to -5ms", got[1].Improvement)
	assert.Equal(t, models.PriorityLow, got[1].Priority)
	assert.Equal(t, models.ImpactLow, got[1].Impact)
}

func TestOptimizations_Technology(t *testing.T) {
	in := baselineInput()
	in.GPUUsage = ptr(97.0)
	in.GPU = "NVIDIA GeForce RTX 4070"

	got := suggestionsFor(in)
	require.NotEmpty(t, got)
	assert.Equal(t, models.SuggestionTechnology, got[0].Type)
	assert.Equal(t, "Enable NVIDIA Reflex", got[0].Title)
	assert.Equal(t, "-12.5-16.3ms", got[0].Improvement)
	assert.Equal(t, models.PriorityHigh, got[0].Priority)
	assert.Equal(t, models.ImpactHigh, got[0].Impact)

	in.GPU = "AMD Radeon RX 7800 XT"
	got = suggestionsFor(in)
	assert.Equal(t, "Enable AMD Anti-Lag", got[0].Title)

	// already enabled: queue is gone, nothing to suggest
	in.ReflexEnabled = ptr(true)
	assert.NotContains(t, titles(suggestionsFor(in)), "Enable AMD Anti-Lag")
}

func TestOptimizations_Mouse(t *testing.T) {
	in := baselineInput()
	in.MousePollingRate = ptr(125)

	got := suggestionsFor(in)
	require.Equal(t, "Upgrade to 1000Hz mouse", got[0].Title)
	assert.Equal(t, "-3.5ms", got[0].Improvement)

	// 1.0ms at 500Hz is only 0.5ms above target
	in.MousePollingRate = ptr(500)
	assert.NotContains(t, titles(suggestionsFor(in)), "Upgrade to 1000Hz mouse")
}

func TestOptimizations_RefreshRateAlreadyHigh(t *testing.T) {
	in := baselineInput()
	in.RefreshRate = ptr(240.0)
	assert.NotContains(t, titles(suggestionsFor(in)), "Upgrade to 240Hz monitor")
}

func TestOptimizations_Network(t *testing.T) {
	in := baselineInput()
	in.NetworkPing = ptr(60.0)

	got := suggestionsFor(in)
	s, ok := lo.Find(got, func(o models.OptimizationSuggestion) bool {
		return o.Type == models.SuggestionNetwork
	})
	require.True(t, ok)
	assert.Equal(t, "-9-15ms", s.Improvement)

	in.NetworkPing = ptr(40.0)
	_, ok = lo.Find(suggestionsFor(in), func(o models.OptimizationSuggestion) bool {
		return o.Type == models.SuggestionNetwork
	})
	assert.False(t, ok, "20ms one-way is not above the threshold")
}

func TestOptimizations_GameMode(t *testing.T) {
	in := baselineInput()
	in.IsGamingMonitor = ptr(false)

	got := suggestionsFor(in)
	require.Equal(t, []string{
		"Upgrade to 240Hz monitor",
		"Close background applications",
		"Enable Game Mode on monitor",
	}, titles(got))
	assert.Equal(t, "-1.4ms", got[0].Improvement)
	assert.Equal(t, models.SuggestionSettings, got[2].Type)
	assert.Equal(t, "-3ms", got[2].Improvement)
	assert.Equal(t, models.ImpactMedium, got[2].Impact)
}

func TestOptimizations_NothingToSuggest(t *testing.T) {
	in := models.LatencyInput{
		MousePollingRate: ptr(8000),
		CurrentFPS:       ptr(500.0),
		RefreshRate:      ptr(360.0),
		MonitorType:      "OLED",
		GPUUsage:         ptr(70.0),
		CPUTier:          "flagship",
		IsGamingMonitor:  ptr(true),
	}
	got := suggestionsFor(in)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestCompareConfigs(t *testing.T) {
	after := baselineInput()
	after.RefreshRate = ptr(240.0)

	got := CompareConfigs(baselineInput(), after)

	assert.Equal(t, 24.91, got.Before.Total)
	assert.Equal(t, 23.52, got.After.Total)
	assert.Equal(t, 1.4, got.Improvement)
	assert.Equal(t, 6, got.ImprovementPercent)
	assert.Equal(t, 1.39, got.Breakdown.Display)
	assert.Equal(t, 0.0, got.Breakdown.Mouse)
	assert.Equal(t, 0.0, got.Breakdown.PC)
	assert.Equal(t, 0.0, got.Breakdown.Network)
}

func TestCompareConfigs_Regression(t *testing.T) {
	worse := baselineInput()
	worse.NetworkPing = ptr(40.0)

	got := CompareConfigs(baselineInput(), worse)
	assert.Equal(t, -20.0, got.Improvement)
	assert.Equal(t, -80, got.ImprovementPercent)
	assert.Equal(t, -20.0, got.Breakdown.Network)
}

func TestChartData(t *testing.T) {
	got := ChartData(Calculate(baselineInput()))

	require.Len(t, got, 3, "network is zero and should be skipped")
	assert.Equal(t, []string{"mouse", "pc", "display"},
		lo.Map(got, func(s models.ChartSlice, _ int) string { return s.Stage }))
	assert.Equal(t, []int{2, 64, 34},
		lo.Map(got, func(s models.ChartSlice, _ int) int { return s.Percentage }))
	assert.Equal(t, "#10b981", got[1].Color)
	assert.Equal(t, "PC Processing", got[1].Label)
	assert.Equal(t, 15.94, got[1].Value)
	assert.NotEmpty(t, got[2].Tooltip)

	in := baselineInput()
	in.NetworkPing = ptr(30.0)
	assert.Len(t, ChartData(Calculate(in)), 4)
}

func TestComponentTooltip(t *testing.T) {
	assert.Contains(t, ComponentTooltip("renderQueue"), "Reflex")
	assert.Contains(t, ComponentTooltip("pixelResponse"), "panel type")
	assert.Empty(t, ComponentTooltip("flux"))

	names := ComponentNames()
	assert.Len(t, names, 7)
	assert.IsIncreasing(t, names)
	for _, n := range names {
		assert.NotEmpty(t, ComponentTooltip(n), n)
	}
}
