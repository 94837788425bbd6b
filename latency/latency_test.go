package latency

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forge/models"
)

func ptr[T any](v T) *T { return &v }

// Competitive 144Hz IPS setup, balanced GPU load, no ping.
func baselineInput() models.LatencyInput {
	return models.LatencyInput{
		MousePollingRate: ptr(1000),
		CurrentFPS:       ptr(144.0),
		RefreshRate:      ptr(144.0),
		MonitorType:      "IPS",
		NetworkPing:      ptr(0.0),
		GPUUsage:         ptr(85.0),
		ReflexEnabled:    ptr(false),
		IsGamingMonitor:  ptr(true),
		CPUTier:          "mid-range",
	}
}

func TestCalculate_Baseline(t *testing.T) {
	got := Calculate(baselineInput())

	assert.Equal(t, 0.5, got.Breakdown.Mouse)
	assert.Equal(t, 2.0, got.Components.InputSampling)
	assert.Equal(t, 7.0, got.Components.CPUSimulation)
	assert.Equal(t, 0.0, got.Components.RenderQueue)
	assert.Equal(t, 6.94, got.Components.GPURender)
	assert.Equal(t, 15.94, got.Breakdown.PC)
	assert.Equal(t, 2.0, got.Components.DisplayProcessing)
	assert.Equal(t, 3.47, got.Components.ScanoutAverage)
	assert.Equal(t, 3.0, got.Components.PixelResponse)
	assert.Equal(t, 8.47, got.Breakdown.Display)
	assert.Equal(t, 0.0, got.Breakdown.Network)
	// 0.5 + 15.94 + 8.47 + 0, summed as displayed
	assert.Equal(t, 24.91, got.Total)
	assert.Equal(t, models.RatingExcellent, got.Rating)
	assert.Equal(t, models.TechnologyNone, got.Technology)
	assert.False(t, got.ReflexEnabled)
	// explicit GPU usage, zero ping (+1), mid-range tier (+1)
	assert.Equal(t, 4.0, got.Uncertainty)
	assert.Contains(t, got.Recommendation, "competitive for esports")
}

func TestCalculate_GPUBoundAddsRenderQueue(t *testing.T) {
	in := baselineInput()
	in.GPUUsage = ptr(97.0)

	base := Calculate(baselineInput())
	got := Calculate(in)

	assert.Equal(t, 1.0, got.Components.InputSampling)
	assert.Equal(t, 10.42, got.Components.RenderQueue)
	assert.Equal(t, 25.36, got.Breakdown.PC)
	assert.Equal(t, 34.33, got.Total)
	assert.Greater(t, got.Total, base.Total)

	for _, s := range Optimizations(got, Normalize(in)) {
		assert.NotEqual(t, models.SuggestionTechnology, s.Type, "no known GPU, no Reflex/Anti-Lag suggestion")
	}
}

func TestCalculate_ReflexRemovesRenderQueue(t *testing.T) {
	in := baselineInput()
	in.GPUUsage = ptr(99.0)
	in.ReflexEnabled = ptr(true)

	got := Calculate(in)
	assert.Equal(t, 0.0, got.Components.RenderQueue)
	assert.True(t, got.ReflexEnabled)
}

func TestCalculate_NetworkPing(t *testing.T) {
	in := baselineInput()
	in.NetworkPing = ptr(100.0)

	base := Calculate(baselineInput())
	got := Calculate(in)

	assert.Equal(t, 50.0, got.Breakdown.Network)
	assert.InDelta(t, base.Total+50, got.Total, 0.001)
	assert.Equal(t, models.RatingAverage, got.Rating)
	assert.Equal(t, 3.0, got.Uncertainty)
}

func TestCalculate_UnknownPanelFallsBackToIPS(t *testing.T) {
	in := baselineInput()
	in.MonitorType = "XYZ"

	got := Calculate(in)
	assert.Equal(t, 3.0, got.Components.PixelResponse)
	assert.Equal(t, Calculate(baselineInput()).Breakdown.Display, got.Breakdown.Display)
}

func TestCalculate_TableFallbacks(t *testing.T) {
	in := baselineInput()
	in.MousePollingRate = ptr(250)
	in.CPUTier = "quantum"

	got := Calculate(in)
	assert.Equal(t, 4.0, got.Breakdown.Mouse)
	assert.Equal(t, 6.0, got.Components.CPUSimulation)
}

func TestCalculate_Idempotent(t *testing.T) {
	in := baselineInput()
	in.GPU = "RTX 3080"
	in.GPUUsage = ptr(98.0)
	assert.Equal(t, Calculate(in), Calculate(in))
}

func TestCalculate_SumsWithinRounding(t *testing.T) {
	const tol = 0.01

	for _, rate := range SupportedPollingRates() {
		for _, fps := range []float64{30, 60, 144, 165, 240, 500} {
			for _, refresh := range []float64{60, 75, 144, 240, 360} {
				for _, usage := range []float64{10, 50, 85, 96, 100} {
					for _, panel := range []string{"TN", "IPS", "VA", "OLED", "XYZ"} {
						for _, ping := range []float64{0, 17, 45.5} {
							in := models.LatencyInput{
								MousePollingRate: ptr(rate),
								CurrentFPS:       ptr(fps),
								RefreshRate:      ptr(refresh),
								MonitorType:      panel,
								NetworkPing:      ptr(ping),
								GPUUsage:         ptr(usage),
							}
							b := Calculate(in)
							c := b.Components
							s := b.Breakdown

							require.InDelta(t, s.Mouse+s.PC+s.Display+s.Network, b.Total, tol)
							require.InDelta(t, c.InputSampling+c.CPUSimulation+c.RenderQueue+c.GPURender, s.PC, tol)
							require.InDelta(t, c.DisplayProcessing+c.ScanoutAverage+c.PixelResponse, s.Display, tol)
						}
					}
				}
			}
		}
	}
}

func TestCalculate_OutputAddsUp(t *testing.T) {
	tests := []struct {
		name string
		in   models.LatencyInput
	}{
		{"4000Hz at 31fps", models.LatencyInput{
			MousePollingRate: ptr(4000),
			CurrentFPS:       ptr(31.0),
			RefreshRate:      ptr(74.0),
			NetworkPing:      ptr(47.77),
			GPUUsage:         ptr(97.0),
		}},
		{"odd refresh", models.LatencyInput{
			CurrentFPS:  ptr(143.0),
			RefreshRate: ptr(59.94),
			NetworkPing: ptr(33.33),
			GPUUsage:    ptr(96.5),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Calculate(tt.in)
			s := b.Breakdown
			c := b.Components

			assert.Equal(t, round2(s.Mouse+s.PC+s.Display+s.Network), b.Total)
			assert.Equal(t, round2(c.InputSampling+c.CPUSimulation+c.RenderQueue+c.GPURender), s.PC)
			assert.Equal(t, round2(c.DisplayProcessing+c.ScanoutAverage+c.PixelResponse), s.Display)
		})
	}
}

func TestNetworkLatency_Linear(t *testing.T) {
	prevNetwork, prevTotal := -1.0, -1.0
	for ping := 10.0; ping <= 200; ping += 10 {
		in := baselineInput()
		in.NetworkPing = ptr(ping)
		b := Calculate(in)

		assert.Equal(t, ping/2, b.Breakdown.Network)
		if prevNetwork >= 0 {
			assert.InDelta(t, 5.0, b.Breakdown.Network-prevNetwork, 1e-9)
			assert.InDelta(t, 5.0, b.Total-prevTotal, 0.011)
		}
		prevNetwork, prevTotal = b.Breakdown.Network, b.Total
	}
	assert.Equal(t, 0.0, NetworkLatency(0))
	assert.Equal(t, 0.0, NetworkLatency(-5))
}

func TestMouseLatency_MonotonicInPollingRate(t *testing.T) {
	rates := SupportedPollingRates()
	for i := 1; i < len(rates); i++ {
		assert.LessOrEqual(t, MouseLatency(rates[i]), MouseLatency(rates[i-1]),
			"%dHz should not be slower than %dHz", rates[i], rates[i-1])
	}
	assert.Equal(t, 0.0625, MouseLatency(8000))
}

func TestRateTotal_Boundaries(t *testing.T) {
	tests := []struct {
		total float64
		want  models.Rating
	}{
		{0, models.RatingExcellent},
		{40, models.RatingExcellent},
		{40.01, models.RatingGood},
		{60, models.RatingGood},
		{60.01, models.RatingAverage},
		{80, models.RatingAverage},
		{80.01, models.RatingFair},
		{100, models.RatingFair},
		{100.01, models.RatingPoor},
		{250, models.RatingPoor},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RateTotal(tt.total), "total %.2f", tt.total)
	}
}

func TestCalculate_RatingFollowsReportedTotal(t *testing.T) {
	// network 15.09 on top of the 24.91 baseline lands exactly on 40
	in := baselineInput()
	in.NetworkPing = ptr(30.1748)
	got := Calculate(in)
	assert.Equal(t, 40.0, got.Total)
	assert.Equal(t, models.RatingExcellent, got.Rating)

	bounds := []struct {
		limit float64
		at    models.Rating
		above models.Rating
	}{
		{40, models.RatingExcellent, models.RatingGood},
		{60, models.RatingGood, models.RatingAverage},
		{80, models.RatingAverage, models.RatingFair},
		{100, models.RatingFair, models.RatingPoor},
	}

	base := Calculate(baselineInput()).Total
	for _, bd := range bounds {
		// walk ping in steps that move the network stage by about 0.005ms
		// across each boundary
		center := (bd.limit - base) * 2
		for ping := center - 0.1; ping <= center+0.1; ping += 0.01 {
			in := baselineInput()
			in.NetworkPing = ptr(ping)
			got := Calculate(in)

			want := bd.above
			if got.Total <= bd.limit {
				want = bd.at
			}
			if got.Total > bd.limit-1 && got.Total < bd.limit+1 {
				require.Equal(t, want, got.Rating, "ping %.4f total %.2f", ping, got.Total)
				require.Equal(t, RateTotal(got.Total), got.Rating)
			}
		}
	}
}

func TestDetectTechnology(t *testing.T) {
	tests := []struct {
		gpu  string
		want models.Technology
	}{
		{"NVIDIA RTX 4090", models.TechnologyReflex},
		{"nvidia geforce rtx 3060 ti", models.TechnologyReflex},
		{"RTX 2070 Super", models.TechnologyReflex},
		{"AMD RX 7900 XTX", models.TechnologyAntiLag},
		{"amd radeon rx 6600", models.TechnologyAntiLag},
		{"GTX 1660 Super", models.TechnologyNone},
		{"AMD RX 580", models.TechnologyNone},
		{"Intel Arc A770", models.TechnologyNone},
		{"", models.TechnologyNone},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectTechnology(tt.gpu), tt.gpu)
	}
}

func TestNormalize_Defaults(t *testing.T) {
	cfg := Normalize(models.LatencyInput{})

	assert.Equal(t, 1000, cfg.MousePollingRateHz)
	assert.Equal(t, 144.0, cfg.CurrentFPS)
	assert.Equal(t, 144.0, cfg.RefreshRateHz)
	assert.Equal(t, models.PanelIPS, cfg.MonitorPanelType)
	assert.Equal(t, 0.0, cfg.NetworkPingMs)
	assert.Equal(t, 85.0, cfg.GPUUtilizationPercent)
	assert.False(t, cfg.GPUUsageProvided)
	assert.False(t, cfg.ReflexEnabled)
	assert.True(t, cfg.IsGamingMonitor)
	assert.Equal(t, models.CPUTierMidRange, cfg.CPUTier)

	// everything defaulted: 2 + 2 (GPU usage) + 1 (ping) + 1 (tier)
	assert.Equal(t, 6.0, Calculate(models.LatencyInput{}).Uncertainty)
}

func TestNormalize_OutOfDomainTreatedAsMissing(t *testing.T) {
	cfg := Normalize(models.LatencyInput{
		CurrentFPS:  ptr(0.0),
		RefreshRate: ptr(math.Inf(1)),
		NetworkPing: ptr(-20.0),
		GPUUsage:    ptr(math.NaN()),
		MonitorType: " oled ",
		CPUTier:     "High-End",
	})

	assert.Equal(t, DefaultFPS, cfg.CurrentFPS)
	assert.Equal(t, DefaultRefreshRate, cfg.RefreshRateHz)
	assert.Equal(t, 0.0, cfg.NetworkPingMs)
	assert.Equal(t, DefaultGPUUsage, cfg.GPUUtilizationPercent)
	assert.False(t, cfg.GPUUsageProvided)
	assert.Equal(t, models.PanelOLED, cfg.MonitorPanelType)
	assert.Equal(t, models.CPUTierHighEnd, cfg.CPUTier)
}

func TestNormalize_GPUUsageBoundedToPercent(t *testing.T) {
	for _, usage := range []float64{100.5, 150, 1e6} {
		cfg := Normalize(models.LatencyInput{GPUUsage: ptr(usage)})
		assert.Equal(t, DefaultGPUUsage, cfg.GPUUtilizationPercent, "usage %v", usage)
		assert.False(t, cfg.GPUUsageProvided, "usage %v", usage)
	}

	for _, usage := range []float64{0, 100} {
		cfg := Normalize(models.LatencyInput{GPUUsage: ptr(usage)})
		assert.Equal(t, usage, cfg.GPUUtilizationPercent)
		assert.True(t, cfg.GPUUsageProvided)
	}
}
