package latency

import (
	"strings"

	"forge/models"
	"forge/utils"
)

// Defaults applied by Normalize.
const (
	DefaultPollingRate   = 1000
	DefaultFPS           = 144.0
	DefaultRefreshRate   = 144.0
	DefaultPanel         = models.PanelIPS
	DefaultPing          = 0.0
	DefaultGPUUsage      = 85.0
	DefaultCPUTier       = models.CPUTierMidRange
	defaultGamingMonitor = true
	defaultReflexEnabled = false
)

// Normalize fills every field missing from in with its default. It never
// fails: numbers that are not finite, or outside the field's domain, count
// as missing. Unknown panel types and CPU tiers are kept as given and fall
// back at lookup time.
func Normalize(in models.LatencyInput) models.LatencyConfig {
	cfg := models.LatencyConfig{
		MousePollingRateHz:    DefaultPollingRate,
		CurrentFPS:            DefaultFPS,
		RefreshRateHz:         DefaultRefreshRate,
		MonitorPanelType:      DefaultPanel,
		NetworkPingMs:         DefaultPing,
		GPUUtilizationPercent: DefaultGPUUsage,
		ReflexEnabled:         defaultReflexEnabled,
		IsGamingMonitor:       defaultGamingMonitor,
		CPUTier:               DefaultCPUTier,
		GPU:                   strings.TrimSpace(in.GPU),
	}

	if in.MousePollingRate != nil {
		cfg.MousePollingRateHz = *in.MousePollingRate
	}
	if v, ok := positive(in.CurrentFPS); ok {
		cfg.CurrentFPS = v
	}
	if v, ok := positive(in.RefreshRate); ok {
		cfg.RefreshRateHz = v
	}
	if in.MonitorType != "" {
		cfg.MonitorPanelType = models.PanelType(strings.ToUpper(strings.TrimSpace(in.MonitorType)))
	}
	if v, ok := nonNegative(in.NetworkPing); ok {
		cfg.NetworkPingMs = v
	}
	if v, ok := percentage(in.GPUUsage); ok {
		cfg.GPUUtilizationPercent = v
		cfg.GPUUsageProvided = true
	}
	if in.ReflexEnabled != nil {
		cfg.ReflexEnabled = *in.ReflexEnabled
	}
	if in.IsGamingMonitor != nil {
		cfg.IsGamingMonitor = *in.IsGamingMonitor
	}
	if in.CPUTier != "" {
		cfg.CPUTier = models.CPUTier(strings.ToLower(strings.TrimSpace(in.CPUTier)))
	}

	return cfg
}

func positive(v *float64) (float64, bool) {
	if v == nil || !utils.IsFinite(*v) || *v <= 0 {
		return 0, false
	}
	return *v, true
}

func nonNegative(v *float64) (float64, bool) {
	if v == nil || !utils.IsFinite(*v) || *v < 0 {
		return 0, false
	}
	return *v, true
}

func percentage(v *float64) (float64, bool) {
	if p, ok := nonNegative(v); ok && p <= 100 {
		return p, true
	}
	return 0, false
}
