package models

// PanelType is the monitor panel technology
type PanelType string

const (
	PanelTN   PanelType = "TN"
	PanelIPS  PanelType = "IPS"
	PanelVA   PanelType = "VA"
	PanelOLED PanelType = "OLED"
)

// CPUTier is a coarse CPU performance bucket
type CPUTier string

const (
	CPUTierFlagship   CPUTier = "flagship"
	CPUTierHighEnd    CPUTier = "high-end"
	CPUTierMidHighEnd CPUTier = "mid-high-end"
	CPUTierMidRange   CPUTier = "mid-range"
	CPUTierBudget     CPUTier = "budget"
)

// Technology is the vendor latency-reduction feature a GPU supports
type Technology string

const (
	TechnologyReflex  Technology = "reflex"
	TechnologyAntiLag Technology = "anti-lag"
	TechnologyNone    Technology = "none"
)

// Rating buckets a total click-to-photon latency
type Rating string

const (
	RatingExcellent Rating = "EXCELLENT"
	RatingGood      Rating = "GOOD"
	RatingAverage   Rating = "AVERAGE"
	RatingFair      Rating = "FAIR"
	RatingPoor      Rating = "POOR"
)

// LatencyInput is the partial configuration accepted from callers.
// Nil pointers and empty strings mean "not provided".
type LatencyInput struct {
	MousePollingRate *int     `json:"mousePollingRate,omitempty"`
	CurrentFPS       *float64 `json:"currentFPS,omitempty"`
	RefreshRate      *float64 `json:"refreshRate,omitempty"`
	MonitorType      string   `json:"monitorType,omitempty"`
	NetworkPing      *float64 `json:"networkPing,omitempty"`
	GPUUsage         *float64 `json:"gpuUsage,omitempty"`
	ReflexEnabled    *bool    `json:"reflexEnabled,omitempty"`
	IsGamingMonitor  *bool    `json:"isGamingMonitor,omitempty"`
	CPUTier          string   `json:"cpuTier,omitempty"`
	GPU              string   `json:"gpu,omitempty"`
}

// LatencyConfig is a fully-populated latency configuration
type LatencyConfig struct {
	MousePollingRateHz    int       `json:"mousePollingRate" bson:"mouse_polling_rate"`
	CurrentFPS            float64   `json:"currentFPS" bson:"current_fps"`
	RefreshRateHz         float64   `json:"refreshRate" bson:"refresh_rate"`
	MonitorPanelType      PanelType `json:"monitorType" bson:"monitor_type"`
	NetworkPingMs         float64   `json:"networkPing" bson:"network_ping"`
	GPUUtilizationPercent float64   `json:"gpuUsage" bson:"gpu_usage"`
	GPUUsageProvided      bool      `json:"gpuUsageProvided" bson:"gpu_usage_provided"`
	ReflexEnabled         bool      `json:"reflexEnabled" bson:"reflex_enabled"`
	IsGamingMonitor       bool      `json:"isGamingMonitor" bson:"is_gaming_monitor"`
	CPUTier               CPUTier   `json:"cpuTier" bson:"cpu_tier"`
	GPU                   string    `json:"gpu,omitempty" bson:"gpu,omitempty"`
}

// StageLatency holds the four stage totals in milliseconds
type StageLatency struct {
	Mouse   float64 `json:"mouse"`
	PC      float64 `json:"pc"`
	Display float64 `json:"display"`
	Network float64 `json:"network"`
}

// LatencyComponents holds the finer-grained PC and display contributions
type LatencyComponents struct {
	InputSampling     float64 `json:"inputSampling"`
	CPUSimulation     float64 `json:"cpuSimulation"`
	RenderQueue       float64 `json:"renderQueue"`
	GPURender         float64 `json:"gpuRender"`
	DisplayProcessing float64 `json:"displayProcessing"`
	ScanoutAverage    float64 `json:"scanoutAverage"`
	PixelResponse     float64 `json:"pixelResponse"`
}

// LatencyBreakdown is the result of a latency calculation
type LatencyBreakdown struct {
	Total          float64           `json:"total"`
	Breakdown      StageLatency      `json:"breakdown"`
	Components     LatencyComponents `json:"components"`
	Rating         Rating            `json:"rating"`
	Recommendation string            `json:"recommendation"`
	Uncertainty    float64           `json:"uncertainty"`
	ReflexEnabled  bool              `json:"reflexEnabled"`
	Technology     Technology        `json:"technology"`
}

// SuggestionType tags what kind of change a suggestion proposes
type SuggestionType string

const (
	SuggestionTechnology SuggestionType = "TECHNOLOGY"
	SuggestionHardware   SuggestionType = "HARDWARE"
	SuggestionNetwork    SuggestionType = "NETWORK"
	SuggestionSoftware   SuggestionType = "SOFTWARE"
	SuggestionSettings   SuggestionType = "SETTINGS"
)

// Priority of an optimization suggestion
type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

// Impact tier of an optimization suggestion
type Impact string

const (
	ImpactHigh   Impact = "high"
	ImpactMedium Impact = "medium"
	ImpactLow    Impact = "low"
)

// OptimizationSuggestion proposes a change with its estimated latency gain
type OptimizationSuggestion struct {
	Type        SuggestionType `json:"type"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Improvement string         `json:"improvement"` // e.g. "-12.5-16.3ms"
	Priority    Priority       `json:"priority"`
	Impact      Impact         `json:"impact"`
}

// OptimizationComparison compares two configurations
type OptimizationComparison struct {
	Before             LatencyBreakdown `json:"before"`
	After              LatencyBreakdown `json:"after"`
	Improvement        float64          `json:"improvement"`
	ImprovementPercent int              `json:"improvementPercent"`
	Breakdown          StageLatency     `json:"breakdown"`
}

// ChartSlice is one bar/segment of the latency breakdown chart
type ChartSlice struct {
	Stage      string  `json:"stage"`
	Label      string  `json:"label"`
	Value      float64 `json:"value"`
	Percentage int     `json:"percentage"`
	Color      string  `json:"color"`
	Tooltip    string  `json:"tooltip"`
}
