package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"forge/latency"
	"forge/models"
)

var latencyCmd = &cobra.Command{
	Use:   "latency",
	Short: "Estimate click-to-photon latency for a setup",
	Long: `Estimate click-to-photon latency for a setup. Omitted flags take the
model's defaults.

  Example:
    forge latency --fps 240 --refresh 240 --panel OLED --gpu "RTX 4080" --optimize`,
	RunE: runLatency,
}

func init() {
	f := latencyCmd.Flags()
	f.Int("polling", 0, "mouse polling rate in Hz")
	f.Float64("fps", 0, "frames per second")
	f.Float64("refresh", 0, "monitor refresh rate in Hz")
	f.String("panel", "", "monitor panel type (TN, IPS, VA, OLED)")
	f.Float64("ping", 0, "network round-trip time in ms")
	f.Float64("gpu-usage", 0, "GPU utilization percent")
	f.Bool("reflex", false, "NVIDIA Reflex or AMD Anti-Lag enabled")
	f.Bool("gaming", true, "monitor has a gaming/low-latency mode")
	f.String("cpu", "", "CPU tier (flagship, high-end, mid-high-end, mid-range, budget)")
	f.String("gpu", "", "GPU model name, used to detect Reflex/Anti-Lag support")
	f.Bool("optimize", false, "also list optimization suggestions")
	f.Bool("json", false, "print JSON instead of a table")
}

// inputFromFlags only sets fields whose flag was given, so the model's own
// defaults apply to the rest.
func inputFromFlags(f *pflag.FlagSet) models.LatencyInput {
	var in models.LatencyInput

	if f.Changed("polling") {
		v, _ := f.GetInt("polling")
		in.MousePollingRate = &v
	}
	floats := map[string]**float64{
		"fps":       &in.CurrentFPS,
		"refresh":   &in.RefreshRate,
		"ping":      &in.NetworkPing,
		"gpu-usage": &in.GPUUsage,
	}
	for name, dst := range floats {
		if f.Changed(name) {
			v, _ := f.GetFloat64(name)
			*dst = &v
		}
	}
	bools := map[string]**bool{
		"reflex": &in.ReflexEnabled,
		"gaming": &in.IsGamingMonitor,
	}
	for name, dst := range bools {
		if f.Changed(name) {
			v, _ := f.GetBool(name)
			*dst = &v
		}
	}
	in.MonitorType, _ = f.GetString("panel")
	in.CPUTier, _ = f.GetString("cpu")
	in.GPU, _ = f.GetString("gpu")
	return in
}

func runLatency(cmd *cobra.Command, args []string) error {
	in := inputFromFlags(cmd.Flags())
	cfg := latency.Normalize(in)
	b := latency.CalculateConfig(cfg)

	optimize, _ := cmd.Flags().GetBool("optimize")
	var suggestions []models.OptimizationSuggestion
	if optimize {
		suggestions = latency.Optimizations(b, cfg)
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"config":        cfg,
			"result":        b,
			"optimizations": suggestions,
		})
	}

	renderBreakdown(os.Stdout, b)
	if optimize {
		renderSuggestions(os.Stdout, suggestions)
	}
	return nil
}

func renderBreakdown(w io.Writer, b models.LatencyBreakdown) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.SetTitle(fmt.Sprintf("Click-to-photon latency: %.2fms ± %.1fms", b.Total, b.Uncertainty))
	t.AppendHeader(table.Row{"Stage", "Latency (ms)", "Share"})

	for _, s := range latency.ChartData(b) {
		t.AppendRow(table.Row{s.Label, fmt.Sprintf("%.2f", s.Value), fmt.Sprintf("%d%%", s.Percentage)})
	}
	t.AppendSeparator()
	t.AppendRow(table.Row{"Render queue", fmt.Sprintf("%.2f", b.Components.RenderQueue), ""})
	t.AppendRow(table.Row{"Pixel response", fmt.Sprintf("%.2f", b.Components.PixelResponse), ""})
	t.AppendSeparator()
	t.AppendRow(table.Row{"Rating", ratingColor(b.Rating).Sprint(string(b.Rating)), string(b.Technology)})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
	})
	t.Render()

	fmt.Fprintln(w, b.Recommendation)
}

func renderSuggestions(w io.Writer, suggestions []models.OptimizationSuggestion) {
	if len(suggestions) == 0 {
		fmt.Fprintln(w, "No optimizations to suggest.")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"#", "Type", "Suggestion", "Gain", "Priority"})
	for i, s := range suggestions {
		t.AppendRow(table.Row{i + 1, s.Type, s.Title, s.Improvement, s.Priority})
	}
	t.Render()
}

func ratingColor(r models.Rating) text.Colors {
	switch r {
	case models.RatingExcellent, models.RatingGood:
		return text.Colors{text.FgGreen}
	case models.RatingAverage:
		return text.Colors{text.FgYellow}
	default:
		return text.Colors{text.FgRed}
	}
}
