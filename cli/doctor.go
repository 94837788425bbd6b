package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"forge/config"
	"forge/services"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check connectivity to Redis, MongoDB and the exchange-rate API",
	RunE:  runDoctor,
}

type checkResult struct {
	Name     string
	Required bool
	Err      error
	Skipped  bool
	Took     time.Duration
}

type check struct {
	name     string
	required bool
	enabled  bool
	run      func(ctx context.Context) error
}

var errDoctorFailed = errors.New("one or more required checks failed")

func runDoctor(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
	defer cancel()

	results := runChecks(ctx, doctorChecks(cfg))
	renderChecks(os.Stdout, results)

	for _, r := range results {
		if r.Required && r.Err != nil {
			return errDoctorFailed
		}
	}
	return nil
}

func doctorChecks(cfg *config.Config) []check {
	return []check{
		{
			name:     "exchange-rate API",
			required: true,
			enabled:  true,
			run: func(ctx context.Context) error {
				svc := services.NewExchangeService(cfg, nil, nil, nil)
				if rates := svc.FetchRates(ctx); !rates.Success {
					return errors.New(svc.LastError())
				}
				return nil
			},
		},
		{
			name:    "redis",
			enabled: cfg.Redis.Enabled,
			run: func(ctx context.Context) error {
				cache := services.NewCacheService(cfg)
				defer cache.Stop()
				return cache.Ping(ctx)
			},
		},
		{
			name:    "mongodb",
			enabled: cfg.MongoDB.Enabled,
			run: func(ctx context.Context) error {
				mongo, err := services.NewMongoDBService(cfg)
				if err != nil {
					return err
				}
				defer mongo.Close()
				return mongo.Ping(ctx)
			},
		},
	}
}

// runChecks runs every check concurrently. A failing check never cancels
// the others.
func runChecks(ctx context.Context, checks []check) []checkResult {
	results := make([]checkResult, len(checks))

	var g errgroup.Group
	for i, c := range checks {
		results[i] = checkResult{Name: c.name, Required: c.required, Skipped: !c.enabled}
		if !c.enabled {
			continue
		}
		g.Go(func() error {
			start := time.Now()
			results[i].Err = c.run(ctx)
			results[i].Took = time.Since(start)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func renderChecks(w io.Writer, results []checkResult) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Check", "Status", "Time", "Detail"})

	for _, r := range results {
		status, detail := text.FgGreen.Sprint("OK"), ""
		switch {
		case r.Skipped:
			status = text.FgHiBlack.Sprint("SKIPPED")
			detail = "disabled in configuration"
		case r.Err != nil && r.Required:
			status = text.FgRed.Sprint("FAIL")
			detail = r.Err.Error()
		case r.Err != nil:
			status = text.FgYellow.Sprint("DEGRADED")
			detail = r.Err.Error()
		}
		t.AppendRow(table.Row{r.Name, status, r.Took.Round(time.Millisecond), detail})
	}
	t.Render()
}
