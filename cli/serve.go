package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"forge/handlers"
	"forge/logging"
	"forge/middleware"
	"forge/services"
	"forge/utils"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntP("port", "p", 0, "listen port (overrides config)")
	serveCmd.Flags().String("host", "", "listen host (overrides config)")
	serveCmd.Flags().Bool("no-redis", false, "use the in-memory cache only")
	serveCmd.Flags().Bool("no-scheduler", false, "fetch rates on demand instead of on a schedule")
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logging.GetSubsystemLogger("main")
	flags := cmd.Flags()

	if flags.Changed("port") {
		cfg.Server.Port, _ = flags.GetInt("port")
	}
	if flags.Changed("host") {
		cfg.Server.Host, _ = flags.GetString("host")
	}
	if noRedis, _ := flags.GetBool("no-redis"); noRedis {
		cfg.Redis.Enabled = false
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log.Info().
		Str("addr", cfg.Addr()).
		Bool("redis", cfg.Redis.Enabled).
		Bool("mongodb", cfg.MongoDB.Enabled).
		Str("model_version", cfg.Model.Version).
		Msg("starting forge")

	// Optional dependencies degrade instead of failing start-up
	geo := utils.NewGeoResolver(cfg.GeoIP.DBPath, cfg.GeoIP.APIFallback)
	defer geo.Close()

	mongoService, err := services.NewMongoDBService(cfg)
	if err != nil {
		log.Warn().Err(err).Msg("MongoDB connection failed, analytics use recent history only")
		mongoService = nil
	}
	defer mongoService.Close()

	discord, err := newDiscord()
	if err != nil {
		log.Warn().Err(err).Msg("Discord connection failed, alerts disabled")
		discord, _ = services.NewDiscordBotService("", "")
	}
	defer discord.Close()

	cache := services.NewCacheService(cfg)
	cache.Start()
	defer cache.Stop()

	history := services.NewHistoryService(mongoService)
	defer history.Wait()

	rates := services.NewExchangeService(cfg, cache, discord, history)
	discord.SetRatesProvider(rates.GetRates)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if noScheduler, _ := flags.GetBool("no-scheduler"); !noScheduler {
		scheduler, err := services.NewScheduler()
		if err != nil {
			return err
		}
		if err := scheduler.Start(ctx, rates, cfg.RatesRefreshDuration()); err != nil {
			return err
		}
		defer scheduler.Stop()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Chain(cfg.Server.AllowedOrigins, utils.VersionConfig{
		Current:      cfg.Model.Version,
		MinSupported: cfg.Model.MinSupported,
		Deprecated:   cfg.Model.DeprecatedBelow,
	}, handlers.ExchangeRatesPath)...)

	h := handlers.NewHandler(cfg, cache, rates, services.NewLatencyService(history), history, services.NewCurrencyDetector(geo))
	h.Mongo = mongoService
	h.Discord = discord
	h.Register(e)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("HTTP server listening")
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("server exited")
	return nil
}

func newDiscord() (*services.DiscordBotService, error) {
	if !cfg.Discord.Enabled {
		return services.NewDiscordBotService("", "")
	}
	return services.NewDiscordBotService(cfg.Discord.Token, cfg.Discord.ChannelID)
}
