package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"forge/config"
	"forge/logging"
	"forge/models"
	"forge/utils"
)

const (
	SourceUpstream = "exchangerate-api.com"
	SourceFallback = "fallback-static-rates"

	fallbackErrorMessage = "Using fallback rates due to API error"

	// ISO 8601 with milliseconds, matching what the site's clients parse
	timestampLayout = "2006-01-02T15:04:05.000Z07:00"

	maxUpstreamBody = 1 << 20
)

// Static rates served when the upstream API cannot be used.
var fallbackRates = map[models.Currency]float64{
	models.CurrencyUSD: 1.0,
	models.CurrencyGBP: 0.78,
	models.CurrencyEUR: 0.85,
	models.CurrencyCAD: 1.35,
	models.CurrencyAUD: 1.48,
}

// RatesAlerter is notified when the service enters or leaves fallback mode.
type RatesAlerter interface {
	SendRatesFallbackAlert(reason error) error
	SendRatesRecoveredAlert(rates *models.ExchangeRates) error
}

// RatesRecorder persists successful fetches.
type RatesRecorder interface {
	RecordRates(ctx context.Context, snapshot models.RateSnapshot)
}

type ExchangeService struct {
	cfg      *config.Config
	client   *http.Client
	cache    *CacheService
	alerter  RatesAlerter
	recorder RatesRecorder
	log      *zerolog.Logger

	group singleflight.Group

	mu         sync.Mutex
	inFallback bool
	lastError  string

	now func() time.Time
}

func NewExchangeService(cfg *config.Config, cache *CacheService, alerter RatesAlerter, recorder RatesRecorder) *ExchangeService {
	return &ExchangeService{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.UpstreamTimeoutDuration(),
		},
		cache:    cache,
		alerter:  alerter,
		recorder: recorder,
		log:      logging.GetSubsystemLogger("rates"),
		now:      time.Now,
	}
}

// FallbackRates builds the static fallback response.
func FallbackRates(now time.Time) *models.ExchangeRates {
	rates := make(map[models.Currency]float64, len(fallbackRates))
	for c, r := range fallbackRates {
		rates[c] = r
	}
	return &models.ExchangeRates{
		Success:     false,
		Base:        models.CurrencyUSD,
		Rates:       rates,
		LastUpdated: now.UTC().Format(timestampLayout),
		Source:      SourceFallback,
		Error:       fallbackErrorMessage,
	}
}

// GetRates serves cached rates while they are fresh and fetches otherwise.
// Concurrent misses share one upstream request, which outlives any single
// caller giving up. It never fails.
func (s *ExchangeService) GetRates(ctx context.Context) *models.ExchangeRates {
	if s.cache != nil {
		if rates, ok := s.cache.GetRates(); ok {
			return rates
		}
	}

	flightCtx := context.WithoutCancel(ctx)
	v, _, _ := s.group.Do("rates", func() (any, error) {
		return s.FetchRates(flightCtx), nil
	})
	return v.(*models.ExchangeRates)
}

// FetchRates always asks upstream. On failure it returns the fallback
// table; on success the result is cached and recorded. A fetch cut short by
// ctx does not count as an upstream outage.
func (s *ExchangeService) FetchRates(ctx context.Context) *models.ExchangeRates {
	start := s.now()
	rates, err := s.fetchUpstream(ctx)
	ratesFetchDurationSeconds.Observe(time.Since(start).Seconds())

	if err != nil && ctx.Err() != nil {
		ratesFetchTotal.WithLabelValues("cancelled").Inc()
		s.log.Debug().Err(err).Msg("exchange-rate fetch cancelled, serving fallback rates")
		return FallbackRates(s.now())
	}
	if err != nil {
		ratesFetchTotal.WithLabelValues("fallback").Inc()
		s.log.Warn().Err(err).Msg("exchange-rate fetch failed, serving fallback rates")
		s.enterFallback(err)
		return FallbackRates(s.now())
	}

	ratesFetchTotal.WithLabelValues("success").Inc()

	result := &models.ExchangeRates{
		Success:     true,
		Base:        models.CurrencyUSD,
		Rates:       rates,
		LastUpdated: s.now().UTC().Format(timestampLayout),
		Source:      SourceUpstream,
	}

	if s.cache != nil {
		if err := s.cache.SetRates(result, s.cfg.RatesCacheTTLDuration()); err != nil {
			s.log.Warn().Err(err).Msg("failed to cache exchange rates")
		}
	}
	if s.recorder != nil {
		s.recorder.RecordRates(ctx, models.RateSnapshot{
			Timestamp: s.now().UTC(),
			Base:      result.Base,
			Rates:     result.Rates,
			Source:    result.Source,
		})
	}

	s.leaveFallback(result)
	return result
}

// Refresh is the scheduled job body.
func (s *ExchangeService) Refresh(ctx context.Context) {
	rates := s.FetchRates(ctx)
	s.log.Debug().
		Bool("success", rates.Success).
		Str("source", rates.Source).
		Msg("exchange rates refreshed")
}

// InFallback reports whether the last fetch fell back to static rates.
func (s *ExchangeService) InFallback() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFallback
}

// LastError is the reason for the current fallback, if any.
func (s *ExchangeService) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

type upstreamPayload struct {
	Rates map[string]float64 `json:"rates"`
}

// fetchUpstream returns the tracked currencies from the upstream API. Any
// tracked currency the payload lacks takes its fallback value.
func (s *ExchangeService) fetchUpstream(ctx context.Context) (map[models.Currency]float64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.UpstreamTimeoutDuration())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.Upstream.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstreamRequest, err)
	}
	req.Header.Set("User-Agent", s.cfg.Upstream.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstreamRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %d", ErrUpstreamStatus, resp.StatusCode)
	}

	var payload upstreamPayload
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxUpstreamBody)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstreamPayload, err)
	}
	if payload.Rates == nil {
		return nil, fmt.Errorf("%w: missing rates object", ErrUpstreamPayload)
	}

	rates := make(map[models.Currency]float64, len(fallbackRates))
	for _, c := range TrackedCurrencies() {
		r, ok := payload.Rates[string(c)]
		if !ok || r <= 0 || !utils.IsFinite(r) {
			r = fallbackRates[c]
		}
		rates[c] = r
	}
	// the base is USD by construction
	rates[models.CurrencyUSD] = 1.0

	return rates, nil
}

func (s *ExchangeService) enterFallback(reason error) {
	s.mu.Lock()
	entering := !s.inFallback
	s.inFallback = true
	s.lastError = reason.Error()
	s.mu.Unlock()

	ratesFallbackActive.Set(1)
	if entering {
		s.notify(func(a RatesAlerter) error { return a.SendRatesFallbackAlert(reason) })
	}
}

func (s *ExchangeService) leaveFallback(rates *models.ExchangeRates) {
	s.mu.Lock()
	leaving := s.inFallback
	s.inFallback = false
	s.lastError = ""
	s.mu.Unlock()

	ratesFallbackActive.Set(0)
	if leaving {
		s.notify(func(a RatesAlerter) error { return a.SendRatesRecoveredAlert(rates) })
	}
}

// notify sends off the request path; Discord can be slow.
func (s *ExchangeService) notify(send func(RatesAlerter) error) {
	if s.alerter == nil {
		return
	}
	go func() {
		if err := send(s.alerter); err != nil && !errors.Is(err, ErrDiscordDisabled) {
			s.log.Warn().Err(err).Msg("failed to send exchange-rate alert")
		}
	}()
}
