package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"

	"forge/logging"
)

// Scheduler runs periodic background jobs such as the exchange-rate refresh
type Scheduler struct {
	scheduler gocron.Scheduler
	log       *zerolog.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
}

func NewScheduler() (*Scheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	return &Scheduler{
		scheduler: scheduler,
		log:       logging.GetSubsystemLogger("scheduler"),
	}, nil
}

// Start schedules the rate refresh every interval and triggers one run
// immediately so the cache is warm before the first request.
func (s *Scheduler) Start(ctx context.Context, rates *ExchangeService, interval time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler is already running")
	}

	ctx, cancel := context.WithCancel(ctx)

	_, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			rates.Refresh(ctx)
		}),
		gocron.WithName("exchange-rate-refresh"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		cancel()
		return fmt.Errorf("failed to create rate refresh job: %w", err)
	}

	s.scheduler.Start()
	s.running = true
	s.cancel = cancel

	s.log.Info().Dur("interval", interval).Msg("exchange-rate refresh scheduled")
	return nil
}

func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return fmt.Errorf("scheduler is not running")
	}

	s.cancel()
	if err := s.scheduler.Shutdown(); err != nil {
		return fmt.Errorf("failed to stop scheduler: %w", err)
	}

	s.running = false
	return nil
}

func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// JobCount reports how many jobs are registered.
func (s *Scheduler) JobCount() int {
	return len(s.scheduler.Jobs())
}
