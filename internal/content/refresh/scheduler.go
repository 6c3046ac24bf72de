// Package refresh keeps the result cache warm for the current content ref.
package refresh

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/folio-studio/folio-web/internal/content"
)

const DefaultWarmTimeout = 30 * time.Second

// Gateway is satisfied by *content.Client.
type Gateway interface {
	Connect(ctx context.Context) (*content.API, error)
}

type Scheduler struct {
	gateway Gateway
	timeout time.Duration
	logger  *zap.Logger
	cron    *cron.Cron
}

func NewScheduler(gateway Gateway, timeout time.Duration, logger *zap.Logger) *Scheduler {
	if timeout <= 0 {
		timeout = DefaultWarmTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{gateway: gateway, timeout: timeout, logger: logger}
}

// Start registers the warm job on a six-field cron schedule (seconds first)
// and starts the scheduler. Overlapping runs are skipped.
func (s *Scheduler) Start(schedule string) error {
	c := cron.New(
		cron.WithSeconds(),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)

	_, err := c.AddFunc(schedule, s.run)
	if err != nil {
		return fmt.Errorf("schedule cache refresh %q: %w", schedule, err)
	}

	s.cron = c
	c.Start()
	s.logger.Info("cache refresh scheduled", zap.String("schedule", schedule))
	return nil
}

// Stop halts the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	n, err := s.Warm(ctx)
	if err != nil {
		s.logger.Warn("cache refresh failed", zap.Error(err))
		return
	}
	s.logger.Info("cache refreshed", zap.Int("entries", n), zap.Duration("took", time.Since(start)))
}

// Warm runs the same query a page request makes, which stores the result for
// the current ref. It returns the number of entries fetched.
func (s *Scheduler) Warm(ctx context.Context) (int, error) {
	api, err := s.gateway.Connect(ctx)
	if err != nil {
		return 0, fmt.Errorf("warm: %w", err)
	}
	entries, err := api.Entries(ctx)
	if err != nil {
		return 0, fmt.Errorf("warm: %w", err)
	}
	return len(entries), nil
}
