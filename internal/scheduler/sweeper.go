// internal/scheduler/sweeper.go
package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"cardvault/internal/service"

	"github.com/robfig/cron/v3"
)

// Sweeper periodically forces stale cards into the EXPIRED stored
// status. Failures are logged and never abort the process: the sweep is
// idempotent, so the next scheduled run retries naturally.
type Sweeper struct {
	cards    service.CardService
	logger   *slog.Logger
	schedule string
	cron     *cron.Cron
}

// NewSweeper creates a Sweeper with a standard 5-field cron schedule.
func NewSweeper(cards service.CardService, logger *slog.Logger, schedule string) *Sweeper {
	return &Sweeper{
		cards:    cards,
		logger:   logger,
		schedule: schedule,
		cron:     cron.New(),
	}
}

// Start registers the sweep job and starts the cron scheduler.
func (s *Sweeper) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.Run); err != nil {
		return fmt.Errorf("failed to schedule expiration sweep: %w", err)
	}
	s.cron.Start()
	s.logger.Info("Expiration sweeper started", "schedule", s.schedule)
	return nil
}

// Run executes one sweep. Exported so the job can also be triggered on
// demand.
func (s *Sweeper) Run() {
	s.logger.Info("Starting expired cards status update")
	updated, err := s.cards.SweepExpired(context.Background())
	if err != nil {
		s.logger.Error("Error updating expired cards", "error", err)
		return
	}
	s.logger.Info("Expired cards status update completed", "updated", updated)
}

// Stop stops the cron scheduler, waiting for a running sweep to finish.
func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Expiration sweeper stopped")
}
