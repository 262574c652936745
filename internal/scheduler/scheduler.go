// Package scheduler runs the periodic TTL sweep. TTL expiry otherwise
// only happens lazily on load, so an idle process would keep expired
// conversation turns on disk indefinitely.
package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

type Scheduler struct {
	cron      *cron.Cron
	ctx       context.Context
	cancel    context.CancelFunc
	sweepFunc func(ctx context.Context) error
}

func New() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		ctx:    ctx,
		cancel: cancel,
	}
}

// SetSweepFunction sets the function invoked on each sweep tick.
func (s *Scheduler) SetSweepFunction(f func(ctx context.Context) error) {
	s.sweepFunc = f
}

// Start registers the sweep on the given cron schedule (e.g.
// "@every 1h") and starts the scheduler.
func (s *Scheduler) Start(schedule string) error {
	if s.sweepFunc == nil {
		log.Println("⚠️ Sweep function not set, scheduler will not run sweeps")
		return nil
	}

	_, err := s.cron.AddFunc(schedule, func() {
		log.Println("🕘 Triggered TTL sweep")
		if err := s.sweepFunc(s.ctx); err != nil {
			log.Printf("❌ TTL sweep failed: %v", err)
		}
	})

	if err != nil {
		return err
	}

	s.cron.Start()
	log.Printf("📅 Scheduler started - TTL sweep runs on schedule %q", schedule)
	return nil
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
	if s.cancel != nil {
		s.cancel()
	}
	log.Println("📅 Scheduler stopped")
}

func (s *Scheduler) IsRunning() bool {
	return s.cron != nil && len(s.cron.Entries()) > 0
}
