package views

import (
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Default sweep settings, used when VIEW_SWEEP_SCHEDULE and VIEW_IDLE_TIMEOUT are not set
const (
	DefaultSweepSchedule = "@every 1m"
	DefaultIdleTimeout   = 30 * time.Minute
)

// Sweeper periodically evicts idle views from a registry
type Sweeper struct {
	registry *Registry
	maxIdle  time.Duration
	cron     *cron.Cron
}

// NewSweeper creates a sweeper evicting views idle for longer than maxIdle
func NewSweeper(registry *Registry, maxIdle time.Duration) *Sweeper {
	return &Sweeper{
		registry: registry,
		maxIdle:  maxIdle,
		cron:     cron.New(),
	}
}

// Start schedules the sweep with a cron spec (such as "@every 1m") and starts running it
func (s *Sweeper) Start(schedule string) error {
	if _, err := s.cron.AddFunc(schedule, s.Sweep); err != nil {
		return fmt.Errorf("invalid sweep schedule '%s': %w", schedule, err)
	}

	s.cron.Start()
	return nil
}

// Stop stops scheduling sweeps and waits for a running one to finish
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}

// Sweep evicts idle views once
func (s *Sweeper) Sweep() {
	if evicted := s.registry.Evict(s.maxIdle); evicted > 0 {
		log.Printf("[VIEWS]: Evicted %d idle views, %d left", evicted, s.registry.Len())
	}
}
