// Package sampler drives background compute cycles on a cron schedule so
// candles keep accumulating without inbound traffic.
package sampler

import (
	"fmt"

	"github.com/robfig/cron/v3"

	"tc.com/unit-oracle/pkg/logging"
)

// Sampler runs a job on a cron schedule with second resolution.
type Sampler struct {
	cron   *cron.Cron
	logger *logging.Logger
}

// New creates a sampler that runs job on the given schedule
// (e.g. "@every 1s").
func New(schedule string, job func(), logger *logging.Logger) (*Sampler, error) {
	c := cron.New(cron.WithSeconds())
	if _, err := c.AddFunc(schedule, job); err != nil {
		return nil, fmt.Errorf("register sampler job: %w", err)
	}

	return &Sampler{cron: c, logger: logger}, nil
}

// Start starts the schedule.
func (s *Sampler) Start() {
	s.cron.Start()
	s.logger.Info("Sampler started")
}

// Stop stops the schedule gracefully.
func (s *Sampler) Stop() {
	s.cron.Stop()
	s.logger.Info("Sampler stopped")
}
