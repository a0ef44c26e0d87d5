package session

import (
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Janitor periodically sweeps abandoned expired tokens from a Manager.
type Janitor struct {
	cron   *cron.Cron
	logger *slog.Logger
}

// NewJanitor schedules manager.Sweep on the given cron expression (e.g. "@hourly").
func NewJanitor(manager *Manager, schedule string, logger *slog.Logger) (*Janitor, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		if removed := manager.Sweep(); removed > 0 {
			logger.Debug("swept expired sessions", "removed", removed)
		}
	})
	if err != nil {
		return nil, err
	}
	return &Janitor{cron: c, logger: logger}, nil
}

// Start begins the sweep schedule.
func (j *Janitor) Start() { j.cron.Start() }

// Stop halts the schedule and waits for a running sweep to finish.
func (j *Janitor) Stop() {
	ctx := j.cron.Stop()
	<-ctx.Done()
}
