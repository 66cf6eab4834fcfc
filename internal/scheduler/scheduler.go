// Package scheduler runs periodic in-process maintenance: sweeping idle
// rate-gate entries and expired dialogue sessions so the shared maps stay
// bounded.
package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

type Scheduler struct {
	cron *cron.Cron
	log  zerolog.Logger
}

func New(logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithLocation(time.UTC)),
		log:  logger.With().Str("component", "scheduler").Logger(),
	}
}

// AddSweep registers fn to run on the cron spec (e.g. "@every 10m").
// fn returns the number of entries it dropped.
func (s *Scheduler) AddSweep(spec, name string, fn func() int) error {
	_, err := s.cron.AddFunc(spec, func() {
		if n := fn(); n > 0 {
			s.log.Debug().Str("sweep", name).Int("dropped", n).Msg("sweep completed")
		}
	})
	return err
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Msg("scheduler started")
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("scheduler stopped")
}
