package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"orgchart/internal/platform/settings"
	"orgchart/internal/refresh"
)

// Scheduler runs the refresh pipeline on the operator-configured daily
// schedule. Restart is safe to call while a refresh is running; the in-flight
// cycle finishes under the pipeline's own single-flight guard.
type Scheduler struct {
	refresher *refresh.Service
	settings  *settings.Store
	cron      *cron.Cron
}

func New(refresher *refresh.Service, settingsStore *settings.Store) *Scheduler {
	return &Scheduler{
		refresher: refresher,
		settings:  settingsStore,
	}
}

// Start reads the persisted settings and registers the daily refresh job.
// When auto update is disabled no job is scheduled.
func (s *Scheduler) Start() error {
	st := s.settings.Load()
	if !st.AutoUpdateEnabled {
		log.Info().Msg("scheduled refresh disabled")
		return nil
	}

	spec, err := cronSpec(st.UpdateTime)
	if err != nil {
		return fmt.Errorf("invalid update time %q: %w", st.UpdateTime, err)
	}

	c := cron.New()
	if _, err := c.AddFunc(spec, s.runRefresh); err != nil {
		return err
	}
	c.Start()
	s.cron = c

	log.Info().Str("update_time", st.UpdateTime).Msg("scheduled daily refresh")
	return nil
}

// Stop halts the schedule and waits for a running job invocation to return.
func (s *Scheduler) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	s.cron = nil
}

// Restart reloads the schedule from settings. Used after a settings update
// changes the update time or the auto-update toggle.
func (s *Scheduler) Restart() error {
	s.Stop()
	return s.Start()
}

func (s *Scheduler) runRefresh() {
	if err := s.refresher.Run(context.Background()); err != nil {
		if errors.Is(err, refresh.ErrRefreshInFlight) {
			log.Warn().Msg("scheduled refresh skipped; a cycle is already running")
			return
		}
		log.Error().Err(err).Msg("scheduled refresh failed")
	}
}

// cronSpec converts a "HH:MM" wall-clock time into a daily cron expression.
func cronSpec(updateTime string) (string, error) {
	parts := strings.Split(strings.TrimSpace(updateTime), ":")
	if len(parts) != 2 {
		return "", errors.New("expected HH:MM")
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return "", errors.New("hour out of range")
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return "", errors.New("minute out of range")
	}

	return fmt.Sprintf("%d %d * * *", minute, hour), nil
}
