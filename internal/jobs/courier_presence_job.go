package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"dispatch/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

const (
	// DefaultPresenceSchedule runs the sweep every 30 seconds, the interval at which
	// courier apps report their location.
	DefaultPresenceSchedule = "*/30 * * * * *"

	defaultPresenceTimeout = 15 * time.Second
)

// PresenceSettings tunes CourierPresenceJob. Zero fields fall back to defaults.
type PresenceSettings struct {
	Schedule string
	MaxAge   time.Duration
	Timeout  time.Duration
}

// CourierPresenceJob periodically marks couriers offline when they stopped reporting
// their location.
type CourierPresenceJob struct {
	handler  commands.MarkStaleCouriersOfflineCommandHandler
	settings PresenceSettings
	cron     *cron.Cron
	logger   *slog.Logger
}

// NewCourierPresenceJob creates the job. A sweep still running when the next one is
// due causes the next one to be skipped.
func NewCourierPresenceJob(
	handler commands.MarkStaleCouriersOfflineCommandHandler,
	settings PresenceSettings,
	logger *slog.Logger,
) *CourierPresenceJob {
	if settings.Schedule == "" {
		settings.Schedule = DefaultPresenceSchedule
	}
	if settings.MaxAge <= 0 {
		settings.MaxAge = commands.DefaultLocationMaxAge
	}
	if settings.Timeout <= 0 {
		settings.Timeout = defaultPresenceTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CourierPresenceJob{
		handler:  handler,
		settings: settings,
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		logger: logger.With("component", "courier_presence_job"),
	}
}

// Start schedules the sweep.
func (j *CourierPresenceJob) Start() error {
	cmd, err := commands.NewMarkStaleCouriersOfflineCommand(j.settings.MaxAge)
	if err != nil {
		return err
	}

	if _, err = j.cron.AddFunc(j.settings.Schedule, func() {
		j.run(context.Background(), cmd)
	}); err != nil {
		return fmt.Errorf("schedule %q: %w", j.settings.Schedule, err)
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Courier presence job started",
		"schedule", j.settings.Schedule,
		"max_age", j.settings.MaxAge)
	return nil
}

// Stop stops scheduling and waits for a running sweep to finish.
func (j *CourierPresenceJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Courier presence job stopped")
}

func (j *CourierPresenceJob) run(ctx context.Context, cmd commands.MarkStaleCouriersOfflineCommand) {
	ctx, cancel := context.WithTimeout(ctx, j.settings.Timeout)
	defer cancel()

	marked, err := j.handler.Handle(ctx, cmd)
	if err != nil {
		j.logger.ErrorContext(ctx, "Courier presence job failed", "error", err)
		return
	}
	if marked > 0 {
		j.logger.InfoContext(ctx, "Couriers marked offline", "count", marked)
	}
}
