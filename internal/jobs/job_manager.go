package jobs

import (
	"fmt"
	"log/slog"

	"dispatch/internal/core/application/usecases/commands"
)

// JobManager owns the scheduled jobs of the service.
type JobManager struct {
	presence *CourierPresenceJob
}

func NewJobManager(
	markStaleHandler commands.MarkStaleCouriersOfflineCommandHandler,
	presence PresenceSettings,
	logger *slog.Logger,
) *JobManager {
	return &JobManager{
		presence: NewCourierPresenceJob(markStaleHandler, presence, logger),
	}
}

func (jm *JobManager) StartAll() error {
	if err := jm.presence.Start(); err != nil {
		return fmt.Errorf("start courier presence job: %w", err)
	}
	return nil
}

// StopAll blocks until running jobs return.
func (jm *JobManager) StopAll() {
	jm.presence.Stop()
}
