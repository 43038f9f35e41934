package commands

import (
	"errors"
	"time"

	"dispatch/internal/pkg/guard"
)

var (
	ErrMarkStaleCouriersOfflineCommandIsNotConstructed = errors.New(
		"MarkStaleCouriersOfflineCommand must be created via NewMarkStaleCouriersOfflineCommand constructor",
	)
	ErrMaxAgeIsInvalid = errors.New("max age must be greater than 0")
)

// MarkStaleCouriersOfflineCommand sweeps couriers that stopped reporting their location.
type MarkStaleCouriersOfflineCommand struct {
	maxAge time.Duration
	guard  guard.ConstructorGuard
}

// NewMarkStaleCouriersOfflineCommand requires a positive maxAge.
func NewMarkStaleCouriersOfflineCommand(maxAge time.Duration) (MarkStaleCouriersOfflineCommand, error) {
	if maxAge <= 0 {
		return MarkStaleCouriersOfflineCommand{}, ErrMaxAgeIsInvalid
	}
	return MarkStaleCouriersOfflineCommand{maxAge: maxAge, guard: guard.NewConstructorGuard()}, nil
}

func (c MarkStaleCouriersOfflineCommand) MaxAge() time.Duration {
	return c.maxAge
}

func (c MarkStaleCouriersOfflineCommand) Validate() error {
	return c.guard.Validate(ErrMarkStaleCouriersOfflineCommandIsNotConstructed)
}
