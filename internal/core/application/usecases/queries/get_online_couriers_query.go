package queries

import (
	"errors"

	"dispatch/internal/pkg/guard"
)

var ErrGetOnlineCouriersQueryIsNotConstructed = errors.New(
	"GetOnlineCouriersQuery must be created via NewGetOnlineCouriersQuery constructor",
)

// GetOnlineCouriersQuery lists couriers currently flagged online, for dispatcher monitoring.
type GetOnlineCouriersQuery struct {
	guard guard.ConstructorGuard
}

func NewGetOnlineCouriersQuery() GetOnlineCouriersQuery {
	return GetOnlineCouriersQuery{guard: guard.NewConstructorGuard()}
}

func (q GetOnlineCouriersQuery) Validate() error {
	return q.guard.Validate(ErrGetOnlineCouriersQueryIsNotConstructed)
}
