package queries

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrGetVisibleOrdersQueryIsNotConstructed = errors.New(
	"GetVisibleOrdersQuery must be created via NewGetVisibleOrdersQuery constructor",
)

// GetVisibleOrdersQuery asks for the pending orders a courier should see right now.
// The live variant of the same projection is feed.Projector.
type GetVisibleOrdersQuery struct {
	courier kernel.PhoneNumber
	guard   guard.ConstructorGuard
}

func NewGetVisibleOrdersQuery(courier kernel.PhoneNumber) (GetVisibleOrdersQuery, error) {
	if err := courier.Validate(); err != nil {
		return GetVisibleOrdersQuery{}, err
	}
	return GetVisibleOrdersQuery{courier: courier, guard: guard.NewConstructorGuard()}, nil
}

func (q GetVisibleOrdersQuery) Courier() kernel.PhoneNumber {
	return q.courier
}

func (q GetVisibleOrdersQuery) Validate() error {
	return q.guard.Validate(ErrGetVisibleOrdersQueryIsNotConstructed)
}
