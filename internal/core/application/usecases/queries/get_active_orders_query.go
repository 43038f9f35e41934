package queries

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrGetActiveOrdersQueryIsNotConstructed = errors.New(
	"GetActiveOrdersQuery must be created via NewGetActiveOrdersQuery constructor",
)

// GetActiveOrdersQuery lists the orders a courier is currently working on.
type GetActiveOrdersQuery struct {
	courier kernel.PhoneNumber
	guard   guard.ConstructorGuard
}

func NewGetActiveOrdersQuery(courier kernel.PhoneNumber) (GetActiveOrdersQuery, error) {
	if err := courier.Validate(); err != nil {
		return GetActiveOrdersQuery{}, err
	}
	return GetActiveOrdersQuery{courier: courier, guard: guard.NewConstructorGuard()}, nil
}

func (q GetActiveOrdersQuery) Courier() kernel.PhoneNumber {
	return q.courier
}

func (q GetActiveOrdersQuery) Validate() error {
	return q.guard.Validate(ErrGetActiveOrdersQueryIsNotConstructed)
}
