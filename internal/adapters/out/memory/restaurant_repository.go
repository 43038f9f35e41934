package memory

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/restaurant"
	"dispatch/internal/pkg/errs"
)

type restaurantRepository struct {
	uow *UnitOfWork
}

func (r *restaurantRepository) Get(ctx context.Context, id kernel.UUID) (*restaurant.Restaurant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.uow.inTx() {
		if rest, ok := r.uow.staged.restaurants[id]; ok {
			return rest, nil
		}
	}

	s := r.uow.store
	s.mu.Lock()
	defer s.mu.Unlock()

	rest, ok := s.restaurants[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("restaurant", id.String())
	}
	return rest, nil
}

// Save keeps the pointer; restaurants have no mutators.
func (r *restaurantRepository) Save(ctx context.Context, rest *restaurant.Restaurant) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := rest.Validate(); err != nil {
		return err
	}
	return r.uow.write(func(c *changes) {
		c.restaurants[rest.ID()] = rest
	})
}
