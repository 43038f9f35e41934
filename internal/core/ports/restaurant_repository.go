package ports

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/restaurant"
)

// RestaurantRepository reads restaurants maintained by the catalogue.
type RestaurantRepository interface {
	Get(ctx context.Context, id kernel.UUID) (*restaurant.Restaurant, error)

	// Save inserts or replaces a restaurant. Used by catalogue sync and fixtures.
	Save(ctx context.Context, r *restaurant.Restaurant) error
}
