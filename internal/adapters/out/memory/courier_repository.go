package memory

import (
	"context"
	"slices"
	"strings"
	"time"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

type courierRepository struct {
	uow *UnitOfWork
}

func (r *courierRepository) Get(ctx context.Context, phone kernel.PhoneNumber) (*courier.Courier, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, c := range r.all() {
		if c.Phone().IsEqual(phone) {
			return c, nil
		}
	}
	return nil, errs.NewObjectNotFoundError("courier", phone.String())
}

func (r *courierRepository) Upsert(ctx context.Context, c *courier.Courier) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.Validate(); err != nil {
		return err
	}
	stored, err := cloneCourier(c)
	if err != nil {
		return err
	}
	return r.uow.write(func(ch *changes) {
		ch.couriers[c.Phone().String()] = stored
	})
}

func (r *courierRepository) FindOnline(ctx context.Context) ([]*courier.Courier, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return slices.DeleteFunc(r.all(), func(c *courier.Courier) bool {
		return !c.IsOnline()
	}), nil
}

func (r *courierRepository) FindStale(ctx context.Context, olderThan time.Time) ([]*courier.Courier, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return slices.DeleteFunc(r.all(), func(c *courier.Courier) bool {
		if !c.IsOnline() {
			return true
		}
		at := c.LocationUpdatedAt()
		return at != nil && !at.Before(olderThan)
	}), nil
}

// all returns clones of every courier, staged writes included, ordered by phone.
func (r *courierRepository) all() []*courier.Courier {
	s := r.uow.store

	s.mu.Lock()
	merged := make(map[string]*courier.Courier, len(s.couriers))
	for phone, c := range s.couriers {
		merged[phone] = c
	}
	s.mu.Unlock()

	if r.uow.inTx() {
		for phone, c := range r.uow.staged.couriers {
			merged[phone] = c
		}
	}

	out := make([]*courier.Courier, 0, len(merged))
	for _, c := range merged {
		if cl, err := cloneCourier(c); err == nil {
			out = append(out, cl)
		}
	}
	slices.SortFunc(out, func(a, b *courier.Courier) int {
		return strings.Compare(a.Phone().String(), b.Phone().String())
	})
	return out
}
