// Package restaurant holds the read-only Restaurant aggregate used to resolve
// order product lines against a menu.
package restaurant

import (
	"errors"
	"strings"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

// UnknownProductTitle is shown for product lines that reference a missing menu item.
const UnknownProductTitle = "unknown product"

var ErrRestaurantIsNotConstructed = errors.New("Restaurant must be created via NewRestaurant constructor")

// MenuItem is one dish a restaurant offers.
type MenuItem struct {
	ID       string
	Title    string
	Price    kernel.Money
	Img      string
	Category string
}

// Restaurant is maintained by an external catalogue. The dispatch core only reads it.
type Restaurant struct {
	id       kernel.UUID
	name     string
	location kernel.Location
	menu     map[string]MenuItem
	order    []string

	isConstructed bool
}

// NewRestaurant builds a restaurant. Duplicate menu ids keep the last entry.
func NewRestaurant(id kernel.UUID, name string, location kernel.Location, menu []MenuItem) (*Restaurant, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, errs.NewValueIsRequiredError("name")
	}

	r := &Restaurant{
		id:            id,
		name:          name,
		location:      location,
		menu:          make(map[string]MenuItem, len(menu)),
		isConstructed: true,
	}
	for _, item := range menu {
		if item.ID == "" {
			return nil, errs.NewValueIsRequiredError("menu item id")
		}
		if _, seen := r.menu[item.ID]; !seen {
			r.order = append(r.order, item.ID)
		}
		r.menu[item.ID] = item
	}
	return r, nil
}

func (r *Restaurant) Validate() error {
	if r == nil || !r.isConstructed {
		return ErrRestaurantIsNotConstructed
	}
	return nil
}

func (r *Restaurant) ID() kernel.UUID {
	return r.id
}

func (r *Restaurant) Name() string {
	return r.name
}

// Location may be unknown.
func (r *Restaurant) Location() kernel.Location {
	return r.location
}

// Menu returns the items in insertion order.
func (r *Restaurant) Menu() []MenuItem {
	items := make([]MenuItem, 0, len(r.order))
	for _, id := range r.order {
		items = append(items, r.menu[id])
	}
	return items
}

// FindMenuItem looks up a product. A miss returns a placeholder titled
// UnknownProductTitle with a zero price and ok == false.
func (r *Restaurant) FindMenuItem(productID string) (MenuItem, bool) {
	item, ok := r.menu[productID]
	if !ok {
		return MenuItem{ID: productID, Title: UnknownProductTitle, Price: kernel.ZeroMoney}, false
	}
	return item, true
}
