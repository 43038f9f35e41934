package order

import (
	"fmt"
	"strings"

	"dispatch/internal/pkg/errs"
)

// ProductLine is one entry of an order: a menu item reference and a quantity.
type ProductLine struct {
	productID string
	count     int
}

func NewProductLine(productID string, count int) (ProductLine, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return ProductLine{}, errs.NewValueIsRequiredError("product id")
	}
	if count <= 0 {
		return ProductLine{}, errs.NewValueIsInvalidErrorWithCause("count is invalid", fmt.Errorf("%d is not greater than 0", count))
	}
	return ProductLine{productID: productID, count: count}, nil
}

func (p ProductLine) ProductID() string {
	return p.productID
}

func (p ProductLine) Count() int {
	return p.count
}
