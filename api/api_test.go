package api_test

import (
	"testing"

	"dispatch/api"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	doc, err := api.Load(t.Context())
	require.NoError(t, err)

	operations := map[string]string{}
	for path, item := range doc.Paths.Map() {
		for method, op := range item.Operations() {
			operations[op.OperationID] = method + " " + path
		}
	}

	assert.Equal(t, map[string]string{
		"GetOnlineCouriers":     "GET /api/v1/couriers/online",
		"UpdateCourierLocation": "PUT /api/v1/couriers/{phone}/location",
		"GetVisibleOrders":      "GET /api/v1/couriers/{phone}/orders/visible",
		"StreamVisibleOrders":   "GET /api/v1/couriers/{phone}/orders/visible/stream",
		"GetActiveOrders":       "GET /api/v1/couriers/{phone}/orders/active",
		"CreateOrder":           "POST /api/v1/orders",
		"GetOrder":              "GET /api/v1/orders/{orderId}",
		"ClaimOrder":            "POST /api/v1/orders/{orderId}/claim",
		"StartDelivering":       "POST /api/v1/orders/{orderId}/delivering",
		"MarkDelivered":         "POST /api/v1/orders/{orderId}/delivered",
		"CancelOrder":           "POST /api/v1/orders/{orderId}/cancel",
	}, operations)
}
