package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRequest() PlaceOrderRequest {
	return PlaceOrderRequest{
		OrderItems: []OrderItemInput{
			{ProductID: "64f1b2c3d4e5f6a7b8c9d0e1", Name: "Widget", Price: 100, Quantity: 2},
		},
		GrandTotal: 200,
	}
}

func TestValidate_NormalizesOrder(t *testing.T) {
	va := NewValidator()
	id := Identity{UserID: "user-1", Email: "u@example.com"}

	o, err := va.Validate(validRequest(), id)

	require.NoError(t, err)
	assert.Equal(t, "user-1", o.CreatedBy)
	assert.Equal(t, StatusPending, o.Status)
	assert.Equal(t, int64(200), o.GrandTotal)
	require.Len(t, o.Items, 1)
	assert.Equal(t, "64f1b2c3d4e5f6a7b8c9d0e1", o.Items[0].ProductID)
}

func TestValidate_OwnerStampedFromCallerNotBody(t *testing.T) {
	va := NewValidator()
	o, err := va.Validate(validRequest(), Identity{UserID: "real-owner"})
	require.NoError(t, err)
	assert.Equal(t, "real-owner", o.CreatedBy)
}

func TestValidate_Rejections(t *testing.T) {
	va := NewValidator()
	id := Identity{UserID: "user-1"}

	tests := []struct {
		name   string
		mutate func(*PlaceOrderRequest)
	}{
		{"no items", func(r *PlaceOrderRequest) { r.OrderItems = nil }},
		{"quantity zero", func(r *PlaceOrderRequest) { r.OrderItems[0].Quantity = 0; r.GrandTotal = 0 }},
		{"quantity above five", func(r *PlaceOrderRequest) { r.OrderItems[0].Quantity = 6; r.GrandTotal = 600 }},
		{"negative quantity", func(r *PlaceOrderRequest) { r.OrderItems[0].Quantity = -1; r.GrandTotal = -100 }},
		{"short product id", func(r *PlaceOrderRequest) { r.OrderItems[0].ProductID = "abc123" }},
		{"non-hex product id", func(r *PlaceOrderRequest) { r.OrderItems[0].ProductID = "zzzzzzzzzzzzzzzzzzzzzzzz" }},
		{"missing name", func(r *PlaceOrderRequest) { r.OrderItems[0].Name = "" }},
		{"missing price", func(r *PlaceOrderRequest) { r.OrderItems[0].Price = 0; r.GrandTotal = 0 }},
		{"missing grand total", func(r *PlaceOrderRequest) { r.GrandTotal = 0 }},
		{"grand total mismatch", func(r *PlaceOrderRequest) { r.GrandTotal = 150 }},
		{"unknown status", func(r *PlaceOrderRequest) { r.Status = "shipped" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest()
			tc.mutate(&req)
			_, err := va.Validate(req, id)
			var verr *ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}
}

func TestValidate_MissingIdentity(t *testing.T) {
	va := NewValidator()
	_, err := va.Validate(validRequest(), Identity{})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestValidate_StatusEnumAcceptedButNotCarried(t *testing.T) {
	va := NewValidator()
	req := validRequest()
	req.Status = StatusCompleted

	o, err := va.Validate(req, Identity{UserID: "user-1"})

	require.NoError(t, err)
	assert.Equal(t, StatusPending, o.Status)
}
