package orders

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

type PlaceOrderRequest struct {
	OrderItems []OrderItemInput `json:"orderItems" validate:"required,min=1,dive"`
	GrandTotal int64            `json:"grandTotal" validate:"required,gt=0"`
	Status     Status           `json:"status" validate:"omitempty,oneof=pending completed canceled"`
}

type OrderItemInput struct {
	ProductID string `json:"productId" validate:"required,hexadecimal,len=24"`
	Name      string `json:"name" validate:"required"`
	Price     int64  `json:"price" validate:"required,gt=0"`
	Quantity  int    `json:"quantity" validate:"required,min=1,max=5"`
}

type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	return &Validator{v: validator.New()}
}

// Validate normalizes a placement request into an Order value owned by the
// caller identity. The grand total is recomputed from item price x quantity;
// a client-supplied total that disagrees is rejected rather than trusted.
func (va *Validator) Validate(req PlaceOrderRequest, caller Identity) (Order, error) {
	if caller.UserID == "" {
		return Order{}, &ValidationError{Reason: "missing caller identity"}
	}
	if err := va.v.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
			}
			return Order{}, &ValidationError{Reason: strings.Join(fields, ", ")}
		}
		return Order{}, &ValidationError{Reason: err.Error()}
	}

	var sum int64
	items := make([]OrderItem, 0, len(req.OrderItems))
	for _, it := range req.OrderItems {
		sum += it.Price * int64(it.Quantity)
		items = append(items, OrderItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price,
			Quantity:  it.Quantity,
		})
	}
	if sum != req.GrandTotal {
		return Order{}, &ValidationError{
			Reason: fmt.Sprintf("grandTotal %d does not match item total %d", req.GrandTotal, sum),
		}
	}

	// Status is shape-checked above but not carried over: every placement
	// starts at pending, transitions happen only through explicit updates.
	return Order{
		CreatedBy:  caller.UserID,
		Items:      items,
		GrandTotal: sum,
		Status:     StatusPending,
	}, nil
}
