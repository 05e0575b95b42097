package orders

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/barewire/storefront-orders/internal/catalog"
	"github.com/barewire/storefront-orders/internal/metrics"
)

// Ledger is the stock-ledger boundary. Reserve atomically decrements
// available quantity or fails with catalog.ProductNotFoundError /
// catalog.OutOfStockError; Restore reverses a prior reservation.
type Ledger interface {
	Reserve(ctx context.Context, productID string, qty int) error
	Restore(ctx context.Context, productID string, qty int) error
}

// OrderStore is the slice of the order repository the placement path needs.
type OrderStore interface {
	Create(ctx context.Context, o *Order) error
}

// Notifier receives the finalized order and the owner's contact identity.
// Implementations must not block placement on delivery.
type Notifier interface {
	OrderConfirmation(ctx context.Context, recipient Identity, o Order) error
}

// Service coordinates one placement: validation, sequential per-item stock
// reservation, order persistence and the confirmation trigger.
type Service struct {
	Ledger    Ledger
	Store     OrderStore
	Notifier  Notifier
	Validator *Validator
	Log       *zap.Logger
}

type reservation struct {
	productID string
	qty       int
}

// Place runs the placement workflow for one request.
//
// Items are reserved strictly in submission order. If any reservation fails,
// reservations already taken in this call are restored in reverse order
// before the error is returned, so a rejected placement leaves stock exactly
// as it found it. A storage failure after all reservations succeeded is the
// one state this cannot undo; it is logged with every decremented product
// for manual reconciliation.
func (s *Service) Place(ctx context.Context, req PlaceOrderRequest, caller Identity) (Order, error) {
	o, err := s.Validator.Validate(req, caller)
	if err != nil {
		metrics.PlacementsTotal.WithLabelValues("validation_error").Inc()
		return Order{}, err
	}

	// A caller disconnect must not strand a half-reserved placement; from
	// here the operation runs to completion.
	ctx = context.WithoutCancel(ctx)

	var reserved []reservation
	for _, it := range o.Items {
		if err := s.Ledger.Reserve(ctx, it.ProductID, it.Quantity); err != nil {
			s.compensate(ctx, reserved)
			metrics.PlacementsTotal.WithLabelValues(reserveResult(err)).Inc()
			return Order{}, err
		}
		reserved = append(reserved, reservation{productID: it.ProductID, qty: it.Quantity})
	}

	if err := s.Store.Create(ctx, &o); err != nil {
		// Stock is already decremented with no order to show for it.
		// Surface distinctly and leave a reconciliation trail.
		fields := []zap.Field{
			zap.String("created_by", o.CreatedBy),
			zap.Int64("grand_total", o.GrandTotal),
			zap.Error(err),
		}
		for _, r := range reserved {
			fields = append(fields, zap.Int("decremented."+r.productID, r.qty))
		}
		s.Log.Error("order persistence failed after stock reservation; manual reconciliation required", fields...)
		metrics.PlacementsTotal.WithLabelValues("persistence_error").Inc()
		metrics.ReconcileNeededTotal.Inc()
		return Order{}, &PersistenceError{Err: err}
	}

	if err := s.Notifier.OrderConfirmation(ctx, caller, o); err != nil {
		s.Log.Warn("confirmation trigger failed",
			zap.String("order_id", o.ID), zap.Error(err))
	}

	metrics.PlacementsTotal.WithLabelValues("ok").Inc()
	return o, nil
}

func (s *Service) compensate(ctx context.Context, reserved []reservation) {
	for i := len(reserved) - 1; i >= 0; i-- {
		r := reserved[i]
		if err := s.Ledger.Restore(ctx, r.productID, r.qty); err != nil {
			s.Log.Error("stock restore failed; manual reconciliation required",
				zap.String("product_id", r.productID),
				zap.Int("qty", r.qty),
				zap.Error(err))
			continue
		}
		metrics.CompensationsTotal.Inc()
	}
}

func reserveResult(err error) string {
	var nf *catalog.ProductNotFoundError
	var oos *catalog.OutOfStockError
	switch {
	case errors.As(err, &nf):
		return "product_not_found"
	case errors.As(err, &oos):
		return "out_of_stock"
	default:
		return "reserve_error"
	}
}
