package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/barewire/storefront-orders/internal/catalog"
	"github.com/barewire/storefront-orders/internal/orders"
)

// Placer is the placement orchestrator boundary.
type Placer interface {
	Place(ctx context.Context, req orders.PlaceOrderRequest, caller orders.Identity) (orders.Order, error)
}

// OrderDirectory covers the read/CRUD side of the order repository.
type OrderDirectory interface {
	GetByID(ctx context.Context, id string) (orders.Order, error)
	ListByOwner(ctx context.Context, ownerID string, page, limit int, search string) ([]orders.Order, int, error)
	UpdateStatus(ctx context.Context, id string, to orders.Status) (orders.Order, error)
	Delete(ctx context.Context, id string) error
}

type ProductLister interface {
	List(ctx context.Context) ([]catalog.Product, error)
}

type OrdersHandler struct {
	Placer    Placer
	Directory OrderDirectory
	Products  ProductLister
	Cache     OrderCache
	Log       *zap.Logger
	JWTSecret string
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Route("/api", func(r chi.Router) {
		r.Use(Auth(h.JWTSecret))
		r.Post("/orders", h.placeOrder)
		r.Get("/orders", h.listOrders)
		r.Get("/orders/{id}", h.getOrder)
		r.Put("/orders/{id}/status", h.updateStatus)
		r.Delete("/orders/{id}", h.deleteOrder)
		r.Get("/products", h.listProducts)
	})
}

func (h *OrdersHandler) placeOrder(w http.ResponseWriter, r *http.Request) {
	caller, ok := IdentityFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errBody("unauthorized"))
		return
	}

	var req orders.PlaceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errBody("invalid json"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	// Optional idempotency shortcut; a repeated key replays the original
	// placement's result instead of reserving stock again.
	idemKey := r.Header.Get("X-Idempotency-Key")
	if idemKey != "" {
		if orderID, ok := h.Cache.GetIdempotent(ctx, caller.UserID, idemKey); ok {
			if o, err := h.Directory.GetByID(ctx, orderID); err == nil {
				writeJSON(w, http.StatusOK, body{Data: o, Message: "order already created"})
				return
			}
		}
	}

	o, err := h.Placer.Place(ctx, req, caller)
	if err != nil {
		h.placeError(w, err)
		return
	}

	if idemKey != "" {
		h.Cache.SetIdempotent(ctx, caller.UserID, idemKey, o.ID)
	}
	h.Cache.SetOrder(ctx, o)

	writeJSON(w, http.StatusCreated, body{Data: o, Message: "order created"})
}

func (h *OrdersHandler) placeError(w http.ResponseWriter, err error) {
	var verr *orders.ValidationError
	var nf *catalog.ProductNotFoundError
	var oos *catalog.OutOfStockError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errBody(verr.Error()))
	case errors.As(err, &nf):
		writeJSON(w, http.StatusNotFound, errBody(fmt.Sprintf("product %s not found", nf.ProductID)))
	case errors.As(err, &oos):
		writeJSON(w, http.StatusConflict, errBody(fmt.Sprintf("product %s is out of stock", oos.ProductID)))
	default:
		h.Log.Error("place order failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errBody("failed to create order"))
	}
}

func (h *OrdersHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	caller, ok := IdentityFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errBody("unauthorized"))
		return
	}

	q := r.URL.Query()
	page := atoiDefault(q.Get("page"), 1)
	limit := atoiDefault(q.Get("limit"), 10)
	search := q.Get("search")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	items, total, err := h.Directory.ListByOwner(ctx, caller.UserID, page, limit, search)
	if err != nil {
		h.Log.Error("list orders failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errBody("failed to list orders"))
		return
	}
	if items == nil {
		items = []orders.Order{}
	}
	totalPages := (total + limit - 1) / limit
	writeJSON(w, http.StatusOK, map[string]any{
		"data":       items,
		"message":    "success",
		"page":       page,
		"limit":      limit,
		"total":      total,
		"totalPages": totalPages,
	})
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if uuid.Validate(id) != nil {
		writeJSON(w, http.StatusBadRequest, errBody("invalid order id"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	// cache fast path; the DB stays the source of truth
	if o, ok := h.Cache.GetOrder(ctx, id); ok {
		writeJSON(w, http.StatusOK, body{Data: o, Message: "success"})
		return
	}

	o, err := h.Directory.GetByID(ctx, id)
	if errors.Is(err, orders.ErrOrderNotFound) {
		writeJSON(w, http.StatusNotFound, errBody("order not found"))
		return
	}
	if err != nil {
		h.Log.Error("get order failed", zap.String("order_id", id), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errBody("failed to get order"))
		return
	}
	h.Cache.SetOrder(ctx, o)
	writeJSON(w, http.StatusOK, body{Data: o, Message: "success"})
}

func (h *OrdersHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if uuid.Validate(id) != nil {
		writeJSON(w, http.StatusBadRequest, errBody("invalid order id"))
		return
	}

	var req struct {
		Status orders.Status `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errBody("invalid json"))
		return
	}
	switch req.Status {
	case orders.StatusPending, orders.StatusCompleted, orders.StatusCanceled:
	default:
		writeJSON(w, http.StatusBadRequest, errBody("invalid status"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Directory.UpdateStatus(ctx, id, req.Status)
	var inv *orders.InvalidTransitionError
	switch {
	case errors.Is(err, orders.ErrOrderNotFound):
		writeJSON(w, http.StatusNotFound, errBody("order not found"))
		return
	case errors.As(err, &inv):
		writeJSON(w, http.StatusConflict, errBody(inv.Error()))
		return
	case err != nil:
		h.Log.Error("update status failed", zap.String("order_id", id), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errBody("failed to update order"))
		return
	}

	h.Cache.SetOrder(ctx, o)
	writeJSON(w, http.StatusOK, body{Data: o, Message: "order updated"})
}

func (h *OrdersHandler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if uuid.Validate(id) != nil {
		writeJSON(w, http.StatusBadRequest, errBody("invalid order id"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	err := h.Directory.Delete(ctx, id)
	if errors.Is(err, orders.ErrOrderNotFound) {
		writeJSON(w, http.StatusNotFound, errBody("order not found"))
		return
	}
	if err != nil {
		h.Log.Error("delete order failed", zap.String("order_id", id), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errBody("failed to delete order"))
		return
	}
	h.Cache.DropOrder(ctx, id)
	writeJSON(w, http.StatusOK, body{Data: nil, Message: "order deleted"})
}

func (h *OrdersHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ps, err := h.Products.List(ctx)
	if err != nil {
		h.Log.Error("list products failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errBody("failed to list products"))
		return
	}
	if ps == nil {
		ps = []catalog.Product{}
	}
	writeJSON(w, http.StatusOK, body{Data: ps, Message: "success"})
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}
