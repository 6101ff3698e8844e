package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/geocoder89/storefront/internal/domain/order"
)

type OrdersRepo struct {
	mu    sync.RWMutex
	order []string
	items map[string]order.Order
}

func NewOrdersRepo() *OrdersRepo {
	return &OrdersRepo{
		items: make(map[string]order.Order),
	}
}

func cloneOrder(o order.Order) order.Order {
	o.Products = slices.Clone(o.Products)
	for i := range o.Products {
		o.Products[i].Product = clone(o.Products[i].Product)
	}
	return o
}

func (r *OrdersRepo) Create(_ context.Context, o order.Order) (order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[o.ID] = cloneOrder(o)
	r.order = append(r.order, o.ID)

	return cloneOrder(o), nil
}

func (r *OrdersRepo) GetByID(_ context.Context, id string) (order.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.items[id]
	if !ok {
		return order.Order{}, order.ErrNotFound
	}
	return cloneOrder(o), nil
}

func (r *OrdersRepo) List(_ context.Context) ([]order.Order, error) {
	return r.list(func(order.Order) bool { return true }), nil
}

func (r *OrdersRepo) ListByBuyer(_ context.Context, buyerID string) ([]order.Order, error) {
	return r.list(func(o order.Order) bool { return o.BuyerID == buyerID }), nil
}

func (r *OrdersRepo) list(keep func(order.Order) bool) []order.Order {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]order.Order, 0, len(r.order))
	for _, id := range r.order {
		if o := r.items[id]; keep(o) {
			out = append(out, cloneOrder(o))
		}
	}
	return out
}

// SetStatus overwrites the status unconditionally.
func (r *OrdersRepo) SetStatus(_ context.Context, id string, status order.Status) (order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.items[id]
	if !ok {
		return order.Order{}, order.ErrNotFound
	}

	o.Status = status
	r.items[id] = o

	return cloneOrder(o), nil
}
