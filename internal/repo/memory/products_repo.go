package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/geocoder89/storefront/internal/domain/product"
)

type ProductsRepo struct {
	mu    sync.RWMutex
	order []string
	items map[string]product.Product
}

func NewProductsRepo() *ProductsRepo {
	return &ProductsRepo{
		items: make(map[string]product.Product),
	}
}

// clone detaches the slices so callers never alias stored state.
func clone(p product.Product) product.Product {
	p.Images = slices.Clone(p.Images)
	p.Ratings = slices.Clone(p.Ratings)
	if p.Images == nil {
		p.Images = []string{}
	}
	if p.Ratings == nil {
		p.Ratings = []product.Rating{}
	}
	return p
}

func (r *ProductsRepo) Create(_ context.Context, p product.Product) (product.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[p.ID] = clone(p)
	r.order = append(r.order, p.ID)

	return clone(p), nil
}

func (r *ProductsRepo) GetByID(_ context.Context, id string) (product.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.items[id]
	if !ok {
		return product.Product{}, product.ErrNotFound
	}
	return clone(p), nil
}

// List returns matches in insertion order.
func (r *ProductsRepo) List(_ context.Context, filter product.ListFilter) ([]product.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]product.Product, 0, len(r.order))
	for _, id := range r.order {
		p := r.items[id]
		if filter.Matches(p) {
			out = append(out, clone(p))
		}
	}
	return out, nil
}

func (r *ProductsRepo) Delete(_ context.Context, id string) (product.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.items[id]
	if !ok {
		return product.Product{}, product.ErrNotFound
	}

	delete(r.items, id)
	r.order = slices.DeleteFunc(r.order, func(v string) bool { return v == id })

	return p, nil
}

func (r *ProductsRepo) Rate(_ context.Context, id, userID string, value float64) (product.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.items[id]
	if !ok {
		return product.Product{}, product.ErrNotFound
	}

	p = clone(p)
	if err := product.Rate(&p, userID, value); err != nil {
		return product.Product{}, err
	}
	r.items[id] = p

	return clone(p), nil
}

func (r *ProductsRepo) DecrementStock(_ context.Context, id string, qty int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.items[id]
	if !ok {
		return product.ErrNotFound
	}
	if p.Quantity < qty {
		return product.ErrInsufficientStock
	}

	p.Quantity -= qty
	r.items[id] = p
	return nil
}
