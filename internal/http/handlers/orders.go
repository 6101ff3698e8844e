package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/geocoder89/storefront/internal/domain/order"
	"github.com/geocoder89/storefront/internal/domain/product"
	"github.com/geocoder89/storefront/internal/http/middlewares"
	"github.com/geocoder89/storefront/internal/observability"
	"github.com/gin-gonic/gin"
)

type StockStore interface {
	GetByID(ctx context.Context, id string) (product.Product, error)
	DecrementStock(ctx context.Context, id string, qty int) error
}

type OrdersHandler struct {
	products StockStore
	orders   OrderStore
	cache    AnalyticsCache
	metrics  *observability.Prom
}

func NewOrdersHandler(products StockStore, orders OrderStore, cache AnalyticsCache) *OrdersHandler {
	return &OrdersHandler{products: products, orders: orders, cache: cache}
}

func (h *OrdersHandler) WithMetrics(p *observability.Prom) *OrdersHandler {
	h.metrics = p
	return h
}

// PlaceOrder snapshots each product at its current price, takes the stock, and stores
// a pending order. Repeated product ids are merged into one line.
func (h *OrdersHandler) PlaceOrder(ctx *gin.Context) {
	var req order.PlaceOrderRequest

	if !BindJSON(ctx, &req) {
		return
	}

	reqCtx := ctx.Request.Context()
	items := mergeItems(req.Items)

	lines := make([]order.LineItem, 0, len(items))
	for _, item := range items {
		p, err := h.products.GetByID(reqCtx, item.ProductID)
		if err != nil {
			if errors.Is(err, product.ErrNotFound) {
				RespondNotFound(ctx, "product_not_found", "Product "+item.ProductID+" not found")
				return
			}

			RespondInternal(ctx, "Could not place order", err)
			return
		}

		if p.Quantity < item.Quantity {
			RespondConflict(ctx, "insufficient_stock", p.Name+" is out of stock!")
			return
		}

		lines = append(lines, order.LineItem{Product: p, Quantity: item.Quantity})
	}

	for _, line := range lines {
		err := h.products.DecrementStock(reqCtx, line.Product.ID, line.Quantity)
		if err != nil {
			switch {
			case errors.Is(err, product.ErrInsufficientStock):
				RespondConflict(ctx, "insufficient_stock", line.Product.Name+" is out of stock!")
			case errors.Is(err, product.ErrNotFound):
				RespondNotFound(ctx, "product_not_found", "Product "+line.Product.ID+" not found")
			default:
				RespondInternal(ctx, "Could not place order", err)
			}
			return
		}
	}

	buyerID, _ := middlewares.UserIDFromContext(ctx)

	o, err := order.New(buyerID, req.Address, lines)
	if err != nil {
		RespondValidation(ctx, "empty_order", "Order has no items")
		return
	}

	created, err := h.orders.Create(reqCtx, o)
	if err != nil {
		RespondInternal(ctx, "Could not place order", err)
		return
	}

	invalidateAnalytics(reqCtx, h.cache)
	h.metrics.OrderPlaced()

	ctx.JSON(http.StatusOK, created)
}

func (h *OrdersHandler) MyOrders(ctx *gin.Context) {
	buyerID, _ := middlewares.UserIDFromContext(ctx)

	orders, err := h.orders.ListByBuyer(ctx.Request.Context(), buyerID)
	if err != nil {
		RespondInternal(ctx, "Could not list orders", err)
		return
	}

	ctx.JSON(http.StatusOK, orders)
}

func mergeItems(items []order.ItemRequest) []order.ItemRequest {
	index := make(map[string]int, len(items))
	out := make([]order.ItemRequest, 0, len(items))

	for _, it := range items {
		if i, ok := index[it.ProductID]; ok {
			out[i].Quantity += it.Quantity
			continue
		}
		index[it.ProductID] = len(out)
		out = append(out, it)
	}
	return out
}
