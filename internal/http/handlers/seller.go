package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/storefront/internal/domain/order"
	"github.com/geocoder89/storefront/internal/domain/product"
	"github.com/geocoder89/storefront/internal/http/middlewares"
	"github.com/geocoder89/storefront/internal/notifications"
	"github.com/geocoder89/storefront/internal/observability"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/singleflight"
)

type OrderStore interface {
	Create(ctx context.Context, o order.Order) (order.Order, error)
	GetByID(ctx context.Context, id string) (order.Order, error)
	List(ctx context.Context) ([]order.Order, error)
	ListByBuyer(ctx context.Context, buyerID string) ([]order.Order, error)
	SetStatus(ctx context.Context, id string, status order.Status) (order.Order, error)
}

type SellerHandler struct {
	products CatalogStore
	orders   OrderStore
	cache    AnalyticsCache
	notifier notifications.Notifier
	metrics  *observability.Prom
	flight   singleflight.Group
}

// NewSellerHandler accepts a nil cache (analytics computed every time) and a nil notifier.
func NewSellerHandler(products CatalogStore, orders OrderStore, cache AnalyticsCache, notifier notifications.Notifier) *SellerHandler {
	return &SellerHandler{
		products: products,
		orders:   orders,
		cache:    cache,
		notifier: notifier,
	}
}

func (h *SellerHandler) WithMetrics(p *observability.Prom) *SellerHandler {
	h.metrics = p
	return h
}

func (h *SellerHandler) AddProduct(ctx *gin.Context) {
	var req product.CreateProductRequest

	if !BindJSON(ctx, &req) {
		return
	}

	seller, _ := middlewares.UserFromContext(ctx)

	p, err := h.products.Create(ctx.Request.Context(), product.NewFromCreateRequest(req, seller.ID))
	if err != nil {
		RespondInternal(ctx, "Could not add product", err)
		return
	}

	ctx.JSON(http.StatusOK, p)
}

func (h *SellerHandler) GetProducts(ctx *gin.Context) {
	products, err := h.products.List(ctx.Request.Context(), product.ListFilter{})
	if err != nil {
		RespondInternal(ctx, "Could not list products", err)
		return
	}

	ctx.JSON(http.StatusOK, products)
}

func (h *SellerHandler) DeleteProduct(ctx *gin.Context) {
	var req product.DeleteRequest

	if !BindJSON(ctx, &req) {
		return
	}

	p, err := h.products.Delete(ctx.Request.Context(), req.ID)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			RespondNotFound(ctx, "product_not_found", "Product not found")
			return
		}

		RespondInternal(ctx, "Could not delete product", err)
		return
	}

	ctx.JSON(http.StatusOK, p)
}

func (h *SellerHandler) GetOrders(ctx *gin.Context) {
	orders, err := h.orders.List(ctx.Request.Context())
	if err != nil {
		RespondInternal(ctx, "Could not list orders", err)
		return
	}

	ctx.JSON(http.StatusOK, orders)
}

// ChangeOrderStatus overwrites the status with any known value.
func (h *SellerHandler) ChangeOrderStatus(ctx *gin.Context) {
	var req order.UpdateStatusRequest

	if !BindJSON(ctx, &req) {
		return
	}

	status, err := order.ParseStatus(req.Status)
	if err != nil {
		RespondValidation(ctx, "invalid_status", "Status must be a non-empty label of at most 32 characters")
		return
	}

	o, err := h.orders.SetStatus(ctx.Request.Context(), req.ID, status)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			RespondNotFound(ctx, "order_not_found", "Order not found")
			return
		}

		RespondInternal(ctx, "Could not update order", err)
		return
	}

	invalidateAnalytics(ctx.Request.Context(), h.cache)
	h.notify(ctx.Request.Context(), o)

	ctx.JSON(http.StatusOK, o)
}

// notify is best effort: the seller's update already succeeded.
func (h *SellerHandler) notify(ctx context.Context, o order.Order) {
	if h.notifier == nil {
		return
	}

	err := h.notifier.NotifyOrderStatus(ctx, notifications.OrderStatusChanged{
		OrderID:    o.ID,
		BuyerID:    o.BuyerID,
		Status:     string(o.Status),
		TotalPrice: o.TotalPrice,
		ChangedAt:  time.Now().UTC(),
	})
	if err != nil {
		slog.WarnContext(ctx, "order status notification failed", "err", err, "order_id", o.ID)
	}
}

func (h *SellerHandler) Analytics(ctx *gin.Context) {
	reqCtx := ctx.Request.Context()

	if h.cache != nil {
		cached, ok, err := h.cache.Get(reqCtx, analyticsCacheKey)
		switch {
		case err != nil:
			h.metrics.AnalyticsCacheLookup("error")
			slog.WarnContext(reqCtx, "analytics cache read failed", "err", err)
		case ok:
			h.metrics.AnalyticsCacheLookup("hit")
		default:
			h.metrics.AnalyticsCacheLookup("miss")
		}
		if ok {
			ctx.Header("X-Cache", "HIT")
			ctx.Data(http.StatusOK, "application/json; charset=utf-8", cached)
			return
		}
	}

	// concurrent misses share one computation; it outlives the caller that started it
	v, err, _ := h.flight.Do(analyticsCacheKey, func() (interface{}, error) {
		flightCtx, cancel := context.WithTimeout(context.WithoutCancel(reqCtx), analyticsComputeTimeout)
		defer cancel()
		return h.computeAnalytics(flightCtx)
	})
	if err != nil {
		RespondInternal(ctx, "Could not compute analytics", err)
		return
	}

	ctx.Header("X-Cache", "MISS")
	ctx.Data(http.StatusOK, "application/json; charset=utf-8", v.([]byte))
}

func (h *SellerHandler) computeAnalytics(ctx context.Context) ([]byte, error) {
	orders, err := h.orders.List(ctx)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(order.ComputeEarnings(orders))
	if err != nil {
		return nil, err
	}

	if h.cache != nil {
		if err := h.cache.Set(ctx, analyticsCacheKey, body); err != nil {
			slog.WarnContext(ctx, "analytics cache write failed", "err", err)
		}
	}
	return body, nil
}
