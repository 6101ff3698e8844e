package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/geocoder89/storefront/internal/domain/product"
	"github.com/geocoder89/storefront/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type CatalogStore interface {
	Create(ctx context.Context, p product.Product) (product.Product, error)
	GetByID(ctx context.Context, id string) (product.Product, error)
	List(ctx context.Context, filter product.ListFilter) ([]product.Product, error)
	Delete(ctx context.Context, id string) (product.Product, error)
	Rate(ctx context.Context, id, userID string, value float64) (product.Product, error)
}

type ProductsHandler struct {
	products CatalogStore
}

func NewProductsHandler(products CatalogStore) *ProductsHandler {
	return &ProductsHandler{products: products}
}

// ListProducts filters by ?category=; an empty value lists everything.
func (h *ProductsHandler) ListProducts(ctx *gin.Context) {
	filter := product.ListFilter{
		Category: product.Category(strings.TrimSpace(ctx.Query("category"))),
	}

	h.list(ctx, filter)
}

func (h *ProductsHandler) SearchProducts(ctx *gin.Context) {
	name := strings.TrimSpace(ctx.Param("name"))
	if name == "" {
		RespondValidation(ctx, "invalid_search", "Search term is required")
		return
	}

	h.list(ctx, product.ListFilter{Name: name})
}

func (h *ProductsHandler) list(ctx *gin.Context, filter product.ListFilter) {
	products, err := h.products.List(ctx.Request.Context(), filter)
	if err != nil {
		RespondInternal(ctx, "Could not list products", err)
		return
	}

	ctx.JSON(http.StatusOK, products)
}

func (h *ProductsHandler) GetProduct(ctx *gin.Context) {
	p, err := h.products.GetByID(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			RespondNotFound(ctx, "product_not_found", "Product not found")
			return
		}

		RespondInternal(ctx, "Could not fetch product", err)
		return
	}

	ctx.JSON(http.StatusOK, p)
}

// RateProduct stores the caller's rating, replacing any earlier one.
func (h *ProductsHandler) RateProduct(ctx *gin.Context) {
	var req product.RateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if err := product.ValidateRating(req.Rating); err != nil {
		RespondValidation(ctx, "invalid_rating", "Rating must be between 1 and 5")
		return
	}

	userID, _ := middlewares.UserIDFromContext(ctx)

	p, err := h.products.Rate(ctx.Request.Context(), req.ID, userID, req.Rating)
	if err != nil {
		switch {
		case errors.Is(err, product.ErrNotFound):
			RespondNotFound(ctx, "product_not_found", "Product not found")
		case errors.Is(err, product.ErrInvalidRating):
			RespondValidation(ctx, "invalid_rating", "Rating must be between 1 and 5")
		case errors.Is(err, product.ErrConcurrentUpdate):
			RespondConflict(ctx, "concurrent_update", "Product is being rated by others, try again")
		default:
			RespondInternal(ctx, "Could not rate product", err)
		}
		return
	}

	ctx.JSON(http.StatusOK, p)
}

// DealOfDay returns the product with the highest rating sum.
func (h *ProductsHandler) DealOfDay(ctx *gin.Context) {
	products, err := h.products.List(ctx.Request.Context(), product.ListFilter{})
	if err != nil {
		RespondInternal(ctx, "Could not load deal of the day", err)
		return
	}

	deal, err := product.DealOfDay(products)
	if err != nil {
		RespondNotFound(ctx, "no_products", "No products available")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, deal)
}
