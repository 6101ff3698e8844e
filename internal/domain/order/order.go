package order

import (
	"errors"
	"strings"
	"time"

	"github.com/geocoder89/storefront/internal/domain/product"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound      = errors.New("order not found")
	ErrInvalidStatus = errors.New("invalid order status")
	ErrEmptyOrder    = errors.New("order has no line items")
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// MaxStatusLen bounds free-form status labels.
const MaxStatusLen = 32

// IsKnown reports whether s is one of the statuses the storefront itself uses.
func (s Status) IsKnown() bool {
	switch s {
	case StatusPending, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	default:
		return false
	}
}

// ParseStatus accepts any non-empty label: a seller may overwrite an order's status with
// any value, with no transition graph. Known statuses are matched case-insensitively and
// stored in canonical form; other labels are stored as given (trimmed).
func ParseStatus(raw string) (Status, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || len(trimmed) > MaxStatusLen {
		return "", ErrInvalidStatus
	}

	if s := Status(strings.ToLower(trimmed)); s.IsKnown() {
		return s, nil
	}
	return Status(trimmed), nil
}

// LineItem embeds a copy of the product taken when the order was placed.
type LineItem struct {
	Product  product.Product `json:"product" bson:"product"`
	Quantity int             `json:"quantity" bson:"quantity"`
}

func (l LineItem) Subtotal() decimal.Decimal {
	return decimal.NewFromFloat(l.Product.Price).Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Order struct {
	ID         string     `json:"id" bson:"_id"`
	BuyerID    string     `json:"buyerId" bson:"buyerId"`
	Products   []LineItem `json:"products" bson:"products"`
	TotalPrice float64    `json:"totalPrice" bson:"totalPrice"`
	Address    string     `json:"address" bson:"address"`
	Status     Status     `json:"status" bson:"status"`
	OrderedAt  time.Time  `json:"orderedAt" bson:"orderedAt"`
}

type ItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

type PlaceOrderRequest struct {
	Items   []ItemRequest `json:"items" binding:"required,min=1,dive"`
	Address string        `json:"address" binding:"required,max=500"`
}

type UpdateStatusRequest struct {
	ID     string `json:"id" binding:"required"`
	Status string `json:"status" binding:"required"`
}

// New builds a pending order; the total is derived from the line items.
func New(buyerID, address string, lines []LineItem) (Order, error) {
	if len(lines) == 0 {
		return Order{}, ErrEmptyOrder
	}

	return Order{
		ID:         uuid.NewString(),
		BuyerID:    buyerID,
		Products:   lines,
		TotalPrice: Total(lines).InexactFloat64(),
		Address:    strings.TrimSpace(address),
		Status:     StatusPending,
		OrderedAt:  time.Now().UTC(),
	}, nil
}

func Total(lines []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total
}
