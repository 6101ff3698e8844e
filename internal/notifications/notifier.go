package notifications

import (
	"context"
	"time"
)

// OrderStatusChanged is published whenever a seller moves an order to a new status.
type OrderStatusChanged struct {
	OrderID    string    `json:"orderId"`
	BuyerID    string    `json:"buyerId"`
	Status     string    `json:"status"`
	TotalPrice float64   `json:"totalPrice"`
	ChangedAt  time.Time `json:"changedAt"`
}

type Notifier interface {
	NotifyOrderStatus(ctx context.Context, input OrderStatusChanged) error
}
