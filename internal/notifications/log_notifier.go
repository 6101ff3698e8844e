package notifications

import (
	"context"
	"log/slog"
)

// LogNotifier writes notifications to the structured log. Used when no broker is configured.
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	if log == nil {
		log = slog.Default()
	}
	return &LogNotifier{log: log}
}

func (n *LogNotifier) NotifyOrderStatus(ctx context.Context, in OrderStatusChanged) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	n.log.InfoContext(ctx, "notification.order_status",
		"order_id", in.OrderID,
		"buyer_id", in.BuyerID,
		"status", in.Status,
	)
	return nil
}
