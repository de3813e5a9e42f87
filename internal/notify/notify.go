// Package notify is the out-of-process observer: it consumes the relayed
// event stream from RabbitMQ and logs every committed transition. Useful as
// an audit tail and as the integration point for external alerting.
package notify

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"pub-order-system/internal/connections/rabbitmq"
	"pub-order-system/internal/domain"
)

func Run(ctx context.Context, client *rabbitmq.Client, lg *zap.Logger) error {
	if err := client.DeclareTopology(); err != nil {
		return err
	}

	msgs, err := client.Consume(rabbitmq.NotificationsQueue, "notifier", 1)
	if err != nil {
		return err
	}

	lg.Info("notifier_started", zap.String("queue", rabbitmq.NotificationsQueue))

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return nil
			}
			var ev domain.Event
			if err := json.Unmarshal(d.Body, &ev); err != nil {
				// Unparseable payload; drop it rather than loop on it.
				_ = d.Nack(false, false)
				lg.Error("bad_event_payload", zap.Error(err))
				continue
			}
			fields := []zap.Field{
				zap.String("event_id", ev.ID),
				zap.String("type", string(ev.Type)),
				zap.Time("at", ev.At),
			}
			if ev.Order != nil {
				fields = append(fields,
					zap.Int64("order_id", ev.Order.ID),
					zap.String("booth_id", ev.Order.BoothID),
					zap.String("order_status", string(ev.Order.Status)))
			}
			if ev.Item != nil {
				fields = append(fields,
					zap.Int64("item_id", ev.Item.ItemID),
					zap.String("menu_name", ev.Item.MenuName),
					zap.String("item_status", string(ev.Item.Status)))
			}
			lg.Info("event_received", fields...)
			_ = d.Ack(false)
		}
	}
}
