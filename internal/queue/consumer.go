package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// OrderReleaser releases every USER_ORDER record held by a cancelled order.
// The lock service implements it.
type OrderReleaser interface {
	ReleaseOrderHold(ctx context.Context, orderID int64) (int64, error)
}

// StartOrderCancelledConsumer connects to RabbitMQ, declares the durable
// order.cancelled queue and consumes cancellation events, releasing the
// order's slot records through the releaser.  It runs a reconnect loop with
// exponential backoff and returns only when ctx is cancelled.  Malformed
// messages are rejected without requeue; release failures are requeued so a
// transient database error does not drop the cancellation.
func StartOrderCancelledConsumer(ctx context.Context, releaser OrderReleaser, logger *zap.Logger) {
	backoff := time.Second
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		conn, err := amqp.Dial(brokerURL())
		if err != nil {
			logger.Warn("order consumer dial failed", zap.Error(err), zap.Duration("retry_in", backoff))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		if err := consumeOrderCancelled(ctx, conn, releaser, logger); err != nil {
			logger.Warn("order consumer loop ended", zap.Error(err))
		}
		_ = conn.Close()
	}
}

func consumeOrderCancelled(ctx context.Context, conn *amqp.Connection, releaser OrderReleaser, logger *zap.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		logger.Warn("order consumer set QoS failed", zap.Error(err))
	}
	if _, err := ch.QueueDeclare(orderCancelledQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(orderCancelledQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			var ev OrderCancelledEvent
			if err := json.Unmarshal(d.Body, &ev); err != nil || ev.OrderID == 0 {
				logger.Warn("order cancelled event malformed", zap.Error(err))
				_ = d.Reject(false)
				continue
			}
			released, err := releaser.ReleaseOrderHold(ctx, ev.OrderID)
			if err != nil {
				logger.Error("order hold release failed",
					zap.Int64("order_id", ev.OrderID), zap.Error(err))
				_ = d.Nack(false, true)
				continue
			}
			logger.Info("order holds released",
				zap.Int64("order_id", ev.OrderID), zap.Int64("records", released))
			_ = d.Ack(false)
		}
	}
}
