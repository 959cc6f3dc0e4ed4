package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Invalidator drops cached views that depend on user totals.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// StartLeaderboardConsumer connects to the broker at url, consumes both
// event queues and invalidates the cached leaderboard for every valid
// event. It reconnects with exponential backoff (capped at 30s) and returns
// only when ctx is done.
func StartLeaderboardConsumer(ctx context.Context, url string, inv Invalidator, log *slog.Logger) error {
	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "leaderboard-consumer")

	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Warn("failed to dial broker", "error", err, "retry_in", backoff.String())
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		err = consumeLoop(ctx, conn, inv, log)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Warn("consume loop ended; reconnecting", "error", err)
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, inv Invalidator, log *slog.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Warn("set QoS failed", "error", err)
	}
	if err := DeclareQueues(ch); err != nil {
		return err
	}

	users, err := ch.Consume(UserRegisteredQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", UserRegisteredQueue, err)
	}
	activities, err := ch.Consume(ActivityLoggedQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", ActivityLoggedQueue, err)
	}

	log.Info("consuming", "queues", []string{UserRegisteredQueue, ActivityLoggedQueue})
	for {
		var (
			d  amqp.Delivery
			ok bool
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok = <-users:
		case d, ok = <-activities:
		}
		if !ok {
			return errors.New("deliveries channel closed")
		}
		if err := HandleDelivery(ctx, d.RoutingKey, d.Body, inv); err != nil {
			log.Warn("handle message failed", "queue", d.RoutingKey, "error", err)
			_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
			continue
		}
		_ = d.Ack(false)
	}
}

// HandleDelivery validates one event body from the named queue and
// invalidates the leaderboard cache.
func HandleDelivery(ctx context.Context, queueName string, body []byte, inv Invalidator) error {
	switch queueName {
	case UserRegisteredQueue:
		var ev UserRegisteredEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return fmt.Errorf("unmarshal: %w", err)
		}
		if ev.UserID == "" {
			return errors.New("user.registered without user_id")
		}
	case ActivityLoggedQueue:
		var ev ActivityLoggedEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return fmt.Errorf("unmarshal: %w", err)
		}
		if ev.UserID == "" {
			return errors.New("activity.logged without user_id")
		}
	default:
		return fmt.Errorf("unexpected queue %q", queueName)
	}
	if err := inv.Invalidate(ctx); err != nil {
		return fmt.Errorf("invalidate: %w", err)
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
