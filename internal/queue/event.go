// Package queue defines the domain events exchanged over RabbitMQ and the
// consumer that keeps the cached leaderboard fresh.
package queue

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Queue names. Both are durable and routed through the default exchange.
const (
	UserRegisteredQueue = "user.registered"
	ActivityLoggedQueue = "activity.logged"
)

// UserRegisteredEvent is published after a successful registration. It
// carries no credential material.
type UserRegisteredEvent struct {
	UserID       string `json:"user_id"`
	RegisteredAt string `json:"registered_at"`
}

// ActivityLoggedEvent is published after an activity is stored.
type ActivityLoggedEvent struct {
	ActivityID string  `json:"activity_id"`
	UserID     string  `json:"user_id"`
	Type       string  `json:"type"`
	Value      float64 `json:"value"`
	Unit       string  `json:"unit"`
	Carbon     float64 `json:"carbon"`
	Timestamp  string  `json:"timestamp"`
}

// DeclareQueues declares every queue used by the service. Declaring an
// existing queue with the same arguments is idempotent.
func DeclareQueues(ch *amqp.Channel) error {
	for _, name := range []string{UserRegisteredQueue, ActivityLoggedQueue} {
		if _, err := ch.QueueDeclare(
			name,  // name
			true,  // durable
			false, // autoDelete
			false, // exclusive
			false, // noWait
			nil,   // args
		); err != nil {
			return fmt.Errorf("queue declare %s: %w", name, err)
		}
	}
	return nil
}
