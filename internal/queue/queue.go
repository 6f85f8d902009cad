// Package queue carries analysis result events to downstream consumers (the
// report layer) over NATS JetStream, Redis Streams, Kafka or an in-process
// queue.
package queue

import (
	"context"
	"errors"
)

// ErrClosed is returned when publishing on a closed queue
var ErrClosed = errors.New("queue closed")

// Message is a single event. Key groups related events (the metric or
// experiment name) and maps to the Kafka partition key, a NATS header or a
// Redis stream field.
type Message struct {
	Subject string
	Key     string
	Data    []byte
}

// Publisher publishes messages to a queue
type Publisher interface {
	// Publish publishes one message and waits for the broker to accept it
	Publish(ctx context.Context, msg Message) error

	// PublishBatch publishes messages and returns how many were accepted
	PublishBatch(ctx context.Context, messages []Message) (int, error)

	// Close closes the connection
	Close() error
}

// MessageHandler handles incoming messages. Returning an error leaves the
// message unacknowledged where the backend supports redelivery.
type MessageHandler func(msg Message) error

// Subscriber subscribes to messages from a queue
type Subscriber interface {
	// Subscribe subscribes to a subject/topic with a handler
	Subscribe(subject string, handler MessageHandler) error

	// Unsubscribe unsubscribes from a subject/topic
	Unsubscribe(subject string) error

	// Close closes the connection
	Close() error
}

// Queue combines Publisher and Subscriber interfaces
type Queue interface {
	Publisher
	Subscriber
}
