package queue

import (
	"context"
	"fmt"
	"sync"
)

// MemoryQueue delivers messages synchronously to in-process subscribers and
// keeps every published message for inspection. Used in tests and when no
// broker is configured.
type MemoryQueue struct {
	mu        sync.RWMutex
	handlers  map[string]MessageHandler
	published []Message
	closed    bool
}

// newMemoryQueue creates a new in-memory queue instance
func newMemoryQueue() *MemoryQueue {
	return &MemoryQueue{
		handlers: make(map[string]MessageHandler),
	}
}

// Publish records the message and hands it to the subject's subscriber, if any
func (q *MemoryQueue) Publish(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data := make([]byte, len(msg.Data))
	copy(data, msg.Data)
	msg.Data = data

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrClosed
	}
	q.published = append(q.published, msg)
	handler := q.handlers[msg.Subject]
	q.mu.Unlock()

	if handler != nil {
		if err := handler(msg); err != nil {
			return fmt.Errorf("handler for subject %s failed: %w", msg.Subject, err)
		}
	}
	return nil
}

// PublishBatch publishes messages one by one
func (q *MemoryQueue) PublishBatch(ctx context.Context, messages []Message) (int, error) {
	successCount := 0
	var lastErr error

	for _, msg := range messages {
		if err := q.Publish(ctx, msg); err != nil {
			lastErr = err
			continue
		}
		successCount++
	}

	if lastErr != nil && successCount == 0 {
		return 0, lastErr
	}
	return successCount, nil
}

// Subscribe registers the handler for subject
func (q *MemoryQueue) Subscribe(subject string, handler MessageHandler) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, exists := q.handlers[subject]; exists {
		return fmt.Errorf("already subscribed to subject: %s", subject)
	}
	q.handlers[subject] = handler
	return nil
}

// Unsubscribe unsubscribes from a subject
func (q *MemoryQueue) Unsubscribe(subject string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, exists := q.handlers[subject]; !exists {
		return fmt.Errorf("not subscribed to subject: %s", subject)
	}
	delete(q.handlers, subject)
	return nil
}

// Close drops all subscriptions; later publishes fail with ErrClosed
func (q *MemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.handlers = make(map[string]MessageHandler)
	q.closed = true
	return nil
}

// Published returns the messages published to subject, or all of them when
// subject is empty
func (q *MemoryQueue) Published(subject string) []Message {
	q.mu.RLock()
	defer q.mu.RUnlock()

	var out []Message
	for _, msg := range q.published {
		if subject == "" || msg.Subject == subject {
			out = append(out, msg)
		}
	}
	return out
}
