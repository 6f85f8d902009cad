package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/soltixdb/insight/internal/logging"
)

// Kind is the analysis that produced a result event
type Kind string

const (
	KindAnomalies    Kind = "anomalies"
	KindTrends       Kind = "trends"
	KindCorrelations Kind = "correlations"
	KindABTests      Kind = "abtests"
)

// ResultEvent is the envelope published for every completed analysis
type ResultEvent struct {
	ID         string          `json:"id"`
	AnalysisID string          `json:"analysis_id"`
	Kind       Kind            `json:"kind"`
	Key        string          `json:"key"`
	CreatedAt  time.Time       `json:"created_at"`
	Payload    json.RawMessage `json:"payload"`
}

// EventPublisher publishes result events to <prefix>.<kind>. A nil
// EventPublisher, or one without a backend, drops events silently.
type EventPublisher struct {
	pub    Publisher
	prefix string
	logger *logging.Logger
}

// NewEventPublisher wraps pub
func NewEventPublisher(pub Publisher, prefix string, logger *logging.Logger) *EventPublisher {
	if logger == nil {
		logger = logging.Global()
	}
	return &EventPublisher{pub: pub, prefix: prefix, logger: logger}
}

// Subject returns the subject events of kind are published on
func (p *EventPublisher) Subject(kind Kind) string {
	return subjectFor(p.prefix, kind)
}

func subjectFor(prefix string, kind Kind) string {
	if prefix == "" {
		return string(kind)
	}
	return prefix + "." + string(kind)
}

// encode wraps result in a ResultEvent message for kind
func (p *EventPublisher) encode(kind Kind, analysisID, key string, result interface{}) (Message, ResultEvent, error) {
	payload, err := json.Marshal(result)
	if err != nil {
		return Message{}, ResultEvent{}, fmt.Errorf("failed to encode %s result: %w", kind, err)
	}

	event := ResultEvent{
		ID:         uuid.NewString(),
		AnalysisID: analysisID,
		Kind:       kind,
		Key:        key,
		CreatedAt:  time.Now().UTC(),
		Payload:    payload,
	}
	data, err := json.Marshal(event)
	if err != nil {
		return Message{}, ResultEvent{}, fmt.Errorf("failed to encode %s event: %w", kind, err)
	}
	return Message{Subject: p.Subject(kind), Key: key, Data: data}, event, nil
}

// Publish wraps result in a ResultEvent and publishes it. Failures are
// logged and returned; callers treat them as non-fatal.
func (p *EventPublisher) Publish(ctx context.Context, kind Kind, analysisID, key string, result interface{}) error {
	if p == nil || p.pub == nil {
		return nil
	}

	msg, event, err := p.encode(kind, analysisID, key, result)
	if err != nil {
		return err
	}

	if err := p.pub.Publish(ctx, msg); err != nil {
		p.logger.WithContext(ctx).Warn("Failed to publish result event",
			"subject", msg.Subject,
			"analysis_id", analysisID,
			"error", err)
		return err
	}

	p.logger.Debug("Result event published",
		"subject", msg.Subject,
		"event_id", event.ID,
		"analysis_id", analysisID)
	return nil
}

// KeyedResult is one entry of a batch publish
type KeyedResult struct {
	AnalysisID string
	Key        string
	Result     interface{}
}

// PublishBatch publishes results of one kind in a single backend batch and
// returns how many the broker accepted. A result that cannot be encoded
// fails the whole batch before anything is sent.
func (p *EventPublisher) PublishBatch(ctx context.Context, kind Kind, results []KeyedResult) (int, error) {
	if p == nil || p.pub == nil || len(results) == 0 {
		return 0, nil
	}

	messages := make([]Message, 0, len(results))
	for _, r := range results {
		msg, _, err := p.encode(kind, r.AnalysisID, r.Key, r.Result)
		if err != nil {
			return 0, err
		}
		messages = append(messages, msg)
	}

	n, err := p.pub.PublishBatch(ctx, messages)
	if err != nil {
		p.logger.WithContext(ctx).Warn("Failed to publish result batch",
			"subject", p.Subject(kind),
			"events", len(messages),
			"error", err)
		return n, err
	}
	if n < len(messages) {
		p.logger.WithContext(ctx).Warn("Result batch partially published",
			"subject", p.Subject(kind),
			"accepted", n,
			"events", len(messages))
	}
	return n, nil
}

// Close closes the underlying backend
func (p *EventPublisher) Close() error {
	if p == nil || p.pub == nil {
		return nil
	}
	return p.pub.Close()
}

// EventHandler receives decoded result events
type EventHandler func(event ResultEvent) error

// EventConsumer subscribes to the result subjects written by EventPublisher.
// The report layer uses it to follow completed analyses.
type EventConsumer struct {
	sub      Subscriber
	prefix   string
	logger   *logging.Logger
	subjects []string
}

// NewEventConsumer wraps sub; prefix must match the publisher's
func NewEventConsumer(sub Subscriber, prefix string, logger *logging.Logger) *EventConsumer {
	if logger == nil {
		logger = logging.Global()
	}
	return &EventConsumer{sub: sub, prefix: prefix, logger: logger}
}

// Subject returns the subject events of kind arrive on
func (c *EventConsumer) Subject(kind Kind) string {
	return subjectFor(c.prefix, kind)
}

// Consume subscribes handler to every kind. Messages that are not valid
// events are logged and acknowledged so they are not redelivered. On error
// the subscriptions made so far are removed.
func (c *EventConsumer) Consume(kinds []Kind, handler EventHandler) error {
	for _, kind := range kinds {
		subject := c.Subject(kind)
		err := c.sub.Subscribe(subject, func(msg Message) error {
			var event ResultEvent
			if err := json.Unmarshal(msg.Data, &event); err != nil {
				c.logger.Warn("Dropping malformed result event",
					"subject", msg.Subject,
					"error", err)
				return nil
			}
			return handler(event)
		})
		if err != nil {
			_ = c.Stop()
			return fmt.Errorf("failed to consume %s: %w", subject, err)
		}
		c.subjects = append(c.subjects, subject)
	}
	return nil
}

// Stop removes the subscriptions made by Consume
func (c *EventConsumer) Stop() error {
	var lastErr error
	for _, subject := range c.subjects {
		if err := c.sub.Unsubscribe(subject); err != nil {
			lastErr = err
		}
	}
	c.subjects = nil
	return lastErr
}

// AllKinds lists every result kind
var AllKinds = []Kind{KindAnomalies, KindTrends, KindCorrelations, KindABTests}

// ParseKinds parses a comma-separated kind list. Empty input means AllKinds.
func ParseKinds(s string) ([]Kind, error) {
	if strings.TrimSpace(s) == "" {
		return AllKinds, nil
	}
	var kinds []Kind
	for _, part := range strings.Split(s, ",") {
		kind := Kind(strings.ToLower(strings.TrimSpace(part)))
		switch kind {
		case KindAnomalies, KindTrends, KindCorrelations, KindABTests:
			kinds = append(kinds, kind)
		case "":
		default:
			return nil, fmt.Errorf("unknown result kind: %s", part)
		}
	}
	return kinds, nil
}
