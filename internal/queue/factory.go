package queue

import (
	"fmt"
	"strings"

	"github.com/soltixdb/insight/internal/config"
	"github.com/soltixdb/insight/internal/utils"
)

// New creates the queue backend selected by cfg.Type. NATS is the default.
func New(cfg config.PublisherConfig) (Queue, error) {
	queueType := utils.QueueType(strings.ToLower(cfg.Type))
	if queueType == "" {
		queueType = utils.QueueTypeNATS
	}

	switch queueType {
	case utils.QueueTypeNATS:
		return newNATSQueue(NATSConfig{
			URL:      cfg.URL,
			Username: cfg.Username,
			Password: cfg.Password,
			Stream:   StreamName(cfg.SubjectPrefix),
			Subjects: []string{cfg.SubjectPrefix + ".>"},
		})

	case utils.QueueTypeRedis:
		return newRedisQueue(RedisConfig{
			URL:      cfg.URL,
			Password: cfg.Password,
			DB:       cfg.RedisDB,
			Stream:   cfg.RedisStream,
		})

	case utils.QueueTypeKafka:
		return newKafkaQueue(KafkaConfig{
			Brokers: cfg.KafkaBrokers,
		})

	case utils.QueueTypeMemory:
		return newMemoryQueue(), nil

	default:
		return nil, fmt.Errorf("unsupported queue type: %s (supported: nats, redis, kafka, memory)", queueType)
	}
}

// NewMemory returns an in-process queue
func NewMemory() *MemoryQueue {
	return newMemoryQueue()
}

// StreamName derives the JetStream stream name from a subject prefix,
// e.g. "insight.results" becomes "INSIGHT_RESULTS".
func StreamName(prefix string) string {
	return strings.ToUpper(sanitizeConsumerName(prefix))
}
