package utils

import "time"

// =============================================================================
// Timeout Constants
// =============================================================================

// HTTP Handler Timeouts
const (
	// DefaultRequestTimeout bounds a whole analysis request
	DefaultRequestTimeout = 30 * time.Second

	// DefaultFetchTimeout bounds a single source fetch when none is configured
	DefaultFetchTimeout = 10 * time.Second

	// PublishTimeout bounds publishing one result event
	PublishTimeout = 5 * time.Second
)

// =============================================================================
// Request Limits
// =============================================================================

const (
	// MaxMetricsPerCorrelation caps the metrics in one correlation request
	MaxMetricsPerCorrelation = 50

	// DefaultMaxSeriesLength caps inline series when not configured
	DefaultMaxSeriesLength = 100000
)

// =============================================================================
// Queue Type Constants
// =============================================================================

// QueueType represents the type of message queue
type QueueType string

const (
	// QueueTypeNATS represents NATS JetStream queue (default)
	QueueTypeNATS QueueType = "nats"

	// QueueTypeRedis represents Redis Streams queue
	QueueTypeRedis QueueType = "redis"

	// QueueTypeKafka represents Apache Kafka queue
	QueueTypeKafka QueueType = "kafka"

	// QueueTypeMemory represents in-memory queue (for testing)
	QueueTypeMemory QueueType = "memory"
)

// =============================================================================
// Source Type Constants
// =============================================================================

// SourceType represents the series data-retrieval backend
type SourceType string

const (
	// SourceTypeMemory keeps series in process (default)
	SourceTypeMemory SourceType = "memory"

	// SourceTypeRedis reads snappy-compressed series blobs from Redis
	SourceTypeRedis SourceType = "redis"

	// SourceTypePostgres reads warehouse tables
	SourceTypePostgres SourceType = "postgres"

	// SourceTypeExcel reads a workbook
	SourceTypeExcel SourceType = "excel"
)
