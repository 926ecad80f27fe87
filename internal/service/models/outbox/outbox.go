package outbox

import (
	"time"
)

// Event types published through the outbox.
const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
)

// Message represents an order event waiting to be published to RabbitMQ.
// Rows are written in the same transaction as the order mutation they
// describe and removed once published.
type Message struct {
	ID          int64
	RoutingKey  string
	Payload     []byte
	ContentType string
	RetryCount  int
	MaxRetries  int
	LastError   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	NextRetryAt time.Time
}
