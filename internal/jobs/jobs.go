// Package jobs defines the queued notification envelope and its
// payloads. Notifications are persisted and drained by a background
// worker; producers never wait on delivery.
package jobs

import "time"

// Kind identifies the notification template a payload renders with.
type Kind string

const (
	KindOrderConfirmation Kind = "order.confirmation"
	KindOrderUpdate       Kind = "order.update"
)

// Status is the delivery state of a queued notification.
type Status string

const (
	StatusPending   Status = "pending"
	StatusClaimed   Status = "claimed"
	StatusDelivered Status = "delivered"
	StatusFailed    Status = "failed"
)

// Notification is one queued delivery. Payload is the JSON-encoded
// kind-specific payload struct.
type Notification struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	Kind      Kind      `json:"kind" bson:"kind"`
	Payload   []byte    `json:"payload" bson:"payload"`
	Status    Status    `json:"status" bson:"status"`
	Attempts  int       `json:"attempts" bson:"attempts"`
	LastError string    `json:"lastError,omitempty" bson:"lastError,omitempty"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}
