package interfaces

import (
	"context"
	"time"
)

const (
	EventPaymentCreated   = "payment.created"
	EventPaymentApproved  = "payment.approved"
	EventPaymentFailed    = "payment.failed"
	EventPaymentCancelled = "payment.cancelled"
)

type PaymentEvent struct {
	Type       string    `json:"type"`
	PaymentID  string    `json:"payment_id"`
	UserID     string    `json:"user_id,omitempty"`
	ItemID     string    `json:"item_id,omitempty"`
	Status     string    `json:"status"`
	Provider   string    `json:"provider,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// IPaymentEventPublisher publishes payment lifecycle events for downstream
// consumers. Publishing is best effort from the orchestrator's point of view.
type IPaymentEventPublisher interface {
	Publish(ctx context.Context, evt PaymentEvent) error
}
