package interfaces

import (
	"context"
	"errors"
	"time"

	"loja_pix/internal/domain/entities"
)

var (
	// ErrPendingPaymentExists is returned when the pending lock for a
	// (user, item) pair is held by another live payment.
	ErrPendingPaymentExists = errors.New("pending payment already exists")
	// ErrConcurrentUpdate is returned when a conditional write lost a race
	// (status no longer pending, item granted meanwhile, ...). Callers re-read
	// and decide again.
	ErrConcurrentUpdate = errors.New("concurrent update")
	// ErrRecordNotFound is returned by conditional writes whose target row
	// does not exist.
	ErrRecordNotFound = errors.New("record not found")
)

// IPaymentRepository abstracts DynamoDB persistence for Payment.
//
// Lookups return the zero Payment (empty ID) when nothing matches.
type IPaymentRepository interface {
	// CreatePending stores a pending payment and, when it carries both a user
	// and an item, acquires the pending lock in the same transaction.
	CreatePending(ctx context.Context, p entities.Payment) (entities.Payment, error)
	// CreateApproved stores an already approved payment and applies the grant
	// in the same transaction.
	CreateApproved(ctx context.Context, p entities.Payment, grant *entities.PurchaseRecord) (entities.Payment, error)
	GetByID(ctx context.Context, id string) (entities.Payment, error)
	GetByProviderRef(ctx context.Context, providerRef string) (entities.Payment, error)
	GetPendingLock(ctx context.Context, userID, itemID string) (entities.PendingLock, error)
	// AttachPix writes the PIX payload; only allowed while pending.
	AttachPix(ctx context.Context, id string, pix entities.PixCharge) (entities.Payment, error)
	// Approve moves pending -> approved and, when grant is set, appends the
	// item to the user's owned set and history atomically.
	Approve(ctx context.Context, id string, paidAt time.Time, grant *entities.PurchaseRecord) (entities.Payment, error)
	// Transition moves pending -> status (failed or cancelled).
	Transition(ctx context.Context, id string, status entities.PaymentStatus, at time.Time) (entities.Payment, error)
	ReleasePendingLock(ctx context.Context, p entities.Payment) error
}
