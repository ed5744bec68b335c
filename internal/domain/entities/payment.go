package entities

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus is the closed set of lifecycle states of a payment.
//
// Only pending is non-terminal. A terminal payment is never re-issued; a new
// payment must be created instead.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusApproved  PaymentStatus = "approved"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

// ParsePaymentStatus rejects anything outside the closed status set.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch st := PaymentStatus(s); st {
	case PaymentStatusPending, PaymentStatusApproved, PaymentStatusFailed, PaymentStatusCancelled:
		return st, nil
	}
	return "", fmt.Errorf("unknown payment status %q", s)
}

func (s PaymentStatus) IsTerminal() bool {
	return s != PaymentStatusPending
}

// PaymentMethod tells how the money arrived.
type PaymentMethod string

const (
	PaymentMethodPix    PaymentMethod = "pix"
	PaymentMethodManual PaymentMethod = "manual"
)

// Provider tags which backend produced the PIX payload.
const (
	ProviderSacapay     = "sacapay"
	ProviderMercadoPago = "mercadopago"
	ProviderFallback    = "fallback"
	ProviderNone        = "none"
)

// Payer carries the customer data sent to the provider. For anonymous charges
// it is also persisted on the payment.
type Payer struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Document string `json:"document,omitempty"`
}

// PixCharge is the uniform PIX payload, regardless of the backend that issued it.
type PixCharge struct {
	PixCode     string    `json:"pix_code"`
	QRCodeURL   string    `json:"qr_code_url"`
	ProviderRef string    `json:"provider_ref,omitempty"`
	ExpiresAt   time.Time `json:"expires_at"`
	Provider    string    `json:"provider"`
}

// Payment is the payment entity persisted by the checkout service.
//
// Storage model (DynamoDB):
//   - PK: id
//   - GSI (provider_ref-index): provider_ref
//
// UserID and ItemID are both optional: item-less charges carry an explicit
// amount and user-less charges carry the payer fields instead.
type Payment struct {
	ID            string          `json:"id"`
	CorrelationID string          `json:"correlation_id"`
	ProviderRef   string          `json:"provider_ref,omitempty"`
	UserID        string          `json:"user_id,omitempty"`
	ItemID        string          `json:"item_id,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description,omitempty"`
	Status        PaymentStatus   `json:"status"`
	Method        PaymentMethod   `json:"method"`
	Provider      string          `json:"provider"`
	PixCode       string          `json:"pix_code,omitempty"`
	QRCodeURL     string          `json:"qr_code_url,omitempty"`
	ExpiresAt     time.Time       `json:"expires_at"`
	Customer      Payer           `json:"customer"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	PaidAt        *time.Time      `json:"paid_at,omitempty"`
}

// IsValid is derived, never stored: the PIX code can still be paid.
func (p Payment) IsValid(now time.Time) bool {
	return p.Status == PaymentStatusPending && !p.ExpiresAt.IsZero() && p.ExpiresAt.After(now)
}

// IsExpiredPending reports a payment still stored as pending whose window has passed.
func (p Payment) IsExpiredPending(now time.Time) bool {
	return p.Status == PaymentStatusPending && !p.IsValid(now)
}

// GrantsEntitlement reports whether approving this payment delivers an item.
func (p Payment) GrantsEntitlement() bool {
	return p.UserID != "" && p.ItemID != ""
}

// Pix returns the display payload currently attached to the payment.
func (p Payment) Pix() PixCharge {
	return PixCharge{
		PixCode:     p.PixCode,
		QRCodeURL:   p.QRCodeURL,
		ProviderRef: p.ProviderRef,
		ExpiresAt:   p.ExpiresAt,
		Provider:    p.Provider,
	}
}

// PendingLock is the storage-level marker that enforces one live pending
// payment per (user, item).
type PendingLock struct {
	UserID    string
	ItemID    string
	PaymentID string
	ExpiresAt time.Time
}

func PendingLockKey(userID, itemID string) string {
	return userID + "#" + itemID
}
