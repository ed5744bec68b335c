package usecase

import (
	"errors"
	"fmt"
)

// Error kinds. Every specific error below wraps exactly one kind so handlers
// can map on the kind with errors.Is.
var (
	ErrInvalidInput            = errors.New("invalid input")
	ErrNotFound                = errors.New("not found")
	ErrDuplicatePendingPayment = errors.New("duplicate pending payment")
	ErrInvalidTransition       = errors.New("invalid status transition")
	ErrEntitlementGrantFailure = errors.New("entitlement grant failure")
)

var (
	ErrInvalidPaymentID     = fmt.Errorf("%w: invalid payment id", ErrInvalidInput)
	ErrInvalidUserID        = fmt.Errorf("%w: invalid user id", ErrInvalidInput)
	ErrInvalidItemID        = fmt.Errorf("%w: invalid item id", ErrInvalidInput)
	ErrInvalidAmount        = fmt.Errorf("%w: amount must be greater than zero", ErrInvalidInput)
	ErrMissingItemOrAmount  = fmt.Errorf("%w: item id or amount is required", ErrInvalidInput)
	ErrItemInactive         = fmt.Errorf("%w: item is not available for sale", ErrInvalidInput)
	ErrItemAlreadyOwned     = fmt.Errorf("%w: user already owns this item", ErrInvalidInput)
	ErrMissingProviderRef   = fmt.Errorf("%w: missing provider reference", ErrInvalidInput)
	ErrPaymentNotFound      = fmt.Errorf("%w: payment not found", ErrNotFound)
	ErrItemNotFound         = fmt.Errorf("%w: item not found", ErrNotFound)
	ErrUserNotFound         = fmt.Errorf("%w: user not found", ErrNotFound)
	ErrPaymentStillChanging = errors.New("payment kept changing while updating status")
)

// DuplicatePendingPaymentError carries the live pending payment the caller
// should resume instead of creating a new one.
type DuplicatePendingPaymentError struct {
	PaymentID string
}

func (e *DuplicatePendingPaymentError) Error() string {
	if e.PaymentID == "" {
		return ErrDuplicatePendingPayment.Error()
	}
	return fmt.Sprintf("%s: payment_id=%s", ErrDuplicatePendingPayment, e.PaymentID)
}

func (e *DuplicatePendingPaymentError) Is(target error) bool {
	return target == ErrDuplicatePendingPayment
}
