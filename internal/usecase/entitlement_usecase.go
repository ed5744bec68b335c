package usecase

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"loja_pix/internal/domain/entities"
	"loja_pix/internal/usecase/interfaces"
)

// IEntitlementUseCase grants items to users. Granting is idempotent: an item
// already owned is reported as not granted and the history is left untouched.
type IEntitlementUseCase interface {
	Grant(ctx context.Context, userID string, record entities.PurchaseRecord) (bool, error)
	GrantItem(ctx context.Context, userID, itemID string) (bool, error)
	Reconcile(ctx context.Context, paymentID string) (bool, error)
}

type EntitlementUseCase struct {
	users    interfaces.IUserRepository
	items    interfaces.IItemRepository
	payments interfaces.IPaymentRepository
	now      func() time.Time
}

var _ IEntitlementUseCase = (*EntitlementUseCase)(nil)

func NewEntitlementUseCase(users interfaces.IUserRepository, items interfaces.IItemRepository, payments interfaces.IPaymentRepository) *EntitlementUseCase {
	return &EntitlementUseCase{
		users:    users,
		items:    items,
		payments: payments,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (u *EntitlementUseCase) Grant(ctx context.Context, userID string, record entities.PurchaseRecord) (bool, error) {
	userID = strings.TrimSpace(userID)
	record.ItemID = strings.TrimSpace(record.ItemID)
	log.Printf("[entitlement][usecase] grant start user_id=%q item_id=%q payment_id=%q", userID, record.ItemID, record.PaymentID)
	if userID == "" {
		return false, ErrInvalidUserID
	}
	if record.ItemID == "" {
		return false, ErrInvalidItemID
	}
	if record.PurchasedAt.IsZero() {
		record.PurchasedAt = u.now()
	}
	if record.Method == "" {
		record.Method = entities.PaymentMethodManual
	}

	granted, err := u.users.Grant(ctx, userID, record)
	if errors.Is(err, interfaces.ErrRecordNotFound) {
		log.Printf("[entitlement][usecase] user not found user_id=%s", userID)
		return false, ErrUserNotFound
	}
	if err != nil {
		log.Printf("[entitlement][usecase] grant failed user_id=%s item_id=%s err=%v", userID, record.ItemID, err)
		return false, err
	}
	log.Printf("[entitlement][usecase] grant done user_id=%s item_id=%s granted=%t", userID, record.ItemID, granted)
	return granted, nil
}

// GrantItem delivers a catalog item without any payment behind it.
func (u *EntitlementUseCase) GrantItem(ctx context.Context, userID, itemID string) (bool, error) {
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return false, ErrInvalidItemID
	}
	item, err := u.items.GetByID(ctx, itemID)
	if err != nil {
		return false, err
	}
	if item.ID == "" {
		return false, ErrItemNotFound
	}
	return u.Grant(ctx, userID, entities.PurchaseRecord{
		ItemID: item.ID,
		Amount: item.Price.Round(2),
		Method: entities.PaymentMethodManual,
	})
}

// Reconcile makes sure the item of an approved payment is owned. Approval
// already grants atomically, so this only repairs rows written by other tools.
func (u *EntitlementUseCase) Reconcile(ctx context.Context, paymentID string) (bool, error) {
	paymentID = strings.TrimSpace(paymentID)
	if paymentID == "" {
		return false, ErrInvalidPaymentID
	}
	p, err := u.payments.GetByID(ctx, paymentID)
	if err != nil {
		return false, err
	}
	if p.ID == "" {
		return false, ErrPaymentNotFound
	}
	if p.Status != entities.PaymentStatusApproved || !p.GrantsEntitlement() {
		log.Printf("[entitlement][usecase] reconcile skip payment_id=%s status=%s", p.ID, p.Status)
		return false, nil
	}
	purchasedAt := p.UpdatedAt
	if p.PaidAt != nil {
		purchasedAt = *p.PaidAt
	}
	return u.Grant(ctx, p.UserID, entities.PurchaseRecord{
		ItemID:      p.ItemID,
		Amount:      p.Amount,
		Method:      p.Method,
		PurchasedAt: purchasedAt,
		PaymentID:   p.ID,
	})
}
