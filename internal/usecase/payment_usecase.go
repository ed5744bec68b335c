package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"loja_pix/internal/domain/entities"
	"loja_pix/internal/usecase/interfaces"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// IPaymentUseCase is the payment orchestrator.
//
// It owns the lifecycle pending -> approved | failed | cancelled. Only pending
// may transition; terminal payments are never re-issued.
type IPaymentUseCase interface {
	CreatePayment(ctx context.Context, cmd CreatePaymentCommand) (PaymentResult, error)
	CreateManualPayment(ctx context.Context, userID, itemID string) (entities.Payment, error)
	GetStatus(ctx context.Context, paymentID string) (PaymentStatusView, error)
	MarkApproved(ctx context.Context, paymentID string, paidAt time.Time) (entities.Payment, error)
	MarkFailed(ctx context.Context, paymentID string) (entities.Payment, error)
	MarkCancelled(ctx context.Context, paymentID string) (entities.Payment, error)
	HandleProviderNotification(ctx context.Context, n ProviderNotification) (entities.Payment, error)
}

// CreatePaymentCommand describes a new charge. Either ItemID (price comes from
// the catalog) or Amount must be set. UserID is empty for anonymous charges,
// in which case Payer is sent to the provider and stored on the payment.
type CreatePaymentCommand struct {
	UserID      string
	ItemID      string
	Amount      decimal.Decimal
	Description string
	Payer       entities.Payer
}

type PaymentResult struct {
	Payment entities.Payment
	Pix     entities.PixCharge
}

type PaymentStatusView struct {
	Payment entities.Payment
	IsValid bool
}

// ProviderNotification is a normalized webhook. An empty Status means the
// provider only told us "something changed" and the status must be fetched.
type ProviderNotification struct {
	ProviderRef string
	Status      string
}

type PaymentUseCaseConfig struct {
	// ProviderTimeout bounds a single provider call before falling back.
	ProviderTimeout time.Duration
	// PendingWindow is the provisional expiry given to a payment before its
	// PIX payload is attached.
	PendingWindow time.Duration
	// GrantAttempts bounds the approve + grant loop.
	GrantAttempts int
	GrantBackoff  time.Duration
}

func DefaultPaymentUseCaseConfig() PaymentUseCaseConfig {
	return PaymentUseCaseConfig{
		ProviderTimeout: 8 * time.Second,
		PendingWindow:   30 * time.Minute,
		GrantAttempts:   5,
		GrantBackoff:    200 * time.Millisecond,
	}
}

// transitionAttempts bounds the re-read loop of failed/cancelled transitions.
const transitionAttempts = 3

// createAttempts bounds retries of a pending create that lost a lock race.
const createAttempts = 3

type PaymentUseCase struct {
	repo     interfaces.IPaymentRepository
	users    interfaces.IUserRepository
	items    interfaces.IItemRepository
	provider interfaces.IPixProvider
	fallback interfaces.IFallbackPixGenerator
	events   interfaces.IPaymentEventPublisher
	cfg      PaymentUseCaseConfig
	now      func() time.Time
}

var _ IPaymentUseCase = (*PaymentUseCase)(nil)

func NewPaymentUseCase(
	repo interfaces.IPaymentRepository,
	users interfaces.IUserRepository,
	items interfaces.IItemRepository,
	provider interfaces.IPixProvider,
	fallback interfaces.IFallbackPixGenerator,
	events interfaces.IPaymentEventPublisher,
	cfg PaymentUseCaseConfig,
) *PaymentUseCase {
	def := DefaultPaymentUseCaseConfig()
	if cfg.ProviderTimeout <= 0 {
		cfg.ProviderTimeout = def.ProviderTimeout
	}
	if cfg.PendingWindow <= 0 {
		cfg.PendingWindow = def.PendingWindow
	}
	if cfg.GrantAttempts <= 0 {
		cfg.GrantAttempts = def.GrantAttempts
	}
	if cfg.GrantBackoff < 0 {
		cfg.GrantBackoff = 0
	}
	return &PaymentUseCase{
		repo:     repo,
		users:    users,
		items:    items,
		provider: provider,
		fallback: fallback,
		events:   events,
		cfg:      cfg,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (u *PaymentUseCase) CreatePayment(ctx context.Context, cmd CreatePaymentCommand) (PaymentResult, error) {
	cmd.UserID = strings.TrimSpace(cmd.UserID)
	cmd.ItemID = strings.TrimSpace(cmd.ItemID)
	cmd.Description = strings.TrimSpace(cmd.Description)
	log.Printf("[payment][usecase] create start user_id=%q item_id=%q", cmd.UserID, cmd.ItemID)

	draft, payer, err := u.draftPayment(ctx, cmd)
	if err != nil {
		log.Printf("[payment][usecase] create rejected user_id=%q item_id=%q err=%v", cmd.UserID, cmd.ItemID, err)
		return PaymentResult{}, err
	}

	created, err := u.storePending(ctx, draft)
	if err != nil {
		return PaymentResult{}, err
	}
	log.Printf("[payment][usecase] pending payment stored id=%s correlation_id=%s amount=%s", created.ID, created.CorrelationID, created.Amount.StringFixed(2))

	pix := u.issuePix(ctx, created, payer)
	updated, err := u.repo.AttachPix(ctx, created.ID, pix)
	if err != nil {
		log.Printf("[payment][usecase] failed attaching pix id=%s provider=%s err=%v", created.ID, pix.Provider, err)
		u.abandonPending(ctx, created)
		return PaymentResult{}, err
	}
	log.Printf("[payment][usecase] create success id=%s provider=%s expires_at=%s", updated.ID, updated.Provider, updated.ExpiresAt.Format(time.RFC3339))

	u.publish(ctx, interfaces.EventPaymentCreated, updated)
	return PaymentResult{Payment: updated, Pix: updated.Pix()}, nil
}

// storePending writes the draft together with its pending lock. Two creates
// for the same pair racing on the lock row make the loser's transaction
// conflict; it re-checks and ends up reporting the winner as a duplicate.
func (u *PaymentUseCase) storePending(ctx context.Context, draft entities.Payment) (entities.Payment, error) {
	for attempt := 1; ; attempt++ {
		if draft.GrantsEntitlement() {
			if err := u.ensureNoLivePending(ctx, draft.UserID, draft.ItemID); err != nil {
				return entities.Payment{}, err
			}
		}
		created, err := u.repo.CreatePending(ctx, draft)
		switch {
		case err == nil:
			return created, nil
		case errors.Is(err, interfaces.ErrPendingPaymentExists):
			return entities.Payment{}, u.duplicateError(ctx, draft.UserID, draft.ItemID)
		case errors.Is(err, interfaces.ErrConcurrentUpdate) && draft.GrantsEntitlement():
			if attempt >= createAttempts {
				log.Printf("[payment][usecase] pending lock still contended user_id=%s item_id=%s attempts=%d", draft.UserID, draft.ItemID, attempt)
				return entities.Payment{}, u.duplicateError(ctx, draft.UserID, draft.ItemID)
			}
			log.Printf("[payment][usecase] pending lock conflict user_id=%s item_id=%s attempt=%d, re-checking", draft.UserID, draft.ItemID, attempt)
		default:
			log.Printf("[payment][usecase] failed persisting pending payment id=%s err=%v", draft.ID, err)
			return entities.Payment{}, err
		}
	}
}

// abandonPending cancels a pending payment that never got its PIX payload so
// its lock does not block retries for the provisional window.
func (u *PaymentUseCase) abandonPending(ctx context.Context, p entities.Payment) {
	if _, err := u.transition(ctx, p.ID, entities.PaymentStatusCancelled); err != nil {
		log.Printf("[payment][usecase] failed cancelling abandoned payment id=%s err=%v", p.ID, err)
		u.releaseLock(ctx, p)
	}
}

// draftPayment validates the command and resolves amount, description and
// payer. Nothing is persisted here.
func (u *PaymentUseCase) draftPayment(ctx context.Context, cmd CreatePaymentCommand) (entities.Payment, entities.Payer, error) {
	now := u.now()
	cmd.Amount = cmd.Amount.Round(2)
	p := entities.Payment{
		ID:            uuid.NewString(),
		CorrelationID: uuid.NewString(),
		UserID:        cmd.UserID,
		ItemID:        cmd.ItemID,
		Amount:        cmd.Amount,
		Description:   cmd.Description,
		Status:        entities.PaymentStatusPending,
		Method:        entities.PaymentMethodPix,
		Provider:      entities.ProviderNone,
		ExpiresAt:     now.Add(u.cfg.PendingWindow),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	payer := cmd.Payer

	if cmd.ItemID == "" {
		if cmd.Amount.IsZero() {
			return entities.Payment{}, payer, ErrMissingItemOrAmount
		}
		if cmd.Amount.IsNegative() {
			return entities.Payment{}, payer, ErrInvalidAmount
		}
	}

	if cmd.ItemID != "" {
		item, err := u.items.GetByID(ctx, cmd.ItemID)
		if err != nil {
			return entities.Payment{}, payer, err
		}
		if item.ID == "" {
			return entities.Payment{}, payer, ErrItemNotFound
		}
		if !item.Active {
			return entities.Payment{}, payer, ErrItemInactive
		}
		if !item.Price.IsPositive() {
			return entities.Payment{}, payer, ErrInvalidAmount
		}
		p.Amount = item.Price.Round(2)
		if p.Description == "" {
			p.Description = "Compra: " + item.Title
		}
	}

	if cmd.UserID != "" {
		user, err := u.users.GetByID(ctx, cmd.UserID)
		if err != nil {
			return entities.Payment{}, payer, err
		}
		if user.ID == "" {
			return entities.Payment{}, payer, ErrUserNotFound
		}
		if cmd.ItemID != "" && user.Owns(cmd.ItemID) {
			return entities.Payment{}, payer, ErrItemAlreadyOwned
		}
		payer = mergePayer(payer, user.Payer())
	} else {
		p.Customer = payer
	}
	if p.Description == "" {
		p.Description = "Pagamento PIX"
	}
	return p, payer, nil
}

// ensureNoLivePending rejects the request when a live pending payment exists
// for the pair. A pending payment whose window has passed is cancelled first so
// the caller gets a fresh one.
func (u *PaymentUseCase) ensureNoLivePending(ctx context.Context, userID, itemID string) error {
	lock, err := u.repo.GetPendingLock(ctx, userID, itemID)
	if err != nil {
		return err
	}
	if lock.PaymentID == "" {
		return nil
	}
	existing, err := u.repo.GetByID(ctx, lock.PaymentID)
	if err != nil {
		return err
	}
	now := u.now()
	switch {
	case existing.ID == "":
		return nil
	case existing.IsValid(now):
		log.Printf("[payment][usecase] duplicate pending payment user_id=%s item_id=%s payment_id=%s", userID, itemID, existing.ID)
		return &DuplicatePendingPaymentError{PaymentID: existing.ID}
	case existing.IsExpiredPending(now):
		log.Printf("[payment][usecase] expiring stale pending payment id=%s expires_at=%s", existing.ID, existing.ExpiresAt.Format(time.RFC3339))
		_, err := u.transition(ctx, existing.ID, entities.PaymentStatusCancelled)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrInvalidTransition) {
			return err
		}
		return u.repo.ReleasePendingLock(ctx, existing)
	default:
		// Terminal payment still holding the lock: its release was missed.
		return u.repo.ReleasePendingLock(ctx, existing)
	}
}

func (u *PaymentUseCase) duplicateError(ctx context.Context, userID, itemID string) error {
	lock, err := u.repo.GetPendingLock(ctx, userID, itemID)
	if err != nil || lock.PaymentID == "" {
		return &DuplicatePendingPaymentError{}
	}
	return &DuplicatePendingPaymentError{PaymentID: lock.PaymentID}
}

// issuePix asks the provider once and falls back to the local generator on any
// failure. It never fails.
func (u *PaymentUseCase) issuePix(ctx context.Context, p entities.Payment, payer entities.Payer) entities.PixCharge {
	if u.provider != nil {
		pctx, cancel := context.WithTimeout(ctx, u.cfg.ProviderTimeout)
		charge, err := u.provider.RequestPixCharge(pctx, interfaces.PixChargeRequest{
			Amount:        p.Amount,
			Description:   p.Description,
			CorrelationID: p.CorrelationID,
			Payer:         payer,
		})
		cancel()
		if err == nil && charge.PixCode == "" {
			err = fmt.Errorf("%w: empty pix code", interfaces.ErrProviderUnavailable)
		}
		if err == nil {
			now := u.now()
			if !charge.ExpiresAt.After(now) {
				charge.ExpiresAt = now.Add(u.cfg.PendingWindow)
			}
			log.Printf("[payment][usecase] provider charge issued id=%s provider=%s provider_ref=%s", p.ID, charge.Provider, charge.ProviderRef)
			return charge
		}
		log.Printf("[payment][usecase] provider unavailable, using fallback id=%s err=%v", p.ID, err)
	}
	return u.fallback.Generate(p.Amount, p.CorrelationID, u.now())
}

func (u *PaymentUseCase) GetStatus(ctx context.Context, paymentID string) (PaymentStatusView, error) {
	p, err := u.loadPayment(ctx, paymentID)
	if err != nil {
		return PaymentStatusView{}, err
	}
	return PaymentStatusView{Payment: p, IsValid: p.IsValid(u.now())}, nil
}

// MarkApproved approves a pending payment and grants its item in one write.
// Repeating it on an approved payment is a no-op that keeps the first paidAt.
func (u *PaymentUseCase) MarkApproved(ctx context.Context, paymentID string, paidAt time.Time) (entities.Payment, error) {
	paymentID = strings.TrimSpace(paymentID)
	log.Printf("[payment][usecase] approve start id=%q", paymentID)
	if paidAt.IsZero() {
		paidAt = u.now()
	}
	paidAt = paidAt.UTC()

	var lastErr error
	for attempt := 1; attempt <= u.cfg.GrantAttempts; attempt++ {
		p, err := u.loadPayment(ctx, paymentID)
		if err != nil {
			return entities.Payment{}, err
		}
		switch p.Status {
		case entities.PaymentStatusApproved:
			log.Printf("[payment][usecase] approve no-op id=%s already approved", p.ID)
			return p, nil
		case entities.PaymentStatusFailed, entities.PaymentStatusCancelled:
			log.Printf("[payment][usecase] approve rejected id=%s status=%s", p.ID, p.Status)
			return entities.Payment{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, p.Status, entities.PaymentStatusApproved)
		}

		grant, err := u.pendingGrant(ctx, p, paidAt)
		if err != nil {
			lastErr = err
		} else {
			approved, err := u.repo.Approve(ctx, p.ID, paidAt, grant)
			if err == nil {
				log.Printf("[payment][usecase] approve success id=%s granted=%t attempt=%d", approved.ID, grant != nil, attempt)
				u.releaseLock(ctx, approved)
				u.publish(ctx, interfaces.EventPaymentApproved, approved)
				return approved, nil
			}
			lastErr = err
			if errors.Is(err, interfaces.ErrConcurrentUpdate) {
				log.Printf("[payment][usecase] approve raced id=%s attempt=%d, re-reading", p.ID, attempt)
				continue
			}
		}
		log.Printf("[payment][usecase] approve attempt failed id=%s attempt=%d err=%v", p.ID, attempt, lastErr)
		if attempt < u.cfg.GrantAttempts && !u.backoff(ctx, attempt) {
			lastErr = ctx.Err()
			break
		}
	}
	log.Printf("[payment][usecase] approve gave up id=%s err=%v", paymentID, lastErr)
	return entities.Payment{}, fmt.Errorf("%w: payment_id=%s: %v", ErrEntitlementGrantFailure, paymentID, lastErr)
}

// pendingGrant builds the entitlement that must go along with approval, or nil
// when the payment delivers nothing or the user already owns the item.
func (u *PaymentUseCase) pendingGrant(ctx context.Context, p entities.Payment, paidAt time.Time) (*entities.PurchaseRecord, error) {
	if !p.GrantsEntitlement() {
		return nil, nil
	}
	user, err := u.users.GetByID(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	if user.ID == "" {
		return nil, ErrUserNotFound
	}
	if user.Owns(p.ItemID) {
		return nil, nil
	}
	return &entities.PurchaseRecord{
		ItemID:      p.ItemID,
		Amount:      p.Amount,
		Method:      p.Method,
		PurchasedAt: paidAt,
		PaymentID:   p.ID,
	}, nil
}

func (u *PaymentUseCase) MarkFailed(ctx context.Context, paymentID string) (entities.Payment, error) {
	log.Printf("[payment][usecase] fail start id=%q", paymentID)
	return u.transition(ctx, paymentID, entities.PaymentStatusFailed)
}

func (u *PaymentUseCase) MarkCancelled(ctx context.Context, paymentID string) (entities.Payment, error) {
	log.Printf("[payment][usecase] cancel start id=%q", paymentID)
	return u.transition(ctx, paymentID, entities.PaymentStatusCancelled)
}

func (u *PaymentUseCase) transition(ctx context.Context, paymentID string, target entities.PaymentStatus) (entities.Payment, error) {
	for attempt := 1; attempt <= transitionAttempts; attempt++ {
		p, err := u.loadPayment(ctx, paymentID)
		if err != nil {
			return entities.Payment{}, err
		}
		if p.Status == target {
			log.Printf("[payment][usecase] %s no-op id=%s", target, p.ID)
			return p, nil
		}
		if p.Status.IsTerminal() {
			log.Printf("[payment][usecase] %s rejected id=%s status=%s", target, p.ID, p.Status)
			return entities.Payment{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, p.Status, target)
		}
		updated, err := u.repo.Transition(ctx, p.ID, target, u.now())
		if errors.Is(err, interfaces.ErrConcurrentUpdate) {
			continue
		}
		if err != nil {
			log.Printf("[payment][usecase] %s failed id=%s err=%v", target, p.ID, err)
			return entities.Payment{}, err
		}
		log.Printf("[payment][usecase] %s success id=%s", target, updated.ID)
		u.releaseLock(ctx, updated)
		u.publish(ctx, eventFor(target), updated)
		return updated, nil
	}
	return entities.Payment{}, fmt.Errorf("%w: payment_id=%s", ErrPaymentStillChanging, paymentID)
}

func (u *PaymentUseCase) HandleProviderNotification(ctx context.Context, n ProviderNotification) (entities.Payment, error) {
	ref := strings.TrimSpace(n.ProviderRef)
	status := strings.ToLower(strings.TrimSpace(n.Status))
	log.Printf("[payment][usecase] notification start provider_ref=%q status=%q", ref, status)
	if ref == "" {
		return entities.Payment{}, ErrMissingProviderRef
	}
	p, err := u.repo.GetByProviderRef(ctx, ref)
	if err != nil {
		return entities.Payment{}, err
	}
	if p.ID == "" {
		log.Printf("[payment][usecase] notification for unknown provider_ref=%s", ref)
		return entities.Payment{}, ErrPaymentNotFound
	}

	if status == "" {
		if u.provider == nil {
			return entities.Payment{}, fmt.Errorf("%w: no provider to fetch status", interfaces.ErrProviderUnavailable)
		}
		pctx, cancel := context.WithTimeout(ctx, u.cfg.ProviderTimeout)
		status, err = u.provider.FetchStatus(pctx, ref)
		cancel()
		if err != nil {
			log.Printf("[payment][usecase] notification status fetch failed provider_ref=%s err=%v", ref, err)
			return entities.Payment{}, err
		}
		status = strings.ToLower(strings.TrimSpace(status))
	}

	switch target := ClassifyProviderStatus(status); target {
	case entities.PaymentStatusApproved:
		return u.MarkApproved(ctx, p.ID, u.now())
	case entities.PaymentStatusFailed:
		return u.MarkFailed(ctx, p.ID)
	case entities.PaymentStatusCancelled:
		return u.MarkCancelled(ctx, p.ID)
	default:
		log.Printf("[payment][usecase] notification ignored id=%s provider_status=%q", p.ID, status)
		return p, nil
	}
}

// ClassifyProviderStatus maps provider vocabularies (Sacapay, Mercado Pago)
// onto the payment lifecycle. Anything still in flight maps to pending.
func ClassifyProviderStatus(status string) entities.PaymentStatus {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "approved", "paid", "completed", "accredited":
		return entities.PaymentStatusApproved
	case "failed", "rejected", "refused", "error":
		return entities.PaymentStatusFailed
	case "cancelled", "canceled", "expired":
		return entities.PaymentStatusCancelled
	default:
		return entities.PaymentStatusPending
	}
}

// CreateManualPayment records money received outside PIX and delivers the item
// in the same write. Provider and fallback are not involved.
func (u *PaymentUseCase) CreateManualPayment(ctx context.Context, userID, itemID string) (entities.Payment, error) {
	userID = strings.TrimSpace(userID)
	itemID = strings.TrimSpace(itemID)
	log.Printf("[payment][usecase] manual start user_id=%q item_id=%q", userID, itemID)
	if userID == "" {
		return entities.Payment{}, ErrInvalidUserID
	}
	if itemID == "" {
		return entities.Payment{}, ErrInvalidItemID
	}
	item, err := u.items.GetByID(ctx, itemID)
	if err != nil {
		return entities.Payment{}, err
	}
	if item.ID == "" {
		return entities.Payment{}, ErrItemNotFound
	}

	var lastErr error
	for attempt := 1; attempt <= u.cfg.GrantAttempts; attempt++ {
		user, err := u.users.GetByID(ctx, userID)
		if err != nil {
			return entities.Payment{}, err
		}
		if user.ID == "" {
			return entities.Payment{}, ErrUserNotFound
		}
		if user.Owns(itemID) {
			return entities.Payment{}, ErrItemAlreadyOwned
		}

		now := u.now()
		paidAt := now
		p := entities.Payment{
			ID:            uuid.NewString(),
			CorrelationID: uuid.NewString(),
			UserID:        userID,
			ItemID:        itemID,
			Amount:        item.Price.Round(2),
			Description:   "Pagamento manual: " + item.Title,
			Status:        entities.PaymentStatusApproved,
			Method:        entities.PaymentMethodManual,
			Provider:      entities.ProviderNone,
			ExpiresAt:     now,
			CreatedAt:     now,
			UpdatedAt:     now,
			PaidAt:        &paidAt,
		}
		grant := &entities.PurchaseRecord{
			ItemID:      itemID,
			Amount:      p.Amount,
			Method:      entities.PaymentMethodManual,
			PurchasedAt: paidAt,
			PaymentID:   p.ID,
		}
		created, err := u.repo.CreateApproved(ctx, p, grant)
		if err == nil {
			log.Printf("[payment][usecase] manual success id=%s user_id=%s item_id=%s", created.ID, userID, itemID)
			u.publish(ctx, interfaces.EventPaymentApproved, created)
			return created, nil
		}
		lastErr = err
		if !errors.Is(err, interfaces.ErrConcurrentUpdate) {
			break
		}
	}
	log.Printf("[payment][usecase] manual failed user_id=%s item_id=%s err=%v", userID, itemID, lastErr)
	return entities.Payment{}, fmt.Errorf("%w: %v", ErrEntitlementGrantFailure, lastErr)
}

func (u *PaymentUseCase) loadPayment(ctx context.Context, paymentID string) (entities.Payment, error) {
	paymentID = strings.TrimSpace(paymentID)
	if paymentID == "" {
		return entities.Payment{}, ErrInvalidPaymentID
	}
	p, err := u.repo.GetByID(ctx, paymentID)
	if err != nil {
		return entities.Payment{}, err
	}
	if p.ID == "" {
		return entities.Payment{}, ErrPaymentNotFound
	}
	return p, nil
}

func (u *PaymentUseCase) releaseLock(ctx context.Context, p entities.Payment) {
	if !p.GrantsEntitlement() {
		return
	}
	if err := u.repo.ReleasePendingLock(ctx, p); err != nil {
		log.Printf("[payment][usecase] pending lock release failed id=%s err=%v", p.ID, err)
	}
}

func (u *PaymentUseCase) publish(ctx context.Context, eventType string, p entities.Payment) {
	if u.events == nil {
		return
	}
	evt := interfaces.PaymentEvent{
		Type:       eventType,
		PaymentID:  p.ID,
		UserID:     p.UserID,
		ItemID:     p.ItemID,
		Status:     string(p.Status),
		Provider:   p.Provider,
		OccurredAt: u.now(),
	}
	if err := u.events.Publish(ctx, evt); err != nil {
		log.Printf("[payment][usecase] publish failed type=%s id=%s err=%v", eventType, p.ID, err)
	}
}

// backoff waits attempt * GrantBackoff. It returns false when ctx ended first.
func (u *PaymentUseCase) backoff(ctx context.Context, attempt int) bool {
	if u.cfg.GrantBackoff == 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(time.Duration(attempt) * u.cfg.GrantBackoff)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func eventFor(status entities.PaymentStatus) string {
	switch status {
	case entities.PaymentStatusApproved:
		return interfaces.EventPaymentApproved
	case entities.PaymentStatusFailed:
		return interfaces.EventPaymentFailed
	default:
		return interfaces.EventPaymentCancelled
	}
}

// mergePayer keeps explicit payer fields and fills the gaps from the profile.
func mergePayer(explicit, profile entities.Payer) entities.Payer {
	if strings.TrimSpace(explicit.Name) == "" {
		explicit.Name = profile.Name
	}
	if strings.TrimSpace(explicit.Email) == "" {
		explicit.Email = profile.Email
	}
	if strings.TrimSpace(explicit.Document) == "" {
		explicit.Document = profile.Document
	}
	return explicit
}
