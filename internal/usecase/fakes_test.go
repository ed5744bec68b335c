package usecase

import (
	"context"
	"sync"
	"time"

	"loja_pix/internal/domain/entities"
	"loja_pix/internal/usecase/interfaces"
)

// In-memory stores with the same conditional semantics as the DynamoDB
// repositories, used by the flow tests.

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]entities.User
}

func newMemUserRepo(users ...entities.User) *memUserRepo {
	r := &memUserRepo{users: map[string]entities.User{}}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (entities.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users[id], nil
}

func (r *memUserRepo) Grant(_ context.Context, userID string, record entities.PurchaseRecord) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.grantLocked(userID, record)
}

func (r *memUserRepo) grantLocked(userID string, record entities.PurchaseRecord) (bool, error) {
	u, ok := r.users[userID]
	if !ok {
		return false, interfaces.ErrRecordNotFound
	}
	if u.Owns(record.ItemID) {
		return false, nil
	}
	u.OwnedItemIDs = append(u.OwnedItemIDs, record.ItemID)
	u.PurchaseHistory = append(u.PurchaseHistory, record)
	r.users[userID] = u
	return true, nil
}

type memItemRepo map[string]entities.Item

func (r memItemRepo) GetByID(_ context.Context, id string) (entities.Item, error) {
	return r[id], nil
}

type memPaymentRepo struct {
	mu       sync.Mutex
	payments map[string]entities.Payment
	locks    map[string]entities.PendingLock
	users    *memUserRepo
	// conflicts makes that many creates hitting a held lock fail the way a
	// conflicting DynamoDB transaction does, instead of the condition check.
	conflicts int
}

func newMemPaymentRepo(users *memUserRepo) *memPaymentRepo {
	return &memPaymentRepo{
		payments: map[string]entities.Payment{},
		locks:    map[string]entities.PendingLock{},
		users:    users,
	}
}

func (r *memPaymentRepo) CreatePending(_ context.Context, p entities.Payment) (entities.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.GrantsEntitlement() {
		key := entities.PendingLockKey(p.UserID, p.ItemID)
		if lock, ok := r.locks[key]; ok && lock.ExpiresAt.After(p.CreatedAt) {
			if r.conflicts > 0 {
				r.conflicts--
				return entities.Payment{}, interfaces.ErrConcurrentUpdate
			}
			return entities.Payment{}, interfaces.ErrPendingPaymentExists
		}
		r.locks[key] = entities.PendingLock{UserID: p.UserID, ItemID: p.ItemID, PaymentID: p.ID, ExpiresAt: p.ExpiresAt}
	}
	r.payments[p.ID] = p
	return p, nil
}

func (r *memPaymentRepo) CreateApproved(_ context.Context, p entities.Payment, grant *entities.PurchaseRecord) (entities.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if grant != nil {
		r.users.mu.Lock()
		granted, err := r.users.grantLocked(p.UserID, *grant)
		r.users.mu.Unlock()
		if err != nil {
			return entities.Payment{}, err
		}
		if !granted {
			return entities.Payment{}, interfaces.ErrConcurrentUpdate
		}
	}
	r.payments[p.ID] = p
	return p, nil
}

func (r *memPaymentRepo) GetByID(_ context.Context, id string) (entities.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.payments[id], nil
}

func (r *memPaymentRepo) GetByProviderRef(_ context.Context, ref string) (entities.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.payments {
		if p.ProviderRef == ref {
			return p, nil
		}
	}
	return entities.Payment{}, nil
}

func (r *memPaymentRepo) GetPendingLock(_ context.Context, userID, itemID string) (entities.PendingLock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.locks[entities.PendingLockKey(userID, itemID)], nil
}

func (r *memPaymentRepo) AttachPix(_ context.Context, id string, pix entities.PixCharge) (entities.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok || p.Status != entities.PaymentStatusPending {
		return entities.Payment{}, interfaces.ErrConcurrentUpdate
	}
	p.PixCode = pix.PixCode
	p.QRCodeURL = pix.QRCodeURL
	p.ProviderRef = pix.ProviderRef
	p.ExpiresAt = pix.ExpiresAt
	p.Provider = pix.Provider
	r.payments[id] = p
	key := entities.PendingLockKey(p.UserID, p.ItemID)
	if lock, ok := r.locks[key]; ok && lock.PaymentID == id {
		lock.ExpiresAt = pix.ExpiresAt
		r.locks[key] = lock
	}
	return p, nil
}

func (r *memPaymentRepo) Approve(_ context.Context, id string, paidAt time.Time, grant *entities.PurchaseRecord) (entities.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok || p.Status != entities.PaymentStatusPending {
		return entities.Payment{}, interfaces.ErrConcurrentUpdate
	}
	if grant != nil {
		r.users.mu.Lock()
		granted, err := r.users.grantLocked(p.UserID, *grant)
		r.users.mu.Unlock()
		if err != nil || !granted {
			return entities.Payment{}, interfaces.ErrConcurrentUpdate
		}
	}
	p.Status = entities.PaymentStatusApproved
	p.PaidAt = &paidAt
	p.UpdatedAt = paidAt
	r.payments[id] = p
	return p, nil
}

func (r *memPaymentRepo) Transition(_ context.Context, id string, status entities.PaymentStatus, at time.Time) (entities.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok || p.Status != entities.PaymentStatusPending {
		return entities.Payment{}, interfaces.ErrConcurrentUpdate
	}
	p.Status = status
	p.UpdatedAt = at
	r.payments[id] = p
	return p, nil
}

func (r *memPaymentRepo) ReleasePendingLock(_ context.Context, p entities.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := entities.PendingLockKey(p.UserID, p.ItemID)
	if lock, ok := r.locks[key]; ok && lock.PaymentID == p.ID {
		delete(r.locks, key)
	}
	return nil
}

type stubProvider struct {
	mu       sync.Mutex
	charge   entities.PixCharge
	err      error
	status   string
	requests []interfaces.PixChargeRequest
}

func (s *stubProvider) RequestPixCharge(_ context.Context, req interfaces.PixChargeRequest) (entities.PixCharge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	if s.err != nil {
		return entities.PixCharge{}, s.err
	}
	return s.charge, nil
}

func (s *stubProvider) FetchStatus(_ context.Context, _ string) (string, error) {
	return s.status, s.err
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []interfaces.PaymentEvent
}

func (p *recordingPublisher) Publish(_ context.Context, evt interfaces.PaymentEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}
