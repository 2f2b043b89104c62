package payments

import (
	"context"
	"fmt"
	"sync"

	"github.com/ledgerline/paygate/app/models"
	"gorm.io/gorm"
)

// fakeRepo implements Store and Ledger in memory with the same contracts
// the GORM repository has: version-checked saves and insert-once ledger
// marks.
type fakeRepo struct {
	mu        sync.Mutex
	seq       uint
	payments  map[uint]*models.Payment
	processed map[string]string

	saveErr      error
	lookupErr    error
	markErr      error
	conflictOnce bool
	markRaceOnce bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		payments:  make(map[uint]*models.Payment),
		processed: make(map[string]string),
	}
}

func clonePayment(p *models.Payment) *models.Payment {
	c := *p
	if p.CompletedAt != nil {
		t := *p.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}

func (f *fakeRepo) Create(ctx context.Context, payment *models.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	payment.ID = f.seq
	if payment.UUID == "" {
		payment.UUID = fmt.Sprintf("uuid-%d", f.seq)
	}
	if payment.Status == "" {
		payment.Status = models.PaymentStatusPending
	}
	f.payments[payment.ID] = clonePayment(payment)
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id uint) (*models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return clonePayment(p), nil
}

func (f *fakeRepo) GetByUUID(ctx context.Context, uuid string) (*models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.payments {
		if p.UUID == uuid {
			return clonePayment(p), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) FindBySessionID(ctx context.Context, sessionID string) (*models.Payment, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.payments {
		if p.StripeSessionID == sessionID {
			return clonePayment(p), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) FindByPaymentIntentID(ctx context.Context, paymentIntentID string) (*models.Payment, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.payments {
		if p.StripePaymentIntentID == paymentIntentID {
			return clonePayment(p), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) Save(ctx context.Context, payment *models.Payment) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.conflictOnce {
		f.conflictOnce = false
		return ErrConflict
	}
	stored, ok := f.payments[payment.ID]
	if !ok || stored.Version != payment.Version {
		return ErrConflict
	}
	stored.Status = payment.Status
	stored.StripePaymentIntentID = payment.StripePaymentIntentID
	if payment.CompletedAt != nil {
		t := *payment.CompletedAt
		stored.CompletedAt = &t
	} else {
		stored.CompletedAt = nil
	}
	stored.Version++
	payment.Version++
	return nil
}

func (f *fakeRepo) HasProcessed(ctx context.Context, eventID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.processed[eventID]
	return ok, nil
}

func (f *fakeRepo) MarkProcessed(ctx context.Context, eventID, eventType string) error {
	if f.markErr != nil {
		return f.markErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.markRaceOnce {
		// Another delivery of the same event id slips its row in between
		// our HasProcessed check and this insert.
		f.markRaceOnce = false
		f.processed[eventID] = eventType
		return ErrDuplicateEvent
	}
	if _, ok := f.processed[eventID]; ok {
		return ErrDuplicateEvent
	}
	f.processed[eventID] = eventType
	return nil
}

func (f *fakeRepo) addPendingPayment(sessionID, intentID string) *models.Payment {
	p := &models.Payment{
		StripeSessionID:       sessionID,
		StripePaymentIntentID: intentID,
		Amount:                1000,
		Currency:              "eur",
		Status:                models.PaymentStatusPending,
	}
	_ = f.Create(context.Background(), p)
	return p
}

func (f *fakeRepo) ledgerSize() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.processed)
}

type fakeVerifier struct {
	event *DomainEvent
	err   error
}

func (v *fakeVerifier) Verify(rawBody []byte, signatureHeader string) (*DomainEvent, error) {
	if v.err != nil {
		return nil, v.err
	}
	return v.event, nil
}

type fakeCheckout struct {
	session *CheckoutSession
	err     error
}

func (c *fakeCheckout) CreateSession(ctx context.Context, amount int64, currency string) (*CheckoutSession, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.session, nil
}
