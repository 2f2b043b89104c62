package payments

import (
	"context"

	"github.com/ledgerline/paygate/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store provides payment persistence for the checkout flow and the
// reconciliation engine. Lookups return gorm.ErrRecordNotFound when no
// payment matches.
type Store interface {
	Create(ctx context.Context, payment *models.Payment) error
	GetByID(ctx context.Context, id uint) (*models.Payment, error)
	GetByUUID(ctx context.Context, uuid string) (*models.Payment, error)
	FindBySessionID(ctx context.Context, sessionID string) (*models.Payment, error)
	FindByPaymentIntentID(ctx context.Context, paymentIntentID string) (*models.Payment, error)
	Save(ctx context.Context, payment *models.Payment) error
}

// Ledger records which provider event ids have already been applied.
type Ledger interface {
	HasProcessed(ctx context.Context, eventID string) (bool, error)
	MarkProcessed(ctx context.Context, eventID, eventType string) error
}

// Repository implements Store and Ledger on a single database handle.
type Repository interface {
	Store
	Ledger
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a payments repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *gormRepository) GetByID(ctx context.Context, id uint) (*models.Payment, error) {
	var p models.Payment
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *gormRepository) GetByUUID(ctx context.Context, uuid string) (*models.Payment, error) {
	var p models.Payment
	if err := r.db.WithContext(ctx).Where("uuid = ?", uuid).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *gormRepository) FindBySessionID(ctx context.Context, sessionID string) (*models.Payment, error) {
	var p models.Payment
	if err := r.db.WithContext(ctx).Where("stripe_session_id = ?", sessionID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *gormRepository) FindByPaymentIntentID(ctx context.Context, paymentIntentID string) (*models.Payment, error) {
	var p models.Payment
	if err := r.db.WithContext(ctx).Where("stripe_payment_intent_id = ?", paymentIntentID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// Save writes the mutable payment fields guarded by the version column.
// Zero rows affected means a concurrent writer advanced the payment first
// and the caller must re-read before deciding anything.
func (r *gormRepository) Save(ctx context.Context, payment *models.Payment) error {
	res := r.db.WithContext(ctx).Model(&models.Payment{}).
		Where("id = ? AND version = ?", payment.ID, payment.Version).
		Updates(map[string]interface{}{
			"status":                   payment.Status,
			"stripe_payment_intent_id": payment.StripePaymentIntentID,
			"completed_at":             payment.CompletedAt,
			"version":                  payment.Version + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}
	payment.Version++
	return nil
}

func (r *gormRepository) HasProcessed(ctx context.Context, eventID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ProcessedEvent{}).
		Where("stripe_event_id = ?", eventID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *gormRepository) MarkProcessed(ctx context.Context, eventID, eventType string) error {
	tx := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "stripe_event_id"}},
		DoNothing: true,
	}).Create(&models.ProcessedEvent{
		StripeEventID: eventID,
		EventType:     eventType,
	})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrDuplicateEvent
	}
	return nil
}
