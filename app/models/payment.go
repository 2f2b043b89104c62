package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PaymentStatus is the lifecycle state of a checkout payment.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusSucceeded PaymentStatus = "succeeded"
	PaymentStatusCanceled  PaymentStatus = "canceled"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// IsTerminal reports whether no further status transition is allowed.
func (s PaymentStatus) IsTerminal() bool {
	switch s {
	case PaymentStatusSucceeded, PaymentStatusCanceled, PaymentStatusFailed:
		return true
	default:
		return false
	}
}

// Payment represents one checkout attempt. It is created Pending by the
// checkout flow and only mutated by the webhook reconciliation engine.
// Version backs the optimistic concurrency check on save.
type Payment struct {
	ID                    uint          `gorm:"primaryKey" json:"-"`
	UUID                  string        `gorm:"type:char(36) CHARACTER SET utf8 COLLATE utf8_bin;uniqueIndex;not null" json:"id"`
	StripeSessionID       string        `gorm:"type:varchar(191);not null;uniqueIndex" json:"stripe_session_id" validate:"required"`
	StripePaymentIntentID string        `gorm:"type:varchar(191);not null;uniqueIndex" json:"stripe_payment_intent_id" validate:"required"`
	Amount                int64         `gorm:"not null" json:"amount" validate:"required,gt=0"`
	Currency              string        `gorm:"type:varchar(10);not null" json:"currency" validate:"required,min=3,max=10"`
	Status                PaymentStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Version               uint          `gorm:"not null;default:0" json:"-"`
	CreatedAt             time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
	CompletedAt           *time.Time    `gorm:"type:timestamp;default:null" json:"completed_at,omitempty"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.UUID == "" {
		p.UUID = uuid.New().String()
	}
	if p.Status == "" {
		p.Status = PaymentStatusPending
	}
	return nil
}

func (p *Payment) Validate() error {
	v := validator.New()

	return v.Struct(p)
}
