package models

import "time"

// ProcessedEvent marks a provider event id whose effects have been durably
// applied. The unique index on StripeEventID is what makes concurrent
// deliveries of the same event collapse to a single application.
type ProcessedEvent struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	StripeEventID string    `gorm:"type:varchar(191);not null;uniqueIndex" json:"stripe_event_id"`
	EventType     string    `gorm:"type:varchar(100);not null;index" json:"event_type"`
	CreatedAt     time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}
