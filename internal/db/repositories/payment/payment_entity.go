package payment

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
	StatusRefunded  Status = "REFUNDED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusFailed, StatusRefunded:
		return true
	}
	return false
}

// Payment amounts are minor currency units (cents).
type Payment struct {
	ID               string         `gorm:"column:id;type:varchar(36);primaryKey" json:"id"`
	PayerID          string         `gorm:"column:payer_id;type:varchar(36);not null;index" json:"payer_id"`
	SessionID        *string        `gorm:"column:session_id;type:varchar(36);index" json:"session_id,omitempty"`
	Amount           int64          `gorm:"column:amount;not null" json:"amount"`
	Currency         string         `gorm:"column:currency;type:varchar(3);not null;default:USD" json:"currency"`
	Description      string         `gorm:"column:description;type:text" json:"description,omitempty"`
	Status           Status         `gorm:"column:status;type:varchar(16);not null;default:PENDING" json:"status"`
	IsSplitPayment   bool           `gorm:"column:is_split_payment;not null;default:false" json:"is_split_payment"`
	SplitPercentage  *int           `gorm:"column:split_percentage" json:"split_percentage,omitempty"`
	StripePaymentID  string         `gorm:"column:stripe_payment_id;type:varchar(255)" json:"stripe_payment_id,omitempty"`
	StripeCustomerID string         `gorm:"column:stripe_customer_id;type:varchar(255)" json:"stripe_customer_id,omitempty"`
	Metadata         datatypes.JSON `gorm:"column:metadata" json:"metadata,omitempty"`
	CreatedAt        time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Payment) TableName() string {
	return "payments"
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Currency == "" {
		p.Currency = "USD"
	}
	if p.Status == "" {
		p.Status = StatusPending
	}
	return nil
}
