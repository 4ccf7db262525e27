package payment

import (
	"context"
	"errors"
	"time"

	"github.com/MyelinBots/heavenly-go/internal/db"
	"gorm.io/gorm"
)

type PaymentRepository interface {
	CreatePayments(ctx context.Context, payments ...*Payment) error
	GetPaymentByID(ctx context.Context, id string) (*Payment, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
	ListByPayer(ctx context.Context, payerID string) ([]*Payment, error)
	ListBySession(ctx context.Context, sessionID string) ([]*Payment, error)
	SumCompletedForTherapist(ctx context.Context, therapistID string, from, to time.Time) (int64, error)
}

type PaymentRepositoryImpl struct {
	db *db.DB
}

func NewPaymentRepository(database *db.DB) PaymentRepository {
	return &PaymentRepositoryImpl{db: database}
}

// CreatePayments inserts all payments atomically.
func (r *PaymentRepositoryImpl) CreatePayments(ctx context.Context, payments ...*Payment) error {
	return r.db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, p := range payments {
			if err := tx.Create(p).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *PaymentRepositoryImpl) GetPaymentByID(ctx context.Context, id string) (*Payment, error) {
	var p Payment
	err := r.db.DB.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepositoryImpl) UpdateStatus(ctx context.Context, id string, status Status) error {
	return r.db.DB.WithContext(ctx).
		Model(&Payment{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *PaymentRepositoryImpl) ListByPayer(ctx context.Context, payerID string) ([]*Payment, error) {
	var payments []*Payment
	if err := r.db.DB.WithContext(ctx).
		Where("payer_id = ?", payerID).
		Order("created_at DESC").
		Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *PaymentRepositoryImpl) ListBySession(ctx context.Context, sessionID string) ([]*Payment, error) {
	var payments []*Payment
	if err := r.db.DB.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *PaymentRepositoryImpl) SumCompletedForTherapist(ctx context.Context, therapistID string, from, to time.Time) (int64, error) {
	var total int64
	err := r.db.DB.WithContext(ctx).
		Table("payments").
		Select("COALESCE(SUM(payments.amount), 0)").
		Joins("JOIN therapy_sessions ON therapy_sessions.id = payments.session_id").
		Where("therapy_sessions.therapist_id = ? AND payments.status = ? AND payments.created_at >= ? AND payments.created_at < ?",
			therapistID, StatusCompleted, from, to).
		Scan(&total).Error
	return total, err
}
