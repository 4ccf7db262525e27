package auth_session

import (
	"context"
	"errors"
	"time"

	"github.com/MyelinBots/heavenly-go/internal/db"
	"gorm.io/gorm"
)

type AuthSessionRepository interface {
	CreateSession(ctx context.Context, s *AuthSession) error
	GetByTokenHash(ctx context.Context, hash string) (*AuthSession, error)
	DeleteByTokenHash(ctx context.Context, hash string) error
	DeleteForUser(ctx context.Context, userID string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type AuthSessionRepositoryImpl struct {
	db *db.DB
}

func NewAuthSessionRepository(database *db.DB) AuthSessionRepository {
	return &AuthSessionRepositoryImpl{db: database}
}

func (r *AuthSessionRepositoryImpl) CreateSession(ctx context.Context, s *AuthSession) error {
	s.ExpiresAt = s.ExpiresAt.UTC()
	return r.db.DB.WithContext(ctx).Create(s).Error
}

func (r *AuthSessionRepositoryImpl) GetByTokenHash(ctx context.Context, hash string) (*AuthSession, error) {
	var s AuthSession
	err := r.db.DB.WithContext(ctx).Where("token_hash = ?", hash).First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *AuthSessionRepositoryImpl) DeleteByTokenHash(ctx context.Context, hash string) error {
	return r.db.DB.WithContext(ctx).Where("token_hash = ?", hash).Delete(&AuthSession{}).Error
}

func (r *AuthSessionRepositoryImpl) DeleteForUser(ctx context.Context, userID string) error {
	return r.db.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&AuthSession{}).Error
}

func (r *AuthSessionRepositoryImpl) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.DB.WithContext(ctx).Where("expires_at <= ?", now.UTC()).Delete(&AuthSession{})
	return res.RowsAffected, res.Error
}
