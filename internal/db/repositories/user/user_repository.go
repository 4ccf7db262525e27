package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/MyelinBots/heavenly-go/internal/db"
	"gorm.io/gorm"
)

type UserRepository interface {
	CreateUser(ctx context.Context, u *User) error
	GetUserByID(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUsersByIDs(ctx context.Context, ids []string) ([]*User, error)
	ListByRole(ctx context.Context, role Role) ([]*User, error)

	UpdateUser(ctx context.Context, u *User) error
	UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error
	TouchLogin(ctx context.Context, id string, t time.Time) error
}

type UserRepositoryImpl struct {
	db *db.DB
}

func NewUserRepository(database *db.DB) UserRepository {
	return &UserRepositoryImpl{db: database}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *UserRepositoryImpl) CreateUser(ctx context.Context, u *User) error {
	u.Email = NormalizeEmail(u.Email)
	return r.db.DB.WithContext(ctx).Create(u).Error
}

func (r *UserRepositoryImpl) GetUserByID(ctx context.Context, id string) (*User, error) {
	var u User
	err := r.db.DB.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepositoryImpl) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := r.db.DB.WithContext(ctx).Where("email = ?", NormalizeEmail(email)).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepositoryImpl) GetUsersByIDs(ctx context.Context, ids []string) ([]*User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []*User
	if err := r.db.DB.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepositoryImpl) ListByRole(ctx context.Context, role Role) ([]*User, error) {
	var users []*User
	if err := r.db.DB.WithContext(ctx).
		Where("role = ? AND is_active = ?", role, true).
		Order("name ASC").
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepositoryImpl) UpdateUser(ctx context.Context, u *User) error {
	u.Email = NormalizeEmail(u.Email)
	return r.db.DB.WithContext(ctx).Save(u).Error
}

func (r *UserRepositoryImpl) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	return r.db.DB.WithContext(ctx).
		Model(&User{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *UserRepositoryImpl) TouchLogin(ctx context.Context, id string, t time.Time) error {
	return r.db.DB.WithContext(ctx).
		Model(&User{}).
		Where("id = ?", id).
		Update("last_login_at", &t).Error
}
