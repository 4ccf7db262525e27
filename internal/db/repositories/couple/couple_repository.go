package couple

import (
	"context"
	"errors"

	"github.com/MyelinBots/heavenly-go/internal/db"
	"gorm.io/gorm"
)

type CoupleRepository interface {
	// CreateWithPartners inserts the couple and links both users in one transaction.
	CreateWithPartners(ctx context.Context, c *Couple, partner1Role, partner2Role string) error
	GetCoupleByID(ctx context.Context, id string) (*Couple, error)
	GetCoupleForUser(ctx context.Context, userID string) (*Couple, error)
}

type CoupleRepositoryImpl struct {
	db *db.DB
}

func NewCoupleRepository(database *db.DB) CoupleRepository {
	return &CoupleRepositoryImpl{db: database}
}

func (r *CoupleRepositoryImpl) CreateWithPartners(ctx context.Context, c *Couple, partner1Role, partner2Role string) error {
	return r.db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(c).Error; err != nil {
			return err
		}

		link := func(userID, partnerID, role string) error {
			return tx.Table("users").
				Where("id = ?", userID).
				Updates(map[string]interface{}{
					"couple_id":         c.ID,
					"couple_partner_id": partnerID,
					"role":              role,
				}).Error
		}
		if err := link(c.Partner1ID, c.Partner2ID, partner1Role); err != nil {
			return err
		}
		return link(c.Partner2ID, c.Partner1ID, partner2Role)
	})
}

func (r *CoupleRepositoryImpl) GetCoupleByID(ctx context.Context, id string) (*Couple, error) {
	var c Couple
	err := r.db.DB.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *CoupleRepositoryImpl) GetCoupleForUser(ctx context.Context, userID string) (*Couple, error) {
	var c Couple
	err := r.db.DB.WithContext(ctx).
		Where("partner1_id = ? OR partner2_id = ?", userID, userID).
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}
