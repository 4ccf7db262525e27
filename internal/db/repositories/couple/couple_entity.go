package couple

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Couple struct {
	ID                string     `gorm:"column:id;type:varchar(36);primaryKey" json:"id"`
	Partner1ID        string     `gorm:"column:partner1_id;type:varchar(36);not null;uniqueIndex" json:"partner1_id"`
	Partner2ID        string     `gorm:"column:partner2_id;type:varchar(36);not null;uniqueIndex" json:"partner2_id"`
	RelationshipStart *time.Time `gorm:"column:relationship_start" json:"relationship_start,omitempty"`
	TherapyGoals      string     `gorm:"column:therapy_goals;type:text" json:"therapy_goals,omitempty"`
	CreatedAt         time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Couple) TableName() string {
	return "couples"
}

func (c *Couple) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// PartnerOf returns the other partner's id, or "" when userID is not in the couple.
func (c *Couple) PartnerOf(userID string) string {
	switch userID {
	case c.Partner1ID:
		return c.Partner2ID
	case c.Partner2ID:
		return c.Partner1ID
	}
	return ""
}
