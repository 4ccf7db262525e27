package system_log

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	LevelInfo     = "info"
	LevelWarning  = "warning"
	LevelError    = "error"
	LevelCritical = "critical"
)

type Log struct {
	ID        string         `gorm:"column:id;type:varchar(36);primaryKey" json:"id"`
	Level     string         `gorm:"column:level;type:varchar(16);not null;index" json:"level"`
	Message   string         `gorm:"column:message;type:text;not null" json:"message"`
	Context   datatypes.JSON `gorm:"column:context" json:"context,omitempty"`
	UserID    *string        `gorm:"column:user_id;type:varchar(36);index" json:"user_id,omitempty"`
	SessionID *string        `gorm:"column:session_id;type:varchar(36)" json:"session_id,omitempty"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`
}

func (Log) TableName() string {
	return "system_logs"
}

func (l *Log) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}
