package system_log

import (
	"context"
	"encoding/json"

	"github.com/MyelinBots/heavenly-go/internal/db"
	"gorm.io/datatypes"
)

type SystemLogRepository interface {
	// Log writes an entry; ctxData is marshalled into the context column.
	Log(ctx context.Context, level, message string, userID *string, ctxData map[string]interface{}) error
	ListByLevel(ctx context.Context, level string, limit int) ([]*Log, error)
}

type SystemLogRepositoryImpl struct {
	db *db.DB
}

func NewSystemLogRepository(database *db.DB) SystemLogRepository {
	return &SystemLogRepositoryImpl{db: database}
}

func (r *SystemLogRepositoryImpl) Log(ctx context.Context, level, message string, userID *string, ctxData map[string]interface{}) error {
	entry := &Log{
		Level:   level,
		Message: message,
		UserID:  userID,
	}
	if ctxData != nil {
		raw, err := json.Marshal(ctxData)
		if err != nil {
			return err
		}
		entry.Context = datatypes.JSON(raw)
	}
	return r.db.DB.WithContext(ctx).Create(entry).Error
}

func (r *SystemLogRepositoryImpl) ListByLevel(ctx context.Context, level string, limit int) ([]*Log, error) {
	if limit <= 0 {
		limit = 50
	}
	var logs []*Log
	if err := r.db.DB.WithContext(ctx).
		Where("level = ?", level).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
