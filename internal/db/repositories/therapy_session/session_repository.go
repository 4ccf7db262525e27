package therapy_session

import (
	"context"
	"errors"
	"time"

	"github.com/MyelinBots/heavenly-go/internal/db"
	"gorm.io/gorm"
)

// ListFilter narrows ListForParticipant; zero values mean "no constraint".
type ListFilter struct {
	Status       Status
	StartsAfter  time.Time
	StartsBefore time.Time
	Limit        int
	Descending   bool
}

type SessionRepository interface {
	CreateSession(ctx context.Context, s *Session) error
	GetSessionByID(ctx context.Context, id string) (*Session, error)
	// UpdateIfStatus and UpdateStatus only touch the row while it is still
	// in status from; false means another writer moved it first.
	UpdateIfStatus(ctx context.Context, id string, from Status, fields map[string]interface{}) (bool, error)
	UpdateStatus(ctx context.Context, id string, from, to Status) (bool, error)

	ListForParticipant(ctx context.Context, userID string, filter ListFilter) ([]*Session, error)
	ListForTherapistBetween(ctx context.Context, therapistID string, from, to time.Time) ([]*Session, error)
	HasOverlap(ctx context.Context, therapistID string, start, end time.Time, excludeID string) (bool, error)
	RecentForClient(ctx context.Context, clientID string, limit int) ([]*Session, error)

	// sweeper helpers
	ListEndedBefore(ctx context.Context, status Status, before time.Time) ([]*Session, error)
	BulkUpdateStatus(ctx context.Context, ids []string, from, to Status) (int64, error)
}

type SessionRepositoryImpl struct {
	db *db.DB
}

func NewSessionRepository(database *db.DB) SessionRepository {
	return &SessionRepositoryImpl{db: database}
}

func (r *SessionRepositoryImpl) CreateSession(ctx context.Context, s *Session) error {
	return r.db.DB.WithContext(ctx).Create(s).Error
}

func (r *SessionRepositoryImpl) GetSessionByID(ctx context.Context, id string) (*Session, error) {
	var s Session
	err := r.db.DB.WithContext(ctx).Where("id = ?", id).First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *SessionRepositoryImpl) UpdateIfStatus(ctx context.Context, id string, from Status, fields map[string]interface{}) (bool, error) {
	res := r.db.DB.WithContext(ctx).
		Model(&Session{}).
		Where("id = ? AND status = ?", id, from).
		Updates(fields)
	return res.RowsAffected == 1, res.Error
}

func (r *SessionRepositoryImpl) UpdateStatus(ctx context.Context, id string, from, to Status) (bool, error) {
	return r.UpdateIfStatus(ctx, id, from, map[string]interface{}{"status": to})
}

func (r *SessionRepositoryImpl) ListForParticipant(ctx context.Context, userID string, filter ListFilter) ([]*Session, error) {
	q := r.db.DB.WithContext(ctx).
		Where("therapist_id = ? OR client_id = ? OR partner_id = ?", userID, userID, userID)

	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if !filter.StartsAfter.IsZero() {
		q = q.Where("start_time > ?", filter.StartsAfter)
	}
	if !filter.StartsBefore.IsZero() {
		q = q.Where("start_time < ?", filter.StartsBefore)
	}
	if filter.Descending {
		q = q.Order("start_time DESC")
	} else {
		q = q.Order("start_time ASC")
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var sessions []*Session
	if err := q.Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

// ListForTherapistBetween returns non-cancelled sessions starting in [from, to).
func (r *SessionRepositoryImpl) ListForTherapistBetween(ctx context.Context, therapistID string, from, to time.Time) ([]*Session, error) {
	var sessions []*Session
	if err := r.db.DB.WithContext(ctx).
		Where("therapist_id = ? AND status <> ? AND start_time >= ? AND start_time < ?",
			therapistID, StatusCancelled, from, to).
		Order("start_time ASC").
		Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *SessionRepositoryImpl) HasOverlap(ctx context.Context, therapistID string, start, end time.Time, excludeID string) (bool, error) {
	q := r.db.DB.WithContext(ctx).
		Model(&Session{}).
		Where("therapist_id = ? AND status NOT IN ? AND start_time < ? AND end_time > ?",
			therapistID, []Status{StatusCancelled, StatusNoShow}, end, start)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *SessionRepositoryImpl) RecentForClient(ctx context.Context, clientID string, limit int) ([]*Session, error) {
	if limit <= 0 {
		limit = 5
	}
	var sessions []*Session
	if err := r.db.DB.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("created_at DESC").
		Limit(limit).
		Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *SessionRepositoryImpl) ListEndedBefore(ctx context.Context, status Status, before time.Time) ([]*Session, error) {
	var sessions []*Session
	if err := r.db.DB.WithContext(ctx).
		Where("status = ? AND end_time < ?", status, before).
		Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *SessionRepositoryImpl) BulkUpdateStatus(ctx context.Context, ids []string, from, to Status) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.DB.WithContext(ctx).
		Model(&Session{}).
		Where("id IN ? AND status = ?", ids, from).
		Update("status", to)
	return res.RowsAffected, res.Error
}
