package therapist

import (
	"context"
	"errors"

	"github.com/MyelinBots/heavenly-go/internal/db"
	"gorm.io/gorm"
)

type TherapistRepository interface {
	GetProfileByUserID(ctx context.Context, userID string) (*Profile, error)
	UpsertProfile(ctx context.Context, p *Profile) error
	ListAccepting(ctx context.Context) ([]*Profile, error)

	// client assignments
	Assign(ctx context.Context, clientID, therapistID string) (*Assignment, error)
	EndAssignment(ctx context.Context, clientID, therapistID string) error
	TherapistIDsForClient(ctx context.Context, clientID string) ([]string, error)
	ClientIDsForTherapist(ctx context.Context, therapistID string) ([]string, error)
	IsAssigned(ctx context.Context, clientID, therapistID string) (bool, error)
}

type TherapistRepositoryImpl struct {
	db *db.DB
}

func NewTherapistRepository(database *db.DB) TherapistRepository {
	return &TherapistRepositoryImpl{db: database}
}

func (r *TherapistRepositoryImpl) GetProfileByUserID(ctx context.Context, userID string) (*Profile, error) {
	var p Profile
	err := r.db.DB.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// Upsert by user_id
func (r *TherapistRepositoryImpl) UpsertProfile(ctx context.Context, p *Profile) error {
	existing, err := r.GetProfileByUserID(ctx, p.UserID)
	if err != nil {
		return err
	}
	if existing == nil {
		return r.db.DB.WithContext(ctx).Create(p).Error
	}

	// keep same primary key
	p.ID = existing.ID
	p.CreatedAt = existing.CreatedAt
	return r.db.DB.WithContext(ctx).Save(p).Error
}

func (r *TherapistRepositoryImpl) ListAccepting(ctx context.Context) ([]*Profile, error) {
	var profiles []*Profile
	if err := r.db.DB.WithContext(ctx).
		Where("is_accepting_clients = ?", true).
		Order("years_experience DESC").
		Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *TherapistRepositoryImpl) activeAssignment(ctx context.Context, clientID, therapistID string) (*Assignment, error) {
	var a Assignment
	err := r.db.DB.WithContext(ctx).
		Where("client_id = ? AND therapist_id = ? AND status = ?", clientID, therapistID, AssignmentActive).
		First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

// Assign is idempotent: an existing active assignment is returned as is.
func (r *TherapistRepositoryImpl) Assign(ctx context.Context, clientID, therapistID string) (*Assignment, error) {
	existing, err := r.activeAssignment(ctx, clientID, therapistID)
	if err != nil || existing != nil {
		return existing, err
	}

	a := &Assignment{ClientID: clientID, TherapistID: therapistID, Status: AssignmentActive}
	if err := r.db.DB.WithContext(ctx).Create(a).Error; err != nil {
		return nil, err
	}
	return a, nil
}

func (r *TherapistRepositoryImpl) EndAssignment(ctx context.Context, clientID, therapistID string) error {
	return r.db.DB.WithContext(ctx).
		Model(&Assignment{}).
		Where("client_id = ? AND therapist_id = ? AND status = ?", clientID, therapistID, AssignmentActive).
		Update("status", AssignmentEnded).Error
}

func (r *TherapistRepositoryImpl) TherapistIDsForClient(ctx context.Context, clientID string) ([]string, error) {
	var ids []string
	if err := r.db.DB.WithContext(ctx).
		Model(&Assignment{}).
		Where("client_id = ? AND status = ?", clientID, AssignmentActive).
		Pluck("therapist_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *TherapistRepositoryImpl) ClientIDsForTherapist(ctx context.Context, therapistID string) ([]string, error) {
	var ids []string
	if err := r.db.DB.WithContext(ctx).
		Model(&Assignment{}).
		Where("therapist_id = ? AND status = ?", therapistID, AssignmentActive).
		Pluck("client_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *TherapistRepositoryImpl) IsAssigned(ctx context.Context, clientID, therapistID string) (bool, error) {
	a, err := r.activeAssignment(ctx, clientID, therapistID)
	return a != nil, err
}
