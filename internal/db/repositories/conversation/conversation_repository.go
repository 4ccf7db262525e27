package conversation

import (
	"context"
	"errors"
	"time"

	"github.com/MyelinBots/heavenly-go/internal/db"
	"gorm.io/gorm"
)

type ConversationRepository interface {
	CreateConversation(ctx context.Context, c *Conversation) error
	GetConversationByID(ctx context.Context, id string) (*Conversation, error)
	UpdateConversation(ctx context.Context, c *Conversation) error
	LatestSince(ctx context.Context, userID string, since time.Time) (*Conversation, error)
	ListRecent(ctx context.Context, userID string, limit int) ([]*Conversation, error)
	ListEscalatedForUsers(ctx context.Context, userIDs []string, limit int) ([]*Conversation, error)
	RecentSentiments(ctx context.Context, userID string, limit int) ([]string, error)

	// messages
	CreateMessage(ctx context.Context, m *Message) error
	ListMessages(ctx context.Context, conversationID string) ([]*Message, error)
	LastMessage(ctx context.Context, conversationID string) (*Message, error)
}

type ConversationRepositoryImpl struct {
	db *db.DB
}

func NewConversationRepository(database *db.DB) ConversationRepository {
	return &ConversationRepositoryImpl{db: database}
}

func (r *ConversationRepositoryImpl) CreateConversation(ctx context.Context, c *Conversation) error {
	return r.db.DB.WithContext(ctx).Create(c).Error
}

func (r *ConversationRepositoryImpl) GetConversationByID(ctx context.Context, id string) (*Conversation, error) {
	var c Conversation
	err := r.db.DB.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *ConversationRepositoryImpl) UpdateConversation(ctx context.Context, c *Conversation) error {
	return r.db.DB.WithContext(ctx).Save(c).Error
}

// LatestSince returns the user's most recent conversation created after since.
func (r *ConversationRepositoryImpl) LatestSince(ctx context.Context, userID string, since time.Time) (*Conversation, error) {
	var c Conversation
	err := r.db.DB.WithContext(ctx).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Order("created_at DESC").
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *ConversationRepositoryImpl) ListRecent(ctx context.Context, userID string, limit int) ([]*Conversation, error) {
	if limit <= 0 {
		limit = 10
	}
	var conversations []*Conversation
	if err := r.db.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Limit(limit).
		Find(&conversations).Error; err != nil {
		return nil, err
	}
	return conversations, nil
}

func (r *ConversationRepositoryImpl) ListEscalatedForUsers(ctx context.Context, userIDs []string, limit int) ([]*Conversation, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = 10
	}
	var conversations []*Conversation
	if err := r.db.DB.WithContext(ctx).
		Where("user_id IN ? AND is_escalated = ?", userIDs, true).
		Order("escalated_at DESC").
		Limit(limit).
		Find(&conversations).Error; err != nil {
		return nil, err
	}
	return conversations, nil
}

func (r *ConversationRepositoryImpl) RecentSentiments(ctx context.Context, userID string, limit int) ([]string, error) {
	var sentiments []string
	if err := r.db.DB.WithContext(ctx).
		Model(&Conversation{}).
		Where("user_id = ? AND sentiment <> ''", userID).
		Order("updated_at DESC").
		Limit(limit).
		Pluck("sentiment", &sentiments).Error; err != nil {
		return nil, err
	}
	return sentiments, nil
}

func (r *ConversationRepositoryImpl) CreateMessage(ctx context.Context, m *Message) error {
	return r.db.DB.WithContext(ctx).Create(m).Error
}

func (r *ConversationRepositoryImpl) ListMessages(ctx context.Context, conversationID string) ([]*Message, error) {
	var messages []*Message
	if err := r.db.DB.WithContext(ctx).
		Where("ai_conversation_id = ?", conversationID).
		Order("created_at ASC").
		Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *ConversationRepositoryImpl) LastMessage(ctx context.Context, conversationID string) (*Message, error) {
	var m Message
	err := r.db.DB.WithContext(ctx).
		Where("ai_conversation_id = ?", conversationID).
		Order("created_at DESC").
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}
