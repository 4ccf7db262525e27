package conversation

import (
	"time"

	"github.com/MyelinBots/heavenly-go/internal/services/crisis"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Conversation struct {
	ID           string `gorm:"column:id;type:varchar(36);primaryKey" json:"id"`
	UserID       string `gorm:"column:user_id;type:varchar(36);not null;index" json:"user_id"`
	Title        string `gorm:"column:title;type:varchar(255)" json:"title"`
	Topic        string `gorm:"column:topic;type:varchar(255)" json:"topic,omitempty"`
	Context      string `gorm:"column:context;type:text" json:"context,omitempty"`
	Summary      string `gorm:"column:summary;type:text" json:"summary,omitempty"`
	Sentiment    string `gorm:"column:sentiment;type:varchar(32)" json:"sentiment"`
	Model        string `gorm:"column:model;type:varchar(64)" json:"model"`
	SystemPrompt string `gorm:"column:system_prompt;type:text" json:"-"`

	CrisisLevel      crisis.Level `gorm:"column:crisis_level;type:varchar(16);not null;default:NONE" json:"crisis_level"`
	IsEscalated      bool         `gorm:"column:is_escalated;not null;default:false;index" json:"is_escalated"`
	EscalatedAt      *time.Time   `gorm:"column:escalated_at" json:"escalated_at,omitempty"`
	EscalationReason string       `gorm:"column:escalation_reason;type:text" json:"escalation_reason,omitempty"`

	KeyInsights []string `gorm:"column:key_insights;type:text;serializer:json" json:"key_insights"`
	LastMessage string   `gorm:"column:last_message;type:text" json:"last_message,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Conversation) TableName() string {
	return "ai_conversations"
}

func (c *Conversation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

type MessageType string

const (
	MessageText   MessageType = "TEXT"
	MessageImage  MessageType = "IMAGE"
	MessageFile   MessageType = "FILE"
	MessageSystem MessageType = "SYSTEM"
)

type Message struct {
	ID               string         `gorm:"column:id;type:varchar(36);primaryKey" json:"id"`
	SenderID         string         `gorm:"column:sender_id;type:varchar(36);not null;index" json:"sender_id"`
	ReceiverID       *string        `gorm:"column:receiver_id;type:varchar(36)" json:"receiver_id,omitempty"`
	SessionID        *string        `gorm:"column:session_id;type:varchar(36)" json:"session_id,omitempty"`
	AIConversationID *string        `gorm:"column:ai_conversation_id;type:varchar(36);index" json:"ai_conversation_id,omitempty"`
	Content          string         `gorm:"column:content;type:text;not null" json:"content"`
	Type             MessageType    `gorm:"column:type;type:varchar(16);not null;default:TEXT" json:"type"`
	IsEncrypted      bool           `gorm:"column:is_encrypted;not null;default:false" json:"is_encrypted"`
	Metadata         datatypes.JSON `gorm:"column:metadata" json:"metadata,omitempty"`
	ReadAt           *time.Time     `gorm:"column:read_at" json:"read_at,omitempty"`
	CreatedAt        time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Message) TableName() string {
	return "messages"
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
