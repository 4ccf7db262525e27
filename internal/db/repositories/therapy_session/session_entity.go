package therapy_session

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Type string

const (
	TypeIndividual Type = "INDIVIDUAL"
	TypeCouple     Type = "COUPLE"
	TypeGroup      Type = "GROUP"
)

func (t Type) Valid() bool {
	return t == TypeIndividual || t == TypeCouple || t == TypeGroup
}

type Status string

const (
	StatusScheduled  Status = "SCHEDULED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
	StatusNoShow     Status = "NO_SHOW"
)

func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusInProgress, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

type Session struct {
	ID          string  `gorm:"column:id;type:varchar(36);primaryKey" json:"id"`
	TherapistID string  `gorm:"column:therapist_id;type:varchar(36);not null;index:idx_session_therapist_start,priority:1" json:"therapist_id"`
	ClientID    string  `gorm:"column:client_id;type:varchar(36);not null;index" json:"client_id"`
	PartnerID   *string `gorm:"column:partner_id;type:varchar(36);index" json:"partner_id,omitempty"`
	CoupleID    *string `gorm:"column:couple_id;type:varchar(36)" json:"couple_id,omitempty"`

	Title       string `gorm:"column:title;type:varchar(255);not null" json:"title"`
	Description string `gorm:"column:description;type:text" json:"description,omitempty"`
	Type        Type   `gorm:"column:type;type:varchar(16);not null" json:"type"`
	Status      Status `gorm:"column:status;type:varchar(16);not null;default:SCHEDULED;index" json:"status"`

	StartTime time.Time `gorm:"column:start_time;not null;index:idx_session_therapist_start,priority:2" json:"start_time"`
	EndTime   time.Time `gorm:"column:end_time;not null" json:"end_time"`
	Timezone  string    `gorm:"column:timezone;type:varchar(64)" json:"timezone,omitempty"`

	MeetingRoom string `gorm:"column:meeting_room;type:varchar(64)" json:"meeting_room,omitempty"`
	MeetingLink string `gorm:"column:meeting_link;type:text" json:"meeting_link,omitempty"`
	Notes       string `gorm:"column:notes;type:text" json:"notes,omitempty"`
	AISummary   string `gorm:"column:ai_summary;type:text" json:"ai_summary,omitempty"`
	Recording   string `gorm:"column:recording;type:text" json:"recording,omitempty"`
	Cost        int64  `gorm:"column:cost;not null;default:0" json:"cost"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Session) TableName() string {
	return "therapy_sessions"
}

func (s *Session) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// HasParticipant reports whether userID is the therapist, client or partner.
func (s *Session) HasParticipant(userID string) bool {
	if s.TherapistID == userID || s.ClientID == userID {
		return true
	}
	return s.PartnerID != nil && *s.PartnerID == userID
}
