package therapist

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DayHours is one weekday of a therapist's working hours, "HH:MM" in the
// therapist's timezone.
type DayHours struct {
	Start  string `json:"start,omitempty" yaml:"start,omitempty"`
	End    string `json:"end,omitempty" yaml:"end,omitempty"`
	Closed bool   `json:"closed,omitempty" yaml:"closed,omitempty"`
}

// AvailableHours is keyed by lower-case weekday name ("monday"...).
type AvailableHours map[string]DayHours

type Profile struct {
	ID                 string         `gorm:"column:id;type:varchar(36);primaryKey" json:"id"`
	UserID             string         `gorm:"column:user_id;type:varchar(36);not null;uniqueIndex" json:"user_id"`
	LicenseNumber      string         `gorm:"column:license_number;type:varchar(100)" json:"license_number"`
	Specialty          []string       `gorm:"column:specialty;type:text;serializer:json" json:"specialty"`
	YearsExperience    int            `gorm:"column:years_experience;not null;default:0" json:"years_experience"`
	Education          string         `gorm:"column:education;type:text" json:"education"`
	Certifications     []string       `gorm:"column:certifications;type:text;serializer:json" json:"certifications"`
	Languages          []string       `gorm:"column:languages;type:text;serializer:json" json:"languages"`
	HourlyRate         int64          `gorm:"column:hourly_rate;not null;default:0" json:"hourly_rate"`
	IsVerified         bool           `gorm:"column:is_verified;not null;default:false" json:"is_verified"`
	IsAcceptingClients bool           `gorm:"column:is_accepting_clients;not null;default:false" json:"is_accepting_clients"`
	PracticeAddress    string         `gorm:"column:practice_address;type:text" json:"practice_address"`
	PracticePhone      string         `gorm:"column:practice_phone;type:varchar(50)" json:"practice_phone"`
	PracticeWebsite    string         `gorm:"column:practice_website;type:text" json:"practice_website"`
	AvailableHours     AvailableHours `gorm:"column:available_hours;type:text;serializer:json" json:"available_hours"`
	CreatedAt          time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Profile) TableName() string {
	return "therapist_profiles"
}

func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

const (
	AssignmentActive = "ACTIVE"
	AssignmentEnded  = "ENDED"
)

type Assignment struct {
	ID          string    `gorm:"column:id;type:varchar(36);primaryKey" json:"id"`
	ClientID    string    `gorm:"column:client_id;type:varchar(36);not null;index" json:"client_id"`
	TherapistID string    `gorm:"column:therapist_id;type:varchar(36);not null;index" json:"therapist_id"`
	Status      string    `gorm:"column:status;type:varchar(16);not null;default:ACTIVE" json:"status"`
	AssignedAt  time.Time `gorm:"column:assigned_at" json:"assigned_at"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Assignment) TableName() string {
	return "client_therapist_assignments"
}

func (a *Assignment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.AssignedAt.IsZero() {
		a.AssignedAt = time.Now().UTC()
	}
	return nil
}
