package user

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleAdmin          Role = "ADMIN"
	RoleTherapist      Role = "THERAPIST"
	RoleClient         Role = "CLIENT"
	RoleCouplePartner1 Role = "COUPLE_PARTNER_1"
	RoleCouplePartner2 Role = "COUPLE_PARTNER_2"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTherapist, RoleClient, RoleCouplePartner1, RoleCouplePartner2:
		return true
	}
	return false
}

func (r Role) IsCouplePartner() bool {
	return r == RoleCouplePartner1 || r == RoleCouplePartner2
}

type User struct {
	ID           string `gorm:"column:id;type:varchar(36);primaryKey" json:"id"`
	Email        string `gorm:"column:email;type:varchar(255);not null;uniqueIndex" json:"email"`
	PasswordHash string `gorm:"column:password_hash;type:text;not null" json:"-"`
	Role         Role   `gorm:"column:role;type:varchar(32);not null;index" json:"role"`

	Name             string     `gorm:"column:name;type:varchar(255)" json:"name"`
	FirstName        string     `gorm:"column:first_name;type:varchar(100)" json:"first_name"`
	LastName         string     `gorm:"column:last_name;type:varchar(100)" json:"last_name"`
	Phone            string     `gorm:"column:phone;type:varchar(50)" json:"phone,omitempty"`
	Timezone         string     `gorm:"column:timezone;type:varchar(64)" json:"timezone,omitempty"`
	Bio              string     `gorm:"column:bio;type:text" json:"bio,omitempty"`
	TherapyGoals     string     `gorm:"column:therapy_goals;type:text" json:"therapy_goals,omitempty"`
	EmergencyContact string     `gorm:"column:emergency_contact;type:text" json:"emergency_contact,omitempty"`
	MedicalHistory   string     `gorm:"column:medical_history;type:text" json:"-"`
	DateOfBirth      *time.Time `gorm:"column:date_of_birth" json:"date_of_birth,omitempty"`

	CoupleID        *string `gorm:"column:couple_id;type:varchar(36);index" json:"couple_id,omitempty"`
	CouplePartnerID *string `gorm:"column:couple_partner_id;type:varchar(36)" json:"couple_partner_id,omitempty"`

	IsActive    bool       `gorm:"column:is_active;not null;default:true" json:"is_active"`
	IsDemo      bool       `gorm:"column:is_demo;not null;default:false" json:"is_demo"`
	LastLoginAt *time.Time `gorm:"column:last_login_at" json:"last_login_at,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// DisplayName falls back from the full name to first/last name to the email.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	if full := strings.TrimSpace(u.FirstName + " " + u.LastName); full != "" {
		return full
	}
	return u.Email
}
