package content

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Category struct {
	ID          string    `gorm:"column:id;type:varchar(36);primaryKey" json:"id"`
	Name        string    `gorm:"column:name;type:varchar(100);not null;uniqueIndex" json:"name"`
	Description string    `gorm:"column:description;type:text" json:"description,omitempty"`
	Color       string    `gorm:"column:color;type:varchar(32)" json:"color,omitempty"`
	Icon        string    `gorm:"column:icon;type:varchar(64)" json:"icon,omitempty"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Category) TableName() string {
	return "content_categories"
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

type Content struct {
	ID              string    `gorm:"column:id;type:varchar(36);primaryKey" json:"id"`
	CategoryID      string    `gorm:"column:category_id;type:varchar(36);not null;index" json:"category_id"`
	Title           string    `gorm:"column:title;type:varchar(255);not null" json:"title"`
	Description     string    `gorm:"column:description;type:text" json:"description,omitempty"`
	Body            string    `gorm:"column:content;type:text;not null" json:"content"`
	Type            string    `gorm:"column:type;type:varchar(32);not null;index" json:"type"`
	Author          string    `gorm:"column:author;type:varchar(255)" json:"author,omitempty"`
	DifficultyLevel string    `gorm:"column:difficulty_level;type:varchar(32)" json:"difficulty_level,omitempty"`
	Duration        int       `gorm:"column:duration;not null;default:0" json:"duration"`
	MediaURL        string    `gorm:"column:media_url;type:text" json:"media_url,omitempty"`
	ThumbnailURL    string    `gorm:"column:thumbnail_url;type:text" json:"thumbnail_url,omitempty"`
	Tags            []string  `gorm:"column:tags;type:text;serializer:json" json:"tags"`
	TargetAudience  []string  `gorm:"column:target_audience;type:text;serializer:json" json:"target_audience"`
	IsPublished     bool      `gorm:"column:is_published;not null;default:false;index" json:"is_published"`
	Views           int       `gorm:"column:views;not null;default:0" json:"views"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Content) TableName() string {
	return "content"
}

func (c *Content) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

type Progress struct {
	ID        string    `gorm:"column:id;type:varchar(36);primaryKey" json:"id"`
	UserID    string    `gorm:"column:user_id;type:varchar(36);not null;uniqueIndex:idx_progress_user_content,priority:1" json:"user_id"`
	ContentID string    `gorm:"column:content_id;type:varchar(36);not null;uniqueIndex:idx_progress_user_content,priority:2" json:"content_id"`
	Progress  int       `gorm:"column:progress;not null;default:0" json:"progress"`
	Completed bool      `gorm:"column:completed;not null;default:false" json:"completed"`
	TimeSpent int       `gorm:"column:time_spent;not null;default:0" json:"time_spent"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Progress) TableName() string {
	return "content_progress"
}

func (p *Progress) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

type Favorite struct {
	ID        string    `gorm:"column:id;type:varchar(36);primaryKey" json:"id"`
	UserID    string    `gorm:"column:user_id;type:varchar(36);not null;uniqueIndex:idx_favorite_user_content,priority:1" json:"user_id"`
	ContentID string    `gorm:"column:content_id;type:varchar(36);not null;uniqueIndex:idx_favorite_user_content,priority:2" json:"content_id"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Favorite) TableName() string {
	return "favorite_content"
}

func (f *Favorite) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}
