package content

import (
	"context"
	"errors"

	"github.com/MyelinBots/heavenly-go/internal/db"
	"gorm.io/gorm"
)

type ListFilter struct {
	CategoryID string
	Type       string
	Audience   string
	Limit      int
}

type ContentRepository interface {
	CreateCategory(ctx context.Context, c *Category) error
	GetCategoryByName(ctx context.Context, name string) (*Category, error)
	ListCategories(ctx context.Context) ([]*Category, error)

	CreateContent(ctx context.Context, c *Content) error
	GetContentByID(ctx context.Context, id string) (*Content, error)
	GetContentByTitle(ctx context.Context, title string) (*Content, error)
	ListPublished(ctx context.Context, filter ListFilter) ([]*Content, error)
	IncrementViews(ctx context.Context, id string) error

	GetProgress(ctx context.Context, userID, contentID string) (*Progress, error)
	SaveProgress(ctx context.Context, p *Progress) error
	ListProgress(ctx context.Context, userID string) ([]*Progress, error)
	CompletedTitles(ctx context.Context, userID string) ([]string, error)

	AddFavorite(ctx context.Context, userID, contentID string) error
	RemoveFavorite(ctx context.Context, userID, contentID string) error
	ListFavorites(ctx context.Context, userID string) ([]*Content, error)
}

type ContentRepositoryImpl struct {
	db *db.DB
}

func NewContentRepository(database *db.DB) ContentRepository {
	return &ContentRepositoryImpl{db: database}
}

/*
CATEGORIES
*/

func (r *ContentRepositoryImpl) CreateCategory(ctx context.Context, c *Category) error {
	return r.db.DB.WithContext(ctx).Create(c).Error
}

func (r *ContentRepositoryImpl) GetCategoryByName(ctx context.Context, name string) (*Category, error) {
	var c Category
	err := r.db.DB.WithContext(ctx).Where("name = ?", name).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *ContentRepositoryImpl) ListCategories(ctx context.Context) ([]*Category, error) {
	var categories []*Category
	if err := r.db.DB.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

/*
CONTENT
*/

func (r *ContentRepositoryImpl) CreateContent(ctx context.Context, c *Content) error {
	return r.db.DB.WithContext(ctx).Create(c).Error
}

func (r *ContentRepositoryImpl) GetContentByID(ctx context.Context, id string) (*Content, error) {
	var c Content
	err := r.db.DB.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *ContentRepositoryImpl) GetContentByTitle(ctx context.Context, title string) (*Content, error) {
	var c Content
	err := r.db.DB.WithContext(ctx).Where("title = ?", title).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// ListPublished filters by audience in Go: target_audience is a JSON column
// whose operators differ between postgres and sqlite.
func (r *ContentRepositoryImpl) ListPublished(ctx context.Context, filter ListFilter) ([]*Content, error) {
	q := r.db.DB.WithContext(ctx).Where("is_published = ?", true)
	if filter.CategoryID != "" {
		q = q.Where("category_id = ?", filter.CategoryID)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}

	var items []*Content
	if err := q.Order("views DESC, title ASC").Find(&items).Error; err != nil {
		return nil, err
	}

	if filter.Audience != "" {
		filtered := items[:0]
		for _, c := range items {
			if len(c.TargetAudience) == 0 || contains(c.TargetAudience, filter.Audience) {
				filtered = append(filtered, c)
			}
		}
		items = filtered
	}
	if filter.Limit > 0 && len(items) > filter.Limit {
		items = items[:filter.Limit]
	}
	return items, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func (r *ContentRepositoryImpl) IncrementViews(ctx context.Context, id string) error {
	return r.db.DB.WithContext(ctx).
		Model(&Content{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1)).Error
}

/*
PROGRESS
*/

func (r *ContentRepositoryImpl) GetProgress(ctx context.Context, userID, contentID string) (*Progress, error) {
	var p Progress
	err := r.db.DB.WithContext(ctx).
		Where("user_id = ? AND content_id = ?", userID, contentID).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *ContentRepositoryImpl) SaveProgress(ctx context.Context, p *Progress) error {
	return r.db.DB.WithContext(ctx).Save(p).Error
}

func (r *ContentRepositoryImpl) ListProgress(ctx context.Context, userID string) ([]*Progress, error) {
	var progress []*Progress
	if err := r.db.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&progress).Error; err != nil {
		return nil, err
	}
	return progress, nil
}

func (r *ContentRepositoryImpl) CompletedTitles(ctx context.Context, userID string) ([]string, error) {
	var titles []string
	if err := r.db.DB.WithContext(ctx).
		Table("content").
		Joins("JOIN content_progress ON content_progress.content_id = content.id").
		Where("content_progress.user_id = ? AND content_progress.completed = ?", userID, true).
		Pluck("content.title", &titles).Error; err != nil {
		return nil, err
	}
	return titles, nil
}

/*
FAVORITES
*/

func (r *ContentRepositoryImpl) AddFavorite(ctx context.Context, userID, contentID string) error {
	var count int64
	if err := r.db.DB.WithContext(ctx).
		Model(&Favorite{}).
		Where("user_id = ? AND content_id = ?", userID, contentID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return r.db.DB.WithContext(ctx).Create(&Favorite{UserID: userID, ContentID: contentID}).Error
}

func (r *ContentRepositoryImpl) RemoveFavorite(ctx context.Context, userID, contentID string) error {
	return r.db.DB.WithContext(ctx).
		Where("user_id = ? AND content_id = ?", userID, contentID).
		Delete(&Favorite{}).Error
}

func (r *ContentRepositoryImpl) ListFavorites(ctx context.Context, userID string) ([]*Content, error) {
	var items []*Content
	if err := r.db.DB.WithContext(ctx).
		Joins("JOIN favorite_content ON favorite_content.content_id = content.id").
		Where("favorite_content.user_id = ?", userID).
		Order("favorite_content.created_at DESC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
