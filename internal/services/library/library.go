// Package library serves the wellness content catalogue and tracks reading progress.
package library

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MyelinBots/heavenly-go/internal/db/repositories/content"
	"github.com/MyelinBots/heavenly-go/internal/db/repositories/conversation"
	"github.com/MyelinBots/heavenly-go/internal/db/repositories/user"
	"github.com/MyelinBots/heavenly-go/internal/services/assistant"
	"github.com/MyelinBots/heavenly-go/internal/services/sanitize"
)

var (
	ErrNotFound        = errors.New("content not found")
	ErrInvalidProgress = errors.New("progress must be between 0 and 100")
	ErrInvalidTime     = errors.New("time spent cannot be negative")
	ErrMissingTitle    = errors.New("title and body are required")
	ErrUnknownCategory = errors.New("unknown category")
	ErrInvalidType     = errors.New("unknown content type")
	ErrForbidden       = errors.New("only therapists and admins can publish content")
)

const recentMoodWindow = 5

var contentTypes = map[string]bool{
	"article": true, "video": true, "audio": true, "exercise": true, "worksheet": true, "meditation": true,
}

type PublishInput struct {
	CategoryName    string   `json:"category" yaml:"category"`
	Title           string   `json:"title" yaml:"title"`
	Description     string   `json:"description" yaml:"description"`
	Body            string   `json:"content" yaml:"content"`
	Type            string   `json:"type" yaml:"type"`
	Author          string   `json:"author" yaml:"author"`
	DifficultyLevel string   `json:"difficulty_level" yaml:"difficulty_level"`
	Duration        int      `json:"duration" yaml:"duration"`
	MediaURL        string   `json:"media_url" yaml:"media_url"`
	Tags            []string `json:"tags" yaml:"tags"`
	TargetAudience  []string `json:"target_audience" yaml:"target_audience"`
}

type ProgressInput struct {
	Progress  int `json:"progress"`
	TimeSpent int `json:"time_spent"`
}

type LibraryService interface {
	Categories(ctx context.Context) ([]*content.Category, error)
	EnsureCategory(ctx context.Context, c *content.Category) (*content.Category, error)
	Publish(ctx context.Context, author *user.User, in PublishInput) (*content.Content, error)
	List(ctx context.Context, filter content.ListFilter) ([]*content.Content, error)
	Get(ctx context.Context, id string) (*content.Content, error)
	UpdateProgress(ctx context.Context, userID, contentID string, in ProgressInput) (*content.Progress, error)
	Progress(ctx context.Context, userID string) ([]*content.Progress, error)
	Favorite(ctx context.Context, userID, contentID string) error
	Unfavorite(ctx context.Context, userID, contentID string) error
	Favorites(ctx context.Context, userID string) ([]*content.Content, error)
	Recommendations(ctx context.Context, u *user.User) ([]assistant.Recommendation, error)
}

type LibraryServiceImpl struct {
	content       content.ContentRepository
	conversations conversation.ConversationRepository
	ai            assistant.Assistant
}

func NewLibraryService(contentRepo content.ContentRepository, conversations conversation.ConversationRepository, ai assistant.Assistant) *LibraryServiceImpl {
	return &LibraryServiceImpl{content: contentRepo, conversations: conversations, ai: ai}
}

func (s *LibraryServiceImpl) Categories(ctx context.Context) ([]*content.Category, error) {
	return s.content.ListCategories(ctx)
}

// EnsureCategory returns the category with c's name, creating it when missing.
func (s *LibraryServiceImpl) EnsureCategory(ctx context.Context, c *content.Category) (*content.Category, error) {
	existing, err := s.content.GetCategoryByName(ctx, c.Name)
	if err != nil || existing != nil {
		return existing, err
	}
	if err := s.content.CreateCategory(ctx, c); err != nil {
		return nil, fmt.Errorf("create category %q: %w", c.Name, err)
	}
	return c, nil
}

func (s *LibraryServiceImpl) Publish(ctx context.Context, author *user.User, in PublishInput) (*content.Content, error) {
	if author != nil && author.Role != user.RoleTherapist && author.Role != user.RoleAdmin {
		return nil, ErrForbidden
	}
	title := sanitize.Text(in.Title)
	body := sanitize.Rich(in.Body)
	if title == "" || body == "" {
		return nil, ErrMissingTitle
	}
	kind := strings.ToLower(strings.TrimSpace(in.Type))
	if kind == "" {
		kind = "article"
	}
	if !contentTypes[kind] {
		return nil, fmt.Errorf("%w %q", ErrInvalidType, in.Type)
	}
	cat, err := s.content.GetCategoryByName(ctx, in.CategoryName)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, ErrUnknownCategory
	}

	c := &content.Content{
		CategoryID:      cat.ID,
		Title:           title,
		Description:     sanitize.Text(in.Description),
		Body:            body,
		Type:            kind,
		Author:          sanitize.Text(in.Author),
		DifficultyLevel: in.DifficultyLevel,
		Duration:        in.Duration,
		MediaURL:        in.MediaURL,
		Tags:            in.Tags,
		TargetAudience:  in.TargetAudience,
		IsPublished:     true,
	}
	if c.Author == "" && author != nil {
		c.Author = author.DisplayName()
	}
	if err := s.content.CreateContent(ctx, c); err != nil {
		return nil, fmt.Errorf("publish content: %w", err)
	}
	return c, nil
}

func (s *LibraryServiceImpl) List(ctx context.Context, filter content.ListFilter) ([]*content.Content, error) {
	filter.Type = strings.ToLower(filter.Type)
	return s.content.ListPublished(ctx, filter)
}

func (s *LibraryServiceImpl) published(ctx context.Context, id string) (*content.Content, error) {
	c, err := s.content.GetContentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil || !c.IsPublished {
		return nil, ErrNotFound
	}
	return c, nil
}

// Get returns a published item and counts the view.
func (s *LibraryServiceImpl) Get(ctx context.Context, id string) (*content.Content, error) {
	c, err := s.published(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.content.IncrementViews(ctx, id); err != nil {
		return nil, err
	}
	c.Views++
	return c, nil
}

// UpdateProgress overwrites the percentage and adds to the time spent.
func (s *LibraryServiceImpl) UpdateProgress(ctx context.Context, userID, contentID string, in ProgressInput) (*content.Progress, error) {
	if in.Progress < 0 || in.Progress > 100 {
		return nil, ErrInvalidProgress
	}
	if in.TimeSpent < 0 {
		return nil, ErrInvalidTime
	}
	if _, err := s.published(ctx, contentID); err != nil {
		return nil, err
	}

	p, err := s.content.GetProgress(ctx, userID, contentID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		p = &content.Progress{UserID: userID, ContentID: contentID}
	}
	p.Progress = in.Progress
	p.Completed = in.Progress == 100
	p.TimeSpent += in.TimeSpent
	if err := s.content.SaveProgress(ctx, p); err != nil {
		return nil, fmt.Errorf("save progress: %w", err)
	}
	return p, nil
}

func (s *LibraryServiceImpl) Progress(ctx context.Context, userID string) ([]*content.Progress, error) {
	return s.content.ListProgress(ctx, userID)
}

func (s *LibraryServiceImpl) Favorite(ctx context.Context, userID, contentID string) error {
	if _, err := s.published(ctx, contentID); err != nil {
		return err
	}
	return s.content.AddFavorite(ctx, userID, contentID)
}

func (s *LibraryServiceImpl) Unfavorite(ctx context.Context, userID, contentID string) error {
	return s.content.RemoveFavorite(ctx, userID, contentID)
}

func (s *LibraryServiceImpl) Favorites(ctx context.Context, userID string) ([]*content.Content, error) {
	return s.content.ListFavorites(ctx, userID)
}

// Recommendations builds a profile from goals, recent conversation moods,
// finished content and favourite content types.
func (s *LibraryServiceImpl) Recommendations(ctx context.Context, u *user.User) ([]assistant.Recommendation, error) {
	moods, err := s.conversations.RecentSentiments(ctx, u.ID, recentMoodWindow)
	if err != nil {
		return nil, err
	}
	completed, err := s.content.CompletedTitles(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	favorites, err := s.content.ListFavorites(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	var prefs []string
	seen := map[string]bool{}
	for _, f := range favorites {
		if !seen[f.Type] {
			seen[f.Type] = true
			prefs = append(prefs, f.Type)
		}
	}

	return s.ai.Recommend(ctx, assistant.Profile{
		TherapyGoals:     u.TherapyGoals,
		RecentMoods:      moods,
		CompletedContent: completed,
		Preferences:      prefs,
	}), nil
}
