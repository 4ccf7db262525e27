// Package seed loads the demo accounts, content and sessions.
package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/MyelinBots/heavenly-go/internal/db/repositories/content"
	"github.com/MyelinBots/heavenly-go/internal/db/repositories/therapist"
	"github.com/MyelinBots/heavenly-go/internal/db/repositories/therapy_session"
	"github.com/MyelinBots/heavenly-go/internal/db/repositories/user"
	"github.com/MyelinBots/heavenly-go/internal/services/auth"
	"github.com/MyelinBots/heavenly-go/internal/services/couples"
	"github.com/MyelinBots/heavenly-go/internal/services/library"
	"github.com/MyelinBots/heavenly-go/internal/services/sanitize"
	"github.com/MyelinBots/heavenly-go/internal/services/scheduling"
	"gopkg.in/yaml.v3"
)

//go:embed demo.yaml
var demoYAML []byte

var ErrAlreadySeeded = errors.New("demo data already present")

type Person struct {
	Email            string `yaml:"email"`
	FirstName        string `yaml:"first_name"`
	LastName         string `yaml:"last_name"`
	Name             string `yaml:"name"`
	Phone            string `yaml:"phone"`
	Timezone         string `yaml:"timezone"`
	Bio              string `yaml:"bio"`
	TherapyGoals     string `yaml:"therapy_goals"`
	EmergencyContact string `yaml:"emergency_contact"`
}

type TherapistSeed struct {
	User    Person `yaml:"user"`
	Profile struct {
		LicenseNumber      string                  `yaml:"license_number"`
		Specialty          []string                `yaml:"specialty"`
		YearsExperience    int                     `yaml:"years_experience"`
		Education          string                  `yaml:"education"`
		Certifications     []string                `yaml:"certifications"`
		Languages          []string                `yaml:"languages"`
		HourlyRate         int64                   `yaml:"hourly_rate"`
		IsVerified         bool                    `yaml:"is_verified"`
		IsAcceptingClients bool                    `yaml:"is_accepting_clients"`
		PracticeAddress    string                  `yaml:"practice_address"`
		PracticePhone      string                  `yaml:"practice_phone"`
		AvailableHours     map[string]DayHoursSeed `yaml:"available_hours"`
	} `yaml:"profile"`
}

type DayHoursSeed struct {
	Start  string `yaml:"start"`
	End    string `yaml:"end"`
	Closed bool   `yaml:"closed"`
}

type CoupleSeed struct {
	Partner1          string `yaml:"partner1"`
	Partner2          string `yaml:"partner2"`
	RelationshipStart string `yaml:"relationship_start"`
	TherapyGoals      string `yaml:"therapy_goals"`
}

type ContentSeed struct {
	Title           string   `yaml:"title"`
	Category        string   `yaml:"category"`
	Description     string   `yaml:"description"`
	Body            string   `yaml:"content"`
	Type            string   `yaml:"type"`
	Tags            []string `yaml:"tags"`
	TargetAudience  []string `yaml:"target_audience"`
	DifficultyLevel string   `yaml:"difficulty_level"`
	Author          string   `yaml:"author"`
	Duration        int      `yaml:"duration"`
	Views           int      `yaml:"views"`
}

type SessionSeed struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Type        string `yaml:"type"`
	Client      string `yaml:"client"`
	InDays      int    `yaml:"in_days"`
	Hour        int    `yaml:"hour"`
	Minutes     int    `yaml:"minutes"`
	Cost        int64  `yaml:"cost"`
}

type Document struct {
	Password   string              `yaml:"password"`
	Therapist  TherapistSeed       `yaml:"therapist"`
	Clients    []Person            `yaml:"clients"`
	Couple     CoupleSeed          `yaml:"couple"`
	Categories []*content.Category `yaml:"categories"`
	Content    []ContentSeed       `yaml:"content"`
	Sessions   []SessionSeed       `yaml:"sessions"`
}

// Demo parses the embedded demo data set.
func Demo() (*Document, error) {
	return Parse(demoYAML)
}

func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("seed: parse: %w", err)
	}
	if doc.Password == "" || doc.Therapist.User.Email == "" {
		return nil, errors.New("seed: password and therapist are required")
	}
	return &doc, nil
}

type Summary struct {
	Users      int
	Categories int
	Content    int
	Sessions   int
}

type Seeder struct {
	users      user.UserRepository
	content    content.ContentRepository
	auth       auth.AuthService
	couples    couples.CouplesService
	scheduling scheduling.SchedulingService
	library    library.LibraryService
	now        func() time.Time
}

func NewSeeder(users user.UserRepository, contentRepo content.ContentRepository, authService auth.AuthService, couplesService couples.CouplesService, schedulingService scheduling.SchedulingService, libraryService library.LibraryService) *Seeder {
	return &Seeder{
		users:      users,
		content:    contentRepo,
		auth:       authService,
		couples:    couplesService,
		scheduling: schedulingService,
		library:    libraryService,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Run loads doc. It refuses to run twice: an existing therapist account
// returns ErrAlreadySeeded.
func (s *Seeder) Run(ctx context.Context, doc *Document) (Summary, error) {
	var sum Summary
	existing, err := s.users.GetUserByEmail(ctx, doc.Therapist.User.Email)
	if err != nil {
		return sum, err
	}
	if existing != nil {
		return sum, ErrAlreadySeeded
	}

	doctor, err := s.createUser(ctx, doc.Therapist.User, user.RoleTherapist, doc.Password)
	if err != nil {
		return sum, err
	}
	sum.Users++
	if _, err := s.auth.UpsertTherapistProfile(ctx, doctor.ID, therapistProfile(doc.Therapist)); err != nil {
		return sum, fmt.Errorf("seed: therapist profile: %w", err)
	}

	byEmail := map[string]*user.User{}
	for _, p := range doc.Clients {
		u, err := s.createUser(ctx, p, user.RoleClient, doc.Password)
		if err != nil {
			return sum, err
		}
		byEmail[p.Email] = u
		sum.Users++
		if _, err := s.scheduling.AssignTherapist(ctx, u.ID, doctor.ID); err != nil {
			return sum, fmt.Errorf("seed: assign %s: %w", p.Email, err)
		}
	}

	if doc.Couple.Partner1 != "" {
		if err := s.linkCouple(ctx, doc.Couple, byEmail); err != nil {
			return sum, err
		}
	}

	categoryIDs := map[string]string{}
	for _, c := range doc.Categories {
		saved, err := s.library.EnsureCategory(ctx, c)
		if err != nil {
			return sum, fmt.Errorf("seed: category %s: %w", c.Name, err)
		}
		categoryIDs[saved.Name] = saved.ID
		sum.Categories++
	}
	for _, c := range doc.Content {
		item := &content.Content{
			CategoryID:      categoryIDs[c.Category],
			Title:           c.Title,
			Description:     c.Description,
			Body:            sanitize.Rich(c.Body),
			Type:            c.Type,
			Author:          c.Author,
			DifficultyLevel: c.DifficultyLevel,
			Duration:        c.Duration,
			Tags:            c.Tags,
			TargetAudience:  c.TargetAudience,
			IsPublished:     true,
			Views:           c.Views,
		}
		if item.CategoryID == "" {
			return sum, fmt.Errorf("seed: content %q names unknown category %q", c.Title, c.Category)
		}
		if err := s.content.CreateContent(ctx, item); err != nil {
			return sum, fmt.Errorf("seed: content %s: %w", c.Title, err)
		}
		sum.Content++
	}

	today := s.now().Truncate(24 * time.Hour)
	for _, ss := range doc.Sessions {
		client, ok := byEmail[ss.Client]
		if !ok {
			return sum, fmt.Errorf("seed: session %q names unknown client %s", ss.Title, ss.Client)
		}
		start := today.AddDate(0, 0, ss.InDays).Add(time.Duration(ss.Hour) * time.Hour)
		cost := ss.Cost
		if _, err := s.scheduling.Schedule(ctx, doctor, scheduling.ScheduleInput{
			ClientID:    client.ID,
			Title:       ss.Title,
			Description: ss.Description,
			Type:        therapy_session.Type(ss.Type),
			StartTime:   start,
			EndTime:     start.Add(time.Duration(ss.Minutes) * time.Minute),
			Timezone:    client.Timezone,
			Cost:        &cost,
		}); err != nil {
			return sum, fmt.Errorf("seed: session %s: %w", ss.Title, err)
		}
		sum.Sessions++
	}

	log.Printf("[seed] users=%d categories=%d content=%d sessions=%d", sum.Users, sum.Categories, sum.Content, sum.Sessions)
	return sum, nil
}

func (s *Seeder) createUser(ctx context.Context, p Person, role user.Role, password string) (*user.User, error) {
	u, err := s.auth.CreateUser(ctx, auth.SignUpInput{
		Email:     p.Email,
		Password:  password,
		Role:      role,
		Name:      p.Name,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		IsDemo:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("seed: user %s: %w", p.Email, err)
	}
	updated, err := s.auth.UpdateProfile(ctx, u.ID, auth.ProfileInput{
		Phone:            &p.Phone,
		Timezone:         &p.Timezone,
		Bio:              &p.Bio,
		TherapyGoals:     &p.TherapyGoals,
		EmergencyContact: &p.EmergencyContact,
	})
	if err != nil {
		return nil, fmt.Errorf("seed: profile %s: %w", p.Email, err)
	}
	return updated, nil
}

func (s *Seeder) linkCouple(ctx context.Context, c CoupleSeed, byEmail map[string]*user.User) error {
	p1, ok1 := byEmail[c.Partner1]
	p2, ok2 := byEmail[c.Partner2]
	if !ok1 || !ok2 {
		return fmt.Errorf("seed: couple partners %s and %s must be listed as clients", c.Partner1, c.Partner2)
	}
	in := couples.LinkInput{Partner1ID: p1.ID, Partner2ID: p2.ID, TherapyGoals: c.TherapyGoals}
	if c.RelationshipStart != "" {
		start, err := time.Parse(time.DateOnly, c.RelationshipStart)
		if err != nil {
			return fmt.Errorf("seed: relationship_start: %w", err)
		}
		in.RelationshipStart = &start
	}
	if _, err := s.couples.Link(ctx, in); err != nil {
		return fmt.Errorf("seed: couple: %w", err)
	}
	return nil
}

func therapistProfile(t TherapistSeed) *therapist.Profile {
	hours := therapist.AvailableHours{}
	for day, h := range t.Profile.AvailableHours {
		hours[day] = therapist.DayHours{Start: h.Start, End: h.End, Closed: h.Closed}
	}
	return &therapist.Profile{
		LicenseNumber:      t.Profile.LicenseNumber,
		Specialty:          t.Profile.Specialty,
		YearsExperience:    t.Profile.YearsExperience,
		Education:          t.Profile.Education,
		Certifications:     t.Profile.Certifications,
		Languages:          t.Profile.Languages,
		HourlyRate:         t.Profile.HourlyRate,
		IsVerified:         t.Profile.IsVerified,
		IsAcceptingClients: t.Profile.IsAcceptingClients,
		PracticeAddress:    t.Profile.PracticeAddress,
		PracticePhone:      t.Profile.PracticePhone,
		AvailableHours:     hours,
	}
}
