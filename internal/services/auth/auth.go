// Package auth owns accounts, passwords and bearer-token sessions.
package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/MyelinBots/heavenly-go/internal/db/repositories/auth_session"
	"github.com/MyelinBots/heavenly-go/internal/db/repositories/therapist"
	"github.com/MyelinBots/heavenly-go/internal/db/repositories/user"
	"github.com/MyelinBots/heavenly-go/internal/services/sanitize"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrPasswordTooLong    = errors.New("password must be at most 72 bytes")
	ErrInvalidRole        = errors.New("role must be CLIENT or THERAPIST")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInactive           = errors.New("account is disabled")
	ErrUnauthenticated    = errors.New("not signed in")
	ErrNotFound           = errors.New("user not found")
	ErrNotTherapist       = errors.New("only therapists have a practice profile")
	ErrInvalidHours       = errors.New("invalid available hours")
)

const (
	minPasswordLength = 8
	// bcrypt ignores input past 72 bytes and x/crypto refuses it
	maxPasswordLength = 72
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// DashboardPath is where a user lands after signing in.
func DashboardPath(role user.Role) string {
	switch role {
	case user.RoleTherapist:
		return "/dashboard/therapist"
	case user.RoleClient:
		return "/dashboard/client"
	case user.RoleCouplePartner1, user.RoleCouplePartner2:
		return "/dashboard/couple"
	}
	return "/dashboard"
}

type SignUpInput struct {
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	Role      user.Role `json:"role"`
	Name      string    `json:"name"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	IsDemo    bool      `json:"-"`
}

type SignInResult struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expires_at"`
	Redirect  string     `json:"redirect"`
	User      *user.User `json:"user"`
}

// ProfileInput is a partial update; nil fields are left alone.
type ProfileInput struct {
	Name             *string    `json:"name"`
	FirstName        *string    `json:"first_name"`
	LastName         *string    `json:"last_name"`
	Phone            *string    `json:"phone"`
	Timezone         *string    `json:"timezone"`
	Bio              *string    `json:"bio"`
	TherapyGoals     *string    `json:"therapy_goals"`
	EmergencyContact *string    `json:"emergency_contact"`
	MedicalHistory   *string    `json:"medical_history"`
	DateOfBirth      *time.Time `json:"date_of_birth"`
}

type AuthService interface {
	SignUp(ctx context.Context, in SignUpInput) (*user.User, error)
	// CreateUser is SignUp without the self-service role restriction.
	CreateUser(ctx context.Context, in SignUpInput) (*user.User, error)
	SignIn(ctx context.Context, email, password, userAgent string) (*SignInResult, error)
	Authenticate(ctx context.Context, token string) (*user.User, error)
	SignOut(ctx context.Context, token string) error
	UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*user.User, error)
	UpsertTherapistProfile(ctx context.Context, userID string, p *therapist.Profile) (*therapist.Profile, error)
}

type AuthServiceImpl struct {
	users      user.UserRepository
	therapists therapist.TherapistRepository
	sessions   auth_session.AuthSessionRepository
	ttl        time.Duration
	cost       int
	now        func() time.Time
}

func NewAuthService(users user.UserRepository, therapists therapist.TherapistRepository, sessions auth_session.AuthSessionRepository, ttl time.Duration) *AuthServiceImpl {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &AuthServiceImpl{
		users:      users,
		therapists: therapists,
		sessions:   sessions,
		ttl:        ttl,
		cost:       bcrypt.DefaultCost,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *AuthServiceImpl) SignUp(ctx context.Context, in SignUpInput) (*user.User, error) {
	if in.Role == "" {
		in.Role = user.RoleClient
	}
	if in.Role != user.RoleClient && in.Role != user.RoleTherapist {
		return nil, ErrInvalidRole
	}
	return s.CreateUser(ctx, in)
}

func (s *AuthServiceImpl) CreateUser(ctx context.Context, in SignUpInput) (*user.User, error) {
	email := user.NormalizeEmail(in.Email)
	if !ValidEmail(email) {
		return nil, ErrInvalidEmail
	}
	if len(in.Password) < minPasswordLength {
		return nil, ErrWeakPassword
	}
	if len(in.Password) > maxPasswordLength {
		return nil, ErrPasswordTooLong
	}
	if !in.Role.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, in.Role)
	}

	existing, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("lookup email: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	first := sanitize.Text(in.FirstName)
	last := sanitize.Text(in.LastName)
	name := sanitize.Text(in.Name)
	if name == "" {
		name = strings.TrimSpace(first + " " + last)
	}

	u := &user.User{
		Email:        email,
		PasswordHash: string(hash),
		Role:         in.Role,
		Name:         name,
		FirstName:    first,
		LastName:     last,
		IsActive:     true,
		IsDemo:       in.IsDemo,
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (s *AuthServiceImpl) SignIn(ctx context.Context, email, password, userAgent string) (*SignInResult, error) {
	u, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("lookup email: %w", err)
	}
	if u == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, ErrInactive
	}

	token, err := newToken()
	if err != nil {
		return nil, err
	}
	now := s.now()
	session := &auth_session.AuthSession{
		UserID:    u.ID,
		TokenHash: HashToken(token),
		ExpiresAt: now.Add(s.ttl),
		UserAgent: userAgent,
	}
	if err := s.sessions.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	if err := s.users.TouchLogin(ctx, u.ID, now); err != nil {
		return nil, fmt.Errorf("record login: %w", err)
	}
	u.LastLoginAt = &now

	return &SignInResult{
		Token:     token,
		ExpiresAt: session.ExpiresAt,
		Redirect:  DashboardPath(u.Role),
		User:      u,
	}, nil
}

func (s *AuthServiceImpl) Authenticate(ctx context.Context, token string) (*user.User, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}
	session, err := s.sessions.GetByTokenHash(ctx, HashToken(token))
	if err != nil {
		return nil, err
	}
	if session == nil || session.Expired(s.now()) {
		return nil, ErrUnauthenticated
	}
	u, err := s.users.GetUserByID(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	if u == nil || !u.IsActive {
		return nil, ErrUnauthenticated
	}
	return u, nil
}

func (s *AuthServiceImpl) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return ErrUnauthenticated
	}
	return s.sessions.DeleteByTokenHash(ctx, HashToken(token))
}

func (s *AuthServiceImpl) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*user.User, error) {
	u, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrNotFound
	}

	fields := map[string]interface{}{}
	set := func(column string, v *string, target *string) {
		if v == nil {
			return
		}
		clean := sanitize.Text(*v)
		fields[column] = clean
		*target = clean
	}
	set("first_name", in.FirstName, &u.FirstName)
	set("last_name", in.LastName, &u.LastName)
	set("name", in.Name, &u.Name)
	set("phone", in.Phone, &u.Phone)
	set("timezone", in.Timezone, &u.Timezone)
	set("bio", in.Bio, &u.Bio)
	set("therapy_goals", in.TherapyGoals, &u.TherapyGoals)
	set("emergency_contact", in.EmergencyContact, &u.EmergencyContact)
	set("medical_history", in.MedicalHistory, &u.MedicalHistory)
	if in.Name == nil && (in.FirstName != nil || in.LastName != nil) {
		u.Name = strings.TrimSpace(u.FirstName + " " + u.LastName)
		fields["name"] = u.Name
	}
	if in.DateOfBirth != nil {
		dob := in.DateOfBirth.UTC()
		fields["date_of_birth"] = dob
		u.DateOfBirth = &dob
	}

	if len(fields) == 0 {
		return u, nil
	}
	if err := s.users.UpdateFields(ctx, userID, fields); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return u, nil
}

func (s *AuthServiceImpl) UpsertTherapistProfile(ctx context.Context, userID string, p *therapist.Profile) (*therapist.Profile, error) {
	u, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrNotFound
	}
	if u.Role != user.RoleTherapist {
		return nil, ErrNotTherapist
	}
	if p.HourlyRate < 0 || p.YearsExperience < 0 {
		return nil, fmt.Errorf("%w: negative rate or experience", ErrInvalidHours)
	}
	if err := ValidateHours(p.AvailableHours); err != nil {
		return nil, err
	}

	p.UserID = userID
	p.Education = sanitize.Text(p.Education)
	p.PracticeAddress = sanitize.Text(p.PracticeAddress)
	if err := s.therapists.UpsertProfile(ctx, p); err != nil {
		return nil, fmt.Errorf("save therapist profile: %w", err)
	}
	return p, nil
}

var weekdays = map[string]bool{
	"monday": true, "tuesday": true, "wednesday": true, "thursday": true,
	"friday": true, "saturday": true, "sunday": true,
}

// ValidateHours checks weekday keys and that each open day's start is before its end.
func ValidateHours(hours therapist.AvailableHours) error {
	for day, h := range hours {
		if !weekdays[day] {
			return fmt.Errorf("%w: unknown weekday %q", ErrInvalidHours, day)
		}
		if h.Closed {
			continue
		}
		start, err := time.Parse("15:04", h.Start)
		if err != nil {
			return fmt.Errorf("%w: %s start %q", ErrInvalidHours, day, h.Start)
		}
		end, err := time.Parse("15:04", h.End)
		if err != nil {
			return fmt.Errorf("%w: %s end %q", ErrInvalidHours, day, h.End)
		}
		if !start.Before(end) {
			return fmt.Errorf("%w: %s closes before it opens", ErrInvalidHours, day)
		}
	}
	return nil
}

func newToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// HashToken is the stored form of a bearer token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
