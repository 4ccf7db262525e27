package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/MyelinBots/heavenly-go/internal/db/dbtest"
	"github.com/MyelinBots/heavenly-go/internal/db/repositories"
	"github.com/MyelinBots/heavenly-go/internal/db/repositories/therapist"
	"github.com/MyelinBots/heavenly-go/internal/db/repositories/user"
	"golang.org/x/crypto/bcrypt"
)

func newTestService(t *testing.T) (*AuthServiceImpl, *repositories.Repositories) {
	t.Helper()
	repos := repositories.New(dbtest.Open(t, repositories.Models()...))
	svc := NewAuthService(repos.Users, repos.Therapists, repos.AuthSessions, time.Hour)
	svc.cost = bcrypt.MinCost
	return svc, repos
}

func TestSignUpValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.SignUp(ctx, SignUpInput{Email: "taken@example.com", Password: "longenough"}); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		in      SignUpInput
		wantErr error
	}{
		{"bad email", SignUpInput{Email: "nope", Password: "longenough"}, ErrInvalidEmail},
		{"email with space", SignUpInput{Email: "a b@example.com", Password: "longenough"}, ErrInvalidEmail},
		{"short password", SignUpInput{Email: "a@example.com", Password: "short"}, ErrWeakPassword},
		{"password past bcrypt limit", SignUpInput{Email: "a@example.com", Password: strings.Repeat("x", 73)}, ErrPasswordTooLong},
		{"admin not allowed", SignUpInput{Email: "a@example.com", Password: "longenough", Role: user.RoleAdmin}, ErrInvalidRole},
		{"partner not allowed", SignUpInput{Email: "a@example.com", Password: "longenough", Role: user.RoleCouplePartner1}, ErrInvalidRole},
		{"duplicate is case insensitive", SignUpInput{Email: "TAKEN@example.com", Password: "longenough"}, ErrEmailTaken},
		{"therapist ok", SignUpInput{Email: "dr@example.com", Password: "longenough", Role: user.RoleTherapist}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SignUp(ctx, tt.in)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("SignUp() err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSignUpDefaultsToClient(t *testing.T) {
	svc, _ := newTestService(t)
	u, err := svc.SignUp(context.Background(), SignUpInput{Email: " Sam@Example.com ", Password: "longenough", FirstName: "Sam", LastName: "Rivera"})
	if err != nil {
		t.Fatal(err)
	}
	if u.Role != user.RoleClient || u.Email != "sam@example.com" || u.Name != "Sam Rivera" {
		t.Errorf("unexpected user %+v", u)
	}
	if u.PasswordHash == "longenough" {
		t.Error("password stored in clear")
	}
}

func TestSignInFlow(t *testing.T) {
	svc, repos := newTestService(t)
	ctx := context.Background()

	for _, in := range []SignUpInput{
		{Email: "client@example.com", Password: "password1", Role: user.RoleClient},
		{Email: "dr@example.com", Password: "password1", Role: user.RoleTherapist},
	} {
		if _, err := svc.CreateUser(ctx, in); err != nil {
			t.Fatal(err)
		}
	}

	if _, err := svc.SignIn(ctx, "client@example.com", "wrong-password", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password err = %v", err)
	}
	if _, err := svc.SignIn(ctx, "ghost@example.com", "password1", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown user err = %v", err)
	}

	res, err := svc.SignIn(ctx, "DR@example.com", "password1", "test-agent")
	if err != nil {
		t.Fatal(err)
	}
	if res.Redirect != "/dashboard/therapist" {
		t.Errorf("redirect = %q", res.Redirect)
	}
	if res.User.LastLoginAt == nil {
		t.Error("last login not recorded")
	}

	stored, _ := repos.AuthSessions.GetByTokenHash(ctx, HashToken(res.Token))
	if stored == nil {
		t.Fatal("session not stored by hash")
	}
	if raw, _ := repos.AuthSessions.GetByTokenHash(ctx, res.Token); raw != nil {
		t.Error("raw token must not be stored")
	}

	u, err := svc.Authenticate(ctx, res.Token)
	if err != nil || u.Email != "dr@example.com" {
		t.Fatalf("Authenticate() = %v, %v", u, err)
	}

	svc.now = func() time.Time { return time.Now().UTC().Add(2 * time.Hour) }
	if _, err := svc.Authenticate(ctx, res.Token); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("expired token err = %v", err)
	}
	svc.now = func() time.Time { return time.Now().UTC() }

	if err := svc.SignOut(ctx, res.Token); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Authenticate(ctx, res.Token); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("signed out token err = %v", err)
	}
}

func TestSignInInactive(t *testing.T) {
	svc, repos := newTestService(t)
	ctx := context.Background()
	u, err := svc.CreateUser(ctx, SignUpInput{Email: "old@example.com", Password: "password1", Role: user.RoleClient})
	if err != nil {
		t.Fatal(err)
	}
	if err := repos.Users.UpdateFields(ctx, u.ID, map[string]interface{}{"is_active": false}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.SignIn(ctx, "old@example.com", "password1", ""); !errors.Is(err, ErrInactive) {
		t.Errorf("inactive err = %v", err)
	}
}

func TestDashboardPath(t *testing.T) {
	tests := []struct {
		role user.Role
		want string
	}{
		{user.RoleTherapist, "/dashboard/therapist"},
		{user.RoleClient, "/dashboard/client"},
		{user.RoleCouplePartner1, "/dashboard/couple"},
		{user.RoleCouplePartner2, "/dashboard/couple"},
		{user.RoleAdmin, "/dashboard"},
	}
	for _, tt := range tests {
		if got := DashboardPath(tt.role); got != tt.want {
			t.Errorf("DashboardPath(%s) = %q, want %q", tt.role, got, tt.want)
		}
	}
}

func TestUpdateProfile(t *testing.T) {
	svc, repos := newTestService(t)
	ctx := context.Background()
	u, _ := svc.CreateUser(ctx, SignUpInput{Email: "c@example.com", Password: "password1", Role: user.RoleClient})

	first, last, goals := "Jamie", "Park", "<i>sleep</i> better"
	if _, err := svc.UpdateProfile(ctx, u.ID, ProfileInput{FirstName: &first, LastName: &last, TherapyGoals: &goals}); err != nil {
		t.Fatal(err)
	}
	got, _ := repos.Users.GetUserByID(ctx, u.ID)
	if got.Name != "Jamie Park" || got.TherapyGoals != "sleep better" {
		t.Errorf("profile not updated: %+v", got)
	}

	if _, err := svc.UpdateProfile(ctx, "missing", ProfileInput{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing user err = %v", err)
	}
}

func TestUpsertTherapistProfile(t *testing.T) {
	svc, repos := newTestService(t)
	ctx := context.Background()
	dr, _ := svc.CreateUser(ctx, SignUpInput{Email: "dr@example.com", Password: "password1", Role: user.RoleTherapist})
	client, _ := svc.CreateUser(ctx, SignUpInput{Email: "c@example.com", Password: "password1", Role: user.RoleClient})

	profile := &therapist.Profile{
		LicenseNumber: "LIC-1",
		HourlyRate:    15000,
		AvailableHours: therapist.AvailableHours{
			"monday": {Start: "09:00", End: "17:00"},
			"sunday": {Closed: true},
		},
	}
	if _, err := svc.UpsertTherapistProfile(ctx, dr.ID, profile); err != nil {
		t.Fatal(err)
	}
	profile2 := &therapist.Profile{LicenseNumber: "LIC-2"}
	if _, err := svc.UpsertTherapistProfile(ctx, dr.ID, profile2); err != nil {
		t.Fatal(err)
	}
	got, _ := repos.Therapists.GetProfileByUserID(ctx, dr.ID)
	if got.LicenseNumber != "LIC-2" || got.ID != profile.ID {
		t.Errorf("upsert did not update in place: %+v", got)
	}

	if _, err := svc.UpsertTherapistProfile(ctx, client.ID, &therapist.Profile{}); !errors.Is(err, ErrNotTherapist) {
		t.Errorf("client profile err = %v", err)
	}

	bad := []therapist.AvailableHours{
		{"funday": {Start: "09:00", End: "10:00"}},
		{"monday": {Start: "9am", End: "10:00"}},
		{"monday": {Start: "17:00", End: "09:00"}},
	}
	for _, hours := range bad {
		if err := ValidateHours(hours); !errors.Is(err, ErrInvalidHours) {
			t.Errorf("ValidateHours(%v) = %v, want ErrInvalidHours", hours, err)
		}
	}
}
