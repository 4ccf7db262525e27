package therapist

import (
	"context"
	"testing"

	"github.com/MyelinBots/heavenly-go/internal/db/dbtest"
	"github.com/google/go-cmp/cmp"
)

func newTestRepo(t *testing.T) TherapistRepository {
	t.Helper()
	return NewTherapistRepository(dbtest.Open(t, &Profile{}, &Assignment{}))
}

func TestUpsertProfile(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	p := &Profile{
		UserID:             "therapist-1",
		LicenseNumber:      "PSY12345",
		Specialty:          []string{"Cognitive Behavioral Therapy", "Couples Therapy"},
		HourlyRate:         15000,
		IsAcceptingClients: true,
		AvailableHours: AvailableHours{
			"monday": {Start: "09:00", End: "17:00"},
			"sunday": {Closed: true},
		},
	}
	if err := repo.UpsertProfile(ctx, p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	firstID := p.ID

	update := &Profile{UserID: "therapist-1", LicenseNumber: "PSY99999", YearsExperience: 12}
	if err := repo.UpsertProfile(ctx, update); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if update.ID != firstID {
		t.Errorf("upsert should keep primary key %s, got %s", firstID, update.ID)
	}

	got, err := repo.GetProfileByUserID(ctx, "therapist-1")
	if err != nil {
		t.Fatal(err)
	}
	if got.LicenseNumber != "PSY99999" || got.YearsExperience != 12 {
		t.Errorf("expected updated profile, got %+v", got)
	}
}

func TestProfileJSONColumns(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	hours := AvailableHours{"friday": {Start: "09:00", End: "15:00"}}
	if err := repo.UpsertProfile(ctx, &Profile{UserID: "t", Languages: []string{"English", "Spanish"}, AvailableHours: hours}); err != nil {
		t.Fatal(err)
	}

	got, _ := repo.GetProfileByUserID(ctx, "t")
	if diff := cmp.Diff([]string{"English", "Spanish"}, got.Languages); diff != "" {
		t.Errorf("languages mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(hours, got.AvailableHours); diff != "" {
		t.Errorf("hours mismatch (-want +got):\n%s", diff)
	}
}

func TestAssignments(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	a1, err := repo.Assign(ctx, "client-1", "therapist-1")
	if err != nil {
		t.Fatal(err)
	}
	a2, err := repo.Assign(ctx, "client-1", "therapist-1")
	if err != nil {
		t.Fatal(err)
	}
	if a1.ID != a2.ID {
		t.Error("assign should be idempotent for an active pair")
	}
	if _, err := repo.Assign(ctx, "client-2", "therapist-1"); err != nil {
		t.Fatal(err)
	}

	clients, _ := repo.ClientIDsForTherapist(ctx, "therapist-1")
	if len(clients) != 2 {
		t.Errorf("expected 2 clients, got %v", clients)
	}
	therapists, _ := repo.TherapistIDsForClient(ctx, "client-1")
	if diff := cmp.Diff([]string{"therapist-1"}, therapists); diff != "" {
		t.Errorf("therapists mismatch (-want +got):\n%s", diff)
	}

	if err := repo.EndAssignment(ctx, "client-1", "therapist-1"); err != nil {
		t.Fatal(err)
	}
	ok, _ := repo.IsAssigned(ctx, "client-1", "therapist-1")
	if ok {
		t.Error("ended assignment should not count as assigned")
	}
}
