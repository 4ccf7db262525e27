package payment

import (
	"context"
	"testing"
	"time"

	"github.com/MyelinBots/heavenly-go/internal/db/dbtest"
	"github.com/MyelinBots/heavenly-go/internal/db/repositories/therapy_session"
)

func TestPaymentsAndEarnings(t *testing.T) {
	database := dbtest.Open(t, &Payment{}, &therapy_session.Session{})
	sessions := therapy_session.NewSessionRepository(database)
	repo := NewPaymentRepository(database)
	ctx := context.Background()

	start := time.Now().UTC().Add(-time.Hour).Truncate(time.Second)
	s := &therapy_session.Session{TherapistID: "t1", ClientID: "c1", Title: "Intake",
		Type: therapy_session.TypeIndividual, Status: therapy_session.StatusCompleted,
		StartTime: start, EndTime: start.Add(50 * time.Minute)}
	if err := sessions.CreateSession(ctx, s); err != nil {
		t.Fatal(err)
	}

	paid := &Payment{PayerID: "c1", SessionID: &s.ID, Amount: 15000, Status: StatusCompleted}
	pending := &Payment{PayerID: "c1", SessionID: &s.ID, Amount: 5000, Status: StatusPending}
	if err := repo.CreatePayments(ctx, paid, pending); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if paid.Currency != "USD" {
		t.Errorf("expected default currency USD, got %q", paid.Currency)
	}

	from := time.Now().UTC().Add(-24 * time.Hour)
	to := time.Now().UTC().Add(24 * time.Hour)
	total, err := repo.SumCompletedForTherapist(ctx, "t1", from, to)
	if err != nil {
		t.Fatal(err)
	}
	if total != 15000 {
		t.Errorf("expected 15000 earned, got %d", total)
	}

	if err := repo.UpdateStatus(ctx, pending.ID, StatusCompleted); err != nil {
		t.Fatal(err)
	}
	total, _ = repo.SumCompletedForTherapist(ctx, "t1", from, to)
	if total != 20000 {
		t.Errorf("expected 20000 earned, got %d", total)
	}

	other, _ := repo.SumCompletedForTherapist(ctx, "t2", from, to)
	if other != 0 {
		t.Errorf("expected 0 for other therapist, got %d", other)
	}

	byPayer, _ := repo.ListByPayer(ctx, "c1")
	if len(byPayer) != 2 {
		t.Errorf("expected 2 payments, got %d", len(byPayer))
	}
	bySession, _ := repo.ListBySession(ctx, s.ID)
	if len(bySession) != 2 {
		t.Errorf("expected 2 session payments, got %d", len(bySession))
	}
}
