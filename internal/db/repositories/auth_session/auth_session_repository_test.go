package auth_session

import (
	"context"
	"testing"
	"time"

	"github.com/MyelinBots/heavenly-go/internal/db/dbtest"
)

func TestAuthSessionLifecycle(t *testing.T) {
	repo := NewAuthSessionRepository(dbtest.Open(t, &AuthSession{}))
	ctx := context.Background()
	now := time.Now().UTC()

	live := &AuthSession{UserID: "u1", TokenHash: "live", ExpiresAt: now.Add(time.Hour)}
	stale := &AuthSession{UserID: "u1", TokenHash: "stale", ExpiresAt: now.Add(-time.Minute)}
	for _, s := range []*AuthSession{live, stale} {
		if err := repo.CreateSession(ctx, s); err != nil {
			t.Fatal(err)
		}
	}

	got, err := repo.GetByTokenHash(ctx, "live")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.UserID != "u1" {
		t.Fatalf("expected live session for u1, got %+v", got)
	}
	if got.Expired(now) {
		t.Error("live session reported expired")
	}

	deleted, err := repo.DeleteExpired(ctx, now)
	if err != nil {
		t.Fatal(err)
	}
	if deleted != 1 {
		t.Errorf("DeleteExpired() = %d, want 1", deleted)
	}
	if s, _ := repo.GetByTokenHash(ctx, "stale"); s != nil {
		t.Error("expected stale session to be gone")
	}

	if err := repo.DeleteByTokenHash(ctx, "live"); err != nil {
		t.Fatal(err)
	}
	if s, _ := repo.GetByTokenHash(ctx, "live"); s != nil {
		t.Error("expected live session to be deleted")
	}
}

func TestGetByTokenHashMissing(t *testing.T) {
	repo := NewAuthSessionRepository(dbtest.Open(t, &AuthSession{}))
	got, err := repo.GetByTokenHash(context.Background(), "nope")
	if err != nil || got != nil {
		t.Errorf("GetByTokenHash(nope) = %v, %v; want nil, nil", got, err)
	}
}
