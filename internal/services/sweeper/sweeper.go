// Package sweeper closes out sessions whose time has passed and prunes
// expired sign-ins.
package sweeper

import (
	"context"
	"log"
	"time"

	"github.com/MyelinBots/heavenly-go/internal/db/repositories/auth_session"
	"github.com/MyelinBots/heavenly-go/internal/db/repositories/therapy_session"
	"github.com/MyelinBots/heavenly-go/internal/services/timer"
)

type Result struct {
	NoShow      int64
	Completed   int64
	ExpiredAuth int64
}

type Sweeper struct {
	sessions     therapy_session.SessionRepository
	authSessions auth_session.AuthSessionRepository
	timeout      time.Duration
	timer        *timer.RepeatedTimer
	now          func() time.Time
}

func NewSweeper(sessions therapy_session.SessionRepository, authSessions auth_session.AuthSessionRepository) *Sweeper {
	return &Sweeper{
		sessions:     sessions,
		authSessions: authSessions,
		timeout:      30 * time.Second,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Sweep runs one pass. Every step runs even when an earlier one fails; the
// first error is returned.
func (s *Sweeper) Sweep(ctx context.Context) (Result, error) {
	var (
		res      Result
		firstErr error
	)
	now := s.now()
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	n, err := s.close(ctx, therapy_session.StatusScheduled, therapy_session.StatusNoShow, now)
	res.NoShow = n
	keep(err)

	n, err = s.close(ctx, therapy_session.StatusInProgress, therapy_session.StatusCompleted, now)
	res.Completed = n
	keep(err)

	n, err = s.authSessions.DeleteExpired(ctx, now)
	res.ExpiredAuth = n
	keep(err)

	return res, firstErr
}

func (s *Sweeper) close(ctx context.Context, from, to therapy_session.Status, now time.Time) (int64, error) {
	ended, err := s.sessions.ListEndedBefore(ctx, from, now)
	if err != nil || len(ended) == 0 {
		return 0, err
	}
	ids := make([]string, 0, len(ended))
	for _, sess := range ended {
		ids = append(ids, sess.ID)
	}
	return s.sessions.BulkUpdateStatus(ctx, ids, from, to)
}

func (s *Sweeper) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	res, err := s.Sweep(ctx)
	if err != nil {
		log.Printf("[sweeper] sweep failed: %v", err)
	}
	if res.NoShow+res.Completed+res.ExpiredAuth > 0 {
		log.Printf("[sweeper] no_show=%d completed=%d expired_sign_ins=%d", res.NoShow, res.Completed, res.ExpiredAuth)
	}
}

// Start sweeps every interval until Stop.
func (s *Sweeper) Start(interval time.Duration) {
	if s.timer != nil || interval <= 0 {
		return
	}
	log.Printf("[sweeper] running every %s", interval)
	s.timer = timer.NewRepeatedTimer(interval, s.run)
}

func (s *Sweeper) Stop() {
	if s.timer != nil {
		s.timer.Stop()
	}
}
