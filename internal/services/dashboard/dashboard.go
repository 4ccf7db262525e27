// Package dashboard assembles the role specific landing views.
package dashboard

import (
	"context"
	"errors"
	"time"

	"github.com/MyelinBots/heavenly-go/internal/db/repositories/content"
	"github.com/MyelinBots/heavenly-go/internal/db/repositories/conversation"
	"github.com/MyelinBots/heavenly-go/internal/db/repositories/therapist"
	"github.com/MyelinBots/heavenly-go/internal/db/repositories/therapy_session"
	"github.com/MyelinBots/heavenly-go/internal/db/repositories/user"
	"github.com/MyelinBots/heavenly-go/internal/services/couples"
	"github.com/MyelinBots/heavenly-go/internal/services/payments"
)

var ErrNoDashboard = errors.New("no dashboard for this role")

const (
	upcomingLimit     = 5
	conversationLimit = 5
	escalationLimit   = 10
)

type TherapistDashboard struct {
	Role          user.Role                    `json:"role"`
	TodaySessions []*therapy_session.Session   `json:"today_sessions"`
	UpcomingCount int                          `json:"upcoming_count"`
	ActiveClients []*user.User                 `json:"active_clients"`
	Escalations   []*conversation.Conversation `json:"escalated_conversations"`
	MonthEarnings int64                        `json:"month_earnings"`
}

type ClientDashboard struct {
	Role                user.Role                    `json:"role"`
	UpcomingSessions    []*therapy_session.Session   `json:"upcoming_sessions"`
	RecentConversations []*conversation.Conversation `json:"recent_conversations"`
	Progress            []*content.Progress          `json:"progress"`
}

type CoupleDashboard struct {
	Role             user.Role                  `json:"role"`
	Couple           *couples.CoupleView        `json:"couple"`
	UpcomingSessions []*therapy_session.Session `json:"upcoming_sessions"`
}

type DashboardService interface {
	// ForUser returns a *TherapistDashboard, *ClientDashboard or *CoupleDashboard.
	ForUser(ctx context.Context, u *user.User) (interface{}, error)
}

type DashboardServiceImpl struct {
	sessions      therapy_session.SessionRepository
	conversations conversation.ConversationRepository
	therapists    therapist.TherapistRepository
	users         user.UserRepository
	content       content.ContentRepository
	payments      payments.PaymentsService
	couples       couples.CouplesService

	now func() time.Time
}

func NewDashboardService(
	sessions therapy_session.SessionRepository,
	conversations conversation.ConversationRepository,
	therapists therapist.TherapistRepository,
	users user.UserRepository,
	contentRepo content.ContentRepository,
	paymentsService payments.PaymentsService,
	couplesService couples.CouplesService,
) *DashboardServiceImpl {
	return &DashboardServiceImpl{
		sessions:      sessions,
		conversations: conversations,
		therapists:    therapists,
		users:         users,
		content:       contentRepo,
		payments:      paymentsService,
		couples:       couplesService,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (s *DashboardServiceImpl) ForUser(ctx context.Context, u *user.User) (interface{}, error) {
	switch {
	case u.Role == user.RoleTherapist:
		return s.therapist(ctx, u)
	case u.Role == user.RoleClient:
		return s.client(ctx, u)
	case u.Role.IsCouplePartner():
		return s.couple(ctx, u)
	}
	return nil, ErrNoDashboard
}

func (s *DashboardServiceImpl) upcoming(ctx context.Context, userID string, limit int) ([]*therapy_session.Session, error) {
	return s.sessions.ListForParticipant(ctx, userID, therapy_session.ListFilter{
		Status:      therapy_session.StatusScheduled,
		StartsAfter: s.now(),
		Limit:       limit,
	})
}

func (s *DashboardServiceImpl) therapist(ctx context.Context, u *user.User) (*TherapistDashboard, error) {
	now := s.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	today, err := s.sessions.ListForTherapistBetween(ctx, u.ID, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	upcoming, err := s.upcoming(ctx, u.ID, 0)
	if err != nil {
		return nil, err
	}
	clientIDs, err := s.therapists.ClientIDsForTherapist(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	clients, err := s.users.GetUsersByIDs(ctx, clientIDs)
	if err != nil {
		return nil, err
	}
	escalations, err := s.conversations.ListEscalatedForUsers(ctx, clientIDs, escalationLimit)
	if err != nil {
		return nil, err
	}
	from, to := payments.MonthBounds(now)
	earnings, err := s.payments.Earnings(ctx, u.ID, from, to)
	if err != nil {
		return nil, err
	}

	return &TherapistDashboard{
		Role:          u.Role,
		TodaySessions: today,
		UpcomingCount: len(upcoming),
		ActiveClients: clients,
		Escalations:   escalations,
		MonthEarnings: earnings,
	}, nil
}

func (s *DashboardServiceImpl) client(ctx context.Context, u *user.User) (*ClientDashboard, error) {
	upcoming, err := s.upcoming(ctx, u.ID, upcomingLimit)
	if err != nil {
		return nil, err
	}
	recent, err := s.conversations.ListRecent(ctx, u.ID, conversationLimit)
	if err != nil {
		return nil, err
	}
	progress, err := s.content.ListProgress(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	return &ClientDashboard{
		Role:                u.Role,
		UpcomingSessions:    upcoming,
		RecentConversations: recent,
		Progress:            progress,
	}, nil
}

func (s *DashboardServiceImpl) couple(ctx context.Context, u *user.User) (*CoupleDashboard, error) {
	view, err := s.couples.ForUser(ctx, u.ID)
	if err != nil && !errors.Is(err, couples.ErrNotInCouple) {
		return nil, err
	}
	upcoming, err := s.upcoming(ctx, u.ID, 0)
	if err != nil {
		return nil, err
	}
	shared := make([]*therapy_session.Session, 0, len(upcoming))
	for _, sess := range upcoming {
		if sess.Type == therapy_session.TypeCouple {
			shared = append(shared, sess)
		}
	}
	return &CoupleDashboard{Role: u.Role, Couple: view, UpcomingSessions: shared}, nil
}
