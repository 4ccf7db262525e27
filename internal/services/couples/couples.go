package couples

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MyelinBots/heavenly-go/internal/db/repositories/couple"
	"github.com/MyelinBots/heavenly-go/internal/db/repositories/user"
	"github.com/MyelinBots/heavenly-go/internal/services/sanitize"
)

var (
	ErrSamePerson    = errors.New("a couple needs two different people")
	ErrUserNotFound  = errors.New("partner not found")
	ErrAlreadyLinked = errors.New("user is already in a couple")
	ErrNotInCouple   = errors.New("user is not in a couple")
	ErrTherapist     = errors.New("therapists cannot be linked as a couple")
)

type LinkInput struct {
	Partner1ID        string     `json:"partner1_id"`
	Partner2ID        string     `json:"partner2_id"`
	RelationshipStart *time.Time `json:"relationship_start"`
	TherapyGoals      string     `json:"therapy_goals"`
}

// CoupleView is the caller's couple with both partners resolved.
type CoupleView struct {
	Couple  *couple.Couple `json:"couple"`
	Self    *user.User     `json:"self"`
	Partner *user.User     `json:"partner"`
}

type CouplesService interface {
	Link(ctx context.Context, in LinkInput) (*couple.Couple, error)
	ForUser(ctx context.Context, userID string) (*CoupleView, error)
}

type CouplesServiceImpl struct {
	couples couple.CoupleRepository
	users   user.UserRepository
}

func NewCouplesService(couples couple.CoupleRepository, users user.UserRepository) *CouplesServiceImpl {
	return &CouplesServiceImpl{couples: couples, users: users}
}

// Link pairs two users; partner 1 and 2 get the matching couple roles.
func (s *CouplesServiceImpl) Link(ctx context.Context, in LinkInput) (*couple.Couple, error) {
	if in.Partner1ID == "" || in.Partner1ID == in.Partner2ID {
		return nil, ErrSamePerson
	}
	for _, id := range []string{in.Partner1ID, in.Partner2ID} {
		u, err := s.users.GetUserByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if u == nil {
			return nil, ErrUserNotFound
		}
		if u.Role == user.RoleTherapist || u.Role == user.RoleAdmin {
			return nil, ErrTherapist
		}
		if u.CoupleID != nil {
			return nil, fmt.Errorf("%w: %s", ErrAlreadyLinked, u.DisplayName())
		}
	}

	c := &couple.Couple{
		Partner1ID:   in.Partner1ID,
		Partner2ID:   in.Partner2ID,
		TherapyGoals: sanitize.Text(in.TherapyGoals),
	}
	if in.RelationshipStart != nil {
		start := in.RelationshipStart.UTC()
		c.RelationshipStart = &start
	}
	if err := s.couples.CreateWithPartners(ctx, c, string(user.RoleCouplePartner1), string(user.RoleCouplePartner2)); err != nil {
		return nil, fmt.Errorf("link couple: %w", err)
	}
	return c, nil
}

func (s *CouplesServiceImpl) ForUser(ctx context.Context, userID string) (*CoupleView, error) {
	c, err := s.couples.GetCoupleForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrNotInCouple
	}
	users, err := s.users.GetUsersByIDs(ctx, []string{c.Partner1ID, c.Partner2ID})
	if err != nil {
		return nil, err
	}

	view := &CoupleView{Couple: c}
	partnerID := c.PartnerOf(userID)
	for _, u := range users {
		switch u.ID {
		case userID:
			view.Self = u
		case partnerID:
			view.Partner = u
		}
	}
	return view, nil
}
