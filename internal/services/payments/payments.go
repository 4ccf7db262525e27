package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MyelinBots/heavenly-go/internal/db/repositories/couple"
	"github.com/MyelinBots/heavenly-go/internal/db/repositories/payment"
	"github.com/MyelinBots/heavenly-go/internal/db/repositories/therapy_session"
	"github.com/MyelinBots/heavenly-go/internal/db/repositories/user"
	"github.com/MyelinBots/heavenly-go/internal/services/sanitize"
	"gorm.io/datatypes"
)

var (
	ErrInvalidAmount     = errors.New("amount must be greater than zero")
	ErrInvalidSplit      = errors.New("split percentage must be between 1 and 99")
	ErrInvalidCurrency   = errors.New("currency must be a 3 letter code")
	ErrInvalidStatus     = errors.New("invalid payment status")
	ErrInvalidTransition = errors.New("invalid payment status transition")
	ErrNotFound          = errors.New("payment not found")
	ErrSessionNotFound   = errors.New("session not found")
	ErrNotCoupleSession  = errors.New("split payments need a couple session")
	ErrForbidden         = errors.New("not allowed to change this payment")
)

var transitions = map[payment.Status][]payment.Status{
	payment.StatusPending:   {payment.StatusCompleted, payment.StatusFailed},
	payment.StatusCompleted: {payment.StatusRefunded},
}

// CanTransition reports whether a payment may move from one status to another.
func CanTransition(from, to payment.Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type RecordInput struct {
	SessionID   string `json:"session_id"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	Description string `json:"description"`
}

type SplitInput struct {
	SessionID string `json:"session_id"`
	// Amount defaults to the session cost when zero.
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
	Partner1Percent int    `json:"partner1_percentage"`
}

type PaymentsService interface {
	Record(ctx context.Context, payer *user.User, in RecordInput) (*payment.Payment, error)
	Split(ctx context.Context, payer *user.User, in SplitInput) ([]*payment.Payment, error)
	SetStatus(ctx context.Context, actor *user.User, id string, to payment.Status) (*payment.Payment, error)
	ListForPayer(ctx context.Context, payerID string) ([]*payment.Payment, error)
	Earnings(ctx context.Context, therapistID string, from, to time.Time) (int64, error)
}

type PaymentsServiceImpl struct {
	payments payment.PaymentRepository
	sessions therapy_session.SessionRepository
	couples  couple.CoupleRepository
}

func NewPaymentsService(payments payment.PaymentRepository, sessions therapy_session.SessionRepository, couples couple.CoupleRepository) *PaymentsServiceImpl {
	return &PaymentsServiceImpl{payments: payments, sessions: sessions, couples: couples}
}

func normalizeCurrency(c string) (string, error) {
	c = strings.ToUpper(strings.TrimSpace(c))
	if c == "" {
		return "USD", nil
	}
	if len(c) != 3 {
		return "", ErrInvalidCurrency
	}
	return c, nil
}

func (s *PaymentsServiceImpl) participantSession(ctx context.Context, payer *user.User, id string) (*therapy_session.Session, error) {
	sess, err := s.sessions.GetSessionByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess == nil || (!sess.HasParticipant(payer.ID) && payer.Role != user.RoleAdmin) {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (s *PaymentsServiceImpl) Record(ctx context.Context, payer *user.User, in RecordInput) (*payment.Payment, error) {
	if in.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	currency, err := normalizeCurrency(in.Currency)
	if err != nil {
		return nil, err
	}

	p := &payment.Payment{
		PayerID:     payer.ID,
		Amount:      in.Amount,
		Currency:    currency,
		Description: sanitize.Text(in.Description),
		Status:      payment.StatusPending,
	}
	if in.SessionID != "" {
		sess, err := s.participantSession(ctx, payer, in.SessionID)
		if err != nil {
			return nil, err
		}
		p.SessionID = &sess.ID
	}
	if err := s.payments.CreatePayments(ctx, p); err != nil {
		return nil, fmt.Errorf("record payment: %w", err)
	}
	return p, nil
}

// SplitAmounts divides total between partners; partner 1 absorbs the rounding remainder.
func SplitAmounts(total int64, partner1Percent int) (int64, int64) {
	partner2 := total * int64(100-partner1Percent) / 100
	return total - partner2, partner2
}

func (s *PaymentsServiceImpl) Split(ctx context.Context, payer *user.User, in SplitInput) ([]*payment.Payment, error) {
	if in.Partner1Percent <= 0 || in.Partner1Percent >= 100 {
		return nil, ErrInvalidSplit
	}
	currency, err := normalizeCurrency(in.Currency)
	if err != nil {
		return nil, err
	}
	sess, err := s.participantSession(ctx, payer, in.SessionID)
	if err != nil {
		return nil, err
	}
	if sess.Type != therapy_session.TypeCouple || sess.CoupleID == nil {
		return nil, ErrNotCoupleSession
	}
	c, err := s.couples.GetCoupleByID(ctx, *sess.CoupleID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrNotCoupleSession
	}

	total := in.Amount
	if total == 0 {
		total = sess.Cost
	}
	if total <= 0 {
		return nil, ErrInvalidAmount
	}
	first, second := SplitAmounts(total, in.Partner1Percent)

	meta, _ := json.Marshal(map[string]interface{}{"total": total, "split_by": payer.ID})
	p1Pct, p2Pct := in.Partner1Percent, 100-in.Partner1Percent
	rows := []*payment.Payment{
		{PayerID: c.Partner1ID, SessionID: &sess.ID, Amount: first, Currency: currency, SplitPercentage: &p1Pct},
		{PayerID: c.Partner2ID, SessionID: &sess.ID, Amount: second, Currency: currency, SplitPercentage: &p2Pct},
	}
	for _, p := range rows {
		p.Status = payment.StatusPending
		p.IsSplitPayment = true
		p.Description = fmt.Sprintf("Split payment for %s", sess.Title)
		p.Metadata = datatypes.JSON(meta)
	}
	if err := s.payments.CreatePayments(ctx, rows...); err != nil {
		return nil, fmt.Errorf("split payment: %w", err)
	}
	return rows, nil
}

// SetStatus is open to admins and to the therapist of the linked session.
func (s *PaymentsServiceImpl) SetStatus(ctx context.Context, actor *user.User, id string, to payment.Status) (*payment.Payment, error) {
	if !to.Valid() {
		return nil, ErrInvalidStatus
	}
	p, err := s.payments.GetPaymentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}
	if actor.Role != user.RoleAdmin {
		allowed := false
		if p.SessionID != nil {
			sess, err := s.sessions.GetSessionByID(ctx, *p.SessionID)
			if err != nil {
				return nil, err
			}
			allowed = sess != nil && sess.TherapistID == actor.ID
		}
		if !allowed {
			return nil, ErrForbidden
		}
	}
	if !CanTransition(p.Status, to) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, p.Status, to)
	}
	if err := s.payments.UpdateStatus(ctx, id, to); err != nil {
		return nil, err
	}
	p.Status = to
	return p, nil
}

func (s *PaymentsServiceImpl) ListForPayer(ctx context.Context, payerID string) ([]*payment.Payment, error) {
	return s.payments.ListByPayer(ctx, payerID)
}

func (s *PaymentsServiceImpl) Earnings(ctx context.Context, therapistID string, from, to time.Time) (int64, error) {
	return s.payments.SumCompletedForTherapist(ctx, therapistID, from.UTC(), to.UTC())
}

// MonthBounds returns the UTC start of t's month and of the next one.
func MonthBounds(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}
