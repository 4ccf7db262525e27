// Package notify fans crisis alerts out to on-call channels.
package notify

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/MyelinBots/heavenly-go/internal/services/crisis"
	"github.com/hashicorp/go-multierror"
)

// Alert describes one escalated conversation.
type Alert struct {
	UserID         string       `json:"user_id"`
	UserName       string       `json:"user_name"`
	ConversationID string       `json:"conversation_id"`
	Level          crisis.Level `json:"crisis_level"`
	Reason         string       `json:"reason"`
	// TherapistIDs are the therapists assigned to the user.
	TherapistIDs []string  `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Line renders the alert as a single chat line.
func (a Alert) Line() string {
	return fmt.Sprintf("CRISIS ALERT [%s] user=%s (%s) conversation=%s: %s",
		a.Level, a.UserName, a.UserID, a.ConversationID, a.Reason)
}

type Notifier interface {
	NotifyCrisis(ctx context.Context, alert Alert) error
}

// Fanout delivers an alert to every notifier and aggregates the failures.
type Fanout struct {
	notifiers []Notifier
}

func NewFanout(notifiers ...Notifier) *Fanout {
	return &Fanout{notifiers: notifiers}
}

func (f *Fanout) Add(n Notifier) {
	f.notifiers = append(f.notifiers, n)
}

func (f *Fanout) NotifyCrisis(ctx context.Context, alert Alert) error {
	var result *multierror.Error
	for _, n := range f.notifiers {
		if err := n.NotifyCrisis(ctx, alert); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

// LogNotifier writes alerts to the process log.
type LogNotifier struct{}

func (LogNotifier) NotifyCrisis(_ context.Context, alert Alert) error {
	log.Printf("[notify] %s", alert.Line())
	return nil
}
