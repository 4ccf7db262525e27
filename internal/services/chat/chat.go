// Package chat runs the AI support conversation: it persists both sides of
// each exchange and escalates crisis messages to humans.
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/MyelinBots/heavenly-go/internal/db/repositories/conversation"
	"github.com/MyelinBots/heavenly-go/internal/db/repositories/system_log"
	"github.com/MyelinBots/heavenly-go/internal/db/repositories/therapist"
	"github.com/MyelinBots/heavenly-go/internal/db/repositories/therapy_session"
	"github.com/MyelinBots/heavenly-go/internal/db/repositories/user"
	"github.com/MyelinBots/heavenly-go/internal/services/assistant"
	"github.com/MyelinBots/heavenly-go/internal/services/notify"
	"github.com/MyelinBots/heavenly-go/internal/services/sanitize"
	"github.com/MyelinBots/heavenly-go/internal/services/sealer"
	"gorm.io/datatypes"
)

var (
	ErrEmptyMessage = errors.New("Message is required")
	ErrInvalidTurn  = errors.New("conversation history roles must be user or assistant")
	ErrNotFound     = errors.New("conversation not found")
	ErrForbidden    = errors.New("conversation belongs to another user")
	ErrUnknownUser  = errors.New("user not found")
)

const (
	reuseWindow    = 24 * time.Hour
	titleLength    = 50
	previewLength  = 100
	recentSessions = 5
	recentChats    = 10
)

// Reply is what the caller gets back for one message.
type Reply struct {
	assistant.Response
	ConversationID string `json:"conversation_id"`
}

// ConversationView is a conversation with its newest message opened.
type ConversationView struct {
	*conversation.Conversation
	Latest *conversation.Message `json:"latest_message,omitempty"`
}

type ChatService interface {
	Send(ctx context.Context, userID, message string, history []assistant.Turn) (*Reply, error)
	Conversations(ctx context.Context, userID string) ([]ConversationView, error)
	Messages(ctx context.Context, viewerID, conversationID string) ([]*conversation.Message, error)
}

type ChatServiceImpl struct {
	users         user.UserRepository
	sessions      therapy_session.SessionRepository
	conversations conversation.ConversationRepository
	therapists    therapist.TherapistRepository
	systemLogs    system_log.SystemLogRepository
	assistant     assistant.Assistant
	sealer        sealer.Sealer
	notifier      notify.Notifier
	now           func() time.Time
}

func NewChatService(
	users user.UserRepository,
	sessions therapy_session.SessionRepository,
	conversations conversation.ConversationRepository,
	therapists therapist.TherapistRepository,
	systemLogs system_log.SystemLogRepository,
	ai assistant.Assistant,
	s sealer.Sealer,
	notifier notify.Notifier,
) *ChatServiceImpl {
	return &ChatServiceImpl{
		users:         users,
		sessions:      sessions,
		conversations: conversations,
		therapists:    therapists,
		systemLogs:    systemLogs,
		assistant:     ai,
		sealer:        s,
		notifier:      notifier,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (s *ChatServiceImpl) Send(ctx context.Context, userID, message string, history []assistant.Turn) (*Reply, error) {
	raw := strings.TrimSpace(message)
	if raw == "" {
		return nil, ErrEmptyMessage
	}
	for i, turn := range history {
		if turn.Role != assistant.RoleUser && turn.Role != assistant.RoleAssistant {
			return nil, fmt.Errorf("%w: turn %d has role %q", ErrInvalidTurn, i, turn.Role)
		}
	}
	// the classifier sees the raw text; only the stored copy is sanitized
	clean := sanitize.Text(raw)
	if clean == "" {
		clean = html.EscapeString(raw)
	}

	u, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if u == nil {
		return nil, ErrUnknownUser
	}
	uc, err := s.userContext(ctx, u)
	if err != nil {
		return nil, err
	}

	resp := s.assistant.Respond(ctx, raw, history, uc)
	now := s.now()

	storedUser, sealed, err := s.sealer.Seal(clean)
	if err != nil {
		return nil, fmt.Errorf("seal message: %w", err)
	}

	conv, err := s.recordConversation(ctx, userID, clean, sealed, resp, now)
	if err != nil {
		return nil, err
	}

	if err := s.conversations.CreateMessage(ctx, &conversation.Message{
		SenderID:         userID,
		AIConversationID: &conv.ID,
		Content:          storedUser,
		Type:             conversation.MessageText,
		IsEncrypted:      sealed,
	}); err != nil {
		return nil, fmt.Errorf("save user message: %w", err)
	}

	storedReply, replySealed, err := s.sealer.Seal(resp.Message)
	if err != nil {
		return nil, fmt.Errorf("seal reply: %w", err)
	}
	metadata, err := json.Marshal(map[string]interface{}{
		"is_ai_response": true,
		"sentiment":      resp.Sentiment,
		"suggestions":    resp.Suggestions,
		"crisis_level":   resp.Sentiment.CrisisLevel,
	})
	if err != nil {
		return nil, err
	}
	if err := s.conversations.CreateMessage(ctx, &conversation.Message{
		SenderID:         userID,
		AIConversationID: &conv.ID,
		Content:          storedReply,
		Type:             conversation.MessageText,
		IsEncrypted:      replySealed,
		Metadata:         datatypes.JSON(metadata),
	}); err != nil {
		return nil, fmt.Errorf("save reply: %w", err)
	}

	if resp.ShouldEscalate {
		s.escalate(ctx, u, conv, storedUser, resp)
	}

	return &Reply{Response: resp, ConversationID: conv.ID}, nil
}

func (s *ChatServiceImpl) userContext(ctx context.Context, u *user.User) (assistant.UserContext, error) {
	uc := assistant.UserContext{Name: u.Name, TherapyGoals: u.TherapyGoals}
	recent, err := s.sessions.RecentForClient(ctx, u.ID, recentSessions)
	if err != nil {
		return uc, fmt.Errorf("load recent sessions: %w", err)
	}
	for _, sess := range recent {
		line := sess.Title
		if sess.AISummary != "" {
			line += ": " + sess.AISummary
		}
		uc.RecentSessions = append(uc.RecentSessions, line)
	}
	return uc, nil
}

// recordConversation reuses the user's conversation from the last day or
// starts a new one.
func (s *ChatServiceImpl) recordConversation(ctx context.Context, userID, message string, sealed bool, resp assistant.Response, now time.Time) (*conversation.Conversation, error) {
	existing, err := s.conversations.LatestSince(ctx, userID, now.Add(-reuseWindow))
	if err != nil {
		return nil, fmt.Errorf("find conversation: %w", err)
	}
	preview := Truncate(resp.Message, previewLength)
	title := Truncate(message, titleLength)
	if sealed {
		preview = ""
		title = "Conversation " + now.Format(time.DateOnly)
	}

	if existing == nil {
		conv := &conversation.Conversation{
			UserID:           userID,
			Title:            title,
			Sentiment:        resp.Sentiment.Sentiment,
			CrisisLevel:      resp.Sentiment.CrisisLevel,
			Model:            s.assistant.Model(),
			IsEscalated:      resp.ShouldEscalate,
			EscalationReason: resp.EscalationReason,
			KeyInsights:      append([]string{}, resp.Sentiment.Emotions...),
			LastMessage:      preview,
		}
		if !sealed {
			conv.Context = message
		}
		if resp.ShouldEscalate {
			conv.EscalatedAt = &now
		}
		if err := s.conversations.CreateConversation(ctx, conv); err != nil {
			return nil, fmt.Errorf("create conversation: %w", err)
		}
		return conv, nil
	}

	existing.Sentiment = resp.Sentiment.Sentiment
	existing.CrisisLevel = resp.Sentiment.CrisisLevel
	if resp.ShouldEscalate {
		existing.IsEscalated = true
		if existing.EscalatedAt == nil {
			existing.EscalatedAt = &now
		}
	}
	if resp.EscalationReason != "" {
		existing.EscalationReason = resp.EscalationReason
	}
	existing.KeyInsights = append(existing.KeyInsights, resp.Sentiment.Emotions...)
	existing.LastMessage = preview
	if err := s.conversations.UpdateConversation(ctx, existing); err != nil {
		return nil, fmt.Errorf("update conversation: %w", err)
	}
	return existing, nil
}

// escalate records and broadcasts a crisis. Failures are logged only; the
// user still gets their reply.
func (s *ChatServiceImpl) escalate(ctx context.Context, u *user.User, conv *conversation.Conversation, message string, resp assistant.Response) {
	log.Printf("[chat] CRISIS ALERT: user %s needs immediate attention. Reason: %s", u.ID, resp.EscalationReason)

	userID := u.ID
	if err := s.systemLogs.Log(ctx, system_log.LevelCritical, "Crisis escalation for user "+u.ID, &userID, map[string]interface{}{
		"user_id":         u.ID,
		"conversation_id": conv.ID,
		"crisis_level":    resp.Sentiment.CrisisLevel,
		"reason":          resp.EscalationReason,
		"user_message":    message,
	}); err != nil {
		log.Printf("[chat] failed to write crisis system log: %v", err)
	}

	therapistIDs, err := s.therapists.TherapistIDsForClient(ctx, u.ID)
	if err != nil {
		log.Printf("[chat] failed to load assigned therapists for %s: %v", u.ID, err)
	}
	if s.notifier == nil {
		return
	}
	alert := notify.Alert{
		UserID:         u.ID,
		UserName:       u.DisplayName(),
		ConversationID: conv.ID,
		Level:          resp.Sentiment.CrisisLevel,
		Reason:         resp.EscalationReason,
		TherapistIDs:   therapistIDs,
		CreatedAt:      s.now(),
	}
	if err := s.notifier.NotifyCrisis(ctx, alert); err != nil {
		log.Printf("[chat] crisis notification failed: %v", err)
	}
}

func (s *ChatServiceImpl) Conversations(ctx context.Context, userID string) ([]ConversationView, error) {
	convs, err := s.conversations.ListRecent(ctx, userID, recentChats)
	if err != nil {
		return nil, err
	}
	views := make([]ConversationView, 0, len(convs))
	for _, c := range convs {
		latest, err := s.conversations.LastMessage(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		if latest != nil {
			if err := s.open(latest); err != nil {
				return nil, err
			}
		}
		views = append(views, ConversationView{Conversation: c, Latest: latest})
	}
	return views, nil
}

// Messages returns a conversation's messages to its owner or to a therapist
// assigned to the owner.
func (s *ChatServiceImpl) Messages(ctx context.Context, viewerID, conversationID string) ([]*conversation.Message, error) {
	conv, err := s.conversations.GetConversationByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, ErrNotFound
	}
	if conv.UserID != viewerID {
		assigned, err := s.therapists.IsAssigned(ctx, conv.UserID, viewerID)
		if err != nil {
			return nil, err
		}
		if !assigned {
			return nil, ErrForbidden
		}
	}

	messages, err := s.conversations.ListMessages(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	for _, m := range messages {
		if err := s.open(m); err != nil {
			return nil, err
		}
	}
	return messages, nil
}

func (s *ChatServiceImpl) open(m *conversation.Message) error {
	plain, err := s.sealer.Open(m.Content, m.IsEncrypted)
	if err != nil {
		return fmt.Errorf("open message %s: %w", m.ID, err)
	}
	m.Content = plain
	m.IsEncrypted = false
	return nil
}

// Truncate cuts s to n runes and marks the cut with "...".
func Truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
