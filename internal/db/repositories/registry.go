package repositories

import (
	"github.com/MyelinBots/heavenly-go/internal/db"
	"github.com/MyelinBots/heavenly-go/internal/db/repositories/auth_session"
	"github.com/MyelinBots/heavenly-go/internal/db/repositories/content"
	"github.com/MyelinBots/heavenly-go/internal/db/repositories/conversation"
	"github.com/MyelinBots/heavenly-go/internal/db/repositories/couple"
	"github.com/MyelinBots/heavenly-go/internal/db/repositories/payment"
	"github.com/MyelinBots/heavenly-go/internal/db/repositories/system_log"
	"github.com/MyelinBots/heavenly-go/internal/db/repositories/therapist"
	"github.com/MyelinBots/heavenly-go/internal/db/repositories/therapy_session"
	"github.com/MyelinBots/heavenly-go/internal/db/repositories/user"
)

// Models lists every entity, for sqlite AutoMigrate.
func Models() []interface{} {
	return []interface{}{
		&user.User{},
		&therapist.Profile{},
		&therapist.Assignment{},
		&couple.Couple{},
		&therapy_session.Session{},
		&conversation.Conversation{},
		&conversation.Message{},
		&payment.Payment{},
		&content.Category{},
		&content.Content{},
		&content.Progress{},
		&content.Favorite{},
		&system_log.Log{},
		&auth_session.AuthSession{},
	}
}

// Repositories bundles one instance of every repository.
type Repositories struct {
	Users         user.UserRepository
	Therapists    therapist.TherapistRepository
	Couples       couple.CoupleRepository
	Sessions      therapy_session.SessionRepository
	Conversations conversation.ConversationRepository
	Payments      payment.PaymentRepository
	Content       content.ContentRepository
	SystemLogs    system_log.SystemLogRepository
	AuthSessions  auth_session.AuthSessionRepository
}

func New(database *db.DB) *Repositories {
	return &Repositories{
		Users:         user.NewUserRepository(database),
		Therapists:    therapist.NewTherapistRepository(database),
		Couples:       couple.NewCoupleRepository(database),
		Sessions:      therapy_session.NewSessionRepository(database),
		Conversations: conversation.NewConversationRepository(database),
		Payments:      payment.NewPaymentRepository(database),
		Content:       content.NewContentRepository(database),
		SystemLogs:    system_log.NewSystemLogRepository(database),
		AuthSessions:  auth_session.NewAuthSessionRepository(database),
	}
}
