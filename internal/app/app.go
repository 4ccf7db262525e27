// Package app wires configuration, storage and services together.
package app

import (
	"context"
	"fmt"
	"log"

	"github.com/MyelinBots/heavenly-go/config"
	"github.com/MyelinBots/heavenly-go/internal/api"
	"github.com/MyelinBots/heavenly-go/internal/bot"
	"github.com/MyelinBots/heavenly-go/internal/db"
	"github.com/MyelinBots/heavenly-go/internal/db/repositories"
	"github.com/MyelinBots/heavenly-go/internal/realtime"
	"github.com/MyelinBots/heavenly-go/internal/services/assistant"
	"github.com/MyelinBots/heavenly-go/internal/services/auth"
	"github.com/MyelinBots/heavenly-go/internal/services/chat"
	"github.com/MyelinBots/heavenly-go/internal/services/couples"
	"github.com/MyelinBots/heavenly-go/internal/services/dashboard"
	"github.com/MyelinBots/heavenly-go/internal/services/library"
	"github.com/MyelinBots/heavenly-go/internal/services/notify"
	"github.com/MyelinBots/heavenly-go/internal/services/payments"
	"github.com/MyelinBots/heavenly-go/internal/services/scheduling"
	"github.com/MyelinBots/heavenly-go/internal/services/sealer"
	"github.com/MyelinBots/heavenly-go/internal/services/sweeper"
)

type App struct {
	Config    config.Config
	DB        *db.DB
	Repos     *repositories.Repositories
	Assistant assistant.Assistant
	Hub       *realtime.Hub
	Bot       *bot.AlertBot
	Notifier  *notify.Fanout
	Sweeper   *sweeper.Sweeper
	Services  api.Services
}

// NewAssistant returns an offline assistant when no API key is configured.
func NewAssistant(cfg config.AIConfig) assistant.Assistant {
	var completer assistant.Completer
	if c := assistant.NewOpenAICompleter(cfg); c != nil {
		completer = c
	} else {
		log.Printf("[app] no AI key configured, assistant runs on fallbacks")
	}
	return assistant.NewAssistant(completer, cfg.Model)
}

// Open connects to the configured database. SQLite is auto migrated;
// postgres expects `migrate up` to have run.
func Open(cfg config.Config) (*db.DB, error) {
	database, err := db.NewDatabase(cfg.DBConfig)
	if err != nil {
		return nil, err
	}
	if database.Driver == "sqlite" {
		if err := database.AutoMigrate(repositories.Models()...); err != nil {
			database.Close()
			return nil, err
		}
	}
	return database, nil
}

func New(cfg config.Config, database *db.DB) (*App, error) {
	return NewWithAssistant(cfg, database, NewAssistant(cfg.AIConfig))
}

func NewWithAssistant(cfg config.Config, database *db.DB, ai assistant.Assistant) (*App, error) {
	s, err := sealer.New(cfg.SecurityConfig.MessageKey)
	if err != nil {
		return nil, fmt.Errorf("message key: %w", err)
	}

	a := &App{
		Config:    cfg,
		DB:        database,
		Repos:     repositories.New(database),
		Assistant: ai,
		Hub:       realtime.NewHub(),
	}
	a.Notifier = notify.NewFanout(notify.LogNotifier{}, a.Hub)
	if cfg.IRCConfig.Enabled() {
		a.Bot = bot.NewAlertBot(cfg.IRCConfig)
		a.Notifier.Add(a.Bot)
	}
	a.Sweeper = sweeper.NewSweeper(a.Repos.Sessions, a.Repos.AuthSessions)

	r := a.Repos
	couplesService := couples.NewCouplesService(r.Couples, r.Users)
	paymentsService := payments.NewPaymentsService(r.Payments, r.Sessions, r.Couples)
	a.Services = api.Services{
		Auth:       auth.NewAuthService(r.Users, r.Therapists, r.AuthSessions, cfg.SecurityConfig.SessionTTL),
		Scheduling: scheduling.NewSchedulingService(r.Sessions, r.Users, r.Couples, r.Therapists, ai, cfg.AppConfig.MeetingBaseURL),
		Couples:    couplesService,
		Payments:   paymentsService,
		Library:    library.NewLibraryService(r.Content, r.Conversations, ai),
		Chat:       chat.NewChatService(r.Users, r.Sessions, r.Conversations, r.Therapists, r.SystemLogs, ai, s, a.Notifier),
		Dashboard:  dashboard.NewDashboardService(r.Sessions, r.Conversations, r.Therapists, r.Users, r.Content, paymentsService, couplesService),
		Hub:        a.Hub,
		DB:         database,
	}
	return a, nil
}

// Start launches the background workers; they stop when ctx is cancelled.
func (a *App) Start(ctx context.Context) {
	go a.Hub.Run(ctx)
	a.Sweeper.Start(a.Config.AppConfig.SweepInterval)
	if a.Bot != nil {
		go func() {
			if err := a.Bot.Run(ctx); err != nil {
				log.Printf("[app] irc alert bot stopped: %v", err)
			}
		}()
	}
}

func (a *App) Stop() {
	a.Sweeper.Stop()
}
