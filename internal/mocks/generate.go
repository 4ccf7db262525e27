package mocks

//go:generate mockgen -destination=mock_completer.go -package=mocks github.com/MyelinBots/heavenly-go/internal/services/assistant Completer
//go:generate mockgen -destination=mock_assistant.go -package=mocks github.com/MyelinBots/heavenly-go/internal/services/assistant Assistant
//go:generate mockgen -destination=mock_notifier.go -package=mocks github.com/MyelinBots/heavenly-go/internal/services/notify Notifier
