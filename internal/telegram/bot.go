package telegram

import (
	"context"

	"reportes/backend/internal/localization"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// BotService answers the commands entity staff use to find their chat id.
type BotService struct {
	BotAPI    *tgbotapi.BotAPI
	Localizer *localization.Localizer
	Lang      string
	Logger    *zap.Logger
}

// NewBotService authorizes against the Bot API with token.
func NewBotService(token string, l *localization.Localizer, lang string, logger *zap.Logger) (*BotService, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	bot.Debug = false
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("Authorized on Telegram", zap.String("account", bot.Self.UserName))

	return &BotService{BotAPI: bot, Localizer: l, Lang: lang, Logger: logger}, nil
}

// Run polls for updates until ctx is cancelled.
func (s *BotService) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := s.BotAPI.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			s.BotAPI.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}
			reply, ok := s.replyFor(update.Message.Chat.ID, update.Message.Command())
			if !ok {
				continue
			}
			if _, err := s.BotAPI.Send(reply); err != nil {
				s.Logger.Error("Failed to answer command", zap.Error(err))
			}
		}
	}
}

func (s *BotService) replyFor(chatID int64, command string) (tgbotapi.MessageConfig, bool) {
	switch command {
	case "start", "chatid":
		return tgbotapi.NewMessage(chatID, s.Localizer.Format(s.Lang, "bot_welcome", chatID)), true
	}
	return tgbotapi.MessageConfig{}, false
}
