// Package telegram pushes report events to the Telegram chats of the
// responsible entities and answers the bot commands entities use to
// register their chat.
package telegram

import (
	"context"
	"errors"
	"sync"
	"time"

	"reportes/backend/internal/localization"
	"reportes/backend/internal/models"
	"reportes/backend/internal/storage"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// NotifierID is the hub client id of the Telegram notifier.
const NotifierID = "telegram-notifier"

const lookupTimeout = 5 * time.Second

// Sender is the subset of *tgbotapi.BotAPI the notifier needs.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// EntityLookup finds the entity that owns a chat.
type EntityLookup interface {
	GetEntityByName(ctx context.Context, name string) (*models.Entity, error)
}

// Notifier implements reporthub.Client. It follows every entity and sends
// each event to the chats registered on the affected entities.
type Notifier struct {
	Bot       Sender
	Entities  EntityLookup
	Localizer *localization.Localizer
	Lang      string
	Logger    *zap.Logger
	Send      chan models.ReportEvent

	closeOnce sync.Once
	done      chan struct{}
}

// NewNotifier creates a notifier writing in lang.
func NewNotifier(bot Sender, entities EntityLookup, l *localization.Localizer, lang string, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{
		Bot:       bot,
		Entities:  entities,
		Localizer: l,
		Lang:      lang,
		Logger:    logger,
		Send:      make(chan models.ReportEvent, 64),
		done:      make(chan struct{}),
	}
}

func (n *Notifier) GetClientID() string                       { return NotifierID }
func (n *Notifier) GetEntityFilter() string                   { return "" }
func (n *Notifier) SetEntityFilter(string)                    {}
func (n *Notifier) GetSendChannel() chan<- models.ReportEvent { return n.Send }

// Durable keeps the hub from dropping the notifier when Telegram is slow.
func (n *Notifier) Durable() bool { return true }

// Run starts the queue and the write pump.
func (n *Notifier) Run() {
	pending := make(chan models.ReportEvent)
	go n.queuePump(pending)
	go n.writePump(pending)
}

// Close stops the pumps once queued events are flushed.
func (n *Notifier) Close() {
	n.closeOnce.Do(func() { close(n.Send) })
}

// Done is closed when the write pump has exited.
func (n *Notifier) Done() <-chan struct{} {
	return n.done
}

// queuePump moves events from Send into an unbounded queue so the hub never
// waits on Deliver.
func (n *Notifier) queuePump(out chan<- models.ReportEvent) {
	defer close(out)

	var queue []models.ReportEvent
	in := n.Send
	for in != nil || len(queue) > 0 {
		var next chan<- models.ReportEvent
		var head models.ReportEvent
		if len(queue) > 0 {
			next = out
			head = queue[0]
		}

		select {
		case evt, ok := <-in:
			if !ok {
				in = nil
				continue
			}
			queue = append(queue, evt)
		case next <- head:
			queue[0] = models.ReportEvent{}
			queue = queue[1:]
		}
	}
}

func (n *Notifier) writePump(pending <-chan models.ReportEvent) {
	defer close(n.done)
	defer n.Logger.Info("Telegram notifier stopped")

	for evt := range pending {
		n.Deliver(context.Background(), evt)
	}
}

// Deliver sends evt to every chat it concerns and returns the number of
// messages sent.
func (n *Notifier) Deliver(ctx context.Context, evt models.ReportEvent) int {
	text, ok := FormatEvent(n.Localizer, n.Lang, evt)
	if !ok {
		return 0
	}

	sent := 0
	for _, name := range recipients(evt) {
		chatID, ok := n.chatFor(ctx, name)
		if !ok {
			continue
		}
		msg := tgbotapi.NewMessage(chatID, text)
		msg.ParseMode = tgbotapi.ModeMarkdown
		if _, err := n.Bot.Send(msg); err != nil {
			n.Logger.Error("Failed to send Telegram message",
				zap.String("entity", name),
				zap.String("report_id", evt.ReportID),
				zap.Error(err))
			continue
		}
		sent++
	}
	return sent
}

func (n *Notifier) chatFor(ctx context.Context, name string) (int64, bool) {
	ctx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()

	entity, err := n.Entities.GetEntityByName(ctx, name)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			n.Logger.Warn("Entity lookup failed", zap.String("entity", name), zap.Error(err))
		}
		return 0, false
	}
	if entity.TelegramChatID == nil || *entity.TelegramChatID == 0 {
		return 0, false
	}
	return *entity.TelegramChatID, true
}
