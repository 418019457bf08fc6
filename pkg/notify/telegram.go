package notify

import (
	"fmt"
	"slices"
	"time"

	"github.com/raykavin/backengine/pkg/logger"
	tb "gopkg.in/tucnak/telebot.v2"
)

// TelegramConfig is the subset of the teacher's settings.Telegram block
// this notifier still needs once order management is removed: a bot
// token and the chat IDs allowed to receive run-completion messages.
type TelegramConfig struct {
	Token string
	Users []int
}

// Telegram posts run-completion messages to a fixed set of chat IDs.
// It implements Notifier; it no longer exposes buy/sell/status
// commands, since those belonged to the live order controller this
// repo does not have.
type Telegram struct {
	cfg    TelegramConfig
	client *tb.Bot
	log    logger.Logger
}

// NewTelegram creates and starts a long-polling Telegram bot restricted
// to cfg.Users.
func NewTelegram(cfg TelegramConfig, log logger.Logger) (*Telegram, error) {
	poller := &tb.LongPoller{Timeout: 10 * time.Second}
	authorized := tb.NewMiddlewarePoller(poller, func(u *tb.Update) bool {
		if u.Message == nil || u.Message.Sender == nil {
			return false
		}
		return slices.Contains(cfg.Users, int(u.Message.Sender.ID))
	})

	client, err := tb.NewBot(tb.Settings{
		ParseMode: tb.ModeMarkdown,
		Token:     cfg.Token,
		Poller:    authorized,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	t := &Telegram{cfg: cfg, client: client, log: log}
	client.Handle("/help", t.helpHandle)
	go client.Start()
	return t, nil
}

func (t *Telegram) helpHandle(m *tb.Message) {
	t.client.Send(m.Sender, "This bot only posts run-completion notifications; it does not accept trading commands.")
}

// Notify sends message to every configured user, logging (not
// returning) delivery failures since a notification is best-effort.
func (t *Telegram) Notify(message string) {
	for _, user := range t.cfg.Users {
		if _, err := t.client.Send(&tb.User{ID: int64(user)}, message); err != nil {
			t.log.WithError(err).Error("failed to send telegram notification")
		}
	}
}
