package notifier

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Telegram delivers push pings to users who linked a Telegram chat. Delivery
// is best effort; callers log and move on when it fails.
type Telegram struct {
	bot *tgbotapi.BotAPI
}

func NewTelegram(botToken string) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telegram bot: %w", err)
	}
	return &Telegram{bot: bot}, nil
}

func (t *Telegram) SendNotification(chatID int64, title, body string) error {
	text := title
	if body != "" {
		text = title + "\n" + body
	}
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram notification: %w", err)
	}
	return nil
}
