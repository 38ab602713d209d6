package notify

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/appointment_desk/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// sender часть API бота, которой пользуется уведомитель
type sender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// Telegram отправляет события записи в чат Telegram
type Telegram struct {
	bot    sender
	chatID int64
	logger *zap.Logger
}

// NewTelegram подключается к Bot API и возвращает уведомитель
func NewTelegram(token string, chatID int64, logger *zap.Logger) (*Telegram, error) {
	b, err := bot.New(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	return &Telegram{bot: b, chatID: chatID, logger: logger}, nil
}

func (t *Telegram) AppointmentBooked(ctx context.Context, a *model.Appointment) error {
	return t.send(ctx, formatBooked(a))
}

func (t *Telegram) AppointmentStatusChanged(ctx context.Context, a *model.Appointment) error {
	return t.send(ctx, formatStatusChanged(a))
}

func (t *Telegram) UserApproved(ctx context.Context, u *model.User) error {
	return t.send(ctx, formatUserApproved(u))
}

func (t *Telegram) send(ctx context.Context, text string) error {
	_, err := t.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    t.chatID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}

	t.logger.Debug("Notification sent", zap.Int64("chat_id", t.chatID))
	return nil
}
