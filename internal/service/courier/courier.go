// Package courier routes operator-originated text back to the customer
// over the channel the dialog started on.
package courier

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"AutoLead/entity"
	"AutoLead/internal/lib/sl"
)

// TelegramSender delivers plain text to a Telegram chat.
type TelegramSender interface {
	SendText(chatID int64, text string) error
}

// WhatsAppSender delivers plain text to a WhatsApp number.
type WhatsAppSender interface {
	SendMessage(recipientPhone, text string) error
}

type Courier struct {
	tg  TelegramSender
	wa  WhatsAppSender
	log *slog.Logger
}

// New builds a courier. Either sender may be nil when the channel is
// not configured.
func New(tg TelegramSender, wa WhatsAppSender, logger *slog.Logger) *Courier {
	return &Courier{
		tg:  tg,
		wa:  wa,
		log: logger.With(sl.Module("courier")),
	}
}

// Deliver sends text to the dialog's customer.
func (c *Courier) Deliver(ctx context.Context, conv *entity.Conversation, text string) error {
	switch conv.Channel {
	case entity.ChannelTelegram:
		if c.tg == nil {
			return fmt.Errorf("telegram sender not configured")
		}
		chatID, err := strconv.ParseInt(conv.ExternalUserID, 10, 64)
		if err != nil {
			return fmt.Errorf("bad telegram chat id %q: %w", conv.ExternalUserID, err)
		}
		return c.tg.SendText(chatID, text)

	case entity.ChannelWhatsApp:
		if c.wa == nil {
			return fmt.Errorf("whatsapp sender not configured")
		}
		return c.wa.SendMessage(conv.ExternalUserID, text)

	default:
		c.log.Warn("unknown channel", slog.String("channel", conv.Channel))
		return fmt.Errorf("unknown channel %q", conv.Channel)
	}
}
