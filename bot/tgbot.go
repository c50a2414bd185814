// Package bot hosts the channel adapters that feed the conversation
// engine.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	tgbotapi "github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/PaulSonOfLars/gotgbot/v2/ext"
	"github.com/PaulSonOfLars/gotgbot/v2/ext/handlers"
	"github.com/PaulSonOfLars/gotgbot/v2/ext/handlers/filters/callbackquery"
	"github.com/PaulSonOfLars/gotgbot/v2/ext/handlers/filters/message"

	"AutoLead/bot/chat"
	"AutoLead/entity"
	"AutoLead/internal/lib/sl"
)

// ShopResolver maps an inbound Telegram update to its tenant.
type ShopResolver interface {
	GetShopByBotName(ctx context.Context, botName string) (*entity.Shop, error)
}

// TgBot runs the Telegram side of the funnel: long polling in, engine
// replies with inline keyboards out. It is also the delivery path for
// owner notifications and operator messages.
type TgBot struct {
	log         *slog.Logger
	api         *tgbotapi.Bot
	botUsername string
	engine      *chat.Engine
	shops       ShopResolver
}

func NewTgBot(botName, apiKey string, engine *chat.Engine, shops ShopResolver, log *slog.Logger) (*TgBot, error) {
	tgBot := &TgBot{
		log:         log.With(sl.Module("tgbot")),
		botUsername: botName,
		engine:      engine,
		shops:       shops,
	}

	api, err := tgbotapi.NewBot(apiKey, nil)
	if err != nil {
		return nil, fmt.Errorf("creating api instance: %v", err)
	}
	tgBot.api = api

	return tgBot, nil
}

// Start begins long polling and blocks until the updater stops.
func (t *TgBot) Start() error {
	dispatcher := ext.NewDispatcher(&ext.DispatcherOpts{
		Error: func(b *tgbotapi.Bot, ctx *ext.Context, err error) ext.DispatcherAction {
			t.log.Error("handling update", sl.Err(err))
			return ext.DispatcherActionNoop
		},
		MaxRoutines: ext.DefaultMaxRoutines,
	})

	dispatcher.AddHandler(handlers.NewMessage(message.Text, t.onText))
	dispatcher.AddHandler(handlers.NewMessage(message.Contact, t.onContact))
	dispatcher.AddHandler(handlers.NewCallback(callbackquery.All, t.onCallback))

	updater := ext.NewUpdater(dispatcher, nil)

	err := updater.StartPolling(t.api, &ext.PollingOpts{
		DropPendingUpdates: true,
		GetUpdatesOpts: &tgbotapi.GetUpdatesOpts{
			Timeout: 9,
			RequestOpts: &tgbotapi.RequestOpts{
				Timeout: time.Second * 10,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to start polling: %w", err)
	}

	t.log.Info("telegram polling started", slog.String("bot", t.botUsername))
	updater.Idle()
	return nil
}

func (t *TgBot) resolveShop(ctx context.Context) (*entity.Shop, error) {
	shop, err := t.shops.GetShopByBotName(ctx, t.botUsername)
	if err != nil {
		return nil, err
	}
	if shop == nil {
		return nil, fmt.Errorf("no active shop bound to bot %s", t.botUsername)
	}
	return shop, nil
}

func (t *TgBot) onText(b *tgbotapi.Bot, ectx *ext.Context) error {
	msg := ectx.EffectiveMessage
	if msg == nil || msg.Text == "" {
		return nil
	}
	ctx := context.Background()

	shop, err := t.resolveShop(ctx)
	if err != nil {
		t.log.Error("shop resolve failed", sl.Err(err))
		return nil
	}

	username := ""
	if u := ectx.EffectiveUser; u != nil && u.Username != "" {
		username = "@" + u.Username
	}

	reply := t.engine.HandleText(ctx, shop, chat.Incoming{
		UserID:   strconv.FormatInt(ectx.EffectiveChat.Id, 10),
		Username: username,
		Text:     msg.Text,
		Channel:  entity.ChannelTelegram,
	})

	t.deliver(ectx.EffectiveChat.Id, reply)
	return nil
}

// onContact turns a shared contact card into a plain phone-number turn,
// so the contact_info step consumes it like typed text.
func (t *TgBot) onContact(b *tgbotapi.Bot, ectx *ext.Context) error {
	msg := ectx.EffectiveMessage
	if msg == nil || msg.Contact == nil || msg.Contact.PhoneNumber == "" {
		return nil
	}
	ctx := context.Background()

	shop, err := t.resolveShop(ctx)
	if err != nil {
		t.log.Error("shop resolve failed", sl.Err(err))
		return nil
	}

	username := ""
	if u := ectx.EffectiveUser; u != nil && u.Username != "" {
		username = "@" + u.Username
	}

	reply := t.engine.HandleText(ctx, shop, chat.Incoming{
		UserID:   strconv.FormatInt(ectx.EffectiveChat.Id, 10),
		Username: username,
		Text:     msg.Contact.PhoneNumber,
		Channel:  entity.ChannelTelegram,
	})

	t.deliver(ectx.EffectiveChat.Id, reply)
	return nil
}

func (t *TgBot) onCallback(b *tgbotapi.Bot, ectx *ext.Context) error {
	cb := ectx.CallbackQuery
	if cb == nil || cb.Data == "" {
		return nil
	}
	ctx := context.Background()

	// Stop the button spinner regardless of the outcome.
	if _, err := cb.Answer(b, nil); err != nil {
		t.log.Debug("callback answer failed", sl.Err(err))
	}

	shop, err := t.resolveShop(ctx)
	if err != nil {
		t.log.Error("shop resolve failed", sl.Err(err))
		return nil
	}

	chatID := cb.From.Id
	if c := ectx.EffectiveChat; c != nil {
		chatID = c.Id
	}

	reply := t.engine.HandleChoice(ctx, shop, strconv.FormatInt(chatID, 10), cb.Data)
	t.deliver(chatID, reply)
	return nil
}

// deliver sends an engine reply, rendering menu options as an inline
// keyboard.
func (t *TgBot) deliver(chatID int64, reply chat.Reply) {
	if !reply.ShouldSend || reply.Text == "" {
		return
	}

	opts := &tgbotapi.SendMessageOpts{}
	if len(reply.Menu) > 0 {
		keyboard := make([][]tgbotapi.InlineKeyboardButton, 0, len(reply.Menu))
		for _, row := range reply.Menu {
			buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
			for _, opt := range row {
				buttons = append(buttons, tgbotapi.InlineKeyboardButton{
					Text:         opt.Label,
					CallbackData: opt.Data,
				})
			}
			keyboard = append(keyboard, buttons)
		}
		opts.ReplyMarkup = tgbotapi.InlineKeyboardMarkup{InlineKeyboard: keyboard}
	}

	if _, err := t.api.SendMessage(chatID, reply.Text, opts); err != nil {
		t.log.With(slog.Int64("id", chatID)).Error("sending message", sl.Err(err))
	}
}

// SendText delivers plain text to a chat. Used for owner notifications
// and operator messages.
func (t *TgBot) SendText(chatID int64, text string) error {
	if text == "" {
		return nil
	}
	_, err := t.api.SendMessage(chatID, text, nil)
	if err != nil {
		return fmt.Errorf("sending message: %w", err)
	}
	return nil
}
