// Package notify sends lead cards and handoff alerts to shop owners
// over Telegram.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"AutoLead/bot/chat"
	"AutoLead/entity"
	"AutoLead/internal/lib/sl"
)

// TelegramSender delivers plain text to a Telegram chat.
type TelegramSender interface {
	SendText(chatID int64, text string) error
}

// LeadMarker records that a lead's notification went out.
type LeadMarker interface {
	MarkLeadNotified(ctx context.Context, leadID string) error
}

type Service struct {
	tg   TelegramSender
	repo LeadMarker
	log  *slog.Logger
}

func New(tg TelegramSender, repo LeadMarker, logger *slog.Logger) *Service {
	return &Service{
		tg:   tg,
		repo: repo,
		log:  logger.With(sl.Module("notify")),
	}
}

var urgencyLabels = map[string]string{
	"urgent":   "🔴 Срочно",
	"normal":   "🟡 Стандарт",
	"flexible": "🟢 Не срочно",
}

// LeadCreated sends the lead card to the shop owner and marks the lead
// notified so retries never double-send.
func (s *Service) LeadCreated(ctx context.Context, shop *entity.Shop, lead *entity.Lead, preferredTime string, messagesCount int) {
	if s.tg == nil || shop.OwnerChatID == 0 {
		return
	}

	text := formatLeadCard(lead, preferredTime, messagesCount)
	if err := s.tg.SendText(shop.OwnerChatID, text); err != nil {
		s.log.Error("lead notification failed",
			slog.String("lead_id", lead.ID),
			slog.Int64("owner_chat_id", shop.OwnerChatID),
			sl.Err(err),
		)
		return
	}

	if s.repo != nil {
		if err := s.repo.MarkLeadNotified(ctx, lead.ID); err != nil {
			s.log.Warn("mark lead notified failed", slog.String("lead_id", lead.ID), sl.Err(err))
		}
	}

	s.log.Info("lead notification sent",
		slog.String("lead_id", lead.ID),
		slog.Int64("owner_chat_id", shop.OwnerChatID),
	)
}

// HandoffRequested alerts the owner that a customer is waiting for a
// human.
func (s *Service) HandoffRequested(ctx context.Context, shop *entity.Shop, conversationID, userText string) {
	if s.tg == nil || shop.OwnerChatID == 0 {
		return
	}

	text := fmt.Sprintf(
		"🙋 Клиент просит мастера!\n\n💬 Сообщение: %s\n\nДиалог #%s — ответьте в панели в течение 30 минут.",
		userText, shortID(conversationID),
	)
	if err := s.tg.SendText(shop.OwnerChatID, text); err != nil {
		s.log.Error("handoff notification failed",
			slog.String("conversation_id", conversationID),
			sl.Err(err),
		)
		return
	}

	s.log.Info("handoff notification sent", slog.String("conversation_id", conversationID))
}

func formatLeadCard(lead *entity.Lead, preferredTime string, messagesCount int) string {
	priceRange := "Требуется диагностика"
	if lead.EstimatedPriceMin > 0 && lead.EstimatedPriceMax > 0 {
		priceRange = fmt.Sprintf("%s–%s ₽",
			chat.FormatPrice(lead.EstimatedPriceMin), chat.FormatPrice(lead.EstimatedPriceMax))
	}

	urgency, ok := urgencyLabels[lead.Urgency]
	if !ok {
		urgency = urgencyLabels["normal"]
	}

	return fmt.Sprintf(
		"🔔 Новая заявка!\n\n"+
			"👤 Клиент: %s\n"+
			"📞 Телефон: %s\n"+
			"💬 Контакт: %s\n\n"+
			"🚗 Автомобиль: %s\n"+
			"🔧 Проблема: %s\n"+
			"⚡ Срочность: %s\n\n"+
			"💰 Оценка: %s\n\n"+
			"🕐 Желаемое время: %s\n\n"+
			"Заявка #%s · Этапов диалога: %d",
		orDefault(lead.CustomerName, "Не указано"),
		orDefault(lead.CustomerPhone, "Не указан"),
		orDefault(lead.CustomerContact, "Не указан"),
		orDefault(lead.DeviceFullName, "Не указано"),
		orDefault(lead.ProblemSummary, "Не описана"),
		urgency,
		priceRange,
		orDefault(preferredTime, "Не указано"),
		shortID(lead.ID),
		messagesCount,
	)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
