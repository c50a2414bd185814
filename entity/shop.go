package entity

import "time"

// Shop is a tenant: an auto-repair shop using the platform.
// Bot behaviour settings are read-only for the conversation engine.
type Shop struct {
	ID   string `json:"id" bson:"_id"`
	Name string `json:"name" bson:"name"`

	// Channel bindings
	TelegramBotName string `json:"telegram_bot_name" bson:"telegram_bot_name"`
	OwnerChatID     int64  `json:"owner_chat_id" bson:"owner_chat_id"`
	WhatsAppPhoneID string `json:"whatsapp_phone_id" bson:"whatsapp_phone_id"`

	// Bot personality & customization
	BotPersonality string `json:"bot_personality" bson:"bot_personality"`
	GreetingText   string `json:"greeting_text" bson:"greeting_text"`
	PromoText      string `json:"promo_text" bson:"promo_text"`
	CustomFAQ      string `json:"custom_faq" bson:"custom_faq"`
	Address        string `json:"address" bson:"address"`
	DisplayName    string `json:"display_name" bson:"display_name"`

	// Funnel flags
	CollectPhone     bool `json:"collect_phone" bson:"collect_phone"`
	CollectName      bool `json:"collect_name" bson:"collect_name"`
	OfferAppointment bool `json:"offer_appointment" bson:"offer_appointment"`

	IsActive  bool      `json:"is_active" bson:"is_active"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
