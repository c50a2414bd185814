package entity

import "time"

// Conversation statuses. Transitions are monotonic except
// human_active <-> active (operator takeover and release).
const (
	ConvStatusActive      = "active"
	ConvStatusAbandoned   = "abandoned"
	ConvStatusHandoff     = "handoff"
	ConvStatusHumanActive = "human_active"
	ConvStatusCompleted   = "completed"
)

// Conversation modes.
const (
	ModeBot   = "bot"
	ModeHuman = "human"
)

// Channels.
const (
	ChannelTelegram = "telegram"
	ChannelWhatsApp = "whatsapp"
)

// Conversation is one dialog instance. Collected fields are denormalized
// here so the admin panel can query them after the session TTL expires.
type Conversation struct {
	ID             string `json:"id" bson:"_id"`
	ShopID         string `json:"shop_id" bson:"shop_id"`
	Channel        string `json:"channel" bson:"channel"`
	ExternalUserID string `json:"external_user_id" bson:"external_user_id"`

	Status      string `json:"status" bson:"status"`
	CurrentStep string `json:"current_step" bson:"current_step"`
	Mode        string `json:"mode" bson:"mode"`

	DeviceCategory     string `json:"device_category,omitempty" bson:"device_category,omitempty"`
	DeviceBrand        string `json:"device_brand,omitempty" bson:"device_brand,omitempty"`
	DeviceModel        string `json:"device_model,omitempty" bson:"device_model,omitempty"`
	ProblemDescription string `json:"problem_description,omitempty" bson:"problem_description,omitempty"`
	ProblemCategory    string `json:"problem_category,omitempty" bson:"problem_category,omitempty"`
	Urgency            string `json:"urgency,omitempty" bson:"urgency,omitempty"`
	CustomerName       string `json:"customer_name,omitempty" bson:"customer_name,omitempty"`
	CustomerPhone      string `json:"customer_phone,omitempty" bson:"customer_phone,omitempty"`
	PreferredTime      string `json:"preferred_time,omitempty" bson:"preferred_time,omitempty"`

	EstimatedPriceMin float64 `json:"estimated_price_min,omitempty" bson:"estimated_price_min,omitempty"`
	EstimatedPriceMax float64 `json:"estimated_price_max,omitempty" bson:"estimated_price_max,omitempty"`
	PriceConfidence   string  `json:"price_confidence,omitempty" bson:"price_confidence,omitempty"`

	MessagesCount int        `json:"messages_count" bson:"messages_count"`
	StartedAt     time.Time  `json:"started_at" bson:"started_at"`
	LastMessageAt time.Time  `json:"last_message_at" bson:"last_message_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty" bson:"completed_at,omitempty"`
}
