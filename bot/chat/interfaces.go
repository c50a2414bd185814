package chat

import (
	"context"

	"AutoLead/ai/nlu"
	"AutoLead/entity"
)

// MenuOption is one inline button: a human label and the callback data
// it sends back. Channel adapters render it natively (inline keyboard
// on Telegram, numbered list on WhatsApp).
type MenuOption struct {
	Label string
	Data  string
}

// Reply is what the engine hands back to the channel adapter.
// ShouldSend is false when the dialog is in human mode and the bot
// must stay silent.
type Reply struct {
	Text       string
	Menu       [][]MenuOption
	ShouldSend bool
}

// Outcome is the result of one step handler invocation.
type Outcome struct {
	Text   string
	Menu   [][]MenuOption
	Next   Step // empty = stay on the current step
	Update Update
	Intent nlu.Intent
}

// StepHandler drives one funnel stage. Entry produces the prompt shown
// when the dialog arrives at the step; Process consumes free text.
type StepHandler interface {
	Entry(ctx context.Context, shop *entity.Shop, state *SessionState) Outcome
	Process(ctx context.Context, shop *entity.Shop, state *SessionState, text string) Outcome
}

// Extractor is the language-understanding dependency. It never fails:
// degraded results carry a fallback reply.
type Extractor interface {
	Process(ctx context.Context, req nlu.Request) nlu.Result
}

// SessionStore holds volatile dialog state under a TTL.
type SessionStore interface {
	Get(ctx context.Context, shopID, userID string) (*SessionState, error)
	Save(ctx context.Context, shopID, userID string, state *SessionState) error
	Delete(ctx context.Context, shopID, userID string) error
}

// Store is the durable side: conversations, transcripts, leads,
// appointments and the pricing rules.
type Store interface {
	CreateConversation(ctx context.Context, conv *entity.Conversation) error
	SyncConversation(ctx context.Context, conv *entity.Conversation) error
	SetConversationStatus(ctx context.Context, conversationID, status string) error
	SetConversationMode(ctx context.Context, conversationID, mode, status string) error
	ConversationMode(ctx context.Context, conversationID string) (string, error)
	TouchConversation(ctx context.Context, conversationID string) error

	SaveMessage(ctx context.Context, msg *entity.Message) error

	// CreateLead inserts at most one lead per conversation and returns
	// the id of the stored lead, existing or new.
	CreateLead(ctx context.Context, lead *entity.Lead) (string, error)
	PromoteLead(ctx context.Context, leadID, status, name, phone string) error
	CreateAppointment(ctx context.Context, appt *entity.Appointment) error

	ActivePriceRules(ctx context.Context, shopID string) ([]entity.PriceRule, error)
}

// Notifier receives funnel events that go out of band to the shop
// owner. Implementations must not block the dialog turn.
type Notifier interface {
	LeadCreated(ctx context.Context, shop *entity.Shop, lead *entity.Lead, preferredTime string, messagesCount int)
	HandoffRequested(ctx context.Context, shop *entity.Shop, conversationID, userText string)
}
