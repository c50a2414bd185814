// Package chatops exposes the operator panel endpoints: dialog lists,
// transcripts, takeover and release, and sending as the master.
package chatops

import (
	"context"

	"AutoLead/entity"
)

// Core is the conversation engine's operator side door.
type Core interface {
	Takeover(ctx context.Context, conversationID string) (string, error)
	Release(ctx context.Context, conversationID string) (string, error)
	OperatorMessage(ctx context.Context, conversationID, text string) error
}

// Repo reads dialog data for the panel.
type Repo interface {
	GetConversation(ctx context.Context, conversationID string) (*entity.Conversation, error)
	ListConversations(ctx context.Context, shopID, status string, limit int64) ([]entity.Conversation, error)
	ListMessages(ctx context.Context, conversationID string) ([]entity.Message, error)
	ListLeads(ctx context.Context, shopID, status string, limit int64) ([]entity.Lead, error)
	ListAppointments(ctx context.Context, shopID string, limit int64) ([]entity.Appointment, error)
}

// Courier delivers operator text to the customer over the dialog's
// original channel.
type Courier interface {
	Deliver(ctx context.Context, conv *entity.Conversation, text string) error
}
