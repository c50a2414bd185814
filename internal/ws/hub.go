// Package ws streams live dialog activity to connected admin panels.
package ws

import (
	"encoding/json"
	"log/slog"
	"sync"

	"AutoLead/entity"
)

// Event is one WebSocket frame pushed to panel clients.
type Event struct {
	Type string      `json:"type"` // "new_message", "typing", "conversation_updated"
	Data interface{} `json:"data"`
}

// Hub maintains the set of active panel connections and fans events
// out to them. It also implements the engine's transcript listener, so
// every saved message reaches open panels immediately.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan *Event
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
	log        *slog.Logger
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan *Event, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		log:        log,
	}
}

// Run starts the hub's event loop. Should be called in a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()

		case event := <-h.broadcast:
			data, err := json.Marshal(event)
			if err != nil {
				continue
			}
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.send <- data:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// MessageSaved satisfies the chat transcript listener: every transcript
// append is mirrored to the panels.
func (h *Hub) MessageSaved(msg entity.Message) {
	h.broadcast <- &Event{
		Type: "new_message",
		Data: msg,
	}
}

// BroadcastTyping tells panels the customer is typing.
func (h *Hub) BroadcastTyping(conversationID string) {
	h.broadcast <- &Event{
		Type: "typing",
		Data: map[string]string{"conversation_id": conversationID},
	}
}

// BroadcastConversationUpdated tells panels to refresh a dialog's
// header (status, mode, collected fields).
func (h *Hub) BroadcastConversationUpdated(conv *entity.Conversation) {
	h.broadcast <- &Event{
		Type: "conversation_updated",
		Data: conv,
	}
}
