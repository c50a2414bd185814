// Package whatsapp adapts the WhatsApp Cloud API (Graph) to the
// conversation engine. Menus are rendered as numbered lists and number
// replies are mapped back to the option they name.
package whatsapp

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"AutoLead/bot/chat"
	"AutoLead/entity"
	"AutoLead/internal/lib/sl"
)

const graphAPIURL = "https://graph.facebook.com/v21.0"

// ShopResolver maps an inbound webhook to its tenant by the business
// phone number id.
type ShopResolver interface {
	GetShopByWhatsAppPhone(ctx context.Context, phoneNumberID string) (*entity.Shop, error)
}

// WhatsAppBot handles WhatsApp messaging via the Graph API.
type WhatsAppBot struct {
	log           *slog.Logger
	accessToken   string
	verifyToken   string
	appSecret     string
	phoneNumberID string
	engine        *chat.Engine
	shops         ShopResolver

	// Last menu shown per user so a bare "2" can be mapped back to the
	// option it refers to.
	mu        sync.Mutex
	lastMenus map[string][][]chat.MenuOption
}

// WebhookPayload represents the incoming webhook payload from WhatsApp.
type WebhookPayload struct {
	Object string `json:"object"`
	Entry  []struct {
		ID      string `json:"id"`
		Changes []struct {
			Value struct {
				MessagingProduct string `json:"messaging_product"`
				Metadata         struct {
					DisplayPhoneNumber string `json:"display_phone_number"`
					PhoneNumberID      string `json:"phone_number_id"`
				} `json:"metadata"`
				Contacts []struct {
					Profile struct {
						Name string `json:"name"`
					} `json:"profile"`
					WaID string `json:"wa_id"`
				} `json:"contacts"`
				Messages []struct {
					From      string `json:"from"`
					ID        string `json:"id"`
					Timestamp string `json:"timestamp"`
					Type      string `json:"type"`
					Text      *struct {
						Body string `json:"body"`
					} `json:"text,omitempty"`
				} `json:"messages"`
			} `json:"value"`
			Field string `json:"field"`
		} `json:"changes"`
	} `json:"entry"`
}

// SendMessageRequest represents the request body for sending a text message.
type SendMessageRequest struct {
	MessagingProduct string `json:"messaging_product"`
	RecipientType    string `json:"recipient_type"`
	To               string `json:"to"`
	Type             string `json:"type"`
	Text             struct {
		PreviewURL bool   `json:"preview_url"`
		Body       string `json:"body"`
	} `json:"text"`
}

func NewWhatsAppBot(accessToken, verifyToken, appSecret, phoneNumberID string, engine *chat.Engine, shops ShopResolver, log *slog.Logger) *WhatsAppBot {
	return &WhatsAppBot{
		log:           log.With(sl.Module("whatsappbot")),
		accessToken:   accessToken,
		verifyToken:   verifyToken,
		appSecret:     appSecret,
		phoneNumberID: phoneNumberID,
		engine:        engine,
		shops:         shops,
		lastMenus:     make(map[string][][]chat.MenuOption),
	}
}

// HandleWebhookVerification handles the GET request for webhook verification.
func (b *WhatsAppBot) HandleWebhookVerification(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("hub.mode")
	token := r.URL.Query().Get("hub.verify_token")
	challenge := r.URL.Query().Get("hub.challenge")

	if mode == "subscribe" && token == b.verifyToken {
		b.log.Info("webhook verified")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(challenge))
		return
	}

	b.log.Warn("webhook verification failed",
		slog.String("mode", mode),
		slog.Bool("token_match", token == b.verifyToken),
	)
	http.Error(w, "Forbidden", http.StatusForbidden)
}

// HandleWebhook handles incoming webhook POST requests. The payload is
// acknowledged immediately and processed asynchronously, as Meta
// retries anything that does not 200 within seconds.
func (b *WhatsAppBot) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		b.log.Error("failed to read request body", sl.Err(err))
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if b.appSecret != "" {
		signature := r.Header.Get("X-Hub-Signature-256")
		if !b.verifySignature(body, signature) {
			b.log.Warn("invalid webhook signature")
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
	}

	var payload WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		b.log.Error("failed to parse webhook payload", sl.Err(err))
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusOK)

	go b.processPayload(payload)
}

func (b *WhatsAppBot) processPayload(payload WebhookPayload) {
	if payload.Object != "whatsapp_business_account" {
		return
	}
	ctx := context.Background()

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			if change.Field != "messages" {
				continue
			}

			shop, err := b.shops.GetShopByWhatsAppPhone(ctx, change.Value.Metadata.PhoneNumberID)
			if err != nil {
				b.log.Error("shop resolve failed", sl.Err(err))
				continue
			}
			if shop == nil {
				b.log.Warn("no shop bound to phone number",
					slog.String("phone_number_id", change.Value.Metadata.PhoneNumberID))
				continue
			}

			for _, message := range change.Value.Messages {
				if message.Type != "text" || message.Text == nil || message.Text.Body == "" {
					continue
				}
				b.handleInbound(ctx, shop, message.From, message.Text.Body)
			}
		}
	}
}

func (b *WhatsAppBot) handleInbound(ctx context.Context, shop *entity.Shop, from, text string) {
	b.log.Info("received message",
		slog.String("shop_id", shop.ID),
		slog.String("from", from),
	)

	var reply chat.Reply

	// A bare number referring to the last menu is a button press.
	if data := b.matchMenuNumber(from, text); data != "" {
		reply = b.engine.HandleChoice(ctx, shop, from, data)
	} else {
		reply = b.engine.HandleText(ctx, shop, chat.Incoming{
			UserID:  from,
			Text:    text,
			Channel: entity.ChannelWhatsApp,
		})
	}

	b.deliver(from, reply)
}

func (b *WhatsAppBot) matchMenuNumber(userID, text string) string {
	b.mu.Lock()
	menu := b.lastMenus[userID]
	b.mu.Unlock()
	if menu == nil {
		return ""
	}
	return chat.MatchNumberToOption(text, menu)
}

// deliver sends an engine reply, numbering menu options into the text.
func (b *WhatsAppBot) deliver(to string, reply chat.Reply) {
	if !reply.ShouldSend || reply.Text == "" {
		return
	}

	text := reply.Text
	b.mu.Lock()
	if len(reply.Menu) > 0 {
		text = chat.FormatNumberedMenu(reply.Text, reply.Menu)
		b.lastMenus[to] = reply.Menu
	} else {
		delete(b.lastMenus, to)
	}
	b.mu.Unlock()

	if err := b.SendMessage(to, text); err != nil {
		b.log.Error("failed to send message", slog.String("to", to), sl.Err(err))
	}
}

// SendMessage sends a text message to the specified recipient.
func (b *WhatsAppBot) SendMessage(recipientPhone, text string) error {
	reqBody := SendMessageRequest{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               recipientPhone,
		Type:             "text",
	}
	reqBody.Text.PreviewURL = false
	reqBody.Text.Body = text

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", graphAPIURL, b.phoneNumberID)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+b.accessToken)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	return nil
}

// verifySignature verifies the X-Hub-Signature-256 header.
func (b *WhatsAppBot) verifySignature(body []byte, signature string) bool {
	if signature == "" {
		return false
	}

	if len(signature) < 8 || signature[:7] != "sha256=" {
		return false
	}

	expectedSig := signature[7:]
	mac := hmac.New(sha256.New, []byte(b.appSecret))
	mac.Write(body)
	actualSig := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expectedSig), []byte(actualSig))
}
