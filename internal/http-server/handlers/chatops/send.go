package chatops

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"AutoLead/internal/lib/api/response"
	"AutoLead/internal/lib/sl"
)

var validate = validator.New()

type SendRequest struct {
	Text string `json:"text" validate:"required"`
}

// Send appends an operator message to the transcript and delivers it to
// the customer over the dialog's channel.
func Send(log *slog.Logger, handler Core, repo Repo, courier Courier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conversationID := chi.URLParam(r, "id")
		if conversationID == "" {
			http.Error(w, "Missing conversation id", http.StatusBadRequest)
			return
		}

		var req SendRequest
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(req); err != nil {
			http.Error(w, "Text is required", http.StatusBadRequest)
			return
		}

		conv, err := repo.GetConversation(r.Context(), conversationID)
		if err != nil {
			log.Error("conversation lookup", slog.String("conversation_id", conversationID), sl.Err(err))
			http.Error(w, "Lookup failed: "+err.Error(), http.StatusInternalServerError)
			return
		}
		if conv == nil {
			http.Error(w, "Conversation not found", http.StatusNotFound)
			return
		}

		if err := handler.OperatorMessage(r.Context(), conversationID, req.Text); err != nil {
			log.Error("operator message", slog.String("conversation_id", conversationID), sl.Err(err))
			http.Error(w, "Send failed: "+err.Error(), http.StatusInternalServerError)
			return
		}

		if courier != nil {
			if err := courier.Deliver(r.Context(), conv, req.Text); err != nil {
				log.Error("operator message delivery failed",
					slog.String("conversation_id", conversationID), sl.Err(err))
				http.Error(w, "Delivery failed: "+err.Error(), http.StatusBadGateway)
				return
			}
		}

		render.JSON(w, r, response.Ok("Message sent"))
	}
}
