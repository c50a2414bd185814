package chatops

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"AutoLead/internal/lib/api/response"
	"AutoLead/internal/lib/sl"
)

// Takeover switches a dialog to human mode and relays the takeover
// notice to the customer.
func Takeover(log *slog.Logger, handler Core, repo Repo, courier Courier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conversationID := chi.URLParam(r, "id")
		if conversationID == "" {
			http.Error(w, "Missing conversation id", http.StatusBadRequest)
			return
		}

		notice, err := handler.Takeover(r.Context(), conversationID)
		if err != nil {
			log.Error("takeover", slog.String("conversation_id", conversationID), sl.Err(err))
			http.Error(w, "Takeover failed: "+err.Error(), http.StatusInternalServerError)
			return
		}

		deliverNotice(r, log, repo, courier, conversationID, notice)

		render.JSON(w, r, response.Ok(map[string]string{
			"conversation_id": conversationID,
			"mode":            "human",
		}))
	}
}

// Release returns a dialog to the bot.
func Release(log *slog.Logger, handler Core, repo Repo, courier Courier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conversationID := chi.URLParam(r, "id")
		if conversationID == "" {
			http.Error(w, "Missing conversation id", http.StatusBadRequest)
			return
		}

		notice, err := handler.Release(r.Context(), conversationID)
		if err != nil {
			log.Error("release", slog.String("conversation_id", conversationID), sl.Err(err))
			http.Error(w, "Release failed: "+err.Error(), http.StatusInternalServerError)
			return
		}

		deliverNotice(r, log, repo, courier, conversationID, notice)

		render.JSON(w, r, response.Ok(map[string]string{
			"conversation_id": conversationID,
			"mode":            "bot",
		}))
	}
}

// deliverNotice sends a mode-change notice to the customer. Delivery is
// best effort, the mode change already happened.
func deliverNotice(r *http.Request, log *slog.Logger, repo Repo, courier Courier, conversationID, notice string) {
	if courier == nil || notice == "" {
		return
	}

	conv, err := repo.GetConversation(r.Context(), conversationID)
	if err != nil || conv == nil {
		log.Warn("conversation lookup for notice failed",
			slog.String("conversation_id", conversationID), sl.Err(err))
		return
	}

	if err := courier.Deliver(r.Context(), conv, notice); err != nil {
		log.Error("notice delivery failed",
			slog.String("conversation_id", conversationID), sl.Err(err))
	}
}
