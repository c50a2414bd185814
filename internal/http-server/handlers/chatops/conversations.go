package chatops

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"AutoLead/entity"
	"AutoLead/internal/lib/api/response"
	"AutoLead/internal/lib/sl"
)

const defaultListLimit = 50

func listLimit(r *http.Request) int64 {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultListLimit
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return defaultListLimit
	}
	return n
}

// ListConversations returns a shop's dialogs, newest activity first.
func ListConversations(log *slog.Logger, repo Repo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shopID := r.URL.Query().Get("shop_id")
		if shopID == "" {
			http.Error(w, "Missing shop_id parameter", http.StatusBadRequest)
			return
		}
		status := r.URL.Query().Get("status")

		convs, err := repo.ListConversations(r.Context(), shopID, status, listLimit(r))
		if err != nil {
			log.Error("list conversations", slog.String("shop_id", shopID), sl.Err(err))
			http.Error(w, "List failed: "+err.Error(), http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, response.Ok(convs))
	}
}

// GetConversation returns one dialog with its full transcript.
func GetConversation(log *slog.Logger, repo Repo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conversationID := chi.URLParam(r, "id")
		if conversationID == "" {
			http.Error(w, "Missing conversation id", http.StatusBadRequest)
			return
		}

		conv, err := repo.GetConversation(r.Context(), conversationID)
		if err != nil {
			log.Error("get conversation", slog.String("conversation_id", conversationID), sl.Err(err))
			http.Error(w, "Lookup failed: "+err.Error(), http.StatusInternalServerError)
			return
		}
		if conv == nil {
			http.Error(w, "Conversation not found", http.StatusNotFound)
			return
		}

		messages, err := repo.ListMessages(r.Context(), conversationID)
		if err != nil {
			log.Error("list messages", slog.String("conversation_id", conversationID), sl.Err(err))
			http.Error(w, "Lookup failed: "+err.Error(), http.StatusInternalServerError)
			return
		}

		var payload struct {
			Conversation *entity.Conversation `json:"conversation"`
			Messages     []entity.Message     `json:"messages"`
		}
		payload.Conversation = conv
		payload.Messages = messages

		render.JSON(w, r, response.Ok(payload))
	}
}
