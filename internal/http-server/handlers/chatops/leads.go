package chatops

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"AutoLead/internal/lib/api/response"
	"AutoLead/internal/lib/sl"
)

// ListLeads returns a shop's leads, newest first.
func ListLeads(log *slog.Logger, repo Repo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shopID := r.URL.Query().Get("shop_id")
		if shopID == "" {
			http.Error(w, "Missing shop_id parameter", http.StatusBadRequest)
			return
		}
		status := r.URL.Query().Get("status")

		leads, err := repo.ListLeads(r.Context(), shopID, status, listLimit(r))
		if err != nil {
			log.Error("list leads", slog.String("shop_id", shopID), sl.Err(err))
			http.Error(w, "List failed: "+err.Error(), http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, response.Ok(leads))
	}
}

// ListAppointments returns a shop's appointments ordered by slot time.
func ListAppointments(log *slog.Logger, repo Repo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shopID := r.URL.Query().Get("shop_id")
		if shopID == "" {
			http.Error(w, "Missing shop_id parameter", http.StatusBadRequest)
			return
		}

		appts, err := repo.ListAppointments(r.Context(), shopID, listLimit(r))
		if err != nil {
			log.Error("list appointments", slog.String("shop_id", shopID), sl.Err(err))
			http.Error(w, "List failed: "+err.Error(), http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, response.Ok(appts))
	}
}
