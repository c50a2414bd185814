package api

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"AutoLead/bot/whatsapp"
	"AutoLead/internal/config"
	"AutoLead/internal/http-server/handlers/chatops"
	"AutoLead/internal/http-server/handlers/errors"
	"AutoLead/internal/http-server/middleware/authenticate"
	"AutoLead/internal/http-server/middleware/timeout"
	"AutoLead/internal/lib/sl"
	"AutoLead/internal/ws"
)

type Server struct {
	conf       *config.Config
	httpServer *http.Server
	log        *slog.Logger
}

// Deps holds everything the HTTP surface is wired to.
type Deps struct {
	Auth     authenticate.Authenticate
	Engine   chatops.Core
	Repo     chatops.Repo
	Courier  chatops.Courier
	Hub      *ws.Hub
	WhatsApp *whatsapp.WhatsAppBot
}

// wsAuth adapts the API key check to the socket token query parameter.
type wsAuth struct {
	auth authenticate.Authenticate
}

func (a wsAuth) ValidateToken(token string) (string, error) {
	if a.auth == nil {
		return "", fmt.Errorf("authentication not enabled")
	}
	return a.auth.CheckApiKey(token)
}

func New(conf *config.Config, log *slog.Logger, deps Deps) error {

	server := Server{
		conf: conf,
		log:  log.With(sl.Module("api.server")),
	}

	router := chi.NewRouter()
	router.Use(timeout.Timeout(5))
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)

	router.NotFound(errors.NotFound(log))
	router.MethodNotAllowed(errors.NotAllowed(log))

	// Webhooks, health and the socket endpoint authenticate on their
	// own (Meta signature, ws token query).
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	if deps.WhatsApp != nil {
		router.Get("/webhook/whatsapp", deps.WhatsApp.HandleWebhookVerification)
		router.Post("/webhook/whatsapp", deps.WhatsApp.HandleWebhook)
	}

	if deps.Hub != nil {
		router.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
			ws.ServeWs(deps.Hub, wsAuth{auth: deps.Auth}, log, w, r)
		})
	}

	router.Route("/api/v1", func(v1 chi.Router) {
		v1.Use(render.SetContentType(render.ContentTypeJSON))
		v1.Use(authenticate.New(log, deps.Auth))

		v1.Route("/conversations", func(r chi.Router) {
			r.Get("/", chatops.ListConversations(log, deps.Repo))
			r.Get("/{id}", chatops.GetConversation(log, deps.Repo))
			r.Post("/{id}/takeover", chatops.Takeover(log, deps.Engine, deps.Repo, deps.Courier))
			r.Post("/{id}/release", chatops.Release(log, deps.Engine, deps.Repo, deps.Courier))
			r.Post("/{id}/send", chatops.Send(log, deps.Engine, deps.Repo, deps.Courier))
		})
		v1.Route("/leads", func(r chi.Router) {
			r.Get("/", chatops.ListLeads(log, deps.Repo))
		})
		v1.Route("/appointments", func(r chi.Router) {
			r.Get("/", chatops.ListAppointments(log, deps.Repo))
		})
	})

	httpLog := slog.NewLogLogger(log.Handler(), slog.LevelError)
	server.httpServer = &http.Server{
		Handler:  router,
		ErrorLog: httpLog,
	}

	serverAddress := fmt.Sprintf("%s:%s", conf.Listen.BindIP, conf.Listen.Port)
	listener, err := net.Listen("tcp", serverAddress)
	if err != nil {
		return err
	}

	server.log.Info("starting api server", slog.String("address", serverAddress))

	return server.httpServer.Serve(listener)
}
