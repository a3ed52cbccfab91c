package http

import (
	"net/http"
	"time"

	"github.com/peertalk/chat-service/internal/auth"
	httpmw "github.com/peertalk/chat-service/internal/transport/http/middleware"
	"github.com/peertalk/chat-service/internal/transport/ws"

	"github.com/go-chi/chi/v5"
	middlewareChi "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(h *Handler, gateway *auth.Gateway, wsServer *ws.Server) http.Handler {
	r := chi.NewRouter()
	r.Use(middlewareChi.RequestID)
	r.Use(middlewareChi.RealIP)
	r.Use(middlewareChi.Recoverer)

	// WS endpoint authenticates inside the handler, before upgrade
	r.Get("/ws", wsServer.HandleWS)

	r.Group(func(pr chi.Router) {
		pr.Use(httpmw.AuthMiddleware(gateway))
		pr.Use(middlewareChi.Timeout(30 * time.Second))

		pr.Route("/conversations", func(cr chi.Router) {
			cr.Post("/", h.CreateConversation)

			cr.Route("/{id}", func(rr chi.Router) {
				rr.Get("/", h.GetConversation)
				rr.Delete("/", h.DeleteConversation)
				rr.Get("/messages", h.GetMessages)
			})
		})

		pr.Get("/unread_count", h.GetUnreadCount)
	})

	// health
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return r
}
