package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zhouzirui/onboard/internal/handler/chat"
	"github.com/zhouzirui/onboard/internal/handler/session"
	"github.com/zhouzirui/onboard/internal/service/onboarding"
	"github.com/zhouzirui/onboard/internal/store"
	"github.com/zhouzirui/onboard/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(svc *onboarding.Service, repo store.Repository) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	chat.NewWebSocketHandler(svc).RegisterRoutes(r)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]any{
			"status": "ok",
			"llm":    svc.Enabled(),
		})
	})

	r.Route("/api", func(api chi.Router) {
		session.New(repo).RegisterRoutes(api)
	})

	return r
}
