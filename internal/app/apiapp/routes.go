package apiapp

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	authsvc "github.com/ivankudzin/swipematch/internal/services/auth"
	matchessvc "github.com/ivankudzin/swipematch/internal/services/matches"
	swipesvc "github.com/ivankudzin/swipematch/internal/services/swipes"
	"github.com/ivankudzin/swipematch/internal/transport/http/handlers"
)

type Dependencies struct {
	AuthService  *authsvc.Service
	SwipeService *swipesvc.Service
	MatchService *matchessvc.Service
	Registry     handlers.StatsSource
	Realtime     http.Handler
	Logger       *zap.Logger
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler(deps.Registry)
	swipeHandler := handlers.NewSwipeHandler(deps.SwipeService, deps.Logger)
	matchesHandler := handlers.NewMatchesHandler(deps.MatchService)

	r.Group(func(r chi.Router) {
		r.Use(chimiddleware.Timeout(requestTimeout))
		r.Get("/healthz", healthHandler.Handle)

		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(deps.AuthService, deps.Logger))
			r.Post("/v1/swipes", swipeHandler.Handle)
			r.Post("/v1/projects/{project_id}/swipe", swipeHandler.HandleProject)
			r.Get("/v1/matches", matchesHandler.Handle)
			r.Post("/v1/unmatch", matchesHandler.Unmatch)
		})
	})

	// Authenticates on its own: browsers cannot send headers on upgrade.
	if deps.Realtime != nil {
		r.Method(http.MethodGet, "/v1/ws", deps.Realtime)
	}
}
