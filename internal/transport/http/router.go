package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"videotube/internal/handler"
	"videotube/internal/httputil"
	"videotube/internal/logger"
	authmw "videotube/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	AuthHandler         *handler.AuthHandler
	UserHandler         *handler.UserHandler
	SubscriptionHandler *handler.SubscriptionHandler
	Verifier            authmw.TokenVerifier
	Logger              *logger.Logger
	CORSOrigin          string
}

// NewRouter creates and configures a new Chi router with all route groups
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(authmw.TraceID(cfg.Logger))
	r.Use(authmw.RequestLogger)
	r.Use(middleware.Recoverer)
	if cfg.CORSOrigin != "" {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   strings.Split(cfg.CORSOrigin, ","),
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Authorization", "Content-Type", authmw.TraceIDHeader},
			ExposedHeaders:   []string{authmw.TraceIDHeader},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Health check endpoint (useful for deployment/monitoring)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	requireAuth := authmw.AuthMiddleware(cfg.Verifier)
	optionalAuth := authmw.OptionalAuthMiddleware(cfg.Verifier)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			// Public
			r.Post("/register", cfg.AuthHandler.Register)
			r.Post("/login", cfg.AuthHandler.Login)
			r.Post("/refresh-token", cfg.AuthHandler.Refresh)
			r.With(optionalAuth).Get("/c/{username}", cfg.UserHandler.ChannelProfile)

			// Authenticated
			r.Group(func(r chi.Router) {
				r.Use(requireAuth)

				r.Post("/logout", cfg.AuthHandler.Logout)
				r.Post("/change-password", cfg.AuthHandler.ChangePassword)
				r.Get("/current-user", cfg.UserHandler.CurrentUser)
				r.Patch("/update-account", cfg.UserHandler.UpdateAccount)
				r.Patch("/avatar", cfg.UserHandler.UpdateAvatar)
				r.Patch("/cover-image", cfg.UserHandler.UpdateCoverImage)
				r.Get("/history", cfg.UserHandler.WatchHistory)
			})
		})

		r.Route("/subscriptions", func(r chi.Router) {
			r.Use(requireAuth)

			r.Post("/c/{username}", cfg.SubscriptionHandler.Subscribe)
			r.Delete("/c/{username}", cfg.SubscriptionHandler.Unsubscribe)
		})
	})

	return r
}
