package wire

import (
	"siddhaka-portal/internal/adaptor"
	"siddhaka-portal/pkg/middleware"
	"siddhaka-portal/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireAuth(
	r chi.Router,
	authHandler *adaptor.AuthHandler,
	config *utils.Config,
	log *zap.Logger,
) {
	limiter := middleware.NewRateLimiter(config.RateLimit.PerMinute, config.RateLimit.Burst)

	r.Route("/api/auth", func(r chi.Router) {
		// ==================== RATE LIMITED ====================
		r.With(middleware.RateLimit(limiter, log)).Post("/login", authHandler.Login)
		r.With(middleware.RateLimit(limiter, log)).Post("/register", authHandler.Register)

		// Logout selalu boleh, anonymous logout = no-op
		r.Post("/logout", authHandler.Logout)
		r.Get("/session", authHandler.Session)
	})
}
