package wire

import (
	"siddhaka-portal/internal/adaptor"
	"siddhaka-portal/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireAdmin(r chi.Router, adminHandler *adaptor.AdminHandler, log *zap.Logger) {
	// ==================== ADMIN ROUTES ====================
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.Admin(log))

		// Booking management
		r.Get("/bookings", adminHandler.Bookings)
		r.Put("/bookings/{id}/status", adminHandler.UpdateStatus)
		r.Put("/bookings/{id}/reschedule", adminHandler.Reschedule)
		r.Get("/calendar", adminHandler.Calendar)
		r.Get("/upcoming", adminHandler.Upcoming)

		// Catalog management
		r.Post("/products", adminHandler.CreateProduct)
		r.Put("/products/{id}", adminHandler.UpdateProduct)
		r.Delete("/products/{id}", adminHandler.DeleteProduct)
		r.Post("/packages", adminHandler.CreatePackage)
		r.Put("/packages/{id}", adminHandler.UpdatePackage)
		r.Delete("/packages/{id}", adminHandler.DeletePackage)
	})
}
