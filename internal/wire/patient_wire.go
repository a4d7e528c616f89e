package wire

import (
	"siddhaka-portal/internal/adaptor"
	"siddhaka-portal/internal/data/entity"
	"siddhaka-portal/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wirePatient(r chi.Router, patientHandler *adaptor.PatientHandler, log *zap.Logger) {
	// ==================== PATIENT ROUTES ====================
	r.Route("/api/me", func(r chi.Router) {
		r.Use(middleware.RequireRole(entity.RolePatient, log))

		r.Get("/bookings", patientHandler.Bookings)
		r.Put("/bookings/{id}/cancel", patientHandler.Cancel)
	})
}
