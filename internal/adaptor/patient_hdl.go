package adaptor

import (
	"net/http"

	"siddhaka-portal/internal/usecase"
	"siddhaka-portal/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type PatientHandler struct {
	service *usecase.Service
	log     *zap.Logger
}

func NewPatientHandler(service *usecase.Service, log *zap.Logger) *PatientHandler {
	return &PatientHandler{
		service: service,
		log:     log.With(zap.String("handler", "patient")),
	}
}

// Bookings handles GET /api/me/bookings
func (h *PatientHandler) Bookings(w http.ResponseWriter, r *http.Request) {
	v, ok := visitorFrom(w, r, h.log)
	if !ok {
		return
	}

	summary, err := h.service.Dashboard(v).Summary(r.Context())
	if err != nil {
		handleServiceError(w, h.log, err, "get my bookings")
		return
	}

	utils.ResponseSuccess(w, "success", summary)
}

// Cancel handles PUT /api/me/bookings/{id}/cancel
func (h *PatientHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	v, ok := visitorFrom(w, r, h.log)
	if !ok {
		return
	}

	bookingID := chi.URLParam(r, "id")
	if bookingID == "" {
		utils.ResponseBadRequest(w, "Booking ID is required", nil)
		return
	}

	dashboard := h.service.Dashboard(v)
	if err := dashboard.Cancel(r.Context(), bookingID); err != nil {
		handleServiceError(w, h.log, err, "cancel booking")
		return
	}

	summary, err := dashboard.Summary(r.Context())
	if err != nil {
		handleServiceError(w, h.log, err, "get my bookings")
		return
	}

	utils.ResponseSuccess(w, "Booking cancelled", summary)
}
