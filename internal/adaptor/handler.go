package adaptor

import (
	"errors"
	"net/http"

	"siddhaka-portal/internal/backend"
	"siddhaka-portal/internal/usecase"
	"siddhaka-portal/pkg/utils"

	"go.uber.org/zap"
)

type Handler struct {
	Auth     *AuthHandler
	Catalog  *CatalogHandler
	Workflow *WorkflowHandler
	Patient  *PatientHandler
	Admin    *AdminHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Auth:     NewAuthHandler(service, log),
		Catalog:  NewCatalogHandler(service, log),
		Workflow: NewWorkflowHandler(log),
		Patient:  NewPatientHandler(service, log),
		Admin:    NewAdminHandler(service, log),
	}
}

// visitorFrom returns the visitor resolved by the Visitor middleware.
func visitorFrom(w http.ResponseWriter, r *http.Request, log *zap.Logger) (*usecase.Visitor, bool) {
	v, ok := usecase.VisitorFromContext(r.Context())
	if !ok {
		log.Error("Visitor missing from request context", zap.String("path", r.URL.Path))
		utils.ResponseInternalError(w, "Internal server error")
		return nil, false
	}
	return v, true
}

// handleServiceError maps usecase and backend errors to responses.
func handleServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	var (
		validationErr *usecase.ValidationError
		authErr       *usecase.AuthenticationError
		bookingErr    *usecase.BookingCreationError
		opErr         *usecase.OperationError
	)

	switch {
	case errors.As(err, &validationErr):
		log.Warn(operation+" validation failed", zap.Error(err), zap.String("operation", operation))
		utils.ResponseBadRequest(w, validationErr.Message, nil)

	case errors.Is(err, usecase.ErrNotAuthenticated):
		log.Warn(operation+" failed - not authenticated", zap.String("operation", operation))
		utils.ResponseUnauthorized(w, "Authentication required")

	case errors.Is(err, usecase.ErrAlreadyAuthenticated):
		log.Warn(operation+" failed - already authenticated", zap.String("operation", operation))
		utils.ResponseConflict(w, err.Error())

	case errors.Is(err, usecase.ErrBookingNotFound), errors.Is(err, usecase.ErrPackageNotFound):
		log.Warn(operation+" failed - not found", zap.Error(err), zap.String("operation", operation))
		utils.ResponseNotFound(w, err.Error())

	case errors.As(err, &authErr):
		log.Warn(operation+" failed - rejected", zap.Error(err), zap.String("operation", operation))
		if !isBackendRejection(err) {
			utils.ResponseBadGateway(w, authErr.Message)
			return
		}
		utils.ResponseUnauthorized(w, authErr.Message)

	case errors.As(err, &bookingErr):
		respondBackendError(w, log, err, bookingErr.Message, operation)

	case errors.As(err, &opErr):
		respondBackendError(w, log, err, opErr.Error(), operation)

	default:
		log.Error(operation+" failed - internal error", zap.Error(err), zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
	}
}

func isBackendRejection(err error) bool {
	var apiErr *backend.APIError
	return errors.As(err, &apiErr)
}

// respondBackendError forwards a backend 4xx with its message; anything else
// means the backend is unreachable or failing.
func respondBackendError(w http.ResponseWriter, log *zap.Logger, err error, message, operation string) {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
		log.Warn(operation+" failed - rejected by backend",
			zap.Error(err),
			zap.Int("status", apiErr.StatusCode),
			zap.String("operation", operation))
		utils.ResponseJSON(w, apiErr.StatusCode, false, message, nil, nil)
		return
	}

	log.Error(operation+" failed - backend unavailable", zap.Error(err), zap.String("operation", operation))
	utils.ResponseBadGateway(w, message)
}
