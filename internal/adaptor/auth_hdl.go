package adaptor

import (
	"encoding/json"
	"net/http"

	"siddhaka-portal/internal/backend"
	"siddhaka-portal/internal/dto/request"
	"siddhaka-portal/internal/dto/response"
	"siddhaka-portal/internal/usecase"
	"siddhaka-portal/pkg/utils"

	"go.uber.org/zap"
)

type AuthHandler struct {
	service *usecase.Service
	log     *zap.Logger
}

func NewAuthHandler(service *usecase.Service, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		log:     log.With(zap.String("handler", "auth")),
	}
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	v, ok := visitorFrom(w, r, h.log)
	if !ok {
		return
	}

	var req request.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	if err := v.Store.Login(r.Context(), req.Email, req.Password); err != nil {
		handleServiceError(w, h.log, err, "login")
		return
	}

	utils.ResponseSuccess(w, "Login successful", sessionToResponse(v.Store.Snapshot()))
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	v, ok := visitorFrom(w, r, h.log)
	if !ok {
		return
	}

	var req request.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	if req.Password != req.ConfirmPassword {
		handleServiceError(w, h.log, usecase.ErrPasswordMismatch, "register")
		return
	}

	if err := v.Store.Register(r.Context(), registerInput(req)); err != nil {
		handleServiceError(w, h.log, err, "register")
		return
	}

	utils.ResponseCreated(w, "Registration successful", sessionToResponse(v.Store.Snapshot()))
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	v, ok := visitorFrom(w, r, h.log)
	if !ok {
		return
	}

	if err := v.Store.Logout(r.Context()); err != nil {
		handleServiceError(w, h.log, err, "logout")
		return
	}

	utils.ResponseSuccess(w, "Logged out", response.LogoutResponse{Redirect: "/"})
}

// Session handles GET /api/auth/session
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	v, ok := visitorFrom(w, r, h.log)
	if !ok {
		return
	}

	utils.ResponseSuccess(w, "success", sessionToResponse(v.Store.Snapshot()))
}

func registerInput(req request.RegisterRequest) backend.RegisterInput {
	return backend.RegisterInput{
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		Password:    req.Password,
		DateOfBirth: req.DateOfBirth,
		Country:     req.Country,
		Gender:      req.Gender,
	}
}

func sessionToResponse(s usecase.SessionSnapshot) response.SessionResponse {
	return response.SessionResponse{
		VisitorID:     s.VisitorID.String(),
		Authenticated: s.IsAuthenticated(),
		Identity:      response.IdentityToResponse(s.Identity),
		Patient:       response.PatientToResponse(s.Patient),
		Bookings:      collectionToResponse(s.Bookings, response.BookingToResponse),
		Products:      collectionToResponse(s.Products, response.ProductToResponse),
		Packages:      collectionToResponse(s.Packages, response.PackageToResponse),
	}
}

func collectionToResponse[T, R any](c usecase.Collection[T], convert func(T) R) response.CollectionResponse[R] {
	res := response.CollectionResponse[R]{
		State: string(c.State),
		Items: make([]R, 0, len(c.Items)),
	}
	if c.Err != nil {
		res.Error = c.Err.Error()
	}
	for _, item := range c.Items {
		res.Items = append(res.Items, convert(item))
	}
	return res
}
