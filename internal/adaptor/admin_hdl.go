package adaptor

import (
	"encoding/json"
	"net/http"

	"siddhaka-portal/internal/data/entity"
	"siddhaka-portal/internal/dto/request"
	"siddhaka-portal/internal/dto/response"
	"siddhaka-portal/internal/usecase"
	"siddhaka-portal/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type AdminHandler struct {
	service *usecase.Service
	log     *zap.Logger
}

func NewAdminHandler(service *usecase.Service, log *zap.Logger) *AdminHandler {
	return &AdminHandler{
		service: service,
		log:     log.With(zap.String("handler", "admin")),
	}
}

// ==================== BOOKINGS ====================

// Bookings handles GET /api/admin/bookings?status=&search=&date=&page=&per_page=
func (h *AdminHandler) Bookings(w http.ResponseWriter, r *http.Request) {
	v, ok := visitorFrom(w, r, h.log)
	if !ok {
		return
	}

	query := r.URL.Query()
	req := request.BookingFilterRequest{
		Status: query.Get("status"),
		Search: query.Get("search"),
		Date:   query.Get("date"),
		PaginatedRequest: request.PaginatedRequest{
			Page:    utils.ParseInt(query.Get("page"), 1),
			PerPage: utils.ParseInt(query.Get("per_page"), 50),
		},
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	list := h.service.Admin(v).List(usecase.BookingFilter{
		Status: req.Status,
		Search: req.Search,
		Date:   req.Date,
	})

	start, end := req.Bounds(len(list))
	utils.ResponseSuccess(w, "success",
		response.NewPaginatedResponse(list[start:end], req.Page, req.Limit(), int64(len(list))))
}

// UpdateStatus handles PUT /api/admin/bookings/{id}/status
func (h *AdminHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	v, ok := visitorFrom(w, r, h.log)
	if !ok {
		return
	}

	bookingID := chi.URLParam(r, "id")
	if bookingID == "" {
		utils.ResponseBadRequest(w, "Booking ID is required", nil)
		return
	}

	var req request.StatusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	console := h.service.Admin(v)
	if err := console.Transition(r.Context(), bookingID, entity.BookingStatus(req.Status)); err != nil {
		handleServiceError(w, h.log, err, "update booking status")
		return
	}

	utils.ResponseSuccess(w, "Booking updated", console.List(usecase.BookingFilter{}))
}

// Reschedule handles PUT /api/admin/bookings/{id}/reschedule
func (h *AdminHandler) Reschedule(w http.ResponseWriter, r *http.Request) {
	v, ok := visitorFrom(w, r, h.log)
	if !ok {
		return
	}

	bookingID := chi.URLParam(r, "id")
	if bookingID == "" {
		utils.ResponseBadRequest(w, "Booking ID is required", nil)
		return
	}

	var req request.RescheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	console := h.service.Admin(v)
	if err := console.Reschedule(r.Context(), bookingID, req.Date, req.TimeSlot); err != nil {
		handleServiceError(w, h.log, err, "reschedule booking")
		return
	}

	utils.ResponseSuccess(w, "Booking rescheduled", console.List(usecase.BookingFilter{}))
}

// Calendar handles GET /api/admin/calendar?selected=YYYY-MM-DD
func (h *AdminHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	v, ok := visitorFrom(w, r, h.log)
	if !ok {
		return
	}

	selected := r.URL.Query().Get("selected")
	if selected != "" && !utils.IsValidDate(selected) {
		handleServiceError(w, h.log, usecase.ErrInvalidDate, "get calendar")
		return
	}

	utils.ResponseSuccess(w, "success", h.service.Admin(v).Calendar(selected))
}

// Upcoming handles GET /api/admin/upcoming
func (h *AdminHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
	v, ok := visitorFrom(w, r, h.log)
	if !ok {
		return
	}

	utils.ResponseSuccess(w, "success", h.service.Admin(v).UpcomingWeek())
}

// ==================== CATALOG ====================

// CreateProduct handles POST /api/admin/products
func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	h.writeProduct(w, r, "", "create product")
}

// UpdateProduct handles PUT /api/admin/products/{id}
func (h *AdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		utils.ResponseBadRequest(w, "Product ID is required", nil)
		return
	}
	h.writeProduct(w, r, id, "update product")
}

// DeleteProduct handles DELETE /api/admin/products/{id}
func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	v, ok := visitorFrom(w, r, h.log)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		utils.ResponseBadRequest(w, "Product ID is required", nil)
		return
	}

	if err := v.Store.DeleteProduct(r.Context(), id); err != nil {
		handleServiceError(w, h.log, err, "delete product")
		return
	}

	utils.ResponseSuccess(w, "Product deleted", response.ProductsToResponse(v.Store.Products()))
}

func (h *AdminHandler) writeProduct(w http.ResponseWriter, r *http.Request, id, operation string) {
	v, ok := visitorFrom(w, r, h.log)
	if !ok {
		return
	}

	var req entity.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	var err error
	if id == "" {
		err = v.Store.AddProduct(r.Context(), req)
	} else {
		err = v.Store.UpdateProduct(r.Context(), id, req)
	}
	if err != nil {
		handleServiceError(w, h.log, err, operation)
		return
	}

	products := response.ProductsToResponse(v.Store.Products())
	if id == "" {
		utils.ResponseCreated(w, "Product created", products)
		return
	}
	utils.ResponseSuccess(w, "Product updated", products)
}

// CreatePackage handles POST /api/admin/packages
func (h *AdminHandler) CreatePackage(w http.ResponseWriter, r *http.Request) {
	h.writePackage(w, r, "", "create package")
}

// UpdatePackage handles PUT /api/admin/packages/{id}
func (h *AdminHandler) UpdatePackage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		utils.ResponseBadRequest(w, "Package ID is required", nil)
		return
	}
	h.writePackage(w, r, id, "update package")
}

// DeletePackage handles DELETE /api/admin/packages/{id}
func (h *AdminHandler) DeletePackage(w http.ResponseWriter, r *http.Request) {
	v, ok := visitorFrom(w, r, h.log)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		utils.ResponseBadRequest(w, "Package ID is required", nil)
		return
	}

	if err := v.Store.DeletePackage(r.Context(), id); err != nil {
		handleServiceError(w, h.log, err, "delete package")
		return
	}

	utils.ResponseSuccess(w, "Package deleted", response.PackagesToResponse(v.Store.Packages()))
}

func (h *AdminHandler) writePackage(w http.ResponseWriter, r *http.Request, id, operation string) {
	v, ok := visitorFrom(w, r, h.log)
	if !ok {
		return
	}

	var req entity.PackageInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	var err error
	if id == "" {
		err = v.Store.AddPackage(r.Context(), req)
	} else {
		err = v.Store.UpdatePackage(r.Context(), id, req)
	}
	if err != nil {
		handleServiceError(w, h.log, err, operation)
		return
	}

	packages := response.PackagesToResponse(v.Store.Packages())
	if id == "" {
		utils.ResponseCreated(w, "Package created", packages)
		return
	}
	utils.ResponseSuccess(w, "Package updated", packages)
}
