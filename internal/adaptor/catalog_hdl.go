package adaptor

import (
	"net/http"
	"net/url"

	"siddhaka-portal/internal/dto/request"
	"siddhaka-portal/internal/usecase"
	"siddhaka-portal/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type CatalogHandler struct {
	service *usecase.Service
	log     *zap.Logger
}

func NewCatalogHandler(service *usecase.Service, log *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: service,
		log:     log.With(zap.String("handler", "catalog")),
	}
}

// Packages handles GET /api/catalog/packages
func (h *CatalogHandler) Packages(w http.ResponseWriter, r *http.Request) {
	v, ok := visitorFrom(w, r, h.log)
	if !ok {
		return
	}

	utils.ResponseSuccess(w, "success", h.service.Catalog(v).Packages(r.Context()))
}

// Package handles GET /api/catalog/packages/{package}, by id or name
func (h *CatalogHandler) Package(w http.ResponseWriter, r *http.Request) {
	v, ok := visitorFrom(w, r, h.log)
	if !ok {
		return
	}

	key, err := url.PathUnescape(chi.URLParam(r, "package"))
	if err != nil || key == "" {
		utils.ResponseBadRequest(w, "Package is required", nil)
		return
	}

	pkg, err := h.service.Catalog(v).Package(r.Context(), key)
	if err != nil {
		handleServiceError(w, h.log, err, "get package")
		return
	}

	utils.ResponseSuccess(w, "success", pkg)
}

// Products handles GET /api/catalog/products
func (h *CatalogHandler) Products(w http.ResponseWriter, r *http.Request) {
	v, ok := visitorFrom(w, r, h.log)
	if !ok {
		return
	}

	utils.ResponseSuccess(w, "success", h.service.Catalog(v).Products(r.Context()))
}

// Slots handles GET /api/catalog/slots?package_id=&date=
func (h *CatalogHandler) Slots(w http.ResponseWriter, r *http.Request) {
	v, ok := visitorFrom(w, r, h.log)
	if !ok {
		return
	}

	query := r.URL.Query()
	req := request.SlotsRequest{
		PackageID: query.Get("package_id"),
		Date:      query.Get("date"),
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	utils.ResponseSuccess(w, "success", h.service.Catalog(v).Slots(r.Context(), req.PackageID, req.Date))
}
