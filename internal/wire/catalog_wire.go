package wire

import (
	"siddhaka-portal/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireCatalog(r chi.Router, catalogHandler *adaptor.CatalogHandler) {
	// ==================== PUBLIC ROUTES ====================
	r.Route("/api/catalog", func(r chi.Router) {
		r.Get("/packages", catalogHandler.Packages)
		r.Get("/packages/{package}", catalogHandler.Package)
		r.Get("/products", catalogHandler.Products)

		// GET /api/catalog/slots?package_id=&date=
		r.Get("/slots", catalogHandler.Slots)
	})
}
