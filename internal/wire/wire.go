// internal/wire/wire.go
package wire

import (
	"net/http"

	"siddhaka-portal/internal/adaptor"
	"siddhaka-portal/internal/backend"
	"siddhaka-portal/internal/data/repository"
	"siddhaka-portal/internal/metrics"
	"siddhaka-portal/internal/usecase"
	"siddhaka-portal/pkg/middleware"
	"siddhaka-portal/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// App menyimpan semua dependencies
type App struct {
	Router   *chi.Mux
	Sessions usecase.SessionRegistry
}

// Wiring menginisialisasi semua dependencies
func Wiring(repo *repository.Repository, config *utils.Config, logger *zap.Logger) *App {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	backendMetrics := metrics.NewBackendMetrics(registry)

	api := NewBackendClient(config, backendMetrics, logger)

	// Initialize services dan handlers
	service := usecase.NewService(api, repo, config, backendMetrics, logger)
	handler := adaptor.NewHandler(service, logger)

	// Setup router
	router := setupRouter(handler, service, registry, config, logger)

	return &App{
		Router:   router,
		Sessions: service.Sessions,
	}
}

// NewBackendClient builds the clinic API client from config.
func NewBackendClient(config *utils.Config, m *metrics.BackendMetrics, logger *zap.Logger) *backend.Client {
	return backend.NewClient(config.Backend.BaseURL,
		backend.WithHTTPClient(&http.Client{Timeout: config.Backend.Timeout}),
		backend.WithLogger(logger),
		backend.WithMetrics(m),
	)
}

// setupRouter konfigurasi Chi router
func setupRouter(
	handler *adaptor.Handler,
	service *usecase.Service,
	gatherer prometheus.Gatherer,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(middleware.RealIP(config.App.TrustedProxies, logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS(config.App.CORSOrigins))

	// Health check & metrics, tanpa visitor cookie
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	// Apply routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.Visitor(service.Sessions, config.Session.CookieSecure, logger))

		wireAuth(r, handler.Auth, config, logger)
		wireCatalog(r, handler.Catalog)
		wireWorkflow(r, handler.Workflow)
		wirePatient(r, handler.Patient, logger)
		wireAdmin(r, handler.Admin, logger)
	})

	return r
}
