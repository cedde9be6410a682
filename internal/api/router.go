package api

import (
	"log/slog"
	"net/http"
	"time"

	_ "origination-engine/docs"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/traceid"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"origination-engine/internal/api/handler"
	mw "origination-engine/internal/api/middleware"
	"origination-engine/internal/config"
	"origination-engine/internal/domain/application"
	"origination-engine/internal/domain/kyc"
	"origination-engine/internal/domain/profile"
)

func SetupRouter(appService application.Service, docService kyc.DocumentService, profileService profile.ProfileService, cfg *config.Config, logger *slog.Logger) *chi.Mux {
	router := chi.NewRouter()

	setupMiddleware(router, cfg, logger)
	setupMetricsEndpoint(router, cfg, logger)
	setupProfileRoutes(router, cfg, profileService, logger)
	setupDocumentRoutes(router, cfg, docService, logger)
	setupApplicationRoutes(router, appService, docService, cfg, logger)
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	setupSwaggerEndpoint(router, logger)

	return router
}

func setupMiddleware(router *chi.Mux, cfg *config.Config, logger *slog.Logger) {
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(traceid.Middleware)
	router.Use(mw.StructuredLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(middleware.Timeout(60 * time.Second))
	router.Use(mw.NewRateLimiterMiddleware(cfg.Server.RateLimit, logger).Middleware)
	router.Use(mw.MetricsMiddleware())
}

func setupMetricsEndpoint(router *chi.Mux, cfg *config.Config, logger *slog.Logger) {
	metricsPath := cfg.Metrics.Path
	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	logger.Info("Setting up Prometheus metrics endpoint", "path", metricsPath)
	router.Handle(metricsPath, promhttp.Handler())
}

func setupSwaggerEndpoint(router *chi.Mux, logger *slog.Logger) {
	logger.Info("Setting up Swagger UI endpoint", "path", "/swagger/")
	router.Get("/swagger/*", httpSwagger.WrapHandler)
	router.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/index.html", http.StatusMovedPermanently)
	})
}

func setupApplicationRoutes(router *chi.Mux, appService application.Service, docService kyc.DocumentService, cfg *config.Config, logger *slog.Logger) {
	appHandler := handler.NewApplicationHandler(appService, logger)
	docHandler := handler.NewDocumentHandler(docService, logger)
	authHandler := handler.NewAuthHandler(*cfg, logger)
	router.Route("/auth", func(r chi.Router) {
		r.Post("/token", authHandler.GenerateBearerToken)
	})

	router.Route("/applications", func(r chi.Router) {
		r.Use(mw.AuthMiddleware(cfg.Server.Auth, logger))
		r.Post("/", appHandler.CreateApplication)
		r.Get("/", appHandler.ListMyApplications)
		r.Route("/{applicationID}", func(r chi.Router) {
			r.Get("/", appHandler.GetApplication)
			r.Get("/schedule", appHandler.GetSchedule)
			r.Get("/outstanding", appHandler.GetOutstanding)
			r.Get("/documents", docHandler.ListApplicationDocuments)
			r.Post("/kyc-stage2", appHandler.BeginKYCStage2)
			r.Post("/submit", appHandler.Submit)
			r.Post("/review", appHandler.StartReview)
			r.Post("/route", appHandler.Route)
			r.Post("/disposition", appHandler.RecordDisposition)
			r.Post("/approve", appHandler.Approve)
			r.Post("/reject", appHandler.Reject)
			r.Post("/disburse", appHandler.Disburse)
			r.Post("/payments", appHandler.RecordPayment)
			r.Post("/default", appHandler.MarkDefaulted)
		})
	})
}

func setupDocumentRoutes(router *chi.Mux, cfg *config.Config, svc kyc.DocumentService, logger *slog.Logger) {
	h := handler.NewDocumentHandler(svc, logger)

	router.Route("/documents", func(r chi.Router) {
		r.Use(mw.AuthMiddleware(cfg.Server.Auth, logger))
		r.Post("/", h.UploadDocument)
		r.Route("/{documentID}", func(r chi.Router) {
			r.Get("/", h.GetDocument)
			r.Put("/review", h.ReviewDocument)
			r.Post("/refresh", h.RefreshDocument)
		})
	})
}

func setupProfileRoutes(r chi.Router, cfg *config.Config, svc profile.ProfileService, logger *slog.Logger) {
	h := handler.NewProfileHandler(svc, logger)

	r.Route("/profiles", func(r chi.Router) {
		r.Use(mw.AuthMiddleware(cfg.Server.Auth, logger))
		r.Post("/", h.CreateProfile)
		r.Get("/", h.ListProfiles)
		r.Route("/{profileID}", func(r chi.Router) {
			r.Get("/", h.GetProfile)
			r.Delete("/", h.DeactivateProfile)
			r.Put("/reactivate", h.ReactivateProfile)
		})
	})
}
