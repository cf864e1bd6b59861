package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/diewo77/go-tailorshop/httpx"
	"github.com/diewo77/go-tailorshop/internal/config"
	"github.com/diewo77/go-tailorshop/internal/handlers"
	"github.com/diewo77/go-tailorshop/internal/invoicing"
	"github.com/diewo77/go-tailorshop/internal/messages"
	"github.com/diewo77/go-tailorshop/internal/metrics"
	"github.com/diewo77/go-tailorshop/internal/middleware"
	"github.com/diewo77/go-tailorshop/internal/notify"
	"github.com/diewo77/go-tailorshop/internal/sequence"
	"github.com/diewo77/go-tailorshop/internal/services"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// App is the main application handler that sets up all routes.
type App struct {
	mux     *http.ServeMux
	db      *gorm.DB
	handler http.Handler
}

// NewFulfillment wires the fulfillment service from configuration.
func NewFulfillment(cfg *config.Config, db *gorm.DB, alloc sequence.Allocator, pub notify.Publisher) *services.FulfillmentService {
	issuer := sequence.NewIssuer(alloc, cfg.Invoice.Counter, cfg.Invoice.Prefix)
	return services.NewFulfillmentService(
		db,
		invoicing.NewComposer(db, issuer),
		messages.New(cfg.Invoice.CurrencySymbol),
		pub,
		services.Options{
			PublicBaseURL:    cfg.App.PublicBaseURL,
			DocumentCurrency: cfg.Invoice.DocumentCurrency,
			Brand:            cfg.App.Brand,
		},
	)
}

// applySequenceStart raises the invoice counter to INVOICE_SEQUENCE_START.
// Re-running it on every start is safe since seeding never lowers a counter.
func applySequenceStart(ctx context.Context, cfg *config.Config, alloc sequence.Allocator) error {
	if cfg.Invoice.SequenceStart <= 0 {
		return nil
	}
	seeder, ok := alloc.(sequence.Seeder)
	if !ok {
		return fmt.Errorf("sequence backend %T cannot be seeded", alloc)
	}
	return seeder.Seed(ctx, cfg.Invoice.Counter, cfg.Invoice.SequenceStart)
}

// NewApp creates a new application with all routes configured.
func NewApp(db *gorm.DB, svc *services.FulfillmentService, log *slog.Logger) *App {
	app := &App{
		mux: http.NewServeMux(),
		db:  db,
	}
	app.setupRoutes(svc)
	// metrics.Middleware reads the matched pattern, so it wraps the mux directly.
	app.handler = middleware.Chain(metrics.Middleware(app.mux),
		middleware.Logging(log),
		middleware.Recover,
	)
	return app
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}

func (a *App) setupRoutes(svc *services.FulfillmentService) {
	a.mux.HandleFunc("GET /healthz", a.healthz)
	a.mux.Handle("GET /metrics", promhttp.Handler())

	handlers.NewOrderHandler(svc).Register(a.mux)
	handlers.NewInvoiceHandler(svc).Register(a.mux)
}

func (a *App) healthz(w http.ResponseWriter, r *http.Request) {
	if err := a.db.WithContext(r.Context()).Exec("SELECT 1").Error; err != nil {
		httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
