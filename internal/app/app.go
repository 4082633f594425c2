// Package app wires configuration, storage, services, and the HTTP server.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/lumiere-skincare/storefront-api/internal/domain/cart"
	"github.com/lumiere-skincare/storefront-api/internal/domain/order"
	"github.com/lumiere-skincare/storefront-api/internal/domain/payment"
	"github.com/lumiere-skincare/storefront-api/internal/gateway"
	"github.com/lumiere-skincare/storefront-api/internal/handler"
	"github.com/lumiere-skincare/storefront-api/internal/repository"
	"github.com/lumiere-skincare/storefront-api/pkg/health"
	"github.com/lumiere-skincare/storefront-api/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	// PostgreSQL pool + migrations.
	pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddReadinessCheck("postgres", 5*time.Second, pool.Ping)
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// Repositories.
	productRepo := repository.NewProductRepository(pool)
	cartRepo := repository.NewCartRepository(pool)
	orderRepo := repository.NewOrderRepository(pool)

	// Payment gateway. Without credentials the storefront still works, but
	// payment intents are refused with 503.
	var (
		gw       payment.Gateway
		verifier *payment.Verifier
	)
	if cfg.Razorpay.KeyID != "" && cfg.Razorpay.KeySecret != "" {
		gw = gateway.NewRazorpay(cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret)
		verifier = payment.NewVerifier([]byte(cfg.Razorpay.KeySecret))
	} else {
		lg.Warn("Razorpay credentials not set, payment intents disabled")
	}

	freeThreshold, flatFee, err := cfg.Shipping.rule()
	if err != nil {
		return err
	}
	rule := order.ShippingRule{FreeThreshold: freeThreshold, FlatFee: flatFee}

	// Domain services.
	cartService := cart.NewService(productRepo, cartRepo)
	orderService := order.NewService(cartService, orderRepo, gw, verifier, rule)

	// HTTP handlers.
	metrics, err := handler.NewMetrics(m.MeterProvider().Meter("storefront-api"))
	if err != nil {
		return errors.Wrap(err, "create metrics")
	}
	h := handler.New(productRepo, cartService, orderService, metrics, cfg.ImageBaseURL)

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	h.Register(mux, handler.JWTAuth([]byte(cfg.JWTSecret)))

	instrumented := otelhttp.NewHandler(mux, "storefront-api",
		otelhttp.WithTracerProvider(m.TracerProvider()),
		otelhttp.WithMeterProvider(m.MeterProvider()),
	)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(instrumented,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type", "Authorization"},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.LogRequests(),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}
