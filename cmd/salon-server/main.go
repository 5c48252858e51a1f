// Package main runs the salon booking API server.
package main

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"database/sql"
	"encoding/pem"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	app "github.com/glosslab/salon-service/internal/app"
	"github.com/glosslab/salon-service/internal/app/httpapi"
	"github.com/glosslab/salon-service/internal/app/metrics"
	"github.com/glosslab/salon-service/internal/app/storage/postgres"
	redisstore "github.com/glosslab/salon-service/internal/app/storage/redis"
	"github.com/glosslab/salon-service/internal/config"
	"github.com/glosslab/salon-service/internal/middleware"
	"github.com/glosslab/salon-service/pkg/logger"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to the YAML configuration file")
	apiTokens := flag.String("api-tokens", "", "Comma-separated static API tokens")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging).WithField("component", "salon-server")

	stores, cleanup, err := buildStores(cfg, log)
	if err != nil {
		log.Fatalf("configure storage: %v", err)
	}
	defer cleanup()

	application, err := app.New(stores, app.Options{
		MetadataURL:      cfg.Catalog.MetadataURL,
		MetadataKey:      cfg.Catalog.MetadataKey,
		ReminderSchedule: cfg.Booking.ReminderSchedule,
	}, log)
	if err != nil {
		log.Fatalf("build application: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := application.Start(ctx); err != nil {
		log.Fatalf("start application: %v", err)
	}

	handler, err := buildHandler(cfg, application, tokenList(*apiTokens), log)
	if err != nil {
		log.Fatalf("build handler: %v", err)
	}

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout.Std(),
		WriteTimeout: cfg.Server.WriteTimeout.Std(),
	}

	go func() {
		log.WithField("addr", cfg.Server.Addr).Info("salon server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Std())
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("http shutdown")
	}
	if err := application.Stop(shutdownCtx); err != nil {
		log.WithError(err).Warn("application shutdown")
	}
}

// buildStores selects the persistence backends. Postgres when a DSN is set,
// Redis for the cart when an address is set, memory otherwise.
func buildStores(cfg config.Config, log *logger.Logger) (app.Stores, func(), error) {
	var stores app.Stores
	closers := make([]func(), 0, 2)
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if dsn := strings.TrimSpace(cfg.Database.DSN); dsn != "" {
		db, err := sql.Open("postgres", dsn)
		if err != nil {
			return app.Stores{}, cleanup, fmt.Errorf("open postgres: %w", err)
		}
		if err := db.Ping(); err != nil {
			db.Close()
			return app.Stores{}, cleanup, fmt.Errorf("ping postgres: %w", err)
		}
		closers = append(closers, func() { db.Close() })

		pg := postgres.New(db)
		if err := pg.EnsureSchema(context.Background()); err != nil {
			return app.Stores{}, cleanup, fmt.Errorf("ensure schema: %w", err)
		}
		stores.Accounts = pg
		stores.Designs = pg
		stores.Cart = pg
		stores.Bookings = pg
		stores.Feedback = pg
		log.Info("postgres storage enabled")
	}

	if addr := strings.TrimSpace(cfg.Redis.Addr); addr != "" {
		cart, err := redisstore.NewCartStore(addr, cfg.Redis.TTL.Std())
		if err != nil {
			return app.Stores{}, cleanup, fmt.Errorf("connect redis: %w", err)
		}
		closers = append(closers, func() { cart.Close() })
		stores.Cart = cart
		log.WithField("addr", addr).Info("redis cart store enabled")
	}

	return stores, cleanup, nil
}

func buildHandler(cfg config.Config, application *app.Application, tokens []string, log *logger.Logger) (http.Handler, error) {
	sink, err := httpapi.NewFileAuditSink(cfg.Server.AuditLogPath)
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	trail := httpapi.NewAuditTrail(200, auditSinkOrNil(sink))

	mux := http.NewServeMux()
	mux.Handle("/", httpapi.NewHandler(application))
	mux.Handle("/audit", trail.Handler())

	var publicKey *rsa.PublicKey
	if path := strings.TrimSpace(cfg.Auth.PublicKeyPath); path != "" {
		publicKey, err = loadPublicKey(path)
		if err != nil {
			return nil, fmt.Errorf("load auth public key: %w", err)
		}
	}

	var handler http.Handler = mux
	handler = trail.Wrap(handler)
	if publicKey != nil {
		handler = httpapi.WrapWithAuth(handler, tokens, publicKey, cfg.Auth.SkipPaths)
	} else if len(tokens) > 0 {
		handler = httpapi.WrapWithAuth(handler, tokens, nil, cfg.Auth.SkipPaths)
	}
	if cfg.Server.RateLimitRPS > 0 {
		limiter := middleware.NewRateLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst, log)
		handler = limiter.Handler(handler)
	}
	if len(cfg.Server.AllowedOrigins) > 0 {
		handler = middleware.NewCORSMiddleware(cfg.Server.AllowedOrigins).Handler(handler)
	}
	handler = metrics.InstrumentHandler(handler)

	return handler, nil
}

// auditSinkOrNil avoids a typed-nil sink inside the trail.
func auditSinkOrNil(sink *httpapi.FileAuditSink) httpapi.AuditSink {
	if sink == nil {
		return nil
	}
	return sink
}

func loadPublicKey(path string) (*rsa.PublicKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("no PEM block in %s", path)
	}
	parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, err
	}
	key, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%s is not an RSA public key", path)
	}
	return key, nil
}

func tokenList(raw string) []string {
	if env := strings.TrimSpace(os.Getenv("SALON_API_TOKENS")); env != "" {
		raw = env
	}
	var tokens []string
	for _, token := range strings.Split(raw, ",") {
		if token = strings.TrimSpace(token); token != "" {
			tokens = append(tokens, token)
		}
	}
	return tokens
}
