package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nape-ntsoane/trax/internal/config"
	"github.com/nape-ntsoane/trax/internal/httpapi"
	"github.com/nape-ntsoane/trax/internal/store"
	"github.com/nape-ntsoane/trax/internal/store/memory"
	"github.com/nape-ntsoane/trax/internal/store/postgres"
	"github.com/nape-ntsoane/trax/internal/telemetry"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	cfg := config.LoadServer()
	shutdownTelemetry := telemetry.Setup(context.Background(), telemetry.Options{
		Service:     "trax-api",
		Environment: cfg.Env,
		Endpoint:    cfg.OTLPEndpoint,
		Insecure:    cfg.OTLPInsecure,
	})
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTelemetry(ctx)
	}()

	var st store.Store
	if cfg.DatabaseURL == "" {
		log.Printf("DB_DSN not set, using in-memory store")
		st = memory.New()
	} else {
		pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("db connect: %v", err)
		}
		defer pool.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err = postgres.Migrate(ctx, pool)
		cancel()
		if err != nil {
			log.Fatalf("db migrate: %v", err)
		}
		st = postgres.NewStore(pool)
	}

	handler := httpapi.NewHandler(st, httpapi.Options{TokenTTL: cfg.TokenTTL})
	limiter := httpapi.NewRateLimiter(httpapi.RateLimitConfig{
		ReadPerMinute:  cfg.ReadRatePerMinute,
		ReadBurst:      cfg.ReadRateBurst,
		WritePerMinute: cfg.WriteRatePerMinute,
		WriteBurst:     cfg.WriteRateBurst,
	})

	otelHandler := otelhttp.NewHandler(httpapi.LoggingMiddleware(limiter.Middleware(handler.Routes(cfg.Prefix))), "trax-api")
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      otelHandler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("trax-api listening on %s%s", server.Addr, cfg.Prefix)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
