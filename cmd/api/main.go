package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/example/ec-storefront/internal/api"
	"github.com/example/ec-storefront/internal/auth"
	"github.com/example/ec-storefront/internal/config"
	"github.com/example/ec-storefront/internal/domain/inventory"
	"github.com/example/ec-storefront/internal/domain/order"
	"github.com/example/ec-storefront/internal/domain/product"
	"github.com/example/ec-storefront/internal/infrastructure/cache"
	"github.com/example/ec-storefront/internal/infrastructure/kafka"
	"github.com/example/ec-storefront/internal/infrastructure/store"
)

const accessTokenTTL = 15 * time.Minute

func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.ValidateAPI(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Logger
	setupLogger(cfg.Env)
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Storage
	backend, err := store.Open(ctx, cfg, true)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.StoreBackend).Msg("Failed to open store")
	}
	defer backend.Close(context.Background())
	log.Info().Str("backend", backend.Name).Msg("Store ready")

	// 4. Optional order-number registry and event stream
	var opts []order.Option
	if cfg.Redis.Addr != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()
		opts = append(opts, order.WithNumberRegistry(cache.NewOrderNumberRegistry(rdb, cfg.Redis.ReservationTTL)))
		log.Info().Str("addr", cfg.Redis.Addr).Msg("Order number registry enabled")
	}
	if len(cfg.Kafka.Brokers) > 0 {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer producer.Close()
		opts = append(opts, order.WithPublisher(producer))
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("Event publishing enabled")
	}

	// 5. Services
	stock := inventory.NewAdjuster(backend.Products)
	orders := order.NewService(backend.Orders, stock, cfg.Checkout, opts...)
	catalog := product.NewCatalog(backend.Products)
	tokens := auth.NewTokenService(cfg.JWTSecret, accessTokenTTL)

	// 6. Router
	router := api.NewRouter(api.RouterConfig{
		Orders:  api.NewOrderHandlers(orders),
		Catalog: api.NewCatalogHandlers(catalog, stock),
		Tokens:  tokens,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// 7. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
