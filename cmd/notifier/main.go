package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/example/ec-storefront/internal/config"
	"github.com/example/ec-storefront/internal/email"
	"github.com/example/ec-storefront/internal/infrastructure/kafka"
	"github.com/example/ec-storefront/internal/infrastructure/store"
	"github.com/example/ec-storefront/internal/notification"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	setupLogger(cfg.Env)

	if len(cfg.Kafka.Brokers) == 0 {
		log.Fatal().Msg("KAFKA_BROKERS is required for the notifier")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// The store is only used to find an address for events that carry none.
	backend, err := store.Open(ctx, cfg, false)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.StoreBackend).Msg("Failed to open store")
	}
	defer backend.Close(context.Background())

	mailer := email.NewService(cfg.SMTP.Host, strconv.Itoa(cfg.SMTP.Port), cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From)
	handler := notification.NewHandler(mailer, backend.Orders)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.GroupID)
	defer consumer.Close()

	log.Info().
		Strs("brokers", cfg.Kafka.Brokers).
		Str("topic", cfg.Kafka.Topic).
		Str("group", cfg.Kafka.GroupID).
		Str("smtp", fmt.Sprintf("%s:%d", cfg.SMTP.Host, cfg.SMTP.Port)).
		Msg("Notifier started")

	if err := consumer.Consume(ctx, handler.HandleEvent); err != nil && ctx.Err() == nil {
		log.Error().Err(err).Msg("Consumer stopped")
	}
	log.Info().Msg("Notifier exited")
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
