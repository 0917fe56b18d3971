package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/example/ec-storefront/internal/config"
	"github.com/example/ec-storefront/internal/domain/product"
	"github.com/example/ec-storefront/internal/infrastructure/store"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run imports the products and writes the JSON report to stdout. Logs go
// to stderr so the report can be piped. It returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("importer", flag.ContinueOnError)
	flags.SetOutput(stderr)
	file := flags.String("file", "", "path to a JSON array of products")
	vendor := flags.String("vendor", "", "vendor id applied to records that have none")
	if err := flags.Parse(args); err != nil {
		return 2
	}
	if *file == "" {
		fmt.Fprintln(stderr, "usage: importer -file products.json [-vendor id]")
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "failed to load configuration: %v\n", err)
		return 1
	}
	setupLogger(cfg.Env, stderr)

	records, err := readRecords(*file, *vendor)
	if err != nil {
		log.Error().Err(err).Str("file", *file).Msg("Failed to read import file")
		return 1
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	backend, err := store.Open(ctx, cfg, true)
	if err != nil {
		log.Error().Err(err).Str("backend", cfg.StoreBackend).Msg("Failed to open store")
		return 1
	}
	defer func() {
		if err := backend.Close(context.Background()); err != nil {
			log.Warn().Err(err).Msg("Failed to close store")
		}
	}()
	if backend.Name == config.BackendMemory {
		log.Warn().Msg("STORE_BACKEND is memory, imported products are discarded on exit")
	}

	report, err := product.NewCatalog(backend.Products).Import(ctx, records)
	if err != nil {
		log.Error().Err(err).Msg("Import aborted")
		return 1
	}
	for _, f := range report.Failed {
		fmt.Fprintln(stderr, "skipped", f)
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		log.Error().Err(err).Msg("Failed to write report")
		return 1
	}

	if len(report.Failed) > 0 {
		return 1
	}
	return 0
}

func readRecords(path, vendor string) ([]product.ImportRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var records []product.ImportRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	for i := range records {
		if records[i].VendorID == "" {
			records[i].VendorID = vendor
		}
	}
	return records, nil
}

func setupLogger(env string, w io.Writer) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
}
