package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"

	"github.com/rs/zerolog/log"

	"elitestay/internal/adapters/observability"
	"elitestay/internal/app"
	"elitestay/internal/shared"
	"elitestay/internal/storage"
)

func main() {
	file := flag.String("file", "fixtures/properties.json", "JSON array of property fixtures")
	flag.Parse()

	ctx := context.Background()
	cfg := shared.Load()
	log.Logger = observability.NewLogger(cfg.AppEnv)

	log.Info().
		Str("file", *file).
		Str("store", cfg.StoreDriver).
		Int("workers", cfg.SeedWorkers).
		Msg("seeder starting")

	b, err := os.ReadFile(*file)
	if err != nil {
		log.Fatal().Err(err).Msg("read fixtures failed")
	}
	var raws []map[string]any
	if err := json.Unmarshal(b, &raws); err != nil {
		log.Fatal().Err(err).Msg("fixtures must be a JSON array of objects")
	}

	store, closeStore, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("store connection failed")
	}
	defer closeStore()

	rep, err := app.NewSeedService(store, cfg.SeedWorkers).Seed(ctx, raws)
	if err != nil {
		log.Fatal().Err(err).Msg("seeding aborted")
	}
	log.Info().
		Int("written", rep.Written).
		Int("skipped", rep.Skipped).
		Int("duplicates", rep.Duplicates).
		Int("failed", rep.Failed).
		Msg("seeding completed")
	if rep.Failed > 0 {
		os.Exit(1)
	}
}
