package main

import (
	"flag"

	"github.com/rs/zerolog/log"

	"elitestay/internal/adapters/observability"
	"elitestay/internal/shared"
	mysqlrepo "elitestay/internal/storage/mysql"
)

func main() {
	action := flag.String("action", "up", "up | down | step-up | drop")
	flag.Parse()

	cfg := shared.Load()
	log.Logger = observability.NewLogger(cfg.AppEnv)

	if cfg.StoreDriver != "mysql" {
		log.Info().Str("store", cfg.StoreDriver).Msg("no schema migrations for this store")
		return
	}
	if err := mysqlrepo.Migrate(cfg.MySQLDSN, cfg.MigrationsDir, *action); err != nil {
		log.Fatal().Err(err).Str("action", *action).Msg("migration failed")
	}
}
