// Package storage picks the document store behind the app's ports.
package storage

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"elitestay/internal/domain"
	"elitestay/internal/shared"
	mongostore "elitestay/internal/storage/mongo"
	mysqlrepo "elitestay/internal/storage/mysql"
)

// Store is everything the API and seeder need from the document store.
type Store interface {
	domain.PropertyStore
	domain.PropertyWriter
	domain.BookingStore
	domain.UserStore
}

// Open connects to the store selected by STORE_DRIVER. The returned func
// releases the connection.
func Open(ctx context.Context, cfg shared.Config) (Store, func(), error) {
	switch cfg.StoreDriver {
	case "mysql":
		db, err := mysqlrepo.Open(ctx, cfg.MySQLDSN)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("driver", "mysql").Msg("database connection ok")
		return mysqlrepo.New(db), func() { _ = db.Close() }, nil
	case "mongo":
		c, err := mongostore.Connect(ctx, cfg.MongoURI)
		if err != nil {
			return nil, nil, err
		}
		repo := mongostore.New(c.Database(cfg.MongoDB))
		if err := repo.EnsureIndexes(ctx); err != nil {
			_ = c.Disconnect(ctx)
			return nil, nil, err
		}
		log.Info().Str("driver", "mongo").Str("db", cfg.MongoDB).Msg("database connection ok")
		return repo, func() { _ = c.Disconnect(context.Background()) }, nil
	default:
		return nil, nil, fmt.Errorf("unknown STORE_DRIVER %q (want mysql or mongo)", cfg.StoreDriver)
	}
}
