package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/tablewave/reserve-server/internal/config"
	"github.com/tablewave/reserve-server/internal/store"
)

// openStore selects the store driver from config.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Driver {
	case "postgres", "":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	case "sqlite":
		return store.NewSQLite(cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
