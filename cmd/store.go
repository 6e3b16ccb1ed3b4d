package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/pos-catalog/internal/fetcher"
	"github.com/sells-group/pos-catalog/internal/osm"
	"github.com/sells-group/pos-catalog/internal/pos"
	"github.com/sells-group/pos-catalog/internal/store"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		return store.NewSQLite(cfg.Store.DatabaseURL)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// catalogEnv bundles the store and the service built on it.
type catalogEnv struct {
	Store   store.Store
	Service *pos.Service
}

func (e *catalogEnv) Close() {
	_ = e.Store.Close()
}

// initCatalog opens and migrates the store and wires the OSM client.
func initCatalog(ctx context.Context) (*catalogEnv, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "init store")
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{UserAgent: cfg.OSM.UserAgent})
	var opts []osm.ClientOption
	if cfg.OSM.BreakerThreshold > 0 {
		opts = append(opts, osm.WithBreaker(osm.NewBreaker(cfg.OSM.BreakerThreshold, cfg.OSM.BreakerResetSecs)))
	}
	client := osm.NewHTTPClient(f, cfg.OSM.BaseURL, opts...)

	return &catalogEnv{
		Store:   st,
		Service: pos.NewService(st, client, pos.WithFetchTimeout(cfg.OSM.Timeout())),
	}, nil
}
