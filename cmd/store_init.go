package main

import (
	"context"
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/fieldrep-cli/internal/store"
	"github.com/sells-group/fieldrep-cli/pkg/routing"
)

// initStore opens the configured backend and runs migrations.
func initStore(ctx context.Context) (store.Store, error) {
	if err := cfg.Validate("store"); err != nil {
		return nil, err
	}

	var st store.Store
	var err error
	switch cfg.Store.Driver {
	case "sqlite":
		st, err = store.NewSQLite(cfg.Store.SQLitePath)
	case "postgres":
		st, err = store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		err = eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}
	return st, nil
}

// initProvider builds the OSRM routing client from config.
func initProvider() (*routing.OSRMClient, error) {
	if err := cfg.Validate("plan"); err != nil {
		return nil, err
	}

	burst := int(cfg.Routing.GeocodeRPS)
	if burst < 1 {
		burst = 1
	}
	return routing.NewOSRM(
		routing.WithBaseURL(cfg.Routing.OSRMBaseURL),
		routing.WithNominatimBaseURL(cfg.Routing.NominatimBaseURL),
		routing.WithUserAgent(cfg.Routing.UserAgent),
		routing.WithGeocodeRate(cfg.Routing.GeocodeRPS, burst),
		routing.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.Routing.TimeoutSecs) * time.Second}),
	), nil
}
