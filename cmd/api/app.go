package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/scancart-backend/api/controllers"
	"github.com/angelmondragon/scancart-backend/api/routes"
	"github.com/angelmondragon/scancart-backend/internal/cart"
	"github.com/angelmondragon/scancart-backend/internal/catalog"
	"github.com/angelmondragon/scancart-backend/internal/persistence"
	"github.com/angelmondragon/scancart-backend/internal/scanner"
	"github.com/angelmondragon/scancart-backend/internal/session"
	"github.com/angelmondragon/scancart-backend/pkg/config"
	"github.com/angelmondragon/scancart-backend/pkg/db"
	"github.com/angelmondragon/scancart-backend/pkg/enums"
	"github.com/angelmondragon/scancart-backend/pkg/kafka"
	"github.com/angelmondragon/scancart-backend/pkg/logger"
	"github.com/angelmondragon/scancart-backend/pkg/metrics"
	"github.com/angelmondragon/scancart-backend/pkg/migrate"
	"github.com/angelmondragon/scancart-backend/pkg/openfoodfacts"
	"github.com/angelmondragon/scancart-backend/pkg/redis"
)

type app struct {
	router  http.Handler
	closers []func() error
}

func (a *app) onClose(fn func() error) {
	a.closers = append(a.closers, fn)
}

// close releases resources in reverse construction order: the session
// controller goes first so nothing mutates the cart while it drains.
func (a *app) close() error {
	var err error
	for i := len(a.closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, a.closers[i]())
	}
	a.closers = nil
	return err
}

func newApp(ctx context.Context, cfg *config.Config, logg *logger.Logger) (_ *app, err error) {
	a := &app{}
	defer func() {
		if err != nil {
			err = multierr.Append(err, a.close())
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	driver, err := enums.ParseStoreDriver(cfg.Store.Driver)
	if err != nil {
		return nil, err
	}
	ready := map[string]controllers.Pinger{}

	var redisClient *redis.Client
	if cfg.NeedsRedis() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return nil, fmt.Errorf("bootstrap redis: %w", err)
		}
		a.onClose(redisClient.Close)
		ready["redis"] = redisClient
	}

	blobs, err := newBlobStore(ctx, cfg, logg, driver, redisClient, a, ready)
	if err != nil {
		return nil, err
	}

	adapter, err := persistence.NewAdapter(blobs, cfg.Store.Key, logg)
	if err != nil {
		return nil, err
	}

	price, err := cfg.Cart.Price()
	if err != nil {
		return nil, err
	}

	var publisher cart.EventPublisher
	if cfg.Kafka.Enabled {
		producer, err := kafka.NewProducer(cfg.Kafka)
		if err != nil {
			return nil, fmt.Errorf("bootstrap kafka producer: %w", err)
		}
		a.onClose(producer.Close)
		publisher = producer
	}

	store, err := cart.NewStore(cart.Config{
		Key:       cfg.Store.Key,
		UnitPrice: price,
		Currency:  cfg.Cart.Currency,
		Initial:   adapter.Load(ctx),
		Persister: adapter,
		Publisher: publisher,
		Logger:    logg,
		Metrics:   metrics.NewCartMetrics(reg),
	})
	if err != nil {
		return nil, err
	}
	a.onClose(func() error {
		store.Close()
		return nil
	})

	offClient := openfoodfacts.NewClient(
		openfoodfacts.WithBaseURL(cfg.Catalog.BaseURL),
		openfoodfacts.WithUserAgent(cfg.Catalog.UserAgent),
		openfoodfacts.WithTimeout(cfg.Catalog.Timeout),
	)
	resolver, err := catalog.NewResolver(
		catalog.NewOpenFoodFactsOracle(offClient),
		catalog.SentinelsFor(cfg.Catalog.Locale),
		logg,
		metrics.NewCatalogMetrics(reg),
	)
	if err != nil {
		return nil, err
	}

	decoder, cue, err := newScanner(cfg, logg, redisClient)
	if err != nil {
		return nil, err
	}

	ctrl, err := session.NewController(session.Config{
		Decoder:   decoder,
		Cue:       cue,
		Resolver:  resolver,
		Cart:      store,
		Container: cfg.Scanner.Container,
		Logger:    logg,
		Metrics:   metrics.NewSessionMetrics(reg),
	})
	if err != nil {
		return nil, err
	}
	a.onClose(func() error {
		ctrl.Close()
		return nil
	})

	a.router = routes.NewRouter(cfg, logg, routes.Dependencies{
		Sessions:    ctrl,
		Cart:        store,
		Catalog:     resolver,
		Ready:       ready,
		Gatherer:    reg,
		HTTPMetrics: metrics.NewHTTPMetrics(reg),
	})
	return a, nil
}

func newBlobStore(
	ctx context.Context,
	cfg *config.Config,
	logg *logger.Logger,
	driver enums.StoreDriver,
	redisClient *redis.Client,
	a *app,
	ready map[string]controllers.Pinger,
) (persistence.BlobStore, error) {
	switch driver {
	case enums.StoreDriverMemory:
		logg.Warn(ctx, "memory cart store selected, cart will not survive restarts")
		return persistence.NewMemoryStore(), nil

	case enums.StoreDriverRedis:
		return persistence.NewRedisStore(redisClient)

	case enums.StoreDriverPostgres, enums.StoreDriverSQLite:
		dbClient, err := db.New(ctx, driver, cfg.DB, logg)
		if err != nil {
			return nil, fmt.Errorf("bootstrap database: %w", err)
		}
		a.onClose(dbClient.Close)
		ready["db"] = dbClient

		if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
			return nil, fmt.Errorf("dev migrations: %w", err)
		}
		return persistence.NewSQLStore(dbClient.DB())
	}
	return nil, fmt.Errorf("unsupported store driver %q", driver)
}

func newScanner(cfg *config.Config, logg *logger.Logger, redisClient *redis.Client) (scanner.Decoder, scanner.Cue, error) {
	if cfg.Scanner.Mode != config.ScannerModeBus {
		return scanner.NewClientDecoder(), scanner.NopCue{}, nil
	}

	decoder, err := scanner.NewBusDecoder(redisClient, cfg.Scanner.DeviceID, logg)
	if err != nil {
		return nil, nil, err
	}
	cue, err := scanner.NewBusCue(redisClient, cfg.Scanner.DeviceID)
	if err != nil {
		return nil, nil, err
	}
	return decoder, cue, nil
}
