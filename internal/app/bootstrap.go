// Package app is the composition root: it wires config, storage
// backend, token issuer and Service into a running HTTP server.
// Grounded on the teacher's internal/app/bootstrap.go, trimmed from
// module-oriented DI (modules.Module, River workers, ent) down to the
// single Service this domain needs.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"kv-shepherd.io/shepherd/internal/api/handlers"
	"kv-shepherd.io/shepherd/internal/config"
	"kv-shepherd.io/shepherd/internal/infrastructure"
	"kv-shepherd.io/shepherd/internal/integrations"
	"kv-shepherd.io/shepherd/internal/service"
	"kv-shepherd.io/shepherd/internal/storage"
	"kv-shepherd.io/shepherd/internal/storage/memory"
	"kv-shepherd.io/shepherd/internal/storage/sqlstore"
	"kv-shepherd.io/shepherd/internal/storage/widecolumn"
	"kv-shepherd.io/shepherd/internal/token"
)

// Application holds every composed dependency the running process
// needs to serve requests and to shut down cleanly.
type Application struct {
	Config  *config.Config
	Router  *gin.Engine
	Service *service.Service

	pool *pgxpool.Pool
	rdb  *redis.Client
}

// Bootstrap builds the storage backend named by cfg.Backend.Kind,
// wires the Service and HTTP router atop it, and returns a ready
// Application. Callers run a.Router behind an http.Server and call
// a.Shutdown when the process exits.
func Bootstrap(ctx context.Context, cfg *config.Config) (*Application, error) {
	triple, pool, rdb, err := newBackend(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init storage backend: %w", err)
	}
	app := &Application{pool: pool, rdb: rdb}

	revocation := token.NewMemoryRevocationStore()
	issuer := token.NewIssuer(token.Config{
		SigningKey: []byte(cfg.Security.TokenSigningKey),
		Issuer:     "voting-service",
		AccessTTL:  cfg.Security.AccessTokenTTL,
		RefreshTTL: cfg.Security.RefreshTokenTTL,
	}, revocation)

	clock := integrations.Clock(integrations.SystemClock{})
	ids := integrations.UniqueIDGenerator(integrations.UUIDGenerator{})
	if cfg.Seed.DeterministicIDs {
		ids = integrations.NewDeterministicIDGenerator("seed")
	}
	if cfg.Seed.FixedClock != "" {
		t, err := time.Parse(time.RFC3339, cfg.Seed.FixedClock)
		if err != nil {
			return nil, fmt.Errorf("parse seed.fixed_clock: %w", err)
		}
		clock = integrations.NewFixedClock(t)
	}

	svc := service.New(service.Deps{
		Storage:   triple,
		Clock:     clock,
		IDs:       ids,
		Passwords: &integrations.BcryptPasswordUtil{Cost: cfg.Security.BcryptCost},
		Notify:    integrations.NewZapNotifications(),
		Tokens:    issuer,
	})

	server := handlers.NewServer(handlers.Deps{Service: svc, Ping: app.ping})

	app.Config = cfg
	app.Router = newRouter(cfg, server, issuer)
	app.Service = svc
	return app, nil
}

// newBackend constructs the storage.Triple named by cfg.Backend.Kind,
// along with whichever connection (pgxpool.Pool or redis.Client) backs
// it, so the caller can ping it for readiness and close it on shutdown.
func newBackend(ctx context.Context, cfg *config.Config) (storage.Triple, *pgxpool.Pool, *redis.Client, error) {
	switch cfg.Backend.Kind {
	case storage.BackendSQL:
		pool, err := infrastructure.NewPool(ctx, cfg.Database)
		if err != nil {
			return storage.Triple{}, nil, nil, err
		}
		store := sqlstore.New(pool)
		if cfg.Database.AutoMigrate {
			if err := store.Migrate(ctx); err != nil {
				pool.Close()
				return storage.Triple{}, nil, nil, fmt.Errorf("migrate schema: %w", err)
			}
		}
		return store.Triple(), pool, nil, nil

	case storage.BackendWideColumn:
		rdb := redis.NewClient(&redis.Options{Addr: cfg.WideColumn.Endpoint})
		store := widecolumn.New(rdb)
		if err := store.Ping(ctx); err != nil {
			rdb.Close()
			return storage.Triple{}, nil, nil, err
		}
		return store.Triple(), nil, rdb, nil

	default:
		return memory.New().Triple(), nil, nil, nil
	}
}

// ping backs the readiness endpoint with whichever connection the
// active backend opened, if any.
func (a *Application) ping(ctx context.Context) error {
	if a.pool != nil {
		return a.pool.Ping(ctx)
	}
	if a.rdb != nil {
		return a.rdb.Ping(ctx).Err()
	}
	return nil
}
