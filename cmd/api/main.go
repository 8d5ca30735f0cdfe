package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/userapi/internal/cache"
	"github.com/geocoder89/userapi/internal/config"
	"github.com/geocoder89/userapi/internal/db"
	httpx "github.com/geocoder89/userapi/internal/http"
	"github.com/geocoder89/userapi/internal/http/handlers"
	"github.com/geocoder89/userapi/internal/observability"
	"github.com/geocoder89/userapi/internal/repo/memory"
	"github.com/geocoder89/userapi/internal/repo/postgres"
	"github.com/geocoder89/userapi/internal/repo/sqlstore"
	"github.com/geocoder89/userapi/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	// database/sql drivers
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// store is what both the service and the readiness check need from a backend.
type store interface {
	service.UsersStore
	handlers.Pinger
}

func main() {
	// Load the config set up
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// start up the observability logger
	log := observability.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := observability.InitTracer(ctx, observability.TracerConfig{
		ServiceName: cfg.OTelServiceName,
		Env:         cfg.Env,
		Endpoint:    cfg.OTelEndpoint,
		Insecure:    cfg.OTelInsecure,
		SampleRatio: cfg.OTelSampleRatio,
	})
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := config.WithTimeout(5 * time.Second)
		defer cancel()
		if err := shutdownTracer(sctx); err != nil {
			log.Warn("tracer shutdown failed", "err", err)
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	prom := observability.NewProm(reg)

	users, closeStore, err := openStore(ctx, cfg.DB, prom, log)
	if err != nil {
		return err
	}
	defer closeStore()

	var usersCache cache.Cache
	if cfg.Redis.Enabled() {
		rc := cache.NewRedis(cache.RedisConfig{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rc.Close()

		pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := rc.Ping(pctx)
		cancel()
		if err != nil {
			// readiness reports it; requests fail until redis is back
			log.Warn("redis not reachable at startup", "addr", cfg.Redis.Addr(), "err", err)
		}
		usersCache = rc
	} else {
		log.Info("REDIS_HOST not set, using in-process cache")
		usersCache = cache.NewMemory()
	}

	svc := service.NewUsersService(users, usersCache, cfg.UsersCacheTTL).WithMetrics(prom)

	// set up routers with the log
	router := httpx.NewRouter(log, svc, httpx.RouterOptions{
		Env:                cfg.Env,
		ServiceName:        cfg.OTelServiceName,
		MaxBodyBytes:       cfg.MaxBodyBytes,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Prom:               prom,
		Gatherer:           reg,
		Ready:              map[string]handlers.Pinger{"db": users, "cache": usersCache},
	})

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env, "db", cfg.DB.Type)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		log.Info("server shutting down")

		sctx, cancel := config.WithTimeout(10 * time.Second)
		defer cancel()

		if err := srv.Shutdown(sctx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}

		log.Info("shutdown complete")
		return nil
	})

	return g.Wait()
}

// openStore picks the users backend from DB_TYPE (and DB_DRIVER for postgres) and
// runs migrations first when DB_SYNC is set.
func openStore(ctx context.Context, cfg config.DBConfig, prom *observability.Prom, log *slog.Logger) (store, func(), error) {
	if cfg.Type == config.DBMemory {
		log.Warn("DB_TYPE=memory, users are not persisted")
		return memory.NewUsersRepo(), func() {}, nil
	}

	dsn, err := db.DSN(cfg)
	if err != nil {
		return nil, nil, err
	}

	if cfg.Sync {
		if err := db.Migrate(cfg.Type, dsn, log); err != nil {
			return nil, nil, err
		}
	}

	if cfg.UsesPgx() {
		pool, err := db.NewPool(ctx, dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("db connect: %w", err)
		}
		return postgres.NewUsersRepo(pool, prom), pool.Close, nil
	}

	// DB_DRIVER=pq, mysql and sqlite3 share the database/sql store; driver names match DB_TYPE
	sqldb, err := db.OpenSQL(ctx, cfg.Type, dsn)
	if err != nil {
		return nil, nil, err
	}

	repo, err := sqlstore.NewUsersRepo(sqldb, sqlstore.Dialect(cfg.Type), prom)
	if err != nil {
		_ = sqldb.Close()
		return nil, nil, err
	}

	return repo, closeDB(sqldb, log), nil
}

func closeDB(sqldb *sql.DB, log *slog.Logger) func() {
	return func() {
		if err := sqldb.Close(); err != nil {
			log.Warn("close db", "err", err)
		}
	}
}
