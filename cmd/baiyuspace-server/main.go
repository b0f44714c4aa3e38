package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	baiyuspace "github.com/baiyuheniao/BaiyuSpace"
	"github.com/baiyuheniao/BaiyuSpace/config"
	"github.com/baiyuheniao/BaiyuSpace/httpapi"
	"github.com/baiyuheniao/BaiyuSpace/jwt"
	"github.com/baiyuheniao/BaiyuSpace/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := newLogger(cfg.App.Development())
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	secret := cfg.JWT.Secret
	if secret == "" {
		// Development convenience only; Validate rejects this in production.
		secret = randomSecret()
		logger.Warn("BAIYU_JWT_SECRET not set, generated an ephemeral secret; tokens will not survive restarts")
	}

	users, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	var opts []baiyuspace.Option
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		opts = append(opts, baiyuspace.WithLoginThrottle(rdb, baiyuspace.ThrottleConfig{
			MaxAttempts:  cfg.Throttle.MaxAttempts,
			Window:       cfg.Throttle.Window,
			ThrottleByIP: cfg.Throttle.ByIP,
		}))
		logger.Info("login throttling enabled",
			zap.String("redis", cfg.Redis.Addr),
			zap.Int("max_attempts", cfg.Throttle.MaxAttempts),
			zap.Duration("window", cfg.Throttle.Window))
	}

	engine, err := baiyuspace.NewEngine(baiyuspace.Config{
		Token: jwt.Config{
			Secret:    []byte(secret),
			AccessTTL: cfg.JWT.AccessTTL,
			Issuer:    cfg.JWT.Issuer,
		},
	}, users, opts...)
	if err != nil {
		return err
	}

	if cfg.App.SeedDemoUsers && cfg.App.Development() {
		if err := seedDemoUsers(ctx, engine, users, logger); err != nil {
			return err
		}
	}

	api := httpapi.NewServer(engine,
		httpapi.WithLogger(logger),
		httpapi.WithDevMode(cfg.App.Development()),
	)

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      api.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Server.Addr), zap.String("environment", cfg.App.Environment))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openStore selects Postgres when a DSN is configured and falls back to
// the in-memory store otherwise.
func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (store.Users, func(), error) {
	if cfg.Database.DSN == "" {
		logger.Info("using in-memory user store")
		return store.NewMemory(), func() {}, nil
	}

	pool, err := pgxpool.New(ctx, cfg.Database.DSN)
	if err != nil {
		return nil, nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}

	pg := store.NewPostgres(pool)
	if err := pg.Migrate(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}

	logger.Info("connected to postgres")
	return pg, pool.Close, nil
}

// seedDemoUsers creates the two well-known development accounts. Both
// use the password "password". Existing accounts are left alone.
func seedDemoUsers(ctx context.Context, engine *baiyuspace.Engine, users store.Users, logger *zap.Logger) error {
	hash, err := engine.Hasher().Hash("password")
	if err != nil {
		return err
	}

	seeds := []store.User{
		{Username: "admin", Email: "admin@example.com", PasswordHash: hash, Role: "admin"},
		{Username: "user", Email: "user@example.com", PasswordHash: hash, Role: "user"},
	}
	for i := range seeds {
		if _, err := users.Create(ctx, &seeds[i]); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				continue
			}
			return err
		}
		logger.Info("seeded demo user", zap.String("username", seeds[i].Username), zap.String("role", seeds[i].Role))
	}
	return nil
}

func newLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func randomSecret() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		log.Fatalf("generate secret: %v", err)
	}
	return hex.EncodeToString(buf)
}
