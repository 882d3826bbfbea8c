package daemon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/lifeio/lifeio/internal/api"
	"github.com/lifeio/lifeio/internal/app/activity"
	"github.com/lifeio/lifeio/internal/app/engagement"
	"github.com/lifeio/lifeio/internal/app/finance"
	"github.com/lifeio/lifeio/internal/app/sleep"
	"github.com/lifeio/lifeio/internal/app/stats"
	"github.com/lifeio/lifeio/internal/domain"
	"github.com/lifeio/lifeio/internal/health"
	"github.com/lifeio/lifeio/internal/infra/events"
	"github.com/lifeio/lifeio/internal/infra/postgres"
	"github.com/lifeio/lifeio/internal/infra/sqlite"
	"github.com/lifeio/lifeio/internal/infra/userlock"
	"github.com/lifeio/lifeio/internal/logger"
	"github.com/lifeio/lifeio/internal/security"
)

// Daemon is the core LifeIO runtime. It wires together all services.
type Daemon struct {
	Config Config
	Log    zerolog.Logger

	Store    domain.Store
	Elevated domain.CategoryStore // nil unless database.admin_dsn is set
	Locker   userlock.Locker
	Events   events.Publisher

	Activities *activity.Service
	Stats      *stats.Service
	Sleep      *sleep.Service
	Finance    *finance.Service

	Health *health.Checker
	Server *api.Server

	closers []func() error
	cancel  context.CancelFunc
}

// New creates and initializes a Daemon with all services wired.
func New() (*Daemon, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return NewWithConfig(cfg)
}

// NewWithConfig creates a Daemon with the given configuration.
func NewWithConfig(cfg Config) (*Daemon, error) {
	d := &Daemon{
		Config: cfg,
		Log:    logger.Init(cfg.Logging.Level, cfg.Logging.Format, os.Stderr),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := d.openStore(ctx); err != nil {
		d.Close()
		return nil, err
	}
	if err := d.openLocker(ctx); err != nil {
		d.Close()
		return nil, err
	}
	d.openEvents()

	loc, err := cfg.Location()
	if err != nil {
		d.Close()
		return nil, err
	}

	// Application services
	resolver := engagement.NewMultiplierResolver(d.Store, d.Elevated, d.Log)
	d.Activities = activity.NewService(d.Store, resolver, d.Locker, d.Events, d.Log)
	d.Stats = stats.NewService(d.Store, loc)
	d.Sleep = sleep.NewService(d.Store, d.Log)
	d.Finance = finance.NewService(d.Store, d.Log)

	// Health checker
	checks := []health.Check{health.PingCheck("store", d.Store)}
	if cfg.Database.Driver == "sqlite" {
		checks = append(checks, health.DataDirCheck(d.dataDir()))
	}
	if rl, ok := d.Locker.(*redisLock); ok {
		checks = append(checks, health.Check{Name: "redis", CheckFn: rl.ping})
	}
	d.Health = health.NewChecker(parseDuration(cfg.Telemetry.HealthInterval, 30*time.Second), d.Log, checks...)

	// API server
	srv := api.NewServer(api.Services{
		Activities: d.Activities,
		Stats:      d.Stats,
		Sleep:      d.Sleep,
		Finance:    d.Finance,
	}, security.NewHS256Verifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.Audience), d.Log)
	srv.SetHealth(d.Health)
	srv.SetCORSOrigins(cfg.API.CORSOrigins)
	srv.SetRateLimit(cfg.API.RateLimit, parseDuration(cfg.API.RateWindow, time.Minute))
	srv.SetCookieName(cfg.Auth.CookieName)
	srv.SetAllowedEmail(cfg.Auth.AllowedEmail)

	// Enable Prometheus /metrics if configured
	if cfg.Telemetry.Prometheus {
		srv.EnableMetrics()
	}
	d.Server = srv

	return d, nil
}

func (d *Daemon) dataDir() string {
	if d.Config.Database.Dir != "" {
		return d.Config.Database.Dir
	}
	return lifeioHome()
}

// openStore opens the primary store and, for postgres with an admin DSN,
// the elevated category store.
func (d *Daemon) openStore(ctx context.Context) error {
	db := d.Config.Database
	switch db.Driver {
	case "postgres":
		pool, err := postgres.Connect(ctx, db.DSN)
		if err != nil {
			return fmt.Errorf("open postgres: %w", err)
		}
		store := postgres.New(pool)
		d.Store = store
		d.closers = append(d.closers, store.Close)

		migratePool := pool
		if db.AdminDSN != "" {
			admin, err := postgres.Connect(ctx, db.AdminDSN)
			if err != nil {
				return fmt.Errorf("open elevated postgres: %w", err)
			}
			elevated := postgres.NewElevated(admin)
			d.Elevated = elevated
			d.closers = append(d.closers, elevated.Close)
			migratePool = admin
		}
		if err := postgres.Migrate(ctx, migratePool); err != nil {
			return fmt.Errorf("migrate postgres: %w", err)
		}
		d.Log.Info().Bool("elevated", d.Elevated != nil).Msg("postgres store ready")

	default:
		store, err := sqlite.Open(d.dataDir())
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		d.Store = store
		d.closers = append(d.closers, store.Close)
		d.Log.Info().Str("dir", d.dataDir()).Msg("sqlite store ready")
	}
	return nil
}

// redisLock pairs the Redis locker with its client for health checks.
type redisLock struct {
	*userlock.RedisLocker
	client *redis.Client
}

func (r *redisLock) ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (d *Daemon) openLocker(ctx context.Context) error {
	lc := d.Config.Lock
	if lc.RedisAddr == "" {
		d.Locker = userlock.NewKeyedMutex()
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     lc.RedisAddr,
		Password: lc.RedisPassword,
		DB:       lc.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return fmt.Errorf("connect redis %s: %w", lc.RedisAddr, err)
	}
	d.closers = append(d.closers, client.Close)
	d.Locker = &redisLock{
		RedisLocker: userlock.NewRedisLocker(client,
			parseDuration(lc.TTL, 10*time.Second),
			parseDuration(lc.Wait, 5*time.Second)),
		client: client,
	}
	d.Log.Info().Str("addr", lc.RedisAddr).Msg("redis user lock enabled")
	return nil
}

func (d *Daemon) openEvents() {
	ec := d.Config.Events
	if len(ec.Brokers) == 0 {
		d.Events = events.Nop{}
		return
	}
	pub := events.NewKafkaPublisher(ec.Brokers, ec.Topic)
	d.Events = pub
	d.closers = append(d.closers, pub.Close)
	d.Log.Info().Strs("brokers", ec.Brokers).Str("topic", ec.Topic).Msg("kafka events enabled")
}

// Serve starts the HTTP server and blocks until shutdown.
func (d *Daemon) Serve(ctx context.Context) error {
	if d.Config.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret (or LIFEIO_JWT_SECRET) is required to serve")
	}

	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	// Health checker (always runs)
	go d.Health.Run(ctx)

	addr := fmt.Sprintf("%s:%d", d.Config.API.Host, d.Config.API.Port)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           d.Server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	// Graceful shutdown on signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			d.Log.Info().Str("signal", sig.String()).Msg("shutting down")
		case <-ctx.Done():
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		_ = httpServer.Shutdown(shutdownCtx)
		cancel()
	}()

	d.Log.Info().Str("addr", "http://"+addr).Bool("metrics", d.Config.Telemetry.Prometheus).Msg("LifeIO serving")

	if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close shuts down all daemon resources in reverse open order.
func (d *Daemon) Close() {
	if d.cancel != nil {
		d.cancel()
	}
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			d.Log.Warn().Err(err).Msg("close")
		}
	}
	d.closers = nil
}
