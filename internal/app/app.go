package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MrSnakeDoc/icebreaker/internal/auth"
	"github.com/MrSnakeDoc/icebreaker/internal/config"
	"github.com/MrSnakeDoc/icebreaker/internal/content"
	"github.com/MrSnakeDoc/icebreaker/internal/events"
	"github.com/MrSnakeDoc/icebreaker/internal/httpserver"
	"github.com/MrSnakeDoc/icebreaker/internal/httpserver/deps"
	"github.com/MrSnakeDoc/icebreaker/internal/logger"
	"github.com/MrSnakeDoc/icebreaker/internal/recommend"
	"github.com/MrSnakeDoc/icebreaker/internal/redis"
	"github.com/MrSnakeDoc/icebreaker/internal/scheduler"
	"github.com/MrSnakeDoc/icebreaker/internal/store"
	"github.com/MrSnakeDoc/icebreaker/internal/store/memory"
	redisstore "github.com/MrSnakeDoc/icebreaker/internal/store/redis"
	"github.com/MrSnakeDoc/icebreaker/internal/store/sqlite"
	"github.com/MrSnakeDoc/icebreaker/internal/utils"
	"github.com/MrSnakeDoc/icebreaker/internal/version"
)

type App struct {
	cfg    *config.Config
	logger logger.Logger
	server *httpserver.Server
	store  store.Store
	hub    *events.Hub
	seeder *scheduler.SeedReloader
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Open the store early - fail fast if unavailable
	st, err := openStore(context.Background(), cfg, loggerClient)
	if err != nil {
		loggerClient.Errorf("Failed to open %s store: %v", cfg.Store, err)
		os.Exit(1)
	}
	loggerClient.Info("content store initialized", logger.String("backend", st.Backend()))

	// Recommendations are optional
	var rec recommend.Recommender
	if cfg.GeminiAPIKey != "" {
		g, err := recommend.NewGemini(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel, loggerClient)
		if err != nil {
			loggerClient.Warn("recommendations disabled", logger.Error(err))
		} else {
			rec = g
			loggerClient.Info("recommendations enabled", logger.String("model", cfg.GeminiModel))
		}
	} else {
		loggerClient.Info("gemini api key not configured, recommendations disabled")
	}

	hub := events.NewHub(loggerClient, cfg.AllowedOrigins)
	svc := content.NewService(st, hub, rec, loggerClient)

	// Initialize seed reloader (if a seed file is configured)
	var seeder *scheduler.SeedReloader
	var reloadTrigger chan struct{}
	if cfg.SeedFile != "" {
		loggerClient.Info("seed file configured, initializing seed reloader",
			logger.String("file", cfg.SeedFile))
		reloadTrigger = make(chan struct{}, 1)
		seeder = scheduler.NewSeedReloader(
			cfg.SeedFile,
			svc,
			loggerClient,
			cfg.SeedReloadInterval,
			reloadTrigger,
		)
	} else {
		loggerClient.Info("seed file not configured, seeding disabled")
	}

	// Dependencies passed to routes (extend as needed).
	d := deps.Deps{
		Logger:          loggerClient,
		StartTime:       time.Now(),
		Version:         version.Version,
		Commit:          version.Commit,
		BuildDate:       version.BuildDate,
		GoVersion:       version.GoVersion,
		TimeNow:         time.Now,
		AllowedHosts:    cfg.AllowedHosts,
		AllowedCIDRS:    cfg.AllowedCIDRS,
		TrustProxy:      cfg.TrustProxy,
		RateLimitBurst:  cfg.RateLimitBurst,
		RateLimitPerMin: cfg.RateLimitPerMin,
		Store:           st,
		Content:         svc,
		Tokens:          tokenService(cfg),
		Hub:             hub,
		Seed:            seeder,
		ReloadTrigger:   reloadTrigger,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:    cfg,
		logger: loggerClient,
		server: server,
		store:  st,
		hub:    hub,
		seeder: seeder,
	}
}

// openStore connects the configured backend.
func openStore(ctx context.Context, cfg *config.Config, log logger.Logger) (store.Store, error) {
	switch cfg.Store {
	case config.StoreRedis:
		log.Infof("Connecting to Redis at %s", cfg.RedisAddr)
		client, err := redis.New(ctx, redis.ConnectOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			RedisDB:        cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
			WarnThreshold:  cfg.RedisWarnThreshold,
		}, log)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return redisstore.NewStore(client), nil
	case config.StoreSQLite:
		st, err := sqlite.Open(ctx, cfg.SQLitePath, log)
		if err != nil {
			return nil, err
		}
		return st, nil
	case config.StoreMemory:
		log.Warn("memory store selected, content is lost on restart")
		return memory.NewStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store)
	}
}

func tokenService(cfg *config.Config) auth.TokenService {
	return auth.TokenService{
		Secret:   []byte(cfg.JWTSecret),
		Issuer:   cfg.JWTIssuer,
		Duration: cfg.JWTTTL,
	}
}

// IssueToken signs an identity token with the configured secret. Used by the CLI to
// mint tokens for local clients and scripts.
func IssueToken(userID, username string, ttl time.Duration) (string, time.Time, error) {
	cfg := config.Load()
	ts := tokenService(cfg)
	if ttl > 0 {
		ts.Duration = ttl
	}
	return ts.Sign(auth.Identity{UserID: userID, Username: username})
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting Icebreaker v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("Icebreaker %s", version.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start seed reloader (applies the seed and starts periodic refresh)
	if a.seeder != nil {
		if err := a.seeder.Start(ctx); err != nil {
			return fmt.Errorf("failed to start seed reloader: %w", err)
		}
		a.logger.Info("seed reloader started",
			logger.Duration("interval", a.cfg.SeedReloadInterval))
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	// Stop seed reloader
	if a.seeder != nil {
		a.seeder.Stop()
	}

	// Websocket connections are hijacked and not covered by Shutdown
	a.hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if utils.CloseLogged(a.store, a.store.Backend()+" store", a.logger) {
		a.logger.Infof("✅ %s store closed cleanly", a.store.Backend())
	}

	a.logger.Info("✅ Icebreaker stopped cleanly")
	_ = a.logger.Sync()
	return nil
}
