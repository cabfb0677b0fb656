package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/webclipper/internal/backend"
	"github.com/MrSnakeDoc/webclipper/internal/browser"
	"github.com/MrSnakeDoc/webclipper/internal/browser/playwright"
	"github.com/MrSnakeDoc/webclipper/internal/config"
	"github.com/MrSnakeDoc/webclipper/internal/coordinator"
	"github.com/MrSnakeDoc/webclipper/internal/extension"
	"github.com/MrSnakeDoc/webclipper/internal/extension/builtin"
	"github.com/MrSnakeDoc/webclipper/internal/httpserver"
	"github.com/MrSnakeDoc/webclipper/internal/httpserver/deps"
	"github.com/MrSnakeDoc/webclipper/internal/logger"
	"github.com/MrSnakeDoc/webclipper/internal/notify"
	"github.com/MrSnakeDoc/webclipper/internal/redis"
	"github.com/MrSnakeDoc/webclipper/internal/scheduler"
	"github.com/MrSnakeDoc/webclipper/internal/state"
	redisstore "github.com/MrSnakeDoc/webclipper/internal/store/redis"
	"github.com/MrSnakeDoc/webclipper/internal/utils"
	"github.com/MrSnakeDoc/webclipper/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	session     *playwright.Session
	reloader    *scheduler.ManifestReloader
	coordinator *coordinator.Coordinator
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Initialize Redis early - fail fast if unavailable
	loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
	redisClient, err := redis.Connect(context.Background(), redis.ConnectOptions{
		Addr:           cfg.RedisAddr,
		User:           cfg.RedisUser,
		Password:       cfg.RedisPassword,
		DB:             cfg.RedisDB,
		DialTimeout:    cfg.RedisDT,
		ReadTimeout:    cfg.RedisRT,
		WriteTimeout:   cfg.RedisWT,
		PoolSize:       cfg.RedisPoolSize,
		ConnectTimeout: cfg.RedisConnectTimeout,
		RetryInterval:  cfg.RedisRetryInterval,
		MaxWait:        cfg.RedisMaxWait,
		PingTimeout:    cfg.RedisPingTimeout,
		WarnThreshold:  cfg.RedisWarnThreshold,
	}, loggerClient)
	if err != nil {
		loggerClient.Errorf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	loggerClient.Info("Redis initialized successfully")

	store := redisstore.NewStore(redisClient)
	appState := state.New()

	// Preferences survive restarts; accounts and toggles come back from Redis.
	syncer := scheduler.NewPreferenceSyncer(store, appState, loggerClient)
	if err := syncer.Sync(context.Background()); err != nil {
		loggerClient.Warn("failed to load preferences from redis, starting with defaults",
			logger.Error(err))
	}

	registry := extension.NewRegistry(loggerClient)
	registry.MustRegister(builtin.All(cfg.TrustedImageOrigin)...)

	reloadTrigger := make(chan struct{}, 1)
	reloader := scheduler.NewManifestReloader(
		cfg.ManifestFile,
		registry,
		appState,
		loggerClient,
		cfg.ReloadInterval,
		reloadTrigger,
	)
	if cfg.ManifestWatch && cfg.ManifestFile != "" {
		reloader.WatchFile(cfg.ManifestFile)
	}

	hub := notify.NewHub(loggerClient, cfg.NotifyCapacity)

	var tab browser.Tab = browser.Detached{}
	var session *playwright.Session
	if cfg.BrowserEnabled {
		session, err = playwright.Start(playwright.Options{
			Headless: cfg.BrowserHeadless,
			Install:  cfg.BrowserInstall,
			Timeout:  cfg.BrowserTimeout,
			Width:    cfg.BrowserWidth,
			Height:   cfg.BrowserHeight,
		}, loggerClient)
		if err != nil {
			loggerClient.Errorf("Failed to start browser: %v", err)
			utils.CloseLogged(redisClient, "redis", loggerClient)
			os.Exit(1)
		}
		tab = session
		loggerClient.Info("browser session started",
			logger.Bool("headless", cfg.BrowserHeadless))
	} else {
		loggerClient.Info("browser disabled, page actions will report no active tab")
	}

	services := backend.NewFactory(&http.Client{Timeout: cfg.ServiceTimeout})
	orchestrator := extension.NewOrchestrator(appState, tab, services, hub, loggerClient)

	coord := coordinator.New(coordinator.Deps{
		Storage:    store,
		Services:   services,
		State:      appState,
		Tab:        tab,
		Extensions: registry,
		Runner:     orchestrator,
		Message:    hub,
		Logger:     loggerClient,
		QueueSize:  cfg.QueueSize,
	})

	// Dependencies passed to routes (extend as needed).
	d := deps.Deps{
		Logger:         loggerClient,
		StartTime:      time.Now(),
		Version:        version.Version,
		Commit:         version.Commit,
		BuildDate:      version.BuildDate,
		GoVersion:      version.GoVersion,
		AllowedHosts:   cfg.AllowedHosts,
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedCIDRS:   cfg.AllowedCIDRS,
		TrustProxy:     cfg.TrustProxy,
		RateBurst:      cfg.RateBurst,
		RateRefill:     cfg.RateRefill,
		Store:          store,
		State:          appState,
		Registry:       registry,
		Coordinator:    coord,
		Notifications:  hub,
		ReloadTrigger:  reloadTrigger,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		redisClient: redisClient,
		session:     session,
		reloader:    reloader,
		coordinator: coord,
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting Web Clipper v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("Web Clipper %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load the manifest (extension order, services) before serving anything
	if err := a.reloader.Start(ctx); err != nil {
		return fmt.Errorf("failed to start manifest reloader: %w", err)
	}
	a.logger.Info("manifest reloader started",
		logger.Duration("interval", a.cfg.ReloadInterval))

	a.coordinator.Start(ctx)

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
		a.shutdownBackground()
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	a.shutdownBackground()

	a.logger.Info("✅ Web Clipper stopped cleanly")
	return nil
}

// shutdownBackground stops everything behind the HTTP server, consumers first.
func (a *App) shutdownBackground() {
	a.coordinator.Stop()
	a.reloader.Stop()

	if a.session != nil {
		utils.CloseLogged(a.session, "browser session", a.logger)
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}
}
