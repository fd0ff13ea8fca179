package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/notifier/internal/config"
	"github.com/jwalitptl/notifier/internal/dispatch"
	notifierHandler "github.com/jwalitptl/notifier/internal/handler/notifier"
	"github.com/jwalitptl/notifier/internal/list"
	"github.com/jwalitptl/notifier/internal/preference"
	"github.com/jwalitptl/notifier/internal/repository/postgres"
	"github.com/jwalitptl/notifier/internal/toast"
	"github.com/jwalitptl/notifier/pkg/logger"
	"github.com/jwalitptl/notifier/pkg/metrics"
	"github.com/jwalitptl/notifier/pkg/storage"
	"github.com/jwalitptl/notifier/pkg/surface"
	redisTransport "github.com/jwalitptl/notifier/pkg/transport/redis"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	zl := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		Level(parseLevel(cfg.Log.Level)).
		With().Timestamp().Logger()
	appLog := logger.NewLogger(&logger.Config{
		Level:      parseLevel(cfg.Log.Level),
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
	})

	m := metrics.NewMetrics("notifier", "engine")

	// Preference cache: file-backed when a path is configured.
	var cache storage.Store
	if cfg.Storage.Path != "" {
		cache, err = storage.NewFileStore(cfg.Storage.Path)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open preference cache")
		}
	} else {
		cache = storage.NewMemoryStore()
	}

	var client preference.Client
	if cfg.API.BaseURL != "" {
		client = preference.NewHTTPClient(cfg.API.BaseURL, cfg.API.Token,
			time.Duration(cfg.API.TimeoutSeconds)*time.Second)
	}

	store := preference.NewStore(preference.Config{
		Debounce: cfg.Preferences.Debounce(),
	}, cache, client, appLog.WithComponent("preferences"), m)

	// Notification list: database-backed when configured.
	var notifications list.List
	if cfg.Database.Enabled {
		db, err := postgres.NewDB(cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer db.Close()
		notifications = postgres.NewNotificationList(db)
	} else {
		notifications = list.NewMemoryList()
	}

	// OS surfaces. Real integrations hook in here; the logging ones keep
	// the engine observable when running headless.
	audio := surface.NewLogAudioPlayer(&zl)
	desktop := surface.NewLogDesktopNotifier(&zl)
	navigator := surface.NewLogNavigator(&zl)
	title := surface.NewMemoryTitle("Clinic Portal")

	toasts := toast.NewManager(notifications, navigator, appLog.WithComponent("toasts"), m)

	dispatcher := dispatch.NewDispatcher(dispatch.Config{},
		store, toasts, notifications,
		audio, desktop, navigator, title,
		appLog.WithComponent("dispatch"), m)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store.Load(ctx)
	if err := notifications.Refresh(ctx); err != nil {
		appLog.Error(err, "initial list refresh failed")
	}

	transport, err := redisTransport.NewTransport(redisTransport.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		RetryBackoff: time.Duration(cfg.Redis.RetryBackoffMS) * time.Millisecond,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}, &zl)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}

	if err := dispatcher.Start(ctx, transport); err != nil {
		log.Fatal().Err(err).Msg("failed to start dispatcher")
	}

	// Local control surface.
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h := notifierHandler.NewHandler(store, toasts, notifications)
	h.RegisterRoutes(engine.Group("/api/v1"))

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
	}

	go func() {
		appLog.Info("control surface listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLog.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Error(err, "http shutdown failed")
	}

	dispatcher.Close()
	toasts.Close()
	store.Close()
	if err := transport.Close(); err != nil {
		appLog.Error(err, "transport close failed")
	}
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
