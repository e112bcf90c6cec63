package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/maintenance-tracker/internal/auth"
	"github.com/ukydev/maintenance-tracker/internal/config"
	"github.com/ukydev/maintenance-tracker/internal/controller"
	"github.com/ukydev/maintenance-tracker/internal/db"
	"github.com/ukydev/maintenance-tracker/internal/handlers"
	"github.com/ukydev/maintenance-tracker/internal/logging"
	"github.com/ukydev/maintenance-tracker/internal/notify"
)

const (
	storeOpenTimeout = 15 * time.Second
	shutdownTimeout  = 10 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Invalid configuration")
	}
	logger := log.NewEntry(logging.New(cfg.LogLevel, cfg.LogFormat))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.WithError(err).Fatal("Server stopped")
	}
}

func run(ctx context.Context, cfg config.Config, logger *log.Entry) error {
	openCtx, cancel := context.WithTimeout(ctx, storeOpenTimeout)
	store, err := db.Open(openCtx, db.Options{
		Driver:     cfg.StoreDriver,
		MongoURI:   cfg.MongoURI,
		MongoDB:    cfg.MongoDB,
		SQLitePath: cfg.SQLitePath,
	})
	cancel()
	if err != nil {
		return err
	}
	logger.WithField("driver", cfg.StoreDriver).Info("Connected to store")

	srv, cleanup, err := newServer(cfg, store, logger)
	if err != nil {
		store.Close(context.Background())
		return err
	}
	defer cleanup()

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("addr", srv.Addr).Info("HTTP server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newServer wires the HTTP server on top of an open store. cleanup closes the
// notifier and the store.
func newServer(cfg config.Config, store *db.Store, logger *log.Entry) (*http.Server, func(), error) {
	authService, err := auth.NewService(cfg.JWTSecret, 0)
	if err != nil {
		return nil, nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, nil, err
	}
	clock := func() time.Time { return time.Now().In(loc) }

	var (
		notifier notify.Notifier
		closers  []func()
	)
	if cfg.NotificationsEnabled() {
		mqttNotifier := notify.NewMQTTNotifier(notify.MQTTConfig{
			Broker:         cfg.MQTTBroker,
			ClientID:       cfg.MQTTClientID,
			TopicPrefix:    cfg.MQTTTopicPrefix,
			ConnectTimeout: cfg.MQTTConnectTimeout,
		}, logger.WithField("component", "notify"))
		notifier = mqttNotifier
		closers = append(closers, mqttNotifier.Close)
	}

	registry := controller.NewRegistry(store.Vehicles, store.Records, notifier,
		logger.WithField("component", "controller"), controller.WithClock(clock))

	router := handlers.NewRouter(handlers.Options{
		Registry:               registry,
		AuthService:            authService,
		Logger:                 logger.WithField("component", "http"),
		RateLimitRequests:      cfg.RateLimitRequests,
		RateLimitWindowSeconds: cfg.RateLimitWindowSeconds,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	cleanup := func() {
		for _, c := range closers {
			c()
		}
		if err := store.Close(context.Background()); err != nil {
			logger.WithError(err).Warn("Failed to close store")
		}
	}
	return srv, cleanup, nil
}
