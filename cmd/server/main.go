// Package main starts the blood-pressure monitoring API server, wiring
// configuration, logging, storage, sessions, handlers and optional TLS.
package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"github.com/bpmonitor/capstone/internal/config"
	"github.com/bpmonitor/capstone/internal/db"
	"github.com/bpmonitor/capstone/internal/logger"
	"github.com/bpmonitor/capstone/internal/middleware"
	"github.com/bpmonitor/capstone/internal/repository"
	"github.com/bpmonitor/capstone/internal/server/handler/http"
	"github.com/bpmonitor/capstone/internal/service"
	"github.com/bpmonitor/capstone/internal/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse flags, config file and environment.
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(cfg.Log.Level); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	zapLogger := log.Log

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to the configured storage backend.
	userRepo, bpRepo, closeStorage, err := openStorage(ctx, cfg.Storage, zapLogger)
	if err != nil {
		zapLogger.Fatal("cannot init storage", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}
	defer closeStorage()

	// Open the session store and start removing expired sessions.
	store, closeStore, err := openSessionStore(cfg.Session)
	if err != nil {
		zapLogger.Fatal("cannot open session store", zap.Error(err))
	}
	defer closeStore()
	session.StartSweeper(ctx, store, cfg.Session.SweepInterval, zapLogger)

	sessions := session.NewManager(store, session.Options{
		CookieName: cfg.Session.CookieName,
		TTL:        cfg.Session.TTL,
		Secure:     cfg.Server.TLSCert != "",
	}, zapLogger)

	// Initialize business-logic services and their handlers.
	userHandler := &http.UserHandler{
		UserService: service.NewUserService(userRepo),
		Sessions:    sessions,
		Logger:      zapLogger,
	}
	bpHandler := &http.BPHandler{
		BPService: service.NewBPService(bpRepo),
		Logger:    zapLogger,
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	router := http.NewRouter(userHandler, bpHandler, sessions, zapLogger, http.RouterOptions{
		Metrics:     middleware.NewMetrics(registry),
		CORSOrigins: cfg.Server.CORSOrigins,
		LoginRate:   cfg.Server.LoginRate,
		StaticDir:   cfg.Server.StaticDir,
	})

	server := &nethttp.Server{
		Addr:              cfg.Server.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zapLogger.Error("failed to shut down server", zap.Error(err))
		}
	}()

	if cfg.Server.TLSCert != "" {
		zapLogger.Info("starting HTTPS server", zap.String("addr", server.Addr))
		err = server.ListenAndServeTLS(cfg.Server.TLSCert, cfg.Server.TLSKey)
	} else {
		zapLogger.Info("starting HTTP server", zap.String("addr", server.Addr))
		err = server.ListenAndServe()
	}
	if err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		zapLogger.Fatal("failed to start server", zap.Error(err))
	}
	zapLogger.Info("server stopped")
}

// openStorage connects the configured backend and returns its repositories
// along with a function releasing the connection.
func openStorage(ctx context.Context, cfg config.StorageConfig, log *zap.Logger) (service.UserRepository, service.BPRepository, func(), error) {
	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	switch cfg.Driver {
	case config.DriverMongo:
		client, database, err := db.InitMongo(connectCtx, cfg.DSN)
		if err != nil {
			return nil, nil, nil, err
		}
		users := repository.NewMongoUserRepository(database)
		if err := users.EnsureIndexes(connectCtx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, nil, err
		}
		closeFn := func() {
			if err := client.Disconnect(context.Background()); err != nil {
				log.Warn("failed to disconnect mongo", zap.Error(err))
			}
		}
		return users, repository.NewMongoBPRepository(database), closeFn, nil

	default:
		pg, err := db.InitPostgres(connectCtx, cfg.DSN)
		if err != nil {
			return nil, nil, nil, err
		}
		closeFn := func() {
			if err := pg.Close(); err != nil {
				log.Warn("failed to close postgres", zap.Error(err))
			}
		}
		return repository.NewPostgresUserRepository(pg), repository.NewPostgresBPRepository(pg), closeFn, nil
	}
}

// openSessionStore builds the configured session store.
func openSessionStore(cfg config.SessionConfig) (session.Store, func(), error) {
	if cfg.Store == config.StoreBadger {
		store, err := session.OpenBadgerStore(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	}
	return session.NewMemoryStore(), func() {}, nil
}
