// Package server wires configuration, storage, sessions and the node service
// together and runs the HTTP and gRPC endpoints until a shutdown signal.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/semanticapi/internal/logging"
	"github.com/dmitrijs2005/semanticapi/internal/server/auth"
	"github.com/dmitrijs2005/semanticapi/internal/server/config"
	"github.com/dmitrijs2005/semanticapi/internal/server/revocation"
	"github.com/dmitrijs2005/semanticapi/internal/server/serverconf"
	"github.com/dmitrijs2005/semanticapi/internal/server/sessions"
	"github.com/dmitrijs2005/semanticapi/internal/server/shared/db"
	"github.com/redis/go-redis/v9"

	gs "github.com/dmitrijs2005/semanticapi/internal/server/grpc"
	hs "github.com/dmitrijs2005/semanticapi/internal/server/http"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	repos       db.RepositoryManager
	redis       *redis.Client
	sessions    *sessions.Service
	nodeService *serverconf.NodeService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	return newApp(ctx, c, logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil))))
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {

	logger.Info(ctx, "config loaded", "jwt", c.Jwt, "http", c.EndpointAddrHTTP, "grpc", c.EndpointAddrGRPC)

	tokens, err := auth.NewTokenManager(c.Jwt)
	if err != nil {
		return nil, fmt.Errorf("jwt options: %w", err)
	}

	registry, err := serverconf.NewRegistry(c.Servers)
	if err != nil {
		return nil, fmt.Errorf("server options: %w", err)
	}

	repos, err := db.NewRepositoryManager(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	app := &App{config: c, logger: logger, repos: repos}

	var store revocation.Store = revocation.NewMemoryStore()
	if c.RedisAddr != "" {
		app.redis = redis.NewClient(&redis.Options{Addr: c.RedisAddr, Password: c.RedisPassword})
		rs := revocation.NewRedisStore(app.redis)
		if err := rs.Ping(ctx); err != nil {
			_ = app.Close()
			return nil, fmt.Errorf("redis init error: %w", err)
		}
		store = rs
	}

	app.sessions = sessions.NewService(tokens, store, c, logger)
	app.nodeService = serverconf.NewNodeService(registry, repos.Nodes(), logger)

	return app, nil
}

// Close releases the database and Redis connections.
func (app *App) Close() error {
	var errs []error
	if app.repos != nil {
		errs = append(errs, app.repos.Close())
	}
	if app.redis != nil {
		errs = append(errs, app.redis.Close())
	}
	return errors.Join(errs...)
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.sessions)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := hs.NewHTTPServer(app.config.EndpointAddrHTTP, app.logger, app.sessions, app.nodeService, app.config.AllowedOrigin)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run blocks until ctx is cancelled, a shutdown signal arrives or one of
// the servers fails.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.Close(); err != nil {
		app.logger.Error(ctx, "close failed", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
