// Package server wires the authkeeper components together and runs them:
// the HTTP API, the gRPC health endpoint and the refresh-token sweeper.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/config"
	gs "github.com/dmitrijs2005/authkeeper/internal/server/grpc"
	hs "github.com/dmitrijs2005/authkeeper/internal/server/http"
	"github.com/dmitrijs2005/authkeeper/internal/server/obs"
	"github.com/dmitrijs2005/authkeeper/internal/server/password"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/authkeeper/internal/server/services"
	"github.com/dmitrijs2005/authkeeper/internal/server/tokens"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	repos       repomanager.RepositoryManager
	authService *services.AuthService
	httpServer  *hs.Server
	grpcServer  *gs.GRPCServer
}

// NewApp validates c, opens storage (running migrations) and builds every
// component. The caller must Run the app, which releases storage on exit.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	hasher, err := password.NewBcrypt(c.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("password hasher: %w", err)
	}

	repos, err := repomanager.Open(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	metrics := obs.NewMetrics()
	as := services.NewAuthService(repos, hasher, tokens.ConfigFrom(c), logger, metrics)

	return &App{
		config:      c,
		logger:      logger,
		repos:       repos,
		authService: as,
		httpServer:  hs.NewServer(c.HTTPAddr, as, as.Issuer(), metrics, logger),
		grpcServer:  gs.NewGRPCServer(c.GRPCAddr, repos, logger),
	}, nil
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case s := <-sigs:
			app.logger.Info(ctx, "Signal received, shutting down", "signal", s.String())
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

// runComponent runs fn and cancels the whole app when it fails.
func (app *App) runComponent(ctx context.Context, cancelFunc context.CancelFunc, name string, fn func(context.Context) error) {
	if err := fn(ctx); err != nil {
		app.logger.Error(ctx, "component failed", "component", name, "error", err)
		cancelFunc()
	}
}

// Run blocks until ctx is cancelled, a termination signal arrives or one of
// the servers fails. Storage is closed before returning.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "storage", app.config.Storage)

	app.initSignalHandler(ctx, cancelFunc)

	var wg sync.WaitGroup

	components := map[string]func(context.Context) error{
		"http":    app.httpServer.Run,
		"grpc":    app.grpcServer.Run,
		"sweeper": app.runSweeper,
	}
	for name, fn := range components {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.runComponent(ctx, cancelFunc, name, fn)
		}()
	}

	wg.Wait()

	if err := app.repos.Close(); err != nil {
		app.logger.Error(ctx, "close storage", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
