// Package server wires the gophgate server together: storage, account
// services, the guard chain, the presence gateway and both transports.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/gophgate/internal/logging"
	"github.com/dmitrijs2005/gophgate/internal/server/auth"
	"github.com/dmitrijs2005/gophgate/internal/server/config"
	"github.com/dmitrijs2005/gophgate/internal/server/guard"
	"github.com/dmitrijs2005/gophgate/internal/server/presence"
	"github.com/dmitrijs2005/gophgate/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophgate/internal/server/rest"
	"github.com/dmitrijs2005/gophgate/internal/server/services"

	gs "github.com/dmitrijs2005/gophgate/internal/server/grpc"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	repomanager repomanager.RepositoryManager
	httpServer  *rest.HTTPServer
	grpcServer  *gs.GRPCServer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger, err := logging.New(c.LogBackend, c.LogLevel, os.Stdout)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	hasher := auth.NewBcryptHasher(c.BcryptCost)
	tokens := auth.NewTokenService(c.SecretKey, c.TokenValidityDuration)

	rm, err := newRepositoryManager(ctx, c.DatabaseDSN, hasher)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := rm.RunMigrations(ctx); err != nil {
		_ = rm.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	us := services.NewUserService(rm, tokens, hasher, logger)
	authenticator := guard.NewAuthenticator(tokens, rm.Users(rm.Conn()))
	gateway := presence.NewGateway(presence.NewRegistry(), logger)

	grpcServer, err := gs.NewGRPCServer(c.EndpointAddrGRPC, logger, authenticator, gateway, c.OutboxSize)
	if err != nil {
		_ = rm.Close()
		return nil, err
	}

	httpServer := rest.NewHTTPServer(c.EndpointAddrHTTP, rest.Deps{
		Users:         us,
		Authenticator: authenticator,
		Presence:      gateway,
		Logger:        logger,
	})

	return &App{
		config:      c,
		logger:      logger,
		repomanager: rm,
		httpServer:  httpServer,
		grpcServer:  grpcServer,
	}, nil
}

func newRepositoryManager(ctx context.Context, dsn string, hasher *auth.BcryptHasher) (repomanager.RepositoryManager, error) {
	if dsn == config.MemoryDSN {
		return repomanager.NewMemoryRepositoryManager(hasher), nil
	}
	db, err := repomanager.OpenPostgres(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return repomanager.NewPostgresRepositoryManager(db, hasher), nil
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

// serve runs one transport; a failure stops the whole app.
func (app *App) serve(ctx context.Context, cancelFunc context.CancelFunc, name string, run func(context.Context) error) {
	if err := run(ctx); err != nil {
		app.logger.Error(ctx, "server failed", "server", name, "error", err)
		cancelFunc()
	}
}

// Run serves HTTP and gRPC until ctx is cancelled, a signal arrives or
// either server fails, then releases the store.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.serve(ctx, cancelFunc, "grpc", app.grpcServer.Run)
	}()
	go func() {
		defer wg.Done()
		app.serve(ctx, cancelFunc, "http", app.httpServer.Run)
	}()

	wg.Wait()

	if err := app.repomanager.Close(); err != nil {
		app.logger.Error(ctx, "close db", "error", err)
	}

	app.logger.Info(context.WithoutCancel(ctx), "App stopped")

	if s, ok := app.logger.(interface{ Sync() error }); ok {
		_ = s.Sync()
	}
}
