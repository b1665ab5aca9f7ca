// Package identity собирает gRPC-сервис проверки личности для других сервисов.
package identity

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"

	"google.golang.org/grpc"

	"github.com/magabrotheeeer/foodshare/internal/cache"
	"github.com/magabrotheeeer/foodshare/internal/config"
	grpcidentity "github.com/magabrotheeeer/foodshare/internal/grpc/identity"
	"github.com/magabrotheeeer/foodshare/internal/lib/jwt"
	"github.com/magabrotheeeer/foodshare/internal/lib/sl"
	"github.com/magabrotheeeer/foodshare/internal/services/auth"
	"github.com/magabrotheeeer/foodshare/internal/storage"
)

// App gRPC-приложение.
type App struct {
	grpcServer *grpc.Server
	listener   net.Listener
	logger     *slog.Logger
	closers    []io.Closer
}

// New подключает хранилище, кэш и открывает порт gRPC.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.identity.New"

	db, err := storage.New(ctx, cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	a := &App{logger: logger, closers: []io.Closer{db}}

	var users auth.IdentityReader = db
	if cfg.AddressRedis != "" {
		redisCache, err := cache.InitServer(ctx, cfg.RedisConnection)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		a.closers = append(a.closers, redisCache)
		users = cache.NewAccounts(db, redisCache, cfg.CacheTTL, logger)
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	resolver := auth.NewResolver(jwtMaker, users)

	lis, err := net.Listen("tcp", cfg.AddressGRPC)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	a.listener = lis
	a.grpcServer = grpcidentity.NewGRPCServer(grpcidentity.NewServer(resolver, logger), logger)
	return a, nil
}

// Run обслуживает запросы до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	defer a.close()
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("identity gRPC service listening on", slog.String("address", a.listener.Addr().String()))
		errCh <- a.grpcServer.Serve(a.listener)
	}()

	select {
	case <-ctx.Done():
		a.grpcServer.GracefulStop()
		return nil
	case err := <-errCh:
		return err
	}
}

func (a *App) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.logger.Warn("failed to close dependency", sl.Err(err))
		}
	}
}
