// Package foodshare собирает HTTP-приложение: хранилище, кэш, события,
// сервисы и маршруты.
package foodshare

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/magabrotheeeer/foodshare/internal/cache"
	"github.com/magabrotheeeer/foodshare/internal/config"
	"github.com/magabrotheeeer/foodshare/internal/grpc/identity"
	"github.com/magabrotheeeer/foodshare/internal/http/middlewarectx"
	"github.com/magabrotheeeer/foodshare/internal/lib/jwt"
	"github.com/magabrotheeeer/foodshare/internal/lib/password"
	"github.com/magabrotheeeer/foodshare/internal/lib/sl"
	"github.com/magabrotheeeer/foodshare/internal/metrics"
	"github.com/magabrotheeeer/foodshare/internal/migrations"
	"github.com/magabrotheeeer/foodshare/internal/rabbitmq"
	"github.com/magabrotheeeer/foodshare/internal/services/account"
	"github.com/magabrotheeeer/foodshare/internal/services/admin"
	"github.com/magabrotheeeer/foodshare/internal/services/auth"
	"github.com/magabrotheeeer/foodshare/internal/services/cards"
	"github.com/magabrotheeeer/foodshare/internal/services/locations"
	"github.com/magabrotheeeer/foodshare/internal/services/orders"
	"github.com/magabrotheeeer/foodshare/internal/services/passwordreset"
	"github.com/magabrotheeeer/foodshare/internal/storage"
)

const shutdownTimeout = 15 * time.Second

// App HTTP-приложение.
type App struct {
	server  *http.Server
	logger  *slog.Logger
	db      *storage.Storage
	closers []io.Closer
}

// New подключает зависимости и собирает маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.foodshare.New"

	db, err := storage.New(ctx, cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	a := &App{logger: logger, db: db}

	// Роль, активность и удаление учётной записи проходят через кэш личностей.
	var identities cache.IdentityStore = db
	if cfg.AddressRedis != "" {
		redisCache, err := cache.InitServer(ctx, cfg.RedisConnection)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		a.closers = append(a.closers, redisCache)
		identities = cache.NewAccounts(db, redisCache, cfg.CacheTTL, logger)
	} else {
		logger.Warn("redis address is empty, account cache disabled")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	hasher := password.NewHasher(cfg.BcryptCost)
	tokens := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	authOpts := []auth.Option{auth.WithObserver(m)}
	var resetPublisher passwordreset.Publisher
	if cfg.RabbitURL != "" {
		conn, err := rabbitmq.Connect(cfg.RabbitURL, cfg.Retries, cfg.RetryDelay)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		a.closers = append(a.closers, conn)
		ch, err := rabbitmq.SetupChannel(conn, rabbitmq.AccountsExchange, rabbitmq.AccountQueues())
		if err != nil {
			a.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		publisher := rabbitmq.NewPublisher(ch, rabbitmq.AccountsExchange)
		authOpts = append(authOpts, auth.WithPublisher(publisher))
		resetPublisher = publisher
	} else {
		logger.Warn("rabbitmq url is empty, account events and password reset disabled")
	}
	authService := auth.NewService(db, hasher, tokens, logger, authOpts...)

	var resolver middlewarectx.IdentityResolver = auth.NewResolver(tokens, identities)
	if cfg.RemoteAddress != "" {
		client, err := identity.NewClient(cfg.RemoteAddress)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		a.closers = append(a.closers, client)
		resolver = client
		logger.Info("identity checks delegated to gRPC service", slog.String("address", cfg.RemoteAddress))
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, Services{
		Auth:       authService,
		Resolver:   resolver,
		Account:    account.NewService(db, identities, logger),
		Reset:      passwordreset.NewService(db, hasher, resetPublisher, logger, passwordreset.WithObserver(m)),
		Admin:      admin.NewService(db, identities, logger),
		Cards:      cards.NewService(db, logger),
		Locations:  locations.NewService(db, logger),
		Orders:     orders.NewService(db, logger),
		DB:         db,
		Metrics:    m,
		Gatherer:   reg,
		Limiter:    middlewarectx.NewRateLimiter(cfg.RPS, cfg.Burst),
		TrustProxy: cfg.TrustProxy,
	})

	a.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return a, nil
}

// Run обслуживает HTTP до отмены ctx, затем корректно останавливает сервер.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

func (a *App) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.logger.Warn("failed to close dependency", sl.Err(err))
		}
	}
	if err := a.db.Close(); err != nil {
		a.logger.Warn("failed to close database", sl.Err(err))
	}
}
