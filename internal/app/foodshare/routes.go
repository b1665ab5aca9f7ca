package foodshare

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/magabrotheeeer/foodshare/docs"
	"github.com/magabrotheeeer/foodshare/internal/http/handlers/account/deactivate"
	"github.com/magabrotheeeer/foodshare/internal/http/handlers/account/profile"
	accountremove "github.com/magabrotheeeer/foodshare/internal/http/handlers/account/remove"
	profileupdate "github.com/magabrotheeeer/foodshare/internal/http/handlers/account/update"
	"github.com/magabrotheeeer/foodshare/internal/http/handlers/admin/deleteuser"
	"github.com/magabrotheeeer/foodshare/internal/http/handlers/admin/getuser"
	"github.com/magabrotheeeer/foodshare/internal/http/handlers/admin/listusers"
	"github.com/magabrotheeeer/foodshare/internal/http/handlers/admin/stats"
	"github.com/magabrotheeeer/foodshare/internal/http/handlers/admin/updateuser"
	"github.com/magabrotheeeer/foodshare/internal/http/handlers/auth/changepassword"
	"github.com/magabrotheeeer/foodshare/internal/http/handlers/auth/forgotpassword"
	"github.com/magabrotheeeer/foodshare/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/foodshare/internal/http/handlers/auth/logout"
	"github.com/magabrotheeeer/foodshare/internal/http/handlers/auth/me"
	"github.com/magabrotheeeer/foodshare/internal/http/handlers/auth/refresh"
	"github.com/magabrotheeeer/foodshare/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/foodshare/internal/http/handlers/auth/resetpassword"
	"github.com/magabrotheeeer/foodshare/internal/http/handlers/auth/verifyresetcode"
	cardcreate "github.com/magabrotheeeer/foodshare/internal/http/handlers/cards/create"
	cardlist "github.com/magabrotheeeer/foodshare/internal/http/handlers/cards/list"
	cardremove "github.com/magabrotheeeer/foodshare/internal/http/handlers/cards/remove"
	"github.com/magabrotheeeer/foodshare/internal/http/handlers/health"
	locationcreate "github.com/magabrotheeeer/foodshare/internal/http/handlers/locations/create"
	locationlist "github.com/magabrotheeeer/foodshare/internal/http/handlers/locations/list"
	ordercreate "github.com/magabrotheeeer/foodshare/internal/http/handlers/orders/create"
	orderlist "github.com/magabrotheeeer/foodshare/internal/http/handlers/orders/list"
	"github.com/magabrotheeeer/foodshare/internal/http/middlewarectx"
	"github.com/magabrotheeeer/foodshare/internal/metrics"
	"github.com/magabrotheeeer/foodshare/internal/models"
	"github.com/magabrotheeeer/foodshare/internal/services/account"
	"github.com/magabrotheeeer/foodshare/internal/services/admin"
	"github.com/magabrotheeeer/foodshare/internal/services/auth"
	"github.com/magabrotheeeer/foodshare/internal/services/cards"
	"github.com/magabrotheeeer/foodshare/internal/services/locations"
	"github.com/magabrotheeeer/foodshare/internal/services/orders"
	"github.com/magabrotheeeer/foodshare/internal/services/passwordreset"
)

// Services зависимости маршрутов.
type Services struct {
	Auth      *auth.Service
	Resolver  middlewarectx.IdentityResolver
	Account   *account.Service
	Reset     *passwordreset.Service
	Admin     *admin.Service
	Cards     *cards.Service
	Locations *locations.Service
	Orders    *orders.Service
	DB        health.Pinger
	Metrics   *metrics.Metrics
	Gatherer  prometheus.Gatherer
	Limiter   *middlewarectx.RateLimiter
	// TrustProxy брать адрес клиента из X-Forwarded-For и X-Real-IP.
	TrustProxy bool
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, s Services) {
	// Глобальные middleware
	r.Use(middleware.RequestID)
	if s.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(
		middleware.Logger,
		middleware.Recoverer,
		s.Metrics.Middleware,
	)

	authenticate := middlewarectx.Authenticate(s.Resolver, logger)
	healthHandler := health.New(logger, s.DB)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Use(s.Limiter.Middleware(logger))

			r.Post("/register", register.New(logger, s.Auth).ServeHTTP)
			r.Post("/login", login.New(logger, s.Auth).ServeHTTP)
			r.Post("/refresh", refresh.New(logger, s.Auth).ServeHTTP)
			r.Post("/logout", logout.New(logger, s.Auth, s.Resolver).ServeHTTP)
			r.Post("/forgot-password", forgotpassword.New(logger, s.Reset).ServeHTTP)
			r.Post("/verify-reset-code", verifyresetcode.New(logger, s.Reset, passwordreset.CodeTTL).ServeHTTP)
			r.Post("/reset-password", resetpassword.New(logger, s.Reset).ServeHTTP)

			r.Group(func(r chi.Router) {
				r.Use(authenticate)
				r.Get("/me", me.New(logger).ServeHTTP)
				r.Post("/change-password", changepassword.New(logger, s.Auth).ServeHTTP)
			})
		})

		// Ресурсы пользователя: личность проверяется, доступ ограничен UserID.
		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Get("/account/user/me", profile.New(logger, s.Account).ServeHTTP)
			r.Put("/account/user/me", profileupdate.New(logger, s.Account).ServeHTTP)
			r.Delete("/account/user/me", accountremove.New(logger, s.Account).ServeHTTP)
			r.Post("/account/user/me/deactivate", deactivate.New(logger, s.Account).ServeHTTP)

			r.Get("/cards", cardlist.New(logger, s.Cards).ServeHTTP)
			r.Post("/cards", cardcreate.New(logger, s.Cards).ServeHTTP)
			r.Delete("/cards/{id}", cardremove.New(logger, s.Cards).ServeHTTP)

			r.Get("/locations", locationlist.New(logger, s.Locations).ServeHTTP)
			r.Post("/locations", locationcreate.New(logger, s.Locations).ServeHTTP)

			r.Get("/orders", orderlist.New(logger, s.Orders).ServeHTTP)
			r.Post("/orders", ordercreate.New(logger, s.Orders).ServeHTTP)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(authenticate, middlewarectx.RequireRole(logger, models.RoleAdmin))

			r.Get("/users", listusers.New(logger, s.Admin).ServeHTTP)
			r.Get("/users/{id}", getuser.New(logger, s.Admin).ServeHTTP)
			r.Patch("/users/{id}", updateuser.New(logger, s.Admin).ServeHTTP)
			r.Delete("/users/{id}", deleteuser.New(logger, s.Admin).ServeHTTP)
			r.Get("/stats/system", stats.New(logger, s.Admin).ServeHTTP)
		})

		r.Get("/health", healthHandler.Health)
		r.Get("/health/database", healthHandler.Database)
		r.Get("/health/ping", healthHandler.Ping)
	})

	r.Handle("/metrics", promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{}))
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"success":false,"message":"not found"}`))
	})
}
