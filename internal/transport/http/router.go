package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/klikk/verify-api/internal/application/checkout"
	"github.com/klikk/verify-api/internal/application/directory"
	"github.com/klikk/verify-api/internal/application/verification"
	"github.com/klikk/verify-api/internal/config"
	jwtinfra "github.com/klikk/verify-api/internal/infrastructure/jwt"
	"github.com/klikk/verify-api/internal/infrastructure/sns"
	"github.com/klikk/verify-api/internal/transport/http/handler"
	appmiddleware "github.com/klikk/verify-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	VerificationStore verification.Store
	AccountStore      directory.AccountStore
	SMSSender         sns.SMSSender
	JWTProvider       *jwtinfra.Provider
}

// unavailableDispatcher stands in when no SMS backend is configured. Every
// send fails, which in development makes the service echo the code instead.
type unavailableDispatcher struct{}

func (unavailableDispatcher) SendSMS(context.Context, string, string) error {
	return errors.New("sms sender not configured")
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	var authMw func(http.Handler) http.Handler
	if deps.JWTProvider != nil {
		authMw = appmiddleware.CheckoutAuth(deps.JWTProvider)
	} else {
		authMw = func(next http.Handler) http.Handler { return next }
	}

	// 5 requests/second, burst of 10 — applied to sensitive public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	var dispatcher verification.Dispatcher = deps.SMSSender
	if deps.SMSSender == nil {
		dispatcher = unavailableDispatcher{}
	}

	verificationSvc := verification.NewService(verification.ServiceDeps{
		Store:           deps.VerificationStore,
		Dispatcher:      dispatcher,
		CodeTTL:         cfg.CodeTTL,
		MaxAttempts:     cfg.MaxAttempts,
		DispatchTimeout: cfg.DispatchTimeout,
		AppDomain:       cfg.AppDomain,
		DevMode:         cfg.AppEnv == "development",
	})
	directorySvc := directory.NewService(deps.AccountStore)
	checkoutSvc := checkout.NewService(deps.AccountStore)

	healthH := handler.NewHealthHandler()
	verificationH := handler.NewVerificationHandler(verificationSvc, directorySvc, deps.JWTProvider)
	accountH := handler.NewAccountHandler(directorySvc)
	checkoutH := handler.NewCheckoutHandler(checkoutSvc)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/health-check/{action}", healthH.Ping)
		r.Get("/test", healthH.Test)
		r.Post("/test", healthH.Test)

		r.With(sensitiveRL.Limit).Post("/verification/request", verificationH.Request)
		r.With(sensitiveRL.Limit).Post("/verification/check", verificationH.Check)
		r.With(sensitiveRL.Limit).Post("/accounts/lookup", accountH.Lookup)
		r.Get("/accounts/{id}", accountH.Get)
		r.Post("/accounts/seed", accountH.Seed)

		// ── Verified routes (checkout token required) ────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)
			r.Post("/checkout/orders", checkoutH.PlaceOrder)
		})
	})

	return r
}
