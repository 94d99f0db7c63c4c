package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/clinicflow/practice/pkg/billing"
	"github.com/clinicflow/practice/pkg/clientip"
	"github.com/clinicflow/practice/pkg/httpserver"
	"github.com/clinicflow/practice/pkg/jwt"
	"github.com/clinicflow/practice/pkg/logger"
	"github.com/clinicflow/practice/pkg/ratelimiter"
	"github.com/clinicflow/practice/pkg/requestid"
	"github.com/clinicflow/practice/pkg/subscription"
)

// SubscriptionService is the lifecycle and access surface the API exposes.
// *subscription.Service implements it.
type SubscriptionService interface {
	CreateSubscription(ctx context.Context, p subscription.CreateParams) (*subscription.Subscription, error)
	RenewSubscription(ctx context.Context, p subscription.RenewParams) (*subscription.Subscription, error)
	CancelSubscription(ctx context.Context, professionalID uuid.UUID) (*subscription.Subscription, error)
	CheckStatus(ctx context.Context, professionalID uuid.UUID) (*subscription.StatusReport, error)
	CheckAccess(ctx context.Context, professionalID uuid.UUID, op subscription.OperationKind) (subscription.AccessTier, error)
}

// EventHandler applies verified provider events. *billing.Processor implements it.
type EventHandler interface {
	HandleProviderEvent(ctx context.Context, event billing.ProviderEvent) error
}

// PaymentLister reads the payment history. billing.Ledger implements it.
type PaymentLister interface {
	ListByProfessional(ctx context.Context, professionalID uuid.UUID) ([]billing.Payment, error)
}

// Deps are the collaborators behind the HTTP surface.
// Subscriptions, Provider, Events, Catalog and Tokens are required.
type Deps struct {
	Subscriptions SubscriptionService
	Provider      billing.PaymentProvider
	Events        EventHandler
	Payments      PaymentLister
	Catalog       *billing.Catalog
	Tokens        *jwt.Service
	Logger        *slog.Logger

	// Checks back the readiness probe, keyed by dependency name.
	Checks map[string]httpserver.CheckFunc

	// PracticeRoutes mounts downstream modules under /v1/practice behind the
	// subscription access check.
	PracticeRoutes func(r chi.Router)
}

// API is the chi based HTTP surface.
type API struct {
	cfg      Config
	deps     Deps
	log      *slog.Logger
	validate *validator.Validate
	webhooks *ratelimiter.Limiter
}

// New validates deps and prepares the API.
// Returns ErrMissingDependency naming the first required dependency left nil.
func New(cfg Config, deps Deps) (*API, error) {
	switch {
	case deps.Subscriptions == nil:
		return nil, fmt.Errorf("%w: Subscriptions", ErrMissingDependency)
	case deps.Provider == nil:
		return nil, fmt.Errorf("%w: Provider", ErrMissingDependency)
	case deps.Events == nil:
		return nil, fmt.Errorf("%w: Events", ErrMissingDependency)
	case deps.Catalog == nil:
		return nil, fmt.Errorf("%w: Catalog", ErrMissingDependency)
	case deps.Tokens == nil:
		return nil, fmt.Errorf("%w: Tokens", ErrMissingDependency)
	}

	cfg = cfg.withDefaults()
	log := deps.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	limiter, err := ratelimiter.New(ratelimiter.Config{
		RPS:     cfg.WebhookRPS,
		Burst:   cfg.WebhookBurst,
		IdleTTL: cfg.WebhookIdleTTL,
	})
	if err != nil {
		return nil, err
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	return &API{
		cfg:      cfg,
		deps:     deps,
		log:      log.With(logger.Component("api")),
		validate: v,
		webhooks: limiter,
	}, nil
}

// RunBackground evicts idle webhook rate limit buckets until ctx is done.
func (a *API) RunBackground(ctx context.Context) {
	a.webhooks.RunCleanup(ctx, time.Minute)
}

// Routes builds the router.
func (a *API) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(requestid.Middleware)
	r.Use(clientip.Middleware)
	r.Use(a.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   a.cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", requestid.Header},
		ExposedHeaders:   []string{requestid.Header},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, http.StatusNotFound, "not_found", "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})

	r.Get("/health/live", httpserver.LivenessHandler())
	r.Get("/health/ready", httpserver.ReadinessHandler(a.log, a.cfg.ReadinessTimeout, a.deps.Checks))

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(a.cfg.RequestTimeout))

		r.With(ratelimiter.Middleware(a.webhooks, clientip.Key, a.rateLimited)).
			Post("/billing/webhook", a.handleWebhook)

		r.Group(func(r chi.Router) {
			r.Use(jwt.Middleware(a.deps.Tokens))

			r.Post("/subscriptions", a.handleCreateSubscription)
			r.Post("/subscriptions/renew", a.handleRenewSubscription)
			r.Post("/subscriptions/cancel", a.handleCancelSubscription)
			r.Get("/subscriptions/status", a.handleSubscriptionStatus)

			r.Get("/billing/plans", a.handleListPlans)
			r.Post("/billing/checkout", a.handleCheckout)
			r.Get("/billing/payments", a.handleListPayments)

			r.Route("/practice", func(r chi.Router) {
				r.Use(subscription.RequireAccess(a.deps.Subscriptions, jwt.ProfessionalIDFromRequest))
				r.Get("/access", a.handleAccess)
				if a.deps.PracticeRoutes != nil {
					a.deps.PracticeRoutes(r)
				}
			})
		})
	})

	return r
}

func (a *API) rateLimited(w http.ResponseWriter, r *http.Request, _ ratelimiter.Result) {
	a.log.WarnContext(r.Context(), "webhook rate limit exceeded", slog.String("client_ip", clientip.GetIPFromContext(r.Context())))
	writeJSONError(w, http.StatusTooManyRequests, "rate_limited", "too many requests")
}
