package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sokoplace/sokoplace-backend/api/controllers"
	"github.com/sokoplace/sokoplace-backend/api/middleware"
	cartsvc "github.com/sokoplace/sokoplace-backend/internal/cart"
	checkoutsvc "github.com/sokoplace/sokoplace-backend/internal/checkout"
	disputesvc "github.com/sokoplace/sokoplace-backend/internal/disputes"
	ordersvc "github.com/sokoplace/sokoplace-backend/internal/orders"
	"github.com/sokoplace/sokoplace-backend/internal/payments"
	"github.com/sokoplace/sokoplace-backend/pkg/config"
	"github.com/sokoplace/sokoplace-backend/pkg/db"
	"github.com/sokoplace/sokoplace-backend/pkg/logger"
	"github.com/sokoplace/sokoplace-backend/pkg/redis"
)

// Deps bundles everything the router mounts.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       db.Pinger
	Redis    redis.Pinger
	Registry *prometheus.Registry

	Carts    cartsvc.Service
	Checkout checkoutsvc.Service
	Payments payments.Engine
	Orders   ordersvc.Service
	Disputes disputesvc.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Get("/ping", controllers.PrivatePing())

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(deps.Carts, logg))
			r.Post("/items", controllers.CartAddItem(deps.Carts, logg))
			r.Delete("/items/{productId}", controllers.CartRemoveItem(deps.Carts, logg))
			r.Delete("/", controllers.CartClear(deps.Carts, logg))
		})

		r.Post("/checkout/session", controllers.CheckoutBegin(deps.Checkout, logg))

		r.Route("/payments", func(r chi.Router) {
			r.Get("/callback", controllers.PaymentCallback(deps.Payments, logg))
			r.Post("/verify", controllers.PaymentVerify(deps.Payments, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrderList(deps.Orders, logg))
			r.Post("/{orderNumber}/delivered", controllers.OrderMarkDelivered(deps.Orders, logg))
			r.Post("/{orderNumber}/received", controllers.OrderMarkReceived(deps.Orders, logg))
			r.Post("/{orderNumber}/items/{itemId}/decline-dispute", controllers.OrderDeclineAndDispute(deps.Orders, logg))
		})

		r.Route("/disputes", func(r chi.Router) {
			r.Get("/", controllers.DisputeList(deps.Disputes, logg))
			r.Post("/", controllers.DisputeFile(deps.Disputes, logg))
			r.Post("/{disputeId}/accept-resolution", controllers.DisputeAcceptResolution(deps.Disputes, logg))
			r.Post("/{disputeId}/return", controllers.DisputeRequestReturn(deps.Disputes, logg))
		})
	})

	return r
}
