package router

import (
	"net/http"

	"github.com/RoyceAzure/lab/roundsale/internal/api"
	m "github.com/RoyceAzure/lab/roundsale/internal/api/middleware"
	"github.com/RoyceAzure/lab/roundsale/internal/pkg/metrics"
	"github.com/RoyceAzure/lab/roundsale/internal/pkg/ratelimit"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

type RouterOption func(*routerOptions)

type routerOptions struct {
	metrics         *metrics.ServerMetrics
	checkoutLimiter ratelimit.Limiter
}

func WithMetrics(sm *metrics.ServerMetrics) RouterOption {
	return func(o *routerOptions) {
		o.metrics = sm
	}
}

// WithCheckoutLimiter 結帳 API 依 client ip 限流
func WithCheckoutLimiter(limiter ratelimit.Limiter) RouterOption {
	return func(o *routerOptions) {
		o.checkoutLimiter = limiter
	}
}

func SetupRouter(server *api.Server, logger *zerolog.Logger, opts ...RouterOption) *chi.Mux {
	var o routerOptions
	for _, opt := range opts {
		opt(&o)
	}

	r := chi.NewRouter()

	// 全局中間件
	r.Use(m.RequestIdMiddleware)
	r.Use(middleware.RealIP)
	r.Use(m.LoggerMiddleware(logger))
	if o.metrics != nil {
		r.Use(m.MetricsMiddleware(o.metrics))
		r.Method(http.MethodGet, "/metrics", o.metrics.Handler())
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// API 路由
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/shops", func(r chi.Router) {
			r.Post("/", server.ShopHandler.CreateShop)
			r.Route("/{shopID}", func(r chi.Router) {
				r.Get("/", server.ShopHandler.GetShop)
				r.Get("/products", server.ShopHandler.ListProducts)
				r.Post("/products", server.ShopHandler.CreateProduct)
				r.Put("/products/{productID}", server.ShopHandler.UpdateProduct)
				r.Get("/rounds", server.RoundHandler.ListRounds)
				r.Post("/rounds", server.RoundHandler.CreateRound)
			})
		})

		r.Route("/rounds/{roundID}", func(r chi.Router) {
			r.Patch("/status", server.RoundHandler.UpdateStatus)
			r.Delete("/", server.RoundHandler.DeleteRound)
			r.Get("/availability", server.RoundHandler.Availability)
			r.Get("/summary", server.RoundHandler.SalesSummary)
			r.Get("/orders", server.RoundHandler.ListOrders)
		})

		r.Post("/shipping/preview", server.CheckoutHandler.PreviewShipping)

		r.Route("/carts/{sessionID}", func(r chi.Router) {
			r.Get("/", server.CartHandler.GetCart)
			r.Put("/", server.CartHandler.SwitchRound)
			r.Delete("/", server.CartHandler.Clear)
			r.Post("/items", server.CartHandler.AddItem)
			r.Put("/items/{lineKey}", server.CartHandler.SetQuantity)
			r.Delete("/items/{lineKey}", server.CartHandler.RemoveItem)
		})

		r.Group(func(r chi.Router) {
			if o.checkoutLimiter != nil {
				r.Use(ratelimit.NewRateLimitMiddleware(o.checkoutLimiter, ratelimit.ClientIP))
			}
			r.Post("/checkout", server.CheckoutHandler.Checkout)
		})

		r.Route("/orders/{orderID}", func(r chi.Router) {
			r.Get("/", server.OrderHandler.GetOrder)
			r.Patch("/status", server.OrderHandler.UpdateStatus)
			r.Patch("/discount", server.OrderHandler.ApplyDiscount)
		})

		r.Route("/track/{code}", func(r chi.Router) {
			r.Get("/", server.OrderHandler.Track)
			r.Post("/slip", server.OrderHandler.AttachPaymentSlip)
		})
	})
	return r
}
