package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/mustore/internal/domain"
	"github.com/vladislavdragonenkov/mustore/internal/ratelimit"
	"github.com/vladislavdragonenkov/mustore/internal/service/auth"
	"github.com/vladislavdragonenkov/mustore/internal/service/cart"
	"github.com/vladislavdragonenkov/mustore/internal/service/checkout"
	"github.com/vladislavdragonenkov/mustore/internal/service/lifecycle"
)

// Handler собирает HTTP API магазина поверх прикладных сервисов.
type Handler struct {
	auth      *auth.Service
	carts     *cart.Service
	checkout  *checkout.Service
	lifecycle *lifecycle.Manager

	products  domain.ProductRepository
	catalog   domain.CatalogRepository
	favorites domain.FavoriteRepository
	stats     domain.StatsRepository

	limiter  ratelimit.Limiter
	validate *validator.Validate
	logger   *log.Entry
}

// Option настраивает Handler.
type Option func(*Handler)

// WithLogger задаёт logger обработчика.
func WithLogger(logger *log.Entry) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithRateLimiter включает ограничение частоты запросов к /api/auth.
func WithRateLimiter(limiter ratelimit.Limiter) Option {
	return func(h *Handler) {
		h.limiter = limiter
	}
}

// NewHandler создаёт HTTP-обработчик магазина.
func NewHandler(
	authSvc *auth.Service,
	carts *cart.Service,
	checkoutSvc *checkout.Service,
	lifecycleMgr *lifecycle.Manager,
	products domain.ProductRepository,
	catalog domain.CatalogRepository,
	favorites domain.FavoriteRepository,
	stats domain.StatsRepository,
	options ...Option,
) *Handler {
	h := &Handler{
		auth:      authSvc,
		carts:     carts,
		checkout:  checkoutSvc,
		lifecycle: lifecycleMgr,
		products:  products,
		catalog:   catalog,
		favorites: favorites,
		stats:     stats,
		validate:  newValidator(),
		logger:    log.WithField("component", "rest-api"),
	}
	for _, option := range options {
		option(h)
	}
	return h
}

// Router собирает маршруты API.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(h.requestLogger)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Use(h.rateLimit)
			r.Post("/register", h.handleRegister)
			r.Post("/login", h.handleLogin)
			r.With(h.authRequired).Get("/me", h.handleMe)
		})

		r.Get("/categories", h.handleCategories)
		r.Get("/brands", h.handleBrands)
		r.Get("/products", h.handleProductList)
		r.Get("/products/{idOrSlug}", h.handleProductGet)
		r.Get("/products/{idOrSlug}/similar", h.handleProductSimilar)

		r.Route("/cart", func(r chi.Router) {
			r.Use(h.authOptional)
			r.Get("/", h.handleCartGet)
			r.Delete("/", h.handleCartClear)
			r.Post("/items", h.handleCartAddItem)
			r.Put("/items/{itemID}", h.handleCartUpdateItem)
			r.Delete("/items/{itemID}", h.handleCartRemoveItem)
		})

		r.Route("/favorites", func(r chi.Router) {
			r.Use(h.authRequired)
			r.Get("/", h.handleFavoriteList)
			r.Post("/{productID}", h.handleFavoriteAdd)
			r.Delete("/{productID}", h.handleFavoriteRemove)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(h.authOptional)
			r.Post("/", h.handlePlaceOrder)
			r.With(h.authRequired).Get("/", h.handleOrderList)
			r.With(h.authRequired).Get("/{orderID}", h.handleOrderGet)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(h.authRequired, h.adminOnly)
			r.Put("/orders/{orderID}", h.handleSetOrderStatus)
			r.Post("/products", h.handleProductCreate)
			r.Put("/products/{productID}", h.handleProductUpdate)
			r.Get("/stats", h.handleStats)
		})
	})

	return r
}
