package handlers

//go:generate mockgen -source=handlers.go -destination=mock_handlers.go -package=handlers

import (
	"net/http"

	_ "github.com/GlebRadaev/goodpang/docs"
	authhandlers "github.com/GlebRadaev/goodpang/internal/handlers/auth"
	ordershandlers "github.com/GlebRadaev/goodpang/internal/handlers/orders"
	productshandlers "github.com/GlebRadaev/goodpang/internal/handlers/products"
	wallethandlers "github.com/GlebRadaev/goodpang/internal/handlers/wallet"
	"github.com/GlebRadaev/goodpang/internal/service"
	"github.com/GlebRadaev/goodpang/pkg/auth"
	"github.com/GlebRadaev/goodpang/pkg/utils"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type AuthHandler interface {
	Register(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
}

type OrderHandler interface {
	CreateOrder(w http.ResponseWriter, r *http.Request)
	GetOrders(w http.ResponseWriter, r *http.Request)
	GetOrder(w http.ResponseWriter, r *http.Request)
	ConfirmOrder(w http.ResponseWriter, r *http.Request)
}

type ProductHandler interface {
	GetProducts(w http.ResponseWriter, r *http.Request)
	GetCategories(w http.ResponseWriter, r *http.Request)
}

type WalletHandler interface {
	GetPoints(w http.ResponseWriter, r *http.Request)
	GetHistory(w http.ResponseWriter, r *http.Request)
}

type Handlers struct {
	AuthHandler    AuthHandler
	OrderHandler   OrderHandler
	ProductHandler ProductHandler
	WalletHandler  WalletHandler
	Identity       auth.IdentityResolver
}

func New(s *service.Services) *Handlers {
	return &Handlers{
		AuthHandler:    authhandlers.New(s.AuthService),
		OrderHandler:   ordershandlers.New(s.OrderService, s.PaymentService),
		ProductHandler: productshandlers.New(s.ProductService),
		WalletHandler:  wallethandlers.New(s.WalletService),
		Identity:       s.Identity,
	}
}

// Ping godoc
//
//	@Summary	Health check
//	@Tags		Health
//	@Produce	json
//	@Success	200	{object}	map[string]string
//	@Router		/api [get]
func Ping(w http.ResponseWriter, _ *http.Request) {
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"ping": "pong"})
}

func (h *Handlers) InitRoutes(r chi.Router) chi.Router {
	r.Use(
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
	)
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("doc.json"),
	))
	r.Route("/api", func(r chi.Router) {
		r.Get("/", Ping)

		r.Post("/users/register", h.AuthHandler.Register)
		r.Post("/users/log-in", h.AuthHandler.Login)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.ProductHandler.GetProducts)
			r.Get("/categories", h.ProductHandler.GetCategories)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.AuthMiddleware(h.Identity))
			r.Route("/orders", func(r chi.Router) {
				r.Post("/", h.OrderHandler.CreateOrder)
				r.Get("/", h.OrderHandler.GetOrders)
				r.Get("/{id}", h.OrderHandler.GetOrder)
				r.Post("/{id}/confirm", h.OrderHandler.ConfirmOrder)
			})
			r.Route("/users/me/points", func(r chi.Router) {
				r.Get("/", h.WalletHandler.GetPoints)
				r.Get("/history", h.WalletHandler.GetHistory)
			})
		})
	})

	return r
}
