package service

import (
	"github.com/GlebRadaev/goodpang/internal/config"
	"github.com/GlebRadaev/goodpang/internal/handlers/auth"
	"github.com/GlebRadaev/goodpang/internal/handlers/orders"
	"github.com/GlebRadaev/goodpang/internal/handlers/products"
	"github.com/GlebRadaev/goodpang/internal/handlers/wallet"
	"github.com/GlebRadaev/goodpang/internal/repo"
	"github.com/GlebRadaev/goodpang/internal/service/authservice"
	"github.com/GlebRadaev/goodpang/internal/service/orderservice"
	"github.com/GlebRadaev/goodpang/internal/service/paymentservice"
	"github.com/GlebRadaev/goodpang/internal/service/productservice"
	"github.com/GlebRadaev/goodpang/internal/service/walletservice"
	pkgauth "github.com/GlebRadaev/goodpang/pkg/auth"
	"golang.org/x/crypto/bcrypt"
)

type Services struct {
	AuthService    auth.Service
	Identity       pkgauth.IdentityResolver
	OrderService   orders.Service
	PaymentService orders.PaymentService
	ProductService products.Service
	WalletService  wallet.Service
}

// New wires the services. It fails only on an unknown wallet strategy name.
func New(cfg *config.Config, repo *repo.Repositories) (*Services, error) {
	strategy, err := walletservice.NewStrategy(cfg.WalletStrategy, repo.UserRepo, repo.LedgerRepo)
	if err != nil {
		return nil, err
	}

	authService := authservice.New(
		repo.UserRepo,
		repo.LedgerRepo,
		repo.TXManager,
		pkgauth.NewHashService(bcrypt.DefaultCost),
		pkgauth.NewJWTService(cfg.JWTSecret, cfg.TokenTTL),
		cfg.SignupPoints,
	)

	return &Services{
		AuthService:    authService,
		Identity:       authService,
		OrderService:   orderservice.New(repo.OrderRepo, repo.ProductRepo),
		PaymentService: paymentservice.New(repo.OrderRepo, strategy, repo.TXManager),
		ProductService: productservice.New(repo.ProductRepo, repo.CategoryRepo),
		WalletService:  walletservice.New(strategy, repo.LedgerRepo),
	}, nil
}
