package repo

import (
	"github.com/GlebRadaev/goodpang/internal/pg"
	"github.com/GlebRadaev/goodpang/internal/reconciler"
	categoryrepo "github.com/GlebRadaev/goodpang/internal/repo/category-repo"
	ledgerrepo "github.com/GlebRadaev/goodpang/internal/repo/ledger-repo"
	orderrepo "github.com/GlebRadaev/goodpang/internal/repo/order-repo"
	productrepo "github.com/GlebRadaev/goodpang/internal/repo/product-repo"
	userrepo "github.com/GlebRadaev/goodpang/internal/repo/user-repo"
	"github.com/GlebRadaev/goodpang/internal/service/authservice"
	"github.com/GlebRadaev/goodpang/internal/service/orderservice"
	"github.com/GlebRadaev/goodpang/internal/service/paymentservice"
	"github.com/GlebRadaev/goodpang/internal/service/productservice"
	"github.com/GlebRadaev/goodpang/internal/service/walletservice"
)

// UserRepo is everything the services need from service_user.
type UserRepo interface {
	authservice.Repo
	walletservice.UserRepo
	reconciler.UserRepo
}

// LedgerRepo is everything the services need from the points ledger.
type LedgerRepo interface {
	authservice.LedgerRepo
	walletservice.LedgerRepo
	reconciler.LedgerRepo
}

type OrderRepo interface {
	orderservice.Repo
	paymentservice.OrderRepo
}

type ProductRepo interface {
	orderservice.ProductRepo
	productservice.ProductRepo
}

type Repositories struct {
	UserRepo     UserRepo
	LedgerRepo   LedgerRepo
	OrderRepo    OrderRepo
	ProductRepo  ProductRepo
	CategoryRepo productservice.CategoryRepo
	TXManager    pg.TXManager
}

func New(conn pg.Database, txManager pg.TXManager) *Repositories {
	return &Repositories{
		UserRepo:     userrepo.New(conn),
		LedgerRepo:   ledgerrepo.New(conn),
		OrderRepo:    orderrepo.New(conn, txManager),
		ProductRepo:  productrepo.New(conn),
		CategoryRepo: categoryrepo.New(conn),
		TXManager:    txManager,
	}
}
