package orderservice

//go:generate mockgen -source=orderservice.go -destination=mock_orderservice.go -package=orderservice

import (
	"context"
	"time"

	"github.com/GlebRadaev/goodpang/internal/domain"
	"github.com/GlebRadaev/goodpang/pkg/ordercode"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Repo interface {
	Create(ctx context.Context, order *domain.Order) (*domain.Order, error)
	FindByIDAndUser(ctx context.Context, orderID, userID int) (*domain.Order, error)
	FindByUserID(ctx context.Context, userID int) ([]domain.Order, error)
	FindLines(ctx context.Context, orderID int) ([]domain.OrderLine, error)
}

type ProductRepo interface {
	FindActiveByIDs(ctx context.Context, ids []int) ([]domain.Product, error)
}

// Item is one requested product and its quantity.
type Item struct {
	ProductID int
	Quantity  int
}

type Service struct {
	repo        Repo
	productRepo ProductRepo
	now         func() time.Time
}

func New(repo Repo, productRepo ProductRepo) *Service {
	return &Service{
		repo:        repo,
		productRepo: productRepo,
		now:         time.Now,
	}
}

// PlaceOrder prices the requested items at their current catalog price with the fixed
// discount and stores the order with its lines. Nothing is stored when any product is
// unknown or not orderable.
func (s *Service) PlaceOrder(ctx context.Context, userID int, items []Item) (*domain.Order, error) {
	ids, err := validateItems(items)
	if err != nil {
		return nil, err
	}

	products, err := s.productRepo.FindActiveByIDs(ctx, ids)
	if err != nil {
		zap.L().Error("can't load products", zap.Error(err))
		return nil, err
	}
	byID := make(map[int]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	ratio := decimal.NewFromFloat(domain.DiscountRatio)
	total := decimal.Zero
	lines := make([]domain.OrderLine, 0, len(items))
	for _, item := range items {
		product, ok := byID[item.ProductID]
		if !ok {
			zap.L().Info("order rejected", zap.Int("user_id", userID), zap.Int("product_id", item.ProductID))
			return nil, domain.ErrInvalidProduct
		}
		lines = append(lines, domain.OrderLine{
			ProductID:     product.ID,
			Quantity:      item.Quantity,
			Price:         product.Price,
			DiscountRatio: domain.DiscountRatio,
		})
		total = total.Add(decimal.NewFromInt(product.Price).Mul(decimal.NewFromInt(int64(item.Quantity))).Mul(ratio))
	}

	code, err := ordercode.New(s.now(), userID)
	if err != nil {
		return nil, err
	}

	order, err := s.repo.Create(ctx, &domain.Order{
		UserID:     userID,
		Code:       code,
		TotalPrice: total.IntPart(),
		Status:     domain.OrderStatusPending,
		Lines:      lines,
	})
	if err != nil {
		zap.L().Error("can't save order", zap.Error(err))
		return nil, err
	}

	zap.L().Info("order placed",
		zap.Int("order_id", order.ID), zap.Int("user_id", userID), zap.Int64("total_price", order.TotalPrice))
	return order, nil
}

func validateItems(items []Item) ([]int, error) {
	if len(items) == 0 {
		return nil, domain.ErrInvalidOrderLines
	}
	seen := make(map[int]struct{}, len(items))
	ids := make([]int, 0, len(items))
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, domain.ErrInvalidOrderLines
		}
		if _, dup := seen[item.ProductID]; dup {
			return nil, domain.ErrInvalidOrderLines
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	return ids, nil
}

func (s *Service) GetOrders(ctx context.Context, userID int) ([]domain.Order, error) {
	orders, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		zap.L().Error("failed to get orders", zap.Error(err))
		return nil, err
	}
	return orders, nil
}

// GetOrder returns the order with its lines. Orders of other users are reported as not found.
func (s *Service) GetOrder(ctx context.Context, userID, orderID int) (*domain.Order, error) {
	order, err := s.repo.FindByIDAndUser(ctx, orderID, userID)
	if err != nil {
		zap.L().Error("failed to get order", zap.Error(err))
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrOrderNotFound
	}
	lines, err := s.repo.FindLines(ctx, order.ID)
	if err != nil {
		zap.L().Error("failed to get order lines", zap.Error(err))
		return nil, err
	}
	order.Lines = lines
	return order, nil
}
