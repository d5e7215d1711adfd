package productservice

//go:generate mockgen -source=productservice.go -destination=mock_productservice.go -package=productservice

import (
	"context"

	"github.com/GlebRadaev/goodpang/internal/domain"
	"go.uber.org/zap"
)

type ProductRepo interface {
	ListActive(ctx context.Context) ([]domain.Product, error)
	ListActiveByCategories(ctx context.Context, categoryIDs []int) ([]domain.Product, error)
	SearchByName(ctx context.Context, text string) ([]domain.Product, error)
}

type CategoryRepo interface {
	FindByID(ctx context.Context, categoryID int) (*domain.Category, error)
	ListRoots(ctx context.Context) ([]domain.Category, error)
}

type Service struct {
	productRepo  ProductRepo
	categoryRepo CategoryRepo
}

func New(productRepo ProductRepo, categoryRepo CategoryRepo) *Service {
	return &Service{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
	}
}

// List returns orderable products. A non-empty query searches by name and wins over the
// category filter; a category covers its direct children too.
func (s *Service) List(ctx context.Context, categoryID *int, query string) ([]domain.Product, error) {
	if query != "" {
		return s.productRepo.SearchByName(ctx, query)
	}
	if categoryID == nil {
		return s.productRepo.ListActive(ctx)
	}

	category, err := s.categoryRepo.FindByID(ctx, *categoryID)
	if err != nil {
		return nil, err
	}
	if category == nil {
		zap.L().Debug("unknown category", zap.Int("category_id", *categoryID))
		return []domain.Product{}, nil
	}

	ids := make([]int, 0, len(category.Children)+1)
	ids = append(ids, category.ID)
	for _, child := range category.Children {
		ids = append(ids, child.ID)
	}
	return s.productRepo.ListActiveByCategories(ctx, ids)
}

func (s *Service) Categories(ctx context.Context) ([]domain.Category, error) {
	return s.categoryRepo.ListRoots(ctx)
}
