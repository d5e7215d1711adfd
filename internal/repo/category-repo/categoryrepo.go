package categoryrepo

import (
	"context"
	"errors"

	"github.com/GlebRadaev/goodpang/internal/domain"
	"github.com/GlebRadaev/goodpang/internal/pg"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

// FindByID returns the category with its direct children, or nil when it does not exist.
func (r *Repository) FindByID(ctx context.Context, categoryID int) (*domain.Category, error) {
	query := `
		SELECT id, name, parent_id
		FROM category
		WHERE id = $1
	`
	var category domain.Category
	err := r.db.QueryRow(ctx, query, categoryID).Scan(&category.ID, &category.Name, &category.ParentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find category", zap.Error(err))
		return nil, err
	}

	children, err := r.childrenOf(ctx, []int{category.ID})
	if err != nil {
		return nil, err
	}
	category.Children = children
	return &category, nil
}

// ListRoots returns the top-level categories, each with its direct children.
func (r *Repository) ListRoots(ctx context.Context) ([]domain.Category, error) {
	query := `
		SELECT id, name, parent_id
		FROM category
		WHERE parent_id IS NULL
		ORDER BY id
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		zap.L().Error("can't list root categories", zap.Error(err))
		return nil, err
	}
	roots, err := scanCategories(rows)
	if err != nil {
		return nil, err
	}
	if len(roots) == 0 {
		return roots, nil
	}

	ids := make([]int, 0, len(roots))
	for _, root := range roots {
		ids = append(ids, root.ID)
	}
	children, err := r.childrenOf(ctx, ids)
	if err != nil {
		return nil, err
	}

	byParent := make(map[int][]domain.Category, len(roots))
	for _, child := range children {
		byParent[*child.ParentID] = append(byParent[*child.ParentID], child)
	}
	for i := range roots {
		roots[i].Children = byParent[roots[i].ID]
	}
	return roots, nil
}

func (r *Repository) childrenOf(ctx context.Context, parentIDs []int) ([]domain.Category, error) {
	query := `
		SELECT id, name, parent_id
		FROM category
		WHERE parent_id = ANY($1)
		ORDER BY id
	`
	rows, err := r.db.Query(ctx, query, parentIDs)
	if err != nil {
		zap.L().Error("can't list child categories", zap.Error(err))
		return nil, err
	}
	return scanCategories(rows)
}

func scanCategories(rows pgx.Rows) ([]domain.Category, error) {
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.ParentID); err != nil {
			zap.L().Error("can't scan category row", zap.Error(err))
			return nil, err
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		zap.L().Error("failed to iterate category rows", zap.Error(err))
		return nil, err
	}
	return categories, nil
}
