package productrepo

import (
	"context"
	"strings"

	"github.com/GlebRadaev/goodpang/internal/domain"
	"github.com/GlebRadaev/goodpang/internal/pg"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const searchLimit = 100

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

// FindActiveByIDs returns the orderable products among ids. Missing or non-active ids are
// simply absent from the result.
func (r *Repository) FindActiveByIDs(ctx context.Context, ids []int) ([]domain.Product, error) {
	query := `
		SELECT id, name, price, status, category_id
		FROM product
		WHERE id = ANY($1) AND status = $2
		ORDER BY id
	`
	rows, err := r.db.Query(ctx, query, ids, string(domain.ProductStatusActive))
	if err != nil {
		zap.L().Error("can't find products by ids", zap.Error(err))
		return nil, err
	}
	return scanProducts(rows)
}

func (r *Repository) ListActive(ctx context.Context) ([]domain.Product, error) {
	query := `
		SELECT id, name, price, status, category_id
		FROM product
		WHERE status = $1
		ORDER BY id
	`
	rows, err := r.db.Query(ctx, query, string(domain.ProductStatusActive))
	if err != nil {
		zap.L().Error("can't list products", zap.Error(err))
		return nil, err
	}
	return scanProducts(rows)
}

func (r *Repository) ListActiveByCategories(ctx context.Context, categoryIDs []int) ([]domain.Product, error) {
	query := `
		SELECT id, name, price, status, category_id
		FROM product
		WHERE category_id = ANY($1) AND status = $2
		ORDER BY id
	`
	rows, err := r.db.Query(ctx, query, categoryIDs, string(domain.ProductStatusActive))
	if err != nil {
		zap.L().Error("can't list products by categories", zap.Error(err))
		return nil, err
	}
	return scanProducts(rows)
}

// SearchByName matches active products whose name contains text, case-insensitively.
func (r *Repository) SearchByName(ctx context.Context, text string) ([]domain.Product, error) {
	query := `
		SELECT id, name, price, status, category_id
		FROM product
		WHERE name ILIKE $1 AND status = $2
		ORDER BY id
		LIMIT $3
	`
	rows, err := r.db.Query(ctx, query, "%"+escapeLike(text)+"%", string(domain.ProductStatusActive), searchLimit)
	if err != nil {
		zap.L().Error("can't search products", zap.Error(err))
		return nil, err
	}
	return scanProducts(rows)
}

func scanProducts(rows pgx.Rows) ([]domain.Product, error) {
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Status, &p.CategoryID); err != nil {
			zap.L().Error("can't scan product row", zap.Error(err))
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		zap.L().Error("failed to iterate product rows", zap.Error(err))
		return nil, err
	}
	return products, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
