package orderrepo

import (
	"context"
	"errors"

	"github.com/GlebRadaev/goodpang/internal/domain"
	"github.com/GlebRadaev/goodpang/internal/pg"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type Repository struct {
	db        pg.Database
	txManager pg.TXManager
}

func New(db pg.Database, txManager pg.TXManager) *Repository {
	return &Repository{
		db:        db,
		txManager: txManager,
	}
}

// Create stores the order and its lines in one transaction and fills in the generated ids.
func (r *Repository) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	orderQuery := `
		INSERT INTO orders (user_id, code, total_price, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	lineQuery := `
		INSERT INTO order_line (order_id, product_id, quantity, price, discount_ratio)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := r.txManager.Begin(ctx, func(ctx context.Context) error {
		err := r.db.QueryRow(ctx, orderQuery, order.UserID, order.Code, order.TotalPrice, string(order.Status)).
			Scan(&order.ID, &order.CreatedAt)
		if err != nil {
			zap.L().Error("can't save order", zap.Error(err))
			return err
		}
		for i := range order.Lines {
			line := &order.Lines[i]
			line.OrderID = order.ID
			err := r.db.QueryRow(ctx, lineQuery, line.OrderID, line.ProductID, line.Quantity, line.Price, line.DiscountRatio).
				Scan(&line.ID)
			if err != nil {
				zap.L().Error("can't save order line", zap.Int("product_id", line.ProductID), zap.Error(err))
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// FindByIDAndUser returns nil when the order does not exist or belongs to another user.
func (r *Repository) FindByIDAndUser(ctx context.Context, orderID, userID int) (*domain.Order, error) {
	query := `
		SELECT id, user_id, code, total_price, status, payment_key, created_at, paid_at
		FROM orders
		WHERE id = $1 AND user_id = $2
	`
	var order domain.Order
	err := r.db.QueryRow(ctx, query, orderID, userID).Scan(
		&order.ID, &order.UserID, &order.Code, &order.TotalPrice, &order.Status, &order.PaymentKey, &order.CreatedAt, &order.PaidAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find order", zap.Error(err))
		return nil, err
	}
	return &order, nil
}

func (r *Repository) FindByUserID(ctx context.Context, userID int) ([]domain.Order, error) {
	query := `
		SELECT id, user_id, code, total_price, status, payment_key, created_at, paid_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		zap.L().Error("can't get orders", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var order domain.Order
		err := rows.Scan(&order.ID, &order.UserID, &order.Code, &order.TotalPrice, &order.Status, &order.PaymentKey, &order.CreatedAt, &order.PaidAt)
		if err != nil {
			zap.L().Error("can't scan order row", zap.Error(err))
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		zap.L().Error("failed to iterate order rows", zap.Error(err))
		return nil, err
	}
	return orders, nil
}

func (r *Repository) FindLines(ctx context.Context, orderID int) ([]domain.OrderLine, error) {
	query := `
		SELECT id, order_id, product_id, quantity, price, discount_ratio
		FROM order_line
		WHERE order_id = $1
		ORDER BY id
	`
	rows, err := r.db.Query(ctx, query, orderID)
	if err != nil {
		zap.L().Error("can't get order lines", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var lines []domain.OrderLine
	for rows.Next() {
		var line domain.OrderLine
		if err := rows.Scan(&line.ID, &line.OrderID, &line.ProductID, &line.Quantity, &line.Price, &line.DiscountRatio); err != nil {
			zap.L().Error("can't scan order line row", zap.Error(err))
			return nil, err
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		zap.L().Error("failed to iterate order line rows", zap.Error(err))
		return nil, err
	}
	return lines, nil
}

// CompareAndSetStatus moves the order from t.From to t.To in a single statement and
// reports how many rows changed. Zero means the order was not in t.From.
func (r *Repository) CompareAndSetStatus(ctx context.Context, t domain.StatusTransition) (int64, error) {
	query := `
		UPDATE orders
		SET status = $1,
			payment_key = NULLIF($2, ''),
			paid_at = CASE WHEN $1 = 'PAID' THEN now() ELSE paid_at END
		WHERE id = $3 AND user_id = $4 AND status = $5
	`
	tag, err := r.db.Exec(ctx, query, string(t.To), t.PaymentKey, t.OrderID, t.UserID, string(t.From))
	if err != nil {
		zap.L().Error("failed to update order status", zap.Int("order_id", t.OrderID), zap.Error(err))
		return 0, err
	}
	return tag.RowsAffected(), nil
}
