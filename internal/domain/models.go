package domain

import "time"

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// ProductStatus is the catalog state of a product. Only active products can be ordered.
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
	ProductStatusPaused   ProductStatus = "paused"
)

// DiscountRatio is applied to every order line at placement time.
const DiscountRatio = 0.9

type User struct {
	ID           int       `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Points       int64     `db:"points"`
	Version      int64     `db:"version"`
	OrderCount   int       `db:"order_count"`
	CreatedAt    time.Time `db:"created_at"`
}

// Wallet is a consistent snapshot of the balance-affecting columns of a user.
type Wallet struct {
	UserID     int   `db:"id"`
	Points     int64 `db:"points"`
	Version    int64 `db:"version"`
	OrderCount int   `db:"order_count"`
}

type Category struct {
	ID       int        `db:"id"`
	Name     string     `db:"name"`
	ParentID *int       `db:"parent_id"`
	Children []Category `db:"-"`
}

type Product struct {
	ID         int           `db:"id"`
	Name       string        `db:"name"`
	Price      int64         `db:"price"`
	Status     ProductStatus `db:"status"`
	CategoryID *int          `db:"category_id"`
}

type Order struct {
	ID         int         `db:"id"`
	UserID     int         `db:"user_id"`
	Code       string      `db:"code"`
	TotalPrice int64       `db:"total_price"`
	Status     OrderStatus `db:"status"`
	PaymentKey *string     `db:"payment_key"`
	CreatedAt  time.Time   `db:"created_at"`
	PaidAt     *time.Time  `db:"paid_at"`
	Lines      []OrderLine `db:"-"`
}

// OrderLine keeps the price and discount captured when the order was placed.
type OrderLine struct {
	ID            int     `db:"id"`
	OrderID       int     `db:"order_id"`
	ProductID     int     `db:"product_id"`
	Quantity      int     `db:"quantity"`
	Price         int64   `db:"price"`
	DiscountRatio float64 `db:"discount_ratio"`
}

// StatusTransition describes a compare-and-set on an order's status.
type StatusTransition struct {
	OrderID    int
	UserID     int
	From       OrderStatus
	To         OrderStatus
	PaymentKey string
}

// LedgerEntry is one immutable change of a user's points. PointsSum is the running
// balance after the change and Version is unique per user.
type LedgerEntry struct {
	ID           int       `db:"id"`
	UserID       int       `db:"user_id"`
	Version      int64     `db:"version"`
	PointsChange int64     `db:"points_change"`
	PointsSum    int64     `db:"points_sum"`
	Reason       string    `db:"reason"`
	CreatedAt    time.Time `db:"created_at"`
}

// WalletDrift is a user whose denormalized wallet lags the latest ledger entry.
type WalletDrift struct {
	UserID        int
	WalletPoints  int64
	WalletVersion int64
	LedgerSum     int64
	LedgerVersion int64
}
