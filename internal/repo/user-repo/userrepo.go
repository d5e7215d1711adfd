package userrepo

import (
	"context"
	"errors"

	"github.com/GlebRadaev/goodpang/internal/domain"
	"github.com/GlebRadaev/goodpang/internal/pg"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const uniqueEmailConstraint = "unique_email"

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func (repo *Repository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
		SELECT id, email, password_hash, points, version, order_count, created_at
		FROM service_user
		WHERE email = $1
	`
	var user domain.User
	err := repo.db.QueryRow(ctx, query, email).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.Points, &user.Version, &user.OrderCount, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find user by email", zap.Error(err))
		return nil, err
	}
	return &user, nil
}

func (repo *Repository) FindByID(ctx context.Context, userID int) (*domain.User, error) {
	query := `
		SELECT id, email, password_hash, points, version, order_count, created_at
		FROM service_user
		WHERE id = $1
	`
	var user domain.User
	err := repo.db.QueryRow(ctx, query, userID).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.Points, &user.Version, &user.OrderCount, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find user by id", zap.Error(err))
		return nil, err
	}
	return &user, nil
}

func (repo *Repository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	query := `
		INSERT INTO service_user (email, password_hash, points, version, order_count)
		VALUES ($1, $2, $3, 0, 0)
		RETURNING id, created_at
	`
	err := repo.db.QueryRow(ctx, query, user.Email, user.PasswordHash, user.Points).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if pg.IsUniqueViolation(err, uniqueEmailConstraint) {
			return nil, domain.ErrUserAlreadyExists
		}
		zap.L().Error("can't save user", zap.Error(err))
		return nil, err
	}
	user.Version = 0
	user.OrderCount = 0
	return user, nil
}

// GetWallet reads points, version and order_count in one statement so they form a consistent snapshot.
func (repo *Repository) GetWallet(ctx context.Context, userID int) (*domain.Wallet, error) {
	query := `
		SELECT id, points, version, order_count
		FROM service_user
		WHERE id = $1
	`
	var wallet domain.Wallet
	err := repo.db.QueryRow(ctx, query, userID).Scan(&wallet.UserID, &wallet.Points, &wallet.Version, &wallet.OrderCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't get wallet", zap.Error(err))
		return nil, err
	}
	return &wallet, nil
}

// DebitIfVersion subtracts amount, counts the order and bumps the version only while the stored
// version still equals version. It returns the number of rows changed.
func (repo *Repository) DebitIfVersion(ctx context.Context, userID int, version, amount int64) (int64, error) {
	query := `
		UPDATE service_user
		SET points = points - $1, order_count = order_count + 1, version = version + 1
		WHERE id = $2 AND version = $3
	`
	tag, err := repo.db.Exec(ctx, query, amount, userID, version)
	if err != nil {
		zap.L().Error("can't debit wallet", zap.Error(err))
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// RecordOrderPaid counts a paid order and mirrors the ledger head onto the user row.
func (repo *Repository) RecordOrderPaid(ctx context.Context, userID int, points, version int64) error {
	query := `
		UPDATE service_user
		SET order_count = order_count + 1, points = $1, version = $2
		WHERE id = $3
	`
	tag, err := repo.db.Exec(ctx, query, points, version, userID)
	if err != nil {
		zap.L().Error("can't record paid order", zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// ReplayWallet moves the user row forward to a ledger head; it never moves it backwards.
func (repo *Repository) ReplayWallet(ctx context.Context, userID int, points, version int64) (int64, error) {
	query := `
		UPDATE service_user
		SET points = $1, version = $2
		WHERE id = $3 AND version < $2
	`
	tag, err := repo.db.Exec(ctx, query, points, version, userID)
	if err != nil {
		zap.L().Error("can't replay wallet", zap.Error(err))
		return 0, err
	}
	return tag.RowsAffected(), nil
}
