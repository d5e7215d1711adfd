package walletservice

import (
	"context"
	"errors"
	"fmt"

	"github.com/GlebRadaev/goodpang/internal/config"
	"github.com/GlebRadaev/goodpang/internal/domain"
	"go.uber.org/zap"
)

// Optimistic guards the user row with a version compare-and-set and records each debit in
// the ledger at the version the row moved to.
type Optimistic struct {
	users  UserRepo
	ledger LedgerRepo
}

func NewOptimistic(users UserRepo, ledger LedgerRepo) *Optimistic {
	return &Optimistic{
		users:  users,
		ledger: ledger,
	}
}

func (o *Optimistic) Name() string {
	return config.OptimisticStrategy
}

func (o *Optimistic) Debit(ctx context.Context, userID int, amount int64, reason string) (*domain.LedgerEntry, error) {
	wallet, err := o.Balance(ctx, userID)
	if err != nil {
		return nil, err
	}
	if wallet.Points < amount {
		return nil, domain.ErrInsufficientPoints
	}

	affected, err := o.users.DebitIfVersion(ctx, userID, wallet.Version, amount)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		zap.L().Warn("wallet changed under debit",
			zap.Int("user_id", userID), zap.Int64("version", wallet.Version))
		return nil, domain.ErrVersionConflict
	}

	entry, err := o.ledger.Append(ctx, &domain.LedgerEntry{
		UserID:       userID,
		Version:      wallet.Version + 1,
		PointsChange: -amount,
		PointsSum:    wallet.Points - amount,
		Reason:       reason,
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: %w", domain.ErrVersionConflict, err)
		}
		return nil, err
	}
	return entry, nil
}

// Balance reads the denormalized user row.
func (o *Optimistic) Balance(ctx context.Context, userID int) (*domain.Wallet, error) {
	wallet, err := o.users.GetWallet(ctx, userID)
	if err != nil {
		return nil, err
	}
	if wallet == nil {
		return nil, domain.ErrUserNotFound
	}
	return wallet, nil
}
