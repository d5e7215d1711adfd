package walletservice

import (
	"context"
	"errors"
	"fmt"

	"github.com/GlebRadaev/goodpang/internal/config"
	"github.com/GlebRadaev/goodpang/internal/domain"
	"go.uber.org/zap"
)

// Ledger treats the points ledger as the source of truth. The unique (user, version) key
// serializes concurrent debits; the user row is then moved to the new head.
type Ledger struct {
	users  UserRepo
	ledger LedgerRepo
}

func NewLedger(users UserRepo, ledger LedgerRepo) *Ledger {
	return &Ledger{
		users:  users,
		ledger: ledger,
	}
}

func (l *Ledger) Name() string {
	return config.LedgerStrategy
}

func (l *Ledger) Debit(ctx context.Context, userID int, amount int64, reason string) (*domain.LedgerEntry, error) {
	head, err := l.Balance(ctx, userID)
	if err != nil {
		return nil, err
	}
	if head.Points < amount {
		return nil, domain.ErrInsufficientPoints
	}

	entry, err := l.ledger.Append(ctx, &domain.LedgerEntry{
		UserID:       userID,
		Version:      head.Version + 1,
		PointsChange: -amount,
		PointsSum:    head.Points - amount,
		Reason:       reason,
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateKey) {
			zap.L().Warn("ledger head moved under debit",
				zap.Int("user_id", userID), zap.Int64("version", head.Version+1))
			return nil, fmt.Errorf("%w: %w", domain.ErrVersionConflict, err)
		}
		return nil, err
	}

	if err := l.users.RecordOrderPaid(ctx, userID, entry.PointsSum, entry.Version); err != nil {
		return nil, err
	}
	return entry, nil
}

// Balance reads the ledger head. A user without entries has an empty wallet at version -1,
// so the first entry lands on version 0.
func (l *Ledger) Balance(ctx context.Context, userID int) (*domain.Wallet, error) {
	latest, err := l.ledger.Latest(ctx, userID)
	if err != nil {
		return nil, err
	}
	if latest == nil {
		return &domain.Wallet{UserID: userID, Version: -1}, nil
	}
	return &domain.Wallet{UserID: userID, Points: latest.PointsSum, Version: latest.Version}, nil
}
