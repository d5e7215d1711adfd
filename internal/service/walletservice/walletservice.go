package walletservice

//go:generate mockgen -source=walletservice.go -destination=mock_walletservice.go -package=walletservice

import (
	"context"
	"fmt"

	"github.com/GlebRadaev/goodpang/internal/config"
	"github.com/GlebRadaev/goodpang/internal/domain"
	"go.uber.org/zap"
)

type UserRepo interface {
	GetWallet(ctx context.Context, userID int) (*domain.Wallet, error)
	DebitIfVersion(ctx context.Context, userID int, version, amount int64) (int64, error)
	RecordOrderPaid(ctx context.Context, userID int, points, version int64) error
}

type LedgerRepo interface {
	Latest(ctx context.Context, userID int) (*domain.LedgerEntry, error)
	Append(ctx context.Context, entry *domain.LedgerEntry) (*domain.LedgerEntry, error)
	History(ctx context.Context, userID int) ([]domain.LedgerEntry, error)
}

// Strategy serializes balance mutations of one user. Debit must be called inside the
// caller's transaction; it fails with domain.ErrInsufficientPoints when the balance is too
// low and with domain.ErrVersionConflict when another mutation got there first.
type Strategy interface {
	Name() string
	Debit(ctx context.Context, userID int, amount int64, reason string) (*domain.LedgerEntry, error)
	Balance(ctx context.Context, userID int) (*domain.Wallet, error)
}

// NewStrategy picks the debit strategy by its configured name.
func NewStrategy(name string, users UserRepo, ledger LedgerRepo) (Strategy, error) {
	switch name {
	case config.OptimisticStrategy:
		return NewOptimistic(users, ledger), nil
	case config.LedgerStrategy:
		return NewLedger(users, ledger), nil
	default:
		return nil, fmt.Errorf("unknown wallet strategy %q", name)
	}
}

type Service struct {
	strategy   Strategy
	ledgerRepo LedgerRepo
}

func New(strategy Strategy, ledgerRepo LedgerRepo) *Service {
	return &Service{
		strategy:   strategy,
		ledgerRepo: ledgerRepo,
	}
}

func (s *Service) StrategyName() string {
	return s.strategy.Name()
}

func (s *Service) Balance(ctx context.Context, userID int) (*domain.Wallet, error) {
	wallet, err := s.strategy.Balance(ctx, userID)
	if err != nil {
		zap.L().Error("can't get balance", zap.Int("user_id", userID), zap.Error(err))
		return nil, err
	}
	return wallet, nil
}

// History lists the user's ledger entries, newest first.
func (s *Service) History(ctx context.Context, userID int) ([]domain.LedgerEntry, error) {
	entries, err := s.ledgerRepo.History(ctx, userID)
	if err != nil {
		zap.L().Error("can't get points history", zap.Int("user_id", userID), zap.Error(err))
		return nil, err
	}
	return entries, nil
}
