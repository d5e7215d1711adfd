package reconciler

//go:generate mockgen -source=reconciler.go -destination=mock_reconciler.go -package=reconciler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/GlebRadaev/goodpang/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultLimit   = 1000
	defaultWorkers = 10
)

type UserRepo interface {
	ReplayWallet(ctx context.Context, userID int, points, version int64) (int64, error)
}

type LedgerRepo interface {
	FindDrifted(ctx context.Context, limit uint32) ([]domain.WalletDrift, error)
	History(ctx context.Context, userID int) ([]domain.LedgerEntry, error)
}

// Service brings the denormalized wallet columns of service_user up to the head of each
// user's points ledger. It reads the ledger and never writes it.
type Service struct {
	userRepo   UserRepo
	ledgerRepo LedgerRepo
	workerPool WorkerPoolI
	limit      uint32
	interval   time.Duration
	inFlight   sync.Map
}

func New(interval time.Duration, userRepo UserRepo, ledgerRepo LedgerRepo) *Service {
	return &Service{
		userRepo:   userRepo,
		ledgerRepo: ledgerRepo,
		workerPool: NewWorkerPool(defaultWorkers),
		limit:      defaultLimit,
		interval:   interval,
	}
}

// Start runs the reconcile loop until ctx is done. A non-positive interval disables it.
func (s *Service) Start(ctx context.Context) {
	if s.interval <= 0 {
		zap.L().Info("wallet reconciler disabled")
		s.workerPool.Close()
		return
	}
	zap.L().Info("wallet reconciler started", zap.Duration("interval", s.interval))
	go s.run(ctx)
}

func (s *Service) run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	defer s.workerPool.Close()

	for {
		select {
		case <-ctx.Done():
			zap.L().Info("context canceled, stopping wallet reconciler")
			return
		case <-ticker.C:
			s.reconcile(ctx)
		}
	}
}

func (s *Service) reconcile(ctx context.Context) {
	drifts, err := s.ledgerRepo.FindDrifted(ctx, s.limit)
	if err != nil {
		zap.L().Error("failed to fetch drifted wallets", zap.Error(err))
		return
	}
	if len(drifts) == 0 {
		return
	}
	zap.L().Info("drifted wallets found", zap.Int("count", len(drifts)))

	var g errgroup.Group
	for _, drift := range drifts {
		if _, loaded := s.inFlight.LoadOrStore(drift.UserID, struct{}{}); loaded {
			continue
		}

		g.Go(func() error {
			err := s.workerPool.AddTask(ctx, func() error {
				defer s.inFlight.Delete(drift.UserID)
				return s.repair(ctx, drift)
			})
			if err != nil {
				s.inFlight.Delete(drift.UserID)
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		zap.L().Error("error scheduling wallet repairs", zap.Error(err))
	}
}

func (s *Service) repair(ctx context.Context, drift domain.WalletDrift) error {
	entries, err := s.ledgerRepo.History(ctx, drift.UserID)
	if err != nil {
		return fmt.Errorf("failed to load ledger of user %d: %w", drift.UserID, err)
	}
	if err := domain.VerifyLedger(entries); err != nil {
		zap.L().Error("ledger chain broken, wallet left as is", zap.Int("user_id", drift.UserID), zap.Error(err))
		return err
	}
	if drift.WalletVersion > drift.LedgerVersion {
		zap.L().Warn("wallet ahead of ledger",
			zap.Int("user_id", drift.UserID),
			zap.Int64("wallet_version", drift.WalletVersion),
			zap.Int64("ledger_version", drift.LedgerVersion),
		)
		return nil
	}

	rows, err := s.userRepo.ReplayWallet(ctx, drift.UserID, drift.LedgerSum, drift.LedgerVersion)
	if err != nil {
		return fmt.Errorf("failed to replay wallet of user %d: %w", drift.UserID, err)
	}
	if rows == 0 {
		zap.L().Debug("wallet already caught up", zap.Int("user_id", drift.UserID))
		return nil
	}
	zap.L().Info("wallet replayed from ledger",
		zap.Int("user_id", drift.UserID),
		zap.Int64("points", drift.LedgerSum),
		zap.Int64("version", drift.LedgerVersion),
	)
	return nil
}
