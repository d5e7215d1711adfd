package paymentservice

//go:generate mockgen -source=paymentservice.go -destination=mock_paymentservice.go -package=paymentservice

import (
	"context"
	"errors"

	"github.com/GlebRadaev/goodpang/internal/domain"
	"github.com/GlebRadaev/goodpang/internal/pg"
	"go.uber.org/zap"
)

// maxAttempts bounds how often a confirmation that lost a wallet race is run again.
const maxAttempts = 2

type OrderRepo interface {
	FindByIDAndUser(ctx context.Context, orderID, userID int) (*domain.Order, error)
	CompareAndSetStatus(ctx context.Context, t domain.StatusTransition) (int64, error)
}

type Wallet interface {
	Debit(ctx context.Context, userID int, amount int64, reason string) (*domain.LedgerEntry, error)
}

type Service struct {
	orderRepo OrderRepo
	wallet    Wallet
	txManager pg.TXManager
}

func New(orderRepo OrderRepo, wallet Wallet, txManager pg.TXManager) *Service {
	return &Service{
		orderRepo: orderRepo,
		wallet:    wallet,
		txManager: txManager,
	}
}

// Confirm marks the order paid and debits its total from the owner's wallet. The status
// change, the debit and its ledger entry commit together; on any failure the order stays
// PENDING. Repeating a successful call with the same payment key is a no-op success.
func (s *Service) Confirm(ctx context.Context, userID, orderID int, paymentKey string) error {
	if paymentKey == "" {
		return domain.ErrPaymentKeyRequired
	}

	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = s.confirmOnce(ctx, userID, orderID, paymentKey)
		if !errors.Is(err, domain.ErrVersionConflict) {
			break
		}
		zap.L().Warn("confirmation lost a wallet race",
			zap.Int("order_id", orderID), zap.Int("attempt", attempt))
	}
	return err
}

func (s *Service) confirmOnce(ctx context.Context, userID, orderID int, paymentKey string) error {
	var entry *domain.LedgerEntry
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		order, err := s.orderRepo.FindByIDAndUser(ctx, orderID, userID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrOrderNotFound
		}

		affected, err := s.orderRepo.CompareAndSetStatus(ctx, domain.StatusTransition{
			OrderID:    order.ID,
			UserID:     userID,
			From:       domain.OrderStatusPending,
			To:         domain.OrderStatusPaid,
			PaymentKey: paymentKey,
		})
		if err != nil {
			return err
		}
		if affected == 0 {
			return s.checkReplay(ctx, orderID, userID, paymentKey)
		}

		entry, err = s.wallet.Debit(ctx, userID, order.TotalPrice, domain.ConfirmReason(order.ID))
		return err
	})
	if err != nil {
		return err
	}

	if entry != nil {
		zap.L().Info("order confirmed",
			zap.Int("order_id", orderID),
			zap.Int("user_id", userID),
			zap.Int64("points_change", entry.PointsChange),
			zap.Int64("points_sum", entry.PointsSum),
			zap.Int64("version", entry.Version),
		)
	} else {
		zap.L().Info("order confirmation replayed", zap.Int("order_id", orderID), zap.String("payment_key", paymentKey))
	}
	return nil
}

// checkReplay runs after losing the status compare-and-set. The call succeeds only if the
// order was already paid under the same payment key.
func (s *Service) checkReplay(ctx context.Context, orderID, userID int, paymentKey string) error {
	current, err := s.orderRepo.FindByIDAndUser(ctx, orderID, userID)
	if err != nil {
		return err
	}
	if current == nil {
		return domain.ErrOrderNotFound
	}
	if current.Status == domain.OrderStatusPaid && current.PaymentKey != nil && *current.PaymentKey == paymentKey {
		return nil
	}
	zap.L().Warn("order already paid", zap.Int("order_id", orderID), zap.String("status", string(current.Status)))
	return domain.ErrAlreadyPaid
}
