package reconciler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/GlebRadaev/goodpang/internal/domain"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"
)

func NewMock(t *testing.T) (*Service, *MockUserRepo, *MockLedgerRepo, *MockWorkerPoolI) {
	ctrl := gomock.NewController(t)
	userRepo := NewMockUserRepo(ctrl)
	ledgerRepo := NewMockLedgerRepo(ctrl)
	workerPool := NewMockWorkerPoolI(ctrl)
	service := &Service{
		userRepo:   userRepo,
		ledgerRepo: ledgerRepo,
		workerPool: workerPool,
		limit:      2,
		interval:   10 * time.Millisecond,
	}
	return service, userRepo, ledgerRepo, workerPool
}

func runNow(_ context.Context, task Task) error {
	return task()
}

// chain builds a consistent ledger: signup with the given points, then each debit.
func chain(userID int, signup int64, debits ...int64) []domain.LedgerEntry {
	entries := []domain.LedgerEntry{{UserID: userID, Version: 0, PointsChange: signup, PointsSum: signup}}
	sum := signup
	for i, d := range debits {
		sum -= d
		entries = append(entries, domain.LedgerEntry{
			UserID: userID, Version: int64(i + 1), PointsChange: -d, PointsSum: sum,
		})
	}
	return entries
}

func TestService_reconcile(t *testing.T) {
	dbErr := errors.New("database error")
	broken := chain(2, 1000, 100)
	broken[1].PointsSum = 950

	tests := []struct {
		name        string
		prepareMock func(users *MockUserRepo, ledger *MockLedgerRepo, pool *MockWorkerPoolI)
	}{
		{
			name: "Lagging wallet is replayed",
			prepareMock: func(users *MockUserRepo, ledger *MockLedgerRepo, pool *MockWorkerPoolI) {
				ledger.EXPECT().FindDrifted(gomock.Any(), uint32(2)).Return([]domain.WalletDrift{
					{UserID: 1, WalletPoints: 1000, WalletVersion: 0, LedgerSum: 400, LedgerVersion: 1},
				}, nil)
				pool.EXPECT().AddTask(gomock.Any(), gomock.Any()).DoAndReturn(runNow)
				ledger.EXPECT().History(gomock.Any(), 1).Return(chain(1, 1000, 600), nil)
				users.EXPECT().ReplayWallet(gomock.Any(), 1, int64(400), int64(1)).Return(int64(1), nil)
			},
		},
		{
			name: "Broken chain is not replayed",
			prepareMock: func(users *MockUserRepo, ledger *MockLedgerRepo, pool *MockWorkerPoolI) {
				ledger.EXPECT().FindDrifted(gomock.Any(), uint32(2)).Return([]domain.WalletDrift{
					{UserID: 2, WalletPoints: 1000, WalletVersion: 0, LedgerSum: 950, LedgerVersion: 1},
				}, nil)
				pool.EXPECT().AddTask(gomock.Any(), gomock.Any()).DoAndReturn(runNow)
				ledger.EXPECT().History(gomock.Any(), 2).Return(broken, nil)
			},
		},
		{
			name: "Wallet ahead of ledger is left alone",
			prepareMock: func(users *MockUserRepo, ledger *MockLedgerRepo, pool *MockWorkerPoolI) {
				ledger.EXPECT().FindDrifted(gomock.Any(), uint32(2)).Return([]domain.WalletDrift{
					{UserID: 3, WalletPoints: 100, WalletVersion: 5, LedgerSum: 400, LedgerVersion: 1},
				}, nil)
				pool.EXPECT().AddTask(gomock.Any(), gomock.Any()).DoAndReturn(runNow)
				ledger.EXPECT().History(gomock.Any(), 3).Return(chain(3, 1000, 600), nil)
			},
		},
		{
			name: "Every drifted user is handled",
			prepareMock: func(users *MockUserRepo, ledger *MockLedgerRepo, pool *MockWorkerPoolI) {
				ledger.EXPECT().FindDrifted(gomock.Any(), uint32(2)).Return([]domain.WalletDrift{
					{UserID: 1, LedgerSum: 400, LedgerVersion: 1},
					{UserID: 4, LedgerSum: 700, LedgerVersion: 1},
				}, nil)
				pool.EXPECT().AddTask(gomock.Any(), gomock.Any()).DoAndReturn(runNow).Times(2)
				ledger.EXPECT().History(gomock.Any(), 1).Return(chain(1, 1000, 600), nil)
				ledger.EXPECT().History(gomock.Any(), 4).Return(chain(4, 1000, 300), nil)
				users.EXPECT().ReplayWallet(gomock.Any(), 1, int64(400), int64(1)).Return(int64(1), nil)
				users.EXPECT().ReplayWallet(gomock.Any(), 4, int64(700), int64(1)).Return(int64(0), nil)
			},
		},
		{
			name: "Fetching drifted wallets fails",
			prepareMock: func(users *MockUserRepo, ledger *MockLedgerRepo, pool *MockWorkerPoolI) {
				ledger.EXPECT().FindDrifted(gomock.Any(), uint32(2)).Return(nil, dbErr)
			},
		},
		{
			name: "Scheduling fails",
			prepareMock: func(users *MockUserRepo, ledger *MockLedgerRepo, pool *MockWorkerPoolI) {
				ledger.EXPECT().FindDrifted(gomock.Any(), uint32(2)).Return([]domain.WalletDrift{{UserID: 1}}, nil)
				pool.EXPECT().AddTask(gomock.Any(), gomock.Any()).Return(context.Canceled)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, users, ledger, pool := NewMock(t)
			tt.prepareMock(users, ledger, pool)

			service.reconcile(context.Background())

			_, busy := service.inFlight.Load(1)
			assert.False(t, busy)
		})
	}
}

func TestService_repair(t *testing.T) {
	dbErr := errors.New("database error")
	drift := domain.WalletDrift{UserID: 1, WalletPoints: 1000, LedgerSum: 400, LedgerVersion: 1}

	tests := []struct {
		name          string
		prepareMock   func(users *MockUserRepo, ledger *MockLedgerRepo)
		expectedError error
	}{
		{
			name: "History fails",
			prepareMock: func(users *MockUserRepo, ledger *MockLedgerRepo) {
				ledger.EXPECT().History(gomock.Any(), 1).Return(nil, dbErr)
			},
			expectedError: dbErr,
		},
		{
			name: "Replay fails",
			prepareMock: func(users *MockUserRepo, ledger *MockLedgerRepo) {
				ledger.EXPECT().History(gomock.Any(), 1).Return(chain(1, 1000, 600), nil)
				users.EXPECT().ReplayWallet(gomock.Any(), 1, int64(400), int64(1)).Return(int64(0), dbErr)
			},
			expectedError: dbErr,
		},
		{
			name: "Already caught up",
			prepareMock: func(users *MockUserRepo, ledger *MockLedgerRepo) {
				ledger.EXPECT().History(gomock.Any(), 1).Return(chain(1, 1000, 600), nil)
				users.EXPECT().ReplayWallet(gomock.Any(), 1, int64(400), int64(1)).Return(int64(0), nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, users, ledger, _ := NewMock(t)
			tt.prepareMock(users, ledger)

			err := service.repair(context.Background(), drift)
			assert.ErrorIs(t, err, tt.expectedError)
		})
	}
}

func TestService_run(t *testing.T) {
	service, _, ledger, pool := NewMock(t)

	var ticks atomic.Int32
	ledger.EXPECT().FindDrifted(gomock.Any(), uint32(2)).DoAndReturn(
		func(context.Context, uint32) ([]domain.WalletDrift, error) {
			ticks.Add(1)
			return nil, nil
		},
	).MinTimes(1)
	pool.EXPECT().Close().Times(1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		service.run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return ticks.Load() > 0 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
}

func TestService_StartDisabled(t *testing.T) {
	service, _, _, pool := NewMock(t)
	service.interval = 0
	pool.EXPECT().Close().Times(1)

	service.Start(context.Background())
}
