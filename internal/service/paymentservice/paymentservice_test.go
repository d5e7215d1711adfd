package paymentservice

import (
	"context"
	"errors"
	"testing"

	"github.com/GlebRadaev/goodpang/internal/domain"
	"github.com/GlebRadaev/goodpang/internal/pg"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"
)

func NewMock(t *testing.T) (*Service, *MockOrderRepo, *MockWallet, *pg.MockTXManager) {
	ctrl := gomock.NewController(t)
	orderRepo := NewMockOrderRepo(ctrl)
	wallet := NewMockWallet(ctrl)
	txManager := pg.NewMockTXManager(ctrl)
	return New(orderRepo, wallet, txManager), orderRepo, wallet, txManager
}

func runInTx(ctx context.Context, fn pg.TransactionalFn) error {
	return fn(ctx)
}

func TestConfirm(t *testing.T) {
	payKey := "pay-1"
	otherKey := "pay-2"
	pending := &domain.Order{ID: 9, UserID: 1, TotalPrice: 600, Status: domain.OrderStatusPending}
	transition := domain.StatusTransition{
		OrderID: 9, UserID: 1, From: domain.OrderStatusPending, To: domain.OrderStatusPaid, PaymentKey: payKey,
	}
	debited := &domain.LedgerEntry{UserID: 1, Version: 1, PointsChange: -600, PointsSum: 400, Reason: "orders:9:confirm"}
	dbErr := errors.New("database error")

	tests := []struct {
		name          string
		paymentKey    string
		prepareMock   func(orders *MockOrderRepo, wallet *MockWallet, tx *pg.MockTXManager)
		expectedError error
	}{
		{
			name:          "Payment key missing",
			paymentKey:    "",
			prepareMock:   func(*MockOrderRepo, *MockWallet, *pg.MockTXManager) {},
			expectedError: domain.ErrPaymentKeyRequired,
		},
		{
			name:       "Order paid and wallet debited",
			paymentKey: payKey,
			prepareMock: func(orders *MockOrderRepo, wallet *MockWallet, tx *pg.MockTXManager) {
				tx.EXPECT().Begin(gomock.Any(), gomock.Any()).DoAndReturn(runInTx)
				orders.EXPECT().FindByIDAndUser(gomock.Any(), 9, 1).Return(pending, nil)
				orders.EXPECT().CompareAndSetStatus(gomock.Any(), transition).Return(int64(1), nil)
				wallet.EXPECT().Debit(gomock.Any(), 1, int64(600), "orders:9:confirm").Return(debited, nil)
			},
		},
		{
			name:       "Order not found",
			paymentKey: payKey,
			prepareMock: func(orders *MockOrderRepo, wallet *MockWallet, tx *pg.MockTXManager) {
				tx.EXPECT().Begin(gomock.Any(), gomock.Any()).DoAndReturn(runInTx)
				orders.EXPECT().FindByIDAndUser(gomock.Any(), 9, 1).Return(nil, nil)
			},
			expectedError: domain.ErrOrderNotFound,
		},
		{
			name:       "Paid under another key",
			paymentKey: payKey,
			prepareMock: func(orders *MockOrderRepo, wallet *MockWallet, tx *pg.MockTXManager) {
				tx.EXPECT().Begin(gomock.Any(), gomock.Any()).DoAndReturn(runInTx)
				gomock.InOrder(
					orders.EXPECT().FindByIDAndUser(gomock.Any(), 9, 1).Return(pending, nil),
					orders.EXPECT().CompareAndSetStatus(gomock.Any(), transition).Return(int64(0), nil),
					orders.EXPECT().FindByIDAndUser(gomock.Any(), 9, 1).Return(&domain.Order{
						ID: 9, UserID: 1, TotalPrice: 600, Status: domain.OrderStatusPaid, PaymentKey: &otherKey,
					}, nil),
				)
			},
			expectedError: domain.ErrAlreadyPaid,
		},
		{
			name:       "Cancelled order",
			paymentKey: payKey,
			prepareMock: func(orders *MockOrderRepo, wallet *MockWallet, tx *pg.MockTXManager) {
				tx.EXPECT().Begin(gomock.Any(), gomock.Any()).DoAndReturn(runInTx)
				gomock.InOrder(
					orders.EXPECT().FindByIDAndUser(gomock.Any(), 9, 1).Return(pending, nil),
					orders.EXPECT().CompareAndSetStatus(gomock.Any(), transition).Return(int64(0), nil),
					orders.EXPECT().FindByIDAndUser(gomock.Any(), 9, 1).Return(&domain.Order{
						ID: 9, UserID: 1, TotalPrice: 600, Status: domain.OrderStatusCancelled,
					}, nil),
				)
			},
			expectedError: domain.ErrAlreadyPaid,
		},
		{
			name:       "Replay with the same key succeeds without debit",
			paymentKey: payKey,
			prepareMock: func(orders *MockOrderRepo, wallet *MockWallet, tx *pg.MockTXManager) {
				tx.EXPECT().Begin(gomock.Any(), gomock.Any()).DoAndReturn(runInTx)
				gomock.InOrder(
					orders.EXPECT().FindByIDAndUser(gomock.Any(), 9, 1).Return(pending, nil),
					orders.EXPECT().CompareAndSetStatus(gomock.Any(), transition).Return(int64(0), nil),
					orders.EXPECT().FindByIDAndUser(gomock.Any(), 9, 1).Return(&domain.Order{
						ID: 9, UserID: 1, TotalPrice: 600, Status: domain.OrderStatusPaid, PaymentKey: &payKey,
					}, nil),
				)
			},
		},
		{
			name:       "Insufficient points is not retried",
			paymentKey: payKey,
			prepareMock: func(orders *MockOrderRepo, wallet *MockWallet, tx *pg.MockTXManager) {
				tx.EXPECT().Begin(gomock.Any(), gomock.Any()).DoAndReturn(runInTx).Times(1)
				orders.EXPECT().FindByIDAndUser(gomock.Any(), 9, 1).Return(pending, nil)
				orders.EXPECT().CompareAndSetStatus(gomock.Any(), transition).Return(int64(1), nil)
				wallet.EXPECT().Debit(gomock.Any(), 1, int64(600), "orders:9:confirm").Return(nil, domain.ErrInsufficientPoints)
			},
			expectedError: domain.ErrInsufficientPoints,
		},
		{
			name:       "Version conflict retried once",
			paymentKey: payKey,
			prepareMock: func(orders *MockOrderRepo, wallet *MockWallet, tx *pg.MockTXManager) {
				tx.EXPECT().Begin(gomock.Any(), gomock.Any()).DoAndReturn(runInTx).Times(2)
				orders.EXPECT().FindByIDAndUser(gomock.Any(), 9, 1).Return(pending, nil).Times(2)
				orders.EXPECT().CompareAndSetStatus(gomock.Any(), transition).Return(int64(1), nil).Times(2)
				gomock.InOrder(
					wallet.EXPECT().Debit(gomock.Any(), 1, int64(600), "orders:9:confirm").Return(nil, domain.ErrVersionConflict),
					wallet.EXPECT().Debit(gomock.Any(), 1, int64(600), "orders:9:confirm").Return(debited, nil),
				)
			},
		},
		{
			name:       "Second version conflict is surfaced",
			paymentKey: payKey,
			prepareMock: func(orders *MockOrderRepo, wallet *MockWallet, tx *pg.MockTXManager) {
				tx.EXPECT().Begin(gomock.Any(), gomock.Any()).DoAndReturn(runInTx).Times(2)
				orders.EXPECT().FindByIDAndUser(gomock.Any(), 9, 1).Return(pending, nil).Times(2)
				orders.EXPECT().CompareAndSetStatus(gomock.Any(), transition).Return(int64(1), nil).Times(2)
				wallet.EXPECT().Debit(gomock.Any(), 1, int64(600), "orders:9:confirm").Return(nil, domain.ErrVersionConflict).Times(2)
			},
			expectedError: domain.ErrVersionConflict,
		},
		{
			name:       "Status update fails",
			paymentKey: payKey,
			prepareMock: func(orders *MockOrderRepo, wallet *MockWallet, tx *pg.MockTXManager) {
				tx.EXPECT().Begin(gomock.Any(), gomock.Any()).DoAndReturn(runInTx)
				orders.EXPECT().FindByIDAndUser(gomock.Any(), 9, 1).Return(pending, nil)
				orders.EXPECT().CompareAndSetStatus(gomock.Any(), transition).Return(int64(0), dbErr)
			},
			expectedError: dbErr,
		},
		{
			name:       "Transaction cannot start",
			paymentKey: payKey,
			prepareMock: func(orders *MockOrderRepo, wallet *MockWallet, tx *pg.MockTXManager) {
				tx.EXPECT().Begin(gomock.Any(), gomock.Any()).Return(dbErr)
			},
			expectedError: dbErr,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, orders, wallet, tx := NewMock(t)
			tt.prepareMock(orders, wallet, tx)

			err := service.Confirm(context.Background(), 1, 9, tt.paymentKey)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
