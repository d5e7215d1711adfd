package userrepo

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/GlebRadaev/goodpang/internal/domain"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userColumns = []string{"id", "email", "password_hash", "points", "version", "order_count", "created_at"}

func NewMock(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	mockDB, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockDB.Close)
	return New(mockDB), mockDB
}

func TestRepository_FindByEmail(t *testing.T) {
	repo, mock := NewMock(t)
	now := time.Now()
	query := regexp.QuoteMeta(`SELECT id, email, password_hash, points, version, order_count, created_at FROM service_user WHERE email = $1`)

	tests := []struct {
		name      string
		email     string
		mockSetup func()
		expectErr bool
		result    *domain.User
	}{
		{
			name:  "User exists",
			email: "goodpang@example.com",
			mockSetup: func() {
				mock.ExpectQuery(query).
					WithArgs("goodpang@example.com").
					WillReturnRows(pgxmock.NewRows(userColumns).
						AddRow(1, "goodpang@example.com", "hash", int64(1000), int64(3), 2, now))
			},
			result: &domain.User{
				ID: 1, Email: "goodpang@example.com", PasswordHash: "hash",
				Points: 1000, Version: 3, OrderCount: 2, CreatedAt: now,
			},
		},
		{
			name:  "User does not exist",
			email: "missing@example.com",
			mockSetup: func() {
				mock.ExpectQuery(query).WithArgs("missing@example.com").WillReturnError(pgx.ErrNoRows)
			},
		},
		{
			name:  "Database error",
			email: "goodpang@example.com",
			mockSetup: func() {
				mock.ExpectQuery(query).WithArgs("goodpang@example.com").WillReturnError(errors.New("database error"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			result, err := repo.FindByEmail(context.Background(), tt.email)
			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.result, result)
		})
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_FindByID(t *testing.T) {
	repo, mock := NewMock(t)
	now := time.Now()
	query := regexp.QuoteMeta(`SELECT id, email, password_hash, points, version, order_count, created_at FROM service_user WHERE id = $1`)

	mock.ExpectQuery(query).WithArgs(7).
		WillReturnRows(pgxmock.NewRows(userColumns).AddRow(7, "a@b.c", "hash", int64(10), int64(0), 0, now))
	mock.ExpectQuery(query).WithArgs(8).WillReturnError(pgx.ErrNoRows)

	user, err := repo.FindByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 7, user.ID)
	assert.Equal(t, int64(10), user.Points)

	user, err = repo.FindByID(context.Background(), 8)
	assert.NoError(t, err)
	assert.Nil(t, user)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Create(t *testing.T) {
	repo, mock := NewMock(t)
	now := time.Now()
	query := regexp.QuoteMeta(`INSERT INTO service_user (email, password_hash, points, version, order_count) VALUES ($1, $2, $3, 0, 0) RETURNING id, created_at`)

	tests := []struct {
		name        string
		mockSetup   func()
		expectedErr error
		expectErr   bool
	}{
		{
			name: "User created",
			mockSetup: func() {
				mock.ExpectQuery(query).
					WithArgs("new@example.com", "hash", int64(100)).
					WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(5, now))
			},
		},
		{
			name: "Email already taken",
			mockSetup: func() {
				mock.ExpectQuery(query).
					WithArgs("new@example.com", "hash", int64(100)).
					WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "unique_email"})
			},
			expectedErr: domain.ErrUserAlreadyExists,
			expectErr:   true,
		},
		{
			name: "Database error",
			mockSetup: func() {
				mock.ExpectQuery(query).
					WithArgs("new@example.com", "hash", int64(100)).
					WillReturnError(errors.New("database error"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			user, err := repo.Create(context.Background(), &domain.User{Email: "new@example.com", PasswordHash: "hash", Points: 100})
			if tt.expectErr {
				assert.Error(t, err)
				assert.Nil(t, user)
				if tt.expectedErr != nil {
					assert.ErrorIs(t, err, tt.expectedErr)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 5, user.ID)
			assert.Equal(t, now, user.CreatedAt)
			assert.Equal(t, int64(0), user.Version)
		})
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetWallet(t *testing.T) {
	repo, mock := NewMock(t)
	query := regexp.QuoteMeta(`SELECT id, points, version, order_count FROM service_user WHERE id = $1`)

	mock.ExpectQuery(query).WithArgs(1).
		WillReturnRows(pgxmock.NewRows([]string{"id", "points", "version", "order_count"}).AddRow(1, int64(1000), int64(4), 3))
	mock.ExpectQuery(query).WithArgs(2).WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(query).WithArgs(3).WillReturnError(errors.New("database error"))

	wallet, err := repo.GetWallet(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, &domain.Wallet{UserID: 1, Points: 1000, Version: 4, OrderCount: 3}, wallet)

	wallet, err = repo.GetWallet(context.Background(), 2)
	assert.NoError(t, err)
	assert.Nil(t, wallet)

	_, err = repo.GetWallet(context.Background(), 3)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_DebitIfVersion(t *testing.T) {
	repo, mock := NewMock(t)
	query := regexp.QuoteMeta(`UPDATE service_user SET points = points - $1, order_count = order_count + 1, version = version + 1 WHERE id = $2 AND version = $3`)

	tests := []struct {
		name      string
		mockSetup func()
		affected  int64
		expectErr bool
	}{
		{
			name: "Version matches",
			mockSetup: func() {
				mock.ExpectExec(query).WithArgs(int64(600), 1, int64(2)).WillReturnResult(pgxmock.NewResult("UPDATE", 1))
			},
			affected: 1,
		},
		{
			name: "Version moved on",
			mockSetup: func() {
				mock.ExpectExec(query).WithArgs(int64(600), 1, int64(2)).WillReturnResult(pgxmock.NewResult("UPDATE", 0))
			},
			affected: 0,
		},
		{
			name: "Database error",
			mockSetup: func() {
				mock.ExpectExec(query).WithArgs(int64(600), 1, int64(2)).WillReturnError(errors.New("database error"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			affected, err := repo.DebitIfVersion(context.Background(), 1, 2, 600)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.affected, affected)
		})
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_RecordOrderPaid(t *testing.T) {
	repo, mock := NewMock(t)
	query := regexp.QuoteMeta(`UPDATE service_user SET order_count = order_count + 1, points = $1, version = $2 WHERE id = $3`)

	mock.ExpectExec(query).WithArgs(int64(400), int64(1), 1).WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(query).WithArgs(int64(400), int64(1), 2).WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectExec(query).WithArgs(int64(400), int64(1), 3).WillReturnError(errors.New("database error"))

	assert.NoError(t, repo.RecordOrderPaid(context.Background(), 1, 400, 1))
	assert.ErrorIs(t, repo.RecordOrderPaid(context.Background(), 2, 400, 1), domain.ErrUserNotFound)
	assert.Error(t, repo.RecordOrderPaid(context.Background(), 3, 400, 1))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ReplayWallet(t *testing.T) {
	repo, mock := NewMock(t)
	query := regexp.QuoteMeta(`UPDATE service_user SET points = $1, version = $2 WHERE id = $3 AND version < $2`)

	mock.ExpectExec(query).WithArgs(int64(900), int64(5), 1).WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(query).WithArgs(int64(900), int64(5), 1).WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectExec(query).WithArgs(int64(900), int64(5), 1).WillReturnError(errors.New("database error"))

	affected, err := repo.ReplayWallet(context.Background(), 1, 900, 5)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	affected, err = repo.ReplayWallet(context.Background(), 1, 900, 5)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), affected)

	_, err = repo.ReplayWallet(context.Background(), 1, 900, 5)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
