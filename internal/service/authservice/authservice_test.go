package authservice

import (
	"context"
	"errors"
	"testing"

	"github.com/GlebRadaev/goodpang/internal/domain"
	"github.com/GlebRadaev/goodpang/internal/pg"
	"github.com/GlebRadaev/goodpang/pkg/auth"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"
)

type mocks struct {
	userRepo   *MockRepo
	ledgerRepo *MockLedgerRepo
	txManager  *pg.MockTXManager
	hasher     *auth.MockHashServiceInterface
	jwt        *auth.MockJWTServiceInterface
}

func NewMock(t *testing.T, signupPoints int64) (*Service, mocks) {
	ctrl := gomock.NewController(t)
	m := mocks{
		userRepo:   NewMockRepo(ctrl),
		ledgerRepo: NewMockLedgerRepo(ctrl),
		txManager:  pg.NewMockTXManager(ctrl),
		hasher:     auth.NewMockHashServiceInterface(ctrl),
		jwt:        auth.NewMockJWTServiceInterface(ctrl),
	}
	service := New(m.userRepo, m.ledgerRepo, m.txManager, m.hasher, m.jwt, signupPoints)
	return service, m
}

func runInTx(ctx context.Context, fn pg.TransactionalFn) error {
	return fn(ctx)
}

func TestRegister(t *testing.T) {
	service, m := NewMock(t, 1000)

	tests := []struct {
		name          string
		email         string
		password      string
		prepareMock   func()
		expectedUser  *domain.User
		expectedError error
	}{
		{
			name:     "Successful registration opens the wallet",
			email:    "user@example.com",
			password: "testpassword",
			prepareMock: func() {
				m.userRepo.EXPECT().FindByEmail(context.Background(), "user@example.com").Return(nil, nil)
				m.hasher.EXPECT().HashPassword("testpassword").Return("hashedpassword", nil)
				m.txManager.EXPECT().Begin(gomock.Any(), gomock.Any()).DoAndReturn(runInTx)
				m.userRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, user *domain.User) (*domain.User, error) {
					user.ID = 1
					return user, nil
				})
				m.ledgerRepo.EXPECT().Append(gomock.Any(), &domain.LedgerEntry{
					UserID:       1,
					Version:      0,
					PointsChange: 1000,
					PointsSum:    1000,
					Reason:       "users:1:signup",
				}).DoAndReturn(func(ctx context.Context, entry *domain.LedgerEntry) (*domain.LedgerEntry, error) {
					return entry, nil
				})
			},
			expectedUser: &domain.User{
				ID:           1,
				Email:        "user@example.com",
				PasswordHash: "hashedpassword",
				Points:       1000,
			},
		},
		{
			name:     "User already exists",
			email:    "user@example.com",
			password: "testpassword",
			prepareMock: func() {
				m.userRepo.EXPECT().FindByEmail(context.Background(), "user@example.com").Return(&domain.User{Email: "user@example.com"}, nil)
			},
			expectedError: domain.ErrUserAlreadyExists,
		},
		{
			name:     "Error finding user",
			email:    "user@example.com",
			password: "testpassword",
			prepareMock: func() {
				m.userRepo.EXPECT().FindByEmail(context.Background(), "user@example.com").Return(nil, errors.New("database error"))
			},
			expectedError: errors.New("database error"),
		},
		{
			name:     "Error hashing password",
			email:    "user@example.com",
			password: "testpassword",
			prepareMock: func() {
				m.userRepo.EXPECT().FindByEmail(context.Background(), "user@example.com").Return(nil, nil)
				m.hasher.EXPECT().HashPassword("testpassword").Return("", errors.New("hashing error"))
			},
			expectedError: errors.New("hashing error"),
		},
		{
			name:     "Email taken concurrently",
			email:    "user@example.com",
			password: "testpassword",
			prepareMock: func() {
				m.userRepo.EXPECT().FindByEmail(context.Background(), "user@example.com").Return(nil, nil)
				m.hasher.EXPECT().HashPassword("testpassword").Return("hashedpassword", nil)
				m.txManager.EXPECT().Begin(gomock.Any(), gomock.Any()).DoAndReturn(runInTx)
				m.userRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, domain.ErrUserAlreadyExists)
			},
			expectedError: domain.ErrUserAlreadyExists,
		},
		{
			name:     "Error opening wallet",
			email:    "user@example.com",
			password: "testpassword",
			prepareMock: func() {
				m.userRepo.EXPECT().FindByEmail(context.Background(), "user@example.com").Return(nil, nil)
				m.hasher.EXPECT().HashPassword("testpassword").Return("hashedpassword", nil)
				m.txManager.EXPECT().Begin(gomock.Any(), gomock.Any()).DoAndReturn(runInTx)
				m.userRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, user *domain.User) (*domain.User, error) {
					user.ID = 1
					return user, nil
				})
				m.ledgerRepo.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil, errors.New("ledger error"))
			},
			expectedError: errors.New("ledger error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			user, err := service.Register(context.Background(), tt.email, tt.password)
			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Equal(t, tt.expectedError.Error(), err.Error())
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedUser, user)
			}
		})
	}
}

func TestAuthenticate(t *testing.T) {
	service, m := NewMock(t, 0)
	stored := &domain.User{ID: 1, Email: "user@example.com", PasswordHash: "hashedpassword"}

	tests := []struct {
		name          string
		password      string
		prepareMock   func()
		expectedUser  *domain.User
		expectedError error
	}{
		{
			name:     "Successful authentication",
			password: "testpassword",
			prepareMock: func() {
				m.userRepo.EXPECT().FindByEmail(context.Background(), "user@example.com").Return(stored, nil)
				m.hasher.EXPECT().ComparePassword("hashedpassword", "testpassword").Return(true)
			},
			expectedUser: stored,
		},
		{
			name:     "Invalid credentials - user not found",
			password: "testpassword",
			prepareMock: func() {
				m.userRepo.EXPECT().FindByEmail(context.Background(), "user@example.com").Return(nil, nil)
			},
			expectedError: domain.ErrInvalidCredentials,
		},
		{
			name:     "Invalid credentials - incorrect password",
			password: "wrongpassword",
			prepareMock: func() {
				m.userRepo.EXPECT().FindByEmail(context.Background(), "user@example.com").Return(stored, nil)
				m.hasher.EXPECT().ComparePassword("hashedpassword", "wrongpassword").Return(false)
			},
			expectedError: domain.ErrInvalidCredentials,
		},
		{
			name:     "Database error",
			password: "testpassword",
			prepareMock: func() {
				m.userRepo.EXPECT().FindByEmail(context.Background(), "user@example.com").Return(nil, errors.New("database error"))
			},
			expectedError: errors.New("database error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			user, err := service.Authenticate(context.Background(), "user@example.com", tt.password)
			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Equal(t, tt.expectedError.Error(), err.Error())
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedUser, user)
			}
		})
	}
}

func TestGenerateToken(t *testing.T) {
	service, m := NewMock(t, 0)

	tests := []struct {
		name          string
		prepareMock   func()
		expectedToken string
		expectedError error
	}{
		{
			name: "Successful token generation",
			prepareMock: func() {
				m.jwt.EXPECT().GenerateJWT(1).Return("generated-token", nil)
			},
			expectedToken: "generated-token",
		},
		{
			name: "Error generating token",
			prepareMock: func() {
				m.jwt.EXPECT().GenerateJWT(1).Return("", errors.New("can't generate token"))
			},
			expectedError: errors.New("can't generate token"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			token, err := service.GenerateToken(1)
			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Equal(t, tt.expectedError.Error(), err.Error())
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedToken, token)
			}
		})
	}
}

func TestResolveUser(t *testing.T) {
	service, m := NewMock(t, 0)

	tests := []struct {
		name          string
		prepareMock   func()
		expectedID    int
		expectedError error
	}{
		{
			name: "Known user",
			prepareMock: func() {
				m.jwt.EXPECT().ValidateToken("token").Return(&auth.Claims{UserID: 7}, nil)
				m.userRepo.EXPECT().FindByID(context.Background(), 7).Return(&domain.User{ID: 7}, nil)
			},
			expectedID: 7,
		},
		{
			name: "Invalid token",
			prepareMock: func() {
				m.jwt.EXPECT().ValidateToken("token").Return(nil, auth.ErrInvalidToken)
			},
			expectedError: auth.ErrInvalidToken,
		},
		{
			name: "Validation failure is reported as invalid token",
			prepareMock: func() {
				m.jwt.EXPECT().ValidateToken("token").Return(nil, errors.New("malformed"))
			},
			expectedError: auth.ErrInvalidToken,
		},
		{
			name: "Deleted user",
			prepareMock: func() {
				m.jwt.EXPECT().ValidateToken("token").Return(&auth.Claims{UserID: 7}, nil)
				m.userRepo.EXPECT().FindByID(context.Background(), 7).Return(nil, nil)
			},
			expectedError: auth.ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			userID, err := service.ResolveUser(context.Background(), "token")
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expectedID, userID)
		})
	}
}
