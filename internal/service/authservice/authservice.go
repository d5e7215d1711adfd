package authservice

//go:generate mockgen -source=authservice.go -destination=mock_authservice.go -package=authservice

import (
	"context"
	"errors"

	"github.com/GlebRadaev/goodpang/internal/domain"
	"github.com/GlebRadaev/goodpang/internal/pg"
	"github.com/GlebRadaev/goodpang/pkg/auth"
	"go.uber.org/zap"
)

type Repo interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, userID int) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}

type LedgerRepo interface {
	Append(ctx context.Context, entry *domain.LedgerEntry) (*domain.LedgerEntry, error)
}

type Service struct {
	userRepo     Repo
	ledgerRepo   LedgerRepo
	txManager    pg.TXManager
	hashService  auth.HashServiceInterface
	jwtService   auth.JWTServiceInterface
	signupPoints int64
}

func New(
	repo Repo,
	ledgerRepo LedgerRepo,
	txManager pg.TXManager,
	hashService auth.HashServiceInterface,
	jwtService auth.JWTServiceInterface,
	signupPoints int64,
) *Service {
	return &Service{
		userRepo:     repo,
		ledgerRepo:   ledgerRepo,
		txManager:    txManager,
		hashService:  hashService,
		jwtService:   jwtService,
		signupPoints: signupPoints,
	}
}

// Register creates the user and opens its wallet with a version 0 ledger entry. Both rows
// are written in one transaction.
func (s *Service) Register(ctx context.Context, email, password string) (*domain.User, error) {
	existingUser, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		zap.L().Error("can't find user", zap.Error(err))
		return nil, err
	}
	if existingUser != nil {
		zap.L().Info("user already exists", zap.String("email", email))
		return nil, domain.ErrUserAlreadyExists
	}
	hashedPassword, err := s.hashService.HashPassword(password)
	if err != nil {
		zap.L().Error("can't hash password", zap.Error(err))
		return nil, err
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: hashedPassword,
		Points:       s.signupPoints,
	}
	err = s.txManager.Begin(ctx, func(ctx context.Context) error {
		if _, err := s.userRepo.Create(ctx, user); err != nil {
			return err
		}
		_, err := s.ledgerRepo.Append(ctx, &domain.LedgerEntry{
			UserID:       user.ID,
			Version:      0,
			PointsChange: s.signupPoints,
			PointsSum:    s.signupPoints,
			Reason:       domain.SignupReason(user.ID),
		})
		return err
	})
	if err != nil {
		zap.L().Error("can't register user", zap.String("email", email), zap.Error(err))
		return nil, err
	}

	zap.L().Info("user successfully registered", zap.String("email", email), zap.Int("user_id", user.ID))
	return user, nil
}

func (s *Service) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		zap.L().Error("can't find user", zap.Error(err))
		return nil, err
	}
	if user == nil || !s.hashService.ComparePassword(user.PasswordHash, password) {
		zap.L().Info("invalid credentials", zap.String("email", email))
		return nil, domain.ErrInvalidCredentials
	}
	zap.L().Info("user successfully authenticated", zap.String("email", email))
	return user, nil
}

func (s *Service) GenerateToken(userID int) (string, error) {
	token, err := s.jwtService.GenerateJWT(userID)
	if err != nil {
		zap.L().Error("can't generate token", zap.Error(err))
		return "", err
	}
	return token, nil
}

// ResolveUser maps a bearer token to the id of an existing user.
func (s *Service) ResolveUser(ctx context.Context, token string) (int, error) {
	claims, err := s.jwtService.ValidateToken(token)
	if err != nil {
		if !errors.Is(err, auth.ErrInvalidToken) {
			err = errors.Join(auth.ErrInvalidToken, err)
		}
		return 0, err
	}
	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		return 0, err
	}
	if user == nil {
		zap.L().Info("token for missing user", zap.Int("user_id", claims.UserID))
		return 0, auth.ErrUserNotFound
	}
	return user.ID, nil
}
