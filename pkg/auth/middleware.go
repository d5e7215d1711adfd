package auth

//go:generate mockgen -source=middleware.go -destination=mock_middleware.go -package=auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/GlebRadaev/goodpang/pkg/utils"
	"go.uber.org/zap"
)

type ContextKey string

const UserIDKey ContextKey = "userID"

var ErrUserNotFound = errors.New("user not found")

// IdentityResolver turns a bearer token into a user id. It returns ErrInvalidToken for a
// token that cannot be trusted and ErrUserNotFound when the token names a missing user.
type IdentityResolver interface {
	ResolveUser(ctx context.Context, token string) (int, error)
}

func AuthMiddleware(resolver IdentityResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
				utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			token := strings.TrimPrefix(authHeader, "Bearer ")
			userID, err := resolver.ResolveUser(r.Context(), token)
			if err != nil {
				switch {
				case errors.Is(err, ErrInvalidToken):
					utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
				case errors.Is(err, ErrUserNotFound):
					utils.RespondWithError(w, http.StatusNotFound, "User Not Found")
				default:
					zap.L().Error("can't resolve user", zap.Error(err))
					utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
				}
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func UserIDFromContext(ctx context.Context) (int, bool) {
	userID, ok := ctx.Value(UserIDKey).(int)
	return userID, ok
}
