package wallet

//go:generate mockgen -source=wallet.go -destination=mock_wallet.go -package=wallet

import (
	"context"
	"errors"
	"net/http"

	"github.com/GlebRadaev/goodpang/internal/domain"
	"github.com/GlebRadaev/goodpang/internal/dto"
	"github.com/GlebRadaev/goodpang/pkg/auth"
	"github.com/GlebRadaev/goodpang/pkg/utils"
)

type Service interface {
	Balance(ctx context.Context, userID int) (*domain.Wallet, error)
	History(ctx context.Context, userID int) ([]domain.LedgerEntry, error)
	StrategyName() string
}

type WalletHandler struct {
	walletService Service
}

func New(walletService Service) *WalletHandler {
	return &WalletHandler{
		walletService: walletService,
	}
}

// GetPoints godoc
//
//	@Summary		Get current points
//	@Description	Retrieve the points balance and wallet version of the authenticated user.
//	@Tags			Wallet
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	dto.PointsResponseDTO	"Current points"
//	@Failure		401	{object}	utils.Response			"User not authorized"
//	@Failure		404	{object}	utils.Response			"User not found"
//	@Failure		500	{object}	utils.Response			"Internal server error"
//	@Router			/api/users/me/points [get]
func (h *WalletHandler) GetPoints(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	wallet, err := h.walletService.Balance(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "User Not Found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.PointsResponseDTO{
		Points:   wallet.Points,
		Version:  wallet.Version,
		Strategy: h.walletService.StrategyName(),
	})
}

// GetHistory godoc
//
//	@Summary		Get points history
//	@Description	Ledger entries of the authenticated user, newest first.
//	@Tags			Wallet
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{array}		dto.LedgerEntryResponseDTO
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/users/me/points/history [get]
func (h *WalletHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	entries, err := h.walletService.History(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	response := make([]dto.LedgerEntryResponseDTO, 0, len(entries))
	for _, e := range entries {
		response = append(response, dto.LedgerEntryResponseDTO{
			Version:      e.Version,
			PointsChange: e.PointsChange,
			PointsSum:    e.PointsSum,
			Reason:       e.Reason,
			CreatedAt:    e.CreatedAt,
		})
	}
	utils.RespondWithJSON(w, http.StatusOK, response)
}
