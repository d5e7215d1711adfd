package orders

//go:generate mockgen -source=orders.go -destination=mock_orders.go -package=orders

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/GlebRadaev/goodpang/internal/domain"
	"github.com/GlebRadaev/goodpang/internal/dto"
	"github.com/GlebRadaev/goodpang/internal/service/orderservice"
	"github.com/GlebRadaev/goodpang/pkg/auth"
	"github.com/GlebRadaev/goodpang/pkg/utils"
	"github.com/go-chi/chi/v5"
)

type Service interface {
	PlaceOrder(ctx context.Context, userID int, items []orderservice.Item) (*domain.Order, error)
	GetOrders(ctx context.Context, userID int) ([]domain.Order, error)
	GetOrder(ctx context.Context, userID, orderID int) (*domain.Order, error)
}

type PaymentService interface {
	Confirm(ctx context.Context, userID, orderID int, paymentKey string) error
}

type OrderHandler struct {
	orderService   Service
	paymentService PaymentService
}

func New(orderService Service, paymentService PaymentService) *OrderHandler {
	return &OrderHandler{
		orderService:   orderService,
		paymentService: paymentService,
	}
}

// CreateOrder godoc
//
//	@Summary		Place a new order
//	@Description	Price the requested products with the current discount and store a pending order.
//	@Tags			Orders
//	@Accept			json
//	@Produce		json
//	@Param			request	body	dto.CreateOrderRequestDTO	true	"Order lines"
//	@Security		BearerAuth
//	@Success		201	{object}	dto.CreateOrderResponseDTO
//	@Failure		400	{object}	utils.Response	"Invalid order lines or product ID"
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/orders [post]
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req dto.CreateOrderRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	items := make([]orderservice.Item, 0, len(req.OrderLines))
	for _, line := range req.OrderLines {
		items = append(items, orderservice.Item{ProductID: line.ProductID, Quantity: line.Quantity})
	}

	order, err := h.orderService.PlaceOrder(r.Context(), userID, items)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidProduct):
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid product ID")
		case errors.Is(err, domain.ErrInvalidOrderLines):
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dto.CreateOrderResponseDTO{
		ID:         order.ID,
		TotalPrice: order.TotalPrice,
	})
}

// GetOrders godoc
//
//	@Summary		Get orders list for user
//	@Description	Retrieve the orders of the authorized user, newest first
//	@Tags			Orders
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{array}		dto.OrderResponseDTO
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/orders [get]
func (h *OrderHandler) GetOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	orders, err := h.orderService.GetOrders(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	response := make([]dto.OrderResponseDTO, 0, len(orders))
	for _, order := range orders {
		response = append(response, toOrderDTO(order))
	}
	utils.RespondWithJSON(w, http.StatusOK, response)
}

// GetOrder godoc
//
//	@Summary		Get one order
//	@Description	Retrieve an order of the authorized user together with its lines
//	@Tags			Orders
//	@Produce		json
//	@Param			id	path	int	true	"Order ID"
//	@Security		BearerAuth
//	@Success		200	{object}	dto.OrderResponseDTO
//	@Failure		400	{object}	utils.Response	"Invalid order ID"
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		404	{object}	utils.Response	"Order not found"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/orders/{id} [get]
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	orderID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	order, err := h.orderService.GetOrder(r.Context(), userID, orderID)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Order not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, toOrderDTO(*order))
}

// ConfirmOrder godoc
//
//	@Summary		Confirm payment of an order
//	@Description	Mark a pending order paid and debit its total from the user's points.
//	@Description	Repeating the call with the same payment key after success is answered with 200.
//	@Tags			Orders
//	@Accept			json
//	@Produce		json
//	@Param			id		path	int							true	"Order ID"
//	@Param			request	body	dto.ConfirmOrderRequestDTO	true	"Payment key"
//	@Security		BearerAuth
//	@Success		200	{object}	dto.DetailResponseDTO
//	@Failure		400	{object}	utils.Response	"Order already paid, payment key missing or too long"
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		404	{object}	utils.Response	"Order not found"
//	@Failure		409	{object}	utils.Response	"Not enough points or concurrent wallet update"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/orders/{id}/confirm [post]
func (h *OrderHandler) ConfirmOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	orderID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}
	var req dto.ConfirmOrderRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if utf8.RuneCountInString(req.PaymentKey) > dto.MaxPaymentKeyLen {
		utils.RespondWithError(w, http.StatusBadRequest, "Payment key is too long")
		return
	}

	err = h.paymentService.Confirm(r.Context(), userID, orderID, req.PaymentKey)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrOrderNotFound):
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, domain.ErrAlreadyPaid), errors.Is(err, domain.ErrPaymentKeyRequired):
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, domain.ErrInsufficientPoints), errors.Is(err, domain.ErrVersionConflict):
			utils.RespondWithError(w, http.StatusConflict, err.Error())
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.DetailResponseDTO{Detail: "ok"})
}

func toOrderDTO(order domain.Order) dto.OrderResponseDTO {
	resp := dto.OrderResponseDTO{
		ID:         order.ID,
		Code:       order.Code,
		TotalPrice: order.TotalPrice,
		Status:     string(order.Status),
		CreatedAt:  order.CreatedAt.Format(time.RFC3339),
	}
	if order.PaidAt != nil {
		paidAt := order.PaidAt.Format(time.RFC3339)
		resp.PaidAt = &paidAt
	}
	for _, line := range order.Lines {
		resp.Lines = append(resp.Lines, dto.OrderLineResponseDTO{
			ProductID:     line.ProductID,
			Quantity:      line.Quantity,
			Price:         line.Price,
			DiscountRatio: line.DiscountRatio,
		})
	}
	return resp
}
